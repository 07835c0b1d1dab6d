// Command encore is the studio client for the Encore distribution platform:
// it validates, encodes, and submits songs, podcasts, videos, blog posts, and
// profile updates, and lists what the account has submitted.
package main
