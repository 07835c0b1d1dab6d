// Package submit drives a draft through the submission pipeline: validate
// locally, gate artwork, encode binary fields into handles, probe account
// standing, then make exactly one remote call. Success invalidates the cached
// listings the submission affects and resets the form; remote failure keeps
// the draft's text so nothing typed is lost.
package submit
