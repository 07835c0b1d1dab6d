// Package platform is the HTTP client for the distribution platform's
// submission API. Binary payloads stream as multipart parts so handle
// progress callbacks track the actual network transfer; remote errors carry
// the platform's message verbatim and are classified through the services
// sentinels.
package platform
