// Package querycache caches listing results between CLI runs in a SQLite
// database. Successful submissions invalidate the keys their kind touches so
// the next listing refetches from the platform.
package querycache
