// Package config loads, normalizes, and validates the TOML configuration for
// the encore client. Buffering ceilings and probe policies that the platform
// frontend left implicit are explicit values here.
package config
