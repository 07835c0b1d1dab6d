// Package services provides the shared error taxonomy and context carriers
// used across the submission pipeline. Sentinel errors classify failures into
// local validation, encode, and remote categories so callers can decide
// whether a draft survives and whether a message is safe to surface verbatim.
package services
