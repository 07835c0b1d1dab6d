// Package artwork gates image files before they enter the submission
// pipeline: JPEG/PNG only, decoded dimensions exactly square at the
// configured side. Only artwork carries a dimension constraint; profile
// photos, thumbnails, audio, and video pass through unchecked.
package artwork
