package artwork

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	// Registered decoders for the formats artwork may arrive in.
	_ "image/jpeg"
	_ "image/png"

	"encore/internal/asset"
)

const (
	// DefaultSide is the exact square pixel dimension the platform requires
	// for song, show, and episode artwork.
	DefaultSide = 3000

	reasonBadFormat    = "Artwork must be JPG or PNG format"
	reasonDecodeFailed = "Failed to load image"
)

var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
}

// Result reports whether an artwork file passed the gate, and why not.
type Result struct {
	Valid  bool
	Reason string
	Width  int
	Height int
}

// Validator checks artwork files against the platform's format and dimension
// requirements before any encoding or network activity happens.
type Validator struct {
	// Side is the required exact square dimension. Zero means DefaultSide.
	Side int
}

func (v Validator) side() int {
	if v.Side > 0 {
		return v.Side
	}
	return DefaultSide
}

// Validate opens path and runs the gate: MIME type first, decoded pixel
// dimensions second. Validation is a pure function of the file contents;
// re-validating an unchanged file yields the same result. The returned error
// is non-nil only for IO-level failures opening the file.
func (v Validator) Validate(ctx context.Context, path string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open artwork: %w", err)
	}
	defer file.Close()

	contentType := declaredType(path, file)
	return v.ValidateReader(contentType, file), nil
}

// ValidateReader runs the gate against an already-open payload with a
// declared MIME type.
func (v Validator) ValidateReader(contentType string, r io.Reader) Result {
	if _, ok := allowedTypes[contentType]; !ok {
		return Result{Reason: reasonBadFormat}
	}

	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return Result{Reason: reasonDecodeFailed}
	}

	side := v.side()
	if cfg.Width != side || cfg.Height != side {
		return Result{
			Reason: fmt.Sprintf("Artwork must be exactly %d×%d pixels. Current: %d×%d", side, side, cfg.Width, cfg.Height),
			Width:  cfg.Width,
			Height: cfg.Height,
		}
	}
	return Result{Valid: true, Width: cfg.Width, Height: cfg.Height}
}

// declaredType resolves the MIME type from the file extension, sniffing the
// leading bytes when the extension is unknown. The reader is rewound so the
// decoder sees the full stream.
func declaredType(path string, file *os.File) string {
	head := make([]byte, 512)
	n, _ := io.ReadFull(file, head)
	_, _ = file.Seek(0, io.SeekStart)
	return asset.DetectContentType(filepath.Base(path), head[:n])
}
