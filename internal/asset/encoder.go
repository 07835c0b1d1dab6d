package asset

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"encore/internal/services"
)

// Encoder converts local files into transferable handles. The whole file is
// buffered in memory; the remote API accepts a single multipart request, so
// there is no chunked path. MaxBytes caps the buffer (0 = unlimited).
type Encoder struct {
	MaxBytes int64
}

// NewEncoder returns an encoder with the supplied buffering ceiling.
func NewEncoder(maxBytes int64) *Encoder {
	return &Encoder{MaxBytes: maxBytes}
}

// Encode reads path into memory and returns a handle sufficient on its own to
// be embedded in a submission payload. When onProgress is non-nil the handle
// is decorated so its eventual network transfer reports percentages.
// File read errors propagate to the caller; there is no local recovery.
func (e *Encoder) Encode(ctx context.Context, path string, onProgress ProgressFunc) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return Handle{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return Handle{}, services.Wrap(services.ErrEncode, "", "open", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Handle{}, services.Wrap(services.ErrEncode, "", "stat", path, err)
	}
	if e.MaxBytes > 0 && info.Size() > e.MaxBytes {
		return Handle{}, services.Wrap(services.ErrValidation, "", "encode",
			fmt.Sprintf("file %s is %d bytes, exceeding the %d byte buffering ceiling", filepath.Base(path), info.Size(), e.MaxBytes), nil)
	}

	return e.EncodeReader(ctx, filepath.Base(path), file, onProgress)
}

// EncodeReader buffers r fully and returns a handle. The content type is
// derived from the filename extension, falling back to sniffing the payload.
func (e *Encoder) EncodeReader(ctx context.Context, filename string, r io.Reader, onProgress ProgressFunc) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return Handle{}, err
	}

	limit := e.MaxBytes
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Handle{}, services.Wrap(services.ErrEncode, "", "read", filename, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return Handle{}, services.Wrap(services.ErrValidation, "", "encode",
			fmt.Sprintf("%s exceeds the %d byte buffering ceiling", filename, limit), nil)
	}

	handle := FromBytes(filename, DetectContentType(filename, data), data)
	if onProgress != nil {
		handle = handle.WithProgress(onProgress)
	}
	return handle, nil
}

// mediaTypesByExt covers the media extensions the platform cares about;
// mime.TypeByExtension consults OS tables that may not know audio formats.
var mediaTypesByExt = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// DetectContentType resolves a MIME type from the filename extension, falling
// back to content sniffing.
func DetectContentType(filename string, data []byte) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if known, ok := mediaTypesByExt[ext]; ok {
			return known
		}
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			// Strip parameters such as "; charset=utf-8".
			if idx := strings.IndexByte(byExt, ';'); idx > 0 {
				byExt = byExt[:idx]
			}
			return strings.TrimSpace(byExt)
		}
	}
	if len(data) == 0 {
		return "application/octet-stream"
	}
	return http.DetectContentType(data)
}
