package platform

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"encore/internal/asset"
)

// filePart pairs a multipart field name with the handle whose payload fills
// it. Remote handles are never turned into parts; callers send their URLs as
// plain form fields instead.
type filePart struct {
	field  string
	handle asset.Handle
}

// encodeMultipart streams fields and file payloads through a pipe so handle
// progress callbacks fire while the request body is being written to the
// network, not while it is being assembled. The writer goroutine propagates
// its first failure through CloseWithError, which surfaces as the request
// error on the reading side.
func encodeMultipart(fields map[string]string, parts []filePart) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeMultipart(mw, fields, parts)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType()
}

func writeMultipart(mw *multipart.Writer, fields map[string]string, parts []filePart) error {
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return fmt.Errorf("write field %s: %w", name, err)
		}
	}
	for _, part := range parts {
		w, err := mw.CreatePart(partHeader(part))
		if err != nil {
			return fmt.Errorf("create part %s: %w", part.field, err)
		}
		if _, err := io.Copy(w, part.handle.Reader()); err != nil {
			return fmt.Errorf("copy part %s: %w", part.field, err)
		}
	}
	return nil
}

// partHeader builds the part headers by hand so the payload's real MIME type
// survives; multipart.CreateFormFile hardcodes application/octet-stream.
func partHeader(part filePart) textproto.MIMEHeader {
	filename := part.handle.Filename()
	if filename == "" {
		filename = part.field
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, part.field, escapeQuotes(filename)))
	contentType := part.handle.ContentType()
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	return h
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, `\"`).Replace(s)
}
