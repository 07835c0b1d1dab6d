package asset

import (
	"bytes"
	"errors"
	"io"

	"github.com/google/uuid"
)

// ProgressFunc receives transfer progress as an integer percentage 0..100.
type ProgressFunc func(percent int)

// Handle is an opaque reference to a binary payload (image, audio, or video),
// resolvable to raw bytes or to a directly fetchable URL.
type Handle struct {
	id          string
	filename    string
	contentType string
	data        []byte
	remoteURL   string
	onProgress  ProgressFunc
}

// FromBytes constructs a handle backed by the supplied bytes.
func FromBytes(filename, contentType string, data []byte) Handle {
	return Handle{
		id:          uuid.NewString(),
		filename:    filename,
		contentType: contentType,
		data:        data,
	}
}

// FromURL constructs a handle referencing a payload the platform already
// stores. Its bytes are not available locally.
func FromURL(remoteURL string) Handle {
	return Handle{id: uuid.NewString(), remoteURL: remoteURL}
}

// WithProgress returns a new handle whose reader reports transfer progress
// through fn. The receiver is not mutated.
func (h Handle) WithProgress(fn ProgressFunc) Handle {
	decorated := h
	decorated.onProgress = fn
	return decorated
}

// ID returns the handle's client-side identity.
func (h Handle) ID() string { return h.id }

// Filename returns the original file name, if any.
func (h Handle) Filename() string { return h.filename }

// ContentType returns the payload MIME type, if known.
func (h Handle) ContentType() string { return h.contentType }

// Size returns the payload length in bytes for byte-backed handles.
func (h Handle) Size() int64 { return int64(len(h.data)) }

// Remote reports whether the handle references platform-stored bytes.
func (h Handle) Remote() bool { return h.remoteURL != "" }

// URL returns the directly fetchable URL for remote handles.
func (h Handle) URL() string { return h.remoteURL }

// IsZero reports whether the handle carries neither bytes nor a URL.
func (h Handle) IsZero() bool { return h.data == nil && h.remoteURL == "" }

// Bytes resolves the handle to its raw payload. Remote handles must be
// fetched through the platform client instead.
func (h Handle) Bytes() ([]byte, error) {
	if h.Remote() {
		return nil, errors.New("handle is URL-backed; fetch it through the platform client")
	}
	if h.data == nil {
		return nil, errors.New("handle carries no payload")
	}
	out := make([]byte, len(h.data))
	copy(out, h.data)
	return out, nil
}

// Reader returns a reader over the payload. When the handle was decorated
// with a progress callback, reads report percentages through it.
func (h Handle) Reader() io.Reader {
	r := bytes.NewReader(h.data)
	if h.onProgress == nil {
		return r
	}
	return &progressReader{r: r, total: int64(len(h.data)), fn: h.onProgress}
}

// progressReader reports monotonically non-decreasing percentages while the
// underlying payload is consumed, ending at 100 exactly once. Nothing is
// reported after a terminal state.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	last  int
	done  bool
	fn    ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.read += int64(n)
		p.report()
	}
	switch {
	case errors.Is(err, io.EOF):
		p.finish()
	case err != nil:
		p.done = true
	}
	return n, err
}

func (p *progressReader) report() {
	if p.done || p.fn == nil || p.total <= 0 {
		return
	}
	pct := int(p.read * 100 / p.total)
	if pct > 100 {
		pct = 100
	}
	if pct > p.last {
		p.last = pct
		p.fn(pct)
	}
}

func (p *progressReader) finish() {
	if p.done {
		return
	}
	p.done = true
	if p.fn != nil && p.last < 100 {
		p.last = 100
		p.fn(100)
	}
}
