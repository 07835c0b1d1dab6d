package asset

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"encore/internal/services"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestEncodeFileRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("encore"), 512)
	path := writeFile(t, "track.mp3", payload)

	handle, err := NewEncoder(0).Encode(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	resolved, err := handle.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if !bytes.Equal(resolved, payload) {
		t.Fatal("encoded bytes differ from file contents")
	}
	if handle.Filename() != "track.mp3" {
		t.Errorf("filename mismatch: %q", handle.Filename())
	}
	if handle.ContentType() != "audio/mpeg" {
		t.Errorf("content type mismatch: %q", handle.ContentType())
	}
}

func TestEncodeEnforcesBufferCeiling(t *testing.T) {
	path := writeFile(t, "video.mp4", bytes.Repeat([]byte{0x01}, 4096))

	_, err := NewEncoder(1024).Encode(context.Background(), path, nil)
	if err == nil {
		t.Fatal("expected ceiling violation")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("ceiling violation should be a validation error, got %v", err)
	}
}

func TestEncodeCeilingDisabled(t *testing.T) {
	path := writeFile(t, "video.mp4", bytes.Repeat([]byte{0x01}, 4096))
	if _, err := NewEncoder(0).Encode(context.Background(), path, nil); err != nil {
		t.Fatalf("Encode with disabled cap failed: %v", err)
	}
}

func TestEncodeMissingFilePropagates(t *testing.T) {
	_, err := NewEncoder(0).Encode(context.Background(), filepath.Join(t.TempDir(), "absent.mp3"), nil)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, services.ErrEncode) {
		t.Fatalf("IO failure should be an encode error, got %v", err)
	}
}

func TestEncodeCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := writeFile(t, "a.mp3", []byte("x"))
	if _, err := NewEncoder(0).Encode(ctx, path, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEncodeAttachesProgress(t *testing.T) {
	path := writeFile(t, "a.flac", bytes.Repeat([]byte{7}, 2048))
	var last int
	handle, err := NewEncoder(0).Encode(context.Background(), path, func(p int) { last = p })
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if _, err := handle.Bytes(); err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	// Progress fires on transfer, not on encode.
	if last != 0 {
		t.Fatalf("progress should not fire before the handle is read, got %d", last)
	}
	drain(t, handle)
	if last != 100 {
		t.Fatalf("progress should end at 100 after transfer, got %d", last)
	}
}

func drain(t *testing.T, h Handle) {
	t.Helper()
	buf := make([]byte, 512)
	r := h.Reader()
	for {
		_, err := r.Read(buf)
		if err != nil {
			return
		}
	}
}

func TestDetectContentType(t *testing.T) {
	cases := []struct {
		filename string
		data     []byte
		want     string
	}{
		{"cover.png", nil, "image/png"},
		{"cover.jpg", nil, "image/jpeg"},
		{"audio.mp3", nil, "audio/mpeg"},
		{"noext", []byte("\x89PNG\r\n\x1a\n0000000000"), "image/png"},
		{"noext", nil, "application/octet-stream"},
	}
	for _, tc := range cases {
		if got := DetectContentType(tc.filename, tc.data); got != tc.want {
			t.Errorf("DetectContentType(%q): got %q, want %q", tc.filename, got, tc.want)
		}
	}
}
