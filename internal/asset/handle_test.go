package asset

import (
	"bytes"
	"io"
	"testing"
)

func TestBytesRoundTrip(t *testing.T) {
	payload := []byte("\x00\x01riff-like audio payload\xff\xfe")
	handle := FromBytes("track.wav", "audio/wav", payload)

	resolved, err := handle.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if !bytes.Equal(resolved, payload) {
		t.Fatal("resolved bytes differ from encoded bytes")
	}

	// The accessor returns a copy; mutating it must not corrupt the handle.
	resolved[0] = 'X'
	again, err := handle.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed on second resolve: %v", err)
	}
	if !bytes.Equal(again, payload) {
		t.Fatal("handle payload mutated through accessor copy")
	}
}

func TestRemoteHandleHasNoLocalBytes(t *testing.T) {
	handle := FromURL("https://cdn.example.com/artwork/abc.png")
	if !handle.Remote() {
		t.Fatal("URL-backed handle should report Remote")
	}
	if _, err := handle.Bytes(); err == nil {
		t.Fatal("Bytes should fail for URL-backed handles")
	}
	if handle.URL() != "https://cdn.example.com/artwork/abc.png" {
		t.Errorf("URL accessor mismatch: %q", handle.URL())
	}
}

func TestWithProgressDoesNotMutateOriginal(t *testing.T) {
	original := FromBytes("a.png", "image/png", []byte("png-bytes"))
	calls := 0
	decorated := original.WithProgress(func(int) { calls++ })

	if _, err := io.ReadAll(original.Reader()); err != nil {
		t.Fatalf("read original: %v", err)
	}
	if calls != 0 {
		t.Fatalf("original handle must not report progress, got %d calls", calls)
	}

	if _, err := io.ReadAll(decorated.Reader()); err != nil {
		t.Fatalf("read decorated: %v", err)
	}
	if calls == 0 {
		t.Fatal("decorated handle should report progress")
	}
}

func TestProgressMonotonicEndingAt100(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 10_000)
	var reported []int
	handle := FromBytes("audio.mp3", "audio/mpeg", payload).WithProgress(func(p int) {
		reported = append(reported, p)
	})

	// Small reads force many progress evaluations.
	r := handle.Reader()
	buf := make([]byte, 256)
	for {
		_, err := r.Read(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read: %v", err)
		}
	}

	if len(reported) == 0 {
		t.Fatal("no progress reported")
	}
	for i := 1; i < len(reported); i++ {
		if reported[i] < reported[i-1] {
			t.Fatalf("progress regressed: %d after %d", reported[i], reported[i-1])
		}
	}
	if last := reported[len(reported)-1]; last != 100 {
		t.Fatalf("final progress should be 100, got %d", last)
	}

	// Terminal state reached; further reads must not emit callbacks.
	before := len(reported)
	if _, err := r.Read(buf); err != io.EOF {
		t.Fatalf("expected EOF after completion, got %v", err)
	}
	if len(reported) != before {
		t.Fatal("progress reported after terminal state")
	}
}

func TestProgressReports100ForEmptyPayload(t *testing.T) {
	var reported []int
	handle := FromBytes("empty.bin", "application/octet-stream", nil).WithProgress(func(p int) {
		reported = append(reported, p)
	})
	if _, err := io.ReadAll(handle.Reader()); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(reported) != 1 || reported[0] != 100 {
		t.Fatalf("empty payload should report exactly [100], got %v", reported)
	}
}

func TestHandleIdentity(t *testing.T) {
	a := FromBytes("a", "application/octet-stream", []byte{1})
	b := FromBytes("a", "application/octet-stream", []byte{1})
	if a.ID() == "" || a.ID() == b.ID() {
		t.Error("handles should carry distinct non-empty identities")
	}
	if a.IsZero() {
		t.Error("byte-backed handle should not be zero")
	}
	if !(Handle{}).IsZero() {
		t.Error("zero handle should report IsZero")
	}
}
