package transport

import (
	"bytes"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	payload := []byte("ecs update payload")

	encoded, err := encodeFrame(payload)
	if err != nil {
		t.Fatalf("encodeFrame: %v", err)
	}

	var buf Buffer
	buf.Append(encoded)

	got, ok := tryDecodeFrame(&buf)
	if !ok {
		t.Fatalf("tryDecodeFrame reported no frame available")
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("tryDecodeFrame = %q, want %q", got, payload)
	}
	if buf.Len() != 0 {
		t.Fatalf("buffer should be fully consumed, Len() = %d", buf.Len())
	}
}

func TestFrameIncompleteHeaderWaits(t *testing.T) {
	var buf Buffer
	buf.Append([]byte{1, 2})

	_, ok := tryDecodeFrame(&buf)
	if ok {
		t.Fatalf("expected incomplete header to report not-ready")
	}
	if buf.Len() != 2 {
		t.Fatalf("partial frame should not be consumed")
	}
}

func TestFrameIncompleteBodyWaits(t *testing.T) {
	payload := []byte("a longer payload body")
	encoded, err := encodeFrame(payload)
	if err != nil {
		t.Fatalf("encodeFrame: %v", err)
	}

	var buf Buffer
	buf.Append(encoded[:len(encoded)-3]) // withhold the last few bytes

	_, ok := tryDecodeFrame(&buf)
	if ok {
		t.Fatalf("expected incomplete body to report not-ready")
	}
}

func TestFrameMultipleFramesInOneBuffer(t *testing.T) {
	a, _ := encodeFrame([]byte("first"))
	b, _ := encodeFrame([]byte("second"))

	var buf Buffer
	buf.Append(a)
	buf.Append(b)

	got1, ok := tryDecodeFrame(&buf)
	if !ok || string(got1) != "first" {
		t.Fatalf("first frame = %q, ok=%v", got1, ok)
	}
	got2, ok := tryDecodeFrame(&buf)
	if !ok || string(got2) != "second" {
		t.Fatalf("second frame = %q, ok=%v", got2, ok)
	}
}
