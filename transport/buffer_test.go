package transport

import (
	"bytes"
	"testing"
)

func TestBufferAppendConsume(t *testing.T) {
	var buf Buffer
	buf.Append([]byte("hello"))
	buf.Append([]byte(" world"))

	if got := buf.Written(); !bytes.Equal(got, []byte("hello world")) {
		t.Fatalf("Written() = %q", got)
	}

	buf.Consume(6)
	if got := buf.Written(); !bytes.Equal(got, []byte("world")) {
		t.Fatalf("Written() after consume = %q", got)
	}
}

func TestBufferCompactsAfterHalfConsumed(t *testing.T) {
	var buf Buffer
	buf.Append(bytes.Repeat([]byte{0xAB}, 100))
	buf.Consume(60)

	if buf.read != 0 {
		t.Fatalf("expected buffer to compact, read cursor = %d", buf.read)
	}
	if buf.Len() != 40 {
		t.Fatalf("Len() after compaction = %d, want 40", buf.Len())
	}
}

func TestBufferReset(t *testing.T) {
	var buf Buffer
	buf.Append([]byte("data"))
	buf.Reset()

	if buf.Len() != 0 {
		t.Fatalf("Len() after reset = %d, want 0", buf.Len())
	}
}
