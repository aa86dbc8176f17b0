package terminal

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"rovmesh/httpapi"
)

func TestStatusCommandRendersSnapshot(t *testing.T) {
	api := httpapi.New(":0")
	api.Publish(httpapi.Snapshot{Tick: 42, Status: "ready", Armed: true})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	console := New(addr, api)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go console.Start(ctx)

	var conn net.Conn
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err = net.Dial("tcp", addr)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if conn == nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	reader := bufio.NewReader(conn)
	readUntilPrompt(t, reader) // banner + help line

	if _, err := conn.Write([]byte("status\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := readUntilPrompt(t, reader)
	if !strings.Contains(out, "tick:") || !strings.Contains(out, "42") {
		t.Fatalf("status output missing tick: %q", out)
	}
	if !strings.Contains(out, "armed") {
		t.Fatalf("status output missing armed state: %q", out)
	}
}

// readUntilPrompt reads bytes until it sees the "> " prompt, returning
// everything read including the prompt.
func readUntilPrompt(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	var b strings.Builder
	buf := make([]byte, 1)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		n, err := r.Read(buf)
		if n > 0 {
			b.WriteByte(buf[0])
			if strings.HasSuffix(b.String(), "> ") {
				return b.String()
			}
		}
		if err != nil {
			break
		}
	}
	t.Fatalf("timed out waiting for prompt, got: %q", b.String())
	return b.String()
}
