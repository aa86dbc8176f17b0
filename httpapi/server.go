// Package httpapi is SPEC_FULL.md F.2's HTTP/websocket telemetry and
// control surface: a read-only status/peer view plus arm/disarm, and a
// websocket feed pushing live Snapshots to a connected dashboard — the
// concrete interface the out-of-scope GUI (spec.md §1) reads from.
//
// Grounded on the teacher's http_server package (chi.Mux wrapped in a
// small server type, routes split into their own file per resource,
// ListenAndServe raced against ctx.Done in Start) and its http_events
// subpackage for the per-client outbound-queue pattern (ws_client.go).
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"rovmesh/collections"
	"rovmesh/logging"
)

// Server is the HTTP/websocket telemetry and control surface. Safe for
// concurrent use: every exported method may be called from any goroutine,
// including the scheduler's own (Publish) and arbitrary HTTP handler
// goroutines (Snapshot, Commands' consumer).
type Server struct {
	router *chi.Mux
	srv    *http.Server

	snapshot atomic.Pointer[Snapshot]
	clients  *collections.SafeMap[string, *wsClient]

	cmds chan Command
}

// upgrader allows any origin, matching the teacher's http_server/robot.go
// stance (the dashboard is assumed to run off-host during development; the
// out-of-scope deployment layer is responsible for network-level
// restriction, spec.md §1).
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// New builds a Server listening on addr (":8080"-style) once Start runs.
func New(addr string) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		clients: collections.NewSafeMap[string, *wsClient](),
		cmds:    make(chan Command, commandQueueDepth),
	}
	s.srv = &http.Server{Addr: addr, Handler: s.router}
	s.routes()
	return s
}

// commandQueueDepth is deliberately small: arm/disarm requests are rare and
// a backlog past a handful means something downstream has stopped
// draining Commands() entirely.
const commandQueueDepth = 8

// Start runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully. Mirrors the teacher's http_server.Start race between
// ListenAndServe's error and ctx.Done.
func (s *Server) Start(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		logging.DebugPrintWithPackage("httpapi", "listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- fmt.Errorf("httpapi: serve: %w", err)
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeClients()
		return s.srv.Shutdown(shutdownCtx)
	}
}

// Publish hands the scheduler's latest built Snapshot to the server: it
// becomes the answer to GET /status and is fanned out to every connected
// websocket client. Call once per tick from PostUpdate, after
// BuildSnapshot — never from an HTTP handler goroutine.
func (s *Server) Publish(snap Snapshot) {
	s.snapshot.Store(&snap)
	s.clients.Range(func(_ string, c *wsClient) bool {
		c.push(snap)
		return true
	})
}

// Snapshot returns the last-published Snapshot, or ErrNoSnapshot before
// the first Publish.
func (s *Server) Snapshot() (Snapshot, error) {
	p := s.snapshot.Load()
	if p == nil {
		return Snapshot{}, ErrNoSnapshot
	}
	return *p, nil
}

func (s *Server) closeClients() {
	s.clients.Range(func(id string, c *wsClient) bool {
		c.close()
		return true
	})
}
