package httpapi

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"rovmesh/collections"
	"rovmesh/logging"
)

// wsClient is one connected dashboard socket. Grounded on the teacher's
// http_server/http_events.EventsClient: a per-client outbound queue drained
// by a dedicated goroutine, so one slow browser tab never blocks the
// snapshot publisher or any other client. gorilla/websocket replaces the
// teacher's raw SSE body-writer since spec.md's dashboard is a two-way
// control surface, not a one-way event stream.
type wsClient struct {
	id    string
	conn  *websocket.Conn
	queue *collections.BoundedQueue[Snapshot]
	done  chan struct{}
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{
		id:    uuid.New().String(),
		conn:  conn,
		queue: collections.NewBoundedQueue[Snapshot](wsClientQueueDepth),
		done:  make(chan struct{}),
	}
}

// wsClientQueueDepth bounds how many unsent snapshots a slow client can
// accumulate before newer ones start getting dropped for it specifically —
// a dashboard only ever wants the latest state, not a backlog.
const wsClientQueueDepth = 4

func (c *wsClient) push(snap Snapshot) {
	if !c.queue.TryEnqueue(snap) {
		logging.DebugPrintWithPackage("httpapi", "ws client %s queue full, dropping snapshot", c.id)
	}
}

// run drains the client's queue onto its websocket connection until the
// connection errors or close() is called.
func (c *wsClient) run() {
	defer c.conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-c.done
		cancel()
	}()

	for {
		snap, ok := c.queue.Dequeue(ctx)
		if !ok {
			return
		}

		payload, err := json.Marshal(snap)
		if err != nil {
			logging.Warn("httpapi: marshal snapshot for ws client %s: %v", c.id, err)
			continue
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logging.DebugPrintWithPackage("httpapi", "ws client %s write failed: %v", c.id, err)
			return
		}
	}
}

func (c *wsClient) close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}
