package transport

import (
	"context"

	"rovmesh/ids"
)

// Transport is the public handle other packages hold: it owns the reactor
// goroutine and exposes spec.md §4.2's command surface (Connect, Bind,
// Send, Broadcast, Disconnect) plus the Events stream, without exposing
// any raw socket or epoll detail.
type Transport struct {
	reactor *Reactor
	done    chan struct{}
}

// Start creates a Transport and launches its reactor goroutine. The
// returned Transport is ready to accept commands immediately; Run exits
// once ctx is cancelled or Shutdown is called.
func Start(ctx context.Context) (*Transport, error) {
	r, err := NewReactor()
	if err != nil {
		return nil, err
	}

	t := &Transport{reactor: r, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		r.Run(ctx)
	}()
	return t, nil
}

// Events is the stream of Connected/Accepted/Data/Disconnect/Error events.
func (t *Transport) Events() <-chan Event { return t.reactor.Events() }

// Bind asks the reactor to open a listening socket on addr.
func (t *Transport) Bind(addr string) bool {
	return t.reactor.Enqueue(Command{Kind: CmdBind, Addr: addr})
}

// Connect asks the reactor to dial addr.
func (t *Transport) Connect(addr string) bool {
	return t.reactor.Enqueue(Command{Kind: CmdConnect, Addr: addr})
}

// Send queues payload for delivery to a single peer.
func (t *Transport) Send(token ids.PeerToken, payload []byte) bool {
	return t.reactor.Enqueue(Command{Kind: CmdPacket, Token: token, Payload: payload})
}

// Broadcast queues payload for delivery to every connected peer.
func (t *Transport) Broadcast(payload []byte) bool {
	return t.reactor.Enqueue(Command{Kind: CmdBroadcast, Payload: payload})
}

// Disconnect asks the reactor to drop a single peer.
func (t *Transport) Disconnect(token ids.PeerToken) bool {
	return t.reactor.Enqueue(Command{Kind: CmdDisconnect, Token: token})
}

// Shutdown asks the reactor to drain in-flight work and exit, then blocks
// until its goroutine has returned.
func (t *Transport) Shutdown() {
	t.reactor.Enqueue(Command{Kind: CmdShutdown})
	<-t.done
}
