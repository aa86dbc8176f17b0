//go:build linux

// Package transport is the framed TCP layer spec.md §4.2 describes: one
// background reactor thread multiplexing non-blocking sockets with
// readiness events, woken whenever the main thread enqueues outbound work.
//
// The teacher's tcp_server.go is a blocking net.Listen/Accept/goroutine-per-
// connection server — idiomatic for a server that only ever accepts
// inbound robot connections, but it can't express "one background I/O
// thread... wake handle... poll error sleeps 300ms and retries," which
// spec.md §4.2 requires verbatim from the original's mio-based reactor
// (original_source/networking/src/worker.rs). golang.org/x/sys/unix's
// epoll bindings are the direct Go equivalent of mio::Poll, and appear
// already in the retrieval pack (getployz-ployz uses x/sys for raw
// netlink work); this package repurposes the same package for its
// intended use, raw readiness-based I/O multiplexing.
package transport

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"rovmesh/collections"
	"rovmesh/config"
	"rovmesh/ids"
	"rovmesh/logging"
)

// pollErrorBackoff is spec.md §4.2/§5's "a poll error sleeps 300ms and
// retries."
const pollErrorBackoff = 300 * time.Millisecond

type peerState struct {
	fd        int
	token     ids.PeerToken
	addr      string
	connected bool // TCP connect completed, TCP_NODELAY applied
	writable  bool // last write did not return WouldBlock

	readBuf  Buffer
	writeBuf Buffer
}

type listenerState struct {
	fd   int
	addr string
}

// Reactor is the single background I/O thread. All socket state is owned
// exclusively by the goroutine running Run; every other goroutine only ever
// talks to it through Commands (in) and Events (out).
type Reactor struct {
	epfd   int
	wakeFD int

	commands *collections.BoundedQueue[Command]
	events   chan Event

	peersByFD    map[int]*peerState
	peersByToken map[ids.PeerToken]*peerState
	listeners    map[int]*listenerState
	nextToken    uint64

	closed bool
}

// NewReactor constructs a Reactor with its epoll instance and wake handle
// created, but not yet running — call Run to start the event loop.
func NewReactor() (*Reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("transport: epoll_create1: %w", err)
	}

	wakeFD, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("transport: eventfd: %w", err)
	}

	r := &Reactor{
		epfd:         epfd,
		wakeFD:       wakeFD,
		commands:     collections.NewBoundedQueue[Command](config.TransportQueueDepth),
		events:       make(chan Event, config.TransportQueueDepth),
		peersByFD:    make(map[int]*peerState),
		peersByToken: make(map[ids.PeerToken]*peerState),
		listeners:    make(map[int]*listenerState),
	}

	if err := r.epollAdd(wakeFD, unix.EPOLLIN); err != nil {
		unix.Close(wakeFD)
		unix.Close(epfd)
		return nil, err
	}

	return r, nil
}

// Events returns the channel the reactor delivers Connected/Accepted/Data/
// Disconnect/Error events on.
func (r *Reactor) Events() <-chan Event { return r.events }

// Enqueue submits a command without blocking; it reports false (spec.md
// §5's "Net channel full") if the bounded queue is already at capacity.
func (r *Reactor) Enqueue(cmd Command) bool {
	ok := r.commands.TryEnqueue(cmd)
	if ok {
		r.wake()
	}
	return ok
}

func (r *Reactor) wake() {
	var buf [8]byte
	buf[0] = 1
	unix.Write(r.wakeFD, buf[:])
}

func (r *Reactor) epollAdd(fd int, events uint32) error {
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{Fd: int32(fd), Events: events})
}

func (r *Reactor) epollMod(fd int, events uint32) error {
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{Fd: int32(fd), Events: events})
}

func (r *Reactor) epollDel(fd int) {
	unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Run is the reactor's whole life: it blocks in epoll_wait until Shutdown
// is processed or ctx is cancelled, draining in-flight packets before it
// returns (spec.md §5: "Cancellation = Shutdown message; drains in-flight
// packets, then exits").
func (r *Reactor) Run(ctx context.Context) error {
	defer r.closeAll()

	events := make([]unix.EpollEvent, 64)

	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := unix.EpollWait(r.epfd, events, 1000)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			r.deliver(Event{Kind: EvError, Err: fmt.Errorf("epoll_wait: %w", err)})
			time.Sleep(pollErrorBackoff)
			continue
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			flags := events[i].Events

			switch {
			case fd == r.wakeFD:
				r.drainWake()
				if r.drainCommands(ctx) {
					return nil // Shutdown processed
				}

			default:
				if ls, ok := r.listeners[fd]; ok {
					r.acceptLoop(ls)
					continue
				}
				if ps, ok := r.peersByFD[fd]; ok {
					r.servicePeer(ps, flags)
				}
			}
		}
	}
}

func (r *Reactor) drainWake() {
	var buf [8]byte
	for {
		_, err := unix.Read(r.wakeFD, buf[:])
		if err != nil {
			return
		}
	}
}

// drainCommands processes every queued command. Returns true once a
// Shutdown command has been handled.
func (r *Reactor) drainCommands(ctx context.Context) bool {
	for {
		cmd, ok := r.commands.TryDequeue()
		if !ok {
			return false
		}

		switch cmd.Kind {
		case CmdConnect:
			r.handleConnect(cmd.Addr)
		case CmdBind:
			r.handleBind(cmd.Addr)
		case CmdDisconnect:
			r.disconnectToken(cmd.Token, nil)
		case CmdPacket:
			r.sendToToken(cmd.Token, cmd.Payload)
		case CmdBroadcast:
			r.broadcast(cmd.Payload)
		case CmdShutdown:
			return true
		}
	}
}

func (r *Reactor) handleBind(addr string) {
	fd, err := bindListen(addr)
	if err != nil {
		r.deliver(Event{Kind: EvError, Err: fmt.Errorf("bind %s: %w", addr, err)})
		return
	}
	if err := r.epollAdd(fd, unix.EPOLLIN); err != nil {
		unix.Close(fd)
		r.deliver(Event{Kind: EvError, Err: err})
		return
	}
	r.listeners[fd] = &listenerState{fd: fd, addr: addr}
}

func (r *Reactor) acceptLoop(ls *listenerState) {
	for {
		fd, addr, err := acceptNonBlocking(ls.fd)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			// listener errors do not kill peers or the listener itself
			r.deliver(Event{Kind: EvError, Err: fmt.Errorf("accept: %w", err)})
			return
		}

		setNoDelay(fd)

		token := r.newToken()
		ps := &peerState{fd: fd, token: token, addr: addr, connected: true, writable: true}
		r.peersByFD[fd] = ps
		r.peersByToken[token] = ps

		if err := r.epollAdd(fd, unix.EPOLLIN|unix.EPOLLOUT); err != nil {
			r.dropPeer(ps, err)
			continue
		}

		r.deliver(Event{Kind: EvAccepted, Token: token, Addr: addr})
	}
}

func (r *Reactor) handleConnect(addr string) {
	fd, connected, err := connectNonBlocking(addr)
	if err != nil {
		r.deliver(Event{Kind: EvError, Err: fmt.Errorf("connect %s: %w", addr, err)})
		return
	}

	token := r.newToken()
	ps := &peerState{fd: fd, token: token, addr: addr, connected: connected, writable: true}
	r.peersByFD[fd] = ps
	r.peersByToken[token] = ps

	evMask := uint32(unix.EPOLLIN | unix.EPOLLOUT)
	if err := r.epollAdd(fd, evMask); err != nil {
		r.dropPeer(ps, err)
		return
	}

	if connected {
		setNoDelay(fd)
		r.deliver(Event{Kind: EvConnected, Token: token, Addr: addr})
	}
	// otherwise: connect is in progress; the first writable event below
	// finishes it (peer.rs's "writable event -> peer_addr()/connect() retry"
	// pattern).
}

func (r *Reactor) servicePeer(ps *peerState, flags uint32) {
	if flags&(unix.EPOLLHUP|unix.EPOLLERR) != 0 {
		r.dropPeer(ps, fmt.Errorf("transport: socket error/hangup"))
		return
	}

	if flags&unix.EPOLLOUT != 0 {
		if !ps.connected {
			if err := finishConnect(ps.fd); err != nil {
				r.dropPeer(ps, err)
				return
			}
			ps.connected = true
			setNoDelay(ps.fd)
			r.deliver(Event{Kind: EvConnected, Token: ps.token, Addr: ps.addr})
		}
		ps.writable = true
		r.flushWrites(ps)
	}

	if flags&unix.EPOLLIN != 0 {
		r.readLoop(ps)
	}
}

func (r *Reactor) readLoop(ps *peerState) {
	chunk := make([]byte, config.ReadChunkSize)
	for {
		n, err := unix.Read(ps.fd, chunk)
		if n > 0 {
			ps.readBuf.Append(chunk[:n])
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				break
			}
			r.dropPeer(ps, err)
			return
		}
		if n == 0 {
			r.dropPeer(ps, nil) // orderly close
			return
		}
		if n < len(chunk) {
			break
		}
	}

	for {
		payload, ok := tryDecodeFrame(&ps.readBuf)
		if !ok {
			break
		}
		r.deliver(Event{Kind: EvData, Token: ps.token, Payload: payload})
	}
}

func (r *Reactor) flushWrites(ps *peerState) {
	for ps.writeBuf.Len() > 0 {
		written := ps.writeBuf.Written()
		n, err := unix.Write(ps.fd, written)
		if n > 0 {
			ps.writeBuf.Consume(n)
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				ps.writable = false
				return
			}
			r.dropPeer(ps, err)
			return
		}
		if n < len(written) {
			ps.writable = false
			return
		}
	}
}

func (r *Reactor) sendToToken(token ids.PeerToken, payload []byte) {
	ps, ok := r.peersByToken[token]
	if !ok {
		return
	}
	r.sendToPeer(ps, payload)
}

func (r *Reactor) broadcast(payload []byte) {
	for _, ps := range r.peersByToken {
		r.sendToPeer(ps, payload)
	}
}

func (r *Reactor) sendToPeer(ps *peerState, payload []byte) {
	frame, err := encodeFrame(payload)
	if err != nil {
		r.deliver(Event{Kind: EvError, Token: ps.token, HasToken: true, Err: err})
		return
	}

	if ps.writeBuf.Len() == 0 && ps.writable && ps.connected {
		n, werr := unix.Write(ps.fd, frame)
		if werr == nil && n == len(frame) {
			return
		}
		if werr != nil && werr != unix.EAGAIN && werr != unix.EWOULDBLOCK {
			r.dropPeer(ps, werr)
			return
		}
		if n > 0 {
			frame = frame[n:]
		}
		ps.writable = false
	}

	ps.writeBuf.Append(frame)
}

func (r *Reactor) disconnectToken(token ids.PeerToken, cause error) {
	ps, ok := r.peersByToken[token]
	if !ok {
		return
	}
	r.dropPeer(ps, cause)
}

// dropPeer removes a peer from the reactor's tables and reports Disconnect
// (plus Error, if cause is non-nil) — any per-peer I/O error triggers
// Disconnect followed by removal, and never affects other peers (spec.md
// §4.2/§7).
func (r *Reactor) dropPeer(ps *peerState, cause error) {
	r.epollDel(ps.fd)
	unix.Close(ps.fd)
	delete(r.peersByFD, ps.fd)
	delete(r.peersByToken, ps.token)

	if cause != nil {
		r.deliver(Event{Kind: EvError, Token: ps.token, HasToken: true, Err: cause})
	}
	r.deliver(Event{Kind: EvDisconnect, Token: ps.token})
}

func (r *Reactor) closeAll() {
	for _, ps := range r.peersByFD {
		unix.Close(ps.fd)
	}
	for _, ls := range r.listeners {
		unix.Close(ls.fd)
	}
	unix.Close(r.wakeFD)
	unix.Close(r.epfd)
	close(r.events)
	r.closed = true
}

func (r *Reactor) deliver(ev Event) {
	select {
	case r.events <- ev:
	default:
		logging.DebugPrintWithPackage("transport", "event channel full, dropping %v", ev.Kind)
	}
}

func (r *Reactor) newToken() ids.PeerToken {
	r.nextToken++
	return ids.PeerToken(r.nextToken)
}
