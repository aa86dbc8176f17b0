package sync

import (
	"time"

	"rovmesh/components"
	"rovmesh/ecs"
	"rovmesh/ids"
	"rovmesh/logging"
	"rovmesh/protocol"
	"rovmesh/transport"
)

// Engine is spec.md §4.4's sync engine: it drives a World's change tracker
// from a Transport's Event stream, replays the delta snapshot to every
// newly connected peer, and runs the ping/pong heartbeat.
//
// Grounded on original_source/networking/src/lib.rs's top-level
// accept/connect/disconnect dispatch and common/src/sync.rs's
// "broadcast_changes then handle Ping/Pong" tick loop.
type Engine struct {
	world     *ecs.World
	tracker   *ecs.Tracker
	transport *transport.Transport

	outbound *Snapshot

	peerEntities map[ids.PeerToken]ecs.EntityKey
	heartbeats   *heartbeatTracker
}

// NewEngine builds an Engine over an already-running Transport and a
// World whose Tracker will drive replication.
func NewEngine(world *ecs.World, tracker *ecs.Tracker, t *transport.Transport) *Engine {
	return &Engine{
		world:        world,
		tracker:      tracker,
		transport:    t,
		outbound:     NewSnapshot(),
		peerEntities: make(map[ids.PeerToken]ecs.EntityKey),
		heartbeats:   newHeartbeatTracker(),
	}
}

// HandleEvent processes one transport.Event. Called from the main-loop
// goroutine, never concurrently with World mutation elsewhere (spec.md §5).
func (e *Engine) HandleEvent(ev transport.Event) {
	switch ev.Kind {
	case transport.EvAccepted:
		e.onConnect(ev.Token, ev.Addr, components.RoleAccepted)
	case transport.EvConnected:
		e.onConnect(ev.Token, ev.Addr, components.RoleConnected)
	case transport.EvData:
		e.onData(ev.Token, ev.Payload)
	case transport.EvDisconnect:
		e.onDisconnect(ev.Token)
	case transport.EvError:
		if ev.HasToken {
			logging.Warn("sync: peer %d socket error: %v", ev.Token, ev.Err)
		} else {
			logging.Warn("sync: transport error: %v", ev.Err)
		}
	}
}

func (e *Engine) onConnect(token ids.PeerToken, addr string, role components.PeerRole) {
	key := e.world.Spawn()
	if err := ecs.Insert(e.world, key, components.Peer{Addr: addr, Token: uint64(token), Role: role}); err != nil {
		logging.Warn("sync: insert Peer for %d: %v", token, err)
	}
	if err := ecs.Insert(e.world, key, components.Latency{}); err != nil {
		logging.Warn("sync: insert Latency for %d: %v", token, err)
	}
	e.peerEntities[token] = key
	e.heartbeats.register(token)

	for _, change := range e.outbound.Replay() {
		e.sendTo(token, change)
	}
}

func (e *Engine) onDisconnect(token ids.PeerToken) {
	if key, ok := e.peerEntities[token]; ok {
		e.world.Despawn(key)
		delete(e.peerEntities, token)
	}
	e.tracker.DespawnForeignOwnedBy(token)
	e.heartbeats.forget(token)
}

func (e *Engine) onData(token ids.PeerToken, payload []byte) {
	msg, err := protocol.Decode(payload)
	if err != nil {
		logging.Warn("sync: malformed frame from %d: %v", token, err)
		return
	}

	switch msg.Kind {
	case protocol.EcsUpdate:
		if err := e.tracker.ApplyInbound(msg.Change, token); err != nil {
			logging.Warn("sync: apply inbound from %d: %v", token, err)
		}
	case protocol.Ping:
		e.transport.Send(token, protocol.Encode(protocol.NewPong(msg.Payload)))
	case protocol.Pong:
		e.heartbeats.onPong(token, msg.Payload, e.peerEntities[token], e.world)
	}
}

// Broadcast detects every outbound change since the last call, folds it
// into the replay snapshot, and sends it to every connected peer. Called
// once per tick from PostUpdate (SPEC_FULL.md F.4).
func (e *Engine) Broadcast() {
	changes := e.tracker.DetectChanges()
	for _, change := range changes {
		e.outbound.Fold(change)
		e.transport.Broadcast(protocol.Encode(protocol.NewEcsUpdate(change)))
	}
}

// Heartbeat sends a Ping to every peer due for one and disconnects any peer
// whose outstanding ping has exceeded the latency timeout. Called once per
// tick (SPEC_FULL.md F.4), independent of Broadcast's cadence.
func (e *Engine) Heartbeat(now time.Time) {
	for token, key := range e.peerEntities {
		switch e.heartbeats.tick(token, now) {
		case heartbeatSend:
			payload := e.heartbeats.nextPayload(token)
			e.transport.Send(token, protocol.Encode(protocol.NewPing(payload)))
			if lat, ok := ecs.Get[components.Latency](e.world, key); ok {
				lat.LastPingSent = now
				ecs.Insert(e.world, key, lat)
			}
		case heartbeatTimeout:
			logging.Warn("sync: peer %d exceeded max latency, disconnecting", token)
			e.transport.Disconnect(token)
		}
	}
}

func (e *Engine) sendTo(token ids.PeerToken, change protocol.SerializedChange) {
	e.transport.Send(token, protocol.Encode(protocol.NewEcsUpdate(change)))
}
