package sync

import (
	"time"

	"github.com/montanaflynn/stats"

	"rovmesh/components"
	"rovmesh/config"
	"rovmesh/ecs"
	"rovmesh/ids"
)

type heartbeatAction int

const (
	heartbeatNone heartbeatAction = iota
	heartbeatSend
	heartbeatTimeout
)

// peerHeartbeat is one peer's ping/pong bookkeeping plus a rolling window
// of observed round-trip times, used to report a smoothed PingMillis
// instead of the single last sample (SPEC_FULL.md F.2's use of
// montanaflynn/stats for the latency and overrun percentile reporting the
// distilled spec only sketches).
type peerHeartbeat struct {
	lastSent    time.Time
	outstanding bool
	payload     uint32
	samples     []float64
}

const latencyWindow = 20

// heartbeatTracker owns every connected peer's heartbeat state. It is not
// safe for concurrent use; the sync Engine drives it exclusively from the
// main-loop goroutine.
type heartbeatTracker struct {
	peers map[ids.PeerToken]*peerHeartbeat
	next  uint32
}

func newHeartbeatTracker() *heartbeatTracker {
	return &heartbeatTracker{peers: make(map[ids.PeerToken]*peerHeartbeat)}
}

func (h *heartbeatTracker) register(token ids.PeerToken) {
	h.peers[token] = &peerHeartbeat{}
}

func (h *heartbeatTracker) forget(token ids.PeerToken) {
	delete(h.peers, token)
}

// tick reports what, if anything, should happen to token's heartbeat this
// pass: heartbeatSend once PingInterval has elapsed since the last ping (or
// none has been sent yet), heartbeatTimeout if an outstanding ping has
// exceeded MaxLatency, heartbeatNone otherwise.
func (h *heartbeatTracker) tick(token ids.PeerToken, now time.Time) heartbeatAction {
	p, ok := h.peers[token]
	if !ok {
		return heartbeatNone
	}

	if p.outstanding && now.Sub(p.lastSent) > config.MaxLatency {
		return heartbeatTimeout
	}
	if !p.outstanding && now.Sub(p.lastSent) >= config.PingInterval {
		return heartbeatSend
	}
	return heartbeatNone
}

func (h *heartbeatTracker) nextPayload(token ids.PeerToken) uint32 {
	p := h.peers[token]
	h.next++
	p.payload = h.next
	p.outstanding = true
	p.lastSent = time.Now()
	return p.payload
}

// onPong records a peer's acknowledgement and folds the observed
// round-trip time into its rolling sample window, then writes the
// smoothed median back onto the peer's Latency component.
func (h *heartbeatTracker) onPong(token ids.PeerToken, payload uint32, key ecs.EntityKey, w *ecs.World) {
	p, ok := h.peers[token]
	if !ok || !p.outstanding || payload != p.payload {
		return
	}
	p.outstanding = false

	rtt := time.Since(p.lastSent)
	p.samples = append(p.samples, float64(rtt.Milliseconds()))
	if len(p.samples) > latencyWindow {
		p.samples = p.samples[len(p.samples)-latencyWindow:]
	}

	median, err := stats.Median(p.samples)
	if err != nil {
		median = float64(rtt.Milliseconds())
	}

	lat, ok := ecs.Get[components.Latency](w, key)
	if !ok {
		lat = components.Latency{}
	}
	lat.LastAck = time.Now()
	lat.PingMillis = uint32(median)
	ecs.Insert(w, key, lat)
}
