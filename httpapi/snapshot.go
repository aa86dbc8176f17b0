package httpapi

import (
	"time"

	"rovmesh/components"
	"rovmesh/ecs"
	"rovmesh/geom"
)

// PeerSnapshot is one connected peer's diagnostic state, read-only.
type PeerSnapshot struct {
	Addr       string  `json:"addr"`
	Role       string  `json:"role"`
	PingMillis uint32  `json:"ping_ms"`
	LastAckAgo float64 `json:"last_ack_seconds_ago"`
}

// Snapshot is the read-only state httpapi publishes to HTTP/websocket
// clients (SPEC_FULL.md F.2's "push live Orientation/Depth/RobotStatus/
// Latency snapshots to a connected GUI/dashboard" — this is the concrete
// struct that serializes to that payload). Built once per tick from the
// world on the scheduler's own goroutine (BuildSnapshot), then handed to
// Server.Publish, which is the only point where it crosses into the HTTP
// goroutines' world.
type Snapshot struct {
	Tick        uint64         `json:"tick"`
	Status      string         `json:"status"`
	StatusPct   float64        `json:"status_percent,omitempty"`
	Armed       bool           `json:"armed"`
	Orientation geom.Quat      `json:"orientation"`
	DepthMeters float64        `json:"depth_meters"`
	Voltage     float64        `json:"voltage"`
	Peers       []PeerSnapshot `json:"peers"`
	OverrunP99  time.Duration  `json:"overrun_p99_ns"`
}

var statusNames = map[components.RobotStatusKind]string{
	components.StatusNoPeer:   "no_peer",
	components.StatusDisarmed: "disarmed",
	components.StatusReady:    "ready",
	components.StatusMoving:   "moving",
}

var peerRoleNames = map[components.PeerRole]string{
	components.RoleAccepted:  "accepted",
	components.RoleConnected: "connected",
}

// BuildSnapshot reads every component BuildSnapshot cares about off world.
// Must only be called from the goroutine that owns world (the scheduler's
// PostUpdate stage — spec.md §5's single-writer rule for World extends to
// readers too, since the component stores use plain maps, not locks).
func BuildSnapshot(w *ecs.World, overrunP99 time.Duration) Snapshot {
	snap := Snapshot{Tick: w.Tick(), OverrunP99: overrunP99}

	robotKey, ok := firstWith[components.RobotMarker](w)
	if ok {
		if status, ok := ecs.Get[components.RobotStatus](w, robotKey); ok {
			snap.Status = statusNames[status.Kind]
			snap.StatusPct = status.Percent
		}
		if armed, ok := ecs.Get[components.ArmedComponent](w, robotKey); ok {
			snap.Armed = armed.State == components.Armed
		}
		if o, ok := ecs.Get[components.Orientation](w, robotKey); ok {
			snap.Orientation = o.Quat
		}
		if d, ok := ecs.Get[components.DepthFrame](w, robotKey); ok {
			snap.DepthMeters = d.Meters
		}
		if v, ok := ecs.Get[components.MeasuredVoltage](w, robotKey); ok {
			snap.Voltage = v.Volts
		}
	}

	now := time.Now()
	for _, key := range ecs.Query[components.Peer](w) {
		peer, ok := ecs.Get[components.Peer](w, key)
		if !ok {
			continue
		}
		ps := PeerSnapshot{Addr: peer.Addr, Role: peerRoleNames[peer.Role]}
		if lat, ok := ecs.Get[components.Latency](w, key); ok {
			ps.PingMillis = lat.PingMillis
			if !lat.LastAck.IsZero() {
				ps.LastAckAgo = now.Sub(lat.LastAck).Seconds()
			}
		}
		snap.Peers = append(snap.Peers, ps)
	}

	return snap
}

func firstWith[T any](w *ecs.World) (ecs.EntityKey, bool) {
	keys := ecs.Query[T](w)
	if len(keys) == 0 {
		return ecs.EntityKey{}, false
	}
	return keys[0], true
}
