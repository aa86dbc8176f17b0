// Package scheduler is spec.md §5's main cooperative scheduler: a
// single-threaded, fixed-rate tick driver that runs PreUpdate/Update/
// PostUpdate/Last in that order every tick, plus the side-thread lifecycle
// and coordinated shutdown spec.md §5 describes ("each hardware device has
// exactly one owning thread... only bounded channels cross thread
// boundaries"). Grounded on the teacher's main.go WaitGroup/context
// shutdown shape, reworked onto golang.org/x/sync/errgroup so the first
// side-thread failure cancels every other one (SPEC_FULL.md F.2 — the
// teacher's own bare sync.WaitGroup can't do that).
package scheduler

import (
	"context"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"rovmesh/config"
	"rovmesh/ecs"
	"rovmesh/logging"
)

// Stage is one system the scheduler runs once per tick, given the tick's
// elapsed time in seconds. A returned error is funnelled into the
// scheduler's error channel (spec.md §7: "per-tick systems... funnel their
// error into a central error channel that the logger drains in Last"), not
// returned to the caller directly.
type Stage func(dt float64) error

// Scheduler drives one World through spec.md §5's four ordered stages at
// config.TickRate, and owns the side-thread errgroup every hardware/socket
// thread joins.
type Scheduler struct {
	world *ecs.World

	preUpdate  []Stage
	update     []Stage
	postUpdate []Stage

	errs chan error

	overrunSamples []float64
	lastTick       time.Time
}

// New builds a Scheduler bound to world. Stages are added with
// AddPreUpdate/AddUpdate/AddPostUpdate before calling Run.
func New(world *ecs.World) *Scheduler {
	return &Scheduler{
		world: world,
		errs:  make(chan error, 64),
	}
}

// AddPreUpdate registers a stage run in PreUpdate (spec.md §5.1: "drain
// transport inbound queue; apply sync changes to world").
func (s *Scheduler) AddPreUpdate(stage Stage) { s.preUpdate = append(s.preUpdate, stage) }

// AddUpdate registers a stage run in Update, in the order added (spec.md
// §5.2: "run input, control-loop, and accumulator stages in topological
// order" — callers are responsible for adding them in that order).
func (s *Scheduler) AddUpdate(stage Stage) { s.update = append(s.update, stage) }

// AddPostUpdate registers a stage run in PostUpdate (spec.md §5.3: "run
// change detection; broadcast outbound events").
func (s *Scheduler) AddPostUpdate(stage Stage) { s.postUpdate = append(s.postUpdate, stage) }

// Run drives the tick loop at config.TickRate until ctx is cancelled.
// Every stage error is recorded, logged during Last, and does not stop the
// tick loop (spec.md §7: a per-tick error is not process-fatal).
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(config.TickInterval)
	defer ticker.Stop()

	s.lastTick = time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.runTick(now)
		}
	}
}

func (s *Scheduler) runTick(now time.Time) {
	dt := now.Sub(s.lastTick).Seconds()
	if dt <= 0 {
		dt = config.TickInterval.Seconds()
	}
	s.lastTick = now

	s.world.Advance()

	s.runStages(s.preUpdate, dt)
	s.runStages(s.update, dt)
	s.runStages(s.postUpdate, dt)

	s.last(now, dt)
}

func (s *Scheduler) runStages(stages []Stage, dt float64) {
	for _, stage := range stages {
		if err := stage(dt); err != nil {
			s.reportError(err)
		}
	}
}

func (s *Scheduler) reportError(err error) {
	select {
	case s.errs <- err:
	default:
		logging.Warn("scheduler: error channel full, dropping: %v", err)
	}
}

// last runs spec.md §5.4's Last stage: the overrun detector and draining
// the tick's error channel.
func (s *Scheduler) last(now time.Time, dt float64) {
	elapsed := time.Since(now)
	s.recordOverrun(elapsed)

	if elapsed > config.OverrunThreshold {
		logging.Warn("scheduler: tick overran by %s (threshold %s)", elapsed-config.OverrunThreshold, config.OverrunThreshold)
	}

	s.drainErrors()
}

const overrunWindow = 100

// recordOverrun folds elapsed into a rolling window of the last
// overrunWindow tick durations; it logs nothing itself — OverrunP99 reads
// the p99 from this window via montanaflynn/stats (SPEC_FULL.md F.2:
// "rolling tick-duration percentiles for the overrun detector").
func (s *Scheduler) recordOverrun(elapsed time.Duration) {
	s.overrunSamples = append(s.overrunSamples, float64(elapsed.Microseconds()))
	if len(s.overrunSamples) > overrunWindow {
		s.overrunSamples = s.overrunSamples[len(s.overrunSamples)-overrunWindow:]
	}
}

// OverrunP99 returns the rolling window's 99th-percentile tick duration,
// for telemetry (httpapi/terminal). Returns 0 with no samples yet.
func (s *Scheduler) OverrunP99() time.Duration {
	if len(s.overrunSamples) == 0 {
		return 0
	}
	p, err := stats.Percentile(s.overrunSamples, 99)
	if err != nil {
		return 0
	}
	return time.Duration(p) * time.Microsecond
}

func (s *Scheduler) drainErrors() {
	for {
		select {
		case err := <-s.errs:
			logging.Warn("scheduler: tick error: %v", err)
		default:
			return
		}
	}
}

// SideGroup returns an errgroup.Group bound to a derived context: every
// side thread (transport, pwmout, sensor readers) should be launched via
// g.Go so the first one to return a non-nil error cancels gctx, which in
// turn should be the ctx passed to Scheduler.Run — a single failing side
// thread brings the whole process down for a clean restart rather than
// running in a partially-failed state (spec.md §5: side threads own their
// hardware/socket and communicate only by bounded channels; a dead owner
// means that channel's other end is talking to nobody).
func SideGroup(ctx context.Context) (*errgroup.Group, context.Context) {
	return errgroup.WithContext(ctx)
}
