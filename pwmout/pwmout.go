// Package pwmout implements spec.md §4.7's PWM output state machine: a
// dedicated 100Hz thread that arms/disarms a PWM chip, assembles batches of
// channel updates, and disarms on inactivity. Grounded on
// original_source/robot/src/plugins/actuators/pwm.rs's Armed/Disarmed state
// machine and its channel-driven command surface (spec.md §5: "PWM thread:
// owns the PWM chip. Suspends only in sleep to maintain its 100Hz
// deadline").
package pwmout

import (
	"context"
	"time"

	"rovmesh/config"
	"rovmesh/logging"
)

// State is spec.md §4.7's two states.
type State int

const (
	Disarmed State = iota
	Armed
)

// Driver is the hardware boundary this package drives: the out-of-scope
// PWM chip peripheral (spec.md §1 — I2C/SPI device drivers appear to the
// core only as functions). WriteChannel sets one channel's pulse width for
// the next cycle; SetOutputEnabled toggles the chip's OE line; Sleep and
// Stop put the chip into its documented shutdown sequence.
type Driver interface {
	WriteChannel(channel uint8, pulse time.Duration) error
	SetOutputEnabled(enabled bool) error
	StopPulses() error
	Sleep() error
}

// CommandKind selects which Command variant is populated.
type CommandKind int

const (
	CmdArm CommandKind = iota
	CmdUpdateChannel
	CmdBatchComplete
	CmdShutdown
)

// Command is one entry in the PWM thread's bounded input queue (spec.md
// §4.7, 30 slots).
type Command struct {
	Kind    CommandKind
	Armed   State         // CmdArm
	Channel uint8         // CmdUpdateChannel
	Pulse   time.Duration // CmdUpdateChannel
}

// Controller owns the PWM chip and runs spec.md §4.7's state machine on its
// own goroutine, communicating only via Commands() (inbound) and the
// Driver it was built with (outbound to hardware). Not safe to share
// across goroutines beyond the one Run loop.
type Controller struct {
	driver Driver
	cmds   chan Command

	state     State
	live      map[uint8]time.Duration
	scratch   map[uint8]time.Duration
	batchOpen bool
	lastBatch time.Time
}

// NewController returns a Controller bound to driver, starting Disarmed.
func NewController(driver Driver) *Controller {
	return &Controller{
		driver:  driver,
		cmds:    make(chan Command, config.PwmChannelQueueDepth),
		live:    make(map[uint8]time.Duration),
		scratch: make(map[uint8]time.Duration),
	}
}

// Commands returns the raw bounded channel Run reads Commands from. A send
// on it blocks while the queue is full; Send is the non-blocking
// alternative, which drops the command and logs a warning instead (spec.md
// §5's "full queue is reported... and the offending frame is dropped"
// policy, applied here to PWM commands).
func (c *Controller) Commands() chan<- Command { return c.cmds }

// Send enqueues a command, returning false if the queue was full.
func (c *Controller) Send(cmd Command) bool {
	select {
	case c.cmds <- cmd:
		return true
	default:
		logging.Warn("pwmout: command queue full, dropping %v", cmd.Kind)
		return false
	}
}

// State returns the controller's current Armed/Disarmed state. Safe to
// call only from the Run goroutine or after Run has returned; callers
// needing the state from elsewhere should track it themselves from
// observed Commands.
func (c *Controller) State() State { return c.state }

// Run drives the state machine until ctx is cancelled or a CmdShutdown is
// received, writing every channel at config.PwmCycleInterval (spec.md
// §4.7's "every cycle (~10ms) write all 16 channels").
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(config.PwmCycleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return

		case cmd := <-c.cmds:
			if c.handle(cmd) {
				c.shutdown()
				return
			}

		case now := <-ticker.C:
			c.checkInactivity(now)
			c.writeCycle()
		}
	}
}

// handle applies one Command, returning true if the controller should
// shut down.
func (c *Controller) handle(cmd Command) bool {
	switch cmd.Kind {
	case CmdArm:
		if cmd.Armed == Armed {
			c.scratch = make(map[uint8]time.Duration)
			c.batchOpen = true
		} else {
			c.disarm()
		}

	case CmdUpdateChannel:
		if c.batchOpen {
			c.scratch[cmd.Channel] = cmd.Pulse
		}

	case CmdBatchComplete:
		if c.batchOpen {
			c.live = c.scratch
			c.batchOpen = false
			c.lastBatch = time.Now()
			c.arm()
		}

	case CmdShutdown:
		return true
	}
	return false
}

func (c *Controller) arm() {
	if c.state == Armed {
		return
	}
	c.state = Armed
	if err := c.driver.SetOutputEnabled(true); err != nil {
		logging.Warn("pwmout: enable output: %v", err)
	}
}

func (c *Controller) disarm() {
	c.state = Disarmed
	c.live = make(map[uint8]time.Duration)
	if err := c.driver.SetOutputEnabled(false); err != nil {
		logging.Warn("pwmout: disable output: %v", err)
	}
}

// checkInactivity implements spec.md §4.7's watchdog: if Armed and no
// BatchComplete has landed within config.PwmInactivityTimeout, disarm and
// warn (spec.md §7: "forces a state transition... and logs at warn
// level").
func (c *Controller) checkInactivity(now time.Time) {
	if c.state != Armed {
		return
	}
	if now.Sub(c.lastBatch) > config.PwmInactivityTimeout {
		logging.Warn("pwmout: no batch in %s, disarming", config.PwmInactivityTimeout)
		c.disarm()
	}
}

// writeCycle writes every one of config.PwmChannelCount channels, defaulting
// to config.DefaultPwmMicros for any channel not in the live map (spec.md
// §4.7).
func (c *Controller) writeCycle() {
	for ch := uint8(0); ch < config.PwmChannelCount; ch++ {
		pulse, ok := c.live[ch]
		if !ok || c.state != Armed {
			pulse = config.DefaultPwmMicros
		}
		if err := c.driver.WriteChannel(ch, pulse); err != nil {
			logging.Warn("pwmout: write channel %d: %v", ch, err)
		}
	}
}

// shutdown runs spec.md §4.7's shutdown sequence: stopped pulses, then
// disabled, then sleep.
func (c *Controller) shutdown() {
	if err := c.driver.StopPulses(); err != nil {
		logging.Warn("pwmout: stop pulses: %v", err)
	}
	c.disarm()
	if err := c.driver.Sleep(); err != nil {
		logging.Warn("pwmout: sleep: %v", err)
	}
}
