package pwmout

import (
	"context"
	"sync"
	"testing"
	"time"

	"rovmesh/config"
)

type fakeDriver struct {
	mu       sync.Mutex
	channels map[uint8]time.Duration
	enabled  bool
	stopped  bool
	slept    bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{channels: make(map[uint8]time.Duration)}
}

func (f *fakeDriver) WriteChannel(channel uint8, pulse time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[channel] = pulse
	return nil
}

func (f *fakeDriver) SetOutputEnabled(enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = enabled
	return nil
}

func (f *fakeDriver) StopPulses() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakeDriver) Sleep() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slept = true
	return nil
}

func (f *fakeDriver) channel(ch uint8) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.channels[ch]
}

func (f *fakeDriver) isEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func TestArmBatchCompleteWritesChannel(t *testing.T) {
	driver := newFakeDriver()
	ctrl := NewController(driver)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ctrl.Run(ctx)
		close(done)
	}()

	ctrl.Send(Command{Kind: CmdArm, Armed: Armed})
	ctrl.Send(Command{Kind: CmdUpdateChannel, Channel: 3, Pulse: 1700 * time.Microsecond})
	ctrl.Send(Command{Kind: CmdBatchComplete})

	deadline := time.After(2 * time.Second)
	for {
		if driver.channel(3) == 1700*time.Microsecond && driver.isEnabled() {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for channel 3 to reach 1700us armed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done

	if !driver.stopped || !driver.slept {
		t.Fatal("expected shutdown sequence to stop and sleep the driver")
	}
}

func TestInactivityDisarms(t *testing.T) {
	driver := newFakeDriver()
	ctrl := NewController(driver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		ctrl.Run(ctx)
		close(done)
	}()

	ctrl.Send(Command{Kind: CmdArm, Armed: Armed})
	ctrl.Send(Command{Kind: CmdBatchComplete})

	time.Sleep(config.PwmInactivityTimeout + 4*config.PwmCycleInterval)

	if driver.isEnabled() {
		t.Fatal("expected driver to be disabled after inactivity timeout")
	}
	if got := driver.channel(0); got != config.DefaultPwmMicros {
		t.Fatalf("channel 0 = %v, want default %v", got, config.DefaultPwmMicros)
	}

	cancel()
	<-done
}
