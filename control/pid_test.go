package control

import "testing"

func TestPIDFirstUpdateHasNoDerivative(t *testing.T) {
	p := &PID{}
	res := p.Update(1.0, 1, 0, 5, 100, 0.1)
	if res.D != 0 {
		t.Fatalf("first update D = %v, want 0", res.D)
	}
}

func TestPIDIntegralClampsToMaxI(t *testing.T) {
	p := &PID{}
	for i := 0; i < 100; i++ {
		p.Update(10, 0, 1, 0, 2, 1)
	}
	if p.integral != 2 {
		t.Fatalf("integral = %v, want clamped to 2", p.integral)
	}
}

func TestPIDIntegralClampsNegative(t *testing.T) {
	p := &PID{}
	for i := 0; i < 100; i++ {
		p.Update(-10, 0, 1, 0, 2, 1)
	}
	if p.integral != -2 {
		t.Fatalf("integral = %v, want clamped to -2", p.integral)
	}
}

func TestPIDResetClearsState(t *testing.T) {
	p := &PID{}
	p.Update(5, 1, 1, 1, 100, 1)
	p.Reset()
	if p.integral != 0 || p.lastError != 0 || p.hasLast {
		t.Fatalf("Reset left state: %+v", p)
	}
	res := p.Update(5, 1, 0, 1, 100, 1)
	if res.D != 0 {
		t.Fatalf("first update after reset D = %v, want 0", res.D)
	}
}

func TestPIDZeroErrorHoldsSteady(t *testing.T) {
	p := &PID{}
	res := p.Update(0, 10, 5, 2, 100, 1)
	if res.Correction != 0 {
		t.Fatalf("Correction at zero error = %v, want 0", res.Correction)
	}
}
