package codec

import "testing"

func TestRoundTripScalars(t *testing.T) {
	w := NewWriter()
	w.WriteUvarint(1_000_000)
	w.WriteVarint(-12345)
	w.WriteU8(0xAB)
	w.WriteBool(true)
	w.WriteF32(3.5)
	w.WriteF64(-2.25)
	w.WriteU128(0x1122334455667788, 0x99AABBCCDDEEFF00)
	w.WriteString("robot.orientation")

	r := NewReader(w.Bytes())

	if v, err := r.ReadUvarint(); err != nil || v != 1_000_000 {
		t.Fatalf("ReadUvarint = %d, %v", v, err)
	}
	if v, err := r.ReadVarint(); err != nil || v != -12345 {
		t.Fatalf("ReadVarint = %d, %v", v, err)
	}
	if v, err := r.ReadU8(); err != nil || v != 0xAB {
		t.Fatalf("ReadU8 = %x, %v", v, err)
	}
	if v, err := r.ReadBool(); err != nil || v != true {
		t.Fatalf("ReadBool = %v, %v", v, err)
	}
	if v, err := r.ReadF32(); err != nil || v != 3.5 {
		t.Fatalf("ReadF32 = %v, %v", v, err)
	}
	if v, err := r.ReadF64(); err != nil || v != -2.25 {
		t.Fatalf("ReadF64 = %v, %v", v, err)
	}
	if lo, hi, err := r.ReadU128(); err != nil || lo != 0x1122334455667788 || hi != 0x99AABBCCDDEEFF00 {
		t.Fatalf("ReadU128 = %x %x, %v", lo, hi, err)
	}
	if s, err := r.ReadString(); err != nil || s != "robot.orientation" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("Remaining = %d, want 0", r.Remaining())
	}
}

func TestDeterministicEncoding(t *testing.T) {
	encode := func() []byte {
		w := NewWriter()
		w.WriteUvarint(42)
		w.WriteF32(1.5)
		w.WriteString("robot.sensors.depth")
		return w.Bytes()
	}

	a := encode()
	b := encode()

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("byte %d differs: %x vs %x", i, a[i], b[i])
		}
	}
}

func TestOptionRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteOption(true, func(w *Writer) { w.WriteUvarint(7) })
	w.WriteOption(false, func(w *Writer) { t.Fatal("should not be called") })

	r := NewReader(w.Bytes())

	var got uint64
	present, err := r.ReadOption(func(r *Reader) error {
		v, err := r.ReadUvarint()
		got = v
		return err
	})
	if err != nil || !present || got != 7 {
		t.Fatalf("first option: present=%v got=%d err=%v", present, got, err)
	}

	present, err = r.ReadOption(func(r *Reader) error {
		t.Fatal("should not be called")
		return nil
	})
	if err != nil || present {
		t.Fatalf("second option: present=%v err=%v, want false, nil", present, err)
	}
}

func TestReadUnexpectedEOF(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.ReadF64(); err == nil {
		t.Fatal("expected error reading past end of buffer")
	}
}
