// Package codec implements the canonical compact binary encoding spec.md
// §4.1/§9 calls for: variable-length integers, fixed-endian (little-endian)
// floats, length-prefixed sequences and strings. It is a small,
// reflection-free module by design — spec.md's own design notes say so
// explicitly ("Bincode-style encoding... do not depend on any language's
// reflection") — so every registered token type writes an explicit
// Marshal/Unmarshal pair against this package rather than relying on struct
// tags or generic reflection-based serialization.
//
// Encoding is deterministic: encoding the same value twice produces
// bit-identical bytes.
package codec

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// ErrOversizedPacket names an oversized length-prefixed field (the codec
// counterpart of spec.md §4.2's OversizedPacket for frame payloads). No
// function in this package returns it: Writer.WriteBytes has no error
// result and writes any length; frame-size limits are enforced by the
// transport package's own ErrOversizedPacket.
var ErrOversizedPacket = errors.New("codec: oversized field")

// Writer accumulates an encoded byte stream.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte { return w.buf }

// WriteUvarint appends v as an LEB128 variable-length unsigned integer.
func (w *Writer) WriteUvarint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf = append(w.buf, tmp[:n]...)
}

// WriteVarint appends v as a zig-zag encoded variable-length signed integer.
func (w *Writer) WriteVarint(v int64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], v)
	w.buf = append(w.buf, tmp[:n]...)
}

// WriteU8 appends a single byte.
func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteBool appends a single byte: 1 for true, 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(1)
	} else {
		w.WriteU8(0)
	}
}

// WriteF32 appends v as 4 little-endian bytes.
func (w *Writer) WriteF32(v float32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(v))
	w.buf = append(w.buf, tmp[:]...)
}

// WriteF64 appends v as 8 little-endian bytes.
func (w *Writer) WriteF64(v float64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	w.buf = append(w.buf, tmp[:]...)
}

// WriteU128 appends v (given as two 64-bit halves, low then high) as 16
// little-endian bytes, matching spec.md §6's NetId = u128 little-endian.
func (w *Writer) WriteU128(lo, hi uint64) {
	var tmp [16]byte
	binary.LittleEndian.PutUint64(tmp[0:8], lo)
	binary.LittleEndian.PutUint64(tmp[8:16], hi)
	w.buf = append(w.buf, tmp[:]...)
}

// WriteBytes appends a varint length prefix followed by b.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteUvarint(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteString appends a varint length prefix followed by the UTF-8 bytes
// of s (used for tokens, per spec.md §6: "token = varint length + UTF-8
// bytes").
func (w *Writer) WriteString(s string) {
	w.WriteBytes([]byte(s))
}

// WriteOption writes the presence tag (0=None, 1=Some) and, if present,
// calls writeValue to encode the payload.
func (w *Writer) WriteOption(present bool, writeValue func(*Writer)) {
	w.WriteBool(present)
	if present {
		writeValue(w)
	}
}

// Reader decodes a byte stream written by Writer.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps b for decoding.
func NewReader(b []byte) *Reader { return &Reader{buf: b} }

// Remaining reports how many bytes are left unread.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) ensure(n int) error {
	if r.Remaining() < n {
		return io.ErrUnexpectedEOF
	}
	return nil
}

// ReadUvarint decodes an LEB128 variable-length unsigned integer.
func (r *Reader) ReadUvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.pos:])
	if n <= 0 {
		return 0, io.ErrUnexpectedEOF
	}
	r.pos += n
	return v, nil
}

// ReadVarint decodes a zig-zag encoded variable-length signed integer.
func (r *Reader) ReadVarint() (int64, error) {
	v, n := binary.Varint(r.buf[r.pos:])
	if n <= 0 {
		return 0, io.ErrUnexpectedEOF
	}
	r.pos += n
	return v, nil
}

func (r *Reader) ReadU8() (uint8, error) {
	if err := r.ensure(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadU8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (r *Reader) ReadF32() (float32, error) {
	if err := r.ensure(4); err != nil {
		return 0, err
	}
	bits := binary.LittleEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return math.Float32frombits(bits), nil
}

func (r *Reader) ReadF64() (float64, error) {
	if err := r.ensure(8); err != nil {
		return 0, err
	}
	bits := binary.LittleEndian.Uint64(r.buf[r.pos : r.pos+8])
	r.pos += 8
	return math.Float64frombits(bits), nil
}

// ReadU128 returns the 128-bit value as (lo, hi) 64-bit halves.
func (r *Reader) ReadU128() (lo, hi uint64, err error) {
	if err = r.ensure(16); err != nil {
		return 0, 0, err
	}
	lo = binary.LittleEndian.Uint64(r.buf[r.pos : r.pos+8])
	hi = binary.LittleEndian.Uint64(r.buf[r.pos+8 : r.pos+16])
	r.pos += 16
	return lo, hi, nil
}

func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if err := r.ensure(int(n)); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.buf[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return b, nil
}

func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadOption reads the presence tag and, if set, calls readValue to decode
// the payload.
func (r *Reader) ReadOption(readValue func(*Reader) error) (present bool, err error) {
	present, err = r.ReadBool()
	if err != nil || !present {
		return present, err
	}
	return true, readValue(r)
}
