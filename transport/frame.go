package transport

import (
	"encoding/binary"

	"rovmesh/config"
)

// encodeFrame prepends spec.md §4.2's 4-byte little-endian length header to
// payload.
func encodeFrame(payload []byte) ([]byte, error) {
	if len(payload) > config.MaxFrameLength {
		return nil, ErrOversizedPacket
	}
	frame := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[4:], payload)
	return frame, nil
}

// tryDecodeFrame checks whether buf currently holds a full header-plus-body
// frame; if so it returns the payload and consumes the frame from buf.
// Otherwise it returns ok=false without modifying buf — the caller should
// wait for more data to arrive.
func tryDecodeFrame(buf *Buffer) (payload []byte, ok bool) {
	written := buf.Written()
	if len(written) < 4 {
		return nil, false
	}

	length := binary.LittleEndian.Uint32(written[:4])
	if uint64(len(written)) < 4+uint64(length) {
		return nil, false
	}

	payload = make([]byte, length)
	copy(payload, written[4:4+length])
	buf.Consume(4 + int(length))
	return payload, true
}
