// Package protocol implements the wire tagged-union spec.md §6 defines:
// Protocol (EcsUpdate/Ping/Pong) wrapping SerializedChange
// (EntitySpawned/EntityDespawned/ComponentUpdated/ResourceUpdated/EventEmitted).
// Every encode/decode here is written against codec.Writer/Reader directly,
// per spec.md's "do not depend on any language's reflection" design note.
package protocol

import (
	"fmt"

	"rovmesh/codec"
	"rovmesh/ids"
)

// Change tags, fixed by spec.md §6.
const (
	changeEntitySpawned    = 0
	changeEntityDespawned  = 1
	changeComponentUpdated = 2
	changeResourceUpdated  = 3
	changeEventEmitted     = 4
)

// Protocol message tags. Not specified numerically by spec.md (only the
// SerializedChange tags are pinned); kept stable here once assigned.
const (
	protoEcsUpdate = 0
	protoPing      = 1
	protoPong      = 2
)

// SerializedChange is the tagged union spec.md §6 names SerializedChange.
// Exactly one of the Entity*/Component*/Resource*/Event* field groups is
// meaningful, selected by Kind.
type SerializedChange struct {
	Kind ChangeKind

	NetId ids.NetId // EntitySpawned, EntityDespawned, ComponentUpdated

	Token string // ComponentUpdated, ResourceUpdated, EventEmitted

	// Data is the Option<bytes> payload for ComponentUpdated/ResourceUpdated
	// (nil means None — a removal), and the bytes payload for EventEmitted.
	Data []byte
}

// ChangeKind selects which SerializedChange variant is populated.
type ChangeKind int

const (
	EntitySpawned ChangeKind = iota
	EntityDespawned
	ComponentUpdated
	ResourceUpdated
	EventEmitted
)

// NewEntitySpawned builds the EntitySpawned(NetId) variant.
func NewEntitySpawned(id ids.NetId) SerializedChange {
	return SerializedChange{Kind: EntitySpawned, NetId: id}
}

// NewEntityDespawned builds the EntityDespawned(NetId) variant.
func NewEntityDespawned(id ids.NetId) SerializedChange {
	return SerializedChange{Kind: EntityDespawned, NetId: id}
}

// NewComponentUpdated builds ComponentUpdated(NetId, token, Option<bytes>).
// data == nil means a removal (None).
func NewComponentUpdated(id ids.NetId, tok string, data []byte) SerializedChange {
	return SerializedChange{Kind: ComponentUpdated, NetId: id, Token: tok, Data: data}
}

// NewResourceUpdated builds ResourceUpdated(token, Option<bytes>).
func NewResourceUpdated(tok string, data []byte) SerializedChange {
	return SerializedChange{Kind: ResourceUpdated, Token: tok, Data: data}
}

// NewEventEmitted builds EventEmitted(token, bytes).
func NewEventEmitted(tok string, data []byte) SerializedChange {
	return SerializedChange{Kind: EventEmitted, Token: tok, Data: data}
}

func (c SerializedChange) encode(w *codec.Writer) {
	switch c.Kind {
	case EntitySpawned:
		w.WriteU8(changeEntitySpawned)
		w.WriteU128(c.NetId.Lo, c.NetId.Hi)
	case EntityDespawned:
		w.WriteU8(changeEntityDespawned)
		w.WriteU128(c.NetId.Lo, c.NetId.Hi)
	case ComponentUpdated:
		w.WriteU8(changeComponentUpdated)
		w.WriteU128(c.NetId.Lo, c.NetId.Hi)
		w.WriteString(c.Token)
		w.WriteOption(c.Data != nil, func(w *codec.Writer) { w.WriteBytes(c.Data) })
	case ResourceUpdated:
		w.WriteU8(changeResourceUpdated)
		w.WriteString(c.Token)
		w.WriteOption(c.Data != nil, func(w *codec.Writer) { w.WriteBytes(c.Data) })
	case EventEmitted:
		w.WriteU8(changeEventEmitted)
		w.WriteString(c.Token)
		w.WriteBytes(c.Data)
	default:
		panic(fmt.Sprintf("protocol: unknown ChangeKind %d", c.Kind))
	}
}

func decodeChange(r *codec.Reader) (SerializedChange, error) {
	tag, err := r.ReadU8()
	if err != nil {
		return SerializedChange{}, err
	}

	switch tag {
	case changeEntitySpawned:
		lo, hi, err := r.ReadU128()
		if err != nil {
			return SerializedChange{}, err
		}
		return NewEntitySpawned(ids.NetId{Lo: lo, Hi: hi}), nil

	case changeEntityDespawned:
		lo, hi, err := r.ReadU128()
		if err != nil {
			return SerializedChange{}, err
		}
		return NewEntityDespawned(ids.NetId{Lo: lo, Hi: hi}), nil

	case changeComponentUpdated:
		lo, hi, err := r.ReadU128()
		if err != nil {
			return SerializedChange{}, err
		}
		tok, err := r.ReadString()
		if err != nil {
			return SerializedChange{}, err
		}
		var data []byte
		_, err = r.ReadOption(func(r *codec.Reader) error {
			b, err := r.ReadBytes()
			data = b
			return err
		})
		if err != nil {
			return SerializedChange{}, err
		}
		return NewComponentUpdated(ids.NetId{Lo: lo, Hi: hi}, tok, data), nil

	case changeResourceUpdated:
		tok, err := r.ReadString()
		if err != nil {
			return SerializedChange{}, err
		}
		var data []byte
		_, err = r.ReadOption(func(r *codec.Reader) error {
			b, err := r.ReadBytes()
			data = b
			return err
		})
		if err != nil {
			return SerializedChange{}, err
		}
		return NewResourceUpdated(tok, data), nil

	case changeEventEmitted:
		tok, err := r.ReadString()
		if err != nil {
			return SerializedChange{}, err
		}
		data, err := r.ReadBytes()
		if err != nil {
			return SerializedChange{}, err
		}
		return NewEventEmitted(tok, data), nil

	default:
		return SerializedChange{}, fmt.Errorf("protocol: unknown SerializedChange tag %d", tag)
	}
}

// Message is the top-level Protocol enum: EcsUpdate, Ping, or Pong.
type Message struct {
	Kind MessageKind

	Change SerializedChange // EcsUpdate

	Payload uint32 // Ping/Pong
}

// MessageKind selects which Message variant is populated.
type MessageKind int

const (
	EcsUpdate MessageKind = iota
	Ping
	Pong
)

// NewEcsUpdate builds the EcsUpdate(SerializedChange) variant.
func NewEcsUpdate(change SerializedChange) Message {
	return Message{Kind: EcsUpdate, Change: change}
}

// NewPing builds Ping{payload}.
func NewPing(payload uint32) Message { return Message{Kind: Ping, Payload: payload} }

// NewPong builds Pong{payload}.
func NewPong(payload uint32) Message { return Message{Kind: Pong, Payload: payload} }

// Encode renders m as the compact binary payload that goes inside one
// length-prefixed frame (spec.md §6). The frame header itself is the
// transport package's concern, not codec's.
func Encode(m Message) []byte {
	w := codec.NewWriter()
	switch m.Kind {
	case EcsUpdate:
		w.WriteU8(protoEcsUpdate)
		m.Change.encode(w)
	case Ping:
		w.WriteU8(protoPing)
		w.WriteUvarint(uint64(m.Payload))
	case Pong:
		w.WriteU8(protoPong)
		w.WriteUvarint(uint64(m.Payload))
	default:
		panic(fmt.Sprintf("protocol: unknown MessageKind %d", m.Kind))
	}
	return w.Bytes()
}

// Decode parses a single frame payload back into a Message.
func Decode(data []byte) (Message, error) {
	r := codec.NewReader(data)

	tag, err := r.ReadU8()
	if err != nil {
		return Message{}, err
	}

	switch tag {
	case protoEcsUpdate:
		change, err := decodeChange(r)
		if err != nil {
			return Message{}, err
		}
		return NewEcsUpdate(change), nil

	case protoPing:
		v, err := r.ReadUvarint()
		if err != nil {
			return Message{}, err
		}
		return NewPing(uint32(v)), nil

	case protoPong:
		v, err := r.ReadUvarint()
		if err != nil {
			return Message{}, err
		}
		return NewPong(uint32(v)), nil

	default:
		return Message{}, fmt.Errorf("protocol: unknown Protocol tag %d", tag)
	}
}
