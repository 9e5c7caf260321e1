// Package grpc carries the graph read contract over the network. The
// service is registered through a hand-maintained grpc.ServiceDesc and its
// messages are encoded with the protobuf wire format directly via
// encoding/protowire, so no code generation step is involved.
package grpc

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Message is implemented by every RPC payload type.
type Message interface {
	MarshalWire() []byte
	UnmarshalWire(data []byte) error
}

// NodeRequest asks for one vertex, addressed by dense id or by label.
type NodeRequest struct {
	Graph  string // 1: registered graph name, "" means default
	ID     int32  // 2: node id when ByName is false
	Name   string // 3: node label when ByName is true
	ByName bool   // 4
}

// MarshalWire encodes the request.
func (m *NodeRequest) MarshalWire() []byte {
	var b []byte
	if m.Graph != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, m.Graph)
	}
	if m.ID != 0 {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(uint32(m.ID)))
	}
	if m.Name != "" {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, m.Name)
	}
	if m.ByName {
		b = protowire.AppendTag(b, 4, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b
}

// UnmarshalWire decodes the request.
func (m *NodeRequest) UnmarshalWire(data []byte) error {
	*m = NodeRequest{}
	return walkFields(data, func(num protowire.Number, typ protowire.Type, field []byte) error {
		switch num {
		case 1:
			return consumeString(field, &m.Graph)
		case 2:
			return consumeInt32(field, &m.ID)
		case 3:
			return consumeString(field, &m.Name)
		case 4:
			return consumeBool(field, &m.ByName)
		}
		return nil
	})
}

// RelationEdges is one relation bucket of a vertex: the incoming and
// outgoing neighbor ids in append order.
type RelationEdges struct {
	Relation     int32   // 1
	RelationName string  // 2
	Incoming     []int32 // 3: packed
	Outgoing     []int32 // 4: packed
}

// MarshalWire encodes the bucket.
func (m *RelationEdges) MarshalWire() []byte {
	var b []byte
	if m.Relation != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(uint32(m.Relation)))
	}
	if m.RelationName != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, m.RelationName)
	}
	b = appendPacked(b, 3, m.Incoming)
	b = appendPacked(b, 4, m.Outgoing)
	return b
}

// UnmarshalWire decodes the bucket.
func (m *RelationEdges) UnmarshalWire(data []byte) error {
	*m = RelationEdges{}
	return walkFields(data, func(num protowire.Number, typ protowire.Type, field []byte) error {
		switch num {
		case 1:
			return consumeInt32(field, &m.Relation)
		case 2:
			return consumeString(field, &m.RelationName)
		case 3:
			return consumePacked(field, &m.Incoming)
		case 4:
			return consumePacked(field, &m.Outgoing)
		}
		return nil
	})
}

// NodeResponse carries one vertex: its id, its label, and every relation
// bucket.
type NodeResponse struct {
	ID    int32            // 1
	Name  string           // 2
	Edges []*RelationEdges // 3: repeated
}

// MarshalWire encodes the response.
func (m *NodeResponse) MarshalWire() []byte {
	var b []byte
	if m.ID != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(uint32(m.ID)))
	}
	if m.Name != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, m.Name)
	}
	for _, edges := range m.Edges {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, edges.MarshalWire())
	}
	return b
}

// UnmarshalWire decodes the response.
func (m *NodeResponse) UnmarshalWire(data []byte) error {
	*m = NodeResponse{}
	return walkFields(data, func(num protowire.Number, typ protowire.Type, field []byte) error {
		switch num {
		case 1:
			return consumeInt32(field, &m.ID)
		case 2:
			return consumeString(field, &m.Name)
		case 3:
			edges := new(RelationEdges)
			if err := edges.UnmarshalWire(field); err != nil {
				return err
			}
			m.Edges = append(m.Edges, edges)
		}
		return nil
	})
}

// ResolveRequest asks for one direction of a dictionary mapping, for either
// the node or the relation dictionary depending on the method called.
type ResolveRequest struct {
	Graph  string // 1
	Name   string // 2: label to resolve when ByName is true
	ID     int32  // 3: id to reverse-resolve when ByName is false
	ByName bool   // 4
}

// MarshalWire encodes the request.
func (m *ResolveRequest) MarshalWire() []byte {
	var b []byte
	if m.Graph != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, m.Graph)
	}
	if m.Name != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, m.Name)
	}
	if m.ID != 0 {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(uint32(m.ID)))
	}
	if m.ByName {
		b = protowire.AppendTag(b, 4, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b
}

// UnmarshalWire decodes the request.
func (m *ResolveRequest) UnmarshalWire(data []byte) error {
	*m = ResolveRequest{}
	return walkFields(data, func(num protowire.Number, typ protowire.Type, field []byte) error {
		switch num {
		case 1:
			return consumeString(field, &m.Graph)
		case 2:
			return consumeString(field, &m.Name)
		case 3:
			return consumeInt32(field, &m.ID)
		case 4:
			return consumeBool(field, &m.ByName)
		}
		return nil
	})
}

// ResolveResponse carries a dictionary mapping result. Known is false when a
// label was never assigned an id; a by-name request still returns the id the
// dictionary allocated, matching the local unknown-label policy.
type ResolveResponse struct {
	ID    int32  // 1
	Name  string // 2
	Known bool   // 3
}

// MarshalWire encodes the response.
func (m *ResolveResponse) MarshalWire() []byte {
	var b []byte
	if m.ID != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(uint32(m.ID)))
	}
	if m.Name != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, m.Name)
	}
	if m.Known {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b
}

// UnmarshalWire decodes the response.
func (m *ResolveResponse) UnmarshalWire(data []byte) error {
	*m = ResolveResponse{}
	return walkFields(data, func(num protowire.Number, typ protowire.Type, field []byte) error {
		switch num {
		case 1:
			return consumeInt32(field, &m.ID)
		case 2:
			return consumeString(field, &m.Name)
		case 3:
			return consumeBool(field, &m.Known)
		}
		return nil
	})
}

// StatsRequest asks for the sizes of one registered graph.
type StatsRequest struct {
	Graph string // 1
}

// MarshalWire encodes the request.
func (m *StatsRequest) MarshalWire() []byte {
	var b []byte
	if m.Graph != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, m.Graph)
	}
	return b
}

// UnmarshalWire decodes the request.
func (m *StatsRequest) UnmarshalWire(data []byte) error {
	*m = StatsRequest{}
	return walkFields(data, func(num protowire.Number, typ protowire.Type, field []byte) error {
		if num == 1 {
			return consumeString(field, &m.Graph)
		}
		return nil
	})
}

// StatsResponse carries dictionary sizes and shard metadata.
type StatsResponse struct {
	NumNodes     int64 // 1
	NumRelations int64 // 2
	NumShards    int64 // 3
	NumGraphs    int64 // 4
}

// MarshalWire encodes the response.
func (m *StatsResponse) MarshalWire() []byte {
	var b []byte
	for i, v := range []int64{m.NumNodes, m.NumRelations, m.NumShards, m.NumGraphs} {
		if v != 0 {
			b = protowire.AppendTag(b, protowire.Number(i+1), protowire.VarintType)
			b = protowire.AppendVarint(b, uint64(v))
		}
	}
	return b
}

// UnmarshalWire decodes the response.
func (m *StatsResponse) UnmarshalWire(data []byte) error {
	*m = StatsResponse{}
	return walkFields(data, func(num protowire.Number, typ protowire.Type, field []byte) error {
		dst := map[protowire.Number]*int64{1: &m.NumNodes, 2: &m.NumRelations, 3: &m.NumShards, 4: &m.NumGraphs}[num]
		if dst == nil {
			return nil
		}
		return consumeInt64(field, dst)
	})
}

// walkFields iterates the top-level fields of a wire-encoded message. For
// varint fields the callback receives the raw varint bytes; for
// length-delimited fields it receives the unwrapped payload.
func walkFields(data []byte, fn func(num protowire.Number, typ protowire.Type, field []byte) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("malformed message tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		var field []byte
		var size int
		switch typ {
		case protowire.VarintType:
			_, size = protowire.ConsumeVarint(data)
			if size < 0 {
				return fmt.Errorf("malformed varint field %d: %w", num, protowire.ParseError(size))
			}
			field = data[:size]
		case protowire.BytesType:
			var payload []byte
			payload, size = protowire.ConsumeBytes(data)
			if size < 0 {
				return fmt.Errorf("malformed bytes field %d: %w", num, protowire.ParseError(size))
			}
			field = payload
		default:
			size = protowire.ConsumeFieldValue(num, typ, data)
			if size < 0 {
				return fmt.Errorf("malformed field %d: %w", num, protowire.ParseError(size))
			}
			data = data[size:]
			continue
		}

		if err := fn(num, typ, field); err != nil {
			return err
		}
		data = data[size:]
	}
	return nil
}

// appendPacked appends ids as one packed varint field.
func appendPacked(b []byte, num protowire.Number, ids []int32) []byte {
	if len(ids) == 0 {
		return b
	}
	var packed []byte
	for _, id := range ids {
		packed = protowire.AppendVarint(packed, uint64(uint32(id)))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

// consumePacked decodes one packed varint field into ids.
func consumePacked(field []byte, dst *[]int32) error {
	for len(field) > 0 {
		v, n := protowire.ConsumeVarint(field)
		if n < 0 {
			return fmt.Errorf("malformed packed field: %w", protowire.ParseError(n))
		}
		*dst = append(*dst, int32(uint32(v)))
		field = field[n:]
	}
	return nil
}

func consumeInt32(field []byte, dst *int32) error {
	v, n := protowire.ConsumeVarint(field)
	if n < 0 {
		return protowire.ParseError(n)
	}
	*dst = int32(uint32(v))
	return nil
}

func consumeInt64(field []byte, dst *int64) error {
	v, n := protowire.ConsumeVarint(field)
	if n < 0 {
		return protowire.ParseError(n)
	}
	*dst = int64(v)
	return nil
}

func consumeBool(field []byte, dst *bool) error {
	v, n := protowire.ConsumeVarint(field)
	if n < 0 {
		return protowire.ParseError(n)
	}
	*dst = v != 0
	return nil
}

func consumeString(field []byte, dst *string) error {
	*dst = string(field)
	return nil
}
