package grpc

import (
	"testing"
)

// TestNodeRequestRoundTrip tests request encoding and decoding
func TestNodeRequestRoundTrip(t *testing.T) {
	in := &NodeRequest{Graph: "freebase", ID: 42, Name: "barack_obama", ByName: true}

	out := new(NodeRequest)
	if err := out.UnmarshalWire(in.MarshalWire()); err != nil {
		t.Fatalf("UnmarshalWire failed: %v", err)
	}
	if *out != *in {
		t.Errorf("Expected %+v, got %+v", in, out)
	}
}

// TestNodeRequestZeroValues tests that the zero request survives the wire
func TestNodeRequestZeroValues(t *testing.T) {
	in := &NodeRequest{}
	encoded := in.MarshalWire()
	if len(encoded) != 0 {
		t.Errorf("Zero request must encode to nothing, got %d bytes", len(encoded))
	}

	out := new(NodeRequest)
	if err := out.UnmarshalWire(encoded); err != nil {
		t.Fatalf("UnmarshalWire failed: %v", err)
	}
	if *out != *in {
		t.Errorf("Expected zero request, got %+v", out)
	}
}

// TestNodeResponseRoundTrip tests nested bucket encoding
func TestNodeResponseRoundTrip(t *testing.T) {
	in := &NodeResponse{
		ID:   7,
		Name: "A",
		Edges: []*RelationEdges{
			{Relation: 0, RelationName: "friend", Incoming: []int32{3, 1}, Outgoing: []int32{1, 2}},
			{Relation: 5, RelationName: "knows", Outgoing: []int32{9}},
		},
	}

	out := new(NodeResponse)
	if err := out.UnmarshalWire(in.MarshalWire()); err != nil {
		t.Fatalf("UnmarshalWire failed: %v", err)
	}

	if out.ID != 7 || out.Name != "A" {
		t.Errorf("Header mismatch: %+v", out)
	}
	if len(out.Edges) != 2 {
		t.Fatalf("Expected 2 buckets, got %d", len(out.Edges))
	}

	friend := out.Edges[0]
	if friend.Relation != 0 || friend.RelationName != "friend" {
		t.Errorf("Bucket header mismatch: %+v", friend)
	}
	if len(friend.Incoming) != 2 || friend.Incoming[0] != 3 || friend.Incoming[1] != 1 {
		t.Errorf("Incoming order lost: %v", friend.Incoming)
	}
	if len(friend.Outgoing) != 2 || friend.Outgoing[0] != 1 || friend.Outgoing[1] != 2 {
		t.Errorf("Outgoing order lost: %v", friend.Outgoing)
	}

	knows := out.Edges[1]
	if knows.Relation != 5 || len(knows.Incoming) != 0 || len(knows.Outgoing) != 1 {
		t.Errorf("Second bucket mismatch: %+v", knows)
	}
}

// TestResolveRoundTrip tests both resolve payloads
func TestResolveRoundTrip(t *testing.T) {
	req := &ResolveRequest{Graph: "g", Name: "friend", ByName: true}
	gotReq := new(ResolveRequest)
	if err := gotReq.UnmarshalWire(req.MarshalWire()); err != nil {
		t.Fatalf("UnmarshalWire failed: %v", err)
	}
	if *gotReq != *req {
		t.Errorf("Expected %+v, got %+v", req, gotReq)
	}

	resp := &ResolveResponse{ID: 12, Name: "friend", Known: true}
	gotResp := new(ResolveResponse)
	if err := gotResp.UnmarshalWire(resp.MarshalWire()); err != nil {
		t.Fatalf("UnmarshalWire failed: %v", err)
	}
	if *gotResp != *resp {
		t.Errorf("Expected %+v, got %+v", resp, gotResp)
	}
}

// TestStatsRoundTrip tests the stats payload
func TestStatsRoundTrip(t *testing.T) {
	in := &StatsResponse{NumNodes: 1000000, NumRelations: 340, NumShards: 8, NumGraphs: 2}
	out := new(StatsResponse)
	if err := out.UnmarshalWire(in.MarshalWire()); err != nil {
		t.Fatalf("UnmarshalWire failed: %v", err)
	}
	if *out != *in {
		t.Errorf("Expected %+v, got %+v", in, out)
	}
}

// TestCodecRejectsForeignTypes tests the codec type guard
func TestCodecRejectsForeignTypes(t *testing.T) {
	codec := wireCodec{}
	if _, err := codec.Marshal("not a message"); err == nil {
		t.Error("Expected error marshaling a non-message")
	}
	if err := codec.Unmarshal(nil, "not a message"); err == nil {
		t.Error("Expected error unmarshaling into a non-message")
	}
	if codec.Name() != "kgraph" {
		t.Errorf("Unexpected codec name %q", codec.Name())
	}
}

// TestUnmarshalSkipsUnknownFields tests forward compatibility
func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	// Field 15 does not exist in NodeRequest; decoding must skip it.
	encoded := (&NodeRequest{ID: 3}).MarshalWire()
	unknown := append([]byte{0x78, 0x01}, encoded...) // field 15, varint 1

	out := new(NodeRequest)
	if err := out.UnmarshalWire(unknown); err != nil {
		t.Fatalf("UnmarshalWire failed on unknown field: %v", err)
	}
	if out.ID != 3 {
		t.Errorf("Expected ID 3, got %d", out.ID)
	}
}
