package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// codecName is the grpc content-subtype both sides agree on.
const codecName = "kgraph"

// fullMethod prefixes a method name with the service path.
func fullMethod(method string) string {
	return "/kgraph.GraphService/" + method
}

// wireCodec bridges the Message wire encoding into grpc's codec registry.
type wireCodec struct{}

// Marshal encodes an RPC payload.
func (wireCodec) Marshal(v interface{}) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("cannot marshal %T: not a wire message", v)
	}
	return m.MarshalWire(), nil
}

// Unmarshal decodes an RPC payload.
func (wireCodec) Unmarshal(data []byte, v interface{}) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("cannot unmarshal into %T: not a wire message", v)
	}
	return m.UnmarshalWire(data)
}

// Name returns the registered codec name.
func (wireCodec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(wireCodec{})
}

// GraphServiceServer is the server-side contract of the graph service.
type GraphServiceServer interface {
	GetNode(ctx context.Context, req *NodeRequest) (*NodeResponse, error)
	ResolveNode(ctx context.Context, req *ResolveRequest) (*ResolveResponse, error)
	ResolveRelation(ctx context.Context, req *ResolveRequest) (*ResolveResponse, error)
	GetStats(ctx context.Context, req *StatsRequest) (*StatsResponse, error)
}

// GraphServiceClient is the client-side contract of the graph service.
type GraphServiceClient interface {
	GetNode(ctx context.Context, req *NodeRequest, opts ...grpc.CallOption) (*NodeResponse, error)
	ResolveNode(ctx context.Context, req *ResolveRequest, opts ...grpc.CallOption) (*ResolveResponse, error)
	ResolveRelation(ctx context.Context, req *ResolveRequest, opts ...grpc.CallOption) (*ResolveResponse, error)
	GetStats(ctx context.Context, req *StatsRequest, opts ...grpc.CallOption) (*StatsResponse, error)
}

type graphServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewGraphServiceClient creates a client over an existing connection. Every
// call forces the kgraph content subtype so the registered codec is used on
// both sides.
func NewGraphServiceClient(cc grpc.ClientConnInterface) GraphServiceClient {
	return &graphServiceClient{cc: cc}
}

func (c *graphServiceClient) invoke(ctx context.Context, method string, req, resp Message, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	return c.cc.Invoke(ctx, fullMethod(method), req, resp, opts...)
}

func (c *graphServiceClient) GetNode(ctx context.Context, req *NodeRequest, opts ...grpc.CallOption) (*NodeResponse, error) {
	resp := new(NodeResponse)
	if err := c.invoke(ctx, "GetNode", req, resp, opts); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *graphServiceClient) ResolveNode(ctx context.Context, req *ResolveRequest, opts ...grpc.CallOption) (*ResolveResponse, error) {
	resp := new(ResolveResponse)
	if err := c.invoke(ctx, "ResolveNode", req, resp, opts); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *graphServiceClient) ResolveRelation(ctx context.Context, req *ResolveRequest, opts ...grpc.CallOption) (*ResolveResponse, error) {
	resp := new(ResolveResponse)
	if err := c.invoke(ctx, "ResolveRelation", req, resp, opts); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *graphServiceClient) GetStats(ctx context.Context, req *StatsRequest, opts ...grpc.CallOption) (*StatsResponse, error) {
	resp := new(StatsResponse)
	if err := c.invoke(ctx, "GetStats", req, resp, opts); err != nil {
		return nil, err
	}
	return resp, nil
}

// RegisterGraphServiceServer registers the service implementation.
func RegisterGraphServiceServer(s grpc.ServiceRegistrar, srv GraphServiceServer) {
	s.RegisterService(&graphServiceDesc, srv)
}

func getNodeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(NodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GraphServiceServer).GetNode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("GetNode")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(GraphServiceServer).GetNode(ctx, req.(*NodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func resolveNodeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ResolveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GraphServiceServer).ResolveNode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("ResolveNode")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(GraphServiceServer).ResolveNode(ctx, req.(*ResolveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func resolveRelationHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ResolveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GraphServiceServer).ResolveRelation(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("ResolveRelation")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(GraphServiceServer).ResolveRelation(ctx, req.(*ResolveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getStatsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(StatsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GraphServiceServer).GetStats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("GetStats")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(GraphServiceServer).GetStats(ctx, req.(*StatsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var graphServiceDesc = grpc.ServiceDesc{
	ServiceName: "kgraph.GraphService",
	HandlerType: (*GraphServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetNode", Handler: getNodeHandler},
		{MethodName: "ResolveNode", Handler: resolveNodeHandler},
		{MethodName: "ResolveRelation", Handler: resolveRelationHandler},
		{MethodName: "GetStats", Handler: getStatsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "kgraph/graph_service",
}
