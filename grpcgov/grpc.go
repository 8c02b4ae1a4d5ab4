package grpcgov

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// GovernanceServer is the server API for the Governance gRPC service.
//
// Every method carries a JSON body in a protobuf BytesValue. Write methods
// take a model.SignedRequest envelope; read methods take the bare body. We
// intentionally use protobuf well-known wrapper types so this package does
// not require a protoc/codegen toolchain.
//
// Proto definition: governance.proto.
type GovernanceServer interface {
	Propose(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	Sign(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	Unsign(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	Discard(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	Perform(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	Status(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	Action(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	Snapshot(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
}

// UnimplementedGovernanceServer can be embedded to have forward compatible implementations.
type UnimplementedGovernanceServer struct{}

func (UnimplementedGovernanceServer) Propose(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Propose not implemented")
}
func (UnimplementedGovernanceServer) Sign(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Sign not implemented")
}
func (UnimplementedGovernanceServer) Unsign(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Unsign not implemented")
}
func (UnimplementedGovernanceServer) Discard(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Discard not implemented")
}
func (UnimplementedGovernanceServer) Perform(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Perform not implemented")
}
func (UnimplementedGovernanceServer) Status(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Status not implemented")
}
func (UnimplementedGovernanceServer) Action(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Action not implemented")
}
func (UnimplementedGovernanceServer) Snapshot(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Snapshot not implemented")
}

// RegisterGovernanceServer registers the Governance service on a gRPC server.
func RegisterGovernanceServer(s grpc.ServiceRegistrar, srv GovernanceServer) {
	s.RegisterService(&Governance_ServiceDesc, srv)
}

// GovernanceClient is the client API for the Governance gRPC service.
type GovernanceClient interface {
	Propose(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Sign(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Unsign(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Discard(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Perform(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Status(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Action(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Snapshot(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type governanceClient struct{ cc grpc.ClientConnInterface }

func NewGovernanceClient(cc grpc.ClientConnInterface) GovernanceClient {
	return &governanceClient{cc: cc}
}

func (c *governanceClient) invoke(ctx context.Context, method string, in *wrapperspb.BytesValue, opts []grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, serviceName+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

const serviceName = "/xdao.multisig.grpcgov.v1.Governance/"

func (c *governanceClient) Propose(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	return c.invoke(ctx, "Propose", in, opts)
}

func (c *governanceClient) Sign(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	return c.invoke(ctx, "Sign", in, opts)
}

func (c *governanceClient) Unsign(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	return c.invoke(ctx, "Unsign", in, opts)
}

func (c *governanceClient) Discard(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	return c.invoke(ctx, "Discard", in, opts)
}

func (c *governanceClient) Perform(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	return c.invoke(ctx, "Perform", in, opts)
}

func (c *governanceClient) Status(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	return c.invoke(ctx, "Status", in, opts)
}

func (c *governanceClient) Action(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	return c.invoke(ctx, "Action", in, opts)
}

func (c *governanceClient) Snapshot(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	return c.invoke(ctx, "Snapshot", in, opts)
}

type method func(GovernanceServer, context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)

func handler(name string, m method) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(wrapperspb.BytesValue)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return m(srv.(GovernanceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: serviceName + name}
		h := func(ctx context.Context, req interface{}) (interface{}, error) {
			return m(srv.(GovernanceServer), ctx, req.(*wrapperspb.BytesValue))
		}
		return interceptor(ctx, in, info, h)
	}
}

// Governance_ServiceDesc is the grpc.ServiceDesc for the Governance service.
var Governance_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "xdao.multisig.grpcgov.v1.Governance",
	HandlerType: (*GovernanceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Propose", Handler: handler("Propose", GovernanceServer.Propose)},
		{MethodName: "Sign", Handler: handler("Sign", GovernanceServer.Sign)},
		{MethodName: "Unsign", Handler: handler("Unsign", GovernanceServer.Unsign)},
		{MethodName: "Discard", Handler: handler("Discard", GovernanceServer.Discard)},
		{MethodName: "Perform", Handler: handler("Perform", GovernanceServer.Perform)},
		{MethodName: "Status", Handler: handler("Status", GovernanceServer.Status)},
		{MethodName: "Action", Handler: handler("Action", GovernanceServer.Action)},
		{MethodName: "Snapshot", Handler: handler("Snapshot", GovernanceServer.Snapshot)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "governance.proto",
}
