/*
Package pb declares the rcv.v1.Tabulator gRPC service. Messages are
google.protobuf.Struct values so that ballots in any of their shapes and
tally results can be carried without a generated schema.
*/
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Fully qualified service and method names.
const (
	ServiceName  = "rcv.v1.Tabulator"
	VoteMethod   = "/rcv.v1.Tabulator/Vote"
	TallyMethod  = "/rcv.v1.Tabulator/Tally"
	StatusMethod = "/rcv.v1.Tabulator/Status"
)

// TabulatorServer is the server API for the Tabulator service.
type TabulatorServer interface {
	// Vote casts a single ballot, given in the "ballot" field of the request.
	Vote(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Tally runs an instant-runoff tally over the ballots cast so far.
	Tally(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Status reports the slate and the number of ballots cast.
	Status(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterTabulatorServer registers the service implementation with the
// gRPC server.
func RegisterTabulatorServer(s grpc.ServiceRegistrar, srv TabulatorServer) {
	s.RegisterService(&TabulatorServiceDesc, srv)
}

// TabulatorServiceDesc is the grpc.ServiceDesc for the Tabulator service.
var TabulatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TabulatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Vote",
			Handler:    unaryHandler(VoteMethod, TabulatorServer.Vote),
		},
		{
			MethodName: "Tally",
			Handler:    unaryHandler(TallyMethod, TabulatorServer.Tally),
		},
		{
			MethodName: "Status",
			Handler:    unaryHandler(StatusMethod, TabulatorServer.Status),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rcv/v1/tabulator.proto",
}

type method func(TabulatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a TabulatorServer method to a grpc.MethodDesc handler,
// decoding the request and applying any server interceptor.
func unaryHandler(fullMethod string, call method) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(srv.(TabulatorServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(TabulatorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// TabulatorClient is the client API for the Tabulator service.
type TabulatorClient interface {
	Vote(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Tally(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Status(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

// NewTabulatorClient creates a client for the Tabulator service.
func NewTabulatorClient(cc grpc.ClientConnInterface) TabulatorClient {
	return &tabulatorClient{cc}
}

type tabulatorClient struct {
	cc grpc.ClientConnInterface
}

func (c *tabulatorClient) Vote(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, VoteMethod, in, opts...)
}

func (c *tabulatorClient) Tally(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, TallyMethod, in, opts...)
}

func (c *tabulatorClient) Status(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, StatusMethod, in, opts...)
}

func (c *tabulatorClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
