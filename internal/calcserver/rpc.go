// Package calcserver exposes the dice calculator over gRPC as
// dicecalc.v1.Calculator.
package calcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "dicecalc.v1.Calculator"

const (
	calculateMethod = "/" + ServiceName + "/Calculate"
	recognizeMethod = "/" + ServiceName + "/Recognize"
	historyMethod   = "/" + ServiceName + "/History"
)

// CalculatorServer is the server API of dicecalc.v1.Calculator. Messages are
// protobuf well-known types, so no generated code is needed.
type CalculatorServer interface {
	// Calculate evaluates a phrase.
	Calculate(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// Recognize evaluates the best variant of a recognizer XML payload.
	Recognize(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	// History lists recent calculations.
	History(context.Context, *wrapperspb.Int32Value) (*structpb.Struct, error)
}

// RegisterCalculatorServer registers srv on s.
func RegisterCalculatorServer(s grpc.ServiceRegistrar, srv CalculatorServer) {
	s.RegisterService(&CalculatorServiceDesc, srv)
}

// CalculatorServiceDesc describes dicecalc.v1.Calculator.
var CalculatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Calculate", Handler: calculateHandler},
		{MethodName: "Recognize", Handler: recognizeHandler},
		{MethodName: "History", Handler: historyHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dicecalc/v1/calculator.proto",
}

func calculateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).Calculate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: calculateMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(CalculatorServer).Calculate(ctx, req.(*wrapperspb.StringValue))
	})
}

func recognizeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).Recognize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: recognizeMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(CalculatorServer).Recognize(ctx, req.(*wrapperspb.BytesValue))
	})
}

func historyHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int32Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).History(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: historyMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(CalculatorServer).History(ctx, req.(*wrapperspb.Int32Value))
	})
}

// CalculatorClient calls dicecalc.v1.Calculator.
type CalculatorClient struct {
	cc grpc.ClientConnInterface
}

// NewCalculatorClient wraps cc.
func NewCalculatorClient(cc grpc.ClientConnInterface) *CalculatorClient {
	return &CalculatorClient{cc: cc}
}

// Calculate evaluates phrase remotely.
func (c *CalculatorClient) Calculate(ctx context.Context, phrase string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, calculateMethod, wrapperspb.String(phrase), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Recognize evaluates a recognizer XML payload remotely.
func (c *CalculatorClient) Recognize(ctx context.Context, payload []byte, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, recognizeMethod, wrapperspb.Bytes(payload), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// History lists up to limit recent calculations remotely; 0 uses the server limit.
func (c *CalculatorClient) History(ctx context.Context, limit int32, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, historyMethod, wrapperspb.Int32(limit), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
