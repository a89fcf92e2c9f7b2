package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// wireMessage is satisfied by pointers to the message structs.
type wireMessage[T any] interface {
	*T
	message
}

// unary adapts a typed handler to grpc.MethodHandler. The request is decoded
// from its Struct before the interceptor chain runs, so interceptors see the
// typed request; the typed response is encoded on the way out.
func unary[Req any, PReq wireMessage[Req]](fullMethod string, call func(srv any, ctx context.Context, req *Req) (message, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		wire := &structpb.Struct{}
		if err := dec(wire); err != nil {
			return nil, err
		}
		in := PReq(new(Req))
		if err := in.fromWire(wire); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}

		handler := func(ctx context.Context, req any) (any, error) {
			resp, err := call(srv, ctx, req.(*Req))
			if err != nil {
				return nil, err
			}
			out, err := resp.toWire()
			if err != nil {
				return nil, status.Error(codes.Internal, err.Error())
			}
			return out, nil
		}
		if interceptor == nil {
			return handler(ctx, (*Req)(in))
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, (*Req)(in), info, handler)
	}
}

// invoke encodes in, calls method on cc and decodes the reply into a new Resp.
func invoke[Resp any, PResp wireMessage[Resp]](ctx context.Context, cc grpc.ClientConnInterface, method string, in message, opts []grpc.CallOption) (*Resp, error) {
	req, err := in.toWire()
	if err != nil {
		return nil, err
	}
	reply := &structpb.Struct{}
	if err := cc.Invoke(ctx, method, req, reply, opts...); err != nil {
		return nil, err
	}
	out := PResp(new(Resp))
	if err := out.fromWire(reply); err != nil {
		return nil, err
	}
	return (*Resp)(out), nil
}
