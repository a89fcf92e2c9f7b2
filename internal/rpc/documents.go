package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	DocumentsServiceName = "clinicauth.v1.Documents"

	DocumentsWriteRecordMethod = "/" + DocumentsServiceName + "/WriteRecord"
	DocumentsReadRecordMethod  = "/" + DocumentsServiceName + "/ReadRecord"
)

type DocumentsServer interface {
	WriteRecord(context.Context, *WriteRecordRequest) (*WriteRecordResponse, error)
	ReadRecord(context.Context, *ReadRecordRequest) (*ReadRecordResponse, error)
}

func RegisterDocumentsServer(s grpc.ServiceRegistrar, srv DocumentsServer) {
	s.RegisterService(&DocumentsServiceDesc, srv)
}

var DocumentsServiceDesc = grpc.ServiceDesc{
	ServiceName: DocumentsServiceName,
	HandlerType: (*DocumentsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "WriteRecord",
			Handler: unary(DocumentsWriteRecordMethod, func(srv any, ctx context.Context, req *WriteRecordRequest) (message, error) {
				return srv.(DocumentsServer).WriteRecord(ctx, req)
			}),
		},
		{
			MethodName: "ReadRecord",
			Handler: unary(DocumentsReadRecordMethod, func(srv any, ctx context.Context, req *ReadRecordRequest) (message, error) {
				return srv.(DocumentsServer).ReadRecord(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clinicauth/v1/documents",
}

type DocumentsClient struct {
	cc grpc.ClientConnInterface
}

func NewDocumentsClient(cc grpc.ClientConnInterface) *DocumentsClient {
	return &DocumentsClient{cc: cc}
}

func (c *DocumentsClient) WriteRecord(ctx context.Context, in *WriteRecordRequest, opts ...grpc.CallOption) (*WriteRecordResponse, error) {
	return invoke[WriteRecordResponse](ctx, c.cc, DocumentsWriteRecordMethod, in, opts)
}

func (c *DocumentsClient) ReadRecord(ctx context.Context, in *ReadRecordRequest, opts ...grpc.CallOption) (*ReadRecordResponse, error) {
	return invoke[ReadRecordResponse](ctx, c.cc, DocumentsReadRecordMethod, in, opts)
}
