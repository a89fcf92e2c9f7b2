package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clinicauth/internal/client/client"
	"github.com/dmitrijs2005/clinicauth/internal/client/provider"
	"github.com/dmitrijs2005/clinicauth/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

type documentsRPC interface {
	WriteRecord(ctx context.Context, in *rpc.WriteRecordRequest, opts ...grpc.CallOption) (*rpc.WriteRecordResponse, error)
	ReadRecord(ctx context.Context, in *rpc.ReadRecordRequest, opts ...grpc.CallOption) (*rpc.ReadRecordResponse, error)
}

// GRPC stores records on the clinicauth server. Pass the identity client's
// connection so calls carry the session's access token.
type GRPC struct {
	client documentsRPC
}

var _ provider.DocumentStore = (*GRPC)(nil)

func NewGRPC(cc grpc.ClientConnInterface) *GRPC {
	return &GRPC{client: rpc.NewDocumentsClient(cc)}
}

func (s *GRPC) WriteRecord(ctx context.Context, collection, id string, doc provider.Document) error {
	data, err := documentStruct(doc)
	if err != nil {
		return err
	}
	_, err = s.client.WriteRecord(ctx, &rpc.WriteRecordRequest{Collection: collection, ID: id, Data: data})
	if err != nil {
		return client.MapError(err)
	}
	return nil
}

func (s *GRPC) ReadRecord(ctx context.Context, collection, id string) (provider.Document, error) {
	resp, err := s.client.ReadRecord(ctx, &rpc.ReadRecordRequest{Collection: collection, ID: id})
	if err != nil {
		return nil, client.MapError(err)
	}
	if !resp.Found {
		return nil, provider.ErrRecordNotFound
	}
	return provider.Document(resp.Data.AsMap()), nil
}

// documentStruct converts doc for the wire. ServerTimestamp becomes the
// placeholder the server resolves and times are sent as RFC 3339 strings.
func documentStruct(doc provider.Document) (*structpb.Struct, error) {
	fields := make(map[string]any, len(doc))
	for k, v := range doc {
		fields[k] = wireValue(v)
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return s, nil
}

func wireValue(v any) any {
	if provider.IsServerTimestamp(v) {
		return rpc.ServerTimestampPlaceholder
	}
	switch x := v.(type) {
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.UTC().Format(time.RFC3339Nano)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = wireValue(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = wireValue(e)
		}
		return out
	default:
		return v
	}
}
