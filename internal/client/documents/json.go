package documents

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/clinicauth/internal/client/provider"
)

// marshalDocument encodes doc, replacing ServerTimestamp values with stamp.
func marshalDocument(doc provider.Document, stamp any) ([]byte, error) {
	out := doc.Clone()
	for k, v := range out {
		if provider.IsServerTimestamp(v) {
			out[k] = stamp
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

func unmarshalDocument(data []byte) (provider.Document, error) {
	doc := provider.Document{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
