package provider

import "time"

// Document is a schemaless record.
type Document map[string]any

type serverTimestamp struct{}

func (serverTimestamp) String() string { return "ServerTimestamp" }

// ServerTimestamp is a field value asking the store to record its own write
// time.
var ServerTimestamp any = serverTimestamp{}

// IsServerTimestamp reports whether v is the ServerTimestamp placeholder.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// Clone returns a shallow copy of d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// String returns d[key] when it holds a string.
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Time returns d[key] as a time. Stores that round-trip through JSON hand
// back RFC 3339 strings, so both forms are accepted.
func (d Document) Time(key string) (time.Time, bool) {
	switch v := d[key].(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// ResolveTimestamps returns a copy of d with every ServerTimestamp replaced
// by now.
func ResolveTimestamps(d Document, now time.Time) Document {
	out := d.Clone()
	for k, v := range out {
		if IsServerTimestamp(v) {
			out[k] = now
		}
	}
	return out
}
