package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// typedValue keeps the Go type of a field across a JSON round trip, which
// would otherwise turn every number into float64 and timestamps into strings.
type typedValue struct {
	Type  string          `json:"t"`
	Value json.RawMessage `json:"v,omitempty"`
}

const (
	typeNull   = "null"
	typeString = "string"
	typeBool   = "bool"
	typeInt    = "int"
	typeFloat  = "float"
	typeTime   = "time"
)

// EncodeJSON serializes normalized fields with type tags.
func EncodeJSON(fields Fields) ([]byte, error) {
	norm, err := Normalize(fields)
	if err != nil {
		return nil, err
	}
	out := make(map[string]typedValue, len(norm))
	for k, v := range norm {
		tv, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = tv
	}
	return json.Marshal(out)
}

func encodeValue(v any) (typedValue, error) {
	var typ string
	switch x := v.(type) {
	case nil:
		return typedValue{Type: typeNull}, nil
	case string:
		typ = typeString
	case bool:
		typ = typeBool
	case int64:
		typ = typeInt
	case float64:
		typ = typeFloat
	case time.Time:
		typ = typeTime
		v = x.Format(time.RFC3339Nano)
	default:
		return typedValue{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return typedValue{}, err
	}
	return typedValue{Type: typ, Value: raw}, nil
}

// DecodeJSON is the inverse of EncodeJSON.
func DecodeJSON(data []byte) (Fields, error) {
	var in map[string]typedValue
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	out := make(Fields, len(in))
	for k, tv := range in {
		v, err := decodeValue(tv)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

func decodeValue(tv typedValue) (any, error) {
	switch tv.Type {
	case typeNull:
		return nil, nil
	case typeString:
		var s string
		err := json.Unmarshal(tv.Value, &s)
		return s, err
	case typeBool:
		var b bool
		err := json.Unmarshal(tv.Value, &b)
		return b, err
	case typeInt:
		var n int64
		err := json.Unmarshal(tv.Value, &n)
		return n, err
	case typeFloat:
		var f float64
		err := json.Unmarshal(tv.Value, &f)
		return f, err
	case typeTime:
		var s string
		if err := json.Unmarshal(tv.Value, &s); err != nil {
			return nil, err
		}
		return time.Parse(time.RFC3339Nano, s)
	default:
		return nil, fmt.Errorf("unknown value type %q", tv.Type)
	}
}
