// Package store defines the document store contract used for profile records
// and the value rules shared by every backend.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Fields is a flat document body: string keys to primitive or timestamp values.
type Fields map[string]any

// Document is a stored record together with its store-assigned ID.
type Document struct {
	ID     string
	Fields Fields
}

// DocumentStore is the external document database contract.
type DocumentStore interface {
	// Create stores fields in collection and returns the new document ID.
	Create(ctx context.Context, collection string, fields Fields) (string, error)
	// List returns every document in collection. Order is backend-defined.
	List(ctx context.Context, collection string) ([]Document, error)
	// Close releases connections held by the backend.
	Close(ctx context.Context) error
}

var (
	// ErrUnsupportedValue is returned for field values that are not primitive or time.Time.
	ErrUnsupportedValue = errors.New("unsupported field value")
	// ErrUnsupportedDriver is returned by the registry for unknown drivers.
	ErrUnsupportedDriver = errors.New("unsupported store driver")
)

// Normalize validates fields and converts values to the canonical set every
// backend round-trips: string, bool, int64, float64, time.Time (UTC) and nil.
func Normalize(fields Fields) (Fields, error) {
	out := make(Fields, len(fields))
	for k, v := range fields {
		if k == "" {
			return nil, fmt.Errorf("%w: empty field name", ErrUnsupportedValue)
		}
		nv, err := normalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

func normalizeValue(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return x, nil
	case bool:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case time.Time:
		return x.UTC(), nil
	case *time.Time:
		if x == nil {
			return nil, nil
		}
		return x.UTC(), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// Clone returns a shallow copy of fields.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// String returns the string value at key, or "" when absent or not a string.
func (f Fields) String(key string) string {
	s, _ := f[key].(string)
	return s
}

// Time returns the timestamp at key, or the zero time.
func (f Fields) Time(key string) time.Time {
	t, _ := f[key].(time.Time)
	return t
}
