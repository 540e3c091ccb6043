package firestore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/brizzai/auth-profile/internal/store"
)

// value is the Firestore REST typed value. Exactly one member is set.
type value struct {
	StringValue    *string          `json:"stringValue,omitempty"`
	IntegerValue   *string          `json:"integerValue,omitempty"`
	DoubleValue    *float64         `json:"doubleValue,omitempty"`
	BooleanValue   *bool            `json:"booleanValue,omitempty"`
	TimestampValue *string          `json:"timestampValue,omitempty"`
	NullValue      *json.RawMessage `json:"nullValue,omitempty"`
	MapValue       json.RawMessage  `json:"mapValue,omitempty"`
	ArrayValue     json.RawMessage  `json:"arrayValue,omitempty"`
}

type document struct {
	Name       string           `json:"name,omitempty"`
	Fields     map[string]value `json:"fields"`
	CreateTime string           `json:"createTime,omitempty"`
}

type listResponse struct {
	Documents     []document `json:"documents"`
	NextPageToken string     `json:"nextPageToken"`
}

var nullJSON = json.RawMessage("null")

func encodeFields(fields store.Fields) (map[string]value, error) {
	norm, err := store.Normalize(fields)
	if err != nil {
		return nil, err
	}
	out := make(map[string]value, len(norm))
	for k, v := range norm {
		switch x := v.(type) {
		case nil:
			null := nullJSON
			out[k] = value{NullValue: &null}
		case string:
			out[k] = value{StringValue: &x}
		case bool:
			out[k] = value{BooleanValue: &x}
		case int64:
			s := strconv.FormatInt(x, 10)
			out[k] = value{IntegerValue: &s}
		case float64:
			out[k] = value{DoubleValue: &x}
		case time.Time:
			s := x.Format(time.RFC3339Nano)
			out[k] = value{TimestampValue: &s}
		}
	}
	return out, nil
}

func decodeFields(in map[string]value) (store.Fields, error) {
	out := make(store.Fields, len(in))
	for k, v := range in {
		dv, err := decodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = dv
	}
	return out, nil
}

func decodeValue(v value) (any, error) {
	switch {
	case v.StringValue != nil:
		return *v.StringValue, nil
	case v.IntegerValue != nil:
		return strconv.ParseInt(*v.IntegerValue, 10, 64)
	case v.DoubleValue != nil:
		return *v.DoubleValue, nil
	case v.BooleanValue != nil:
		return *v.BooleanValue, nil
	case v.TimestampValue != nil:
		t, err := time.Parse(time.RFC3339Nano, *v.TimestampValue)
		if err != nil {
			return nil, err
		}
		return t.UTC(), nil
	case v.NullValue != nil:
		return nil, nil
	case v.MapValue != nil, v.ArrayValue != nil:
		return nil, fmt.Errorf("%w: nested value", store.ErrUnsupportedValue)
	default:
		// encoding/json leaves NullValue nil for "nullValue": null
		return nil, nil
	}
}
