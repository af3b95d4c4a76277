/*
Package mapping reshapes backend payloads into the front end's data
contracts.

Each resource has one Schema: an ordered table of output fields, the backend
paths each field may arrive under (first match wins), the value kind, and
the default used when no path matches. The tables document the accepted
backend contract and are the only place field names are translated.
*/
package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the output type of a field.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindInt
	KindBool
	KindStringList
	KindRecords
	KindRaw
)

// Field maps one output key.
type Field struct {
	// Name is the output key.
	Name string

	// Paths are dotted backend paths tried in order, e.g. "user.name".
	Paths []string

	Kind Kind

	// Default is used when no path yields a usable value. String lists and
	// record lists always default to an empty, non-nil slice.
	Default any

	// Schema reshapes each element of a KindRecords field.
	Schema Schema
}

// Schema is the mapping table of one resource.
type Schema []Field

// Record is a reshaped resource.
type Record map[string]any

// listKeys are the object keys a backend may wrap a collection in.
var listKeys = []string{"items", "results", "docs", "list", "mentors", "sessions", "reviews", "messages", "conversations", "recommendations", "matches"}

// Apply reshapes one backend object.
func (s Schema) Apply(raw map[string]any) Record {
	out := make(Record, len(s))
	for _, f := range s {
		out[f.Name] = f.resolve(raw)
	}
	return out
}

// Names returns the output keys of s in table order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// One decodes payload as a single object and reshapes it. A payload that
// wraps the object under a known key (e.g. {"mentor": {...}}) is accepted
// when wrapKeys names the key.
func (s Schema) One(payload json.RawMessage, wrapKeys ...string) (Record, error) {
	value, err := decode(payload)
	if err != nil {
		return nil, err
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %T", value)
	}

	for _, key := range wrapKeys {
		if inner, ok := obj[key].(map[string]any); ok {
			obj = inner
			break
		}
	}

	return s.Apply(obj), nil
}

// List decodes payload as a collection and reshapes every object in it. A
// null payload yields an empty list; objects wrapping the collection under a
// common key are unwrapped.
func (s Schema) List(payload json.RawMessage) ([]Record, error) {
	value, err := decode(payload)
	if err != nil {
		return nil, err
	}

	items, err := asList(value)
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, s.Apply(obj))
		}
	}
	return out, nil
}

func asList(value any) ([]any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case map[string]any:
		for _, key := range listKeys {
			if inner, ok := v[key].([]any); ok {
				return inner, nil
			}
		}
		return nil, fmt.Errorf("object payload has no recognizable collection")
	default:
		return nil, fmt.Errorf("expected a collection, got %T", value)
	}
}

func decode(payload json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return value, nil
}

func (f Field) resolve(raw map[string]any) any {
	for _, path := range f.Paths {
		if v, ok := lookup(raw, path); ok {
			if converted, ok := f.convert(v); ok {
				return converted
			}
		}
	}
	return f.defaultValue()
}

func (f Field) defaultValue() any {
	switch f.Kind {
	case KindStringList:
		if d, ok := f.Default.([]string); ok {
			return append([]string{}, d...)
		}
		return []string{}
	case KindRecords:
		return []Record{}
	default:
		return f.Default
	}
}

func lookup(raw map[string]any, path string) (any, bool) {
	var current any = raw
	for _, part := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[part]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}

func (f Field) convert(v any) (any, bool) {
	switch f.Kind {
	case KindString:
		return toString(v)
	case KindNumber:
		return toNumber(v)
	case KindInt:
		n, ok := toNumber(v)
		if !ok {
			return nil, false
		}
		return int(math.Round(n)), true
	case KindBool:
		return toBool(v)
	case KindStringList:
		return toStringList(v)
	case KindRecords:
		items, ok := v.([]any)
		if !ok {
			return nil, false
		}
		out := make([]Record, 0, len(items))
		for _, item := range items {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, f.Schema.Apply(obj))
			}
		}
		return out, true
	default:
		return v, true
	}
}

func toString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) == "" {
			return "", false
		}
		return val, true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

func toNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case float64:
		return val, true
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toBool(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		b, err := strconv.ParseBool(val)
		return b, err == nil
	default:
		return false, false
	}
}

// toStringList accepts ["a","b"], [{"name":"a"}], and "a, b".
func toStringList(v any) ([]string, bool) {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			switch it := item.(type) {
			case string:
				if s := strings.TrimSpace(it); s != "" {
					out = append(out, s)
				}
			case map[string]any:
				for _, key := range []string{"name", "label", "title"} {
					if s, ok := it[key].(string); ok && s != "" {
						out = append(out, s)
						break
					}
				}
			}
		}
		return out, true
	case string:
		out := []string{}
		for _, part := range strings.Split(val, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}
