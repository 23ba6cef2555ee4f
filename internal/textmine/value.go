// Package textmine extracts, normalizes and tokenizes human text from
// session payloads.
package textmine

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Kind discriminates a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

// Value is a generic JSON-shaped value. Object fields are kept in sorted
// key order so that traversal is deterministic.
type Value struct {
	Kind   Kind
	Str    string
	Items  []Value
	Fields []Field
}

// Field is one key of an object Value.
type Field struct {
	Key   string
	Value Value
}

// Get returns the field named key, matching case-insensitively.
func (v Value) Get(key string) (Value, bool) {
	for _, f := range v.Fields {
		if strings.EqualFold(f.Key, key) {
			return f.Value, true
		}
	}
	return Value{}, false
}

// ParseValue decodes raw as JSON. It reports false for anything that is
// not a JSON object, array or string literal.
func ParseValue(raw string) (Value, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Value{}, false
	}
	switch raw[0] {
	case '{', '[', '"':
	default:
		return Value{}, false
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Value{}, false
	}
	if dec.More() {
		return Value{}, false
	}
	return FromAny(v), true
}

// FromAny converts a decoded JSON value into a Value.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{Kind: KindNull}
	case string:
		return Value{Kind: KindString, Str: t}
	case json.Number:
		return Value{Kind: KindNumber, Str: t.String()}
	case float64:
		return Value{Kind: KindNumber, Str: formatFloat(t)}
	case bool:
		if t {
			return Value{Kind: KindBool, Str: "true"}
		}
		return Value{Kind: KindBool, Str: "false"}
	case []any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			items = append(items, FromAny(item))
		}
		return Value{Kind: KindArray, Items: items}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, Field{Key: k, Value: FromAny(t[k])})
		}
		return Value{Kind: KindObject, Fields: fields}
	default:
		return Value{Kind: KindNull}
	}
}

func formatFloat(f float64) string {
	b, err := json.Marshal(f)
	if err != nil {
		return "0"
	}
	return string(b)
}
