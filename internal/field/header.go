package field

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/spf13/cast"
)

// Header is an ordered set of decoded fields. Cursor is the number of
// buffer bytes consumed while decoding it.
type Header struct {
	names  []string
	values map[string]interface{}
	Cursor int
}

func NewHeader() *Header {
	return &Header{values: make(map[string]interface{})}
}

// Set stores a field value. Setting an existing name replaces the value
// but keeps its original position.
func (h *Header) Set(name string, v interface{}) {
	if _, ok := h.values[name]; !ok {
		h.names = append(h.names, name)
	}
	h.values[name] = v
}

func (h *Header) Get(name string) (interface{}, bool) {
	v, ok := h.values[name]
	return v, ok
}

// Names returns field names in decode order.
func (h *Header) Names() []string {
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}

func (h *Header) Len() int { return len(h.names) }

func (h *Header) lookup(name string) (interface{}, error) {
	v, ok := h.values[name]
	if !ok {
		return nil, &DecodeError{Field: name, Err: errMissing}
	}
	return v, nil
}

func (h *Header) Float(name string) (float64, error) {
	v, err := h.lookup(name)
	if err != nil {
		return 0, err
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, &DecodeError{Field: name, Raw: cast.ToString(v), Err: err}
	}
	return f, nil
}

func (h *Header) Int(name string) (int, error) {
	v, err := h.lookup(name)
	if err != nil {
		return 0, err
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return 0, &DecodeError{Field: name, Raw: cast.ToString(v), Err: err}
	}
	return i, nil
}

func (h *Header) Bool(name string) (bool, error) {
	v, err := h.lookup(name)
	if err != nil {
		return false, err
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, &DecodeError{Field: name, Raw: cast.ToString(v), Err: err}
	}
	return b, nil
}

// String returns the field rendered as text, or "" when absent.
func (h *Header) String(name string) string {
	return cast.ToString(h.values[name])
}

// Map returns a copy of the fields as a plain map.
func (h *Header) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(h.values))
	for k, v := range h.values {
		out[k] = v
	}
	return out
}

// MarshalJSON writes the fields as an object in decode order. Non-finite
// floats are written as strings since JSON has no encoding for them.
func (h *Header) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range h.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		v := h.values[name]
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			v = cast.ToString(f)
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
