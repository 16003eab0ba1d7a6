package field

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	errTruncated = errors.New("buffer too short")
	errMissing   = errors.New("field not present")
	errWidth     = errors.New("unsupported width")
)

// padding is stripped from both ends of fixed-width text fields.
const padding = "\xcd\x00 "

// ExtractBinary decodes spec from buf at base+spec.Offset using order.
func ExtractBinary(buf []byte, base int, order binary.ByteOrder, spec Spec) (interface{}, error) {
	start := base + spec.Offset
	end := start + spec.Length
	if start < 0 || spec.Length <= 0 || end > len(buf) {
		return nil, &DecodeError{
			Field: spec.Name,
			Raw:   fmt.Sprintf("offset %d length %d of %d bytes", start, spec.Length, len(buf)),
			Err:   errTruncated,
		}
	}
	raw := buf[start:end]

	switch spec.Kind {
	case KindInt:
		return binaryInt(raw, order, spec)
	case KindFloat:
		switch spec.Length {
		case 4:
			return float64(math.Float32frombits(order.Uint32(raw))), nil
		case 8:
			return math.Float64frombits(order.Uint64(raw)), nil
		}
		return nil, &DecodeError{Field: spec.Name, Raw: fmt.Sprintf("% x", raw), Err: errWidth}
	case KindText, KindAuto:
		return strings.TrimRight(string(raw), "\x00 \t\r\n"), nil
	case KindBool:
		i, err := binaryInt(raw, order, spec)
		if err != nil {
			return nil, err
		}
		return i != 0, nil
	case KindEnum:
		i, err := binaryInt(raw, order, spec)
		if err != nil {
			return nil, err
		}
		return lookupEnum(spec, i)
	case KindTimestamp:
		if spec.Length < 14 {
			return nil, &DecodeError{Field: spec.Name, Raw: fmt.Sprintf("% x", raw), Err: errWidth}
		}
		seconds := math.Float64frombits(order.Uint64(raw[0:8]))
		year := int(int16(order.Uint16(raw[12:14])))
		t, err := Timestamp(seconds, int(raw[8]), int(raw[9]), int(raw[10]), int(raw[11]), year)
		if err != nil {
			return nil, &DecodeError{Field: spec.Name, Raw: fmt.Sprintf("% x", raw), Err: err}
		}
		return t, nil
	}
	return nil, &DecodeError{Field: spec.Name, Err: fmt.Errorf("unknown kind %v", spec.Kind)}
}

func binaryInt(raw []byte, order binary.ByteOrder, spec Spec) (int64, error) {
	switch len(raw) {
	case 1:
		return int64(int8(raw[0])), nil
	case 2:
		return int64(int16(order.Uint16(raw))), nil
	case 4:
		return int64(int32(order.Uint32(raw))), nil
	case 8:
		return int64(order.Uint64(raw)), nil
	}
	return 0, &DecodeError{Field: spec.Name, Raw: fmt.Sprintf("% x", raw), Err: errWidth}
}

func lookupEnum(spec Spec, i int64) (string, error) {
	if i < 0 || i >= int64(len(spec.Enum)) {
		return "", &EnumIndexError{Field: spec.Name, Index: i, Len: len(spec.Enum)}
	}
	return spec.Enum[i], nil
}

// Timestamp composes a trigger time from its broken-down parts. The
// fractional part of seconds becomes microseconds, truncated.
func Timestamp(seconds float64, minute, hour, day, month, year int) (time.Time, error) {
	if seconds < 0 || seconds >= 61 || math.IsNaN(seconds) {
		return time.Time{}, fmt.Errorf("seconds %v out of range", seconds)
	}
	if minute > 59 || hour > 23 || day < 1 || day > 31 || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid date %04d-%02d-%02d %02d:%02d", year, month, day, hour, minute)
	}
	whole, frac := math.Modf(seconds)
	usec := int(math.Floor(frac*1e6 + 1e-6))
	if usec > 999999 {
		usec = 999999
	}
	t := time.Date(year, time.Month(month), day, hour, minute, int(whole), usec*int(time.Microsecond), time.UTC)
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid date %04d-%02d-%02d", year, month, day)
	}
	return t, nil
}

// ExtractText decodes spec from the fixed-width text buf starting at
// cursor and returns the cursor for the next field.
func ExtractText(buf []byte, cursor int, spec Spec) (interface{}, int, error) {
	next := cursor + spec.Length
	if cursor < 0 || spec.Length <= 0 || next > len(buf) {
		return nil, cursor, &DecodeError{
			Field: spec.Name,
			Raw:   fmt.Sprintf("cursor %d length %d of %d bytes", cursor, spec.Length, len(buf)),
			Err:   errTruncated,
		}
	}
	text := strings.ToValidUTF8(string(trimPadding(buf[cursor:next])), "")
	v, err := convertText(spec, text)
	if err != nil {
		return nil, cursor, err
	}
	return v, next, nil
}

// ExtractKey decodes spec from an already-split key-value block.
func ExtractKey(values map[string]string, spec Spec) (interface{}, error) {
	key := spec.Key
	if key == "" {
		key = spec.Name
	}
	text, ok := values[key]
	if !ok {
		return nil, &DecodeError{Field: spec.Name, Err: errMissing}
	}
	return convertText(spec, strings.TrimSpace(text))
}

func trimPadding(raw []byte) []byte {
	isPad := func(b byte) bool { return strings.IndexByte(padding, b) >= 0 }
	for len(raw) > 0 && isPad(raw[0]) {
		raw = raw[1:]
	}
	for len(raw) > 0 && isPad(raw[len(raw)-1]) {
		raw = raw[:len(raw)-1]
	}
	return raw
}

func convertText(spec Spec, text string) (interface{}, error) {
	switch spec.Kind {
	case KindAuto:
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f, nil
		}
		return text, nil
	case KindText:
		return text, nil
	case KindInt:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, &DecodeError{Field: spec.Name, Raw: text, Err: err}
		}
		return i, nil
	case KindFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, &DecodeError{Field: spec.Name, Raw: text, Err: err}
		}
		return f, nil
	case KindBool:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, &DecodeError{Field: spec.Name, Raw: text, Err: err}
		}
		return i != 0, nil
	case KindEnum:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, &DecodeError{Field: spec.Name, Raw: text, Err: err}
		}
		return lookupEnum(spec, i)
	}
	return nil, &DecodeError{Field: spec.Name, Raw: text, Err: fmt.Errorf("kind %v not supported for text", spec.Kind)}
}

// DecodeBinary applies specs at their absolute offsets from base.
func DecodeBinary(buf []byte, base int, order binary.ByteOrder, specs []Spec) (*Header, error) {
	h := NewHeader()
	for _, spec := range specs {
		v, err := ExtractBinary(buf, base, order, spec)
		if err != nil {
			return nil, err
		}
		h.Set(spec.Name, v)
		if end := base + spec.Offset + spec.Length; end > h.Cursor {
			h.Cursor = end
		}
	}
	return h, nil
}

// DecodeText applies specs in order, each starting where the previous one
// ended.
func DecodeText(buf []byte, specs []Spec) (*Header, error) {
	h := NewHeader()
	cursor := 0
	for _, spec := range specs {
		v, next, err := ExtractText(buf, cursor, spec)
		if err != nil {
			return nil, err
		}
		h.Set(spec.Name, v)
		cursor = next
	}
	h.Cursor = cursor
	return h, nil
}
