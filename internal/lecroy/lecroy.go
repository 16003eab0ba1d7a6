// Package lecroy decodes LeCroy oscilloscope waveform files (.trc).
package lecroy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/spectriclabs/ndt-readers/internal/field"
	"github.com/spectriclabs/ndt-readers/internal/grid"
	"github.com/spectriclabs/ndt-readers/internal/numerical"
	"github.com/spectriclabs/ndt-readers/internal/sample"
)

var ErrTemplateMarkerNotFound = errors.New("lecroy: " + Marker + " marker not found")

// Waveform is one decoded trace.
type Waveform struct {
	Header   *field.Header
	Grid     *grid.Grid
	Warnings []grid.Warning
}

func ReadFile(path string) (*Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "lecroy: open")
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (*Waveform, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "lecroy: read")
	}
	return DecodeBytes(buf)
}

// ByteOrder reads the COMM_ORDER byte: 0 is big endian, 1 little endian.
// Any other value falls back to little endian with ok == false.
func ByteOrder(b byte) (order binary.ByteOrder, ok bool) {
	switch b {
	case 0:
		return binary.BigEndian, true
	case 1:
		return binary.LittleEndian, true
	}
	return binary.LittleEndian, false
}

// DecodeBytes decodes a complete waveform file held in memory.
func DecodeBytes(buf []byte) (*Waveform, error) {
	window := buf
	if len(window) > markerWindow {
		window = window[:markerWindow]
	}
	base := bytes.Index(window, []byte(Marker))
	if base < 0 {
		return nil, ErrTemplateMarkerNotFound
	}
	if base+descriptorLen > len(buf) {
		return nil, &grid.IntegrityError{
			What:     "descriptor bytes",
			Expected: descriptorLen,
			Actual:   len(buf) - base,
		}
	}

	w := &Waveform{}
	order, ok := ByteOrder(buf[base+offCommOrder])
	if !ok {
		w.Warnings = append(w.Warnings, grid.Warning{
			Kind:    grid.WarnUnrecognizedByteOrder,
			Field:   "comm_order",
			Message: fmt.Sprintf("value %d is neither 0 (big endian) nor 1 (little endian); assuming little endian", buf[base+offCommOrder]),
		})
	}

	h, err := field.DecodeBinary(buf, base, order, Template)
	if err != nil {
		return nil, err
	}
	if name := h.String("template_name"); name != TestedTemplate {
		w.Warnings = append(w.Warnings, grid.Warning{
			Kind:    grid.WarnUnsupportedTemplate,
			Field:   "template_name",
			Message: fmt.Sprintf("layout checked against %s, file uses %q; fields are read at the same offsets", TestedTemplate, name),
		})
	}
	if err := derive(h); err != nil {
		return nil, err
	}
	w.Header = h

	data, err := samples(buf, base, order, h)
	if err != nil {
		return nil, err
	}

	gain, _ := h.Float("vertical_gain")
	offset, _ := h.Float("vertical_offset")
	numerical.Calibrate(data, gain, offset)

	interval, _ := h.Float("horiz_interval")
	start, _ := h.Float("horiz_offset")
	axis, err := grid.RangeAxis("time", start, interval, len(data), "seconds", grid.SemanticTime)
	if err != nil {
		return nil, err
	}
	g, err := grid.New(data, axis)
	if err != nil {
		return nil, err
	}
	g.Metadata = h.Map()
	w.Grid = g
	return w, nil
}

// samples locates and converts the raw sample array.
func samples(buf []byte, base int, order binary.ByteOrder, h *field.Header) ([]float64, error) {
	var blocks int
	for _, name := range []string{"wave_descriptor", "user_text", "trigtime_array"} {
		n, err := h.Int(name)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, &field.DecodeError{Field: name, Raw: fmt.Sprint(n), Err: errors.New("negative block length")}
		}
		blocks += n
	}
	start := base + blocks
	if start > len(buf) {
		return nil, &grid.IntegrityError{
			What:     "sample array start",
			Expected: start,
			Actual:   len(buf),
			Detail:   "file ends before the sample array",
		}
	}
	payload := buf[start:]

	format := sample.Int8
	if commType, _ := h.Int("comm_type"); commType != 0 {
		format = sample.Int16
	}
	n, even := sample.Count(len(payload), format)
	if !even {
		return nil, &grid.IntegrityError{
			What:     "sample array bytes",
			Expected: n * sample.BytesPerSample[format],
			Actual:   len(payload),
			Detail:   "not a whole number of " + format.String() + " samples",
		}
	}
	declared, _ := h.Int("wave_array_1")
	if declared > len(payload) {
		return nil, &grid.IntegrityError{What: "sample array bytes", Expected: declared, Actual: len(payload)}
	}
	return sample.Convert(payload, format, order), nil
}

// decade expands the 1-2-5 exponent codes used for timebase and fixed
// vertical gain.
func decade(code int, exponent int) (float64, bool) {
	if code < 0 {
		return 0, false
	}
	mantissa := []float64{1, 2, 5}[code%3]
	return mantissa * math.Pow(10, float64(code/3+exponent)), true
}

// derive adds the quantities the reference reader reports alongside the
// raw descriptor fields.
func derive(h *field.Header) error {
	source, err := h.Int("wave_source")
	if err != nil {
		return err
	}
	h.Set("channel", int64(source+1))

	probe, _ := h.Float("probe_att")
	gainCode, _ := h.Int("fixed_vert_gain")
	if g, ok := decade(gainCode, -6); ok {
		h.Set("gain_with_probe", g*probe)
	}
	timebaseCode, _ := h.Int("timebase")
	if tb, ok := decade(timebaseCode, -12); ok {
		h.Set("timebase_seconds", tb)
	}

	interval, _ := h.Float("horiz_interval")
	if interval <= 0 || math.IsNaN(interval) {
		return &field.DecodeError{Field: "horiz_interval", Raw: fmt.Sprint(interval), Err: errors.New("sample interval must be positive")}
	}
	h.Set("Ts", interval)
	h.Set("Fs", 1/interval)

	segments, _ := h.Int("subarray_count")
	h.Set("nb_segments", int64(segments))
	return nil
}
