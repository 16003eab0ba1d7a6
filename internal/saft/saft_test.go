package saft

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectriclabs/ndt-readers/internal/field"
	"github.com/spectriclabs/ndt-readers/internal/grid"
)

// header renders Layout with the given values; numeric fields default to 0.
func header(values map[string]string) []byte {
	var buf bytes.Buffer
	for _, spec := range Layout {
		v, ok := values[spec.Name]
		if !ok {
			switch spec.Kind {
			case field.KindInt, field.KindFloat, field.KindBool:
				v = "0"
			}
		}
		buf.WriteString(v)
		pad := "\xcd"
		if spec.Kind == field.KindInt {
			pad = " "
		}
		buf.WriteString(strings.Repeat(pad, spec.Length-len(v)))
	}
	return buf.Bytes()
}

func scanHeader() map[string]string {
	return map[string]string{
		"ascii":               "ASCII",
		"title":               "weld 7 circumferential",
		"data_16bit":          "1",
		"scan_xpoints":        "2",
		"scan_ypoints":        "2",
		"samp_ascan_length":   "10",
		"samp_windowstart_ns": "1000",
		"samp_windowstop_ns":  "2000",
		"scan_xstart_in":      "1",
		"scan_xstep_in":       "0.5",
		"scan_ystart_in":      "0",
		"scan_ystep_in":       "2",
		"scan_isdownstream":   "Y",
		"vpp":                 "100",
	}
}

// payload16 writes nx*ny A-scans whose sample t at (y, x) is
// 32768 + 100y + 10x + t.
func payload16(nx, ny, ns int) []byte {
	var buf bytes.Buffer
	word := make([]byte, 2)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			buf.Write(make([]byte, ascanHeaderBytes))
			for t := 0; t < ns; t++ {
				binary.LittleEndian.PutUint16(word, uint16(32768+100*y+10*x+t))
				buf.Write(word)
			}
		}
	}
	return buf.Bytes()
}

func TestLayoutCoversHeader(t *testing.T) {
	total := 0
	for _, spec := range Layout {
		total += spec.Length
	}
	assert.Equal(t, HeaderLength, total)
	assert.Len(t, Layout, 79)
	assert.Len(t, header(scanHeader()), HeaderLength)
}

func TestDecode(t *testing.T) {
	raw := append(header(scanHeader()), payload16(2, 2, 10)...)
	v, err := Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, []int{2, 10, 2}, v.Grid.Shape())
	require.Equal(t, 3, v.Grid.Dims())
	for i, name := range []string{"Y", "time", "X"} {
		assert.Equal(t, name, v.Grid.Axes[i].Name)
	}

	for y := 0; y < 2; y++ {
		for ti := 0; ti < 10; ti++ {
			for x := 0; x < 2; x++ {
				assert.Equal(t, float64(100*y+10*x+ti), v.Grid.At(y, ti, x))
			}
		}
	}

	tm, _ := v.Grid.Axis("time")
	assert.Equal(t, "seconds", tm.Unit)
	assert.InDelta(t, 1e-6, tm.Values[0], 1e-15)
	assert.InDelta(t, 1e-6+9e-7, tm.Values[9], 1e-15)

	x, _ := v.Grid.Axis("X")
	assert.Equal(t, "meters", x.Unit)
	assert.InDeltaSlice(t, []float64{0.0254, 0.0381}, x.Values, 1e-12)
	y, _ := v.Grid.Axis("Y")
	assert.InDeltaSlice(t, []float64{0, 0.0508}, y.Values, 1e-12)

	expected := []struct {
		Name   string
		Output interface{}
	}{
		{Name: "ascii", Output: "ASCII"},
		{Name: "title", Output: "weld 7 circumferential"},
		{Name: "data_16bit", Output: true},
		{Name: "scan_xpoints", Output: int64(2)},
		{Name: "scan_isdownstream", Output: "Y"},
		{Name: "samp_windowstop_ns", Output: 2000.0},
		{Name: "vpp", Output: 100.0},
		{Name: "date", Output: ""},
		{Name: "sampling_rate", Output: 1e7},
	}
	for _, exp := range expected {
		got, ok := v.Header.Get(exp.Name)
		require.True(t, ok, exp.Name)
		assert.Equal(t, exp.Output, got, exp.Name)
	}
}

func TestDecode8Bit(t *testing.T) {
	values := scanHeader()
	values["data_16bit"] = "0"
	values["scan_xpoints"] = "1"
	values["scan_ypoints"] = "1"
	values["samp_ascan_length"] = "3"

	raw := header(values)
	raw = append(raw, make([]byte, ascanHeaderBytes)...)
	raw = append(raw, 0, 128, 255)

	v, err := Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, []float64{-128, 0, 127}, v.Grid.Data)
}

func TestDecodeIntegrity(t *testing.T) {
	full := append(header(scanHeader()), payload16(2, 2, 10)...)

	tests := []struct {
		Name string
		Raw  []byte
	}{
		{Name: "one value short", Raw: full[:len(full)-2]},
		{Name: "odd byte", Raw: full[:len(full)-1]},
		{Name: "extra a-scan", Raw: append(append([]byte{}, full...), payload16(1, 1, 10)...)},
		{Name: "header only", Raw: full[:HeaderLength]},
		{Name: "short header", Raw: full[:100]},
	}
	for _, test := range tests {
		_, err := Decode(bytes.NewReader(test.Raw))
		assert.True(t, errors.Is(err, grid.ErrIntegrity), "%s: %v", test.Name, err)
	}
}

func TestDecodeBadHeader(t *testing.T) {
	values := scanHeader()
	values["samp_windowstop_ns"] = "1000"
	raw := append(header(values), payload16(2, 2, 10)...)
	_, err := Decode(bytes.NewReader(raw))
	assert.True(t, errors.Is(err, field.ErrFieldDecode), "empty window: %v", err)

	values = scanHeader()
	values["scan_xpoints"] = "two"
	_, err = Decode(bytes.NewReader(header(values)))
	var de *field.DecodeError
	require.True(t, errors.As(err, &de), "%v", err)
	assert.Equal(t, "scan_xpoints", de.Field)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.saft")
	require.NoError(t, os.WriteFile(path, append(header(scanHeader()), payload16(2, 2, 10)...), 0644))

	v, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 10, 2}, v.Grid.Shape())
}
