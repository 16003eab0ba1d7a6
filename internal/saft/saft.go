// Package saft reads volumes written by the SAFT ultrasonic scanner: a
// 2048-byte ASCII header followed by one A-scan per scan position.
package saft

import (
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

const (
	// ascanHeaderBytes precedes every A-scan and carries no samples.
	ascanHeaderBytes = 32
	inchToMeter      = 25.4e-3
)

// Volume is a decoded scan with dimensions (Y, time, X).
type Volume struct {
	Header *field.Header
	Grid   *grid.Grid
}

func ReadFile(path string) (*Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "saft: open")
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (*Volume, error) {
	head := make([]byte, HeaderLength)
	n, err := io.ReadFull(r, head)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return nil, &grid.IntegrityError{What: "header bytes", Expected: HeaderLength, Actual: n}
	} else if err != nil {
		return nil, errors.Wrap(err, "saft: read header")
	}
	h, err := field.DecodeText(head, Layout)
	if err != nil {
		return nil, err
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "saft: read samples")
	}
	return decodeVolume(h, payload)
}

func decodeVolume(h *field.Header, payload []byte) (*Volume, error) {
	wide, err := h.Bool("data_16bit")
	if err != nil {
		return nil, err
	}
	format := sample.Uint8
	if wide {
		format = sample.Uint16
	}

	nx, err := positive(h, "scan_xpoints")
	if err != nil {
		return nil, err
	}
	ny, err := positive(h, "scan_ypoints")
	if err != nil {
		return nil, err
	}
	ns, err := positive(h, "samp_ascan_length")
	if err != nil {
		return nil, err
	}

	total, even := sample.Count(len(payload), format)
	if !even {
		return nil, &grid.IntegrityError{
			What:     "sample bytes",
			Expected: total * sample.BytesPerSample[format],
			Actual:   len(payload),
			Detail:   "not a whole number of " + format.String() + " samples",
		}
	}
	hdrWords := ascanHeaderBytes / sample.BytesPerSample[format]
	stride := ns + hdrWords
	if nx > total/ny || total%stride != 0 || total/stride != nx*ny {
		return nil, &grid.IntegrityError{
			What:     "a-scans",
			Expected: nx * ny,
			Actual:   total / stride,
			Detail:   fmt.Sprintf("%d samples do not split into a-scans of %d+%d", total, hdrWords, ns),
		}
	}
	raw := sample.Convert(payload, format, binary.LittleEndian)

	data := make([]float64, nx*ny*ns)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			src := (y*nx+x)*stride + hdrWords
			for t := 0; t < ns; t++ {
				data[(y*ns+t)*nx+x] = raw[src+t]
			}
		}
	}
	numerical.Center(data, format.Bits())

	dims, err := axes(h, nx, ny, ns)
	if err != nil {
		return nil, err
	}
	g, err := grid.New(data, dims...)
	if err != nil {
		return nil, err
	}
	g.Metadata = h.Map()
	return &Volume{Header: h, Grid: g}, nil
}

func axes(h *field.Header, nx, ny, ns int) ([]grid.Axis, error) {
	start, err := h.Float("samp_windowstart_ns")
	if err != nil {
		return nil, err
	}
	stop, err := h.Float("samp_windowstop_ns")
	if err != nil {
		return nil, err
	}
	window := stop - start
	if window == 0 || math.IsNaN(window) {
		return nil, &field.DecodeError{
			Field: "samp_windowstop_ns",
			Raw:   fmt.Sprint(stop),
			Err:   errors.New("sampling window is empty"),
		}
	}
	rate := float64(ns) * 1e9 / window
	h.Set("sampling_rate", rate)

	t, err := grid.RangeAxis("time", start*1e-9, 1/rate, ns, "seconds", grid.SemanticTime)
	if err != nil {
		return nil, err
	}
	y, err := scanAxis(h, "Y", "scan_ystart_in", "scan_ystep_in", ny)
	if err != nil {
		return nil, err
	}
	x, err := scanAxis(h, "X", "scan_xstart_in", "scan_xstep_in", nx)
	if err != nil {
		return nil, err
	}
	return []grid.Axis{y, t, x}, nil
}

func scanAxis(h *field.Header, name, startField, stepField string, n int) (grid.Axis, error) {
	start, err := h.Float(startField)
	if err != nil {
		return grid.Axis{}, err
	}
	step, err := h.Float(stepField)
	if err != nil {
		return grid.Axis{}, err
	}
	return grid.RangeAxis(name, start*inchToMeter, step*inchToMeter, n, "meters", grid.SemanticPosition)
}

func positive(h *field.Header, name string) (int, error) {
	n, err := h.Int(name)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, &field.DecodeError{Field: name, Raw: fmt.Sprint(n), Err: errors.New("must be positive")}
	}
	return n, nil
}
