// Package ultravision reads UltraVision phased-array text exports: a
// stream of (header, data) block pairs, one pair per focal law.
package ultravision

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/spectriclabs/ndt-readers/internal/field"
	"github.com/spectriclabs/ndt-readers/internal/grid"
)

const maxLineBytes = 64 << 20

var (
	ErrAngleCountMismatch = errors.New("ultravision: angle count does not match block count")
	ErrMissingAngle       = errors.New("ultravision: true depth conversion needs a refraction angle")
	ErrInvalidParams      = errors.New("ultravision: acquisition parameters must be finite")
)

// AngleCountMismatchError reports caller angles that do not line up with
// the blocks found in the file.
type AngleCountMismatchError struct {
	Angles int
	Blocks int
}

func (e *AngleCountMismatchError) Error() string {
	return fmt.Sprintf("ultravision: %d angles supplied for %d blocks", e.Angles, e.Blocks)
}

func (e *AngleCountMismatchError) Is(target error) bool { return target == ErrAngleCountMismatch }

// Params are the acquisition settings the export does not record
// reliably. SamplingFrequency is in Hz; WaveSpeed is in the header's
// depth unit per second.
type Params struct {
	Angles            []float64
	SamplingFrequency float64
	WaveSpeed         float64
}

// Validate rejects NaN and infinite settings.
func (p Params) Validate() error {
	if !finite(p.SamplingFrequency) {
		return errors.Wrapf(ErrInvalidParams, "fs=%v", p.SamplingFrequency)
	}
	if !finite(p.WaveSpeed) {
		return errors.Wrapf(ErrInvalidParams, "speed=%v", p.WaveSpeed)
	}
	for i, a := range p.Angles {
		if !finite(a) {
			return errors.Wrapf(ErrInvalidParams, "angle %d=%v", i, a)
		}
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Trusted reports whether the depth axis can be rebuilt as time.
func (p Params) Trusted() bool {
	return p.SamplingFrequency > 0 && p.WaveSpeed > 0
}

// Export is a decoded file. Headers holds one entry per decoded header;
// with trusted parameters only the first header is decoded.
type Export struct {
	Dataset  grid.Dataset
	Headers  []*field.Header
	Warnings []grid.Warning
}

func ReadFile(path string, p Params) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "ultravision: open")
	}
	defer f.Close()
	return Decode(f, p)
}

// Decode reads blocks until the stream ends at a header boundary. Only
// one data block is held as text at a time.
func Decode(r io.Reader, p Params) (*Export, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rd := newLineReader(r)
	trusted := p.Trusted()
	out := &Export{}
	if !trusted {
		out.Warnings = append(out.Warnings, grid.Warning{
			Kind:    grid.WarnAmbiguousAxis,
			Field:   "USoundResol",
			Message: "sampling frequency and wave speed not given; depth axis uses the header resolution, which is imprecise",
		})
	}

	var (
		first  *blockHeader
		axes   []grid.Axis
		blocks []*grid.Grid
		focal  []float64
	)
	for n := 0; ; n++ {
		lines, err := rd.header()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		b := first
		if first == nil || !trusted {
			if b, err = parseHeader(lines); err != nil {
				return nil, err
			}
			out.Headers = append(out.Headers, b.fields)
			if b.semantic == grid.SemanticUnknown {
				msg := "depth convention not found in header; axis tagged unknown"
				if trusted {
					msg = "depth convention not found in header; converted as true depth"
				}
				out.Warnings = append(out.Warnings, grid.Warning{Kind: grid.WarnAmbiguousAxis, Field: "USoundStart", Message: msg})
			}
			if axes, err = blockAxes(b, p, trusted); err != nil {
				return nil, err
			}
			if first == nil {
				first = b
			}
		}

		data, err := rd.block(b.nx, b.ny, b.nz)
		if err != nil {
			return nil, errors.WithMessagef(err, "ultravision: block %d", n)
		}
		g, err := grid.New(data, axes...)
		if err != nil {
			return nil, err
		}
		g.Metadata = b.fields.Map()
		g.Metadata["depth_semantic"] = string(b.semantic)

		id := float64(n)
		if b.hasFocal {
			id = b.focalLaw
			if trusted {
				id += float64(n)
			}
		}
		blocks = append(blocks, g)
		focal = append(focal, id)
	}

	if len(blocks) == 0 {
		return nil, &grid.IntegrityError{What: "data blocks", Expected: 1, Actual: 0, Detail: "no header found"}
	}
	if len(p.Angles) > 0 && len(p.Angles) != len(blocks) {
		return nil, &AngleCountMismatchError{Angles: len(p.Angles), Blocks: len(blocks)}
	}

	ds, err := merge(blocks, focal, p, trusted)
	if err != nil {
		return nil, err
	}
	out.Dataset = ds
	return out, nil
}

func merge(blocks []*grid.Grid, focal []float64, p Params, trusted bool) (grid.Dataset, error) {
	if len(blocks) == 1 {
		if len(p.Angles) > 0 {
			blocks[0].Metadata["angle"] = p.Angles[0]
		}
		return grid.Single{Grid: blocks[0]}, nil
	}

	if trusted {
		var (
			angle grid.Axis
			err   error
		)
		if len(p.Angles) > 0 {
			angle, err = grid.NewAxis("angle", p.Angles, "degrees", grid.SemanticAngle)
		} else {
			angle, err = grid.NewAxis("angle", focal, "index", grid.SemanticFocalLaw)
		}
		if err != nil {
			return nil, err
		}
		g, err := grid.Stack(blocks, angle)
		if err != nil {
			return nil, err
		}
		return grid.Single{Grid: g}, nil
	}

	keys := focal
	if len(p.Angles) > 0 {
		keys = p.Angles
	}
	ds := grid.NewKeyed()
	for i, g := range blocks {
		if err := ds.Add(keys[i], g); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// blockAxes builds the (X, Y, depth) axes for b.
func blockAxes(b *blockHeader, p Params, trusted bool) ([]grid.Axis, error) {
	x, err := grid.NewAxis("X", b.x, b.unit("ScanResol"), grid.SemanticPosition)
	if err != nil {
		return nil, err
	}
	y, err := grid.NewAxis("Y", b.y, b.unit("IndexResol"), grid.SemanticPosition)
	if err != nil {
		return nil, err
	}

	var depth grid.Axis
	if trusted {
		start, err := travelTime(b.zStart, b.semantic, p)
		if err != nil {
			return nil, err
		}
		depth, err = grid.RangeAxis("depth", start, 1/p.SamplingFrequency, b.nz, "seconds", grid.SemanticTime)
		if err != nil {
			return nil, err
		}
	} else {
		depth, err = grid.RangeAxis("depth", b.zStart, b.zStep, b.nz, b.unit("USoundResol"), b.semantic)
		if err != nil {
			return nil, err
		}
	}
	return []grid.Axis{x, y, depth}, nil
}

// travelTime converts a depth start into round-trip time. Unknown
// conventions are converted as true depth.
func travelTime(start float64, semantic grid.Semantic, p Params) (float64, error) {
	if semantic == grid.SemanticHalfPath {
		return start * 2 / p.WaveSpeed, nil
	}
	if len(p.Angles) == 0 {
		return 0, ErrMissingAngle
	}
	theta := p.Angles[0] * math.Pi / 180
	return start * 2 / (p.WaveSpeed * math.Cos(theta)), nil
}

type lineReader struct {
	sc   *bufio.Scanner
	line int
}

func newLineReader(r io.Reader) *lineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &lineReader{sc: sc}
}

func (r *lineReader) scan() (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", errors.Wrapf(err, "ultravision: line %d", r.line+1)
		}
		return "", io.EOF
	}
	r.line++
	return strings.TrimRight(r.sc.Text(), "\r"), nil
}

// header returns the next HeaderLines non-blank lines. io.EOF means the
// stream ended cleanly before a new header.
func (r *lineReader) header() ([]string, error) {
	lines := make([]string, 0, HeaderLines)
	for len(lines) < HeaderLines {
		line, err := r.scan()
		if err == io.EOF {
			if len(lines) == 0 {
				return nil, io.EOF
			}
			return nil, &grid.IntegrityError{What: "header lines", Expected: HeaderLines, Actual: len(lines), Detail: "stream ended inside a header"}
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// block reads nx*ny tab separated rows of nz samples into an (X, Y,
// depth) buffer. Row r holds position x = r mod nx, y = r div nx. The
// buffer grows with the rows actually read.
func (r *lineReader) block(nx, ny, nz int) ([]float64, error) {
	rows := nx * ny
	var raw []float64
	for row := 0; row < rows; row++ {
		line, err := r.scan()
		if err == io.EOF {
			return nil, &grid.IntegrityError{What: "data rows", Expected: rows, Actual: row, Detail: "stream ended inside a data block"}
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" && !strings.Contains(line, "\t") {
			return nil, &grid.IntegrityError{What: "data rows", Expected: rows, Actual: row, Detail: fmt.Sprintf("blank line %d inside a data block", r.line)}
		}
		cells := strings.Split(line, "\t")
		// exports end every row with a tab
		if len(cells) == nz+1 && strings.TrimSpace(cells[nz]) == "" {
			cells = cells[:nz]
		}
		if len(cells) != nz {
			return nil, &grid.IntegrityError{What: fmt.Sprintf("samples on line %d", r.line), Expected: nz, Actual: len(cells)}
		}
		for z, cell := range cells {
			v, err := parseCell(cell)
			if err != nil {
				return nil, &field.DecodeError{Field: fmt.Sprintf("line %d column %d", r.line, z+1), Raw: cell, Err: err}
			}
			raw = append(raw, v)
		}
	}

	data := make([]float64, len(raw))
	for row := 0; row < rows; row++ {
		x, y := row%nx, row/nx
		copy(data[(x*ny+y)*nz:], raw[row*nz:(row+1)*nz])
	}
	return data, nil
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}
