package grid

import (
	"fmt"
)

// Grid is an N-dimensional block of samples stored row-major, with one
// axis per dimension. A Grid owns its Data and Axes.
type Grid struct {
	Data     []float64              `json:"-"`
	Axes     []Axis                 `json:"axes"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// New wraps data with axes. The product of the axis lengths must equal
// len(data); a mismatch fails with an IntegrityError instead of producing
// a misshapen grid.
func New(data []float64, axes ...Axis) (*Grid, error) {
	if len(axes) == 0 {
		return nil, fmt.Errorf("grid: no axes")
	}
	n := 1
	for _, a := range axes {
		if a.Unit == "" {
			return nil, fmt.Errorf("grid: axis %q: %w", a.Name, errNoUnit)
		}
		n *= a.Len()
	}
	if err := CheckCount("samples for shape "+shapeString(axes), n, len(data)); err != nil {
		return nil, err
	}
	return &Grid{Data: data, Axes: axes, Metadata: make(map[string]interface{})}, nil
}

func shapeString(axes []Axis) string {
	s := "("
	for i, a := range axes {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s=%d", a.Name, a.Len())
	}
	return s + ")"
}

// Shape returns the length of each dimension.
func (g *Grid) Shape() []int {
	out := make([]int, len(g.Axes))
	for i, a := range g.Axes {
		out[i] = a.Len()
	}
	return out
}

func (g *Grid) Dims() int { return len(g.Axes) }

// Axis returns the axis called name.
func (g *Grid) Axis(name string) (Axis, bool) {
	for _, a := range g.Axes {
		if a.Name == name {
			return a, true
		}
	}
	return Axis{}, false
}

// Index converts a multi-dimensional index to the offset into Data.
func (g *Grid) Index(idx ...int) int {
	if len(idx) != len(g.Axes) {
		panic(fmt.Sprintf("grid: %d indices for %d dimensions", len(idx), len(g.Axes)))
	}
	off := 0
	for i, a := range g.Axes {
		if idx[i] < 0 || idx[i] >= a.Len() {
			panic(fmt.Sprintf("grid: index %d out of range for axis %q (len %d)", idx[i], a.Name, a.Len()))
		}
		off = off*a.Len() + idx[i]
	}
	return off
}

func (g *Grid) At(idx ...int) float64 {
	return g.Data[g.Index(idx...)]
}

// Stack combines equally shaped grids along a new trailing axis. The
// sources are released as they are copied, so callers must not use them
// afterwards.
func Stack(grids []*Grid, axis Axis) (*Grid, error) {
	if len(grids) == 0 {
		return nil, fmt.Errorf("grid: nothing to stack")
	}
	if err := CheckCount("stacked blocks for axis "+axis.Name, axis.Len(), len(grids)); err != nil {
		return nil, err
	}
	first := grids[0]
	block := len(first.Data)
	for i, g := range grids[1:] {
		if err := CheckCount(fmt.Sprintf("samples in block %d", i+1), block, len(g.Data)); err != nil {
			return nil, err
		}
	}

	axes := make([]Axis, 0, len(first.Axes)+1)
	axes = append(axes, first.Axes...)
	axes = append(axes, axis)

	n := len(grids)
	data := make([]float64, block*n)
	for k, g := range grids {
		for i, v := range g.Data {
			data[i*n+k] = v
		}
		g.Data = nil
	}

	out, err := New(data, axes...)
	if err != nil {
		return nil, err
	}
	for k, v := range first.Metadata {
		out.Metadata[k] = v
	}
	return out, nil
}
