package grid

import (
	"errors"
	"fmt"
)

// Semantic tags what an axis measures.
type Semantic string

const (
	SemanticTime      Semantic = "time"
	SemanticHalfPath  Semantic = "half-path"
	SemanticTrueDepth Semantic = "true-depth"
	SemanticUnknown   Semantic = "unknown"
	SemanticPosition  Semantic = "position"
	SemanticAngle     Semantic = "angle"
	SemanticFocalLaw  Semantic = "focal-law"
)

// Axis is a calibrated coordinate sequence. Axes are never modified after
// construction.
type Axis struct {
	Name     string    `json:"name"`
	Values   []float64 `json:"values"`
	Unit     string    `json:"unit"`
	Semantic Semantic  `json:"semantic"`
}

var errNoUnit = errors.New("axis has no unit")

// NewAxis copies values into a new axis. Every axis must carry a unit.
func NewAxis(name string, values []float64, unit string, semantic Semantic) (Axis, error) {
	if unit == "" {
		return Axis{}, fmt.Errorf("axis %q: %w", name, errNoUnit)
	}
	v := make([]float64, len(values))
	copy(v, values)
	return Axis{Name: name, Values: v, Unit: unit, Semantic: semantic}, nil
}

// Range returns start + i*step for i in [0, n).
func Range(start, step float64, n int) []float64 {
	if n < 0 {
		n = 0
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// RangeAxis builds an axis from a (start, step, count) triple.
func RangeAxis(name string, start, step float64, n int, unit string, semantic Semantic) (Axis, error) {
	return NewAxis(name, Range(start, step, n), unit, semantic)
}

func (a Axis) Len() int { return len(a.Values) }
