package grid

import (
	"math"
	"strconv"
)

// Dataset is the result of a decode: either a Single grid or a Keyed
// collection of grids whose axes could not be merged. Callers switch on
// the concrete type.
type Dataset interface {
	dataset()
}

type Single struct {
	Grid *Grid
}

// Keyed holds one grid per channel/angle identifier. Keys preserves the
// order the blocks were read in.
type Keyed struct {
	Keys  []float64
	Grids map[float64]*Grid
}

func (Single) dataset() {}
func (Keyed) dataset()  {}

func NewKeyed() Keyed {
	return Keyed{Grids: make(map[float64]*Grid)}
}

// Add appends a grid under key. A key must be finite and can be used
// only once.
func (k *Keyed) Add(key float64, g *Grid) error {
	if math.IsNaN(key) || math.IsInf(key, 0) {
		return &IntegrityError{
			What:     "finite block keys",
			Expected: len(k.Keys) + 1,
			Actual:   len(k.Keys),
			Detail:   "non-finite key " + strconv.FormatFloat(key, 'g', -1, 64),
		}
	}
	if g == nil {
		return &IntegrityError{What: "block grids", Expected: len(k.Keys) + 1, Actual: len(k.Keys), Detail: "nil grid"}
	}
	if _, dup := k.Grids[key]; dup {
		return &IntegrityError{
			What:     "distinct block keys",
			Expected: len(k.Keys) + 1,
			Actual:   len(k.Keys),
			Detail:   "duplicate key " + strconv.FormatFloat(key, 'g', -1, 64),
		}
	}
	k.Keys = append(k.Keys, key)
	k.Grids[key] = g
	return nil
}

// Grids returns every grid held by d, in order.
func Grids(d Dataset) []*Grid {
	switch v := d.(type) {
	case Single:
		return []*Grid{v.Grid}
	case Keyed:
		out := make([]*Grid, 0, len(v.Keys))
		for _, k := range v.Keys {
			out = append(out, v.Grids[k])
		}
		return out
	}
	return nil
}
