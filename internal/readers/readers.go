// Package readers picks the decoder for a file and reduces decoded grids
// to summaries.
package readers

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/spectriclabs/ndt-readers/internal/field"
	"github.com/spectriclabs/ndt-readers/internal/grid"
	"github.com/spectriclabs/ndt-readers/internal/lecroy"
	"github.com/spectriclabs/ndt-readers/internal/numerical"
	"github.com/spectriclabs/ndt-readers/internal/saft"
	"github.com/spectriclabs/ndt-readers/internal/ultravision"
)

type Format string

const (
	LeCroy      Format = "lecroy"
	SAFT        Format = "saft"
	UltraVision Format = "ultravision"
)

var ErrUnknownFormat = errors.New("readers: unknown file format")

var extensions = map[string]Format{
	".trc":  LeCroy,
	".saft": SAFT,
	".sft":  SAFT,
	".txt":  UltraVision,
}

// FormatFromPath picks a format by file extension.
func FormatFromPath(path string) (Format, error) {
	if f, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return f, nil
	}
	return "", errors.Wrap(ErrUnknownFormat, path)
}

// ParseFormat accepts a format name as given on a command line or query.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case LeCroy, SAFT, UltraVision:
		return f, nil
	}
	return "", errors.Wrap(ErrUnknownFormat, name)
}

// Result is the outcome of decoding one file with any of the formats.
type Result struct {
	Format   Format
	Dataset  grid.Dataset
	Headers  []*field.Header
	Warnings []grid.Warning
}

// Decode reads r as format. params only applies to UltraVision exports.
func Decode(r io.Reader, format Format, params ultravision.Params) (*Result, error) {
	switch format {
	case LeCroy:
		w, err := lecroy.Decode(r)
		if err != nil {
			return nil, err
		}
		return &Result{
			Format:   format,
			Dataset:  grid.Single{Grid: w.Grid},
			Headers:  []*field.Header{w.Header},
			Warnings: w.Warnings,
		}, nil
	case SAFT:
		v, err := saft.Decode(r)
		if err != nil {
			return nil, err
		}
		return &Result{
			Format:  format,
			Dataset: grid.Single{Grid: v.Grid},
			Headers: []*field.Header{v.Header},
		}, nil
	case UltraVision:
		e, err := ultravision.Decode(r, params)
		if err != nil {
			return nil, err
		}
		return &Result{
			Format:   format,
			Dataset:  e.Dataset,
			Headers:  e.Headers,
			Warnings: e.Warnings,
		}, nil
	}
	return nil, errors.Wrap(ErrUnknownFormat, string(format))
}

// AxisSummary describes an axis without its full value list.
type AxisSummary struct {
	Name     string        `json:"name"`
	Unit     string        `json:"unit"`
	Semantic grid.Semantic `json:"semantic"`
	Len      int           `json:"len"`
	First    float64       `json:"first"`
	Last     float64       `json:"last"`
}

type GridSummary struct {
	Key   *float64          `json:"key,omitempty"`
	Shape []int             `json:"shape"`
	Axes  []AxisSummary     `json:"axes"`
	Stats numerical.Summary `json:"stats"`
}

type Summary struct {
	Format   Format         `json:"format"`
	Grids    []GridSummary  `json:"grids"`
	Warnings []grid.Warning `json:"warnings"`
}

// Summarize reduces every grid in res. Keyed datasets keep their order.
func Summarize(res *Result) Summary {
	s := Summary{Format: res.Format, Warnings: res.Warnings}
	if s.Warnings == nil {
		s.Warnings = []grid.Warning{}
	}
	var keys []float64
	if k, ok := res.Dataset.(grid.Keyed); ok {
		keys = k.Keys
	}
	for i, g := range grid.Grids(res.Dataset) {
		gs := GridSummary{Shape: g.Shape(), Stats: numerical.Summarize(g.Data)}
		if keys != nil {
			key := keys[i]
			gs.Key = &key
		}
		for _, a := range g.Axes {
			as := AxisSummary{Name: a.Name, Unit: a.Unit, Semantic: a.Semantic, Len: a.Len()}
			if a.Len() > 0 {
				as.First, as.Last = a.Values[0], a.Values[a.Len()-1]
			}
			gs.Axes = append(gs.Axes, as)
		}
		s.Grids = append(s.Grids, gs)
	}
	return s
}

// Describe is a one-line human description of a summary.
func (s Summary) Describe() string {
	shapes := make([]string, len(s.Grids))
	for i, g := range s.Grids {
		shapes[i] = fmt.Sprint(g.Shape)
	}
	return fmt.Sprintf("%s: %d grid(s) %s, %d warning(s)", s.Format, len(s.Grids), strings.Join(shapes, " "), len(s.Warnings))
}
