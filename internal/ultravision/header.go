package ultravision

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/spectriclabs/ndt-readers/internal/field"
	"github.com/spectriclabs/ndt-readers/internal/grid"
)

// HeaderLines is the number of key = value lines in front of every data
// block.
const HeaderLines = 19

const defaultUnit = "mm"

// Size limits applied to header counts before anything is allocated.
const (
	maxAxisPoints   = 1 << 20
	maxBlockSamples = 1 << 28
)

// Geometry lists the header fields every block must declare, keyed by
// canonical name.
var Geometry = []field.Spec{
	{Name: "scan_start", Key: "ScanStart", Kind: field.KindFloat},
	{Name: "scan_resol", Key: "ScanResol", Kind: field.KindFloat},
	{Name: "scan_qty", Key: "ScanQty", Kind: field.KindInt},
	{Name: "index_start", Key: "IndexStart", Kind: field.KindFloat},
	{Name: "index_resol", Key: "IndexResol", Kind: field.KindFloat},
	{Name: "index_qty", Key: "IndexQty", Kind: field.KindInt},
	{Name: "usound_start", Key: "USoundStart", Kind: field.KindFloat},
	{Name: "usound_resol", Key: "USoundResol", Kind: field.KindFloat},
	{Name: "usound_qty", Key: "USoundQty", Kind: field.KindInt},
}

const focalLawKey = "Focal Law"

// blockHeader is one decoded header block.
type blockHeader struct {
	fields *field.Header
	// lines maps canonical keys to the untouched header line.
	lines  map[string]string
	units  map[string]string

	nx, ny, nz int
	x, y       []float64
	zStart     float64
	zStep      float64
	semantic   grid.Semantic
	focalLaw   float64
	hasFocal   bool
}

// canonicalKey drops every whitespace separated part of a raw key that
// carries a bracket and returns the remainder plus the unit, if the last
// part is wrapped in parentheses.
func canonicalKey(raw string) (key, unit string) {
	parts := strings.Fields(raw)
	kept := parts[:0:0]
	for _, p := range parts {
		if !strings.ContainsAny(p, "[]()") {
			kept = append(kept, p)
		}
	}
	if n := len(parts); n > 0 {
		last := parts[n-1]
		if len(last) >= 2 && last[0] == '(' && last[len(last)-1] == ')' {
			unit = last[1 : len(last)-1]
		}
	}
	return strings.Join(kept, " "), unit
}

// parseHeader decodes the HeaderLines lines of one block.
func parseHeader(lines []string) (*blockHeader, error) {
	b := &blockHeader{
		fields: field.NewHeader(),
		lines:  make(map[string]string, len(lines)),
		units:  make(map[string]string, len(lines)),
	}
	values := make(map[string]string, len(lines))
	for i, line := range lines {
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return nil, &field.DecodeError{
				Field: fmt.Sprintf("header line %d", i+1),
				Raw:   line,
				Err:   errors.New("expected key = value"),
			}
		}
		rawKey := strings.TrimSpace(line[:eq])
		key, unit := canonicalKey(rawKey)
		value := strings.TrimSpace(line[eq+1:])
		values[key] = value
		b.lines[key] = line
		if unit != "" {
			b.units[key] = unit
		}
		v, err := field.ExtractKey(values, field.Spec{Name: key, Kind: field.KindAuto})
		if err != nil {
			return nil, err
		}
		b.fields.Set(key, v)
	}

	geo := field.NewHeader()
	for _, spec := range Geometry {
		v, err := field.ExtractKey(values, spec)
		if err != nil {
			return nil, err
		}
		geo.Set(spec.Name, v)
	}
	var err error
	if b.nx, err = count(geo, "scan_qty"); err != nil {
		return nil, err
	}
	if b.ny, err = count(geo, "index_qty"); err != nil {
		return nil, err
	}
	if b.nz, err = count(geo, "usound_qty"); err != nil {
		return nil, err
	}
	if n := int64(b.nx) * int64(b.ny) * int64(b.nz); n > maxBlockSamples {
		return nil, &field.DecodeError{
			Field: "ScanQty*IndexQty*USoundQty",
			Raw:   fmt.Sprint(n),
			Err:   errors.Errorf("block exceeds %d samples", maxBlockSamples),
		}
	}
	xStart, _ := geo.Float("scan_start")
	xStep, _ := geo.Float("scan_resol")
	yStart, _ := geo.Float("index_start")
	yStep, _ := geo.Float("index_resol")
	b.x = grid.Range(xStart, xStep, b.nx)
	b.y = grid.Range(yStart, yStep, b.ny)
	b.zStart, _ = geo.Float("usound_start")
	b.zStep, _ = geo.Float("usound_resol")
	b.semantic = depthSemantic(b.lines["USoundStart"])

	if _, ok := values[focalLawKey]; ok {
		v, err := field.ExtractKey(values, field.Spec{Name: focalLawKey, Kind: field.KindFloat})
		if err != nil {
			return nil, err
		}
		b.focalLaw, b.hasFocal = v.(float64), true
		if math.IsNaN(b.focalLaw) || math.IsInf(b.focalLaw, 0) {
			return nil, &field.DecodeError{Field: focalLawKey, Raw: b.lines[focalLawKey], Err: errors.New("must be finite")}
		}
	}
	return b, nil
}

func count(h *field.Header, name string) (int, error) {
	n, err := h.Int(name)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, &field.DecodeError{Field: name, Raw: fmt.Sprint(n), Err: errors.New("must be positive")}
	}
	if n > maxAxisPoints {
		return 0, &field.DecodeError{Field: name, Raw: fmt.Sprint(n), Err: errors.Errorf("exceeds %d", maxAxisPoints)}
	}
	return n, nil
}

// depthSemantic reads the depth convention from the USoundStart line.
func depthSemantic(line string) grid.Semantic {
	s := strings.ToLower(line)
	switch {
	case strings.Contains(s, "half path"):
		return grid.SemanticHalfPath
	case strings.Contains(s, "true depth"):
		return grid.SemanticTrueDepth
	}
	return grid.SemanticUnknown
}

// unit returns the unit declared on key, or the export default.
func (b *blockHeader) unit(key string) string {
	if u, ok := b.units[key]; ok {
		return u
	}
	return defaultUnit
}
