package grid

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAxis(t *testing.T, name string, n int) Axis {
	t.Helper()
	a, err := RangeAxis(name, 0, 1, n, "mm", SemanticPosition)
	require.NoError(t, err)
	return a
}

func TestRange(t *testing.T) {
	expected := []struct {
		Start, Step float64
		N           int
		Output      []float64
	}{
		{Start: 0, Step: 1, N: 3, Output: []float64{0, 1, 2}},
		{Start: -1, Step: 0.5, N: 4, Output: []float64{-1, -0.5, 0, 0.5}},
		{Start: 5, Step: 2, N: 0, Output: []float64{}},
		{Start: 5, Step: 2, N: -3, Output: []float64{}},
	}

	for _, exp := range expected {
		result := Range(exp.Start, exp.Step, exp.N)
		assert.Equal(t, exp.Output, result, "Range(%v, %v, %d)", exp.Start, exp.Step, exp.N)
	}
}

func TestNewAxisRequiresUnit(t *testing.T) {
	_, err := NewAxis("time", []float64{0, 1}, "", SemanticTime)
	assert.Error(t, err)
}

func TestNewChecksShape(t *testing.T) {
	x, y := mustAxis(t, "X", 2), mustAxis(t, "Y", 3)

	g, err := New(make([]float64, 6), x, y)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, g.Shape())
	assert.Equal(t, 2, g.Dims())

	_, err = New(make([]float64, 5), x, y)
	assert.True(t, errors.Is(err, ErrIntegrity))
	var ie *IntegrityError
	if assert.ErrorAs(t, err, &ie) {
		assert.Equal(t, 6, ie.Expected)
		assert.Equal(t, 5, ie.Actual)
	}
}

func TestIndexRowMajor(t *testing.T) {
	data := []float64{0, 1, 2, 3, 4, 5}
	g, err := New(data, mustAxis(t, "X", 2), mustAxis(t, "Y", 3))
	require.NoError(t, err)

	assert.Equal(t, 0.0, g.At(0, 0))
	assert.Equal(t, 2.0, g.At(0, 2))
	assert.Equal(t, 3.0, g.At(1, 0))
	assert.Equal(t, 5.0, g.At(1, 2))
	assert.Panics(t, func() { g.At(2, 0) })
}

func TestStack(t *testing.T) {
	a, err := New([]float64{1, 2, 3, 4}, mustAxis(t, "X", 2), mustAxis(t, "Y", 2))
	require.NoError(t, err)
	a.Metadata["focal_law"] = 1.0
	b, err := New([]float64{10, 20, 30, 40}, mustAxis(t, "X", 2), mustAxis(t, "Y", 2))
	require.NoError(t, err)

	angle, err := NewAxis("angle", []float64{40, 45}, "degrees", SemanticAngle)
	require.NoError(t, err)

	out, err := Stack([]*Grid{a, b}, angle)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 2}, out.Shape())
	assert.Equal(t, 1.0, out.At(0, 0, 0))
	assert.Equal(t, 10.0, out.At(0, 0, 1))
	assert.Equal(t, 4.0, out.At(1, 1, 0))
	assert.Equal(t, 40.0, out.At(1, 1, 1))
	assert.Equal(t, 1.0, out.Metadata["focal_law"])
	assert.Nil(t, a.Data)
}

func TestStackMismatch(t *testing.T) {
	a, _ := New([]float64{1, 2}, mustAxis(t, "X", 2))
	b, _ := New([]float64{1, 2, 3}, mustAxis(t, "X", 3))
	angle, _ := NewAxis("angle", []float64{0, 1}, "index", SemanticFocalLaw)

	_, err := Stack([]*Grid{a, b}, angle)
	assert.True(t, errors.Is(err, ErrIntegrity))

	one, _ := NewAxis("angle", []float64{0}, "index", SemanticFocalLaw)
	_, err = Stack([]*Grid{a, a}, one)
	assert.True(t, errors.Is(err, ErrIntegrity))
}

func TestDatasetVariants(t *testing.T) {
	g, _ := New([]float64{1}, mustAxis(t, "X", 1))

	var d Dataset = Single{Grid: g}
	assert.Len(t, Grids(d), 1)

	k := NewKeyed()
	require.NoError(t, k.Add(3, g))
	require.NoError(t, k.Add(1, g))
	assert.True(t, errors.Is(k.Add(3, g), ErrIntegrity))
	d = k
	assert.Equal(t, []float64{3, 1}, d.(Keyed).Keys)
	assert.Len(t, Grids(d), 2)
}

func TestKeyedRejectsBadKeys(t *testing.T) {
	g, _ := New([]float64{1}, mustAxis(t, "X", 1))

	expected := []struct {
		Key  float64
		Grid *Grid
	}{
		{Key: math.NaN(), Grid: g},
		{Key: math.Inf(1), Grid: g},
		{Key: math.Inf(-1), Grid: g},
		{Key: 2, Grid: nil},
	}
	for _, exp := range expected {
		k := NewKeyed()
		err := k.Add(exp.Key, exp.Grid)
		assert.True(t, errors.Is(err, ErrIntegrity), "Add(%v) returned %v", exp.Key, err)
		assert.Empty(t, k.Keys)
	}

	k := NewKeyed()
	require.NoError(t, k.Add(0, g))
	require.Error(t, k.Add(math.NaN(), g))
	for _, got := range Grids(k) {
		assert.NotNil(t, got)
	}
}
