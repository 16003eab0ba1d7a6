package numerical

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func SuppressNaN(num float64) float64 {
	if math.IsNaN(num) {
		return 0
	}
	return num
}

// finite returns the non-NaN values of dataIn. Text exports use NaN for
// empty cells, which would otherwise poison every reduction.
func finite(dataIn []float64) []float64 {
	if !floats.HasNaN(dataIn) {
		return dataIn
	}
	out := make([]float64, 0, len(dataIn))
	for _, v := range dataIn {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func Transform(dataIn []float64, transform string) float64 {
	dataIn = finite(dataIn)
	if len(dataIn) == 0 {
		return 0
	}
	switch transform {
	case "mean":
		return SuppressNaN(stat.Mean(dataIn, nil))
	case "max":
		return SuppressNaN(floats.Max(dataIn))
	case "min":
		return SuppressNaN(floats.Min(dataIn))
	case "absmax":
		return math.Max(math.Abs(floats.Max(dataIn)), math.Abs(floats.Min(dataIn)))
	case "std":
		return SuppressNaN(stat.StdDev(dataIn, nil))
	default:
		return 0
	}
}

// Calibrate converts raw ADC counts in place: physical = raw*gain - offset.
func Calibrate(data []float64, gain, offset float64) {
	floats.Scale(gain, data)
	floats.AddConst(-offset, data)
}

// Center shifts unsigned samples of the given bit depth in place so that
// mid-scale becomes zero.
func Center(data []float64, bits int) {
	floats.AddConst(-math.Ldexp(1, bits-1), data)
}

// Summary holds reductions of a sample buffer. Peak is the largest
// magnitude, the usual amplitude figure for ultrasonic and scope data.
type Summary struct {
	Count int     `json:"count"`
	NaN   int     `json:"nan"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Peak  float64 `json:"peak"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
}

func Summarize(data []float64) Summary {
	f := finite(data)
	return Summary{
		Count: len(data),
		NaN:   len(data) - len(f),
		Min:   Transform(f, "min"),
		Max:   Transform(f, "max"),
		Peak:  Transform(f, "absmax"),
		Mean:  Transform(f, "mean"),
		Std:   Transform(f, "std"),
	}
}
