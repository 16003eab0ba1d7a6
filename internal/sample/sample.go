// Package sample converts raw instrument payloads into float64 samples.
package sample

import (
	"encoding/binary"
	"fmt"
)

// Format is the on-disk type of one sample.
type Format int

const (
	Int8 Format = iota
	Int16
	Uint8
	Uint16
)

// BytesPerSample maps a format to its width in bytes.
var BytesPerSample = map[Format]int{
	Int8:   1,
	Int16:  2,
	Uint8:  1,
	Uint16: 2,
}

func (f Format) String() string {
	switch f {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Bits is the nominal bit depth of f.
func (f Format) Bits() int { return 8 * BytesPerSample[f] }

// Count returns how many whole samples of format f fit in n bytes and
// whether n divides evenly.
func Count(n int, f Format) (int, bool) {
	w := BytesPerSample[f]
	return n / w, n%w == 0
}

// Convert decodes every whole sample in bytesIn. Multi-byte formats are
// read with order; a trailing partial sample is ignored.
func Convert(bytesIn []byte, f Format, order binary.ByteOrder) []float64 {
	w, ok := BytesPerSample[f]
	if !ok {
		return nil
	}
	n := len(bytesIn) / w
	outData := make([]float64, n)
	switch f {
	case Int8:
		for i := 0; i < n; i++ {
			outData[i] = float64(int8(bytesIn[i]))
		}
	case Uint8:
		for i := 0; i < n; i++ {
			outData[i] = float64(bytesIn[i])
		}
	case Int16:
		for i := 0; i < n; i++ {
			outData[i] = float64(int16(order.Uint16(bytesIn[2*i:])))
		}
	case Uint16:
		for i := 0; i < n; i++ {
			outData[i] = float64(order.Uint16(bytesIn[2*i:]))
		}
	}
	return outData
}
