// Package testdata builds synthetic frames shared by tests.
package testdata

import (
	"gocv.io/x/gocv"
)

// Frame dimensions used by fixtures.
const (
	Rows = 48
	Cols = 64
)

// SolidFrame returns a BGR frame with every byte set to value.
func SolidFrame(value uint8) gocv.Mat {
	v := float64(value)
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), Rows, Cols, gocv.MatTypeCV8UC3)
}

// MarkedFrame returns a solid frame whose top-left pixel is set to mark.
func MarkedFrame(bg, mark uint8) gocv.Mat {
	m := SolidFrame(bg)
	for ch := 0; ch < 3; ch++ {
		m.SetUCharAt(0, ch, mark)
	}
	return m
}

// PixelAt returns the first channel of the pixel at (row, col).
func PixelAt(m gocv.Mat, row, col int) uint8 {
	return m.GetUCharAt(row, col*m.Channels())
}

// Sequence returns n solid frames valued 1..n. Close them with CloseAll.
func Sequence(n int) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, n)
	for i := 1; i <= n; i++ {
		m := SolidFrame(uint8(i))
		frames = append(frames, &m)
	}
	return frames
}

// CloseAll releases every non-nil frame.
func CloseAll(frames []*gocv.Mat) {
	for _, f := range frames {
		if f != nil {
			f.Close()
		}
	}
}

// Uniform reports whether every byte of m holds the same value, and that value.
func Uniform(m gocv.Mat) (uint8, bool) {
	b := m.ToBytes()
	if len(b) == 0 {
		return 0, false
	}
	for _, v := range b[1:] {
		if v != b[0] {
			return b[0], false
		}
	}
	return b[0], true
}
