package capture

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Orientation names the fixed flip applied to every captured frame.
type Orientation string

const (
	OrientationNone       Orientation = "none"
	OrientationHorizontal Orientation = "horizontal"
	OrientationVertical   Orientation = "vertical"
	OrientationBoth       Orientation = "both"
)

// Transform maps a raw frame to a corrected one. It must not modify src and
// returns a new Mat owned by the caller.
type Transform func(src gocv.Mat) (gocv.Mat, error)

// ParseOrientation validates an orientation name from configuration.
func ParseOrientation(s string) (Orientation, error) {
	switch o := Orientation(s); o {
	case OrientationNone, OrientationHorizontal, OrientationVertical, OrientationBoth:
		return o, nil
	case "":
		return OrientationNone, nil
	default:
		return "", fmt.Errorf("unknown orientation %q", s)
	}
}

// Identity returns a copy of the frame unchanged.
func Identity(src gocv.Mat) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), ErrEmptyFrame
	}
	return src.Clone(), nil
}

// NewFlip returns the Transform for the given orientation.
// OpenCV flip codes: 0 around the x-axis, 1 around the y-axis, -1 both.
func NewFlip(o Orientation) Transform {
	var code int
	switch o {
	case OrientationHorizontal:
		code = 1
	case OrientationVertical:
		code = 0
	case OrientationBoth:
		code = -1
	default:
		return Identity
	}

	return func(src gocv.Mat) (gocv.Mat, error) {
		if src.Empty() {
			return gocv.NewMat(), ErrEmptyFrame
		}
		dst := gocv.NewMat()
		gocv.Flip(src, &dst, code)
		if dst.Empty() {
			dst.Close()
			return gocv.NewMat(), fmt.Errorf("flip %s: %w", o, ErrEmptyFrame)
		}
		return dst, nil
	}
}
