package capture

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// DefaultJPEGQuality is the quality used when none is configured.
const DefaultJPEGQuality = 90

// Encoder compresses a frame into an image file format.
type Encoder interface {
	Encode(frame gocv.Mat) ([]byte, error)
	// Ext returns the file extension including the dot, e.g. ".jpg".
	Ext() string
	ContentType() string
}

// JPEGEncoder encodes frames as baseline JPEG.
type JPEGEncoder struct {
	Quality int
}

// NewJPEGEncoder returns an encoder with the given quality (1-100).
// Out-of-range values use DefaultJPEGQuality.
func NewJPEGEncoder(quality int) *JPEGEncoder {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &JPEGEncoder{Quality: quality}
}

// Encode returns the JPEG bytes for frame. The returned slice is owned by the caller.
func (e *JPEGEncoder) Encode(frame gocv.Mat) ([]byte, error) {
	if frame.Empty() {
		return nil, ErrEmptyFrame
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, frame, []int{int(gocv.IMWriteJpegQuality), e.Quality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	if buf.Len() == 0 {
		return nil, errors.New("encode jpeg: empty output")
	}

	// GetBytes aliases C memory released by Close.
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

func (e *JPEGEncoder) Ext() string         { return ".jpg" }
func (e *JPEGEncoder) ContentType() string { return "image/jpeg" }
