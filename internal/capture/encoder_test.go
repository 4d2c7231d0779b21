package capture

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ayusman/picam/testdata"
	"gocv.io/x/gocv"
)

func TestNewJPEGEncoder_Quality(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{in: 75, want: 75},
		{in: 100, want: 100},
		{in: 0, want: DefaultJPEGQuality},
		{in: -1, want: DefaultJPEGQuality},
		{in: 101, want: DefaultJPEGQuality},
	}

	for _, tt := range tests {
		if got := NewJPEGEncoder(tt.in).Quality; got != tt.want {
			t.Errorf("NewJPEGEncoder(%d).Quality = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestJPEGEncoder_Encode(t *testing.T) {
	enc := NewJPEGEncoder(90)

	frame := testdata.SolidFrame(128)
	defer frame.Close()

	data, err := enc.Encode(frame)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// JPEG SOI marker
	if !bytes.HasPrefix(data, []byte{0xFF, 0xD8}) {
		t.Errorf("encoded data does not start with JPEG SOI marker")
	}

	decoded, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		t.Fatalf("IMDecode() error = %v", err)
	}
	defer decoded.Close()

	if decoded.Rows() != testdata.Rows || decoded.Cols() != testdata.Cols {
		t.Errorf("decoded size = %dx%d, want %dx%d", decoded.Cols(), decoded.Rows(), testdata.Cols, testdata.Rows)
	}

	again, err := enc.Encode(frame)
	if err != nil {
		t.Fatalf("second Encode() error = %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("encoding the same frame twice should be deterministic")
	}
}

func TestJPEGEncoder_EmptyFrame(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	if _, err := NewJPEGEncoder(90).Encode(empty); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("Encode() error = %v, want ErrEmptyFrame", err)
	}
}

func TestJPEGEncoder_Metadata(t *testing.T) {
	enc := NewJPEGEncoder(90)
	if enc.Ext() != ".jpg" {
		t.Errorf("Ext() = %q, want .jpg", enc.Ext())
	}
	if enc.ContentType() != "image/jpeg" {
		t.Errorf("ContentType() = %q, want image/jpeg", enc.ContentType())
	}
}
