// Package capture provides camera capture, orientation correction and JPEG
// encoding using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default camera settings
const (
	DefaultFPS    = 10
	DefaultWidth  = 640
	DefaultHeight = 480

	// DefaultPipeline is the libcamera GStreamer pipeline used on the Pi.
	DefaultPipeline = "libcamerasrc ! video/x-raw,format=RGB,width=640,height=480,framerate=10/1 ! videoconvert ! appsink"
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrEmptyFrame is returned when the source yields a frame with no pixels.
	ErrEmptyFrame = errors.New("captured frame is empty")
)

// Camera defines the interface for capture sources.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	IsOpen() bool
}

// Source describes how to reach the camera. A non-empty Pipeline is opened
// through the GStreamer backend; otherwise DeviceID selects a local device.
type Source struct {
	Pipeline string
	DeviceID int
	Width    int
	Height   int
	FPS      int
}

// cameraImpl manages video capture from a camera device using GoCV.
type cameraImpl struct {
	source  Source
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
}

// NewCamera creates a new Camera for the given source. Zero dimensions and
// rate fall back to the package defaults.
func NewCamera(src Source) Camera {
	if src.Width <= 0 {
		src.Width = DefaultWidth
	}
	if src.Height <= 0 {
		src.Height = DefaultHeight
	}
	if src.FPS <= 0 {
		src.FPS = DefaultFPS
	}
	return &cameraImpl{source: src}
}

// Open opens the camera for capturing frames.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	var (
		capture *gocv.VideoCapture
		err     error
	)
	if c.source.Pipeline != "" {
		capture, err = gocv.OpenVideoCaptureWithAPI(c.source.Pipeline, gocv.VideoCaptureGstreamer)
	} else {
		capture, err = gocv.OpenVideoCapture(c.source.DeviceID)
	}
	if err != nil {
		return fmt.Errorf("open capture source: %w", err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("open capture source: %w", ErrCameraNotOpen)
	}

	// The pipeline string already carries caps; device captures need them set.
	if c.source.Pipeline == "" {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(c.source.Width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(c.source.Height))
		capture.Set(gocv.VideoCaptureFPS, float64(c.source.FPS))
	}

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the camera.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		mat.Close()
		return nil, ErrEmptyFrame
	}

	return &mat, nil
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
