// Package app runs the capture loop that feeds the frame store.
package app

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/picam/internal/capture"
	"github.com/ayusman/picam/internal/framestore"
)

// Capture loop timing defaults.
const (
	DefaultFPS           = 10
	DefaultRetryInterval = 100 * time.Millisecond
)

// Config holds configuration options for the capture loop.
type Config struct {
	Camera        capture.Camera
	Frames        *framestore.Store
	Transform     capture.Transform
	FPS           int
	RetryInterval time.Duration
}

// Stats is a point-in-time view of the capture loop counters.
type Stats struct {
	Running           bool
	SourceOpen        bool
	FramesCaptured    uint64
	ReadFailures      uint64
	TransformFailures uint64
}

// App owns the capture loop: one background goroutine that pulls frames
// from the camera, corrects their orientation and publishes them.
type App struct {
	camera    capture.Camera
	frames    *framestore.Store
	transform capture.Transform
	interval  time.Duration
	retry     time.Duration

	captured          atomic.Uint64
	readFailures      atomic.Uint64
	transformFailures atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	fps := config.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	retry := config.RetryInterval
	if retry <= 0 {
		retry = DefaultRetryInterval
	}
	transform := config.Transform
	if transform == nil {
		transform = capture.Identity
	}
	frames := config.Frames
	if frames == nil {
		frames = framestore.New()
	}

	return &App{
		camera:    config.Camera,
		frames:    frames,
		transform: transform,
		interval:  time.Second / time.Duration(fps),
		retry:     retry,
	}
}

// Frames returns the store the loop publishes into.
func (a *App) Frames() *framestore.Store {
	return a.frames
}

// Start launches the capture loop in the background. It returns immediately;
// a camera that cannot be opened ends the loop but not the process.
func (a *App) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.cancel = cancel
	a.done = done
	a.err = nil

	go func() {
		defer close(done)
		err := a.Run(ctx)
		a.mu.Lock()
		a.err = err
		a.mu.Unlock()
	}()

	log.Println("Capture loop started")
}

// Stop cancels the capture loop and waits for it to release the camera.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel = nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	log.Println("Capture loop stopped")
}

// Done is closed when the most recently started loop exits.
// It returns nil if Start has never been called.
func (a *App) Done() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done
}

// Err returns why the last loop exited, or nil if it is still running or was stopped.
func (a *App) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Stats returns the current loop counters.
func (a *App) Stats() Stats {
	a.mu.Lock()
	running := a.cancel != nil && a.done != nil
	done := a.done
	a.mu.Unlock()

	if running {
		select {
		case <-done:
			running = false
		default:
		}
	}

	return Stats{
		Running:           running,
		SourceOpen:        a.camera != nil && a.camera.IsOpen(),
		FramesCaptured:    a.captured.Load(),
		ReadFailures:      a.readFailures.Load(),
		TransformFailures: a.transformFailures.Load(),
	}
}
