package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrNoCamera is returned by Run when the App was built without a camera.
var ErrNoCamera = errors.New("no camera configured")

// Run executes the capture loop until ctx is cancelled.
//
// Loop logic:
// 1. Open the camera; on failure log and return (the store stays empty)
// 2. Read a frame; on failure back off for the retry interval and try again
// 3. Apply the orientation transform and publish into the frame store
// 4. Sleep for the frame interval
func (a *App) Run(ctx context.Context) error {
	if a.camera == nil {
		log.Printf("Capture loop not started: %v", ErrNoCamera)
		return ErrNoCamera
	}

	if err := a.camera.Open(); err != nil {
		log.Printf("Failed to open camera, serving without frames: %v", err)
		return fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		if err := a.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}()

	failing := false

	for {
		if ctx.Err() != nil {
			return nil
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			a.readFailures.Add(1)
			if !failing {
				log.Printf("Error reading frame, retrying every %s: %v", a.retry, err)
				failing = true
			}
			if !sleep(ctx, a.retry) {
				return nil
			}
			continue
		}
		if failing {
			log.Println("Camera frames resumed")
			failing = false
		}

		corrected, err := a.transform(*frame)
		frame.Close()
		if err != nil {
			corrected.Close()
			a.transformFailures.Add(1)
			log.Printf("Error transforming frame: %v", err)
			if !sleep(ctx, a.retry) {
				return nil
			}
			continue
		}

		a.frames.Publish(corrected)
		a.captured.Add(1)

		if !sleep(ctx, a.interval) {
			return nil
		}
	}
}

// sleep waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
