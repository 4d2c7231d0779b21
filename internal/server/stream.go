package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/picam/internal/capture"
	"github.com/ayusman/picam/internal/framestore"
)

// Stream pacing defaults.
const (
	DefaultPollInterval  = 50 * time.Millisecond
	DefaultFrameInterval = 100 * time.Millisecond

	// Boundary separates parts of the MJPEG response.
	Boundary = "frame"
)

// frameStreamer produces one viewer's sequence of encoded frames.
// Each viewer owns a streamer; nothing is shared but the frame store.
type frameStreamer struct {
	frames   *framestore.Store
	encoder  capture.Encoder
	poll     time.Duration
	interval time.Duration
}

// run reads, encodes and emits frames until ctx is done or emit fails.
// An empty store or a failed encode emits nothing and retries after poll.
func (s frameStreamer) run(ctx context.Context, emit func([]byte) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, ok := s.frames.Read()
		if !ok {
			if !wait(ctx, s.poll) {
				return ctx.Err()
			}
			continue
		}

		data, err := s.encoder.Encode(frame.Mat)
		frame.Close()
		if err != nil {
			if !wait(ctx, s.poll) {
				return ctx.Err()
			}
			continue
		}

		if err := emit(data); err != nil {
			return err
		}

		if !wait(ctx, s.interval) {
			return ctx.Err()
		}
	}
}

// wait sleeps for d unless ctx finishes first.
func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// StreamHandler serves MJPEG frames from the frame store.
type StreamHandler struct {
	streamer frameStreamer
}

// NewStreamHandler creates a new StreamHandler reading from frames.
func NewStreamHandler(frames *framestore.Store, encoder capture.Encoder, poll, interval time.Duration) *StreamHandler {
	return &StreamHandler{streamer: newStreamer(frames, encoder, poll, interval)}
}

func newStreamer(frames *framestore.Store, encoder capture.Encoder, poll, interval time.Duration) frameStreamer {
	if encoder == nil {
		encoder = capture.NewJPEGEncoder(capture.DefaultJPEGQuality)
	}
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return frameStreamer{frames: frames, encoder: encoder, poll: poll, interval: interval}
}

// ServeHTTP streams MJPEG frames to connected clients until they disconnect.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+Boundary)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	contentType := h.streamer.encoder.ContentType()

	h.streamer.run(r.Context(), func(data []byte) error {
		// Write MJPEG frame
		if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: %s\r\nContent-Length: %d\r\n\r\n", Boundary, contentType, len(data)); err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		if _, err := w.Write([]byte("\r\n")); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
}
