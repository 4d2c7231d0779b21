package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/picam/internal/capture"
	"github.com/ayusman/picam/internal/framestore"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// WSStreamHandler sends encoded frames to WebSocket viewers as binary messages.
type WSStreamHandler struct {
	streamer frameStreamer
}

// NewWSStreamHandler creates a WebSocket viewer handler with the same pacing as the MJPEG stream.
func NewWSStreamHandler(frames *framestore.Store, encoder capture.Encoder, poll, interval time.Duration) *WSStreamHandler {
	return &WSStreamHandler{streamer: newStreamer(frames, encoder, poll, interval)}
}

// ServeHTTP upgrades the connection and streams until the viewer goes away.
func (h *WSStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reading is the only way to notice a client close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.streamer.run(ctx, binaryEmitter(conn))
}

// frameWriter is the part of *websocket.Conn used to send frames.
type frameWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
}

// binaryEmitter sends each encoded frame as one binary message.
func binaryEmitter(conn frameWriter) func([]byte) error {
	return func(data []byte) error {
		if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
			return err
		}
		return conn.WriteMessage(websocket.BinaryMessage, data)
	}
}
