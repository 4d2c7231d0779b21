package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/ayusman/picam/internal/server/api"
	"github.com/ayusman/picam/internal/snapshot"
)

// Saver persists the current frame.
type Saver interface {
	Save() (*snapshot.Result, error)
}

// Outcome messages shown to the user.
const (
	msgNoFrame   = "No frame to save."
	msgSavedFmt  = "Image saved as %s"
	msgFailedFmt = "Failed to save image: %v"
)

// SaveHandler handles POST /save_image.
type SaveHandler struct {
	saver Saver
}

// NewSaveHandler creates a new SaveHandler.
func NewSaveHandler(saver Saver) *SaveHandler {
	return &SaveHandler{saver: saver}
}

type saveResponse struct {
	Saved    bool   `json:"saved"`
	ID       string `json:"id,omitempty"`
	Filename string `json:"filename,omitempty"`
	Message  string `json:"message"`
}

// ServeHTTP saves the current frame and reports the outcome as HTML, or as
// JSON when the client asks for it.
func (h *SaveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := http.StatusOK
	resp := saveResponse{}

	res, err := h.saver.Save()
	switch {
	case err == nil:
		resp.Saved = true
		resp.ID = res.ID
		resp.Filename = res.Filename
		resp.Message = fmt.Sprintf(msgSavedFmt, res.Filename)
		log.Printf("Saved snapshot %s (frame %d)", res.Path, res.FrameSeq)
	case errors.Is(err, snapshot.ErrNoFrame):
		resp.Message = msgNoFrame
	default:
		status = http.StatusInternalServerError
		resp.Message = fmt.Sprintf(msgFailedFmt, err)
		log.Printf("Save failed: %v", err)
	}

	if wantsJSON(r) {
		api.WriteJSON(w, status, resp)
		return
	}
	renderIndex(w, status, resp.Message)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
