// Package api provides JSON handlers for the saved snapshot catalogue.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ayusman/picam/internal/store"
)

// FilesPrefix is the URL prefix under which saved files are served.
const FilesPrefix = "/snapshots/"

// SnapshotHandler handles HTTP requests for snapshot resources.
type SnapshotHandler struct {
	store *store.Store
}

// NewSnapshotHandler creates a new SnapshotHandler with the given store.
func NewSnapshotHandler(s *store.Store) *SnapshotHandler {
	return &SnapshotHandler{store: s}
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/snapshots or /api/snapshots/{id}
func (h *SnapshotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/snapshots")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		h.list(w, r)
		return
	}
	h.get(w, r, path)
}

// Response types

type snapshotResponse struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	FrameSeq  uint64 `json:"frame_seq"`
	CreatedAt string `json:"created_at"`
}

type listSnapshotsResponse struct {
	Snapshots []snapshotResponse `json:"snapshots"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Snapshot to a snapshotResponse.
func toResponse(s *store.Snapshot) snapshotResponse {
	return snapshotResponse{
		ID:        s.ID,
		Filename:  s.Filename,
		URL:       FilesPrefix + url.PathEscape(s.Filename),
		SizeBytes: s.SizeBytes,
		Width:     s.Width,
		Height:    s.Height,
		FrameSeq:  s.FrameSeq,
		CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/snapshots and returns catalogued snapshots, newest first.
func (h *SnapshotHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	snapshots, err := h.store.Snapshots().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list snapshots")
		return
	}

	response := listSnapshotsResponse{
		Snapshots: make([]snapshotResponse, 0, len(snapshots)),
	}
	for _, s := range snapshots {
		response.Snapshots = append(response.Snapshots, toResponse(s))
	}

	WriteJSON(w, http.StatusOK, response)
}

// get handles GET /api/snapshots/{id} and returns a single snapshot.
func (h *SnapshotHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	snapshot, err := h.store.Snapshots().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Snapshot not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get snapshot")
		return
	}

	WriteJSON(w, http.StatusOK, toResponse(snapshot))
}
