// Package snapshot persists the current frame to the save directory.
package snapshot

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/picam/internal/capture"
	"github.com/ayusman/picam/internal/framestore"
	"github.com/ayusman/picam/internal/store"
)

// TimestampLayout names saved files: YYYYMMDD_HHMMSS.
const TimestampLayout = "20060102_150405"

// ErrNoFrame is returned when nothing has been captured yet.
var ErrNoFrame = errors.New("no frame to save")

// Config holds the saver dependencies. Catalog is optional.
type Config struct {
	Dir     string
	Frames  *framestore.Store
	Encoder capture.Encoder
	Catalog *store.Store
	Now     func() time.Time
}

// Result describes a completed save.
type Result struct {
	ID       string
	Filename string
	Path     string
	Size     int64
	Width    int
	Height   int
	FrameSeq uint64
	SavedAt  time.Time
}

// Saver writes the current frame as a timestamped image file.
// Two saves within the same second share a name; the later one wins.
type Saver struct {
	dir     string
	frames  *framestore.Store
	encoder capture.Encoder
	catalog *store.Store
	now     func() time.Time
}

// New creates a Saver and makes sure the save directory exists.
func New(cfg Config) (*Saver, error) {
	if cfg.Dir == "" {
		return nil, errors.New("snapshot: save directory is required")
	}
	if cfg.Frames == nil {
		return nil, errors.New("snapshot: frame store is required")
	}
	if cfg.Encoder == nil {
		cfg.Encoder = capture.NewJPEGEncoder(capture.DefaultJPEGQuality)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create save directory: %w", err)
	}

	return &Saver{
		dir:     cfg.Dir,
		frames:  cfg.Frames,
		encoder: cfg.Encoder,
		catalog: cfg.Catalog,
		now:     cfg.Now,
	}, nil
}

// Dir returns the save directory.
func (s *Saver) Dir() string {
	return s.dir
}

// Filename returns the file name for a save taken at t.
func Filename(t time.Time, ext string) string {
	return t.Format(TimestampLayout) + ext
}

// Save reads the frame store once, encodes the frame and writes it to disk.
// It returns ErrNoFrame without touching the filesystem when the store is empty.
func (s *Saver) Save() (*Result, error) {
	frame, ok := s.frames.Read()
	if !ok {
		return nil, ErrNoFrame
	}
	defer frame.Close()

	data, err := s.encoder.Encode(frame.Mat)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	savedAt := s.now()
	res := &Result{
		Filename: Filename(savedAt, s.encoder.Ext()),
		Size:     int64(len(data)),
		Width:    frame.Mat.Cols(),
		Height:   frame.Mat.Rows(),
		FrameSeq: frame.Seq,
		SavedAt:  savedAt,
	}
	res.Path = filepath.Join(s.dir, res.Filename)

	if err := writeFile(s.dir, res.Path, data); err != nil {
		return nil, fmt.Errorf("write %s: %w", res.Filename, err)
	}

	if s.catalog != nil {
		entry := &store.Snapshot{
			ID:        uuid.New().String(),
			Filename:  res.Filename,
			Path:      res.Path,
			SizeBytes: res.Size,
			Width:     res.Width,
			Height:    res.Height,
			FrameSeq:  res.FrameSeq,
			CreatedAt: savedAt,
		}
		if err := s.catalog.Snapshots().Upsert(entry); err != nil {
			// The file is on disk; a missing catalogue row is not a failed save.
			log.Printf("Failed to record snapshot %s: %v", res.Filename, err)
		} else {
			res.ID = entry.ID
		}
	}

	return res, nil
}

// writeFile writes data to a temporary file in dir and renames it over
// path, so a reader never sees a half-written image.
func writeFile(dir, path string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
