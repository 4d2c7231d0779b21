// Package framestore holds the most recently captured frame for concurrent readers.
package framestore

import (
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Frame is a private copy of a published frame. The caller owns Mat and
// must Close it.
type Frame struct {
	Mat        gocv.Mat
	Seq        uint64
	CapturedAt time.Time
}

// Close releases the frame's pixel buffer.
func (f *Frame) Close() error {
	return f.Mat.Close()
}

// Store is a single-slot cell: each Publish replaces the held frame and
// stale frames are discarded. Readers get a clone taken under the read lock,
// so they never observe a frame mid-replacement and never hold the lock
// while encoding.
type Store struct {
	mu         sync.RWMutex
	mat        *gocv.Mat
	seq        uint64
	capturedAt time.Time
	now        func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{now: time.Now}
}

// Publish takes ownership of mat and makes it the current frame.
// The previously held frame is released. Empty mats are ignored.
func (s *Store) Publish(mat gocv.Mat) uint64 {
	if mat.Empty() {
		mat.Close()
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.seq
	}

	next := &mat
	at := s.now()

	s.mu.Lock()
	prev := s.mat
	s.mat = next
	s.seq++
	s.capturedAt = at
	seq := s.seq
	s.mu.Unlock()

	// No reader can reach prev once the slot is swapped.
	if prev != nil {
		prev.Close()
	}
	return seq
}

// Read returns a copy of the current frame, or false if nothing has been
// published yet.
func (s *Store) Read() (*Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.mat == nil {
		return nil, false
	}

	return &Frame{
		Mat:        s.mat.Clone(),
		Seq:        s.seq,
		CapturedAt: s.capturedAt,
	}, true
}

// Seq returns the sequence number of the current frame; 0 means empty.
func (s *Store) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// LastCapture returns when the current frame was published.
func (s *Store) LastCapture() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capturedAt, s.mat != nil
}

// Close releases the held frame and returns the store to the empty state.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mat != nil {
		s.mat.Close()
		s.mat = nil
	}
	s.seq = 0
	s.capturedAt = time.Time{}
}
