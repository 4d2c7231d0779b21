package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSnapshotRepository_UpsertAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Snapshots()

	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	sn := &Snapshot{
		ID:        "snap-1",
		Filename:  "20240506_070809.jpg",
		Path:      "/tmp/images/20240506_070809.jpg",
		SizeBytes: 1234,
		Width:     640,
		Height:    480,
		FrameSeq:  42,
		CreatedAt: created,
	}
	if err := repo.Upsert(sn); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.GetByID("snap-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Filename != sn.Filename || got.SizeBytes != 1234 || got.Width != 640 || got.Height != 480 || got.FrameSeq != 42 {
		t.Errorf("GetByID() = %+v, want %+v", got, sn)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}

	byName, err := repo.GetByFilename(sn.Filename)
	if err != nil {
		t.Fatalf("GetByFilename() error = %v", err)
	}
	if byName.ID != "snap-1" {
		t.Errorf("GetByFilename().ID = %q, want snap-1", byName.ID)
	}
}

func TestSnapshotRepository_UpsertOverwritesSameFilename(t *testing.T) {
	s := newTestStore(t)
	repo := s.Snapshots()

	first := &Snapshot{ID: "first", Filename: "20240506_070809.jpg", Path: "/p", SizeBytes: 10, FrameSeq: 1}
	if err := repo.Upsert(first); err != nil {
		t.Fatalf("Upsert(first) error = %v", err)
	}

	second := &Snapshot{ID: "second", Filename: "20240506_070809.jpg", Path: "/p", SizeBytes: 20, FrameSeq: 2}
	if err := repo.Upsert(second); err != nil {
		t.Fatalf("Upsert(second) error = %v", err)
	}

	if second.ID != "first" {
		t.Errorf("overwritten row ID = %q, want original ID %q", second.ID, "first")
	}

	n, err := repo.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("Count() = %d, want 1", n)
	}

	got, err := repo.GetByFilename("20240506_070809.jpg")
	if err != nil {
		t.Fatalf("GetByFilename() error = %v", err)
	}
	if got.SizeBytes != 20 || got.FrameSeq != 2 {
		t.Errorf("row = %+v, want data from the second save", got)
	}
}

func TestSnapshotRepository_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Snapshots().GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
	if _, err := s.Snapshots().GetByFilename("missing.jpg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByFilename() error = %v, want ErrNotFound", err)
	}
}

func TestSnapshotRepository_ListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	repo := s.Snapshots()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	names := []string{"20240101_000000.jpg", "20240101_000001.jpg", "20240101_000002.jpg"}
	for i, name := range names {
		err := repo.Upsert(&Snapshot{
			ID:        name,
			Filename:  name,
			Path:      "/p/" + name,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Upsert(%s) error = %v", name, err)
		}
	}

	all, err := repo.List(0)
	if err != nil {
		t.Fatalf("List(0) error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(List(0)) = %d, want 3", len(all))
	}
	if all[0].Filename != names[2] || all[2].Filename != names[0] {
		t.Errorf("List order = %s, %s, %s; want newest first", all[0].Filename, all[1].Filename, all[2].Filename)
	}

	limited, err := repo.List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("len(List(2)) = %d, want 2", len(limited))
	}
}

func TestSnapshotRepository_ListEmpty(t *testing.T) {
	s := newTestStore(t)

	list, err := s.Snapshots().List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("len(List()) = %d, want 0", len(list))
	}
}
