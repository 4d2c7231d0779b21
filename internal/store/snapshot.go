package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Snapshot is the catalogue entry for a saved image file.
type Snapshot struct {
	ID        string
	Filename  string
	Path      string
	SizeBytes int64
	Width     int
	Height    int
	FrameSeq  uint64
	CreatedAt time.Time
}

// SnapshotRepository provides catalogue operations for saved snapshots.
type SnapshotRepository struct {
	db *sql.DB
}

// Snapshots returns the snapshot repository for this store.
func (s *Store) Snapshots() *SnapshotRepository {
	return &SnapshotRepository{db: s.db}
}

// Upsert records a saved snapshot. A row with the same filename is
// overwritten in place and keeps its ID; sn.ID is set to the stored ID.
func (r *SnapshotRepository) Upsert(sn *Snapshot) error {
	if sn.CreatedAt.IsZero() {
		sn.CreatedAt = time.Now()
	}

	return r.db.QueryRow(
		`INSERT INTO snapshots (id, filename, path, size_bytes, width, height, frame_seq, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(filename) DO UPDATE SET
			path = excluded.path,
			size_bytes = excluded.size_bytes,
			width = excluded.width,
			height = excluded.height,
			frame_seq = excluded.frame_seq,
			created_at = excluded.created_at
		 RETURNING id`,
		sn.ID, sn.Filename, sn.Path, sn.SizeBytes, sn.Width, sn.Height, int64(sn.FrameSeq), sn.CreatedAt,
	).Scan(&sn.ID)
}

// GetByID retrieves a snapshot by its ID.
func (r *SnapshotRepository) GetByID(id string) (*Snapshot, error) {
	return r.getOne(`SELECT id, filename, path, size_bytes, width, height, frame_seq, created_at
		FROM snapshots WHERE id = ?`, id)
}

// GetByFilename retrieves a snapshot by its file name.
func (r *SnapshotRepository) GetByFilename(filename string) (*Snapshot, error) {
	return r.getOne(`SELECT id, filename, path, size_bytes, width, height, frame_seq, created_at
		FROM snapshots WHERE filename = ?`, filename)
}

func (r *SnapshotRepository) getOne(query string, arg string) (*Snapshot, error) {
	sn := &Snapshot{}
	var seq int64

	err := r.db.QueryRow(query, arg).Scan(
		&sn.ID, &sn.Filename, &sn.Path, &sn.SizeBytes, &sn.Width, &sn.Height, &seq, &sn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sn.FrameSeq = uint64(seq)
	return sn, nil
}

// List retrieves up to limit snapshots, newest first. A limit <= 0 returns all.
func (r *SnapshotRepository) List(limit int) ([]*Snapshot, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, filename, path, size_bytes, width, height, frame_seq, created_at
		 FROM snapshots ORDER BY created_at DESC, filename DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*Snapshot
	for rows.Next() {
		sn := &Snapshot{}
		var seq int64
		if err := rows.Scan(&sn.ID, &sn.Filename, &sn.Path, &sn.SizeBytes, &sn.Width, &sn.Height, &seq, &sn.CreatedAt); err != nil {
			return nil, err
		}
		sn.FrameSeq = uint64(seq)
		snapshots = append(snapshots, sn)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snapshots, nil
}

// Count returns the number of catalogued snapshots.
func (r *SnapshotRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&n)
	return n, err
}
