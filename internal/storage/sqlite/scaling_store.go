package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScalingRun is one thread count of a strong-scaling study.
type ScalingRun struct {
	RunID         string  `json:"run_id"`
	Label         string  `json:"label"`
	Threads       int     `json:"threads"`
	MeanSeconds   float64 `json:"mean_seconds"`
	StddevSeconds float64 `json:"stddev_seconds"`
	Speedup       float64 `json:"speedup"`
	Segments      int64   `json:"segments"`
	CreatedAt     int64   `json:"created_at"`
}

// ScalingRunStore provides persistence for scaling-study results.
type ScalingRunStore struct {
	db *sql.DB
}

// NewScalingRunStore creates a new ScalingRunStore.
func NewScalingRunStore(db *sql.DB) *ScalingRunStore {
	return &ScalingRunStore{db: db}
}

// InsertRun persists a run. If RunID is empty, a UUID is generated.
func (s *ScalingRunStore) InsertRun(r *ScalingRun) error {
	if r.Threads < 1 {
		return fmt.Errorf("insert run: threads must be positive, got %d", r.Threads)
	}
	if r.RunID == "" {
		r.RunID = uuid.New().String()
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().UnixNano()
	}
	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO scaling_runs (
				run_id, label, threads, mean_seconds, stddev_seconds, speedup, segments, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.RunID, r.Label, r.Threads, r.MeanSeconds, r.StddevSeconds, r.Speedup, r.Segments, r.CreatedAt,
		)
		return err
	})
}

// ListRuns returns the runs recorded under label, ordered by thread count.
func (s *ScalingRunStore) ListRuns(label string) ([]*ScalingRun, error) {
	rows, err := s.db.Query(`
		SELECT run_id, label, threads, mean_seconds, stddev_seconds, speedup, segments, created_at
		FROM scaling_runs
		WHERE label = ?
		ORDER BY threads ASC, created_at ASC`, label)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*ScalingRun
	for rows.Next() {
		var r ScalingRun
		if err := rows.Scan(&r.RunID, &r.Label, &r.Threads, &r.MeanSeconds, &r.StddevSeconds,
			&r.Speedup, &r.Segments, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}
