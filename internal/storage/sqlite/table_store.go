package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/moc/internal/expeval"
	"github.com/banshee-data/moc/internal/monitoring"
)

// errCorruptTable marks a stored table whose blob cannot be decoded.
var errCorruptTable = errors.New("corrupt table blob")

// ExpTable is a persisted interpolation table. Snapshot is nil in List
// results, which only carry metadata.
type ExpTable struct {
	TableID          string                 `json:"table_id"`
	Label            string                 `json:"label"`
	ExpPrecision     float64                `json:"exp_precision"`
	MaxOpticalLength float64                `json:"max_optical_length"`
	LinearSource     bool                   `json:"linear_source"`
	TableSpacing     float64                `json:"table_spacing"`
	NumIntervals     int                    `json:"num_intervals"`
	CreatedAt        int64                  `json:"created_at"`
	Snapshot         *expeval.TableSnapshot `json:"-"`
}

// TableStore provides persistence for exponential tables.
type TableStore struct {
	db *sql.DB
}

var _ expeval.TableStore = (*TableStore)(nil)

// NewTableStore creates a new TableStore.
func NewTableStore(db *sql.DB) *TableStore {
	return &TableStore{db: db}
}

// Insert persists t.Snapshot. Metadata fields are taken from the snapshot.
// If TableID is empty, a UUID is generated.
func (s *TableStore) Insert(t *ExpTable) error {
	if t.Snapshot == nil {
		return fmt.Errorf("insert table: nil snapshot")
	}
	blob, err := t.Snapshot.Encode()
	if err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	if t.TableID == "" {
		t.TableID = uuid.New().String()
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().UnixNano()
	}
	t.ExpPrecision = t.Snapshot.ExpPrecision
	t.MaxOpticalLength = t.Snapshot.MaxOpticalLength
	t.LinearSource = t.Snapshot.LinearSource
	t.TableSpacing = t.Snapshot.TableSpacing
	t.NumIntervals = t.Snapshot.NumIntervals

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO exp_tables (
				table_id, label, exp_precision, max_optical_length, linear_source,
				table_spacing, num_intervals, table_blob, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.TableID, t.Label, t.ExpPrecision, t.MaxOpticalLength, boolToInt(t.LinearSource),
			t.TableSpacing, t.NumIntervals, blob, t.CreatedAt,
		)
		return err
	})
}

// Get returns a table with its decoded snapshot.
func (s *TableStore) Get(tableID string) (*ExpTable, error) {
	row := s.db.QueryRow(`
		SELECT table_id, label, exp_precision, max_optical_length, linear_source,
		       table_spacing, num_intervals, created_at, table_blob
		FROM exp_tables
		WHERE table_id = ?`, tableID)
	t, err := scanExpTable(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %s not found", tableID)
	}
	return t, err
}

// FindByConfig returns the newest table built with the given parameters,
// or nil if there is none.
func (s *TableStore) FindByConfig(precision, maxOpticalLength float64, linearSource bool) (*ExpTable, error) {
	row := s.db.QueryRow(`
		SELECT table_id, label, exp_precision, max_optical_length, linear_source,
		       table_spacing, num_intervals, created_at, table_blob
		FROM exp_tables
		WHERE exp_precision = ? AND max_optical_length = ? AND linear_source = ?
		ORDER BY created_at DESC
		LIMIT 1`, precision, maxOpticalLength, boolToInt(linearSource))
	t, err := scanExpTable(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// List returns metadata for all tables, newest first.
func (s *TableStore) List() ([]*ExpTable, error) {
	rows, err := s.db.Query(`
		SELECT table_id, label, exp_precision, max_optical_length, linear_source,
		       table_spacing, num_intervals, created_at
		FROM exp_tables
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []*ExpTable
	for rows.Next() {
		t, err := scanExpTable(rows, false)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// Delete removes a table by ID.
func (s *TableStore) Delete(tableID string) error {
	return retryOnBusy(func() error {
		result, err := s.db.Exec(`DELETE FROM exp_tables WHERE table_id = ?`, tableID)
		if err != nil {
			return fmt.Errorf("delete table: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("table %s not found", tableID)
		}
		return nil
	})
}

// InsertTable implements expeval.TableStore.
func (s *TableStore) InsertTable(label string, snap *expeval.TableSnapshot) (string, error) {
	t := &ExpTable{Label: label, Snapshot: snap}
	if err := s.Insert(t); err != nil {
		return "", err
	}
	return t.TableID, nil
}

// FindTable implements expeval.TableStore. An entry whose blob cannot be
// decoded is logged and reported as a miss so the caller rebuilds.
func (s *TableStore) FindTable(precision, maxOpticalLength float64, linearSource bool) (*expeval.TableSnapshot, error) {
	t, err := s.FindByConfig(precision, maxOpticalLength, linearSource)
	if errors.Is(err, errCorruptTable) {
		monitoring.Logf("sqlite: ignoring cached table: %v", err)
		return nil, nil
	}
	if err != nil || t == nil {
		return nil, err
	}
	return t.Snapshot, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpTable(row rowScanner, withBlob bool) (*ExpTable, error) {
	var t ExpTable
	var linear int
	dest := []any{
		&t.TableID, &t.Label, &t.ExpPrecision, &t.MaxOpticalLength, &linear,
		&t.TableSpacing, &t.NumIntervals, &t.CreatedAt,
	}
	var blob []byte
	if withBlob {
		dest = append(dest, &blob)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan table row: %w", err)
	}
	t.LinearSource = linear != 0
	if withBlob {
		snap, err := expeval.DecodeTableSnapshot(blob)
		if err != nil {
			return nil, fmt.Errorf("%w: table %s: %v", errCorruptTable, t.TableID, err)
		}
		t.Snapshot = snap
	}
	return &t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
