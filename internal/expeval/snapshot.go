package expeval

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"math"
	"slices"

	"github.com/banshee-data/moc/internal/monitoring"
)

// TableSnapshot is a self-describing copy of a built table.
type TableSnapshot struct {
	ExpPrecision     float64
	MaxOpticalLength float64
	LinearSource     bool
	TableSpacing     float64
	NumIntervals     int
	Table            []float64
}

// TableStore persists snapshots keyed by the configuration that produced
// them. FindTable returns (nil, nil) when no matching table exists.
type TableStore interface {
	InsertTable(label string, s *TableSnapshot) (string, error)
	FindTable(precision, maxOpticalLength float64, linearSource bool) (*TableSnapshot, error)
}

// Snapshot returns the configuration and a copy of the built table.
func (e *Evaluator) Snapshot() (*TableSnapshot, error) {
	if !e.initialized {
		return nil, ErrNotInitialized
	}
	return &TableSnapshot{
		ExpPrecision:     e.precision,
		MaxOpticalLength: e.maxOpticalLength,
		LinearSource:     e.linearSource,
		TableSpacing:     e.spacing,
		NumIntervals:     e.numIntervals,
		Table:            slices.Clone(e.table),
	}, nil
}

// Restore installs s as the evaluator's table, adopting its precision,
// maximum optical length and source mode. The snapshot is rejected if
// its layout does not match its configuration or it misses its precision.
// On failure the evaluator is left uninitialized.
func (e *Evaluator) Restore(s *TableSnapshot) error {
	if err := s.validate(); err != nil {
		e.invalidate()
		return err
	}

	e.precision = s.ExpPrecision
	e.maxOpticalLength = s.MaxOpticalLength
	e.linearSource = s.LinearSource
	e.numKernels = e.activeKernels()
	e.numIntervals = s.NumIntervals
	e.spacing = s.MaxOpticalLength / float64(s.NumIntervals)
	e.invSpacing = float64(s.NumIntervals) / s.MaxOpticalLength
	e.table = slices.Clone(s.Table)

	if diff := e.maxTableDifference(); diff > e.precision {
		e.invalidate()
		return fmt.Errorf("%w: snapshot max difference %g exceeds precision %g", ErrInvalidConfig, diff, s.ExpPrecision)
	}
	e.initialized = true
	return nil
}

func (s *TableSnapshot) validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidConfig)
	}
	if !validPositive(s.ExpPrecision) || !validPositive(s.MaxOpticalLength) {
		return fmt.Errorf("%w: snapshot precision %g, max optical length %g", ErrInvalidConfig, s.ExpPrecision, s.MaxOpticalLength)
	}
	if s.NumIntervals < 1 || s.NumIntervals > maxTableIntervals {
		return fmt.Errorf("%w: snapshot has %d intervals", ErrInvalidConfig, s.NumIntervals)
	}
	k := numFlatKernels
	if s.LinearSource {
		k = numLinearKernels
	}
	if want := (s.NumIntervals + 1) * 2 * k; len(s.Table) != want {
		return fmt.Errorf("%w: snapshot table has %d entries, want %d", ErrInvalidConfig, len(s.Table), want)
	}
	spacing := s.MaxOpticalLength / float64(s.NumIntervals)
	if math.Abs(s.TableSpacing-spacing) > 1e-12*spacing {
		return fmt.Errorf("%w: snapshot spacing %g, want %g", ErrInvalidConfig, s.TableSpacing, spacing)
	}
	for i, v := range s.Table {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: snapshot table entry %d is %g", ErrInvalidConfig, i, v)
		}
	}
	return nil
}

// Encode serializes the snapshot as a gzip-compressed gob stream.
func (s *TableSnapshot) Encode() ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(s); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeTableSnapshot reverses Encode.
func DecodeTableSnapshot(blob []byte) (*TableSnapshot, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("empty table blob")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	var s TableSnapshot
	if err := gob.NewDecoder(gz).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode table snapshot: %w", err)
	}
	return &s, nil
}

// Persist stores the built table under label and returns the store id.
func (e *Evaluator) Persist(store TableStore, label string) (string, error) {
	s, err := e.Snapshot()
	if err != nil {
		return "", err
	}
	id, err := store.InsertTable(label, s)
	if err != nil {
		return "", fmt.Errorf("persist table: %w", err)
	}
	monitoring.Debugf("expeval: persisted table %s (%d intervals) as %q", id, s.NumIntervals, label)
	return id, nil
}

// LoadOrInitialize restores a stored table matching the current
// configuration, or builds one and stores it. cached reports whether the
// table came from the store. A nil store behaves like Initialize.
func (e *Evaluator) LoadOrInitialize(store TableStore) (cached bool, err error) {
	if e.initialized {
		return false, nil
	}
	if store == nil {
		return false, e.Initialize()
	}

	s, err := store.FindTable(e.precision, e.maxOpticalLength, e.linearSource)
	if err != nil {
		return false, fmt.Errorf("find cached table: %w", err)
	}
	if s != nil {
		err := e.Restore(s)
		if err == nil {
			return true, nil
		}
		monitoring.Logf("expeval: ignoring cached table: %v", err)
	}

	if err := e.Initialize(); err != nil {
		return false, err
	}
	if _, err := e.Persist(store, "auto"); err != nil {
		return false, err
	}
	return false, nil
}
