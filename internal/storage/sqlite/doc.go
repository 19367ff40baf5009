// Package sqlite contains SQLite repository implementations for persisted
// exponential tables and scaling-study runs.
//
// All SQL lives here so that the evaluator and the sweep harness stay free
// of storage concerns. The evaluator reaches the table cache through the
// expeval.TableStore interface, which TableStore satisfies.
package sqlite
