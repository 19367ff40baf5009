package expeval

import "errors"

var (
	// ErrInvalidConfig is returned by setters given an out-of-range value
	// and by Initialize or Restore when a table cannot be built or accepted.
	ErrInvalidConfig = errors.New("expeval: invalid configuration")

	// ErrNotInitialized is returned when the interpolation table is needed
	// but Initialize has not succeeded since the last configuration change.
	ErrNotInitialized = errors.New("expeval: exponential table not initialized")

	// ErrUnsupported is returned for linear or quadratic source kernels
	// while the evaluator is in flat-source mode.
	ErrUnsupported = errors.New("expeval: kernel requires linear source mode")

	// ErrNoQuadrature is returned by geometry helpers before SetQuadrature.
	ErrNoQuadrature = errors.New("expeval: no polar quadrature attached")

	// ErrPolarIndex is returned for a polar index outside the quadrature.
	ErrPolarIndex = errors.New("expeval: polar index out of range")

	// ErrNegativeOpticalLength is returned for τ < 0 or NaN.
	ErrNegativeOpticalLength = errors.New("expeval: negative optical length")

	// ErrNegativeLength is returned for a negative or NaN segment length.
	ErrNegativeLength = errors.New("expeval: negative segment length")
)
