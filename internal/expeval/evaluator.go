package expeval

import (
	"fmt"
	"math"
	"slices"

	"github.com/banshee-data/moc/internal/config"
)

// Mode selects how kernels are evaluated.
type Mode int

const (
	// ModeInterpolation reads kernels from the table built by Initialize.
	ModeInterpolation Mode = iota
	// ModeIntrinsic calls the math library on every evaluation.
	ModeIntrinsic
)

func (m Mode) String() string {
	switch m {
	case ModeInterpolation:
		return "interpolation"
	case ModeIntrinsic:
		return "intrinsic"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// PolarQuadrature supplies sin θ per polar index. The Evaluator keeps a
// reference but does not own it.
type PolarQuadrature interface {
	NumPolarAngles() int
	SinTheta(polar int) float64
}

// Evaluator computes exponential attenuation kernels, optionally from a
// precomputed interpolation table. The zero value is not usable; call New.
type Evaluator struct {
	precision        float64
	maxOpticalLength float64
	mode             Mode
	linearSource     bool
	quadrature       PolarQuadrature

	// Built by Initialize or Restore, read-only afterwards.
	// Node i, kernel k: table[i*stride+2k] is the value and
	// table[i*stride+2k+1] the forward difference to node i+1.
	table        []float64
	numKernels   int
	numIntervals int
	spacing      float64
	invSpacing   float64
	initialized  bool
}

// New returns an Evaluator with precision 1e-5, maximum optical length 10,
// interpolation enabled and flat-source kernels only.
func New() *Evaluator {
	return &Evaluator{
		precision:        config.DefaultExpPrecision,
		maxOpticalLength: config.DefaultMaxOpticalLength,
		mode:             ModeInterpolation,
	}
}

// FromConfig returns an uninitialized Evaluator configured from cfg. q may
// be nil when no geometry helpers are needed.
func FromConfig(cfg *config.EvaluatorConfig, q PolarQuadrature) (*Evaluator, error) {
	e := New()
	if err := e.SetExpPrecision(cfg.GetExpPrecision()); err != nil {
		return nil, err
	}
	if err := e.SetMaxOpticalLength(cfg.GetMaxOpticalLength()); err != nil {
		return nil, err
	}
	if !cfg.GetInterpolate() {
		e.UseIntrinsic()
	}
	if cfg.GetLinearSource() {
		e.UseLinearSource()
	}
	if q != nil {
		e.SetQuadrature(q)
	}
	return e, nil
}

func validPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// SetExpPrecision sets the maximum absolute interpolation error. Changing
// it discards any built table.
func (e *Evaluator) SetExpPrecision(precision float64) error {
	if !validPositive(precision) {
		return fmt.Errorf("%w: precision must be positive and finite, got %g", ErrInvalidConfig, precision)
	}
	if precision != e.precision {
		e.precision = precision
		e.invalidate()
	}
	return nil
}

// ExpPrecision returns the configured interpolation error bound.
func (e *Evaluator) ExpPrecision() float64 {
	return e.precision
}

// SetMaxOpticalLength sets the upper end of the tabulated domain. Changing
// it discards any built table.
func (e *Evaluator) SetMaxOpticalLength(length float64) error {
	if !validPositive(length) {
		return fmt.Errorf("%w: max optical length must be positive and finite, got %g", ErrInvalidConfig, length)
	}
	if length != e.maxOpticalLength {
		e.maxOpticalLength = length
		e.invalidate()
	}
	return nil
}

// MaxOpticalLength returns the saturation point of every kernel.
func (e *Evaluator) MaxOpticalLength() float64 {
	return e.maxOpticalLength
}

// SetQuadrature attaches the polar quadrature used by the geometry helpers.
// Passing nil detaches it.
func (e *Evaluator) SetQuadrature(q PolarQuadrature) {
	e.quadrature = q
}

// Quadrature returns the attached quadrature, or nil.
func (e *Evaluator) Quadrature() PolarQuadrature {
	return e.quadrature
}

// UseInterpolation selects table lookup. A table built earlier stays valid.
func (e *Evaluator) UseInterpolation() {
	e.mode = ModeInterpolation
}

// UseIntrinsic selects direct evaluation. A built table is kept so that
// switching back does not require Initialize.
func (e *Evaluator) UseIntrinsic() {
	e.mode = ModeIntrinsic
}

// IsUsingInterpolation reports whether table lookup is selected.
func (e *Evaluator) IsUsingInterpolation() bool {
	return e.mode == ModeInterpolation
}

// Mode returns the selected evaluation mode.
func (e *Evaluator) Mode() Mode {
	return e.mode
}

// UseLinearSource enables the F2, H and G2 kernels. The table grows from
// two to five kernels, so a built flat-source table is discarded.
func (e *Evaluator) UseLinearSource() {
	if !e.linearSource {
		e.linearSource = true
		e.invalidate()
	}
}

// UseFlatSource restricts the evaluator to E and F1.
func (e *Evaluator) UseFlatSource() {
	if e.linearSource {
		e.linearSource = false
		e.invalidate()
	}
}

// IsUsingLinearSource reports whether linear-source kernels are enabled.
func (e *Evaluator) IsUsingLinearSource() bool {
	return e.linearSource
}

// IsInitialized reports whether a table matching the current
// configuration has been built.
func (e *Evaluator) IsInitialized() bool {
	return e.initialized
}

// ExpTable returns a copy of the interpolation table.
func (e *Evaluator) ExpTable() ([]float64, error) {
	if !e.initialized {
		return nil, ErrNotInitialized
	}
	return slices.Clone(e.table), nil
}

// TableSize returns the number of float64 entries in the table.
func (e *Evaluator) TableSize() (int, error) {
	if !e.initialized {
		return 0, ErrNotInitialized
	}
	return len(e.table), nil
}

// TableSpacing returns the optical-length step between table nodes.
func (e *Evaluator) TableSpacing() (float64, error) {
	if !e.initialized {
		return 0, ErrNotInitialized
	}
	return e.spacing, nil
}

// NumIntervals returns the number of table buckets.
func (e *Evaluator) NumIntervals() (int, error) {
	if !e.initialized {
		return 0, ErrNotInitialized
	}
	return e.numIntervals, nil
}

// DeepCopy returns an independent Evaluator with the same configuration
// and a private copy of the table. The quadrature reference is shared.
func (e *Evaluator) DeepCopy() *Evaluator {
	c := *e
	c.table = slices.Clone(e.table)
	return &c
}

func (e *Evaluator) activeKernels() int {
	if e.linearSource {
		return numLinearKernels
	}
	return numFlatKernels
}

func (e *Evaluator) invalidate() {
	e.table = nil
	e.numKernels = 0
	e.numIntervals = 0
	e.spacing = 0
	e.invSpacing = 0
	e.initialized = false
}
