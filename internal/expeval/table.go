package expeval

import (
	"fmt"
	"math"

	"github.com/banshee-data/moc/internal/monitoring"
)

const (
	// maxTableIntervals caps the table at 2^24 buckets.
	maxTableIntervals = 1 << 24

	// maxRebuilds is how often Initialize doubles the resolution when the
	// built table misses the precision bound.
	maxRebuilds = 4
)

// probeFractions are the in-bucket positions sampled by MaxDifference.
var probeFractions = [...]float64{0.25, 0.5, 0.75}

// Initialize builds the interpolation table for the current configuration.
// It is deterministic and returns immediately if the table is already
// current. Initialize must not run concurrently with any other method.
func (e *Evaluator) Initialize() error {
	if e.initialized {
		return nil
	}

	n, err := intervalsFor(e.precision, e.maxOpticalLength)
	if err != nil {
		return err
	}
	k := e.activeKernels()

	for attempt := 0; attempt <= maxRebuilds; attempt++ {
		e.build(n, k)
		diff := e.maxTableDifference()
		if diff <= e.precision {
			e.initialized = true
			monitoring.Debugf("expeval: built table with %d intervals, %d kernels, spacing %.4g, max difference %.3g",
				n, k, e.spacing, diff)
			return nil
		}
		monitoring.Logf("expeval: table with %d intervals misses precision %g (max difference %g), rebuilding",
			n, e.precision, diff)
		if 2*n > maxTableIntervals {
			break
		}
		n *= 2
	}

	e.invalidate()
	return fmt.Errorf("%w: cannot reach precision %g with at most %d intervals", ErrInvalidConfig, e.precision, maxTableIntervals)
}

// intervalsFor returns the number of buckets needed so that linear
// interpolation error stays under precision on [0, maxOpticalLength].
func intervalsFor(precision, maxOpticalLength float64) (int, error) {
	h := math.Sqrt(8 * precision / maxKernelCurvature)
	nf := math.Ceil(maxOpticalLength / h)
	if nf > maxTableIntervals {
		return 0, fmt.Errorf("%w: precision %g over [0, %g] needs %.0f intervals (max %d)",
			ErrInvalidConfig, precision, maxOpticalLength, nf, maxTableIntervals)
	}
	if nf < 1 {
		nf = 1
	}
	return int(nf), nil
}

func (e *Evaluator) build(n, k int) {
	stride := 2 * k
	e.numIntervals = n
	e.numKernels = k
	e.spacing = e.maxOpticalLength / float64(n)
	e.invSpacing = float64(n) / e.maxOpticalLength
	e.table = make([]float64, (n+1)*stride)

	for i := 0; i <= n; i++ {
		tau := float64(i) * e.spacing
		if i == n {
			tau = e.maxOpticalLength
		}
		row := e.table[i*stride : (i+1)*stride]
		for j := 0; j < k; j++ {
			row[2*j] = evalKernel(j, tau)
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			e.table[i*stride+2*j+1] = e.table[(i+1)*stride+2*j] - e.table[i*stride+2*j]
		}
	}
}

// bracket returns the row offset and in-bucket fraction for tau ≥ 0.
// Saturated arguments map to the last node with fraction 0.
func (e *Evaluator) bracket(tau float64) (int, float64) {
	stride := 2 * e.numKernels
	if tau >= e.maxOpticalLength {
		return e.numIntervals * stride, 0
	}
	u := tau * e.invSpacing
	i := int(u)
	if i >= e.numIntervals {
		return e.numIntervals * stride, 0
	}
	return i * stride, u - float64(i)
}

func (e *Evaluator) interp(base int, frac float64, k int) float64 {
	return e.table[base+2*k] + e.table[base+2*k+1]*frac
}

// ExponentialIndex returns the table bucket containing tau. Arguments at
// or beyond MaxOpticalLength return the last bucket with saturated set.
func (e *Evaluator) ExponentialIndex(tau float64) (index int, saturated bool, err error) {
	if err := checkTau(tau); err != nil {
		return 0, false, err
	}
	if !e.initialized {
		return 0, false, ErrNotInitialized
	}
	if tau >= e.maxOpticalLength {
		return e.numIntervals - 1, true, nil
	}
	i := int(tau * e.invSpacing)
	if i > e.numIntervals-1 {
		i = e.numIntervals - 1
	}
	return i, false, nil
}

// Difference returns the largest absolute difference between the table
// and the intrinsic value over all enabled kernels at tau.
func (e *Evaluator) Difference(tau float64) (float64, error) {
	if err := checkTau(tau); err != nil {
		return 0, err
	}
	if !e.initialized {
		return 0, ErrNotInitialized
	}
	return e.differenceAt(math.Min(tau, e.maxOpticalLength)), nil
}

// MaxDifference samples every bucket and the saturation node and returns
// the largest Difference.
// Initialize uses it to check the chosen spacing.
func (e *Evaluator) MaxDifference() (float64, error) {
	if !e.initialized {
		return 0, ErrNotInitialized
	}
	return e.maxTableDifference(), nil
}

func (e *Evaluator) differenceAt(tau float64) float64 {
	base, frac := e.bracket(tau)
	var worst float64
	for k := 0; k < e.numKernels; k++ {
		worst = worse(worst, math.Abs(e.interp(base, frac, k)-evalKernel(k, tau)))
	}
	return worst
}

// maxTableDifference checks every bucket at its nodes, its probe fractions
// and its far end reached through the stored delta, plus the saturation
// node at maxOpticalLength.
func (e *Evaluator) maxTableDifference() float64 {
	stride := 2 * e.numKernels
	var worst float64
	for i := 0; i < e.numIntervals; i++ {
		worst = worse(worst, e.differenceAt(float64(i)*e.spacing))
		for _, f := range probeFractions {
			worst = worse(worst, e.differenceAt((float64(i)+f)*e.spacing))
		}
		end := float64(i+1) * e.spacing
		if i+1 == e.numIntervals {
			end = e.maxOpticalLength
		}
		for k := 0; k < e.numKernels; k++ {
			worst = worse(worst, math.Abs(e.interp(i*stride, 1, k)-evalKernel(k, end)))
		}
	}
	return worse(worst, e.differenceAt(e.maxOpticalLength))
}

// worse returns the larger of two differences. NaN counts as infinite.
func worse(worst, d float64) float64 {
	if math.IsNaN(d) {
		return math.Inf(1)
	}
	return math.Max(worst, d)
}

func checkTau(tau float64) error {
	if tau < 0 || math.IsNaN(tau) {
		return fmt.Errorf("%w: %g", ErrNegativeOpticalLength, tau)
	}
	return nil
}
