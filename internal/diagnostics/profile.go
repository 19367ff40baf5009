// Package diagnostics measures and plots interpolation error of the
// exponential evaluator and the timings of strong-scaling studies.
package diagnostics

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/moc/internal/expeval"
)

// Profile holds |interpolated − intrinsic| per kernel over a uniform grid.
type Profile struct {
	Precision float64
	Taus      []float64
	Kernels   []string
	// Errors[k][i] is the error of Kernels[k] at Taus[i].
	Errors [][]float64
	// MaxError[k] is the largest entry of Errors[k].
	MaxError []float64
}

type kernelFunc func(*expeval.Evaluator, float64) (float64, error)

var flatKernels = []kernelFunc{
	(*expeval.Evaluator).ComputeExponential,
	(*expeval.Evaluator).ComputeExponentialF1,
}

var linearKernels = []kernelFunc{
	(*expeval.Evaluator).ComputeExponentialF2,
	(*expeval.Evaluator).ComputeExponentialH,
	(*expeval.Evaluator).ComputeExponentialG2,
}

// ErrorProfile samples every enabled kernel at samples points spanning
// [0, MaxOpticalLength]. e must be initialized; its mode is not changed.
func ErrorProfile(e *expeval.Evaluator, samples int) (*Profile, error) {
	if samples < 2 {
		return nil, fmt.Errorf("need at least 2 samples, got %d", samples)
	}
	if !e.IsInitialized() {
		return nil, expeval.ErrNotInitialized
	}

	interp := e.DeepCopy()
	interp.UseInterpolation()
	exact := e.DeepCopy()
	exact.UseIntrinsic()

	fns := flatKernels
	if e.IsUsingLinearSource() {
		fns = append(append([]kernelFunc{}, flatKernels...), linearKernels...)
	}

	p := &Profile{
		Precision: e.ExpPrecision(),
		Taus:      make([]float64, samples),
		Kernels:   make([]string, len(fns)),
		Errors:    make([][]float64, len(fns)),
		MaxError:  make([]float64, len(fns)),
	}
	floats.Span(p.Taus, 0, e.MaxOpticalLength())

	for k, fn := range fns {
		p.Kernels[k] = expeval.KernelName(k)
		errs := make([]float64, samples)
		for i, tau := range p.Taus {
			a, err := fn(interp, tau)
			if err != nil {
				return nil, err
			}
			b, err := fn(exact, tau)
			if err != nil {
				return nil, err
			}
			errs[i] = a - b
			if errs[i] < 0 {
				errs[i] = -errs[i]
			}
		}
		p.Errors[k] = errs
		p.MaxError[k] = floats.Max(errs)
	}
	return p, nil
}
