package expeval

import (
	"fmt"
	"math"
)

// Components holds every kernel at one 3D optical length.
type Components struct {
	Exponential float64
	F1          float64
	F2          float64
	H           float64
	G2          float64
}

// ComputeExponential returns 1 − e^{−τ}.
func (e *Evaluator) ComputeExponential(tau float64) (float64, error) {
	return e.compute(kernelExp, tau)
}

// ComputeExponentialF1 returns 1 − (1 − e^{−τ})/τ, the flat-source
// moment of the attenuation.
func (e *Evaluator) ComputeExponentialF1(tau float64) (float64, error) {
	return e.compute(kernelF1, tau)
}

// ComputeExponentialF2 returns 2(τ − 2F1(τ))/τ. It requires linear-source
// mode.
func (e *Evaluator) ComputeExponentialF2(tau float64) (float64, error) {
	return e.compute(kernelF2, tau)
}

// ComputeExponentialH returns the net linear-source contribution
// (1 − e^{−τ})/τ − e^{−τ}. It requires linear-source mode.
func (e *Evaluator) ComputeExponentialH(tau float64) (float64, error) {
	return e.compute(kernelH, tau)
}

// ComputeExponentialG2 returns the quadratic-source correction 3(1 − R₃(τ)).
// It requires linear-source mode.
func (e *Evaluator) ComputeExponentialG2(tau float64) (float64, error) {
	return e.compute(kernelG2, tau)
}

func (e *Evaluator) compute(k int, tau float64) (float64, error) {
	if err := checkTau(tau); err != nil {
		return 0, err
	}
	if k >= numFlatKernels && !e.linearSource {
		return 0, fmt.Errorf("%w: %s", ErrUnsupported, kernelNames[k])
	}
	if e.mode == ModeIntrinsic {
		return evalKernel(k, math.Min(tau, e.maxOpticalLength)), nil
	}
	if !e.initialized {
		return 0, ErrNotInitialized
	}
	base, frac := e.bracket(tau)
	return e.interp(base, frac, k), nil
}

// RetrieveExponentialComponents evaluates all five kernels for a segment
// with 2D optical length tau seen at the given polar angle. The kernels
// are evaluated at tau / sin θ.
func (e *Evaluator) RetrieveExponentialComponents(tau float64, polar int) (Components, error) {
	if err := checkTau(tau); err != nil {
		return Components{}, err
	}
	if !e.linearSource {
		return Components{}, fmt.Errorf("%w: components", ErrUnsupported)
	}
	inv, err := e.InverseSinTheta(polar)
	if err != nil {
		return Components{}, err
	}
	tau3D := tau * inv

	if e.mode == ModeIntrinsic {
		t := math.Min(tau3D, e.maxOpticalLength)
		return Components{
			Exponential: evalKernel(kernelExp, t),
			F1:          evalKernel(kernelF1, t),
			F2:          evalKernel(kernelF2, t),
			H:           evalKernel(kernelH, t),
			G2:          evalKernel(kernelG2, t),
		}, nil
	}
	if !e.initialized {
		return Components{}, ErrNotInitialized
	}
	base, frac := e.bracket(tau3D)
	return Components{
		Exponential: e.interp(base, frac, kernelExp),
		F1:          e.interp(base, frac, kernelF1),
		F2:          e.interp(base, frac, kernelF2),
		H:           e.interp(base, frac, kernelH),
		G2:          e.interp(base, frac, kernelG2),
	}, nil
}
