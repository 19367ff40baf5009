package expeval

import "math"

// Kernel indices. The first numFlatKernels are always tabulated; the rest
// only in linear-source mode.
const (
	kernelExp = iota
	kernelF1
	kernelF2
	kernelH
	kernelG2

	numFlatKernels   = kernelF1 + 1
	numLinearKernels = kernelG2 + 1
)

var kernelNames = [numLinearKernels]string{"E", "F1", "F2", "H", "G2"}

const (
	// Below seriesThreshold the closed forms lose digits to cancellation.
	seriesThreshold = 0.5
	seriesTerms     = 24

	// maxKernelCurvature bounds |f''| on [0, ∞) for every kernel.
	maxKernelCurvature = 1.0
)

// expKernel returns 1 − e^{−τ}.
func expKernel(tau float64) float64 {
	return -math.Expm1(-tau)
}

// oneMinusR returns 1 − R_n(τ) for n = 1, 2, 3, where
// R_n(τ) = n ∫₀¹ (1−u)^{n−1} e^{−τu} du = n! Σ_j (−τ)^j / (j+n)!.
func oneMinusR(n int, tau float64) float64 {
	if tau == 0 {
		return 0
	}
	if tau < seriesThreshold {
		term, sum := 1.0, 0.0
		for j := 1; j <= seriesTerms; j++ {
			term *= -tau / float64(j+n)
			sum += term
		}
		return -sum
	}

	e := expKernel(tau)
	var r float64
	switch n {
	case 1:
		r = e / tau
	case 2:
		r = 2 * (tau - e) / (tau * tau)
	case 3:
		r = 6 * (tau*tau/2 - tau + e) / (tau * tau * tau)
	default:
		panic("expeval: unsupported moment order")
	}
	return 1 - r
}

// hKernel returns (1 − e^{−τ})/τ − e^{−τ}.
func hKernel(tau float64) float64 {
	if tau == 0 {
		return 0
	}
	if tau < seriesThreshold {
		// Σ_{k≥1} (−1)^{k+1} k τ^k / (k+1)!
		t, sum, sign := 1.0, 0.0, 1.0
		for k := 1; k <= seriesTerms; k++ {
			t *= tau / float64(k+1)
			sum += sign * float64(k) * t
			sign = -sign
		}
		return sum
	}
	return expKernel(tau)/tau - math.Exp(-tau)
}

// evalKernel evaluates kernel k directly.
func evalKernel(k int, tau float64) float64 {
	switch k {
	case kernelExp:
		return expKernel(tau)
	case kernelF1:
		return oneMinusR(1, tau)
	case kernelF2:
		return 2 * oneMinusR(2, tau)
	case kernelH:
		return hKernel(tau)
	case kernelG2:
		return 3 * oneMinusR(3, tau)
	}
	panic("expeval: unknown kernel")
}

// KernelName returns the short name of kernel k as used in diagnostics.
func KernelName(k int) string {
	if k < 0 || k >= numLinearKernels {
		return "?"
	}
	return kernelNames[k]
}
