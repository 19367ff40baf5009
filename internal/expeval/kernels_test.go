package expeval

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/integrate/quad"
)

// moment returns ∫₀¹ (1−u)^m e^{−τu} du by 64-point Gauss–Legendre.
func moment(m int, tau float64) float64 {
	f := func(u float64) float64 {
		return math.Pow(1-u, float64(m)) * math.Exp(-tau*u)
	}
	return quad.Fixed(f, 0, 1, 64, quad.Legendre{}, 0)
}

func referenceKernel(k int, tau float64) float64 {
	switch k {
	case kernelExp:
		return 1 - math.Exp(-tau)
	case kernelF1:
		return 1 - moment(0, tau)
	case kernelF2:
		return 2 * (1 - 2*moment(1, tau))
	case kernelH:
		return moment(0, tau) - math.Exp(-tau)
	case kernelG2:
		return 3 * (1 - 3*moment(2, tau))
	}
	panic("unknown kernel")
}

func TestKernels_MatchQuadrature(t *testing.T) {
	taus := []float64{1e-8, 1e-4, 1e-2, 0.1, 0.3, 0.4999, 0.5, 0.5001, 0.9, 1.7, 3, 6.5, 10, 25}
	for k := 0; k < numLinearKernels; k++ {
		for _, tau := range taus {
			got := evalKernel(k, tau)
			want := referenceKernel(k, tau)
			if math.Abs(got-want) > 1e-12 {
				t.Errorf("%s(%g) = %.17g, want %.17g", KernelName(k), tau, got, want)
			}
		}
	}
}

func TestKernels_ZeroAtOrigin(t *testing.T) {
	for k := 0; k < numLinearKernels; k++ {
		if v := evalKernel(k, 0); v != 0 {
			t.Errorf("%s(0) = %g, want 0", KernelName(k), v)
		}
	}
}

func TestKernels_LiteralForms(t *testing.T) {
	// Away from the series region the closed forms are well conditioned.
	for _, tau := range []float64{0.75, 1, 2.5, 7} {
		e := 1 - math.Exp(-tau)
		f1 := 1 - e/tau
		if got := evalKernel(kernelF1, tau); math.Abs(got-f1) > 1e-14 {
			t.Errorf("F1(%g) = %.17g, want %.17g", tau, got, f1)
		}
		f2 := 2 * (tau - 2*f1) / tau
		if got := evalKernel(kernelF2, tau); math.Abs(got-f2) > 1e-13 {
			t.Errorf("F2(%g) = %.17g, want %.17g", tau, got, f2)
		}
		h := e/tau - math.Exp(-tau)
		if got := evalKernel(kernelH, tau); math.Abs(got-h) > 1e-14 {
			t.Errorf("H(%g) = %.17g, want %.17g", tau, got, h)
		}
		if got := evalKernel(kernelH, tau); math.Abs(got-(e-f1)) > 1e-14 {
			t.Errorf("H(%g) = %.17g, want E-F1 = %.17g", tau, got, e-f1)
		}
	}
}

func TestKernels_Ranges(t *testing.T) {
	upper := [numLinearKernels]float64{1, 1, 2, 0.3, 3}
	for k := 0; k < numLinearKernels; k++ {
		prev := 0.0
		for i := 0; i <= 4000; i++ {
			tau := float64(i) * 0.01
			v := evalKernel(k, tau)
			if v < 0 || v >= upper[k] {
				t.Fatalf("%s(%g) = %g outside [0, %g)", KernelName(k), tau, v, upper[k])
			}
			// H rises then falls; the rest are non-decreasing.
			if k != kernelH && v < prev {
				t.Fatalf("%s not monotone at %g: %g < %g", KernelName(k), tau, v, prev)
			}
			prev = v
		}
	}
}

func TestKernels_CurvatureBound(t *testing.T) {
	const h = 1e-3
	for k := 0; k < numLinearKernels; k++ {
		for i := 1; i < 20000; i++ {
			tau := float64(i) * h
			d2 := (evalKernel(k, tau+h) - 2*evalKernel(k, tau) + evalKernel(k, tau-h)) / (h * h)
			if math.Abs(d2) > maxKernelCurvature+1e-3 {
				t.Fatalf("|%s''(%g)| = %g exceeds %g", KernelName(k), tau, math.Abs(d2), maxKernelCurvature)
			}
		}
	}
}

func TestKernelName(t *testing.T) {
	tests := []struct {
		k    int
		want string
	}{
		{kernelExp, "E"},
		{kernelF1, "F1"},
		{kernelF2, "F2"},
		{kernelH, "H"},
		{kernelG2, "G2"},
		{-1, "?"},
		{5, "?"},
	}
	for _, tt := range tests {
		if got := KernelName(tt.k); got != tt.want {
			t.Errorf("KernelName(%d) = %q, want %q", tt.k, got, tt.want)
		}
	}
}
