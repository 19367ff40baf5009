package quadrature

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/integrate/quad"
)

// Kind names accepted by New and by the evaluator configuration file.
const (
	TabuchiYamamoto = "tabuchi-yamamoto"
	GaussLegendre   = "gauss-legendre"
	EqualWeight     = "equal-weight"
	EqualAngle      = "equal-angle"
	Custom          = "custom"
)

// ValidKinds lists the kinds New can build.
var ValidKinds = []string{TabuchiYamamoto, GaussLegendre, EqualWeight, EqualAngle}

// Set is an immutable polar quadrature for one hemisphere.
type Set struct {
	kind     string
	sinTheta []float64
	theta    []float64
	weight   []float64
}

// Tabuchi–Yamamoto optimal polar sets, indexed by the number of angles.
var tySinTheta = map[int][]float64{
	1: {0.798184},
	2: {0.363900, 0.899900},
	3: {0.166648, 0.537707, 0.932954},
}

var tyWeight = map[int][]float64{
	1: {1.0},
	2: {0.212854, 0.787146},
	3: {0.046233, 0.283619, 0.670148},
}

// New builds a quadrature of the given kind with n polar angles.
func New(kind string, n int) (*Set, error) {
	switch kind {
	case TabuchiYamamoto:
		return NewTabuchiYamamoto(n)
	case GaussLegendre:
		return NewGaussLegendre(n)
	case EqualWeight:
		return NewEqualWeight(n)
	case EqualAngle:
		return NewEqualAngle(n)
	default:
		return nil, fmt.Errorf("unknown quadrature %q (valid: %s)", kind, strings.Join(ValidKinds, ", "))
	}
}

// IsValidKind reports whether New accepts kind.
func IsValidKind(kind string) bool {
	for _, k := range ValidKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// NewTabuchiYamamoto returns the Tabuchi–Yamamoto set with n ∈ {1, 2, 3}
// polar angles.
func NewTabuchiYamamoto(n int) (*Set, error) {
	sines, ok := tySinTheta[n]
	if !ok {
		return nil, fmt.Errorf("tabuchi-yamamoto quadrature supports 1 to 3 polar angles, got %d", n)
	}
	return newSet(TabuchiYamamoto, sines, tyWeight[n])
}

// NewGaussLegendre returns a Gauss–Legendre set in μ = cos θ on [0, 1].
func NewGaussLegendre(n int) (*Set, error) {
	if n < 1 {
		return nil, fmt.Errorf("gauss-legendre quadrature needs at least 1 polar angle, got %d", n)
	}
	mu := make([]float64, n)
	w := make([]float64, n)
	quad.Legendre{}.FixedLocations(mu, w, 0, 1)

	sines := make([]float64, n)
	for i, m := range mu {
		sines[i] = math.Sqrt(1 - m*m)
	}
	return newSet(GaussLegendre, sines, w)
}

// NewEqualWeight returns n angles with weight 1/n, placed at the midpoints
// of n equal intervals in μ.
func NewEqualWeight(n int) (*Set, error) {
	if n < 1 {
		return nil, fmt.Errorf("equal-weight quadrature needs at least 1 polar angle, got %d", n)
	}
	sines := make([]float64, n)
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		mu := (float64(i) + 0.5) / float64(n)
		sines[i] = math.Sqrt(1 - mu*mu)
		w[i] = 1 / float64(n)
	}
	return newSet(EqualWeight, sines, w)
}

// NewEqualAngle returns n angles at the midpoints of equal θ intervals on
// (0, π/2). Each weight is the μ-measure of its interval.
func NewEqualAngle(n int) (*Set, error) {
	if n < 1 {
		return nil, fmt.Errorf("equal-angle quadrature needs at least 1 polar angle, got %d", n)
	}
	dTheta := math.Pi / 2 / float64(n)
	sines := make([]float64, n)
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		lo := float64(i) * dTheta
		hi := lo + dTheta
		sines[i] = math.Sin(lo + dTheta/2)
		w[i] = math.Cos(lo) - math.Cos(hi)
	}
	return newSet(EqualAngle, sines, w)
}

// NewCustom validates and wraps a user-supplied set. Weights are normalised
// to sum to one.
func NewCustom(sinThetas, weights []float64) (*Set, error) {
	return newSet(Custom, sinThetas, weights)
}

func newSet(kind string, sines, weights []float64) (*Set, error) {
	if len(sines) == 0 {
		return nil, fmt.Errorf("%s quadrature has no polar angles", kind)
	}
	if len(sines) != len(weights) {
		return nil, fmt.Errorf("%s quadrature has %d sines but %d weights", kind, len(sines), len(weights))
	}

	var total float64
	for i := range sines {
		if !(sines[i] > 0 && sines[i] <= 1) {
			return nil, fmt.Errorf("%s quadrature sin(theta[%d]) must be in (0, 1], got %g", kind, i, sines[i])
		}
		if !(weights[i] > 0) || math.IsInf(weights[i], 0) {
			return nil, fmt.Errorf("%s quadrature weight[%d] must be positive, got %g", kind, i, weights[i])
		}
		total += weights[i]
	}

	idx := make([]int, len(sines))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return sines[idx[a]] < sines[idx[b]] })

	s := &Set{
		kind:     kind,
		sinTheta: make([]float64, len(sines)),
		theta:    make([]float64, len(sines)),
		weight:   make([]float64, len(sines)),
	}
	for i, j := range idx {
		s.sinTheta[i] = sines[j]
		s.theta[i] = math.Asin(sines[j])
		s.weight[i] = weights[j] / total
	}
	return s, nil
}

// Kind returns the quadrature kind name.
func (s *Set) Kind() string { return s.kind }

// NumPolarAngles returns the number of polar angles in the hemisphere.
func (s *Set) NumPolarAngles() int { return len(s.sinTheta) }

// SinTheta returns sin θ for polar index p. Angles are ordered by
// increasing sin θ. It panics if p is out of range.
func (s *Set) SinTheta(p int) float64 { return s.sinTheta[p] }

// Theta returns the polar angle θ in radians for polar index p.
func (s *Set) Theta(p int) float64 { return s.theta[p] }

// Weight returns the normalised weight of polar index p.
func (s *Set) Weight(p int) float64 { return s.weight[p] }

// SinThetas returns a copy of all sin θ values.
func (s *Set) SinThetas() []float64 { return append([]float64(nil), s.sinTheta...) }

// Weights returns a copy of all weights.
func (s *Set) Weights() []float64 { return append([]float64(nil), s.weight...) }
