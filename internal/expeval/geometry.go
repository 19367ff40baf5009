package expeval

import (
	"fmt"
	"math"
)

// InverseSinTheta returns 1/sin θ for the given polar index.
func (e *Evaluator) InverseSinTheta(polar int) (float64, error) {
	s, err := e.sinTheta(polar)
	if err != nil {
		return 0, err
	}
	return 1 / s, nil
}

// ConvertDistance3Dto2D projects a 3D segment length onto the azimuthal
// plane.
func (e *Evaluator) ConvertDistance3Dto2D(length float64, polar int) (float64, error) {
	if length < 0 || math.IsNaN(length) {
		return 0, fmt.Errorf("%w: %g", ErrNegativeLength, length)
	}
	s, err := e.sinTheta(polar)
	if err != nil {
		return 0, err
	}
	return length * s, nil
}

// ConvertDistance2Dto3D is the inverse of ConvertDistance3Dto2D.
func (e *Evaluator) ConvertDistance2Dto3D(length float64, polar int) (float64, error) {
	if length < 0 || math.IsNaN(length) {
		return 0, fmt.Errorf("%w: %g", ErrNegativeLength, length)
	}
	inv, err := e.InverseSinTheta(polar)
	if err != nil {
		return 0, err
	}
	return length * inv, nil
}

func (e *Evaluator) sinTheta(polar int) (float64, error) {
	if e.quadrature == nil {
		return 0, ErrNoQuadrature
	}
	if n := e.quadrature.NumPolarAngles(); polar < 0 || polar >= n {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrPolarIndex, polar, n)
	}
	return e.quadrature.SinTheta(polar), nil
}
