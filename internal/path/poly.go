// Package path fits and evaluates the reference-path polynomial. The
// controller fits a low-degree polynomial to the body-frame waypoints
// once per cycle; the optimizer then evaluates it (and its slope) at
// arbitrary x along the horizon.
package path

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInsufficientPoints is returned when there are fewer samples
	// than polynomial coefficients.
	ErrInsufficientPoints = errors.New("path: insufficient points for fit")

	// ErrSingularFit is returned when the least-squares system is
	// singular or too ill-conditioned to solve.
	ErrSingularFit = errors.New("path: singular fit")
)

// Polynomial holds coefficients in ascending-power order: index i
// multiplies x^i. A degree-d polynomial has d+1 coefficients.
type Polynomial []float64

// Fit computes the least-squares polynomial of the given degree through
// the sample points, solving the Vandermonde system by QR
// factorization for numerical stability.
func Fit(xs, ys []float64, degree int) (Polynomial, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("path: mismatched sample lengths %d and %d", len(xs), len(ys))
	}
	if degree < 1 {
		return nil, fmt.Errorf("path: invalid degree %d", degree)
	}
	if len(xs) < degree+1 {
		return nil, fmt.Errorf("%w: %d points for degree %d", ErrInsufficientPoints, len(xs), degree)
	}

	// Vandermonde design matrix: row j is [1, x_j, x_j^2, ...].
	a := mat.NewDense(len(xs), degree+1, nil)
	for j, x := range xs {
		v := 1.0
		for i := 0; i <= degree; i++ {
			a.Set(j, i, v)
			v *= x
		}
	}
	b := mat.NewVecDense(len(ys), ys)

	var qr mat.QR
	qr.Factorize(a)
	var sol mat.Dense
	if err := qr.SolveTo(&sol, false, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularFit, err)
	}

	coeffs := make(Polynomial, degree+1)
	for i := range coeffs {
		coeffs[i] = sol.At(i, 0)
	}
	return coeffs, nil
}

// Eval computes the polynomial value at x by Horner's method.
func (p Polynomial) Eval(x float64) float64 {
	y := 0.0
	for i := len(p) - 1; i >= 0; i-- {
		y = y*x + p[i]
	}
	return y
}

// Slope computes the first derivative at x. The degree-1 coefficient is
// the slope at the origin, which fixes the initial heading error; the
// optimizer needs the slope at every horizon step.
func (p Polynomial) Slope(x float64) float64 {
	s := 0.0
	for i := len(p) - 1; i >= 1; i-- {
		s = s*x + float64(i)*p[i]
	}
	return s
}
