// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bunching

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// curvePoints is the number of evenly spaced grid points each fitted
// curve is evaluated at.
const curvePoints = 20

// polyFit fits a least-squares polynomial of the estimator's degree
// to the points (xs, ys) and evaluates it into out at curvePoints
// evenly spaced positions spanning xs. xs must be sorted in
// increasing order and len(out) must be curvePoints. Negative
// predictions are clamped to zero: the curve estimates bin counts,
// which cannot go below zero.
//
// A system with fewer points than coefficients fails with
// ErrDegreesOfFreedom and leaves out untouched. A rank-deficient or
// otherwise ill-conditioned solve (for example, tied x-positions
// leaving fewer distinct positions than coefficients) returns the
// mat.Condition diagnostic; out is still evaluated from the computed
// coefficients, and the caller decides whether the degree or bin
// width needs revisiting.
func (e *Estimator) polyFit(xs, ys, out []float64) error {
	n, m := len(xs), e.degree+1
	if n < m {
		return fmt.Errorf("%w: %d bins for degree %d", ErrDegreesOfFreedom, n, e.degree)
	}

	// Vandermonde design matrix; QR least squares via Solve.
	a := mat.NewDense(n, m, nil)
	for i, x := range xs {
		v := 1.0
		for j := 0; j < m; j++ {
			a.Set(i, j, v)
			v *= x
		}
	}
	var coef mat.VecDense
	err := coef.SolveVec(a, mat.NewVecDense(n, ys))
	if err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return err
		}
	}

	floats.Span(out, floats.Min(xs), floats.Max(xs))
	for i, x := range out {
		y := 0.0
		for j := m - 1; j >= 0; j-- {
			y = y*x + coef.AtVec(j)
		}
		if y < 0 {
			y = 0
		}
		out[i] = y
	}
	return err
}
