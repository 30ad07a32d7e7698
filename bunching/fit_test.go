// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bunching

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestPolyFitExact(t *testing.T) {
	// A degree-2 fit to six points on y = x² must reproduce the
	// parabola; the grid spans the x-range, so the first and last
	// grid values equal the endpoint values.
	e, err := NewEstimator([]float64{0.5}, Options{PolyDegree: 2})
	if err != nil {
		t.Fatal(err)
	}
	xs := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = x * x
	}
	out := make([]float64, curvePoints)
	if err := e.polyFit(xs, ys, out); err != nil {
		t.Fatal(err)
	}
	if !aeq(0.01, out[0]) || !aeq(0.36, out[curvePoints-1]) {
		t.Errorf("endpoint fits %v, %v, want 0.01, 0.36", out[0], out[curvePoints-1])
	}
}

func TestPolyFitClamp(t *testing.T) {
	// A degree-1 fit through y = x - 0.35 predicts negative counts
	// over the left half of the grid; those must clamp to zero.
	e, err := NewEstimator([]float64{0.5}, Options{PolyDegree: 1})
	if err != nil {
		t.Fatal(err)
	}
	xs := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = x - 0.35
	}
	out := make([]float64, curvePoints)
	if err := e.polyFit(xs, ys, out); err != nil {
		t.Fatal(err)
	}
	if !aeq(0, out[0]) {
		t.Errorf("left endpoint %v, want clamped to 0", out[0])
	}
	if !aeq(0.25, out[curvePoints-1]) {
		t.Errorf("right endpoint %v, want 0.25", out[curvePoints-1])
	}
	for i, y := range out {
		if y < 0 {
			t.Errorf("grid point %d is negative: %v", i, y)
		}
	}
}

func TestPolyFitIllConditioned(t *testing.T) {
	// Six points but only three distinct x-positions cannot pin
	// down five coefficients: the design matrix is rank deficient
	// and the solve must surface a mat.Condition diagnostic rather
	// than fail or succeed silently.
	e, err := NewEstimator([]float64{0.5}, Options{PolyDegree: 4})
	if err != nil {
		t.Fatal(err)
	}
	xs := []float64{0.1, 0.1, 0.2, 0.2, 0.3, 0.3}
	ys := []float64{1, 2, 3, 4, 5, 6}
	out := make([]float64, curvePoints)
	err = e.polyFit(xs, ys, out)
	if err == nil {
		t.Fatal("rank-deficient fit succeeded, want mat.Condition")
	}
	var cond mat.Condition
	if !errors.As(err, &cond) {
		t.Errorf("rank-deficient fit: got %v, want mat.Condition", err)
	}
}

func TestPolyFitDegreesOfFreedom(t *testing.T) {
	e, err := NewEstimator([]float64{0.5}, Options{PolyDegree: 4})
	if err != nil {
		t.Fatal(err)
	}
	out := make([]float64, curvePoints)
	err = e.polyFit([]float64{0.1, 0.2, 0.3}, []float64{1, 2, 3}, out)
	if !errors.Is(err, ErrDegreesOfFreedom) {
		t.Errorf("3 points for degree 4: got %v, want ErrDegreesOfFreedom", err)
	}
}
