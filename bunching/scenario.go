// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bunching

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultNumSimulations is the number of bootstrap iterations run per
// exclusion point when a scenario is called with numSims <= 0.
const DefaultNumSimulations = 500

// DefaultZstar is the policy threshold used when Scenario3 is called
// with a zstar of 0: the 20% population-in-crisis cutoff.
const DefaultZstar = 0.20

// DefaultExcludePoints are the candidate bin midpoints Scenario1
// excludes when called with a nil excludePoints: the four bins
// surrounding the 20% threshold under the default 0.05 bin width.
var DefaultExcludePoints = []float64{0.175, 0.225, 0.275, 0.325}

// A SimResult is the output of one scenario call.
type SimResult struct {
	// Curves is the stacked matrix of fitted counterfactual
	// curves, one row of 20 grid values per bootstrap iteration.
	Curves *mat.Dense

	// Mean and Std are the column-wise mean and sample standard
	// deviation (denominator n-1) of Curves. Std is interpretable
	// as a bootstrapped standard error of the counterfactual.
	Mean, Std []float64

	// Warnings collects diagnostics from iterations whose
	// polynomial fit was ill-conditioned. The corresponding rows
	// of Curves hold approximate solutions; a non-empty Warnings
	// signals that the polynomial degree or bin width is probably
	// unsuitable for this sample.
	Warnings []error
}

// fitBuffers holds the per-iteration scratch space shared by all
// iterations of one scenario call.
type fitBuffers struct {
	resample []float64
	counts   []int
	xs, ys   []float64
}

func newFitBuffers(sampleLen, bins int) *fitBuffers {
	return &fitBuffers{
		resample: make([]float64, sampleLen),
		counts:   make([]int, bins),
		xs:       make([]float64, 0, bins),
		ys:       make([]float64, 0, bins),
	}
}

// resampleFit draws one bootstrap resample of the full sample size
// with replacement, histograms it over the estimator's bins, and fits
// the counterfactual polynomial to the bins selected by mask into
// out. A nil mask includes every bin.
func (e *Estimator) resampleFit(rng *rand.Rand, buf *fitBuffers, mask []bool, out []float64) error {
	n := len(e.xs)
	for i := range buf.resample {
		buf.resample[i] = e.xs[rng.Intn(n)]
	}
	e.countBins(buf.resample, buf.counts)

	buf.xs, buf.ys = buf.xs[:0], buf.ys[:0]
	for i, m := range e.midpoints {
		if mask == nil || mask[i] {
			buf.xs = append(buf.xs, m)
			buf.ys = append(buf.ys, float64(buf.counts[i]))
		}
	}
	return e.polyFit(buf.xs, buf.ys, out)
}

// runScenario reseeds the generator and runs itersPerMask bootstrap
// iterations for each mask in order, stacking every fitted curve into
// one matrix, then reduces the columns to mean and std. Masks must
// already be validated to retain at least degree+1 bins.
func (e *Estimator) runScenario(masks [][]bool, itersPerMask int) (*SimResult, error) {
	rng := rand.New(rand.NewSource(e.seed))

	rows := len(masks) * itersPerMask
	res := &SimResult{Curves: mat.NewDense(rows, curvePoints, nil)}
	buf := newFitBuffers(len(e.xs), len(e.midpoints))

	row := 0
	for _, mask := range masks {
		for it := 0; it < itersPerMask; it++ {
			err := e.resampleFit(rng, buf, mask, res.Curves.RawRowView(row))
			if err != nil {
				var cond mat.Condition
				if !errors.As(err, &cond) {
					return nil, err
				}
				res.Warnings = append(res.Warnings, fmt.Errorf("iteration %d: %w", row, err))
			}
			row++
		}
	}

	res.Mean = make([]float64, curvePoints)
	res.Std = make([]float64, curvePoints)
	col := make([]float64, rows)
	for j := 0; j < curvePoints; j++ {
		mat.Col(col, j, res.Curves)
		res.Mean[j] = stat.Mean(col, nil)
		res.Std[j] = stat.StdDev(col, nil)
	}
	return res, nil
}

// Scenario1 assesses the sensitivity of the counterfactual to each of
// several candidate bins by excluding them one at a time: for each
// exclusion point it bootstraps the sample numSims times, drops the
// single bin whose midpoint equals the point, and fits the
// counterfactual to the remaining bins. The per-point run matrices
// are stacked vertically, so Curves has len(excludePoints)*numSims
// rows and the pooled mean and std form an overall uncertainty band
// for the counterfactual.
//
// The generator is reseeded once at the start of the call, not once
// per exclusion point. Successive exclusion points therefore consume
// successive slices of the same pseudo-random stream: the whole call
// is reproducible run to run, but the per-point blocks are not
// mutually independent.
//
// numSims <= 0 selects DefaultNumSimulations; a nil excludePoints
// selects DefaultExcludePoints, while an empty non-nil slice fails
// with ErrNoExcludePoints. Every exclusion point must equal one of
// the estimator's bin midpoints exactly, or Scenario1 fails with
// ErrExcludePoint before any simulation runs. There is no
// nearest-midpoint fallback.
func (e *Estimator) Scenario1(numSims int, excludePoints []float64) (*SimResult, error) {
	if numSims <= 0 {
		numSims = DefaultNumSimulations
	}
	if excludePoints == nil {
		excludePoints = DefaultExcludePoints
	}
	if len(excludePoints) == 0 {
		return nil, ErrNoExcludePoints
	}
	if len(e.midpoints)-1 < e.degree+1 {
		return nil, fmt.Errorf("%w: %d bins for degree %d", ErrDegreesOfFreedom, len(e.midpoints)-1, e.degree)
	}

	masks := make([][]bool, len(excludePoints))
	for pi, p := range excludePoints {
		mask := make([]bool, len(e.midpoints))
		found := false
		for i, m := range e.midpoints {
			mask[i] = m != p
			if m == p {
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %v", ErrExcludePoint, p)
		}
		masks[pi] = mask
	}
	return e.runScenario(masks, numSims)
}

// Scenario2 is the full-sample bootstrap baseline: no bins are
// excluded, so the fitted curves describe the smoothed density under
// the null assumption that no bin is anomalous. It runs 4*numSims
// iterations so its run count matches Scenario1's total under the
// default four exclusion points. numSims <= 0 selects
// DefaultNumSimulations.
func (e *Estimator) Scenario2(numSims int) (*SimResult, error) {
	if numSims <= 0 {
		numSims = DefaultNumSimulations
	}
	if len(e.midpoints) < e.degree+1 {
		return nil, fmt.Errorf("%w: %d bins for degree %d", ErrDegreesOfFreedom, len(e.midpoints), e.degree)
	}
	return e.runScenario([][]bool{nil}, 4*numSims)
}

// Scenario3 is the standard bunching counterfactual: it excludes a
// symmetric window of one bin width either side of the threshold
// zstar and fits the curve to every bin outside that window. The
// exclusion mask is computed once and held fixed for all 4*numSims
// iterations. numSims <= 0 selects DefaultNumSimulations; a zstar of
// 0 selects DefaultZstar. The window must leave at least degree+1
// bins, or Scenario3 fails with ErrDegreesOfFreedom.
func (e *Estimator) Scenario3(numSims int, zstar float64) (*SimResult, error) {
	if numSims <= 0 {
		numSims = DefaultNumSimulations
	}
	if zstar == 0 {
		zstar = DefaultZstar
	}

	mask := make([]bool, len(e.midpoints))
	kept := 0
	for i, m := range e.midpoints {
		mask[i] = m < zstar-e.binWidth || m > zstar+e.binWidth
		if mask[i] {
			kept++
		}
	}
	if kept < e.degree+1 {
		return nil, fmt.Errorf("%w: %d bins outside the window for degree %d", ErrDegreesOfFreedom, kept, e.degree)
	}
	return e.runScenario([][]bool{mask}, 4*numSims)
}
