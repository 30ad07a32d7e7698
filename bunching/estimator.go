// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bunching

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrEmptySample indicates a sample with no finite values.
	ErrEmptySample = errors.New("sample is empty")

	// ErrBinWidth indicates a bin width outside (0, 1).
	ErrBinWidth = errors.New("bin width must be in (0, 1)")

	// ErrSampleRange indicates a sample value outside [0, 1].
	ErrSampleRange = errors.New("sample value outside [0, 1]")

	// ErrExcludePoint indicates an exclusion point that matches no
	// bin midpoint.
	ErrExcludePoint = errors.New("exclusion point matches no bin midpoint")

	// ErrNoExcludePoints indicates an empty exclusion list.
	ErrNoExcludePoints = errors.New("no exclusion points")

	// ErrDegreesOfFreedom indicates that a fit was requested with
	// fewer included bins than polynomial coefficients.
	ErrDegreesOfFreedom = errors.New("fewer included bins than polynomial degree + 1")
)

// Options configures an Estimator.
//
// The default (zero) value of Options is a reasonable default
// configuration.
type Options struct {
	// BinWidth is the width of the histogram bins used to
	// discretize the sample. It must lie in [0.01, 1) and should
	// evenly divide 1; a width that does not leaves a ragged final
	// bin, visible to the caller in the length of Edges. Widths
	// below 0.01 are rejected: bin assignment rounds boundaries to
	// 2 decimals, so narrower bins would collide. If zero, 0.05 is
	// used.
	BinWidth float64

	// PolyDegree is the degree of the least-squares polynomial
	// fitted to bin counts. If zero, 4 is used.
	PolyDegree int

	// Seed seeds the pseudo-random generator used for bootstrap
	// resampling. The generator is reseeded at the start of every
	// scenario call, so each scenario's output is reproducible and
	// independent of call order. If zero, 123 is used.
	Seed uint64
}

// An Estimator estimates counterfactual density curves for a fixed
// sample of proportions. It is constructed once per analysis; the
// sample and binning scheme never change afterward, so one Estimator
// may serve any number of scenario calls.
type Estimator struct {
	xs       []float64
	binWidth float64
	degree   int
	seed     uint64

	// edges holds the bin boundaries from 0 to 1. cutEdges is the
	// same sequence rounded to 2 decimals; all bin assignment
	// happens against cutEdges after rounding the value to 2
	// decimals, so values landing on a boundary bin predictably.
	edges     []float64
	cutEdges  []float64
	midpoints []float64
}

// NewEstimator returns an Estimator over the given sample. NaN and
// infinite values are dropped; the remaining values must lie in
// [0, 1]. The sample is copied and the Estimator does not retain xs.
func NewEstimator(xs []float64, o Options) (*Estimator, error) {
	if o.BinWidth == 0 {
		o.BinWidth = 0.05
	}
	if o.PolyDegree == 0 {
		o.PolyDegree = 4
	}
	if o.Seed == 0 {
		o.Seed = 123
	}
	if o.BinWidth <= 0 || o.BinWidth >= 1 {
		return nil, fmt.Errorf("%w: %v", ErrBinWidth, o.BinWidth)
	}

	clean := make([]float64, 0, len(xs))
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		if x < 0 || x > 1 {
			return nil, fmt.Errorf("%w: %v", ErrSampleRange, x)
		}
		clean = append(clean, x)
	}
	if len(clean) == 0 {
		return nil, ErrEmptySample
	}

	e := &Estimator{
		xs:       clean,
		binWidth: o.BinWidth,
		degree:   o.PolyDegree,
		seed:     o.Seed,
	}
	for k := 0; ; k++ {
		edge := float64(k) * e.binWidth
		if edge > 1+1e-9 {
			break
		}
		e.edges = append(e.edges, edge)
	}
	e.cutEdges = make([]float64, len(e.edges))
	for i, edge := range e.edges {
		e.cutEdges[i] = roundTo(edge, 2)
		if i > 0 && e.cutEdges[i] <= e.cutEdges[i-1] {
			return nil, fmt.Errorf("%w: %v collapses bin boundaries at 2-decimal rounding", ErrBinWidth, o.BinWidth)
		}
	}
	e.midpoints = make([]float64, len(e.edges)-1)
	for i := range e.midpoints {
		e.midpoints[i] = roundTo((e.edges[i]+e.edges[i+1])/2, 3)
	}
	return e, nil
}

// Edges returns the bin boundaries, from 0 to 1 inclusive.
func (e *Estimator) Edges() []float64 {
	return append([]float64(nil), e.edges...)
}

// Midpoints returns the bin centers, rounded to 3 decimals. These are
// the x-positions the counterfactual polynomial is fitted at.
func (e *Estimator) Midpoints() []float64 {
	return append([]float64(nil), e.midpoints...)
}

// Counts returns the histogram of the original sample over the
// estimator's bins. Comparing these observed counts against a
// scenario's counterfactual mean curve is how callers measure excess
// mass.
func (e *Estimator) Counts() []int {
	counts := make([]int, len(e.midpoints))
	e.countBins(e.xs, counts)
	return counts
}

// countBins histograms xs into counts, one entry per bin. Values are
// rounded to 2 decimals first, matching the rounding applied to the
// bin edges. Bins are closed on the left and open on the right,
// except the last bin, which is closed on both ends so a value of
// exactly 1 is kept. Out-of-range values are dropped.
func (e *Estimator) countBins(xs []float64, counts []int) {
	for i := range counts {
		counts[i] = 0
	}
	lo, hi := e.cutEdges[0], e.cutEdges[len(e.cutEdges)-1]
	for _, x := range xs {
		x = roundTo(x, 2)
		if x < lo || x > hi {
			continue
		}
		j := sort.SearchFloat64s(e.cutEdges, x)
		if e.cutEdges[j] != x {
			j--
		}
		if j == len(counts) {
			// x is exactly the top edge; closed last bin.
			j--
		}
		counts[j]++
	}
}

// BinLabel maps x to its bin's label: the bin midpoint shifted down
// by half a bin width (equivalently, the bin's left edge to 3
// decimals). The half-bin shift is a labeling convention for
// downstream tabulation and plotting; it is not used by the
// scenarios.
//
// The labeling cut is closed on the left and open on the right for
// every bin, so ok is false for values with no bin, including exactly
// 1. This differs from the histogram convention, which closes the
// last bin.
func (e *Estimator) BinLabel(x float64) (label float64, ok bool) {
	if math.IsNaN(x) {
		return math.NaN(), false
	}
	x = roundTo(x, 2)
	if x < e.cutEdges[0] {
		return math.NaN(), false
	}
	j := sort.SearchFloat64s(e.cutEdges, x)
	if j == len(e.cutEdges) {
		return math.NaN(), false
	}
	if e.cutEdges[j] != x {
		j--
	}
	if j >= len(e.midpoints) {
		return math.NaN(), false
	}
	return roundTo(e.midpoints[j]-e.binWidth/2, 3), true
}

// BinLabels applies BinLabel to each value of a column, producing NaN
// where a value has no bin.
func (e *Estimator) BinLabels(xs []float64) []float64 {
	labels := make([]float64, len(xs))
	for i, x := range xs {
		label, ok := e.BinLabel(x)
		if !ok {
			label = math.NaN()
		}
		labels[i] = label
	}
	return labels
}
