// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bunching estimates excess mass ("bunching") in a sample of
// proportions near a policy threshold, in the tradition of the
// excess-mass estimator of Chetty et al. (2011).
//
// The estimator bins a sample of values in [0, 1] with a fixed bin
// width, fits a flexible polynomial to the bin counts with a suspect
// region excluded, and bootstraps the whole procedure to quantify
// sampling variability. The fitted polynomial is the counterfactual
// density: the distribution one would expect absent any behavioral
// clustering at the threshold. Observed counts well above the
// counterfactual in the excluded region indicate bunching.
//
// Three exclusion scenarios characterize the counterfactual:
// Scenario1 excludes candidate bins one at a time, Scenario2 excludes
// nothing (the null baseline), and Scenario3 excludes a symmetric
// window around the threshold itself.
//
// Chetty, R., Friedman, J. N., Olsen, T., Pistaferri, L. (2011).
// "Adjustment Costs, Firm Responses, and Micro vs. Macro Labor Supply
// Elasticities: Evidence from Danish Tax Records". The Quarterly
// Journal of Economics 126 (2): 749–804.
package bunching // import "github.com/mnmx0101/IPC-Paper/bunching"

import "math"

// roundTo rounds x to the given number of decimal places.
func roundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
