// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bunching

import (
	"math"

	"golang.org/x/exp/rand"
)

func aeq(expect, got float64) bool {
	return math.Abs(expect-got) < 0.00001
}

// uniformSample returns n pseudo-random draws on [0, 1).
func uniformSample(n int, seed uint64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = rng.Float64()
	}
	return xs
}
