// Package similarity implements the distance kernels used to compare an
// input path with a reference lane: discrete Fréchet distance, dynamic time
// warping and lagged cross-correlation.
//
// All functions are pure and safe for concurrent use. Point distances are
// Euclidean in the plane.
package similarity

import (
	"math"

	"github.com/banshee-data/lanematch/internal/trajectory"
)

// Frechet returns the discrete Fréchet distance between a and b using a
// bottom-up coupling table. It returns +Inf when either input is empty.
func Frechet(a, b []trajectory.Point) float64 {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return math.Inf(1)
	}

	ca := make([][]float64, n)
	for i := range ca {
		ca[i] = make([]float64, m)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			d := a[i].Dist(b[j])
			switch {
			case i == 0 && j == 0:
				ca[i][j] = d
			case i == 0:
				ca[i][j] = math.Max(ca[i][j-1], d)
			case j == 0:
				ca[i][j] = math.Max(ca[i-1][j], d)
			default:
				ca[i][j] = math.Max(min3(ca[i-1][j], ca[i-1][j-1], ca[i][j-1]), d)
			}
		}
	}
	return ca[n-1][m-1]
}

// FrechetRolling computes the same value as Frechet keeping only two rows of
// the coupling table.
func FrechetRolling(a, b []trajectory.Point) float64 {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return math.Inf(1)
	}

	prev := make([]float64, m)
	curr := make([]float64, m)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			d := a[i].Dist(b[j])
			switch {
			case i == 0 && j == 0:
				curr[j] = d
			case i == 0:
				curr[j] = math.Max(curr[j-1], d)
			case j == 0:
				curr[j] = math.Max(prev[j], d)
			default:
				curr[j] = math.Max(min3(prev[j], prev[j-1], curr[j-1]), d)
			}
		}
		prev, curr = curr, prev
	}
	return prev[m-1]
}

// min3 returns the minimum of three float64 values.
func min3(a, b, c float64) float64 {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
