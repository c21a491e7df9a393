package similarity

import (
	"errors"
	"math"

	"github.com/banshee-data/lanematch/internal/trajectory"
)

// MemoryMode selects how much of the DTW table is kept.
type MemoryMode int

const (
	// FullMatrix keeps the whole (n+1)x(m+1) table and supports alignment
	// recovery. Memory: O(n·m).
	FullMatrix MemoryMode = iota
	// RollingArray keeps two rows. Memory: O(m). No alignment path.
	RollingArray
)

// DTWOptions configures a DTW computation. A nil *DTWOptions is an
// unconstrained FullMatrix run.
type DTWOptions struct {
	// Window is the Sakoe-Chiba band half-width; cells with |i-j| > Window
	// are unreachable. Zero means unconstrained. When the sequence lengths
	// differ by more than Window the distance is +Inf.
	Window int
	// MemoryMode selects FullMatrix or RollingArray storage.
	MemoryMode MemoryMode
}

// ErrEmptySequence is returned by DTWAlignment when either input is empty.
var ErrEmptySequence = errors.New("dtw: input sequences must be non-empty")

// DTW returns the dynamic time warping distance between two scalar series
// with cost |a-b|. It returns +Inf when either series is empty.
func DTW(a, b []float64, opts *DTWOptions) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}
	return dtwDistance(len(a), len(b), func(i, j int) float64 {
		return math.Abs(a[i] - b[j])
	}, opts)
}

// DTWPoints returns the DTW distance between two point sequences with
// Euclidean cost. It returns +Inf when either sequence is empty.
func DTWPoints(a, b []trajectory.Point, opts *DTWOptions) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}
	return dtwDistance(len(a), len(b), func(i, j int) float64 {
		return a[i].Dist(b[j])
	}, opts)
}

// DTWAlignment returns the distance and the optimal warping path between
// two scalar series as (i, j) index pairs from (0,0) to (n-1,m-1). The
// MemoryMode option is ignored; alignment always needs the full table.
func DTWAlignment(a, b []float64, opts *DTWOptions) (float64, [][2]int, error) {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return math.Inf(1), nil, ErrEmptySequence
	}
	window := windowOf(opts)
	dp := fillFull(n, m, func(i, j int) float64 { return math.Abs(a[i] - b[j]) }, window)
	dist := dp[n][m]
	if math.IsInf(dist, 1) {
		return dist, nil, nil
	}

	var path [][2]int
	i, j := n, m
	for i > 0 && j > 0 {
		path = append(path, [2]int{i - 1, j - 1})
		switch best := min3(dp[i-1][j-1], dp[i-1][j], dp[i][j-1]); best {
		case dp[i-1][j-1]:
			i--
			j--
		case dp[i-1][j]:
			i--
		default:
			j--
		}
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return dist, path, nil
}

func windowOf(opts *DTWOptions) int {
	if opts == nil || opts.Window <= 0 {
		return 0
	}
	return opts.Window
}

func dtwDistance(n, m int, cost func(i, j int) float64, opts *DTWOptions) float64 {
	window := windowOf(opts)
	if window > 0 && abs(n-m) > window {
		return math.Inf(1)
	}
	if opts != nil && opts.MemoryMode == RollingArray {
		return fillRolling(n, m, cost, window)
	}
	return fillFull(n, m, cost, window)[n][m]
}

// fillFull builds the (n+1)x(m+1) table with dp[0][0] = 0 and every other
// boundary cell +Inf.
func fillFull(n, m int, cost func(i, j int) float64, window int) [][]float64 {
	inf := math.Inf(1)
	dp := make([][]float64, n+1)
	for i := range dp {
		dp[i] = make([]float64, m+1)
		for j := range dp[i] {
			dp[i][j] = inf
		}
	}
	dp[0][0] = 0

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if window > 0 && abs(i-j) > window {
				continue
			}
			dp[i][j] = cost(i-1, j-1) + min3(dp[i-1][j], dp[i][j-1], dp[i-1][j-1])
		}
	}
	return dp
}

func fillRolling(n, m int, cost func(i, j int) float64, window int) float64 {
	inf := math.Inf(1)
	prev := make([]float64, m+1)
	curr := make([]float64, m+1)
	for j := range prev {
		prev[j] = inf
	}
	prev[0] = 0

	for i := 1; i <= n; i++ {
		curr[0] = inf
		for j := 1; j <= m; j++ {
			if window > 0 && abs(i-j) > window {
				curr[j] = inf
				continue
			}
			curr[j] = cost(i-1, j-1) + min3(prev[j], curr[j-1], prev[j-1])
		}
		prev, curr = curr, prev
	}
	return prev[m]
}

// abs returns the absolute value of an int.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
