package series

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Clean drops NaN and Inf observations, preserving the order of the rest.
// The input slice is not modified.
func Clean(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// LogSpacedSizes returns integer sizes sampled log-uniformly between min and
// max (inclusive), truncated to int and deduplicated ascending. count is the
// number of samples before deduplication.
func LogSpacedSizes(min, max, count int) []int {
	if min < 1 || max < min || count < 1 {
		return nil
	}
	lo := math.Log10(float64(min))
	hi := math.Log10(float64(max))
	seen := make(map[int]struct{}, count)
	out := make([]int, 0, count)
	for i := 0; i < count; i++ {
		f := lo
		if count > 1 {
			f = lo + (hi-lo)*float64(i)/float64(count-1)
		}
		v := int(math.Pow(10, f))
		if v < 1 {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// Mean returns the arithmetic mean, NaN for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// Std returns the sample standard deviation (N-1 denominator). Zero for
// slices shorter than two elements.
func Std(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// CumSum returns the running sum of xs.
func CumSum(xs []float64) []float64 {
	out := make([]float64, len(xs))
	sum := 0.0
	for i, v := range xs {
		sum += v
		out[i] = sum
	}
	return out
}

// Diff returns first differences, length len(xs)-1.
func Diff(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	out := make([]float64, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out[i-1] = xs[i] - xs[i-1]
	}
	return out
}

// Quantile returns the p-quantile of xs using linear interpolation between
// order statistics. xs does not need to be sorted. NaN for empty input.
func Quantile(p float64, xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := p * float64(n-1)
	i := int(math.Floor(h))
	if i < 0 {
		return sorted[0]
	}
	if i >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(i)
	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}

// Slope fits y = a + b*x via ordinary least squares and returns b.
// Both slices must have identical non-zero length; callers are expected to
// have built them as paired appends so a scale contributes to both or neither.
func Slope(x, y []float64) float64 {
	_, beta := stat.LinearRegression(x, y, nil, false)
	return beta
}

// RollingStd returns the rolling sample standard deviation with the given
// window. Positions before the window fills are NaN, mirroring the warmup of
// a rolling estimator.
func RollingStd(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	for i := range out {
		if i+1 < window {
			out[i] = math.NaN()
			continue
		}
		out[i] = Std(xs[i+1-window : i+1])
	}
	return out
}

// PolyFit fits a polynomial of the given order to y sampled at x = 0..len(y)-1
// by least squares and returns coefficients in ascending power order.
func PolyFit(y []float64, order int) ([]float64, error) {
	n := len(y)
	a := mat.NewDense(n, order+1, nil)
	for i := 0; i < n; i++ {
		v := 1.0
		for j := 0; j <= order; j++ {
			a.Set(i, j, v)
			v *= float64(i)
		}
	}
	b := mat.NewVecDense(n, y)
	var c mat.VecDense
	if err := c.SolveVec(a, b); err != nil {
		return nil, err
	}
	coeffs := make([]float64, order+1)
	copy(coeffs, c.RawVector().Data)
	return coeffs, nil
}

// PolyVal evaluates coefficients (ascending power order) at x.
func PolyVal(coeffs []float64, x float64) float64 {
	out := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		out = out*x + coeffs[i]
	}
	return out
}

// Gradient returns the numerical derivative of y with respect to x using
// second-order central differences in the interior and one-sided differences
// at the ends. Handles non-uniform spacing. Both slices must have the same
// length, at least 2.
func Gradient(y, x []float64) []float64 {
	n := len(y)
	out := make([]float64, n)
	if n < 2 {
		if n == 1 {
			out[0] = 0
		}
		return out
	}
	out[0] = (y[1] - y[0]) / (x[1] - x[0])
	out[n-1] = (y[n-1] - y[n-2]) / (x[n-1] - x[n-2])
	for i := 1; i < n-1; i++ {
		hd := x[i] - x[i-1]
		hs := x[i+1] - x[i]
		out[i] = (hs*hs*y[i+1] + (hd*hd-hs*hs)*y[i] - hd*hd*y[i-1]) / (hs * hd * (hd + hs))
	}
	return out
}
