package series

import (
	"math"
	"testing"
)

func TestCleanDropsNonFinite(t *testing.T) {
	xs := []float64{1, math.NaN(), 2, math.Inf(1), 3, math.Inf(-1)}
	got := Clean(xs)
	want := []float64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestQuantileLinearInterpolation(t *testing.T) {
	xs := []float64{3, 1, 2, 4}
	got := Quantile(0.25, xs)
	// sorted [1 2 3 4], idx = 0.25*3 = 0.75 -> 1 + 0.75*(2-1)
	if math.Abs(got-1.75) > 1e-12 {
		t.Fatalf("expected 1.75, got %v", got)
	}
	if !math.IsNaN(Quantile(0.5, nil)) {
		t.Fatalf("expected NaN for empty input")
	}
	if Quantile(0, xs) != 1 || Quantile(1, xs) != 4 {
		t.Fatalf("expected endpoints 1 and 4")
	}
}

func TestLogSpacedSizes(t *testing.T) {
	sizes := LogSpacedSizes(10, 100, 5)
	if sizes[0] != 10 {
		t.Fatalf("expected first size 10, got %d", sizes[0])
	}
	if sizes[len(sizes)-1] != 100 {
		t.Fatalf("expected last size 100, got %d", sizes[len(sizes)-1])
	}
	for i := 1; i < len(sizes); i++ {
		if sizes[i] <= sizes[i-1] {
			t.Fatalf("sizes not strictly increasing: %v", sizes)
		}
	}
}

func TestPolyFitRecoversLine(t *testing.T) {
	y := []float64{1, 3, 5, 7, 9}
	coeffs, err := PolyFit(y, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(coeffs[0]-1) > 1e-9 || math.Abs(coeffs[1]-2) > 1e-9 {
		t.Fatalf("expected [1 2], got %v", coeffs)
	}
}

func TestGradientLinear(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{0, 2, 4, 6, 8}
	g := Gradient(y, x)
	for i, v := range g {
		if math.Abs(v-2) > 1e-9 {
			t.Fatalf("index %d: expected slope 2, got %v", i, v)
		}
	}
}

func TestRollingStdWarmup(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5, 6}
	got := RollingStd(xs, 3)
	for i := 0; i < 2; i++ {
		if !math.IsNaN(got[i]) {
			t.Fatalf("expected NaN warmup at %d, got %v", i, got[i])
		}
	}
	// std of [1 2 3] with ddof=1 is 1
	if math.Abs(got[2]-1) > 1e-12 {
		t.Fatalf("expected 1, got %v", got[2])
	}
}

func TestSlope(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}
	if got := Slope(x, y); math.Abs(got-2) > 1e-12 {
		t.Fatalf("expected slope 2, got %v", got)
	}
}

func TestStdDegenerate(t *testing.T) {
	if got := Std([]float64{5}); got != 0 {
		t.Fatalf("expected 0 for single value, got %v", got)
	}
}
