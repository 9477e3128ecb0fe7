package fractal

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"QuantPulse/internal/quant"
	"QuantPulse/internal/quant/series"
)

func TestGenerateFBMPathShapeAndPositivity(t *testing.T) {
	opts := FBMOptions{InitialPrice: 100, Hurst: 0.7, Days: 252, Volatility: 0.2, Drift: 0.05}
	path, err := GenerateFBMPath(opts, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path.Prices) != opts.Days+1 {
		t.Fatalf("expected %d prices, got %d", opts.Days+1, len(path.Prices))
	}
	if path.Prices[0] != opts.InitialPrice {
		t.Fatalf("expected first price %v, got %v", opts.InitialPrice, path.Prices[0])
	}
	for i, p := range path.Prices {
		if p <= 0 || math.IsNaN(p) {
			t.Fatalf("price %d not strictly positive: %v", i, p)
		}
	}
}

func TestGenerateFBMPathDeterministic(t *testing.T) {
	opts := FBMOptions{InitialPrice: 50, Hurst: 0.5, Days: 100, Volatility: 0.3}
	a, err := GenerateFBMPath(opts, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := GenerateFBMPath(opts, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range a.Prices {
		if a.Prices[i] != b.Prices[i] {
			t.Fatalf("paths diverge at %d with identical seeds", i)
		}
	}
}

func TestGenerateFBMPathInvalidParams(t *testing.T) {
	cases := []FBMOptions{
		{InitialPrice: 100, Hurst: 0, Days: 10},
		{InitialPrice: 100, Hurst: 1, Days: 10},
		{InitialPrice: 0, Hurst: 0.5, Days: 10},
		{InitialPrice: 100, Hurst: 0.5, Days: 0},
		{InitialPrice: 100, Hurst: 0.5, Days: 10, Volatility: -0.1},
	}
	for i, opts := range cases {
		if _, err := GenerateFBMPath(opts, nil); !errors.Is(err, quant.ErrInvalidParameter) {
			t.Fatalf("case %d: expected invalid parameter error, got %v", i, err)
		}
	}
}

func TestGenerateFBMPathRandomWalkIncrements(t *testing.T) {
	// At Hurst 0.5 the log-return increments are i.i.d.; their lag-1
	// autocorrelation should hover near zero across seeds.
	opts := FBMOptions{InitialPrice: 100, Hurst: 0.5, Days: 2000, Volatility: 0.2}
	for _, seed := range []uint64{1, 2, 3} {
		path, err := GenerateFBMPath(opts, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}
		rets := make([]float64, len(path.Prices)-1)
		for i := 1; i < len(path.Prices); i++ {
			rets[i-1] = math.Log(path.Prices[i] / path.Prices[i-1])
		}
		if ac := lag1Autocorr(rets); math.Abs(ac) > 0.1 {
			t.Fatalf("seed %d: expected near-zero lag-1 autocorrelation, got %v", seed, ac)
		}
	}
}

func TestSampleFGNUnitVariance(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	fgn := sampleFGN(5000, 0.5, rng)
	if len(fgn) != 5000 {
		t.Fatalf("expected 5000 increments, got %d", len(fgn))
	}
	sd := series.Std(fgn)
	if sd < 0.9 || sd > 1.1 {
		t.Fatalf("expected near-unit standard deviation, got %v", sd)
	}
}

func TestHoskingMatchesCovarianceSign(t *testing.T) {
	// Persistent noise keeps positive lag-1 autocorrelation, antipersistent
	// noise flips it.
	rng := rand.New(rand.NewSource(5))
	persistent := hosking(1500, 0.8, rng)
	if ac := lag1Autocorr(persistent); ac <= 0 {
		t.Fatalf("expected positive autocorrelation at H=0.8, got %v", ac)
	}
	anti := hosking(1500, 0.2, rng)
	if ac := lag1Autocorr(anti); ac >= 0 {
		t.Fatalf("expected negative autocorrelation at H=0.2, got %v", ac)
	}
}

func lag1Autocorr(xs []float64) float64 {
	mean := series.Mean(xs)
	var num, den float64
	for i := 0; i < len(xs)-1; i++ {
		num += (xs[i] - mean) * (xs[i+1] - mean)
	}
	for _, x := range xs {
		den += (x - mean) * (x - mean)
	}
	if den == 0 {
		return 0
	}
	return num / den
}
