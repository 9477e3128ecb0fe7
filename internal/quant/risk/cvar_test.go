package risk

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"QuantPulse/internal/quant"
)

func sampleReturns(n int, seed uint64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = 0.0003 + 0.015*rng.NormFloat64()
	}
	return xs
}

func TestCVaRKnownValues(t *testing.T) {
	returns := []float64{-0.05, -0.02, 0.01, 0.03}
	res, err := CVaR(returns, 0.95)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 5th percentile of the sorted returns interpolates to -0.0455; only
	// -0.05 sits in the tail.
	if math.Abs(res.VaR-0.0455) > 1e-9 {
		t.Fatalf("expected VaR 0.0455, got %v", res.VaR)
	}
	if math.Abs(res.CVaR-0.05) > 1e-9 {
		t.Fatalf("expected CVaR 0.05, got %v", res.CVaR)
	}
}

func TestCVaRAtLeastVaR(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3, 4} {
		returns := sampleReturns(500, seed)
		for _, conf := range []float64{0.9, 0.95, 0.99} {
			res, err := CVaR(returns, conf)
			if err != nil {
				t.Fatalf("seed %d conf %v: unexpected error: %v", seed, conf, err)
			}
			if res.CVaR < res.VaR-1e-12 {
				t.Fatalf("seed %d conf %v: CVaR %v below VaR %v", seed, conf, res.CVaR, res.VaR)
			}
		}
	}
}

func TestCVaREmptySeries(t *testing.T) {
	res, err := CVaR(nil, 0.95)
	if err != nil {
		t.Fatalf("empty series must not error, got %v", err)
	}
	if !math.IsNaN(res.VaR) || !math.IsNaN(res.CVaR) {
		t.Fatalf("expected NaN measures for empty series, got VaR=%v CVaR=%v", res.VaR, res.CVaR)
	}
}

func TestCVaRAllNaNSeries(t *testing.T) {
	res, err := CVaR([]float64{math.NaN(), math.NaN()}, 0.95)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(res.CVaR) {
		t.Fatalf("expected NaN CVaR, got %v", res.CVaR)
	}
}

func TestCVaRInvalidConfidence(t *testing.T) {
	for _, conf := range []float64{0, 1, -0.5, 1.5} {
		if _, err := CVaR(sampleReturns(100, 1), conf); !errors.Is(err, quant.ErrInvalidParameter) {
			t.Fatalf("confidence %v: expected invalid parameter error, got %v", conf, err)
		}
	}
}

func TestCVaRDegenerateTail(t *testing.T) {
	// Constant returns: quantile equals every value, the tail holds the
	// whole sample and CVaR collapses onto VaR.
	returns := []float64{0.01, 0.01, 0.01, 0.01}
	res, err := CVaR(returns, 0.95)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.CVaR-res.VaR) > 1e-12 {
		t.Fatalf("expected CVaR to equal VaR, got %v vs %v", res.CVaR, res.VaR)
	}
}

func TestAnnualizedVolatility(t *testing.T) {
	got := AnnualizedVolatility(0.01, 252)
	want := 0.01 * math.Sqrt(252)
	if math.Abs(got-want) > 1e-15 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
