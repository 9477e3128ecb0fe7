package fractal

import (
	"errors"
	"testing"

	"golang.org/x/exp/rand"

	"QuantPulse/internal/quant"
)

func whiteNoise(n int, seed uint64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = rng.NormFloat64()
	}
	return xs
}

func TestEstimateDFAWhiteNoise(t *testing.T) {
	// Uncorrelated noise has a scaling exponent near 0.5.
	xs := whiteNoise(2000, 21)
	res, err := EstimateDFA(xs, DFAOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Alpha < 0.35 || res.Alpha > 0.65 {
		t.Fatalf("expected white-noise alpha near 0.5, got %v", res.Alpha)
	}
	if res.Observations != 2000 {
		t.Fatalf("expected 2000 observations, got %d", res.Observations)
	}
}

func TestEstimateDFARandomWalkExponent(t *testing.T) {
	// Integrated noise scales roughly one above its increments.
	xs := randomWalk(2000, 22)
	res, err := EstimateDFA(xs, DFAOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Alpha < 1.2 || res.Alpha > 1.8 {
		t.Fatalf("expected random-walk alpha near 1.5, got %v", res.Alpha)
	}
}

func TestEstimateDFAInsufficientData(t *testing.T) {
	_, err := EstimateDFA(whiteNoise(MinDFAObservations-1, 5), DFAOptions{})
	if !errors.Is(err, quant.ErrInsufficientData) {
		t.Fatalf("expected insufficient data error, got %v", err)
	}
}

func TestEstimateDFABoxSizes(t *testing.T) {
	res, err := EstimateDFA(whiteNoise(800, 13), DFAOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.BoxSizes < 5 {
		t.Fatalf("expected at least 5 retained box sizes, got %d", res.BoxSizes)
	}

	// Capping the largest box narrows the retained set, never widens it.
	capped, err := EstimateDFA(whiteNoise(800, 13), DFAOptions{MaxBoxSize: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capped.BoxSizes < 5 {
		t.Fatalf("expected at least 5 retained box sizes with cap, got %d", capped.BoxSizes)
	}
	if capped.BoxSizes >= res.BoxSizes {
		t.Fatalf("cap at 50 should retain fewer sizes: %d vs %d", capped.BoxSizes, res.BoxSizes)
	}
}
