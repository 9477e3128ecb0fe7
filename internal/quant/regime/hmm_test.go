package regime

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"QuantPulse/internal/domain/models"
	"QuantPulse/internal/quant"
)

// twoRegimeReturns alternates between a calm and a turbulent block so the
// model has something to find.
func twoRegimeReturns(seed uint64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	xs := make([]float64, 0, 400)
	for i := 0; i < 200; i++ {
		xs = append(xs, 0.005*rng.NormFloat64())
	}
	for i := 0; i < 200; i++ {
		xs = append(xs, 0.04*rng.NormFloat64())
	}
	return xs
}

func TestDetectHMMTwoRegimes(t *testing.T) {
	xs := twoRegimeReturns(17)
	res, err := DetectHMM(xs, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Method != models.MethodGaussianHMM {
		t.Fatalf("expected HMM method tag, got %q", res.Method)
	}
	if len(res.Labels) != len(xs) {
		t.Fatalf("expected %d labels, got %d", len(xs), len(res.Labels))
	}
	if res.NRegimes != 2 || len(res.Stats) != 2 {
		t.Fatalf("expected 2 regimes, got %d with %d stats", res.NRegimes, len(res.Stats))
	}
	// The decoded regimes must separate the two volatility levels.
	v0, v1 := res.Stats[0].Volatility, res.Stats[1].Volatility
	lo, hi := math.Min(v0, v1), math.Max(v0, v1)
	if lo <= 0 || hi/lo < 2 {
		t.Fatalf("regimes did not separate volatilities: %v vs %v", v0, v1)
	}
}

func TestDetectHMMTransitionMatrixRows(t *testing.T) {
	res, err := DetectHMM(twoRegimeReturns(23), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.TransitionMatrix) != 3 {
		t.Fatalf("expected 3 transition rows, got %d", len(res.TransitionMatrix))
	}
	for i, row := range res.TransitionMatrix {
		var sum float64
		for _, p := range row {
			if p < 0 {
				t.Fatalf("row %d has negative probability %v", i, p)
			}
			sum += p
		}
		if math.Abs(sum-1) > 1e-6 {
			t.Fatalf("row %d sums to %v", i, sum)
		}
	}
}

func TestDetectHMMFrequenciesSumToOne(t *testing.T) {
	res, err := DetectHMM(twoRegimeReturns(29), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sum float64
	for _, s := range res.Stats {
		sum += s.Frequency
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("frequencies sum to %v", sum)
	}
	if res.CurrentRegime != res.Labels[len(res.Labels)-1] {
		t.Fatalf("current regime %d does not match last label %d", res.CurrentRegime, res.Labels[len(res.Labels)-1])
	}
}

func TestDetectHMMInsufficientData(t *testing.T) {
	_, err := DetectHMM(twoRegimeReturns(1)[:MinHMMObservations-1], 2)
	if !errors.Is(err, quant.ErrInsufficientData) {
		t.Fatalf("expected insufficient data error, got %v", err)
	}
}

func TestDetectHMMInvalidRegimeCount(t *testing.T) {
	_, err := DetectHMM(twoRegimeReturns(1), 1)
	if !errors.Is(err, quant.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter error, got %v", err)
	}
}

func TestDetectHMMZeroVariance(t *testing.T) {
	flat := make([]float64, 100)
	_, err := DetectHMM(flat, 2)
	if !errors.Is(err, quant.ErrModelFit) {
		t.Fatalf("expected model fit error, got %v", err)
	}
}
