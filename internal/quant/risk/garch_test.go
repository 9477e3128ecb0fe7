package risk

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"QuantPulse/internal/domain/models"
	"QuantPulse/internal/quant"
)

// garchReturns simulates a GARCH(1,1) process so the fitter sees data with
// genuine volatility clustering.
func garchReturns(n int, seed uint64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	const (
		omega = 1e-6
		alpha = 0.08
		beta  = 0.9
	)
	v := omega / (1 - alpha - beta)
	xs := make([]float64, n)
	for i := range xs {
		eps := math.Sqrt(v) * rng.NormFloat64()
		xs[i] = eps
		v = omega + alpha*eps*eps + beta*v
	}
	return xs
}

func TestFitGARCHForecastShape(t *testing.T) {
	res, err := FitGARCH(garchReturns(750, 42), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Horizon != 10 || len(res.Forecast) != 10 {
		t.Fatalf("expected forecast length 10, got %d", len(res.Forecast))
	}
	if len(res.InSample) != 750 {
		t.Fatalf("expected in-sample length 750, got %d", len(res.InSample))
	}
	for i, v := range res.Forecast {
		if v < 0 || math.IsNaN(v) {
			t.Fatalf("forecast %d negative or NaN: %v", i, v)
		}
	}
	if res.Method != models.MethodGARCHStudentT && res.Method != models.MethodGARCHNormal {
		t.Fatalf("unexpected method %q", res.Method)
	}
}

func TestFitGARCHStationaryParams(t *testing.T) {
	res, err := FitGARCH(garchReturns(1000, 7), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := res.Params
	if p.Omega <= 0 {
		t.Fatalf("omega must be positive, got %v", p.Omega)
	}
	if p.Alpha < 0 || p.Beta < 0 || p.Alpha+p.Beta >= 1 {
		t.Fatalf("parameters violate stationarity: alpha=%v beta=%v", p.Alpha, p.Beta)
	}
}

func TestFitGARCHInsufficientData(t *testing.T) {
	_, err := FitGARCH(garchReturns(MinGARCHObservations-1, 1), 5)
	if !errors.Is(err, quant.ErrInsufficientData) {
		t.Fatalf("expected insufficient data error, got %v", err)
	}
}

func TestFitGARCHInvalidHorizon(t *testing.T) {
	_, err := FitGARCH(garchReturns(200, 1), 0)
	if !errors.Is(err, quant.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter error, got %v", err)
	}
}

func TestFitGARCHZeroVariance(t *testing.T) {
	flat := make([]float64, 100)
	_, err := FitGARCH(flat, 5)
	if !errors.Is(err, quant.ErrModelFit) {
		t.Fatalf("expected model fit error, got %v", err)
	}
}

func TestRollingForecastDecaysTowardLongRun(t *testing.T) {
	res, err := RollingForecast(garchReturns(300, 11), 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Method != models.MethodRollingVolatility {
		t.Fatalf("expected heuristic method tag, got %q", res.Method)
	}
	if len(res.Forecast) != 60 {
		t.Fatalf("expected forecast length 60, got %d", len(res.Forecast))
	}
	// The first step is the current annualized level, undecayed.
	current := res.InSample[len(res.InSample)-1]
	if math.Abs(res.Forecast[0]-current) > 1e-12 {
		t.Fatalf("first forecast step should equal current volatility %v, got %v", current, res.Forecast[0])
	}
	second := current*fallbackPersistence + fallbackLongRunVol*(1-fallbackPersistence)
	if math.Abs(res.Forecast[1]-second) > 1e-12 {
		t.Fatalf("second forecast step should apply one decay: want %v, got %v", second, res.Forecast[1])
	}
	first := math.Abs(res.Forecast[0] - fallbackLongRunVol)
	last := math.Abs(res.Forecast[59] - fallbackLongRunVol)
	if last > first+1e-12 {
		t.Fatalf("forecast should converge toward %v: first dist %v, last dist %v", fallbackLongRunVol, first, last)
	}
}

func TestRollingForecastMinimumLength(t *testing.T) {
	_, err := RollingForecast(garchReturns(MinGARCHObservations-1, 9), 5)
	if !errors.Is(err, quant.ErrInsufficientData) {
		t.Fatalf("expected insufficient data error, got %v", err)
	}
}

func TestRollingForecastWarmup(t *testing.T) {
	res, err := RollingForecast(garchReturns(100, 3), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < fallbackWindow-1; i++ {
		if res.InSample[i] != 0 {
			t.Fatalf("expected zero sentinel during warmup at %d, got %v", i, res.InSample[i])
		}
	}
	if res.InSample[fallbackWindow-1] <= 0 {
		t.Fatalf("expected positive volatility after warmup, got %v", res.InSample[fallbackWindow-1])
	}
}
