package usecase

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"QuantPulse/internal/domain/models"
	domrepo "QuantPulse/internal/domain/repository"
	"QuantPulse/internal/middleware"
	"QuantPulse/internal/services/analytics"
	pkgcache "QuantPulse/pkg/cache"
	"QuantPulse/pkg/config"
)

type fakePriceStore struct {
	calls int
	lastN int
}

func (f *fakePriceStore) GetCandles(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) ([]models.Candle, error) {
	return f.candles(symbol, 100), nil
}

func (f *fakePriceStore) GetLatestNCandles(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	f.calls++
	f.lastN = n
	return f.candles(symbol, n), nil
}

func (f *fakePriceStore) candles(symbol string, n int) []models.Candle {
	rng := rand.New(rand.NewSource(7))
	out := make([]models.Candle, n)
	price := 100.0
	bucket := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		price *= math.Exp(0.01 * rng.NormFloat64())
		out[i] = models.Candle{Bucket: bucket, Symbol: symbol, Close: price}
		bucket = bucket.Add(24 * time.Hour)
	}
	return out
}

type metricsStub struct{}

func (metricsStub) RecordAnalysis(op, method string)         {}
func (metricsStub) RecordCacheHit(op string)                 {}
func (metricsStub) RecordError(kind string)                  {}
func (metricsStub) RecordLatency(op string, seconds float64) {}
func (metricsStub) RecordSeriesLength(op string, n int)      {}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Analytics.Hurst.MeanRevertBelow = 0.45
	cfg.Analytics.Hurst.TrendingAbove = 0.55
	cfg.Cache.TTL.Fractal = 5 * time.Minute
	cfg.Cache.TTL.Risk = time.Minute
	cfg.Cache.TTL.Volatility = time.Minute
	cfg.Cache.TTL.Regime = 5 * time.Minute
	return cfg
}

func testAnalyzer(store *fakePriceStore) *Analyzer {
	pool := middleware.NewComputePool(metricsStub{}, middleware.WithWorkers(2))
	regime := analytics.NewBucketRegimeDetector(nil)
	vol := analytics.NewRollingVolForecaster()
	return NewAnalyzer(store, regime, vol, pool, metricsStub{}, testConfig())
}

func inlineSeries(n int) []float64 {
	rng := rand.New(rand.NewSource(11))
	out := make([]float64, n)
	price := 100.0
	for i := range out {
		price *= math.Exp(0.01 * rng.NormFloat64())
		out[i] = price
	}
	return out
}

func inlineReturns(n int) []float64 {
	rng := rand.New(rand.NewSource(13))
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.01 * rng.NormFloat64()
	}
	return out
}

func TestAnalyzerHurstInline(t *testing.T) {
	a := testAnalyzer(&fakePriceStore{})
	res, err := a.Hurst(context.Background(), models.HurstRequest{Series: inlineSeries(300)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Hurst <= 0 || res.Hurst >= 1 {
		t.Fatalf("hurst out of range: %v", res.Hurst)
	}
	switch res.Interpretation {
	case "mean_reverting", "random_walk", "trending":
	default:
		t.Fatalf("unexpected interpretation %q", res.Interpretation)
	}
}

func TestAnalyzerHurstFromStore(t *testing.T) {
	store := &fakePriceStore{}
	a := testAnalyzer(store)
	_, err := a.Hurst(context.Background(), models.HurstRequest{Symbol: "AAPL", N: 300, TF: "1d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.calls != 1 || store.lastN != 300 {
		t.Fatalf("expected one fetch of 300 candles, got calls=%d n=%d", store.calls, store.lastN)
	}
}

func TestAnalyzerCVaRFetchesExtraCandle(t *testing.T) {
	store := &fakePriceStore{}
	a := testAnalyzer(store)
	res, err := a.CVaR(context.Background(), models.CVaRRequest{Symbol: "AAPL", N: 250, TF: "1d", Confidence: 0.95})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastN != 251 {
		t.Fatalf("expected 251 candles requested for 250 returns, got %d", store.lastN)
	}
	if res.Observations != 250 {
		t.Fatalf("expected 250 observations, got %d", res.Observations)
	}
}

func TestAnalyzerSymbolOrSeriesRequired(t *testing.T) {
	a := testAnalyzer(&fakePriceStore{})
	if _, err := a.Hurst(context.Background(), models.HurstRequest{N: 300}); err == nil {
		t.Fatalf("expected error without symbol or series")
	}
}

func TestAnalyzerCachesSymbolResults(t *testing.T) {
	store := &fakePriceStore{}
	a := testAnalyzer(store)
	a.SetCache(pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(64)))

	req := models.HurstRequest{Symbol: "AAPL", N: 300, TF: "1d"}
	first, err := a.Hurst(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := a.Hurst(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("expected cached second call, store hit %d times", store.calls)
	}
	if first.Hurst != second.Hurst {
		t.Fatalf("cached result differs: %v vs %v", first.Hurst, second.Hurst)
	}
}

func TestAnalyzerInlineSeriesBypassesCache(t *testing.T) {
	a := testAnalyzer(&fakePriceStore{})
	a.SetCache(pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(64)))

	req := models.HurstRequest{Symbol: "AAPL", Series: inlineSeries(300)}
	if _, err := a.Hurst(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req.Series = inlineSeries(300)
	req.Series[0] *= 2
	if _, err := a.Hurst(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAnalyzerVolatilityRolling(t *testing.T) {
	a := testAnalyzer(&fakePriceStore{})
	res, err := a.Volatility(context.Background(), models.GARCHRequest{Returns: inlineReturns(300), Horizon: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Method != models.MethodRollingVolatility {
		t.Fatalf("unexpected method %q", res.Method)
	}
	if len(res.Forecast) != 5 {
		t.Fatalf("expected 5 forecast entries, got %d", len(res.Forecast))
	}
}

func TestAnalyzerRegimeBuckets(t *testing.T) {
	a := testAnalyzer(&fakePriceStore{})
	res, err := a.Regime(context.Background(), models.RegimeRequest{Returns: inlineReturns(300), NRegimes: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Method != models.MethodVolatilityBuckets {
		t.Fatalf("unexpected method %q", res.Method)
	}
	if res.NRegimes != 3 {
		t.Fatalf("expected 3 regimes, got %d", res.NRegimes)
	}
}

func TestAnalyzerSimulateDeterministicSeed(t *testing.T) {
	a := testAnalyzer(&fakePriceStore{})
	req := models.SimulateRequest{InitialPrice: 100, Hurst: 0.5, Days: 60, Volatility: 0.2, Drift: 0.05, Seed: 42}

	first, err := a.Simulate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := a.Simulate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Seed != 42 {
		t.Fatalf("seed not echoed: %d", first.Seed)
	}
	if len(first.Prices) != 61 {
		t.Fatalf("expected 61 prices, got %d", len(first.Prices))
	}
	for i := range first.Prices {
		if first.Prices[i] != second.Prices[i] {
			t.Fatalf("same seed produced different paths at %d", i)
		}
	}
}
