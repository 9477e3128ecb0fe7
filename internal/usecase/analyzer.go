package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/rand"

	"QuantPulse/internal/domain/models"
	domrepo "QuantPulse/internal/domain/repository"
	domsvc "QuantPulse/internal/domain/service"
	"QuantPulse/internal/middleware"
	"QuantPulse/internal/quant/fractal"
	"QuantPulse/internal/quant/risk"
	"QuantPulse/internal/services/features"
	pkgcache "QuantPulse/pkg/cache"
	"QuantPulse/pkg/config"
	applogger "QuantPulse/pkg/logger"
)

// Analyzer orchestrates the statistical engines: it resolves input series
// (inline or via the price store), schedules heavy fits on the compute pool,
// and caches symbol-keyed results.
type Analyzer struct {
	store   domrepo.PriceStore
	regime  domsvc.RegimeDetector
	vol     domsvc.VolatilityForecaster
	pool    *middleware.ComputePool
	cache   pkgcache.Service
	metrics domrepo.Metrics
	cfg     *config.Config
	l       *applogger.Logger
}

func NewAnalyzer(
	store domrepo.PriceStore,
	regime domsvc.RegimeDetector,
	vol domsvc.VolatilityForecaster,
	pool *middleware.ComputePool,
	metrics domrepo.Metrics,
	cfg *config.Config,
) *Analyzer {
	return &Analyzer{store: store, regime: regime, vol: vol, pool: pool, metrics: metrics, cfg: cfg}
}

// SetCache injects a result cache.
func (a *Analyzer) SetCache(c pkgcache.Service) { a.cache = c }

// SetLogger injects a structured logger.
func (a *Analyzer) SetLogger(l *applogger.Logger) { a.l = l }

// Hurst estimates the rescaled-range Hurst exponent for a price series.
func (a *Analyzer) Hurst(ctx context.Context, req models.HurstRequest) (models.HurstResult, error) {
	var out models.HurstResult
	key := pkgcache.GenerateKeyWithParams("hurst", req.Symbol, req.TF, req.N)
	if a.cacheGet(ctx, "hurst", req.Symbol, len(req.Series) > 0, key, &out) {
		return out, nil
	}
	prices, err := a.resolvePrices(ctx, req.Symbol, req.Series, req.N, req.TF)
	if err != nil {
		return out, err
	}
	a.metrics.RecordSeriesLength("hurst", len(prices))
	err = a.pool.Run(ctx, "hurst", func() error {
		var ferr error
		out, ferr = fractal.EstimateHurst(prices, fractal.HurstOptions{
			MinWindow:       req.MinWindow,
			MaxWindow:       req.MaxWindow,
			MeanRevertBelow: a.cfg.Analytics.Hurst.MeanRevertBelow,
			TrendingAbove:   a.cfg.Analytics.Hurst.TrendingAbove,
		})
		return ferr
	})
	if err != nil {
		a.metrics.RecordError("hurst")
		return models.HurstResult{}, err
	}
	a.metrics.RecordAnalysis("hurst", out.Interpretation)
	a.cacheSet(ctx, req.Symbol, len(req.Series) > 0, key, out, a.cfg.Cache.TTL.Fractal)
	return out, nil
}

// DFA estimates the detrended fluctuation scaling exponent.
func (a *Analyzer) DFA(ctx context.Context, req models.DFARequest) (models.DFAResult, error) {
	var out models.DFAResult
	key := pkgcache.GenerateKeyWithParams("dfa", req.Symbol, req.TF, req.N, req.Order)
	if a.cacheGet(ctx, "dfa", req.Symbol, len(req.Series) > 0, key, &out) {
		return out, nil
	}
	prices, err := a.resolvePrices(ctx, req.Symbol, req.Series, req.N, req.TF)
	if err != nil {
		return out, err
	}
	a.metrics.RecordSeriesLength("dfa", len(prices))
	err = a.pool.Run(ctx, "dfa", func() error {
		var ferr error
		out, ferr = fractal.EstimateDFA(prices, fractal.DFAOptions{
			Order:      req.Order,
			MinBoxSize: req.MinBoxSize,
			MaxBoxSize: req.MaxBoxSize,
		})
		return ferr
	})
	if err != nil {
		a.metrics.RecordError("dfa")
		return models.DFAResult{}, err
	}
	a.metrics.RecordAnalysis("dfa", "dfa")
	a.cacheSet(ctx, req.Symbol, len(req.Series) > 0, key, out, a.cfg.Cache.TTL.Fractal)
	return out, nil
}

// Spectrum computes the multifractal singularity spectrum.
func (a *Analyzer) Spectrum(ctx context.Context, req models.SpectrumRequest) (models.MultifractalSpectrum, error) {
	var out models.MultifractalSpectrum
	key := pkgcache.GenerateKeyWithParams("spectrum", req.Symbol, req.TF, req.N)
	if a.cacheGet(ctx, "spectrum", req.Symbol, len(req.Series) > 0, key, &out) {
		return out, nil
	}
	prices, err := a.resolvePrices(ctx, req.Symbol, req.Series, req.N, req.TF)
	if err != nil {
		return out, err
	}
	a.metrics.RecordSeriesLength("spectrum", len(prices))
	err = a.pool.Run(ctx, "spectrum", func() error {
		var ferr error
		out, ferr = fractal.Spectrum(prices, fractal.SpectrumOptions{
			QMin:  req.QMin,
			QMax:  req.QMax,
			QStep: req.QStep,
		})
		return ferr
	})
	if err != nil {
		a.metrics.RecordError("spectrum")
		return models.MultifractalSpectrum{}, err
	}
	a.metrics.RecordAnalysis("spectrum", "mfdfa")
	a.cacheSet(ctx, req.Symbol, len(req.Series) > 0, key, out, a.cfg.Cache.TTL.Fractal)
	return out, nil
}

// CVaR computes historical VaR/CVaR over a return series.
func (a *Analyzer) CVaR(ctx context.Context, req models.CVaRRequest) (models.RiskResult, error) {
	var out models.RiskResult
	key := pkgcache.GenerateKeyWithParams("cvar", req.Symbol, req.TF, req.N, req.Confidence)
	if a.cacheGet(ctx, "cvar", req.Symbol, len(req.Returns) > 0, key, &out) {
		return out, nil
	}
	returns, err := a.resolveReturns(ctx, req.Symbol, req.Returns, req.N, req.TF)
	if err != nil {
		return out, err
	}
	a.metrics.RecordSeriesLength("cvar", len(returns))
	// Quantile over a sorted copy is cheap; no pool slot needed.
	out, err = risk.CVaR(returns, req.Confidence)
	if err != nil {
		a.metrics.RecordError("cvar")
		return models.RiskResult{}, err
	}
	a.metrics.RecordAnalysis("cvar", "historical")
	a.cacheSet(ctx, req.Symbol, len(req.Returns) > 0, key, out, a.cfg.Cache.TTL.Risk)
	return out, nil
}

// Volatility fits the configured volatility engine and forecasts ahead.
func (a *Analyzer) Volatility(ctx context.Context, req models.GARCHRequest) (models.VolatilityForecast, error) {
	var out models.VolatilityForecast
	key := pkgcache.GenerateKeyWithParams("vol", req.Symbol, req.TF, req.N, req.Horizon)
	if a.cacheGet(ctx, "volatility", req.Symbol, len(req.Returns) > 0, key, &out) {
		return out, nil
	}
	returns, err := a.resolveReturns(ctx, req.Symbol, req.Returns, req.N, req.TF)
	if err != nil {
		return out, err
	}
	a.metrics.RecordSeriesLength("volatility", len(returns))
	err = a.pool.Run(ctx, "volatility", func() error {
		var ferr error
		out, ferr = a.vol.Forecast(ctx, returns, req.Horizon)
		return ferr
	})
	if err != nil {
		a.metrics.RecordError("volatility")
		return models.VolatilityForecast{}, err
	}
	a.metrics.RecordAnalysis("volatility", out.Method)
	a.cacheSet(ctx, req.Symbol, len(req.Returns) > 0, key, out, a.cfg.Cache.TTL.Volatility)
	return out, nil
}

// Regime labels a return series with market regimes.
func (a *Analyzer) Regime(ctx context.Context, req models.RegimeRequest) (models.RegimeResult, error) {
	var out models.RegimeResult
	key := pkgcache.GenerateKeyWithParams("regime", req.Symbol, req.TF, req.N, req.NRegimes)
	if a.cacheGet(ctx, "regime", req.Symbol, len(req.Returns) > 0, key, &out) {
		return out, nil
	}
	returns, err := a.resolveReturns(ctx, req.Symbol, req.Returns, req.N, req.TF)
	if err != nil {
		return out, err
	}
	a.metrics.RecordSeriesLength("regime", len(returns))
	err = a.pool.Run(ctx, "regime", func() error {
		var ferr error
		out, ferr = a.regime.Detect(ctx, returns, req.NRegimes)
		return ferr
	})
	if err != nil {
		a.metrics.RecordError("regime")
		return models.RegimeResult{}, err
	}
	a.metrics.RecordAnalysis("regime", out.Method)
	a.cacheSet(ctx, req.Symbol, len(req.Returns) > 0, key, out, a.cfg.Cache.TTL.Regime)
	return out, nil
}

// Simulate generates a fractional Brownian motion price path. A zero seed
// draws one from the wall clock; the seed actually used is echoed in the
// result so any path can be reproduced.
func (a *Analyzer) Simulate(ctx context.Context, req models.SimulateRequest) (models.SimulatedPath, error) {
	seed := req.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))

	var out models.SimulatedPath
	err := a.pool.Run(ctx, "simulate", func() error {
		var ferr error
		out, ferr = fractal.GenerateFBMPath(fractal.FBMOptions{
			InitialPrice: req.InitialPrice,
			Hurst:        req.Hurst,
			Days:         req.Days,
			Volatility:   req.Volatility,
			Drift:        req.Drift,
		}, rng)
		return ferr
	})
	if err != nil {
		a.metrics.RecordError("simulate")
		return models.SimulatedPath{}, err
	}
	out.Seed = seed
	a.metrics.RecordAnalysis("simulate", "fbm")
	return out, nil
}

func (a *Analyzer) resolvePrices(ctx context.Context, symbol string, inline []float64, n int, tf string) ([]float64, error) {
	if len(inline) > 0 {
		return inline, nil
	}
	candles, err := a.fetchCandles(ctx, symbol, n, tf)
	if err != nil {
		return nil, err
	}
	return features.ClosePrices(candles), nil
}

func (a *Analyzer) resolveReturns(ctx context.Context, symbol string, inline []float64, n int, tf string) ([]float64, error) {
	if len(inline) > 0 {
		return inline, nil
	}
	// One extra candle so n closes yield n returns.
	candles, err := a.fetchCandles(ctx, symbol, n+1, tf)
	if err != nil {
		return nil, err
	}
	return features.ComputeLogReturns(candles), nil
}

func (a *Analyzer) fetchCandles(ctx context.Context, symbol string, n int, tf string) ([]models.Candle, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol or series required")
	}
	candles, err := a.store.GetLatestNCandles(ctx, symbol, n, domrepo.NormalizeTimeframe(tf))
	if err != nil {
		return nil, fmt.Errorf("load candles: %w", err)
	}
	return candles, nil
}

// cacheGet reads a symbol-keyed result; inline series bypass the cache.
func (a *Analyzer) cacheGet(ctx context.Context, op, symbol string, inline bool, key string, dest interface{}) bool {
	if a.cache == nil || symbol == "" || inline {
		return false
	}
	err := a.cache.Get(ctx, key, dest)
	if err == nil {
		a.metrics.RecordCacheHit(op)
		return true
	}
	if !errors.Is(err, pkgcache.ErrCacheMiss) && a.l != nil {
		a.l.Warn("result cache get error", applogger.String("key", key), applogger.Error(err))
	}
	return false
}

func (a *Analyzer) cacheSet(ctx context.Context, symbol string, inline bool, key string, value interface{}, ttl time.Duration) {
	if a.cache == nil || symbol == "" || inline {
		return
	}
	if err := a.cache.Set(ctx, key, value, ttl); err != nil && a.l != nil {
		a.l.Warn("result cache set error", applogger.String("key", key), applogger.Error(err))
	}
}
