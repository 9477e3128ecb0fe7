package di

import (
	"context"
	"fmt"
	"time"

	"QuantPulse/internal/domain/repository"
	domsvc "QuantPulse/internal/domain/service"
	"QuantPulse/internal/handler/api"
	mid "QuantPulse/internal/middleware"
	internalrepo "QuantPulse/internal/repository"
	analytics "QuantPulse/internal/services/analytics"
	"QuantPulse/internal/usecase"
	pkgcache "QuantPulse/pkg/cache"
	pkgch "QuantPulse/pkg/clickhouse"
	"QuantPulse/pkg/config"
	xhttp "QuantPulse/pkg/http"
	applogger "QuantPulse/pkg/logger"
	"QuantPulse/pkg/metrics"
	"QuantPulse/pkg/server"
)

// ProvideLogger creates the application logger. Development gets console
// output at debug level, everything else structured JSON.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{Level: "info", Format: "json", Output: "stdout"}
	if cfg.Environment == "development" {
		lc.Level = "debug"
		lc.Format = "console"
	}
	l, err := applogger.New(lc)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const candleDDL = "CREATE TABLE IF NOT EXISTS quantpulse.candles_%s (" +
		"symbol String, bucket DateTime, open Float64, high Float64, low Float64, close Float64, vol Float64" +
		") ENGINE=MergeTree ORDER BY (symbol, bucket)"

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS quantpulse",
		fmt.Sprintf(candleDDL, "1m"),
		fmt.Sprintf(candleDDL, "1h"),
		fmt.Sprintf(candleDDL, "1d"),
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePriceStore creates the ClickHouse-backed candle repository.
func ProvidePriceStore(chClient *pkgch.Client, l *applogger.Logger) repository.PriceStore {
	store := internalrepo.NewCHPriceStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideRegimeDetector selects the regime engine from config.
func ProvideRegimeDetector(cfg *config.Config, l *applogger.Logger) domsvc.RegimeDetector {
	if cfg.Analytics.Regime.Engine == "buckets" {
		return analytics.NewBucketRegimeDetector(l)
	}
	return analytics.NewHMMRegimeDetector(l, cfg.Analytics.Regime.AllowFallback)
}

// ProvideVolatilityForecaster selects the volatility engine from config.
func ProvideVolatilityForecaster(cfg *config.Config, l *applogger.Logger) domsvc.VolatilityForecaster {
	if cfg.Analytics.Volatility.Engine == "rolling" {
		return analytics.NewRollingVolForecaster()
	}
	return analytics.NewGARCHForecaster(l, cfg.Analytics.Volatility.AllowFallback)
}

// ProvideComputePool creates the bounded pool for CPU-heavy fits.
func ProvideComputePool(m repository.Metrics, cfg *config.Config) *mid.ComputePool {
	return mid.NewComputePool(m,
		mid.WithWorkers(cfg.Analytics.Workers),
		mid.WithAcquireWait(cfg.Analytics.QueueWait),
	)
}

// ProvideCache creates the result cache: in-process by default, layered over
// Redis when configured.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(cfg.Cache.MemorySize)), nil
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
		pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc, pkgcache.WithLayeredMemorySize(cfg.Cache.MemorySize)), nil
}

// ProvideAnalyzer creates the analysis use case.
func ProvideAnalyzer(
	store repository.PriceStore,
	regime domsvc.RegimeDetector,
	vol domsvc.VolatilityForecaster,
	pool *mid.ComputePool,
	m repository.Metrics,
	cache pkgcache.Service,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.Analyzer {
	a := usecase.NewAnalyzer(store, regime, vol, pool, m, cfg)
	a.SetCache(cache)
	a.SetLogger(l)
	return a
}

// ProvideCandlesUseCase creates the candle query use case.
func ProvideCandlesUseCase(store repository.PriceStore) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store)
}

// ProvideHTTPHandler creates the Echo handler for all API routes.
func ProvideHTTPHandler(l *applogger.Logger, analyzer *usecase.Analyzer, candles *usecase.CandlesUseCase) xhttp.Handler {
	return api.NewAnalysisHandler(l, analyzer, candles)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	chClient *pkgch.Client,
	cache pkgcache.Service,
	handler xhttp.Handler,
	l *applogger.Logger,
) *server.App {
	return server.New(cfg, chClient, cache, handler, l)
}
