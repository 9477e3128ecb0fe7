package repository

import (
	"context"
	"time"

	"QuantPulse/internal/domain/models"
)

// Timeframe represents candle resolution buckets.
type Timeframe string

const (
	TF1m Timeframe = "1m"
	TF1h Timeframe = "1h"
	TF1d Timeframe = "1d"
)

// PriceStore provides read-only access to historical candles for analytics.
type PriceStore interface {
	GetCandles(ctx context.Context, symbol string, from, to time.Time, tf Timeframe) ([]models.Candle, error)
	GetLatestNCandles(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Candle, error)
}

// Metrics records operational measurements for analysis runs.
type Metrics interface {
	RecordAnalysis(op, method string)
	RecordCacheHit(op string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordSeriesLength(op string, n int)
}
