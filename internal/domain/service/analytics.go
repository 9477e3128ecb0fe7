package service

import (
	"context"

	"QuantPulse/internal/domain/models"
)

// RegimeDetector classifies a return series into market regimes. The Method
// field of the result identifies whether a statistical model or a heuristic
// produced the labels.
type RegimeDetector interface {
	Detect(ctx context.Context, returns []float64, nRegimes int) (models.RegimeResult, error)
}

// VolatilityForecaster estimates conditional volatility over a return series
// and projects it horizon periods ahead.
type VolatilityForecaster interface {
	Forecast(ctx context.Context, returns []float64, horizon int) (models.VolatilityForecast, error)
}
