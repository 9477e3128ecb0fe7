package analytics

import (
	"context"
	"errors"

	"QuantPulse/internal/domain/models"
	domsvc "QuantPulse/internal/domain/service"
	"QuantPulse/internal/quant"
	"QuantPulse/internal/quant/risk"
	applogger "QuantPulse/pkg/logger"
)

// GARCHForecaster is the primary volatility engine. The fitter itself retries
// with normal innovations when the Student-t likelihood does not converge;
// when allowFallback is set a residual fit failure degrades to the rolling
// heuristic instead of surfacing.
type GARCHForecaster struct {
	l             *applogger.Logger
	allowFallback bool
}

func NewGARCHForecaster(l *applogger.Logger, allowFallback bool) *GARCHForecaster {
	return &GARCHForecaster{l: l, allowFallback: allowFallback}
}

func (f *GARCHForecaster) Forecast(ctx context.Context, returns []float64, horizon int) (models.VolatilityForecast, error) {
	res, err := risk.FitGARCH(returns, horizon)
	if err == nil {
		return res, nil
	}
	if !f.allowFallback || !errors.Is(err, quant.ErrModelFit) {
		return models.VolatilityForecast{}, err
	}
	if f.l != nil {
		f.l.Warn("garch fit failed, using rolling volatility",
			applogger.Int("horizon", horizon),
			applogger.Error(err),
		)
	}
	return risk.RollingForecast(returns, horizon)
}

// RollingVolForecaster always uses the rolling-window heuristic. It is
// selected at composition time for deployments that opt out of GARCH.
type RollingVolForecaster struct{}

func NewRollingVolForecaster() *RollingVolForecaster { return &RollingVolForecaster{} }

func (f *RollingVolForecaster) Forecast(ctx context.Context, returns []float64, horizon int) (models.VolatilityForecast, error) {
	return risk.RollingForecast(returns, horizon)
}

var (
	_ domsvc.VolatilityForecaster = (*GARCHForecaster)(nil)
	_ domsvc.VolatilityForecaster = (*RollingVolForecaster)(nil)
)
