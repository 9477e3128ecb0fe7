package analytics

import (
	"context"
	"errors"

	"QuantPulse/internal/domain/models"
	domsvc "QuantPulse/internal/domain/service"
	"QuantPulse/internal/quant"
	"QuantPulse/internal/quant/regime"
	applogger "QuantPulse/pkg/logger"
)

// HMMRegimeDetector is the primary regime engine. When allowFallback is set
// it degrades to the volatility-bucket heuristic after a fit failure;
// validation and insufficient-data errors always surface unchanged.
type HMMRegimeDetector struct {
	l             *applogger.Logger
	allowFallback bool
}

func NewHMMRegimeDetector(l *applogger.Logger, allowFallback bool) *HMMRegimeDetector {
	return &HMMRegimeDetector{l: l, allowFallback: allowFallback}
}

func (d *HMMRegimeDetector) Detect(ctx context.Context, returns []float64, nRegimes int) (models.RegimeResult, error) {
	res, err := regime.DetectHMM(returns, nRegimes)
	if err == nil {
		return res, nil
	}
	if !d.allowFallback || !errors.Is(err, quant.ErrModelFit) {
		return models.RegimeResult{}, err
	}
	if d.l != nil {
		d.l.Warn("hmm fit failed, using volatility buckets",
			applogger.Int("n_regimes", nRegimes),
			applogger.Error(err),
		)
	}
	return regime.DetectVolatilityBuckets(returns)
}

// BucketRegimeDetector always uses the heuristic classifier. It is selected
// at composition time for deployments that opt out of the HMM.
type BucketRegimeDetector struct {
	l *applogger.Logger
}

func NewBucketRegimeDetector(l *applogger.Logger) *BucketRegimeDetector {
	return &BucketRegimeDetector{l: l}
}

func (d *BucketRegimeDetector) Detect(ctx context.Context, returns []float64, nRegimes int) (models.RegimeResult, error) {
	// The heuristic always yields three buckets regardless of nRegimes.
	if nRegimes != 3 && d.l != nil {
		d.l.Debug("bucket detector ignores requested regime count", applogger.Int("n_regimes", nRegimes))
	}
	return regime.DetectVolatilityBuckets(returns)
}

var (
	_ domsvc.RegimeDetector = (*HMMRegimeDetector)(nil)
	_ domsvc.RegimeDetector = (*BucketRegimeDetector)(nil)
)
