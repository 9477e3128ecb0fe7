// Package risk implements tail-risk measures and volatility models over
// return series.
package risk

import (
	"math"

	"QuantPulse/internal/domain/models"
	"QuantPulse/internal/quant"
	"QuantPulse/internal/quant/series"
)

// CVaR computes historical Value at Risk and Conditional Value at Risk at the
// given confidence level. Both are reported as positive loss magnitudes: a
// VaR of 0.03 means a 3% loss. Confidence must lie strictly in (0, 1).
// An empty series yields NaN measures rather than an error.
func CVaR(returns []float64, confidence float64) (models.RiskResult, error) {
	if confidence <= 0 || confidence >= 1 {
		return models.RiskResult{}, quant.NewInvalidParameter("confidence", "must be strictly between 0 and 1")
	}
	xs := series.Clean(returns)
	if len(xs) == 0 {
		nan := math.NaN()
		return models.RiskResult{
			VaR:        nan,
			CVaR:       nan,
			Confidence: confidence,
			MeanReturn: nan,
			Volatility: nan,
		}, nil
	}

	threshold := series.Quantile(1-confidence, xs)

	var tailSum float64
	var tailN int
	for _, r := range xs {
		if r <= threshold {
			tailSum += r
			tailN++
		}
	}
	cvar := -threshold
	if tailN > 0 {
		cvar = -(tailSum / float64(tailN))
	}

	return models.RiskResult{
		VaR:          -threshold,
		CVaR:         cvar,
		Confidence:   confidence,
		MeanReturn:   series.Mean(xs),
		Volatility:   series.Std(xs),
		Observations: len(xs),
	}, nil
}

// AnnualizedVolatility scales a per-period standard deviation to a yearly
// figure assuming periodsPerYear independent periods.
func AnnualizedVolatility(std float64, periodsPerYear float64) float64 {
	return std * math.Sqrt(periodsPerYear)
}
