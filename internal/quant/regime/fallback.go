package regime

import (
	"math"

	"QuantPulse/internal/domain/models"
	"QuantPulse/internal/quant"
	"QuantPulse/internal/quant/series"
)

// MinFallbackObservations is the smallest return sample accepted by the
// volatility-bucket classifier. The rolling window needs enough observations
// past warmup for the percentile thresholds to mean anything.
const MinFallbackObservations = 60

const (
	fallbackVolWindow = 20
	bucketLow         = 0
	bucketMedium      = 1
	bucketHigh        = 2
)

// DetectVolatilityBuckets is the heuristic regime classifier used when the
// HMM path is unavailable. It buckets each observation into low, medium or
// high volatility by the 33rd/67th percentiles of a 20-period rolling
// standard deviation. Observations inside the rolling warmup default to the
// medium bucket. It always produces three regimes and no transition matrix,
// and is labeled as a heuristic in Method.
func DetectVolatilityBuckets(returns []float64) (models.RegimeResult, error) {
	xs := series.Clean(returns)
	if len(xs) < MinFallbackObservations {
		return models.RegimeResult{}, quant.NewInsufficientData("volatility_regimes", MinFallbackObservations, len(xs))
	}

	rolling := series.RollingStd(xs, fallbackVolWindow)
	valid := make([]float64, 0, len(rolling))
	for _, v := range rolling {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	lowCut := series.Quantile(0.33, valid)
	highCut := series.Quantile(0.67, valid)

	labels := make([]int, len(xs))
	for i, v := range rolling {
		switch {
		case math.IsNaN(v):
			labels[i] = bucketMedium
		case v < lowCut:
			labels[i] = bucketLow
		case v < highCut:
			labels[i] = bucketMedium
		default:
			labels[i] = bucketHigh
		}
	}

	names := []string{"low_volatility", "medium_volatility", "high_volatility"}
	stats := make(map[int]models.RegimeStats, 3)
	for k := 0; k < 3; k++ {
		members := make([]float64, 0, len(xs))
		for i, l := range labels {
			if l == k {
				members = append(members, xs[i])
			}
		}
		s := models.RegimeStats{
			Frequency: float64(len(members)) / float64(len(xs)),
			Name:      names[k],
		}
		if len(members) > 0 {
			s.MeanReturn = series.Mean(members)
			s.Volatility = populationStd(members)
		}
		stats[k] = s
	}

	return models.RegimeResult{
		Labels:        labels,
		CurrentRegime: labels[len(labels)-1],
		NRegimes:      3,
		Stats:         stats,
		Method:        models.MethodVolatilityBuckets,
	}, nil
}

func populationStd(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := series.Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}
