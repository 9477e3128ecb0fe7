package fractal

import (
	"math"

	"QuantPulse/internal/domain/models"
	"QuantPulse/internal/quant"
	"QuantPulse/internal/quant/series"
)

const (
	// MinHurstObservations is the minimum cleaned series length for a
	// reliable rescaled-range estimate.
	MinHurstObservations = 20

	hurstWindowSamples = 20
	minValidRSPairs    = 3

	hurstClipLo = 0.01
	hurstClipHi = 0.99
)

// HurstOptions tunes the rescaled-range estimator. Zero values select the
// defaults: MinWindow 10, MaxWindow len/2, and the 0.45/0.55 interpretation
// bands. The bands are policy constants, not theory; expose them through
// configuration rather than editing call sites.
type HurstOptions struct {
	MinWindow       int
	MaxWindow       int
	MeanRevertBelow float64 // H below this reads as mean-reverting
	TrendingAbove   float64 // H above this reads as trending
}

func (o *HurstOptions) defaults(n int) {
	if o.MinWindow <= 0 {
		o.MinWindow = 10
	}
	if o.MaxWindow <= 0 {
		o.MaxWindow = n / 2
	}
	if o.MeanRevertBelow <= 0 {
		o.MeanRevertBelow = 0.45
	}
	if o.TrendingAbove <= 0 {
		o.TrendingAbove = 0.55
	}
}

// EstimateHurst estimates the Hurst exponent of xs via rescaled-range (R/S)
// analysis. The input is cleaned of NaN/Inf first; the cleaned series must
// hold at least MinHurstObservations points.
func EstimateHurst(xs []float64, opts HurstOptions) (models.HurstResult, error) {
	s := series.Clean(xs)
	if len(s) < MinHurstObservations {
		return models.HurstResult{}, quant.NewInsufficientData("hurst", MinHurstObservations, len(s))
	}
	opts.defaults(len(s))
	if opts.MinWindow > opts.MaxWindow {
		return models.HurstResult{}, quant.NewInvalidParameter("min_window", "exceeds max window")
	}

	windows := series.LogSpacedSizes(opts.MinWindow, opts.MaxWindow, hurstWindowSamples)

	// log(window) and log(R/S) are appended together, only when a window
	// size yields at least one valid sub-window. Filtering one list without
	// the other misaligns the regression.
	logWindows := make([]float64, 0, len(windows))
	logRS := make([]float64, 0, len(windows))

	for _, w := range windows {
		if w < opts.MinWindow || w > len(s) {
			continue
		}
		sum := 0.0
		count := 0
		for start := 0; start+w <= len(s); start++ {
			rs, ok := rescaledRange(s[start : start+w])
			if ok {
				sum += rs
				count++
			}
		}
		if count == 0 {
			continue
		}
		logWindows = append(logWindows, math.Log10(float64(w)))
		logRS = append(logRS, math.Log10(sum/float64(count)))
	}

	if len(logRS) < minValidRSPairs {
		return models.HurstResult{}, quant.NewInsufficientData("hurst windows", minValidRSPairs, len(logRS))
	}

	h := series.Slope(logWindows, logRS)
	h = math.Min(hurstClipHi, math.Max(hurstClipLo, h))

	return models.HurstResult{
		Hurst:          h,
		Interpretation: interpretHurst(h, opts),
		Windows:        len(logRS),
		Observations:   len(s),
	}, nil
}

// rescaledRange computes R/S for one sub-window. ok is false when the
// standard deviation is zero (flat window), which contributes nothing.
func rescaledRange(sub []float64) (float64, bool) {
	sd := series.Std(sub)
	if sd <= 0 {
		return 0, false
	}
	mean := series.Mean(sub)
	cum := 0.0
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range sub {
		cum += v - mean
		if cum < lo {
			lo = cum
		}
		if cum > hi {
			hi = cum
		}
	}
	return (hi - lo) / sd, true
}

func interpretHurst(h float64, opts HurstOptions) string {
	switch {
	case h < opts.MeanRevertBelow:
		return "mean_reverting"
	case h > opts.TrendingAbove:
		return "trending"
	default:
		return "random_walk"
	}
}
