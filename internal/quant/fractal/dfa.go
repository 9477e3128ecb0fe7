package fractal

import (
	"math"

	"QuantPulse/internal/domain/models"
	"QuantPulse/internal/quant"
	"QuantPulse/internal/quant/series"
)

const (
	// MinDFAObservations is the minimum cleaned series length for DFA.
	MinDFAObservations = 50

	dfaBoxSamples    = 25
	minValidBoxSizes = 5
)

// DFAOptions tunes detrended fluctuation analysis. Zero values select the
// defaults: linear detrending, MinBoxSize 10, MaxBoxSize len/4.
type DFAOptions struct {
	Order      int
	MinBoxSize int
	MaxBoxSize int
}

func (o *DFAOptions) defaults(n int) {
	if o.Order <= 0 {
		o.Order = 1
	}
	if o.MinBoxSize <= 0 {
		o.MinBoxSize = 10
	}
	if o.MaxBoxSize <= 0 {
		o.MaxBoxSize = n / 4
	}
}

// EstimateDFA computes the DFA scaling exponent of xs. Unlike the Hurst
// estimate the slope is reported unclipped; callers interpret it directly.
func EstimateDFA(xs []float64, opts DFAOptions) (models.DFAResult, error) {
	s := series.Clean(xs)
	if len(s) < MinDFAObservations {
		return models.DFAResult{}, quant.NewInsufficientData("dfa", MinDFAObservations, len(s))
	}
	opts.defaults(len(s))
	if opts.MinBoxSize <= opts.Order+1 {
		return models.DFAResult{}, quant.NewInvalidParameter("min_box_size", "too small for detrending order")
	}

	n := len(s)
	mean := series.Mean(s)
	profile := make([]float64, n)
	cum := 0.0
	for i, v := range s {
		cum += v - mean
		profile[i] = cum
	}

	boxSizes := series.LogSpacedSizes(opts.MinBoxSize, opts.MaxBoxSize, dfaBoxSamples)

	logSizes := make([]float64, 0, len(boxSizes))
	logFlucts := make([]float64, 0, len(boxSizes))

	for _, size := range boxSizes {
		sum := 0.0
		count := 0
		for start := 0; start+size <= n; start += size {
			f, err := boxFluctuation(profile[start:start+size], opts.Order)
			if err != nil {
				continue
			}
			sum += f
			count++
		}
		if count == 0 {
			continue
		}
		logSizes = append(logSizes, math.Log10(float64(size)))
		logFlucts = append(logFlucts, math.Log10(sum/float64(count)))
	}

	if len(logFlucts) < minValidBoxSizes {
		return models.DFAResult{}, quant.NewInsufficientData("dfa box sizes", minValidBoxSizes, len(logFlucts))
	}

	return models.DFAResult{
		Alpha:        series.Slope(logSizes, logFlucts),
		Order:        opts.Order,
		BoxSizes:     len(logFlucts),
		Observations: n,
	}, nil
}

// boxFluctuation fits a polynomial trend to one box of the profile and
// returns the RMS of the residual.
func boxFluctuation(box []float64, order int) (float64, error) {
	coeffs, err := series.PolyFit(box, order)
	if err != nil {
		return 0, err
	}
	sumSq := 0.0
	for i, v := range box {
		d := v - series.PolyVal(coeffs, float64(i))
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(box))), nil
}
