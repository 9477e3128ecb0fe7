package fractal

import (
	"math"

	"QuantPulse/internal/domain/models"
	"QuantPulse/internal/quant"
	"QuantPulse/internal/quant/series"
)

const (
	// MinSpectrumObservations is the minimum cleaned series length for a
	// multifractal spectrum.
	MinSpectrumObservations = 200

	spectrumBoxSamples = 15
	minBoxesPerSize    = 3
	minTauPoints       = 3

	// measureFloor keeps log of the measure defined on flat stretches.
	measureFloor = 1e-10
)

// SpectrumOptions tunes the moment grid. Zero values select the default
// grid q in [-5, 5] with step 0.25.
type SpectrumOptions struct {
	QMin  float64
	QMax  float64
	QStep float64
}

func (o *SpectrumOptions) defaults() {
	if o.QMin == 0 && o.QMax == 0 {
		o.QMin, o.QMax = -5, 5
	}
	if o.QStep <= 0 {
		o.QStep = 0.25
	}
}

// Spectrum computes the multifractal spectrum f(alpha) of xs via the
// partition-function method and a discrete Legendre transform. The measure is
// the absolute first difference of the cleaned series plus a small floor.
func Spectrum(xs []float64, opts SpectrumOptions) (models.MultifractalSpectrum, error) {
	s := series.Clean(xs)
	if len(s) < MinSpectrumObservations {
		return models.MultifractalSpectrum{}, quant.NewInsufficientData("multifractal", MinSpectrumObservations, len(s))
	}
	opts.defaults()
	if opts.QMin >= opts.QMax {
		return models.MultifractalSpectrum{}, quant.NewInvalidParameter("q_min", "must be below q_max")
	}

	diffs := series.Diff(s)
	measure := make([]float64, len(diffs))
	for i, d := range diffs {
		measure[i] = math.Abs(d) + measureFloor
	}
	n := len(measure)

	boxSizes := series.LogSpacedSizes(10, n/8, spectrumBoxSamples)

	qValid := make([]float64, 0, 64)
	tau := make([]float64, 0, 64)

	for q := opts.QMin; q <= opts.QMax+opts.QStep/2; q += opts.QStep {
		logSizes := make([]float64, 0, len(boxSizes))
		logZ := make([]float64, 0, len(boxSizes))
		for _, size := range boxSizes {
			z, ok := partitionFunction(measure, size, q)
			if !ok {
				continue
			}
			logSizes = append(logSizes, math.Log(float64(size)))
			logZ = append(logZ, math.Log(z))
		}
		if len(logSizes) < minTauPoints {
			continue
		}
		qValid = append(qValid, q)
		tau = append(tau, -series.Slope(logSizes, logZ))
	}

	if len(qValid) < minTauPoints {
		return models.MultifractalSpectrum{}, quant.NewInsufficientData("multifractal tau(q)", minTauPoints, len(qValid))
	}

	alpha := series.Gradient(tau, qValid)
	fAlpha := make([]float64, len(alpha))
	for i := range alpha {
		fAlpha[i] = qValid[i]*alpha[i] - tau[i]
	}

	lo, hi := alpha[0], alpha[0]
	for _, a := range alpha {
		lo = math.Min(lo, a)
		hi = math.Max(hi, a)
	}

	return models.MultifractalSpectrum{
		Alpha:        alpha,
		FAlpha:       fAlpha,
		QValues:      qValid,
		TauQ:         tau,
		Width:        hi - lo,
		Observations: len(s),
	}, nil
}

// partitionFunction computes Z(q) for one box size. ok is false when the
// partition is degenerate: fewer than minBoxesPerSize boxes fit, fewer than
// minBoxesPerSize boxes carry positive mass, or Z itself underflows.
func partitionFunction(measure []float64, size int, q float64) (float64, bool) {
	nBoxes := len(measure) / size
	if nBoxes < minBoxesPerSize {
		return 0, false
	}

	sums := make([]float64, 0, nBoxes)
	total := 0.0
	for i := 0; i < nBoxes; i++ {
		box := 0.0
		for _, v := range measure[i*size : (i+1)*size] {
			box += v
		}
		if box > 0 {
			sums = append(sums, box)
			total += box
		}
	}
	if len(sums) < minBoxesPerSize || total <= 0 {
		return 0, false
	}

	z := 0.0
	for _, box := range sums {
		z += math.Pow(box/total, q)
	}
	if z <= 0 || math.IsInf(z, 0) || math.IsNaN(z) {
		return 0, false
	}
	return z, true
}
