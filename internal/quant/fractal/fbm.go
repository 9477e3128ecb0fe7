package fractal

import (
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/dsp/fourier"

	"QuantPulse/internal/domain/models"
	"QuantPulse/internal/quant"
)

// tradingDaysPerYear fixes the daily time grid of simulated paths.
const tradingDaysPerYear = 252

// FBMOptions configures a simulated geometric fractional Brownian motion
// price path. Volatility and Drift are annualized.
type FBMOptions struct {
	InitialPrice float64
	Hurst        float64
	Days         int
	Volatility   float64
	Drift        float64
}

// GenerateFBMPath simulates a price path of Days+1 strictly positive prices,
// starting at InitialPrice, driven by fractional Gaussian noise with the
// requested Hurst exponent. The path is deterministic for a fixed rng; when
// rng is nil a time-seeded generator is used. The core never touches a
// process-wide generator.
func GenerateFBMPath(opts FBMOptions, rng *rand.Rand) (models.SimulatedPath, error) {
	if opts.Hurst <= 0 || opts.Hurst >= 1 {
		return models.SimulatedPath{}, quant.NewInvalidParameter("hurst", "must be strictly between 0 and 1")
	}
	if opts.InitialPrice <= 0 {
		return models.SimulatedPath{}, quant.NewInvalidParameter("initial_price", "must be positive")
	}
	if opts.Days <= 0 {
		return models.SimulatedPath{}, quant.NewInvalidParameter("days", "must be positive")
	}
	if opts.Volatility < 0 {
		return models.SimulatedPath{}, quant.NewInvalidParameter("volatility", "must be non-negative")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}

	dt := 1.0 / tradingDaysPerYear
	fgn := sampleFGN(opts.Days, opts.Hurst, rng)

	// Scale increments for the daily grid: variance of one step is dt^2H.
	scale := math.Pow(dt, opts.Hurst)
	driftTerm := (opts.Drift - 0.5*opts.Volatility*opts.Volatility) * dt
	volTerm := opts.Volatility * math.Sqrt(dt)

	prices := make([]float64, opts.Days+1)
	prices[0] = opts.InitialPrice
	logPrice := math.Log(opts.InitialPrice)
	for i, g := range fgn {
		logPrice += driftTerm + volTerm*scale*g
		prices[i+1] = math.Exp(logPrice)
	}

	return models.SimulatedPath{
		Prices:  prices,
		Hurst:   opts.Hurst,
		Days:    opts.Days,
		Created: time.Now().UTC(),
	}, nil
}

// sampleFGN draws n unit-variance fractional Gaussian noise increments.
// Davies-Harte circulant embedding is used when admissible; for Hurst values
// where the circulant eigenvalues go negative it falls back to the exact but
// O(n^2) Hosking recursion.
func sampleFGN(n int, hurst float64, rng *rand.Rand) []float64 {
	if n == 1 {
		return []float64{rng.NormFloat64()}
	}
	if fgn, ok := daviesHarte(n, hurst, rng); ok {
		return fgn
	}
	return hosking(n, hurst, rng)
}

// fgnAutocov is the autocovariance of unit-variance fGn at lag k.
func fgnAutocov(k int, hurst float64) float64 {
	fk := math.Abs(float64(k))
	h2 := 2 * hurst
	return 0.5 * (math.Pow(fk+1, h2) - 2*math.Pow(fk, h2) + math.Pow(math.Abs(fk-1), h2))
}

func daviesHarte(n int, hurst float64, rng *rand.Rand) ([]float64, bool) {
	m := 2 * n

	// First row of the circulant covariance embedding.
	row := make([]complex128, m)
	for k := 0; k <= n; k++ {
		row[k] = complex(fgnAutocov(k, hurst), 0)
	}
	for k := 1; k < n; k++ {
		row[m-k] = row[k]
	}

	fft := fourier.NewCmplxFFT(m)
	eig := fft.Coefficients(nil, row)
	lambda := make([]float64, m)
	for i, c := range eig {
		lambda[i] = real(c)
		if lambda[i] < 0 {
			// Embedding not non-negative definite for this Hurst/n.
			return nil, false
		}
	}

	w := make([]complex128, m)
	w[0] = complex(math.Sqrt(lambda[0]/float64(m))*rng.NormFloat64(), 0)
	w[n] = complex(math.Sqrt(lambda[n]/float64(m))*rng.NormFloat64(), 0)
	for k := 1; k < n; k++ {
		s := math.Sqrt(lambda[k] / float64(2*m))
		w[k] = complex(s*rng.NormFloat64(), s*rng.NormFloat64())
		w[m-k] = cmplxConj(w[k])
	}

	z := fft.Coefficients(nil, w)
	fgn := make([]float64, n)
	for i := 0; i < n; i++ {
		fgn[i] = real(z[i])
	}
	return fgn, true
}

func cmplxConj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}

// hosking generates fGn by the conditional recursion of Hosking (1984).
func hosking(n int, hurst float64, rng *rand.Rand) []float64 {
	gamma := make([]float64, n)
	for k := range gamma {
		gamma[k] = fgnAutocov(k, hurst)
	}

	fgn := make([]float64, n)
	phi := make([]float64, n)
	psi := make([]float64, n)

	fgn[0] = rng.NormFloat64()
	v := 1.0
	for i := 1; i < n; i++ {
		phi[i-1] = gamma[i]
		for j := 0; j < i-1; j++ {
			psi[j] = phi[j]
			phi[i-1] -= psi[j] * gamma[i-j-1]
		}
		phi[i-1] /= v
		for j := 0; j < i-1; j++ {
			phi[j] = psi[j] - phi[i-1]*psi[i-j-2]
		}
		v *= 1 - phi[i-1]*phi[i-1]

		pred := 0.0
		for j := 0; j < i; j++ {
			pred += phi[j] * fgn[i-j-1]
		}
		fgn[i] = pred + math.Sqrt(v)*rng.NormFloat64()
	}
	return fgn
}
