// Package regime classifies return series into hidden market regimes,
// either with a Gaussian hidden Markov model or with a heuristic
// volatility-bucket fallback.
package regime

import (
	"fmt"
	"math"

	"QuantPulse/internal/domain/models"
	"QuantPulse/internal/quant"
	"QuantPulse/internal/quant/series"
)

// MinHMMObservations is the smallest return sample accepted by the HMM.
const MinHMMObservations = 50

const (
	maxEMIterations = 1000
	emTolerance     = 1e-2
	varianceFloor   = 1e-10
)

// DetectHMM fits a Gaussian hidden Markov model with nRegimes states to the
// 1-D return series and decodes the most likely state sequence by Viterbi.
// Per-regime statistics are computed from the decoded labels; the transition
// matrix and log-likelihood come from the fitted model.
func DetectHMM(returns []float64, nRegimes int) (models.RegimeResult, error) {
	if nRegimes < 2 {
		return models.RegimeResult{}, quant.NewInvalidParameter("n_regimes", "must be at least 2")
	}
	xs := series.Clean(returns)
	if len(xs) < MinHMMObservations {
		return models.RegimeResult{}, quant.NewInsufficientData("hmm_regimes", MinHMMObservations, len(xs))
	}
	if series.Std(xs) <= 0 {
		return models.RegimeResult{}, &quant.ModelFitError{Model: "gaussian_hmm", Err: fmt.Errorf("series has zero variance")}
	}

	m, err := fitGaussianHMM(xs, nRegimes)
	if err != nil {
		return models.RegimeResult{}, &quant.ModelFitError{Model: "gaussian_hmm", Err: err}
	}
	labels := m.viterbi(xs)

	stats := make(map[int]models.RegimeStats, nRegimes)
	for k := 0; k < nRegimes; k++ {
		members := make([]float64, 0, len(xs))
		for i, l := range labels {
			if l == k {
				members = append(members, xs[i])
			}
		}
		s := models.RegimeStats{
			Frequency: float64(len(members)) / float64(len(xs)),
			Name:      fmt.Sprintf("regime_%d", k),
		}
		if len(members) > 0 {
			s.MeanReturn = series.Mean(members)
			s.Volatility = series.Std(members)
		}
		stats[k] = s
	}

	return models.RegimeResult{
		Labels:           labels,
		CurrentRegime:    labels[len(labels)-1],
		NRegimes:         nRegimes,
		Stats:            stats,
		TransitionMatrix: m.transition,
		LogLik:           m.logLik,
		Method:           models.MethodGaussianHMM,
	}, nil
}

// gaussianHMM holds the parameters of a fitted model. States emit univariate
// Gaussians.
type gaussianHMM struct {
	start      []float64
	transition [][]float64
	means      []float64
	variances  []float64
	logLik     float64
}

// fitGaussianHMM runs Baum-Welch with per-step scaling until the
// log-likelihood improvement drops below emTolerance or the iteration cap is
// hit. Means are initialized at evenly spaced quantiles of the data so the
// fit is deterministic.
func fitGaussianHMM(xs []float64, nStates int) (*gaussianHMM, error) {
	n := len(xs)
	m := &gaussianHMM{
		start:      make([]float64, nStates),
		transition: make([][]float64, nStates),
		means:      make([]float64, nStates),
		variances:  make([]float64, nStates),
	}
	sd := series.Std(xs)
	for k := 0; k < nStates; k++ {
		m.start[k] = 1 / float64(nStates)
		m.transition[k] = make([]float64, nStates)
		for j := 0; j < nStates; j++ {
			m.transition[k][j] = 1 / float64(nStates)
		}
		m.means[k] = series.Quantile((float64(k)+0.5)/float64(nStates), xs)
		m.variances[k] = sd * sd
	}

	alpha := newMatrix(n, nStates)
	beta := newMatrix(n, nStates)
	gamma := newMatrix(n, nStates)
	emit := newMatrix(n, nStates)
	scale := make([]float64, n)

	prevLogLik := math.Inf(-1)
	for iter := 0; iter < maxEMIterations; iter++ {
		for t := 0; t < n; t++ {
			for k := 0; k < nStates; k++ {
				emit[t][k] = gaussianPDF(xs[t], m.means[k], m.variances[k])
			}
		}

		logLik, ok := m.forward(emit, alpha, scale)
		if !ok {
			return nil, fmt.Errorf("forward pass underflow at iteration %d", iter)
		}
		m.backward(emit, beta, scale)

		for t := 0; t < n; t++ {
			var sum float64
			for k := 0; k < nStates; k++ {
				gamma[t][k] = alpha[t][k] * beta[t][k]
				sum += gamma[t][k]
			}
			if sum <= 0 {
				return nil, fmt.Errorf("degenerate posterior at t=%d", t)
			}
			for k := 0; k < nStates; k++ {
				gamma[t][k] /= sum
			}
		}

		// M-step.
		for j := 0; j < nStates; j++ {
			m.start[j] = gamma[0][j]

			var denom float64
			for t := 0; t < n-1; t++ {
				denom += gamma[t][j]
			}
			for k := 0; k < nStates; k++ {
				var num float64
				for t := 0; t < n-1; t++ {
					num += alpha[t][j] * m.transition[j][k] * emit[t+1][k] * beta[t+1][k] / scale[t+1]
				}
				if denom > 0 {
					m.transition[j][k] = num / denom
				}
			}
			normalizeRow(m.transition[j])

			var wSum, wx float64
			for t := 0; t < n; t++ {
				wSum += gamma[t][j]
				wx += gamma[t][j] * xs[t]
			}
			if wSum > 0 {
				m.means[j] = wx / wSum
				var wv float64
				for t := 0; t < n; t++ {
					d := xs[t] - m.means[j]
					wv += gamma[t][j] * d * d
				}
				m.variances[j] = math.Max(wv/wSum, varianceFloor)
			}
		}

		m.logLik = logLik
		if math.Abs(logLik-prevLogLik) < emTolerance {
			break
		}
		prevLogLik = logLik
	}
	if math.IsNaN(m.logLik) || math.IsInf(m.logLik, 0) {
		return nil, fmt.Errorf("likelihood diverged")
	}
	return m, nil
}

// forward fills the scaled forward variables and returns the log-likelihood.
func (m *gaussianHMM) forward(emit, alpha [][]float64, scale []float64) (float64, bool) {
	n := len(emit)
	nStates := len(m.start)

	var logLik float64
	for k := 0; k < nStates; k++ {
		alpha[0][k] = m.start[k] * emit[0][k]
	}
	for t := 0; t < n; t++ {
		if t > 0 {
			for k := 0; k < nStates; k++ {
				var sum float64
				for j := 0; j < nStates; j++ {
					sum += alpha[t-1][j] * m.transition[j][k]
				}
				alpha[t][k] = sum * emit[t][k]
			}
		}
		var c float64
		for k := 0; k < nStates; k++ {
			c += alpha[t][k]
		}
		if c <= 0 || math.IsNaN(c) {
			return 0, false
		}
		scale[t] = c
		for k := 0; k < nStates; k++ {
			alpha[t][k] /= c
		}
		logLik += math.Log(c)
	}
	return logLik, true
}

// backward fills the backward variables using the forward scaling factors.
func (m *gaussianHMM) backward(emit, beta [][]float64, scale []float64) {
	n := len(emit)
	nStates := len(m.start)
	for k := 0; k < nStates; k++ {
		beta[n-1][k] = 1
	}
	for t := n - 2; t >= 0; t-- {
		for k := 0; k < nStates; k++ {
			var sum float64
			for j := 0; j < nStates; j++ {
				sum += m.transition[k][j] * emit[t+1][j] * beta[t+1][j]
			}
			beta[t][k] = sum / scale[t+1]
		}
	}
}

// viterbi decodes the most likely state path in log space.
func (m *gaussianHMM) viterbi(xs []float64) []int {
	n := len(xs)
	nStates := len(m.start)

	delta := newMatrix(n, nStates)
	back := make([][]int, n)
	for t := range back {
		back[t] = make([]int, nStates)
	}

	for k := 0; k < nStates; k++ {
		delta[0][k] = safeLog(m.start[k]) + logGaussianPDF(xs[0], m.means[k], m.variances[k])
	}
	for t := 1; t < n; t++ {
		for k := 0; k < nStates; k++ {
			best := math.Inf(-1)
			bestJ := 0
			for j := 0; j < nStates; j++ {
				v := delta[t-1][j] + safeLog(m.transition[j][k])
				if v > best {
					best = v
					bestJ = j
				}
			}
			delta[t][k] = best + logGaussianPDF(xs[t], m.means[k], m.variances[k])
			back[t][k] = bestJ
		}
	}

	labels := make([]int, n)
	best := math.Inf(-1)
	for k := 0; k < nStates; k++ {
		if delta[n-1][k] > best {
			best = delta[n-1][k]
			labels[n-1] = k
		}
	}
	for t := n - 2; t >= 0; t-- {
		labels[t] = back[t+1][labels[t+1]]
	}
	return labels
}

func gaussianPDF(x, mean, variance float64) float64 {
	d := x - mean
	return math.Exp(-d*d/(2*variance)) / math.Sqrt(2*math.Pi*variance)
}

func logGaussianPDF(x, mean, variance float64) float64 {
	d := x - mean
	return -d*d/(2*variance) - 0.5*math.Log(2*math.Pi*variance)
}

func safeLog(x float64) float64 {
	if x <= 0 {
		return math.Inf(-1)
	}
	return math.Log(x)
}

func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

func normalizeRow(row []float64) {
	var sum float64
	for _, v := range row {
		sum += v
	}
	if sum <= 0 {
		for i := range row {
			row[i] = 1 / float64(len(row))
		}
		return
	}
	for i := range row {
		row[i] /= sum
	}
}
