package models

import "time"

// Method tags carried by results so consumers can tell a model-based estimate
// from a heuristic fallback.
const (
	MethodGARCHStudentT     = "garch_t"
	MethodGARCHNormal       = "garch_normal"
	MethodRollingVolatility = "fallback_rolling_volatility"
	MethodGaussianHMM       = "gaussian_hmm"
	MethodVolatilityBuckets = "fallback_volatility_based"
)

// HurstResult is the outcome of a rescaled-range estimation.
type HurstResult struct {
	Hurst          float64 `json:"hurst"`
	Interpretation string  `json:"interpretation"` // mean_reverting | random_walk | trending
	Windows        int     `json:"windows"`        // retained (window, R/S) pairs
	Observations   int     `json:"observations"`
}

// DFAResult is the outcome of a detrended fluctuation analysis.
type DFAResult struct {
	Alpha        float64 `json:"alpha"`
	Order        int     `json:"order"`
	BoxSizes     int     `json:"box_sizes"`
	Observations int     `json:"observations"`
}

// MultifractalSpectrum holds the f(alpha) spectrum as parallel slices.
// All four slices share the same length.
type MultifractalSpectrum struct {
	Alpha        []float64 `json:"alpha"`
	FAlpha       []float64 `json:"f_alpha"`
	QValues      []float64 `json:"q_values"`
	TauQ         []float64 `json:"tau_q"`
	Width        float64   `json:"width"` // max(alpha) - min(alpha)
	Observations int       `json:"observations"`
}

// RiskResult reports VaR and CVaR as positive-is-loss magnitudes, together
// with sample statistics computed from the same cleaned series.
type RiskResult struct {
	VaR          float64 `json:"var"`
	CVaR         float64 `json:"cvar"`
	Confidence   float64 `json:"confidence"`
	MeanReturn   float64 `json:"mean_return"`
	Volatility   float64 `json:"volatility"`
	Observations int     `json:"observations"`
}

// GARCHParams are the fitted GARCH(1,1) coefficients.
type GARCHParams struct {
	Mu    float64 `json:"mu"`
	Omega float64 `json:"omega"`
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Nu    float64 `json:"nu,omitempty"` // Student-t degrees of freedom; zero for normal innovations
}

// VolatilityForecast carries in-sample conditional volatility aligned to the
// input index (warmup positions are zero for the fallback method) and a
// strictly-future forecast of exactly Horizon entries.
type VolatilityForecast struct {
	InSample []float64    `json:"in_sample_volatility"`
	Forecast []float64    `json:"forecast_volatility"`
	Horizon  int          `json:"forecast_horizon"`
	Method   string       `json:"method"`
	Params   *GARCHParams `json:"params,omitempty"`
	LogLik   float64      `json:"log_likelihood,omitempty"`
}

// RegimeStats summarizes one detected regime.
type RegimeStats struct {
	MeanReturn float64 `json:"mean_return"`
	Volatility float64 `json:"volatility"`
	Frequency  float64 `json:"frequency"`
	Name       string  `json:"name"`
}

// RegimeResult labels every observation of the cleaned input with a regime and
// reports per-regime statistics. TransitionMatrix is nil for the volatility
// fallback; when present each row sums to 1.
type RegimeResult struct {
	Labels           []int               `json:"regime_labels"`
	CurrentRegime    int                 `json:"current_regime"`
	NRegimes         int                 `json:"n_regimes"`
	Stats            map[int]RegimeStats `json:"regime_characteristics"`
	TransitionMatrix [][]float64         `json:"transition_matrix,omitempty"`
	LogLik           float64             `json:"model_likelihood,omitempty"`
	Method           string              `json:"method"`
}

// SimulatedPath is a generated price path: Prices[0] is the initial price and
// the remaining Days entries compound the simulated returns.
type SimulatedPath struct {
	Prices  []float64 `json:"prices"`
	Hurst   float64   `json:"hurst"`
	Days    int       `json:"days"`
	Seed    uint64    `json:"seed,omitempty"`
	Created time.Time `json:"created_at"`
}
