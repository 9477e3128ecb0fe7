package risk

import (
	"math"

	"gonum.org/v1/gonum/optimize"

	"QuantPulse/internal/domain/models"
	"QuantPulse/internal/quant"
	"QuantPulse/internal/quant/series"
)

// MinGARCHObservations is the smallest return sample accepted by the
// GARCH(1,1) fitter.
const MinGARCHObservations = 50

const (
	// returnScale converts raw returns to percentage units before fitting;
	// the likelihood is much better conditioned there.
	returnScale = 100.0

	fallbackWindow      = 30
	fallbackPersistence = 0.98
	fallbackLongRunVol  = 0.20
)

type innovation int

const (
	studentT innovation = iota
	normal
)

// FitGARCH fits a GARCH(1,1) with Student-t innovations to the return
// series and forecasts conditional volatility horizon steps ahead. When the
// Student-t likelihood fails to converge it refits with normal innovations;
// if that fails too a ModelFitError is returned and callers may use
// RollingForecast instead. In-sample and forecast volatilities are
// per-period, in return units.
func FitGARCH(returns []float64, horizon int) (models.VolatilityForecast, error) {
	if horizon < 1 {
		return models.VolatilityForecast{}, quant.NewInvalidParameter("horizon", "must be at least 1")
	}
	xs := series.Clean(returns)
	if len(xs) < MinGARCHObservations {
		return models.VolatilityForecast{}, quant.NewInsufficientData("garch", MinGARCHObservations, len(xs))
	}

	scaled := make([]float64, len(xs))
	for i, r := range xs {
		scaled[i] = r * returnScale
	}

	fit, err := fitGARCHInnovation(scaled, studentT)
	method := models.MethodGARCHStudentT
	if err != nil {
		fit, err = fitGARCHInnovation(scaled, normal)
		method = models.MethodGARCHNormal
	}
	if err != nil {
		return models.VolatilityForecast{}, &quant.ModelFitError{Model: "garch", Err: err}
	}

	inSample := make([]float64, len(fit.condVar))
	for i, v := range fit.condVar {
		inSample[i] = math.Sqrt(v) / returnScale
	}

	forecast := make([]float64, horizon)
	lastEps := scaled[len(scaled)-1] - fit.params.Mu
	v := fit.params.Omega + fit.params.Alpha*lastEps*lastEps + fit.params.Beta*fit.condVar[len(fit.condVar)-1]
	for k := 0; k < horizon; k++ {
		forecast[k] = math.Sqrt(v) / returnScale
		v = fit.params.Omega + (fit.params.Alpha+fit.params.Beta)*v
	}

	params := fit.params
	return models.VolatilityForecast{
		InSample: inSample,
		Forecast: forecast,
		Horizon:  horizon,
		Method:   method,
		Params:   &params,
		LogLik:   fit.logLik,
	}, nil
}

// RollingForecast is the heuristic volatility estimator used when the GARCH
// fit is unavailable. It reports a 30-period rolling standard deviation
// annualized by sqrt(252) and projects forward by exponential decay toward a
// fixed long-run volatility. It is labeled as a heuristic in Method so
// consumers never mistake it for a model-based estimate.
func RollingForecast(returns []float64, horizon int) (models.VolatilityForecast, error) {
	if horizon < 1 {
		return models.VolatilityForecast{}, quant.NewInvalidParameter("horizon", "must be at least 1")
	}
	xs := series.Clean(returns)
	if len(xs) < MinGARCHObservations {
		return models.VolatilityForecast{}, quant.NewInsufficientData("rolling_volatility", MinGARCHObservations, len(xs))
	}

	rolling := series.RollingStd(xs, fallbackWindow)
	inSample := make([]float64, len(rolling))
	for i, s := range rolling {
		if math.IsNaN(s) {
			// Warmup periods have no window yet.
			inSample[i] = 0
			continue
		}
		inSample[i] = AnnualizedVolatility(s, tradingDaysPerYear)
	}

	// The first step carries the current level unchanged; decay starts
	// biting from the second step on.
	current := inSample[len(inSample)-1]
	forecast := make([]float64, horizon)
	decay := 1.0
	for k := 0; k < horizon; k++ {
		forecast[k] = current*decay + fallbackLongRunVol*(1-decay)
		decay *= fallbackPersistence
	}

	return models.VolatilityForecast{
		InSample: inSample,
		Forecast: forecast,
		Horizon:  horizon,
		Method:   models.MethodRollingVolatility,
	}, nil
}

const tradingDaysPerYear = 252

type garchFit struct {
	params  models.GARCHParams
	condVar []float64
	logLik  float64
}

// fitGARCHInnovation maximizes the GARCH(1,1) likelihood by Nelder-Mead over
// an unconstrained parameterization: omega through exp, the persistence
// alpha+beta and its alpha share through logistic transforms, and the t
// degrees of freedom as 2.1+exp so the variance always exists.
func fitGARCHInnovation(scaled []float64, dist innovation) (garchFit, error) {
	mean := series.Mean(scaled)
	variance := series.Std(scaled)
	variance *= variance
	if variance <= 0 {
		return garchFit{}, quant.NewInvalidParameter("returns", "series has zero variance")
	}

	x0 := []float64{
		mean,
		math.Log(variance * 0.05), // omega targeting var*(1-persistence)
		logit(0.95),               // persistence
		logit(0.05 / 0.95),        // alpha share of persistence
	}
	if dist == studentT {
		x0 = append(x0, math.Log(8-2.1))
	}

	problem := optimize.Problem{
		Func: func(theta []float64) float64 {
			nll, _ := garchNegLogLik(scaled, theta, dist, nil)
			return nll
		},
	}
	settings := &optimize.Settings{
		MajorIterations: 2000,
		FuncEvaluations: 10000,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-8,
			Iterations: 200,
		},
	}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil {
		return garchFit{}, err
	}
	if math.IsNaN(result.F) || math.IsInf(result.F, 0) {
		return garchFit{}, quant.ErrModelFit
	}

	condVar := make([]float64, len(scaled))
	nll, params := garchNegLogLik(scaled, result.X, dist, condVar)
	if math.IsNaN(nll) || math.IsInf(nll, 0) {
		return garchFit{}, quant.ErrModelFit
	}
	return garchFit{params: params, condVar: condVar, logLik: -nll}, nil
}

// garchNegLogLik evaluates the negative log-likelihood at unconstrained
// parameters theta, optionally recording the conditional variance path into
// condVar (which must be len(scaled) when non-nil).
func garchNegLogLik(scaled []float64, theta []float64, dist innovation, condVar []float64) (float64, models.GARCHParams) {
	mu := theta[0]
	omega := math.Exp(theta[1])
	persistence := logistic(theta[2])
	share := logistic(theta[3])
	alpha := persistence * share
	beta := persistence * (1 - share)

	params := models.GARCHParams{Mu: mu, Omega: omega, Alpha: alpha, Beta: beta}

	var nu float64
	if dist == studentT {
		nu = 2.1 + math.Exp(theta[4])
		params.Nu = nu
	}

	sampleVar := series.Std(scaled)
	sampleVar *= sampleVar

	var logLik float64
	v := sampleVar
	for i, r := range scaled {
		if condVar != nil {
			condVar[i] = v
		}
		eps := r - mu
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return math.Inf(1), params
		}
		switch dist {
		case studentT:
			logLik += studentTLogPDF(eps, v, nu)
		default:
			logLik += -0.5*math.Log(2*math.Pi*v) - eps*eps/(2*v)
		}
		v = omega + alpha*eps*eps + beta*v
	}
	if math.IsNaN(logLik) {
		return math.Inf(1), params
	}
	return -logLik, params
}

// studentTLogPDF is the log density of a Student-t standardized to unit
// variance, scaled to conditional variance v.
func studentTLogPDF(eps, v, nu float64) float64 {
	lg1, _ := math.Lgamma((nu + 1) / 2)
	lg2, _ := math.Lgamma(nu / 2)
	c := lg1 - lg2 - 0.5*math.Log(math.Pi*(nu-2)) - 0.5*math.Log(v)
	return c - (nu+1)/2*math.Log1p(eps*eps/(v*(nu-2)))
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
