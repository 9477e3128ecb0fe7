package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"QuantPulse/internal/domain/models"
	domrepo "QuantPulse/internal/domain/repository"
	"QuantPulse/internal/quant"
	svcmetrics "QuantPulse/internal/service/metrics"
	"QuantPulse/internal/service/ratelimit"
	"QuantPulse/internal/usecase"
	xhttp "QuantPulse/pkg/http"
	xlogger "QuantPulse/pkg/logger"
)

// AnalysisHandler exposes the statistical engines over Echo.
type AnalysisHandler struct {
	logger   *xlogger.Logger
	analyzer *usecase.Analyzer
	candles  *usecase.CandlesUseCase
	rl       *ratelimit.Limiter
}

func NewAnalysisHandler(logger *xlogger.Logger, analyzer *usecase.Analyzer, candles *usecase.CandlesUseCase) *AnalysisHandler {
	svcmetrics.Register()
	return &AnalysisHandler{logger: logger, analyzer: analyzer, candles: candles, rl: ratelimit.New()}
}

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/fractal/hurst", h.Hurst)
	g.POST("/fractal/dfa", h.DFA)
	g.POST("/fractal/spectrum", h.Spectrum)
	g.POST("/risk/cvar", h.CVaR)
	g.POST("/risk/garch", h.Volatility)
	g.POST("/regime/detect", h.Regime)
	g.POST("/simulate/fbm", h.Simulate)
	g.GET("/candles", h.Candles)
}

func (h *AnalysisHandler) Hurst(c echo.Context) error {
	defer h.observe("hurst", time.Now())
	req := &models.HurstRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "hurst") {
		return h.rateLimited(c, "hurst")
	}
	res, err := h.analyzer.Hurst(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "hurst", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) DFA(c echo.Context) error {
	defer h.observe("dfa", time.Now())
	req := &models.DFARequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "dfa") {
		return h.rateLimited(c, "dfa")
	}
	res, err := h.analyzer.DFA(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "dfa", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) Spectrum(c echo.Context) error {
	defer h.observe("spectrum", time.Now())
	req := &models.SpectrumRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "spectrum") {
		return h.rateLimited(c, "spectrum")
	}
	res, err := h.analyzer.Spectrum(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "spectrum", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) CVaR(c echo.Context) error {
	defer h.observe("cvar", time.Now())
	req := &models.CVaRRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "cvar") {
		return h.rateLimited(c, "cvar")
	}
	res, err := h.analyzer.CVaR(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "cvar", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) Volatility(c echo.Context) error {
	defer h.observe("volatility", time.Now())
	req := &models.GARCHRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "volatility") {
		return h.rateLimited(c, "volatility")
	}
	res, err := h.analyzer.Volatility(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "volatility", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) Regime(c echo.Context) error {
	defer h.observe("regime", time.Now())
	req := &models.RegimeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "regime") {
		return h.rateLimited(c, "regime")
	}
	res, err := h.analyzer.Regime(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "regime", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) Simulate(c echo.Context) error {
	defer h.observe("simulate", time.Now())
	req := &models.SimulateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "simulate") {
		return h.rateLimited(c, "simulate")
	}
	res, err := h.analyzer.Simulate(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "simulate", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) Candles(c echo.Context) error {
	defer h.observe("candles", time.Now())
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	now := time.Now().UTC()
	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol:    req.Symbol,
		From:      xhttp.ParseTimeDefault(req.From, now.AddDate(0, 0, -30)),
		To:        xhttp.ParseTimeDefault(req.To, now),
		Timeframe: domrepo.NormalizeTimeframe(req.TF),
		Limit:     req.Limit,
	})
	if err != nil {
		return h.fail(c, "candles", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) observe(endpoint string, start time.Time) {
	svcmetrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func (h *AnalysisHandler) allow(c echo.Context, endpoint string) bool {
	return h.rl.Allow(c.RealIP()+":"+endpoint, 10, 5)
}

func (h *AnalysisHandler) rateLimited(c echo.Context, endpoint string) error {
	svcmetrics.RateLimited.WithLabelValues(endpoint).Inc()
	h.logger.Warn("rate limited", xlogger.String("endpoint", endpoint), xlogger.String("remote", c.RealIP()))
	return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", http.StatusTooManyRequests))
}

// fail translates engine errors into API errors: bad inputs map to 400/422,
// fit failures to 502 so clients can tell them apart from validation issues.
func (h *AnalysisHandler) fail(c echo.Context, endpoint string, err error) error {
	svcmetrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
	h.logger.Error(endpoint+" usecase error", xlogger.Error(err))

	switch {
	case errors.Is(err, quant.ErrInvalidParameter):
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_INVALID_PARAMETER", "", err.Error(), http.StatusBadRequest).WithError(err))
	case errors.Is(err, quant.ErrInsufficientData):
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_INSUFFICIENT_DATA", "", err.Error(), http.StatusUnprocessableEntity).WithError(err))
	case errors.Is(err, quant.ErrModelFit):
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_MODEL_FIT", "", err.Error(), http.StatusBadGateway).WithError(err))
	default:
		return xhttp.AppErrorResponse(c, err)
	}
}

var _ xhttp.Handler = (*AnalysisHandler)(nil)
