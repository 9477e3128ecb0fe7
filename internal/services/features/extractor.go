package features

import (
	"math"
	"time"

	"QuantPulse/internal/domain/models"
)

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(candles)-1, or nil if insufficient data.
func ComputeLogReturns(candles []models.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	out := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		cur := candles[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// ClosePrices extracts the close series from candles in bucket order.
func ClosePrices(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// BarsPerYearForTF returns the approximate number of bars per year for a
// timeframe, using 252 trading days and a 6.5 hour session.
func BarsPerYearForTF(tf string) float64 {
	switch tf {
	case "1m":
		return 252 * 390
	case "1h":
		return 252 * 6.5
	case "1d":
		return 252
	default:
		return 252
	}
}

// AlignFromTo rounds time range to candle boundaries based on timeframe.
func AlignFromTo(from, to time.Time, tf string) (time.Time, time.Time) {
	switch tf {
	case "1m":
		from = from.Truncate(time.Minute)
		to = to.Truncate(time.Minute)
	case "1h":
		from = from.Truncate(time.Hour)
		to = to.Truncate(time.Hour)
	default:
		d := 24 * time.Hour
		from = from.Truncate(d)
		to = to.Truncate(d)
	}
	return from, to
}
