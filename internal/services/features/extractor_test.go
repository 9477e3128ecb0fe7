package features

import (
	"math"
	"testing"
	"time"

	"QuantPulse/internal/domain/models"
)

func candlesWithCloses(closes ...float64) []models.Candle {
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{Symbol: "TEST", Close: c}
	}
	return out
}

func TestComputeLogReturns(t *testing.T) {
	got := ComputeLogReturns(candlesWithCloses(100, 110, 99))
	if len(got) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(got))
	}
	if math.Abs(got[0]-math.Log(1.1)) > 1e-12 {
		t.Fatalf("unexpected first return %v", got[0])
	}
	if math.Abs(got[1]-math.Log(0.9)) > 1e-12 {
		t.Fatalf("unexpected second return %v", got[1])
	}
}

func TestComputeLogReturnsShortSeries(t *testing.T) {
	if got := ComputeLogReturns(candlesWithCloses(100)); got != nil {
		t.Fatalf("expected nil for single candle, got %v", got)
	}
}

func TestComputeLogReturnsNonPositiveClose(t *testing.T) {
	got := ComputeLogReturns(candlesWithCloses(100, 0, 100))
	if len(got) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(got))
	}
	for i, r := range got {
		if r != 0 {
			t.Fatalf("expected zero return at %d, got %v", i, r)
		}
	}
}

func TestClosePrices(t *testing.T) {
	got := ClosePrices(candlesWithCloses(1, 2, 3))
	want := []float64{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("close mismatch at %d: %v", i, got[i])
		}
	}
}

func TestBarsPerYearForTF(t *testing.T) {
	if got := BarsPerYearForTF("1d"); got != 252 {
		t.Fatalf("1d: got %v", got)
	}
	if got := BarsPerYearForTF("1h"); got != 252*6.5 {
		t.Fatalf("1h: got %v", got)
	}
	if got := BarsPerYearForTF("1m"); got != 252*390 {
		t.Fatalf("1m: got %v", got)
	}
	if got := BarsPerYearForTF("unknown"); got != 252 {
		t.Fatalf("fallback: got %v", got)
	}
}

func TestAlignFromTo(t *testing.T) {
	from := time.Date(2025, 3, 10, 14, 37, 42, 0, time.UTC)
	to := time.Date(2025, 3, 12, 9, 5, 13, 0, time.UTC)

	af, at := AlignFromTo(from, to, "1m")
	if af.Second() != 0 || at.Second() != 0 {
		t.Fatalf("1m alignment left seconds: %v %v", af, at)
	}

	af, at = AlignFromTo(from, to, "1h")
	if af.Minute() != 0 || at.Minute() != 0 {
		t.Fatalf("1h alignment left minutes: %v %v", af, at)
	}

	af, at = AlignFromTo(from, to, "1d")
	if af.Hour() != 0 || at.Hour() != 0 {
		t.Fatalf("1d alignment left hours: %v %v", af, at)
	}
}
