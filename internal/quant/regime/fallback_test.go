package regime

import (
	"errors"
	"testing"

	"QuantPulse/internal/domain/models"
	"QuantPulse/internal/quant"
)

func TestDetectVolatilityBuckets(t *testing.T) {
	xs := twoRegimeReturns(41)
	res, err := DetectVolatilityBuckets(xs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Method != models.MethodVolatilityBuckets {
		t.Fatalf("expected heuristic method tag, got %q", res.Method)
	}
	if len(res.Labels) != len(xs) {
		t.Fatalf("expected %d labels, got %d", len(xs), len(res.Labels))
	}
	if res.NRegimes != 3 {
		t.Fatalf("expected 3 buckets, got %d", res.NRegimes)
	}
	if res.TransitionMatrix != nil {
		t.Fatalf("fallback must not report a transition matrix")
	}
}

func TestDetectVolatilityBucketsWarmupDefaultsMedium(t *testing.T) {
	res, err := DetectVolatilityBuckets(twoRegimeReturns(43))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < fallbackVolWindow-1; i++ {
		if res.Labels[i] != bucketMedium {
			t.Fatalf("warmup label %d should be medium, got %d", i, res.Labels[i])
		}
	}
}

func TestDetectVolatilityBucketsOrdering(t *testing.T) {
	res, err := DetectVolatilityBuckets(twoRegimeReturns(47))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	low, high := res.Stats[bucketLow], res.Stats[bucketHigh]
	if low.Frequency == 0 || high.Frequency == 0 {
		t.Fatalf("expected both extreme buckets populated: low=%v high=%v", low.Frequency, high.Frequency)
	}
	if low.Volatility >= high.Volatility {
		t.Fatalf("low bucket volatility %v not below high bucket %v", low.Volatility, high.Volatility)
	}
	if res.Stats[bucketLow].Name != "low_volatility" || res.Stats[bucketHigh].Name != "high_volatility" {
		t.Fatalf("unexpected bucket names: %v", res.Stats)
	}
}

func TestDetectVolatilityBucketsInsufficientData(t *testing.T) {
	_, err := DetectVolatilityBuckets(twoRegimeReturns(1)[:MinFallbackObservations-1])
	if !errors.Is(err, quant.ErrInsufficientData) {
		t.Fatalf("expected insufficient data error, got %v", err)
	}
}
