package reform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalCost(t *testing.T) {
	tests := []struct {
		name      string
		breakdown CostBreakdown
		want      float64
	}{
		{"zero", CostBreakdown{}, 0},
		{"all buckets", CostBreakdown{Material: 500000, Outsourcing: 300000, Travel: 20000, Other: 10000}, 830000},
		{"negative clamped", CostBreakdown{Material: -100, Outsourcing: 200}, 200},
		{"all negative", CostBreakdown{Material: -1, Outsourcing: -2, Travel: -3, Other: -4}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalCost(tt.breakdown))
		})
	}
}

func TestTotalCost_MonotonicInEachBucket(t *testing.T) {
	base := CostBreakdown{Material: 100, Outsourcing: 100, Travel: 100, Other: 100}
	bumps := []func(b *CostBreakdown){
		func(b *CostBreakdown) { b.Material += 50 },
		func(b *CostBreakdown) { b.Outsourcing += 50 },
		func(b *CostBreakdown) { b.Travel += 50 },
		func(b *CostBreakdown) { b.Other += 50 },
	}

	for i, bump := range bumps {
		next := base
		bump(&next)
		assert.GreaterOrEqual(t, TotalCost(next), TotalCost(base), "bucket %d", i)
	}
}

func TestProfit_NegativeNotClamped(t *testing.T) {
	b := CostBreakdown{Material: 1200000}
	assert.Equal(t, -200000.0, Profit(1000000, b))
}

func TestMarginPercent(t *testing.T) {
	b := CostBreakdown{Material: 600000, Outsourcing: 200000}

	assert.Equal(t, 0.0, MarginPercent(0, b))
	assert.Equal(t, 0.0, MarginPercent(-5000, b))
	assert.InDelta(t, 20.0, MarginPercent(1000000, b), 1e-9)
	assert.InDelta(t, -60.0, MarginPercent(500000, b), 1e-9)
	assert.InDelta(t, 33.3, MarginPercent(1200000, b), 0.05)
}

func TestProfitabilityTier(t *testing.T) {
	tests := []struct {
		margin float64
		want   Tier
	}{
		{20, TierHigh},
		{45.5, TierHigh},
		{19.99, TierMedium},
		{10, TierMedium},
		{9.99, TierLow},
		{0, TierLow},
		{-50, TierLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ProfitabilityTier(tt.margin), "margin %v", tt.margin)
	}
}

func TestDiffers(t *testing.T) {
	saved := CostBreakdown{Material: 100, Note: "first estimate"}

	assert.False(t, saved.Differs(saved))
	assert.True(t, CostBreakdown{Material: 120, Note: "first estimate"}.Differs(saved))
	assert.True(t, CostBreakdown{Material: 100, Note: "revised"}.Differs(saved))
	assert.False(t, CostBreakdown{Material: 100, Travel: -5, Note: "first estimate"}.Differs(saved))
}

func TestSummarize(t *testing.T) {
	s := Summarize(1000000, CostBreakdown{Material: 850000, Other: 60000})

	assert.Equal(t, 910000.0, s.TotalCost)
	assert.Equal(t, 90000.0, s.Profit)
	assert.InDelta(t, 9.0, s.MarginPercent, 1e-9)
	assert.Equal(t, TierLow, s.Tier)
	assert.False(t, s.Loss)

	loss := Summarize(100, CostBreakdown{Material: 150})
	assert.True(t, loss.Loss)
	assert.Equal(t, TierLow, loss.Tier)
}
