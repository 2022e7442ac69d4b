// Package reform computes cost, profit and margin figures for reform projects.
package reform

import (
	"math"

	"github.com/garyjia/brokerage-backoffice/pkg/utils"
)

// Tier is a qualitative profitability band
type Tier string

const (
	TierHigh   Tier = "HIGH"
	TierMedium Tier = "MEDIUM"
	TierLow    Tier = "LOW"
)

// Margin thresholds, inclusive on the lower bound of each band
const (
	HighMarginThreshold   = 20.0
	MediumMarginThreshold = 10.0
)

// CostBreakdown is the saved cost sheet of a reform project
type CostBreakdown struct {
	Material    float64 `json:"material_cost"`
	Outsourcing float64 `json:"outsourcing_cost"`
	Travel      float64 `json:"travel_cost"`
	Other       float64 `json:"other_cost"`
	Note        string  `json:"note,omitempty"`
}

// Clamped returns a copy with every bucket floored at 0
func (b CostBreakdown) Clamped() CostBreakdown {
	return CostBreakdown{
		Material:    clamp(b.Material),
		Outsourcing: clamp(b.Outsourcing),
		Travel:      clamp(b.Travel),
		Other:       clamp(b.Other),
		Note:        b.Note,
	}
}

// Differs reports whether b has unsaved changes relative to saved.
// Buckets are compared after clamping, so a negative entry that clamps to the
// saved value is not a change.
func (b CostBreakdown) Differs(saved CostBreakdown) bool {
	x, y := b.Clamped(), saved.Clamped()
	return x.Material != y.Material ||
		x.Outsourcing != y.Outsourcing ||
		x.Travel != y.Travel ||
		x.Other != y.Other ||
		x.Note != y.Note
}

func clamp(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

// TotalCost sums the four buckets after clamping each to >= 0
func TotalCost(b CostBreakdown) float64 {
	c := b.Clamped()
	return c.Material + c.Outsourcing + c.Travel + c.Other
}

// Profit is revenue minus total cost. Negative values are returned as is.
func Profit(revenue float64, b CostBreakdown) float64 {
	return revenue - TotalCost(b)
}

// MarginPercent is profit as a percentage of revenue, or 0 when revenue <= 0
func MarginPercent(revenue float64, b CostBreakdown) float64 {
	if revenue <= 0 {
		return 0
	}
	return utils.SafeDivide(Profit(revenue, b), revenue) * 100
}

// ProfitabilityTier classifies a margin percentage
func ProfitabilityTier(marginPercent float64) Tier {
	switch {
	case marginPercent >= HighMarginThreshold:
		return TierHigh
	case marginPercent >= MediumMarginThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// Summary bundles the derived figures shown next to a cost sheet
type Summary struct {
	Revenue       float64 `json:"revenue"`
	TotalCost     float64 `json:"total_cost"`
	Profit        float64 `json:"profit"`
	MarginPercent float64 `json:"margin_percent"`
	Tier          Tier    `json:"tier"`
	Loss          bool    `json:"loss"`
}

// Summarize computes every derived figure for a revenue and breakdown
func Summarize(revenue float64, b CostBreakdown) Summary {
	margin := MarginPercent(revenue, b)
	profit := Profit(revenue, b)
	return Summary{
		Revenue:       revenue,
		TotalCost:     TotalCost(b),
		Profit:        profit,
		MarginPercent: margin,
		Tier:          ProfitabilityTier(margin),
		Loss:          profit < 0,
	}
}
