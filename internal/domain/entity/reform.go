package entity

import (
	"time"

	"github.com/garyjia/brokerage-backoffice/internal/domain/reform"
)

// ReformCost is the saved cost breakdown of a reform project
type ReformCost struct {
	ProjectID string               `json:"project_id"`
	Breakdown reform.CostBreakdown `json:"breakdown"`
	UpdatedBy string               `json:"updated_by,omitempty"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// ReformCostView is a saved breakdown with its derived figures
type ReformCostView struct {
	ProjectID string               `json:"project_id"`
	Breakdown reform.CostBreakdown `json:"breakdown"`
	Summary   reform.Summary       `json:"summary"`
	Saved     bool                 `json:"saved"`
	UpdatedAt *time.Time           `json:"updated_at,omitempty"`
}
