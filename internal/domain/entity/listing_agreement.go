package entity

import "time"

// Listing agreement contract types
const (
	ContractTypeGeneral       = "general"
	ContractTypeExclusive     = "exclusive"
	ContractTypeSoleExclusive = "sole_exclusive"
)

// Listing agreement status constants
const (
	ListingAgreementStatusActive    = "active"
	ListingAgreementStatusExpired   = "expired"
	ListingAgreementStatusCancelled = "cancelled"
)

var contractTypeLabels = map[string]string{
	ContractTypeGeneral:       "一般媒介",
	ContractTypeExclusive:     "専任媒介",
	ContractTypeSoleExclusive: "専属専任媒介",
}

// ListingAgreement is a brokerage contract with a seller. Exclusive
// contracts must be registered with REINS by ReinsRequiredBy.
type ListingAgreement struct {
	ID                int64      `json:"id"`
	TransactionID     string     `json:"transaction_id"`
	ContractType      string     `json:"contract_type"`
	Status            string     `json:"status"`
	ReinsRequiredBy   time.Time  `json:"reins_required_by"`
	ReinsRegisteredAt *time.Time `json:"reins_registered_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ContractLabel returns the Japanese contract type name, or the raw value
// for types it does not know.
func (a *ListingAgreement) ContractLabel() string {
	if label, ok := contractTypeLabels[a.ContractType]; ok {
		return label
	}
	return a.ContractType
}

// DaysUntilDeadline returns whole days until the registration deadline,
// rounded up. Overdue agreements give zero or a negative number.
func (a *ListingAgreement) DaysUntilDeadline(now time.Time) int {
	d := a.ReinsRequiredBy.Sub(now)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}
