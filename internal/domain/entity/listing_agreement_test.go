package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestListingAgreement_DaysUntilDeadline(t *testing.T) {
	now := time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		deadline time.Time
		want     int
	}{
		{"later today rounds up", time.Date(2024, 8, 1, 23, 0, 0, 0, time.UTC), 1},
		{"midnight in three days", time.Date(2024, 8, 4, 0, 0, 0, 0, time.UTC), 3},
		{"exactly one week", now.AddDate(0, 0, 7), 7},
		{"overdue", time.Date(2024, 7, 30, 0, 0, 0, 0, time.UTC), -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &ListingAgreement{ReinsRequiredBy: tt.deadline}
			assert.Equal(t, tt.want, a.DaysUntilDeadline(now))
		})
	}
}

func TestListingAgreement_ContractLabel(t *testing.T) {
	assert.Equal(t, "専任媒介", (&ListingAgreement{ContractType: ContractTypeExclusive}).ContractLabel())
	assert.Equal(t, "custom", (&ListingAgreement{ContractType: "custom"}).ContractLabel())
}
