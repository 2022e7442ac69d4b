package port

import (
	"context"
	"time"

	"github.com/garyjia/brokerage-backoffice/internal/domain/checklist"
	"github.com/garyjia/brokerage-backoffice/internal/domain/entity"
)

// ChecklistRepository defines persistence operations for Checklist and its items
type ChecklistRepository interface {
	// Create inserts the checklist and all of its item rows.
	// Returns errs.ErrAlreadyExists when the (transaction, type) pair is taken.
	Create(ctx context.Context, c *checklist.Checklist) error

	// GetByID loads a checklist with items in catalog order
	GetByID(ctx context.Context, id int64) (*checklist.Checklist, error)

	// GetByTransaction loads the checklist of one type for a transaction
	GetByTransaction(ctx context.Context, transactionID string, t checklist.Type) (*checklist.Checklist, error)

	// ListByTransaction loads every checklist of a transaction ordered by type
	ListByTransaction(ctx context.Context, transactionID string) ([]*checklist.Checklist, error)

	// UpdateItem writes the mutable state of one item row
	UpdateItem(ctx context.Context, item *checklist.ItemState) error

	// UpdateProgress writes the derived progress fields and updated_at
	UpdateProgress(ctx context.Context, c *checklist.Checklist) error

	// ListSummaries returns the progress snapshot of every checklist
	ListSummaries(ctx context.Context) ([]*entity.ChecklistSummary, error)

	// ListStale returns checklists below a progress threshold not updated since the cutoff
	ListStale(ctx context.Context, belowPercent int, updatedBefore time.Time) ([]*entity.ChecklistSummary, error)
}

// TransactionRepository defines persistence operations for Transaction
type TransactionRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	Upsert(ctx context.Context, tx *entity.Transaction) error
}

// ReformCostRepository defines persistence operations for ReformCost
type ReformCostRepository interface {
	GetByProjectID(ctx context.Context, projectID string) (*entity.ReformCost, error)
	Upsert(ctx context.Context, cost *entity.ReformCost) error
}

// ShiftRequestRepository defines persistence operations for ShiftRequest
type ShiftRequestRepository interface {
	Create(ctx context.Context, req *entity.ShiftRequest) error
	CreateDetail(ctx context.Context, detail *entity.ShiftRequestDetail) error
	GetByRequestID(ctx context.Context, requestID string) (*entity.ShiftRequest, error)
}

// NotificationLogRepository defines persistence operations for NotificationLog
type NotificationLogRepository interface {
	Create(ctx context.Context, log *entity.NotificationLog) error
	ListByReference(ctx context.Context, notificationType, referenceID string) ([]*entity.NotificationLog, error)
}

// ListingAgreementRepository defines persistence operations for ListingAgreement
type ListingAgreementRepository interface {
	Create(ctx context.Context, agreement *entity.ListingAgreement) error

	// ListDueForRegistration returns active agreements not yet registered
	// with REINS whose deadline is before dueBefore, earliest deadline first
	ListDueForRegistration(ctx context.Context, dueBefore time.Time) ([]*entity.ListingAgreement, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
