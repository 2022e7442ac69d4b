package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/brokerage-backoffice/internal/application/port"
	"github.com/garyjia/brokerage-backoffice/internal/domain/entity"
	"github.com/garyjia/brokerage-backoffice/internal/infrastructure/persistence/sqlite"
)

// ListingAgreementRepository implements port.ListingAgreementRepository
type ListingAgreementRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewListingAgreementRepository creates a new listing agreement repository
func NewListingAgreementRepository(db *sqlite.DB, logger *zap.Logger) port.ListingAgreementRepository {
	return &ListingAgreementRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a listing agreement. An empty status is stored as active.
func (r *ListingAgreementRepository) Create(ctx context.Context, a *entity.ListingAgreement) error {
	if a.Status == "" {
		a.Status = entity.ListingAgreementStatusActive
	}

	query := `
		INSERT INTO listing_agreements (
			transaction_id, contract_type, status, reins_required_by, reins_registered_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		a.TransactionID,
		a.ContractType,
		a.Status,
		a.ReinsRequiredBy.UTC(),
		nullableTime(a.ReinsRegisteredAt),
		a.CreatedAt.UTC(),
		a.UpdatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to create listing agreement", zap.String("transaction_id", a.TransactionID), zap.Error(err))
		return fmt.Errorf("failed to create listing agreement: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	a.ID = id
	return nil
}

// ListDueForRegistration returns active, unregistered agreements whose REINS
// deadline falls before dueBefore
func (r *ListingAgreementRepository) ListDueForRegistration(ctx context.Context, dueBefore time.Time) ([]*entity.ListingAgreement, error) {
	query := `
		SELECT id, transaction_id, contract_type, status, reins_required_by, reins_registered_at, created_at, updated_at
		FROM listing_agreements
		WHERE status = ? AND reins_registered_at IS NULL AND reins_required_by < ?
		ORDER BY reins_required_by ASC, id ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, entity.ListingAgreementStatusActive, dueBefore.UTC())
	if err != nil {
		r.logger.Error("Failed to list listing agreements due for registration", zap.Error(err))
		return nil, fmt.Errorf("failed to list listing agreements: %w", err)
	}
	defer rows.Close()

	var out []*entity.ListingAgreement
	for rows.Next() {
		var a entity.ListingAgreement
		var registeredAt sql.NullTime
		if err := rows.Scan(
			&a.ID,
			&a.TransactionID,
			&a.ContractType,
			&a.Status,
			&a.ReinsRequiredBy,
			&registeredAt,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan listing agreement: %w", err)
		}
		a.ReinsRegisteredAt = timePtr(registeredAt)
		out = append(out, &a)
	}
	return out, rows.Err()
}
