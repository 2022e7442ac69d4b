package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/brokerage-backoffice/internal/application/port"
	"github.com/garyjia/brokerage-backoffice/internal/domain/entity"
	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
	"github.com/garyjia/brokerage-backoffice/internal/infrastructure/persistence/sqlite"
)

// TransactionRepository implements port.TransactionRepository
type TransactionRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *sqlite.DB, logger *zap.Logger) port.TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a transaction by ID
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	query := `
		SELECT id, customer_name, assignee_id, created_at, updated_at
		FROM transactions
		WHERE id = ?
	`

	var tx entity.Transaction
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, id).Scan(
		&tx.ID,
		&tx.CustomerName,
		&tx.AssigneeID,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get transaction", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

// Upsert inserts the transaction or updates its name and assignee.
// created_at of an existing row is kept.
func (r *TransactionRepository) Upsert(ctx context.Context, tx *entity.Transaction) error {
	query := `
		INSERT INTO transactions (id, customer_name, assignee_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			customer_name = excluded.customer_name,
			assignee_id = excluded.assignee_id,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		tx.ID,
		tx.CustomerName,
		tx.AssigneeID,
		tx.CreatedAt.UTC(),
		tx.UpdatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to upsert transaction", zap.String("id", tx.ID), zap.Error(err))
		return fmt.Errorf("failed to upsert transaction: %w", err)
	}
	return nil
}
