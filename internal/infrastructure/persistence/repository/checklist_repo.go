package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/brokerage-backoffice/internal/application/port"
	"github.com/garyjia/brokerage-backoffice/internal/domain/checklist"
	"github.com/garyjia/brokerage-backoffice/internal/domain/entity"
	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
	"github.com/garyjia/brokerage-backoffice/internal/infrastructure/persistence/sqlite"
)

// ChecklistRepository implements port.ChecklistRepository
type ChecklistRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewChecklistRepository creates a new checklist repository
func NewChecklistRepository(db *sqlite.DB, logger *zap.Logger) port.ChecklistRepository {
	return &ChecklistRepository{
		db:     db,
		logger: logger,
	}
}

const checklistColumns = `
	id, transaction_id, type, total_items, completed_items,
	progress_percentage, created_at, updated_at
`

// types sort in catalog order
const checklistTypeOrder = `CASE type WHEN 'seller' THEN 1 WHEN 'buyer' THEN 2 WHEN 'reform' THEN 3 ELSE 4 END`

// Create inserts the checklist header and every item row in one transaction
func (r *ChecklistRepository) Create(ctx context.Context, c *checklist.Checklist) error {
	return r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		exec := r.db.Executor(txCtx)

		result, err := exec.ExecContext(txCtx, `
			INSERT INTO checklists (
				transaction_id, type, catalog_version, total_items, completed_items,
				progress_percentage, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			c.TransactionID,
			string(c.Type),
			checklist.CatalogVersion,
			c.TotalItems,
			c.CompletedItems,
			c.ProgressPercentage,
			c.CreatedAt.UTC(),
			c.UpdatedAt.UTC(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("checklist %s/%s: %w", c.TransactionID, c.Type, errs.ErrAlreadyExists)
			}
			r.logger.Error("Failed to create checklist", zap.String("transaction_id", c.TransactionID), zap.Error(err))
			return fmt.Errorf("failed to create checklist: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		c.ID = id

		for i := range c.Items {
			item := &c.Items[i]
			item.ChecklistID = id
			if err := r.insertItem(txCtx, exec, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ChecklistRepository) insertItem(ctx context.Context, exec sqlite.Executor, item *checklist.ItemState) error {
	result, err := exec.ExecContext(ctx, `
		INSERT INTO checklist_items (
			checklist_id, item_key, label, required, order_index, checked,
			completed_at, note, attachment_path, updated_by, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		item.ChecklistID,
		item.Key,
		item.Label,
		item.Required,
		item.Order,
		item.Checked,
		nullableTime(item.CompletedAt),
		item.Note,
		item.AttachmentPath,
		item.UpdatedBy,
		item.UpdatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to create checklist item",
			zap.Int64("checklist_id", item.ChecklistID),
			zap.String("item_key", item.Key),
			zap.Error(err))
		return fmt.Errorf("failed to create checklist item %s: %w", item.Key, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	return nil
}

// GetByID loads a checklist and its items
func (r *ChecklistRepository) GetByID(ctx context.Context, id int64) (*checklist.Checklist, error) {
	query := `SELECT ` + checklistColumns + ` FROM checklists WHERE id = ?`

	c, err := r.scanChecklist(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("checklist %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get checklist by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get checklist: %w", err)
	}

	if err := r.loadItems(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetByTransaction loads the checklist of one type for a transaction
func (r *ChecklistRepository) GetByTransaction(ctx context.Context, transactionID string, t checklist.Type) (*checklist.Checklist, error) {
	query := `SELECT ` + checklistColumns + ` FROM checklists WHERE transaction_id = ? AND type = ?`

	c, err := r.scanChecklist(r.db.Executor(ctx).QueryRowContext(ctx, query, transactionID, string(t)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("checklist %s/%s: %w", transactionID, t, errs.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get checklist by transaction",
			zap.String("transaction_id", transactionID),
			zap.String("type", string(t)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get checklist: %w", err)
	}

	if err := r.loadItems(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListByTransaction loads every checklist of a transaction
func (r *ChecklistRepository) ListByTransaction(ctx context.Context, transactionID string) ([]*checklist.Checklist, error) {
	query := `SELECT ` + checklistColumns + ` FROM checklists WHERE transaction_id = ? ORDER BY ` + checklistTypeOrder

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, transactionID)
	if err != nil {
		r.logger.Error("Failed to list checklists", zap.String("transaction_id", transactionID), zap.Error(err))
		return nil, fmt.Errorf("failed to list checklists: %w", err)
	}

	var list []*checklist.Checklist
	for rows.Next() {
		c, err := r.scanChecklist(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan checklist: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate checklists: %w", err)
	}
	rows.Close()

	// items are loaded after the cursor is closed so a single connection pool
	// is not held by two queries
	for _, c := range list {
		if err := r.loadItems(ctx, c); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// UpdateItem writes the mutable state of one item row
func (r *ChecklistRepository) UpdateItem(ctx context.Context, item *checklist.ItemState) error {
	query := `
		UPDATE checklist_items
		SET checked = ?, completed_at = ?, note = ?, attachment_path = ?,
			updated_by = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		item.Checked,
		nullableTime(item.CompletedAt),
		item.Note,
		item.AttachmentPath,
		item.UpdatedBy,
		item.UpdatedAt.UTC(),
		item.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update checklist item", zap.Int64("id", item.ID), zap.Error(err))
		return fmt.Errorf("failed to update checklist item: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("checklist item %d", item.ID))
}

// UpdateProgress writes the derived progress fields
func (r *ChecklistRepository) UpdateProgress(ctx context.Context, c *checklist.Checklist) error {
	query := `
		UPDATE checklists
		SET total_items = ?, completed_items = ?, progress_percentage = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		c.TotalItems,
		c.CompletedItems,
		c.ProgressPercentage,
		c.UpdatedAt.UTC(),
		c.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update checklist progress", zap.Int64("id", c.ID), zap.Error(err))
		return fmt.Errorf("failed to update checklist progress: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("checklist %d", c.ID))
}

// ListSummaries returns the progress snapshot of every checklist
func (r *ChecklistRepository) ListSummaries(ctx context.Context) ([]*entity.ChecklistSummary, error) {
	query := `
		SELECT id, transaction_id, type, total_items, completed_items, progress_percentage, updated_at
		FROM checklists
		ORDER BY id
	`
	return r.querySummaries(ctx, query)
}

// ListStale returns checklists below belowPercent last updated at or before updatedBefore
func (r *ChecklistRepository) ListStale(ctx context.Context, belowPercent int, updatedBefore time.Time) ([]*entity.ChecklistSummary, error) {
	query := `
		SELECT id, transaction_id, type, total_items, completed_items, progress_percentage, updated_at
		FROM checklists
		WHERE progress_percentage < ? AND updated_at <= ?
		ORDER BY progress_percentage ASC, updated_at ASC
	`
	return r.querySummaries(ctx, query, belowPercent, updatedBefore.UTC())
}

func (r *ChecklistRepository) querySummaries(ctx context.Context, query string, args ...interface{}) ([]*entity.ChecklistSummary, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query checklist summaries", zap.Error(err))
		return nil, fmt.Errorf("failed to query checklist summaries: %w", err)
	}
	defer rows.Close()

	var out []*entity.ChecklistSummary
	for rows.Next() {
		var s entity.ChecklistSummary
		if err := rows.Scan(
			&s.ID,
			&s.TransactionID,
			&s.Type,
			&s.TotalItems,
			&s.CompletedItems,
			&s.ProgressPercentage,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan checklist summary: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ChecklistRepository) scanChecklist(row rowScanner) (*checklist.Checklist, error) {
	var c checklist.Checklist
	var t string
	err := row.Scan(
		&c.ID,
		&c.TransactionID,
		&t,
		&c.TotalItems,
		&c.CompletedItems,
		&c.ProgressPercentage,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Type = checklist.Type(t)
	return &c, nil
}

func (r *ChecklistRepository) loadItems(ctx context.Context, c *checklist.Checklist) error {
	query := `
		SELECT id, checklist_id, item_key, label, required, order_index, checked,
			completed_at, note, attachment_path, updated_by, updated_at
		FROM checklist_items
		WHERE checklist_id = ?
		ORDER BY order_index, id
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, c.ID)
	if err != nil {
		r.logger.Error("Failed to load checklist items", zap.Int64("checklist_id", c.ID), zap.Error(err))
		return fmt.Errorf("failed to load checklist items: %w", err)
	}
	defer rows.Close()

	c.Items = c.Items[:0]
	for rows.Next() {
		var item checklist.ItemState
		var completedAt sql.NullTime
		if err := rows.Scan(
			&item.ID,
			&item.ChecklistID,
			&item.Key,
			&item.Label,
			&item.Required,
			&item.Order,
			&item.Checked,
			&completedAt,
			&item.Note,
			&item.AttachmentPath,
			&item.UpdatedBy,
			&item.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to scan checklist item: %w", err)
		}
		item.CompletedAt = timePtr(completedAt)
		c.Items = append(c.Items, item)
	}
	return rows.Err()
}

func requireAffected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, errs.ErrNotFound)
	}
	return nil
}
