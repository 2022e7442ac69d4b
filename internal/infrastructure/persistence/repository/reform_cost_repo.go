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

// ReformCostRepository implements port.ReformCostRepository
type ReformCostRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewReformCostRepository creates a new reform cost repository
func NewReformCostRepository(db *sqlite.DB, logger *zap.Logger) port.ReformCostRepository {
	return &ReformCostRepository{
		db:     db,
		logger: logger,
	}
}

// GetByProjectID retrieves the saved cost sheet of a project
func (r *ReformCostRepository) GetByProjectID(ctx context.Context, projectID string) (*entity.ReformCost, error) {
	query := `
		SELECT project_id, material_cost, outsourcing_cost, travel_cost, other_cost,
			note, updated_by, updated_at
		FROM reform_costs
		WHERE project_id = ?
	`

	var cost entity.ReformCost
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, projectID).Scan(
		&cost.ProjectID,
		&cost.Breakdown.Material,
		&cost.Breakdown.Outsourcing,
		&cost.Breakdown.Travel,
		&cost.Breakdown.Other,
		&cost.Breakdown.Note,
		&cost.UpdatedBy,
		&cost.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reform costs %s: %w", projectID, errs.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get reform costs", zap.String("project_id", projectID), zap.Error(err))
		return nil, fmt.Errorf("failed to get reform costs: %w", err)
	}
	return &cost, nil
}

// Upsert replaces the cost sheet of a project
func (r *ReformCostRepository) Upsert(ctx context.Context, cost *entity.ReformCost) error {
	query := `
		INSERT INTO reform_costs (
			project_id, material_cost, outsourcing_cost, travel_cost, other_cost,
			note, updated_by, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			material_cost = excluded.material_cost,
			outsourcing_cost = excluded.outsourcing_cost,
			travel_cost = excluded.travel_cost,
			other_cost = excluded.other_cost,
			note = excluded.note,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at
	`

	b := cost.Breakdown
	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		cost.ProjectID,
		b.Material,
		b.Outsourcing,
		b.Travel,
		b.Other,
		b.Note,
		cost.UpdatedBy,
		cost.UpdatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to upsert reform costs", zap.String("project_id", cost.ProjectID), zap.Error(err))
		return fmt.Errorf("failed to upsert reform costs: %w", err)
	}
	return nil
}
