package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/brokerage-backoffice/internal/application/port"
	"github.com/garyjia/brokerage-backoffice/internal/domain/entity"
	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
	"github.com/garyjia/brokerage-backoffice/internal/domain/reform"
)

// SaveCostsResult reports whether SaveCosts wrote anything
type SaveCostsResult struct {
	View    *entity.ReformCostView `json:"view"`
	Changed bool                   `json:"changed"`
}

// ReformService manages reform project cost breakdowns
type ReformService interface {
	GetCosts(ctx context.Context, projectID string, revenue float64) (*entity.ReformCostView, error)
	SaveCosts(ctx context.Context, projectID string, breakdown reform.CostBreakdown, revenue float64, actor string) (*SaveCostsResult, error)
}

type reformServiceImpl struct {
	costRepo port.ReformCostRepository
	logger   Logger
	now      func() time.Time
}

// NewReformService creates a new ReformService
func NewReformService(costRepo port.ReformCostRepository, logger Logger) ReformService {
	return &reformServiceImpl{
		costRepo: costRepo,
		logger:   logger,
		now:      time.Now,
	}
}

// GetCosts returns the saved breakdown, or a zero one, with derived figures
func (s *reformServiceImpl) GetCosts(ctx context.Context, projectID string, revenue float64) (*entity.ReformCostView, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("project id is required: %w", errs.ErrInvalidArgument)
	}

	saved, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return buildCostView(projectID, saved, revenue), nil
}

// SaveCosts stores the clamped breakdown unless it equals the saved one.
// On a failed write the previous figures stay in place and an upstream
// error is returned.
func (s *reformServiceImpl) SaveCosts(ctx context.Context, projectID string, breakdown reform.CostBreakdown, revenue float64, actor string) (*SaveCostsResult, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("project id is required: %w", errs.ErrInvalidArgument)
	}

	saved, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}

	clamped := breakdown.Clamped()
	if saved != nil && !clamped.Differs(saved.Breakdown) {
		s.logger.Info("Reform costs unchanged", "project_id", projectID)
		return &SaveCostsResult{View: buildCostView(projectID, saved, revenue)}, nil
	}

	cost := &entity.ReformCost{
		ProjectID: projectID,
		Breakdown: clamped,
		UpdatedBy: actor,
		UpdatedAt: s.now(),
	}
	if err := s.costRepo.Upsert(ctx, cost); err != nil {
		s.logger.Error("Failed to save reform costs", "error", err, "project_id", projectID)
		return nil, classify("save reform costs", err)
	}

	s.logger.Info("Reform costs saved",
		"project_id", projectID,
		"total_cost", reform.TotalCost(clamped),
		"actor", actor,
	)
	return &SaveCostsResult{View: buildCostView(projectID, cost, revenue), Changed: true}, nil
}

func (s *reformServiceImpl) load(ctx context.Context, projectID string) (*entity.ReformCost, error) {
	saved, err := s.costRepo.GetByProjectID(ctx, projectID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to load reform costs", "error", err, "project_id", projectID)
		return nil, classify("get reform costs", err)
	}
	return saved, nil
}

func buildCostView(projectID string, saved *entity.ReformCost, revenue float64) *entity.ReformCostView {
	view := &entity.ReformCostView{ProjectID: projectID}
	if saved != nil {
		view.Breakdown = saved.Breakdown
		view.Saved = true
		at := saved.UpdatedAt
		view.UpdatedAt = &at
	}
	view.Summary = reform.Summarize(revenue, view.Breakdown)
	return view
}
