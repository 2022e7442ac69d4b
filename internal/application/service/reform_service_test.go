package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/brokerage-backoffice/internal/domain/entity"
	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
	"github.com/garyjia/brokerage-backoffice/internal/domain/reform"
)

func newTestReformService(repo *mockReformCostRepo) *reformServiceImpl {
	svc := NewReformService(repo, &mockLogger{}).(*reformServiceImpl)
	svc.now = fixedClock
	return svc
}

func TestReformService_GetCosts(t *testing.T) {
	ctx := context.Background()

	t.Run("unsaved project returns zero breakdown", func(t *testing.T) {
		svc := newTestReformService(&mockReformCostRepo{})

		view, err := svc.GetCosts(ctx, "rf-1", 1000000)
		require.NoError(t, err)
		assert.False(t, view.Saved)
		assert.Equal(t, 0.0, view.Summary.TotalCost)
		assert.Equal(t, 1000000.0, view.Summary.Profit)
		assert.Equal(t, reform.TierHigh, view.Summary.Tier)
	})

	t.Run("saved breakdown with summary", func(t *testing.T) {
		repo := &mockReformCostRepo{getByProjectIDFunc: func(ctx context.Context, projectID string) (*entity.ReformCost, error) {
			return &entity.ReformCost{
				ProjectID: projectID,
				Breakdown: reform.CostBreakdown{Material: 300000, Outsourcing: 400000, Travel: 50000, Other: 50000},
				UpdatedAt: fixedNow,
			}, nil
		}}
		svc := newTestReformService(repo)

		view, err := svc.GetCosts(ctx, "rf-1", 1000000)
		require.NoError(t, err)
		assert.True(t, view.Saved)
		assert.Equal(t, 800000.0, view.Summary.TotalCost)
		assert.Equal(t, 200000.0, view.Summary.Profit)
		assert.InDelta(t, 20.0, view.Summary.MarginPercent, 1e-9)
		assert.Equal(t, reform.TierHigh, view.Summary.Tier)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := &mockReformCostRepo{getByProjectIDFunc: func(ctx context.Context, projectID string) (*entity.ReformCost, error) {
			return nil, errors.New("database is locked")
		}}
		_, err := newTestReformService(repo).GetCosts(ctx, "rf-1", 0)
		assert.ErrorIs(t, err, errs.ErrUpstream)
	})

	t.Run("blank project id", func(t *testing.T) {
		_, err := newTestReformService(&mockReformCostRepo{}).GetCosts(ctx, " ", 0)
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	})
}

func TestReformService_SaveCosts(t *testing.T) {
	ctx := context.Background()

	t.Run("clamps and saves", func(t *testing.T) {
		var saved *entity.ReformCost
		repo := &mockReformCostRepo{upsertFunc: func(ctx context.Context, cost *entity.ReformCost) error {
			saved = cost
			return nil
		}}
		svc := newTestReformService(repo)

		res, err := svc.SaveCosts(ctx, "rf-1", reform.CostBreakdown{Material: -100, Outsourcing: 900000, Travel: 50000, Other: 100000}, 1000000, "agent-1")
		require.NoError(t, err)
		assert.True(t, res.Changed)
		require.NotNil(t, saved)
		assert.Equal(t, 0.0, saved.Breakdown.Material)
		assert.Equal(t, "agent-1", saved.UpdatedBy)
		assert.Equal(t, -50000.0, res.View.Summary.Profit)
		assert.True(t, res.View.Summary.Loss)
		assert.Equal(t, reform.TierLow, res.View.Summary.Tier)
	})

	t.Run("unchanged breakdown skips the write", func(t *testing.T) {
		existing := reform.CostBreakdown{Material: 100, Outsourcing: 200, Note: "足場込み"}
		writes := 0
		repo := &mockReformCostRepo{
			getByProjectIDFunc: func(ctx context.Context, projectID string) (*entity.ReformCost, error) {
				return &entity.ReformCost{ProjectID: projectID, Breakdown: existing, UpdatedAt: fixedNow}, nil
			},
			upsertFunc: func(ctx context.Context, cost *entity.ReformCost) error {
				writes++
				return nil
			},
		}
		svc := newTestReformService(repo)

		res, err := svc.SaveCosts(ctx, "rf-1", existing, 1000, "agent-1")
		require.NoError(t, err)
		assert.False(t, res.Changed)
		assert.Equal(t, 0, writes)

		changed := existing
		changed.Note = "足場別"
		res, err = svc.SaveCosts(ctx, "rf-1", changed, 1000, "agent-1")
		require.NoError(t, err)
		assert.True(t, res.Changed)
		assert.Equal(t, 1, writes)
	})

	t.Run("failed write returns upstream and no view", func(t *testing.T) {
		repo := &mockReformCostRepo{upsertFunc: func(ctx context.Context, cost *entity.ReformCost) error {
			return errors.New("disk full")
		}}
		res, err := newTestReformService(repo).SaveCosts(ctx, "rf-1", reform.CostBreakdown{Material: 1}, 10, "agent-1")
		assert.ErrorIs(t, err, errs.ErrUpstream)
		assert.Nil(t, res)
	})
}
