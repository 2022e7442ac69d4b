package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/garyjia/brokerage-backoffice/internal/application/port"
	"github.com/garyjia/brokerage-backoffice/internal/domain/checklist"
	"github.com/garyjia/brokerage-backoffice/internal/domain/entity"
	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
	"github.com/garyjia/brokerage-backoffice/pkg/utils"
)

// Logger interface for service logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// SetItemCommand is one user action on a checklist item
type SetItemCommand struct {
	ChecklistID    int64
	ItemKey        string
	Checked        bool
	Note           *string
	AttachmentPath *string
	Actor          string
}

// SetItemResult is the outcome of SetItem.
// Completed is true only on the call that moved the checklist to 100%.
// A failed completion notice does not undo the saved item; it is reported
// through NotifyError.
type SetItemResult struct {
	Checklist   *checklist.Checklist `json:"checklist"`
	Item        checklist.ItemState  `json:"item"`
	Progress    checklist.Progress   `json:"progress"`
	Completed   bool                 `json:"completed"`
	Notified    bool                 `json:"notified"`
	NotifyError string               `json:"notify_error,omitempty"`
}

// ChecklistService manages transaction checklists
type ChecklistService interface {
	Create(ctx context.Context, transactionID string, t checklist.Type) (*checklist.Checklist, error)
	Get(ctx context.Context, transactionID string, t checklist.Type) (*checklist.Checklist, error)
	GetByID(ctx context.Context, id int64) (*checklist.Checklist, error)
	List(ctx context.Context, transactionID string) ([]*checklist.Checklist, error)
	SetItem(ctx context.Context, cmd SetItemCommand) (*SetItemResult, error)
	Stats(ctx context.Context) (*entity.ChecklistStats, error)
	ExportStats(ctx context.Context, w io.Writer) error
}

type checklistServiceImpl struct {
	checklistRepo port.ChecklistRepository
	notifier      NotificationService
	exporter      port.StatsExporter
	txManager     port.TransactionManager
	logger        Logger
	now           func() time.Time
}

// NewChecklistService creates a new ChecklistService.
// notifier and exporter may be nil.
func NewChecklistService(
	checklistRepo port.ChecklistRepository,
	notifier NotificationService,
	exporter port.StatsExporter,
	txManager port.TransactionManager,
	logger Logger,
) ChecklistService {
	return &checklistServiceImpl{
		checklistRepo: checklistRepo,
		notifier:      notifier,
		exporter:      exporter,
		txManager:     txManager,
		logger:        logger,
		now:           time.Now,
	}
}

// Create builds an unchecked checklist from the catalog and stores it
func (s *checklistServiceImpl) Create(ctx context.Context, transactionID string, t checklist.Type) (*checklist.Checklist, error) {
	c, err := checklist.New(transactionID, t, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.checklistRepo.Create(ctx, c); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			s.logger.Info("Checklist already exists", "transaction_id", c.TransactionID, "type", t)
		} else {
			s.logger.Error("Failed to create checklist", "error", err, "transaction_id", c.TransactionID, "type", t)
		}
		return nil, classify("create checklist", err)
	}

	s.logger.Info("Checklist created",
		"checklist_id", c.ID,
		"transaction_id", c.TransactionID,
		"type", t,
		"total_items", c.TotalItems,
	)
	return c, nil
}

// Get returns the checklist of a transaction, creating it on first access
func (s *checklistServiceImpl) Get(ctx context.Context, transactionID string, t checklist.Type) (*checklist.Checklist, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, fmt.Errorf("transaction id is required: %w", errs.ErrInvalidArgument)
	}
	if !t.IsValid() {
		return nil, fmt.Errorf("unknown checklist type %q: %w", t, errs.ErrInvalidArgument)
	}

	c, err := s.checklistRepo.GetByTransaction(ctx, transactionID, t)
	if errors.Is(err, errs.ErrNotFound) {
		c, err = s.Create(ctx, transactionID, t)
		if errors.Is(err, errs.ErrAlreadyExists) {
			// created concurrently
			c, err = s.checklistRepo.GetByTransaction(ctx, transactionID, t)
		}
	}
	if err != nil {
		return nil, classify("get checklist", err)
	}

	s.correctDrift(ctx, c)
	return c, nil
}

// GetByID loads a checklist by id
func (s *checklistServiceImpl) GetByID(ctx context.Context, id int64) (*checklist.Checklist, error) {
	c, err := s.checklistRepo.GetByID(ctx, id)
	if err != nil {
		return nil, classify("get checklist", err)
	}
	s.correctDrift(ctx, c)
	return c, nil
}

// List returns every checklist of a transaction
func (s *checklistServiceImpl) List(ctx context.Context, transactionID string) ([]*checklist.Checklist, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, fmt.Errorf("transaction id is required: %w", errs.ErrInvalidArgument)
	}

	list, err := s.checklistRepo.ListByTransaction(ctx, transactionID)
	if err != nil {
		s.logger.Error("Failed to list checklists", "error", err, "transaction_id", transactionID)
		return nil, classify("list checklists", err)
	}
	for _, c := range list {
		s.correctDrift(ctx, c)
	}
	return list, nil
}

// correctDrift re-derives progress from the item rows and persists the
// figures when the stored ones disagree. A failed write is logged only;
// the returned checklist always carries the derived values.
func (s *checklistServiceImpl) correctDrift(ctx context.Context, c *checklist.Checklist) {
	stored := c.Progress()
	derived := c.RecomputeProgress()
	if stored == derived {
		return
	}

	s.logger.Info("Correcting checklist progress",
		"checklist_id", c.ID,
		"stored_percentage", stored.ProgressPercentage,
		"derived_percentage", derived.ProgressPercentage,
	)
	if err := s.checklistRepo.UpdateProgress(ctx, c); err != nil {
		s.logger.Error("Failed to persist corrected progress", "error", err, "checklist_id", c.ID)
	}
}

// SetItem checks or unchecks one item and recomputes progress in a single
// transaction. The completion notice is sent after the commit.
func (s *checklistServiceImpl) SetItem(ctx context.Context, cmd SetItemCommand) (*SetItemResult, error) {
	cmd.ItemKey = strings.TrimSpace(cmd.ItemKey)
	if cmd.ItemKey == "" {
		return nil, fmt.Errorf("item key is required: %w", errs.ErrInvalidArgument)
	}
	if strings.TrimSpace(cmd.Actor) == "" {
		return nil, fmt.Errorf("actor is required: %w", errs.ErrInvalidArgument)
	}

	var (
		updated *checklist.Checklist
		change  checklist.ItemChange
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.checklistRepo.GetByID(txCtx, cmd.ChecklistID)
		if err != nil {
			return classify("get checklist", err)
		}

		work := current.Clone()
		change, err = work.SetItemChecked(cmd.ItemKey, checklist.ItemUpdate{
			Checked:        cmd.Checked,
			Note:           cmd.Note,
			AttachmentPath: cmd.AttachmentPath,
			Actor:          cmd.Actor,
			At:             s.now(),
		})
		if err != nil {
			return err
		}

		item, _ := work.Item(cmd.ItemKey)
		if err := s.checklistRepo.UpdateItem(txCtx, item); err != nil {
			return classify("update checklist item", err)
		}
		if err := s.checklistRepo.UpdateProgress(txCtx, work); err != nil {
			return classify("update checklist progress", err)
		}

		updated = work
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to set checklist item",
			"error", err,
			"checklist_id", cmd.ChecklistID,
			"item_key", cmd.ItemKey,
		)
		return nil, classify("set checklist item", err)
	}

	s.logger.Info("Checklist item updated",
		"checklist_id", updated.ID,
		"item_key", cmd.ItemKey,
		"checked", cmd.Checked,
		"progress", change.Progress.ProgressPercentage,
		"actor", cmd.Actor,
	)

	result := &SetItemResult{
		Checklist: updated,
		Item:      change.Item,
		Progress:  change.Progress,
		Completed: change.ReachedCompletion,
	}

	if change.ReachedCompletion && s.notifier != nil {
		if err := s.notifier.NotifyChecklistCompleted(ctx, updated, cmd.Actor); err != nil {
			s.logger.Error("Failed to send completion notice", "error", err, "checklist_id", updated.ID)
			result.NotifyError = err.Error()
		} else {
			result.Notified = true
		}
	}

	return result, nil
}

// Stats aggregates progress over every checklist
func (s *checklistServiceImpl) Stats(ctx context.Context) (*entity.ChecklistStats, error) {
	summaries, err := s.checklistRepo.ListSummaries(ctx)
	if err != nil {
		s.logger.Error("Failed to list checklist summaries", "error", err)
		return nil, classify("checklist stats", err)
	}
	return BuildChecklistStats(summaries, s.now()), nil
}

// ExportStats writes the statistics document to w
func (s *checklistServiceImpl) ExportStats(ctx context.Context, w io.Writer) error {
	if s.exporter == nil {
		return fmt.Errorf("no stats exporter configured: %w", errs.ErrInvalidArgument)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		return err
	}

	if err := s.exporter.WriteChecklistStats(w, stats); err != nil {
		s.logger.Error("Failed to export checklist stats", "error", err)
		return errs.Upstream("export checklist stats", err)
	}

	s.logger.Info("Checklist stats exported", "total", stats.Total)
	return nil
}

// BuildChecklistStats aggregates per type and overall. Averages are rounded
// half up and are 0 for a type without checklists.
func BuildChecklistStats(summaries []*entity.ChecklistSummary, now time.Time) *entity.ChecklistStats {
	type acc struct {
		count, progress, total, completed int
	}

	byType := make(map[string]*acc, len(checklist.Types))
	for _, t := range checklist.Types {
		byType[t.String()] = &acc{}
	}

	var overall acc
	for _, sum := range summaries {
		a, ok := byType[sum.Type]
		if !ok {
			a = &acc{}
			byType[sum.Type] = a
		}
		a.count++
		a.progress += sum.ProgressPercentage
		a.total += sum.TotalItems
		a.completed += sum.CompletedItems

		overall.count++
		overall.progress += sum.ProgressPercentage
		overall.total += sum.TotalItems
		overall.completed += sum.CompletedItems
	}

	stats := &entity.ChecklistStats{
		Total: overall.count,
		Overall: entity.OverallStats{
			AverageProgress: average(overall.progress, overall.count),
			TotalItems:      overall.total,
			CompletedItems:  overall.completed,
		},
		GeneratedAt: now,
	}
	for _, t := range checklist.Types {
		a := byType[t.String()]
		stats.ByType = append(stats.ByType, entity.TypeStats{
			Type:            t.String(),
			Label:           t.Label(),
			Count:           a.count,
			AverageProgress: average(a.progress, a.count),
			TotalItems:      a.total,
			CompletedItems:  a.completed,
		})
	}
	return stats
}

func average(sum, count int) int {
	return utils.RoundHalfUp(utils.SafeDivide(float64(sum), float64(count)))
}
