package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/brokerage-backoffice/internal/application/port"
	"github.com/garyjia/brokerage-backoffice/internal/domain/checklist"
	"github.com/garyjia/brokerage-backoffice/internal/domain/entity"
	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
)

// NotificationConfig holds recipient and reminder settings
type NotificationConfig struct {
	AdminRecipients   []string
	SiteURL           string
	ReminderThreshold int
	StaleDays         int
	DeadlineAlertDays int
}

// NotificationService sends checklist notices and listing agreement alerts
type NotificationService interface {
	NotifyChecklistCompleted(ctx context.Context, c *checklist.Checklist, actor string) error
	SendIncompleteReminders(ctx context.Context, now time.Time) (int, error)
	SendAgreementDeadlineAlerts(ctx context.Context, now time.Time) (int, error)
}

type notificationServiceImpl struct {
	cfg             NotificationConfig
	checklistRepo   port.ChecklistRepository
	transactionRepo port.TransactionRepository
	agreementRepo   port.ListingAgreementRepository
	logRepo         port.NotificationLogRepository
	messageSender   port.MessageSender
	logger          Logger
	now             func() time.Time
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	cfg NotificationConfig,
	checklistRepo port.ChecklistRepository,
	transactionRepo port.TransactionRepository,
	agreementRepo port.ListingAgreementRepository,
	logRepo port.NotificationLogRepository,
	messageSender port.MessageSender,
	logger Logger,
) NotificationService {
	if cfg.ReminderThreshold <= 0 {
		cfg.ReminderThreshold = 50
	}
	if cfg.StaleDays <= 0 {
		cfg.StaleDays = 7
	}
	if cfg.DeadlineAlertDays <= 0 {
		cfg.DeadlineAlertDays = 7
	}
	return &notificationServiceImpl{
		cfg:             cfg,
		checklistRepo:   checklistRepo,
		transactionRepo: transactionRepo,
		agreementRepo:   agreementRepo,
		logRepo:         logRepo,
		messageSender:   messageSender,
		logger:          logger,
		now:             time.Now,
	}
}

// NotifyChecklistCompleted tells the admins and the assigned agent that a
// checklist reached 100%. The agent is skipped when they made the final change.
func (s *notificationServiceImpl) NotifyChecklistCompleted(ctx context.Context, c *checklist.Checklist, actor string) error {
	if !c.Progress().IsComplete() {
		return nil
	}

	s.logger.Info("Sending checklist completion notice", "checklist_id", c.ID, "transaction_id", c.TransactionID)

	tx := s.lookupTransaction(ctx, c.TransactionID)
	name := displayName(tx, c.TransactionID)
	now := s.now()

	subject := fmt.Sprintf("【完了通知】%s様の%sチェックリストが完了しました", name, c.Type.Label())
	content := strings.Join([]string{
		fmt.Sprintf("%s様の%sチェックリストが100%%完了しました。", name, c.Type.Label()),
		"",
		"【完了情報】",
		"顧客名: " + name,
		"チェックリスト種別: " + c.Type.Label(),
		"完了日時: " + now.Format("2006/01/02 15:04"),
		fmt.Sprintf("完了項目数: %d/%d", c.CompletedItems, c.TotalItems),
		"",
		"管理画面で詳細を確認:",
		s.transactionLink(c.TransactionID),
		"",
		"次のステップの準備をお願いします。",
	}, "\n")

	return s.deliver(ctx, &entity.Notice{
		Type:        entity.NotificationTypeChecklistCompletion,
		ReferenceID: fmt.Sprintf("%d", c.ID),
		Subject:     subject,
		Content:     content,
		Recipients:  s.recipients(tx, actor),
	})
}

// SendIncompleteReminders sends one reminder per checklist that is below the
// progress threshold and has not been touched for StaleDays. It returns the
// number of reminders delivered to at least one recipient.
func (s *notificationServiceImpl) SendIncompleteReminders(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.AddDate(0, 0, -s.cfg.StaleDays)

	stale, err := s.checklistRepo.ListStale(ctx, s.cfg.ReminderThreshold, cutoff)
	if err != nil {
		s.logger.Error("Failed to list stalled checklists", "error", err)
		return 0, classify("list stalled checklists", err)
	}

	s.logger.Info("Sending stalled checklist reminders",
		"candidates", len(stale),
		"threshold", s.cfg.ReminderThreshold,
		"stale_days", s.cfg.StaleDays,
	)

	sent := 0
	for _, sum := range stale {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		t := checklist.Type(sum.Type)
		tx := s.lookupTransaction(ctx, sum.TransactionID)
		name := displayName(tx, sum.TransactionID)
		days := int(now.Sub(sum.UpdatedAt).Hours() / 24)

		subject := fmt.Sprintf("【リマインド】%s様の%sチェックリストが停滞しています", name, t.Label())
		content := strings.Join([]string{
			fmt.Sprintf("%s様の%sチェックリストが停滞しています。", name, t.Label()),
			"",
			"【現在の状況】",
			"顧客名: " + name,
			"チェックリスト種別: " + t.Label(),
			fmt.Sprintf("進捗率: %d%%", sum.ProgressPercentage),
			fmt.Sprintf("完了項目数: %d/%d", sum.CompletedItems, sum.TotalItems),
			fmt.Sprintf("最後の更新: %s（%d日前）", sum.UpdatedAt.Format("2006/01/02"), days),
			"",
			"早急な対応をお願いします。",
			"",
			"管理画面で詳細を確認:",
			s.transactionLink(sum.TransactionID),
		}, "\n")

		err := s.deliver(ctx, &entity.Notice{
			Type:        entity.NotificationTypeIncompleteReminder,
			ReferenceID: fmt.Sprintf("%d", sum.ID),
			Subject:     subject,
			Content:     content,
			Recipients:  s.recipients(tx, ""),
		})
		if err != nil {
			continue
		}
		sent++
	}

	s.logger.Info("Stalled checklist reminders sent", "sent", sent, "candidates", len(stale))
	return sent, nil
}

// SendAgreementDeadlineAlerts sends an urgent alert for every active listing
// agreement not yet registered with REINS whose deadline falls within
// DeadlineAlertDays of now, overdue ones included. It returns the number of
// alerts delivered to at least one recipient.
func (s *notificationServiceImpl) SendAgreementDeadlineAlerts(ctx context.Context, now time.Time) (int, error) {
	dueBefore := now.AddDate(0, 0, s.cfg.DeadlineAlertDays)

	due, err := s.agreementRepo.ListDueForRegistration(ctx, dueBefore)
	if err != nil {
		s.logger.Error("Failed to list listing agreements due for registration", "error", err)
		return 0, classify("list listing agreements", err)
	}

	s.logger.Info("Sending REINS deadline alerts",
		"candidates", len(due),
		"window_days", s.cfg.DeadlineAlertDays,
	)

	sent := 0
	for _, agreement := range due {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		tx := s.lookupTransaction(ctx, agreement.TransactionID)
		name := displayName(tx, agreement.TransactionID)

		subject := fmt.Sprintf("【緊急】%s様のレインズ登録期限が迫っています", name)
		content := strings.Join([]string{
			fmt.Sprintf("%s様のレインズ登録期限が迫っています。", name),
			"",
			"【緊急事項】",
			"顧客名: " + name,
			"契約種別: " + agreement.ContractLabel(),
			"レインズ登録期限: " + agreement.ReinsRequiredBy.Format("2006/01/02"),
			fmt.Sprintf("残り日数: %d日", agreement.DaysUntilDeadline(now)),
			"",
			"早急にレインズへの登録を行ってください。",
			"",
			"管理画面で詳細を確認:",
			s.transactionLink(agreement.TransactionID),
		}, "\n")

		err := s.deliver(ctx, &entity.Notice{
			Type:        entity.NotificationTypeDeadlineAlert,
			ReferenceID: fmt.Sprintf("%d", agreement.ID),
			Subject:     subject,
			Content:     content,
			Recipients:  s.recipients(tx, ""),
		})
		if err != nil {
			continue
		}
		sent++
	}

	s.logger.Info("REINS deadline alerts sent", "sent", sent, "candidates", len(due))
	return sent, nil
}

// deliver sends the notice to every recipient and records it. The log write
// is best effort. Delivery fails only when no recipient received the notice.
func (s *notificationServiceImpl) deliver(ctx context.Context, notice *entity.Notice) error {
	if len(notice.Recipients) == 0 {
		s.logger.Info("No recipients for notice", "type", notice.Type, "reference_id", notice.ReferenceID)
		return nil
	}

	message := notice.Subject + "\n\n" + notice.Content

	var (
		failures  []error
		delivered int
	)
	for _, recipient := range notice.Recipients {
		if err := s.messageSender.SendMessage(ctx, recipient, message); err != nil {
			s.logger.Error("Failed to send notice", "error", err, "type", notice.Type, "recipient", recipient)
			failures = append(failures, fmt.Errorf("%s: %w", recipient, err))
			continue
		}
		delivered++
	}

	record := &entity.NotificationLog{
		Type:        notice.Type,
		ReferenceID: notice.ReferenceID,
		Subject:     notice.Subject,
		Content:     notice.Content,
		Recipients:  notice.Recipients,
		Status:      entity.NotificationStatusSent,
		SentAt:      s.now(),
	}
	if len(failures) > 0 {
		record.ErrorMessage = errors.Join(failures...).Error()
	}
	if delivered == 0 {
		record.Status = entity.NotificationStatusFailed
	}

	if s.logRepo != nil {
		if err := s.logRepo.Create(ctx, record); err != nil {
			s.logger.Error("Failed to save notification log", "error", err, "type", notice.Type, "reference_id", notice.ReferenceID)
		}
	}

	if delivered == 0 {
		return errs.Upstream("send notice", errors.Join(failures...))
	}

	s.logger.Info("Notice sent",
		"type", notice.Type,
		"reference_id", notice.ReferenceID,
		"delivered", delivered,
		"failed", len(failures),
	)
	return nil
}

// recipients returns the admin recipients plus the assigned agent unless the
// agent is the actor. Duplicates are dropped.
func (s *notificationServiceImpl) recipients(tx *entity.Transaction, actor string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}

	for _, admin := range s.cfg.AdminRecipients {
		add(admin)
	}
	if tx != nil && tx.AssigneeID != "" && tx.AssigneeID != actor {
		add(tx.AssigneeID)
	}
	return out
}

func (s *notificationServiceImpl) lookupTransaction(ctx context.Context, id string) *entity.Transaction {
	if s.transactionRepo == nil {
		return nil
	}
	tx, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			s.logger.Error("Failed to load transaction", "error", err, "transaction_id", id)
		}
		return nil
	}
	return tx
}

func (s *notificationServiceImpl) transactionLink(transactionID string) string {
	return strings.TrimRight(s.cfg.SiteURL, "/") + "/admin/leads/" + transactionID
}

func displayName(tx *entity.Transaction, fallback string) string {
	if tx == nil {
		return fallback
	}
	return tx.DisplayName()
}
