package service

import (
	"context"
	"io"
	"time"

	"github.com/garyjia/brokerage-backoffice/internal/domain/checklist"
	"github.com/garyjia/brokerage-backoffice/internal/domain/entity"
	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
)

type mockChecklistRepo struct {
	createFunc            func(ctx context.Context, c *checklist.Checklist) error
	getByIDFunc           func(ctx context.Context, id int64) (*checklist.Checklist, error)
	getByTransactionFunc  func(ctx context.Context, transactionID string, t checklist.Type) (*checklist.Checklist, error)
	listByTransactionFunc func(ctx context.Context, transactionID string) ([]*checklist.Checklist, error)
	updateItemFunc        func(ctx context.Context, item *checklist.ItemState) error
	updateProgressFunc    func(ctx context.Context, c *checklist.Checklist) error
	listSummariesFunc     func(ctx context.Context) ([]*entity.ChecklistSummary, error)
	listStaleFunc         func(ctx context.Context, belowPercent int, updatedBefore time.Time) ([]*entity.ChecklistSummary, error)
}

func (m *mockChecklistRepo) Create(ctx context.Context, c *checklist.Checklist) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, c)
	}
	c.ID = 1
	return nil
}

func (m *mockChecklistRepo) GetByID(ctx context.Context, id int64) (*checklist.Checklist, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errs.ErrNotFound
}

func (m *mockChecklistRepo) GetByTransaction(ctx context.Context, transactionID string, t checklist.Type) (*checklist.Checklist, error) {
	if m.getByTransactionFunc != nil {
		return m.getByTransactionFunc(ctx, transactionID, t)
	}
	return nil, errs.ErrNotFound
}

func (m *mockChecklistRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*checklist.Checklist, error) {
	if m.listByTransactionFunc != nil {
		return m.listByTransactionFunc(ctx, transactionID)
	}
	return nil, nil
}

func (m *mockChecklistRepo) UpdateItem(ctx context.Context, item *checklist.ItemState) error {
	if m.updateItemFunc != nil {
		return m.updateItemFunc(ctx, item)
	}
	return nil
}

func (m *mockChecklistRepo) UpdateProgress(ctx context.Context, c *checklist.Checklist) error {
	if m.updateProgressFunc != nil {
		return m.updateProgressFunc(ctx, c)
	}
	return nil
}

func (m *mockChecklistRepo) ListSummaries(ctx context.Context) ([]*entity.ChecklistSummary, error) {
	if m.listSummariesFunc != nil {
		return m.listSummariesFunc(ctx)
	}
	return nil, nil
}

func (m *mockChecklistRepo) ListStale(ctx context.Context, belowPercent int, updatedBefore time.Time) ([]*entity.ChecklistSummary, error) {
	if m.listStaleFunc != nil {
		return m.listStaleFunc(ctx, belowPercent, updatedBefore)
	}
	return nil, nil
}

type mockTransactionRepo struct {
	getByIDFunc func(ctx context.Context, id string) (*entity.Transaction, error)
	upsertFunc  func(ctx context.Context, tx *entity.Transaction) error
}

func (m *mockTransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errs.ErrNotFound
}

func (m *mockTransactionRepo) Upsert(ctx context.Context, tx *entity.Transaction) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, tx)
	}
	return nil
}

type mockListingAgreementRepo struct {
	createFunc  func(ctx context.Context, agreement *entity.ListingAgreement) error
	listDueFunc func(ctx context.Context, dueBefore time.Time) ([]*entity.ListingAgreement, error)
}

func (m *mockListingAgreementRepo) Create(ctx context.Context, agreement *entity.ListingAgreement) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, agreement)
	}
	return nil
}

func (m *mockListingAgreementRepo) ListDueForRegistration(ctx context.Context, dueBefore time.Time) ([]*entity.ListingAgreement, error) {
	if m.listDueFunc != nil {
		return m.listDueFunc(ctx, dueBefore)
	}
	return nil, nil
}

type mockReformCostRepo struct {
	getByProjectIDFunc func(ctx context.Context, projectID string) (*entity.ReformCost, error)
	upsertFunc         func(ctx context.Context, cost *entity.ReformCost) error
}

func (m *mockReformCostRepo) GetByProjectID(ctx context.Context, projectID string) (*entity.ReformCost, error) {
	if m.getByProjectIDFunc != nil {
		return m.getByProjectIDFunc(ctx, projectID)
	}
	return nil, errs.ErrNotFound
}

func (m *mockReformCostRepo) Upsert(ctx context.Context, cost *entity.ReformCost) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, cost)
	}
	return nil
}

type mockShiftRequestRepo struct {
	createFunc         func(ctx context.Context, req *entity.ShiftRequest) error
	createDetailFunc   func(ctx context.Context, detail *entity.ShiftRequestDetail) error
	getByRequestIDFunc func(ctx context.Context, requestID string) (*entity.ShiftRequest, error)
}

func (m *mockShiftRequestRepo) Create(ctx context.Context, req *entity.ShiftRequest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	req.ID = 1
	return nil
}

func (m *mockShiftRequestRepo) CreateDetail(ctx context.Context, detail *entity.ShiftRequestDetail) error {
	if m.createDetailFunc != nil {
		return m.createDetailFunc(ctx, detail)
	}
	return nil
}

func (m *mockShiftRequestRepo) GetByRequestID(ctx context.Context, requestID string) (*entity.ShiftRequest, error) {
	if m.getByRequestIDFunc != nil {
		return m.getByRequestIDFunc(ctx, requestID)
	}
	return nil, errs.ErrNotFound
}

type mockNotificationLogRepo struct {
	createFunc func(ctx context.Context, log *entity.NotificationLog) error
	created    []*entity.NotificationLog
}

func (m *mockNotificationLogRepo) Create(ctx context.Context, log *entity.NotificationLog) error {
	m.created = append(m.created, log)
	if m.createFunc != nil {
		return m.createFunc(ctx, log)
	}
	return nil
}

func (m *mockNotificationLogRepo) ListByReference(ctx context.Context, notificationType, referenceID string) ([]*entity.NotificationLog, error) {
	var out []*entity.NotificationLog
	for _, l := range m.created {
		if l.Type == notificationType && l.ReferenceID == referenceID {
			out = append(out, l)
		}
	}
	return out, nil
}

type sentMessage struct {
	receiverID string
	content    string
}

type mockMessageSender struct {
	sendMessageFunc func(ctx context.Context, receiverID string, content string) error
	sent            []sentMessage
}

func (m *mockMessageSender) SendMessage(ctx context.Context, receiverID string, content string) error {
	if m.sendMessageFunc != nil {
		if err := m.sendMessageFunc(ctx, receiverID, content); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, sentMessage{receiverID: receiverID, content: content})
	return nil
}

type mockNotifier struct {
	notifyFunc    func(ctx context.Context, c *checklist.Checklist, actor string) error
	remindersFunc func(ctx context.Context, now time.Time) (int, error)
	alertsFunc    func(ctx context.Context, now time.Time) (int, error)
	notified      int
}

func (m *mockNotifier) NotifyChecklistCompleted(ctx context.Context, c *checklist.Checklist, actor string) error {
	m.notified++
	if m.notifyFunc != nil {
		return m.notifyFunc(ctx, c, actor)
	}
	return nil
}

func (m *mockNotifier) SendIncompleteReminders(ctx context.Context, now time.Time) (int, error) {
	if m.remindersFunc != nil {
		return m.remindersFunc(ctx, now)
	}
	return 0, nil
}

func (m *mockNotifier) SendAgreementDeadlineAlerts(ctx context.Context, now time.Time) (int, error) {
	if m.alertsFunc != nil {
		return m.alertsFunc(ctx, now)
	}
	return 0, nil
}

type mockExporter struct {
	writeFunc func(w io.Writer, stats *entity.ChecklistStats) error
}

func (m *mockExporter) WriteChecklistStats(w io.Writer, stats *entity.ChecklistStats) error {
	if m.writeFunc != nil {
		return m.writeFunc(w, stats)
	}
	_, err := io.WriteString(w, "stats")
	return err
}

func (m *mockExporter) ContentType() string   { return "text/plain" }
func (m *mockExporter) FileExtension() string { return ".txt" }

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

var fixedNow = time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }
