package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/brokerage-backoffice/internal/domain/entity"
	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
	"github.com/garyjia/brokerage-backoffice/internal/domain/shift"
)

func newTestShiftService(repo *mockShiftRequestRepo, tx *mockTxManager) *shiftRequestServiceImpl {
	svc := NewShiftRequestService(repo, tx, &mockLogger{}).(*shiftRequestServiceImpl)
	svc.now = fixedClock
	svc.newID = func() string { return "req-0001" }
	return svc
}

func TestShiftRequestService_Submit(t *testing.T) {
	ctx := context.Background()
	entries := []shift.Interval{
		{Date: "2024-08-01", Start: "09:00", End: "12:00"},
		{Date: "2024-08-01", Start: "12:00", End: "15:30"},
		{Date: "2024-08-02", Start: "10:00", End: "10:20"},
	}

	t.Run("writes header and details", func(t *testing.T) {
		var header *entity.ShiftRequest
		var details []*entity.ShiftRequestDetail
		repo := &mockShiftRequestRepo{
			createFunc: func(ctx context.Context, req *entity.ShiftRequest) error {
				req.ID = 42
				header = req
				return nil
			},
			createDetailFunc: func(ctx context.Context, detail *entity.ShiftRequestDetail) error {
				details = append(details, detail)
				return nil
			},
		}
		svc := newTestShiftService(repo, &mockTxManager{})

		sub, err := svc.Submit(ctx, "emp-1", " 夏休み期間 ", entries)
		require.NoError(t, err)
		assert.Equal(t, "req-0001", sub.RequestID)
		assert.Equal(t, 3, sub.Count)
		assert.Equal(t, "3件の勤務可能日を申請しました", sub.Message)

		require.NotNil(t, header)
		assert.Equal(t, entity.ShiftRequestTypeAvailability, header.RequestType)
		assert.Equal(t, entity.ShiftRequestStatusPending, header.Status)
		assert.Equal(t, "夏休み期間", header.Note)

		require.Len(t, details, 3)
		assert.Equal(t, int64(42), details[0].ShiftRequestID)
		assert.Equal(t, 3.0, details[0].Hours)
		assert.Equal(t, 3.5, details[1].Hours)
		assert.Equal(t, 0.33, details[2].Hours)
	})

	t.Run("single-digit hours are stored zero-padded in time order", func(t *testing.T) {
		var details []*entity.ShiftRequestDetail
		repo := &mockShiftRequestRepo{
			createDetailFunc: func(ctx context.Context, detail *entity.ShiftRequestDetail) error {
				details = append(details, detail)
				return nil
			},
		}
		svc := newTestShiftService(repo, &mockTxManager{})

		_, err := svc.Submit(ctx, "emp-1", "", []shift.Interval{
			{Date: "2024-08-01", Start: "10:00", End: "11:00"},
			{Date: "2024-08-01", Start: "9:00", End: "9:30"},
		})
		require.NoError(t, err)
		require.Len(t, details, 2)
		assert.Equal(t, "09:00", details[0].StartTime)
		assert.Equal(t, "09:30", details[0].EndTime)
		assert.Equal(t, 0.5, details[0].Hours)
		assert.Equal(t, "10:00", details[1].StartTime)
	})

	t.Run("overlapping batch writes nothing", func(t *testing.T) {
		txCalled := false
		tx := &mockTxManager{withTransactionFunc: func(ctx context.Context, fn func(ctx context.Context) error) error {
			txCalled = true
			return fn(ctx)
		}}
		svc := newTestShiftService(&mockShiftRequestRepo{}, tx)

		_, err := svc.Submit(ctx, "emp-1", "", []shift.Interval{
			{Date: "2024-08-01", Start: "09:00", End: "12:00"},
			{Date: "2024-08-01", Start: "11:00", End: "13:00"},
		})
		assert.ErrorIs(t, err, errs.ErrInvalidInterval)
		assert.False(t, txCalled)
	})

	t.Run("missing employee", func(t *testing.T) {
		_, err := newTestShiftService(&mockShiftRequestRepo{}, &mockTxManager{}).Submit(ctx, "", "", entries)
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	})

	t.Run("empty batch", func(t *testing.T) {
		_, err := newTestShiftService(&mockShiftRequestRepo{}, &mockTxManager{}).Submit(ctx, "emp-1", "", nil)
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	})

	t.Run("detail failure is upstream", func(t *testing.T) {
		repo := &mockShiftRequestRepo{createDetailFunc: func(ctx context.Context, detail *entity.ShiftRequestDetail) error {
			return errors.New("constraint failed")
		}}
		_, err := newTestShiftService(repo, &mockTxManager{}).Submit(ctx, "emp-1", "", entries)
		assert.ErrorIs(t, err, errs.ErrUpstream)
	})

	t.Run("stager submits through the service", func(t *testing.T) {
		svc := newTestShiftService(&mockShiftRequestRepo{}, &mockTxManager{})
		stager := shift.NewStager()
		for _, e := range entries {
			_, err := stager.Add(e)
			require.NoError(t, err)
		}

		sub, err := stager.SubmitAll(ctx, svc, "emp-1", "")
		require.NoError(t, err)
		assert.Equal(t, 3, sub.Count)
		assert.Equal(t, 0, stager.Len())
	})
}
