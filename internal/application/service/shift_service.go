package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/brokerage-backoffice/internal/application/port"
	"github.com/garyjia/brokerage-backoffice/internal/domain/entity"
	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
	"github.com/garyjia/brokerage-backoffice/internal/domain/shift"
	"github.com/garyjia/brokerage-backoffice/pkg/utils"
)

// ShiftRequestService stores availability submissions.
// It satisfies shift.Submitter.
type ShiftRequestService interface {
	Submit(ctx context.Context, employeeID, note string, entries []shift.Interval) (*shift.Submission, error)
	Get(ctx context.Context, requestID string) (*entity.ShiftRequest, error)
}

var _ shift.Submitter = (ShiftRequestService)(nil)

type shiftRequestServiceImpl struct {
	requestRepo port.ShiftRequestRepository
	txManager   port.TransactionManager
	logger      Logger
	now         func() time.Time
	newID       func() string
}

// NewShiftRequestService creates a new ShiftRequestService
func NewShiftRequestService(requestRepo port.ShiftRequestRepository, txManager port.TransactionManager, logger Logger) ShiftRequestService {
	return &shiftRequestServiceImpl{
		requestRepo: requestRepo,
		txManager:   txManager,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Submit re-validates the whole batch and then writes the header and all
// details in one transaction. Nothing is written when validation fails.
func (s *shiftRequestServiceImpl) Submit(ctx context.Context, employeeID, note string, entries []shift.Interval) (*shift.Submission, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, fmt.Errorf("employee id is required: %w", errs.ErrInvalidArgument)
	}
	entries, err := shift.NormalizeBatch(entries)
	if err != nil {
		return nil, err
	}

	req := &entity.ShiftRequest{
		RequestID:   s.newID(),
		EmployeeID:  employeeID,
		RequestType: entity.ShiftRequestTypeAvailability,
		Status:      entity.ShiftRequestStatusPending,
		Note:        utils.SanitizeString(strings.TrimSpace(note)),
		SubmittedAt: s.now(),
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.Create(txCtx, req); err != nil {
			return fmt.Errorf("create shift request: %w", err)
		}

		for _, entry := range entries {
			detail := &entity.ShiftRequestDetail{
				ShiftRequestID: req.ID,
				Date:           entry.Date,
				StartTime:      entry.Start,
				EndTime:        entry.End,
				Hours:          entry.Hours(),
			}
			if err := s.requestRepo.CreateDetail(txCtx, detail); err != nil {
				return fmt.Errorf("create shift request detail: %w", err)
			}
			req.Details = append(req.Details, detail)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to submit shift request", "error", err, "employee_id", employeeID)
		return nil, classify("submit shift request", err)
	}

	s.logger.Info("Shift request submitted",
		"request_id", req.RequestID,
		"employee_id", employeeID,
		"entries", len(entries),
		"total_hours", req.TotalHours(),
	)

	return &shift.Submission{
		RequestID: req.RequestID,
		Count:     len(entries),
		Message:   fmt.Sprintf("%d件の勤務可能日を申請しました", len(entries)),
	}, nil
}

// Get loads a submitted request with its details
func (s *shiftRequestServiceImpl) Get(ctx context.Context, requestID string) (*entity.ShiftRequest, error) {
	req, err := s.requestRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, classify("get shift request", err)
	}
	return req, nil
}
