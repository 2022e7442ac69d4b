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

// ShiftRequestRepository implements port.ShiftRequestRepository
type ShiftRequestRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewShiftRequestRepository creates a new shift request repository
func NewShiftRequestRepository(db *sqlite.DB, logger *zap.Logger) port.ShiftRequestRepository {
	return &ShiftRequestRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a shift request header
func (r *ShiftRequestRepository) Create(ctx context.Context, req *entity.ShiftRequest) error {
	query := `
		INSERT INTO shift_requests (
			request_id, employee_id, request_type, status, note, submitted_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		req.RequestID,
		req.EmployeeID,
		req.RequestType,
		req.Status,
		req.Note,
		req.SubmittedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("shift request %s: %w", req.RequestID, errs.ErrAlreadyExists)
		}
		r.logger.Error("Failed to create shift request", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return fmt.Errorf("failed to create shift request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	req.ID = id
	return nil
}

// CreateDetail inserts one availability interval of a request
func (r *ShiftRequestRepository) CreateDetail(ctx context.Context, detail *entity.ShiftRequestDetail) error {
	query := `
		INSERT INTO shift_request_details (
			shift_request_id, date, start_time, end_time, hours
		) VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		detail.ShiftRequestID,
		detail.Date,
		detail.StartTime,
		detail.EndTime,
		detail.Hours,
	)
	if err != nil {
		r.logger.Error("Failed to create shift request detail",
			zap.Int64("shift_request_id", detail.ShiftRequestID),
			zap.String("date", detail.Date),
			zap.Error(err))
		return fmt.Errorf("failed to create shift request detail: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	detail.ID = id
	return nil
}

// GetByRequestID loads a request and its details ordered by date and start time
func (r *ShiftRequestRepository) GetByRequestID(ctx context.Context, requestID string) (*entity.ShiftRequest, error) {
	query := `
		SELECT id, request_id, employee_id, request_type, status, note, submitted_at
		FROM shift_requests
		WHERE request_id = ?
	`

	var req entity.ShiftRequest
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, requestID).Scan(
		&req.ID,
		&req.RequestID,
		&req.EmployeeID,
		&req.RequestType,
		&req.Status,
		&req.Note,
		&req.SubmittedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("shift request %s: %w", requestID, errs.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get shift request", zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to get shift request: %w", err)
	}

	rows, err := r.db.Executor(ctx).QueryContext(ctx, `
		SELECT id, shift_request_id, date, start_time, end_time, hours
		FROM shift_request_details
		WHERE shift_request_id = ?
		ORDER BY date, start_time, id
	`, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift request details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d entity.ShiftRequestDetail
		if err := rows.Scan(&d.ID, &d.ShiftRequestID, &d.Date, &d.StartTime, &d.EndTime, &d.Hours); err != nil {
			return nil, fmt.Errorf("failed to scan shift request detail: %w", err)
		}
		req.Details = append(req.Details, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shift request details: %w", err)
	}
	return &req, nil
}
