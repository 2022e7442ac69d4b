package repository

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/brokerage-backoffice/internal/application/port"
	"github.com/garyjia/brokerage-backoffice/internal/domain/entity"
	"github.com/garyjia/brokerage-backoffice/internal/infrastructure/persistence/sqlite"
)

// recipients are stored as one comma separated column
const recipientSeparator = ", "

// NotificationLogRepository implements port.NotificationLogRepository
type NotificationLogRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewNotificationLogRepository creates a new notification log repository
func NewNotificationLogRepository(db *sqlite.DB, logger *zap.Logger) port.NotificationLogRepository {
	return &NotificationLogRepository{
		db:     db,
		logger: logger,
	}
}

// Create records a delivered notice
func (r *NotificationLogRepository) Create(ctx context.Context, log *entity.NotificationLog) error {
	query := `
		INSERT INTO notification_logs (
			type, reference_id, subject, content, recipients, status, error_message, sent_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		log.Type,
		log.ReferenceID,
		log.Subject,
		log.Content,
		strings.Join(log.Recipients, recipientSeparator),
		log.Status,
		log.ErrorMessage,
		log.SentAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to create notification log",
			zap.String("type", log.Type),
			zap.String("reference_id", log.ReferenceID),
			zap.Error(err))
		return fmt.Errorf("failed to create notification log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	log.ID = id
	return nil
}

// ListByReference returns the notices of one type sent for a reference, oldest first
func (r *NotificationLogRepository) ListByReference(ctx context.Context, notificationType, referenceID string) ([]*entity.NotificationLog, error) {
	query := `
		SELECT id, type, reference_id, subject, content, recipients, status, error_message, sent_at
		FROM notification_logs
		WHERE type = ? AND reference_id = ?
		ORDER BY sent_at, id
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, notificationType, referenceID)
	if err != nil {
		r.logger.Error("Failed to list notification logs", zap.String("reference_id", referenceID), zap.Error(err))
		return nil, fmt.Errorf("failed to list notification logs: %w", err)
	}
	defer rows.Close()

	var out []*entity.NotificationLog
	for rows.Next() {
		var l entity.NotificationLog
		var recipients string
		if err := rows.Scan(
			&l.ID,
			&l.Type,
			&l.ReferenceID,
			&l.Subject,
			&l.Content,
			&recipients,
			&l.Status,
			&l.ErrorMessage,
			&l.SentAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification log: %w", err)
		}
		if recipients != "" {
			l.Recipients = strings.Split(recipients, recipientSeparator)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}
