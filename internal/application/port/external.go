package port

import (
	"context"
	"io"

	"github.com/garyjia/brokerage-backoffice/internal/domain/entity"
)

// MessageSender delivers a plain-text notice to one recipient
type MessageSender interface {
	SendMessage(ctx context.Context, receiverID string, content string) error
}

// StatsExporter renders checklist statistics into a document
type StatsExporter interface {
	WriteChecklistStats(w io.Writer, stats *entity.ChecklistStats) error
	ContentType() string
	FileExtension() string
}
