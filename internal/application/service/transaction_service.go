package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/brokerage-backoffice/internal/application/port"
	"github.com/garyjia/brokerage-backoffice/internal/domain/entity"
	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
	"github.com/garyjia/brokerage-backoffice/pkg/utils"
)

// TransactionService maintains the customer name and assignee used in notices
type TransactionService interface {
	Get(ctx context.Context, id string) (*entity.Transaction, error)
	Save(ctx context.Context, id, customerName, assigneeID string) (*entity.Transaction, error)
}

type transactionServiceImpl struct {
	transactionRepo port.TransactionRepository
	logger          Logger
	now             func() time.Time
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo port.TransactionRepository, logger Logger) TransactionService {
	return &transactionServiceImpl{
		transactionRepo: transactionRepo,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *transactionServiceImpl) Get(ctx context.Context, id string) (*entity.Transaction, error) {
	tx, err := s.transactionRepo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, classify("get transaction", err)
	}
	return tx, nil
}

func (s *transactionServiceImpl) Save(ctx context.Context, id, customerName, assigneeID string) (*entity.Transaction, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("transaction id is required: %w", errs.ErrInvalidArgument)
	}

	now := s.now()
	tx := &entity.Transaction{
		ID:           id,
		CustomerName: utils.SanitizeString(strings.TrimSpace(customerName)),
		AssigneeID:   strings.TrimSpace(assigneeID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.transactionRepo.Upsert(ctx, tx); err != nil {
		s.logger.Error("Failed to save transaction", "error", err, "transaction_id", id)
		return nil, classify("save transaction", err)
	}

	s.logger.Info("Transaction saved", "transaction_id", id, "assignee_id", tx.AssigneeID)
	return tx, nil
}
