package container

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/garyjia/brokerage-backoffice/internal/application/port"
	"github.com/garyjia/brokerage-backoffice/internal/application/service"
	"github.com/garyjia/brokerage-backoffice/internal/config"
	"github.com/garyjia/brokerage-backoffice/internal/infrastructure/external/lark"
	"github.com/garyjia/brokerage-backoffice/internal/infrastructure/persistence/repository"
	"github.com/garyjia/brokerage-backoffice/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/brokerage-backoffice/internal/infrastructure/scheduler"
	"github.com/garyjia/brokerage-backoffice/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
	Applied        int
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Checklist       port.ChecklistRepository
	Transaction     port.TransactionRepository
	ReformCost      port.ReformCostRepository
	ShiftRequest    port.ShiftRequestRepository
	NotificationLog port.NotificationLogRepository
	Agreement       port.ListingAgreementRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Checklist    service.ChecklistService
	Notification service.NotificationService
	Transaction  service.TransactionService
	Reform       service.ReformService
	ShiftRequest service.ShiftRequestService
}

// ServiceDeps holds the collaborators needed by ProvideServices.
type ServiceDeps struct {
	Repos        *RepositoryBundle
	TxManager    port.TransactionManager
	Sender       port.MessageSender
	Exporter     port.StatsExporter
	Notification *config.NotificationConfig
	Logger       *zap.Logger
}

// ProvideDatabase opens the SQLite database and applies the embedded
// migrations. The parent directory of a file database is created if needed.
func ProvideDatabase(cfg *config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}

	if cfg.Path != database.MemoryPath {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	applied, err := database.NewMigrator(db, logger).Up()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
		Applied:        applied,
	}, nil
}

// ProvideRepositories creates all repositories on top of the transaction manager.
func ProvideRepositories(db *sqlite.DB, logger *zap.Logger) *RepositoryBundle {
	return &RepositoryBundle{
		Checklist:       repository.NewChecklistRepository(db, logger),
		Transaction:     repository.NewTransactionRepository(db, logger),
		ReformCost:      repository.NewReformCostRepository(db, logger),
		ShiftRequest:    repository.NewShiftRequestRepository(db, logger),
		NotificationLog: repository.NewNotificationLogRepository(db, logger),
		Agreement:       repository.NewListingAgreementRepository(db, logger),
	}
}

// ProvideMessageSender returns the Lark messenger, or a log-only sender
// when no credentials are configured.
func ProvideMessageSender(cfg *config.LarkConfig, logger *zap.Logger) port.MessageSender {
	return lark.NewSender(lark.Config{
		AppID:     cfg.AppID,
		AppSecret: cfg.AppSecret,
		BaseURL:   cfg.BaseURL,
	}, logger)
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) *ServiceBundle {
	serviceLogger := NewServiceLogger(deps.Logger)

	notifier := service.NewNotificationService(
		service.NotificationConfig{
			AdminRecipients:   deps.Notification.AdminRecipients,
			SiteURL:           deps.Notification.SiteURL,
			ReminderThreshold: deps.Notification.ReminderThreshold,
			StaleDays:         deps.Notification.StaleDays,
			DeadlineAlertDays: deps.Notification.DeadlineAlertDays,
		},
		deps.Repos.Checklist,
		deps.Repos.Transaction,
		deps.Repos.Agreement,
		deps.Repos.NotificationLog,
		deps.Sender,
		serviceLogger,
	)

	return &ServiceBundle{
		Checklist: service.NewChecklistService(
			deps.Repos.Checklist,
			notifier,
			deps.Exporter,
			deps.TxManager,
			serviceLogger,
		),
		Notification: notifier,
		Transaction:  service.NewTransactionService(deps.Repos.Transaction, serviceLogger),
		Reform:       service.NewReformService(deps.Repos.ReformCost, serviceLogger),
		ShiftRequest: service.NewShiftRequestService(deps.Repos.ShiftRequest, deps.TxManager, serviceLogger),
	}
}

// ProvideScheduler creates the reminder scheduler.
func ProvideScheduler(cfg *config.NotificationConfig, reminder scheduler.ReminderRunner, logger *zap.Logger) (*scheduler.Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	return scheduler.New(scheduler.Config{
		ReminderSpec: cfg.ReminderCron,
		Location:     loc,
	}, reminder, logger)
}
