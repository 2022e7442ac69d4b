// Package container wires the back-office components together and manages
// their lifecycle.
package container

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/brokerage-backoffice/internal/application/port"
	"github.com/garyjia/brokerage-backoffice/internal/config"
	"github.com/garyjia/brokerage-backoffice/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/brokerage-backoffice/internal/infrastructure/report"
	"github.com/garyjia/brokerage-backoffice/internal/infrastructure/scheduler"
	"github.com/garyjia/brokerage-backoffice/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure
	database     *database.DB
	txManager    *sqlite.DB
	repositories *RepositoryBundle
	sender       port.MessageSender
	exporter     *report.ExcelExporter

	// Application
	services  *ServiceBundle
	scheduler *scheduler.Scheduler

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start opens the database, applies pending migrations and builds the
// services and the scheduler.
func (c *Container) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	dbBundle, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.database = dbBundle.DB
	c.txManager = dbBundle.TransactionMgr
	c.repositories = ProvideRepositories(c.txManager, c.logger)
	c.logger.Info("Database initialized", zap.Int("migrations_applied", dbBundle.Applied))

	c.sender = ProvideMessageSender(&c.config.Lark, c.logger)
	c.exporter = report.NewExcelExporter(c.logger)

	c.services = ProvideServices(&ServiceDeps{
		Repos:        c.repositories,
		TxManager:    c.txManager,
		Sender:       c.sender,
		Exporter:     c.exporter,
		Notification: &c.config.Notification,
		Logger:       c.logger,
	})
	c.logger.Info("Application services initialized")

	sched, err := ProvideScheduler(&c.config.Notification, c.services.Notification, c.logger)
	if err != nil {
		c.database.Close()
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}
	c.scheduler = sched

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close releases the database connection.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Swap(true) {
		return fmt.Errorf("container already closed")
	}
	c.ready.Store(false)

	c.logger.Info("Closing container")

	if c.database != nil {
		if err := c.database.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			return fmt.Errorf("close database: %w", err)
		}
		c.logger.Info("Database closed")
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health() *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	if c.database == nil {
		status.Components["database"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	} else if err := c.database.Ping(); err != nil {
		status.Components["database"] = ComponentHealth{Healthy: false, Message: fmt.Sprintf("ping failed: %v", err)}
		status.Overall = false
	} else {
		status.Components["database"] = ComponentHealth{Healthy: true}
	}

	if c.services == nil {
		status.Components["services"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	} else {
		status.Components["services"] = ComponentHealth{Healthy: true}
	}

	delivery := ComponentHealth{Healthy: true}
	if !c.config.Lark.Enabled() {
		delivery.Message = "lark credentials not configured, notices are logged only"
	}
	status.Components["delivery"] = delivery

	return status
}

// Services returns the application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Scheduler returns the reminder scheduler.
func (c *Container) Scheduler() *scheduler.Scheduler {
	return c.scheduler
}

// Exporter returns the statistics exporter.
func (c *Container) Exporter() *report.ExcelExporter {
	return c.exporter
}

// Migrator returns a migrator bound to the open database.
func (c *Container) Migrator() *database.Migrator {
	return database.NewMigrator(c.database, c.logger)
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// zapLoggerAdapter adapts zap.Logger to the key/value Logger interfaces of
// the service and HTTP layers.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

// NewServiceLogger wraps a zap logger for the service and HTTP layers.
func NewServiceLogger(logger *zap.Logger) *zapLoggerAdapter {
	return &zapLoggerAdapter{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, ok := keysAndValues[i+1].(error); ok {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
