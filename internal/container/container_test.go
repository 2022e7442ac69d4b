package container

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/garyjia/brokerage-backoffice/internal/config"
	"github.com/garyjia/brokerage-backoffice/internal/domain/checklist"
	"github.com/garyjia/brokerage-backoffice/pkg/database"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080},
		Database: config.DatabaseConfig{Path: database.MemoryPath},
		Notification: config.NotificationConfig{
			AdminRecipients:   []string{"ou_admin"},
			ReminderThreshold: 50,
			StaleDays:         7,
			DeadlineAlertDays: 7,
			ReminderCron:      "0 9 * * *",
			Timezone:          "Asia/Tokyo",
		},
	}
}

func TestNewContainer_RequiresDeps(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(testConfig(), nil)
	assert.Error(t, err)
}

func TestContainer_Lifecycle(t *testing.T) {
	c, err := NewContainer(testConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.False(t, c.Ready())

	require.NoError(t, c.Start())
	assert.True(t, c.Ready())
	assert.Error(t, c.Start())

	health := c.Health()
	assert.True(t, health.Overall)
	assert.True(t, health.Components["database"].Healthy)
	assert.NotEmpty(t, health.Components["delivery"].Message)

	ctx := context.Background()
	cl, err := c.Services().Checklist.Get(ctx, "tx-100", checklist.TypeSeller)
	require.NoError(t, err)
	assert.Len(t, cl.Items, 13)

	applied, err := c.Migrator().Up()
	require.NoError(t, err)
	assert.Equal(t, 0, applied)

	assert.NotNil(t, c.Scheduler())
	assert.Equal(t, ".xlsx", c.Exporter().FileExtension())

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start())
}

func TestServiceLogger_Fields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewServiceLogger(zap.New(core))

	l.Info("saved", "project_id", "p-1", "changed", true)
	l.Error("failed", "error", errors.New("boom"), 42, "ignored")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "p-1", entries[0].ContextMap()["project_id"])
	assert.Equal(t, true, entries[0].ContextMap()["changed"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
	assert.Len(t, entries[1].Context, 1)
}
