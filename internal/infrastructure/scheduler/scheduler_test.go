package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockReminder struct {
	calls      int
	alertCalls int
	at         []time.Time
	sent       int
	err        error
	alertErr   error
}

func (m *mockReminder) SendIncompleteReminders(ctx context.Context, now time.Time) (int, error) {
	m.calls++
	m.at = append(m.at, now)
	return m.sent, m.err
}

func (m *mockReminder) SendAgreementDeadlineAlerts(ctx context.Context, now time.Time) (int, error) {
	m.alertCalls++
	m.at = append(m.at, now)
	return m.sent, m.alertErr
}

func TestNew(t *testing.T) {
	t.Run("default spec", func(t *testing.T) {
		s, err := New(Config{}, &mockReminder{}, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, DefaultReminderSpec, s.spec)
		assert.Equal(t, time.Local, s.location)
	})

	t.Run("descriptor spec", func(t *testing.T) {
		_, err := New(Config{ReminderSpec: "@daily"}, &mockReminder{}, zap.NewNop())
		assert.NoError(t, err)
	})

	t.Run("invalid spec", func(t *testing.T) {
		_, err := New(Config{ReminderSpec: "every morning"}, &mockReminder{}, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestScheduler_RunOnce(t *testing.T) {
	fixed := time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		r := &mockReminder{sent: 2}
		s, err := New(Config{}, r, zap.NewNop())
		require.NoError(t, err)
		s.now = func() time.Time { return fixed }

		s.RunOnce(context.Background())

		assert.Equal(t, 1, r.calls)
		assert.Equal(t, 1, r.alertCalls)
		assert.Equal(t, []time.Time{fixed, fixed}, r.at)
	})

	t.Run("failure is logged not raised", func(t *testing.T) {
		r := &mockReminder{err: errors.New("db down")}
		s, err := New(Config{}, r, zap.NewNop())
		require.NoError(t, err)

		assert.NotPanics(t, func() { s.RunOnce(context.Background()) })
		assert.Equal(t, 1, r.calls)
		assert.Equal(t, 1, r.alertCalls)
	})

	t.Run("alert failure is logged", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		r := &mockReminder{alertErr: errors.New("db down")}
		s, err := New(Config{}, r, zap.New(core))
		require.NoError(t, err)

		s.RunOnce(context.Background())

		failed := logs.FilterMessage("Scheduled job failed").All()
		require.Len(t, failed, 1)
		assert.Equal(t, "deadline_alert", failed[0].ContextMap()["job"])
		assert.Len(t, logs.FilterMessage("Scheduled job finished").All(), 1)
	})
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	r := &mockReminder{}
	s, err := New(Config{ReminderSpec: "0 0 1 1 *", Location: time.UTC}, r, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, 0, r.calls)
}
