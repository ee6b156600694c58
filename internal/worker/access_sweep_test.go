package worker_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursery/coursery/internal/worker"
)

// MockAccessExpirer is a mock implementation of AccessExpirer.
type MockAccessExpirer struct {
	mu      sync.Mutex
	expired int
	err     error
	lastNow time.Time
	calls   atomic.Int32
}

func NewMockAccessExpirer(expired int) *MockAccessExpirer {
	return &MockAccessExpirer{expired: expired}
}

func (m *MockAccessExpirer) ExpireDue(_ context.Context, now time.Time) (int, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastNow = now
	if m.err != nil {
		return 0, m.err
	}
	return m.expired, nil
}

func (m *MockAccessExpirer) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockAccessExpirer) LastNow() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastNow
}

func TestNewAccessSweepWorker(t *testing.T) {
	t.Run("creates worker with provided config", func(t *testing.T) {
		lifecycle := NewMockAccessExpirer(0)
		config := worker.AccessSweepConfig{
			Interval: 30 * time.Second,
			Enabled:  true,
		}

		w := worker.NewAccessSweepWorker(lifecycle, slog.Default(), config)

		require.NotNil(t, w)
	})

	t.Run("creates worker with nil logger", func(t *testing.T) {
		lifecycle := NewMockAccessExpirer(0)

		w := worker.NewAccessSweepWorker(lifecycle, nil, worker.DefaultAccessSweepConfig())

		require.NotNil(t, w)
	})
}

func TestDefaultAccessSweepConfig(t *testing.T) {
	config := worker.DefaultAccessSweepConfig()

	assert.Equal(t, 1*time.Minute, config.Interval)
	assert.True(t, config.Enabled)
}

func TestAccessSweepWorker_SweepOnce(t *testing.T) {
	t.Run("returns the number of expired records", func(t *testing.T) {
		lifecycle := NewMockAccessExpirer(3)
		w := worker.NewAccessSweepWorker(lifecycle, slog.Default(), worker.DefaultAccessSweepConfig())

		before := time.Now()
		expired, err := w.SweepOnce(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 3, expired)
		assert.Equal(t, int32(1), lifecycle.calls.Load())

		// The sweep passes the current time as the expiry cutoff.
		assert.False(t, lifecycle.LastNow().Before(before))
		assert.False(t, lifecycle.LastNow().After(time.Now()))
	})

	t.Run("propagates sweep errors", func(t *testing.T) {
		lifecycle := NewMockAccessExpirer(0)
		lifecycle.SetError(errors.New("repository unavailable"))

		w := worker.NewAccessSweepWorker(lifecycle, slog.Default(), worker.DefaultAccessSweepConfig())

		_, err := w.SweepOnce(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "repository unavailable")
	})
}

func TestAccessSweepWorker_Run_DisabledWorker(t *testing.T) {
	lifecycle := NewMockAccessExpirer(0)
	config := worker.AccessSweepConfig{
		Interval: time.Millisecond,
		Enabled:  false,
	}

	w := worker.NewAccessSweepWorker(lifecycle, slog.Default(), config)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := w.Run(ctx)

	// Returns nil immediately when disabled
	require.NoError(t, err)
	assert.Equal(t, int32(0), lifecycle.calls.Load())
}

func TestAccessSweepWorker_Run_SweepsImmediatelyOnStart(t *testing.T) {
	lifecycle := NewMockAccessExpirer(0)
	config := worker.AccessSweepConfig{
		Interval: time.Hour, // Long interval so only the startup sweep runs
		Enabled:  true,
	}

	w := worker.NewAccessSweepWorker(lifecycle, slog.Default(), config)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	// Let the startup sweep complete
	time.Sleep(50 * time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}

	assert.Equal(t, int32(1), lifecycle.calls.Load())
}

func TestAccessSweepWorker_Run_SweepsOnInterval(t *testing.T) {
	lifecycle := NewMockAccessExpirer(1)
	config := worker.AccessSweepConfig{
		Interval: 10 * time.Millisecond,
		Enabled:  true,
	}

	w := worker.NewAccessSweepWorker(lifecycle, slog.Default(), config)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}

	// Startup sweep plus at least one tick
	assert.GreaterOrEqual(t, lifecycle.calls.Load(), int32(2))
}

func TestAccessSweepWorker_Run_ContinuesAfterFailedSweep(t *testing.T) {
	lifecycle := NewMockAccessExpirer(0)
	lifecycle.SetError(errors.New("repository unavailable"))

	config := worker.AccessSweepConfig{
		Interval: 10 * time.Millisecond,
		Enabled:  true,
	}

	w := worker.NewAccessSweepWorker(lifecycle, slog.Default(), config)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}

	// Failed sweeps are logged, not fatal; the loop keeps ticking
	assert.GreaterOrEqual(t, lifecycle.calls.Load(), int32(2))
}
