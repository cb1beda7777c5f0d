package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/member-ledger/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingService struct {
	name    string
	stopped atomic.Bool
}

func (s *blockingService) Name() string { return s.name }

func (s *blockingService) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (s *blockingService) Stop(context.Context) error {
	s.stopped.Store(true)
	return nil
}

type failingService struct{}

func (failingService) Name() string { return "failing" }
func (failingService) Start(context.Context) error { return errors.New("listen failed") }
func (failingService) Stop(context.Context) error { return nil }

func TestRunnerStopsAllServicesOnCancel(t *testing.T) {
	svc := &blockingService{name: "blocking"}
	runner := NewRunner(svc)
	var cleaned atomic.Bool
	runner.onStop = func() { cleaned.Store(true) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx, time.Second, nil) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
	assert.True(t, svc.stopped.Load())
	assert.True(t, cleaned.Load())
}

func TestRunnerReturnsServiceError(t *testing.T) {
	other := &blockingService{name: "other"}
	runner := NewRunner(failingService{}, other)

	err := runner.Run(context.Background(), time.Second, nil)
	require.EqualError(t, err, "listen failed")
	assert.True(t, other.stopped.Load())
}

func TestBuildRunnerRejectsUnknownMode(t *testing.T) {
	_, err := BuildRunner(&config.Config{}, "batch")
	require.Error(t, err)

	_, err = BuildRunner(nil, ModeAll)
	require.Error(t, err)
}

func TestNormalizeOptionsDefaults(t *testing.T) {
	opts := normalizeOptions(Options{})
	assert.Equal(t, ModeAll, opts.Mode)
	assert.Equal(t, 10*time.Second, opts.ShutdownTimeout)
	assert.NotNil(t, opts.Logger)
}
