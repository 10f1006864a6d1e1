package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-giftminder/internal/config"
	"github.com/tartampluch/go-giftminder/internal/worker"
)

func TestValidateSpec(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{config.DefaultEvaluateCron, false},
		{config.DefaultDeliverCron, false},
		{"@hourly", false},
		{"@every 1m", false},
		{"", true},
		{"* * *", true},
		{"61 * * * *", true},
		{"0 0 0 * * *", true}, // seconds field not accepted
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			err := worker.ValidateSpec(tt.spec)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), config.ErrCronSpec)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunner_InvalidSpec(t *testing.T) {
	r := &worker.Runner{EvaluateSpec: "bogus", DeliverSpec: config.DefaultDeliverCron}
	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrCronSpec)
}

// TestRunner_RunsOnceAtStartAndStops verifies the initial cycle and that Run
// returns after cancellation.
func TestRunner_RunsOnceAtStartAndStops(t *testing.T) {
	var evaluated, delivered atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	r := &worker.Runner{
		EvaluateSpec: config.DefaultEvaluateCron,
		DeliverSpec:  config.DefaultDeliverCron,
		Evaluate: func(context.Context) error {
			evaluated.Add(1)
			return nil
		},
		Deliver: func(context.Context) error {
			delivered.Add(1)
			return errors.New("failures are logged, not fatal")
		},
		Location: time.UTC,
	}

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		return evaluated.Load() == 1 && delivered.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

// TestRunner_FollowsSchedule uses a one-second interval to observe ticks.
func TestRunner_FollowsSchedule(t *testing.T) {
	var evaluated atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &worker.Runner{
		EvaluateSpec: "@every 1s",
		DeliverSpec:  config.DefaultDeliverCron,
		Evaluate: func(context.Context) error {
			evaluated.Add(1)
			return nil
		},
	}

	go func() { _ = r.Run(ctx) }()

	require.Eventually(t, func() bool {
		return evaluated.Load() >= 2
	}, 5*time.Second, 50*time.Millisecond)
}

// TestRunner_SkipsOverlappingRuns checks a slow job is not stacked.
func TestRunner_SkipsOverlappingRuns(t *testing.T) {
	var running, maxRunning atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	r := &worker.Runner{
		EvaluateSpec: "@every 1s",
		DeliverSpec:  config.DefaultDeliverCron,
		Evaluate: func(ctx context.Context) error {
			n := running.Add(1)
			defer running.Add(-1)
			if n > maxRunning.Load() {
				maxRunning.Store(n)
			}
			select {
			case <-time.After(2500 * time.Millisecond):
			case <-ctx.Done():
			}
			return nil
		},
	}

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	time.Sleep(4 * time.Second)
	cancel()
	<-done

	assert.Equal(t, int32(1), maxRunning.Load())
}
