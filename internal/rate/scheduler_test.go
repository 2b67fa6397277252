package rate

import (
	"context"
	"testing"
	"time"

	"metalrates/internal/domain"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func idleFixture() *engineFixture {
	f := newEngineFixture()
	f.margins.On("GetAll", mock.Anything).Return(map[domain.Metal]float64{}, nil).Maybe()
	f.rates.On("GetAll", mock.Anything).Return(nil, nil).Maybe()
	return f
}

func TestNewScheduler_Constructs(t *testing.T) {
	s := NewScheduler(idleFixture().engine, 10*time.Second)
	require.NotNil(t, s)
	require.Nil(t, s.sched)
}

func TestScheduler_Shutdown_NoScheduler_ReturnsNil(t *testing.T) {
	s := NewScheduler(idleFixture().engine, 10*time.Second)
	require.NoError(t, s.Shutdown())
	require.Nil(t, s.sched)
}

func TestScheduler_Start_RunsFirstTickImmediately(t *testing.T) {
	f := idleFixture()
	s := NewScheduler(f.engine, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))

	require.Eventually(t, func() bool {
		_, ok := f.engine.Latest()
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	p, _ := f.engine.Latest()
	require.True(t, p.Estimated())
	require.NoError(t, s.Shutdown())
}

func TestScheduler_Start_And_ContextCancel_ShutsDown(t *testing.T) {
	s := NewScheduler(idleFixture().engine, 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	require.NotNil(t, s.sched)

	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.sched == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	require.Nil(t, s.sched, "expected scheduler to be shutdown after ctx cancel")
}

func TestScheduler_Shutdown_AfterStart_Idempotent(t *testing.T) {
	s := NewScheduler(idleFixture().engine, 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	require.NotNil(t, s.sched)

	require.NoError(t, s.Shutdown())
	require.Nil(t, s.sched)

	require.NoError(t, s.Shutdown())
}

func TestNewScheduler_UsesProvidedInterval(t *testing.T) {
	s := NewScheduler(idleFixture().engine, 42*time.Second)
	require.Equal(t, 42*time.Second, s.pollInterval)
}

func TestNewScheduler_DefaultsIntervalWhenInvalid(t *testing.T) {
	s := NewScheduler(idleFixture().engine, 0)
	require.Equal(t, 60*time.Second, s.pollInterval)
}
