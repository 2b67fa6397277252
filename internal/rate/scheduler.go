package rate

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultPollInterval = 60 * time.Second

type Scheduler struct {
	engine       *Engine
	pollInterval time.Duration
	// -----
	sched gocron.Scheduler
}

// Start registers the tick. Singleton mode with rescheduling means a tick that is
// still running when the next one is due causes that next run to be skipped,
// never run alongside it.
func (s *Scheduler) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.sched = scheduler

	job := func(jobCtx context.Context) {
		execID := uuid.NewString()
		started := time.Now()
		payload := s.engine.RunCycle(jobCtx)
		logrus.WithFields(logrus.Fields{
			"exec_id":  execID,
			"source":   payload.Source,
			"duration": time.Since(started).String(),
		}).Info("Rate tick completed")
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.pollInterval),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	scheduler.Start()

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", sdErr)
		}
	}()
	return nil
}

func (s *Scheduler) Shutdown() error {
	if s.sched == nil {
		return nil
	}
	err := s.sched.Shutdown()
	s.sched = nil
	return err
}

func NewScheduler(engine *Engine, pollInterval time.Duration) *Scheduler {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Scheduler{engine: engine, pollInterval: pollInterval}
}
