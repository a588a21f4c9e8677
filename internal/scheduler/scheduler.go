package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/config"

	"github.com/rs/zerolog"
)

const defaultRetryDelay = 30 * time.Second

// CycleFunc runs one automated cycle. cycle starts at 1.
type CycleFunc func(ctx context.Context, cycle int) error

// Scheduler runs a CycleFunc immediately and then once per interval until
// the context is cancelled or Stop is called. A stopped scheduler cannot be
// restarted.
type Scheduler struct {
	interval      time.Duration
	retryAttempts int
	retryDelay    time.Duration
	runCycle      CycleFunc
	logger        zerolog.Logger
	stopChan      chan struct{}
	stopOnce      sync.Once
	mu            sync.Mutex
	isRunning     bool
	cycles        int
}

// NewScheduler creates a new Scheduler instance
func NewScheduler(cfg config.SchedulerConfig, run CycleFunc, logger zerolog.Logger) (*Scheduler, error) {
	if cfg.IntervalMinutes <= 0 {
		return nil, common.NewConfigurationError("scheduler_config", "interval_minutes", fmt.Sprintf("invalid interval: %d", cfg.IntervalMinutes))
	}
	if run == nil {
		return nil, errors.New("scheduler requires a cycle function")
	}
	return newScheduler(time.Duration(cfg.IntervalMinutes)*time.Minute, cfg.RetryAttempts, run, logger), nil
}

func newScheduler(interval time.Duration, retryAttempts int, run CycleFunc, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		interval:      interval,
		retryAttempts: retryAttempts,
		retryDelay:    defaultRetryDelay,
		runCycle:      run,
		logger:        logger.With().Str("module", "Scheduler").Logger(),
		stopChan:      make(chan struct{}),
	}
}

// Start blocks running cycles. Cancellation and Stop both end the loop
// without an error; any other context error is returned.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.setRunningState(true) {
		return fmt.Errorf("scheduler is already running")
	}
	defer s.setRunningState(false)

	s.logger.Info().Dur("interval", s.interval).Int("retry_attempts", s.retryAttempts).Msg("Scheduler started")

	for {
		if s.shouldStop(ctx) {
			return s.checkContextError(ctx)
		}

		s.executeCycleWithRetries(ctx)

		if s.waitForNextCycle(ctx) {
			return s.checkContextError(ctx)
		}
	}
}

// Stop ends the loop after the running cycle returns.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info().Msg("Stopping scheduler")
		close(s.stopChan)
	})
}

// Cycles reports how many cycles have been started.
func (s *Scheduler) Cycles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles
}

func (s *Scheduler) setRunningState(running bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if running && s.isRunning {
		return false
	}
	s.isRunning = running
	return true
}

func (s *Scheduler) nextCycle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles++
	return s.cycles
}

func (s *Scheduler) checkContextError(ctx context.Context) error {
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (s *Scheduler) shouldStop(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		s.logger.Info().Msg("Context cancelled, stopping scheduler")
		return true
	case <-s.stopChan:
		s.logger.Info().Msg("Stop signal received, stopping scheduler")
		return true
	default:
		return false
	}
}

func (s *Scheduler) executeCycleWithRetries(ctx context.Context) {
	cycle := s.nextCycle()
	cycleLogger := s.logger.With().Int("cycle", cycle).Logger()

	for attempt := 0; attempt <= s.retryAttempts; attempt++ {
		startTime := time.Now()
		err := s.runCycle(ctx, cycle)
		if err == nil {
			cycleLogger.Info().Dur("duration", time.Since(startTime)).Msg("Cycle completed")
			return
		}
		if common.IsContextError(err) || ctx.Err() != nil {
			cycleLogger.Info().Err(err).Msg("Cycle interrupted")
			return
		}

		cycleLogger.Error().Err(err).Int("attempt", attempt+1).Int("max_attempts", s.retryAttempts+1).Msg("Cycle failed")
		if attempt == s.retryAttempts {
			return
		}

		select {
		case <-time.After(s.retryDelay):
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		}
	}
}

// waitForNextCycle reports true when the wait was interrupted.
func (s *Scheduler) waitForNextCycle(ctx context.Context) bool {
	nextCycleTime := s.calculateNextCycleTime(time.Now())
	waitDuration := time.Until(nextCycleTime)
	s.logger.Info().
		Time("next_cycle", nextCycleTime).
		Dur("wait_duration", waitDuration).
		Msg("Waiting for next cycle")

	timer := time.NewTimer(waitDuration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return false
	case <-ctx.Done():
		return true
	case <-s.stopChan:
		return true
	}
}

func (s *Scheduler) calculateNextCycleTime(from time.Time) time.Time {
	return from.Add(s.interval)
}
