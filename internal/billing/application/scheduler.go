package application

import (
	"context"
	"log"
	"time"
)

// Scheduler fires the monthly billing run on a configured day of month
// at a configured HH:MM, UTC. The run's own idempotency guard makes a
// double fire harmless.
type Scheduler struct {
	service    *MonthlyRunService
	dayOfMonth int
	runAt      string
	logger     *log.Logger
}

// NewScheduler constructs a Scheduler.
func NewScheduler(service *MonthlyRunService, dayOfMonth int, runAt string, logger *log.Logger) *Scheduler {
	return &Scheduler{
		service:    service,
		dayOfMonth: dayOfMonth,
		runAt:      runAt,
		logger:     logger,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.service == nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !s.shouldRun(now.UTC()) {
				continue
			}
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) shouldRun(now time.Time) bool {
	if now.Day() != s.dayOfMonth {
		return false
	}
	hour, minute, err := parseRunAt(s.runAt)
	if err != nil {
		return false
	}
	return now.Hour() == hour && now.Minute() == minute
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.service.Run(ctx); err != nil && s.logger != nil {
		s.logger.Printf("billing schedule error: %v", err)
	}
}

func parseRunAt(value string) (int, int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}
