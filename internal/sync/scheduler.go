package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/healthzones/internal/providers"

	log "github.com/sirupsen/logrus"
)

type syncRunner interface {
	Run(ctx context.Context, weeks int) (*Result, error)
}

type tokensRefresher interface {
	RefreshAll(ctx context.Context) map[providers.Name]string
}

// Scheduler runs the daily sync and the periodic token refresh until its context is done.
type Scheduler struct {
	syncer          syncRunner
	tokens          tokensRefresher
	dailyAt         string
	weeks           int
	refreshInterval time.Duration
	now             func() time.Time
}

func NewScheduler(
	syncer syncRunner,
	tokens tokensRefresher,
	dailyAt string,
	weeks int,
	refreshInterval time.Duration,
) (*Scheduler, error) {
	if _, _, err := parseTimeOfDay(dailyAt); err != nil {
		return nil, err
	}
	return &Scheduler{
		syncer:          syncer,
		tokens:          tokens,
		dailyAt:         dailyAt,
		weeks:           weeks,
		refreshInterval: refreshInterval,
		now:             time.Now,
	}, nil
}

func parseTimeOfDay(timeOfDay string) (int, int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(timeOfDay, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q (expected HH:MM)", timeOfDay)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time of day %q (expected HH:MM)", timeOfDay)
	}
	return hour, minute, nil
}

// NextRunTime returns the next occurrence of timeOfDay (HH:MM) after now, in now's location.
func NextRunTime(now time.Time, timeOfDay string) (time.Time, error) {
	hour, minute, err := parseTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}

	todayRun := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if now.Before(todayRun) {
		return todayRun, nil
	}
	return todayRun.AddDate(0, 0, 1), nil
}

// Start blocks until ctx is done. A zero refresh interval disables token refreshes.
func (s *Scheduler) Start(ctx context.Context) {
	var refreshTick <-chan time.Time
	if s.refreshInterval > 0 && s.tokens != nil {
		ticker := time.NewTicker(s.refreshInterval)
		defer ticker.Stop()
		refreshTick = ticker.C
	}

	for {
		// dailyAt was validated in NewScheduler
		now := s.now()
		nextRun, _ := NextRunTime(now, s.dailyAt)
		log.Debugf("next sync scheduled for %s", nextRun.Format(time.DateTime))
		timer := time.NewTimer(nextRun.Sub(now))

	wait:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				log.Debugln("sync scheduler stopped")
				return
			case <-refreshTick:
				results := s.tokens.RefreshAll(ctx)
				log.Debugf("scheduled token refresh: %v", results)
			case <-timer.C:
				break wait
			}
		}

		if _, err := s.syncer.Run(ctx, s.weeks); err != nil {
			log.Errorf("scheduled sync: %s", err)
		}
	}
}
