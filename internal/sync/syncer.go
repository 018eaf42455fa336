package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/healthzones/internal/aggregation"
	"github.com/2beens/healthzones/internal/rollups"
	"github.com/2beens/healthzones/internal/telemetry/metrics"
	"github.com/2beens/healthzones/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

const (
	DefaultWeeks = 12
	MaxWeeks     = 104
)

var ErrNoProviderData = errors.New("no provider returned data")

type Result struct {
	RunID       uuid.UUID          `json:"run_id"`
	StartDate   string             `json:"start_date"`
	EndDate     string             `json:"end_date"`
	DailyCount  int                `json:"daily_count"`
	WeeklyCount int                `json:"weekly_count"`
	Sources     Sources            `json:"sources"`
	Status      rollups.SyncStatus `json:"status"`
	Errors      []string           `json:"errors,omitempty"`
}

// Syncer fetches provider data, aggregates it and stores the rollups.
type Syncer struct {
	fetcher        *Fetcher
	aggregator     *aggregation.Aggregator
	repo           rollups.Repo
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewSyncer(
	fetcher *Fetcher,
	aggregator *aggregation.Aggregator,
	repo rollups.Repo,
	metricsManager *metrics.Manager,
) *Syncer {
	return &Syncer{
		fetcher:        fetcher,
		aggregator:     aggregator,
		repo:           repo,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

// ClampWeeks keeps a requested week count inside 1..MaxWeeks, using DefaultWeeks for non-positive values.
func ClampWeeks(weeks int) int {
	if weeks <= 0 {
		return DefaultWeeks
	}
	if weeks > MaxWeeks {
		return MaxWeeks
	}
	return weeks
}

// Range returns the inclusive date range covered by the given number of weeks, ending today.
// The start is moved back to its Sunday so the oldest week is never cut short.
func Range(now time.Time, weeks int) (time.Time, time.Time) {
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return aggregation.WeekStart(end.AddDate(0, 0, -7*weeks)), end
}

// Run syncs the last weeks of provider data into the rollups store. When only
// one provider fails, the run still stores what it got and reports partial.
func (s *Syncer) Run(ctx context.Context, weeks int) (_ *Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "syncer.run")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	began := time.Now()
	weeks = ClampWeeks(weeks)
	start, end := Range(s.now(), weeks)
	result := &Result{
		StartDate: start.Format(aggregation.DateLayout),
		EndDate:   end.Format(aggregation.DateLayout),
		Status:    rollups.SyncFailed,
	}
	span.SetAttributes(
		attribute.String("start", result.StartDate),
		attribute.String("end", result.EndDate),
	)

	runID, err := s.repo.StartSync(ctx, "oura,whoop", result.StartDate, result.EndDate)
	if err != nil {
		s.countRun(result.Status, began)
		return nil, fmt.Errorf("start sync: %w", err)
	}
	result.RunID = runID
	log.Debugf("sync %s: %s .. %s", runID, result.StartDate, result.EndDate)

	defer func() {
		records := result.DailyCount + result.WeeklyCount
		logErr := err
		if logErr == nil && len(result.Errors) > 0 {
			logErr = errors.New(strings.Join(result.Errors, "; "))
		}
		if finishErr := s.repo.FinishSync(context.WithoutCancel(ctx), runID, result.Status, records, logErr); finishErr != nil {
			log.Errorf("sync %s: finish log: %s", runID, finishErr)
		}
		s.countRun(result.Status, began)
	}()

	fetched, fetchErr := s.fetcher.Fetch(ctx, start, end)
	result.Sources = fetched.Sources
	for _, e := range multierr.Errors(fetchErr) {
		result.Errors = append(result.Errors, e.Error())
	}
	if !fetched.Sources.Any() {
		if fetchErr != nil {
			return result, fetchErr
		}
		return result, ErrNoProviderData
	}

	days := s.aggregator.DailyRecords(fetched.Oura, fetched.Whoop, start, end)
	if err := s.repo.UpsertDaily(ctx, days); err != nil {
		return result, fmt.Errorf("store daily records: %w", err)
	}
	result.DailyCount = len(days)

	weekly, err := s.storedWeeks(ctx, start, end)
	if err != nil {
		return result, err
	}
	if err := s.repo.UpsertWeekly(ctx, weekly); err != nil {
		return result, fmt.Errorf("store weekly records: %w", err)
	}
	result.WeeklyCount = len(weekly)

	result.Status = rollups.SyncSuccess
	if fetchErr != nil {
		result.Status = rollups.SyncPartial
	}

	log.Printf("sync %s: %s, %d days, %d weeks, sources %s", runID, result.Status, result.DailyCount, result.WeeklyCount, result.Sources)
	return result, nil
}

// storedWeeks rebuilds the weeks from start to end out of the stored days, so a
// week keeps the days earlier syncs stored for it. The week before start is read
// too, only to give the oldest week its trend.
func (s *Syncer) storedWeeks(ctx context.Context, start, end time.Time) ([]aggregation.WeeklyRecord, error) {
	from := aggregation.WeekStart(start).AddDate(0, 0, -7)
	days, err := s.repo.DailyRange(ctx, from.Format(aggregation.DateLayout), end.Format(aggregation.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("read daily records: %w", err)
	}

	weeks := s.aggregator.Weeks(days)
	aggregation.ApplyTrends(weeks)

	firstDay := aggregation.WeekStart(start).Format(aggregation.DateLayout)
	inRange := weeks[:0]
	for _, w := range weeks {
		if w.StartDate >= firstDay {
			inRange = append(inRange, w)
		}
	}
	return inRange, nil
}

func (s *Syncer) countRun(status rollups.SyncStatus, began time.Time) {
	if s.metricsManager == nil {
		return
	}
	s.metricsManager.CounterSyncRuns.WithLabelValues(string(status)).Inc()
	s.metricsManager.HistSyncDuration.Observe(time.Since(began).Seconds())
}
