package rollups

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/healthzones/internal/aggregation"
	"github.com/2beens/healthzones/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const (
	upsertDailySQL = `
		INSERT INTO daily_records (
			date, readiness_score, recovery_score, sleep_score, hrv, rhr,
			strain, steps, kilojoule, met_minutes, zone, trend, synced_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		ON CONFLICT (date) DO UPDATE SET
			readiness_score = excluded.readiness_score,
			recovery_score = excluded.recovery_score,
			sleep_score = excluded.sleep_score,
			hrv = excluded.hrv,
			rhr = excluded.rhr,
			strain = excluded.strain,
			steps = excluded.steps,
			kilojoule = excluded.kilojoule,
			met_minutes = excluded.met_minutes,
			zone = excluded.zone,
			trend = excluded.trend,
			synced_at = now(),
			updated_at = now();`

	upsertWeeklySQL = `
		INSERT INTO weekly_records (
			week_key, week_number, start_date, end_date, days_count,
			avg_readiness, avg_recovery, avg_sleep, avg_hrv, avg_rhr, avg_steps,
			total_strain, total_met_minutes, zone, trend, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now())
		ON CONFLICT (week_key) DO UPDATE SET
			week_number = excluded.week_number,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			days_count = excluded.days_count,
			avg_readiness = excluded.avg_readiness,
			avg_recovery = excluded.avg_recovery,
			avg_sleep = excluded.avg_sleep,
			avg_hrv = excluded.avg_hrv,
			avg_rhr = excluded.avg_rhr,
			avg_steps = excluded.avg_steps,
			total_strain = excluded.total_strain,
			total_met_minutes = excluded.total_met_minutes,
			zone = excluded.zone,
			trend = excluded.trend,
			updated_at = now();`
)

type PgRepo struct {
	db *pgxpool.Pool
}

var _ Repo = (*PgRepo)(nil)

func NewPgRepo(db *pgxpool.Pool) *PgRepo {
	return &PgRepo{
		db: db,
	}
}

func (r *PgRepo) UpsertDaily(ctx context.Context, records []aggregation.DailyRecord) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "rollupsRepo.upsertDaily")
	span.SetAttributes(attribute.Int("records", len(records)))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		date, err := parseDate(rec.Date)
		if err != nil {
			return fmt.Errorf("daily record %q: %w", rec.Date, err)
		}
		batch.Queue(
			upsertDailySQL,
			date, rec.ReadinessScore, rec.RecoveryScore, rec.SleepScore, rec.HRV, rec.RHR,
			rec.Strain, rec.Steps, rec.Kilojoule, rec.MetMinutes, string(rec.Zone), string(rec.Trend),
		)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert daily records: %w", err)
	}
	return nil
}

func (r *PgRepo) UpsertWeekly(ctx context.Context, weeks []aggregation.WeeklyRecord) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "rollupsRepo.upsertWeekly")
	span.SetAttributes(attribute.Int("weeks", len(weeks)))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if len(weeks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, w := range weeks {
		start, err := parseDate(w.StartDate)
		if err != nil {
			return fmt.Errorf("week %s start: %w", w.Key, err)
		}
		end, err := parseDate(w.EndDate)
		if err != nil {
			return fmt.Errorf("week %s end: %w", w.Key, err)
		}
		batch.Queue(
			upsertWeeklySQL,
			w.Key, w.WeekNumber, start, end, w.DayCount,
			w.AvgReadiness, w.AvgRecovery, w.AvgSleep, w.AvgHRV, w.AvgRHR, w.AvgSteps,
			w.TotalStrain, w.TotalMetMinutes, string(w.Zone), string(w.Trend),
		)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert weekly records: %w", err)
	}
	return nil
}

func (r *PgRepo) DailyRange(ctx context.Context, start, end string) (_ []aggregation.DailyRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "rollupsRepo.dailyRange")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	startDate, err := parseDate(start)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT date, readiness_score, recovery_score, sleep_score, hrv, rhr,
				strain, steps, kilojoule, met_minutes, zone, trend
			FROM daily_records
			WHERE date BETWEEN $1 AND $2
			ORDER BY date;`,
		startDate, endDate,
	)
	if err != nil {
		return nil, fmt.Errorf("query daily records: %w", err)
	}
	defer rows.Close()

	var records []aggregation.DailyRecord
	for rows.Next() {
		var (
			rec         aggregation.DailyRecord
			date        time.Time
			zone, trend string
		)
		if err := rows.Scan(
			&date, &rec.ReadinessScore, &rec.RecoveryScore, &rec.SleepScore, &rec.HRV, &rec.RHR,
			&rec.Strain, &rec.Steps, &rec.Kilojoule, &rec.MetMinutes, &zone, &trend,
		); err != nil {
			return nil, fmt.Errorf("scan daily record: %w", err)
		}
		rec.Date = date.Format(aggregation.DateLayout)
		rec.Zone = aggregation.Zone(zone)
		rec.Trend = aggregation.Trend(trend)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *PgRepo) WeeklyLatest(ctx context.Context, limit int) (_ []aggregation.WeeklyRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "rollupsRepo.weeklyLatest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT week_key, week_number, start_date, end_date, days_count,
				avg_readiness, avg_recovery, avg_sleep, avg_hrv, avg_rhr, avg_steps,
				total_strain, total_met_minutes, zone, trend
			FROM weekly_records
			ORDER BY start_date DESC
			LIMIT $1;`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query weekly records: %w", err)
	}
	defer rows.Close()

	var weeks []aggregation.WeeklyRecord
	for rows.Next() {
		var (
			w           aggregation.WeeklyRecord
			start, end  time.Time
			zone, trend string
		)
		if err := rows.Scan(
			&w.Key, &w.WeekNumber, &start, &end, &w.DayCount,
			&w.AvgReadiness, &w.AvgRecovery, &w.AvgSleep, &w.AvgHRV, &w.AvgRHR, &w.AvgSteps,
			&w.TotalStrain, &w.TotalMetMinutes, &zone, &trend,
		); err != nil {
			return nil, fmt.Errorf("scan weekly record: %w", err)
		}
		w.StartDate = start.Format(aggregation.DateLayout)
		w.EndDate = end.Format(aggregation.DateLayout)
		w.Zone = aggregation.Zone(zone)
		w.Trend = aggregation.Trend(trend)
		weeks = append(weeks, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return weeks, nil
}

func (r *PgRepo) StartSync(ctx context.Context, source, start, end string) (uuid.UUID, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return uuid.Nil, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	if _, err := r.db.Exec(
		ctx,
		`INSERT INTO sync_log (id, source, start_date, end_date, status, started_at) VALUES ($1, $2, $3, $4, $5, now());`,
		id, source, startDate, endDate, string(SyncRunning),
	); err != nil {
		return uuid.Nil, fmt.Errorf("start sync log: %w", err)
	}
	return id, nil
}

func (r *PgRepo) FinishSync(ctx context.Context, id uuid.UUID, status SyncStatus, records int, syncErr error) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE sync_log SET status = $2, records = $3, error = $4, finished_at = now() WHERE id = $1;`,
		id, string(status), records, errString(syncErr),
	)
	if err != nil {
		return fmt.Errorf("finish sync log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSyncNotFound
	}
	return nil
}

func (r *PgRepo) LastSync(ctx context.Context) (*SyncRun, error) {
	var (
		run        SyncRun
		start, end time.Time
		status     string
		syncErr    *string
	)
	err := r.db.QueryRow(
		ctx,
		`
			SELECT id, source, start_date, end_date, status, records, error, started_at, finished_at
			FROM sync_log
			ORDER BY started_at DESC
			LIMIT 1;`,
	).Scan(&run.ID, &run.Source, &start, &end, &status, &run.Records, &syncErr, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSyncNotFound
		}
		return nil, fmt.Errorf("get last sync: %w", err)
	}

	run.StartDate = start.Format(aggregation.DateLayout)
	run.EndDate = end.Format(aggregation.DateLayout)
	run.Status = SyncStatus(status)
	if syncErr != nil {
		run.Error = *syncErr
	}
	return &run, nil
}
