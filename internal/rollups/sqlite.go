package rollups

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/healthzones/internal/aggregation"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// SQLiteRepo keeps the rollups in a local sqlite file, for offline CLI runs.
type SQLiteRepo struct {
	db  *sql.DB
	now func() time.Time
}

var _ Repo = (*SQLiteRepo)(nil)

func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// a single writer avoids SQLITE_BUSY on the local file
	db.SetMaxOpenConns(1)

	repo := &SQLiteRepo{db: db, now: time.Now}
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("apply sqlite schema: %w", err)
	}
	log.Debugln("sqlite schema ensured")
	return nil
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepo) timestamp() string {
	return r.now().UTC().Format(time.RFC3339)
}

func (r *SQLiteRepo) UpsertDaily(ctx context.Context, records []aggregation.DailyRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_records (
			date, readiness_score, recovery_score, sleep_score, hrv, rhr,
			strain, steps, kilojoule, met_minutes, zone, trend, synced_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
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
			synced_at = excluded.synced_at,
			updated_at = excluded.updated_at;`)
	if err != nil {
		return fmt.Errorf("prepare daily upsert: %w", err)
	}
	defer stmt.Close()

	now := r.timestamp()
	for _, rec := range records {
		if _, err := parseDate(rec.Date); err != nil {
			return fmt.Errorf("daily record %q: %w", rec.Date, err)
		}
		if _, err := stmt.ExecContext(
			ctx,
			rec.Date, rec.ReadinessScore, rec.RecoveryScore, rec.SleepScore, rec.HRV, rec.RHR,
			rec.Strain, rec.Steps, rec.Kilojoule, rec.MetMinutes, string(rec.Zone), string(rec.Trend), now, now,
		); err != nil {
			return fmt.Errorf("upsert daily record %s: %w", rec.Date, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepo) UpsertWeekly(ctx context.Context, weeks []aggregation.WeeklyRecord) error {
	if len(weeks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO weekly_records (
			week_key, week_number, start_date, end_date, days_count,
			avg_readiness, avg_recovery, avg_sleep, avg_hrv, avg_rhr, avg_steps,
			total_strain, total_met_minutes, zone, trend, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
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
			updated_at = excluded.updated_at;`)
	if err != nil {
		return fmt.Errorf("prepare weekly upsert: %w", err)
	}
	defer stmt.Close()

	now := r.timestamp()
	for _, w := range weeks {
		if _, err := stmt.ExecContext(
			ctx,
			w.Key, w.WeekNumber, w.StartDate, w.EndDate, w.DayCount,
			w.AvgReadiness, w.AvgRecovery, w.AvgSleep, w.AvgHRV, w.AvgRHR, w.AvgSteps,
			w.TotalStrain, w.TotalMetMinutes, string(w.Zone), string(w.Trend), now,
		); err != nil {
			return fmt.Errorf("upsert week %s: %w", w.Key, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepo) DailyRange(ctx context.Context, start, end string) ([]aggregation.DailyRecord, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`
			SELECT date, readiness_score, recovery_score, sleep_score, hrv, rhr,
				strain, steps, kilojoule, met_minutes, zone, trend
			FROM daily_records
			WHERE date BETWEEN ? AND ?
			ORDER BY date;`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("query daily records: %w", err)
	}
	defer rows.Close()

	var records []aggregation.DailyRecord
	for rows.Next() {
		var (
			rec         aggregation.DailyRecord
			zone, trend string
		)
		if err := rows.Scan(
			&rec.Date, &rec.ReadinessScore, &rec.RecoveryScore, &rec.SleepScore, &rec.HRV, &rec.RHR,
			&rec.Strain, &rec.Steps, &rec.Kilojoule, &rec.MetMinutes, &zone, &trend,
		); err != nil {
			return nil, fmt.Errorf("scan daily record: %w", err)
		}
		rec.Zone = aggregation.Zone(zone)
		rec.Trend = aggregation.Trend(trend)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *SQLiteRepo) WeeklyLatest(ctx context.Context, limit int) ([]aggregation.WeeklyRecord, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`
			SELECT week_key, week_number, start_date, end_date, days_count,
				avg_readiness, avg_recovery, avg_sleep, avg_hrv, avg_rhr, avg_steps,
				total_strain, total_met_minutes, zone, trend
			FROM weekly_records
			ORDER BY start_date DESC
			LIMIT ?;`,
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
			zone, trend string
		)
		if err := rows.Scan(
			&w.Key, &w.WeekNumber, &w.StartDate, &w.EndDate, &w.DayCount,
			&w.AvgReadiness, &w.AvgRecovery, &w.AvgSleep, &w.AvgHRV, &w.AvgRHR, &w.AvgSteps,
			&w.TotalStrain, &w.TotalMetMinutes, &zone, &trend,
		); err != nil {
			return nil, fmt.Errorf("scan weekly record: %w", err)
		}
		w.Zone = aggregation.Zone(zone)
		w.Trend = aggregation.Trend(trend)
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

func (r *SQLiteRepo) StartSync(ctx context.Context, source, start, end string) (uuid.UUID, error) {
	id := uuid.New()
	if _, err := r.db.ExecContext(
		ctx,
		`INSERT INTO sync_log (id, source, start_date, end_date, status, started_at) VALUES (?, ?, ?, ?, ?, ?);`,
		id.String(), source, start, end, string(SyncRunning), r.timestamp(),
	); err != nil {
		return uuid.Nil, fmt.Errorf("start sync log: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepo) FinishSync(ctx context.Context, id uuid.UUID, status SyncStatus, records int, syncErr error) error {
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE sync_log SET status = ?, records = ?, error = ?, finished_at = ? WHERE id = ?;`,
		string(status), records, errString(syncErr), r.timestamp(), id.String(),
	)
	if err != nil {
		return fmt.Errorf("finish sync log: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSyncNotFound
	}
	return nil
}

func (r *SQLiteRepo) LastSync(ctx context.Context) (*SyncRun, error) {
	var (
		run                   SyncRun
		id, status, startedAt string
		syncErr, finishedAt   *string
	)
	err := r.db.QueryRowContext(
		ctx,
		`
			SELECT id, source, start_date, end_date, status, records, error, started_at, finished_at
			FROM sync_log
			ORDER BY started_at DESC
			LIMIT 1;`,
	).Scan(&id, &run.Source, &run.StartDate, &run.EndDate, &status, &run.Records, &syncErr, &startedAt, &finishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSyncNotFound
		}
		return nil, fmt.Errorf("get last sync: %w", err)
	}

	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse sync id: %w", err)
	}
	if run.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return nil, fmt.Errorf("parse sync start: %w", err)
	}
	if finishedAt != nil {
		t, err := time.Parse(time.RFC3339, *finishedAt)
		if err != nil {
			return nil, fmt.Errorf("parse sync finish: %w", err)
		}
		run.FinishedAt = &t
	}
	run.Status = SyncStatus(status)
	if syncErr != nil {
		run.Error = *syncErr
	}
	return &run, nil
}
