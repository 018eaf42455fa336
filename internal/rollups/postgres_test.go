//go:build integration_test || all_tests

package rollups

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/2beens/healthzones/internal/aggregation"
	"github.com/2beens/healthzones/internal/db"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPgRepoSetup(t *testing.T) (*PgRepo, func()) {
	t.Helper()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	t.Logf("using postres host: %s", host)

	dbPool, err := db.NewDBPool(timeoutCtx, db.NewDBPoolParams{
		DBHost: host,
		DBPort: "5432",
		DBName: "healthzones",
	})
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema(timeoutCtx, dbPool))

	for _, table := range []string{"daily_records", "weekly_records", "sync_log"} {
		_, err := dbPool.Exec(timeoutCtx, "DELETE FROM "+table)
		require.NoError(t, err)
	}

	return NewPgRepo(dbPool), func() {
		dbPool.Close()
	}
}

func TestPgRepo_DailyUpsertAndRange(t *testing.T) {
	repo, shutdown := testPgRepoSetup(t)
	defer shutdown()
	ctx := context.Background()

	days := []aggregation.DailyRecord{
		{
			Date:           "2025-06-02",
			ReadinessScore: ptr(77),
			SleepScore:     ptr(80),
			Steps:          ptr(10400),
			MetMinutes:     ptr(210.5),
			Zone:           aggregation.ZoneSlightlyHigh,
			Trend:          aggregation.TrendUp,
		},
		{
			Date:          "2025-06-03",
			RecoveryScore: ptr(35),
			Strain:        ptr(15.1),
			Kilojoule:     ptr(11900.0),
			Zone:          aggregation.ZoneRecoveryState,
			Trend:         aggregation.TrendFlat,
		},
	}
	require.NoError(t, repo.UpsertDaily(ctx, days))

	got, err := repo.DailyRange(ctx, "2025-06-01", "2025-06-30")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, days, got)

	updated := days[0]
	updated.ReadinessScore = nil
	updated.Zone = aggregation.ZoneOptimal
	require.NoError(t, repo.UpsertDaily(ctx, []aggregation.DailyRecord{updated}))

	got, err = repo.DailyRange(ctx, "2025-06-02", "2025-06-02")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].ReadinessScore)
	assert.Equal(t, aggregation.ZoneOptimal, got[0].Zone)

	got, err = repo.DailyRange(ctx, "2025-07-01", "2025-07-31")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPgRepo_WeeklyLatest(t *testing.T) {
	repo, shutdown := testPgRepoSetup(t)
	defer shutdown()
	ctx := context.Background()

	weeks := []aggregation.WeeklyRecord{
		{
			Key:             "2025-W22",
			WeekNumber:      22,
			StartDate:       "2025-05-25",
			EndDate:         "2025-05-31",
			DayCount:        7,
			AvgReadiness:    ptr(79),
			TotalMetMinutes: ptr(1220.0),
			Zone:            aggregation.ZoneOptimal,
			Trend:           aggregation.TrendFlat,
		},
		{
			Key:         "2025-W23",
			WeekNumber:  23,
			StartDate:   "2025-06-01",
			EndDate:     "2025-06-07",
			DayCount:    2,
			TotalStrain: ptr(27.5),
			Zone:        aggregation.ZoneHighLoad,
			Trend:       aggregation.TrendUp,
		},
	}
	require.NoError(t, repo.UpsertWeekly(ctx, weeks))

	got, err := repo.WeeklyLatest(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, weeks[1], got[0])

	// re-sync of the running week replaces it
	weeks[1].DayCount = 3
	weeks[1].Zone = aggregation.ZoneCritical
	require.NoError(t, repo.UpsertWeekly(ctx, weeks[1:]))

	got, err = repo.WeeklyLatest(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].DayCount)
	assert.Equal(t, aggregation.ZoneCritical, got[0].Zone)
	assert.Equal(t, weeks[0], got[1])
}

func TestPgRepo_SyncLog(t *testing.T) {
	repo, shutdown := testPgRepoSetup(t)
	defer shutdown()
	ctx := context.Background()

	_, err := repo.LastSync(ctx)
	assert.ErrorIs(t, err, ErrSyncNotFound)

	_, err = repo.StartSync(ctx, "oura", "06/01/2025", "2025-06-07")
	assert.Error(t, err)

	id, err := repo.StartSync(ctx, "oura,whoop", "2025-03-16", "2025-06-07")
	require.NoError(t, err)

	run, err := repo.LastSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)
	assert.Equal(t, SyncRunning, run.Status)
	assert.Equal(t, "2025-03-16", run.StartDate)
	assert.Equal(t, "2025-06-07", run.EndDate)
	assert.Nil(t, run.FinishedAt)

	require.NoError(t, repo.FinishSync(ctx, id, SyncFailed, 0, errors.New("no provider data")))
	run, err = repo.LastSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncFailed, run.Status)
	assert.Equal(t, "no provider data", run.Error)
	assert.NotNil(t, run.FinishedAt)

	assert.ErrorIs(t, repo.FinishSync(ctx, uuid.New(), SyncSuccess, 1, nil), ErrSyncNotFound)
}
