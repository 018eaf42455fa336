package rollups

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/healthzones/internal/aggregation"

	"github.com/google/uuid"
)

var ErrSyncNotFound = errors.New("sync run not found")

type SyncStatus string

const (
	SyncRunning SyncStatus = "running"
	SyncSuccess SyncStatus = "success"
	// SyncPartial means at least one provider failed but rows were still written.
	SyncPartial SyncStatus = "partial"
	SyncFailed  SyncStatus = "failed"
)

type SyncRun struct {
	ID         uuid.UUID  `json:"id"`
	Source     string     `json:"source"`
	StartDate  string     `json:"start_date"`
	EndDate    string     `json:"end_date"`
	Status     SyncStatus `json:"status"`
	Records    int        `json:"records"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Repo persists the aggregated rollups and the sync history.
type Repo interface {
	UpsertDaily(ctx context.Context, records []aggregation.DailyRecord) error
	UpsertWeekly(ctx context.Context, weeks []aggregation.WeeklyRecord) error
	// DailyRange returns the stored days in [start, end], oldest first.
	DailyRange(ctx context.Context, start, end string) ([]aggregation.DailyRecord, error)
	// WeeklyLatest returns up to limit stored weeks, newest first.
	WeeklyLatest(ctx context.Context, limit int) ([]aggregation.WeeklyRecord, error)
	StartSync(ctx context.Context, source, start, end string) (uuid.UUID, error)
	FinishSync(ctx context.Context, id uuid.UUID, status SyncStatus, records int, syncErr error) error
	LastSync(ctx context.Context) (*SyncRun, error)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(aggregation.DateLayout, s)
}

func errString(err error) *string {
	if err == nil {
		return nil
	}
	s := err.Error()
	return &s
}
