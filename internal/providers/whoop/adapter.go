package whoop

import (
	"math"
	"strings"
	"time"

	"github.com/2beens/healthzones/internal/aggregation"
)

// Adapt maps the API records onto the aggregation input shape.
// Records that are not scored yet keep their dates but carry no metrics.
// Naps are skipped so they never replace the main sleep of a day.
func Adapt(cycles []Cycle, recovery []Recovery, sleep []Sleep) *aggregation.WhoopData {
	data := &aggregation.WhoopData{
		Cycles:   make([]aggregation.WhoopCycle, 0, len(cycles)),
		Recovery: make([]aggregation.WhoopRecovery, 0, len(recovery)),
		Sleep:    make([]aggregation.WhoopSleep, 0, len(sleep)),
	}

	for _, c := range cycles {
		day, ok := datePart(c.Start)
		if !ok {
			continue
		}
		rec := aggregation.WhoopCycle{
			ID:        c.ID,
			StartDate: day,
		}
		if c.Score != nil {
			rec.Strain = c.Score.Strain
			rec.Kilojoule = c.Score.Kilojoule
		}
		data.Cycles = append(data.Cycles, rec)
	}

	for _, r := range recovery {
		rec := aggregation.WhoopRecovery{
			CycleID: r.CycleID,
		}
		if r.Score != nil {
			if r.Score.RecoveryScore != nil {
				score := int(math.Round(*r.Score.RecoveryScore))
				rec.RecoveryScore = &score
			}
			rec.HRV = r.Score.HRVRmssdMilli
			rec.RestingHeartRate = r.Score.RestingHeartRate
		}
		data.Recovery = append(data.Recovery, rec)
	}

	for _, s := range sleep {
		if s.Nap {
			continue
		}
		day, ok := datePart(s.Start)
		if !ok {
			continue
		}
		rec := aggregation.WhoopSleep{
			StartDate: day,
		}
		if s.Score != nil {
			rec.SleepPerformance = s.Score.SleepPerformancePercentage
		}
		data.Sleep = append(data.Sleep, rec)
	}

	return data
}

// datePart returns the UTC calendar date of an ISO timestamp.
func datePart(ts string) (string, bool) {
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t.UTC().Format(aggregation.DateLayout), true
	}
	if d, _, found := strings.Cut(ts, "T"); found && len(d) == len(aggregation.DateLayout) {
		return d, true
	}
	return "", false
}
