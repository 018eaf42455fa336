package aggregation

import (
	"fmt"
	"sort"
	"time"
)

const DateLayout = "2006-01-02"

// WeekNumber counts Sunday-started weeks from January 1st, the week holding Jan 1 being week 1.
// A leap year starting on Saturday ends on a Sunday, so December 31st of such a year
// (2000, 2028) is week 54. It is left unclamped so that week keeps a key of its own.
func WeekNumber(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	n := t.YearDay() + int(jan1.Weekday())
	return (n + 6) / 7
}

// WeekStart returns the Sunday on or before t.
func WeekStart(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// WeekKey identifies the week containing t. A week running from December into
// January belongs to the year its Sunday falls in.
func WeekKey(t time.Time) string {
	start := WeekStart(t)
	return fmt.Sprintf("%d-W%02d", start.Year(), WeekNumber(start))
}

// Weeks buckets daily records into Sunday-start weeks, newest week first.
// Days inside a week are sorted ascending. Records with unparsable dates are skipped.
func (a *Aggregator) Weeks(days []DailyRecord) []WeeklyRecord {
	buckets := make(map[string][]DailyRecord)
	for _, day := range days {
		d, err := time.Parse(DateLayout, day.Date)
		if err != nil {
			continue
		}
		start := WeekStart(d).Format(DateLayout)
		buckets[start] = append(buckets[start], day)
	}

	starts := make([]string, 0, len(buckets))
	for start := range buckets {
		starts = append(starts, start)
	}
	// ISO dates order correctly as strings
	sort.Sort(sort.Reverse(sort.StringSlice(starts)))

	weeks := make([]WeeklyRecord, 0, len(starts))
	for _, start := range starts {
		weeks = append(weeks, a.aggregateWeek(buckets[start]))
	}
	return weeks
}

func (a *Aggregator) aggregateWeek(days []DailyRecord) WeeklyRecord {
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})

	first, _ := time.Parse(DateLayout, days[0].Date)
	start := WeekStart(first)

	var readiness, recovery, sleep, hrv, rhr, steps []*int
	var strain, met []*float64
	for i := range days {
		readiness = append(readiness, days[i].ReadinessScore)
		recovery = append(recovery, days[i].RecoveryScore)
		sleep = append(sleep, days[i].SleepScore)
		hrv = append(hrv, days[i].HRV)
		rhr = append(rhr, days[i].RHR)
		steps = append(steps, days[i].Steps)
		strain = append(strain, days[i].Strain)
		met = append(met, days[i].MetMinutes)
	}

	w := WeeklyRecord{
		Key:             WeekKey(start),
		WeekNumber:      WeekNumber(start),
		StartDate:       days[0].Date,
		EndDate:         days[len(days)-1].Date,
		DayCount:        len(days),
		AvgReadiness:    avgInt(readiness),
		AvgRecovery:     avgInt(recovery),
		AvgSleep:        avgInt(sleep),
		AvgHRV:          avgInt(hrv),
		AvgRHR:          avgInt(rhr),
		AvgSteps:        avgInt(steps),
		TotalStrain:     sumFloat(strain),
		TotalMetMinutes: sumFloat(met),
		Trend:           TrendFlat,
		Days:            days,
	}
	w.Zone = a.thresholds.Classify(perDay(w.TotalMetMinutes, w.DayCount), w.AvgRecovery, perDay(w.TotalStrain, w.DayCount))

	return w
}

func perDay(total *float64, dayCount int) *float64 {
	if total == nil || dayCount == 0 {
		return nil
	}
	return ptr(*total / float64(dayCount))
}

// ExpandRows turns weeks into display rows. A complete week is one row; an
// incomplete week is a summary row followed by its days, newest first.
func ExpandRows(weeks []WeeklyRecord) []Row {
	rows := make([]Row, 0, len(weeks))
	for _, w := range weeks {
		if w.Complete() {
			rows = append(rows, weekRow(w, RowKindCompleteWeek))
			continue
		}

		rows = append(rows, weekRow(w, RowKindIncompleteWeekSummary))

		cumulative := make([]float64, len(w.Days))
		var running float64
		for i, day := range w.Days {
			if day.MetMinutes != nil {
				running += *day.MetMinutes
			}
			cumulative[i] = running
		}
		for i := len(w.Days) - 1; i >= 0; i-- {
			rows = append(rows, dayRow(w.Days[i], cumulative[i]))
		}
	}
	return rows
}

// StoredRows renders stored weeks, newest first, attaching each week's stored
// days so an incomplete week still expands into its day rows.
func StoredRows(weeks []WeeklyRecord, days []DailyRecord) []Row {
	byWeek := make(map[string][]DailyRecord, len(weeks))
	for _, day := range days {
		d, err := time.Parse(DateLayout, day.Date)
		if err != nil {
			continue
		}
		key := WeekKey(d)
		byWeek[key] = append(byWeek[key], day)
	}

	withDays := make([]WeeklyRecord, len(weeks))
	for i, w := range weeks {
		w.Days = byWeek[w.Key]
		sort.Slice(w.Days, func(a, b int) bool {
			return w.Days[a].Date < w.Days[b].Date
		})
		withDays[i] = w
	}
	return ExpandRows(withDays)
}

func weekRow(w WeeklyRecord, kind RowKind) Row {
	return Row{
		Week:            fmt.Sprintf("Week %d", w.WeekNumber),
		DateRange:       shortRange(w.StartDate, w.EndDate),
		StartDate:       w.StartDate,
		EndDate:         w.EndDate,
		DaysCount:       w.DayCount,
		AvgReadiness:    w.AvgReadiness,
		AvgRecovery:     w.AvgRecovery,
		AvgSleep:        w.AvgSleep,
		AvgHRV:          w.AvgHRV,
		AvgSteps:        w.AvgSteps,
		TotalStrain:     round1(w.TotalStrain),
		TotalMetMinutes: w.TotalMetMinutes,
		Zone:            w.Zone,
		Trend:           w.Trend,
		RowType:         kind,
	}
}

func dayRow(d DailyRecord, cumulative float64) Row {
	label, weekday := d.Date, ""
	if t, err := time.Parse(DateLayout, d.Date); err == nil {
		label = fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
		weekday = t.Weekday().String()[:3]
	}

	return Row{
		Week:                 label,
		DateRange:            weekday,
		StartDate:            d.Date,
		EndDate:              d.Date,
		DaysCount:            1,
		AvgReadiness:         d.ReadinessScore,
		AvgRecovery:          d.RecoveryScore,
		AvgSleep:             d.SleepScore,
		AvgHRV:               d.HRV,
		AvgSteps:             d.Steps,
		TotalStrain:          round1(d.Strain),
		TotalMetMinutes:      d.MetMinutes,
		CumulativeMetMinutes: ptr(cumulative),
		Zone:                 d.Zone,
		Trend:                TrendFlat,
		RowType:              RowKindDayDetail,
	}
}

// shortRange renders "MM-DD - MM-DD".
func shortRange(start, end string) string {
	if len(start) < 10 || len(end) < 10 {
		return start + " - " + end
	}
	return start[5:] + " - " + end[5:]
}
