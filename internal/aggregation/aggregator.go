package aggregation

import "time"

// Aggregator merges provider data into daily and weekly records.
// It holds no mutable state and is safe for concurrent use.
type Aggregator struct {
	thresholds Thresholds
}

func NewAggregator(thresholds Thresholds) *Aggregator {
	if thresholds.IsZero() {
		thresholds = DefaultThresholds()
	}
	return &Aggregator{
		thresholds: thresholds,
	}
}

func (a *Aggregator) Thresholds() Thresholds {
	return a.thresholds
}

// Aggregate runs the full pipeline for the inclusive date range [start, end].
// Either dataset may be nil.
func (a *Aggregator) Aggregate(oura *OuraData, whoop *WhoopData, start, end time.Time) []Row {
	days := a.DailyRecords(oura, whoop, start, end)
	if len(days) == 0 {
		return []Row{}
	}
	return a.RowsFromDays(days)
}

// RowsFromDays buckets already aggregated days, applies trends and expands the display rows.
func (a *Aggregator) RowsFromDays(days []DailyRecord) []Row {
	weeks := a.Weeks(days)
	ApplyTrends(weeks)
	return ExpandRows(weeks)
}

// DailyRecords produces one record per date in [start, end], oldest first.
func (a *Aggregator) DailyRecords(oura *OuraData, whoop *WhoopData, start, end time.Time) []DailyRecord {
	dates := DateRange(start, end)
	if len(dates) == 0 {
		return nil
	}

	idx := buildIndex(oura, whoop)
	records := make([]DailyRecord, 0, len(dates))
	for _, date := range dates {
		records = append(records, a.AggregateDay(date, idx.inputs(date)))
	}
	return records
}

// DateRange lists every calendar date from start to end inclusive.
func DateRange(start, end time.Time) []string {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if from.After(to) {
		return nil
	}

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates
}

type dateIndex struct {
	ouraReadiness map[string]*OuraReadiness
	ouraSleep     map[string]*OuraSleep
	ouraActivity  map[string]*OuraActivity
	whoopCycle    map[string]*WhoopCycle
	whoopRecovery map[string]*WhoopRecovery
	whoopSleep    map[string]*WhoopSleep
}

// buildIndex keys every provider record by the date it belongs to.
// Band recovery is scored on waking, so it lands on the day after its cycle started.
// When several records share a date, the later one in the input wins.
func buildIndex(oura *OuraData, whoop *WhoopData) dateIndex {
	idx := dateIndex{
		ouraReadiness: map[string]*OuraReadiness{},
		ouraSleep:     map[string]*OuraSleep{},
		ouraActivity:  map[string]*OuraActivity{},
		whoopCycle:    map[string]*WhoopCycle{},
		whoopRecovery: map[string]*WhoopRecovery{},
		whoopSleep:    map[string]*WhoopSleep{},
	}

	if oura != nil {
		for i := range oura.Readiness {
			idx.ouraReadiness[oura.Readiness[i].Day] = &oura.Readiness[i]
		}
		for i := range oura.Sleep {
			idx.ouraSleep[oura.Sleep[i].Day] = &oura.Sleep[i]
		}
		for i := range oura.Activity {
			idx.ouraActivity[oura.Activity[i].Day] = &oura.Activity[i]
		}
	}

	if whoop == nil {
		return idx
	}

	recoveryByCycle := make(map[int64]*WhoopRecovery, len(whoop.Recovery))
	for i := range whoop.Recovery {
		recoveryByCycle[whoop.Recovery[i].CycleID] = &whoop.Recovery[i]
	}
	for i := range whoop.Cycles {
		cycle := &whoop.Cycles[i]
		idx.whoopCycle[cycle.StartDate] = cycle

		recovery, ok := recoveryByCycle[cycle.ID]
		if !ok {
			continue
		}
		cycleDay, err := time.Parse(DateLayout, cycle.StartDate)
		if err != nil {
			continue
		}
		idx.whoopRecovery[cycleDay.AddDate(0, 0, 1).Format(DateLayout)] = recovery
	}
	for i := range whoop.Sleep {
		idx.whoopSleep[whoop.Sleep[i].StartDate] = &whoop.Sleep[i]
	}

	return idx
}

func (idx dateIndex) inputs(date string) DayInputs {
	return DayInputs{
		OuraReadiness: idx.ouraReadiness[date],
		OuraSleep:     idx.ouraSleep[date],
		OuraActivity:  idx.ouraActivity[date],
		WhoopCycle:    idx.whoopCycle[date],
		WhoopRecovery: idx.whoopRecovery[date],
		WhoopSleep:    idx.whoopSleep[date],
	}
}
