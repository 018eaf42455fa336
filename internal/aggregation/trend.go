package aggregation

const trendDelta = 5

// TrendBetween compares a recovery average against the previous period.
func TrendBetween(current, previous *int) Trend {
	if current == nil || previous == nil {
		return TrendFlat
	}
	switch diff := *current - *previous; {
	case diff > trendDelta:
		return TrendUp
	case diff < -trendDelta:
		return TrendDown
	default:
		return TrendFlat
	}
}

// ApplyTrends sets each week's trend against the next older week.
// Weeks must be ordered newest first; the oldest week stays flat.
func ApplyTrends(weeks []WeeklyRecord) {
	for i := range weeks {
		if i == len(weeks)-1 {
			weeks[i].Trend = TrendFlat
			continue
		}
		weeks[i].Trend = TrendBetween(weeks[i].AvgRecovery, weeks[i+1].AvgRecovery)
	}
}
