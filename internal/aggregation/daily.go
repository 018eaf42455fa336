package aggregation

// AggregateDay merges one date's provider records into a single DailyRecord.
// Any of the inputs may be nil; missing metrics stay nil.
func (a *Aggregator) AggregateDay(date string, in DayInputs) DailyRecord {
	rec := DailyRecord{
		Date:          date,
		RecoveryScore: resolveRecovery(in.WhoopRecovery, in.OuraReadiness),
		SleepScore:    resolveSleep(in.OuraSleep, in.WhoopSleep),
		HRV:           resolveHRV(in.WhoopRecovery, in.OuraReadiness),
		RHR:           resolveRHR(in.WhoopRecovery, in.OuraReadiness),
		Trend:         TrendFlat,
	}

	if in.OuraReadiness != nil {
		rec.ReadinessScore = in.OuraReadiness.Score
	}
	if in.OuraActivity != nil {
		rec.Steps = in.OuraActivity.Steps
	}
	if in.WhoopCycle != nil {
		rec.Strain = in.WhoopCycle.Strain
		rec.Kilojoule = in.WhoopCycle.Kilojoule
	}

	rec.MetMinutes = a.thresholds.MetMinutes(rec.Kilojoule, in.OuraActivity)
	rec.Zone = a.thresholds.Classify(rec.MetMinutes, rec.RecoveryScore, rec.Strain)

	return rec
}
