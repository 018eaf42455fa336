package aggregation

import "math"

// MetMinutes converts one day's energy data into MET-minutes.
// Band kilojoules win; the ring's MET buckets are the fallback.
func (t Thresholds) MetMinutes(kilojoule *float64, activity *OuraActivity) *float64 {
	if kilojoule != nil && t.ConversionFactor > 0 {
		active := math.Max(0, *kilojoule-t.BasalKJ)
		return ptr(math.Round(active / t.ConversionFactor))
	}
	if activity == nil {
		return nil
	}

	buckets := []*float64{activity.HighMETMinutes, activity.MediumMETMinutes}
	if t.IncludeLightActivity {
		buckets = append(buckets, activity.LowMETMinutes)
	}
	return sumFloat(buckets)
}

func resolveHRV(recovery *WhoopRecovery, readiness *OuraReadiness) *int {
	var whoop, oura *float64
	if recovery != nil {
		whoop = recovery.HRV
	}
	if readiness != nil {
		oura = readiness.HRVBalance
	}
	return roundInt(firstFloat(whoop, oura))
}

func resolveRHR(recovery *WhoopRecovery, readiness *OuraReadiness) *int {
	var whoop, oura *float64
	if recovery != nil {
		whoop = recovery.RestingHeartRate
	}
	if readiness != nil {
		oura = readiness.RestingHeartRate
	}
	return roundInt(firstFloat(whoop, oura))
}

func resolveRecovery(recovery *WhoopRecovery, readiness *OuraReadiness) *int {
	var whoop, oura *int
	if recovery != nil {
		whoop = recovery.RecoveryScore
	}
	if readiness != nil {
		oura = readiness.Score
	}
	return firstInt(whoop, oura)
}

// resolveSleep averages both providers when both report, otherwise takes whichever does.
func resolveSleep(ouraSleep *OuraSleep, whoopSleep *WhoopSleep) *int {
	var oura, whoop *float64
	if ouraSleep != nil {
		oura = intToFloat(ouraSleep.Score)
	}
	if whoopSleep != nil {
		whoop = whoopSleep.SleepPerformance
	}

	switch {
	case oura != nil && whoop != nil:
		return ptr(int(math.Round((*oura + *whoop) / 2)))
	case oura != nil:
		return roundInt(oura)
	default:
		return roundInt(whoop)
	}
}
