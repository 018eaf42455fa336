package oura

import "github.com/2beens/healthzones/internal/aggregation"

// Adapt maps the API collections onto the aggregation input shape.
func Adapt(readiness []Readiness, sleep []Sleep, activity []Activity) *aggregation.OuraData {
	data := &aggregation.OuraData{
		Readiness: make([]aggregation.OuraReadiness, 0, len(readiness)),
		Sleep:     make([]aggregation.OuraSleep, 0, len(sleep)),
		Activity:  make([]aggregation.OuraActivity, 0, len(activity)),
	}

	for _, r := range readiness {
		data.Readiness = append(data.Readiness, aggregation.OuraReadiness{
			Day:              r.Day,
			Score:            r.Score,
			HRVBalance:       r.Contributors.HRVBalance,
			RestingHeartRate: r.Contributors.RestingHeartRate,
		})
	}
	for _, s := range sleep {
		data.Sleep = append(data.Sleep, aggregation.OuraSleep{
			Day:   s.Day,
			Score: s.Score,
		})
	}
	for _, a := range activity {
		data.Activity = append(data.Activity, aggregation.OuraActivity{
			Day:              a.Day,
			Steps:            a.Steps,
			HighMETMinutes:   a.HighActivityMETMinutes,
			MediumMETMinutes: a.MediumActivityMETMinutes,
			LowMETMinutes:    a.LowActivityMETMinutes,
		})
	}

	return data
}
