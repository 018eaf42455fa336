package health

import (
	"math"
	"time"

	"github.com/2beens/healthzones/internal/aggregation"

	"github.com/brianvoe/gofakeit/v6"
)

// DemoData makes up plausible provider data for every date in [start, end], so the
// dashboard has something to show before any provider is connected.
func DemoData(faker *gofakeit.Faker, start, end time.Time) (*aggregation.OuraData, *aggregation.WhoopData) {
	oura := &aggregation.OuraData{}
	whoop := &aggregation.WhoopData{}

	for i, day := range aggregation.DateRange(start, end) {
		oura.Readiness = append(oura.Readiness, aggregation.OuraReadiness{
			Day:              day,
			Score:            ptr(faker.Number(60, 90)),
			HRVBalance:       ptr(float64(faker.Number(30, 70))),
			RestingHeartRate: ptr(float64(faker.Number(48, 64))),
		})
		oura.Sleep = append(oura.Sleep, aggregation.OuraSleep{
			Day:   day,
			Score: ptr(faker.Number(65, 92)),
		})
		oura.Activity = append(oura.Activity, aggregation.OuraActivity{
			Day:              day,
			Steps:            ptr(faker.Number(6000, 12000)),
			HighMETMinutes:   ptr(float64(faker.Number(5, 40))),
			MediumMETMinutes: ptr(float64(faker.Number(60, 140))),
			LowMETMinutes:    ptr(float64(faker.Number(150, 300))),
		})

		cycleID := int64(i + 1)
		whoop.Cycles = append(whoop.Cycles, aggregation.WhoopCycle{
			ID:        cycleID,
			StartDate: day,
			Strain:    ptr(round1(faker.Float64Range(6, 17))),
			Kilojoule: ptr(math.Round(faker.Float64Range(7700, 8300))),
		})
		whoop.Recovery = append(whoop.Recovery, aggregation.WhoopRecovery{
			CycleID:          cycleID,
			RecoveryScore:    ptr(faker.Number(30, 95)),
			HRV:              ptr(round1(faker.Float64Range(35, 90))),
			RestingHeartRate: ptr(float64(faker.Number(46, 62))),
		})
		whoop.Sleep = append(whoop.Sleep, aggregation.WhoopSleep{
			StartDate:        day,
			SleepPerformance: ptr(float64(faker.Number(70, 98))),
		})
	}

	return oura, whoop
}

func ptr[T any](v T) *T {
	return &v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
