package oura

type page[T any] struct {
	Data      []T     `json:"data"`
	NextToken *string `json:"next_token"`
}

type Readiness struct {
	ID           string   `json:"id"`
	Day          string   `json:"day"`
	Score        *int     `json:"score"`
	Timestamp    string   `json:"timestamp"`
	TempDelta    *float64 `json:"temperature_deviation"`
	Contributors struct {
		ActivityBalance  *float64 `json:"activity_balance"`
		BodyTemperature  *float64 `json:"body_temperature"`
		HRVBalance       *float64 `json:"hrv_balance"`
		PreviousNight    *float64 `json:"previous_night"`
		RecoveryIndex    *float64 `json:"recovery_index"`
		RestingHeartRate *float64 `json:"resting_heart_rate"`
		SleepBalance     *float64 `json:"sleep_balance"`
	} `json:"contributors"`
}

type Sleep struct {
	ID        string `json:"id"`
	Day       string `json:"day"`
	Score     *int   `json:"score"`
	Timestamp string `json:"timestamp"`
}

type Activity struct {
	ID                       string   `json:"id"`
	Day                      string   `json:"day"`
	Score                    *int     `json:"score"`
	ActiveCalories           *int     `json:"active_calories"`
	Steps                    *int     `json:"steps"`
	HighActivityMETMinutes   *float64 `json:"high_activity_met_minutes"`
	MediumActivityMETMinutes *float64 `json:"medium_activity_met_minutes"`
	LowActivityMETMinutes    *float64 `json:"low_activity_met_minutes"`
}
