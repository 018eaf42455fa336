package whoop

const (
	ScoreStateScored     = "SCORED"
	ScoreStatePending    = "PENDING_SCORE"
	ScoreStateUnscorable = "UNSCORABLE"
)

type page[T any] struct {
	Records   []T     `json:"records"`
	NextToken *string `json:"next_token"`
}

type Recovery struct {
	CycleID    int64  `json:"cycle_id"`
	SleepID    string `json:"sleep_id"`
	UserID     int64  `json:"user_id"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	ScoreState string `json:"score_state"`
	Score      *struct {
		UserCalibrating  bool     `json:"user_calibrating"`
		RecoveryScore    *float64 `json:"recovery_score"`
		RestingHeartRate *float64 `json:"resting_heart_rate"`
		HRVRmssdMilli    *float64 `json:"hrv_rmssd_milli"`
		SpO2Percentage   *float64 `json:"spo2_percentage"`
		SkinTempCelsius  *float64 `json:"skin_temp_celsius"`
	} `json:"score"`
}

type Cycle struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"user_id"`
	Start          string  `json:"start"`
	End            *string `json:"end"`
	TimezoneOffset string  `json:"timezone_offset"`
	ScoreState     string  `json:"score_state"`
	Score          *struct {
		Strain           *float64 `json:"strain"`
		Kilojoule        *float64 `json:"kilojoule"`
		AverageHeartRate *int     `json:"average_heart_rate"`
		MaxHeartRate     *int     `json:"max_heart_rate"`
	} `json:"score"`
}

type Sleep struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	Nap        bool   `json:"nap"`
	ScoreState string `json:"score_state"`
	Score      *struct {
		RespiratoryRate            *float64 `json:"respiratory_rate"`
		SleepPerformancePercentage *float64 `json:"sleep_performance_percentage"`
		SleepConsistencyPercentage *float64 `json:"sleep_consistency_percentage"`
		SleepEfficiencyPercentage  *float64 `json:"sleep_efficiency_percentage"`
	} `json:"score"`
}
