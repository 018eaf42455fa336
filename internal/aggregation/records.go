package aggregation

// Provider records in the shape the provider adapters produce.
// Every metric is a pointer: nil means the provider did not report it.

type OuraReadiness struct {
	Day              string
	Score            *int
	HRVBalance       *float64
	RestingHeartRate *float64
}

type OuraSleep struct {
	Day   string
	Score *int
}

type OuraActivity struct {
	Day              string
	Steps            *int
	HighMETMinutes   *float64
	MediumMETMinutes *float64
	LowMETMinutes    *float64
}

type WhoopCycle struct {
	ID        int64
	StartDate string
	Strain    *float64
	Kilojoule *float64
}

type WhoopRecovery struct {
	CycleID          int64
	RecoveryScore    *int
	HRV              *float64
	RestingHeartRate *float64
}

type WhoopSleep struct {
	StartDate        string
	SleepPerformance *float64
}

type OuraData struct {
	Readiness []OuraReadiness
	Sleep     []OuraSleep
	Activity  []OuraActivity
}

type WhoopData struct {
	Recovery []WhoopRecovery
	Cycles   []WhoopCycle
	Sleep    []WhoopSleep
}

// DayInputs is everything known about one calendar date after date alignment.
type DayInputs struct {
	OuraReadiness *OuraReadiness
	OuraSleep     *OuraSleep
	OuraActivity  *OuraActivity
	WhoopCycle    *WhoopCycle
	WhoopRecovery *WhoopRecovery
	WhoopSleep    *WhoopSleep
}

type DailyRecord struct {
	Date           string   `json:"date"`
	ReadinessScore *int     `json:"readiness_score"`
	RecoveryScore  *int     `json:"recovery_score"`
	SleepScore     *int     `json:"sleep_score"`
	HRV            *int     `json:"hrv"`
	RHR            *int     `json:"rhr"`
	Strain         *float64 `json:"strain"`
	Steps          *int     `json:"steps"`
	Kilojoule      *float64 `json:"kilojoule"`
	MetMinutes     *float64 `json:"met_minutes"`
	Zone           Zone     `json:"zone"`
	Trend          Trend    `json:"trend"`
}

type WeeklyRecord struct {
	Key             string
	WeekNumber      int
	StartDate       string
	EndDate         string
	DayCount        int
	AvgReadiness    *int
	AvgRecovery     *int
	AvgSleep        *int
	AvgHRV          *int
	AvgRHR          *int
	AvgSteps        *int
	TotalStrain     *float64
	TotalMetMinutes *float64
	Zone            Zone
	Trend           Trend
	Days            []DailyRecord
}

// Complete reports whether all seven days of the week have a record.
func (w WeeklyRecord) Complete() bool {
	return w.DayCount >= 7
}

type Row struct {
	Week                 string   `json:"week"`
	DateRange            string   `json:"date_range"`
	StartDate            string   `json:"start_date"`
	EndDate              string   `json:"end_date"`
	DaysCount            int      `json:"days_count"`
	AvgReadiness         *int     `json:"avg_readiness"`
	AvgRecovery          *int     `json:"avg_recovery"`
	AvgSleep             *int     `json:"avg_sleep"`
	AvgHRV               *int     `json:"avg_hrv"`
	AvgSteps             *int     `json:"avg_steps"`
	TotalStrain          *float64 `json:"total_strain"`
	TotalMetMinutes      *float64 `json:"total_met_minutes"`
	CumulativeMetMinutes *float64 `json:"cumulative_met_minutes,omitempty"`
	Zone                 Zone     `json:"zone"`
	Trend                Trend    `json:"trend"`
	RowType              RowKind  `json:"row_type"`
}
