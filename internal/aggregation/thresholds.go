package aggregation

// Thresholds holds every tunable number used by the normalizer and the zone classifier.
// All zone bands are daily-scale values (weekly targets divided by 7).
type Thresholds struct {
	MetJRisk        float64 `toml:"met_j_risk" json:"metJRisk"`
	MetCritical     float64 `toml:"met_critical" json:"metCritical"`
	MetHighLoad     float64 `toml:"met_high_load" json:"metHighLoad"`
	MetSlightlyHigh float64 `toml:"met_slightly_high" json:"metSlightlyHigh"`
	MetOptimalMin   float64 `toml:"met_optimal_min" json:"metOptimalMin"`
	MetOptimalMax   float64 `toml:"met_optimal_max" json:"metOptimalMax"`
	MetGoldenMin    float64 `toml:"met_golden_min" json:"metGoldenMin"`
	MetGoldenMax    float64 `toml:"met_golden_max" json:"metGoldenMax"`

	StrainJRisk        float64 `toml:"strain_j_risk" json:"strainJRisk"`
	StrainCritical     float64 `toml:"strain_critical" json:"strainCritical"`
	StrainHighLoad     float64 `toml:"strain_high_load" json:"strainHighLoad"`
	StrainSlightlyHigh float64 `toml:"strain_slightly_high" json:"strainSlightlyHigh"`
	StrainOptimalMin   float64 `toml:"strain_optimal_min" json:"strainOptimalMin"`
	StrainOptimalMax   float64 `toml:"strain_optimal_max" json:"strainOptimalMax"`
	StrainGoldenMin    float64 `toml:"strain_golden_min" json:"strainGoldenMin"`
	StrainGoldenMax    float64 `toml:"strain_golden_max" json:"strainGoldenMax"`

	RecoveryGood int `toml:"recovery_good" json:"recoveryGood"`
	RecoveryLow  int `toml:"recovery_low" json:"recoveryLow"`

	// BasalKJ is the resting energy expenditure subtracted from the band's daily kilojoules.
	BasalKJ float64 `toml:"basal_kj" json:"basalKJ"`
	// ConversionFactor is the number of kilojoules per MET-minute.
	ConversionFactor float64 `toml:"conversion_factor" json:"conversionFactor"`
	// IncludeLightActivity adds the ring's low-activity bucket to the MET-minute fallback.
	IncludeLightActivity bool `toml:"include_light_activity" json:"includeLightActivity"`
}

// DefaultThresholds returns the daily-scale defaults for a ~72kg reference body.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MetJRisk:        214, // weekly > 1500
		MetCritical:     200, // weekly 1400-1500
		MetHighLoad:     186, // weekly 1300-1400
		MetSlightlyHigh: 171, // weekly 1200-1300
		MetOptimalMin:   129, // weekly 900
		MetOptimalMax:   171, // weekly 1200
		MetGoldenMin:    143, // weekly ~1000
		MetGoldenMax:    157, // weekly ~1100

		StrainJRisk:        18,
		StrainCritical:     16,
		StrainHighLoad:     14,
		StrainSlightlyHigh: 12,
		StrainOptimalMin:   6,
		StrainOptimalMax:   14,
		StrainGoldenMin:    8,
		StrainGoldenMax:    12,

		RecoveryGood: 67,
		RecoveryLow:  34,

		BasalKJ:          7230,
		ConversionFactor: 5,
	}
}

// IsZero reports whether no threshold has been set at all.
func (t Thresholds) IsZero() bool {
	return t == Thresholds{}
}

type bands struct {
	jRisk, critical, highLoad, slightlyHigh float64
	optimalMin, optimalMax                  float64
	goldenMin, goldenMax                    float64
}

func (t Thresholds) metBands() bands {
	return bands{
		jRisk:        t.MetJRisk,
		critical:     t.MetCritical,
		highLoad:     t.MetHighLoad,
		slightlyHigh: t.MetSlightlyHigh,
		optimalMin:   t.MetOptimalMin,
		optimalMax:   t.MetOptimalMax,
		goldenMin:    t.MetGoldenMin,
		goldenMax:    t.MetGoldenMax,
	}
}

func (t Thresholds) strainBands() bands {
	return bands{
		jRisk:        t.StrainJRisk,
		critical:     t.StrainCritical,
		highLoad:     t.StrainHighLoad,
		slightlyHigh: t.StrainSlightlyHigh,
		optimalMin:   t.StrainOptimalMin,
		optimalMax:   t.StrainOptimalMax,
		goldenMin:    t.StrainGoldenMin,
		goldenMax:    t.StrainGoldenMax,
	}
}
