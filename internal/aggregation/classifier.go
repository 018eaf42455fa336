package aggregation

// Classify maps a load value and recovery score onto a zone.
// MET-minutes take precedence; strain is only consulted when metMinutes is nil.
func (t Thresholds) Classify(metMinutes *float64, recovery *int, strain *float64) Zone {
	switch {
	case metMinutes != nil:
		return classify(*metMinutes, recovery, t.metBands(), t.RecoveryGood, t.RecoveryLow)
	case strain != nil:
		return classify(*strain, recovery, t.strainBands(), t.RecoveryGood, t.RecoveryLow)
	default:
		return ZoneRecoveryState
	}
}

func classify(value float64, recovery *int, b bands, good, low int) Zone {
	switch {
	case value > b.jRisk:
		return ZoneJCurveRisk
	case value > b.critical:
		return ZoneCritical
	case value > b.highLoad:
		return ZoneHighLoad
	case value > b.slightlyHigh:
		return ZoneSlightlyHigh
	}

	inGolden := value >= b.goldenMin && value <= b.goldenMax
	inOptimal := value >= b.optimalMin && value <= b.optimalMax

	if recovery != nil {
		if *recovery >= good && inGolden {
			return ZoneGoldenAnchor
		}
		if *recovery >= good && inOptimal {
			return ZoneOptimal
		}
		if *recovery < low {
			return ZoneRecoveryState
		}
	}

	if inOptimal {
		return ZoneOptimal
	}
	return ZoneRecoveryState
}
