package aggregation

type Zone string

const (
	ZoneJCurveRisk    Zone = "J_CURVE_RISK"
	ZoneCritical      Zone = "CRITICAL"
	ZoneHighLoad      Zone = "HIGH_LOAD"
	ZoneSlightlyHigh  Zone = "SLIGHTLY_HIGH"
	ZoneGoldenAnchor  Zone = "GOLDEN_ANCHOR"
	ZoneOptimal       Zone = "OPTIMAL"
	ZoneRecoveryState Zone = "RECOVERY_STATE"
)

// Severity orders zones from the safest (0) to the most loaded.
func (z Zone) Severity() int {
	switch z {
	case ZoneJCurveRisk:
		return 6
	case ZoneCritical:
		return 5
	case ZoneHighLoad:
		return 4
	case ZoneSlightlyHigh:
		return 3
	case ZoneGoldenAnchor, ZoneOptimal:
		return 2
	default:
		return 0
	}
}

type Trend string

const (
	TrendUp   Trend = "up"
	TrendFlat Trend = "flat"
	TrendDown Trend = "down"
)

// RowKind governs how a row is displayed, not what it means.
type RowKind string

const (
	RowKindCompleteWeek          RowKind = "week"
	RowKindIncompleteWeekSummary RowKind = "week_cumulative"
	RowKindDayDetail             RowKind = "day"
)

func (k RowKind) IsWeekLevel() bool {
	return k == RowKindCompleteWeek || k == RowKindIncompleteWeekSummary
}
