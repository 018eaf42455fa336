package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/2beens/healthzones/internal/aggregation"
	syncjob "github.com/2beens/healthzones/internal/sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	showWeeks int
	showLocal string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored rollups as a zone table",
	Long: `Print the stored weekly rollups of the last --weeks weeks.
Complete weeks are one line. The current week is a summary line followed by its
days, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		b, err := openBackend(ctx, showLocal)
		if err != nil {
			return err
		}
		defer b.Close()

		weeks := syncjob.ClampWeeks(showWeeks)
		start, end := syncjob.Range(time.Now(), weeks)
		startDate, endDate := start.Format(aggregation.DateLayout), end.Format(aggregation.DateLayout)
		days, err := b.repo.DailyRange(ctx, startDate, endDate)
		if err != nil {
			return fmt.Errorf("read daily rollups: %w", err)
		}
		latest, err := b.repo.WeeklyLatest(ctx, weeks+1)
		if err != nil {
			return fmt.Errorf("read weekly rollups: %w", err)
		}

		rows := storedRows(b.aggregator, latest, days, startDate, endDate)
		if len(rows) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No stored data, run 'healthsync sync' first.")
			return nil
		}

		renderTable(cmd.OutOrStdout(), rows)
		return nil
	},
}

// storedRows prefers the stored weekly rollups inside [startDate, endDate] and
// falls back to grouping the stored days when no weekly rows were synced yet.
func storedRows(aggregator *aggregation.Aggregator, latest []aggregation.WeeklyRecord, days []aggregation.DailyRecord, startDate, endDate string) []aggregation.Row {
	var weeks []aggregation.WeeklyRecord
	for _, w := range latest {
		if w.StartDate >= startDate && w.StartDate <= endDate {
			weeks = append(weeks, w)
		}
	}
	if len(weeks) > 0 {
		return aggregation.StoredRows(weeks, days)
	}
	if len(days) > 0 {
		return aggregator.RowsFromDays(days)
	}
	return nil
}

func zoneColor(zone aggregation.Zone) *color.Color {
	switch zone {
	case aggregation.ZoneJCurveRisk:
		return color.New(color.FgHiRed, color.Bold)
	case aggregation.ZoneCritical:
		return color.New(color.FgRed)
	case aggregation.ZoneHighLoad:
		return color.New(color.FgHiYellow)
	case aggregation.ZoneSlightlyHigh:
		return color.New(color.FgYellow)
	case aggregation.ZoneGoldenAnchor:
		return color.New(color.FgHiGreen, color.Bold)
	case aggregation.ZoneOptimal:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgCyan)
	}
}

func trendArrow(trend aggregation.Trend) string {
	switch trend {
	case aggregation.TrendUp:
		return "↑"
	case aggregation.TrendDown:
		return "↓"
	default:
		return "→"
	}
}

func renderTable(out io.Writer, rows []aggregation.Row) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	_, _ = bold.Fprintf(out, "%-10s %-14s %4s %9s %7s %6s  %-16s %s\n",
		"WEEK", "DATES", "DAYS", "RECOVERY", "MET", "STRAIN", "ZONE", "TREND")
	for _, row := range rows {
		label := row.Week
		if row.RowType == aggregation.RowKindDayDetail {
			label = "  " + row.Week
		}

		line := fmt.Sprintf("%-10s %-14s %4s %9s %7s %6s  ",
			padRight(label, 10),
			row.DateRange,
			intOrDash(ptrIfWeek(row)),
			intOrDash(row.AvgRecovery),
			floatOrDash(row.TotalMetMinutes, 0),
			floatOrDash(row.TotalStrain, 1),
		)
		zone := zoneColor(row.Zone).Sprintf("%-16s", string(row.Zone))

		if row.RowType == aggregation.RowKindDayDetail {
			_, _ = fmt.Fprintf(out, "%s%s %s\n", faint.Sprint(line), zone, faint.Sprint(trendArrow(row.Trend)))
			continue
		}
		_, _ = fmt.Fprintf(out, "%s%s %s\n", line, zone, trendArrow(row.Trend))
	}
}

func ptrIfWeek(row aggregation.Row) *int {
	if !row.RowType.IsWeekLevel() {
		return nil
	}
	return &row.DaysCount
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func floatOrDash(v *float64, decimals int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.*f", decimals, *v)
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	showCmd.Flags().IntVarP(&showWeeks, "weeks", "w", 4, "number of weeks to show (max 104)")
	showCmd.Flags().StringVar(&showLocal, "local", "", "sqlite file to read from instead of postgres")
	rootCmd.AddCommand(showCmd)
}
