package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/2beens/healthzones/internal/rollups"
	syncjob "github.com/2beens/healthzones/internal/sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	syncWeeks int
	syncLocal string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch provider data and store daily and weekly rollups",
	Long: `Fetch the last --weeks weeks from Oura and Whoop, aggregate them and upsert
the daily and weekly rollups. A provider that fails does not stop the other;
the run is then stored as partial.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		b, err := openBackend(ctx, syncLocal)
		if err != nil {
			return err
		}
		defer b.Close()

		syncer := syncjob.NewSyncer(b.fetcher, b.aggregator, b.repo, nil)
		result, err := syncer.Run(ctx, syncWeeks)
		if result != nil {
			printSyncResult(cmd.OutOrStdout(), result)
		}
		return err
	},
}

func printSyncResult(out io.Writer, result *syncjob.Result) {
	statusColor := color.New(color.FgGreen, color.Bold)
	switch result.Status {
	case rollups.SyncPartial:
		statusColor = color.New(color.FgYellow, color.Bold)
	case rollups.SyncFailed:
		statusColor = color.New(color.FgRed, color.Bold)
	}

	faint := color.New(color.Faint)
	_, _ = fmt.Fprintf(out, "%s %s\n", statusColor.Sprint(strings.ToUpper(string(result.Status))), faint.Sprint(result.RunID.String()))
	_, _ = fmt.Fprintf(out, "  range:   %s .. %s\n", result.StartDate, result.EndDate)
	_, _ = fmt.Fprintf(out, "  sources: %s\n", result.Sources)
	_, _ = fmt.Fprintf(out, "  days:    %d\n", result.DailyCount)
	_, _ = fmt.Fprintf(out, "  weeks:   %d\n", result.WeeklyCount)
	for _, e := range result.Errors {
		_, _ = fmt.Fprintf(out, "  %s %s\n", color.RedString("error:"), e)
	}
}

func init() {
	syncCmd.Flags().IntVarP(&syncWeeks, "weeks", "w", syncjob.DefaultWeeks, "number of weeks to sync (max 104)")
	syncCmd.Flags().StringVar(&syncLocal, "local", "", "sqlite file to store into instead of postgres")
	rootCmd.AddCommand(syncCmd)
}
