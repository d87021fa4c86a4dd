package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/credshare/internal/stats"
	"github.com/PolarWolf314/credshare/internal/ui"
	"github.com/PolarWolf314/credshare/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	statsWindow string
	statsJSON   bool
)

func init() {
	StatsCmd.Flags().StringVar(&statsWindow, "window", "7d", "recent activity window, e.g. 24h or 30d")
	StatsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	withOutputFlags(StatsCmd)
}

func resetStatsCommandState() {
	statsWindow = "7d"
	statsJSON = false
}

// StatsCmd summarizes the caller's sharing activity.
var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize your shares, requests and recent activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting stats command")
		spinner, cleanup := startSpinner("Computing statistics...")
		defer cleanup()

		report, err := workflows.Stats(context.Background(), workflows.StatsOptions{
			Common: common(),
			Window: statsWindow,
		})
		if err != nil {
			return fail(spinner, err)
		}
		cleanup()

		if statsJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal report to JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		printCounts("Shared by you", report.Owned)
		printCounts("Shared with you", report.Received)
		fmt.Printf("%-16s %d incoming, %d outgoing\n", "Pending requests", report.PendingIncoming, report.PendingOutgoing)
		fmt.Printf("%-16s %d actions in the last %s\n", "Recent activity", report.RecentActivity, report.Window)
		return nil
	},
}

func printCounts(label string, c stats.StatusCounts) {
	fmt.Printf("%-16s %d total (%s active, %s revoked, %s expired)\n", label, c.Total(),
		ui.Success.Sprint(c.Active), ui.Error.Sprint(c.Revoked), ui.Warning.Sprint(c.Expired))
}
