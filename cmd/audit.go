package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/PolarWolf314/credshare/internal/audit"
	"github.com/PolarWolf314/credshare/internal/ui"
	"github.com/PolarWolf314/credshare/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logUser      string
	logOperation string
	logShare     string
	logRequest   string
	logSince     string
	logUntil     string
	logOneline   bool
	logJSON      bool
)

// AuditCmd groups audit log commands.
var AuditCmd = withOutputFlags(&cobra.Command{
	Use:   "audit",
	Short: "Inspect the shared audit log",
})

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logUser, "user", "", "filter by user email or id")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	logCmd.Flags().StringVar(&logShare, "share", "", "filter by share id")
	logCmd.Flags().StringVar(&logRequest, "request", "", "filter by request id")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "compact one-line format")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON Lines")

	AuditCmd.AddCommand(logCmd)
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logUser = ""
	logOperation = ""
	logShare = ""
	logRequest = ""
	logSince = ""
	logUntil = ""
	logOneline = false
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit log",
	Long: `Displays who created, accessed and revoked shares, and who raised and
resolved requests.

Examples:
  credshare audit log                                   # View full log
  credshare audit log -n 10                             # Last 10 entries
  credshare audit log --reverse                         # Most recent first
  credshare audit log --user alice@example.com          # Filter by user
  credshare audit log --operation password_accessed     # Filter by operation
  credshare audit log --since 2026-01-01                # Filter by date
  credshare audit log --json                            # JSON Lines output`,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	spinner, cleanup := startSpinner("Loading audit log...")
	defer cleanup()

	result, err := workflows.Log(context.Background(), workflows.LogOptions{
		Common:     common(),
		Limit:      logLimit,
		Reverse:    logReverse,
		User:       logUser,
		Operations: logOperation,
		ShareID:    logShare,
		RequestID:  logRequest,
		Since:      logSince,
		Until:      logUntil,
	})
	if err != nil {
		return fail(spinner, err)
	}

	Logger.Debugf("Found %d entries", len(result.Entries))

	if len(result.Entries) == 0 {
		spinner.FinalMSG = ui.Info.Sprint("ℹ") + " No audit log entries found."
		return nil
	}
	cleanup()

	if logJSON {
		entries := make([]audit.Entry, 0, len(result.Entries))
		for _, e := range result.Entries {
			entries = append(entries, e.Entry)
		}
		return audit.WriteJSONLines(os.Stdout, entries)
	}

	if logOneline {
		outputLogOneline(result.Entries)
		return nil
	}

	outputLogDefault(result.Entries)
	return nil
}

func outputLogOneline(entries []workflows.LogEntry) {
	for _, e := range entries {
		fmt.Printf("%s %s %s %s\n", audit.FormatDate(e.Timestamp), e.ActorEmail, e.Action, e.Subject())
	}
}

func outputLogDefault(entries []workflows.LogEntry) {
	for _, e := range entries {
		fmt.Printf("%-19s  %-25s  %-17s  %s\n", audit.FormatDateTime(e.Timestamp), e.ActorEmail, e.Action, e.Subject())
	}
}
