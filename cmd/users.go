package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/credshare/internal/audit"
	"github.com/PolarWolf314/credshare/internal/ui"
	"github.com/PolarWolf314/credshare/internal/workflows"
	"github.com/spf13/cobra"
)

func init() {
	withOutputFlags(UsersCmd)
}

// UsersCmd lists the shared directory.
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users you can share with",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting users command")
		spinner, cleanup := startSpinner("Loading directory...")
		defer cleanup()

		res, err := workflows.Users(context.Background(), workflows.UsersOptions{Common: common()})
		if err != nil {
			return fail(spinner, err)
		}
		spinner.FinalMSG = ""
		cleanup()

		for _, u := range res.Users {
			marker := " "
			if u.UserID == res.Self {
				marker = ui.Success.Sprint("*")
			}
			fmt.Printf("%s %-30s  %-20s  %s  %s\n", marker, u.Email, u.DisplayName,
				ui.Muted.Sprint(shortFingerprint(u.KeyFingerprint)), audit.FormatDate(u.LastActive))
		}
		return nil
	},
}
