package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/credshare/internal/ui"
	"github.com/PolarWolf314/credshare/internal/workflows"
	"github.com/spf13/cobra"
)

// KeysCmd groups key management commands.
var KeysCmd = withOutputFlags(&cobra.Command{
	Use:   "keys",
	Short: "Manage your keypair",
})

func init() {
	KeysCmd.AddCommand(rotateCmd)
}

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Replace your keypair and publish the new public key",
	Long: `Generates a new RSA keypair and publishes its public key.

Shares you received under the old key can no longer be decrypted. They are
listed so you can ask their owners to share them again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys rotate command")
		spinner, cleanup := startSpinner("Rotating keypair...")
		defer cleanup()

		res, err := workflows.RotateKeys(context.Background(), workflows.RotateKeysOptions{Common: common()})
		if err != nil {
			return fail(spinner, err)
		}

		msg := success("Rotated key %s to %s", ui.Muted.Sprint(shortFingerprint(res.OldFingerprint)), ui.Highlight.Sprint(shortFingerprint(res.NewFingerprint)))
		if len(res.Orphaned) > 0 {
			msg += "\n" + ui.Warning.Sprint("⚠") + fmt.Sprintf(" %d received share(s) can no longer be decrypted:", len(res.Orphaned))
			for _, sh := range res.Orphaned {
				msg += fmt.Sprintf("\n    %s  %s", sh.ID, sh.SecretTitle)
			}
		}
		spinner.FinalMSG = msg
		return nil
	},
}
