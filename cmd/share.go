package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PolarWolf314/credshare/internal/audit"
	"github.com/PolarWolf314/credshare/internal/shares"
	"github.com/PolarWolf314/credshare/internal/ui"
	"github.com/PolarWolf314/credshare/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	shareRecipient  string
	sharePermission string
	shareTTL        string
	shareNoExpiry   bool
	shareRole       string
	shareStatus     string
)

// ShareCmd groups share commands.
var ShareCmd = withOutputFlags(&cobra.Command{
	Use:   "share",
	Short: "Share secrets with other users",
	Long: `Creates, reads, revokes and lists shares.

A share is one of your vault secrets encrypted for one recipient's public
key. Only the recipient can read it, and only while it is active.`,
})

func init() {
	shareCreateCmd.Flags().StringVarP(&shareRecipient, "to", "t", "", "recipient email or user id")
	shareCreateCmd.Flags().StringVarP(&sharePermission, "permission", "p", "read", "permission to grant (read, write or admin)")
	shareCreateCmd.Flags().StringVar(&shareTTL, "ttl", "", "lifetime, e.g. 24h or 7d (defaults to the configured default_ttl)")
	shareCreateCmd.Flags().BoolVar(&shareNoExpiry, "no-expiry", false, "create a share that never expires")
	_ = shareCreateCmd.MarkFlagRequired("to")

	shareListCmd.Flags().StringVar(&shareRole, "role", "owner", "list shares you own or received (owner or recipient)")
	shareListCmd.Flags().StringVar(&shareStatus, "status", "", "filter by status (active, revoked or expired)")

	ShareCmd.AddCommand(shareCreateCmd)
	ShareCmd.AddCommand(shareAccessCmd)
	ShareCmd.AddCommand(shareRevokeCmd)
	ShareCmd.AddCommand(shareListCmd)
}

func resetShareCommandState() {
	shareRecipient = ""
	sharePermission = "read"
	shareTTL = ""
	shareNoExpiry = false
	shareRole = "owner"
	shareStatus = ""
}

var shareCreateCmd = &cobra.Command{
	Use:   "create <secret>",
	Short: "Share a vault secret with a user",
	Long: `Encrypts a vault secret, given by id or title, for the recipient.

Examples:
  credshare share create "Office VPN" --to bob@example.com
  credshare share create "Prod DB" --to bob@example.com --permission admin --ttl 7d`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting share create command")
		spinner, cleanup := startSpinner("Encrypting secret for recipient...")
		defer cleanup()

		res, err := workflows.Share(context.Background(), workflows.ShareOptions{
			Common:     common(),
			Secret:     args[0],
			Recipient:  shareRecipient,
			Permission: sharePermission,
			TTL:        shareTTL,
			NoExpiry:   shareNoExpiry,
		})
		if err != nil {
			return fail(spinner, err)
		}

		msg := success("Shared %s with %s (%s)", ui.Highlight.Sprint(res.Share.SecretTitle),
			ui.Highlight.Sprint(res.Recipient), res.Share.Permission)
		msg += "\n    share id: " + ui.Code.Sprint(res.Share.ID)
		msg += "\n    expires:  " + formatExpiry(res.Share.ExpiresAt)
		spinner.FinalMSG = msg
		return nil
	},
}

var shareAccessCmd = &cobra.Command{
	Use:   "access <share-id>",
	Short: "Decrypt a secret shared with you",
	Long: `Decrypts a share addressed to you and prints its value.

Every access is recorded in the audit log.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting share access command")
		spinner, cleanup := startSpinner("Decrypting share...")
		defer cleanup()

		got, err := workflows.Access(context.Background(), workflows.AccessOptions{Common: common(), ShareID: args[0]})
		if err != nil {
			return fail(spinner, err)
		}
		cleanup()

		fmt.Printf("%s %s\n", ui.Muted.Sprint("title:"), got.Title)
		fmt.Printf("%s %s\n", ui.Muted.Sprint("value:"), ui.Secret.Sprint(got.Value))
		if got.Notes != "" {
			fmt.Printf("%s %s\n", ui.Muted.Sprint("notes:"), got.Notes)
		}
		Logger.Infof("Access #%d with %s permission", got.AccessCount, got.Permission)
		return nil
	},
}

var shareRevokeCmd = &cobra.Command{
	Use:   "revoke <share-id>",
	Short: "Revoke a share you created",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting share revoke command")
		spinner, cleanup := startSpinner("Revoking share...")
		defer cleanup()

		res, err := workflows.Revoke(context.Background(), workflows.RevokeOptions{Common: common(), ShareID: args[0]})
		if err != nil {
			return fail(spinner, err)
		}
		if !res.Revoked {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " No share " + ui.Code.Sprint(res.ShareID) + " owned by you"
			return nil
		}
		spinner.FinalMSG = success("Revoked share %s", ui.Code.Sprint(res.ShareID))
		return nil
	},
}

var shareListCmd = &cobra.Command{
	Use:   "list",
	Short: "List shares you own or received",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting share list command")
		spinner, cleanup := startSpinner("Loading shares...")
		defer cleanup()

		list, err := workflows.List(context.Background(), workflows.ListOptions{
			Common: common(),
			Role:   shareRole,
			Status: shareStatus,
		})
		if err != nil {
			return fail(spinner, err)
		}
		if len(list) == 0 {
			spinner.FinalMSG = ui.Info.Sprint("ℹ") + " No shares found"
			return nil
		}
		cleanup()

		for _, sh := range list {
			other := sh.Recipient
			if strings.EqualFold(shareRole, string(shares.RoleRecipient)) {
				other = sh.Owner
			}
			fmt.Printf("%s  %-20s  %-25s  %-6s  %s  %s\n",
				sh.ID, sh.SecretTitle, other, sh.Permission, ui.Status(string(sh.Status), 7),
				ui.Muted.Sprint("accessed "+strconv.FormatInt(sh.AccessCount, 10)+"x"))
		}
		return nil
	},
}

func formatExpiry(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return audit.FormatDateTime(*t) + " UTC"
}
