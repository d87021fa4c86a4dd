package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/credshare/internal/audit"
	"github.com/PolarWolf314/credshare/internal/requests"
	"github.com/PolarWolf314/credshare/internal/ui"
	"github.com/PolarWolf314/credshare/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	requestOwner      string
	requestPermission string
	requestMessage    string

	respondPermission string
	respondSecret     string
	respondTTL        string
	respondNoExpiry   bool

	requestRole   string
	requestStatus string
)

// RequestCmd groups access request commands.
var RequestCmd = withOutputFlags(&cobra.Command{
	Use:   "request",
	Short: "Ask for secrets and answer requests",
	Long: `Requests let you ask another user for one of their secrets by title.

The owner approves or rejects it. Approval shares the matching vault secret
with you in the same step.`,
})

func init() {
	requestCreateCmd.Flags().StringVarP(&requestOwner, "from", "f", "", "owner email or user id")
	requestCreateCmd.Flags().StringVarP(&requestPermission, "permission", "p", "read", "permission to ask for (read, write or admin)")
	requestCreateCmd.Flags().StringVarP(&requestMessage, "message", "m", "", "note for the owner")
	_ = requestCreateCmd.MarkFlagRequired("from")

	requestRespondCmd.Flags().StringVarP(&respondPermission, "permission", "p", "", "grant a different permission than requested")
	requestRespondCmd.Flags().StringVar(&respondSecret, "secret", "", "vault secret id or title to share (defaults to the requested title)")
	requestRespondCmd.Flags().StringVar(&respondTTL, "ttl", "", "lifetime of the created share, e.g. 24h or 7d")
	requestRespondCmd.Flags().BoolVar(&respondNoExpiry, "no-expiry", false, "create a share that never expires")

	requestListCmd.Flags().StringVar(&requestRole, "role", "owner", "requests addressed to you (owner) or sent by you (requester)")
	requestListCmd.Flags().StringVar(&requestStatus, "status", "", "filter by status (pending, approved or rejected)")

	RequestCmd.AddCommand(requestCreateCmd)
	RequestCmd.AddCommand(requestRespondCmd)
	RequestCmd.AddCommand(requestListCmd)
}

func resetRequestCommandState() {
	requestOwner = ""
	requestPermission = "read"
	requestMessage = ""
	respondPermission = ""
	respondSecret = ""
	respondTTL = ""
	respondNoExpiry = false
	requestRole = "owner"
	requestStatus = ""
}

var requestCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Ask a user to share a secret",
	Long: `Asks the owner to share the secret with the given title.

Examples:
  credshare request create "Prod DB" --from alice@example.com -m "on call this week"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting request create command")
		spinner, cleanup := startSpinner("Sending request...")
		defer cleanup()

		id, err := workflows.Request(context.Background(), workflows.RequestOptions{
			Common:     common(),
			Owner:      requestOwner,
			Title:      args[0],
			Permission: requestPermission,
			Message:    requestMessage,
		})
		if err != nil {
			return fail(spinner, err)
		}
		spinner.FinalMSG = success("Requested %s from %s", ui.Highlight.Sprint(args[0]), ui.Highlight.Sprint(requestOwner)) +
			"\n    request id: " + ui.Code.Sprint(id)
		return nil
	},
}

var requestRespondCmd = &cobra.Command{
	Use:   "respond <request-id> <approve|reject>",
	Short: "Approve or reject a request addressed to you",
	Long: `Resolves a pending request. A request can be resolved only once.

Examples:
  credshare request respond 4f1c... approve --ttl 7d
  credshare request respond 4f1c... approve --secret "Prod DB (read replica)"
  credshare request respond 4f1c... reject`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting request respond command")
		spinner, cleanup := startSpinner("Responding to request...")
		defer cleanup()

		out, err := workflows.Respond(context.Background(), workflows.RespondOptions{
			Common:     common(),
			RequestID:  args[0],
			Decision:   args[1],
			Permission: respondPermission,
			Secret:     respondSecret,
			TTL:        respondTTL,
			NoExpiry:   respondNoExpiry,
		})
		if err != nil {
			return fail(spinner, err)
		}

		if out.Status == requests.StatusApproved {
			spinner.FinalMSG = success("Approved request %s", ui.Code.Sprint(out.RequestID)) +
				"\n    share id: " + ui.Code.Sprint(out.ShareID)
			return nil
		}
		spinner.FinalMSG = success("Rejected request %s", ui.Code.Sprint(out.RequestID))
		return nil
	},
}

var requestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List requests addressed to you or sent by you",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting request list command")
		spinner, cleanup := startSpinner("Loading requests...")
		defer cleanup()

		list, err := workflows.Requests(context.Background(), workflows.RequestsOptions{
			Common: common(),
			Role:   requestRole,
			Status: requestStatus,
		})
		if err != nil {
			return fail(spinner, err)
		}
		if len(list) == 0 {
			spinner.FinalMSG = ui.Info.Sprint("ℹ") + " No requests found"
			return nil
		}
		cleanup()

		for _, r := range list {
			fmt.Printf("%s  %s  %-20s  %-25s -> %-25s  %-6s  %s\n",
				r.ID, audit.FormatDate(r.CreatedAt), r.SecretTitle, r.Requester, r.Owner,
				r.RequestedPermission, ui.Status(string(r.Status), 8))
			if r.Message != "" {
				fmt.Printf("    %s\n", ui.Muted.Sprint(r.Message))
			}
		}
		return nil
	},
}
