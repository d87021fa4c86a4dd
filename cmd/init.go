package cmd

import (
	"context"

	"github.com/PolarWolf314/credshare/internal/ui"
	"github.com/PolarWolf314/credshare/internal/utils"
	"github.com/PolarWolf314/credshare/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	initEmail       string
	initDisplayName string
	initStoreDriver string
	initStoreDSN    string
	initDefaultTTL  string
)

func init() {
	InitCmd.Flags().StringVarP(&initEmail, "email", "e", "", "your email address")
	InitCmd.Flags().StringVarP(&initDisplayName, "name", "n", "", "display name shown to others")
	InitCmd.Flags().StringVar(&initStoreDriver, "store-driver", "", "shared store driver (sqlite or postgres)")
	InitCmd.Flags().StringVar(&initStoreDSN, "store-dsn", "", "shared store DSN or sqlite file path")
	InitCmd.Flags().StringVar(&initDefaultTTL, "default-ttl", "", "default share lifetime, e.g. 72h or 7d")
	withOutputFlags(InitCmd)
}

func resetInitCommandState() {
	initEmail = ""
	initDisplayName = ""
	initStoreDriver = ""
	initStoreDSN = ""
	initDefaultTTL = ""
}

// InitCmd sets up the local user.
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create your keypair and join the shared directory",
	Long: `Creates your user config and RSA keypair, then publishes your public key
to the shared store so others can share secrets with you.

Running init again updates your profile and republishes your current key.

Examples:
  credshare init --email alice@example.com
  credshare init --email alice@example.com --store-driver postgres --store-dsn "postgres://..."
  credshare init --default-ttl 7d`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting init command")
		spinner, cleanup := startSpinner("Initializing credshare...")
		defer cleanup()

		res, err := workflows.Init(context.Background(), workflows.InitOptions{
			Common:      common(),
			Email:       initEmail,
			DisplayName: initDisplayName,
			StoreDriver: initStoreDriver,
			StoreDSN:    initStoreDSN,
			DefaultTTL:  initDefaultTTL,
		})
		if err != nil {
			return fail(spinner, err)
		}

		msg := success("Registered %s as %s", ui.Highlight.Sprint(res.Email), ui.Muted.Sprint(utils.ShortID(res.UserID)))
		if res.KeyCreated {
			msg += "\n" + success("Generated a new keypair %s", ui.Muted.Sprint(shortFingerprint(res.Fingerprint)))
		}
		msg += "\n" + ui.Info.Sprint("→") + " Using the " + res.StoreDriver + " store"
		spinner.FinalMSG = msg
		return nil
	},
}
