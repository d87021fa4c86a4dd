package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/credshare/internal/ui"
	"github.com/PolarWolf314/credshare/internal/utils"
	"github.com/PolarWolf314/credshare/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	vaultValue      string
	vaultNotes      string
	vaultShowValues bool
)

// VaultCmd groups local vault commands.
var VaultCmd = withOutputFlags(&cobra.Command{
	Use:   "vault",
	Short: "Manage the secrets in your local vault",
})

func init() {
	vaultAddCmd.Flags().StringVar(&vaultValue, "value", "", "secret value (prompted for, or read from stdin, when omitted)")
	vaultAddCmd.Flags().StringVar(&vaultNotes, "notes", "", "notes shared along with the value")
	vaultListCmd.Flags().BoolVar(&vaultShowValues, "show-values", false, "print secret values instead of masking them")

	VaultCmd.AddCommand(vaultAddCmd)
	VaultCmd.AddCommand(vaultListCmd)
}

func resetVaultCommandState() {
	vaultValue = ""
	vaultNotes = ""
	vaultShowValues = false
}

var vaultAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a secret to your vault",
	Long: `Adds a secret to your local vault so it can be shared.

The value is read with echo disabled when running in a terminal, or from
stdin when piped.

Examples:
  credshare vault add "Office VPN"
  echo -n "s3cret" | credshare vault add "Prod DB"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting vault add command")

		value := vaultValue
		if value == "" {
			raw, err := readSecretValue()
			if err != nil {
				return err
			}
			value = string(raw)
		}

		spinner, cleanup := startSpinner("Saving secret...")
		defer cleanup()

		secret, err := workflows.VaultAdd(context.Background(), workflows.VaultAddOptions{
			Common: common(),
			Title:  args[0],
			Value:  value,
			Notes:  vaultNotes,
		})
		if err != nil {
			return fail(spinner, err)
		}
		spinner.FinalMSG = success("Added %s %s", ui.Highlight.Sprint(secret.Title), ui.Muted.Sprint(secret.ID))
		return nil
	},
}

func readSecretValue() ([]byte, error) {
	if utils.IsTerminal() {
		return utils.ReadHiddenConfirmed("Secret value: ", "Confirm value: ")
	}
	return utils.ReadStdin()
}

var vaultListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the secrets in your vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting vault list command")
		spinner, cleanup := startSpinner("Loading vault...")
		defer cleanup()

		list, err := workflows.VaultList(context.Background(), workflows.VaultListOptions{Common: common()})
		if err != nil {
			return fail(spinner, err)
		}
		if len(list) == 0 {
			spinner.FinalMSG = ui.Info.Sprint("ℹ") + " Your vault is empty" + hint("credshare vault add <title>")
			return nil
		}
		cleanup()

		for _, s := range list {
			value := ui.Mask(s.Value)
			if vaultShowValues {
				value = ui.Secret.Sprint(s.Value)
			}
			fmt.Printf("%s  %-30s  %s\n", s.ID, s.Title, value)
		}
		return nil
	},
}
