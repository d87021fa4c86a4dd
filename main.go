package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/credshare/cmd"
	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "credshare",
	Short: "credshare - share credentials with your team, encrypted per recipient.",
	Long: `credshare shares secrets from your local vault with teammates. Each share
is encrypted with the recipient's public key, can expire, can be revoked at
any time, and every access is recorded in a shared audit log.

Usage:
  credshare <command> [flags]

Available Commands:
  init       Create your keypair and join the shared directory
  users      List users you can share with
  vault      Manage the secrets in your local vault
  share      Share secrets with other users
  request    Ask for secrets and answer requests
  audit      Inspect the shared audit log
  stats      Summarize your sharing activity
  keys       Manage your keypair

Run 'credshare help <command>' for more details on a specific command.
`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		figure.NewColorFigure("credshare", "small", "green", true).Print()
		fmt.Println()
		fmt.Printf("%s Run %s to see available commands.\n", color.GreenString("✓"), color.YellowString("credshare --help"))
	},
}

func init() {
	rootCmd.AddCommand(cmd.Commands()...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
