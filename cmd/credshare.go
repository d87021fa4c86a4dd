package cmd

import (
	logger "github.com/PolarWolf314/credshare/internal/logging"
	"github.com/PolarWolf314/credshare/internal/workflows"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger
)

// withOutputFlags registers --verbose and --debug on a command group and
// builds the shared Logger before any of its subcommands run.
func withOutputFlags(c *cobra.Command) *cobra.Command {
	c.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	c.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	c.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		Logger = logger.Logger{
			Verbose: verbose,
			Debug:   debug,
		}
		Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.CommandPath(), verbose, debug)
	}
	return c
}

func common() workflows.Common {
	return workflows.Common{Verbose: verbose, Debug: debug}
}

// Commands returns every top-level command for the root to register.
func Commands() []*cobra.Command {
	return []*cobra.Command{
		InitCmd,
		UsersCmd,
		KeysCmd,
		VaultCmd,
		ShareCmd,
		RequestCmd,
		AuditCmd,
		StatsCmd,
	}
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	resetInitCommandState()
	resetVaultCommandState()
	resetShareCommandState()
	resetRequestCommandState()
	resetLogCommandState()
	resetStatsCommandState()

	for _, c := range Commands() {
		resetCobraFlagState(c)
	}
}

// resetCobraFlagState clears Changed on every flag below c to prevent test pollution.
func resetCobraFlagState(c *cobra.Command) {
	reset := func(flag *pflag.Flag) { flag.Changed = false }
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCobraFlagState(sub)
	}
}
