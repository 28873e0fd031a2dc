package cmd

import (
	"github.com/spf13/cobra"
	"go.olrik.dev/sentinel/internal/core"
)

func NewRootCommand() *cobra.Command {
	var configPath string
	var verbose int

	rootCmd := &cobra.Command{
		Use:   "sentinel",
		Short: "Sentinel - signal-hardened heartbeat daemon",
		Long: `Sentinel ignores interactive and supervisory signals and then ticks
forever, reporting a counter every interval. Only SIGKILL stops it.

Running sentinel without a command starts the daemon; arguments and flags
that are not recognized are ignored.`,
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		SilenceUsage:       true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return core.InitializeConfig(configPath, verbose)
		},
		RunE: runDaemon,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "HCL config file (defaults apply when omitted)")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "more output, repeat for even more")

	rootCmd.AddCommand(
		NewRunCommand(),
		NewStatusCommand(),
		NewEventsCommand(),
		NewVersionCommand(),
	)

	return rootCmd
}
