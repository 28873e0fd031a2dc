package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.olrik.dev/sentinel/internal/core"
	"go.olrik.dev/sentinel/internal/daemon"
)

func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the daemon in the foreground",
		Long: `Ignore SIGINT, SIGHUP, SIGQUIT, SIGPIPE, SIGCHLD, SIGTTOU, SIGTTIN and
SIGTERM, report the process identity, and tick forever.`,
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE:               runDaemon,
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	// Never cancelled: the loop has no exit and only SIGKILL ends the process.
	return daemon.New(core.Config).Run(context.Background())
}
