package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/feedsync/cmd/feedsync/cmd/cache"
	"github.com/agentstation/feedsync/cmd/feedsync/cmd/collections"
	"github.com/agentstation/feedsync/cmd/feedsync/cmd/sync"
	"github.com/agentstation/feedsync/internal/cmd/application"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(sync.NewCommand(a))
	rootCmd.AddCommand(collections.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(cache.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(NewVersionCommand(a))
}

// NewVersionCommand creates the version command.
func NewVersionCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "feedsync version %s\n", app.Version())
			fmt.Fprintf(w, "commit: %s\n", app.Commit())
			fmt.Fprintf(w, "built: %s\n", app.Date())
			fmt.Fprintf(w, "built by: %s\n", app.BuiltBy())
			fmt.Fprintf(w, "go version: %s\n", runtime.Version())
			fmt.Fprintf(w, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
