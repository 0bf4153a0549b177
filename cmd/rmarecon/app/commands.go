package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/rmarecon/cmd/rmarecon/cmd/export"
	"github.com/agentstation/rmarecon/cmd/rmarecon/cmd/inspect"
	"github.com/agentstation/rmarecon/cmd/rmarecon/cmd/reconcile"
	"github.com/agentstation/rmarecon/cmd/rmarecon/cmd/version"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(reconcile.NewCommand(a))
	rootCmd.AddCommand(export.NewCommand(a))
	rootCmd.AddCommand(inspect.NewCommand(a))

	rootCmd.AddCommand(version.NewCommand(a))
}
