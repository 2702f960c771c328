// Package cli implements the dayplan command line client. Commands operate
// on a remote list through the optimistic engine, so every edit is applied
// locally first and persisted in the background before the command exits.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// App carries the persistent flags shared by all commands.
type App struct {
	ConfigPath string
	Server     string
	List       string
	JSON       bool
}

// NewRootCmd builds the dayplan command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "dayplan",
		Short:        "Manage your day plan from the terminal",
		SilenceUsage: true,
		Example: `  # Create a list and store it in the config
  dayplan init "My tasks"

  # Add tasks
  dayplan add "Write report" --priority high
  dayplan add "Standup" --every weekly --days mon,wed,fri --at 09:30

  # Work the list
  dayplan ls
  dayplan done 2
  dayplan mv 5 1
  dayplan rm 3`,
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("DAYPLAN_CONFIG", ""), "Path to config file")
	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("DAYPLAN_SERVER", ""), "Server base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&app.List, "list", envOr("DAYPLAN_LIST", ""), "List ID (overrides config)")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "Print results as JSON")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newRescheduleCmd(app))

	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
