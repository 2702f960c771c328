package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hallgrim/dayplan/internal/api"
)

func newInitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init [title]",
		Short: "Create a list on the server and save it to the config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := "Tasks"
			if len(args) == 1 {
				title = args[0]
			}

			cfg, path, err := app.loadConfig()
			if err != nil {
				return err
			}

			client := api.NewClient(api.ClientConfig{BaseURL: cfg.Server})
			ct, err := client.CreateList(cmd.Context(), title)
			if err != nil {
				return fmt.Errorf("failed to create list: %w", err)
			}

			cfg.List = ct.ID
			if err := SaveFileConfig(path, cfg); err != nil {
				return err
			}

			fmt.Printf("created list %s (%s), saved to %s\n", ct.ID, title, path)
			return nil
		},
	}
}
