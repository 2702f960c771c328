package cli

import (
	"github.com/spf13/cobra"
)

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <item>",
		Short: "Toggle completion of an item",
		Long: "Marks an item complete, or uncompletes it when already marked.\n" +
			"Completed items stay visible for a short grace period before\n" +
			"they are cleaned up, so an accidental toggle can be undone.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), app)
			if err != nil {
				return err
			}
			defer s.finish()

			it, err := s.resolveItem(args[0])
			if err != nil {
				return err
			}
			if err := s.rec.ToggleComplete(cmd.Context(), s.listID, it.ID); err != nil {
				return err
			}

			s.rec.Wait()
			return s.printList()
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <item> <text>",
		Short: "Replace the text of an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), app)
			if err != nil {
				return err
			}
			defer s.finish()

			it, err := s.resolveItem(args[0])
			if err != nil {
				return err
			}
			if err := s.rec.CommitText(cmd.Context(), s.listID, it.ID, it.Text, args[1]); err != nil {
				return err
			}

			s.rec.Wait()
			return s.printList()
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <item>",
		Aliases: []string{"remove"},
		Short:   "Delete an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), app)
			if err != nil {
				return err
			}
			defer s.finish()

			it, err := s.resolveItem(args[0])
			if err != nil {
				return err
			}
			if err := s.rec.DeleteItem(cmd.Context(), s.listID, it.ID); err != nil {
				return err
			}

			s.rec.Wait()
			return s.printList()
		},
	}
}
