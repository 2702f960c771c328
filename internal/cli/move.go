package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hallgrim/dayplan/internal/domain"
)

func newMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <item> <position>",
		Short: "Move an item to a new position",
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

			to, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[1])
			}

			if err := s.rec.MoveItem(cmd.Context(), s.listID, it.Position, to-1); err != nil {
				return err
			}

			s.rec.Wait()
			return s.printList()
		},
	}
}

func newRescheduleCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "sched <item> <date>",
		Short: "Move an item, or the whole list, to another date",
		Long: `Move an item to another date, keeping its time of day.
With --all the item argument is omitted and every dated item in the list
moves to the target date.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), app)
			if err != nil {
				return err
			}
			defer s.finish()

			if all {
				if len(args) != 1 {
					return fmt.Errorf("usage: sched --all <date>")
				}
				target, err := domain.ParseDate(args[0])
				if err != nil {
					return err
				}
				if err := s.rec.MoveContainerToDate(cmd.Context(), s.listID, target); err != nil {
					return err
				}
				s.rec.Wait()
				return s.printList()
			}

			if len(args) != 2 {
				return fmt.Errorf("usage: sched <item> <date>")
			}
			it, err := s.resolveItem(args[0])
			if err != nil {
				return err
			}

			target, err := domain.ParseDate(args[1])
			if err != nil {
				return err
			}

			if err := s.rec.MoveToDate(cmd.Context(), s.listID, it.ID, target); err != nil {
				return err
			}

			s.rec.Wait()
			return s.printList()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Move every dated item in the list")
	return cmd
}
