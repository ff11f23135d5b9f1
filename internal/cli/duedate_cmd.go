package cli

import (
	"fmt"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/spf13/cobra"
)

func dueDateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duedate",
		Short: "Manage due-date overrides on annual obligations",
	}
	cmd.AddCommand(dueDateSetCmd(app), dueDateResetCmd(app), dueDateRefreshCmd(app))
	return cmd
}

func dueDateSetCmd(app *App) *cobra.Command {
	var actor domain.Actor
	cmd := &cobra.Command{
		Use:   "set <id> <date>",
		Short: "Pin a manual due date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(args[1])
			if err != nil {
				return err
			}
			obl, err := app.DueDates.SetManual(cmd.Context(), args[0], date, actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "obligation %s due %s (manual)\n", obl.ID, formatDate(obl.DueDate))
			return nil
		},
	}
	actorFlags(cmd, &actor)
	return cmd
}

func dueDateResetCmd(app *App) *cobra.Command {
	var actor domain.Actor
	cmd := &cobra.Command{
		Use:   "reset <id>",
		Short: "Drop the manual override and recompute from the period end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			obl, err := app.DueDates.ResetAuto(cmd.Context(), args[0], actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "obligation %s due %s (auto)\n", obl.ID, formatDate(obl.DueDate))
			return nil
		},
	}
	actorFlags(cmd, &actor)
	return cmd
}

func dueDateRefreshCmd(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "refresh <id>",
		Short: "Re-read the authoritative period end from the company registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			obl, warnings, err := app.DueDates.RefreshFromRegistry(cmd.Context(), args[0], force)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Fprintf(app.Out, "warning: %s\n", w)
			}
			fmt.Fprintf(app.Out, "obligation %s: period end %s, due %s (%s)\n",
				obl.ID, formatDate(obl.PeriodEnd), formatDate(obl.DueDate), obl.DueSource)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "apply the registry value even over a manual override")
	return cmd
}
