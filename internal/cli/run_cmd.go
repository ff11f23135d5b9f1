package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func runCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the schedulers",
	}
	cmd.AddCommand(
		runPromoteCmd(app),
		runRolloverCmd(app),
		runAssignCmd(app),
		runLoopCmd(app),
	)
	return cmd
}

// nowFlag adds the clock override shared by every scheduler command so
// individual passes are reproducible.
func nowFlag(cmd *cobra.Command, now *string) {
	cmd.Flags().StringVar(now, "now", "", "clock override (YYYY-MM-DD or RFC3339, default wall clock)")
}

func runPromoteCmd(app *App) *cobra.Command {
	var now string
	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Promote obligations whose period has ended into pending_chase",
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseNow(now)
			if err != nil {
				return err
			}
			report, err := app.Rollover.RunPromotions(cmd.Context(), at)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "promoted %d obligation(s)\n", len(report.Promoted))
			printRunErrors(app, report.Errors)
			return nil
		},
	}
	nowFlag(cmd, &now)
	return cmd
}

func runRolloverCmd(app *App) *cobra.Command {
	var now string
	cmd := &cobra.Command{
		Use:   "rollover",
		Short: "Create successor obligations for instances filed past the cooling-off window",
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseNow(now)
			if err != nil {
				return err
			}
			report, err := app.Rollover.RunRollover(cmd.Context(), at)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "created %d successor(s)\n", len(report.Created))
			printRunErrors(app, report.Errors)
			return nil
		},
	}
	nowFlag(cmd, &now)
	return cmd
}

func runAssignCmd(app *App) *cobra.Command {
	var now string
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Distribute unassigned obligations in their filing month across the reviewer pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseNow(now)
			if err != nil {
				return err
			}
			report, err := app.Assignment.RunAutoAssign(cmd.Context(), at)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "assigned %d obligation(s), skipped %d\n", len(report.Assigned), report.Skipped)
			printRunErrors(app, report.Errors)
			return nil
		},
	}
	nowFlag(cmd, &now)
	return cmd
}

func runLoopCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "loop",
		Short: "Run all schedulers on an interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fmt.Fprintf(app.Out, "scheduler loop started, interval %s\n", app.LoopInterval)

			ticker := time.NewTicker(app.LoopInterval)
			defer ticker.Stop()

			// One pass immediately, then on every tick.
			app.runAllSchedulers(ctx)
			for {
				select {
				case <-ctx.Done():
					fmt.Fprintln(app.Out, "scheduler loop stopped")
					return nil
				case <-ticker.C:
					app.runAllSchedulers(ctx)
				}
			}
		},
	}
}

// runAllSchedulers runs one pass of each job. Promotion runs first so a
// freshly ended period can be chased in the same pass; rollover and
// assignment failures are independent and reported, not fatal.
func (a *App) runAllSchedulers(ctx context.Context) {
	now := time.Now().UTC()
	if report, err := a.Rollover.RunPromotions(ctx, now); err != nil {
		fmt.Fprintf(a.Out, "promotion pass failed: %v\n", err)
	} else {
		printRunErrors(a, report.Errors)
	}
	if report, err := a.Rollover.RunRollover(ctx, now); err != nil {
		fmt.Fprintf(a.Out, "rollover pass failed: %v\n", err)
	} else {
		printRunErrors(a, report.Errors)
	}
	if report, err := a.Assignment.RunAutoAssign(ctx, now); err != nil {
		fmt.Fprintf(a.Out, "assignment pass failed: %v\n", err)
	} else {
		printRunErrors(a, report.Errors)
	}
}

func printRunErrors(app *App, errs []error) {
	for _, err := range errs {
		fmt.Fprintf(app.Out, "error: %v\n", err)
	}
}
