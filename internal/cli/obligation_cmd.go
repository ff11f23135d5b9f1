package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/BharathVasireddy/numericalz-sub006/internal/workflow"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func obligationCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "obligation",
		Aliases: []string{"obl"},
		Short:   "Manage filing obligation instances",
	}
	cmd.AddCommand(
		obligationCreateCmd(app),
		obligationListCmd(app),
		obligationShowCmd(app),
		obligationTransitionCmd(app),
		obligationAssignCmd(app),
	)
	return cmd
}

func obligationCreateCmd(app *App) *cobra.Command {
	var (
		kind string
		ref  string
	)
	cmd := &cobra.Command{
		Use:   "create <client-id>",
		Short: "Create the first obligation instance for a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refDate, err := parseNow(ref)
			if err != nil {
				return err
			}
			obl, err := app.Obligations.CreateFirst(cmd.Context(), args[0], domain.ObligationKind(kind), refDate)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "obligation %s created: period %s to %s, due %s\n",
				obl.ID, formatDate(obl.PeriodStart), formatDate(obl.PeriodEnd), formatDate(obl.DueDate))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "obligation kind: vat_return, annual_accounts, corporation_tax or confirmation_statement")
	cmd.Flags().StringVar(&ref, "ref", "", "reference date the first period must contain (default today)")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func obligationListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <client-id>",
		Short: "List a client's obligations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			obls, err := app.Obligations.ListByClient(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return app.printJSON(obls)
			}
			tw := app.newTable()
			tw.AppendHeader(table.Row{"ID", "Kind", "Period End", "Due", "Source", "Stage", "Reviewer"})
			for _, o := range obls {
				reviewer := ""
				if o.AssignedReviewerID != nil {
					reviewer = *o.AssignedReviewerID
				}
				tw.AppendRow(table.Row{o.ID, o.Kind, formatDate(o.PeriodEnd), formatDate(o.DueDate), o.DueSource, o.CurrentStage, reviewer})
			}
			tw.Render()
			return nil
		},
	}
}

func obligationShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an obligation with its milestones, history and stage durations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			obl, err := app.Obligations.GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			entries, err := app.Obligations.History(ctx, obl.ID)
			if err != nil {
				return err
			}
			durations, err := app.Obligations.StageDurations(ctx, obl.ID, time.Now().UTC())
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return app.printJSON(map[string]any{
					"obligation": obl,
					"history":    entries,
					"durations":  durations,
				})
			}

			fmt.Fprintf(app.Out, "%s %s\n", obl.Kind, obl.ID)
			fmt.Fprintf(app.Out, "  period: %s to %s\n", formatDate(obl.PeriodStart), formatDate(obl.PeriodEnd))
			fmt.Fprintf(app.Out, "  due:    %s (%s)\n", formatDate(obl.DueDate), obl.DueSource)
			fmt.Fprintf(app.Out, "  stage:  %s (version %d)\n", obl.CurrentStage, obl.Version)
			if obl.AssignedReviewerID != nil {
				fmt.Fprintf(app.Out, "  reviewer: %s\n", *obl.AssignedReviewerID)
			}

			if len(obl.Milestones) > 0 {
				tw := app.newTable()
				tw.SetTitle("Milestones")
				tw.AppendHeader(table.Row{"Field", "Reached", "By"})
				cat, err := workflow.CatalogFor(obl.Kind)
				if err != nil {
					return err
				}
				// Catalog order, not map order.
				for _, s := range cat.Stages() {
					if s.Milestone == "" {
						continue
					}
					if m, ok := obl.Milestone(s.Milestone); ok {
						tw.AppendRow(table.Row{s.Milestone, m.ReachedAt.Format(time.RFC3339), m.ActorName})
					}
				}
				tw.Render()
			}

			tw := app.newTable()
			tw.SetTitle("History")
			tw.AppendHeader(table.Row{"When", "From", "To", "Actor", "Notes"})
			for _, e := range entries {
				from := ""
				if e.FromStage != nil {
					from = string(*e.FromStage)
				}
				tw.AppendRow(table.Row{e.ChangedAt.Format(time.RFC3339), from, e.ToStage, e.ActorName, e.Notes})
			}
			tw.Render()

			tw = app.newTable()
			tw.SetTitle("Stage durations")
			tw.AppendHeader(table.Row{"Stage", "Entered", "Days"})
			for _, d := range durations {
				tw.AppendRow(table.Row{d.Stage, formatDate(d.EnteredAt), fmt.Sprintf("%.1f", d.Days)})
			}
			tw.Render()
			return nil
		},
	}
}

func obligationTransitionCmd(app *App) *cobra.Command {
	var (
		actor    domain.Actor
		opts     workflow.TransitionOptions
		reviewer string
	)
	cmd := &cobra.Command{
		Use:   "transition <id> <stage>",
		Short: "Move an obligation to another stage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("reviewer") {
				opts.AssignReviewer = &reviewer
			}
			obl, err := app.Transitions.Transition(cmd.Context(), args[0], domain.StageID(args[1]), actor, opts)
			if err != nil {
				var cr *workflow.ConfirmationRequiredError
				if errors.As(err, &cr) {
					return fmt.Errorf("%s (re-run with --confirm-filing)", cr.Warning)
				}
				return err
			}
			fmt.Fprintf(app.Out, "obligation %s now in stage %s\n", obl.ID, obl.CurrentStage)
			return nil
		},
	}
	actorFlags(cmd, &actor)
	cmd.Flags().BoolVar(&opts.ConfirmFiling, "confirm-filing", false, "acknowledge the filing confirmation before marking filed")
	cmd.Flags().BoolVar(&opts.Reopen, "reopen", false, "allow moving off a filed obligation")
	cmd.Flags().StringVar(&reviewer, "reviewer", "", "set the assigned reviewer in the same move (empty unassigns)")
	cmd.Flags().StringVar(&opts.Notes, "note", "", "free-text note for the history ledger")
	return cmd
}

func obligationAssignCmd(app *App) *cobra.Command {
	var now string
	cmd := &cobra.Command{
		Use:   "assign <id>",
		Short: "Assign the next reviewer in the pool to one obligation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseNow(now)
			if err != nil {
				return err
			}
			obl, err := app.Assignment.AssignOne(cmd.Context(), args[0], at)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "obligation %s assigned to %s\n", obl.ID, *obl.AssignedReviewerID)
			return nil
		},
	}
	cmd.Flags().StringVar(&now, "now", "", "clock override for the eligibility check (YYYY-MM-DD)")
	return cmd
}
