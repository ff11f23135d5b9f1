package cli

import (
	"fmt"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func reviewerCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviewer",
		Short: "Manage the reviewer pool",
	}
	cmd.AddCommand(reviewerAddCmd(app), reviewerListCmd(app))
	return cmd
}

func reviewerAddCmd(app *App) *cobra.Command {
	var role string
	r := &domain.Reviewer{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a reviewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			r.Role = domain.ReviewerRole(role)
			if err := app.Reviewers.Create(cmd.Context(), r); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "reviewer %s created (%s)\n", r.Name, r.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&r.Name, "name", "", "reviewer name")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleStaff), "role: staff, manager or partner")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func reviewerListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List reviewers",
		RunE: func(cmd *cobra.Command, args []string) error {
			reviewers, err := app.Reviewers.List(cmd.Context())
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return app.printJSON(reviewers)
			}
			tw := app.newTable()
			tw.AppendHeader(table.Row{"ID", "Name", "Role", "Active"})
			for _, r := range reviewers {
				tw.AppendRow(table.Row{r.ID, r.Name, r.Role, r.Active})
			}
			tw.Render()
			return nil
		},
	}
}
