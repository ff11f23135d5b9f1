package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd builds the numz command tree.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "numz",
		Short:         "Deadline and workflow engine for recurring filing obligations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("json", false, "emit JSON instead of tables")
	_ = viper.BindPFlag("json", root.PersistentFlags().Lookup("json"))

	root.AddCommand(
		clientCmd(app),
		reviewerCmd(app),
		obligationCmd(app),
		dueDateCmd(app),
		runCmd(app),
	)
	return root
}
