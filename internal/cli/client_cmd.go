package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func clientCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage client cadence records",
	}
	cmd.AddCommand(clientAddCmd(app), clientListCmd(app))
	return cmd
}

func clientAddCmd(app *App) *cobra.Command {
	var (
		quarterGroup string
		yearEnd      string
	)
	c := &domain.Client{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a client and its filing cadences",
		RunE: func(cmd *cobra.Command, args []string) error {
			if quarterGroup != "" {
				qg := domain.QuarterGroup(quarterGroup)
				c.VATQuarterGroup = &qg
			}
			if yearEnd != "" {
				month, day, err := parseYearEnd(yearEnd)
				if err != nil {
					return err
				}
				c.YearEndMonth, c.YearEndDay = month, day
			}
			if err := app.Clients.Create(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "client %s created (%s)\n", c.Code, c.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&c.Code, "code", "", "client code, e.g. NZ-101")
	cmd.Flags().StringVar(&c.Name, "name", "", "client name")
	cmd.Flags().StringVar(&quarterGroup, "vat-quarter-group", "", "VAT quarter group: 1_4_7_10, 2_5_8_11 or 3_6_9_12")
	cmd.Flags().StringVar(&yearEnd, "year-end", "", "accounting year end as MM-DD, e.g. 03-31")
	cmd.Flags().StringVar(&c.RegistryRef, "registry-ref", "", "company registry reference")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func clientListCmd(app *App) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			clients, err := app.Clients.List(cmd.Context(), !all)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return app.printJSON(clients)
			}
			tw := app.newTable()
			tw.AppendHeader(table.Row{"Code", "Name", "VAT Group", "Year End", "Registry Ref", "Active"})
			for _, c := range clients {
				group := ""
				if c.VATQuarterGroup != nil {
					group = string(*c.VATQuarterGroup)
				}
				yearEnd := ""
				if c.YearEndMonth != 0 {
					yearEnd = fmt.Sprintf("%02d-%02d", c.YearEndMonth, c.YearEndDay)
				}
				tw.AppendRow(table.Row{c.Code, c.Name, group, yearEnd, c.RegistryRef, c.Active})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include inactive clients")
	return cmd
}

func parseYearEnd(s string) (time.Month, int, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid year end %q, expected MM-DD", s)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid year end month in %q", s)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > 31 {
		return 0, 0, fmt.Errorf("invalid year end day in %q", s)
	}
	return time.Month(month), day, nil
}
