package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ashureev/propdash/internal/domain"
)

var headingStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)

func heading(out io.Writer, title string) {
	fmt.Fprintln(out, headingStyle.Render(title))
}

func printTable(out io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(out, t.Render())
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func money(a domain.Amount) string {
	return a.StringFixed(2)
}

func trend(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%+.1f%%", *v)
}

func (a *app) dashboardCmd() *cobra.Command {
	var (
		property string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the financial overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			d, err := a.client.Dashboard(ctx, property)
			if err != nil {
				return remoteErr(err)
			}
			if asJSON {
				return printJSON(a.out, d)
			}

			o := d.Overview
			heading(a.out, "Overview: "+d.Property)
			printTable(a.out, []string{"Revenue", "Expenses", "Net profit", "Staff"}, [][]string{{
				money(o.TotalRevenue) + " " + trend(o.RevenueTrend),
				money(o.TotalExpenses) + " " + trend(o.ExpensesTrend),
				money(o.NetProfit) + " " + trend(o.ProfitTrend),
				money(o.StaffExpenses),
			}})

			heading(a.out, "Recent transactions")
			rows := make([][]string, 0, len(d.RecentTransactions))
			for _, t := range d.RecentTransactions {
				rows = append(rows, []string{t.Type, t.Category, t.Method, money(t.Amount), t.Time})
			}
			printTable(a.out, []string{"Type", "Category", "Method", "Amount", "Time"}, rows)

			heading(a.out, "Expense categories")
			rows = make([][]string, 0, len(d.ExpenseCategories))
			for _, c := range d.ExpenseCategories {
				rows = append(rows, []string{c.Category, money(c.Amount), fmt.Sprintf("%.1f%%", c.Percentage)})
			}
			printTable(a.out, []string{"Category", "Amount", "Share"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&property, "property", domain.AllProperties, "property filter")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (a *app) reportsCmd() *cobra.Command {
	var (
		property string
		year     int
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Show monthly revenue and expenses for a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			now := time.Now()
			if year == 0 {
				year = now.Year()
			}
			if year < 1900 || year > 9999 {
				return fmt.Errorf("year must be a four-digit number, got %d", year)
			}
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			rep, err := a.client.Report(ctx, property, year, now)
			if err != nil {
				return remoteErr(err)
			}
			if asJSON {
				return printJSON(a.out, rep)
			}

			heading(a.out, fmt.Sprintf("%s, %d", rep.Property, rep.Year))
			rows := make([][]string, 0, len(rep.Monthly)+1)
			for i, m := range rep.Monthly {
				rows = append(rows, []string{rep.Months[i], money(m.Revenue), money(m.Expenses), money(m.Profit)})
			}
			rows = append(rows, []string{"Total", money(rep.Totals.Revenue), money(rep.Totals.Expenses), money(rep.Totals.Profit)})
			printTable(a.out, []string{"Month", "Revenue", "Expenses", "Profit"}, rows)
			fmt.Fprintf(a.out, "Profit margin: %s%%\n", strconv.FormatFloat(rep.Totals.ProfitMargin, 'f', 2, 64))
			return nil
		},
	}
	cmd.Flags().StringVar(&property, "property", domain.AllProperties, "property filter")
	cmd.Flags().IntVar(&year, "year", 0, "report year (default current year)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
