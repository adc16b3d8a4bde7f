package apiclient

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ashureev/propdash/internal/domain"
)

// Dashboard fetches the overview, recent transactions and expense categories
// for one property concurrently. The first failure cancels the others.
func (c *Client) Dashboard(ctx context.Context, property string) (domain.Dashboard, error) {
	if property == "" {
		property = domain.AllProperties
	}
	out := domain.Dashboard{Property: property}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ov, err := c.FinancialOverview(ctx, property)
		out.Overview = ov
		return err
	})
	g.Go(func() error {
		txs, err := c.RecentTransactions(ctx, property)
		out.RecentTransactions = txs
		return err
	})
	g.Go(func() error {
		cats, err := c.ExpenseCategories(ctx, property)
		out.ExpenseCategories = domain.ExpensesOnly(cats)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Dashboard{}, err
	}

	if out.RecentTransactions == nil {
		out.RecentTransactions = []domain.Transaction{}
	}
	return out, nil
}

// Report fetches the property list, monthly analytics and expense categories
// for one property and year, and adds the derived totals. now picks the
// selectable years.
func (c *Client) Report(ctx context.Context, property string, year int, now time.Time) (domain.Report, error) {
	if property == "" {
		property = domain.AllProperties
	}
	out := domain.Report{Property: property, Year: year, Years: domain.SelectableYears(now)}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		names, err := c.PropertyNames(ctx)
		out.Properties = domain.WithAllProperties(names)
		return err
	})
	g.Go(func() error {
		rows, err := c.MonthlyAnalytics(ctx, property, year)
		out.Monthly = rows
		return err
	})
	g.Go(func() error {
		cats, err := c.ExpenseCategories(ctx, property)
		out.ExpenseCategories = domain.ExpensesOnly(cats)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Report{}, err
	}

	if out.Monthly == nil {
		out.Monthly = []domain.MonthlyAnalytics{}
	}
	out.Months = domain.MonthLabels(out.Monthly)
	out.Totals = domain.SummarizeMonthly(out.Monthly)
	return out, nil
}
