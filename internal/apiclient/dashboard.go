package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ashureev/propdash/internal/domain"
)

// Remote dashboard endpoints.
const (
	PathFinancialOverview  = "/api/dashboard/financial-overview"
	PathRecentTransactions = "/api/dashboard/recent-transactions"
	PathExpenseCategories  = "/api/dashboard/expense-categories"
	PathMonthlyAnalytics   = "/api/dashboard/monthly-analytics"
	PathPropertyNames      = "/api/dashboard/properties"
)

func propertyQuery(path, property string) string {
	if property == "" {
		property = domain.AllProperties
	}
	return path + "?property=" + url.QueryEscape(property)
}

// FinancialOverview fetches the headline aggregates for a property.
func (c *Client) FinancialOverview(ctx context.Context, property string) (domain.FinancialOverview, error) {
	var out domain.FinancialOverview
	err := c.Call(ctx, http.MethodGet, propertyQuery(PathFinancialOverview, property), nil, &out)
	return out, err
}

// RecentTransactions fetches the latest transactions for a property.
func (c *Client) RecentTransactions(ctx context.Context, property string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := c.Call(ctx, http.MethodGet, propertyQuery(PathRecentTransactions, property), nil, &out)
	return out, err
}

// ExpenseCategories fetches the category breakdown for a property.
func (c *Client) ExpenseCategories(ctx context.Context, property string) ([]domain.ExpenseCategory, error) {
	var out []domain.ExpenseCategory
	err := c.Call(ctx, http.MethodGet, propertyQuery(PathExpenseCategories, property), nil, &out)
	return out, err
}

// MonthlyAnalytics fetches per-month revenue and expenses for one year.
func (c *Client) MonthlyAnalytics(ctx context.Context, property string, year int) ([]domain.MonthlyAnalytics, error) {
	var out []domain.MonthlyAnalytics
	path := propertyQuery(PathMonthlyAnalytics, property) + "&year=" + strconv.Itoa(year)
	err := c.Call(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// PropertyNames lists the property names usable as a filter.
func (c *Client) PropertyNames(ctx context.Context) ([]string, error) {
	var out []string
	err := c.Call(ctx, http.MethodGet, PathPropertyNames, nil, &out)
	return out, err
}
