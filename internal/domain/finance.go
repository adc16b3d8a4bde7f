// Package domain contains the data model shared by the dashboard server and CLI.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AllProperties is the property filter value meaning "no filter".
const AllProperties = "All Properties"

// FinancialOverview is the headline block of the dashboard.
type FinancialOverview struct {
	TotalRevenue  Amount   `json:"totalRevenue"`
	TotalExpenses Amount   `json:"totalExpenses"`
	NetProfit     Amount   `json:"netProfit"`
	StaffExpenses Amount   `json:"staffExpenses"`
	RevenueTrend  *float64 `json:"revenueTrend,omitempty"`
	ExpensesTrend *float64 `json:"expensesTrend,omitempty"`
	ProfitTrend   *float64 `json:"profitTrend,omitempty"`
}

// Transaction is one row of the recent transactions list.
type Transaction struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Method   string `json:"method"`
	Amount   Amount `json:"amount"`
	Time     string `json:"time"`
}

// ExpenseCategory is one slice of the expense breakdown.
type ExpenseCategory struct {
	Category   string  `json:"category"`
	Amount     Amount  `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// MonthlyAnalytics is one month of the reports time series. Month is 1-12.
type MonthlyAnalytics struct {
	Month    int    `json:"month"`
	Year     int    `json:"year"`
	Revenue  Amount `json:"revenue"`
	Expenses Amount `json:"expenses"`
	Profit   Amount `json:"profit"`
}

// Label returns the short month name ("Jan".."Dec").
func (m MonthlyAnalytics) Label() string {
	if m.Month < 1 || m.Month > 12 {
		return ""
	}
	return time.Month(m.Month).String()[:3]
}

// Dashboard is the aggregate served to the dashboard view.
type Dashboard struct {
	Property           string            `json:"property"`
	Overview           FinancialOverview `json:"overview"`
	RecentTransactions []Transaction     `json:"recentTransactions"`
	ExpenseCategories  []ExpenseCategory `json:"expenseCategories"`
}

// ReportTotals summarizes a year of monthly analytics.
type ReportTotals struct {
	Revenue      Amount  `json:"revenue"`
	Expenses     Amount  `json:"expenses"`
	Profit       Amount  `json:"profit"`
	ProfitMargin float64 `json:"profitMargin"`
}

// Report is the aggregate served to the reports view.
type Report struct {
	Property          string             `json:"property"`
	Year              int                `json:"year"`
	Properties        []string           `json:"properties"`
	Years             []int              `json:"years"`
	Months            []string           `json:"months"`
	Monthly           []MonthlyAnalytics `json:"monthly"`
	ExpenseCategories []ExpenseCategory  `json:"expenseCategories"`
	Totals            ReportTotals       `json:"totals"`
}

// SummarizeMonthly totals a monthly series. Expenses are reported as absolute
// values since the API returns them signed for some properties. The margin is
// profit over revenue in percent, rounded to two decimals, zero when there is
// no revenue.
func SummarizeMonthly(rows []MonthlyAnalytics) ReportTotals {
	var totals ReportTotals
	for _, r := range rows {
		totals.Revenue = totals.Revenue.Add(r.Revenue)
		totals.Expenses = totals.Expenses.Add(r.Expenses.Abs())
		totals.Profit = totals.Profit.Add(r.Profit)
	}
	if !totals.Revenue.IsZero() {
		margin := totals.Profit.Decimal.Div(totals.Revenue.Decimal).Mul(decimal.NewFromInt(100)).Round(2)
		totals.ProfitMargin = margin.InexactFloat64()
	}
	return totals
}

// SelectableYears returns the current year and the four before it, newest first.
func SelectableYears(now time.Time) []int {
	years := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		years = append(years, now.Year()-i)
	}
	return years
}

// MonthLabels maps a monthly series to its labels.
func MonthLabels(rows []MonthlyAnalytics) []string {
	labels := make([]string, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, r.Label())
	}
	return labels
}

// ExpensesOnly drops the "revenue" pseudo-category the API mixes into the
// expense breakdown.
func ExpensesOnly(cats []ExpenseCategory) []ExpenseCategory {
	out := make([]ExpenseCategory, 0, len(cats))
	for _, c := range cats {
		if strings.EqualFold(strings.TrimSpace(c.Category), "revenue") {
			continue
		}
		out = append(out, c)
	}
	return out
}

// WithAllProperties makes sure the unfiltered option leads the list.
func WithAllProperties(names []string) []string {
	out := make([]string, 0, len(names)+1)
	out = append(out, AllProperties)
	for _, n := range names {
		if n == "" || n == AllProperties {
			continue
		}
		out = append(out, n)
	}
	return out
}
