package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
)

const dateLayout = "2006-01-02"

// CreateExpense records an expense or income.
func (c *Client) CreateExpense(ctx context.Context, in domain.ExpenseInput) error {
	return c.do(ctx, http.MethodPost, "/expenses", in, nil)
}

// UpdateExpense changes the given fields of an expense.
func (c *Client) UpdateExpense(ctx context.Context, id string, fields map[string]interface{}) error {
	return c.do(ctx, http.MethodPut, "/expenses/"+url.PathEscape(id), fields, nil)
}

// GetStatistics returns spending per category for a month.
func (c *Client) GetStatistics(ctx context.Context, q domain.StatisticsQuery) ([]domain.CategoryTotal, error) {
	start := time.Date(q.Year, time.Month(q.Month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	params := url.Values{}
	params.Set("start_date", start.Format(dateLayout))
	params.Set("end_date", end.Format(dateLayout))

	var resp struct {
		ByCategory []domain.CategoryTotal `json:"by_category"`
	}
	if err := c.do(ctx, http.MethodGet, "/expenses/statistics?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.ByCategory, nil
}

// GetTrends returns monthly totals for the last months months.
func (c *Client) GetTrends(ctx context.Context, months int) ([]domain.TrendRow, error) {
	now := c.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	params := url.Values{}
	params.Set("group_by", "monthly")
	params.Set("start_date", start.Format(dateLayout))

	var resp struct {
		Trends []domain.TrendRow `json:"trends"`
	}
	if err := c.do(ctx, http.MethodGet, "/expenses/trends?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Trends, nil
}

// CreateBudget sets the budget of a category for a month.
func (c *Client) CreateBudget(ctx context.Context, in domain.BudgetInput) error {
	return c.do(ctx, http.MethodPost, "/budgets", in, nil)
}

// GetAlerts returns the budgets over their alert threshold.
func (c *Client) GetAlerts(ctx context.Context) ([]domain.BudgetAlert, error) {
	var resp struct {
		Alerts []domain.BudgetAlert `json:"alerts"`
	}
	if err := c.do(ctx, http.MethodGet, "/budgets/alerts", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Alerts, nil
}

// GetCurrent returns the budgets of a month with their spending.
func (c *Client) GetCurrent(ctx context.Context, month, year int) ([]domain.BudgetStatus, error) {
	params := url.Values{}
	params.Set("month", strconv.Itoa(month))
	params.Set("year", strconv.Itoa(year))

	var resp struct {
		Budgets []domain.BudgetStatus `json:"budgets"`
	}
	if err := c.do(ctx, http.MethodGet, "/budgets/current?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Budgets, nil
}

// GetAll returns every wallet.
func (c *Client) GetAll(ctx context.Context) ([]domain.Wallet, error) {
	var resp struct {
		Wallets []domain.Wallet `json:"wallets"`
	}
	if err := c.do(ctx, http.MethodGet, "/wallets", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Wallets, nil
}

// CreateGoal creates a savings goal.
func (c *Client) CreateGoal(ctx context.Context, in domain.GoalInput) error {
	return c.do(ctx, http.MethodPost, "/goals", in, nil)
}
