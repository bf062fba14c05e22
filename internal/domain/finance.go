package domain

// ExpenseInput is the payload for creating an expense or income record.
type ExpenseInput struct {
	Amount    float64 `json:"amount"`
	Category  string  `json:"category"`
	Note      string  `json:"description,omitempty"`
	Date      string  `json:"date,omitempty"` // YYYY-MM-DD
	WalletID  int64   `json:"wallet_id"`
	IsExpense bool    `json:"is_expense"`
}

// BudgetInput is the payload for creating (or overwriting) a monthly budget.
type BudgetInput struct {
	Month    int     `json:"month"`
	Year     int     `json:"year"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// BudgetAlert is a budget at or above the alert threshold.
type BudgetAlert struct {
	Category   string  `json:"category"`
	Percentage float64 `json:"percentage"`
	Spent      float64 `json:"spent"`
	Limit      float64 `json:"amount"`
	Status     string  `json:"status"`
}

// BudgetStatus is a budget of a period with its spending.
type BudgetStatus struct {
	Category   string  `json:"category"`
	Spent      float64 `json:"spent"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Status     string  `json:"status"`
}

// Exceeded reports whether spending went over the budgeted amount.
func (b BudgetStatus) Exceeded() bool {
	return b.Status == "exceeded" || b.Spent > b.Amount
}

// Wallet is a money container with its balance.
type Wallet struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Balance   float64 `json:"balance"`
	Currency  string  `json:"currency,omitempty"`
	IsDefault bool    `json:"is_default,omitempty"`
}

// GoalInput is the payload for creating a savings goal.
type GoalInput struct {
	Name         string  `json:"name"`
	TargetAmount float64 `json:"target_amount"`
	Deadline     string  `json:"deadline,omitempty"` // YYYY-MM-DD
}

// CategoryTotal is the spending of one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"total"`
}

// TrendRow is the income and expenses of one month.
type TrendRow struct {
	Year     int     `json:"year"`
	Month    int     `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// StatisticsQuery selects the month to aggregate spending for.
type StatisticsQuery struct {
	Period string // only "month" is supported
	Month  int
	Year   int
}
