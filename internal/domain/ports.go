package domain

import "context"

// SessionStore defines the remote conversation persistence.
type SessionStore interface {
	ListSessions(ctx context.Context) ([]Conversation, error)
	CreateSession(ctx context.Context, personality Personality) (string, error)
	UpdateSession(ctx context.Context, id string, personality Personality) error
	DeleteSession(ctx context.Context, id string) error
	GetHistory(ctx context.Context, id string) ([]HistoryRecord, error)
}

// ExpenseStore defines the remote expense persistence and aggregates.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, in ExpenseInput) error
	UpdateExpense(ctx context.Context, id string, fields map[string]interface{}) error
	GetStatistics(ctx context.Context, q StatisticsQuery) ([]CategoryTotal, error)
	GetTrends(ctx context.Context, months int) ([]TrendRow, error)
}

// BudgetStore defines the remote budget persistence.
type BudgetStore interface {
	CreateBudget(ctx context.Context, in BudgetInput) error
	GetAlerts(ctx context.Context) ([]BudgetAlert, error)
	GetCurrent(ctx context.Context, month, year int) ([]BudgetStatus, error)
}

// WalletStore defines read access to wallets.
type WalletStore interface {
	GetAll(ctx context.Context) ([]Wallet, error)
}

// GoalStore defines the remote savings goal persistence.
type GoalStore interface {
	CreateGoal(ctx context.Context, in GoalInput) error
}

// MemoryStore is the device-local key/value memory used by /remember and /recall.
type MemoryStore interface {
	Remember(ctx context.Context, key, value string) error
	Recall(ctx context.Context, key string) (string, bool, error)
	All(ctx context.Context) (map[string]string, error)
}
