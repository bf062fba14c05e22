package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/policy"
)

// Kind identifies a slash command.
type Kind int

const (
	KindHelp Kind = iota
	KindAdd
	KindEdit
	KindBudget
	KindGoal
	KindBalance
	KindSpending
	KindAlerts
	KindTrends
	KindAllocation
	KindEfficiency
	KindRemember
	KindRecall
)

var kindNames = [...]string{
	KindHelp:       "help",
	KindAdd:        "add",
	KindEdit:       "edit",
	KindBudget:     "budget",
	KindGoal:       "goal",
	KindBalance:    "balance",
	KindSpending:   "spending",
	KindAlerts:     "alerts",
	KindTrends:     "trends",
	KindAllocation: "allocation",
	KindEfficiency: "efficiency",
	KindRemember:   "remember",
	KindRecall:     "recall",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Lookup resolves a command name to its Kind.
func Lookup(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// Kinds returns every command in help order.
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kindNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

type handlerFunc func(d *Dispatcher, ctx context.Context, args map[string]string) domain.Message

var handlers = map[Kind]handlerFunc{
	KindHelp:       (*Dispatcher).handleHelp,
	KindAdd:        (*Dispatcher).handleAdd,
	KindEdit:       (*Dispatcher).handleEdit,
	KindBudget:     (*Dispatcher).handleBudget,
	KindGoal:       (*Dispatcher).handleGoal,
	KindBalance:    (*Dispatcher).handleBalance,
	KindSpending:   (*Dispatcher).handleSpending,
	KindAlerts:     (*Dispatcher).handleAlerts,
	KindTrends:     (*Dispatcher).handleTrends,
	KindAllocation: (*Dispatcher).handleAllocation,
	KindEfficiency: (*Dispatcher).handleEfficiency,
	KindRemember:   (*Dispatcher).handleRemember,
	KindRecall:     (*Dispatcher).handleRecall,
}

// Usage describes a command for /help.
type Usage struct {
	Syntax      string
	Description string
}

var usages = map[Kind]Usage{
	KindHelp:       {"/help", "Show this list"},
	KindAdd:        {`/add amount=50000 category="Food" [note=".."] [date=YYYY-MM-DD] [wallet=".."|wallet_id=1] [type=income]`, "Record an expense or income"},
	KindEdit:       {`/edit id=12 [amount=..] [category=..] [note=..] [date=..] [wallet_id=..]`, "Change an existing transaction"},
	KindBudget:     {`/budget amount=2000000 category="Food" [month=THIS|YYYY-MM]`, "Set a monthly budget"},
	KindGoal:       {`/goal name="Laptop" target=20000000 [deadline=YYYY-MM-DD]`, "Create a savings goal"},
	KindBalance:    {"/balance", "Show wallet balances"},
	KindSpending:   {"/spending [month=THIS|YYYY-MM]", "Spending by category"},
	KindAlerts:     {"/alerts", "Budgets close to or over their limit"},
	KindTrends:     {"/trends [months=6]", "Monthly income and expenses"},
	KindAllocation: {"/allocation [month=THIS|YYYY-MM]", "How the budget is split across categories"},
	KindEfficiency: {"/efficiency [month=THIS|YYYY-MM]", "How well spending fits the budget"},
	KindRemember:   {`/remember key="city" value="Ha Noi"`, "Save a note on this device"},
	KindRecall:     {`/recall [key="city"]`, "Read saved notes"},
}

// UsageOf returns the help entry of a command.
func UsageOf(k Kind) Usage {
	return usages[k]
}

// QuickAction is a ready-made prompt offered on an empty conversation.
type QuickAction struct {
	Label  string
	Prompt string
}

// QuickActions is the catalogue shown while a conversation only holds its greeting.
var QuickActions = []QuickAction{
	{Label: "Balance", Prompt: "/balance"},
	{Label: "This month's spending", Prompt: "/spending month=THIS"},
	{Label: "Budget alerts", Prompt: "/alerts"},
	{Label: "Trends", Prompt: "/trends months=6"},
	{Label: "Saving tips", Prompt: "How can I save more money this month?"},
	{Label: "Commands", Prompt: "/help"},
}

// Validator checks command arguments before any collaborator is called.
type Validator interface {
	Validate(ctx context.Context, command string, args map[string]interface{}) (policy.Decision, error)
}

// Appender receives the message produced by a command.
type Appender interface {
	Append(msg domain.Message)
}

// Deps holds the collaborators used by the handlers.
type Deps struct {
	Expenses  domain.ExpenseStore
	Budgets   domain.BudgetStore
	Wallets   domain.WalletStore
	Goals     domain.GoalStore
	Memory    domain.MemoryStore
	Policy    Validator // nil means the built-in command policy
	Formatter Formatter
	Logger    *zap.Logger
	Now       func() time.Time
}

// defaultValidator loads the built-in command policy. When it cannot be
// loaded every validated command is rejected.
func defaultValidator(log *zap.Logger) Validator {
	engine, err := policy.NewEngine(context.Background(), policy.DefaultCommandPolicy)
	if err != nil {
		log.Error("failed to load command policy", zap.Error(err))
		return rejectAll{}
	}
	return engine
}

type rejectAll struct{}

func (rejectAll) Validate(context.Context, string, map[string]interface{}) (policy.Decision, error) {
	return policy.Decision{Reasons: []string{"command policy unavailable"}}, nil
}

// Dispatcher routes parsed commands to their handlers.
type Dispatcher struct {
	deps Deps
	sink Appender
	log  *zap.Logger
	now  func() time.Time
	fmt  Formatter
}

// NewDispatcher creates a dispatcher appending results to sink.
func NewDispatcher(deps Deps, sink Appender) *Dispatcher {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	if deps.Policy == nil {
		deps.Policy = defaultValidator(log)
	}
	return &Dispatcher{
		deps: deps,
		sink: sink,
		log:  log.Named("command"),
		now:  now,
		fmt:  deps.Formatter,
	}
}

// Dispatch handles a raw input line. It returns false when the input is not a
// known command, in which case nothing was appended and the caller should
// treat the text as a chat message.
func (d *Dispatcher) Dispatch(ctx context.Context, input string) bool {
	parsed, ok := Parse(input)
	if !ok {
		return false
	}
	kind, ok := Lookup(parsed.Name)
	if !ok {
		d.log.Debug("unknown command", zap.String("name", parsed.Name), zap.Error(domain.ErrParseIgnored))
		return false
	}

	msg := handlers[kind](d, ctx, parsed.Args)
	d.sink.Append(msg)
	return true
}

func (d *Dispatcher) reply(text string, sources ...domain.Source) domain.Message {
	return domain.NewAIMessage(text, d.now(), sources...)
}

// validate runs the command policy. A non-nil message means the command
// must stop and that message be shown.
func (d *Dispatcher) validate(ctx context.Context, kind Kind, input map[string]interface{}) *domain.Message {
	decision, err := d.deps.Policy.Validate(ctx, kind.String(), input)
	if err != nil {
		msg := d.fail(kind, "Could not validate the command", err)
		return &msg
	}
	if decision.Allowed {
		return nil
	}
	err = fmt.Errorf("%w: %s", domain.ErrValidationFailed, strings.Join(decision.Reasons, "; "))
	d.log.Info("command rejected", zap.Stringer("command", kind), zap.Error(err))
	msg := domain.NewErrorMessage(fmt.Sprintf("/%s: %s.", kind, strings.Join(decision.Reasons, "; ")), d.now())
	return &msg
}

func (d *Dispatcher) fail(kind Kind, text string, err error) domain.Message {
	cause := err.Error()
	if !errors.Is(err, domain.ErrValidationFailed) {
		err = fmt.Errorf("%w: %w", domain.ErrCollaboratorFailure, err)
	}
	d.log.Warn("command failed", zap.Stringer("command", kind), zap.Error(err))
	return domain.NewErrorMessage(fmt.Sprintf("%s: %s", text, cause), d.now())
}
