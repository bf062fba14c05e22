package command

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
)

const dateLayout = "2006-01-02"

var (
	expensesSource = domain.Source{Label: "Open expenses", Route: "/expenses"}
	budgetsSource  = domain.Source{Label: "Open budgets", Route: "/budgets"}
	goalsSource    = domain.Source{Label: "Open goals", Route: "/goals"}
	walletsSource  = domain.Source{Label: "Open wallets", Route: "/wallets"}
)

// maxAmount is the largest absolute amount accepted from a command.
const maxAmount = 1e15

func parseAmount(raw string) (float64, bool) {
	cleaned := strings.NewReplacer(",", "", "_", "", " ", "").Replace(raw)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxAmount {
		return 0, false
	}
	return v, true
}

func validDate(raw string) bool {
	_, err := time.Parse(dateLayout, raw)
	return err == nil
}

// putAmount copies a parsed amount into the policy input. Unparsable
// amounts are left out so the policy reports them as missing.
func putAmount(input map[string]interface{}, key, raw string) float64 {
	v, ok := parseAmount(raw)
	if ok {
		input[key] = v
	}
	return v
}

func (d *Dispatcher) handleAdd(ctx context.Context, args map[string]string) domain.Message {
	input := map[string]interface{}{"category": args["category"]}
	amount := putAmount(input, "amount", args["amount"])

	date := strings.TrimSpace(args["date"])
	if date == "" {
		date = d.now().Format(dateLayout)
	}
	input["date_valid"] = validDate(date)

	var walletID int64
	rawWalletID, hasWalletID := args["wallet_id"]
	if hasWalletID {
		id, err := strconv.ParseInt(strings.TrimSpace(rawWalletID), 10, 64)
		input["wallet_id_valid"] = err == nil
		walletID = id
	}
	if msg := d.validate(ctx, KindAdd, input); msg != nil {
		return *msg
	}

	walletName := ""
	if !hasWalletID {
		w, msg := d.resolveWallet(ctx, args["wallet"])
		if msg != nil {
			return *msg
		}
		walletID, walletName = w.ID, w.Name
	}

	isExpense := !strings.EqualFold(strings.TrimSpace(args["type"]), "income")
	in := domain.ExpenseInput{
		Amount:    amount,
		Category:  strings.TrimSpace(args["category"]),
		Note:      args["note"],
		Date:      date,
		WalletID:  walletID,
		IsExpense: isExpense,
	}
	if err := d.deps.Expenses.CreateExpense(ctx, in); err != nil {
		return d.fail(KindAdd, "Could not record the transaction", err)
	}

	kind := "expense"
	if !isExpense {
		kind = "income"
	}
	text := fmt.Sprintf("Recorded %s of %s in %s on %s", kind, d.fmt.Money(in.Amount), in.Category, in.Date)
	if walletName != "" {
		text += fmt.Sprintf(" (wallet %s)", walletName)
	}
	return d.reply(text+".", expensesSource)
}

// resolveWallet picks the wallet named by name, or the default (else first)
// wallet when name is empty.
func (d *Dispatcher) resolveWallet(ctx context.Context, name string) (domain.Wallet, *domain.Message) {
	wallets, err := d.deps.Wallets.GetAll(ctx)
	if err != nil {
		msg := d.fail(KindAdd, "Could not load wallets", err)
		return domain.Wallet{}, &msg
	}
	if len(wallets) == 0 {
		msg := domain.NewErrorMessage("You have no wallet yet. Create one before adding transactions.", d.now())
		return domain.Wallet{}, &msg
	}

	name = strings.TrimSpace(name)
	if name != "" {
		for _, w := range wallets {
			if strings.EqualFold(w.Name, name) {
				return w, nil
			}
		}
		msg := domain.NewErrorMessage(fmt.Sprintf("/add: wallet %q not found.", name), d.now())
		return domain.Wallet{}, &msg
	}

	for _, w := range wallets {
		if w.IsDefault {
			return w, nil
		}
	}
	return wallets[0], nil
}

var editableFields = []string{"amount", "category", "note", "date", "wallet_id"}

func (d *Dispatcher) handleEdit(ctx context.Context, args map[string]string) domain.Message {
	id := strings.TrimSpace(args["id"])
	input := map[string]interface{}{"id": id}
	fields := make(map[string]interface{})

	for _, key := range editableFields {
		raw, ok := args[key]
		if !ok {
			continue
		}
		switch key {
		case "amount":
			v, valid := parseAmount(raw)
			input["amount_valid"] = valid && v > 0
			fields["amount"] = v
		case "date":
			input["date_valid"] = validDate(raw)
			fields["date"] = raw
		case "wallet_id":
			v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			input["wallet_id_valid"] = err == nil
			fields["wallet_id"] = v
		case "note":
			fields["description"] = raw
		default:
			fields[key] = raw
		}
	}
	input["field_count"] = len(fields)

	if msg := d.validate(ctx, KindEdit, input); msg != nil {
		return *msg
	}
	if err := d.deps.Expenses.UpdateExpense(ctx, id, fields); err != nil {
		return d.fail(KindEdit, "Could not update the transaction", err)
	}

	changed := make([]string, 0, len(fields))
	for k := range fields {
		changed = append(changed, k)
	}
	sort.Strings(changed)
	return d.reply(fmt.Sprintf("Updated transaction #%s (%s).", id, strings.Join(changed, ", ")), expensesSource)
}

func (d *Dispatcher) handleBudget(ctx context.Context, args map[string]string) domain.Message {
	input := map[string]interface{}{"category": args["category"]}
	amount := putAmount(input, "amount", args["amount"])
	if msg := d.validate(ctx, KindBudget, input); msg != nil {
		return *msg
	}

	period := ParsePeriod(args["month"], d.now())
	in := domain.BudgetInput{
		Month:    int(period.Month),
		Year:     period.Year,
		Category: strings.TrimSpace(args["category"]),
		Amount:   amount,
	}
	if err := d.deps.Budgets.CreateBudget(ctx, in); err != nil {
		return d.fail(KindBudget, "Could not save the budget", err)
	}
	return d.reply(fmt.Sprintf("Budget for %s in %s set to %s.", in.Category, period, d.fmt.Money(in.Amount)), budgetsSource)
}

func (d *Dispatcher) handleGoal(ctx context.Context, args map[string]string) domain.Message {
	input := map[string]interface{}{"name": args["name"]}
	target := putAmount(input, "target", args["target"])
	deadline := strings.TrimSpace(args["deadline"])
	if deadline != "" {
		input["deadline_valid"] = validDate(deadline)
	}
	if msg := d.validate(ctx, KindGoal, input); msg != nil {
		return *msg
	}

	in := domain.GoalInput{
		Name:         strings.TrimSpace(args["name"]),
		TargetAmount: target,
		Deadline:     deadline,
	}
	if err := d.deps.Goals.CreateGoal(ctx, in); err != nil {
		return d.fail(KindGoal, "Could not create the goal", err)
	}
	text := fmt.Sprintf("Goal %q created with a target of %s", in.Name, d.fmt.Money(in.TargetAmount))
	if in.Deadline != "" {
		text += " by " + in.Deadline
	}
	return d.reply(text+".", goalsSource)
}
