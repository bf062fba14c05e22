package command

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
)

const (
	defaultTrendMonths = 6
	maxTrendMonths     = 24
)

func (d *Dispatcher) handleBalance(ctx context.Context, _ map[string]string) domain.Message {
	wallets, err := d.deps.Wallets.GetAll(ctx)
	if err != nil {
		return d.fail(KindBalance, "Could not load wallets", err)
	}
	if len(wallets) == 0 {
		return d.reply("You have no wallets yet.", walletsSource)
	}

	var b strings.Builder
	b.WriteString("Wallet balances:\n")
	var total float64
	for _, w := range wallets {
		fmt.Fprintf(&b, "- %s: %s\n", w.Name, d.fmt.Money(w.Balance))
		total += w.Balance
	}
	fmt.Fprintf(&b, "Total: %s", d.fmt.Money(total))
	return d.reply(b.String(), walletsSource)
}

func (d *Dispatcher) handleSpending(ctx context.Context, args map[string]string) domain.Message {
	period := ParsePeriod(args["month"], d.now())
	totals, err := d.deps.Expenses.GetStatistics(ctx, domain.StatisticsQuery{
		Period: "month",
		Month:  int(period.Month),
		Year:   period.Year,
	})
	if err != nil {
		return d.fail(KindSpending, "Could not load spending", err)
	}
	if len(totals) == 0 {
		return d.reply(fmt.Sprintf("No spending recorded for %s.", period), expensesSource)
	}

	sorted := append([]domain.CategoryTotal(nil), totals...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Amount > sorted[j].Amount })

	var b strings.Builder
	fmt.Fprintf(&b, "Spending for %s:\n", period)
	var total float64
	for _, c := range sorted {
		fmt.Fprintf(&b, "- %s: %s\n", c.Category, d.fmt.Money(c.Amount))
		total += c.Amount
	}
	fmt.Fprintf(&b, "Total: %s", d.fmt.Money(total))
	return d.reply(b.String(), expensesSource)
}

func (d *Dispatcher) handleAlerts(ctx context.Context, _ map[string]string) domain.Message {
	alerts, err := d.deps.Budgets.GetAlerts(ctx)
	if err != nil {
		return d.fail(KindAlerts, "Could not load budget alerts", err)
	}
	if len(alerts) == 0 {
		return d.reply("No budget alerts. Every budget is within its limit.", budgetsSource)
	}

	var b strings.Builder
	b.WriteString("Budget alerts:")
	for _, a := range alerts {
		fmt.Fprintf(&b, "\n- %s: %s (%s of %s)", a.Category, d.fmt.Percent(a.Percentage), d.fmt.Money(a.Spent), d.fmt.Money(a.Limit))
	}
	return d.reply(b.String(), budgetsSource)
}

// trendMonths reads the months argument. Non-numeric values use the default;
// numbers are clamped to 1..24.
func trendMonths(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return defaultTrendMonths
	}
	if n < 1 {
		return 1
	}
	if n > maxTrendMonths {
		return maxTrendMonths
	}
	return n
}

func (d *Dispatcher) handleTrends(ctx context.Context, args map[string]string) domain.Message {
	months := trendMonths(args["months"])
	rows, err := d.deps.Expenses.GetTrends(ctx, months)
	if err != nil {
		return d.fail(KindTrends, "Could not load trends", err)
	}
	if len(rows) == 0 {
		return d.reply("No trend data available yet.", expensesSource)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Trends for the last %d months:", months)
	for _, r := range rows {
		fmt.Fprintf(&b, "\n- %04d-%02d: income %s, expenses %s, net %s",
			r.Year, r.Month, d.fmt.Money(r.Income), d.fmt.Money(r.Expenses), d.fmt.Money(r.Net))
	}
	return d.reply(b.String(), expensesSource)
}

func (d *Dispatcher) currentBudgets(ctx context.Context, kind Kind, raw string) ([]domain.BudgetStatus, Period, *domain.Message) {
	period := ParsePeriod(raw, d.now())
	budgets, err := d.deps.Budgets.GetCurrent(ctx, int(period.Month), period.Year)
	if err != nil {
		msg := d.fail(kind, "Could not load budgets", err)
		return nil, period, &msg
	}
	return budgets, period, nil
}

func (d *Dispatcher) handleAllocation(ctx context.Context, args map[string]string) domain.Message {
	budgets, period, msg := d.currentBudgets(ctx, KindAllocation, args["month"])
	if msg != nil {
		return *msg
	}

	var total float64
	for _, bs := range budgets {
		total += bs.Amount
	}
	if len(budgets) == 0 || total <= 0 {
		return d.reply(fmt.Sprintf("No budgets set for %s.", period), budgetsSource)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Budget allocation for %s (total %s):", period, d.fmt.Money(total))
	for _, bs := range budgets {
		fmt.Fprintf(&b, "\n- %s: %s (%s)", bs.Category, d.fmt.Money(bs.Amount), d.fmt.Percent(bs.Amount/total*100))
	}
	return d.reply(b.String(), budgetsSource)
}

// efficiencyRating turns the overall spent/budget percentage into a label.
func efficiencyRating(pct float64) string {
	switch {
	case pct <= 80:
		return "Excellent"
	case pct <= 100:
		return "On track"
	default:
		return "Over budget"
	}
}

func (d *Dispatcher) handleEfficiency(ctx context.Context, args map[string]string) domain.Message {
	budgets, period, msg := d.currentBudgets(ctx, KindEfficiency, args["month"])
	if msg != nil {
		return *msg
	}

	var budgeted, spent float64
	exceeded := 0
	for _, bs := range budgets {
		budgeted += bs.Amount
		spent += bs.Spent
		if bs.Exceeded() {
			exceeded++
		}
	}
	if len(budgets) == 0 || budgeted <= 0 {
		return d.reply(fmt.Sprintf("No budgets set for %s.", period), budgetsSource)
	}

	pct := spent / budgeted * 100
	text := fmt.Sprintf("Budget efficiency for %s: spent %s of %s (%s). %d of %d budgets exceeded. Rating: %s.",
		period, d.fmt.Money(spent), d.fmt.Money(budgeted), d.fmt.Percent(pct), exceeded, len(budgets), efficiencyRating(pct))
	return d.reply(text, budgetsSource)
}
