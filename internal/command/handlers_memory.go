package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
)

func (d *Dispatcher) handleHelp(_ context.Context, _ map[string]string) domain.Message {
	var b strings.Builder
	b.WriteString("Available commands:")
	for _, k := range Kinds() {
		u := UsageOf(k)
		fmt.Fprintf(&b, "\n%s\n  %s", u.Syntax, u.Description)
	}
	return d.reply(b.String())
}

func (d *Dispatcher) handleRemember(ctx context.Context, args map[string]string) domain.Message {
	input := map[string]interface{}{"key": args["key"], "value": args["value"]}
	if msg := d.validate(ctx, KindRemember, input); msg != nil {
		return *msg
	}

	key := strings.TrimSpace(args["key"])
	if err := d.deps.Memory.Remember(ctx, key, args["value"]); err != nil {
		return d.fail(KindRemember, "Could not save the note", err)
	}
	return d.reply(fmt.Sprintf("Remembered %s.", key))
}

func (d *Dispatcher) handleRecall(ctx context.Context, args map[string]string) domain.Message {
	key := strings.TrimSpace(args["key"])
	if key == "" {
		return d.recallAll(ctx)
	}

	value, ok, err := d.deps.Memory.Recall(ctx, key)
	if err != nil {
		return d.fail(KindRecall, "Could not read the note", err)
	}
	if !ok {
		return d.reply(fmt.Sprintf("Nothing remembered for %q.", key))
	}
	return d.reply(value)
}

func (d *Dispatcher) recallAll(ctx context.Context) domain.Message {
	entries, err := d.deps.Memory.All(ctx)
	if err != nil {
		return d.fail(KindRecall, "Could not read notes", err)
	}
	if len(entries) == 0 {
		return d.reply("Nothing remembered yet.")
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Remembered notes:")
	for _, k := range keys {
		fmt.Fprintf(&b, "\n- %s: %s", k, entries[k])
	}
	return d.reply(b.String())
}
