// Package policy evaluates slash command arguments against a Rego policy.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decision is the outcome of validating one command invocation.
type Decision struct {
	Allowed bool
	Reasons []string
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("allowed = data.command_policy.allow; reasons = data.command_policy.violations"),
		rego.Module("command_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Validate checks the arguments of a command. Args hold already coerced
// values (numbers as float64, flags as bool).
func (e *Engine) Validate(ctx context.Context, command string, args map[string]interface{}) (Decision, error) {
	if args == nil {
		args = map[string]interface{}{}
	}
	input := map[string]interface{}{
		"command": command,
		"args":    args,
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 {
		return Decision{Allowed: true}, nil
	}

	decision := Decision{}
	if allowed, ok := results[0].Bindings["allowed"].(bool); ok {
		decision.Allowed = allowed
	}
	if reasons, ok := results[0].Bindings["reasons"].([]interface{}); ok {
		for _, r := range reasons {
			if s, ok := r.(string); ok {
				decision.Reasons = append(decision.Reasons, s)
			}
		}
	}
	if !decision.Allowed && len(decision.Reasons) == 0 {
		decision.Reasons = []string{"rejected by policy"}
	}
	return decision, nil
}

// DefaultCommandPolicy is the default policy content.
const DefaultCommandPolicy = `
package command_policy

default allow = false

allow {
	count(violations) == 0
}

has_text(s) {
	is_string(s)
	trim_space(s) != ""
}

violations[msg] {
	input.command == "add"
	not input.args.amount > 0
	msg := "amount must be a positive number"
}

violations[msg] {
	input.command == "add"
	not has_text(object.get(input.args, "category", ""))
	msg := "category is required"
}

violations[msg] {
	input.command == "add"
	input.args.date_valid == false
	msg := "date must use the YYYY-MM-DD format"
}

violations[msg] {
	input.command == "add"
	input.args.wallet_id_valid == false
	msg := "wallet_id must be a number"
}

violations[msg] {
	input.command == "edit"
	input.args.wallet_id_valid == false
	msg := "wallet_id must be a number"
}

violations[msg] {
	input.command == "edit"
	not has_text(object.get(input.args, "id", ""))
	msg := "id is required"
}

violations[msg] {
	input.command == "edit"
	not input.args.field_count > 0
	msg := "at least one field to change is required"
}

violations[msg] {
	input.command == "edit"
	input.args.amount_valid == false
	msg := "amount must be a positive number"
}

violations[msg] {
	input.command == "edit"
	input.args.date_valid == false
	msg := "date must use the YYYY-MM-DD format"
}

violations[msg] {
	input.command == "budget"
	not input.args.amount > 0
	msg := "amount must be a positive number"
}

violations[msg] {
	input.command == "budget"
	not has_text(object.get(input.args, "category", ""))
	msg := "category is required"
}

violations[msg] {
	input.command == "goal"
	not has_text(object.get(input.args, "name", ""))
	msg := "name is required"
}

violations[msg] {
	input.command == "goal"
	not input.args.target > 0
	msg := "target must be a positive number"
}

violations[msg] {
	input.command == "goal"
	input.args.deadline_valid == false
	msg := "deadline must use the YYYY-MM-DD format"
}

violations[msg] {
	input.command == "remember"
	not has_text(object.get(input.args, "key", ""))
	msg := "key is required"
}

violations[msg] {
	input.command == "remember"
	not has_text(object.get(input.args, "value", ""))
	msg := "value is required"
}
`
