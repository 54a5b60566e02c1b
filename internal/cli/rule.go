package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/heedware/heed/internal/content"
	"github.com/heedware/heed/internal/processor"
)

// buildRule converts the add-rule flags into a Rule. Tag validation
// happens again in the filter; this layer only maps CLI vocabulary to
// the typed variants.
func (c *AddRuleCommand) buildRule() (*content.Rule, error) {
	if c.ID == "" {
		return nil, fmt.Errorf("--id is required for add-rule command")
	}

	var cond content.Condition
	switch c.Condition {
	case "keyword":
		cond = content.Condition{Type: content.ConditionKeyword, Value: c.Value}
	case "regex":
		cond = content.Condition{Type: content.ConditionRegex, Value: c.Value}
	case "ml":
		cond = content.Condition{Type: content.ConditionML, ModelID: c.Value, Threshold: c.Threshold}
	default:
		return nil, fmt.Errorf("invalid condition type %q (use keyword, regex, or ml)", c.Condition)
	}
	if c.Value == "" {
		return nil, fmt.Errorf("--value is required for %s conditions", c.Condition)
	}

	var action content.Action
	switch c.Action {
	case "filter":
		action = content.Action{Type: content.ActionFilter}
	case "modify":
		transform := c.Transform
		if transform == "" {
			transform = content.TransformMarker
		}
		action = content.Action{Type: content.ActionModify, Transform: transform}
	case "flag":
		flags := c.Flags
		if len(flags) == 0 {
			flags = []string{"flagged"}
		}
		action = content.Action{Type: content.ActionFlag, Flags: flags}
	default:
		return nil, fmt.Errorf("invalid action type %q (use filter, modify, or flag)", c.Action)
	}

	return &content.Rule{ID: c.ID, Condition: cond, Action: action}, nil
}

// Execute implements the go-flags Commander interface for AddRuleCommand.
func (c *AddRuleCommand) Execute(args []string) error {
	rule, err := c.buildRule()
	if err != nil {
		return err
	}

	_, store, db, err := openConfiguredStore(c.globals)
	if err != nil {
		return err
	}
	defer store.Close()
	defer db.Close()

	proc := processor.New(store)
	return c.executeWithProcessor(proc, rule)
}

// executeWithProcessor runs the add-rule logic against a provided
// processor (used by tests).
func (c *AddRuleCommand) executeWithProcessor(proc *processor.Processor, rule *content.Rule) error {
	if err := proc.AddRule(context.Background(), *rule); err != nil {
		return fmt.Errorf("adding rule: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rule)
	}

	fmt.Printf("Added rule %s (%s -> %s)\n", rule.ID, rule.Condition.Type, rule.Action.Type)
	return nil
}

// Execute implements the go-flags Commander interface for RemoveRuleCommand.
func (c *RemoveRuleCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for remove-rule command")
	}

	_, store, db, err := openConfiguredStore(c.globals)
	if err != nil {
		return err
	}
	defer store.Close()
	defer db.Close()

	proc := processor.New(store)
	if err := proc.LoadRules(context.Background()); err != nil {
		return err
	}

	existed, err := proc.RemoveRule(context.Background(), c.ID)
	if err != nil {
		return fmt.Errorf("removing rule: %w", err)
	}
	if !existed {
		fmt.Printf("No rule found with ID %s\n", c.ID)
		return nil
	}

	fmt.Printf("Removed rule %s\n", c.ID)
	return nil
}

// Execute implements the go-flags Commander interface for RulesCommand.
func (c *RulesCommand) Execute(args []string) error {
	_, store, db, err := openConfiguredStore(c.globals)
	if err != nil {
		return err
	}
	defer store.Close()
	defer db.Close()

	rules, err := store.GetAllRules(context.Background())
	if err != nil {
		return fmt.Errorf("listing rules: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rules)
	}

	if len(rules) == 0 {
		fmt.Println("No rules found")
		return nil
	}

	for _, rule := range rules {
		fmt.Printf("Rule: %s\n", rule.ID)
		fmt.Printf("  Condition: %s\n", describeCondition(rule.Condition))
		fmt.Printf("  Action: %s\n", describeAction(rule.Action))
		fmt.Println()
	}
	return nil
}

func describeCondition(cond content.Condition) string {
	switch cond.Type {
	case content.ConditionKeyword:
		return fmt.Sprintf("keyword %q", cond.Value)
	case content.ConditionRegex:
		return fmt.Sprintf("regex %q", cond.Value)
	case content.ConditionML:
		return fmt.Sprintf("ml model %s (threshold %.2f)", cond.ModelID, cond.Threshold)
	}
	return cond.Type
}

func describeAction(action content.Action) string {
	switch action.Type {
	case content.ActionFilter:
		return "filter"
	case content.ActionModify:
		return fmt.Sprintf("modify %q", action.Transform)
	case content.ActionFlag:
		return fmt.Sprintf("flag [%s]", strings.Join(action.Flags, ", "))
	}
	return action.Type
}
