package content

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// patternCacheSize bounds the compiled-regex cache. Rules well beyond
// this count just recompile on evaluation.
const patternCacheSize = 128

// Filter evaluates content against an ordered set of rules. Rules are
// evaluated in the order they were added to the live filter and the
// first match wins; no further rules are considered. Note this is the
// in-process insertion order, not the stored order.
type Filter struct {
	mu    sync.RWMutex
	rules []Rule
	index map[string]int // rule ID -> position in rules

	// Compiled regex patterns keyed by pattern text. The cache is
	// internally synchronized; entries are shared read-only once
	// compiled.
	patterns *lru.Cache[string, *regexp.Regexp]
}

// NewFilter creates an empty Filter.
func NewFilter() *Filter {
	patterns, _ := lru.New[string, *regexp.Regexp](patternCacheSize)
	return &Filter{
		index:    make(map[string]int),
		patterns: patterns,
	}
}

// AddRule validates and inserts a rule, replacing any existing rule
// with the same ID in place (the original evaluation position is
// kept). Regex conditions are compiled before acceptance, so an
// uncompilable rule is never stored.
func (f *Filter) AddRule(rule Rule) error {
	if rule.ID == "" {
		return fmt.Errorf("rule ID is required")
	}
	if err := rule.Condition.Validate(); err != nil {
		return fmt.Errorf("rule %s: %w", rule.ID, err)
	}
	if err := rule.Action.Validate(); err != nil {
		return fmt.Errorf("rule %s: %w", rule.ID, err)
	}

	if rule.Condition.Type == ConditionRegex {
		if _, ok := f.patterns.Get(rule.Condition.Value); !ok {
			re, err := regexp.Compile(rule.Condition.Value)
			if err != nil {
				return fmt.Errorf("rule %s: compile pattern: %w", rule.ID, err)
			}
			f.patterns.Add(rule.Condition.Value, re)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if pos, ok := f.index[rule.ID]; ok {
		f.rules[pos] = rule
		return nil
	}
	f.index[rule.ID] = len(f.rules)
	f.rules = append(f.rules, rule)
	return nil
}

// RemoveRule removes a rule by ID and returns it, or nil if absent.
func (f *Filter) RemoveRule(id string) *Rule {
	f.mu.Lock()
	defer f.mu.Unlock()

	pos, ok := f.index[id]
	if !ok {
		return nil
	}
	removed := f.rules[pos]
	f.rules = append(f.rules[:pos], f.rules[pos+1:]...)
	delete(f.index, id)
	for i := pos; i < len(f.rules); i++ {
		f.index[f.rules[i].ID] = i
	}
	return &removed
}

// Rules returns a snapshot of the active rules in evaluation order.
func (f *Filter) Rules() []Rule {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]Rule(nil), f.rules...)
}

// Len reports the number of active rules.
func (f *Filter) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.rules)
}

// Process runs content through the rules. The first rule whose
// condition matches determines the result: a nil content means the
// content was dropped by a filter action. If no rule matches, the
// content passes through unchanged.
func (f *Filter) Process(c *Content) (*Content, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, rule := range f.rules {
		matched, err := f.evaluate(rule.Condition, c)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
		}
		if matched {
			return apply(rule.Action, c), nil
		}
	}
	return c, nil
}

// evaluate tests a single condition against content text.
func (f *Filter) evaluate(cond Condition, c *Content) (bool, error) {
	switch cond.Type {
	case ConditionKeyword:
		return strings.Contains(strings.ToLower(c.Text), strings.ToLower(cond.Value)), nil
	case ConditionRegex:
		re, ok := f.patterns.Get(cond.Value)
		if !ok {
			// Cache miss (evicted or raced with an add): compile on
			// the fly rather than failing the evaluation.
			var err error
			re, err = regexp.Compile(cond.Value)
			if err != nil {
				return false, fmt.Errorf("compile pattern: %w", err)
			}
			f.patterns.Add(cond.Value, re)
		}
		return re.MatchString(c.Text), nil
	case ConditionML:
		// Placeholder for model inference. Always a non-match.
		return false, nil
	default:
		return false, fmt.Errorf("unknown condition type %q", cond.Type)
	}
}

// apply executes an action against content, returning a fresh copy for
// modify/flag actions and nil for filter.
func apply(action Action, c *Content) *Content {
	switch action.Type {
	case ActionFilter:
		return nil
	case ActionModify:
		out := c.Clone()
		out.Text = strings.ReplaceAll(action.Transform, TransformMarker, c.Text)
		return out
	case ActionFlag:
		out := c.Clone()
		out.Flags = append(out.Flags, action.Flags...)
		return out
	}
	// Unknown tags are rejected at AddRule and decode time.
	return c
}
