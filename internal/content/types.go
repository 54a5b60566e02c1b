package content

import (
	"encoding/json"
	"fmt"
)

// Content is a single unit of text submitted for filtering and
// attention tracking.
type Content struct {
	ID           string            `json:"id"`
	Text         string            `json:"text"`
	ViewDuration int64             `json:"view_duration"` // milliseconds
	Metadata     map[string]string `json:"metadata,omitempty"`
	Flags        []string          `json:"flags,omitempty"`
}

// Clone returns a deep copy. Rule actions operate on copies so the
// caller's value is never mutated.
func (c *Content) Clone() *Content {
	out := &Content{
		ID:           c.ID,
		Text:         c.Text,
		ViewDuration: c.ViewDuration,
	}
	if c.Metadata != nil {
		out.Metadata = make(map[string]string, len(c.Metadata))
		for k, v := range c.Metadata {
			out.Metadata[k] = v
		}
	}
	if c.Flags != nil {
		out.Flags = append([]string(nil), c.Flags...)
	}
	return out
}

// Condition tags.
const (
	ConditionKeyword = "keyword"
	ConditionRegex   = "regex"
	ConditionML      = "ml"
)

// Action tags.
const (
	ActionFilter = "filter"
	ActionModify = "modify"
	ActionFlag   = "flag"
)

// TransformMarker is the substitution point in a modify action's
// transform template. It is replaced with the original text.
const TransformMarker = "{content}"

// Condition is a tagged predicate evaluated against content text.
// Exactly one variant applies:
//
//	keyword — case-insensitive substring test, Value is the keyword
//	regex   — full pattern match test, Value is the pattern
//	ml      — model inference placeholder, always evaluates false
type Condition struct {
	Type      string  `json:"type"`
	Value     string  `json:"value,omitempty"`
	ModelID   string  `json:"model_id,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
}

// Validate checks the condition tag.
func (c Condition) Validate() error {
	switch c.Type {
	case ConditionKeyword, ConditionRegex, ConditionML:
		return nil
	default:
		return fmt.Errorf("unknown condition type %q", c.Type)
	}
}

// UnmarshalJSON rejects unknown condition tags so malformed stored
// rules fail on read instead of evaluating as no-ops.
func (c *Condition) UnmarshalJSON(data []byte) error {
	type alias Condition
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if err := Condition(a).Validate(); err != nil {
		return err
	}
	*c = Condition(a)
	return nil
}

// Action is the tagged effect applied when a rule's condition matches:
//
//	filter — drop the content entirely
//	modify — replace text using Transform, substituting the original
//	         text at the {content} marker
//	flag   — append Flags to the content's flag list
type Action struct {
	Type      string   `json:"type"`
	Transform string   `json:"transform,omitempty"`
	Flags     []string `json:"flags,omitempty"`
}

// Validate checks the action tag.
func (a Action) Validate() error {
	switch a.Type {
	case ActionFilter, ActionModify, ActionFlag:
		return nil
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}

// UnmarshalJSON rejects unknown action tags.
func (a *Action) UnmarshalJSON(data []byte) error {
	type alias Action
	var aa alias
	if err := json.Unmarshal(data, &aa); err != nil {
		return err
	}
	if err := Action(aa).Validate(); err != nil {
		return err
	}
	*a = Action(aa)
	return nil
}

// Rule pairs one condition with one action. The ID doubles as the
// persistence key.
type Rule struct {
	ID        string    `json:"id"`
	Condition Condition `json:"condition"`
	Action    Action    `json:"action"`
}
