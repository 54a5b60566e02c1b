package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContent(id, text string) *Content {
	return &Content{ID: id, Text: text}
}

func TestAddRule_RejectsInvalidRegex(t *testing.T) {
	f := NewFilter()

	err := f.AddRule(Rule{
		ID:        "bad-pattern",
		Condition: Condition{Type: ConditionRegex, Value: "[unclosed"},
		Action:    Action{Type: ActionFilter},
	})
	require.Error(t, err)
	assert.Equal(t, 0, f.Len(), "uncompilable rule must not be stored")
}

func TestAddRule_RejectsUnknownTags(t *testing.T) {
	f := NewFilter()

	err := f.AddRule(Rule{
		ID:        "bad-cond",
		Condition: Condition{Type: "sentiment", Value: "angry"},
		Action:    Action{Type: ActionFilter},
	})
	assert.Error(t, err)

	err = f.AddRule(Rule{
		ID:        "bad-action",
		Condition: Condition{Type: ConditionKeyword, Value: "x"},
		Action:    Action{Type: "redact"},
	})
	assert.Error(t, err)

	err = f.AddRule(Rule{
		Condition: Condition{Type: ConditionKeyword, Value: "x"},
		Action:    Action{Type: ActionFilter},
	})
	assert.Error(t, err, "empty rule ID is rejected")
}

func TestProcess_KeywordFilterDropsContent(t *testing.T) {
	f := NewFilter()

	require.NoError(t, f.AddRule(Rule{
		ID:        "no-ads",
		Condition: Condition{Type: ConditionKeyword, Value: "sponsored"},
		Action:    Action{Type: ActionFilter},
	}))

	out, err := f.Process(testContent("test", "This is a sponsored post"))
	require.NoError(t, err)
	assert.Nil(t, out, "filtered content should be absent")
}

func TestProcess_KeywordIsCaseInsensitive(t *testing.T) {
	f := NewFilter()

	require.NoError(t, f.AddRule(Rule{
		ID:        "no-ads",
		Condition: Condition{Type: ConditionKeyword, Value: "sponsored"},
		Action:    Action{Type: ActionFilter},
	}))

	out, err := f.Process(testContent("test", "A Sponsored article"))
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestProcess_RegexFlagAppendsFlags(t *testing.T) {
	f := NewFilter()

	require.NoError(t, f.AddRule(Rule{
		ID:        "no-urls",
		Condition: Condition{Type: ConditionRegex, Value: `https?://\S+`},
		Action:    Action{Type: ActionFlag, Flags: []string{"contains-url"}},
	}))

	in := testContent("test", "Check this link: https://example.com")
	out, err := f.Process(in)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Contains(t, out.Flags, "contains-url")
	assert.Equal(t, in.Text, out.Text, "flag action leaves text unchanged")
	assert.Empty(t, in.Flags, "caller's value is not mutated")
}

func TestProcess_FlagsAccumulateWithoutDedup(t *testing.T) {
	f := NewFilter()

	require.NoError(t, f.AddRule(Rule{
		ID:        "dup-flags",
		Condition: Condition{Type: ConditionKeyword, Value: "spam"},
		Action:    Action{Type: ActionFlag, Flags: []string{"spam", "spam"}},
	}))

	in := testContent("test", "spam spam spam")
	in.Flags = []string{"spam"}
	out, err := f.Process(in)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, []string{"spam", "spam", "spam"}, out.Flags)
}

func TestProcess_ModifySubstitutesTemplate(t *testing.T) {
	f := NewFilter()

	require.NoError(t, f.AddRule(Rule{
		ID:        "wrap",
		Condition: Condition{Type: ConditionKeyword, Value: "bad"},
		Action:    Action{Type: ActionModify, Transform: "[redacted: {content}]"},
	}))

	out, err := f.Process(testContent("test", "This is bad content"))
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "[redacted: This is bad content]", out.Text)
}

func TestProcess_NoMatchPassesThroughUnchanged(t *testing.T) {
	f := NewFilter()

	require.NoError(t, f.AddRule(Rule{
		ID:        "no-ads",
		Condition: Condition{Type: ConditionKeyword, Value: "sponsored"},
		Action:    Action{Type: ActionFilter},
	}))

	in := testContent("test", "An ordinary post")
	out, err := f.Process(in)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in.Text, out.Text)
}

func TestProcess_FirstMatchShortCircuits(t *testing.T) {
	f := NewFilter()

	// First rule always matches (empty keyword is a substring of any
	// text); the second must never fire.
	require.NoError(t, f.AddRule(Rule{
		ID:        "first",
		Condition: Condition{Type: ConditionKeyword, Value: ""},
		Action:    Action{Type: ActionFlag, Flags: []string{"first"}},
	}))
	require.NoError(t, f.AddRule(Rule{
		ID:        "second",
		Condition: Condition{Type: ConditionKeyword, Value: ""},
		Action:    Action{Type: ActionFilter},
	}))

	out, err := f.Process(testContent("test", "anything"))
	require.NoError(t, err)
	require.NotNil(t, out, "second rule's filter action must not apply")
	assert.Equal(t, []string{"first"}, out.Flags)
}

func TestProcess_MLConditionNeverMatches(t *testing.T) {
	f := NewFilter()

	require.NoError(t, f.AddRule(Rule{
		ID:        "ml-stub",
		Condition: Condition{Type: ConditionML, ModelID: "toxicity-v1", Threshold: 0.1},
		Action:    Action{Type: ActionFilter},
	}))

	out, err := f.Process(testContent("test", "anything at all"))
	require.NoError(t, err)
	assert.NotNil(t, out, "ml placeholder must evaluate to no match")
}

func TestAddRule_ReplaceKeepsEvaluationPosition(t *testing.T) {
	f := NewFilter()

	require.NoError(t, f.AddRule(Rule{
		ID:        "a",
		Condition: Condition{Type: ConditionKeyword, Value: "alpha"},
		Action:    Action{Type: ActionFilter},
	}))
	require.NoError(t, f.AddRule(Rule{
		ID:        "b",
		Condition: Condition{Type: ConditionKeyword, Value: "beta"},
		Action:    Action{Type: ActionFilter},
	}))

	// Replace rule "a"; it must stay first.
	require.NoError(t, f.AddRule(Rule{
		ID:        "a",
		Condition: Condition{Type: ConditionKeyword, Value: "alpha"},
		Action:    Action{Type: ActionFlag, Flags: []string{"seen"}},
	}))

	rules := f.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "a", rules[0].ID)
	assert.Equal(t, ActionFlag, rules[0].Action.Type)
	assert.Equal(t, "b", rules[1].ID)
}

func TestRemoveRule(t *testing.T) {
	f := NewFilter()

	require.NoError(t, f.AddRule(Rule{
		ID:        "a",
		Condition: Condition{Type: ConditionKeyword, Value: "alpha"},
		Action:    Action{Type: ActionFilter},
	}))
	require.NoError(t, f.AddRule(Rule{
		ID:        "b",
		Condition: Condition{Type: ConditionKeyword, Value: "beta"},
		Action:    Action{Type: ActionFilter},
	}))

	removed := f.RemoveRule("a")
	require.NotNil(t, removed)
	assert.Equal(t, "a", removed.ID)
	assert.Nil(t, f.RemoveRule("a"), "second removal returns nil")

	// Remaining rule still evaluates after index rebuild.
	out, err := f.Process(testContent("test", "a beta post"))
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestProcess_RegexCacheMissCompilesOnTheFly(t *testing.T) {
	f := NewFilter()

	require.NoError(t, f.AddRule(Rule{
		ID:        "digits",
		Condition: Condition{Type: ConditionRegex, Value: `\d{3}`},
		Action:    Action{Type: ActionFlag, Flags: []string{"has-number"}},
	}))

	// Drop the cached pattern to simulate eviction.
	f.patterns.Purge()

	out, err := f.Process(testContent("test", "call 555 now"))
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Contains(t, out.Flags, "has-number")
}
