package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotification_AddErrorDedupe(t *testing.T) {
	n := NewNotification()
	n.AddError("name is required", "name")
	n.AddError("name is required", "name")
	n.AddError("name is too long", "name")
	n.AddError("global failure")

	assert.True(t, n.HasErrors())
	assert.Equal(t, []string{"name is required", "name is too long"}, n.Messages("name"))
	assert.Equal(t, []any{
		map[string][]string{"name": {"name is required", "name is too long"}},
		"global failure",
	}, n.ToJSON())
}

func TestNotification_SetError(t *testing.T) {
	n := NewNotification()
	n.AddError("old", "name")
	n.SetError([]string{"a", "b", "a"}, "name")
	assert.Equal(t, []string{"a", "b"}, n.Messages("name"))

	n.SetError([]string{"x", "y"})
	assert.Equal(t, []any{
		map[string][]string{"name": {"a", "b"}},
		"x",
		"y",
	}, n.ToJSON())
}

func TestNotification_CopyErrorsKeepsOrderAndKind(t *testing.T) {
	entityErrors := NewNotification()
	entityErrors.AddError("name should not be empty", "name")

	related := NewNotification()
	related.AddError("Category not found using ID: 1", "categories_id")
	related.AddError("unexpected")

	entityErrors.CopyErrors(related)
	assert.Equal(t, []any{
		map[string][]string{"name": {"name should not be empty"}},
		map[string][]string{"categories_id": {"Category not found using ID: 1"}},
		"unexpected",
	}, entityErrors.ToJSON())
}

func TestNotification_MarshalJSON(t *testing.T) {
	n := NewNotification()
	assert.False(t, n.HasErrors())
	n.AddError("boom")
	n.AddError("bad", "field")

	raw, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `["boom",{"field":["bad"]}]`, string(raw))
}

func TestNotification_ZeroValueUsable(t *testing.T) {
	var n Notification
	n.AddError("bad", "field")
	assert.True(t, n.HasErrors())
}

type sample struct {
	Name  string
	Kind  string
	Count int
}

var sampleRules = []Rule[sample]{
	Required("name", func(s sample) string { return s.Name }),
	MaxLength("name", 255, func(s sample) string { return s.Name }),
	OneOf("kind", []string{"a", "b"}, func(s sample) string { return s.Kind }),
	MinInt("count", 1, func(s sample) int { return s.Count }),
	MaxInt("count", 10, func(s sample) int { return s.Count }),
}

func TestValidate_RuleTable(t *testing.T) {
	n := NewNotification()
	ok := Validate(n, sample{Name: strings.Repeat("a", 256), Kind: "z", Count: 11}, sampleRules)
	assert.False(t, ok)
	assert.Equal(t, []string{"name must be shorter than or equal to 255 characters"}, n.Messages("name"))
	assert.Equal(t, []string{"kind must be one of the following values: a, b"}, n.Messages("kind"))
	assert.Equal(t, []string{"count must not be greater than 10"}, n.Messages("count"))
}

func TestValidate_OnlyListedFields(t *testing.T) {
	n := NewNotification()
	ok := Validate(n, sample{Name: "", Kind: "z", Count: 0}, sampleRules, "name")
	assert.False(t, ok)
	assert.Equal(t, []string{"name should not be empty"}, n.Messages("name"))
	assert.Nil(t, n.Messages("kind"))

	n2 := NewNotification()
	assert.True(t, Validate(n2, sample{Name: "ok", Kind: "a", Count: 5}, sampleRules))
	assert.False(t, n2.HasErrors())
}
