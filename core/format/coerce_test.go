package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/psyche/core/errors"
)

func TestExtractObject_StripsSurroundingProse(t *testing.T) {
	raw := "Here is the profile you asked for:\n```json\n{\"Name\": \"Kim\"}\n```\nLet me know if you need changes."

	body, err := ExtractObject(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"Name": "Kim"}`, body)
}

func TestExtractObject_NoBraces(t *testing.T) {
	_, err := ExtractObject("I could not generate a profile.")

	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindProfileParse))
}

func TestCoerceObject_PrunesNullsAndTrims(t *testing.T) {
	raw := `{"Name": "  Kim Min-ji  ", "Occupation": null, "Notes": {"a": null, "b": " kept "}, "List": [null, " x "]}`

	m, err := CoerceObject(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Notes", "List"}, m.Keys(), "null leaf should be dropped")

	name, _ := m.Get("Name")
	assert.Equal(t, "Kim Min-ji", name, "strings should be trimmed")

	notes, _ := m.Get("Notes")
	assert.Equal(t, []string{"b"}, notes.(*Map).Keys(), "nested nulls should be dropped")

	list, _ := m.Get("List")
	assert.Equal(t, []any{"x"}, list.([]any), "nulls dropped and strings trimmed inside arrays")
}

func TestCoerceObject_InvalidJSON(t *testing.T) {
	_, err := CoerceObject(`{"Name": "Kim"`)

	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindProfileParse))
}
