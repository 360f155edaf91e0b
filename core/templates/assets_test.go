package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/psyche/core/format"
	"github.com/adalundhe/psyche/core/psyche"
)

// The shipped assets must expose the fixed construct shape the
// extractors and the rubric rely on.

func shippedStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore("../../templates")
	require.NoError(t, err)
	return store
}

func lookupSection(t *testing.T, m *format.Map, name string) *format.Map {
	t.Helper()
	_, raw, ok := format.LookupCanon(m, name)
	require.True(t, ok, "top-level section %q", name)
	section, isSection := raw.(*format.Map)
	require.True(t, isSection, "section %q is nested", name)
	return section
}

func TestShippedGivenForm_ConstructShape(t *testing.T) {
	schema, err := shippedStore(t).GivenForm("1.0")
	require.NoError(t, err)

	sections := map[string][]string{
		"Chief complaint":               {"description"},
		"Present illness":               {"triggering_factor", "stressor"},
		"Family history":                {"diagnosis", "substance_use"},
		"Marriage_Relationship_History": {"current_family_structure"},
		"Impulsivity": {
			"Suicidal ideation", "Self_mutilating_behavior_risk",
			"Homicide_risk", "Suicidal_plan", "Suicidal_attempt",
		},
		"Mental Status Examination": {
			"Mood", "Affect", "Verbal_productivity", "Insight", "Perception",
			"Thought_process", "Thought_content", "Spontaneity",
			"Social_judgement", "Reliability",
		},
	}
	for name, items := range sections {
		section := lookupSection(t, schema, name)
		for _, item := range items {
			_, _, ok := format.LookupCanon(section, item)
			assert.True(t, ok, "%s.%s", name, item)
		}
	}

	illness := lookupSection(t, schema, "Present illness")
	template := lookupSection(t, illness, "symptom_1")
	for _, field := range []string{"Symptom name", "Length", "Alleviating factor", "Exacerbating factor"} {
		_, _, ok := format.LookupCanon(template, field)
		assert.True(t, ok, "symptom template field %q", field)
	}
}

func TestShippedRubric_Elements(t *testing.T) {
	raw, err := shippedStore(t).Rubric("1.0")
	require.NoError(t, err)
	rubric, err := psyche.ParseRubric([]byte(raw))
	require.NoError(t, err)

	byName := map[string]psyche.Element{}
	for _, element := range rubric.Elements {
		byName[format.Canon(element.Name)] = element
	}

	for _, name := range []string{"Symptom name", "Alleviating factor", "Exacerbating factor"} {
		element, ok := byName[format.Canon(name)]
		require.True(t, ok, "rubric element %q", name)
		assert.True(t, element.Aggregate, "%q aggregates across symptoms", name)
	}
	for _, name := range []string{
		"Chief complaint", "Length", "Stressor", "Triggering factor",
		"Substance use", "Current family structure",
		"Suicidal ideation", "Self mutilating behavior risk", "Homicide risk",
		"Suicidal plan", "Suicidal attempt",
		"Mood", "Affect", "Verbal productivity", "Insight", "Perception",
		"Thought process", "Thought content", "Spontaneity",
		"Social judgement", "Reliability",
	} {
		_, ok := byName[format.Canon(name)]
		assert.True(t, ok, "rubric element %q", name)
	}
}

func TestShippedProfileForms_BlankSentinel(t *testing.T) {
	store := shippedStore(t)
	for _, diagnosis := range []string{"MDD", "BD", "PD", "GAD", "SAD", "OCD", "PTSD"} {
		form, err := store.ProfileForm("1.0", diagnosis)
		require.NoError(t, err, diagnosis)

		_, name, ok := format.LookupCanon(form, "Name")
		require.True(t, ok, diagnosis)
		assert.Equal(t, "blank (data_type:string, guide:null)", name, diagnosis)

		lookupSection(t, form, "Present illness")
		lookupSection(t, form, "Impulsivity")
	}
}
