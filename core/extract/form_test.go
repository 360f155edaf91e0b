package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMSEForm(t *testing.T) {
	directive := `Present as guarded early in the interview.

<Form>
- Mood : "depressed"
- Affect : restricted
- Speech :   slowed, soft
- Thought process :
</Form>

Maintain eye contact only briefly.`

	findings := ParseMSEForm(directive)
	require.Equal(t, 3, findings.Len(), "blank values are dropped")

	mood, _ := findings.Get("Mood")
	assert.Equal(t, "depressed", mood, "quotes are stripped")
	speech, _ := findings.Get("Speech")
	assert.Equal(t, "slowed, soft", speech, "whitespace is trimmed")
	assert.Equal(t, []string{"Mood", "Affect", "Speech"}, findings.Keys())
}

func TestParseMSEForm_NoBlock(t *testing.T) {
	findings := ParseMSEForm("no structured findings here")
	assert.Zero(t, findings.Len())
}

func TestNormalizeAnswer(t *testing.T) {
	cases := map[string]string{
		"depressed":                "depressed",
		"  \"anxious\"  ":          "anxious",
		"N/A":                      "N/A",
		"na":                       "N/A",
		"I don't know.":            "N/A",
		"I do not know the answer": "N/A",
		"Uncertain based on the interview": "N/A",
		"":                   "N/A",
		"low risk.":          "low risk",
		"restricted, blunt.": "restricted, blunt",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeAnswer(in), "input %q", in)
	}
}
