package expert

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/psyche/core/format"
	"github.com/adalundhe/psyche/core/psyche"
)

type fixedJudge struct{ score float64 }

func (f *fixedJudge) Rate(_ context.Context, _, _, _ string) (float64, error) {
	return f.score, nil
}

func testRubric(t *testing.T) *psyche.Rubric {
	t.Helper()
	rubric, err := psyche.ParseRubric([]byte(`{
	  "version": "1.0",
	  "elements": [
	    {"name": "Chief complaint", "weight": 5, "kind": "freetext"},
	    {"name": "Mood", "weight": 5, "kind": "categorical",
	     "options": ["depressed", "anxious"],
	     "scoring": {"depressed": 1.0, "anxious": 0.5}}
	  ]
	}`))
	require.NoError(t, err)
	return rubric
}

func TestNewQualityAssessment(t *testing.T) {
	quality, err := NewQualityAssessment(4, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, 12, quality.Total)

	_, err = NewQualityAssessment(0, 3, 3)
	assert.Error(t, err)
	_, err = NewQualityAssessment(3, 6, 3)
	assert.Error(t, err)
}

func TestValidator_Validate(t *testing.T) {
	validator := NewValidator(testRubric(t), &fixedJudge{score: 0.8})

	paca, err := format.ParseMap([]byte(`{
	  "Chief complaint": "overwhelming fear",
	  "Mental Status Examination": {"Mood": "depressed"}
	}`))
	require.NoError(t, err)

	quality, err := NewQualityAssessment(4, 4, 5)
	require.NoError(t, err)

	record, err := validator.Validate(context.Background(), "Dr. Lee", paca,
		Choices{"mood": "depressed", "Chief complaint": "sudden fear episodes"}, quality)
	require.NoError(t, err)

	assert.Equal(t, "Dr. Lee", record.Expert)
	assert.Equal(t, 13, record.Quality.Total)

	require.Len(t, record.Evaluation.Elements, 2)
	complaint := record.Evaluation.Elements[0]
	assert.Equal(t, "sudden fear episodes", complaint.SpContent, "expert choice is the reference")
	assert.Equal(t, 0.8, complaint.Score)

	mood := record.Evaluation.Elements[1]
	assert.Equal(t, "depressed", mood.SpContent)
	assert.Equal(t, 1.0, mood.Score)
	assert.Equal(t, 9.0, record.Evaluation.PsycheScore)
}

func TestValidator_RejectsUnknownOption(t *testing.T) {
	validator := NewValidator(testRubric(t), &fixedJudge{})

	paca := format.NewMap()
	_, err := validator.Validate(context.Background(), "Dr. Lee", paca,
		Choices{"Mood": "elevated"}, QualityAssessment{})
	assert.Error(t, err)
}
