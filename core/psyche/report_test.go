package psyche

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	records := []*Record{
		{
			PsycheScore: 10,
			Elements: []ElementResult{
				{Element: "Mood", Score: 1.0, WeightedScore: 5.0},
				{Element: "Affect", Score: 0.5, WeightedScore: 1.5},
			},
		},
		{
			PsycheScore: 14,
			Elements: []ElementResult{
				{Element: "Mood", Score: 0.5, WeightedScore: 2.5},
				{Element: "Affect", Score: 1.0, WeightedScore: 3.0},
			},
		},
	}

	report := Summarize(records)
	assert.Equal(t, 2, report.Count)
	assert.Equal(t, 12.0, report.Mean)
	assert.InDelta(t, 2.828, report.StdDev, 0.001)
	assert.Equal(t, 10.0, report.Min)
	assert.Equal(t, 14.0, report.Max)

	require.Len(t, report.ElementMeans, 2)
	assert.Equal(t, "Mood", report.ElementMeans[0].Element)
	assert.Equal(t, 0.75, report.ElementMeans[0].MeanScore)
	assert.Equal(t, 3.75, report.ElementMeans[0].MeanWeighted)
}

func TestSummarize_Empty(t *testing.T) {
	report := Summarize(nil)
	assert.Zero(t, report.Count)
	assert.Zero(t, report.Mean)
	assert.Zero(t, report.StdDev)
}

func TestSummarize_SingleRecord(t *testing.T) {
	report := Summarize([]*Record{{PsycheScore: 7}})
	assert.Equal(t, 7.0, report.Mean)
	assert.Zero(t, report.StdDev, "stddev is undefined for one sample")
	assert.Equal(t, 7.0, report.Min)
	assert.Equal(t, 7.0, report.Max)
}
