package psyche

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ElementMean is the average performance of one rubric element across
// a set of evaluations.
type ElementMean struct {
	Element      string  `json:"element"`
	MeanScore    float64 `json:"mean_score"`
	MeanWeighted float64 `json:"mean_weighted"`
}

// Report aggregates evaluation records for one client or cohort.
type Report struct {
	Count        int           `json:"count"`
	Mean         float64       `json:"mean"`
	StdDev       float64       `json:"stddev"`
	Min          float64       `json:"min"`
	Max          float64       `json:"max"`
	ElementMeans []ElementMean `json:"element_means"`
}

// Summarize computes aggregate statistics over evaluation records.
// Element means follow the element order of the first record.
func Summarize(records []*Record) *Report {
	report := &Report{Count: len(records)}
	if len(records) == 0 {
		return report
	}

	scores := make([]float64, len(records))
	for i, record := range records {
		scores[i] = record.PsycheScore
	}

	report.Mean = stat.Mean(scores, nil)
	if len(scores) > 1 {
		report.StdDev = stat.StdDev(scores, nil)
	}
	report.Min = math.Inf(1)
	report.Max = math.Inf(-1)
	for _, score := range scores {
		report.Min = math.Min(report.Min, score)
		report.Max = math.Max(report.Max, score)
	}

	order := make([]string, 0, len(records[0].Elements))
	sums := make(map[string]*ElementMean)
	counts := make(map[string]int)
	for _, record := range records {
		for _, element := range record.Elements {
			entry, ok := sums[element.Element]
			if !ok {
				entry = &ElementMean{Element: element.Element}
				sums[element.Element] = entry
				order = append(order, element.Element)
			}
			entry.MeanScore += element.Score
			entry.MeanWeighted += element.WeightedScore
			counts[element.Element]++
		}
	}
	for _, name := range order {
		entry := sums[name]
		n := float64(counts[name])
		entry.MeanScore /= n
		entry.MeanWeighted /= n
		report.ElementMeans = append(report.ElementMeans, *entry)
	}
	return report
}
