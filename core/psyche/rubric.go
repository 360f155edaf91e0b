// Package psyche scores a PACA construct against its SP reference using
// a weighted rubric: categorical option matching, duration bucketing,
// and LLM-judged free-text similarity.
package psyche

import (
	"encoding/json"
	"fmt"
)

// ElementKind selects the scoring path for a rubric element.
type ElementKind string

const (
	KindCategorical ElementKind = "categorical"
	KindDuration    ElementKind = "duration"
	KindFreetext    ElementKind = "freetext"
)

// Bucket maps a duration range to a score. Below is the exclusive upper
// bound in weeks; a nil Below marks the open-ended final bucket.
type Bucket struct {
	Below *float64 `json:"below,omitempty"`
	Score float64  `json:"score"`
}

// Element is one scored rubric entry. Options carry the declared order
// used for tie-breaking; Scoring maps each option to its score.
// Aggregate marks symptom-level fields collected across symptom entries.
type Element struct {
	Name      string             `json:"name"`
	Weight    int                `json:"weight"`
	Kind      ElementKind        `json:"kind"`
	Options   []string           `json:"options,omitempty"`
	Scoring   map[string]float64 `json:"scoring,omitempty"`
	Buckets   []Bucket           `json:"buckets,omitempty"`
	Aggregate bool               `json:"aggregate,omitempty"`
}

// Rubric is the ordered weighted scoring schema for one diagnosis.
type Rubric struct {
	Version   string    `json:"version"`
	Diagnosis string    `json:"diagnosis,omitempty"`
	Elements  []Element `json:"elements"`
}

// TotalWeight is the sum of element weights, used for the normalized
// secondary metric.
func (r *Rubric) TotalWeight() int {
	total := 0
	for _, e := range r.Elements {
		total += e.Weight
	}
	return total
}

// ParseRubric decodes and validates a rubric document.
func ParseRubric(data []byte) (*Rubric, error) {
	var rubric Rubric
	if err := json.Unmarshal(data, &rubric); err != nil {
		return nil, fmt.Errorf("parse rubric: %w", err)
	}
	if len(rubric.Elements) == 0 {
		return nil, fmt.Errorf("rubric has no elements")
	}
	for i, e := range rubric.Elements {
		if e.Name == "" {
			return nil, fmt.Errorf("rubric element %d has no name", i)
		}
		if e.Weight <= 0 {
			return nil, fmt.Errorf("rubric element %q has non-positive weight %d", e.Name, e.Weight)
		}
		switch e.Kind {
		case KindCategorical:
			if len(e.Options) == 0 || len(e.Scoring) == 0 {
				return nil, fmt.Errorf("categorical element %q needs options and scoring", e.Name)
			}
			for _, opt := range e.Options {
				if _, ok := e.Scoring[opt]; !ok {
					return nil, fmt.Errorf("categorical element %q option %q has no score", e.Name, opt)
				}
			}
		case KindDuration:
			if len(e.Buckets) == 0 {
				return nil, fmt.Errorf("duration element %q needs buckets", e.Name)
			}
			if e.Buckets[len(e.Buckets)-1].Below != nil {
				return nil, fmt.Errorf("duration element %q needs an open-ended final bucket", e.Name)
			}
		case KindFreetext:
		default:
			return nil, fmt.Errorf("rubric element %q has unknown kind %q", e.Name, e.Kind)
		}
		for _, score := range e.Scoring {
			if score < 0 || score > 1 {
				return nil, fmt.Errorf("element %q has score outside [0,1]", e.Name)
			}
		}
		for _, bucket := range e.Buckets {
			if bucket.Score < 0 || bucket.Score > 1 {
				return nil, fmt.Errorf("element %q has bucket score outside [0,1]", e.Name)
			}
		}
	}
	return &rubric, nil
}

// bucketScore returns the score of the first bucket whose upper bound
// exceeds the duration.
func bucketScore(buckets []Bucket, weeks float64) float64 {
	for _, bucket := range buckets {
		if bucket.Below == nil || weeks < *bucket.Below {
			return bucket.Score
		}
	}
	return 0
}
