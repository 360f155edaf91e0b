package psyche

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adalundhe/psyche/core/format"
)

// Policy selects how the chief-complaint element is compared. Other
// free-text elements always go through the judge.
type Policy string

const (
	PolicySimilarity Policy = "similarity"
	PolicyExact      Policy = "exact"
)

const chiefComplaintElement = "Chief complaint"

// ElementResult is the per-element audit trail of one evaluation.
type ElementResult struct {
	Element       string      `json:"element"`
	Kind          ElementKind `json:"kind"`
	SpContent     string      `json:"sp_content"`
	PacaContent   string      `json:"paca_content"`
	Score         float64     `json:"score"`
	Weight        int         `json:"weight"`
	WeightedScore float64     `json:"weighted_score"`
	Diagnostic    string      `json:"diagnostic,omitempty"`
}

// Record is one persisted evaluation. Identity fields are filled by the
// caller before persistence.
type Record struct {
	Client          int             `json:"client"`
	Experiment      int             `json:"experiment"`
	Diagnosis       string          `json:"diagnosis"`
	Model           string          `json:"model"`
	RubricVersion   string          `json:"rubric_version"`
	PsycheScore     float64         `json:"psyche_score"`
	NormalizedScore float64         `json:"normalized_score"`
	Elements        []ElementResult `json:"elements"`
	Timestamp       time.Time       `json:"timestamp"`
}

// Evaluator scores construct pairs against one rubric. Scoring is pure
// given its inputs except for the free-text judge.
type Evaluator struct {
	rubric         *Rubric
	judge          Judge
	chiefComplaint Policy
}

// Option configures an evaluator.
type Option func(*Evaluator)

// WithChiefComplaintPolicy overrides the free-text comparison policy.
func WithChiefComplaintPolicy(policy Policy) Option {
	return func(e *Evaluator) {
		if policy == PolicyExact || policy == PolicySimilarity {
			e.chiefComplaint = policy
		}
	}
}

// NewEvaluator creates an evaluator over a parsed rubric.
func NewEvaluator(rubric *Rubric, judge Judge, opts ...Option) *Evaluator {
	e := &Evaluator{rubric: rubric, judge: judge, chiefComplaint: PolicySimilarity}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score evaluates a PACA construct against its SP reference. Missing
// fields score 0 with a diagnostic; only a judge transport failure
// aborts.
func (e *Evaluator) Score(ctx context.Context, sp, paca *format.Map) (*Record, error) {
	record := &Record{
		RubricVersion: e.rubric.Version,
		Diagnosis:     e.rubric.Diagnosis,
		Timestamp:     time.Now().UTC(),
	}

	for _, element := range e.rubric.Elements {
		result, err := e.scoreElement(ctx, element, sp, paca)
		if err != nil {
			return nil, err
		}
		record.PsycheScore += result.WeightedScore
		record.Elements = append(record.Elements, result)
	}

	if total := e.rubric.TotalWeight(); total > 0 {
		record.NormalizedScore = record.PsycheScore / float64(total)
	}
	return record, nil
}

func (e *Evaluator) scoreElement(ctx context.Context, element Element, sp, paca *format.Map) (ElementResult, error) {
	result := ElementResult{
		Element: element.Name,
		Kind:    element.Kind,
		Weight:  element.Weight,
	}
	result.SpContent, _ = Resolve(sp, element)

	switch element.Kind {
	case KindDuration:
		// The reference duration is the max across SP symptoms; Resolve
		// cannot see it because Length sits below the symptom entries.
		if weeks, ok := MaxSymptomDuration(sp); ok {
			result.SpContent = fmt.Sprintf("%g", weeks)
		}
		weeks, ok := MaxSymptomDuration(paca)
		if !ok {
			result.Diagnostic = "no numeric symptom duration reported"
			break
		}
		result.PacaContent = fmt.Sprintf("%g", weeks)
		result.Score = bucketScore(element.Buckets, weeks)

	case KindCategorical:
		content, found := Resolve(paca, element)
		result.PacaContent = content
		if !found {
			result.Diagnostic = "schema mismatch: field not found in construct"
			break
		}
		score, matched := scoreCategorical(content, element)
		result.Score = score
		if matched == "" && !isNotAssessed(content) {
			result.Diagnostic = "no rubric option matched"
		}

	case KindFreetext:
		content, found := Resolve(paca, element)
		result.PacaContent = content
		if !found {
			result.Diagnostic = "schema mismatch: field not found in construct"
			break
		}
		if isNotAssessed(content) {
			break
		}
		if e.chiefComplaint == PolicyExact && format.KeyEqual(element.Name, chiefComplaintElement) {
			if format.Canon(content) == format.Canon(result.SpContent) {
				result.Score = 1
			}
			break
		}
		score, err := e.judge.Rate(ctx, element.Name, result.SpContent, content)
		if err != nil {
			return result, fmt.Errorf("judge %s: %w", element.Name, err)
		}
		result.Score = score
	}

	result.WeightedScore = float64(element.Weight) * result.Score
	return result, nil
}

// scoreCategorical returns the maximum option score found in the
// content. Declared option order breaks ties.
func scoreCategorical(content string, element Element) (float64, string) {
	if isNotAssessed(content) {
		return 0, ""
	}
	tokens := tokenize(content)
	if len(tokens) == 0 {
		return 0, ""
	}

	var (
		best    float64
		matched string
	)
	for _, option := range element.Options {
		if !optionFound(tokens, content, option) {
			continue
		}
		score := element.Scoring[option]
		if matched == "" || score > best {
			best, matched = score, option
		}
	}
	return best, matched
}

// tokenize lowers the content and splits it on comma, slash, and the
// newlines introduced by symptom aggregation.
func tokenize(content string) []string {
	lowered := strings.ToLower(content)
	fields := strings.FieldsFunc(lowered, func(r rune) bool {
		return r == ',' || r == '/' || r == '\n'
	})
	var tokens []string
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	return tokens
}

func optionFound(tokens []string, content, option string) bool {
	lowered := strings.ToLower(strings.TrimSpace(option))
	for _, token := range tokens {
		if token == lowered {
			return true
		}
	}
	// Multi-word options match as a phrase inside the content.
	return strings.Contains(lowered, " ") &&
		strings.Contains(strings.ToLower(content), lowered)
}

func isNotAssessed(content string) bool {
	trimmed := strings.TrimSpace(content)
	return trimmed == "" || strings.EqualFold(trimmed, "n/a")
}
