// Package expert runs human validation of PACA constructs: an expert
// rater supplies the reference choice per rubric element and rates the
// interview quality.
package expert

import (
	"context"
	"fmt"

	"github.com/adalundhe/psyche/core/format"
	"github.com/adalundhe/psyche/core/psyche"
)

// Choices maps rubric element names to the expert's reference choice.
// Keys are compared canonically against element names.
type Choices map[string]string

// QualityAssessment holds the three Likert-5 interview quality scales.
type QualityAssessment struct {
	ProcessOfInterview      int `json:"process_of_interview"`
	Techniques              int `json:"techniques"`
	InformationForDiagnosis int `json:"information_for_diagnosis"`
	Total                   int `json:"total"`
}

// NewQualityAssessment validates the three scales and sums them.
func NewQualityAssessment(process, techniques, information int) (QualityAssessment, error) {
	for name, scale := range map[string]int{
		"process of the interview":  process,
		"techniques":                techniques,
		"information for diagnosis": information,
	} {
		if scale < 1 || scale > 5 {
			return QualityAssessment{}, fmt.Errorf("%s scale %d outside 1-5", name, scale)
		}
	}
	return QualityAssessment{
		ProcessOfInterview:      process,
		Techniques:              techniques,
		InformationForDiagnosis: information,
		Total:                   process + techniques + information,
	}, nil
}

// Record is one persisted expert validation.
type Record struct {
	Expert     string            `json:"expert"`
	Evaluation psyche.Record     `json:"evaluation"`
	Quality    QualityAssessment `json:"quality_assessment"`
}

// Validator scores PACA constructs against expert-supplied references
// using the same rubric machinery as the automatic evaluator.
type Validator struct {
	rubric    *psyche.Rubric
	evaluator *psyche.Evaluator
}

// NewValidator creates a validator. The judge serves free-text elements,
// exactly as in automatic evaluation.
func NewValidator(rubric *psyche.Rubric, judge psyche.Judge, opts ...psyche.Option) *Validator {
	return &Validator{
		rubric:    rubric,
		evaluator: psyche.NewEvaluator(rubric, judge, opts...),
	}
}

// Validate scores the PACA construct with the expert's choices as the
// reference content. Categorical choices must come from the element's
// declared option list.
func (v *Validator) Validate(ctx context.Context, expertName string, paca *format.Map, choices Choices, quality QualityAssessment) (*Record, error) {
	reference, err := v.referenceRecord(choices)
	if err != nil {
		return nil, err
	}

	evaluation, err := v.evaluator.Score(ctx, reference, paca)
	if err != nil {
		return nil, err
	}

	return &Record{
		Expert:     expertName,
		Evaluation: *evaluation,
		Quality:    quality,
	}, nil
}

// referenceRecord builds an SP-shaped construct from the expert choices.
func (v *Validator) referenceRecord(choices Choices) (*format.Map, error) {
	reference := format.NewMap()
	for _, element := range v.rubric.Elements {
		choice, ok := lookupChoice(choices, element.Name)
		if !ok {
			continue
		}
		if element.Kind == psyche.KindCategorical && !allowedOption(element, choice) {
			return nil, fmt.Errorf("choice %q for %q is not a rubric option", choice, element.Name)
		}
		reference.Set(element.Name, choice)
	}
	return reference, nil
}

func lookupChoice(choices Choices, name string) (string, bool) {
	for key, choice := range choices {
		if format.KeyEqual(key, name) {
			return choice, true
		}
	}
	return "", false
}

func allowedOption(element psyche.Element, choice string) bool {
	for _, option := range element.Options {
		if format.KeyEqual(option, choice) {
			return true
		}
	}
	return false
}
