package extract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/adalundhe/psyche/core/format"
)

// NotAssessed marks a field the interviewer could not establish.
const NotAssessed = "N/A"

// Symptom schedule bounds. Counts and durations outside these ranges are
// clamped, never rejected.
const (
	MinSymptoms     = 1
	MaxSymptoms     = 5
	MaxSymptomWeeks = 24
)

// Asker is the slice of the PACA agent the extractor needs: targeted
// questions answered against the agent's accumulated dialogue memory.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

var (
	integerPattern     = regexp.MustCompile(`-?\d+`)
	notAssessedPattern = regexp.MustCompile(`(?i)\b(n/?a|not assessed|i don'?t know|i do not know|uncertain)\b`)
)

// ExtractPACA elicits the PACA construct by questioning the agent field
// by field in schema order. The agent keeps its interview memory, so
// answers reflect what the clinician actually learned.
func (e *Extractor) ExtractPACA(ctx context.Context, agent Asker) (*format.Map, error) {
	out := format.NewMap()

	var outer error
	e.schema.Range(func(key string, value any) bool {
		var (
			filled any
			err    error
		)
		section, isSection := value.(*format.Map)
		switch {
		case !isSection:
			filled, err = askField(ctx, agent, key, value)
		case format.KeyEqual(key, sectionPresentIllness):
			filled, err = e.pacaPresentIllness(ctx, agent, section)
		case format.KeyEqual(key, sectionMSE):
			// MSE items are asked by their bare names.
			filled, err = pacaSection(ctx, agent, section, "")
		default:
			filled, err = pacaSection(ctx, agent, section, key)
		}
		if err != nil {
			outer = err
			return false
		}
		out.Set(key, filled)
		return true
	})
	if outer != nil {
		return nil, outer
	}
	return out, nil
}

// pacaSection asks one question per leaf. The prefix qualifies ambiguous
// leaf names with their section ("family history diagnosis").
func pacaSection(ctx context.Context, agent Asker, section *format.Map, prefix string) (*format.Map, error) {
	out := format.NewMap()
	var outer error
	section.Range(func(key string, value any) bool {
		answer, err := askField(ctx, agent, fieldLabel(prefix, key), value)
		if err != nil {
			outer = err
			return false
		}
		out.Set(key, answer)
		return true
	})
	if outer != nil {
		return nil, outer
	}
	return out, nil
}

// pacaPresentIllness runs the symptom schedule where the schema declares
// the symptom template, then asks the section's leaf fields.
func (e *Extractor) pacaPresentIllness(ctx context.Context, agent Asker, section *format.Map) (*format.Map, error) {
	out := format.NewMap()

	var (
		outer   error
		emitted bool
	)
	section.Range(func(key string, value any) bool {
		if nested, ok := value.(*format.Map); ok {
			if !emitted {
				emitted = true
				if err := e.pacaSymptoms(ctx, agent, nested, out); err != nil {
					outer = err
					return false
				}
			}
			return true
		}
		answer, err := askField(ctx, agent, key, value)
		if err != nil {
			outer = err
			return false
		}
		out.Set(key, answer)
		return true
	})
	if outer != nil {
		return nil, outer
	}
	return out, nil
}

func (e *Extractor) pacaSymptoms(ctx context.Context, agent Asker, template, out *format.Map) error {
	countAnswer, err := agent.Ask(ctx, fmt.Sprintf(
		"Based on your interview, how many distinct symptoms did the patient report? Answer with a single number between %d and %d.",
		MinSymptoms, MaxSymptoms))
	if err != nil {
		return err
	}
	count := clampInt(parseFirstInt(countAnswer, MinSymptoms), MinSymptoms, MaxSymptoms)

	for i := 1; i <= count; i++ {
		symptom := format.NewMap()

		name, err := agent.Ask(ctx, fmt.Sprintf(
			"What was symptom %d the patient reported? Answer with a short symptom name only. If you could not identify it, answer N/A.", i))
		if err != nil {
			return err
		}
		name = NormalizeAnswer(name)

		var sectionErr error
		template.Range(func(key string, _ any) bool {
			switch {
			case format.KeyEqual(key, "Symptom name"):
				symptom.Set(key, name)
			case format.KeyEqual(key, "Length"):
				length, err := askSymptomLength(ctx, agent, name)
				if err != nil {
					sectionErr = err
					return false
				}
				symptom.Set(key, length)
			default:
				question := fmt.Sprintf(
					"What %s did the patient report for %q? Answer briefly. If none was identified, answer N/A.",
					strings.ToLower(key), name)
				answer, err := agent.Ask(ctx, question)
				if err != nil {
					sectionErr = err
					return false
				}
				symptom.Set(key, NormalizeAnswer(answer))
			}
			return true
		})
		if sectionErr != nil {
			return sectionErr
		}

		out.Set(fmt.Sprintf("symptom_%d", i), symptom)
	}
	return nil
}

// askSymptomLength returns the duration in weeks clamped to
// [0, MaxSymptomWeeks], or NotAssessed when the agent could not say.
func askSymptomLength(ctx context.Context, agent Asker, name string) (any, error) {
	answer, err := agent.Ask(ctx, fmt.Sprintf(
		"For how many weeks has the patient experienced %q? Answer with a single integer number of weeks. If unknown, answer N/A.", name))
	if err != nil {
		return nil, err
	}
	if NormalizeAnswer(answer) == NotAssessed {
		return NotAssessed, nil
	}
	weeks, ok := firstInt(answer)
	if !ok {
		return NotAssessed, nil
	}
	return clampInt(weeks, 0, MaxSymptomWeeks), nil
}

// askField asks one short-answer question, carrying the option list when
// the schema declares the field categorical.
func askField(ctx context.Context, agent Asker, field string, schemaValue any) (string, error) {
	var question string
	if opts := options(schemaValue); len(opts) > 0 {
		question = fmt.Sprintf(
			"In your assessment, what is the patient's %s? Choose exactly one of: %s. If you could not assess it, answer N/A.",
			field, strings.Join(opts, ", "))
	} else {
		question = fmt.Sprintf(
			"In your assessment, what is the patient's %s? Answer briefly. If you could not assess it, answer N/A.",
			field)
	}

	answer, err := agent.Ask(ctx, question)
	if err != nil {
		return "", err
	}
	return NormalizeAnswer(answer), nil
}

// fieldLabel joins a section prefix and a leaf name into question prose.
func fieldLabel(prefix, key string) string {
	label := strings.ReplaceAll(key, "_", " ")
	if prefix == "" {
		return label
	}
	return strings.ToLower(strings.ReplaceAll(prefix, "_", " ") + " " + label)
}

// NormalizeAnswer trims an agent answer and collapses any refusal form
// to NotAssessed.
func NormalizeAnswer(answer string) string {
	cleaned := cleanFormText(answer)
	cleaned = strings.TrimSuffix(cleaned, ".")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || notAssessedPattern.MatchString(cleaned) {
		return NotAssessed
	}
	return cleaned
}

func parseFirstInt(s string, fallback int) int {
	if n, ok := firstInt(s); ok {
		return n
	}
	return fallback
}

func firstInt(s string) (int, bool) {
	match := integerPattern.FindString(s)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

func clampInt(n, low, high int) int {
	if n < low {
		return low
	}
	if n > high {
		return high
	}
	return n
}
