package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adalundhe/psyche/core/construct"
	"github.com/adalundhe/psyche/core/format"
)

// Section names of the given-form schema with dedicated handling.
const (
	sectionPresentIllness = "Present illness"
	sectionMSE            = "Mental Status Examination"
)

// Extractor produces constructs shaped by a given-form schema. Schema
// leaves are either a default string or an option list for categorical
// fields; the Present illness section holds a single symptom template
// that is replicated per reported symptom, next to its leaf fields.
type Extractor struct {
	schema *format.Map
}

// New creates an extractor over a given-form schema.
func New(schema *format.Map) *Extractor {
	return &Extractor{schema: schema}
}

// ExtractSP assembles the SP construct without any LLM call: identifying
// fields come from the Profile, MSE fields from the directive's <Form>
// block, and everything else from the schema default.
func (e *Extractor) ExtractSP(artifacts *construct.Artifacts) (*format.Map, error) {
	if artifacts == nil || artifacts.Profile == nil {
		return nil, fmt.Errorf("sp extraction requires authored artifacts")
	}

	findings := ParseMSEForm(artifacts.Directive)
	out := format.NewMap()

	e.schema.Range(func(key string, value any) bool {
		section, isSection := value.(*format.Map)
		switch {
		case !isSection:
			out.Set(key, fillLeaf(artifacts.Profile, key, value))
		case format.KeyEqual(key, sectionPresentIllness):
			out.Set(key, e.spPresentIllness(artifacts.Profile, section))
		case format.KeyEqual(key, sectionMSE):
			out.Set(key, fillSection(section, findings))
		default:
			out.Set(key, fillSection(section, profileSection(artifacts.Profile, key)))
		}
		return true
	})
	return out, nil
}

// spPresentIllness replicates the schema's symptom template for each
// symptom recorded in the profile and fills the section's leaf fields
// alongside. A profile without symptoms yields one default entry.
func (e *Extractor) spPresentIllness(profile, section *format.Map) *format.Map {
	template := symptomTemplate(section)
	source := profileSection(profile, sectionPresentIllness)
	out := format.NewMap()

	emitted := false
	section.Range(func(key string, value any) bool {
		if _, ok := value.(*format.Map); ok {
			if !emitted {
				emitted = true
				appendSymptoms(out, template, source)
			}
			return true
		}
		out.Set(key, fillLeaf(source, key, value))
		return true
	})
	return out
}

// appendSymptoms emits symptom_1..n from the source's nested entries,
// or a single default entry when the source carries none.
func appendSymptoms(out, template, source *format.Map) {
	index := 0
	if source != nil {
		source.Range(func(_ string, value any) bool {
			symptom, ok := value.(*format.Map)
			if !ok {
				return true
			}
			index++
			out.Set(fmt.Sprintf("symptom_%d", index), fillSection(template, symptom))
			return true
		})
	}
	if index == 0 {
		out.Set("symptom_1", sectionDefaults(template))
	}
}

// symptomTemplate returns the per-symptom field template declared as the
// section's nested entry.
func symptomTemplate(section *format.Map) *format.Map {
	var template *format.Map
	section.Range(func(_ string, value any) bool {
		if nested, ok := value.(*format.Map); ok {
			template = nested
			return false
		}
		return true
	})
	if template == nil {
		return format.NewMap()
	}
	return template
}

// profileSection finds the profile section matching a schema section
// under canonical comparison. Nil when the profile lacks it.
func profileSection(profile *format.Map, key string) *format.Map {
	if profile == nil {
		return nil
	}
	_, raw, found := format.LookupCanon(profile, key)
	if !found {
		return nil
	}
	section, ok := raw.(*format.Map)
	if !ok {
		return nil
	}
	return section
}

// fillSection fills every template key from the source map, falling back
// to the schema default.
func fillSection(template, source *format.Map) *format.Map {
	out := format.NewMap()
	template.Range(func(key string, value any) bool {
		out.Set(key, fillLeaf(source, key, value))
		return true
	})
	return out
}

// sectionDefaults renders a template with every field at its default.
func sectionDefaults(template *format.Map) *format.Map {
	out := format.NewMap()
	template.Range(func(key string, value any) bool {
		out.Set(key, schemaDefault(value))
		return true
	})
	return out
}

// blankSentinel marks an unfilled profile-form slot.
const blankSentinel = "blank ("

func fillLeaf(source *format.Map, key string, schemaValue any) any {
	if source != nil {
		if _, raw, found := format.LookupCanon(source, key); found {
			if s := stringify(raw); s != "" && !strings.HasPrefix(s, blankSentinel) {
				return s
			}
		}
	}
	return schemaDefault(schemaValue)
}

// schemaDefault is the value a field takes when nothing supplies it.
// Option lists and empty defaults collapse to "N/A".
func schemaDefault(value any) any {
	switch v := value.(type) {
	case *format.Map:
		return sectionDefaults(v)
	case string:
		if strings.TrimSpace(v) == "" {
			return NotAssessed
		}
		return v
	default:
		return NotAssessed
	}
}

// options returns the declared option list for a categorical schema leaf.
func options(schemaValue any) []string {
	list, ok := schemaValue.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringify(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case json.Number:
		return value.String()
	case nil:
		return ""
	case *format.Map, []any:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(value))
	}
}
