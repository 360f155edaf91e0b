package psyche

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/adalundhe/psyche/core/format"
)

const symptomsSection = "Present illness"

// Resolve finds a rubric element's content in a construct. Top-level
// keys are tried first, then nested sections. A top-level match that is
// itself a section flattens to its leaf values, so "Chief complaint"
// yields the description beneath it. Aggregate elements join their
// per-symptom values with newlines. found is false when no key matches
// under canonical comparison.
func Resolve(record *format.Map, element Element) (content string, found bool) {
	if record == nil {
		return "", false
	}
	if element.Aggregate {
		return resolveAggregate(record, element.Name)
	}

	if _, raw, ok := format.LookupCanon(record, element.Name); ok {
		if section, isSection := raw.(*format.Map); isSection {
			return sectionText(section), true
		}
		return leafString(raw), true
	}

	var (
		nested   string
		nestedOK bool
	)
	record.Range(func(_ string, value any) bool {
		section, ok := value.(*format.Map)
		if !ok {
			return true
		}
		if _, raw, ok := format.LookupCanon(section, element.Name); ok {
			nested, nestedOK = leafString(raw), true
			return false
		}
		return true
	})
	return nested, nestedOK
}

// resolveAggregate joins a symptom-level field across symptom entries.
// A flat key of the same name serves as fallback, which is how expert
// reference records carry aggregate choices.
func resolveAggregate(record *format.Map, name string) (string, bool) {
	symptoms, ok := symptomEntries(record)
	if !ok {
		if _, raw, found := format.LookupCanon(record, name); found {
			return leafString(raw), true
		}
		return "", false
	}

	var values []string
	for _, symptom := range symptoms {
		if _, raw, ok := format.LookupCanon(symptom, name); ok {
			if s := leafString(raw); s != "" {
				values = append(values, s)
			}
		}
	}
	if len(values) == 0 {
		return "", false
	}
	return strings.Join(values, "\n"), true
}

// sectionText joins a section's leaf values with newlines.
func sectionText(section *format.Map) string {
	var values []string
	section.Range(func(_ string, value any) bool {
		if s := leafString(value); s != "" {
			values = append(values, s)
		}
		return true
	})
	return strings.Join(values, "\n")
}

// MaxSymptomDuration returns the largest numeric symptom length in the
// construct. ok is false when no symptom reports a numeric duration.
func MaxSymptomDuration(record *format.Map) (float64, bool) {
	symptoms, found := symptomEntries(record)
	if !found {
		return 0, false
	}

	var (
		max float64
		ok  bool
	)
	for _, symptom := range symptoms {
		_, raw, found := format.LookupCanon(symptom, "Length")
		if !found {
			continue
		}
		weeks, err := strconv.ParseFloat(leafString(raw), 64)
		if err != nil {
			continue
		}
		if !ok || weeks > max {
			max, ok = weeks, true
		}
	}
	return max, ok
}

// symptomEntries collects the symptom_n maps nested in the present
// illness section, skipping its leaf fields.
func symptomEntries(record *format.Map) ([]*format.Map, bool) {
	_, raw, found := format.LookupCanon(record, symptomsSection)
	if !found {
		return nil, false
	}
	section, ok := raw.(*format.Map)
	if !ok {
		return nil, false
	}

	var entries []*format.Map
	section.Range(func(_ string, value any) bool {
		if symptom, ok := value.(*format.Map); ok {
			entries = append(entries, symptom)
		}
		return true
	})
	return entries, len(entries) > 0
}

func leafString(v any) string {
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
