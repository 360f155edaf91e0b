package sp

import (
	"encoding/json"
	"strings"

	"github.com/adalundhe/psyche/core/format"
)

// BuildSystemPrompt assembles the patient persona from the base template
// and the three authored artifacts. The directive comes last so its
// speech-style constraints dominate.
func BuildSystemPrompt(base string, profile *format.Map, history, directive string) string {
	var b strings.Builder
	b.WriteString(base)

	if profile != nil {
		if data, err := json.MarshalIndent(profile, "", "  "); err == nil {
			b.WriteString("\n\n<Patient Profile>\n")
			b.Write(data)
			b.WriteString("\n</Patient Profile>")
		}
	}

	if history != "" {
		b.WriteString("\n\n<Patient History>\n")
		b.WriteString(history)
		b.WriteString("\n</Patient History>")
	}

	if directive != "" {
		b.WriteString("\n\n<Behavioral Directive>\n")
		b.WriteString(directive)
		b.WriteString("\n</Behavioral Directive>")
	}

	return b.String()
}
