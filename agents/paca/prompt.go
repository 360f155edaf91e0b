package paca

import "strings"

// BuildSystemPrompt assembles the interviewer prompt. The agent never sees
// the authored patient artifacts; everything it learns comes from the
// conversation itself.
func BuildSystemPrompt(base string, extra ...string) string {
	parts := append([]string{base}, extra...)
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
