// Package extract produces the two post-dialogue constructs: the SP
// construct assembled deterministically from authored artifacts, and the
// PACA construct elicited from the clinician agent's live memory.
package extract

import (
	"regexp"
	"strings"

	"github.com/adalundhe/psyche/core/format"
)

var (
	formBlockPattern = regexp.MustCompile(`(?s)<Form>(.*?)</Form>`)
	itemLinePattern  = regexp.MustCompile(`^\s*-\s*(.+?)\s*:\s*(.*?)\s*$`)
)

// ParseMSEForm extracts the <Form> block embedded in a behavioral
// directive and parses its "- Item : Value" lines. Returns an empty map
// when no form block is present.
func ParseMSEForm(text string) *format.Map {
	findings := format.NewMap()

	block := formBlockPattern.FindStringSubmatch(text)
	if block == nil {
		return findings
	}

	for _, line := range strings.Split(block[1], "\n") {
		match := itemLinePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		item := cleanFormText(match[1])
		value := cleanFormText(match[2])
		if item == "" || value == "" {
			continue
		}
		findings.Set(item, value)
	}
	return findings
}

// cleanFormText strips surrounding whitespace and quoting left over from
// templated examples.
func cleanFormText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}
