// Package construct implements the simulated patient authoring pipeline:
// Profile, History, and Behavioral Directive, persisted phase by phase.
package construct

import "strings"

// Diagnosis is one of the closed tag set the pipeline supports.
type Diagnosis string

const (
	MDD  Diagnosis = "MDD"
	BD   Diagnosis = "BD"
	PD   Diagnosis = "PD"
	GAD  Diagnosis = "GAD"
	SAD  Diagnosis = "SAD"
	OCD  Diagnosis = "OCD"
	PTSD Diagnosis = "PTSD"
)

// Diagnoses lists the supported tags in canonical order.
var Diagnoses = []Diagnosis{MDD, BD, PD, GAD, SAD, OCD, PTSD}

// diagnosisNames maps tags to the human-readable disorder names used for
// substring detection. Order matters: "social anxiety" must be checked
// before "anxiety".
var diagnosisNames = []struct {
	tag  Diagnosis
	name string
}{
	{MDD, "major depressive"},
	{MDD, "depressive disorder"},
	{MDD, "depression"},
	{BD, "bipolar"},
	{PD, "panic"},
	{SAD, "social anxiety"},
	{GAD, "generalized anxiety"},
	{OCD, "obsessive"},
	{OCD, "compulsive"},
	{PTSD, "post-traumatic"},
	{PTSD, "posttraumatic"},
	{PTSD, "post traumatic"},
}

// DetectDiagnosis resolves a human-readable disorder name (or a bare tag)
// to its tag by substring match.
func DetectDiagnosis(name string) (Diagnosis, bool) {
	trimmed := strings.TrimSpace(name)
	upper := strings.ToUpper(trimmed)
	for _, tag := range Diagnoses {
		if upper == string(tag) {
			return tag, true
		}
	}

	lower := strings.ToLower(trimmed)
	for _, entry := range diagnosisNames {
		if strings.Contains(lower, entry.name) {
			return entry.tag, true
		}
	}
	return "", false
}

// GivenInformation is the minimal case metadata a client starts from.
type GivenInformation struct {
	Diagnosis   string `json:"diagnosis"`
	Age         int    `json:"age"`
	Sex         string `json:"sex"`
	Nationality string `json:"nationality"`
}

// Tag resolves the record's diagnosis field to a tag.
func (g GivenInformation) Tag() (Diagnosis, bool) {
	return DetectDiagnosis(g.Diagnosis)
}
