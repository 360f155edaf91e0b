package blobstore

import "fmt"

// Canonical data-type keys under clients/<client_number>/. Versions carry
// the dotted form; sanitization rewrites them on the way in.

func GivenInformationKey() string {
	return "given_information"
}

func ProfileKey(version string) string {
	return fmt.Sprintf("profile_version%s", version)
}

func HistoryKey(version string) string {
	return fmt.Sprintf("history_version%s", version)
}

func DirectiveKey(version string) string {
	return fmt.Sprintf("beh_dir_version%s", version)
}

func ConversationKey(client, experiment int) string {
	return fmt.Sprintf("conversation_log_%d_%d", client, experiment)
}

func PacaConstructKey(client, experiment int) string {
	return fmt.Sprintf("construct_paca_%d_%d", client, experiment)
}

func SpConstructKey(client, experiment int) string {
	return fmt.Sprintf("construct_sp_%d_%d", client, experiment)
}

func EvaluationKey(diagnosis, model string, experiment int) string {
	return fmt.Sprintf("psyche_%s_%s_%d", diagnosis, model, experiment)
}

// ExpertKey is a top-level key, not scoped under a client.
func ExpertKey(expertName string, client, experiment int) string {
	return fmt.Sprintf("expert_%s_%d_%d", Sanitize(expertName), client, experiment)
}
