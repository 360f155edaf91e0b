package paca

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/psyche/core/dialogue"
	"github.com/adalundhe/psyche/core/providers"
)

func TestResume_ReplaysTranscriptAsMemory(t *testing.T) {
	transcript := []dialogue.Turn{
		{Speaker: dialogue.SpeakerPACA, Utterance: "How can I help you?"},
		{Speaker: dialogue.SpeakerSP, Utterance: "I keep having panic attacks."},
		{Speaker: dialogue.SpeakerPACA, Utterance: "When did they start?"},
		{Speaker: dialogue.SpeakerSP, Utterance: "About three months ago."},
	}

	stub := &stubCompleter{reply: "panic attacks"}
	agent := Resume(stub, "You are a psychiatrist.", transcript)

	memory := agent.Memory()
	require.Len(t, memory, 4)
	assert.Equal(t, providers.RoleAssistant, memory[0].Role)
	assert.Equal(t, providers.RoleUser, memory[1].Role)
	assert.Equal(t, "About three months ago.", memory[3].Content)

	// Extraction questions run on top of the replayed memory.
	_, err := agent.Ask(context.Background(), "What was symptom 1?")
	require.NoError(t, err)
	require.Len(t, stub.calls, 1)
	assert.Len(t, stub.calls[0].History, 4)
}
