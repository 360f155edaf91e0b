package paca

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/psyche/core/gateway"
	"github.com/adalundhe/psyche/core/providers"
)

type stubCompleter struct {
	reply string
	calls []gateway.Call
}

func (s *stubCompleter) Complete(ctx context.Context, call gateway.Call) (string, error) {
	s.calls = append(s.calls, call)
	return s.reply, nil
}

func TestAgent_GreetingThenAskSharesMemory(t *testing.T) {
	stub := &stubCompleter{reply: "The patient reported low mood."}
	agent := New(stub, "You are a psychiatrist.")

	agent.PushAssistant("Hello, I'm your psychiatrist today.")

	answer, err := agent.Ask(context.Background(), "What was the chief complaint?")
	require.NoError(t, err)
	assert.Equal(t, "The patient reported low mood.", answer)

	memory := agent.Memory()
	require.Len(t, memory, 3)
	assert.Equal(t, providers.RoleAssistant, memory[0].Role, "greeting is an assistant turn")

	// the extraction call carried the greeting as history
	require.Len(t, stub.calls, 1)
	require.Len(t, stub.calls[0].History, 1)
	assert.Equal(t, "Hello, I'm your psychiatrist today.", stub.calls[0].History[0].Content)
}

func TestBuildSystemPrompt_SkipsEmptySections(t *testing.T) {
	prompt := BuildSystemPrompt("Interview the patient.", "", "Ask one question at a time.")
	assert.Equal(t, "Interview the patient.\n\nAsk one question at a time.", prompt)
}
