// Package sp implements the simulated patient agent. Its persona is fixed
// by the authored Profile, History, and Behavioral Directive; its memory
// is private to the interview.
package sp

import (
	"context"
	"strings"

	"github.com/adalundhe/psyche/core/gateway"
	"github.com/adalundhe/psyche/core/providers"
)

// Agent is the simulated patient.
type Agent struct {
	client gateway.Completer
	system string
	memory []providers.Message
}

// New creates a patient agent with an assembled system prompt.
func New(client gateway.Completer, system string) *Agent {
	return &Agent{client: client, system: system}
}

// Respond treats the interviewer's utterance as this agent's user turn,
// appends both turns to memory, and returns the patient's reply.
func (a *Agent) Respond(ctx context.Context, userTurn string) (string, error) {
	reply, err := a.client.Complete(ctx, gateway.Call{
		System:   a.system,
		History:  a.memory,
		UserTurn: userTurn,
	})
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	a.memory = append(a.memory,
		providers.Message{Role: providers.RoleUser, Content: userTurn},
		providers.Message{Role: providers.RoleAssistant, Content: reply},
	)
	return reply, nil
}

// PushAssistant appends an utterance to memory without a model call.
func (a *Agent) PushAssistant(utterance string) {
	a.memory = append(a.memory, providers.Message{Role: providers.RoleAssistant, Content: utterance})
}

// Memory returns a copy of the agent's message history.
func (a *Agent) Memory() []providers.Message {
	out := make([]providers.Message, len(a.memory))
	copy(out, a.memory)
	return out
}
