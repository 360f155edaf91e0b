// Package paca implements the psychiatric assessment agent: the
// interviewer in the dialogue and, afterwards, the respondent for the
// construct extraction question schedule.
package paca

import (
	"context"
	"strings"

	"github.com/adalundhe/psyche/core/gateway"
	"github.com/adalundhe/psyche/core/providers"
)

// Agent is the interviewer.
type Agent struct {
	client gateway.Completer
	system string
	memory []providers.Message
}

// New creates an interviewer agent.
func New(client gateway.Completer, system string) *Agent {
	return &Agent{client: client, system: system}
}

// Respond treats the patient's utterance as this agent's user turn,
// appends both turns to memory, and returns the interviewer's reply.
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

// Ask poses an extraction question on top of the interview memory. The
// question and answer are appended, so later questions may refer back to
// earlier answers.
func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	return a.Respond(ctx, question)
}

// PushAssistant appends an utterance to memory without a model call. The
// dialogue runner uses this for the fixed opening greeting.
func (a *Agent) PushAssistant(utterance string) {
	a.memory = append(a.memory, providers.Message{Role: providers.RoleAssistant, Content: utterance})
}

// Memory returns a copy of the agent's message history.
func (a *Agent) Memory() []providers.Message {
	out := make([]providers.Message, len(a.memory))
	copy(out, a.memory)
	return out
}
