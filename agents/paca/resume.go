package paca

import (
	"github.com/adalundhe/psyche/core/dialogue"
	"github.com/adalundhe/psyche/core/gateway"
	"github.com/adalundhe/psyche/core/providers"
)

// Resume recreates an interviewer from a finished conversation so the
// extraction schedule can question it in a later process. PACA
// utterances replay as assistant turns, SP utterances as user turns.
func Resume(client gateway.Completer, system string, transcript []dialogue.Turn) *Agent {
	agent := New(client, system)
	for _, turn := range transcript {
		role := providers.RoleUser
		if turn.Speaker == dialogue.SpeakerPACA {
			role = providers.RoleAssistant
		}
		agent.memory = append(agent.memory, providers.Message{Role: role, Content: turn.Utterance})
	}
	return agent
}
