// Package dialogue coordinates the turn-taking interview between the
// simulated patient and the interviewer agent. The runner is a lazy
// producer: the consumer controls pacing and termination.
package dialogue

import (
	"context"

	"github.com/adalundhe/psyche/core/providers"
)

// Speaker identifies which agent produced an utterance.
type Speaker string

const (
	SpeakerSP   Speaker = "SP"
	SpeakerPACA Speaker = "PACA"
)

// Turn is one utterance in the transcript.
type Turn struct {
	Speaker   Speaker `json:"speaker"`
	Utterance string  `json:"utterance"`
}

// Agent is a conversational participant with private memory. Memories are
// never shared between agents: the two sides may hold inconsistent beliefs.
type Agent interface {
	// Respond takes the previous speaker's utterance as this agent's user
	// turn, appends both turns to the agent's own memory, and returns the
	// assistant reply.
	Respond(ctx context.Context, userTurn string) (string, error)

	// PushAssistant appends an utterance to memory as an assistant turn
	// without a model call.
	PushAssistant(utterance string)

	// Memory returns a copy of the agent's message history.
	Memory() []providers.Message
}

// DefaultMaxTurns bounds the interview after the opening greeting.
const DefaultMaxTurns = 100

// DefaultGreeting is the interviewer's fixed opening.
const DefaultGreeting = "Hello, I'm your psychiatrist today. How can I help you?"

// Runner drives the alternation. The greeting does not count against the
// turn budget; after it, SP and PACA alternate strictly.
type Runner struct {
	sp       Agent
	paca     Agent
	greeting string
	maxTurns int

	started    bool
	turnsTaken int
	last       string
	next       Speaker
	failed     error
}

// Option configures a Runner.
type Option func(*Runner)

// WithMaxTurns overrides the turn budget.
func WithMaxTurns(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxTurns = n
		}
	}
}

// WithGreeting overrides the interviewer's opening line.
func WithGreeting(greeting string) Option {
	return func(r *Runner) {
		if greeting != "" {
			r.greeting = greeting
		}
	}
}

// NewRunner creates a runner over the two agents.
func NewRunner(sp, paca Agent, opts ...Option) *Runner {
	r := &Runner{
		sp:       sp,
		paca:     paca,
		greeting: DefaultGreeting,
		maxTurns: DefaultMaxTurns,
		next:     SpeakerSP,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next yields the following turn. ok=false means the sequence is
// exhausted. After an error the runner stays failed; previously yielded
// turns remain valid and both memories are consistent with them.
func (r *Runner) Next(ctx context.Context) (Turn, bool, error) {
	if r.failed != nil {
		return Turn{}, false, r.failed
	}

	if !r.started {
		r.started = true
		// the greeting is an assistant turn for PACA; SP sees it as its
		// user turn on the first Respond call
		r.paca.PushAssistant(r.greeting)
		r.last = r.greeting
		return Turn{Speaker: SpeakerPACA, Utterance: r.greeting}, true, nil
	}

	if r.turnsTaken >= r.maxTurns {
		return Turn{}, false, nil
	}

	if err := ctx.Err(); err != nil {
		r.failed = err
		return Turn{}, false, err
	}

	speaker := r.next
	agent := r.sp
	if speaker == SpeakerPACA {
		agent = r.paca
	}

	utterance, err := agent.Respond(ctx, r.last)
	if err != nil {
		r.failed = err
		return Turn{}, false, err
	}

	r.last = utterance
	r.turnsTaken++
	if speaker == SpeakerSP {
		r.next = SpeakerPACA
	} else {
		r.next = SpeakerSP
	}
	return Turn{Speaker: speaker, Utterance: utterance}, true, nil
}

// Run drains the runner into a transcript. The transcript contains the
// turns yielded before any failure.
func (r *Runner) Run(ctx context.Context) ([]Turn, error) {
	var transcript []Turn
	for {
		turn, ok, err := r.Next(ctx)
		if err != nil {
			return transcript, err
		}
		if !ok {
			return transcript, nil
		}
		transcript = append(transcript, turn)
	}
}
