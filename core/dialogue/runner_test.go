package dialogue

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/psyche/core/providers"
)

// scriptedAgent replays canned utterances and keeps real memory.
type scriptedAgent struct {
	replies []string
	calls   int
	memory  []providers.Message
	failAt  int // 1-based Respond call that fails; 0 = never
}

func (a *scriptedAgent) Respond(ctx context.Context, userTurn string) (string, error) {
	a.calls++
	if a.failAt > 0 && a.calls >= a.failAt {
		return "", fmt.Errorf("gateway unavailable")
	}
	reply := fmt.Sprintf("reply %d", a.calls)
	if a.calls <= len(a.replies) {
		reply = a.replies[a.calls-1]
	}
	a.memory = append(a.memory,
		providers.Message{Role: providers.RoleUser, Content: userTurn},
		providers.Message{Role: providers.RoleAssistant, Content: reply},
	)
	return reply, nil
}

func (a *scriptedAgent) PushAssistant(utterance string) {
	a.memory = append(a.memory, providers.Message{Role: providers.RoleAssistant, Content: utterance})
}

func (a *scriptedAgent) Memory() []providers.Message {
	out := make([]providers.Message, len(a.memory))
	copy(out, a.memory)
	return out
}

func TestRunner_GreetingFirst(t *testing.T) {
	sp := &scriptedAgent{}
	paca := &scriptedAgent{}
	runner := NewRunner(sp, paca, WithMaxTurns(2))

	turn, ok, err := runner.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, SpeakerPACA, turn.Speaker)
	assert.Equal(t, DefaultGreeting, turn.Utterance)

	// greeting sits in PACA memory as an assistant turn
	require.Len(t, paca.memory, 1)
	assert.Equal(t, providers.RoleAssistant, paca.memory[0].Role)

	// SP receives it as its user turn on the next step
	_, ok, err = runner.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, sp.memory)
	assert.Equal(t, providers.RoleUser, sp.memory[0].Role)
	assert.Equal(t, DefaultGreeting, sp.memory[0].Content)
}

func TestRunner_StrictAlternationAndCap(t *testing.T) {
	sp := &scriptedAgent{}
	paca := &scriptedAgent{}
	runner := NewRunner(sp, paca, WithMaxTurns(4))

	transcript, err := runner.Run(context.Background())
	require.NoError(t, err)

	// 1 greeting + 4 alternating turns, ending with PACA
	require.Len(t, transcript, 5)
	want := []Speaker{SpeakerPACA, SpeakerSP, SpeakerPACA, SpeakerSP, SpeakerPACA}
	for i, turn := range transcript {
		assert.Equal(t, want[i], turn.Speaker, "turn %d", i)
	}
}

func TestRunner_MemoriesConsistentWithPrefix(t *testing.T) {
	sp := &scriptedAgent{replies: []string{"I feel down.", "Two months."}}
	paca := &scriptedAgent{replies: []string{"How long has this lasted?", "I see."}}
	runner := NewRunner(sp, paca, WithMaxTurns(4))

	var transcript []Turn
	for i := 0; i < 3; i++ {
		turn, ok, err := runner.Next(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
		transcript = append(transcript, turn)
	}

	// transcript: greeting, SP "I feel down.", PACA "How long has this lasted?"
	spMem := sp.Memory()
	last := spMem[len(spMem)-1]
	assert.Equal(t, providers.RoleAssistant, last.Role)
	assert.Equal(t, "I feel down.", last.Content, "SP memory tail matches SP's last yielded turn")

	pacaMem := paca.Memory()
	lastPaca := pacaMem[len(pacaMem)-1]
	assert.Equal(t, providers.RoleAssistant, lastPaca.Role)
	assert.Equal(t, "How long has this lasted?", lastPaca.Content, "PACA memory tail matches PACA's last yielded turn")

	// each agent received the other's utterance as its user turn
	assert.Equal(t, "I feel down.", pacaMem[len(pacaMem)-2].Content)
}

func TestRunner_AbortsOnGatewayError(t *testing.T) {
	sp := &scriptedAgent{failAt: 2}
	paca := &scriptedAgent{}
	runner := NewRunner(sp, paca, WithMaxTurns(10))

	transcript, err := runner.Run(context.Background())
	require.Error(t, err)

	// greeting + SP turn + PACA turn yielded before the failure
	assert.Len(t, transcript, 3)

	// failed runner stays failed
	_, ok, err2 := runner.Next(context.Background())
	assert.False(t, ok)
	assert.Error(t, err2)
}

func TestRunner_ContextCancellation(t *testing.T) {
	sp := &scriptedAgent{}
	paca := &scriptedAgent{}
	runner := NewRunner(sp, paca)

	ctx, cancel := context.WithCancel(context.Background())
	_, ok, err := runner.Next(ctx)
	require.True(t, ok)
	require.NoError(t, err)

	cancel()
	_, ok, err = runner.Next(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRecord(t *testing.T) {
	transcript := []Turn{
		{Speaker: SpeakerPACA, Utterance: DefaultGreeting},
		{Speaker: SpeakerSP, Utterance: "I can't sleep."},
	}
	record := NewRecord(transcript, "2.0", "5.0")

	assert.NotEmpty(t, record.RunID)
	assert.Equal(t, 2, record.TotalTurns)
	assert.Equal(t, "2.0", record.PacaVersion)
	assert.Equal(t, "5.0", record.SpVersion)
	assert.False(t, record.Timestamp.IsZero())
}
