package psyche

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgraph-io/ristretto"

	"github.com/adalundhe/psyche/core/gateway"
)

// Judge rates how well a candidate answer matches a reference answer,
// returning a scalar in [0,1]. The LLM-backed judge is the only
// nondeterministic scoring path.
type Judge interface {
	Rate(ctx context.Context, field, reference, candidate string) (float64, error)
}

var ratingPattern = regexp.MustCompile(`(?i)rating:\s*(-?[0-9]*\.?[0-9]+)`)

const defaultJudgeSystem = `You compare a clinician's finding against the reference finding for the same patient.
Rate how well the candidate captures the clinical meaning of the reference on a scale from 0.0 (unrelated) to 1.0 (equivalent).
Respond with a single line of the form:
Rating: <number>`

// LLMJudge rates via the gateway and memoizes results, since evaluation
// re-runs over the same construct pairs are common.
type LLMJudge struct {
	llm    gateway.Completer
	system string
	cache  *ristretto.Cache
}

// NewLLMJudge creates a judge. An empty system prompt selects the
// built-in comparison prompt.
func NewLLMJudge(llm gateway.Completer, system string) (*LLMJudge, error) {
	if system == "" {
		system = defaultJudgeSystem
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("judge cache: %w", err)
	}
	return &LLMJudge{llm: llm, system: system, cache: cache}, nil
}

// Rate asks the model for a similarity rating. Out-of-range ratings are
// clamped; an unparseable response degrades to 0 with a logged
// diagnostic rather than an error.
func (j *LLMJudge) Rate(ctx context.Context, field, reference, candidate string) (float64, error) {
	key := field + "\x00" + reference + "\x00" + candidate
	if cached, ok := j.cache.Get(key); ok {
		return cached.(float64), nil
	}

	turn := fmt.Sprintf("Field: %s\n\nReference:\n%s\n\nCandidate:\n%s", field, reference, candidate)
	reply, err := j.llm.Complete(ctx, gateway.Call{
		System:   j.system,
		UserTurn: turn,
	})
	if err != nil {
		return 0, err
	}

	score, ok := ParseRating(reply)
	if !ok {
		slog.Warn("judge reply had no parseable rating, scoring 0",
			"field", field, "reply", strings.TrimSpace(reply))
		score = 0
	}

	j.cache.Set(key, score, 1)
	return score, nil
}

// Close releases the memo cache.
func (j *LLMJudge) Close() {
	j.cache.Close()
}

// ParseRating extracts a "Rating: <float>" line and clamps it to [0,1].
func ParseRating(reply string) (float64, bool) {
	match := ratingPattern.FindStringSubmatch(reply)
	if match == nil {
		return 0, false
	}
	rating, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	if rating < 0 {
		rating = 0
	}
	if rating > 1 {
		rating = 1
	}
	return rating, true
}
