package dialogue

import (
	"time"

	"github.com/google/uuid"
)

// Record is the persisted form of a completed conversation.
type Record struct {
	RunID       string    `json:"run_id"`
	PacaVersion string    `json:"paca_version"`
	SpVersion   string    `json:"sp_version"`
	Timestamp   time.Time `json:"timestamp"`
	TotalTurns  int       `json:"total_turns"`
	Data        []Turn    `json:"data"`
}

// NewRecord stamps a transcript with run metadata.
func NewRecord(transcript []Turn, pacaVersion, spVersion string) *Record {
	return &Record{
		RunID:       uuid.NewString(),
		PacaVersion: pacaVersion,
		SpVersion:   spVersion,
		Timestamp:   time.Now().UTC(),
		TotalTurns:  len(transcript),
		Data:        transcript,
	}
}
