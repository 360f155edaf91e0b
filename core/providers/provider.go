// Package providers contains the chat-completion provider adapters. Each
// adapter converts the generic request shape to its SDK and back; callers
// see raw assistant text and are responsible for parsing it.
package providers

import (
	"context"
)

// Provider is the adapter contract for a chat-completion backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req *Request) (*Response, error)
	ValidateConfig() error
	SupportsModel(model string) bool
	DefaultModel() string
	Close() error
}

// Request is the provider-independent completion request.
type Request struct {
	Messages      []Message `json:"messages"`
	Model         string    `json:"model,omitempty"`
	MaxTokens     int       `json:"max_tokens,omitempty"`
	Temperature   *float64  `json:"temperature,omitempty"`
	TopP          *float64  `json:"top_p,omitempty"`
	StopSequences []string  `json:"stop_sequences,omitempty"`
	SystemPrompt  string    `json:"system_prompt,omitempty"`
}

// Message is a single conversational turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Response is the provider-independent completion response.
type Response struct {
	Content    string     `json:"content"`
	Model      string     `json:"model"`
	StopReason StopReason `json:"stop_reason"`
	Usage      Usage      `json:"usage"`
}

type StopReason string

const (
	StopReasonEndTurn      StopReason = "end_turn"
	StopReasonMaxTokens    StopReason = "max_tokens"
	StopReasonStopSequence StopReason = "stop_sequence"
	StopReasonError        StopReason = "error"
)

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}
