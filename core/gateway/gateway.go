// Package gateway exposes the single chat-completion entrypoint the
// pipeline uses. The returned text is raw; callers parse it.
package gateway

import (
	"context"
	"strings"

	"github.com/adalundhe/psyche/core/errors"
	"github.com/adalundhe/psyche/core/providers"
)

// DefaultTemperature applies when a call does not override it. Authoring
// and evaluation paths pass 0.0 explicitly.
const DefaultTemperature = 0.7

// Call is one completion request: a system prompt, prior history, the
// current user turn, and template variable bindings.
type Call struct {
	System      string
	History     []providers.Message
	UserTurn    string
	Bindings    map[string]string
	Temperature *float64
	Model       string
}

// Completer is the contract the pipeline depends on. Tests substitute a
// scripted implementation.
type Completer interface {
	Complete(ctx context.Context, call Call) (string, error)
}

// Client routes calls through a provider registry.
type Client struct {
	registry *providers.Registry
	provider providers.ProviderType
}

// NewClient creates a gateway client. An empty provider type routes to the
// registry default.
func NewClient(registry *providers.Registry, provider providers.ProviderType) *Client {
	return &Client{registry: registry, provider: provider}
}

// Complete performs one completion call and returns the assistant text.
func (c *Client) Complete(ctx context.Context, call Call) (string, error) {
	provider, err := c.registry.Get(c.provider)
	if err != nil {
		return "", errors.Wrap(errors.KindGateway, "gateway.complete", err)
	}

	temperature := DefaultTemperature
	if call.Temperature != nil {
		temperature = *call.Temperature
	}

	messages := make([]providers.Message, 0, len(call.History)+1)
	messages = append(messages, call.History...)
	messages = append(messages, providers.Message{
		Role:    providers.RoleUser,
		Content: Bind(call.UserTurn, call.Bindings),
	})

	req := &providers.Request{
		Messages:     messages,
		Model:        call.Model,
		SystemPrompt: Bind(call.System, call.Bindings),
		Temperature:  &temperature,
	}

	resp, err := provider.Complete(ctx, req)
	if err != nil {
		return "", errors.Wrap(errors.KindGateway, "gateway.complete", err)
	}
	return resp.Content, nil
}

// Bind substitutes {key} tokens in a template with their bound values.
// Unbound tokens are left intact.
func Bind(template string, bindings map[string]string) string {
	if len(bindings) == 0 {
		return template
	}
	pairs := make([]string, 0, len(bindings)*2)
	for key, value := range bindings {
		pairs = append(pairs, "{"+key+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
