package providers

import (
	"context"
	"fmt"
	"sync"
)

// Registry manages provider instances and routes by provider type.
type Registry struct {
	mu sync.RWMutex

	providers map[ProviderType]Provider
	default_  ProviderType
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[ProviderType]Provider),
	}
}

// Register adds a provider to the registry
func (r *Registry) Register(providerType ProviderType, provider Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := provider.ValidateConfig(); err != nil {
		return fmt.Errorf("invalid provider config for %s: %w", providerType, err)
	}

	r.providers[providerType] = provider

	// Set as default if first provider
	if len(r.providers) == 1 {
		r.default_ = providerType
	}

	return nil
}

// RegisterAnthropic creates and registers an Anthropic provider
func (r *Registry) RegisterAnthropic(config AnthropicConfig) error {
	provider, err := NewAnthropicProvider(config)
	if err != nil {
		return err
	}
	return r.Register(ProviderTypeAnthropic, provider)
}

// RegisterOpenAI creates and registers an OpenAI provider
func (r *Registry) RegisterOpenAI(config OpenAIConfig) error {
	provider, err := NewOpenAIProvider(config)
	if err != nil {
		return err
	}
	return r.Register(ProviderTypeOpenAI, provider)
}

// RegisterGemini creates and registers a Gemini provider
func (r *Registry) RegisterGemini(ctx context.Context, config GoogleConfig) error {
	provider, err := NewGeminiProvider(ctx, config)
	if err != nil {
		return err
	}
	return r.Register(ProviderTypeGoogle, provider)
}

// Get returns the provider for a type, or the default when typ is empty.
func (r *Registry) Get(typ ProviderType) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if typ == "" {
		typ = r.default_
	}
	provider, ok := r.providers[typ]
	if !ok {
		return nil, fmt.Errorf("no provider registered for %q", typ)
	}
	return provider, nil
}

// SetDefault selects the default provider.
func (r *Registry) SetDefault(typ ProviderType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[typ]; !ok {
		return fmt.Errorf("no provider registered for %q", typ)
	}
	r.default_ = typ
	return nil
}

// Close closes all registered providers.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for _, provider := range r.providers {
		if err := provider.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
