package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider is a minimal in-memory provider for registry tests.
type stubProvider struct {
	name      string
	responses []string
	calls     int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	content := "ok"
	if s.calls < len(s.responses) {
		content = s.responses[s.calls]
	}
	s.calls++
	return &Response{Content: content, StopReason: StopReasonEndTurn}, nil
}

func (s *stubProvider) ValidateConfig() error          { return nil }
func (s *stubProvider) SupportsModel(model string) bool { return true }
func (s *stubProvider) DefaultModel() string           { return "stub-model" }
func (s *stubProvider) Close() error                   { return nil }

func TestRegistry_FirstRegisteredIsDefault(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(ProviderTypeAnthropic, &stubProvider{name: "anthropic"}))
	require.NoError(t, registry.Register(ProviderTypeOpenAI, &stubProvider{name: "openai"}))

	provider, err := registry.Get("")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", provider.Name())
}

func TestRegistry_GetByType(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(ProviderTypeOpenAI, &stubProvider{name: "openai"}))

	provider, err := registry.Get(ProviderTypeOpenAI)
	require.NoError(t, err)
	assert.Equal(t, "openai", provider.Name())

	_, err = registry.Get(ProviderTypeGoogle)
	assert.Error(t, err, "unregistered type should fail")
}

func TestRegistry_SetDefault(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(ProviderTypeAnthropic, &stubProvider{name: "anthropic"}))
	require.NoError(t, registry.Register(ProviderTypeGoogle, &stubProvider{name: "google"}))

	require.NoError(t, registry.SetDefault(ProviderTypeGoogle))

	provider, err := registry.Get("")
	require.NoError(t, err)
	assert.Equal(t, "google", provider.Name())

	assert.Error(t, registry.SetDefault(ProviderTypeOpenAI), "cannot default to unregistered provider")
}

func TestAnthropicConfig_Validation(t *testing.T) {
	cfg := DefaultAnthropicConfig()
	assert.Error(t, cfg.Validate(), "missing api key should fail")

	cfg.APIKey = "sk-test"
	assert.NoError(t, cfg.Validate())

	cfg.Temperature = 3.0
	assert.Error(t, cfg.Validate(), "out-of-range temperature should fail")
}
