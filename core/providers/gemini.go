package providers

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider implements Provider for Google's Gemini models
type GeminiProvider struct {
	client *genai.Client
	config GoogleConfig
}

// Supported Gemini models
var geminiModels = map[string]bool{
	"gemini-2.5-pro":   true,
	"gemini-2.5-flash": true,
}

// NewGeminiProvider creates a new Gemini provider with the given configuration
func NewGeminiProvider(ctx context.Context, config GoogleConfig) (*GeminiProvider, error) {
	if config.Model == "" {
		config.Model = DefaultGoogleConfig().Model
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultGoogleConfig().MaxTokens
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		config: config,
	}, nil
}

// Name returns the provider identifier
func (p *GeminiProvider) Name() string {
	return string(ProviderTypeGoogle)
}

// Complete performs a non-streaming completion request
func (p *GeminiProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	cfg := p.buildConfig(req)
	contents := p.convertMessages(req.Messages)

	result, err := p.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini complete: %w", err)
	}

	return p.convertResponse(model, result), nil
}

// ValidateConfig checks if the provider configuration is valid
func (p *GeminiProvider) ValidateConfig() error {
	return p.config.Validate()
}

// SupportsModel checks if the provider supports the given model
func (p *GeminiProvider) SupportsModel(model string) bool {
	return geminiModels[model]
}

// DefaultModel returns the provider's default model
func (p *GeminiProvider) DefaultModel() string {
	return p.config.Model
}

// Close cleans up any resources
func (p *GeminiProvider) Close() error {
	return nil
}

func (p *GeminiProvider) buildConfig(req *Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}

	if req.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	if req.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*req.Temperature))
	} else if p.config.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(p.config.Temperature))
	}

	if req.TopP != nil {
		cfg.TopP = genai.Ptr(float32(*req.TopP))
	}

	if p.config.TopK != nil {
		cfg.TopK = genai.Ptr(float32(*p.config.TopK))
	}

	if len(req.StopSequences) > 0 {
		cfg.StopSequences = req.StopSequences
	}

	return cfg
}

// convertMessages converts generic messages to Gemini content
func (p *GeminiProvider) convertMessages(messages []Message) []*genai.Content {
	result := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleUser:
			result = append(result, genai.NewContentFromText(msg.Content, genai.RoleUser))
		case RoleAssistant:
			result = append(result, genai.NewContentFromText(msg.Content, genai.RoleModel))
		}
	}
	return result
}

// convertResponse converts a Gemini response to generic format
func (p *GeminiProvider) convertResponse(model string, result *genai.GenerateContentResponse) *Response {
	resp := &Response{
		Content:    result.Text(),
		Model:      model,
		StopReason: StopReasonEndTurn,
	}

	if len(result.Candidates) > 0 {
		switch result.Candidates[0].FinishReason {
		case genai.FinishReasonMaxTokens:
			resp.StopReason = StopReasonMaxTokens
		case genai.FinishReasonStop:
			resp.StopReason = StopReasonEndTurn
		}
	}

	if result.UsageMetadata != nil {
		resp.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}

	return resp
}
