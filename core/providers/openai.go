package providers

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// OpenAIProvider implements Provider for OpenAI's GPT models
type OpenAIProvider struct {
	client *openai.Client
	config OpenAIConfig
}

// Supported OpenAI models
var openaiModels = map[string]bool{
	"gpt-4o":      true,
	"gpt-4o-mini": true,
	"gpt-4.1":     true,
}

// NewOpenAIProvider creates a new OpenAI provider with the given configuration
func NewOpenAIProvider(config OpenAIConfig) (*OpenAIProvider, error) {
	if config.Model == "" {
		config.Model = DefaultOpenAIConfig().Model
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultOpenAIConfig().MaxTokens
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Organization != "" {
		opts = append(opts, option.WithHeader("OpenAI-Organization", config.Organization))
	}

	if config.Project != "" {
		opts = append(opts, option.WithHeader("OpenAI-Project", config.Project))
	}

	client := openai.NewClient(opts...)

	return &OpenAIProvider{
		client: &client,
		config: config,
	}, nil
}

// Name returns the provider identifier
func (p *OpenAIProvider) Name() string {
	return string(ProviderTypeOpenAI)
}

// Complete performs a non-streaming completion request
func (p *OpenAIProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	params := p.buildResponseParams(req)

	result, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai complete: %w", err)
	}

	return p.convertResponse(result), nil
}

// ValidateConfig checks if the provider configuration is valid
func (p *OpenAIProvider) ValidateConfig() error {
	return p.config.Validate()
}

// SupportsModel checks if the provider supports the given model
func (p *OpenAIProvider) SupportsModel(model string) bool {
	return openaiModels[model]
}

// DefaultModel returns the provider's default model
func (p *OpenAIProvider) DefaultModel() string {
	return p.config.Model
}

// Close cleans up any resources
func (p *OpenAIProvider) Close() error {
	return nil
}

// buildResponseParams constructs OpenAI API parameters from a Request
func (p *OpenAIProvider) buildResponseParams(req *Request) responses.ResponseNewParams {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}

	messages := p.convertResponseMessages(req.Messages, req.SystemPrompt)

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: messages,
		},
		MaxOutputTokens: openai.Int(int64(maxTokens)),
	}

	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	} else if p.config.Temperature > 0 {
		params.Temperature = openai.Float(p.config.Temperature)
	}

	if req.TopP != nil {
		params.TopP = openai.Float(*req.TopP)
	}

	return params
}

func (p *OpenAIProvider) convertResponseMessages(messages []Message, systemPrompt string) responses.ResponseInputParam {
	result := make(responses.ResponseInputParam, 0, len(messages)+1)

	if systemPrompt != "" {
		result = append(result, responses.ResponseInputItemParamOfMessage(systemPrompt, responses.EasyInputMessageRoleSystem))
	}

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			result = append(result, responses.ResponseInputItemParamOfMessage(msg.Content, responses.EasyInputMessageRoleSystem))
		case RoleUser:
			result = append(result, responses.ResponseInputItemParamOfMessage(msg.Content, responses.EasyInputMessageRoleUser))
		case RoleAssistant:
			result = append(result, responses.ResponseInputItemParamOfMessage(msg.Content, responses.EasyInputMessageRoleAssistant))
		}
	}

	return result
}

func (p *OpenAIProvider) convertResponse(result *responses.Response) *Response {
	if result == nil {
		return &Response{StopReason: StopReasonError}
	}

	return &Response{
		Content:    result.OutputText(),
		Model:      string(result.Model),
		StopReason: p.convertResponseStopReason(*result),
		Usage: Usage{
			InputTokens:  int(result.Usage.InputTokens),
			OutputTokens: int(result.Usage.OutputTokens),
			TotalTokens:  int(result.Usage.TotalTokens),
		},
	}
}

func (p *OpenAIProvider) convertResponseStopReason(result responses.Response) StopReason {
	if result.IncompleteDetails.Reason != "" {
		switch result.IncompleteDetails.Reason {
		case "max_output_tokens":
			return StopReasonMaxTokens
		case "content_filter":
			return StopReasonError
		default:
			return StopReasonEndTurn
		}
	}
	if result.Error.Message != "" {
		return StopReasonError
	}
	return StopReasonEndTurn
}
