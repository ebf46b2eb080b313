package ai

import (
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"gridiron/pkg/errors"
	"gridiron/pkg/logger"
)

// Ensure OpenAIProvider implements ChatProvider
var _ ChatProvider = (*OpenAIProvider)(nil)

// OpenAIProvider implements chat completions using the official OpenAI Go SDK
type OpenAIProvider struct {
	client  openai.Client // NewClient returns Client (not *Client)
	model   string
	timeout time.Duration
	limiter *Limiter
	log     *logger.Logger
}

// NewOpenAIProvider creates a new OpenAI chat provider
func NewOpenAIProvider(apiKey string, model string, timeout time.Duration, limiter *Limiter) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "openai API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &OpenAIProvider{
		client:  client,
		model:   model,
		timeout: timeout,
		limiter: limiter,
		log:     logger.Get().With("component", "openai_chat", "model", model),
	}, nil
}

// Name returns provider name.
func (p *OpenAIProvider) Name() ProviderName { return ProviderNameOpenAI }

// Chat sends a chat completion request to the OpenAI API.
func (p *OpenAIProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	model := req.Model
	if model == "" {
		model = p.model
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(msg.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		}
	}

	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Wrap(errors.ErrTimeout, "openai chat completion")
		}
		return nil, errors.Wrap(err, "openai API call failed")
	}

	if len(resp.Choices) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyCompletion, "openai returned no choices")
	}

	choice := resp.Choices[0]

	finishReason := FinishReasonStop
	switch choice.FinishReason {
	case "length":
		finishReason = FinishReasonLength
	case "stop":
		finishReason = FinishReasonStop
	default:
		finishReason = FinishReasonOther
	}

	p.log.Debugw("Chat completion received",
		"tokens", resp.Usage.TotalTokens,
		"finish_reason", choice.FinishReason,
	)

	return &ChatResponse{
		ID:           resp.ID,
		Model:        resp.Model,
		Content:      choice.Message.Content,
		FinishReason: finishReason,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}
