package ai

import (
	"context"
	"strings"
	"time"

	"google.golang.org/genai"

	"gridiron/pkg/errors"
	"gridiron/pkg/logger"
)

// Ensure GeminiProvider implements ChatProvider
var _ ChatProvider = (*GeminiProvider)(nil)

// GeminiProvider implements chat completions using the official Google GenAI SDK
type GeminiProvider struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	limiter *Limiter
	log     *logger.Logger
}

// NewGeminiProvider creates a new Gemini chat provider
func NewGeminiProvider(apiKey string, model string, timeout time.Duration, limiter *Limiter) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "gemini API key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}

	return &GeminiProvider{
		client:  client,
		model:   model,
		timeout: timeout,
		limiter: limiter,
		log:     logger.Get().With("component", "gemini_chat", "model", model),
	}, nil
}

// Name returns provider name.
func (p *GeminiProvider) Name() ProviderName { return ProviderNameGemini }

// Chat sends a generate-content request to the Gemini API.
func (p *GeminiProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	model := req.Model
	if model == "" {
		model = p.model
	}

	// Gemini takes the system prompt as a separate instruction rather than
	// a message in the conversation.
	var system string
	var userParts []string
	for _, msg := range req.Messages {
		if msg.Role == RoleSystem {
			system = msg.Content
			continue
		}
		userParts = append(userParts, msg.Content)
	}

	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if req.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.ResponseSchema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = req.ResponseSchema
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(strings.Join(userParts, "\n")), cfg)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Wrap(errors.ErrTimeout, "gemini generate content")
		}
		return nil, errors.Wrap(err, "gemini API call failed")
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.Wrap(errors.ErrEmptyCompletion, "gemini returned no content")
	}

	finishReason := FinishReasonStop
	if len(resp.Candidates) > 0 {
		switch resp.Candidates[0].FinishReason {
		case genai.FinishReasonStop:
			finishReason = FinishReasonStop
		case genai.FinishReasonMaxTokens:
			finishReason = FinishReasonLength
		default:
			finishReason = FinishReasonOther
		}
	}

	out := &ChatResponse{
		ID:           resp.ResponseID,
		Model:        model,
		Content:      text,
		FinishReason: finishReason,
	}

	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	p.log.Debugw("Generate content received",
		"tokens", out.Usage.TotalTokens,
		"finish_reason", finishReason,
	)

	return out, nil
}
