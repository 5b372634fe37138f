package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"
)

// openAIClient implements Client with the official SDK. SDK retries are
// disabled so each call is a single attempt, like the HTTP client.
type openAIClient struct {
	sdk        openai.Client
	httpClient *http.Client
	logger     *zap.Logger
}

func newOpenAIClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *openAIClient {
	sdk := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL+"/v1/"),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.UpstreamTimeout),
	)
	return &openAIClient{sdk: sdk, httpClient: httpClient, logger: logger}
}

func (o *openAIClient) ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	if err := checkRequest(req); err != nil {
		return nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(req.Model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(float64(req.Temperature))
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := o.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			var retryAfter time.Duration
			if apierr.StatusCode == http.StatusTooManyRequests && apierr.Response != nil {
				retryAfter = parseRetryAfter(apierr.Response.Header)
			}
			o.logger.Warn("llm provider error",
				zap.Int("status", apierr.StatusCode),
				zap.Duration("retry_after", retryAfter),
				zap.Error(err),
			)
			return nil, rejectedError(apierr.StatusCode, retryAfter, err)
		}
		if isTransportError(err) {
			o.logger.Warn("llm request failed",
				zap.Error(err),
				zap.Duration("duration", time.Since(start)),
			)
			return nil, transportError(err)
		}
		return nil, malformedError("sdk: %w", err)
	}

	if len(completion.Choices) == 0 {
		o.logger.Warn("llm provider returned no choices", zap.String("model", req.Model))
		return nil, malformedError("provider returned no choices")
	}

	out := &ChatResponse{
		ID:      completion.ID,
		Created: time.Unix(completion.Created, 0),
		Model:   completion.Model,
		Choices: make([]ChatChoice, 0, len(completion.Choices)),
		Usage: &Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}
	for _, ch := range completion.Choices {
		out.Choices = append(out.Choices, ChatChoice{
			Index:        int(ch.Index),
			Message:      ChatMessage{Role: RoleAssistant, Content: ch.Message.Content},
			FinishReason: string(ch.FinishReason),
		})
	}

	o.logger.Info("llm request completed",
		zap.String("model", out.Model),
		zap.Int("prompt_tokens", out.Usage.PromptTokens),
		zap.Int("completion_tokens", out.Usage.CompletionTokens),
		zap.Duration("duration", time.Since(start)),
	)

	return out, nil
}

func (o *openAIClient) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}
