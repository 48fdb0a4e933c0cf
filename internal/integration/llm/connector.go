package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/interview-mentor/internal/config"
	"github.com/futig/interview-mentor/internal/entity"
	"github.com/futig/interview-mentor/internal/integration/common"
	pkghttp "github.com/futig/interview-mentor/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/futig/interview-mentor/internal/integration/llm"

var ErrEmptyCompletion = errors.New("language model returned an empty completion")

// Connector talks to an Azure OpenAI chat completions deployment.
// It never retries: every call may be billed by the provider.
type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	tokens    *TokenCounter
	tracer    trace.Tracer
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
	opts ...pkghttp.HttpOpts,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger,
			append([]pkghttp.HttpOpts{pkghttp.WithAPIKey(cfg.Token)}, opts...)...),
		config: cfg,
		tokens: NewTokenCounter(cfg.Model),
		tracer: otel.Tracer(tracerName),
		logger: logger,
	}
}

// CompleteText sends a single user prompt and returns the model reply
func (c *Connector) CompleteText(ctx context.Context, prompt string) (string, error) {
	messages := []entity.ChatMessage{
		{Role: entity.ChatRoleUser, Content: prompt},
	}

	return c.complete(ctx, "llm.complete_text", prompt, 0, messages)
}

// CompleteWithImage sends the prompt together with an encoded image
func (c *Connector) CompleteWithImage(ctx context.Context, prompt string, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("complete with image: empty image")
	}

	messages := []entity.ChatMessage{
		{
			Role: entity.ChatRoleUser,
			Content: []entity.ChatContentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &entity.ChatImageURL{URL: DataURL(image), Detail: "low"}},
			},
		},
	}

	return c.complete(ctx, "llm.complete_with_image", prompt, len(image), messages)
}

func (c *Connector) complete(
	ctx context.Context,
	spanName string,
	prompt string,
	imageSize int,
	messages []entity.ChatMessage,
) (string, error) {
	promptTokens := c.tokens.Count(prompt)

	ctx, span := c.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("llm.deployment", c.config.Deployment),
		attribute.Int("llm.prompt_tokens_estimate", promptTokens),
		attribute.Int("llm.image_size", imageSize),
	))
	defer span.End()

	ctxzap.Info(ctx, "requesting completion from LLM service",
		zap.String("operation", spanName),
		zap.Int("prompt_tokens_estimate", promptTokens),
		zap.Int("image_size", imageSize),
	)

	req := &entity.LLMChatRequest{
		Messages:  messages,
		MaxTokens: c.config.MaxTokens,
	}
	if c.config.Temperature > 0 {
		temperature := c.config.Temperature
		req.Temperature = &temperature
	}

	var resp entity.LLMChatResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.ChatEndpoint(), req, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return "", fmt.Errorf("%s failed: %w", spanName, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		span.SetStatus(codes.Error, "empty completion")
		return "", fmt.Errorf("%s: %w", spanName, ErrEmptyCompletion)
	}

	span.SetAttributes(
		attribute.Int("llm.usage.prompt_tokens", resp.Usage.PromptTokens),
		attribute.Int("llm.usage.completion_tokens", resp.Usage.CompletionTokens),
	)

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)

	ctxzap.Info(ctx, "completion received",
		zap.String("operation", spanName),
		zap.Int("reply_length", len(reply)),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return reply, nil
}

// DataURL encodes an image as a base64 data URL, sniffing its MIME type
func DataURL(image []byte) string {
	mime := http.DetectContentType(image)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)
}
