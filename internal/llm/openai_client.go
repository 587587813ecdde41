package llm

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jengzang/riskdash-backend/internal/apperr"
	"github.com/jengzang/riskdash-backend/internal/config"
	"github.com/jengzang/riskdash-backend/internal/observability"
)

// OpenAIClient talks to any endpoint speaking the OpenAI chat-completion API
type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	tracer  trace.Tracer
}

// NewOpenAIClient configures the client from the llm settings
func NewOpenAIClient(cfg config.LLMConfig) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.Token)
	if cfg.Endpoint != "" {
		oc.BaseURL = cfg.Endpoint
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	if cfg.Token == "" {
		slog.Warn("LLM token not set, chat requests will likely be rejected", "endpoint", oc.BaseURL)
	}
	slog.Info("Initializing chat client", "endpoint", oc.BaseURL, "model", cfg.Model)

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		tracer:  otel.Tracer("github.com/jengzang/riskdash-backend/internal/llm"),
	}
}

// Complete sends a system and a user message. Any failure, including an
// empty choice list, is an UpstreamFailure.
func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := c.tracer.Start(ctx, "llm.Complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("llm.model", c.model)))
	defer span.End()

	creq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
	}
	if req.Temperature != nil {
		creq.Temperature = *req.Temperature
	}
	if req.TopP != nil {
		creq.TopP = *req.TopP
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		c.observe("error", start)
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat completion failed")
		slog.Error("Chat completion failed", "model", c.model, "error", err)
		return "", apperr.Wrap(apperr.UpstreamFailure, err, "chat completion failed")
	}

	if len(resp.Choices) == 0 {
		c.observe("empty", start)
		span.SetStatus(codes.Error, "no choices")
		slog.Warn("Chat completion returned no choices", "model", c.model)
		return "", apperr.New(apperr.UpstreamFailure, "chat completion returned no choices")
	}

	c.observe("success", start)
	span.SetAttributes(attribute.String("llm.finish_reason", string(resp.Choices[0].FinishReason)))
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) observe(outcome string, start time.Time) {
	observability.LLMCalls.WithLabelValues(outcome).Inc()
	observability.LLMDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
