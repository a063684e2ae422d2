package generation

import (
	"context"
	"log/slog"
	"time"

	"github.com/yanqian/astroml/internal/infra/llm/messages"
	"github.com/yanqian/astroml/pkg/metrics"
)

// Fallback texts shown when the generator cannot produce a reading.
const (
	NatalFallback = "The celestial algorithms are currently realigning. Please try again."
	DailyFallback = "The daily celestial patterns are currently realigning. Please try again."
)

// MessageClient is the remote generation endpoint.
type MessageClient interface {
	CreateMessage(ctx context.Context, req messages.Request) (messages.Response, error)
}

// Config wires runtime settings for generation calls.
type Config struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Result is the settled outcome of one generation call.
type Result struct {
	Text     string
	Fallback bool
	Usage    metrics.TokenUsage
	Duration time.Duration
}

// Client turns prompts into narrative text. It never returns an error:
// every failure settles to the caller-supplied fallback text.
type Client struct {
	cfg    Config
	client MessageClient
	logger *slog.Logger
}

// NewClient is a wire provider for the generation boundary.
func NewClient(cfg Config, client MessageClient, logger *slog.Logger) *Client {
	return &Client{cfg: cfg, client: client, logger: logger.With("component", "generation.client")}
}

// Generate issues a single request for prompt. Failures, timeouts and
// cancellations yield fallback.
func (c *Client) Generate(ctx context.Context, prompt, fallback string) Result {
	start := time.Now()
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	resp, err := c.client.CreateMessage(ctx, messages.Request{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages:  []messages.Message{{Role: "user", Content: prompt}},
	})
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error("generation failed, using fallback", "error", err, "latency_ms", elapsed.Milliseconds())
		return Result{Text: fallback, Fallback: true, Duration: elapsed}
	}

	res := Result{Text: resp.Text(), Duration: elapsed}
	if resp.Usage != nil {
		res.Usage = metrics.TokenUsage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens}
	}
	c.logger.Info("generation completed",
		"latency_ms", elapsed.Milliseconds(),
		"chars", len(res.Text),
		"input_tokens", res.Usage.InputTokens,
		"output_tokens", res.Usage.OutputTokens,
	)
	return res
}
