package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// LimitedClient throttles generation and embedding calls of a wrapped client.
type LimitedClient struct {
	client   Client
	embedder Embedder
	limiter  *rate.Limiter
}

// NewLimitedClient wraps client with a token bucket allowing requestsPerMinute calls.
// If client also implements Embedder, embedding calls share the same bucket.
func NewLimitedClient(client Client, requestsPerMinute int) *LimitedClient {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
	}
	lc := &LimitedClient{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
	}
	if e, ok := client.(Embedder); ok {
		lc.embedder = e
	}
	return lc
}

// GenerateContent waits for a token then delegates.
func (c *LimitedClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	return c.client.GenerateContent(ctx, prompt, tier)
}

// GenerateJSON waits for a token then delegates.
func (c *LimitedClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	return c.client.GenerateJSON(ctx, prompt, tier)
}

// Embed waits for a token then delegates. It fails if the wrapped client cannot embed.
func (c *LimitedClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if c.embedder == nil {
		return nil, fmt.Errorf("wrapped client does not support embeddings")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return c.embedder.Embed(ctx, texts)
}

// GetModel delegates to the wrapped client.
func (c *LimitedClient) GetModel(tier ModelTier) string {
	return c.client.GetModel(tier)
}

// Close delegates to the wrapped client.
func (c *LimitedClient) Close() error {
	return c.client.Close()
}
