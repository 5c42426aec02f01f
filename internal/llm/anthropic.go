package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/offerpilot/offerpilot/internal/config"
)

// AnthropicProvider is the primary model provider. Requests are rate
// limited and responses are cached in process for the configured TTL.
type AnthropicProvider struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client

	rateLimiter *rate.Limiter
	cache       *Cache
	cacheTTL    time.Duration

	tokensIn  int64
	tokensOut int64
}

// NewAnthropicProvider creates the provider. A missing API key does not
// fail construction; the provider reports unavailable instead.
func NewAnthropicProvider(cfg config.AnthropicConfig) *AnthropicProvider {
	return &AnthropicProvider{
		apiKey:    cfg.APIKey,
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(float64(cfg.RateLimitRPM)/60.0), 1),
		cache:       NewCache(),
		cacheTTL:    cfg.CacheTTL,
	}
}

// Name implements Provider.
func (p *AnthropicProvider) Name() string { return "anthropic" }

// Model implements Provider.
func (p *AnthropicProvider) Model() string { return p.model }

// Available implements Provider.
func (p *AnthropicProvider) Available() bool { return p.apiKey != "" }

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID         string `json:"id"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete sends a completion request.
func (p *AnthropicProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, *Usage, error) {
	if !p.Available() {
		return "", nil, fmt.Errorf("anthropic: no API key configured")
	}

	key := cacheKey(p.model, systemPrompt, userPrompt)
	if cached, ok := p.cache.Get(key); ok {
		return string(cached), nil, nil
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return "", nil, fmt.Errorf("rate limit: %w", err)
	}

	req := anthropicRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System:    systemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.3,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", nil, fmt.Errorf("parsing response: %w", err)
	}
	if len(apiResp.Content) == 0 {
		return "", nil, fmt.Errorf("empty response")
	}

	usage := &Usage{
		InputTokens:  apiResp.Usage.InputTokens,
		OutputTokens: apiResp.Usage.OutputTokens,
	}
	atomic.AddInt64(&p.tokensIn, int64(usage.InputTokens))
	atomic.AddInt64(&p.tokensOut, int64(usage.OutputTokens))

	text := apiResp.Content[0].Text
	p.cache.Set(key, []byte(text), p.cacheTTL)

	return text, usage, nil
}

// CompleteJSON completes and parses a JSON response.
func (p *AnthropicProvider) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, result interface{}) (*Usage, error) {
	return completeJSON(ctx, p.Complete, systemPrompt, userPrompt, result)
}

// TokenTotals returns cumulative token usage since process start.
func (p *AnthropicProvider) TokenTotals() (in, out int64) {
	return atomic.LoadInt64(&p.tokensIn), atomic.LoadInt64(&p.tokensOut)
}
