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

// OpenAIProvider is the secondary model provider, used when the primary
// fails or is unconfigured. Same caching and rate-limiting discipline as
// the primary.
type OpenAIProvider struct {
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

// NewOpenAIProvider creates the provider. A missing API key does not fail
// construction; the provider reports unavailable instead.
func NewOpenAIProvider(cfg config.OpenAIConfig) *OpenAIProvider {
	return &OpenAIProvider{
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
func (p *OpenAIProvider) Name() string { return "openai" }

// Model implements Provider.
func (p *OpenAIProvider) Model() string { return p.model }

// Available implements Provider.
func (p *OpenAIProvider) Available() bool { return p.apiKey != "" }

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends a chat-completion request.
func (p *OpenAIProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, *Usage, error) {
	if !p.Available() {
		return "", nil, fmt.Errorf("openai: no API key configured")
	}

	key := cacheKey(p.model, systemPrompt, userPrompt)
	if cached, ok := p.cache.Get(key); ok {
		return string(cached), nil, nil
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return "", nil, fmt.Errorf("rate limit: %w", err)
	}

	req := openAIRequest{
		Model: p.model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   p.maxTokens,
		Temperature: 0.3,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

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

	var apiResp openAIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", nil, fmt.Errorf("parsing response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return "", nil, fmt.Errorf("empty response")
	}

	usage := &Usage{
		InputTokens:  apiResp.Usage.PromptTokens,
		OutputTokens: apiResp.Usage.CompletionTokens,
	}
	atomic.AddInt64(&p.tokensIn, int64(usage.InputTokens))
	atomic.AddInt64(&p.tokensOut, int64(usage.OutputTokens))

	text := apiResp.Choices[0].Message.Content
	p.cache.Set(key, []byte(text), p.cacheTTL)

	return text, usage, nil
}

// CompleteJSON completes and parses a JSON response.
func (p *OpenAIProvider) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, result interface{}) (*Usage, error) {
	return completeJSON(ctx, p.Complete, systemPrompt, userPrompt, result)
}

// TokenTotals returns cumulative token usage since process start.
func (p *OpenAIProvider) TokenTotals() (in, out int64) {
	return atomic.LoadInt64(&p.tokensIn), atomic.LoadInt64(&p.tokensOut)
}
