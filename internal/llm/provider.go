package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Provider is one generative-model backend. Implementations never fail at
// construction on missing credentials; they report unavailable instead so
// the process can start degraded.
type Provider interface {
	// Name identifies the provider in notices, logs and persistence.
	Name() string

	// Model returns the configured model identifier.
	Model() string

	// Available reports whether the provider is configured and usable.
	Available() bool

	// Complete sends a system instruction plus user prompt and returns the
	// raw completion text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, *Usage, error)

	// CompleteJSON completes and unmarshals the response into result,
	// stripping code fences first. Parse failure is an error; callers
	// treat it identically to provider unavailability.
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, result interface{}) (*Usage, error)
}

// Usage contains token usage information
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Cache for model responses
type Cache struct {
	data map[string]cacheEntry
	mu   sync.RWMutex
}

type cacheEntry struct {
	response  []byte
	expiresAt time.Time
}

// NewCache creates a new cache
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]cacheEntry),
	}
}

// Get retrieves from cache
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.response, true
}

// Set stores in cache
func (c *Cache) Set(key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = cacheEntry{
		response:  value,
		expiresAt: time.Now().Add(ttl),
	}
}

func cacheKey(model, systemPrompt, userPrompt string) string {
	sum := sha256.Sum256([]byte(systemPrompt + "|" + userPrompt))
	return model + "_" + hex.EncodeToString(sum[:16])
}

// completeJSON is the shared complete-then-parse loop. A transient
// completion error retries with linear backoff; an unparseable response
// retries without sleeping since the prompt is the problem, not the wire.
func completeJSON(ctx context.Context, complete func(context.Context, string, string) (string, *Usage, error),
	systemPrompt, userPrompt string, result interface{}) (*Usage, error) {

	jsonSystemPrompt := systemPrompt + "\n\nIMPORTANT: Return ONLY valid JSON. No markdown, no code blocks, no explanations."

	var lastErr error
	var totalUsage Usage

	for attempt := 0; attempt < 3; attempt++ {
		if err := ctx.Err(); err != nil {
			return &totalUsage, err
		}

		text, usage, err := complete(ctx, jsonSystemPrompt, userPrompt)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * time.Second)
			continue
		}

		if usage != nil {
			totalUsage.InputTokens += usage.InputTokens
			totalUsage.OutputTokens += usage.OutputTokens
		}

		jsonStr := extractJSON(text)
		if jsonStr == "" {
			lastErr = fmt.Errorf("no JSON found in response")
			continue
		}

		if err := json.Unmarshal([]byte(jsonStr), result); err != nil {
			lastErr = fmt.Errorf("invalid JSON: %w", err)
			continue
		}

		return &totalUsage, nil
	}

	return &totalUsage, fmt.Errorf("failed after 3 attempts: %w", lastErr)
}

// extractJSON extracts JSON from a string that might contain markdown or other text
func extractJSON(text string) string {
	// First, try to find JSON in code blocks
	codeBlockPattern := regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
	matches := codeBlockPattern.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// Try to find JSON object or array directly
	text = strings.TrimSpace(text)

	// Find the first { or [
	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")

	start := -1
	isArray := false

	if startObj >= 0 && (startArr < 0 || startObj < startArr) {
		start = startObj
	} else if startArr >= 0 {
		start = startArr
		isArray = true
	}

	if start < 0 {
		return ""
	}

	// Find matching closing bracket
	text = text[start:]
	depth := 0
	inString := false
	escaped := false

	openBracket := byte('{')
	closeBracket := byte('}')
	if isArray {
		openBracket = '['
		closeBracket = ']'
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			continue
		}

		if c == '\\' && inString {
			escaped = true
			continue
		}

		if c == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if c == openBracket {
			depth++
		} else if c == closeBracket {
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}

	return ""
}
