package offer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/domain"
	"github.com/offerpilot/offerpilot/internal/resilience"
)

// TemplateStrategyName is the reserved strategy name for the deterministic
// terminal fallback.
const TemplateStrategyName = "template"

// DefaultAttemptTimeout bounds a single provider attempt.
const DefaultAttemptTimeout = 45 * time.Second

// Result is a finished synthesis with its provenance. AIPowered and Notice
// exist so callers can tell a model-generated offer from a template one;
// that distinction affects how much the content should be trusted.
type Result struct {
	Offer     *domain.GeneratedOffer `json:"offer"`
	ModelUsed string                 `json:"model_used"`
	AIPowered bool                   `json:"ai_powered"`
	Notice    string                 `json:"notice,omitempty"`
}

// Strategy is one link of the fallback chain.
type Strategy interface {
	Name() string
	AIPowered() bool
	Attempt(ctx context.Context, intel *domain.CompetitorIntelligence, style Style) (*domain.GeneratedOffer, string, error)
}

// modelStrategy wraps a model synthesizer with a circuit breaker and a
// per-attempt timeout.
type modelStrategy struct {
	synth   *ModelSynthesizer
	breaker *resilience.CircuitBreaker
	timeout time.Duration
}

// NewModelStrategy creates a breaker-guarded model strategy.
func NewModelStrategy(synth *ModelSynthesizer, breaker *resilience.CircuitBreaker, timeout time.Duration) Strategy {
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}
	return &modelStrategy{synth: synth, breaker: breaker, timeout: timeout}
}

func (s *modelStrategy) Name() string    { return s.synth.Provider().Name() }
func (s *modelStrategy) AIPowered() bool { return true }

func (s *modelStrategy) Attempt(ctx context.Context, intel *domain.CompetitorIntelligence, style Style) (*domain.GeneratedOffer, string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var out *domain.GeneratedOffer
	err := s.breaker.Execute(attemptCtx, func(ctx context.Context) error {
		var synthErr error
		out, synthErr = s.synth.Synthesize(ctx, intel, style)
		return synthErr
	})
	if err != nil {
		return nil, "", err
	}
	return out, s.synth.Provider().Model(), nil
}

// templateStrategy is the terminal link: deterministic, cannot fail.
type templateStrategy struct {
	synth *TemplateSynthesizer
}

// NewTemplateStrategy creates the deterministic terminal strategy.
func NewTemplateStrategy(synth *TemplateSynthesizer) Strategy {
	return &templateStrategy{synth: synth}
}

func (s *templateStrategy) Name() string    { return TemplateStrategyName }
func (s *templateStrategy) AIPowered() bool { return false }

func (s *templateStrategy) Attempt(_ context.Context, intel *domain.CompetitorIntelligence, style Style) (*domain.GeneratedOffer, string, error) {
	return s.synth.Synthesize(intel, style), TemplateStrategyName, nil
}

// Chain iterates strategies strictly in priority order, short-circuiting on
// the first success. There is no racing: the fallback decision depends on
// the prior attempt's outcome.
type Chain struct {
	strategies []Strategy
	logger     *zap.Logger
	observer   func(strategy string, err error)
}

// NewChain creates a fallback chain from strategies in priority order.
// The last strategy should be the deterministic template one so auto mode
// can always produce an offer.
func NewChain(logger *zap.Logger, strategies ...Strategy) *Chain {
	return &Chain{
		strategies: strategies,
		logger:     logger.Named("offer.chain"),
	}
}

// SetObserver registers a callback fired once per strategy attempt, used
// for metrics. Must be set before the chain serves requests.
func (c *Chain) SetObserver(fn func(strategy string, err error)) {
	c.observer = fn
}

func (c *Chain) observe(strategy string, err error) {
	if c.observer != nil {
		c.observer(strategy, err)
	}
}

// Synthesize runs the chain. A non-empty pinned name restricts the run to
// that single strategy: its failure surfaces as a hard provider error
// instead of degrading, because the caller asked for that provider
// specifically.
func (c *Chain) Synthesize(ctx context.Context, intel *domain.CompetitorIntelligence, style Style, pinned string) (*Result, error) {
	if pinned != "" {
		return c.attemptPinned(ctx, intel, style, pinned)
	}

	var failed []string
	for _, strategy := range c.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, model, err := strategy.Attempt(ctx, intel, style)
		c.observe(strategy.Name(), err)
		if err != nil {
			c.logger.Warn("strategy failed, falling through",
				zap.String("strategy", strategy.Name()),
				zap.Error(err))
			failed = append(failed, strategy.Name())
			continue
		}

		result := &Result{
			Offer:     out,
			ModelUsed: model,
			AIPowered: strategy.AIPowered(),
		}
		if !strategy.AIPowered() && len(failed) > 0 {
			result.Notice = fmt.Sprintf("AI providers unavailable (%s); offer generated from templates", strings.Join(failed, ", "))
		} else if !strategy.AIPowered() {
			result.Notice = "offer generated from templates"
		}
		return result, nil
	}

	return nil, domain.ErrProviderUnavailable("all", fmt.Errorf("every strategy failed: %s", strings.Join(failed, ", ")))
}

func (c *Chain) attemptPinned(ctx context.Context, intel *domain.CompetitorIntelligence, style Style, pinned string) (*Result, error) {
	for _, strategy := range c.strategies {
		if strategy.Name() != pinned {
			continue
		}
		out, model, err := strategy.Attempt(ctx, intel, style)
		c.observe(strategy.Name(), err)
		if err != nil {
			return nil, domain.ErrProviderUnavailable(pinned, err)
		}
		return &Result{
			Offer:     out,
			ModelUsed: model,
			AIPowered: strategy.AIPowered(),
		}, nil
	}
	return nil, domain.ErrValidation(fmt.Sprintf("unknown provider: %s", pinned))
}
