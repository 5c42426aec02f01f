package scoring

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/domain"
)

// Scorer applies a weighted ruleset to qualification answers. Pure and
// deterministic: identical answers always produce identical results, and
// no rule combination can push a score outside its declared bounds.
type Scorer struct {
	ruleset *Ruleset
	logger  *zap.Logger
}

// NewScorer creates a scorer over the given ruleset.
func NewScorer(ruleset *Ruleset, logger *zap.Logger) *Scorer {
	return &Scorer{
		ruleset: ruleset,
		logger:  logger.Named("scoring"),
	}
}

// Score validates the answers and applies the ruleset additively.
// Missing required questions are a validation error, never defaulted.
func (s *Scorer) Score(answers domain.QualificationAnswers) (*domain.ScoreResult, error) {
	for _, q := range s.ruleset.RequiredQuestions {
		if answers[q] == "" {
			return nil, domain.ValidationError(q, fmt.Sprintf("missing required answer: %s", q))
		}
	}

	match := s.ruleset.BaseMatch
	urgency := s.ruleset.BaseUrgency
	conversion := s.ruleset.BaseConversion
	treatmentWeights := make(map[string]int, len(s.ruleset.Treatments))

	for _, rule := range s.ruleset.Rules {
		if answers[rule.Question] != rule.Answer {
			continue
		}
		match += rule.MatchDelta
		urgency += rule.UrgencyDelta
		conversion += rule.ConversionDelta
		for treatment, w := range rule.TreatmentWeights {
			treatmentWeights[treatment] += w
		}
	}

	result := &domain.ScoreResult{
		MatchScore:            clampInt(match, 0, s.ruleset.MatchCap),
		UrgencyScore:          clampInt(urgency, 0, s.ruleset.UrgencyCap),
		ConversionProbability: clampFloat(conversion, 0, s.ruleset.ConversionCap),
		RecommendedTreatment:  s.recommendTreatment(treatmentWeights),
	}

	s.logger.Debug("scored assessment",
		zap.Int("match", result.MatchScore),
		zap.Int("urgency", result.UrgencyScore),
		zap.Float64("conversion", result.ConversionProbability),
		zap.String("treatment", result.RecommendedTreatment))

	return result, nil
}

// recommendTreatment picks the highest-weighted treatment. Ties break by
// declaration order in the ruleset, so iteration runs over the declared
// list, never the map.
func (s *Scorer) recommendTreatment(weights map[string]int) string {
	if len(s.ruleset.Treatments) == 0 {
		return ""
	}
	best := s.ruleset.Treatments[0]
	bestWeight := weights[best]
	for _, treatment := range s.ruleset.Treatments[1:] {
		if weights[treatment] > bestWeight {
			best = treatment
			bestWeight = weights[treatment]
		}
	}
	return best
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
