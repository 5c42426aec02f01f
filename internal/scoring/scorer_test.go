package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/domain"
)

func newTestScorer() *Scorer {
	return NewScorer(DefaultRuleset(), zap.NewNop())
}

func TestScoreHighIntentAnswersHitConversionCap(t *testing.T) {
	s := newTestScorer()

	result, err := s.Score(domain.QualificationAnswers{
		"method":     "ozempic",
		"commitment": "ready",
		"skinFeel":   "loose",
		"timeline":   "asap",
	})
	require.NoError(t, err)

	// 0.10 base + 0.30 + 0.25 + 0.20 + 0.15 = 1.0, capped at 0.95 exactly.
	assert.Equal(t, 0.95, result.ConversionProbability)
	assert.Equal(t, 95, result.MatchScore)
	assert.Equal(t, "Skin Tightening", result.RecommendedTreatment)
}

func TestScoreDeterminism(t *testing.T) {
	s := newTestScorer()
	answers := domain.QualificationAnswers{
		"method":     "diet_exercise",
		"skinFeel":   "uneven",
		"timeline":   "month",
		"commitment": "considering",
	}

	first, err := s.Score(answers)
	require.NoError(t, err)
	second, err := s.Score(answers)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScoreBoundsAcrossAllCombinations(t *testing.T) {
	s := newTestScorer()

	methods := []string{"ozempic", "diet_exercise", "surgery", "none"}
	skins := []string{"loose", "uneven", "tight"}
	timelines := []string{"asap", "month", "exploring"}
	commitments := []string{"ready", "considering", "researching"}
	areas := []string{"", "stomach", "arms", "thighs"}

	for _, m := range methods {
		for _, sk := range skins {
			for _, tl := range timelines {
				for _, c := range commitments {
					for _, a := range areas {
						answers := domain.QualificationAnswers{
							"method": m, "skinFeel": sk, "timeline": tl, "commitment": c,
						}
						if a != "" {
							answers["area"] = a
						}

						result, err := s.Score(answers)
						require.NoError(t, err)

						assert.GreaterOrEqual(t, result.MatchScore, 0)
						assert.LessOrEqual(t, result.MatchScore, 100)
						assert.GreaterOrEqual(t, result.ConversionProbability, 0.0)
						assert.LessOrEqual(t, result.ConversionProbability, 1.0)
						assert.LessOrEqual(t, result.UrgencyScore, 90)
						assert.GreaterOrEqual(t, result.UrgencyScore, 0)
						assert.NotEmpty(t, result.RecommendedTreatment)
					}
				}
			}
		}
	}
}

func TestScoreMissingRequiredAnswer(t *testing.T) {
	s := newTestScorer()

	_, err := s.Score(domain.QualificationAnswers{
		"method":   "ozempic",
		"skinFeel": "loose",
		"timeline": "asap",
		// commitment missing
	})
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeValidation))
}

func TestScoreTreatmentTieBreaksByDeclarationOrder(t *testing.T) {
	ruleset := &Ruleset{
		RequiredQuestions: []string{"q"},
		BaseMatch:         50,
		MatchCap:          95,
		UrgencyCap:        90,
		ConversionCap:     0.95,
		Treatments:        []string{"First", "Second"},
		Rules: []Rule{
			{Question: "q", Answer: "tie", TreatmentWeights: map[string]int{"First": 10, "Second": 10}},
		},
	}
	s := NewScorer(ruleset, zap.NewNop())

	result, err := s.Score(domain.QualificationAnswers{"q": "tie"})
	require.NoError(t, err)
	assert.Equal(t, "First", result.RecommendedTreatment)
}

func TestScoreUnknownAnswerFiresNoRules(t *testing.T) {
	s := newTestScorer()

	result, err := s.Score(domain.QualificationAnswers{
		"method":     "teleportation",
		"skinFeel":   "loose",
		"timeline":   "asap",
		"commitment": "ready",
	})
	require.NoError(t, err)

	// Only the three matching rules fire: 0.10 + 0.20 + 0.15 + 0.25 = 0.70.
	assert.InDelta(t, 0.70, result.ConversionProbability, 1e-9)
}
