package domain

import (
	"time"

	"github.com/google/uuid"
)

// QualificationAnswers maps question ids to the selected option key.
type QualificationAnswers map[string]string

// ScoreResult is the deterministic output of scoring an assessment.
// Scores are monotonically bounded: no rule combination may push them
// outside their declared ranges.
type ScoreResult struct {
	MatchScore            int     `json:"match_score"`             // [0,100]
	UrgencyScore          int     `json:"urgency_score"`           // [0, ruleset cap]
	ConversionProbability float64 `json:"conversion_probability"`  // [0,1]
	RecommendedTreatment  string  `json:"recommended_treatment"`
}

// AssessmentRecord is a persisted scored assessment keyed by lead id.
type AssessmentRecord struct {
	ID        uuid.UUID            `json:"id"`
	LeadID    string               `json:"lead_id"`
	Answers   QualificationAnswers `json:"answers"`
	Result    ScoreResult          `json:"result"`
	CreatedAt time.Time            `json:"created_at"`
}

// NewAssessmentRecord builds a persistable record for a scored assessment.
func NewAssessmentRecord(leadID string, answers QualificationAnswers, result ScoreResult) *AssessmentRecord {
	return &AssessmentRecord{
		ID:        uuid.New(),
		LeadID:    leadID,
		Answers:   answers,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}
}
