package scoring

// The weights in this file are business tuning, not derived from data.
// They live here as a table precisely so they can be revised without
// touching the scoring logic.

// Rule adds deltas when a question was answered with a given option.
// TreatmentWeights accumulate toward the recommended treatment.
type Rule struct {
	Question         string
	Answer           string
	MatchDelta       int
	UrgencyDelta     int
	ConversionDelta  float64
	TreatmentWeights map[string]int
}

// Ruleset is one complete scoring configuration: base scores, additive
// rules, caps, and the treatment catalogue. Treatment ties break by
// declaration order in Treatments (first listed wins).
type Ruleset struct {
	RequiredQuestions []string

	BaseMatch      int
	BaseUrgency    int
	BaseConversion float64

	MatchCap      int
	UrgencyCap    int
	ConversionCap float64

	Rules      []Rule
	Treatments []string
}

// DefaultRuleset scores the body-contouring qualification questionnaire.
func DefaultRuleset() *Ruleset {
	return &Ruleset{
		RequiredQuestions: []string{"method", "skinFeel", "timeline", "commitment"},

		BaseMatch:      50,
		BaseUrgency:    20,
		BaseConversion: 0.10,

		MatchCap:      95,
		UrgencyCap:    90,
		ConversionCap: 0.95,

		Treatments: []string{
			"Skin Tightening",
			"Fat Freezing",
			"Body Sculpting",
			"Muscle Toning",
		},

		Rules: []Rule{
			// How the weight was (or is being) lost.
			{Question: "method", Answer: "ozempic", MatchDelta: 25, UrgencyDelta: 20, ConversionDelta: 0.30,
				TreatmentWeights: map[string]int{"Skin Tightening": 30}},
			{Question: "method", Answer: "diet_exercise", MatchDelta: 15, UrgencyDelta: 5, ConversionDelta: 0.15,
				TreatmentWeights: map[string]int{"Body Sculpting": 20, "Muscle Toning": 10}},
			{Question: "method", Answer: "surgery", MatchDelta: 10, UrgencyDelta: 10, ConversionDelta: 0.10,
				TreatmentWeights: map[string]int{"Skin Tightening": 20}},
			{Question: "method", Answer: "none", MatchDelta: -10, ConversionDelta: 0.05,
				TreatmentWeights: map[string]int{"Fat Freezing": 20}},

			// How the skin feels after the loss.
			{Question: "skinFeel", Answer: "loose", MatchDelta: 20, UrgencyDelta: 10, ConversionDelta: 0.20,
				TreatmentWeights: map[string]int{"Skin Tightening": 40}},
			{Question: "skinFeel", Answer: "uneven", MatchDelta: 15, ConversionDelta: 0.10,
				TreatmentWeights: map[string]int{"Body Sculpting": 30}},
			{Question: "skinFeel", Answer: "tight", MatchDelta: 5, ConversionDelta: 0.05,
				TreatmentWeights: map[string]int{"Muscle Toning": 25, "Fat Freezing": 15}},

			// How soon they want to start.
			{Question: "timeline", Answer: "asap", MatchDelta: 10, UrgencyDelta: 40, ConversionDelta: 0.15},
			{Question: "timeline", Answer: "month", MatchDelta: 5, UrgencyDelta: 20, ConversionDelta: 0.10},
			{Question: "timeline", Answer: "exploring", UrgencyDelta: -10, ConversionDelta: 0.02},

			// Stated commitment level.
			{Question: "commitment", Answer: "ready", MatchDelta: 15, UrgencyDelta: 25, ConversionDelta: 0.25},
			{Question: "commitment", Answer: "considering", MatchDelta: 5, UrgencyDelta: 5, ConversionDelta: 0.10},
			{Question: "commitment", Answer: "researching", MatchDelta: -5, ConversionDelta: 0.03},

			// Optional: target area refines the treatment, not the scores.
			{Question: "area", Answer: "stomach",
				TreatmentWeights: map[string]int{"Fat Freezing": 15, "Skin Tightening": 10}},
			{Question: "area", Answer: "arms",
				TreatmentWeights: map[string]int{"Skin Tightening": 15}},
			{Question: "area", Answer: "thighs",
				TreatmentWeights: map[string]int{"Body Sculpting": 15}},
		},
	}
}
