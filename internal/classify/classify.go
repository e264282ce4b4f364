// Package classify produces answer recommendations for multiple choice poll
// questions. The only production implementation calls the Gemini API with a
// Gemma instruction-tuned model; the boundary contract is that any service,
// network, or schema failure surfaces as an error and never as a guessable
// Classification.
package classify

// Tier is the classifier's self-reported certainty in its recommendation.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Classification is one recommendation for one question. OptionIndex is
// 0-based and always a valid index into the question's option list; a
// classifier that cannot guarantee that returns an error instead.
type Classification struct {
	OptionIndex  int
	Tier         Tier
	QuestionType string // factual, subjective, requires_context
	Reasoning    string
	Explanation  string
	Raw          string // raw model output, for logging
}
