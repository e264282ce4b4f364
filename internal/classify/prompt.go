package classify

import (
	"fmt"
	"strings"
)

// buildPrompt renders the strictly structured prompt. The model must always
// pick an option; the confidence rules push anything context-dependent or
// subjective down to "low" so it escalates instead of being auto-submitted.
func buildPrompt(question string, options []string) string {
	var list strings.Builder
	for i, opt := range options {
		fmt.Fprintf(&list, "  %d. %s\n", i+1, opt)
	}

	return fmt.Sprintf(`You are an AI assistant answering a multiple choice poll question.

QUESTION: %s

OPTIONS:
%s
INSTRUCTIONS:
Analyze the question and provide a structured JSON response. You MUST ALWAYS provide your best answer (integer 1-%d), even if the question is subjective or requires outside knowledge.

CONFIDENCE RULES (STRICT):
- "high": The question is completely self-contained, objective, and you are >95%% sure of the answer.
- "medium": The question is self-contained but might have minor ambiguity, or you are >70%% sure.
- "low": The question requires external context (e.g. "shown on the board", "this diagram", "previous slide", "what did the speaker say"), OR is highly subjective, OR you are guessing.
- IMPORTANT: If a question asks about "the correct node", "this code", or "the image", and no code/image is provided, you MUST set confidence to "low".

RESPONSE FORMAT (respond with ONLY this JSON, no other text):
{
  "analysis": {
    "question_type": "factual" | "subjective" | "requires_context",
    "reasoning": "<your step-by-step reasoning>"
  },
  "answer": {
    "best_option": <integer 1-%d>,
    "confidence": "high" | "medium" | "low",
    "explanation": "<why this is the best answer>"
  }
}

EXAMPLE for "What is 2+2?" with options ["3", "4", "5", "6"]:
{
  "analysis": {
    "question_type": "factual",
    "reasoning": "This is a basic arithmetic question. 2+2=4."
  },
  "answer": {
    "best_option": 2,
    "confidence": "high",
    "explanation": "4 is the mathematically correct answer"
  }
}

EXAMPLE for "What is the correct node?" (with no diagram):
{
  "analysis": {
    "question_type": "requires_context",
    "reasoning": "The question refers to 'the correct node' but no graph or diagram is provided."
  },
  "answer": {
    "best_option": 1,
    "confidence": "low",
    "explanation": "Guessing Option 1 because context is missing."
  }
}

Now respond with ONLY the JSON for the given question:`, question, list.String(), len(options), len(options))
}
