package classify

import (
	"encoding/json"
	"fmt"
	"strings"
)

// responseSchema is the exact shape the model is instructed to emit.
// Unknown fields are rejected so drifting model output fails loudly at the
// boundary instead of being half-read.
type responseSchema struct {
	Analysis struct {
		QuestionType string `json:"question_type"`
		Reasoning    string `json:"reasoning"`
	} `json:"analysis"`
	Answer struct {
		BestOption  int    `json:"best_option"`
		Confidence  string `json:"confidence"`
		Explanation string `json:"explanation"`
	} `json:"answer"`
}

// parseResponse validates the model output against the response schema and
// converts it to a Classification. The returned OptionIndex is 0-based.
func parseResponse(raw string, optionCount int) (Classification, error) {
	jsonStr, err := extractJSON(raw)
	if err != nil {
		return Classification{}, fmt.Errorf("classifier response: %w", err)
	}

	dec := json.NewDecoder(strings.NewReader(jsonStr))
	dec.DisallowUnknownFields()
	var resp responseSchema
	if err := dec.Decode(&resp); err != nil {
		return Classification{}, fmt.Errorf("classifier response does not match schema: %w", err)
	}

	if resp.Answer.BestOption < 1 || resp.Answer.BestOption > optionCount {
		return Classification{}, fmt.Errorf("classifier picked option %d, want 1-%d", resp.Answer.BestOption, optionCount)
	}

	tier := Tier(resp.Answer.Confidence)
	switch tier {
	case TierHigh, TierMedium, TierLow:
	default:
		return Classification{}, fmt.Errorf("classifier confidence %q is not high/medium/low", resp.Answer.Confidence)
	}

	return Classification{
		OptionIndex:  resp.Answer.BestOption - 1,
		Tier:         tier,
		QuestionType: resp.Analysis.QuestionType,
		Reasoning:    resp.Analysis.Reasoning,
		Explanation:  resp.Answer.Explanation,
		Raw:          raw,
	}, nil
}

// extractJSON returns the outermost balanced JSON object in raw. Models
// occasionally wrap the JSON in prose or markdown fences despite the prompt.
func extractJSON(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	if start == -1 {
		return "", fmt.Errorf("no JSON object found")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON object")
}
