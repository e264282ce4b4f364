package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pollnerd/internal/classify"
)

// classifyCmd runs one classification outside the monitor loop, mostly for
// checking the API key and eyeballing model behavior.
var classifyCmd = &cobra.Command{
	Use:   "classify [question] [option]...",
	Short: "Classify a single question against its options",
	Long: `Sends one question through the answer classifier and prints the
recommendation, confidence tier, and reasoning.

Example:
  pollnerd classify "What is the capital of France?" "London" "Paris" "Berlin"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key not configured (set GEMINI_API_KEY)")
	}

	classifier, err := classify.NewGemmaClassifier(cmd.Context(), classify.Options{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.GetTimeout(),
	}, logger)
	if err != nil {
		return err
	}

	question, options := args[0], args[1:]
	result, err := classifier.Classify(cmd.Context(), question, options)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	fmt.Printf("Question:   %s\n", question)
	fmt.Printf("Answer:     %d. %s\n", result.OptionIndex+1, options[result.OptionIndex])
	fmt.Printf("Confidence: %s\n", result.Tier)
	if result.QuestionType != "" {
		fmt.Printf("Type:       %s\n", result.QuestionType)
	}
	if result.Reasoning != "" {
		fmt.Printf("Reasoning:  %s\n", result.Reasoning)
	}
	return nil
}
