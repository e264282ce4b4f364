package classify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GemmaClassifier answers questions with a Gemma instruction-tuned model via
// the Gemini API. Gemma models do not support server-side response schemas,
// so the JSON contract is enforced by the prompt and validated in parse.go.
type GemmaClassifier struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// Options configure a GemmaClassifier.
type Options struct {
	APIKey  string
	Model   string // default gemma-3-27b-it
	Timeout time.Duration
}

// NewGemmaClassifier creates the classifier and its API client.
func NewGemmaClassifier(ctx context.Context, opts Options, logger *zap.Logger) (*GemmaClassifier, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if opts.Model == "" {
		opts.Model = "gemma-3-27b-it"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GemmaClassifier{
		client:  client,
		model:   opts.Model,
		timeout: opts.Timeout,
		logger:  logger.Named("classify"),
	}, nil
}

// Classify asks the model for a recommendation. Any API or schema failure is
// returned as an error; callers route errors to the human fallback path.
func (g *GemmaClassifier) Classify(ctx context.Context, question string, options []string) (Classification, error) {
	if len(options) == 0 {
		return Classification{}, fmt.Errorf("question has no options")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := buildPrompt(question, options)
	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return Classification{}, fmt.Errorf("generate content: %w", err)
	}

	raw := resp.Text()
	cls, err := parseResponse(raw, len(options))
	if err != nil {
		g.logger.Warn("unparseable model response",
			zap.String("model", g.model),
			zap.String("raw", raw),
			zap.Error(err))
		return Classification{}, err
	}

	g.logger.Debug("classified question",
		zap.String("model", g.model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("option", cls.OptionIndex),
		zap.String("confidence", string(cls.Tier)),
		zap.String("question_type", cls.QuestionType))

	return cls, nil
}
