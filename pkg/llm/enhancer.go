package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/monishmahesha2006/resume-relevance-system/internal/models"
)

// EnhancerConfig configures the optional feedback polisher.
type EnhancerConfig struct {
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
}

// Enhancer rewrites the engine's deterministic feedback into a friendlier
// narrative using a chat model. It is a strictly optional post-processing
// step: callers keep the original feedback whenever Enhance returns an
// error, so the engine stays fully testable without an LLM available.
type Enhancer struct {
	config EnhancerConfig
	llm    llms.Model
}

const enhancerSystemPrompt = "You are a career counselor providing constructive feedback on resume-job matching. Rewrite the analysis below into 2-3 specific, actionable suggestions. Keep every fact from the analysis; do not invent skills or scores."

func NewEnhancerWithConfig(config EnhancerConfig) (*Enhancer, error) {
	if config.Model == "" {
		config.Model = "mistral"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 300
	}
	if config.Temperature <= 0 || config.Temperature > 1 {
		return nil, fmt.Errorf("temperature must be between 0 and 1")
	}

	model, err := ollama.New(
		ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &Enhancer{
		config: config,
		llm:    model,
	}, nil
}

// Enhance returns a polished version of result.Feedback.
func (e *Enhancer) Enhance(ctx context.Context, result *models.MatchResult) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, enhancerSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, buildEnhancerPrompt(result)),
	}

	response, err := e.llm.GenerateContent(ctx, content,
		llms.WithMaxTokens(e.config.MaxTokens),
		llms.WithTemperature(e.config.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("feedback enhancement error: %w", err)
	}
	if len(response.Choices) == 0 || strings.TrimSpace(response.Choices[0].Content) == "" {
		return "", fmt.Errorf("feedback enhancement returned no content")
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}

func buildEnhancerPrompt(result *models.MatchResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Match score: %.0f%% (%s)\n", result.RelevanceScore*100, result.Verdict)
	if len(result.MissingSkills) > 0 {
		fmt.Fprintf(&b, "Missing skills: %s\n", strings.Join(result.MissingSkills, ", "))
	}
	if len(result.MissingEducation) > 0 {
		fmt.Fprintf(&b, "Missing education: %s\n", strings.Join(result.MissingEducation, ", "))
	}
	if !result.Experience.MeetsRequirement {
		fmt.Fprintf(&b, "Experience shortfall: %d months\n", -result.Experience.DeltaMonths)
	}
	fmt.Fprintf(&b, "Analysis: %s\n", result.Feedback)

	return b.String()
}
