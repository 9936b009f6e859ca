package config

import (
	"fmt"
	"math"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

const weightTolerance = 1e-9

var knownVerdicts = map[string]bool{
	"High":   true,
	"Medium": true,
	"Low":    true,
	"Poor":   true,
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError
	m := c.Matching

	if sum := m.HardWeight + m.SoftWeight; math.Abs(sum-1.0) > weightTolerance {
		errors = append(errors, ValidationError{
			Field:   "matching.hard_weight",
			Message: fmt.Sprintf("hard_weight and soft_weight must sum to 1.0, got %g", sum),
		})
	}

	if sum := m.SkillsWeight + m.EducationWeight + m.ExperienceWeight + m.KeywordsWeight; math.Abs(sum-1.0) > weightTolerance {
		errors = append(errors, ValidationError{
			Field:   "matching.skills_weight",
			Message: fmt.Sprintf("hard match component weights must sum to 1.0, got %g", sum),
		})
	}

	if sum := m.OverallWeight + m.SectionWeight; math.Abs(sum-1.0) > weightTolerance {
		errors = append(errors, ValidationError{
			Field:   "matching.overall_weight",
			Message: fmt.Sprintf("overall_weight and section_weight must sum to 1.0, got %g", sum),
		})
	}

	if m.FuzzyThreshold < 0 || m.FuzzyThreshold > 1 {
		errors = append(errors, ValidationError{
			Field:   "matching.fuzzy_threshold",
			Message: "fuzzy_threshold must be between 0 and 1",
		})
	}

	for i, band := range m.Verdicts {
		if !knownVerdicts[band.Label] {
			errors = append(errors, ValidationError{
				Field:   "matching.verdicts",
				Message: fmt.Sprintf("unknown verdict label %q", band.Label),
			})
		}
		if band.Min < 0 || band.Min > 1 {
			errors = append(errors, ValidationError{
				Field:   "matching.verdicts",
				Message: fmt.Sprintf("band %q cut point must be between 0 and 1", band.Label),
			})
		}
		if i > 0 && band.Min >= m.Verdicts[i-1].Min {
			errors = append(errors, ValidationError{
				Field:   "matching.verdicts",
				Message: "verdict bands must be in strictly descending order",
			})
		}
	}
	if n := len(m.Verdicts); n > 0 && m.Verdicts[n-1].Min != 0 {
		errors = append(errors, ValidationError{
			Field:   "matching.verdicts",
			Message: "last verdict band must start at 0 so the bands are exhaustive",
		})
	}

	if c.Database.URL != "" {
		if _, err := url.Parse(c.Database.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}
	if c.Database.VectorDim < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.vector_dim",
			Message: "vector_dim must be positive",
		})
	}

	if c.Batch.Workers < 1 {
		errors = append(errors, ValidationError{
			Field:   "batch.workers",
			Message: "workers must be positive",
		})
	}
	if c.Batch.RematchPolicy != "skip-unchanged" && c.Batch.RematchPolicy != "always" {
		errors = append(errors, ValidationError{
			Field:   "batch.rematch_policy",
			Message: "rematch_policy must be \"skip-unchanged\" or \"always\"",
		})
	}

	if c.Ingest.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "ingest.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if _, err := url.Parse(c.LLM.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "invalid Ollama base URL",
		})
	}

	return errors
}
