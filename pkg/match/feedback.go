package match

import (
	"fmt"
	"strings"

	"github.com/monishmahesha2006/resume-relevance-system/internal/models"
)

// composeFeedback renders strengths, improvement areas and a one-paragraph
// summary from the evidence. Entirely template driven so the output is
// byte-identical across runs; any LLM polish happens outside the engine.
func composeFeedback(ev models.MatchEvidence, analysis models.ExperienceAnalysis, verdict models.Verdict) (strengths, improvements []string, feedback string) {
	if len(ev.MatchedSkills) > 0 {
		strengths = append(strengths, fmt.Sprintf("Strong technical skills: %s", strings.Join(topN(ev.MatchedSkills, 3), ", ")))
	}
	if len(ev.MatchedEducation) > 0 {
		strengths = append(strengths, fmt.Sprintf("Relevant education: %s", strings.Join(topN(ev.MatchedEducation, 2), ", ")))
	}
	if analysis.RequiredMonths > 0 && analysis.MeetsRequirement {
		strengths = append(strengths, fmt.Sprintf("Meets the %d months experience requirement", analysis.RequiredMonths))
	}

	if len(ev.MissingSkills) > 0 {
		improvements = append(improvements, fmt.Sprintf("Develop missing skills: %s", strings.Join(topN(ev.MissingSkills, 3), ", ")))
	}
	if len(ev.MissingEducation) > 0 {
		improvements = append(improvements, fmt.Sprintf("Consider highlighting relevant education: %s", strings.Join(ev.MissingEducation, ", ")))
	}
	if !analysis.MeetsRequirement {
		improvements = append(improvements, fmt.Sprintf("Missing %d months of required experience", -analysis.DeltaMonths))
	}

	feedback = composeSummary(verdict, improvements)
	return strengths, improvements, feedback
}

func composeSummary(verdict models.Verdict, improvements []string) string {
	var parts []string

	switch verdict {
	case models.VerdictHigh:
		parts = append(parts, "Strong match! Consider highlighting your most relevant achievements")
	case models.VerdictMedium:
		parts = append(parts, "Good match overall, but there's room for improvement in specific areas")
	default:
		parts = append(parts, "Focus on aligning your skills and experience more closely with the job requirements")
	}

	parts = append(parts, topN(improvements, 3)...)

	return strings.Join(parts, ". ") + "."
}

func topN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
