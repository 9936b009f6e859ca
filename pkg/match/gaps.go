package match

import (
	"github.com/monishmahesha2006/resume-relevance-system/internal/models"
)

// analyzeGaps turns hard match evidence into the persisted gap fields. Pure
// transformation; all the detection already happened in the hard matcher.
func analyzeGaps(ev models.MatchEvidence) ([]string, []string, models.ExperienceAnalysis) {
	missingSkills := append([]string{}, ev.MissingSkills...)
	missingEducation := append([]string{}, ev.MissingEducation...)

	analysis := models.ExperienceAnalysis{
		RequiredMonths:   ev.RequiredMonths,
		ActualMonths:     ev.ActualMonths,
		DeltaMonths:      ev.ActualMonths - ev.RequiredMonths,
		MeetsRequirement: ev.ActualMonths >= ev.RequiredMonths,
	}

	return missingSkills, missingEducation, analysis
}
