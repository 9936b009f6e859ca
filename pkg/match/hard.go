package match

import (
	"sort"

	"github.com/monishmahesha2006/resume-relevance-system/internal/models"
)

// hardMatch scores the structured overlap between a resume and a job
// description: fuzzy skill matching, education credentials, experience
// months and a keyword safety net over the full texts. Pure function of the
// two documents and the params; no I/O.
func (e *Engine) hardMatch(resume, jd *models.ProcessedDocument) (float64, models.MatchEvidence) {
	ev := models.MatchEvidence{}

	skillScore := e.matchRequirements(jd.Skills, resume.Skills, &ev.MatchedSkills, &ev.MissingSkills)
	educationScore := e.matchRequirements(jd.Education, resume.Education, &ev.MatchedEducation, &ev.MissingEducation)
	experienceScore := e.matchExperience(resume, jd, &ev)

	ev.KeywordOverlap = clamp01(e.keywords(resume.FullText(), jd.FullText()))

	score := e.params.Hard.Skills*skillScore +
		e.params.Hard.Education*educationScore +
		e.params.Hard.Experience*experienceScore +
		e.params.Hard.Keywords*ev.KeywordOverlap

	return clamp01(score), ev
}

// matchRequirements checks each required item against the best-scoring
// candidate item. An empty requirement set is vacuously satisfied and scores
// a full 1.0 rather than an error or zero.
func (e *Engine) matchRequirements(required, available []string, matched, missing *[]string) float64 {
	if len(required) == 0 {
		return 1.0
	}

	count := 0
	for _, req := range required {
		best := 0.0
		for _, item := range available {
			if s := e.fuzzy(req, item); s > best {
				best = s
			}
		}
		if best >= e.params.FuzzyThreshold {
			count++
			*matched = append(*matched, req)
		} else {
			*missing = append(*missing, req)
		}
	}

	sort.Strings(*matched)
	sort.Strings(*missing)

	return float64(count) / float64(len(required))
}

// matchExperience compares resume months against the requirement. A missing
// resume value counts as zero months, never as "skip"; a job description
// without a requirement is satisfied by anyone.
func (e *Engine) matchExperience(resume, jd *models.ProcessedDocument, ev *models.MatchEvidence) float64 {
	actual := 0
	if resume.ExperienceMonths != nil {
		actual = *resume.ExperienceMonths
	}
	required := 0
	if jd.ExperienceMonths != nil {
		required = *jd.ExperienceMonths
	}

	ev.ActualMonths = actual
	ev.RequiredMonths = required

	if required <= 0 {
		return 1.0
	}
	if actual >= required {
		return 1.0
	}
	if actual <= 0 {
		return 0.0
	}
	return float64(actual) / float64(required)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
