package match

import (
	"github.com/monishmahesha2006/resume-relevance-system/internal/models"
)

// aggregate blends the two sub-scores into the final relevance score.
func (e *Engine) aggregate(hard, soft float64) float64 {
	return clamp01(e.params.HardWeight*hard + e.params.SoftWeight*soft)
}

// classify walks the verdict bands top down and returns the first band whose
// cut point the score reaches, so a score exactly on a boundary lands in the
// higher band. Bands are exhaustive (the last one starts at 0).
func (e *Engine) classify(score float64) models.Verdict {
	for _, band := range e.params.Bands {
		if score >= band.Min {
			return band.Label
		}
	}
	return e.params.Bands[len(e.params.Bands)-1].Label
}
