package match

import (
	"fmt"
	"math"

	"github.com/monishmahesha2006/resume-relevance-system/internal/models"
	"github.com/monishmahesha2006/resume-relevance-system/pkg/config"
)

// HardWeights splits the hard match score across its four components.
type HardWeights struct {
	Skills     float64
	Education  float64
	Experience float64
	Keywords   float64
}

// Band maps scores at or above Min to a verdict. Bands are checked in order,
// so a boundary score belongs to the higher band.
type Band struct {
	Label models.Verdict
	Min   float64
}

// Params is the engine's full scoring configuration. Construct via
// DefaultParams or ParamsFromConfig; NewEngine rejects invalid values
// instead of clamping them.
type Params struct {
	HardWeight float64
	SoftWeight float64

	Hard HardWeights

	// FuzzyThreshold is the minimum similarity for a resume skill or
	// credential to satisfy a requirement.
	FuzzyThreshold float64

	// OverallWeight and SectionWeight blend whole-document semantic
	// similarity with the per-section average.
	OverallWeight float64
	SectionWeight float64

	Bands []Band
}

func DefaultParams() Params {
	return Params{
		HardWeight: 0.60,
		SoftWeight: 0.40,
		Hard: HardWeights{
			Skills:     0.40,
			Education:  0.20,
			Experience: 0.20,
			Keywords:   0.20,
		},
		FuzzyThreshold: 0.80,
		OverallWeight:  0.60,
		SectionWeight:  0.40,
		Bands: []Band{
			{Label: models.VerdictHigh, Min: 0.75},
			{Label: models.VerdictMedium, Min: 0.50},
			{Label: models.VerdictLow, Min: 0.25},
			{Label: models.VerdictPoor, Min: 0.0},
		},
	}
}

// ParamsFromConfig lifts the validated config section into engine params.
func ParamsFromConfig(mc config.MatchingConfig) Params {
	p := Params{
		HardWeight: mc.HardWeight,
		SoftWeight: mc.SoftWeight,
		Hard: HardWeights{
			Skills:     mc.SkillsWeight,
			Education:  mc.EducationWeight,
			Experience: mc.ExperienceWeight,
			Keywords:   mc.KeywordsWeight,
		},
		FuzzyThreshold: mc.FuzzyThreshold,
		OverallWeight:  mc.OverallWeight,
		SectionWeight:  mc.SectionWeight,
	}
	for _, band := range mc.Verdicts {
		p.Bands = append(p.Bands, Band{Label: models.Verdict(band.Label), Min: band.Min})
	}
	return p
}

const weightTolerance = 1e-9

func (p Params) validate() error {
	if sum := p.HardWeight + p.SoftWeight; math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("hard and soft weights must sum to 1.0, got %g", sum)
	}
	if sum := p.Hard.Skills + p.Hard.Education + p.Hard.Experience + p.Hard.Keywords; math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("hard match component weights must sum to 1.0, got %g", sum)
	}
	if sum := p.OverallWeight + p.SectionWeight; math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("overall and section weights must sum to 1.0, got %g", sum)
	}
	if p.FuzzyThreshold < 0 || p.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy threshold must be in [0,1], got %g", p.FuzzyThreshold)
	}
	if len(p.Bands) == 0 {
		return fmt.Errorf("at least one verdict band is required")
	}
	for i, band := range p.Bands {
		if band.Min < 0 || band.Min > 1 {
			return fmt.Errorf("verdict band %q cut point must be in [0,1], got %g", band.Label, band.Min)
		}
		if i > 0 && band.Min >= p.Bands[i-1].Min {
			return fmt.Errorf("verdict bands must be in strictly descending order")
		}
	}
	if last := p.Bands[len(p.Bands)-1]; last.Min != 0 {
		return fmt.Errorf("last verdict band %q must start at 0", last.Label)
	}
	return nil
}
