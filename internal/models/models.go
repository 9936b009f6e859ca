package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Verdict is the categorical suitability label derived from the relevance score.
type Verdict string

const (
	VerdictHigh   Verdict = "High"
	VerdictMedium Verdict = "Medium"
	VerdictLow    Verdict = "Low"
	VerdictPoor   Verdict = "Poor"
)

// ProcessedDocument is a preprocessed resume or job description. It is
// produced by an external extractor and treated as immutable by the engine.
// ExperienceMonths is the candidate's total experience for a resume, or the
// required minimum for a job description; nil means unknown.
type ProcessedDocument struct {
	ID               string            `json:"id"`
	Sections         map[string]string `json:"sections"`
	Skills           []string          `json:"skills"`
	Education        []string          `json:"education"`
	ExperienceMonths *int              `json:"experience_months"`
}

// FullText joins all section texts in section-name order, so the same
// document always renders to the same string.
func (d *ProcessedDocument) FullText() string {
	names := make([]string, 0, len(d.Sections))
	for name := range d.Sections {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		if text := strings.TrimSpace(d.Sections[name]); text != "" {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text)
		}
	}
	return b.String()
}

// Fingerprint hashes the document's content into a stable hex digest. Two
// documents with identical sections, skills, education and experience share
// a fingerprint regardless of field order.
func (d *ProcessedDocument) Fingerprint() string {
	h := sha256.New()

	names := make([]string, 0, len(d.Sections))
	for name := range d.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(h, "s:%s=%s\n", name, d.Sections[name])
	}

	skills := append([]string(nil), d.Skills...)
	sort.Strings(skills)
	for _, s := range skills {
		fmt.Fprintf(h, "k:%s\n", s)
	}

	education := append([]string(nil), d.Education...)
	sort.Strings(education)
	for _, e := range education {
		fmt.Fprintf(h, "e:%s\n", e)
	}

	if d.ExperienceMonths != nil {
		fmt.Fprintf(h, "x:%d\n", *d.ExperienceMonths)
	}

	return hex.EncodeToString(h.Sum(nil))
}

// MatchEvidence is the hard matcher's structured output: what matched, what
// is missing, and the raw experience numbers the gap analyzer reports on.
type MatchEvidence struct {
	MatchedSkills    []string
	MissingSkills    []string
	MatchedEducation []string
	MissingEducation []string
	RequiredMonths   int
	ActualMonths     int
	KeywordOverlap   float64
}

// ExperienceAnalysis is the persisted experience gap record. DeltaMonths is
// actual minus required, so a negative value is a shortfall.
type ExperienceAnalysis struct {
	RequiredMonths   int  `json:"required_months"`
	ActualMonths     int  `json:"actual_months"`
	DeltaMonths      int  `json:"delta_months"`
	MeetsRequirement bool `json:"meets_requirement"`
}

// MatchResult is the engine's output for one (resume, job description) pair.
// For fixed inputs and configuration every field except GeneratedAt is
// deterministic.
type MatchResult struct {
	ResumeID         string             `json:"resume_id"`
	JDID             string             `json:"jd_id"`
	RelevanceScore   float64            `json:"relevance_score"`
	Verdict          Verdict            `json:"verdict"`
	HardMatchScore   float64            `json:"hard_match_score"`
	SoftMatchScore   float64            `json:"soft_match_score"`
	MissingSkills    []string           `json:"missing_skills"`
	MissingEducation []string           `json:"missing_education"`
	Experience       ExperienceAnalysis `json:"experience_analysis"`
	Feedback         string             `json:"feedback"`
	Strengths        []string           `json:"strengths"`
	ImprovementAreas []string           `json:"improvement_areas"`

	// InputFingerprint identifies the pair of input documents that produced
	// this result; the orchestrator uses it to skip unchanged pairs.
	InputFingerprint string    `json:"input_fingerprint"`
	GeneratedAt      time.Time `json:"generated_at"`
}
