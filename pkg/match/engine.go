package match

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/monishmahesha2006/resume-relevance-system/internal/models"
	"github.com/monishmahesha2006/resume-relevance-system/internal/types"
	"github.com/monishmahesha2006/resume-relevance-system/pkg/similarity"
)

// Engine scores how well a resume satisfies a job description. It is a pure
// function of its two input documents plus the params: re-running it on the
// same inputs yields an identical result apart from the timestamp.
type Engine struct {
	params   Params
	embedder types.Embedder
	cache    *EmbeddingCache
	fuzzy    similarity.Func
	keywords similarity.Func
	log      *zap.Logger
}

type Option func(*Engine)

// WithFuzzy swaps the approximate string matcher used for skills and
// education.
func WithFuzzy(fn similarity.Func) Option {
	return func(e *Engine) { e.fuzzy = fn }
}

// WithKeywordScorer swaps the lexical overlap function used on full texts.
func WithKeywordScorer(fn similarity.Func) Option {
	return func(e *Engine) { e.keywords = fn }
}

// WithCache injects a shared embedding cache, typically one per batch run.
func WithCache(cache *EmbeddingCache) Option {
	return func(e *Engine) { e.cache = cache }
}

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine validates params eagerly and fails instead of clamping.
func NewEngine(params Params, embedder types.Embedder, opts ...Option) (*Engine, error) {
	if err := params.validate(); err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}
	if embedder == nil {
		return nil, fmt.Errorf("invalid engine configuration: embedder is required")
	}

	e := &Engine{
		params:   params,
		embedder: embedder,
		cache:    NewEmbeddingCache(),
		fuzzy:    similarity.TokenSortRatio,
		keywords: similarity.TermFrequencyCosine,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Match runs the full pipeline for one pair: hard match, soft match,
// aggregation, verdict, gap analysis and feedback.
func (e *Engine) Match(ctx context.Context, resume, jd *models.ProcessedDocument) (*models.MatchResult, error) {
	if resume == nil || jd == nil {
		return nil, fmt.Errorf("both resume and job description are required")
	}

	hard, ev := e.hardMatch(resume, jd)

	soft, err := e.softMatch(ctx, resume, jd)
	if err != nil {
		return nil, fmt.Errorf("matching resume %q against jd %q: %w", resume.ID, jd.ID, err)
	}

	relevance := e.aggregate(hard, soft)
	verdict := e.classify(relevance)
	missingSkills, missingEducation, analysis := analyzeGaps(ev)
	strengths, improvements, feedback := composeFeedback(ev, analysis, verdict)

	e.log.Debug("pair scored",
		zap.String("resume", resume.ID),
		zap.String("jd", jd.ID),
		zap.Float64("hard", hard),
		zap.Float64("soft", soft),
		zap.Float64("relevance", relevance),
		zap.String("verdict", string(verdict)),
	)

	return &models.MatchResult{
		ResumeID:         resume.ID,
		JDID:             jd.ID,
		RelevanceScore:   relevance,
		Verdict:          verdict,
		HardMatchScore:   hard,
		SoftMatchScore:   soft,
		MissingSkills:    missingSkills,
		MissingEducation: missingEducation,
		Experience:       analysis,
		Feedback:         feedback,
		Strengths:        strengths,
		ImprovementAreas: improvements,
		InputFingerprint: PairFingerprint(resume, jd),
		GeneratedAt:      time.Now().UTC(),
	}, nil
}

// PairFingerprint identifies the combined content of both input documents.
// A stored result with the same fingerprint was produced from identical
// inputs and can be skipped on re-match.
func PairFingerprint(resume, jd *models.ProcessedDocument) string {
	return Fingerprint(resume.Fingerprint() + ":" + jd.Fingerprint())
}
