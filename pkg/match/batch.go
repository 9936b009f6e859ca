package match

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/monishmahesha2006/resume-relevance-system/internal/models"
	"github.com/monishmahesha2006/resume-relevance-system/internal/types"
)

// Pair identifies one (resume, job description) combination.
type Pair struct {
	ResumeID string `json:"resume_id"`
	JDID     string `json:"jd_id"`
}

// Failure records a pair that could not be matched, without aborting the
// rest of the batch.
type Failure struct {
	Pair   Pair   `json:"pair"`
	Reason string `json:"reason"`
}

// BatchSummary reports what a batch run did: stored results, per-pair
// failures and the number of unchanged pairs that were skipped.
type BatchSummary struct {
	Results  []*models.MatchResult `json:"results"`
	Failures []Failure             `json:"failures"`
	Skipped  int                   `json:"skipped"`
}

// OrchestratorConfig tunes a batch run. SkipUnchanged leaves a pair alone
// when its stored result carries the same input fingerprint; force in Run
// overrides it.
type OrchestratorConfig struct {
	Workers       int
	SkipUnchanged bool
	OnProgress    func(done, total int)
}

// Orchestrator drives the engine across a cross-product of stored documents
// and upserts one result per pair. Pairs are independent and run on a worker
// pool; one shared embedding cache serves the whole batch.
type Orchestrator struct {
	config  OrchestratorConfig
	engine  *Engine
	docs    types.DocumentStore
	results types.ResultStore
	log     *zap.Logger
}

func NewOrchestrator(config OrchestratorConfig, engine *Engine, docs types.DocumentStore, results types.ResultStore, log *zap.Logger) (*Orchestrator, error) {
	if config.Workers == 0 {
		config.Workers = 4
	}
	if config.Workers < 1 {
		return nil, fmt.Errorf("workers must be positive, got %d", config.Workers)
	}
	if engine == nil || docs == nil || results == nil {
		return nil, fmt.Errorf("engine, document store and result store are required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Orchestrator{
		config:  config,
		engine:  engine,
		docs:    docs,
		results: results,
		log:     log,
	}, nil
}

// Run matches every (resume, jd) pair from the given ID sets; nil or empty
// sets mean "all stored". force rematches pairs even when their inputs are
// unchanged. A cancelled context stops the batch after in-flight pairs
// finish; results already upserted stay put.
func (o *Orchestrator) Run(ctx context.Context, resumeIDs, jdIDs []string, force bool) (*BatchSummary, error) {
	var err error
	if len(resumeIDs) == 0 {
		if resumeIDs, err = o.docs.ListResumeIDs(ctx); err != nil {
			return nil, fmt.Errorf("listing resumes: %w", err)
		}
	}
	if len(jdIDs) == 0 {
		if jdIDs, err = o.docs.ListJobDescriptionIDs(ctx); err != nil {
			return nil, fmt.Errorf("listing job descriptions: %w", err)
		}
	}

	pairs := crossProduct(resumeIDs, jdIDs)
	total := len(pairs)

	summary := &BatchSummary{}
	var mu sync.Mutex
	done := 0

	record := func(result *models.MatchResult, skipped bool, failure *Failure) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case failure != nil:
			summary.Failures = append(summary.Failures, *failure)
		case skipped:
			summary.Skipped++
		default:
			summary.Results = append(summary.Results, result)
		}
		done++
		if o.config.OnProgress != nil {
			o.config.OnProgress(done, total)
		}
	}

	jobs := make(chan Pair)
	var wg sync.WaitGroup

	for i := 0; i < o.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pair := range jobs {
				result, skipped, err := o.matchPair(ctx, pair, force)
				if err != nil {
					o.log.Warn("pair failed",
						zap.String("resume", pair.ResumeID),
						zap.String("jd", pair.JDID),
						zap.Error(err),
					)
					record(nil, false, &Failure{Pair: pair, Reason: err.Error()})
					continue
				}
				record(result, skipped, nil)
			}
		}()
	}

dispatch:
	for _, pair := range pairs {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- pair:
		}
	}
	close(jobs)
	wg.Wait()

	sortSummary(summary)

	o.log.Info("batch finished",
		zap.Int("pairs", total),
		zap.Int("succeeded", len(summary.Results)),
		zap.Int("failed", len(summary.Failures)),
		zap.Int("skipped", summary.Skipped),
	)

	if err := ctx.Err(); err != nil && done < total {
		return summary, fmt.Errorf("batch aborted after %d of %d pairs: %w", done, total, err)
	}
	return summary, nil
}

func (o *Orchestrator) matchPair(ctx context.Context, pair Pair, force bool) (*models.MatchResult, bool, error) {
	resume, err := o.docs.GetResume(ctx, pair.ResumeID)
	if err != nil {
		return nil, false, fmt.Errorf("loading resume %q: %w", pair.ResumeID, err)
	}
	jd, err := o.docs.GetJobDescription(ctx, pair.JDID)
	if err != nil {
		return nil, false, fmt.Errorf("loading job description %q: %w", pair.JDID, err)
	}

	if o.config.SkipUnchanged && !force {
		existing, err := o.results.GetResult(ctx, pair.ResumeID, pair.JDID)
		if err != nil && !errors.Is(err, types.ErrNotFound) {
			return nil, false, fmt.Errorf("checking existing result: %w", err)
		}
		if existing != nil && existing.InputFingerprint == PairFingerprint(resume, jd) {
			return nil, true, nil
		}
	}

	result, err := o.engine.Match(ctx, resume, jd)
	if err != nil {
		return nil, false, err
	}

	if err := o.results.UpsertResult(ctx, result); err != nil {
		return nil, false, fmt.Errorf("storing result: %w", err)
	}
	return result, false, nil
}

// crossProduct builds the deduplicated pair list in a stable order.
func crossProduct(resumeIDs, jdIDs []string) []Pair {
	seen := make(map[Pair]bool)
	var pairs []Pair
	for _, r := range resumeIDs {
		for _, j := range jdIDs {
			p := Pair{ResumeID: r, JDID: j}
			if seen[p] {
				continue
			}
			seen[p] = true
			pairs = append(pairs, p)
		}
	}
	return pairs
}

// sortSummary restores a deterministic order after concurrent completion.
func sortSummary(s *BatchSummary) {
	sort.Slice(s.Results, func(i, j int) bool {
		if s.Results[i].ResumeID != s.Results[j].ResumeID {
			return s.Results[i].ResumeID < s.Results[j].ResumeID
		}
		return s.Results[i].JDID < s.Results[j].JDID
	})
	sort.Slice(s.Failures, func(i, j int) bool {
		if s.Failures[i].Pair.ResumeID != s.Failures[j].Pair.ResumeID {
			return s.Failures[i].Pair.ResumeID < s.Failures[j].Pair.ResumeID
		}
		return s.Failures[i].Pair.JDID < s.Failures[j].Pair.JDID
	})
}
