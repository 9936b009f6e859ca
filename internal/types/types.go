package types

import (
	"context"
	"errors"

	"github.com/monishmahesha2006/resume-relevance-system/internal/models"
)

// ErrNotFound is returned by stores when a document or result does not exist.
var ErrNotFound = errors.New("not found")

// Embedder turns a text into a semantic embedding vector. Implementations
// may perform network I/O; the engine only calls it through the embedding
// cache.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DocumentStore serves preprocessed resumes and job descriptions by ID.
type DocumentStore interface {
	GetResume(ctx context.Context, id string) (*models.ProcessedDocument, error)
	GetJobDescription(ctx context.Context, id string) (*models.ProcessedDocument, error)
	ListResumeIDs(ctx context.Context) ([]string, error)
	ListJobDescriptionIDs(ctx context.Context) ([]string, error)
}

// ResultStore persists match results with one row per (resume, jd) pair.
// UpsertResult replaces any previous result for the same pair.
type ResultStore interface {
	UpsertResult(ctx context.Context, result *models.MatchResult) error
	GetResult(ctx context.Context, resumeID, jdID string) (*models.MatchResult, error)
	ListResults(ctx context.Context, limit int) ([]*models.MatchResult, error)
}
