package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/monishmahesha2006/resume-relevance-system/internal/models"
	"github.com/monishmahesha2006/resume-relevance-system/internal/types"
)

type StoreConfig struct {
	ConnString string
	VectorDim  int
}

// Store persists resumes, job descriptions and match results in Postgres.
// Document embeddings live in a pgvector column so similar resumes can be
// queried with a cosine index. Exactly one match result row exists per
// (resume, jd) pair; UpsertResult replaces, never duplicates.
type Store struct {
	config StoreConfig
	pool   *pgxpool.Pool
}

func NewWithConfig(ctx context.Context, config StoreConfig) (*Store, error) {
	if config.VectorDim == 0 {
		config.VectorDim = 768 // nomic-embed-text dimension
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	s := &Store{
		config: config,
		pool:   pool,
	}

	if err := s.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %v", err)
	}

	for _, table := range []string{"resumes", "job_descriptions"} {
		createTable := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				sections JSONB NOT NULL,
				skills JSONB NOT NULL,
				education JSONB NOT NULL,
				experience_months INTEGER,
				fingerprint TEXT NOT NULL,
				embedding vector(%d)
			)`, table, s.config.VectorDim)

		if _, err := s.pool.Exec(ctx, createTable); err != nil {
			return fmt.Errorf("failed to create %s table: %v", table, err)
		}
	}

	createIndex := `
		CREATE INDEX IF NOT EXISTS resumes_embedding_idx
		ON resumes
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`

	if _, err := s.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	createResults := `
		CREATE TABLE IF NOT EXISTS matching_results (
			resume_id TEXT NOT NULL REFERENCES resumes(id) ON DELETE CASCADE,
			jd_id TEXT NOT NULL REFERENCES job_descriptions(id) ON DELETE CASCADE,
			relevance_score DOUBLE PRECISION NOT NULL CHECK (relevance_score >= 0 AND relevance_score <= 1),
			verdict TEXT NOT NULL CHECK (verdict IN ('High', 'Medium', 'Low', 'Poor')),
			hard_match_score DOUBLE PRECISION NOT NULL CHECK (hard_match_score >= 0 AND hard_match_score <= 1),
			soft_match_score DOUBLE PRECISION NOT NULL CHECK (soft_match_score >= 0 AND soft_match_score <= 1),
			missing_skills JSONB NOT NULL,
			missing_education JSONB NOT NULL,
			experience_analysis JSONB NOT NULL,
			feedback TEXT NOT NULL,
			strengths JSONB NOT NULL,
			improvement_areas JSONB NOT NULL,
			input_fingerprint TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (resume_id, jd_id)
		)`

	if _, err := s.pool.Exec(ctx, createResults); err != nil {
		return fmt.Errorf("failed to create matching_results table: %v", err)
	}

	return nil
}

// SaveResume upserts a preprocessed resume along with its full-text
// embedding.
func (s *Store) SaveResume(ctx context.Context, doc *models.ProcessedDocument, embedding []float32) error {
	return s.saveDocument(ctx, "resumes", doc, embedding)
}

// SaveJobDescription upserts a preprocessed job description along with its
// full-text embedding.
func (s *Store) SaveJobDescription(ctx context.Context, doc *models.ProcessedDocument, embedding []float32) error {
	return s.saveDocument(ctx, "job_descriptions", doc, embedding)
}

func (s *Store) saveDocument(ctx context.Context, table string, doc *models.ProcessedDocument, embedding []float32) error {
	sections, err := json.Marshal(doc.Sections)
	if err != nil {
		return fmt.Errorf("failed to marshal sections: %v", err)
	}
	skills, err := json.Marshal(doc.Skills)
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %v", err)
	}
	education, err := json.Marshal(doc.Education)
	if err != nil {
		return fmt.Errorf("failed to marshal education: %v", err)
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, sections, skills, education, experience_months, fingerprint, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			sections = EXCLUDED.sections,
			skills = EXCLUDED.skills,
			education = EXCLUDED.education,
			experience_months = EXCLUDED.experience_months,
			fingerprint = EXCLUDED.fingerprint,
			embedding = EXCLUDED.embedding`,
		table)

	_, err = s.pool.Exec(ctx, stmt,
		doc.ID,
		sections,
		skills,
		education,
		doc.ExperienceMonths,
		doc.Fingerprint(),
		pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %v", err)
	}
	return nil
}

func (s *Store) GetResume(ctx context.Context, id string) (*models.ProcessedDocument, error) {
	return s.getDocument(ctx, "resumes", id)
}

func (s *Store) GetJobDescription(ctx context.Context, id string) (*models.ProcessedDocument, error) {
	return s.getDocument(ctx, "job_descriptions", id)
}

func (s *Store) getDocument(ctx context.Context, table, id string) (*models.ProcessedDocument, error) {
	query := fmt.Sprintf(`
		SELECT id, sections, skills, education, experience_months
		FROM %s
		WHERE id = $1`, table)

	var doc models.ProcessedDocument
	var sections, skills, education []byte

	err := s.pool.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&sections,
		&skills,
		&education,
		&doc.ExperienceMonths,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %q: %v", id, err)
	}

	if err := json.Unmarshal(sections, &doc.Sections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sections for %q: %v", id, err)
	}
	if err := json.Unmarshal(skills, &doc.Skills); err != nil {
		return nil, fmt.Errorf("failed to unmarshal skills for %q: %v", id, err)
	}
	if err := json.Unmarshal(education, &doc.Education); err != nil {
		return nil, fmt.Errorf("failed to unmarshal education for %q: %v", id, err)
	}

	return &doc, nil
}

func (s *Store) ListResumeIDs(ctx context.Context) ([]string, error) {
	return s.listIDs(ctx, "resumes")
}

func (s *Store) ListJobDescriptionIDs(ctx context.Context) ([]string, error) {
	return s.listIDs(ctx, "job_descriptions")
}

func (s *Store) listIDs(ctx context.Context, table string) ([]string, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT id FROM %s ORDER BY id", table))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %v", table, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpsertResult stores a match result, replacing any previous result for the
// same pair. Concurrent writers for one pair resolve by last writer wins,
// never by a duplicate row.
func (s *Store) UpsertResult(ctx context.Context, result *models.MatchResult) error {
	missingSkills, err := json.Marshal(result.MissingSkills)
	if err != nil {
		return fmt.Errorf("failed to marshal missing skills: %v", err)
	}
	missingEducation, err := json.Marshal(result.MissingEducation)
	if err != nil {
		return fmt.Errorf("failed to marshal missing education: %v", err)
	}
	experience, err := json.Marshal(result.Experience)
	if err != nil {
		return fmt.Errorf("failed to marshal experience analysis: %v", err)
	}
	strengths, err := json.Marshal(result.Strengths)
	if err != nil {
		return fmt.Errorf("failed to marshal strengths: %v", err)
	}
	improvements, err := json.Marshal(result.ImprovementAreas)
	if err != nil {
		return fmt.Errorf("failed to marshal improvement areas: %v", err)
	}

	stmt := `
		INSERT INTO matching_results (
			resume_id, jd_id, relevance_score, verdict, hard_match_score,
			soft_match_score, missing_skills, missing_education,
			experience_analysis, feedback, strengths, improvement_areas,
			input_fingerprint, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (resume_id, jd_id) DO UPDATE SET
			relevance_score = EXCLUDED.relevance_score,
			verdict = EXCLUDED.verdict,
			hard_match_score = EXCLUDED.hard_match_score,
			soft_match_score = EXCLUDED.soft_match_score,
			missing_skills = EXCLUDED.missing_skills,
			missing_education = EXCLUDED.missing_education,
			experience_analysis = EXCLUDED.experience_analysis,
			feedback = EXCLUDED.feedback,
			strengths = EXCLUDED.strengths,
			improvement_areas = EXCLUDED.improvement_areas,
			input_fingerprint = EXCLUDED.input_fingerprint,
			created_at = EXCLUDED.created_at`

	_, err = s.pool.Exec(ctx, stmt,
		result.ResumeID,
		result.JDID,
		result.RelevanceScore,
		string(result.Verdict),
		result.HardMatchScore,
		result.SoftMatchScore,
		missingSkills,
		missingEducation,
		experience,
		result.Feedback,
		strengths,
		improvements,
		result.InputFingerprint,
		result.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert result: %v", err)
	}
	return nil
}

func (s *Store) GetResult(ctx context.Context, resumeID, jdID string) (*models.MatchResult, error) {
	rows, err := s.pool.Query(ctx, selectResults+" WHERE resume_id = $1 AND jd_id = $2", resumeID, jdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query result: %v", err)
	}
	results, err := scanResults(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, types.ErrNotFound
	}
	return results[0], nil
}

// ListResults returns stored results ordered by relevance, best first.
func (s *Store) ListResults(ctx context.Context, limit int) ([]*models.MatchResult, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, selectResults+" ORDER BY relevance_score DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %v", err)
	}
	return scanResults(rows)
}

// ResultsByVerdict returns all results carrying the given verdict.
func (s *Store) ResultsByVerdict(ctx context.Context, verdict models.Verdict) ([]*models.MatchResult, error) {
	rows, err := s.pool.Query(ctx, selectResults+" WHERE verdict = $1 ORDER BY relevance_score DESC", string(verdict))
	if err != nil {
		return nil, fmt.Errorf("failed to query results by verdict: %v", err)
	}
	return scanResults(rows)
}

const selectResults = `
	SELECT resume_id, jd_id, relevance_score, verdict, hard_match_score,
		soft_match_score, missing_skills, missing_education,
		experience_analysis, feedback, strengths, improvement_areas,
		input_fingerprint, created_at
	FROM matching_results`

func scanResults(rows pgx.Rows) ([]*models.MatchResult, error) {
	defer rows.Close()

	var results []*models.MatchResult
	for rows.Next() {
		var r models.MatchResult
		var verdict string
		var missingSkills, missingEducation, experience, strengths, improvements []byte

		err := rows.Scan(
			&r.ResumeID,
			&r.JDID,
			&r.RelevanceScore,
			&verdict,
			&r.HardMatchScore,
			&r.SoftMatchScore,
			&missingSkills,
			&missingEducation,
			&experience,
			&r.Feedback,
			&strengths,
			&improvements,
			&r.InputFingerprint,
			&r.GeneratedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result row: %v", err)
		}

		r.Verdict = models.Verdict(verdict)
		if err := json.Unmarshal(missingSkills, &r.MissingSkills); err != nil {
			return nil, fmt.Errorf("failed to unmarshal missing skills: %v", err)
		}
		if err := json.Unmarshal(missingEducation, &r.MissingEducation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal missing education: %v", err)
		}
		if err := json.Unmarshal(experience, &r.Experience); err != nil {
			return nil, fmt.Errorf("failed to unmarshal experience analysis: %v", err)
		}
		if err := json.Unmarshal(strengths, &r.Strengths); err != nil {
			return nil, fmt.Errorf("failed to unmarshal strengths: %v", err)
		}
		if err := json.Unmarshal(improvements, &r.ImprovementAreas); err != nil {
			return nil, fmt.Errorf("failed to unmarshal improvement areas: %v", err)
		}

		results = append(results, &r)
	}
	return results, rows.Err()
}

// SimilarResume is one row of a nearest-neighbour query over resume
// embeddings.
type SimilarResume struct {
	ID       string  `json:"id"`
	Distance float64 `json:"distance"`
}

// SimilarResumes finds the stored resumes whose embeddings are closest to
// the given vector by cosine distance.
func (s *Store) SimilarResumes(ctx context.Context, embedding []float32, limit int) ([]SimilarResume, error) {
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT id, embedding <=> $1 AS distance
		FROM resumes
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar resumes: %v", err)
	}
	defer rows.Close()

	var matches []SimilarResume
	for rows.Next() {
		var m SimilarResume
		if err := rows.Scan(&m.ID, &m.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
