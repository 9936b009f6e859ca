package match

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monishmahesha2006/resume-relevance-system/internal/models"
)

func TestSoftMatchWholeDocumentOnly(t *testing.T) {
	resume := &models.ProcessedDocument{Sections: map[string]string{"summary": "resume text"}}
	jd := &models.ProcessedDocument{Sections: map[string]string{"requirements": "jd text"}}

	// No shared section names, so only the whole-document cosine counts.
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"resume text": {1, 0},
		"jd text":     {0, 1},
	}}
	engine := newTestEngine(t, emb, 0)

	score, err := engine.softMatch(context.Background(), resume, jd)
	require.NoError(t, err)

	// Orthogonal vectors: cosine 0 rescales to 0.5
	assert.InDelta(t, 0.5, score, 1e-6)
}

func TestSoftMatchBlendsSections(t *testing.T) {
	resume := &models.ProcessedDocument{Sections: map[string]string{
		"skills":  "resume skills",
		"summary": "resume summary",
	}}
	jd := &models.ProcessedDocument{Sections: map[string]string{
		"skills":       "jd skills",
		"requirements": "jd requirements",
	}}

	emb := &fakeEmbedder{vectors: map[string][]float32{
		resume.FullText(): {1, 0},
		jd.FullText():     {1, 0}, // overall cosine 1 -> 1.0
		"resume skills":   {1, 0},
		"jd skills":       {0, 1}, // section cosine 0 -> 0.5
		"jd requirements": {1, 1}, // no matching resume section, skipped
	}}
	engine := newTestEngine(t, emb, 0)

	score, err := engine.softMatch(context.Background(), resume, jd)
	require.NoError(t, err)

	// 0.6 * 1.0 + 0.4 * 0.5
	assert.InDelta(t, 0.8, score, 1e-6)
}

func TestSoftMatchNegativeCosineRescaled(t *testing.T) {
	resume := &models.ProcessedDocument{Sections: map[string]string{"summary": "a"}}
	jd := &models.ProcessedDocument{Sections: map[string]string{"summary": "b"}}

	emb := &fakeEmbedder{vectors: map[string][]float32{
		"a": {1, 0},
		"b": {-1, 0},
	}}
	engine := newTestEngine(t, emb, 0)

	score, err := engine.softMatch(context.Background(), resume, jd)
	require.NoError(t, err)

	// Opposite vectors: cosine -1 rescales to 0, never below
	assert.InDelta(t, 0.0, score, 1e-6)
	assert.GreaterOrEqual(t, score, 0.0)
}

func TestSoftMatchEmbeddingErrorSurfaces(t *testing.T) {
	resume := &models.ProcessedDocument{Sections: map[string]string{"summary": "a"}}
	jd := &models.ProcessedDocument{Sections: map[string]string{"summary": "b"}}

	emb := &fakeEmbedder{err: fmt.Errorf("ollama unreachable")}
	engine := newTestEngine(t, emb, 0)

	_, err := engine.softMatch(context.Background(), resume, jd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama unreachable")
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-6)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	assert.Equal(t, 0.0, cosineSimilarity(nil, []float32{1}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 2}, []float32{1}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
