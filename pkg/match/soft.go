package match

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/monishmahesha2006/resume-relevance-system/internal/models"
)

// softMatch computes the semantic similarity between the two documents:
// whole-document cosine blended with the average over sections present in
// both. Embedding failures surface as errors, never as a silent zero score
// that would bias the blend.
func (e *Engine) softMatch(ctx context.Context, resume, jd *models.ProcessedDocument) (float64, error) {
	overall, err := e.textSimilarity(ctx, resume.FullText(), jd.FullText())
	if err != nil {
		return 0, fmt.Errorf("overall similarity: %w", err)
	}

	sectionAvg, sectionCount, err := e.sectionSimilarity(ctx, resume, jd)
	if err != nil {
		return 0, err
	}

	// Sections absent from either document are skipped, not zeroed; with no
	// shared sections the whole-document similarity stands alone.
	if sectionCount == 0 {
		return clamp01(overall), nil
	}

	return clamp01(e.params.OverallWeight*overall + e.params.SectionWeight*sectionAvg), nil
}

func (e *Engine) sectionSimilarity(ctx context.Context, resume, jd *models.ProcessedDocument) (float64, int, error) {
	names := make([]string, 0, len(jd.Sections))
	for name := range jd.Sections {
		names = append(names, name)
	}
	sort.Strings(names)

	var sum float64
	count := 0
	for _, name := range names {
		jdText := jd.Sections[name]
		resumeText, ok := resume.Sections[name]
		if !ok || resumeText == "" || jdText == "" {
			continue
		}
		sim, err := e.textSimilarity(ctx, resumeText, jdText)
		if err != nil {
			return 0, 0, fmt.Errorf("section %q similarity: %w", name, err)
		}
		sum += sim
		count++
	}

	if count == 0 {
		return 0, 0, nil
	}
	return sum / float64(count), count, nil
}

// textSimilarity embeds both texts through the cache and maps their cosine
// similarity from [-1,1] into [0,1] via (cos+1)/2.
func (e *Engine) textSimilarity(ctx context.Context, a, b string) (float64, error) {
	va, err := e.embed(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := e.embed(ctx, b)
	if err != nil {
		return 0, err
	}

	cos := cosineSimilarity(va, vb)
	return (cos + 1) / 2, nil
}

func (e *Engine) embed(ctx context.Context, text string) ([]float32, error) {
	return e.cache.GetOrCompute(ctx, Fingerprint(text), func(ctx context.Context) ([]float32, error) {
		vec, err := e.embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding failed: %w", err)
		}
		return vec, nil
	})
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
