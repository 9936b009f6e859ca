package match

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monishmahesha2006/resume-relevance-system/internal/models"
)

func TestEmbeddingCacheGetOrCompute(t *testing.T) {
	cache := NewEmbeddingCache()
	var computed atomic.Int64

	compute := func(ctx context.Context) ([]float32, error) {
		computed.Add(1)
		return []float32{1, 2, 3}, nil
	}

	vec, err := cache.GetOrCompute(context.Background(), "key", compute)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)
	assert.EqualValues(t, 1, computed.Load())

	// Second lookup hits the cache
	vec, err = cache.GetOrCompute(context.Background(), "key", compute)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)
	assert.EqualValues(t, 1, computed.Load())
	assert.Equal(t, 1, cache.Len())
}

func TestEmbeddingCacheErrorNotCached(t *testing.T) {
	cache := NewEmbeddingCache()

	_, err := cache.GetOrCompute(context.Background(), "key", func(ctx context.Context) ([]float32, error) {
		return nil, fmt.Errorf("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())

	// A later successful compute fills the entry
	vec, err := cache.GetOrCompute(context.Background(), "key", func(ctx context.Context) ([]float32, error) {
		return []float32{4}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []float32{4}, vec)
}

func TestEmbeddingCacheConcurrent(t *testing.T) {
	cache := NewEmbeddingCache()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%5)
			vec, err := cache.GetOrCompute(context.Background(), key, func(ctx context.Context) ([]float32, error) {
				return []float32{float32(i % 5)}, nil
			})
			assert.NoError(t, err)
			assert.Len(t, vec, 1)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, cache.Len())
}

func TestEngineReusesCachedEmbeddings(t *testing.T) {
	resume := &models.ProcessedDocument{ID: "r", Sections: map[string]string{"summary": "go developer"}}
	jd := &models.ProcessedDocument{ID: "j", Sections: map[string]string{"summary": "go role"}}

	emb := &fakeEmbedder{}
	engine := newTestEngine(t, emb, 0.5)

	_, err := engine.Match(context.Background(), resume, jd)
	require.NoError(t, err)
	afterFirst := emb.calls.Load()

	_, err = engine.Match(context.Background(), resume, jd)
	require.NoError(t, err)

	assert.Equal(t, afterFirst, emb.calls.Load(), "second run must be served from the cache")
}

func TestFingerprintStable(t *testing.T) {
	assert.Equal(t, Fingerprint("hello"), Fingerprint("hello"))
	assert.NotEqual(t, Fingerprint("hello"), Fingerprint("hello "))
}

func TestPairFingerprintTracksContent(t *testing.T) {
	resume := &models.ProcessedDocument{ID: "r", Skills: []string{"Go"}}
	jd := &models.ProcessedDocument{ID: "j", Skills: []string{"Go", "SQL"}}

	fp := PairFingerprint(resume, jd)
	assert.Equal(t, fp, PairFingerprint(resume, jd))

	changed := &models.ProcessedDocument{ID: "r", Skills: []string{"Go", "Rust"}}
	assert.NotEqual(t, fp, PairFingerprint(changed, jd))
}
