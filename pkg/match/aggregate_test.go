package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monishmahesha2006/resume-relevance-system/internal/models"
)

func TestClassifyBoundaries(t *testing.T) {
	engine := newTestEngine(t, &fakeEmbedder{}, 0)

	tests := []struct {
		score float64
		want  models.Verdict
	}{
		{score: 1.0, want: models.VerdictHigh},
		{score: 0.75, want: models.VerdictHigh}, // boundary belongs to the higher band
		{score: 0.7499, want: models.VerdictMedium},
		{score: 0.50, want: models.VerdictMedium},
		{score: 0.4999, want: models.VerdictLow},
		{score: 0.25, want: models.VerdictLow},
		{score: 0.2499, want: models.VerdictPoor},
		{score: 0.0, want: models.VerdictPoor},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, engine.classify(tt.score), "score %v", tt.score)
	}
}

func TestClassifyCustomBands(t *testing.T) {
	params := DefaultParams()
	params.Bands = []Band{
		{Label: models.VerdictHigh, Min: 0.9},
		{Label: models.VerdictLow, Min: 0.0},
	}
	engine, err := NewEngine(params, &fakeEmbedder{})
	require.NoError(t, err)

	assert.Equal(t, models.VerdictHigh, engine.classify(0.9))
	assert.Equal(t, models.VerdictLow, engine.classify(0.89))
	assert.Equal(t, models.VerdictLow, engine.classify(0.0))
}

func TestAggregateBlend(t *testing.T) {
	engine := newTestEngine(t, &fakeEmbedder{}, 0)

	assert.InDelta(t, 0.60*0.8+0.40*0.5, engine.aggregate(0.8, 0.5), 1e-9)
	assert.Equal(t, 1.0, engine.aggregate(1.0, 1.0))
	assert.Equal(t, 0.0, engine.aggregate(0.0, 0.0))
}
