package mock

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedTextDeterministic(t *testing.T) {
	e := NewEmbedder()

	first, err := e.EmbedText(context.Background(), "spicy ramen")
	require.NoError(t, err)
	second, err := e.EmbedText(context.Background(), "spicy ramen")
	require.NoError(t, err)
	assert.Equal(t, first, second, "same text, same vector")

	other, err := e.EmbedText(context.Background(), "greek salad")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestEmbedTextUnitNorm(t *testing.T) {
	e := NewEmbedder()
	v, err := e.EmbedText(context.Background(), "pad thai")
	require.NoError(t, err)
	require.Len(t, v, 128)

	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-5)
}

func TestEmbedTexts(t *testing.T) {
	e := &Embedder{Dim: 16}
	vectors, err := e.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Len(t, vectors[0], 16)

	single, err := e.EmbedText(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, single, vectors[0], "batch and single paths agree")
}

func TestTaggerKeywordMatch(t *testing.T) {
	tagger := NewTagInferencer()
	labels := []string{"high protein", "vegan", "dessert"}

	scores, err := tagger.InferTags(context.Background(), "High protein vegan bowl", labels)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"high protein": 0.9, "vegan": 0.9}, scores)

	scores, err = tagger.InferTags(context.Background(), "plain toast", labels)
	require.NoError(t, err)
	assert.Empty(t, scores)
}
