package mock

import (
	"context"
	"hash/fnv"
	"math"
)

// Embedder is a deterministic test double for ai.Embedder: the same text
// always produces the same unit vector. Behavior can be overridden via
// the function fields.
type Embedder struct {
	EmbedTextFunc  func(ctx context.Context, text string) ([]float32, error)
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	Dim int // vector dimension, defaults to 128
}

func NewEmbedder() *Embedder {
	return &Embedder{Dim: 128}
}

func (m *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return deterministicVector(text, m.dim()), nil
}

func (m *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = deterministicVector(text, m.dim())
	}
	return vectors, nil
}

func (m *Embedder) dim() int {
	if m.Dim > 0 {
		return m.Dim
	}
	return 128
}

// deterministicVector derives a unit vector from an FNV hash of the text.
func deterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000)/1000.0 - 0.5
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(1.0 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}
	return vector
}
