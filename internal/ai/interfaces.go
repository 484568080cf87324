package ai

import "context"

// Embedder generates fixed-length vector embeddings from text.
// Implementations must be safe for concurrent use.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// TagInferencer scores a text against a fixed label vocabulary without
// label-specific training. The result maps each label to a confidence in
// [0,1]; labels are not mutually exclusive. Implementations must be safe
// for concurrent use.
type TagInferencer interface {
	InferTags(ctx context.Context, text string, labels []string) (map[string]float64, error)
}

// Provider aggregates the AI services behind a single lifecycle.
type Provider interface {
	Embedder() Embedder
	TagInferencer() TagInferencer
	Close() error
}
