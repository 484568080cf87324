package mock

import "github.com/plateful/platesearch/internal/ai"

// Provider bundles the mock embedder and tag inferencer for tests and
// for running the engine without external model services.
type Provider struct {
	MockEmbedder *Embedder
	MockTagger   *TagInferencer
}

func NewProvider() *Provider {
	return &Provider{
		MockEmbedder: NewEmbedder(),
		MockTagger:   NewTagInferencer(),
	}
}

func (p *Provider) Embedder() ai.Embedder           { return p.MockEmbedder }
func (p *Provider) TagInferencer() ai.TagInferencer { return p.MockTagger }
func (p *Provider) Close() error                    { return nil }
