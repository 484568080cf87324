package openai

import (
	"github.com/plateful/platesearch/internal/ai"
	"github.com/plateful/platesearch/internal/models"
)

// Provider bundles the OpenAI-backed embedder and tag inferencer.
type Provider struct {
	embedder *Embedder
	tagger   *TagInferencer
}

func NewProvider(cfg models.AIConfig) (*Provider, error) {
	embedder, err := NewEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	tagger, err := NewTagInferencer(cfg)
	if err != nil {
		return nil, err
	}
	return &Provider{embedder: embedder, tagger: tagger}, nil
}

func (p *Provider) Embedder() ai.Embedder           { return p.embedder }
func (p *Provider) TagInferencer() ai.TagInferencer { return p.tagger }

func (p *Provider) Close() error {
	// The underlying HTTP clients hold no resources needing teardown.
	return nil
}
