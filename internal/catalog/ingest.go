package catalog

import (
	"context"
	"log"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/plateful/platesearch/internal/ai"
	"github.com/plateful/platesearch/internal/models"
)

// Pipeline ingests restaurants and menu items and precomputes each item's
// embedding and tag scores. Derived vectors are computed once at ingestion
// time and only refreshed when an item's name or description changed, so
// the search path never pays per-query inference for items.
type Pipeline struct {
	store    *Store
	embedder ai.Embedder
	tagger   ai.TagInferencer
	labels   []string
	pool     *ants.Pool
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline) error

// WithPoolSize sets the worker pool size for derived-data computation.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) PipelineOption {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

func NewPipeline(store *Store, provider ai.Provider, labels []string, opts ...PipelineOption) (*Pipeline, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:    store,
		embedder: provider.Embedder(),
		tagger:   provider.TagInferencer(),
		labels:   labels,
		pool:     pool,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}
	return p, nil
}

// IngestRestaurants upserts restaurant records. Restaurants carry no
// derived vectors of their own.
func (p *Pipeline) IngestRestaurants(ctx context.Context, restaurants []*models.Restaurant) error {
	return p.store.Restaurants.BulkUpsert(ctx, restaurants)
}

// IngestMenuItems upserts menu items and recomputes embeddings and tag
// scores for any item whose text changed. The onDone callback, if set, is
// invoked once per item after its derived data settles (used for progress
// reporting). Per-item inference failures are logged and leave the item
// without derived data; they do not fail the ingest.
func (p *Pipeline) IngestMenuItems(ctx context.Context, items []*models.MenuItem, onDone func()) error {
	existing, err := p.store.MenuItems.GetAll(ctx)
	if err != nil {
		return err
	}

	if err := p.store.MenuItems.BulkUpsert(ctx, items); err != nil {
		return err
	}

	var wg sync.WaitGroup
	for _, item := range items {
		item := item
		if prev, ok := existing[item.ID]; ok && prev.EmbeddingText() == item.EmbeddingText() && prev.Embedding != nil {
			// Text unchanged, keep the previous vectors
			if err := p.store.MenuItems.UpdateDerived(ctx, item.ID, prev.Embedding, prev.TagScores); err != nil {
				return err
			}
			if onDone != nil {
				onDone()
			}
			continue
		}

		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			p.computeDerived(ctx, item)
			if onDone != nil {
				onDone()
			}
		})
		if err != nil {
			wg.Done()
			return err
		}
	}
	wg.Wait()
	return ctx.Err()
}

func (p *Pipeline) computeDerived(ctx context.Context, item *models.MenuItem) {
	text := item.EmbeddingText()

	embedding, err := p.embedder.EmbedText(ctx, text)
	if err != nil {
		log.Printf("failed to embed menu item %s: %v", item.ID, err)
		return
	}

	tagScores, err := p.tagger.InferTags(ctx, text, p.labels)
	if err != nil {
		log.Printf("failed to infer tags for menu item %s: %v", item.ID, err)
		tagScores = map[string]float64{}
	}

	if err := p.store.MenuItems.UpdateDerived(ctx, item.ID, embedding, tagScores); err != nil {
		log.Printf("failed to store derived data for menu item %s: %v", item.ID, err)
	}
}

// Release frees the worker pool. The pipeline must not be used afterwards.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
