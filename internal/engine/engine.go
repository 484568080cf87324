package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/lucsky/cuid"
	"github.com/plateful/platesearch/internal/ai"
	"github.com/plateful/platesearch/internal/catalog"
	"github.com/plateful/platesearch/internal/feedback"
	"github.com/plateful/platesearch/internal/models"
)

// searchState tracks one request through the pipeline. Transitions only
// move forward; failed and responded are terminal.
type searchState int

const (
	stateReceived searchState = iota
	stateFiltering
	stateScoring
	stateRanking
	stateLogged
	stateResponded
	stateFailed
)

func (s searchState) String() string {
	switch s {
	case stateReceived:
		return "received"
	case stateFiltering:
		return "filtering"
	case stateScoring:
		return "scoring"
	case stateRanking:
		return "ranking"
	case stateLogged:
		return "logged"
	case stateResponded:
		return "responded"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

type search struct {
	state searchState
}

func (s *search) advance(next searchState) {
	if next <= s.state {
		panic(fmt.Sprintf("search state moved backwards: %s -> %s", s.state, next))
	}
	s.state = next
}

// Engine sequences parsing, retrieval, scoring, ranking, explanation and
// impression logging for each search request. Stateless across requests;
// safe for concurrent use.
type Engine struct {
	cfg       *models.Config
	store     *catalog.Store
	embedder  ai.Embedder
	tagger    ai.TagInferencer
	parser    *GoalParser
	retriever *Retriever
	scorer    *Scorer
	logger    *feedback.Logger
	now       func() time.Time
}

func New(cfg *models.Config, store *catalog.Store, provider ai.Provider, logger *feedback.Logger) (*Engine, error) {
	scorer, err := NewScorer(cfg.Weights, cfg.ScoringWorkers, cfg.DefaultRadiusKm)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:       cfg,
		store:     store,
		embedder:  provider.Embedder(),
		tagger:    provider.TagInferencer(),
		parser:    NewGoalParser(cfg.DefaultLocation()),
		retriever: NewRetriever(store, cfg.MaxCandidates),
		scorer:    scorer,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Search runs one ranked search. Only invalid requests fail hard; every
// soft dependency failure degrades the response and is reported in its
// metadata. When ctx is cancelled, scoring stops and nothing is logged.
func (e *Engine) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	s := &search{state: stateReceived}

	if err := validateRequest(req); err != nil {
		s.advance(stateFailed)
		return nil, err
	}

	// Session identity is fixed up front so every downstream artifact
	// shares it.
	session := models.SearchSession{
		ID:        cuid.New(),
		UserID:    req.UserID,
		Query:     req.Query,
		Location:  req.Location,
		CreatedAt: e.now().UTC(),
	}

	response := &models.SearchResponse{
		SessionID:    session.ID,
		Items:        []models.RankedItem{},
		Explanations: map[string]models.Explanation{},
	}

	intent, location, usedDefault := e.parser.Parse(req)
	if usedDefault {
		degrade(response, DegradedDefaultLocation)
	}
	session.Location = location

	e.resolveIntent(ctx, intent, response)

	s.advance(stateFiltering)
	candidates, err := e.retriever.Retrieve(ctx, intent.Filters, location, e.now())
	if err != nil {
		s.advance(stateFailed)
		return nil, err
	}
	if len(candidates) == 0 {
		// An empty candidate set is a valid, empty response
		s.advance(stateResponded)
		return response, nil
	}

	recentLikes := e.recentLikeEmbeddings(ctx, req.UserID)

	s.advance(stateScoring)
	scored, err := e.scorer.Score(ctx, intent, candidates, recentLikes)
	if err != nil {
		if ctx.Err() != nil {
			s.advance(stateFailed)
			return nil, ctx.Err()
		}
		s.advance(stateFailed)
		return nil, fmt.Errorf("%w: %v", ErrScoring, err)
	}

	s.advance(stateRanking)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	limit := req.Limit
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	if limit <= 0 {
		limit = 20
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}

	// A cancelled request gets no impressions
	if ctx.Err() != nil {
		s.advance(stateFailed)
		return nil, ctx.Err()
	}

	if err := e.logger.LogImpressions(ctx, session, scored); err != nil {
		log.Printf("impression logging degraded for session %s: %v", session.ID, err)
		degrade(response, DegradedImpressionLog)
	}
	s.advance(stateLogged)

	response.Items = make([]models.RankedItem, len(scored))
	for i, sc := range scored {
		response.Items[i] = models.RankedItem{
			Item:       sc.Item,
			Restaurant: sc.Restaurant,
			DistanceKm: sc.DistanceKm,
			Score:      sc.Score,
		}
		response.Explanations[sc.Item.ID] = Explain(sc, intent.TagScores)
	}
	response.Total = len(response.Items)

	s.advance(stateResponded)
	return response, nil
}

// resolveIntent fills the intent's embedding and tag scores, degrading to
// neutral values when either model call fails or times out.
func (e *Engine) resolveIntent(ctx context.Context, intent *models.SearchIntent, response *models.SearchResponse) {
	timeout := e.cfg.AI.InferenceTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	embedCtx, cancel := context.WithTimeout(ctx, timeout)
	embedding, err := e.embedder.EmbedText(embedCtx, intent.IntentText)
	cancel()
	if err != nil {
		log.Printf("intent embedding unavailable, similarity degrades to 0: %v", err)
		degrade(response, DegradedEmbedding)
	} else {
		intent.Embedding = embedding
	}

	tagCtx, cancel := context.WithTimeout(ctx, timeout)
	tagScores, err := e.tagger.InferTags(tagCtx, intent.IntentText, e.cfg.TagLabels())
	cancel()
	if err != nil {
		log.Printf("tag inference unavailable, tag match degrades to 0: %v", err)
		degrade(response, DegradedTagInference)
		return
	}
	intent.TagScores = tagScores
}

// recentLikeEmbeddings maps the user's latest liked items to their
// embeddings. History failures cost the boost, never the search.
func (e *Engine) recentLikeEmbeddings(ctx context.Context, userID string) [][]float32 {
	if userID == "" {
		return nil
	}
	itemIDs, err := e.logger.RecentLikes(ctx, userID, e.cfg.RecentLikes)
	if err != nil {
		log.Printf("failed to load recent likes for user %s: %v", userID, err)
		return nil
	}
	var embeddings [][]float32
	for _, itemID := range itemIDs {
		item, err := e.store.MenuItems.GetByID(ctx, itemID)
		if err != nil || len(item.Embedding) == 0 {
			continue
		}
		embeddings = append(embeddings, item.Embedding)
	}
	return embeddings
}

// SubmitFeedback validates and enqueues a feedback event from the UI
// layer.
func (e *Engine) SubmitFeedback(ctx context.Context, event models.FeedbackEvent) error {
	if event.ClientEventID == "" {
		return invalidRequest("client_event_id", "required")
	}
	if event.ItemID == "" {
		return invalidRequest("item_id", "required")
	}
	if !models.ValidAction(event.Action) {
		return invalidRequest("action", fmt.Sprintf("unknown action %q", event.Action))
	}
	return e.logger.LogFeedback(event)
}

func validateRequest(req *models.SearchRequest) error {
	if req == nil {
		return invalidRequest("request", "missing body")
	}
	if req.Filters.MaxPrice < 0 {
		return invalidRequest("filters.max_price", "must not be negative")
	}
	if req.Filters.MaxDistanceKm < 0 {
		return invalidRequest("filters.max_distance_km", "must not be negative")
	}
	if req.Filters.MinProtein < 0 {
		return invalidRequest("filters.min_protein", "must not be negative")
	}
	if req.Limit < 0 {
		return invalidRequest("limit", "must not be negative")
	}
	return nil
}

func degrade(response *models.SearchResponse, reason string) {
	response.Degraded = true
	for _, existing := range response.DegradedReasons {
		if existing == reason {
			return
		}
	}
	response.DegradedReasons = append(response.DegradedReasons, reason)
}

// Close releases the scoring worker pool.
func (e *Engine) Close() {
	e.scorer.Release()
}
