package feedback

import (
	"context"
	"sort"
	"sync"

	"github.com/plateful/platesearch/internal/models"
)

// MemoryStore keeps impressions and feedback in memory. It backs tests
// and database-less deployments, and enforces the same idempotence rules
// as the postgres store.
type MemoryStore struct {
	mu          sync.RWMutex
	impressions map[string]models.Impression
	feedback    map[string]models.FeedbackEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		impressions: make(map[string]models.Impression),
		feedback:    make(map[string]models.FeedbackEvent),
	}
}

func (s *MemoryStore) WriteImpressions(ctx context.Context, impressions []models.Impression) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, impression := range impressions {
		if _, exists := s.impressions[impression.ID]; exists {
			continue
		}
		s.impressions[impression.ID] = impression
	}
	return nil
}

func (s *MemoryStore) WriteFeedback(ctx context.Context, event models.FeedbackEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.feedback[event.ClientEventID]; exists {
		return nil
	}
	s.feedback[event.ClientEventID] = event
	return nil
}

func (s *MemoryStore) RecentLikes(ctx context.Context, userID string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var likes []models.FeedbackEvent
	for _, event := range s.feedback {
		if event.UserID == userID && event.Action == models.ActionLike {
			likes = append(likes, event)
		}
	}
	sort.Slice(likes, func(i, j int) bool {
		return likes[i].CreatedAt.After(likes[j].CreatedAt)
	})
	if limit > 0 && len(likes) > limit {
		likes = likes[:limit]
	}
	itemIDs := make([]string, len(likes))
	for i, event := range likes {
		itemIDs[i] = event.ItemID
	}
	return itemIDs, nil
}

// Impressions returns a copy of all stored impressions, session-major and
// position-ordered. Test helper.
func (s *MemoryStore) Impressions() []models.Impression {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Impression, 0, len(s.impressions))
	for _, impression := range s.impressions {
		out = append(out, impression)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SessionID != out[j].SessionID {
			return out[i].SessionID < out[j].SessionID
		}
		return out[i].Position < out[j].Position
	})
	return out
}

// FeedbackCount returns the number of stored feedback events. Test helper.
func (s *MemoryStore) FeedbackCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.feedback)
}
