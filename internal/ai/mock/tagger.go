package mock

import (
	"context"
	"strings"
)

// TagInferencer is a deterministic keyword matcher standing in for the
// zero-shot classifier. A label scores 0.9 when all of its words appear in
// the text, 0 otherwise. Override InferTagsFunc for custom behavior.
type TagInferencer struct {
	InferTagsFunc func(ctx context.Context, text string, labels []string) (map[string]float64, error)
}

func NewTagInferencer() *TagInferencer {
	return &TagInferencer{}
}

func (m *TagInferencer) InferTags(ctx context.Context, text string, labels []string) (map[string]float64, error) {
	if m.InferTagsFunc != nil {
		return m.InferTagsFunc(ctx, text, labels)
	}

	lower := strings.ToLower(text)
	scores := make(map[string]float64)
	for _, label := range labels {
		matched := true
		for _, word := range strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
			return r == ' ' || r == '-'
		}) {
			if !strings.Contains(lower, word) {
				matched = false
				break
			}
		}
		if matched {
			scores[label] = 0.9
		}
	}
	return scores, nil
}
