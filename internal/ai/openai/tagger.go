package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/plateful/platesearch/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

const taggerSystemPrompt = `You are a zero-shot food classifier. Given a text
describing a dish or a food craving, score how well each of the provided
labels applies to it. Respond with a single JSON object mapping every label
to a confidence between 0.0 and 1.0. Labels are independent; several may
score high at once. Respond with JSON only.`

// TagInferencer implements ai.TagInferencer with an OpenAI-compatible chat
// endpoint in JSON mode.
type TagInferencer struct {
	client llms.Model
}

func NewTagInferencer(cfg models.AIConfig) (*TagInferencer, error) {
	client, err := openai.New(
		openai.WithBaseURL(cfg.ClassifierHost),
		openai.WithToken("none"),
		openai.WithModel(cfg.ClassifierModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier client: %w", err)
	}
	return &TagInferencer{client: client}, nil
}

func (t *TagInferencer) InferTags(ctx context.Context, text string, labels []string) (map[string]float64, error) {
	content := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(taggerSystemPrompt)},
		},
		{
			Role: schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(
				fmt.Sprintf("Labels: %s\n\nText: %s", strings.Join(labels, ", "), text),
			)},
		},
	}

	// Retry malformed JSON a couple of times before giving up
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := t.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			return nil, fmt.Errorf("classifier call failed: %w", err)
		}
		if len(response.Choices) < 1 {
			return map[string]float64{}, nil
		}

		raw := map[string]float64{}
		if err := json.Unmarshal([]byte(response.Choices[0].Content), &raw); err != nil {
			lastErr = err
			log.Printf("tag inference returned malformed JSON (attempt %d): %v", attempt+1, err)
			continue
		}
		return clampToVocabulary(raw, labels), nil
	}
	return nil, fmt.Errorf("classifier returned malformed JSON: %w", lastErr)
}

// clampToVocabulary drops labels outside the vocabulary and clamps
// confidences into [0,1].
func clampToVocabulary(raw map[string]float64, labels []string) map[string]float64 {
	out := make(map[string]float64, len(labels))
	for _, label := range labels {
		conf, ok := raw[label]
		if !ok {
			continue
		}
		if conf < 0 {
			conf = 0
		}
		if conf > 1 {
			conf = 1
		}
		if conf > 0 {
			out[label] = conf
		}
	}
	return out
}
