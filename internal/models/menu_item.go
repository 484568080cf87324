package models

type NutritionFacts struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber,omitempty"`
	Sugar    float64 `json:"sugar,omitempty"`
	Sodium   float64 `json:"sodium,omitempty"`
}

// MenuItem is immutable once ingested; Embedding and TagScores are
// precomputed at ingestion time and only refreshed when Name or
// Description changes.
type MenuItem struct {
	ID           string             `json:"id"`
	RestaurantID string             `json:"restaurant_id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Price        float64            `json:"price"`
	PrepTime     float64            `json:"prep_time"` // Preparation time in minutes
	Category     string             `json:"category"`
	Nutrition    NutritionFacts     `json:"nutrition"`
	DietaryTags  []string           `json:"dietary_tags"`
	Allergens    []string           `json:"allergens"`
	Popularity   float64            `json:"popularity"`
	Embedding    []float32          `json:"embedding,omitempty"`
	TagScores    map[string]float64 `json:"tag_scores,omitempty"`
}

// EmbeddingText is the text the embedder and tag inferencer see for this item.
func (m *MenuItem) EmbeddingText() string {
	if m.Description == "" {
		return m.Name
	}
	return m.Name + ". " + m.Description
}

// HasDietaryTag reports whether the item carries the given dietary tag.
func (m *MenuItem) HasDietaryTag(tag string) bool {
	for _, t := range m.DietaryTags {
		if t == tag {
			return true
		}
	}
	return false
}

// ContainsAllergen reports whether the item contains the given allergen.
func (m *MenuItem) ContainsAllergen(allergen string) bool {
	for _, a := range m.Allergens {
		if a == allergen {
			return true
		}
	}
	return false
}
