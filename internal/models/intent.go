package models

// Preferences enumerates the structured user preference flags recognised
// by the goal parser. Unknown client keys are dropped during decoding
// rather than rejected.
type Preferences struct {
	BudgetFriendly bool     `json:"budget_friendly" mapstructure:"budget_friendly"`
	Dietary        string   `json:"dietary" mapstructure:"dietary"` // e.g. "vegan", "vegetarian", "gluten-free"
	Allergies      []string `json:"allergies" mapstructure:"allergies"`
	HealthFocus    bool     `json:"health_focus" mapstructure:"health_focus"`
	QuickService   bool     `json:"quick_service" mapstructure:"quick_service"`
	ShowMacros     bool     `json:"show_macros" mapstructure:"show_macros"`
	ContextHint    string   `json:"context_hint" mapstructure:"context_hint"` // e.g. "post-workout", "late dinner"
}

// FilterSet is the resolved set of hard constraints for one search. A zero
// value on any field means that constraint is not active.
type FilterSet struct {
	MaxPrice            float64  `json:"max_price,omitempty"`
	TargetPrice         float64  `json:"target_price,omitempty"`
	MaxDistanceKm       float64  `json:"max_distance_km,omitempty"`
	MaxCalories         float64  `json:"max_calories,omitempty"`
	MinProtein          float64  `json:"min_protein,omitempty"`
	MaxPrepTime         float64  `json:"max_prep_time,omitempty"` // minutes
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
	ExcludeAllergens    []string `json:"exclude_allergens,omitempty"`
}

// SearchIntent is the normalized form of one search request: the text the
// embedder sees, the resolved hard filters, and the tag confidences the
// inferencer produced for the intent text.
type SearchIntent struct {
	Query      string             `json:"query"`
	IntentText string             `json:"intent_text"`
	Filters    FilterSet          `json:"filters"`
	TagScores  map[string]float64 `json:"tag_scores"`
	Embedding  []float32          `json:"-"`
}
