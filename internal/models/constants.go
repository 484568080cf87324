package models

const (
	ActionLike    = "like"
	ActionDislike = "dislike"
	ActionOrder   = "order"
	ActionSave    = "save"
	ActionView    = "view"
)

// ValidAction reports whether the feedback action is one the engine accepts.
func ValidAction(action string) bool {
	switch action {
	case ActionLike, ActionDislike, ActionOrder, ActionSave, ActionView:
		return true
	}
	return false
}

// DefaultTagVocabulary is the fixed label set the zero-shot tag
// inferencer scores against when none is configured.
var DefaultTagVocabulary = []string{
	"high protein",
	"low carb",
	"low sugar",
	"low calorie",
	"vegan",
	"vegetarian",
	"gluten-free",
	"dairy-free",
	"budget-friendly",
	"quick-service",
	"healthy",
	"comfort-food",
	"spicy",
	"breakfast",
	"dessert",
}
