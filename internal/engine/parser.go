package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/plateful/platesearch/internal/models"
)

// GoalParser turns a free-text query plus structured preferences into a
// normalized SearchIntent. Structured preferences always win over signals
// inferred from the query text.
type GoalParser struct {
	defaultLocation models.Location
	quickPrepTime   float64
}

func NewGoalParser(defaultLocation models.Location) *GoalParser {
	return &GoalParser{
		defaultLocation: defaultLocation,
		quickPrepTime:   20, // minutes
	}
}

var priceSignalRe = regexp.MustCompile(`(?i)(?:under|below|less than|max)\s*\$?\s*(\d+(?:\.\d+)?)`)

// Parse resolves the request into an intent. The second return value is
// the location to search from, and the third reports that the request
// location was malformed and the configured default was substituted.
func (p *GoalParser) Parse(req *models.SearchRequest) (*models.SearchIntent, models.Location, bool) {
	intent := &models.SearchIntent{
		Query:     strings.TrimSpace(req.Query),
		Filters:   req.Filters,
		TagScores: map[string]float64{},
	}

	phrases := []string{intent.Query}
	prefs := req.Preferences

	if prefs.BudgetFriendly {
		phrases = append(phrases, "affordable")
	}
	if prefs.HealthFocus {
		phrases = append(phrases, "healthy", "nutritious")
	}
	if prefs.QuickService {
		phrases = append(phrases, "quick")
		if intent.Filters.MaxPrepTime == 0 {
			intent.Filters.MaxPrepTime = p.quickPrepTime
		}
	}
	if prefs.Dietary != "" {
		phrases = append(phrases, prefs.Dietary)
		if !containsString(intent.Filters.DietaryRestrictions, prefs.Dietary) {
			intent.Filters.DietaryRestrictions = append(intent.Filters.DietaryRestrictions, prefs.Dietary)
		}
	}
	for _, allergen := range prefs.Allergies {
		if !containsString(intent.Filters.ExcludeAllergens, allergen) {
			intent.Filters.ExcludeAllergens = append(intent.Filters.ExcludeAllergens, allergen)
		}
	}
	if prefs.ContextHint != "" {
		phrases = append(phrases, prefs.ContextHint)
	}

	// Price signal from free text applies only when no explicit max_price
	// was given; explicit filters take precedence over inferred ones.
	if intent.Filters.MaxPrice == 0 {
		if m := priceSignalRe.FindStringSubmatch(intent.Query); m != nil {
			if price, err := strconv.ParseFloat(m[1], 64); err == nil && price > 0 {
				intent.Filters.MaxPrice = price
			}
		}
	}

	intent.IntentText = joinNonEmpty(phrases)

	location := req.Location
	usedDefault := false
	if !location.Valid() {
		location = p.defaultLocation
		usedDefault = true
	}
	return intent, location, usedDefault
}

func joinNonEmpty(parts []string) string {
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, " ")
}

func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
