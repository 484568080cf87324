package factories

import (
	"math/rand"

	"github.com/lucsky/cuid"
	"github.com/plateful/platesearch/internal/models"
)

type MenuItemFactory struct{}

func (mf *MenuItemFactory) CreateMenuItem(restaurant *models.Restaurant) models.MenuItem {
	category := generateRandomCategory()
	name := generateRandomDishName(restaurant.Cuisines)
	return models.MenuItem{
		ID:           cuid.New(),
		RestaurantID: restaurant.ID,
		Name:         name,
		Description:  fake.Lorem().Sentence(10),
		Price:        priceForTier(restaurant.PriceTier),
		PrepTime:     fake.Float64(0, 5, 30),
		Category:     category,
		Nutrition:    generateNutrition(category),
		DietaryTags:  generateDietaryTags(),
		Allergens:    generateAllergens(),
		Popularity:   fake.Float64(2, 0, 100) / 100,
	}
}

func priceForTier(tier int) float64 {
	switch tier {
	case 1:
		return fake.Float64(2, 4, 12)
	case 2:
		return fake.Float64(2, 8, 20)
	case 3:
		return fake.Float64(2, 14, 35)
	default:
		return fake.Float64(2, 25, 60)
	}
}

func generateRandomCategory() string {
	categories := []string{"appetizer", "main course", "side dish", "dessert", "drink"}
	return categories[rand.Intn(len(categories))]
}

func generateNutrition(category string) models.NutritionFacts {
	switch category {
	case "dessert":
		return models.NutritionFacts{
			Calories: fake.Float64(0, 250, 700),
			Protein:  fake.Float64(0, 2, 10),
			Carbs:    fake.Float64(0, 30, 90),
			Fat:      fake.Float64(0, 10, 35),
			Sugar:    fake.Float64(0, 20, 60),
		}
	case "drink":
		return models.NutritionFacts{
			Calories: fake.Float64(0, 0, 300),
			Carbs:    fake.Float64(0, 0, 40),
			Sugar:    fake.Float64(0, 0, 35),
		}
	case "side dish", "appetizer":
		return models.NutritionFacts{
			Calories: fake.Float64(0, 100, 450),
			Protein:  fake.Float64(0, 2, 15),
			Carbs:    fake.Float64(0, 10, 50),
			Fat:      fake.Float64(0, 3, 20),
			Fiber:    fake.Float64(0, 0, 8),
			Sodium:   fake.Float64(0, 100, 900),
		}
	default:
		return models.NutritionFacts{
			Calories: fake.Float64(0, 350, 1200),
			Protein:  fake.Float64(0, 10, 55),
			Carbs:    fake.Float64(0, 20, 110),
			Fat:      fake.Float64(0, 8, 50),
			Fiber:    fake.Float64(0, 1, 12),
			Sodium:   fake.Float64(0, 300, 2000),
		}
	}
}

func generateDietaryTags() []string {
	allTags := []string{"vegan", "vegetarian", "gluten-free", "dairy-free", "halal", "kosher"}
	if rand.Intn(3) != 0 { // two thirds of items carry no dietary tag
		return nil
	}
	tagCount := rand.Intn(2) + 1
	tags := make([]string, 0, tagCount)
	for i := 0; i < tagCount; i++ {
		tags = append(tags, allTags[rand.Intn(len(allTags))])
	}
	return tags
}

func generateAllergens() []string {
	allAllergens := []string{"gluten", "dairy", "nuts", "peanuts", "shellfish", "soy", "egg", "fish", "sesame"}
	allergenCount := rand.Intn(4) // 0 to 3 allergens
	allergens := make([]string, 0, allergenCount)
	for i := 0; i < allergenCount; i++ {
		allergens = append(allergens, allAllergens[rand.Intn(len(allAllergens))])
	}
	return allergens
}

func generateRandomDishName(cuisines []string) string {
	dishes := map[string][]string{
		"Italian":       {"Margherita Pizza", "Spaghetti Carbonara", "Lasagna", "Tiramisu"},
		"Indian":        {"Chicken Tikka Masala", "Vegetable Curry", "Naan Bread", "Biryani"},
		"American":      {"Cheeseburger", "Hot Dog", "BBQ Ribs", "Apple Pie"},
		"Japanese":      {"Sushi Roll", "Ramen", "Tempura", "Miso Soup"},
		"Mexican":       {"Tacos", "Burrito", "Guacamole", "Quesadilla"},
		"Chinese":       {"Kung Pao Chicken", "Fried Rice", "Dumplings", "Mapo Tofu"},
		"Thai":          {"Pad Thai", "Green Curry", "Tom Yum Soup", "Mango Sticky Rice"},
		"Vietnamese":    {"Pho", "Banh Mi", "Spring Rolls", "Bun Cha"},
		"Greek":         {"Gyros", "Greek Salad", "Moussaka", "Baklava"},
		"French":        {"Coq au Vin", "Beef Bourguignon", "Ratatouille", "Crème Brûlée"},
		"Mediterranean": {"Falafel", "Hummus", "Tabbouleh", "Grilled Halloumi"},
		"Fast Food":     {"Classic Cheeseburger", "Chicken Nuggets", "Loaded Fries", "Milkshake"},
		"Street Food":   {"Chicken Shawarma", "Fish Tacos", "Corn Dog", "Bao Buns"},
		"Cafe":          {"Avocado Toast", "Club Sandwich", "Caesar Salad", "Granola Bowl"},
	}
	cuisine := cuisines[rand.Intn(len(cuisines))]
	if names, ok := dishes[cuisine]; ok {
		return names[rand.Intn(len(names))]
	}
	return "Special of the Day"
}
