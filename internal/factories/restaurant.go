package factories

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
	"github.com/plateful/platesearch/internal/models"
)

var fake = faker.New()

type RestaurantFactory struct {
	slugCache sync.Map // to track used slugs
}

func (rf *RestaurantFactory) CreateRestaurant(config *models.Config) *models.Restaurant {
	latRange := config.DefaultRadiusKm / 111.0
	lonRange := latRange / math.Cos(config.CityLat*math.Pi/180.0)

	latOffset := (rand.Float64()*2 - 1) * latRange
	lonOffset := (rand.Float64()*2 - 1) * lonRange

	name := fake.Company().Name()

	return &models.Restaurant{
		ID:       cuid.New(),
		Name:     name,
		SlugName: rf.createUniqueSlug(name),
		Phone:    fake.Phone().Number(),
		Address:  fake.Address().StreetAddress(),
		Town:     fake.Address().City(),
		Location: models.Location{
			Lat: config.CityLat + latOffset,
			Lon: config.CityLon + lonOffset,
		},
		Cuisines:     generateRandomCuisines(),
		Rating:       fake.Float64(1, 1, 5),
		TotalRatings: fake.Float64(0, 0, 1000),
		PriceTier:    fake.IntBetween(1, 4),
		AvgPrepTime:  fake.Float64(0, 10, 45),
		Hours:        generateOpeningHours(),
	}
}

func (rf *RestaurantFactory) createUniqueSlug(name string) string {
	base := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, base)

	slug := base
	counter := 1

	for {
		if _, exists := rf.slugCache.LoadOrStore(slug, true); !exists {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
		counter++
	}
}

func generateRandomCuisines() []string {
	allCuisines := []string{"Italian", "Cafe", "Indian", "American", "Japanese", "Mexican", "Chinese", "Thai", "Vietnamese", "Greek", "French", "Mediterranean", "Fast Food", "Street Food", "Homemade"}
	cuisineCount := rand.Intn(3) + 1 // 1 to 3 cuisines
	cuisines := make([]string, cuisineCount)
	for i := 0; i < cuisineCount; i++ {
		cuisines[i] = allCuisines[rand.Intn(len(allCuisines))]
	}
	return cuisines
}

func generateOpeningHours() models.OpeningHours {
	hours := make(models.OpeningHours, 7)
	open := (rand.Intn(5) + 7) * 60   // opens 07:00 to 11:00
	close := (rand.Intn(4) + 20) * 60 // closes 20:00 to 23:00
	for day := time.Sunday; day <= time.Saturday; day++ {
		// roughly one in ten restaurants closed on Mondays
		if day == time.Monday && rand.Intn(10) == 0 {
			continue
		}
		hours[day] = models.DayHours{OpenMinute: open, CloseMinute: close}
	}
	return hours
}
