package models

import "time"

// OpeningHours holds open/close times per weekday as minutes since
// midnight. A missing weekday means closed all day.
type OpeningHours map[time.Weekday]DayHours

type DayHours struct {
	OpenMinute  int `json:"open"`
	CloseMinute int `json:"close"`
}

type Restaurant struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	SlugName     string       `json:"slug_name"`
	Phone        string       `json:"phone"`
	Address      string       `json:"address"`
	Town         string       `json:"town"`
	Location     Location     `json:"location"`
	Cuisines     []string     `json:"cuisines"`
	Rating       float64      `json:"rating"`
	TotalRatings float64      `json:"total_ratings"`
	PriceTier    int          `json:"price_tier"` // 1 (cheap) to 4 (expensive)
	AvgPrepTime  float64      `json:"avg_prep_time"` // Average preparation time in minutes
	Hours        OpeningHours `json:"hours"`
}

// OpenAt reports whether the restaurant is open at t. Restaurants with no
// recorded hours are treated as always open rather than always closed.
func (r *Restaurant) OpenAt(t time.Time) bool {
	if len(r.Hours) == 0 {
		return true
	}
	day, ok := r.Hours[t.Weekday()]
	if !ok {
		return false
	}
	minute := t.Hour()*60 + t.Minute()
	if day.CloseMinute < day.OpenMinute {
		// Closes past midnight
		return minute >= day.OpenMinute || minute < day.CloseMinute
	}
	return minute >= day.OpenMinute && minute < day.CloseMinute
}
