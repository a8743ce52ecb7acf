package analytics

import (
	"fmt"
	"sort"

	"whatstoeat/internal/catalog"
	"whatstoeat/internal/models"
)

// RatedMeal is one entry in the top-rated listing.
type RatedMeal struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	AvgRating float64 `json:"avg_rating"`
}

// Report summarizes a catalog snapshot. MinPrice and MaxPrice are 0 on an
// empty catalog; check TotalMeals to tell "empty" from "free meals".
type Report struct {
	TopRated     []RatedMeal    `json:"top_rated"`
	AvgPrice     float64        `json:"avg_price"`
	MinPrice     float64        `json:"min_price"`
	MaxPrice     float64        `json:"max_price"`
	FlavorCounts map[string]int `json:"flavor_counts"`
	TotalMeals   int            `json:"total_meals"`
}

// Generate builds a report over a catalog snapshot. TopRated holds the
// topN meals with at least one rating, ordered by average rating
// descending with ties keeping catalog order.
func Generate(c *catalog.Catalog, topN int) (*Report, error) {
	if topN < 1 {
		return nil, fmt.Errorf("%w: topN must be at least 1", models.ErrValidation)
	}

	meals := c.Meals()
	report := &Report{
		FlavorCounts: make(map[string]int),
		TotalMeals:   len(meals),
		AvgPrice:     c.AveragePrice(),
	}

	var rated []RatedMeal
	for i, m := range meals {
		if i == 0 || m.Price < report.MinPrice {
			report.MinPrice = m.Price
		}
		if i == 0 || m.Price > report.MaxPrice {
			report.MaxPrice = m.Price
		}
		if token := m.FlavorToken(); token != "" {
			report.FlavorCounts[token]++
		}
		if avg := m.AverageRating(); avg > 0 {
			rated = append(rated, RatedMeal{ID: m.ID, Name: m.Name, AvgRating: avg})
		}
	}

	sort.SliceStable(rated, func(i, j int) bool {
		return rated[i].AvgRating > rated[j].AvgRating
	})
	if len(rated) > topN {
		rated = rated[:topN]
	}
	report.TopRated = rated
	return report, nil
}
