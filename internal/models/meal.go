package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is the base error for rejected field values. Every
// validation failure wraps it so callers can match with errors.Is.
var ErrValidation = errors.New("validation failed")

// Rating bounds for meals.
const (
	MinRating = 1
	MaxRating = 5
)

// Meal represents a single item on the menu
type Meal struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Price    float64 `json:"price" yaml:"price"`
	Calories int     `json:"calories" yaml:"calories"`
	Diet     string  `json:"diet" yaml:"diet"`
	Flavor   string  `json:"flavor" yaml:"flavor"`
	Ratings  []int   `json:"ratings" yaml:"ratings"`
}

// NewMeal creates a validated meal with no ratings.
func NewMeal(id, name string, price float64, calories int, diet, flavor string) (*Meal, error) {
	m := &Meal{
		ID:       strings.TrimSpace(id),
		Name:     Normalize(name),
		Price:    price,
		Calories: calories,
		Diet:     Normalize(diet),
		Flavor:   Normalize(flavor),
	}
	if err := ValidateMeal(m); err != nil {
		return nil, err
	}
	return m, nil
}

// ValidateMeal validates a meal record
func ValidateMeal(m *Meal) error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("%w: meal id is required", ErrValidation)
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: meal name is required", ErrValidation)
	}
	if m.Price < 0 {
		return fmt.Errorf("%w: meal price must be non-negative", ErrValidation)
	}
	if m.Calories < 0 {
		return fmt.Errorf("%w: meal calories must be non-negative", ErrValidation)
	}
	for _, r := range m.Ratings {
		if r < MinRating || r > MaxRating {
			return fmt.Errorf("%w: rating %d out of range [%d,%d]", ErrValidation, r, MinRating, MaxRating)
		}
	}
	return nil
}

// SetPrice updates the price, rejecting negative values.
func (m *Meal) SetPrice(price float64) error {
	if price < 0 {
		return fmt.Errorf("%w: meal price must be non-negative", ErrValidation)
	}
	m.Price = price
	return nil
}

// AddRating appends a rating in [1,5].
func (m *Meal) AddRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: rating %d out of range [%d,%d]", ErrValidation, rating, MinRating, MaxRating)
	}
	m.Ratings = append(m.Ratings, rating)
	return nil
}

// AverageRating returns the mean rating, or 0 with no ratings.
func (m *Meal) AverageRating() float64 {
	if len(m.Ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range m.Ratings {
		sum += r
	}
	return float64(sum) / float64(len(m.Ratings))
}

// FlavorToken returns the case-folded flavor token used for matching.
func (m *Meal) FlavorToken() string {
	return strings.ToLower(m.Flavor)
}

// DietToken returns the case-folded diet token used for matching.
func (m *Meal) DietToken() string {
	return strings.ToLower(m.Diet)
}

// Clone returns a deep copy, so callers never alias catalog-owned state.
func (m *Meal) Clone() *Meal {
	cp := *m
	if m.Ratings != nil {
		cp.Ratings = make([]int, len(m.Ratings))
		copy(cp.Ratings, m.Ratings)
	}
	return &cp
}

// Format returns a one-line human-readable description of the meal.
func (m *Meal) Format() string {
	return fmt.Sprintf("%s (id:%s) - $%.2f, %d kcal", m.Name, m.ID, m.Price, m.Calories)
}

// Normalize trims the ends of a string and collapses internal whitespace.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
