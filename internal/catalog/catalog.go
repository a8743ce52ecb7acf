package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"whatstoeat/internal/models"
)

var (
	// ErrDuplicateID is returned when an insert conflicts with an existing meal id.
	ErrDuplicateID = errors.New("duplicate meal id")
	// ErrNotFound is returned when no meal with the requested id exists.
	ErrNotFound = errors.New("meal not found")
)

// Catalog is an ordered collection of meals with unique ids. The catalog
// owns its records: queries hand out copies, and mutations go through the
// catalog so external code never aliases internal state.
//
// A single RWMutex guards all state. Writers are exclusive, readers may
// run concurrently with each other.
type Catalog struct {
	mu    sync.RWMutex
	meals []*models.Meal
	index map[string]int
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

// NewFromMeals creates a catalog from a batch of meals. The batch must not
// contain duplicate ids.
func NewFromMeals(meals []*models.Meal) (*Catalog, error) {
	c := New()
	if err := c.AddMany(meals); err != nil {
		return nil, err
	}
	return c, nil
}

// Add validates and appends a meal, preserving insertion order.
func (c *Catalog) Add(meal *models.Meal) error {
	if err := models.ValidateMeal(meal); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.index[meal.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateID, meal.ID)
	}
	c.index[meal.ID] = len(c.meals)
	c.meals = append(c.meals, meal.Clone())
	return nil
}

// AddMany appends meals in order, stopping at the first conflict.
func (c *Catalog) AddMany(meals []*models.Meal) error {
	for _, m := range meals {
		if err := c.Add(m); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes the meal with the given id and returns it.
func (c *Catalog) Remove(id string) (*models.Meal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	removed := c.meals[i]
	c.meals = append(c.meals[:i], c.meals[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.meals); j++ {
		c.index[c.meals[j].ID] = j
	}
	return removed, nil
}

// Get returns a copy of the meal with the given id.
func (c *Catalog) Get(id string) (*models.Meal, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return c.meals[i].Clone(), nil
}

// AddRating appends a rating to the meal with the given id.
func (c *Catalog) AddRating(id string, rating int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return c.meals[i].AddRating(rating)
}

// SetPrice updates the price of the meal with the given id.
func (c *Catalog) SetPrice(id string, price float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return c.meals[i].SetPrice(price)
}

// Meals returns a snapshot of all meals in insertion order. The snapshot
// is a deep copy, so it stays stable across later catalog mutations.
func (c *Catalog) Meals() []*models.Meal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*models.Meal, len(c.meals))
	for i, m := range c.meals {
		out[i] = m.Clone()
	}
	return out
}

// Len returns the number of meals in the catalog.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.meals)
}

// FilterByDiet returns meals whose diet contains the restriction,
// case-folded. Substring matching tolerates variants like "Gluten-Free"
// vs "gluten-free friendly".
func (c *Catalog) FilterByDiet(restriction string) []*models.Meal {
	key := strings.ToLower(strings.TrimSpace(restriction))
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*models.Meal
	for _, m := range c.meals {
		if strings.Contains(m.DietToken(), key) {
			out = append(out, m.Clone())
		}
	}
	return out
}

// FilterByPrice returns meals priced at or below maxPrice, in catalog order.
func (c *Catalog) FilterByPrice(maxPrice float64) []*models.Meal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*models.Meal
	for _, m := range c.meals {
		if m.Price <= maxPrice {
			out = append(out, m.Clone())
		}
	}
	return out
}

// AveragePrice returns the mean price across all meals, or 0 when empty.
func (c *Catalog) AveragePrice() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.meals) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range c.meals {
		sum += m.Price
	}
	return sum / float64(len(c.meals))
}

// CountVegetarian counts meals whose diet mentions "vegetarian".
func (c *Catalog) CountVegetarian() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for _, m := range c.meals {
		if strings.Contains(m.DietToken(), "vegetarian") {
			count++
		}
	}
	return count
}
