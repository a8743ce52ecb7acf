package catalog

import (
	"errors"
	"testing"

	"whatstoeat/internal/models"
)

func mustMeal(t *testing.T, id, name string, price float64, diet, flavor string) *models.Meal {
	t.Helper()
	m, err := models.NewMeal(id, name, price, 500, diet, flavor)
	if err != nil {
		t.Fatalf("NewMeal(%q) returned error: %v", id, err)
	}
	return m
}

func sampleCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := New()
	meals := []*models.Meal{
		mustMeal(t, "1", "Mild Bowl", 8.50, "regular", "mild"),
		mustMeal(t, "2", "Spicy Noodles", 10.00, "Gluten-Free", "spicy"),
		mustMeal(t, "3", "Tofu Curry", 9.00, "vegetarian", "spicy"),
	}
	if err := c.AddMany(meals); err != nil {
		t.Fatalf("AddMany() returned error: %v", err)
	}
	return c
}

func TestAddRejectsDuplicateID(t *testing.T) {
	c := sampleCatalog(t)
	err := c.Add(mustMeal(t, "1", "Impostor", 5, "regular", "mild"))
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Add() duplicate error = %v, want ErrDuplicateID", err)
	}
	if c.Len() != 3 {
		t.Errorf("Len() after rejected add = %d, want 3", c.Len())
	}
}

func TestGetAndRemove(t *testing.T) {
	c := sampleCatalog(t)

	m, err := c.Get("2")
	if err != nil {
		t.Fatalf("Get(2) returned error: %v", err)
	}
	if m.Name != "Spicy Noodles" {
		t.Errorf("Get(2) name = %q, want %q", m.Name, "Spicy Noodles")
	}

	removed, err := c.Remove("2")
	if err != nil {
		t.Fatalf("Remove(2) returned error: %v", err)
	}
	if removed.ID != "2" {
		t.Errorf("Remove(2) returned id %q", removed.ID)
	}
	if _, err := c.Get("2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(2) after remove error = %v, want ErrNotFound", err)
	}
	if _, err := c.Remove("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove(missing) error = %v, want ErrNotFound", err)
	}

	// Insertion order survives removal.
	ids := []string{}
	for _, m := range c.Meals() {
		ids = append(ids, m.ID)
	}
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "3" {
		t.Errorf("Meals() order after removal = %v, want [1 3]", ids)
	}
}

func TestFilterByDietSubstring(t *testing.T) {
	c := sampleCatalog(t)

	matches := c.FilterByDiet("gluten-free")
	if len(matches) != 1 || matches[0].ID != "2" {
		t.Fatalf("FilterByDiet(gluten-free) = %v, want meal 2 only", matches)
	}

	// Substring matching: "veg" matches "vegetarian".
	matches = c.FilterByDiet("veg")
	if len(matches) != 1 || matches[0].ID != "3" {
		t.Fatalf("FilterByDiet(veg) = %v, want meal 3 only", matches)
	}
}

func TestFilterByPrice(t *testing.T) {
	c := sampleCatalog(t)

	matches := c.FilterByPrice(9.00)
	if len(matches) != 2 {
		t.Fatalf("FilterByPrice(9.00) returned %d meals, want 2", len(matches))
	}
	if matches[0].ID != "1" || matches[1].ID != "3" {
		t.Errorf("FilterByPrice(9.00) order = [%s %s], want [1 3]", matches[0].ID, matches[1].ID)
	}

	// At the catalog's max price, everything qualifies.
	if got := len(c.FilterByPrice(10.00)); got != 3 {
		t.Errorf("FilterByPrice(10.00) returned %d meals, want 3", got)
	}
}

func TestAveragePrice(t *testing.T) {
	c := New()
	if got := c.AveragePrice(); got != 0 {
		t.Errorf("AveragePrice() on empty catalog = %v, want 0", got)
	}

	c.Add(mustMeal(t, "1", "Mild Bowl", 8.50, "regular", "mild"))
	c.Add(mustMeal(t, "2", "Spicy Noodles", 10.00, "Gluten-Free", "spicy"))
	if got := c.AveragePrice(); got != 9.25 {
		t.Errorf("AveragePrice() = %v, want 9.25", got)
	}
}

func TestCountVegetarian(t *testing.T) {
	c := sampleCatalog(t)
	if got := c.CountVegetarian(); got != 1 {
		t.Errorf("CountVegetarian() = %d, want 1", got)
	}
}

func TestMealsSnapshotIsStable(t *testing.T) {
	c := sampleCatalog(t)

	snapshot := c.Meals()
	if _, err := c.Remove("1"); err != nil {
		t.Fatalf("Remove(1) returned error: %v", err)
	}
	if err := c.AddRating("3", 5); err != nil {
		t.Fatalf("AddRating(3) returned error: %v", err)
	}

	if len(snapshot) != 3 {
		t.Errorf("snapshot length changed to %d after mutation", len(snapshot))
	}
	if len(snapshot[2].Ratings) != 0 {
		t.Errorf("snapshot meal ratings mutated: %v", snapshot[2].Ratings)
	}
}

func TestAddRatingThroughCatalog(t *testing.T) {
	c := sampleCatalog(t)

	if err := c.AddRating("1", 4); err != nil {
		t.Fatalf("AddRating(1, 4) returned error: %v", err)
	}
	if err := c.AddRating("1", 9); !errors.Is(err, models.ErrValidation) {
		t.Errorf("AddRating(1, 9) error = %v, want ErrValidation", err)
	}
	if err := c.AddRating("missing", 4); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddRating(missing) error = %v, want ErrNotFound", err)
	}

	m, _ := c.Get("1")
	if got := m.AverageRating(); got != 4 {
		t.Errorf("AverageRating() = %v, want 4", got)
	}
}

func TestSetPriceThroughCatalog(t *testing.T) {
	c := sampleCatalog(t)

	if err := c.SetPrice("1", 11.25); err != nil {
		t.Fatalf("SetPrice(1) returned error: %v", err)
	}
	if err := c.SetPrice("1", -2); !errors.Is(err, models.ErrValidation) {
		t.Errorf("SetPrice(1, -2) error = %v, want ErrValidation", err)
	}
	m, _ := c.Get("1")
	if m.Price != 11.25 {
		t.Errorf("Price = %v, want 11.25", m.Price)
	}
}
