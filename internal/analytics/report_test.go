package analytics

import (
	"errors"
	"testing"

	"whatstoeat/internal/catalog"
	"whatstoeat/internal/models"
)

func mustMeal(t *testing.T, id, name string, price float64, diet, flavor string, ratings ...int) *models.Meal {
	t.Helper()
	m, err := models.NewMeal(id, name, price, 500, diet, flavor)
	if err != nil {
		t.Fatalf("NewMeal(%q) returned error: %v", id, err)
	}
	for _, r := range ratings {
		m.AddRating(r)
	}
	return m
}

func TestGenerate(t *testing.T) {
	c := catalog.New()
	c.Add(mustMeal(t, "1", "Mild Bowl", 8.50, "regular", "Mild", 3))
	c.Add(mustMeal(t, "2", "Spicy Noodles", 10.00, "Gluten-Free", "spicy", 5, 5))
	c.Add(mustMeal(t, "3", "Fire Curry", 12.00, "regular", "spicy", 4))
	c.Add(mustMeal(t, "4", "Unrated Salad", 6.00, "vegetarian", "fresh"))

	report, err := Generate(c, 2)
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}

	if report.TotalMeals != 4 {
		t.Errorf("TotalMeals = %d, want 4", report.TotalMeals)
	}
	if report.AvgPrice != 9.125 {
		t.Errorf("AvgPrice = %v, want 9.125", report.AvgPrice)
	}
	if report.MinPrice != 6.00 || report.MaxPrice != 12.00 {
		t.Errorf("price range = [%v, %v], want [6, 12]", report.MinPrice, report.MaxPrice)
	}

	if len(report.TopRated) != 2 {
		t.Fatalf("TopRated has %d entries, want 2", len(report.TopRated))
	}
	if report.TopRated[0].ID != "2" || report.TopRated[1].ID != "3" {
		t.Errorf("TopRated order = [%s %s], want [2 3]", report.TopRated[0].ID, report.TopRated[1].ID)
	}

	// Flavor counts are case-folded.
	if report.FlavorCounts["spicy"] != 2 || report.FlavorCounts["mild"] != 1 || report.FlavorCounts["fresh"] != 1 {
		t.Errorf("FlavorCounts = %v", report.FlavorCounts)
	}
}

func TestGenerateTieBreakKeepsCatalogOrder(t *testing.T) {
	c := catalog.New()
	c.Add(mustMeal(t, "1", "First", 9, "regular", "mild", 4))
	c.Add(mustMeal(t, "2", "Second", 9, "regular", "mild", 4))

	report, err := Generate(c, 2)
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}
	if report.TopRated[0].ID != "1" || report.TopRated[1].ID != "2" {
		t.Errorf("TopRated tie order = [%s %s], want [1 2]",
			report.TopRated[0].ID, report.TopRated[1].ID)
	}
}

func TestGenerateEmptyCatalog(t *testing.T) {
	report, err := Generate(catalog.New(), 3)
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}
	if report.TotalMeals != 0 || report.AvgPrice != 0 || report.MinPrice != 0 || report.MaxPrice != 0 {
		t.Errorf("empty catalog report = %+v, want zeroed stats", report)
	}
	if len(report.TopRated) != 0 {
		t.Errorf("TopRated on empty catalog = %v, want empty", report.TopRated)
	}
}

func TestGenerateRejectsBadTopN(t *testing.T) {
	if _, err := Generate(catalog.New(), 0); !errors.Is(err, models.ErrValidation) {
		t.Errorf("Generate(topN=0) error = %v, want ErrValidation", err)
	}
}

func TestMetricsCollector(t *testing.T) {
	mc := NewMetricsCollector()
	if mc == nil {
		t.Fatal("NewMetricsCollector() returned nil")
	}
	if mc.Registry() == nil {
		t.Fatal("Registry() returned nil")
	}

	c := catalog.New()
	c.Add(mustMeal(t, "1", "Mild Bowl", 8.50, "vegetarian", "mild"))
	mc.ObserveCatalog(c)
	mc.RecordRecommendation("best")
	mc.RecordRating()
	mc.RecordImport(3, 1)

	families, err := mc.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() returned error: %v", err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"catalog_meals_total",
		"catalog_average_price_dollars",
		"catalog_vegetarian_meals_total",
		"recommendations_served_total",
		"ratings_recorded_total",
		"import_rows_total",
	} {
		if !names[want] {
			t.Errorf("metric %q not gathered", want)
		}
	}
}
