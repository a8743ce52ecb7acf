package persistence

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatstoeat/internal/analytics"
	"whatstoeat/internal/catalog"
	"whatstoeat/internal/models"
	"whatstoeat/internal/preferences"
)

func TestImportCSV(t *testing.T) {
	csvText := strings.Join([]string{
		"id,name,price,calories,diet,flavor",
		"1,Vegetarian Pasta,12.99,600,vegetarian,savory",
		"2,Chicken Burger,10.99,700,meat,savory",
		"3,Spicy Tofu Bowl,9.99,450.0,vegan,spicy",
	}, "\n")

	meals, rowErrs, err := ImportCSV(strings.NewReader(csvText))
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, meals, 3)

	assert.Equal(t, "1", meals[0].ID)
	assert.Equal(t, "Vegetarian Pasta", meals[0].Name)
	assert.Equal(t, 12.99, meals[0].Price)
	assert.Equal(t, 450, meals[2].Calories, "calories parse float-formatted values")
	assert.Empty(t, meals[0].Ratings, "imported meals start unrated")
}

func TestImportCSVPartialSuccess(t *testing.T) {
	csvText := strings.Join([]string{
		"id,name,price,calories,diet,flavor",
		"1,Good Meal,8.00,500,regular,mild",
		"2,Bad Price,not-a-number,500,regular,mild",
		",Missing ID,9.00,500,regular,mild",
		"4,Another Good Meal,7.50,400,vegan,spicy",
	}, "\n")

	meals, rowErrs, err := ImportCSV(strings.NewReader(csvText))
	require.NoError(t, err)
	require.Len(t, meals, 2, "good rows survive bad ones")
	require.Len(t, rowErrs, 2)

	// Row numbers count the header as row 1.
	assert.Equal(t, 3, rowErrs[0].Row)
	assert.Equal(t, 4, rowErrs[1].Row)
}

func TestImportCSVMissingColumn(t *testing.T) {
	csvText := "id,name,price,diet,flavor\n1,Pasta,9.50,regular,mild"

	_, _, err := ImportCSV(strings.NewReader(csvText))
	require.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "calories")
}

func TestImportCSVEmptyInput(t *testing.T) {
	meals, rowErrs, err := ImportCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, meals)
	assert.Empty(t, rowErrs)
}

func TestCatalogRoundTrip(t *testing.T) {
	c := catalog.New()
	m1, err := models.NewMeal("1", "Vegetarian Pasta", 12.99, 600, "vegetarian", "savory")
	require.NoError(t, err)
	require.NoError(t, m1.AddRating(5))
	require.NoError(t, m1.AddRating(4))
	m2, err := models.NewMeal("2", "Spicy Tofu Bowl", 9.99, 450, "vegan", "spicy")
	require.NoError(t, err)
	require.NoError(t, c.Add(m1))
	require.NoError(t, c.Add(m2))

	path := filepath.Join(t.TempDir(), "menu.json")
	require.NoError(t, SaveCatalog(path, c))

	loaded, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, c.Meals(), loaded.Meals(), "round-trip preserves order, fields, and ratings")
}

func TestPreferencesRoundTrip(t *testing.T) {
	budget := 15.0
	p, err := preferences.NewWithHistory([]string{"1", "1", "3"}, &budget)
	require.NoError(t, err)
	p.SetWeights(map[string]float64{"spicy": 0.5, "vegan": 0.5})

	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, SavePreferences(path, p))

	loaded, err := LoadPreferences(path)
	require.NoError(t, err)
	assert.Equal(t, p.History(), loaded.History())
	assert.Equal(t, p.Weights(), loaded.Weights())
	require.NotNil(t, loaded.Budget())
	assert.Equal(t, budget, *loaded.Budget())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorIs(t, err, ErrNotFound)

	_, err = LoadPreferences(filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadCatalog(path)
	require.ErrorIs(t, err, ErrParse)
	assert.NotErrorIs(t, err, ErrNotFound, "parse and not-found errors stay distinguishable")
}

func TestSaveReport(t *testing.T) {
	c := catalog.New()
	m, err := models.NewMeal("1", "Pasta", 10, 500, "regular", "mild")
	require.NoError(t, err)
	require.NoError(t, m.AddRating(4))
	require.NoError(t, c.Add(m))

	report, err := analytics.Generate(c, 3)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "reports", "analytics.json")
	require.NoError(t, SaveReport(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"total_meals\": 1")
	assert.Contains(t, string(data), "\"avg_rating\": 4")
}
