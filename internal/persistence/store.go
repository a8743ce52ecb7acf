// Package persistence saves and restores system state as JSON files and
// imports menus from CSV. Load failures distinguish a missing file
// (ErrNotFound) from malformed content (ErrParse) so a calling session
// can retry or start fresh.
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"whatstoeat/internal/analytics"
	"whatstoeat/internal/catalog"
	"whatstoeat/internal/models"
	"whatstoeat/internal/preferences"
)

var (
	// ErrNotFound is returned when the requested file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrParse is returned when a file exists but its content is malformed.
	ErrParse = errors.New("malformed input")
)

// preferencesState is the on-disk shape of a preference model.
type preferencesState struct {
	History      []string           `json:"history"`
	Budget       *float64           `json:"budget,omitempty"`
	TokenWeights map[string]float64 `json:"token_weights"`
}

// SaveCatalog writes the catalog as a JSON array of meals.
func SaveCatalog(path string, c *catalog.Catalog) error {
	return writeJSON(path, c.Meals())
}

// LoadCatalog reads a catalog previously written by SaveCatalog. The
// meal sequence, including ratings, round-trips exactly.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	var meals []*models.Meal
	if err := readJSON(path, &meals); err != nil {
		return nil, err
	}
	return catalog.NewFromMeals(meals)
}

// SavePreferences writes a preference model as a JSON object.
func SavePreferences(path string, p *preferences.Preferences) error {
	return writeJSON(path, preferencesState{
		History:      p.History(),
		Budget:       p.Budget(),
		TokenWeights: p.Weights(),
	})
}

// LoadPreferences reads a preference model previously written by
// SavePreferences. Token weights are restored as saved, without a
// recompute, so state survives even when the catalog is absent.
func LoadPreferences(path string) (*preferences.Preferences, error) {
	var state preferencesState
	if err := readJSON(path, &state); err != nil {
		return nil, err
	}
	p, err := preferences.NewWithHistory(state.History, state.Budget)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	p.SetWeights(state.TokenWeights)
	return p, nil
}

// SaveReport exports an analytics report as JSON.
func SaveReport(path string, report *analytics.Report) error {
	return writeJSON(path, report)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	return nil
}
