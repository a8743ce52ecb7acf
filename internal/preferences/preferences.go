package preferences

import (
	"fmt"
	"strings"
	"sync"

	"whatstoeat/internal/catalog"
	"whatstoeat/internal/models"
)

// Preferences tracks a user's selection history and the token weights
// learned from it. Weights map case-folded flavor/diet tokens to values
// that sum to 1.0 whenever any historic id resolves in the catalog.
type Preferences struct {
	mu      sync.RWMutex
	history []string
	weights map[string]float64
	budget  *float64
}

// New creates an empty preference model with no budget.
func New() *Preferences {
	return &Preferences{weights: make(map[string]float64)}
}

// NewWithHistory creates a preference model seeded with a history and an
// optional budget. Pass a nil budget for "no ceiling".
func NewWithHistory(history []string, budget *float64) (*Preferences, error) {
	p := New()
	for _, id := range history {
		if err := p.AddToHistory(id); err != nil {
			return nil, err
		}
	}
	if budget != nil {
		if err := p.SetBudget(*budget); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AddToHistory appends a meal id to the selection history.
func (p *Preferences) AddToHistory(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: history id cannot be empty", models.ErrValidation)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = append(p.history, id)
	return nil
}

// History returns a copy of the selection history.
func (p *Preferences) History() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.history))
	copy(out, p.history)
	return out
}

// Recompute re-derives token weights from the current history. Each
// historic id that resolves in the catalog contributes exactly two
// case-folded tokens, its flavor and its diet; ids not found are skipped.
// Weights are counts normalized by the total token occurrences, so they
// sum to 1.0 unless nothing resolved, in which case the map is empty.
func (p *Preferences) Recompute(c *catalog.Catalog) {
	p.mu.Lock()
	defer p.mu.Unlock()

	counts := make(map[string]int)
	total := 0
	for _, id := range p.history {
		meal, err := c.Get(id)
		if err != nil {
			continue
		}
		for _, token := range []string{meal.FlavorToken(), meal.DietToken()} {
			if token == "" {
				continue
			}
			counts[token]++
			total++
		}
	}

	weights := make(map[string]float64, len(counts))
	if total > 0 {
		for token, n := range counts {
			weights[token] = float64(n) / float64(total)
		}
	}
	p.weights = weights
}

// Weights returns a copy of the learned token weights.
func (p *Preferences) Weights() map[string]float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]float64, len(p.weights))
	for k, v := range p.weights {
		out[k] = v
	}
	return out
}

// SetWeights replaces the learned weights, used when restoring saved state.
func (p *Preferences) SetWeights(weights map[string]float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.weights = make(map[string]float64, len(weights))
	for k, v := range weights {
		p.weights[k] = v
	}
}

// SetBudget sets the spending ceiling applied to candidate meals.
func (p *Preferences) SetBudget(budget float64) error {
	if budget < 0 {
		return fmt.Errorf("%w: budget must be non-negative", models.ErrValidation)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	b := budget
	p.budget = &b
	return nil
}

// ClearBudget removes the spending ceiling.
func (p *Preferences) ClearBudget() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.budget = nil
}

// Budget returns the current ceiling, or nil when unset.
func (p *Preferences) Budget() *float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.budget == nil {
		return nil
	}
	b := *p.budget
	return &b
}

// CheckBudget reports whether a price fits the budget. An unset budget
// admits every price.
func (p *Preferences) CheckBudget(price float64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.budget == nil || price <= *p.budget
}

// ResetHistory clears the selection history. Weights are left untouched
// until the next Recompute.
func (p *Preferences) ResetHistory() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = nil
}

// ResetWeights clears the learned weights without touching the history.
func (p *Preferences) ResetWeights() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.weights = make(map[string]float64)
}
