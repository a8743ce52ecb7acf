package recommend

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"whatstoeat/internal/catalog"
	"whatstoeat/internal/models"
)

var (
	// ErrInvalidStrategy is returned for an unrecognized strategy name.
	ErrInvalidStrategy = errors.New("invalid recommendation strategy")
	// ErrNoMatch is returned when no candidate satisfies a flavor/budget query.
	ErrNoMatch = errors.New("no matching meal")
)

// Strategy selects how candidates are ranked and picked.
type Strategy string

const (
	// StrategyBest ranks every candidate by relevance score, deterministically.
	StrategyBest Strategy = "best"
	// StrategyRandom samples uniformly from the in-budget candidates.
	StrategyRandom Strategy = "random"
	// StrategyHybrid samples without replacement, weighted by relevance score.
	StrategyHybrid Strategy = "hybrid"
)

// Scoring constants. Token weights live in [0,1] while average ratings
// live in [0,5]; scaling the token component by tokenScale puts both on a
// comparable 0-5 range. budgetBonusScale caps the small bonus granted to
// meals priced close to (but within) the budget. Tunable, not derived.
const (
	tokenScale       = 5.0
	budgetBonusScale = 0.5
)

// Engine scores and selects meals from a catalog. The random source is
// injected so randomized strategies are reproducible under test; a mutex
// serializes draws since rand.Rand is not safe for concurrent use.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates an engine backed by the given random source.
func New(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

// Score computes the relevance of a meal under the given token weights
// and optional budget (nil means unconstrained).
//
// The score combines the preference match (weights of the meal's flavor
// and diet tokens, scaled by tokenScale), the average rating, and a small
// proximity bonus for meals close to the budget from below. A meal priced
// over the budget scores negative infinity: it stays in the candidate
// pool but can never reach the top of a ranking, which degrades
// gracefully when too few in-budget meals exist.
func (e *Engine) Score(meal *models.Meal, weights map[string]float64, budget *float64) float64 {
	if budget != nil && meal.Price > *budget {
		return math.Inf(-1)
	}
	tokenScore := weights[meal.FlavorToken()] + weights[meal.DietToken()]
	score := tokenScore*tokenScale + meal.AverageRating()
	if budget != nil && *budget > 0 {
		// Slight preference for using the budget rather than undershooting it.
		proximity := 1 - (*budget-meal.Price)/math.Max(1, *budget)
		if proximity > 0 {
			score += proximity * budgetBonusScale
		}
	}
	return score
}

// Recommend returns up to topK meals from the catalog under the chosen
// strategy. An empty catalog yields an empty slice rather than an error,
// as does a budget that excludes every candidate under the random and
// hybrid strategies.
func (e *Engine) Recommend(c *catalog.Catalog, weights map[string]float64, budget *float64, topK int, strategy Strategy) ([]*models.Meal, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: topK must be at least 1", models.ErrValidation)
	}
	candidates := c.Meals()

	switch strategy {
	case StrategyBest:
		return e.pickBest(candidates, weights, budget, topK), nil
	case StrategyRandom:
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.pickRandom(candidates, budget, topK), nil
	case StrategyHybrid:
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.pickHybrid(candidates, weights, budget, topK), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStrategy, strategy)
	}
}

// pickBest sorts candidates by score descending. The sort is stable with
// catalog order as the tie-break, so identical inputs always produce the
// same output sequence.
func (e *Engine) pickBest(candidates []*models.Meal, weights map[string]float64, budget *float64, topK int) []*models.Meal {
	scored := make([]scoredMeal, len(candidates))
	for i, m := range candidates {
		scored[i] = scoredMeal{meal: m, score: e.Score(m, weights, budget)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if topK > len(scored) {
		topK = len(scored)
	}
	// Over-budget meals sort last with -Inf, so they only surface when the
	// in-budget pool cannot fill topK.
	out := make([]*models.Meal, topK)
	for i := range out {
		out[i] = scored[i].meal
	}
	return out
}

// pickRandom samples topK distinct in-budget candidates uniformly.
// Over-budget meals are excluded outright rather than scored low.
func (e *Engine) pickRandom(candidates []*models.Meal, budget *float64, topK int) []*models.Meal {
	pool := make([]*models.Meal, 0, len(candidates))
	for _, m := range candidates {
		if budget == nil || m.Price <= *budget {
			pool = append(pool, m)
		}
	}
	if len(pool) <= topK {
		return pool
	}
	out := make([]*models.Meal, 0, topK)
	for len(out) < topK {
		i := e.rng.Intn(len(pool))
		out = append(out, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}
	return out
}

// pickHybrid performs score-weighted sampling without replacement:
// non-negative scores are normalized into a categorical distribution and
// topK candidates are drawn from it. When every usable score is zero the
// draw falls back to uniform over the remaining pool.
func (e *Engine) pickHybrid(candidates []*models.Meal, weights map[string]float64, budget *float64, topK int) []*models.Meal {
	type weighted struct {
		meal  *models.Meal
		score float64
	}
	pool := make([]weighted, 0, len(candidates))
	for _, m := range candidates {
		s := e.Score(m, weights, budget)
		if s < 0 {
			continue
		}
		pool = append(pool, weighted{meal: m, score: s})
	}

	out := make([]*models.Meal, 0, topK)
	for len(out) < topK && len(pool) > 0 {
		total := 0.0
		for _, w := range pool {
			total += w.score
		}
		var pick int
		if total > 0 {
			r := e.rng.Float64() * total
			acc := 0.0
			pick = len(pool) - 1
			for i, w := range pool {
				acc += w.score
				if r < acc {
					pick = i
					break
				}
			}
		} else {
			pick = e.rng.Intn(len(pool))
		}
		out = append(out, pool[pick].meal)
		pool = append(pool[:pick], pool[pick+1:]...)
	}
	return out
}

// SuggestByFlavor returns one uniformly-random meal whose flavor token
// exactly matches the given flavor, case-folded, optionally constrained
// by budget. Flavor matching is exact here, unlike the substring rule
// used for diet filtering.
func (e *Engine) SuggestByFlavor(c *catalog.Catalog, flavor string, budget *float64) (*models.Meal, error) {
	key := strings.ToLower(strings.TrimSpace(flavor))
	var pool []*models.Meal
	for _, m := range c.Meals() {
		if m.FlavorToken() != key {
			continue
		}
		if budget != nil && m.Price > *budget {
			continue
		}
		pool = append(pool, m)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: flavor %q", ErrNoMatch, flavor)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return pool[e.rng.Intn(len(pool))], nil
}

type scoredMeal struct {
	meal  *models.Meal
	score float64
}
