package engine

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
)

// Stock is a user's on-hand quantities keyed by ingredient id.
type Stock map[int64]domain.Quantity

// StockFromEntries indexes persisted entries by ingredient.
func StockFromEntries(entries []domain.StockEntry) Stock {
	stock := make(Stock, len(entries))
	for _, e := range entries {
		stock[e.IngredientID] = e.Quantity
	}
	return stock
}

// Feasibility classifies recipes against a stock. Every call is a pure
// function of its arguments.
type Feasibility struct {
	conv *Converter
}

func NewFeasibility(conv *Converter) *Feasibility {
	return &Feasibility{conv: conv}
}

// IsFullyMakable is true when every requirement is present and sufficient.
// It stops at the first missing ingredient.
func (f *Feasibility) IsFullyMakable(stock Stock, reqs []domain.RecipeRequirement) (bool, error) {
	if err := validateRequirements(reqs); err != nil {
		return false, err
	}
	for _, req := range reqs {
		if !f.satisfied(stock, req) {
			return false, nil
		}
	}
	return true, nil
}

// QuasiFeasibility counts missing requirements. An empty recipe is vacuously
// feasible with a ratio of 1.
func (f *Feasibility) QuasiFeasibility(stock Stock, reqs []domain.RecipeRequirement) (domain.FeasibilityResult, error) {
	if err := validateRequirements(reqs); err != nil {
		return domain.FeasibilityResult{}, err
	}

	res := domain.FeasibilityResult{
		MissingIngredients: []string{},
		TotalCount:         len(reqs),
		PossessionRatio:    1.0,
	}
	if len(reqs) > 0 {
		res.CocktailID = reqs[0].CocktailID
	}
	for _, req := range reqs {
		if !f.satisfied(stock, req) {
			res.MissingCount++
			res.MissingIngredients = append(res.MissingIngredients, ingredientLabel(req))
		}
	}
	if res.TotalCount > 0 {
		res.PossessionRatio = float64(res.TotalCount-res.MissingCount) / float64(res.TotalCount)
	}
	return res, nil
}

// Evaluate runs QuasiFeasibility for a cocktail and stamps its identity.
func (f *Feasibility) Evaluate(stock Stock, cocktail domain.Cocktail) (domain.FeasibilityResult, error) {
	res, err := f.QuasiFeasibility(stock, cocktail.Requirements)
	if err != nil {
		return domain.FeasibilityResult{}, fmt.Errorf("cocktail %d: %w", cocktail.ID, err)
	}
	res.CocktailID = cocktail.ID
	res.CocktailName = cocktail.Name
	return res, nil
}

// Makeable returns the fully makable cocktails in catalogue order.
func (f *Feasibility) Makeable(cocktails []domain.Cocktail, stock Stock) ([]domain.FeasibilityResult, error) {
	out := make([]domain.FeasibilityResult, 0)
	for _, c := range cocktails {
		res, err := f.Evaluate(stock, c)
		if err != nil {
			return nil, err
		}
		if res.MissingCount == 0 {
			out = append(out, res)
		}
	}
	return out, nil
}

// RankQuasiRealizable keeps cocktails missing between 1 and maxMissing
// ingredients, ordered by fewest missing, then highest possession ratio, then
// catalogue order.
func (f *Feasibility) RankQuasiRealizable(cocktails []domain.Cocktail, stock Stock, maxMissing int) ([]domain.FeasibilityResult, error) {
	out := make([]domain.FeasibilityResult, 0)
	if maxMissing < 1 {
		return out, nil
	}
	for _, c := range cocktails {
		res, err := f.Evaluate(stock, c)
		if err != nil {
			return nil, err
		}
		if res.MissingCount > 0 && res.MissingCount <= maxMissing {
			out = append(out, res)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MissingCount != out[j].MissingCount {
			return out[i].MissingCount < out[j].MissingCount
		}
		return out[i].PossessionRatio > out[j].PossessionRatio
	})
	return out, nil
}

func (f *Feasibility) satisfied(stock Stock, req domain.RecipeRequirement) bool {
	have, ok := stock[req.IngredientID]
	if !ok {
		// A zero requirement is met even when the ingredient was never stocked.
		return req.Quantity.Amount <= 0
	}
	return f.conv.IsSufficient(req.Quantity.Amount, req.Quantity.Unit, have.Amount, have.Unit)
}

func validateRequirements(reqs []domain.RecipeRequirement) error {
	for _, req := range reqs {
		if err := checkAmount(req.Quantity.Amount); err != nil {
			return fmt.Errorf("ingredient %d: %w", req.IngredientID, err)
		}
	}
	return nil
}

func ingredientLabel(req domain.RecipeRequirement) string {
	if req.IngredientName != "" {
		return req.IngredientName
	}
	return strconv.FormatInt(req.IngredientID, 10)
}
