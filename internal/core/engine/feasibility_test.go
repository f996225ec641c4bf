package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
)

func req(cocktailID, ingredientID int64, name string, amount float64, unit string) domain.RecipeRequirement {
	return domain.RecipeRequirement{
		CocktailID:     cocktailID,
		IngredientID:   ingredientID,
		IngredientName: name,
		Quantity:       qty(amount, unit),
	}
}

func newTestFeasibility() *Feasibility {
	return NewFeasibility(newTestConverter())
}

func TestIsFullyMakable(t *testing.T) {
	f := newTestFeasibility()
	stock := Stock{1: qty(2, "oz"), 2: qty(100, "g")}

	ok, err := f.IsFullyMakable(stock, []domain.RecipeRequirement{req(1, 1, "Vodka", 30, "ml")})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.IsFullyMakable(stock, []domain.RecipeRequirement{
		req(1, 1, "Vodka", 30, "ml"),
		req(1, 3, "Lime", 1, "piece"),
	})
	require.NoError(t, err)
	assert.False(t, ok, "absent ingredient fails")

	ok, err = f.IsFullyMakable(stock, []domain.RecipeRequirement{req(1, 2, "Sugar", 10, "ml")})
	require.NoError(t, err)
	assert.False(t, ok, "class mismatch is insufficient")

	ok, err = f.IsFullyMakable(stock, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestQuasiFeasibility(t *testing.T) {
	f := newTestFeasibility()
	stock := Stock{1: qty(50, "cl"), 2: qty(1, "kg"), 3: qty(10, "leaf")}

	res, err := f.QuasiFeasibility(stock, []domain.RecipeRequirement{
		req(7, 1, "Rum", 60, "ml"),
		req(7, 2, "Sugar", 2, "tsp"),
		req(7, 3, "Mint", 8, "leaves"),
		req(7, 4, "Lime", 1, "piece"),
		req(7, 5, "Soda", 100, "ml"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.CocktailID)
	assert.Equal(t, 5, res.TotalCount)
	assert.Equal(t, 3, res.MissingCount)
	assert.Equal(t, []string{"Sugar", "Lime", "Soda"}, res.MissingIngredients)
	assert.InDelta(t, 0.4, res.PossessionRatio, 1e-9)
}

func TestQuasiFeasibility_EmptyRecipe(t *testing.T) {
	res, err := newTestFeasibility().QuasiFeasibility(Stock{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.TotalCount)
	assert.Equal(t, 0, res.MissingCount)
	assert.Equal(t, 1.0, res.PossessionRatio)
}

func TestQuasiFeasibility_ZeroRequirementAlwaysSatisfied(t *testing.T) {
	res, err := newTestFeasibility().QuasiFeasibility(Stock{}, []domain.RecipeRequirement{req(1, 1, "Garnish", 0, "piece")})
	require.NoError(t, err)
	assert.Equal(t, 0, res.MissingCount)
}

func TestQuasiFeasibility_RejectsNegativeAmount(t *testing.T) {
	_, err := newTestFeasibility().QuasiFeasibility(Stock{}, []domain.RecipeRequirement{req(1, 1, "Gin", -5, "ml")})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = newTestFeasibility().IsFullyMakable(Stock{}, []domain.RecipeRequirement{req(1, 1, "Gin", -5, "ml")})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestFeasibility_Consistency(t *testing.T) {
	f := newTestFeasibility()
	stock := Stock{1: qty(2, "oz"), 2: qty(3, "leaf")}

	recipes := [][]domain.RecipeRequirement{
		{req(1, 1, "Vodka", 30, "ml")},
		{req(2, 1, "Vodka", 100, "ml")},
		{req(3, 2, "Mint", 3, "leaf"), req(3, 1, "Vodka", 1, "cl")},
		{req(4, 9, "Bitters", 2, "dash")},
		nil,
	}
	for i, reqs := range recipes {
		ok, err := f.IsFullyMakable(stock, reqs)
		require.NoError(t, err)
		res, err := f.QuasiFeasibility(stock, reqs)
		require.NoError(t, err)
		assert.Equal(t, ok, res.MissingCount == 0, "recipe %d", i)
	}
}

func TestRankQuasiRealizable(t *testing.T) {
	f := newTestFeasibility()
	stock := Stock{1: qty(1, "l"), 2: qty(1, "kg"), 3: qty(20, "leaf")}

	cocktails := []domain.Cocktail{
		{ID: 10, Name: "Big Punch", Requirements: []domain.RecipeRequirement{
			req(10, 1, "Rum", 60, "ml"),
			req(10, 2, "Sugar", 10, "g"),
			req(10, 3, "Mint", 6, "leaf"),
			req(10, 4, "Lime", 1, "piece"),
			req(10, 5, "Soda", 1, "cup"),
		}},
		{ID: 20, Name: "Simple", Requirements: []domain.RecipeRequirement{
			req(20, 1, "Rum", 50, "ml"),
			req(20, 4, "Lime", 1, "piece"),
		}},
		{ID: 30, Name: "Daiquiri", Requirements: []domain.RecipeRequirement{
			req(30, 1, "Rum", 60, "ml"),
			req(30, 2, "Sugar", 1, "tsp"),
		}},
		{ID: 40, Name: "Far Away", Requirements: []domain.RecipeRequirement{
			req(40, 6, "Absinthe", 1, "dash"),
			req(40, 7, "Cognac", 1, "oz"),
			req(40, 8, "Egg", 1, "piece"),
		}},
		{ID: 50, Name: "Mojito", Requirements: []domain.RecipeRequirement{
			req(50, 1, "Rum", 60, "ml"),
			req(50, 3, "Mint", 8, "leaf"),
			req(50, 2, "Sugar", 2, "cube"),
			req(50, 5, "Soda", 100, "ml"),
		}},
	}

	ranked, err := f.RankQuasiRealizable(cocktails, stock, 2)
	require.NoError(t, err)
	require.Len(t, ranked, 4)

	// Mojito: 1 of 4 missing (0.75), Simple: 1 of 2 (0.5), Daiquiri: 1 of 2
	// because sugar in tsp does not compare to grams, Big Punch: 2 of 5 (0.6).
	ids := []int64{ranked[0].CocktailID, ranked[1].CocktailID, ranked[2].CocktailID, ranked[3].CocktailID}
	assert.Equal(t, []int64{50, 20, 30, 10}, ids)

	assert.Equal(t, 2, ranked[3].MissingCount)
	assert.InDelta(t, 0.6, ranked[3].PossessionRatio, 1e-9)
	assert.Equal(t, "Big Punch", ranked[3].CocktailName)
}

func TestRankQuasiRealizable_ExcludesMakeableAndOverLimit(t *testing.T) {
	f := newTestFeasibility()
	stock := Stock{1: qty(2, "oz")}

	cocktails := []domain.Cocktail{
		{ID: 1, Name: "Shot", Requirements: []domain.RecipeRequirement{req(1, 1, "Vodka", 30, "ml")}},
		{ID: 2, Name: "Screwdriver", Requirements: []domain.RecipeRequirement{req(2, 1, "Vodka", 30, "ml"), req(2, 2, "Orange juice", 90, "ml")}},
		{ID: 3, Name: "Long Island", Requirements: []domain.RecipeRequirement{
			req(3, 1, "Vodka", 15, "ml"), req(3, 3, "Gin", 15, "ml"), req(3, 4, "Rum", 15, "ml"), req(3, 5, "Tequila", 15, "ml"),
		}},
	}

	ranked, err := f.RankQuasiRealizable(cocktails, stock, 2)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, int64(2), ranked[0].CocktailID)

	ranked, err = f.RankQuasiRealizable(cocktails, stock, 0)
	require.NoError(t, err)
	assert.Empty(t, ranked)

	makeable, err := f.Makeable(cocktails, stock)
	require.NoError(t, err)
	require.Len(t, makeable, 1)
	assert.Equal(t, "Shot", makeable[0].CocktailName)
}

func TestRankQuasiRealizable_TiesKeepCatalogueOrder(t *testing.T) {
	f := newTestFeasibility()

	cocktails := []domain.Cocktail{
		{ID: 3, Name: "C", Requirements: []domain.RecipeRequirement{req(3, 1, "A", 1, "ml")}},
		{ID: 1, Name: "A", Requirements: []domain.RecipeRequirement{req(1, 2, "B", 1, "ml")}},
		{ID: 2, Name: "B", Requirements: []domain.RecipeRequirement{req(2, 3, "C", 1, "ml")}},
	}

	ranked, err := f.RankQuasiRealizable(cocktails, Stock{}, 1)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, int64(3), ranked[0].CocktailID)
	assert.Equal(t, int64(1), ranked[1].CocktailID)
	assert.Equal(t, int64(2), ranked[2].CocktailID)
}
