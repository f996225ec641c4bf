package domain

// RecipeRequirement is one ingredient line of a cocktail recipe.
type RecipeRequirement struct {
	CocktailID     int64
	IngredientID   int64
	IngredientName string
	Quantity       Quantity
}

// Cocktail is a catalogue entry with its ordered requirements.
type Cocktail struct {
	ID           int64
	Name         string
	OwnerID      int64 // zero for public cocktails
	Requirements []RecipeRequirement
}

// FeasibilityResult describes how much of a recipe a stock covers.
type FeasibilityResult struct {
	CocktailID         int64    `json:"cocktail_id"`
	CocktailName       string   `json:"cocktail_name"`
	MissingIngredients []string `json:"missing_ingredients"`
	MissingCount       int      `json:"missing_count"`
	TotalCount         int      `json:"total_count"`
	PossessionRatio    float64  `json:"possession_ratio"`
}
