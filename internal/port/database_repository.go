package port

import (
	"context"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
)

type StockRepository interface {
	// GetStockEntry returns nil without error when the user holds none of the ingredient
	GetStockEntry(ctx context.Context, userID, ingredientID int64) (*domain.StockEntry, error)

	// ListStock returns every entry of the user ordered by ingredient
	ListStock(ctx context.Context, userID int64) ([]domain.StockEntry, error)

	// SaveStockEntry inserts when Version is zero, otherwise updates with a version check
	SaveStockEntry(ctx context.Context, entry domain.StockEntry) error

	// DeleteStockEntry removes the entry if present
	DeleteStockEntry(ctx context.Context, userID, ingredientID int64) error

	// DeleteEmptyStock removes entries whose amount is at or below tolerance
	DeleteEmptyStock(ctx context.Context, tolerance float64) (int64, error)
}

type ShoppingListRepository interface {
	GetShoppingEntry(ctx context.Context, userID, ingredientID int64) (*domain.ShoppingListEntry, error)
	ListShoppingList(ctx context.Context, userID int64) ([]domain.ShoppingListEntry, error)
	SaveShoppingEntry(ctx context.Context, entry domain.ShoppingListEntry) error
	DeleteShoppingEntry(ctx context.Context, userID, ingredientID int64) error
	DeleteEmptyShopping(ctx context.Context, tolerance float64) (int64, error)
}

type CatalogueRepository interface {
	// ListCocktails returns public cocktails plus the user's private ones in catalogue order
	ListCocktails(ctx context.Context, userID int64) ([]domain.Cocktail, error)

	// IngredientExists reports whether the ingredient is in the catalogue
	IngredientExists(ctx context.Context, ingredientID int64) (bool, error)

	// ListUnits returns the unit reference table
	ListUnits(ctx context.Context) ([]domain.UnitDefinition, error)
}
