package handler

import (
	"context"
	"fmt"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
	"github.com/rl1809/cocktail-pantry/internal/core/engine"
	"github.com/rl1809/cocktail-pantry/internal/core/service"
)

// fakeStock records calls and returns canned results. The handler tests run
// one request at a time so no locking is needed.
type fakeStock struct {
	lastInput   service.AddItemInput
	lastRemoval *domain.Quantity
	remaining   *domain.StockEntry
	entries     []domain.StockEntry
	err         error
}

func (f *fakeStock) AddToStock(ctx context.Context, in service.AddItemInput) (domain.StockEntry, error) {
	f.lastInput = in
	if f.err != nil {
		return domain.StockEntry{}, f.err
	}
	return domain.StockEntry{
		UserID:       in.UserID,
		IngredientID: in.IngredientID,
		Quantity:     domain.Quantity{Amount: in.Amount, Unit: in.Unit},
		Version:      1,
	}, nil
}

func (f *fakeStock) RemoveFromStock(ctx context.Context, userID, ingredientID int64, removal *domain.Quantity) (*domain.StockEntry, error) {
	f.lastRemoval = removal
	return f.remaining, f.err
}

func (f *fakeStock) ListStock(ctx context.Context, userID int64) ([]domain.StockEntry, error) {
	return f.entries, f.err
}

type fakeShopping struct {
	lastDone bool
	entries  []domain.ShoppingListEntry
	moved    []domain.StockEntry
	err      error
}

func (f *fakeShopping) AddToShoppingList(ctx context.Context, in service.AddItemInput) (domain.ShoppingListEntry, error) {
	if f.err != nil {
		return domain.ShoppingListEntry{}, f.err
	}
	return domain.ShoppingListEntry{
		UserID:       in.UserID,
		IngredientID: in.IngredientID,
		Quantity:     domain.Quantity{Amount: in.Amount, Unit: in.Unit},
		Version:      1,
	}, nil
}

func (f *fakeShopping) SetDone(ctx context.Context, userID, ingredientID int64, done bool) (domain.ShoppingListEntry, error) {
	f.lastDone = done
	if f.err != nil {
		return domain.ShoppingListEntry{}, f.err
	}
	return domain.ShoppingListEntry{UserID: userID, IngredientID: ingredientID, Done: done, Version: 2}, nil
}

func (f *fakeShopping) RemoveFromShoppingList(ctx context.Context, userID, ingredientID int64) error {
	return f.err
}

func (f *fakeShopping) ListShoppingList(ctx context.Context, userID int64) ([]domain.ShoppingListEntry, error) {
	return f.entries, f.err
}

func (f *fakeShopping) Checkout(ctx context.Context, userID int64) ([]domain.StockEntry, error) {
	return f.moved, f.err
}

type fakeFeasibility struct {
	lastMaxMissing int
	results        []domain.FeasibilityResult
	err            error
}

func (f *fakeFeasibility) ListMakeable(ctx context.Context, userID int64) ([]domain.FeasibilityResult, error) {
	return f.results, f.err
}

func (f *fakeFeasibility) ListQuasiRealizable(ctx context.Context, userID int64, maxMissing int) ([]domain.FeasibilityResult, error) {
	f.lastMaxMissing = maxMissing
	if maxMissing < 0 {
		return nil, fmt.Errorf("%w: negative threshold", service.ErrInvalidArgument)
	}
	return f.results, f.err
}

var errIncompatible = fmt.Errorf("remove: %w", engine.ErrIncompatibleUnits)
