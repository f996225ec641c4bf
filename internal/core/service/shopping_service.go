package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
	"github.com/rl1809/cocktail-pantry/internal/core/engine"
	"github.com/rl1809/cocktail-pantry/internal/port"
)

// ShoppingListService manages what users intend to buy.
type ShoppingListService struct {
	repo    port.ShoppingListRepository
	stock   *StockService
	engine  *engine.Engine
	checker itemChecker
	locker  *keyLocker
	logger  *zap.Logger
}

func NewShoppingListService(repo port.ShoppingListRepository, catalogue port.CatalogueRepository, cache port.CacheRepository, stock *StockService, eng *engine.Engine, opts Options, logger *zap.Logger) *ShoppingListService {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	return &ShoppingListService{
		repo:    repo,
		stock:   stock,
		engine:  eng,
		checker: itemChecker{catalogue: catalogue, conv: eng.Converter, opts: opts},
		locker:  &keyLocker{cache: cache, ttl: opts.LockTTL, wait: opts.LockWait, logger: logger},
		logger:  logger,
	}
}

// AddToShoppingList merges a contribution into the list entry. Adding more of
// an item always un-checks it.
func (s *ShoppingListService) AddToShoppingList(ctx context.Context, in AddItemInput) (domain.ShoppingListEntry, error) {
	if err := s.checker.check(ctx, in); err != nil {
		return domain.ShoppingListEntry{}, err
	}

	var saved domain.ShoppingListEntry
	err := s.locker.do(ctx, lockKey("shopping", in.UserID, in.IngredientID), func() error {
		existing, err := s.repo.GetShoppingEntry(ctx, in.UserID, in.IngredientID)
		if err != nil {
			return fmt.Errorf("get shopping entry: %w", err)
		}

		entry, branch, err := s.engine.Reconciler.MergeShoppingItem(existing, in.UserID, in.IngredientID, in.quantity())
		if err != nil {
			return err
		}
		if err := s.repo.SaveShoppingEntry(ctx, entry); err != nil {
			return fmt.Errorf("save shopping entry: %w", err)
		}
		entry.Version++
		saved = entry

		s.logger.Debug("shopping item merged",
			zap.Int64("user_id", in.UserID),
			zap.Int64("ingredient_id", in.IngredientID),
			zap.String("branch", string(branch)))
		return nil
	})
	if err != nil {
		return domain.ShoppingListEntry{}, err
	}
	return saved, nil
}

// SetDone checks or un-checks an item.
func (s *ShoppingListService) SetDone(ctx context.Context, userID, ingredientID int64, done bool) (domain.ShoppingListEntry, error) {
	var saved domain.ShoppingListEntry
	err := s.locker.do(ctx, lockKey("shopping", userID, ingredientID), func() error {
		existing, err := s.repo.GetShoppingEntry(ctx, userID, ingredientID)
		if err != nil {
			return fmt.Errorf("get shopping entry: %w", err)
		}
		if existing == nil {
			return fmt.Errorf("%w: ingredient %d not on shopping list", ErrNotFound, ingredientID)
		}

		entry := *existing
		entry.Done = done
		if err := s.repo.SaveShoppingEntry(ctx, entry); err != nil {
			return fmt.Errorf("save shopping entry: %w", err)
		}
		entry.Version++
		saved = entry
		return nil
	})
	if err != nil {
		return domain.ShoppingListEntry{}, err
	}
	return saved, nil
}

// RemoveFromShoppingList deletes an item.
func (s *ShoppingListService) RemoveFromShoppingList(ctx context.Context, userID, ingredientID int64) error {
	return s.locker.do(ctx, lockKey("shopping", userID, ingredientID), func() error {
		existing, err := s.repo.GetShoppingEntry(ctx, userID, ingredientID)
		if err != nil {
			return fmt.Errorf("get shopping entry: %w", err)
		}
		if existing == nil {
			return fmt.Errorf("%w: ingredient %d not on shopping list", ErrNotFound, ingredientID)
		}
		if err := s.repo.DeleteShoppingEntry(ctx, userID, ingredientID); err != nil {
			return fmt.Errorf("delete shopping entry: %w", err)
		}
		return nil
	})
}

// ListShoppingList returns the user's items.
func (s *ShoppingListService) ListShoppingList(ctx context.Context, userID int64) ([]domain.ShoppingListEntry, error) {
	entries, err := s.repo.ListShoppingList(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shopping list: %w", err)
	}
	return entries, nil
}

// Checkout moves every checked item into stock through the reconciler and
// removes it from the list. It returns the resulting stock entries.
//
// The list entry is deleted before stock is written and put back when the
// stock write fails, so a retried checkout never adds the same item twice.
func (s *ShoppingListService) Checkout(ctx context.Context, userID int64) ([]domain.StockEntry, error) {
	entries, err := s.ListShoppingList(ctx, userID)
	if err != nil {
		return nil, err
	}

	moved := make([]domain.StockEntry, 0)
	for _, e := range entries {
		if !e.Done {
			continue
		}
		err := s.locker.do(ctx, lockKey("shopping", userID, e.IngredientID), func() error {
			current, err := s.repo.GetShoppingEntry(ctx, userID, e.IngredientID)
			if err != nil {
				return fmt.Errorf("get shopping entry: %w", err)
			}
			if current == nil || !current.Done {
				return nil
			}

			if err := s.repo.DeleteShoppingEntry(ctx, userID, current.IngredientID); err != nil {
				return fmt.Errorf("delete shopping entry: %w", err)
			}
			if s.engine.Converter.IsZero(current.Quantity.Amount) {
				return nil
			}

			stocked, err := s.stock.AddToStock(ctx, AddItemInput{
				UserID:       userID,
				IngredientID: current.IngredientID,
				Amount:       current.Quantity.Amount,
				Unit:         current.Quantity.Unit,
			})
			if err != nil {
				s.restore(ctx, *current)
				return fmt.Errorf("stock ingredient %d: %w", current.IngredientID, err)
			}
			moved = append(moved, stocked)
			return nil
		})
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				s.logger.Warn("skipping checked item with unknown ingredient", zap.Int64("ingredient_id", e.IngredientID))
				continue
			}
			return moved, err
		}
	}
	return moved, nil
}

// restore puts back a list entry removed by a checkout whose stock write failed.
// Callers hold the entry's shopping lock.
func (s *ShoppingListService) restore(ctx context.Context, entry domain.ShoppingListEntry) {
	entry.Version = 0
	if err := s.repo.SaveShoppingEntry(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Error("failed to restore shopping entry after checkout failure",
			zap.Int64("user_id", entry.UserID),
			zap.Int64("ingredient_id", entry.IngredientID),
			zap.Error(err))
	}
}

// PruneEmpty deletes items left at zero.
func (s *ShoppingListService) PruneEmpty(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteEmptyShopping(ctx, s.engine.Converter.Tolerance())
	if err != nil {
		return 0, fmt.Errorf("prune shopping list: %w", err)
	}
	return n, nil
}
