package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
	"github.com/rl1809/cocktail-pantry/internal/core/engine"
	"github.com/rl1809/cocktail-pantry/internal/port"
)

// StockService manages what users have on hand.
type StockService struct {
	repo    port.StockRepository
	cache   port.CacheRepository
	engine  *engine.Engine
	checker itemChecker
	locker  *keyLocker
	logger  *zap.Logger
}

func NewStockService(repo port.StockRepository, catalogue port.CatalogueRepository, cache port.CacheRepository, eng *engine.Engine, opts Options, logger *zap.Logger) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	return &StockService{
		repo:    repo,
		cache:   cache,
		engine:  eng,
		checker: itemChecker{catalogue: catalogue, conv: eng.Converter, opts: opts},
		locker:  &keyLocker{cache: cache, ttl: opts.LockTTL, wait: opts.LockWait, logger: logger},
		logger:  logger,
	}
}

// AddToStock merges a contribution into the user's entry for the ingredient.
func (s *StockService) AddToStock(ctx context.Context, in AddItemInput) (domain.StockEntry, error) {
	if err := s.checker.check(ctx, in); err != nil {
		return domain.StockEntry{}, err
	}

	var saved domain.StockEntry
	err := s.locker.do(ctx, lockKey("stock", in.UserID, in.IngredientID), func() error {
		existing, err := s.repo.GetStockEntry(ctx, in.UserID, in.IngredientID)
		if err != nil {
			return fmt.Errorf("get stock entry: %w", err)
		}

		entry, branch, err := s.engine.Reconciler.MergeStock(existing, in.UserID, in.IngredientID, in.quantity())
		if err != nil {
			return err
		}
		if err := s.repo.SaveStockEntry(ctx, entry); err != nil {
			return fmt.Errorf("save stock entry: %w", err)
		}
		entry.Version++
		saved = entry

		s.logger.Debug("stock merged",
			zap.Int64("user_id", in.UserID),
			zap.Int64("ingredient_id", in.IngredientID),
			zap.String("branch", string(branch)),
			zap.Float64("amount", entry.Quantity.Amount),
			zap.String("unit", entry.Quantity.Unit))
		return nil
	})
	if err != nil {
		return domain.StockEntry{}, err
	}

	s.invalidate(ctx, in.UserID)
	return saved, nil
}

// RemoveFromStock subtracts removal from the entry, or deletes it when removal
// is nil. The returned entry is nil when the entry no longer exists.
func (s *StockService) RemoveFromStock(ctx context.Context, userID, ingredientID int64, removal *domain.Quantity) (*domain.StockEntry, error) {
	if userID <= 0 || ingredientID <= 0 {
		return nil, fmt.Errorf("%w: user and ingredient ids must be positive", ErrInvalidArgument)
	}

	var remaining *domain.StockEntry
	err := s.locker.do(ctx, lockKey("stock", userID, ingredientID), func() error {
		existing, err := s.repo.GetStockEntry(ctx, userID, ingredientID)
		if err != nil {
			return fmt.Errorf("get stock entry: %w", err)
		}
		if existing == nil {
			return fmt.Errorf("%w: ingredient %d not in stock", ErrNotFound, ingredientID)
		}

		if removal != nil {
			left, empty, err := s.engine.Reconciler.Subtract(existing.Quantity, *removal)
			if err != nil {
				return err
			}
			if !empty {
				entry := *existing
				entry.Quantity = left
				if err := s.repo.SaveStockEntry(ctx, entry); err != nil {
					return fmt.Errorf("save stock entry: %w", err)
				}
				entry.Version++
				remaining = &entry
				return nil
			}
		}

		if err := s.repo.DeleteStockEntry(ctx, userID, ingredientID); err != nil {
			return fmt.Errorf("delete stock entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return remaining, nil
}

// ListStock returns the user's entries.
func (s *StockService) ListStock(ctx context.Context, userID int64) ([]domain.StockEntry, error) {
	entries, err := s.repo.ListStock(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	return entries, nil
}

// PruneEmpty deletes entries left at zero by interrupted writes.
func (s *StockService) PruneEmpty(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteEmptyStock(ctx, s.engine.Converter.Tolerance())
	if err != nil {
		return 0, fmt.Errorf("prune stock: %w", err)
	}
	return n, nil
}

func (s *StockService) invalidate(ctx context.Context, userID int64) {
	if err := s.cache.InvalidateFeasibility(ctx, userID); err != nil {
		s.logger.Warn("feasibility cache invalidation failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}
