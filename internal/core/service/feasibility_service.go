package service

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
	"github.com/rl1809/cocktail-pantry/internal/core/engine"
	"github.com/rl1809/cocktail-pantry/internal/port"
)

// FeasibilityService answers "what can I make" from a user's stock.
type FeasibilityService struct {
	stock     port.StockRepository
	catalogue port.CatalogueRepository
	cache     port.CacheRepository
	engine    *engine.Engine
	opts      Options
	logger    *zap.Logger
}

func NewFeasibilityService(stock port.StockRepository, catalogue port.CatalogueRepository, cache port.CacheRepository, eng *engine.Engine, opts Options, logger *zap.Logger) *FeasibilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeasibilityService{
		stock:     stock,
		catalogue: catalogue,
		cache:     cache,
		engine:    eng,
		opts:      opts.withDefaults(),
		logger:    logger,
	}
}

// ListMakeable returns every cocktail the user can make right now.
func (s *FeasibilityService) ListMakeable(ctx context.Context, userID int64) ([]domain.FeasibilityResult, error) {
	stock, cocktails, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.engine.Feasibility.Makeable(cocktails, stock)
}

// ListQuasiRealizable returns cocktails missing at most maxMissing
// ingredients, fewest missing first.
func (s *FeasibilityService) ListQuasiRealizable(ctx context.Context, userID int64, maxMissing int) ([]domain.FeasibilityResult, error) {
	if maxMissing < 0 {
		return nil, fmt.Errorf("%w: max_missing must not be negative", ErrInvalidArgument)
	}

	cached, hit, err := s.cache.GetFeasibility(ctx, userID, maxMissing)
	if err != nil {
		s.logger.Warn("feasibility cache read failed", zap.Int64("user_id", userID), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	// Read before loading stock so a write landing mid-evaluation keeps the
	// result out of the cache.
	gen, err := s.cache.FeasibilityGeneration(ctx, userID)
	cacheable := err == nil
	if err != nil {
		s.logger.Warn("feasibility cache generation read failed", zap.Int64("user_id", userID), zap.Error(err))
	}

	stock, cocktails, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	ranked, err := s.engine.Feasibility.RankQuasiRealizable(cocktails, stock, maxMissing)
	if err != nil {
		return nil, err
	}
	if !cacheable {
		return ranked, nil
	}

	stored, err := s.cache.SetFeasibility(ctx, userID, maxMissing, gen, ranked, s.opts.CacheTTL)
	switch {
	case err != nil:
		s.logger.Warn("feasibility cache write failed", zap.Int64("user_id", userID), zap.Error(err))
	case !stored:
		s.logger.Debug("stock changed during evaluation, result not cached", zap.Int64("user_id", userID))
	}
	return ranked, nil
}

func (s *FeasibilityService) load(ctx context.Context, userID int64) (engine.Stock, []domain.Cocktail, error) {
	if userID <= 0 {
		return nil, nil, fmt.Errorf("%w: user id must be positive", ErrInvalidArgument)
	}

	entries, err := s.stock.ListStock(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list stock: %w", err)
	}
	cocktails, err := s.catalogue.ListCocktails(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list cocktails: %w", err)
	}
	return engine.StockFromEntries(entries), s.wellFormed(cocktails), nil
}

// wellFormed drops cocktails with requirement rows the engine would refuse.
func (s *FeasibilityService) wellFormed(cocktails []domain.Cocktail) []domain.Cocktail {
	out := cocktails[:0:0]
	for _, c := range cocktails {
		ok := true
		for _, r := range c.Requirements {
			a := r.Quantity.Amount
			if a < 0 || math.IsNaN(a) || math.IsInf(a, 0) {
				ok = false
				break
			}
		}
		if !ok {
			s.logger.Warn("skipping cocktail with malformed requirement", zap.Int64("cocktail_id", c.ID))
			continue
		}
		out = append(out, c)
	}
	return out
}
