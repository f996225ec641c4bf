package port

import (
	"context"
	"time"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
)

type CacheRepository interface {
	// AcquireLock sets key if absent and returns the owner token, ok is false if already held
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)

	// ReleaseLock deletes key only if token still owns it
	ReleaseLock(ctx context.Context, key, token string) error

	// GetFeasibility returns cached quasi-realizable results, hit is false on miss
	GetFeasibility(ctx context.Context, userID int64, maxMissing int) (results []domain.FeasibilityResult, hit bool, err error)

	// FeasibilityGeneration returns the user's cache generation, bumped by every invalidation
	FeasibilityGeneration(ctx context.Context, userID int64) (int64, error)

	// SetFeasibility caches results only while the generation still equals gen,
	// stored is false when an invalidation happened in between
	SetFeasibility(ctx context.Context, userID int64, maxMissing int, gen int64, results []domain.FeasibilityResult, ttl time.Duration) (stored bool, err error)

	// InvalidateFeasibility drops every cached result of the user and bumps the generation
	InvalidateFeasibility(ctx context.Context, userID int64) error
}
