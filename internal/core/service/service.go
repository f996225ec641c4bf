package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
	"github.com/rl1809/cocktail-pantry/internal/core/engine"
	"github.com/rl1809/cocktail-pantry/internal/port"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrUnknownUnit     = errors.New("unknown unit")
	ErrLockTimeout     = errors.New("lock wait timeout")
)

const lockRetryInterval = 20 * time.Millisecond

var validate = validator.New(validator.WithRequiredStructEnabled())

// Options tunes the service layer. Zero durations take the defaults below.
type Options struct {
	RejectUnknownUnits bool
	LockTTL            time.Duration
	LockWait           time.Duration
	CacheTTL           time.Duration
}

func (o Options) withDefaults() Options {
	if o.LockTTL <= 0 {
		o.LockTTL = 5 * time.Second
	}
	if o.LockWait <= 0 {
		o.LockWait = 2 * time.Second
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 10 * time.Minute
	}
	return o
}

// AddItemInput is a contribution to a user's stock or shopping list.
type AddItemInput struct {
	UserID       int64   `validate:"gt=0"`
	IngredientID int64   `validate:"gt=0"`
	Amount       float64 `validate:"gt=0"`
	Unit         string  `validate:"required,max=32"`
}

func (in AddItemInput) quantity() domain.Quantity {
	return domain.Quantity{Amount: in.Amount, Unit: in.Unit}
}

// itemChecker validates writes before they reach the reconciler.
type itemChecker struct {
	catalogue port.CatalogueRepository
	conv      *engine.Converter
	opts      Options
}

func (c itemChecker) check(ctx context.Context, in AddItemInput) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	// Anything at or below the tolerance would be stored as an empty entry.
	if c.conv.IsZero(in.Amount) {
		return fmt.Errorf("%w: amount %g is below tolerance %g", ErrInvalidArgument, in.Amount, c.conv.Tolerance())
	}
	if c.opts.RejectUnknownUnits && c.conv.Classify(in.Unit) == domain.UnitClassUnknown {
		return fmt.Errorf("%w: %q", ErrUnknownUnit, in.Unit)
	}

	ok, err := c.catalogue.IngredientExists(ctx, in.IngredientID)
	if err != nil {
		return fmt.Errorf("lookup ingredient: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: ingredient %d", ErrNotFound, in.IngredientID)
	}
	return nil
}

// keyLocker serializes read-merge-write cycles on one (user, ingredient) key.
type keyLocker struct {
	cache  port.CacheRepository
	ttl    time.Duration
	wait   time.Duration
	logger *zap.Logger
}

func (l *keyLocker) do(ctx context.Context, key string, fn func() error) error {
	deadline := time.Now().Add(l.wait)
	for {
		token, ok, err := l.cache.AcquireLock(ctx, key, l.ttl)
		if err != nil {
			return fmt.Errorf("acquire lock: %w", err)
		}
		if ok {
			defer l.release(ctx, key, token)
			return fn()
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func (l *keyLocker) release(ctx context.Context, key, token string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()

	if err := l.cache.ReleaseLock(ctx, key, token); err != nil {
		l.logger.Warn("lock release failed, waiting for ttl", zap.String("key", key), zap.Error(err))
	}
}

func lockKey(collection string, userID, ingredientID int64) string {
	return fmt.Sprintf("lock:%s:%d:%d", collection, userID, ingredientID)
}
