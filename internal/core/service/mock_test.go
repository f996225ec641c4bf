package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
)

var errVersionConflict = errors.New("version conflict")

type entryKey struct {
	userID, ingredientID int64
}

// Mock StockRepository
type mockStockRepo struct {
	mu      sync.Mutex
	entries map[entryKey]domain.StockEntry
	saves   int
	saveErr error
}

func newMockStockRepo() *mockStockRepo {
	return &mockStockRepo{entries: make(map[entryKey]domain.StockEntry)}
}

func (m *mockStockRepo) GetStockEntry(ctx context.Context, userID, ingredientID int64) (*domain.StockEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[entryKey{userID, ingredientID}]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *mockStockRepo) ListStock(ctx context.Context, userID int64) ([]domain.StockEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.StockEntry
	for k, e := range m.entries {
		if k.userID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockStockRepo) SaveStockEntry(ctx context.Context, entry domain.StockEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	k := entryKey{entry.UserID, entry.IngredientID}
	current, exists := m.entries[k]
	if exists != (entry.Version != 0) || (exists && current.Version != entry.Version) {
		return errVersionConflict
	}
	entry.Version++
	m.entries[k] = entry
	m.saves++
	return nil
}

func (m *mockStockRepo) DeleteStockEntry(ctx context.Context, userID, ingredientID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, entryKey{userID, ingredientID})
	return nil
}

func (m *mockStockRepo) DeleteEmptyStock(ctx context.Context, tolerance float64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for k, e := range m.entries {
		if e.Quantity.Amount <= tolerance {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

func (m *mockStockRepo) failSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *mockStockRepo) get(userID, ingredientID int64) (domain.StockEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[entryKey{userID, ingredientID}]
	return e, ok
}

// Mock ShoppingListRepository
type mockShoppingRepo struct {
	mu      sync.Mutex
	entries map[entryKey]domain.ShoppingListEntry
}

func newMockShoppingRepo() *mockShoppingRepo {
	return &mockShoppingRepo{entries: make(map[entryKey]domain.ShoppingListEntry)}
}

func (m *mockShoppingRepo) GetShoppingEntry(ctx context.Context, userID, ingredientID int64) (*domain.ShoppingListEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[entryKey{userID, ingredientID}]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *mockShoppingRepo) ListShoppingList(ctx context.Context, userID int64) ([]domain.ShoppingListEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.ShoppingListEntry
	for k, e := range m.entries {
		if k.userID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockShoppingRepo) SaveShoppingEntry(ctx context.Context, entry domain.ShoppingListEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := entryKey{entry.UserID, entry.IngredientID}
	current, exists := m.entries[k]
	if exists != (entry.Version != 0) || (exists && current.Version != entry.Version) {
		return errVersionConflict
	}
	entry.Version++
	m.entries[k] = entry
	return nil
}

func (m *mockShoppingRepo) DeleteShoppingEntry(ctx context.Context, userID, ingredientID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, entryKey{userID, ingredientID})
	return nil
}

func (m *mockShoppingRepo) DeleteEmptyShopping(ctx context.Context, tolerance float64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for k, e := range m.entries {
		if e.Quantity.Amount <= tolerance {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

func (m *mockShoppingRepo) get(userID, ingredientID int64) (domain.ShoppingListEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[entryKey{userID, ingredientID}]
	return e, ok
}

// Mock CatalogueRepository
type mockCatalogueRepo struct {
	mu          sync.Mutex
	cocktails   []domain.Cocktail
	ingredients map[int64]bool
	listCalls   int

	// when set, the next ListCocktails signals entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func newMockCatalogueRepo(ingredientIDs ...int64) *mockCatalogueRepo {
	m := &mockCatalogueRepo{ingredients: make(map[int64]bool)}
	for _, id := range ingredientIDs {
		m.ingredients[id] = true
	}
	return m
}

// blockNextList makes the next ListCocktails call pause until release is closed.
func (m *mockCatalogueRepo) blockNextList() (entered <-chan struct{}, release chan<- struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entered = make(chan struct{})
	m.release = make(chan struct{})
	return m.entered, m.release
}

func (m *mockCatalogueRepo) ListCocktails(ctx context.Context, userID int64) ([]domain.Cocktail, error) {
	m.mu.Lock()
	m.listCalls++
	entered, release := m.entered, m.release
	m.entered, m.release = nil, nil
	m.mu.Unlock()

	if release != nil {
		close(entered)
		<-release
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Cocktail
	for _, c := range m.cocktails {
		if c.OwnerID == 0 || c.OwnerID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCatalogueRepo) IngredientExists(ctx context.Context, ingredientID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ingredients[ingredientID], nil
}

func (m *mockCatalogueRepo) ListUnits(ctx context.Context) ([]domain.UnitDefinition, error) {
	return nil, nil
}

// Mock CacheRepository
type mockCacheRepo struct {
	mu          sync.Mutex
	locks       map[string]string
	feasibility map[int64]map[int][]domain.FeasibilityResult
	generations map[int64]int64
	lockCalls   int
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{
		locks:       make(map[string]string),
		feasibility: make(map[int64]map[int][]domain.FeasibilityResult),
		generations: make(map[int64]int64),
	}
}

func (m *mockCacheRepo) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockCalls++

	if _, held := m.locks[key]; held {
		return "", false, nil
	}
	token := uuid.NewString()
	m.locks[key] = token
	return token, true, nil
}

func (m *mockCacheRepo) ReleaseLock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.locks[key] == token {
		delete(m.locks, key)
	}
	return nil
}

func (m *mockCacheRepo) GetFeasibility(ctx context.Context, userID int64, maxMissing int) ([]domain.FeasibilityResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.feasibility[userID][maxMissing]
	return res, ok, nil
}

func (m *mockCacheRepo) FeasibilityGeneration(ctx context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generations[userID], nil
}

func (m *mockCacheRepo) SetFeasibility(ctx context.Context, userID int64, maxMissing int, gen int64, results []domain.FeasibilityResult, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generations[userID] != gen {
		return false, nil
	}
	if m.feasibility[userID] == nil {
		m.feasibility[userID] = make(map[int][]domain.FeasibilityResult)
	}
	m.feasibility[userID][maxMissing] = results
	return true, nil
}

func (m *mockCacheRepo) InvalidateFeasibility(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations[userID]++
	delete(m.feasibility, userID)
	return nil
}

func (m *mockCacheRepo) cached(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.feasibility[userID]) > 0
}
