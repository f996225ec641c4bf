package domain

import "time"

// StockEntry is what a user has on hand for one ingredient.
type StockEntry struct {
	UserID       int64
	IngredientID int64
	Quantity     Quantity
	Version      int // optimistic locking, zero means not yet persisted
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ShoppingListEntry is an ingredient a user intends to buy.
type ShoppingListEntry struct {
	UserID       int64
	IngredientID int64
	Quantity     Quantity
	Done         bool
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
