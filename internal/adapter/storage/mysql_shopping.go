package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
)

func (m *MySQLAdapter) GetShoppingEntry(ctx context.Context, userID, ingredientID int64) (*domain.ShoppingListEntry, error) {
	var e domain.ShoppingListEntry
	err := m.db.QueryRowContext(ctx, `
		SELECT user_id, ingredient_id, quantity, unit, done, version, created_at, updated_at
		FROM shopping_list WHERE user_id = ? AND ingredient_id = ?`, userID, ingredientID,
	).Scan(&e.UserID, &e.IngredientID, &e.Quantity.Amount, &e.Quantity.Unit, &e.Done, &e.Version, &e.CreatedAt, &e.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query shopping list: %w", err)
	}
	return &e, nil
}

func (m *MySQLAdapter) ListShoppingList(ctx context.Context, userID int64) ([]domain.ShoppingListEntry, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT user_id, ingredient_id, quantity, unit, done, version, created_at, updated_at
		FROM shopping_list WHERE user_id = ? ORDER BY ingredient_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query shopping list: %w", err)
	}
	defer rows.Close()

	var entries []domain.ShoppingListEntry
	for rows.Next() {
		var e domain.ShoppingListEntry
		if err := rows.Scan(&e.UserID, &e.IngredientID, &e.Quantity.Amount, &e.Quantity.Unit, &e.Done, &e.Version, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan shopping list: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (m *MySQLAdapter) SaveShoppingEntry(ctx context.Context, e domain.ShoppingListEntry) error {
	if e.Version == 0 {
		_, err := m.db.ExecContext(ctx, `
			INSERT INTO shopping_list (user_id, ingredient_id, quantity, unit, done, version, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, 1, NOW(), NOW())`,
			e.UserID, e.IngredientID, e.Quantity.Amount, e.Quantity.Unit, e.Done,
		)
		if isDuplicateEntry(err) {
			return ErrOptimisticLock
		}
		if err != nil {
			return fmt.Errorf("insert shopping list: %w", err)
		}
		return nil
	}

	result, err := m.db.ExecContext(ctx, `
		UPDATE shopping_list
		SET quantity = ?, unit = ?, done = ?, version = version + 1, updated_at = NOW()
		WHERE user_id = ? AND ingredient_id = ? AND version = ?`,
		e.Quantity.Amount, e.Quantity.Unit, e.Done, e.UserID, e.IngredientID, e.Version,
	)
	if err != nil {
		return fmt.Errorf("update shopping list: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrOptimisticLock
	}
	return nil
}

func (m *MySQLAdapter) DeleteShoppingEntry(ctx context.Context, userID, ingredientID int64) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM shopping_list WHERE user_id = ? AND ingredient_id = ?`, userID, ingredientID); err != nil {
		return fmt.Errorf("delete shopping list: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) DeleteEmptyShopping(ctx context.Context, tolerance float64) (int64, error) {
	result, err := m.db.ExecContext(ctx, `DELETE FROM shopping_list WHERE quantity <= ?`, tolerance)
	if err != nil {
		return 0, fmt.Errorf("delete empty shopping list: %w", err)
	}
	return result.RowsAffected()
}
