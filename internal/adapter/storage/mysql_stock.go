package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
)

func (m *MySQLAdapter) GetStockEntry(ctx context.Context, userID, ingredientID int64) (*domain.StockEntry, error) {
	var e domain.StockEntry
	err := m.db.QueryRowContext(ctx, `
		SELECT user_id, ingredient_id, quantity, unit, version, created_at, updated_at
		FROM stock WHERE user_id = ? AND ingredient_id = ?`, userID, ingredientID,
	).Scan(&e.UserID, &e.IngredientID, &e.Quantity.Amount, &e.Quantity.Unit, &e.Version, &e.CreatedAt, &e.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query stock: %w", err)
	}
	return &e, nil
}

func (m *MySQLAdapter) ListStock(ctx context.Context, userID int64) ([]domain.StockEntry, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT user_id, ingredient_id, quantity, unit, version, created_at, updated_at
		FROM stock WHERE user_id = ? ORDER BY ingredient_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query stock: %w", err)
	}
	defer rows.Close()

	var entries []domain.StockEntry
	for rows.Next() {
		var e domain.StockEntry
		if err := rows.Scan(&e.UserID, &e.IngredientID, &e.Quantity.Amount, &e.Quantity.Unit, &e.Version, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (m *MySQLAdapter) SaveStockEntry(ctx context.Context, e domain.StockEntry) error {
	if e.Version == 0 {
		_, err := m.db.ExecContext(ctx, `
			INSERT INTO stock (user_id, ingredient_id, quantity, unit, version, created_at, updated_at)
			VALUES (?, ?, ?, ?, 1, NOW(), NOW())`,
			e.UserID, e.IngredientID, e.Quantity.Amount, e.Quantity.Unit,
		)
		if isDuplicateEntry(err) {
			return ErrOptimisticLock
		}
		if err != nil {
			return fmt.Errorf("insert stock: %w", err)
		}
		return nil
	}

	result, err := m.db.ExecContext(ctx, `
		UPDATE stock
		SET quantity = ?, unit = ?, version = version + 1, updated_at = NOW()
		WHERE user_id = ? AND ingredient_id = ? AND version = ?`,
		e.Quantity.Amount, e.Quantity.Unit, e.UserID, e.IngredientID, e.Version,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrOptimisticLock
	}
	return nil
}

func (m *MySQLAdapter) DeleteStockEntry(ctx context.Context, userID, ingredientID int64) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM stock WHERE user_id = ? AND ingredient_id = ?`, userID, ingredientID); err != nil {
		return fmt.Errorf("delete stock: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) DeleteEmptyStock(ctx context.Context, tolerance float64) (int64, error) {
	result, err := m.db.ExecContext(ctx, `DELETE FROM stock WHERE quantity <= ?`, tolerance)
	if err != nil {
		return 0, fmt.Errorf("delete empty stock: %w", err)
	}
	return result.RowsAffected()
}
