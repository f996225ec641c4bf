package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
)

var ErrOptimisticLock = errors.New("optimistic lock conflict")

//go:embed schema.sql
var schemaSQL string

const mysqlDuplicateEntry = 1062

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// Migrate creates missing tables. Statements run one at a time so the DSN
// does not need multiStatements.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) ListUnits(ctx context.Context) ([]domain.UnitDefinition, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT u.code, u.class, u.factor, a.alias
		FROM units u
		LEFT JOIN unit_aliases a ON a.code = u.code
		ORDER BY u.code, a.alias`)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	var defs []domain.UnitDefinition
	for rows.Next() {
		var (
			def   domain.UnitDefinition
			alias sql.NullString
		)
		if err := rows.Scan(&def.Code, &def.Class, &def.Factor, &alias); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}

		if n := len(defs); n > 0 && defs[n-1].Code == def.Code {
			if alias.Valid {
				defs[n-1].Aliases = append(defs[n-1].Aliases, alias.String)
			}
			continue
		}
		if alias.Valid {
			def.Aliases = []string{alias.String}
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

func (m *MySQLAdapter) IngredientExists(ctx context.Context, ingredientID int64) (bool, error) {
	var one int
	err := m.db.QueryRowContext(ctx, `SELECT 1 FROM ingredients WHERE id = ?`, ingredientID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query ingredient: %w", err)
	}
	return true, nil
}

func (m *MySQLAdapter) ListCocktails(ctx context.Context, userID int64) ([]domain.Cocktail, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT c.id, c.name, COALESCE(c.owner_id, 0), ci.ingredient_id, i.name, ci.quantity, ci.unit
		FROM cocktails c
		LEFT JOIN cocktail_ingredients ci ON ci.cocktail_id = c.id
		LEFT JOIN ingredients i ON i.id = ci.ingredient_id
		WHERE c.owner_id IS NULL OR c.owner_id = ?
		ORDER BY c.id, ci.position, ci.ingredient_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query cocktails: %w", err)
	}
	defer rows.Close()

	var cocktails []domain.Cocktail
	for rows.Next() {
		var (
			c            domain.Cocktail
			ingredientID sql.NullInt64
			name         sql.NullString
			amount       sql.NullFloat64
			unit         sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.OwnerID, &ingredientID, &name, &amount, &unit); err != nil {
			return nil, fmt.Errorf("scan cocktail: %w", err)
		}

		if n := len(cocktails); n == 0 || cocktails[n-1].ID != c.ID {
			cocktails = append(cocktails, c)
		}
		if !ingredientID.Valid {
			continue
		}
		last := &cocktails[len(cocktails)-1]
		last.Requirements = append(last.Requirements, domain.RecipeRequirement{
			CocktailID:     c.ID,
			IngredientID:   ingredientID.Int64,
			IngredientName: name.String,
			Quantity:       domain.Quantity{Amount: amount.Float64, Unit: unit.String},
		})
	}
	return cocktails, rows.Err()
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
