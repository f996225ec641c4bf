package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
)

// ErrInvalidCatalog is returned when a unit table cannot be turned into a Catalog.
var ErrInvalidCatalog = errors.New("invalid unit catalog")

// Catalog is the immutable registry of known units. Every code belongs to
// exactly one class; liquid and solid codes carry a factor into milliliters
// and grams respectively.
type Catalog struct {
	units   map[string]domain.UnitDefinition
	aliases map[string]string
}

// NewCatalog validates defs and builds a Catalog. A later definition with the
// same code replaces the class and factor of an earlier one and adds its
// aliases to the earlier ones, which is how reference data overlays the
// built-in table without losing spellings it does not repeat.
func NewCatalog(defs []domain.UnitDefinition) (*Catalog, error) {
	c := &Catalog{
		units:   make(map[string]domain.UnitDefinition, len(defs)),
		aliases: make(map[string]string),
	}

	order := make([]string, 0, len(defs))
	for _, def := range defs {
		code := cleanCode(def.Code)
		if code == "" {
			return nil, fmt.Errorf("%w: empty unit code", ErrInvalidCatalog)
		}
		if err := validateDefinition(code, def); err != nil {
			return nil, err
		}
		if prev, seen := c.units[code]; seen {
			def.Aliases = mergeAliases(prev.Aliases, def.Aliases)
		} else {
			order = append(order, code)
		}
		def.Code = code
		c.units[code] = def
	}

	for _, code := range order {
		for _, raw := range c.units[code].Aliases {
			alias := cleanCode(raw)
			if alias == "" || alias == code {
				continue
			}
			if _, isCode := c.units[alias]; isCode {
				return nil, fmt.Errorf("%w: alias %q of %q is itself a unit code", ErrInvalidCatalog, alias, code)
			}
			if prev, ok := c.aliases[alias]; ok && prev != code {
				return nil, fmt.Errorf("%w: alias %q maps to both %q and %q", ErrInvalidCatalog, alias, prev, code)
			}
			c.aliases[alias] = code
		}
	}

	return c, nil
}

// mergeAliases returns a fresh slice of a followed by the entries of b not
// already in a, compared after cleaning.
func mergeAliases(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, alias := range list {
			if k := cleanCode(alias); !seen[k] {
				seen[k] = true
				out = append(out, alias)
			}
		}
	}
	return out
}

func validateDefinition(code string, def domain.UnitDefinition) error {
	switch def.Class {
	case domain.UnitClassLiquid, domain.UnitClassSolid:
		if def.Factor <= 0 || math.IsNaN(def.Factor) || math.IsInf(def.Factor, 0) {
			return fmt.Errorf("%w: unit %q needs a positive factor, got %v", ErrInvalidCatalog, code, def.Factor)
		}
	case domain.UnitClassSpecial:
		if def.Factor != 0 {
			return fmt.Errorf("%w: special unit %q cannot have a factor", ErrInvalidCatalog, code)
		}
	default:
		return fmt.Errorf("%w: unit %q has class %q", ErrInvalidCatalog, code, def.Class)
	}
	return nil
}

// DefaultCatalog returns the built-in unit table.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultUnits())
	if err != nil {
		panic(err)
	}
	return c
}

// Overlay returns a new Catalog with defs applied on top of c.
func (c *Catalog) Overlay(defs []domain.UnitDefinition) (*Catalog, error) {
	base := c.Units()
	return NewCatalog(append(base, defs...))
}

// Classify returns the class of an already normalized code.
func (c *Catalog) Classify(code string) domain.UnitClass {
	def, ok := c.units[code]
	if !ok {
		return domain.UnitClassUnknown
	}
	return def.Class
}

// CanonicalFactor returns the factor into the class canonical unit. It is
// absent for special and unknown codes.
func (c *Catalog) CanonicalFactor(code string) (float64, bool) {
	def, ok := c.units[code]
	if !ok || !def.Class.Convertible() {
		return 0, false
	}
	return def.Factor, true
}

// Lookup returns the definition registered under code.
func (c *Catalog) Lookup(code string) (domain.UnitDefinition, bool) {
	def, ok := c.units[code]
	return def, ok
}

// Units lists every definition sorted by code.
func (c *Catalog) Units() []domain.UnitDefinition {
	out := make([]domain.UnitDefinition, 0, len(c.units))
	for _, def := range c.units {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (c *Catalog) resolveAlias(code string) (string, bool) {
	target, ok := c.aliases[code]
	return target, ok
}

// cleanCode case-folds, trims, collapses inner whitespace and drops trailing dots.
func cleanCode(code string) string {
	code = strings.ToLower(strings.Join(strings.Fields(code), " "))
	return strings.TrimRight(code, ".")
}

// DefaultUnits is the built-in table used when no reference data is loaded.
func DefaultUnits() []domain.UnitDefinition {
	return []domain.UnitDefinition{
		// liquid, canonical ml
		{Code: "ml", Class: domain.UnitClassLiquid, Factor: 1, Aliases: []string{"milliliter", "milliliters", "millilitre", "millilitres", "mls"}},
		{Code: "cl", Class: domain.UnitClassLiquid, Factor: 10, Aliases: []string{"centiliter", "centiliters", "centilitre", "centilitres"}},
		{Code: "dl", Class: domain.UnitClassLiquid, Factor: 100, Aliases: []string{"deciliter", "deciliters", "decilitre", "decilitres"}},
		{Code: "l", Class: domain.UnitClassLiquid, Factor: 1000, Aliases: []string{"liter", "liters", "litre", "litres", "ltr"}},
		{Code: "oz", Class: domain.UnitClassLiquid, Factor: 29.5735, Aliases: []string{"ounce", "ounces", "fl oz", "fl. oz", "floz", "fluid ounce", "fluid ounces"}},
		{Code: "tsp", Class: domain.UnitClassLiquid, Factor: 4.92892, Aliases: []string{"teaspoon", "teaspoons", "tsps"}},
		{Code: "tbsp", Class: domain.UnitClassLiquid, Factor: 14.7868, Aliases: []string{"tablespoon", "tablespoons", "tblsp", "tbs", "tbsps"}},
		{Code: "cup", Class: domain.UnitClassLiquid, Factor: 236.588, Aliases: []string{"cups"}},
		{Code: "shot", Class: domain.UnitClassLiquid, Factor: 44.3603, Aliases: []string{"shots", "jigger", "jiggers"}},
		{Code: "pint", Class: domain.UnitClassLiquid, Factor: 473.176, Aliases: []string{"pints", "pt"}},

		// solid, canonical g
		{Code: "g", Class: domain.UnitClassSolid, Factor: 1, Aliases: []string{"gram", "grams", "gr", "gramme", "grammes"}},
		{Code: "kg", Class: domain.UnitClassSolid, Factor: 1000, Aliases: []string{"kilogram", "kilograms", "kilo", "kilos"}},
		{Code: "mg", Class: domain.UnitClassSolid, Factor: 0.001, Aliases: []string{"milligram", "milligrams"}},
		{Code: "lb", Class: domain.UnitClassSolid, Factor: 453.592, Aliases: []string{"pound", "pounds", "lbs"}},
		{Code: "cube", Class: domain.UnitClassSolid, Factor: 4, Aliases: []string{"cubes", "sugar cube", "sugar cubes"}},

		// special
		{Code: "piece", Class: domain.UnitClassSpecial, Aliases: []string{"pieces", "pc", "pcs", "whole"}},
		{Code: "dash", Class: domain.UnitClassSpecial, Aliases: []string{"dashes"}},
		{Code: "pinch", Class: domain.UnitClassSpecial, Aliases: []string{"pinches"}},
		{Code: "slice", Class: domain.UnitClassSpecial, Aliases: []string{"slices"}},
		{Code: "leaf", Class: domain.UnitClassSpecial, Aliases: []string{"leaves"}},
		{Code: "sprig", Class: domain.UnitClassSpecial, Aliases: []string{"sprigs"}},
		{Code: "wedge", Class: domain.UnitClassSpecial, Aliases: []string{"wedges"}},
		{Code: "twist", Class: domain.UnitClassSpecial, Aliases: []string{"twists"}},
		{Code: "drop", Class: domain.UnitClassSpecial, Aliases: []string{"drops"}},
		{Code: "splash", Class: domain.UnitClassSpecial, Aliases: []string{"splashes"}},
	}
}
