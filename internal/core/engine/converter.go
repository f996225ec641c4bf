package engine

import (
	"math"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
)

// DefaultTolerance absorbs rounding from repeated conversions. It is used both
// as the relative slack in sufficiency checks and as the absolute threshold
// under which an entry is considered empty.
const DefaultTolerance = 1e-4

// Converter normalizes, classifies and compares unit-tagged amounts.
// It holds no mutable state and is safe for concurrent use.
type Converter struct {
	catalog   *Catalog
	tolerance float64
}

// NewConverter builds a Converter over catalog. A negative or NaN tolerance
// falls back to DefaultTolerance.
func NewConverter(catalog *Catalog, tolerance float64) *Converter {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if tolerance < 0 || math.IsNaN(tolerance) {
		tolerance = DefaultTolerance
	}
	return &Converter{catalog: catalog, tolerance: tolerance}
}

// Catalog returns the unit table the converter reads from.
func (c *Converter) Catalog() *Catalog {
	return c.catalog
}

// Tolerance returns the configured epsilon.
func (c *Converter) Tolerance() float64 {
	return c.tolerance
}

// IsZero reports whether amount is small enough to delete an entry holding it.
func (c *Converter) IsZero(amount float64) bool {
	return amount <= c.tolerance
}

// Normalize case-folds and trims code and collapses known aliases onto their
// canonical code. Unknown codes pass through cleaned but otherwise unchanged.
func (c *Converter) Normalize(code string) string {
	cleaned := cleanCode(code)
	if target, ok := c.catalog.resolveAlias(cleaned); ok {
		return target
	}
	return cleaned
}

// Classify normalizes code and returns its class.
func (c *Converter) Classify(code string) domain.UnitClass {
	return c.catalog.Classify(c.Normalize(code))
}

// Unit resolves code into a Unit value.
func (c *Converter) Unit(code string) domain.Unit {
	normalized := c.Normalize(code)
	return domain.Unit{Code: normalized, Class: c.catalog.Classify(normalized)}
}

// ToCanonical converts amount into milliliters or grams. The result is absent
// for special and unknown units.
func (c *Converter) ToCanonical(amount float64, code string) (float64, bool) {
	factor, ok := c.catalog.CanonicalFactor(c.Normalize(code))
	if !ok {
		return 0, false
	}
	return amount * factor, true
}

// FromCanonical converts a canonical amount back into code.
func (c *Converter) FromCanonical(canonical float64, code string) (float64, bool) {
	factor, ok := c.catalog.CanonicalFactor(c.Normalize(code))
	if !ok {
		return 0, false
	}
	return canonical / factor, true
}

// Convert expresses amount of from in units of to. Identical codes always
// convert; otherwise both must share a convertible class.
func (c *Converter) Convert(amount float64, from, to string) (float64, bool) {
	nf, nt := c.Normalize(from), c.Normalize(to)
	if nf == nt {
		return amount, true
	}
	if !c.ClassesCompatible(nf, nt) {
		return 0, false
	}
	canonical, _ := c.ToCanonical(amount, nf)
	return c.FromCanonical(canonical, nt)
}

// ClassesCompatible is true when both codes share liquid or solid class, or
// when they are the same special or unknown code.
func (c *Converter) ClassesCompatible(a, b string) bool {
	na, nb := c.Normalize(a), c.Normalize(b)
	ca, cb := c.catalog.Classify(na), c.catalog.Classify(nb)
	if ca.Convertible() {
		return ca == cb
	}
	return !cb.Convertible() && na == nb
}

// IsSufficient reports whether available covers required. A non-positive
// requirement is always satisfied.
func (c *Converter) IsSufficient(required float64, requiredUnit string, available float64, availableUnit string) bool {
	if required <= 0 {
		return true
	}
	if math.IsNaN(available) {
		return false
	}
	if !c.ClassesCompatible(requiredUnit, availableUnit) {
		return false
	}

	nr, na := c.Normalize(requiredUnit), c.Normalize(availableUnit)
	if nr != na {
		required, _ = c.ToCanonical(required, nr)
		available, _ = c.ToCanonical(available, na)
	}
	return available >= required*(1-c.tolerance)
}
