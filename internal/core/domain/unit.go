package domain

// UnitClass partitions units by how they can be converted.
type UnitClass string

const (
	UnitClassLiquid  UnitClass = "liquid"
	UnitClassSolid   UnitClass = "solid"
	UnitClassSpecial UnitClass = "special" // count-like, never converted
	UnitClassUnknown UnitClass = "unknown" // not registered in the catalog
)

// Convertible reports whether units of this class have a canonical factor.
func (c UnitClass) Convertible() bool {
	return c == UnitClassLiquid || c == UnitClassSolid
}

// Unit is a registered unit identified by its normalized code.
type Unit struct {
	Code  string
	Class UnitClass
}

// UnitDefinition is one row of the unit reference table. Factor converts one
// unit into milliliters (liquid) or grams (solid) and is zero for special units.
type UnitDefinition struct {
	Code    string    `yaml:"code" validate:"required"`
	Class   UnitClass `yaml:"class" validate:"required,oneof=liquid solid special"`
	Factor  float64   `yaml:"factor" validate:"gte=0"`
	Aliases []string  `yaml:"aliases"`
}

// Quantity is an amount expressed in a unit code.
type Quantity struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}
