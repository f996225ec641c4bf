// Package engine holds the unit catalog, unit conversion, quantity
// reconciliation and recipe feasibility logic. Nothing here performs I/O.
package engine

// Config selects the engine policies. Zero values mean DefaultTolerance and
// MergeReplace.
type Config struct {
	Tolerance   float64
	MergePolicy MergePolicy
}

// Engine bundles the components built over one catalog.
type Engine struct {
	Converter   *Converter
	Reconciler  *Reconciler
	Feasibility *Feasibility
}

// New wires the components over catalog. A nil catalog uses DefaultCatalog.
func New(catalog *Catalog, cfg Config) *Engine {
	tolerance := cfg.Tolerance
	if tolerance == 0 {
		tolerance = DefaultTolerance
	}
	conv := NewConverter(catalog, tolerance)
	return &Engine{
		Converter:   conv,
		Reconciler:  NewReconciler(conv, cfg.MergePolicy),
		Feasibility: NewFeasibility(conv),
	}
}
