package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
)

var (
	ErrIncompatibleUnits = errors.New("incompatible units")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrUnknownPolicy     = errors.New("unknown merge policy")
)

// MergePolicy decides what happens when an incoming contribution cannot be
// converted into the existing entry's unit.
type MergePolicy string

const (
	MergeReplace         MergePolicy = "replace"
	MergeReject          MergePolicy = "reject"
	MergeSumIgnoringUnit MergePolicy = "sum_ignoring_unit"
)

// ParseMergePolicy accepts the policy names used in configuration.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch p := MergePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return MergeReplace, nil
	case MergeReplace, MergeReject, MergeSumIgnoringUnit:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// MergeBranch records which rule produced a merged quantity.
type MergeBranch string

const (
	BranchCreated        MergeBranch = "created"
	BranchSameUnit       MergeBranch = "same_unit"
	BranchConverted      MergeBranch = "converted"
	BranchReplaced       MergeBranch = "replaced"
	BranchSummedRawUnits MergeBranch = "summed_ignoring_unit"
)

// Reconciler merges quantity contributions for a single (owner, ingredient)
// key. It does not serialize access; callers hold a per-key lock around the
// read, the merge and the write.
type Reconciler struct {
	conv   *Converter
	policy MergePolicy
}

// NewReconciler builds a Reconciler. An empty policy means MergeReplace.
func NewReconciler(conv *Converter, policy MergePolicy) *Reconciler {
	if policy == "" {
		policy = MergeReplace
	}
	return &Reconciler{conv: conv, policy: policy}
}

// Policy returns the fallback policy for unconvertible merges.
func (r *Reconciler) Policy() MergePolicy {
	return r.policy
}

// Merge folds incoming into existing. A nil existing creates a new quantity.
func (r *Reconciler) Merge(existing *domain.Quantity, incoming domain.Quantity) (domain.Quantity, MergeBranch, error) {
	if err := checkAmount(incoming.Amount); err != nil {
		return domain.Quantity{}, "", err
	}

	incomingUnit := r.conv.Normalize(incoming.Unit)
	if existing == nil {
		return domain.Quantity{Amount: incoming.Amount, Unit: incomingUnit}, BranchCreated, nil
	}

	existingUnit := r.conv.Normalize(existing.Unit)
	if existingUnit == incomingUnit {
		return domain.Quantity{Amount: existing.Amount + incoming.Amount, Unit: existing.Unit}, BranchSameUnit, nil
	}

	class := r.conv.Classify(existingUnit)
	if class.Convertible() && class == r.conv.Classify(incomingUnit) {
		a, _ := r.conv.ToCanonical(existing.Amount, existingUnit)
		b, _ := r.conv.ToCanonical(incoming.Amount, incomingUnit)
		sum, _ := r.conv.FromCanonical(a+b, existingUnit)
		return domain.Quantity{Amount: sum, Unit: existing.Unit}, BranchConverted, nil
	}

	switch r.policy {
	case MergeReject:
		return domain.Quantity{}, "", fmt.Errorf("%w: cannot merge %q into %q", ErrIncompatibleUnits, incomingUnit, existingUnit)
	case MergeSumIgnoringUnit:
		return domain.Quantity{Amount: existing.Amount + incoming.Amount, Unit: existing.Unit}, BranchSummedRawUnits, nil
	default:
		return domain.Quantity{Amount: incoming.Amount, Unit: incomingUnit}, BranchReplaced, nil
	}
}

// MergeStock applies Merge to a stock entry, creating it when existing is nil.
func (r *Reconciler) MergeStock(existing *domain.StockEntry, userID, ingredientID int64, incoming domain.Quantity) (domain.StockEntry, MergeBranch, error) {
	var current *domain.Quantity
	entry := domain.StockEntry{UserID: userID, IngredientID: ingredientID}
	if existing != nil {
		entry = *existing
		current = &existing.Quantity
	}

	q, branch, err := r.Merge(current, incoming)
	if err != nil {
		return domain.StockEntry{}, "", err
	}
	entry.Quantity = q
	return entry, branch, nil
}

// MergeShoppingItem applies Merge to a shopping-list entry. Any successful
// merge clears the done flag.
func (r *Reconciler) MergeShoppingItem(existing *domain.ShoppingListEntry, userID, ingredientID int64, incoming domain.Quantity) (domain.ShoppingListEntry, MergeBranch, error) {
	var current *domain.Quantity
	entry := domain.ShoppingListEntry{UserID: userID, IngredientID: ingredientID}
	if existing != nil {
		entry = *existing
		current = &existing.Quantity
	}

	q, branch, err := r.Merge(current, incoming)
	if err != nil {
		return domain.ShoppingListEntry{}, "", err
	}
	entry.Quantity = q
	entry.Done = false
	return entry, branch, nil
}

// Subtract removes removal from existing, expressed in the existing unit.
// empty is true when the remainder is within tolerance of zero or the removal
// exceeds what is available.
func (r *Reconciler) Subtract(existing, removal domain.Quantity) (remaining domain.Quantity, empty bool, err error) {
	if err := checkAmount(removal.Amount); err != nil {
		return domain.Quantity{}, false, err
	}

	amount, ok := r.conv.Convert(removal.Amount, removal.Unit, existing.Unit)
	if !ok {
		return domain.Quantity{}, false, fmt.Errorf("%w: cannot remove %q from %q",
			ErrIncompatibleUnits, r.conv.Normalize(removal.Unit), r.conv.Normalize(existing.Unit))
	}

	left := existing.Amount - amount
	if r.conv.IsZero(left) {
		return domain.Quantity{Amount: 0, Unit: existing.Unit}, true, nil
	}
	return domain.Quantity{Amount: left, Unit: existing.Unit}, false, nil
}

func checkAmount(amount float64) error {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidQuantity, amount)
	}
	return nil
}
