package services

import (
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

// RequirementInputs are the stock figures a requirement is computed from
type RequirementInputs struct {
	Required Quantity
	// OnHand is the on-hand quantity of the item across all warehouses
	OnHand           Quantity
	ReservedByOthers Quantity
	ReservedForNode  Quantity
	InOrder          Quantity
	SafetyStock      Quantity
}

// Quantity mirrors entities.Quantity for brevity
type Quantity = entities.Quantity

// RequirementFigures are the displayed numbers of a requirement
type RequirementFigures struct {
	TotalAvailable  Quantity
	TotalReserved   Quantity
	ReservedForNode Quantity
	FreeStock       Quantity
	AlreadyCovered  Quantity
	TotalInOrder    Quantity
	ToOrder         Quantity
}

// CalculateRequirement applies the to-order rule. The node's own reservation
// counts as covered once; it is taken out of the free stock so that on-hand
// units reserved for this node are not counted twice.
func CalculateRequirement(in RequirementInputs) RequirementFigures {
	free := entities.NonNegative(in.OnHand.Sub(in.ReservedByOthers).Sub(in.ReservedForNode))
	covered := in.ReservedForNode.Add(free)
	toOrder := entities.NonNegative(in.Required.Sub(covered).Add(in.SafetyStock))
	return RequirementFigures{
		TotalAvailable:  in.OnHand,
		TotalReserved:   in.ReservedByOthers,
		ReservedForNode: in.ReservedForNode,
		FreeStock:       free,
		AlreadyCovered:  covered,
		TotalInOrder:    in.InOrder,
		ToOrder:         toOrder,
	}
}

// ApplyFigures copies computed figures onto a requirement row
func ApplyFigures(r *entities.Requirement, required, safety Quantity, f RequirementFigures) {
	r.TotalRequired = required
	r.SafetyStock = safety
	r.TotalAvailable = f.TotalAvailable
	r.TotalReserved = f.TotalReserved
	r.ReservedForNode = f.ReservedForNode
	r.TotalInOrder = f.TotalInOrder
	r.ToOrder = f.ToOrder
}
