package entities

import "time"

// Requirement is the demand record of one (nomenclature, project, tree node).
// Quantities are recomputed from stock on demand; only the Status and the
// order link are changed by document workflows.
type Requirement struct {
	ID             string
	NomenclatureID string
	ProjectID      string
	NodeID         string

	TotalRequired  Quantity
	TotalAvailable Quantity
	// TotalReserved counts reservations held by other nodes for the same item
	TotalReserved Quantity
	// ReservedForNode is stock already claimed by this requirement's own node
	ReservedForNode Quantity
	TotalInOrder    Quantity
	SafetyStock     Quantity
	ToOrder         Quantity

	Status          PurchaseStatus
	PurchaseOrderID string
	OrderByDate     *time.Time

	Problem        bool
	ProblemReasons []ProblemReason

	Deleted   bool
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpen reports whether the requirement still waits for an order
func (r *Requirement) IsOpen() bool {
	return !r.Deleted && r.Status == PurchaseWaitingOrder && r.PurchaseOrderID == ""
}

// Clone returns a deep copy of the requirement
func (r *Requirement) Clone() *Requirement {
	out := *r
	out.ProblemReasons = append([]ProblemReason(nil), r.ProblemReasons...)
	return &out
}
