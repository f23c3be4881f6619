package entities

import "time"

// ProjectStatus represents the lifecycle of a project
type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
)

// Project owns one tree of nodes instantiated from a root nomenclature item
type Project struct {
	ID          string
	Name        string
	Status      ProjectStatus
	DueDate     *time.Time
	RootNodeID  string
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// Track selects one of the two status fields of a tree node
type Track string

const (
	TrackManufacturing Track = "manufacturing"
	TrackPurchase      Track = "purchase"
)

// ManufacturingStatus is the manufacturing-or-contractor track of a node
type ManufacturingStatus string

const (
	ManufacturingNotStarted           ManufacturingStatus = "not_started"
	ManufacturingInProgress           ManufacturingStatus = "in_progress"
	ManufacturingSuspended            ManufacturingStatus = "suspended"
	ManufacturingCompleted            ManufacturingStatus = "completed"
	ContractorSent                    ManufacturingStatus = "sent_to_contractor"
	ContractorInProgress              ManufacturingStatus = "in_progress_by_contractor"
	ContractorSuspended               ManufacturingStatus = "suspended_by_contractor"
	ContractorManufactured            ManufacturingStatus = "manufactured_by_contractor"
)

// IsContractorStatus reports whether the status belongs to the contractor path
func (s ManufacturingStatus) IsContractorStatus() bool {
	switch s {
	case ContractorSent, ContractorInProgress, ContractorSuspended, ContractorManufactured:
		return true
	}
	return false
}

// PurchaseStatus is the purchasing track of a node
type PurchaseStatus string

const (
	PurchaseWaitingOrder PurchaseStatus = "waiting_order"
	PurchaseInOrder      PurchaseStatus = "in_order"
	PurchaseClosed       PurchaseStatus = "closed"
	PurchaseWrittenOff   PurchaseStatus = "written_off"
)

// IsTerminal reports whether no further purchasing is needed
func (s PurchaseStatus) IsTerminal() bool {
	return s == PurchaseClosed || s == PurchaseWrittenOff
}

// ProblemReason names one derived problem of a node
type ProblemReason string

const (
	ProblemOrderOverdue         ProblemReason = "order_overdue"
	ProblemOrderedLate          ProblemReason = "ordered_late"
	ProblemDeliveryDelayed      ProblemReason = "delivery_delayed"
	ProblemManufacturingOverdue ProblemReason = "manufacturing_overdue"
)

// TreeNode is a per-project, mutable working copy of a BOM position
type TreeNode struct {
	ID             string
	ProjectID      string
	ParentID       string // empty for the root
	NomenclatureID string
	CategoryID     string
	Name           string
	DisplayNumber  int64
	Quantity       Quantity
	Unit           string
	Purchased      bool
	// Source is the supplier of a purchased node or the contractor of a contractor-made node
	Source        CounterpartyRef
	ResponsibleID string

	ManufacturingStatus ManufacturingStatus
	PurchaseStatus      PurchaseStatus

	PlannedStart         *time.Time
	PlannedEnd           *time.Time
	ActualStart          *time.Time
	ActualEnd            *time.Time
	RequiredDate         *time.Time
	OrderByDate          *time.Time
	OrderedAt            *time.Time
	ExpectedDeliveryDate *time.Time

	Problem           bool
	ProblemReasons    []ProblemReason
	LastProblemReason string

	SplitFromID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsRoot reports whether the node has no parent
func (n *TreeNode) IsRoot() bool {
	return n.ParentID == ""
}

// IsContractorMade reports whether a manufactured node follows the contractor path
func (n *TreeNode) IsContractorMade() bool {
	return !n.Purchased && n.Source.Kind == CounterpartyContractor
}

// IsFinished reports whether the node is in a terminal state of its own track
func (n *TreeNode) IsFinished() bool {
	if n.Purchased {
		return n.PurchaseStatus.IsTerminal()
	}
	return n.ManufacturingStatus == ManufacturingCompleted
}

// Clone returns a deep copy of the node
func (n *TreeNode) Clone() *TreeNode {
	out := *n
	out.ProblemReasons = append([]ProblemReason(nil), n.ProblemReasons...)
	return &out
}

// DatePtr returns a pointer to t, handy for optional dates
func DatePtr(t time.Time) *time.Time {
	return &t
}
