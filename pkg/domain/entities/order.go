package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentStatus is the lifecycle state shared by all stock documents
type DocumentStatus string

const (
	StatusDraft             DocumentStatus = "draft"
	StatusConfirmed         DocumentStatus = "confirmed"
	StatusPartiallyReceived DocumentStatus = "partially_received"
	StatusReceived          DocumentStatus = "received"
	StatusCancelled         DocumentStatus = "cancelled"
	StatusShipped           DocumentStatus = "shipped"
	StatusCompleted         DocumentStatus = "completed"
)

// OrderAllocation records which requirement a purchase order line was linked to
type OrderAllocation struct {
	RequirementID string   `json:"requirement_id"`
	NodeID        string   `json:"node_id"`
	Quantity      Quantity `json:"quantity"`
}

// PurchaseOrderLine is one ordered nomenclature item
type PurchaseOrderLine struct {
	ID               string   `json:"id"`
	NomenclatureID   string   `json:"nomenclature_id"`
	Quantity         Quantity `json:"quantity"`
	ReceivedQuantity Quantity `json:"received_quantity"`
	// RequirementIDs optionally pins the line to specific requirements
	RequirementIDs []string          `json:"requirement_ids,omitempty"`
	Allocations    []OrderAllocation `json:"allocations,omitempty"`
}

// Allocated totals the requirement allocations of the line
func (l *PurchaseOrderLine) Allocated() Quantity {
	total := decimal.Zero
	for _, a := range l.Allocations {
		total = total.Add(a.Quantity)
	}
	return total
}

// PurchaseOrder is an order placed with a supplier
type PurchaseOrder struct {
	ID                   string
	Number               string
	SupplierID           string
	Status               DocumentStatus
	OrderDate            *time.Time
	ExpectedDeliveryDate *time.Time
	Lines                []PurchaseOrderLine
	ConfirmedAt          *time.Time
	Deleted              bool
	DeletedAt            *time.Time
	CreatedAt            time.Time
}

// NewPurchaseOrder creates a validated draft order
func NewPurchaseOrder(id, number, supplierID string, lines []PurchaseOrderLine) (*PurchaseOrder, error) {
	if supplierID == "" {
		return nil, fmt.Errorf("purchase order %s has no supplier", number)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("purchase order %s has no lines", number)
	}
	for _, l := range lines {
		if l.NomenclatureID == "" {
			return nil, fmt.Errorf("purchase order %s: line %s has no nomenclature", number, l.ID)
		}
		if !l.Quantity.IsPositive() {
			return nil, fmt.Errorf("purchase order %s: line %s quantity must be positive, got %s", number, l.ID, l.Quantity)
		}
	}
	return &PurchaseOrder{
		ID:         id,
		Number:     number,
		SupplierID: supplierID,
		Status:     StatusDraft,
		Lines:      clonePOLines(lines),
	}, nil
}

// Line returns the line with the given ID
func (o *PurchaseOrder) Line(id string) (*PurchaseOrderLine, bool) {
	for i := range o.Lines {
		if o.Lines[i].ID == id {
			return &o.Lines[i], true
		}
	}
	return nil, false
}

// IsOpen reports whether the order still occupies its linked requirements
func (o *PurchaseOrder) IsOpen() bool {
	switch o.Status {
	case StatusDraft, StatusConfirmed, StatusPartiallyReceived:
		return !o.Deleted
	}
	return false
}

// Clone returns a deep copy of the order
func (o *PurchaseOrder) Clone() *PurchaseOrder {
	out := *o
	out.Lines = clonePOLines(o.Lines)
	return &out
}

func clonePOLines(lines []PurchaseOrderLine) []PurchaseOrderLine {
	out := make([]PurchaseOrderLine, len(lines))
	for i, l := range lines {
		l.RequirementIDs = append([]string(nil), l.RequirementIDs...)
		l.Allocations = append([]OrderAllocation(nil), l.Allocations...)
		out[i] = l
	}
	return out
}

// ReceiptAllocation records which requirement received part of a goods receipt line
type ReceiptAllocation struct {
	RequirementID string   `json:"requirement_id"`
	NodeID        string   `json:"node_id"`
	Quantity      Quantity `json:"quantity"`
	// ReservationIDs hold the stock reserved for the node on confirmation
	ReservationIDs []string `json:"reservation_ids,omitempty"`
	// SplitFromNodeID is set when the allocation split the node it was made for
	SplitFromNodeID string `json:"split_from_node_id,omitempty"`
}

// GoodsReceiptLine is one received nomenclature item of an order line
type GoodsReceiptLine struct {
	ID             string              `json:"id"`
	OrderLineID    string              `json:"order_line_id"`
	NomenclatureID string              `json:"nomenclature_id"`
	Quantity       Quantity            `json:"quantity"`
	Allocations    []ReceiptAllocation `json:"allocations,omitempty"`
}

// GoodsReceipt books delivered goods of a purchase order into a warehouse
type GoodsReceipt struct {
	ID          string
	Number      string
	OrderID     string
	WarehouseID string
	ReceiptDate time.Time
	Status      DocumentStatus
	Lines       []GoodsReceiptLine
	ConfirmedAt *time.Time
	CreatedAt   time.Time
}

// Clone returns a deep copy of the receipt
func (r *GoodsReceipt) Clone() *GoodsReceipt {
	out := *r
	out.Lines = make([]GoodsReceiptLine, len(r.Lines))
	for i, l := range r.Lines {
		allocs := make([]ReceiptAllocation, len(l.Allocations))
		for j, a := range l.Allocations {
			a.ReservationIDs = append([]string(nil), a.ReservationIDs...)
			allocs[j] = a
		}
		l.Allocations = allocs
		out.Lines[i] = l
	}
	return &out
}

// ContractorWriteOffLine is material handed over to a contractor
type ContractorWriteOffLine struct {
	ID             string   `json:"id"`
	NomenclatureID string   `json:"nomenclature_id"`
	Quantity       Quantity `json:"quantity"`
	// NodeID is the material node the stock was reserved for, if any
	NodeID       string `json:"node_id,omitempty"`
	FromReserved bool   `json:"from_reserved"`
}

// ContractorWriteOff writes off material sent to a contractor for manufacturing TargetNodeID
type ContractorWriteOff struct {
	ID           string
	Number       string
	ContractorID string
	WarehouseID  string
	TargetNodeID string
	Status       DocumentStatus
	Lines        []ContractorWriteOffLine
	ConfirmedAt  *time.Time
	CreatedAt    time.Time
}

// Clone returns a deep copy of the write-off
func (w *ContractorWriteOff) Clone() *ContractorWriteOff {
	out := *w
	out.Lines = append([]ContractorWriteOffLine(nil), w.Lines...)
	return &out
}

// ContractorReceiptLine is a product returned by a contractor
type ContractorReceiptLine struct {
	ID             string   `json:"id"`
	NomenclatureID string   `json:"nomenclature_id"`
	Quantity       Quantity `json:"quantity"`
	NodeID         string   `json:"node_id,omitempty"`
}

// ContractorReceipt books products manufactured by a contractor into a warehouse
type ContractorReceipt struct {
	ID           string
	Number       string
	ContractorID string
	WarehouseID  string
	ReceiptDate  time.Time
	Status       DocumentStatus
	Lines        []ContractorReceiptLine
	ConfirmedAt  *time.Time
	CreatedAt    time.Time
}

// Clone returns a deep copy of the contractor receipt
func (r *ContractorReceipt) Clone() *ContractorReceipt {
	out := *r
	out.Lines = append([]ContractorReceiptLine(nil), r.Lines...)
	return &out
}

// StockTransferLine moves one nomenclature item between warehouses
type StockTransferLine struct {
	ID             string   `json:"id"`
	NomenclatureID string   `json:"nomenclature_id"`
	Quantity       Quantity `json:"quantity"`
	// Draws are the source batches taken on shipment, recreated on receipt
	Draws []BatchDraw `json:"draws,omitempty"`
}

// StockTransfer ships stock from one warehouse and receives it at another
type StockTransfer struct {
	ID              string
	Number          string
	FromWarehouseID string
	ToWarehouseID   string
	Status          DocumentStatus
	Lines           []StockTransferLine
	ShippedAt       *time.Time
	ReceivedAt      *time.Time
	CreatedAt       time.Time
}

// Clone returns a deep copy of the transfer
func (t *StockTransfer) Clone() *StockTransfer {
	out := *t
	out.Lines = make([]StockTransferLine, len(t.Lines))
	for i, l := range t.Lines {
		l.Draws = append([]BatchDraw(nil), l.Draws...)
		out.Lines[i] = l
	}
	return &out
}

// InventoryCountLine is the counted quantity of one item
type InventoryCountLine struct {
	ID              string   `json:"id"`
	NomenclatureID  string   `json:"nomenclature_id"`
	CountedQuantity Quantity `json:"counted_quantity"`
	// BookQuantity is the on-hand quantity seen when the count was completed
	BookQuantity Quantity `json:"book_quantity"`
}

// InventoryCount reconciles booked stock of a warehouse with a physical count
type InventoryCount struct {
	ID          string
	Number      string
	WarehouseID string
	Status      DocumentStatus
	Lines       []InventoryCountLine
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// Clone returns a deep copy of the count
func (c *InventoryCount) Clone() *InventoryCount {
	out := *c
	out.Lines = append([]InventoryCountLine(nil), c.Lines...)
	return &out
}

// Sequence is a named monotonically increasing counter
type Sequence struct {
	Name  string
	Value int64
}
