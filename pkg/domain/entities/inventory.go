package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StockPosition is the on-hand and reserved quantity of one nomenclature item in one warehouse.
// Invariant: 0 <= ReservedQuantity <= Quantity.
type StockPosition struct {
	ID               string
	WarehouseID      string
	NomenclatureID   string
	Quantity         Quantity
	ReservedQuantity Quantity
	UpdatedAt        time.Time
}

// Available returns the unreserved on-hand quantity, never negative
func (p *StockPosition) Available() Quantity {
	return NonNegative(p.Quantity.Sub(p.ReservedQuantity))
}

// CheckInvariant verifies 0 <= reserved <= quantity
func (p *StockPosition) CheckInvariant() error {
	if p.ReservedQuantity.IsNegative() {
		return fmt.Errorf("position %s: reserved quantity %s is negative", p.ID, p.ReservedQuantity)
	}
	if p.ReservedQuantity.GreaterThan(p.Quantity) {
		return fmt.Errorf("position %s: reserved %s exceeds quantity %s", p.ID, p.ReservedQuantity, p.Quantity)
	}
	return nil
}

// StockBatch is a lot within a stock position, consumed oldest receipt date first
type StockBatch struct {
	ID              string
	PositionID      string
	ReceiptDate     time.Time
	InitialQuantity Quantity
	CurrentQuantity Quantity
	Document        DocumentRef
}

// NewStockBatch creates a validated StockBatch
func NewStockBatch(id, positionID string, receiptDate time.Time, quantity Quantity, doc DocumentRef) (*StockBatch, error) {
	if positionID == "" {
		return nil, fmt.Errorf("batch must belong to a stock position")
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("batch quantity must be positive, got %s", quantity)
	}
	return &StockBatch{
		ID:              id,
		PositionID:      positionID,
		ReceiptDate:     receiptDate,
		InitialQuantity: quantity,
		CurrentQuantity: quantity,
		Document:        doc,
	}, nil
}

// ReservationStatus represents the status of a stock reservation
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationReleased  ReservationStatus = "released"
	ReservationCancelled ReservationStatus = "cancelled"
)

// IsActive reports whether the reservation still holds quantity on its position
func (s ReservationStatus) IsActive() bool {
	return s == ReservationPending || s == ReservationConfirmed
}

// StockReservation is a claim of a tree node on a stock position
type StockReservation struct {
	ID             string
	PositionID     string
	NodeID         string
	ProjectID      string
	NomenclatureID string
	Quantity       Quantity
	// ConsumedQuantity is the part already written off from this reservation
	ConsumedQuantity Quantity
	Status           ReservationStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Outstanding is the reserved quantity not yet consumed
func (r *StockReservation) Outstanding() Quantity {
	if !r.Status.IsActive() {
		return decimal.Zero
	}
	return NonNegative(r.Quantity.Sub(r.ConsumedQuantity))
}

// MovementType classifies stock movements
type MovementType string

const (
	MovementReceipt     MovementType = "receipt"
	MovementWriteOff    MovementType = "write_off"
	MovementTransferOut MovementType = "transfer_out"
	MovementTransferIn  MovementType = "transfer_in"
	MovementAdjustment  MovementType = "adjustment"
	MovementReversal    MovementType = "reversal"
)

// DocumentType names the kind of document a movement or batch originates from
type DocumentType string

const (
	DocPurchaseOrder      DocumentType = "purchase_order"
	DocGoodsReceipt       DocumentType = "goods_receipt"
	DocContractorWriteOff DocumentType = "contractor_write_off"
	DocContractorReceipt  DocumentType = "contractor_receipt"
	DocStockTransfer      DocumentType = "stock_transfer"
	DocInventoryCount     DocumentType = "inventory_count"
	DocNodeConsumption    DocumentType = "node_consumption"
)

// DocumentRef points at one line of a document
type DocumentRef struct {
	Type   DocumentType `json:"type"`
	ID     string       `json:"id"`
	LineID string       `json:"line_id,omitempty"`
}

func (d DocumentRef) String() string {
	if d.LineID == "" {
		return fmt.Sprintf("%s/%s", d.Type, d.ID)
	}
	return fmt.Sprintf("%s/%s#%s", d.Type, d.ID, d.LineID)
}

// BatchDraw records how much of a batch a movement touched
type BatchDraw struct {
	BatchID     string    `json:"batch_id"`
	Quantity    Quantity  `json:"quantity"`
	ReceiptDate time.Time `json:"receipt_date"`
}

// StockMovement is an append-only ledger entry. Cancellations append a
// compensating movement with ReversesID set; originals are never edited.
type StockMovement struct {
	ID             string
	PositionID     string
	WarehouseID    string
	NomenclatureID string
	Type           MovementType
	// Quantity is signed: positive for inbound, negative for outbound
	Quantity     Quantity
	BalanceAfter Quantity
	Document     DocumentRef
	NodeID       string
	// ReservationID and ReservedConsumed are set when stock was drawn from a reservation
	ReservationID    string
	ReservedConsumed Quantity
	BatchDraws       []BatchDraw
	ReversesID       string
	CreatedAt        time.Time
}

// IsInbound reports whether the movement added stock
func (m *StockMovement) IsInbound() bool {
	return m.Quantity.IsPositive()
}

// Clone returns a deep copy of the movement
func (m *StockMovement) Clone() *StockMovement {
	out := *m
	out.BatchDraws = append([]BatchDraw(nil), m.BatchDraws...)
	return &out
}

// SumDraws totals the batch draws of a movement
func SumDraws(draws []BatchDraw) Quantity {
	total := decimal.Zero
	for _, d := range draws {
		total = total.Add(d.Quantity)
	}
	return total
}
