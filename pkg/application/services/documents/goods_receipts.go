package documents

import (
	"fmt"
	"time"

	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/stock"
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/events"
)

// ReceiptLineInput receives part of an order line
type ReceiptLineInput struct {
	OrderLineID string
	Quantity    entities.Quantity
}

// GoodsReceiptInput describes a new goods receipt
type GoodsReceiptInput struct {
	OrderID     string
	WarehouseID string
	ReceiptDate *time.Time
	Lines       []ReceiptLineInput
}

// CreateGoodsReceipt stores a draft receipt against a confirmed order
func (s *Service) CreateGoodsReceipt(sc *shared.Scope, in GoodsReceiptInput) (*entities.GoodsReceipt, error) {
	order, err := s.liveOrder(sc, in.OrderID)
	if err != nil {
		return nil, err
	}
	if _, err := sc.Tx.Catalog().GetWarehouse(in.WarehouseID); err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, apperrors.Validation("goods receipt has no lines")
	}
	lines := make([]entities.GoodsReceiptLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		ol, ok := order.Line(l.OrderLineID)
		if !ok {
			return nil, apperrors.NotFound("purchase order line", l.OrderLineID)
		}
		lines = append(lines, entities.GoodsReceiptLine{
			ID:             shared.NewID(),
			OrderLineID:    ol.ID,
			NomenclatureID: ol.NomenclatureID,
			Quantity:       l.Quantity,
		})
	}
	number, err := shared.NextDocumentNumber(sc, shared.GoodsReceiptSequence)
	if err != nil {
		return nil, err
	}
	receipt := &entities.GoodsReceipt{
		ID:          shared.NewID(),
		Number:      number,
		OrderID:     order.ID,
		WarehouseID: in.WarehouseID,
		ReceiptDate: dateOr(in.ReceiptDate, sc.Now),
		Status:      entities.StatusDraft,
		Lines:       lines,
		CreatedAt:   sc.Now,
	}
	return receipt, sc.Tx.Receipts().Save(receipt)
}

// ConfirmGoodsReceipt books the received goods and distributes each line over
// the order's requirements earliest need first. Covered requirements close
// and their goods are reserved for their nodes; a requirement covered in
// part is split first.
func (s *Service) ConfirmGoodsReceipt(sc *shared.Scope, id string) (*entities.GoodsReceipt, error) {
	receipt, err := sc.Tx.Receipts().Get(id)
	if err != nil {
		return nil, err
	}
	if receipt.Status != entities.StatusDraft {
		return nil, apperrors.Validation("goods receipt %s is %s, only drafts can be confirmed", receipt.Number, receipt.Status)
	}
	order, err := s.liveOrder(sc, receipt.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != entities.StatusConfirmed && order.Status != entities.StatusPartiallyReceived {
		return nil, apperrors.Validation("purchase order %s is %s and cannot receive goods", order.Number, order.Status)
	}

	for i := range receipt.Lines {
		line := &receipt.Lines[i]
		ol, ok := order.Line(line.OrderLineID)
		if !ok {
			return nil, apperrors.NotFound("purchase order line", line.OrderLineID)
		}
		outstanding := entities.NonNegative(ol.Quantity.Sub(ol.ReceivedQuantity))
		if !line.Quantity.IsPositive() || line.Quantity.GreaterThan(outstanding) {
			return nil, apperrors.Validation("goods receipt %s line %s: quantity %s does not fit the %s outstanding on the order line",
				receipt.Number, line.ID, line.Quantity, outstanding)
		}
		m, err := s.stock.Receive(sc, stock.ReceiveRequest{
			WarehouseID:    receipt.WarehouseID,
			NomenclatureID: line.NomenclatureID,
			Quantity:       line.Quantity,
			ReceiptDate:    receipt.ReceiptDate,
			Document:       entities.DocumentRef{Type: entities.DocGoodsReceipt, ID: receipt.ID, LineID: line.ID},
			Type:           entities.MovementReceipt,
		})
		if err != nil {
			return nil, err
		}
		allocs, err := s.allocateReceipt(sc, ol, line.Quantity, m.PositionID)
		if err != nil {
			return nil, fmt.Errorf("goods receipt %s line %s: %w", receipt.Number, line.ID, err)
		}
		line.Allocations = allocs
		ol.ReceivedQuantity = ol.ReceivedQuantity.Add(line.Quantity)
	}

	order.Status = receivedStatus(order)
	if err := sc.Tx.Orders().Save(order); err != nil {
		return nil, err
	}
	receipt.Status = entities.StatusConfirmed
	receipt.ConfirmedAt = entities.DatePtr(sc.Now)
	if err := sc.Tx.Receipts().Save(receipt); err != nil {
		return nil, err
	}
	s.recordTransition(sc, events.DocumentConfirmedEvent, receiptRef(receipt), entities.StatusDraft, receipt.Status)
	return receipt, nil
}

// allocateReceipt hands qty of an order line to the requirements the line
// still owes, reserving the goods on positionID
func (s *Service) allocateReceipt(sc *shared.Scope, ol *entities.PurchaseOrderLine, qty entities.Quantity, positionID string) ([]entities.ReceiptAllocation, error) {
	var reqs []*entities.Requirement
	open := map[string]entities.Quantity{}
	for _, a := range ol.Allocations {
		r, err := sc.Tx.Requirements().Get(a.RequirementID)
		if err != nil {
			return nil, err
		}
		if r.Deleted || r.Status != entities.PurchaseInOrder || !a.Quantity.IsPositive() {
			continue
		}
		reqs = append(reqs, r)
		open[r.ID] = a.Quantity
	}
	entries := shared.PriorityEntries(sc, reqs)
	shared.SortByPriority(entries)
	candidates := make([]shared.AllocationCandidate, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, shared.AllocationCandidate{
			RequirementID: e.Requirement.ID,
			NodeID:        e.Requirement.NodeID,
			Open:          open[e.Requirement.ID],
		})
	}

	plan := shared.Distribute(qty, candidates)
	out := make([]entities.ReceiptAllocation, 0, len(plan.Allocations))
	for _, a := range plan.Allocations {
		req, err := sc.Tx.Requirements().Get(a.Candidate.RequirementID)
		if err != nil {
			return nil, err
		}
		node, err := sc.Tx.Tree().Get(req.NodeID)
		if err != nil {
			return nil, err
		}
		alloc := entities.ReceiptAllocation{Quantity: a.AllocatedQty}
		if a.Partial && a.AllocatedQty.LessThan(node.Quantity) {
			original := node.ID
			req, node, err = s.requirements.Split(sc, req, node, a.AllocatedQty)
			if err != nil {
				return nil, err
			}
			moveAllocation(ol, a.Candidate.RequirementID, req, node, a.AllocatedQty)
			alloc.SplitFromNodeID = original
		}
		res, err := s.stock.ReserveOnPosition(sc, positionID, stock.ReserveRequest{
			NodeID:         node.ID,
			ProjectID:      node.ProjectID,
			NomenclatureID: node.NomenclatureID,
			Quantity:       a.AllocatedQty,
		})
		if err != nil {
			return nil, err
		}
		if err := s.requirements.SetPurchaseStatus(sc, node, entities.PurchaseClosed); err != nil {
			return nil, err
		}
		alloc.RequirementID = req.ID
		alloc.NodeID = node.ID
		alloc.ReservationIDs = []string{res.ID}
		out = append(out, alloc)
	}
	return out, nil
}

// moveAllocation transfers qty of an order line allocation from a split
// requirement to its new half
func moveAllocation(ol *entities.PurchaseOrderLine, fromRequirementID string, half *entities.Requirement, node *entities.TreeNode, qty entities.Quantity) {
	for i := range ol.Allocations {
		if ol.Allocations[i].RequirementID == fromRequirementID {
			ol.Allocations[i].Quantity = entities.NonNegative(ol.Allocations[i].Quantity.Sub(qty))
		}
	}
	ol.Allocations = append(ol.Allocations, entities.OrderAllocation{RequirementID: half.ID, NodeID: node.ID, Quantity: qty})
}

func receivedStatus(o *entities.PurchaseOrder) entities.DocumentStatus {
	some, all := false, true
	for _, l := range o.Lines {
		if l.ReceivedQuantity.IsPositive() {
			some = true
		}
		if l.ReceivedQuantity.LessThan(l.Quantity) {
			all = false
		}
	}
	switch {
	case all:
		return entities.StatusReceived
	case some:
		return entities.StatusPartiallyReceived
	default:
		return entities.StatusConfirmed
	}
}

// CancelGoodsReceiptConfirmation returns a confirmed receipt to draft,
// releasing what it reserved, reopening the requirements it closed and
// reversing its stock movements. Goods already consumed block it.
func (s *Service) CancelGoodsReceiptConfirmation(sc *shared.Scope, id string) (*entities.GoodsReceipt, error) {
	receipt, err := sc.Tx.Receipts().Get(id)
	if err != nil {
		return nil, err
	}
	if receipt.Status != entities.StatusConfirmed {
		return nil, apperrors.Validation("goods receipt %s is %s, only confirmed receipts can be cancelled", receipt.Number, receipt.Status)
	}
	order, err := sc.Tx.Orders().Get(receipt.OrderID)
	if err != nil {
		return nil, err
	}

	var blocking []string
	for _, line := range receipt.Lines {
		for _, a := range line.Allocations {
			for _, resID := range a.ReservationIDs {
				r, err := sc.Tx.Stock().GetReservation(resID)
				if err != nil {
					return nil, err
				}
				if r.ConsumedQuantity.IsPositive() || !r.Status.IsActive() {
					blocking = append(blocking, fmt.Sprintf("line %s: goods reserved for node %s were already used", line.ID, a.NodeID))
				}
			}
			node, err := sc.Tx.Tree().Get(a.NodeID)
			if err != nil {
				return nil, err
			}
			if node.PurchaseStatus != entities.PurchaseClosed {
				blocking = append(blocking, fmt.Sprintf("line %s: node %s is %s", line.ID, node.Name, node.PurchaseStatus))
			}
		}
	}
	if len(blocking) > 0 {
		return nil, apperrors.Conflict(fmt.Sprintf("goods receipt %s cannot be cancelled", receipt.Number), blocking...)
	}

	for i := len(receipt.Lines) - 1; i >= 0; i-- {
		line := &receipt.Lines[i]
		for _, a := range line.Allocations {
			for _, resID := range a.ReservationIDs {
				if _, err := s.stock.Release(sc, resID); err != nil {
					return nil, err
				}
			}
			node, err := sc.Tx.Tree().Get(a.NodeID)
			if err != nil {
				return nil, err
			}
			if err := s.requirements.SetPurchaseStatus(sc, node, entities.PurchaseInOrder); err != nil {
				return nil, err
			}
		}
		line.Allocations = nil
		if ol, ok := order.Line(line.OrderLineID); ok {
			ol.ReceivedQuantity = entities.NonNegative(ol.ReceivedQuantity.Sub(line.Quantity))
		}
	}
	if _, err := s.stock.Reverse(sc, entities.DocGoodsReceipt, receipt.ID); err != nil {
		return nil, err
	}

	order.Status = receivedStatus(order)
	if err := sc.Tx.Orders().Save(order); err != nil {
		return nil, err
	}
	receipt.Status = entities.StatusDraft
	receipt.ConfirmedAt = nil
	if err := sc.Tx.Receipts().Save(receipt); err != nil {
		return nil, err
	}
	s.recordTransition(sc, events.DocumentCancelledEvent, receiptRef(receipt), entities.StatusConfirmed, receipt.Status)
	return receipt, nil
}

// CancelGoodsReceipt discards a draft receipt
func (s *Service) CancelGoodsReceipt(sc *shared.Scope, id string) (*entities.GoodsReceipt, error) {
	receipt, err := sc.Tx.Receipts().Get(id)
	if err != nil {
		return nil, err
	}
	if receipt.Status != entities.StatusDraft {
		return nil, apperrors.Validation("goods receipt %s is %s, cancel its confirmation first", receipt.Number, receipt.Status)
	}
	receipt.Status = entities.StatusCancelled
	if err := sc.Tx.Receipts().Save(receipt); err != nil {
		return nil, err
	}
	s.recordTransition(sc, events.DocumentCancelledEvent, receiptRef(receipt), entities.StatusDraft, receipt.Status)
	return receipt, nil
}

func receiptRef(r *entities.GoodsReceipt) entities.DocumentRef {
	return entities.DocumentRef{Type: entities.DocGoodsReceipt, ID: r.ID}
}
