package documents

import (
	"fmt"
	"time"

	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/events"
)

// OrderLineInput is one line of a new purchase order
type OrderLineInput struct {
	NomenclatureID string
	Quantity       entities.Quantity
	// RequirementIDs pins the line to these requirements instead of all open ones
	RequirementIDs []string
}

// PurchaseOrderInput describes a new purchase order
type PurchaseOrderInput struct {
	SupplierID           string
	OrderDate            *time.Time
	ExpectedDeliveryDate *time.Time
	Lines                []OrderLineInput
}

// CreatePurchaseOrder stores a draft order
func (s *Service) CreatePurchaseOrder(sc *shared.Scope, in PurchaseOrderInput) (*entities.PurchaseOrder, error) {
	if _, err := sc.Tx.Catalog().GetSupplier(in.SupplierID); err != nil {
		return nil, err
	}
	lines := make([]entities.PurchaseOrderLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		if _, err := sc.Tx.Catalog().GetNomenclature(l.NomenclatureID); err != nil {
			return nil, err
		}
		lines = append(lines, entities.PurchaseOrderLine{
			ID:             shared.NewID(),
			NomenclatureID: l.NomenclatureID,
			Quantity:       l.Quantity,
			RequirementIDs: append([]string(nil), l.RequirementIDs...),
		})
	}
	number, err := shared.NextDocumentNumber(sc, shared.PurchaseOrderSequence)
	if err != nil {
		return nil, err
	}
	order, err := entities.NewPurchaseOrder(shared.NewID(), number, in.SupplierID, lines)
	if err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}
	order.OrderDate = in.OrderDate
	order.ExpectedDeliveryDate = in.ExpectedDeliveryDate
	order.CreatedAt = sc.Now
	if err := sc.Tx.Orders().Save(order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) liveOrder(sc *shared.Scope, id string) (*entities.PurchaseOrder, error) {
	order, err := sc.Tx.Orders().Get(id)
	if err != nil {
		return nil, err
	}
	if order.Deleted {
		return nil, apperrors.NotFound("purchase order", id)
	}
	return order, nil
}

// ConfirmPurchaseOrder links every line to open requirements by priority and
// puts the covered nodes in order
func (s *Service) ConfirmPurchaseOrder(sc *shared.Scope, id string) (*entities.PurchaseOrder, error) {
	order, err := s.liveOrder(sc, id)
	if err != nil {
		return nil, err
	}
	if order.Status != entities.StatusDraft {
		return nil, apperrors.Validation("purchase order %s is %s, only drafts can be confirmed", order.Number, order.Status)
	}
	if order.OrderDate == nil {
		order.OrderDate = entities.DatePtr(sc.Now)
	}
	for i := range order.Lines {
		line := &order.Lines[i]
		line.Allocations = nil
		if err := s.requirements.LinkOrderLine(sc, order, line); err != nil {
			return nil, fmt.Errorf("order %s line %s: %w", order.Number, line.ID, err)
		}
	}
	order.Status = entities.StatusConfirmed
	order.ConfirmedAt = entities.DatePtr(sc.Now)
	if err := sc.Tx.Orders().Save(order); err != nil {
		return nil, err
	}
	s.recordTransition(sc, events.DocumentConfirmedEvent, orderRef(order), entities.StatusDraft, order.Status)
	return order, nil
}

// CancelPurchaseOrder unlinks the requirements of an order that has not
// received anything yet
func (s *Service) CancelPurchaseOrder(sc *shared.Scope, id string) (*entities.PurchaseOrder, error) {
	order, err := s.liveOrder(sc, id)
	if err != nil {
		return nil, err
	}
	if order.Status != entities.StatusDraft && order.Status != entities.StatusConfirmed {
		return nil, apperrors.Validation("purchase order %s is %s and cannot be cancelled", order.Number, order.Status)
	}
	receipts, err := sc.Tx.Receipts().ListByOrder(order.ID)
	if err != nil {
		return nil, err
	}
	var blocking []string
	for _, r := range receipts {
		if r.Status == entities.StatusConfirmed {
			blocking = append(blocking, "goods receipt "+r.Number)
		}
	}
	if len(blocking) > 0 {
		return nil, apperrors.Conflict(fmt.Sprintf("purchase order %s has confirmed receipts", order.Number), blocking...)
	}
	for _, r := range receipts {
		if r.Status == entities.StatusDraft {
			r.Status = entities.StatusCancelled
			if err := sc.Tx.Receipts().Save(r); err != nil {
				return nil, err
			}
		}
	}

	from := order.Status
	if from == entities.StatusConfirmed {
		if err := s.requirements.UnlinkOrder(sc, order); err != nil {
			return nil, err
		}
	}
	order.Status = entities.StatusCancelled
	if err := sc.Tx.Orders().Save(order); err != nil {
		return nil, err
	}
	s.recordTransition(sc, events.DocumentCancelledEvent, orderRef(order), from, order.Status)
	return order, nil
}

// DeletePurchaseOrder tombstones a draft or cancelled order
func (s *Service) DeletePurchaseOrder(sc *shared.Scope, id string) (*entities.PurchaseOrder, error) {
	order, err := s.liveOrder(sc, id)
	if err != nil {
		return nil, err
	}
	if order.Status != entities.StatusDraft && order.Status != entities.StatusCancelled {
		return nil, apperrors.Validation("purchase order %s is %s, cancel it before deleting", order.Number, order.Status)
	}
	order.Deleted = true
	order.DeletedAt = entities.DatePtr(sc.Now)
	return order, sc.Tx.Orders().Save(order)
}

// RestorePurchaseOrder reverses DeletePurchaseOrder
func (s *Service) RestorePurchaseOrder(sc *shared.Scope, id string) (*entities.PurchaseOrder, error) {
	order, err := sc.Tx.Orders().Get(id)
	if err != nil {
		return nil, err
	}
	if !order.Deleted {
		return nil, apperrors.Validation("purchase order %s is not deleted", order.Number)
	}
	order.Deleted = false
	order.DeletedAt = nil
	return order, sc.Tx.Orders().Save(order)
}

func orderRef(o *entities.PurchaseOrder) entities.DocumentRef {
	return entities.DocumentRef{Type: entities.DocPurchaseOrder, ID: o.ID}
}
