package documents

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/stock"
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/events"
)

// CountLineInput is the counted quantity of one item
type CountLineInput struct {
	NomenclatureID  string
	CountedQuantity entities.Quantity
}

// InventoryCountInput describes a new inventory count
type InventoryCountInput struct {
	WarehouseID string
	Lines       []CountLineInput
}

// CreateInventoryCount stores a draft count
func (s *Service) CreateInventoryCount(sc *shared.Scope, in InventoryCountInput) (*entities.InventoryCount, error) {
	if _, err := sc.Tx.Catalog().GetWarehouse(in.WarehouseID); err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, apperrors.Validation("inventory count has no lines")
	}
	seen := map[string]bool{}
	lines := make([]entities.InventoryCountLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		if seen[l.NomenclatureID] {
			return nil, apperrors.Validation("inventory count lists %s twice", l.NomenclatureID)
		}
		seen[l.NomenclatureID] = true
		if l.CountedQuantity.IsNegative() {
			return nil, apperrors.Validation("counted quantity of %s is negative", l.NomenclatureID)
		}
		if _, err := sc.Tx.Catalog().GetNomenclature(l.NomenclatureID); err != nil {
			return nil, err
		}
		lines = append(lines, entities.InventoryCountLine{
			ID:              shared.NewID(),
			NomenclatureID:  l.NomenclatureID,
			CountedQuantity: l.CountedQuantity,
			BookQuantity:    decimal.Zero,
		})
	}
	number, err := shared.NextDocumentNumber(sc, shared.InventoryCountSequence)
	if err != nil {
		return nil, err
	}
	c := &entities.InventoryCount{
		ID:          shared.NewID(),
		Number:      number,
		WarehouseID: in.WarehouseID,
		Status:      entities.StatusDraft,
		Lines:       lines,
		CreatedAt:   sc.Now,
	}
	return c, sc.Tx.Counts().Save(c)
}

// CompleteInventoryCount adjusts booked stock to the counted quantities. The
// whole count is refused when any line would go below reserved stock.
func (s *Service) CompleteInventoryCount(sc *shared.Scope, id string) (*entities.InventoryCount, error) {
	c, err := sc.Tx.Counts().Get(id)
	if err != nil {
		return nil, err
	}
	if c.Status != entities.StatusDraft {
		return nil, apperrors.Validation("inventory count %s is %s, only drafts can be completed", c.Number, c.Status)
	}

	positions := make([]*entities.StockPosition, len(c.Lines))
	var blocking []string
	for i, line := range c.Lines {
		p, err := sc.Tx.Stock().FindPosition(c.WarehouseID, line.NomenclatureID)
		if apperrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		p, err = sc.Tx.Stock().LockPosition(p.ID)
		if err != nil {
			return nil, err
		}
		positions[i] = p
		if line.CountedQuantity.LessThan(p.ReservedQuantity) {
			blocking = append(blocking, fmt.Sprintf("line %s (%s): counted %s, reserved %s",
				line.ID, line.NomenclatureID, line.CountedQuantity, p.ReservedQuantity))
		}
	}
	if len(blocking) > 0 {
		return nil, apperrors.Conflict(fmt.Sprintf("inventory count %s would cut into reserved stock", c.Number), blocking...)
	}

	for i := range c.Lines {
		line := &c.Lines[i]
		book := decimal.Zero
		if positions[i] != nil {
			book = positions[i].Quantity
		}
		line.BookQuantity = book
		delta := line.CountedQuantity.Sub(book)
		doc := entities.DocumentRef{Type: entities.DocInventoryCount, ID: c.ID, LineID: line.ID}
		switch {
		case delta.IsPositive():
			if _, err := s.stock.Receive(sc, stock.ReceiveRequest{
				WarehouseID:    c.WarehouseID,
				NomenclatureID: line.NomenclatureID,
				Quantity:       delta,
				ReceiptDate:    sc.Now,
				Document:       doc,
				Type:           entities.MovementAdjustment,
			}); err != nil {
				return nil, err
			}
		case delta.IsNegative():
			if _, err := s.stock.AdjustDown(sc, positions[i].ID, delta.Neg(), doc); err != nil {
				return nil, err
			}
		}
	}

	c.Status = entities.StatusCompleted
	c.CompletedAt = entities.DatePtr(sc.Now)
	if err := sc.Tx.Counts().Save(c); err != nil {
		return nil, err
	}
	s.recordTransition(sc, events.DocumentConfirmedEvent,
		entities.DocumentRef{Type: entities.DocInventoryCount, ID: c.ID}, entities.StatusDraft, c.Status)
	return c, nil
}
