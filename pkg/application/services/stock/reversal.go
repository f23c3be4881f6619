package stock

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

// Reverse appends a compensating movement for every movement of a document
// that has not been reversed yet, restoring exactly what it moved. Inbound
// stock that a later document already drew from blocks the reversal.
func (e *Engine) Reverse(s *shared.Scope, docType entities.DocumentType, docID string) ([]*entities.StockMovement, error) {
	movements, err := s.Tx.Stock().ListDocumentMovements(docType, docID)
	if err != nil {
		return nil, err
	}
	reversed := map[string]bool{}
	for _, m := range movements {
		if m.ReversesID != "" {
			reversed[m.ReversesID] = true
		}
	}

	var pending []*entities.StockMovement
	for _, m := range movements {
		if m.ReversesID != "" || reversed[m.ID] {
			continue
		}
		pending = append(pending, m)
	}
	blocking, err := e.reversalBlockers(s, pending)
	if err != nil {
		return nil, err
	}
	if len(blocking) > 0 {
		return nil, apperrors.Conflict(fmt.Sprintf("%s/%s cannot be reversed", docType, docID), blocking...)
	}

	// outbound first so that reversing a document never dips below reserved
	var out []*entities.StockMovement
	for _, inbound := range []bool{false, true} {
		for _, m := range pending {
			if m.IsInbound() != inbound {
				continue
			}
			c, err := e.compensate(s, m)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	if len(out) > 0 {
		e.logger.Info("document movements reversed",
			zap.String("document_type", string(docType)),
			zap.String("document_id", docID),
			zap.Int("movements", len(out)))
	}
	return out, nil
}

// positionEffect is what reversing a set of movements does to one position
type positionEffect struct {
	removed  entities.Quantity
	restored entities.Quantity
	lines    []string
}

// reversalBlockers explains why the pending movements cannot be taken back
// together: a batch a later document already drew from, or a position whose
// on-hand quantity would end below its reserved quantity.
func (e *Engine) reversalBlockers(s *shared.Scope, pending []*entities.StockMovement) ([]string, error) {
	drawn := map[string]entities.Quantity{}
	var batchOrder []string
	effects := map[string]*positionEffect{}
	var positionOrder []string

	for _, m := range pending {
		ef, ok := effects[m.PositionID]
		if !ok {
			ef = &positionEffect{removed: decimal.Zero, restored: decimal.Zero}
			effects[m.PositionID] = ef
			positionOrder = append(positionOrder, m.PositionID)
		}
		ef.removed = ef.removed.Add(m.Quantity)
		if m.IsInbound() {
			ef.lines = append(ef.lines, m.Document.String())
			for _, d := range m.BatchDraws {
				if _, seen := drawn[d.BatchID]; !seen {
					drawn[d.BatchID] = decimal.Zero
					batchOrder = append(batchOrder, d.BatchID)
				}
				drawn[d.BatchID] = drawn[d.BatchID].Add(d.Quantity)
			}
			continue
		}
		if m.ReservationID != "" && m.ReservedConsumed.IsPositive() {
			r, err := s.Tx.Stock().GetReservation(m.ReservationID)
			if err != nil {
				return nil, err
			}
			if r.Status.IsActive() {
				ef.restored = ef.restored.Add(m.ReservedConsumed)
			}
		}
	}

	var blocking []string
	for _, id := range batchOrder {
		b, err := s.Tx.Stock().GetBatch(id)
		if err != nil {
			return nil, err
		}
		if b.CurrentQuantity.LessThan(drawn[id]) {
			blocking = append(blocking, fmt.Sprintf("batch %s already drawn by a later document (%s of %s left)",
				b.ID, b.CurrentQuantity, drawn[id]))
		}
	}
	for _, id := range positionOrder {
		ef := effects[id]
		if len(ef.lines) == 0 {
			continue
		}
		p, err := s.Tx.Stock().GetPosition(id)
		if err != nil {
			return nil, err
		}
		quantity := p.Quantity.Sub(ef.removed)
		reserved := p.ReservedQuantity.Add(ef.restored)
		if quantity.LessThan(reserved) {
			blocking = append(blocking, fmt.Sprintf("%s: removing %s from position %s would leave %s below reserved %s",
				strings.Join(ef.lines, ", "), ef.removed, p.ID, quantity, reserved))
		}
	}
	return blocking, nil
}

func (e *Engine) compensate(s *shared.Scope, m *entities.StockMovement) (*entities.StockMovement, error) {
	p, err := s.Tx.Stock().LockPosition(m.PositionID)
	if err != nil {
		return nil, err
	}
	for _, d := range m.BatchDraws {
		b, err := s.Tx.Stock().GetBatch(d.BatchID)
		if err != nil {
			return nil, err
		}
		if m.IsInbound() {
			b.CurrentQuantity = b.CurrentQuantity.Sub(d.Quantity)
		} else {
			b.CurrentQuantity = b.CurrentQuantity.Add(d.Quantity)
		}
		if err := s.Tx.Stock().SaveBatch(b); err != nil {
			return nil, err
		}
	}

	p.Quantity = p.Quantity.Sub(m.Quantity)
	restored := decimal.Zero
	if m.ReservationID != "" && m.ReservedConsumed.IsPositive() {
		r, err := s.Tx.Stock().GetReservation(m.ReservationID)
		if err != nil {
			return nil, err
		}
		// stock of a reservation released since then comes back as free stock
		if r.Status.IsActive() {
			r.ConsumedQuantity = entities.NonNegative(r.ConsumedQuantity.Sub(m.ReservedConsumed))
			r.UpdatedAt = s.Now
			if err := s.Tx.Stock().SaveReservation(r); err != nil {
				return nil, err
			}
			restored = m.ReservedConsumed
			p.ReservedQuantity = p.ReservedQuantity.Add(restored)
		}
	}
	p.UpdatedAt = s.Now
	if err := s.Tx.Stock().SavePosition(p); err != nil {
		return nil, fmt.Errorf("failed to save position %s: %w", p.ID, err)
	}

	c := &entities.StockMovement{
		ID:               shared.NewID(),
		PositionID:       p.ID,
		WarehouseID:      p.WarehouseID,
		NomenclatureID:   p.NomenclatureID,
		Type:             entities.MovementReversal,
		Quantity:         m.Quantity.Neg(),
		BalanceAfter:     p.Quantity,
		Document:         m.Document,
		NodeID:           m.NodeID,
		ReservationID:    m.ReservationID,
		ReservedConsumed: restored.Neg(),
		BatchDraws:       m.BatchDraws,
		ReversesID:       m.ID,
		CreatedAt:        s.Now,
	}
	if err := s.Tx.Stock().AddMovement(c); err != nil {
		return nil, err
	}
	return c, nil
}
