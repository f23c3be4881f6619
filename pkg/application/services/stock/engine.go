// Package stock reserves, consumes and receives warehouse stock. Every method
// works inside the caller's scope; positions are locked before they are read
// for modification and the ledger is only ever appended to.
package stock

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/events"
)

// Engine implements reservation, consumption, receipt and reversal
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a stock engine
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// ReserveRequest asks for stock to be set aside for a tree node
type ReserveRequest struct {
	NodeID         string
	ProjectID      string
	NomenclatureID string
	Quantity       entities.Quantity
	// WarehouseID restricts the reservation to one warehouse when set
	WarehouseID string
}

// Reserve claims available stock for a node, most available position first.
// Nothing is reserved unless the whole quantity can be.
func (e *Engine) Reserve(s *shared.Scope, req ReserveRequest) ([]*entities.StockReservation, error) {
	if !req.Quantity.IsPositive() {
		return nil, apperrors.Validation("reservation quantity must be positive, got %s", req.Quantity)
	}
	positions, err := e.lockCandidates(s, req.NomenclatureID, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	sortByAvailability(positions)

	total := decimal.Zero
	for _, p := range positions {
		total = total.Add(p.Available())
	}
	if total.LessThan(req.Quantity) {
		return nil, apperrors.InsufficientStock("nomenclature %s: requested %s, available %s", req.NomenclatureID, req.Quantity, total)
	}

	remaining := req.Quantity
	var out []*entities.StockReservation
	for _, p := range positions {
		if !remaining.IsPositive() {
			break
		}
		take := entities.MinQty(p.Available(), remaining)
		if !take.IsPositive() {
			continue
		}
		r, err := e.reserveOn(s, p, req, take)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
		remaining = remaining.Sub(take)
	}

	s.Record(events.StockReservedEvent, req.NodeID, events.StockReserved{NodeID: req.NodeID, Reservations: derefReservations(out)})
	e.logger.Debug("stock reserved",
		zap.String("node_id", req.NodeID),
		zap.String("nomenclature_id", req.NomenclatureID),
		zap.String("quantity", req.Quantity.String()),
		zap.Int("positions", len(out)))
	return out, nil
}

func (e *Engine) reserveOn(s *shared.Scope, p *entities.StockPosition, req ReserveRequest, qty entities.Quantity) (*entities.StockReservation, error) {
	p.ReservedQuantity = p.ReservedQuantity.Add(qty)
	p.UpdatedAt = s.Now
	if err := s.Tx.Stock().SavePosition(p); err != nil {
		return nil, fmt.Errorf("failed to save position %s: %w", p.ID, err)
	}
	r := &entities.StockReservation{
		ID:               shared.NewID(),
		PositionID:       p.ID,
		NodeID:           req.NodeID,
		ProjectID:        req.ProjectID,
		NomenclatureID:   req.NomenclatureID,
		Quantity:         qty,
		ConsumedQuantity: decimal.Zero,
		Status:           entities.ReservationConfirmed,
		CreatedAt:        s.Now,
		UpdatedAt:        s.Now,
	}
	if err := s.Tx.Stock().SaveReservation(r); err != nil {
		return nil, fmt.Errorf("failed to save reservation: %w", err)
	}
	return r, nil
}

// Release returns the unconsumed part of a reservation to free stock
func (e *Engine) Release(s *shared.Scope, reservationID string) (*entities.StockReservation, error) {
	r, err := s.Tx.Stock().GetReservation(reservationID)
	if err != nil {
		return nil, err
	}
	if !r.Status.IsActive() {
		return nil, apperrors.Validation("reservation %s is %s", r.ID, r.Status)
	}
	if err := e.release(s, r); err != nil {
		return nil, err
	}
	s.Record(events.StockReleasedEvent, r.NodeID, events.StockReleased{Reservation: *r})
	return r, nil
}

// ReleaseNode releases every active reservation held by a node
func (e *Engine) ReleaseNode(s *shared.Scope, nodeID string) ([]*entities.StockReservation, error) {
	all, err := s.Tx.Stock().ListNodeReservations(nodeID)
	if err != nil {
		return nil, err
	}
	var released []*entities.StockReservation
	for _, r := range all {
		if !r.Status.IsActive() {
			continue
		}
		if err := e.release(s, r); err != nil {
			return nil, err
		}
		released = append(released, r)
		s.Record(events.StockReleasedEvent, r.NodeID, events.StockReleased{Reservation: *r})
	}
	return released, nil
}

func (e *Engine) release(s *shared.Scope, r *entities.StockReservation) error {
	p, err := s.Tx.Stock().LockPosition(r.PositionID)
	if err != nil {
		return err
	}
	outstanding := r.Outstanding()
	if outstanding.GreaterThan(p.ReservedQuantity) {
		return apperrors.Internal(nil, "position %s reserves %s, reservation %s holds %s", p.ID, p.ReservedQuantity, r.ID, outstanding)
	}
	p.ReservedQuantity = p.ReservedQuantity.Sub(outstanding)
	p.UpdatedAt = s.Now
	if err := s.Tx.Stock().SavePosition(p); err != nil {
		return err
	}
	r.Status = entities.ReservationReleased
	r.UpdatedAt = s.Now
	return s.Tx.Stock().SaveReservation(r)
}

// ConsumeRequest writes stock off for a document line
type ConsumeRequest struct {
	NodeID         string
	NomenclatureID string
	Quantity       entities.Quantity
	// FromReserved draws from the node's reservations instead of free stock
	FromReserved bool
	WarehouseID  string
	Document     entities.DocumentRef
	Type         entities.MovementType
}

// Consume decrements on-hand stock, emitting one movement per position
// touched. Batches are drawn oldest receipt first.
func (e *Engine) Consume(s *shared.Scope, req ConsumeRequest) ([]*entities.StockMovement, error) {
	if !req.Quantity.IsPositive() {
		return nil, apperrors.Validation("consumption quantity must be positive, got %s", req.Quantity)
	}
	if req.Type == "" {
		req.Type = entities.MovementWriteOff
	}
	var (
		out []*entities.StockMovement
		err error
	)
	if req.FromReserved {
		out, err = e.consumeReserved(s, req)
	} else {
		out, err = e.consumeFree(s, req)
	}
	if err != nil {
		return nil, err
	}
	s.Record(events.StockConsumedEvent, req.Document.ID, events.StockMoved{Movements: derefMovements(out)})
	return out, nil
}

func (e *Engine) consumeFree(s *shared.Scope, req ConsumeRequest) ([]*entities.StockMovement, error) {
	positions, err := e.lockCandidates(s, req.NomenclatureID, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	sortByAvailability(positions)
	total := decimal.Zero
	for _, p := range positions {
		total = total.Add(p.Available())
	}
	if total.LessThan(req.Quantity) {
		return nil, apperrors.InsufficientStock("nomenclature %s: write-off of %s exceeds free stock %s", req.NomenclatureID, req.Quantity, total)
	}

	remaining := req.Quantity
	var out []*entities.StockMovement
	for _, p := range positions {
		if !remaining.IsPositive() {
			break
		}
		take := entities.MinQty(p.Available(), remaining)
		if !take.IsPositive() {
			continue
		}
		m, err := e.withdraw(s, p, take, decimal.Zero, "", req)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
		remaining = remaining.Sub(take)
	}
	return out, nil
}

func (e *Engine) consumeReserved(s *shared.Scope, req ConsumeRequest) ([]*entities.StockMovement, error) {
	all, err := s.Tx.Stock().ListNodeReservations(req.NodeID)
	if err != nil {
		return nil, err
	}
	var held []*entities.StockReservation
	total := decimal.Zero
	for _, r := range all {
		if r.NomenclatureID != req.NomenclatureID || !r.Outstanding().IsPositive() {
			continue
		}
		if req.WarehouseID != "" {
			p, err := s.Tx.Stock().GetPosition(r.PositionID)
			if err != nil {
				return nil, err
			}
			if p.WarehouseID != req.WarehouseID {
				continue
			}
		}
		held = append(held, r)
		total = total.Add(r.Outstanding())
	}
	if total.LessThan(req.Quantity) {
		return nil, apperrors.InsufficientStock("node %s: write-off of %s exceeds reserved %s of %s", req.NodeID, req.Quantity, total, req.NomenclatureID)
	}

	// lock in position order, then consume in reservation order
	byPosition := map[string]*entities.StockPosition{}
	ids := make([]string, 0)
	for _, r := range held {
		if _, seen := byPosition[r.PositionID]; !seen {
			byPosition[r.PositionID] = nil
			ids = append(ids, r.PositionID)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		p, err := s.Tx.Stock().LockPosition(id)
		if err != nil {
			return nil, err
		}
		byPosition[id] = p
	}

	remaining := req.Quantity
	var out []*entities.StockMovement
	for _, r := range held {
		if !remaining.IsPositive() {
			break
		}
		take := entities.MinQty(r.Outstanding(), remaining)
		p := byPosition[r.PositionID]
		// a fully consumed reservation stays confirmed so a reversal can restore it
		r.ConsumedQuantity = r.ConsumedQuantity.Add(take)
		r.UpdatedAt = s.Now
		if err := s.Tx.Stock().SaveReservation(r); err != nil {
			return nil, err
		}
		m, err := e.withdraw(s, p, take, take, r.ID, req)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
		remaining = remaining.Sub(take)
	}
	return out, nil
}

// withdraw takes qty off a locked position, reservedPart of it from reserved stock
func (e *Engine) withdraw(s *shared.Scope, p *entities.StockPosition, qty, reservedPart entities.Quantity, reservationID string, req ConsumeRequest) (*entities.StockMovement, error) {
	draws, err := e.drawBatches(s, p, qty)
	if err != nil {
		return nil, err
	}
	p.Quantity = p.Quantity.Sub(qty)
	p.ReservedQuantity = p.ReservedQuantity.Sub(reservedPart)
	p.UpdatedAt = s.Now
	if err := s.Tx.Stock().SavePosition(p); err != nil {
		return nil, fmt.Errorf("failed to save position %s: %w", p.ID, err)
	}
	m := &entities.StockMovement{
		ID:               shared.NewID(),
		PositionID:       p.ID,
		WarehouseID:      p.WarehouseID,
		NomenclatureID:   p.NomenclatureID,
		Type:             req.Type,
		Quantity:         qty.Neg(),
		BalanceAfter:     p.Quantity,
		Document:         req.Document,
		NodeID:           req.NodeID,
		ReservationID:    reservationID,
		ReservedConsumed: reservedPart,
		BatchDraws:       draws,
		CreatedAt:        s.Now,
	}
	if err := s.Tx.Stock().AddMovement(m); err != nil {
		return nil, err
	}
	return m, nil
}

// drawBatches takes qty from the batches of a position, oldest receipt first
func (e *Engine) drawBatches(s *shared.Scope, p *entities.StockPosition, qty entities.Quantity) ([]entities.BatchDraw, error) {
	batches, err := s.Tx.Stock().LockBatches(p.ID)
	if err != nil {
		return nil, err
	}
	remaining := qty
	var draws []entities.BatchDraw
	for _, b := range batches {
		if !remaining.IsPositive() {
			break
		}
		take := entities.MinQty(b.CurrentQuantity, remaining)
		if !take.IsPositive() {
			continue
		}
		b.CurrentQuantity = b.CurrentQuantity.Sub(take)
		if err := s.Tx.Stock().SaveBatch(b); err != nil {
			return nil, err
		}
		draws = append(draws, entities.BatchDraw{BatchID: b.ID, Quantity: take, ReceiptDate: b.ReceiptDate})
		remaining = remaining.Sub(take)
	}
	if remaining.IsPositive() {
		return nil, apperrors.Internal(nil, "batches of position %s hold %s less than its quantity", p.ID, remaining)
	}
	return draws, nil
}

// ReceiveRequest books stock into a warehouse
type ReceiveRequest struct {
	WarehouseID    string
	NomenclatureID string
	Quantity       entities.Quantity
	ReceiptDate    time.Time
	Document       entities.DocumentRef
	Type           entities.MovementType
	NodeID         string
	// Batches recreates lots with their original receipt dates, e.g. on a
	// transfer; their quantities must add up to Quantity
	Batches []entities.BatchDraw
}

// Receive increments on-hand stock, creating the position when needed, and
// appends one inbound movement
func (e *Engine) Receive(s *shared.Scope, req ReceiveRequest) (*entities.StockMovement, error) {
	if !req.Quantity.IsPositive() {
		return nil, apperrors.Validation("received quantity must be positive, got %s", req.Quantity)
	}
	if len(req.Batches) > 0 && !entities.SumDraws(req.Batches).Equal(req.Quantity) {
		return nil, apperrors.Validation("batches add up to %s, expected %s", entities.SumDraws(req.Batches), req.Quantity)
	}
	if req.Type == "" {
		req.Type = entities.MovementReceipt
	}
	p, err := e.lockOrCreate(s, req.WarehouseID, req.NomenclatureID)
	if err != nil {
		return nil, err
	}

	lots := req.Batches
	if len(lots) == 0 {
		lots = []entities.BatchDraw{{Quantity: req.Quantity, ReceiptDate: req.ReceiptDate}}
	}
	draws := make([]entities.BatchDraw, 0, len(lots))
	for _, lot := range lots {
		b, err := entities.NewStockBatch(shared.NewID(), p.ID, lot.ReceiptDate, lot.Quantity, req.Document)
		if err != nil {
			return nil, apperrors.Validation("%s", err.Error())
		}
		if err := s.Tx.Stock().SaveBatch(b); err != nil {
			return nil, err
		}
		draws = append(draws, entities.BatchDraw{BatchID: b.ID, Quantity: b.InitialQuantity, ReceiptDate: b.ReceiptDate})
	}

	p.Quantity = p.Quantity.Add(req.Quantity)
	p.UpdatedAt = s.Now
	if err := s.Tx.Stock().SavePosition(p); err != nil {
		return nil, fmt.Errorf("failed to save position %s: %w", p.ID, err)
	}
	m := &entities.StockMovement{
		ID:               shared.NewID(),
		PositionID:       p.ID,
		WarehouseID:      p.WarehouseID,
		NomenclatureID:   p.NomenclatureID,
		Type:             req.Type,
		Quantity:         req.Quantity,
		BalanceAfter:     p.Quantity,
		Document:         req.Document,
		NodeID:           req.NodeID,
		ReservedConsumed: decimal.Zero,
		BatchDraws:       draws,
		CreatedAt:        s.Now,
	}
	if err := s.Tx.Stock().AddMovement(m); err != nil {
		return nil, err
	}
	s.Record(events.StockReceivedEvent, req.Document.ID, events.StockMoved{Movements: []entities.StockMovement{*m}})
	return m, nil
}

// ReserveOnPosition reserves stock of a single position, used when a receipt
// sets delivered goods aside for the nodes they were ordered for
func (e *Engine) ReserveOnPosition(s *shared.Scope, positionID string, req ReserveRequest) (*entities.StockReservation, error) {
	if !req.Quantity.IsPositive() {
		return nil, apperrors.Validation("reservation quantity must be positive, got %s", req.Quantity)
	}
	p, err := s.Tx.Stock().LockPosition(positionID)
	if err != nil {
		return nil, err
	}
	if p.Available().LessThan(req.Quantity) {
		return nil, apperrors.InsufficientStock("position %s: requested %s, available %s", p.ID, req.Quantity, p.Available())
	}
	r, err := e.reserveOn(s, p, req, req.Quantity)
	if err != nil {
		return nil, err
	}
	s.Record(events.StockReservedEvent, req.NodeID, events.StockReserved{NodeID: req.NodeID, Reservations: []entities.StockReservation{*r}})
	return r, nil
}

// AdjustDown removes free stock from one position, e.g. after a count found
// less than booked. Reserved stock is never touched.
func (e *Engine) AdjustDown(s *shared.Scope, positionID string, qty entities.Quantity, doc entities.DocumentRef) (*entities.StockMovement, error) {
	p, err := s.Tx.Stock().LockPosition(positionID)
	if err != nil {
		return nil, err
	}
	if p.Available().LessThan(qty) {
		return nil, apperrors.Conflict(fmt.Sprintf("position %s: decrease of %s cuts into reserved stock", p.ID, qty),
			fmt.Sprintf("%s: available %s, reserved %s", doc, p.Available(), p.ReservedQuantity))
	}
	m, err := e.withdraw(s, p, qty, decimal.Zero, "", ConsumeRequest{
		NomenclatureID: p.NomenclatureID,
		Quantity:       qty,
		Document:       doc,
		Type:           entities.MovementAdjustment,
	})
	if err != nil {
		return nil, err
	}
	s.Record(events.StockAdjustedEvent, doc.ID, events.StockMoved{Movements: []entities.StockMovement{*m}})
	return m, nil
}

func (e *Engine) lockCandidates(s *shared.Scope, nomenclatureID, warehouseID string) ([]*entities.StockPosition, error) {
	if warehouseID == "" {
		return s.Tx.Stock().LockPositions(nomenclatureID)
	}
	p, err := s.Tx.Stock().FindPosition(warehouseID, nomenclatureID)
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	locked, err := s.Tx.Stock().LockPosition(p.ID)
	if err != nil {
		return nil, err
	}
	return []*entities.StockPosition{locked}, nil
}

func (e *Engine) lockOrCreate(s *shared.Scope, warehouseID, nomenclatureID string) (*entities.StockPosition, error) {
	p, err := s.Tx.Stock().FindPosition(warehouseID, nomenclatureID)
	if err == nil {
		return s.Tx.Stock().LockPosition(p.ID)
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}
	if _, err := s.Tx.Catalog().GetWarehouse(warehouseID); err != nil {
		return nil, err
	}
	p = &entities.StockPosition{
		ID:               shared.NewID(),
		WarehouseID:      warehouseID,
		NomenclatureID:   nomenclatureID,
		Quantity:         decimal.Zero,
		ReservedQuantity: decimal.Zero,
		UpdatedAt:        s.Now,
	}
	if err := s.Tx.Stock().SavePosition(p); err != nil {
		return nil, err
	}
	return s.Tx.Stock().LockPosition(p.ID)
}

// sortByAvailability orders positions by descending availability, ID breaking ties
func sortByAvailability(positions []*entities.StockPosition) {
	sort.SliceStable(positions, func(i, j int) bool {
		ai, aj := positions[i].Available(), positions[j].Available()
		if !ai.Equal(aj) {
			return ai.GreaterThan(aj)
		}
		return positions[i].ID < positions[j].ID
	})
}

func derefReservations(in []*entities.StockReservation) []entities.StockReservation {
	out := make([]entities.StockReservation, len(in))
	for i, r := range in {
		out[i] = *r
	}
	return out
}

func derefMovements(in []*entities.StockMovement) []entities.StockMovement {
	out := make([]entities.StockMovement, len(in))
	for i, m := range in {
		out[i] = *m.Clone()
	}
	return out
}
