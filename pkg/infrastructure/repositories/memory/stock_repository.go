package memory

import (
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/repositories"
)

// stockRepository provides in-memory stock storage. Locks are implicit:
// write transactions hold the store lock for their whole duration.
type stockRepository struct{ tx *tx }

var _ repositories.StockRepository = (*stockRepository)(nil)

func positionByID(a, b *entities.StockPosition) bool { return a.ID < b.ID }

func (r *stockRepository) GetPosition(id string) (*entities.StockPosition, error) {
	return find(r.tx.state.positions, "stock position", id, copyOf[entities.StockPosition])
}

func (r *stockRepository) FindPosition(warehouseID, nomenclatureID string) (*entities.StockPosition, error) {
	for _, p := range r.tx.state.positions {
		if p.WarehouseID == warehouseID && p.NomenclatureID == nomenclatureID {
			return copyOf(p), nil
		}
	}
	return nil, apperrors.NotFound("stock position", warehouseID+"/"+nomenclatureID)
}

func (r *stockRepository) ListPositions(nomenclatureID string) ([]*entities.StockPosition, error) {
	return collect(r.tx.state.positions, func(p *entities.StockPosition) bool {
		return p.NomenclatureID == nomenclatureID
	}, copyOf[entities.StockPosition], positionByID), nil
}

func (r *stockRepository) ListWarehousePositions(warehouseID string) ([]*entities.StockPosition, error) {
	return collect(r.tx.state.positions, func(p *entities.StockPosition) bool {
		return p.WarehouseID == warehouseID
	}, copyOf[entities.StockPosition], positionByID), nil
}

func (r *stockRepository) LockPosition(id string) (*entities.StockPosition, error) {
	return r.GetPosition(id)
}

func (r *stockRepository) LockPositions(nomenclatureID string) ([]*entities.StockPosition, error) {
	return r.ListPositions(nomenclatureID)
}

func (r *stockRepository) SavePosition(p *entities.StockPosition) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if err := p.CheckInvariant(); err != nil {
		return err
	}
	r.tx.state.positions[p.ID] = copyOf(p)
	return nil
}

// LockBatches returns batches FIFO by receipt date
func (r *stockRepository) LockBatches(positionID string) ([]*entities.StockBatch, error) {
	return collect(r.tx.state.batches, func(b *entities.StockBatch) bool {
		return b.PositionID == positionID
	}, copyOf[entities.StockBatch], func(a, b *entities.StockBatch) bool {
		if !a.ReceiptDate.Equal(b.ReceiptDate) {
			return a.ReceiptDate.Before(b.ReceiptDate)
		}
		return a.ID < b.ID
	}), nil
}

func (r *stockRepository) GetBatch(id string) (*entities.StockBatch, error) {
	return find(r.tx.state.batches, "stock batch", id, copyOf[entities.StockBatch])
}

func (r *stockRepository) SaveBatch(b *entities.StockBatch) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.state.batches[b.ID] = copyOf(b)
	return nil
}

func reservationOrder(a, b *entities.StockReservation) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func (r *stockRepository) GetReservation(id string) (*entities.StockReservation, error) {
	return find(r.tx.state.reservations, "stock reservation", id, copyOf[entities.StockReservation])
}

func (r *stockRepository) SaveReservation(res *entities.StockReservation) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.state.reservations[res.ID] = copyOf(res)
	return nil
}

func (r *stockRepository) ListNodeReservations(nodeID string) ([]*entities.StockReservation, error) {
	return collect(r.tx.state.reservations, func(res *entities.StockReservation) bool {
		return res.NodeID == nodeID
	}, copyOf[entities.StockReservation], reservationOrder), nil
}

func (r *stockRepository) ListActiveReservations(positionID string) ([]*entities.StockReservation, error) {
	return collect(r.tx.state.reservations, func(res *entities.StockReservation) bool {
		return res.PositionID == positionID && res.Status.IsActive()
	}, copyOf[entities.StockReservation], reservationOrder), nil
}

func (r *stockRepository) ListActiveReservationsByNomenclature(nomenclatureID string) ([]*entities.StockReservation, error) {
	return collect(r.tx.state.reservations, func(res *entities.StockReservation) bool {
		return res.NomenclatureID == nomenclatureID && res.Status.IsActive()
	}, copyOf[entities.StockReservation], reservationOrder), nil
}

// AddMovement appends a movement; existing entries are immutable
func (r *stockRepository) AddMovement(m *entities.StockMovement) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, exists := r.tx.state.movements[m.ID]; exists {
		return apperrors.Conflict("stock movement " + m.ID + " already recorded")
	}
	r.tx.state.movements[m.ID] = m.Clone()
	r.tx.state.movementLog = append(r.tx.state.movementLog, m.ID)
	return nil
}

func (r *stockRepository) movementsWhere(keep func(*entities.StockMovement) bool) []*entities.StockMovement {
	out := make([]*entities.StockMovement, 0)
	for _, id := range r.tx.state.movementLog {
		m := r.tx.state.movements[id]
		if keep(m) {
			out = append(out, m.Clone())
		}
	}
	return out
}

// ListDocumentMovements returns movements of a document in ledger order
func (r *stockRepository) ListDocumentMovements(docType entities.DocumentType, docID string) ([]*entities.StockMovement, error) {
	return r.movementsWhere(func(m *entities.StockMovement) bool {
		return m.Document.Type == docType && m.Document.ID == docID
	}), nil
}

func (r *stockRepository) ListPositionMovements(positionID string) ([]*entities.StockMovement, error) {
	return r.movementsWhere(func(m *entities.StockMovement) bool {
		return m.PositionID == positionID
	}), nil
}
