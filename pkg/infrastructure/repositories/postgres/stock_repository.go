package postgres

import (
	"gorm.io/gorm"

	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/repositories"
)

// stockRepository locks positions and batches with SELECT ... FOR UPDATE,
// always in primary key order.
type stockRepository struct{ db *gorm.DB }

var _ repositories.StockRepository = (*stockRepository)(nil)

func (r *stockRepository) GetPosition(id string) (*entities.StockPosition, error) {
	var m positionModel
	if err := first(r.db, &m, "stock position", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r *stockRepository) FindPosition(warehouseID, nomenclatureID string) (*entities.StockPosition, error) {
	var m positionModel
	key := warehouseID + "/" + nomenclatureID
	if err := first(r.db, &m, "stock position", key, "warehouse_id = ? AND nomenclature_id = ?", warehouseID, nomenclatureID); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r *stockRepository) ListPositions(nomenclatureID string) ([]*entities.StockPosition, error) {
	var rows []positionModel
	if err := r.db.Where("nomenclature_id = ?", nomenclatureID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapAll(rows, (*positionModel).entity), nil
}

func (r *stockRepository) ListWarehousePositions(warehouseID string) ([]*entities.StockPosition, error) {
	var rows []positionModel
	if err := r.db.Where("warehouse_id = ?", warehouseID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapAll(rows, (*positionModel).entity), nil
}

func (r *stockRepository) LockPosition(id string) (*entities.StockPosition, error) {
	var m positionModel
	if err := first(forUpdate(r.db), &m, "stock position", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r *stockRepository) LockPositions(nomenclatureID string) ([]*entities.StockPosition, error) {
	var rows []positionModel
	if err := forUpdate(r.db).Where("nomenclature_id = ?", nomenclatureID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapAll(rows, (*positionModel).entity), nil
}

func (r *stockRepository) SavePosition(p *entities.StockPosition) error {
	if err := p.CheckInvariant(); err != nil {
		return err
	}
	return r.db.Save(toPositionModel(p)).Error
}

func (r *stockRepository) LockBatches(positionID string) ([]*entities.StockBatch, error) {
	var rows []batchModel
	if err := forUpdate(r.db).Where("position_id = ?", positionID).Order("receipt_date, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapAll(rows, (*batchModel).entity), nil
}

func (r *stockRepository) GetBatch(id string) (*entities.StockBatch, error) {
	var m batchModel
	if err := first(r.db, &m, "stock batch", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r *stockRepository) SaveBatch(b *entities.StockBatch) error {
	return r.db.Save(toBatchModel(b)).Error
}

func (r *stockRepository) GetReservation(id string) (*entities.StockReservation, error) {
	var m reservationModel
	if err := first(r.db, &m, "stock reservation", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r *stockRepository) SaveReservation(res *entities.StockReservation) error {
	return r.db.Save(toReservationModel(res)).Error
}

var activeReservationStatuses = []string{string(entities.ReservationPending), string(entities.ReservationConfirmed)}

func (r *stockRepository) listReservations(query string, args ...any) ([]*entities.StockReservation, error) {
	var rows []reservationModel
	if err := r.db.Where(query, args...).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapAll(rows, (*reservationModel).entity), nil
}

func (r *stockRepository) ListNodeReservations(nodeID string) ([]*entities.StockReservation, error) {
	return r.listReservations("node_id = ?", nodeID)
}

func (r *stockRepository) ListActiveReservations(positionID string) ([]*entities.StockReservation, error) {
	return r.listReservations("position_id = ? AND status IN ?", positionID, activeReservationStatuses)
}

func (r *stockRepository) ListActiveReservationsByNomenclature(nomenclatureID string) ([]*entities.StockReservation, error) {
	return r.listReservations("nomenclature_id = ? AND status IN ?", nomenclatureID, activeReservationStatuses)
}

// AddMovement inserts a ledger row; a duplicate ID fails on the primary key
func (r *stockRepository) AddMovement(m *entities.StockMovement) error {
	return r.db.Create(toMovementModel(m)).Error
}

func (r *stockRepository) listMovements(query string, args ...any) ([]*entities.StockMovement, error) {
	var rows []movementModel
	if err := r.db.Where(query, args...).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapAll(rows, (*movementModel).entity), nil
}

func (r *stockRepository) ListDocumentMovements(docType entities.DocumentType, docID string) ([]*entities.StockMovement, error) {
	return r.listMovements("doc_type = ? AND doc_id = ?", string(docType), docID)
}

func (r *stockRepository) ListPositionMovements(positionID string) ([]*entities.StockMovement, error) {
	return r.listMovements("position_id = ?", positionID)
}
