package repositories

import "github.com/Rushen88/PDM-sub000/pkg/domain/entities"

// StockRepository provides access to stock positions, batches, reservations and movements.
// Lock* methods take exclusive row locks held until the transaction ends; rows
// are locked in ID order so concurrent transactions cannot deadlock each other.
type StockRepository interface {
	GetPosition(id string) (*entities.StockPosition, error)
	FindPosition(warehouseID, nomenclatureID string) (*entities.StockPosition, error)
	ListPositions(nomenclatureID string) ([]*entities.StockPosition, error)
	ListWarehousePositions(warehouseID string) ([]*entities.StockPosition, error)
	LockPosition(id string) (*entities.StockPosition, error)
	LockPositions(nomenclatureID string) ([]*entities.StockPosition, error)
	SavePosition(p *entities.StockPosition) error

	// LockBatches returns the batches of a position ordered oldest receipt first
	LockBatches(positionID string) ([]*entities.StockBatch, error)
	GetBatch(id string) (*entities.StockBatch, error)
	SaveBatch(b *entities.StockBatch) error

	GetReservation(id string) (*entities.StockReservation, error)
	SaveReservation(r *entities.StockReservation) error
	ListNodeReservations(nodeID string) ([]*entities.StockReservation, error)
	ListActiveReservations(positionID string) ([]*entities.StockReservation, error)
	ListActiveReservationsByNomenclature(nomenclatureID string) ([]*entities.StockReservation, error)

	// AddMovement appends to the ledger; movements are never updated
	AddMovement(m *entities.StockMovement) error
	ListDocumentMovements(docType entities.DocumentType, docID string) ([]*entities.StockMovement, error)
	ListPositionMovements(positionID string) ([]*entities.StockMovement, error)
}
