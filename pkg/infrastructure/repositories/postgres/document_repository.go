package postgres

import (
	"gorm.io/gorm"

	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/repositories"
)

type orderRepository struct{ db *gorm.DB }

var _ repositories.PurchaseOrderRepository = (*orderRepository)(nil)

func (r *orderRepository) Get(id string) (*entities.PurchaseOrder, error) {
	var m orderModel
	if err := first(r.db, &m, "purchase order", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r *orderRepository) Save(o *entities.PurchaseOrder) error {
	return r.db.Save(toOrderModel(o)).Error
}

func (r *orderRepository) List(includeDeleted bool) ([]*entities.PurchaseOrder, error) {
	q := r.db.Order("number, id")
	if !includeDeleted {
		q = q.Where("deleted = ?", false)
	}
	var rows []orderModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapAll(rows, (*orderModel).entity), nil
}

type receiptRepository struct{ db *gorm.DB }

var _ repositories.GoodsReceiptRepository = (*receiptRepository)(nil)

func (r *receiptRepository) Get(id string) (*entities.GoodsReceipt, error) {
	var m receiptModel
	if err := first(r.db, &m, "goods receipt", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r *receiptRepository) Save(gr *entities.GoodsReceipt) error {
	return r.db.Save(toReceiptModel(gr)).Error
}

func (r *receiptRepository) ListByOrder(orderID string) ([]*entities.GoodsReceipt, error) {
	var rows []receiptModel
	if err := r.db.Where("order_id = ?", orderID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapAll(rows, (*receiptModel).entity), nil
}

type contractorRepository struct{ db *gorm.DB }

var _ repositories.ContractorDocumentRepository = (*contractorRepository)(nil)

func (r *contractorRepository) GetWriteOff(id string) (*entities.ContractorWriteOff, error) {
	var m writeOffModel
	if err := first(r.db, &m, "contractor write-off", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r *contractorRepository) SaveWriteOff(w *entities.ContractorWriteOff) error {
	return r.db.Save(toWriteOffModel(w)).Error
}

func (r *contractorRepository) GetReceipt(id string) (*entities.ContractorReceipt, error) {
	var m contractorReceiptModel
	if err := first(r.db, &m, "contractor receipt", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r *contractorRepository) SaveReceipt(cr *entities.ContractorReceipt) error {
	return r.db.Save(toContractorReceiptModel(cr)).Error
}

type transferRepository struct{ db *gorm.DB }

var _ repositories.StockTransferRepository = (*transferRepository)(nil)

func (r *transferRepository) Get(id string) (*entities.StockTransfer, error) {
	var m transferModel
	if err := first(r.db, &m, "stock transfer", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r *transferRepository) Save(t *entities.StockTransfer) error {
	return r.db.Save(toTransferModel(t)).Error
}

type countRepository struct{ db *gorm.DB }

var _ repositories.InventoryCountRepository = (*countRepository)(nil)

func (r *countRepository) Get(id string) (*entities.InventoryCount, error) {
	var m countModel
	if err := first(r.db, &m, "inventory count", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r *countRepository) Save(c *entities.InventoryCount) error {
	return r.db.Save(toCountModel(c)).Error
}
