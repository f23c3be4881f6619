package repositories

import "github.com/Rushen88/PDM-sub000/pkg/domain/entities"

// PurchaseOrderRepository provides access to purchase orders
type PurchaseOrderRepository interface {
	Get(id string) (*entities.PurchaseOrder, error)
	Save(o *entities.PurchaseOrder) error
	List(includeDeleted bool) ([]*entities.PurchaseOrder, error)
}

// GoodsReceiptRepository provides access to goods receipts
type GoodsReceiptRepository interface {
	Get(id string) (*entities.GoodsReceipt, error)
	Save(r *entities.GoodsReceipt) error
	ListByOrder(orderID string) ([]*entities.GoodsReceipt, error)
}

// ContractorDocumentRepository provides access to contractor hand-off documents
type ContractorDocumentRepository interface {
	GetWriteOff(id string) (*entities.ContractorWriteOff, error)
	SaveWriteOff(w *entities.ContractorWriteOff) error
	GetReceipt(id string) (*entities.ContractorReceipt, error)
	SaveReceipt(r *entities.ContractorReceipt) error
}

// StockTransferRepository provides access to stock transfers
type StockTransferRepository interface {
	Get(id string) (*entities.StockTransfer, error)
	Save(t *entities.StockTransfer) error
}

// InventoryCountRepository provides access to inventory counts
type InventoryCountRepository interface {
	Get(id string) (*entities.InventoryCount, error)
	Save(c *entities.InventoryCount) error
}
