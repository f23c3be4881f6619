package memory

import (
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/repositories"
)

type orderRepository struct{ tx *tx }

var _ repositories.PurchaseOrderRepository = (*orderRepository)(nil)

func (r *orderRepository) Get(id string) (*entities.PurchaseOrder, error) {
	return find(r.tx.state.orders, "purchase order", id, (*entities.PurchaseOrder).Clone)
}

func (r *orderRepository) Save(o *entities.PurchaseOrder) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.state.orders[o.ID] = o.Clone()
	return nil
}

func (r *orderRepository) List(includeDeleted bool) ([]*entities.PurchaseOrder, error) {
	return collect(r.tx.state.orders, func(o *entities.PurchaseOrder) bool {
		return includeDeleted || !o.Deleted
	}, (*entities.PurchaseOrder).Clone, func(a, b *entities.PurchaseOrder) bool {
		return a.Number < b.Number || (a.Number == b.Number && a.ID < b.ID)
	}), nil
}

type receiptRepository struct{ tx *tx }

var _ repositories.GoodsReceiptRepository = (*receiptRepository)(nil)

func (r *receiptRepository) Get(id string) (*entities.GoodsReceipt, error) {
	return find(r.tx.state.receipts, "goods receipt", id, (*entities.GoodsReceipt).Clone)
}

func (r *receiptRepository) Save(gr *entities.GoodsReceipt) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.state.receipts[gr.ID] = gr.Clone()
	return nil
}

func (r *receiptRepository) ListByOrder(orderID string) ([]*entities.GoodsReceipt, error) {
	return collect(r.tx.state.receipts, func(gr *entities.GoodsReceipt) bool {
		return gr.OrderID == orderID
	}, (*entities.GoodsReceipt).Clone, func(a, b *entities.GoodsReceipt) bool {
		return a.ID < b.ID
	}), nil
}

type contractorRepository struct{ tx *tx }

var _ repositories.ContractorDocumentRepository = (*contractorRepository)(nil)

func (r *contractorRepository) GetWriteOff(id string) (*entities.ContractorWriteOff, error) {
	return find(r.tx.state.writeOffs, "contractor write-off", id, (*entities.ContractorWriteOff).Clone)
}

func (r *contractorRepository) SaveWriteOff(w *entities.ContractorWriteOff) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.state.writeOffs[w.ID] = w.Clone()
	return nil
}

func (r *contractorRepository) GetReceipt(id string) (*entities.ContractorReceipt, error) {
	return find(r.tx.state.contractorReceipts, "contractor receipt", id, (*entities.ContractorReceipt).Clone)
}

func (r *contractorRepository) SaveReceipt(cr *entities.ContractorReceipt) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.state.contractorReceipts[cr.ID] = cr.Clone()
	return nil
}

type transferRepository struct{ tx *tx }

var _ repositories.StockTransferRepository = (*transferRepository)(nil)

func (r *transferRepository) Get(id string) (*entities.StockTransfer, error) {
	return find(r.tx.state.transfers, "stock transfer", id, (*entities.StockTransfer).Clone)
}

func (r *transferRepository) Save(t *entities.StockTransfer) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.state.transfers[t.ID] = t.Clone()
	return nil
}

type countRepository struct{ tx *tx }

var _ repositories.InventoryCountRepository = (*countRepository)(nil)

func (r *countRepository) Get(id string) (*entities.InventoryCount, error) {
	return find(r.tx.state.counts, "inventory count", id, (*entities.InventoryCount).Clone)
}

func (r *countRepository) Save(c *entities.InventoryCount) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.state.counts[c.ID] = c.Clone()
	return nil
}
