package orchestration

import (
	"context"

	"github.com/Rushen88/PDM-sub000/pkg/application/services/documents"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

// CreatePurchaseOrder stores a draft purchase order
func (e *Engine) CreatePurchaseOrder(ctx context.Context, in documents.PurchaseOrderInput) (*entities.PurchaseOrder, error) {
	return write(ctx, e, "create_purchase_order", func(sc *shared.Scope) (*entities.PurchaseOrder, error) {
		return e.documents.CreatePurchaseOrder(sc, in)
	})
}

// ConfirmPurchaseOrder links the order to requirements and puts them in order
func (e *Engine) ConfirmPurchaseOrder(ctx context.Context, orderID string) (*entities.PurchaseOrder, error) {
	return write(ctx, e, "confirm_purchase_order", func(sc *shared.Scope) (*entities.PurchaseOrder, error) {
		return e.documents.ConfirmPurchaseOrder(sc, orderID)
	})
}

// CancelPurchaseOrder cancels an order and frees its requirements
func (e *Engine) CancelPurchaseOrder(ctx context.Context, orderID string) (*entities.PurchaseOrder, error) {
	return write(ctx, e, "cancel_purchase_order", func(sc *shared.Scope) (*entities.PurchaseOrder, error) {
		return e.documents.CancelPurchaseOrder(sc, orderID)
	})
}

// DeletePurchaseOrder tombstones a draft or cancelled order
func (e *Engine) DeletePurchaseOrder(ctx context.Context, orderID string) (*entities.PurchaseOrder, error) {
	return write(ctx, e, "delete_purchase_order", func(sc *shared.Scope) (*entities.PurchaseOrder, error) {
		return e.documents.DeletePurchaseOrder(sc, orderID)
	})
}

// RestorePurchaseOrder brings a tombstoned order back
func (e *Engine) RestorePurchaseOrder(ctx context.Context, orderID string) (*entities.PurchaseOrder, error) {
	return write(ctx, e, "restore_purchase_order", func(sc *shared.Scope) (*entities.PurchaseOrder, error) {
		return e.documents.RestorePurchaseOrder(sc, orderID)
	})
}

// CreateGoodsReceipt stores a draft goods receipt
func (e *Engine) CreateGoodsReceipt(ctx context.Context, in documents.GoodsReceiptInput) (*entities.GoodsReceipt, error) {
	return write(ctx, e, "create_goods_receipt", func(sc *shared.Scope) (*entities.GoodsReceipt, error) {
		return e.documents.CreateGoodsReceipt(sc, in)
	})
}

// ConfirmGoodsReceipt books received goods and closes the covered requirements
func (e *Engine) ConfirmGoodsReceipt(ctx context.Context, receiptID string) (*entities.GoodsReceipt, error) {
	return write(ctx, e, "confirm_goods_receipt", func(sc *shared.Scope) (*entities.GoodsReceipt, error) {
		return e.documents.ConfirmGoodsReceipt(sc, receiptID)
	})
}

// CancelGoodsReceiptConfirmation undoes a confirmed receipt
func (e *Engine) CancelGoodsReceiptConfirmation(ctx context.Context, receiptID string) (*entities.GoodsReceipt, error) {
	return write(ctx, e, "cancel_goods_receipt_confirmation", func(sc *shared.Scope) (*entities.GoodsReceipt, error) {
		return e.documents.CancelGoodsReceiptConfirmation(sc, receiptID)
	})
}

// CancelGoodsReceipt cancels a draft goods receipt
func (e *Engine) CancelGoodsReceipt(ctx context.Context, receiptID string) (*entities.GoodsReceipt, error) {
	return write(ctx, e, "cancel_goods_receipt", func(sc *shared.Scope) (*entities.GoodsReceipt, error) {
		return e.documents.CancelGoodsReceipt(sc, receiptID)
	})
}

// CreateContractorWriteOff stores a draft write-off of material to a contractor
func (e *Engine) CreateContractorWriteOff(ctx context.Context, in documents.ContractorWriteOffInput) (*entities.ContractorWriteOff, error) {
	return write(ctx, e, "create_contractor_write_off", func(sc *shared.Scope) (*entities.ContractorWriteOff, error) {
		return e.documents.CreateContractorWriteOff(sc, in)
	})
}

// ConfirmContractorWriteOff writes the material off
func (e *Engine) ConfirmContractorWriteOff(ctx context.Context, id string) (*entities.ContractorWriteOff, error) {
	return write(ctx, e, "confirm_contractor_write_off", func(sc *shared.Scope) (*entities.ContractorWriteOff, error) {
		return e.documents.ConfirmContractorWriteOff(sc, id)
	})
}

// CancelContractorWriteOff puts written-off material back on stock
func (e *Engine) CancelContractorWriteOff(ctx context.Context, id string) (*entities.ContractorWriteOff, error) {
	return write(ctx, e, "cancel_contractor_write_off", func(sc *shared.Scope) (*entities.ContractorWriteOff, error) {
		return e.documents.CancelContractorWriteOff(sc, id)
	})
}

// CreateContractorReceipt stores a draft receipt of contractor-made products
func (e *Engine) CreateContractorReceipt(ctx context.Context, in documents.ContractorReceiptInput) (*entities.ContractorReceipt, error) {
	return write(ctx, e, "create_contractor_receipt", func(sc *shared.Scope) (*entities.ContractorReceipt, error) {
		return e.documents.CreateContractorReceipt(sc, in)
	})
}

// ConfirmContractorReceipt books contractor-made products
func (e *Engine) ConfirmContractorReceipt(ctx context.Context, id string) (*entities.ContractorReceipt, error) {
	return write(ctx, e, "confirm_contractor_receipt", func(sc *shared.Scope) (*entities.ContractorReceipt, error) {
		return e.documents.ConfirmContractorReceipt(sc, id)
	})
}

// CreateStockTransfer stores a draft transfer
func (e *Engine) CreateStockTransfer(ctx context.Context, in documents.StockTransferInput) (*entities.StockTransfer, error) {
	return write(ctx, e, "create_stock_transfer", func(sc *shared.Scope) (*entities.StockTransfer, error) {
		return e.documents.CreateStockTransfer(sc, in)
	})
}

// ShipTransfer takes the transfer out of its source warehouse
func (e *Engine) ShipTransfer(ctx context.Context, id string) (*entities.StockTransfer, error) {
	return write(ctx, e, "ship_transfer", func(sc *shared.Scope) (*entities.StockTransfer, error) {
		return e.documents.ShipTransfer(sc, id)
	})
}

// ReceiveTransfer books the transfer at its destination
func (e *Engine) ReceiveTransfer(ctx context.Context, id string) (*entities.StockTransfer, error) {
	return write(ctx, e, "receive_transfer", func(sc *shared.Scope) (*entities.StockTransfer, error) {
		return e.documents.ReceiveTransfer(sc, id)
	})
}

// CreateInventoryCount stores a draft count
func (e *Engine) CreateInventoryCount(ctx context.Context, in documents.InventoryCountInput) (*entities.InventoryCount, error) {
	return write(ctx, e, "create_inventory_count", func(sc *shared.Scope) (*entities.InventoryCount, error) {
		return e.documents.CreateInventoryCount(sc, in)
	})
}

// CompleteInventoryCount adjusts stock to a count
func (e *Engine) CompleteInventoryCount(ctx context.Context, id string) (*entities.InventoryCount, error) {
	return write(ctx, e, "complete_inventory_count", func(sc *shared.Scope) (*entities.InventoryCount, error) {
		return e.documents.CompleteInventoryCount(sc, id)
	})
}
