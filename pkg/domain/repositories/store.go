package repositories

import "context"

// TxFunc is a unit of work executed against one transaction
type TxFunc func(ctx context.Context, tx Tx) error

// Store runs units of work against the underlying storage.
// WithinTx commits when fn returns nil and rolls back everything otherwise.
// Read runs fn without write guarantees; repositories reached from a read
// transaction reject writes.
type Store interface {
	WithinTx(ctx context.Context, fn TxFunc) error
	Read(ctx context.Context, fn TxFunc) error
}

// Tx exposes the repositories bound to one transaction
type Tx interface {
	Catalog() CatalogRepository
	Projects() ProjectRepository
	Tree() TreeRepository
	Stock() StockRepository
	Requirements() RequirementRepository
	Orders() PurchaseOrderRepository
	Receipts() GoodsReceiptRepository
	Contractors() ContractorDocumentRepository
	Transfers() StockTransferRepository
	Counts() InventoryCountRepository
	Sequences() SequenceRepository
}
