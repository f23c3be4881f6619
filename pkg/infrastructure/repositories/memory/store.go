package memory

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/repositories"
)

// ErrReadOnly is returned when a read transaction attempts a write
var ErrReadOnly = errors.New("memory store: write in read-only transaction")

type state struct {
	categories   map[string]*entities.Category
	nomenclature map[string]*entities.Nomenclature
	suppliers    map[string]*entities.Supplier
	contractors  map[string]*entities.Contractor
	warehouses   map[string]*entities.Warehouse
	templates    map[string]*entities.BOMTemplate

	projects     map[string]*entities.Project
	nodes        map[string]*entities.TreeNode
	requirements map[string]*entities.Requirement
	sequences    map[string]int64

	positions    map[string]*entities.StockPosition
	batches      map[string]*entities.StockBatch
	reservations map[string]*entities.StockReservation
	movements    map[string]*entities.StockMovement
	// movementLog keeps ledger insertion order
	movementLog []string

	orders             map[string]*entities.PurchaseOrder
	receipts           map[string]*entities.GoodsReceipt
	writeOffs          map[string]*entities.ContractorWriteOff
	contractorReceipts map[string]*entities.ContractorReceipt
	transfers          map[string]*entities.StockTransfer
	counts             map[string]*entities.InventoryCount
}

func newState() *state {
	return &state{
		categories:         map[string]*entities.Category{},
		nomenclature:       map[string]*entities.Nomenclature{},
		suppliers:          map[string]*entities.Supplier{},
		contractors:        map[string]*entities.Contractor{},
		warehouses:         map[string]*entities.Warehouse{},
		templates:          map[string]*entities.BOMTemplate{},
		projects:           map[string]*entities.Project{},
		nodes:              map[string]*entities.TreeNode{},
		requirements:       map[string]*entities.Requirement{},
		sequences:          map[string]int64{},
		positions:          map[string]*entities.StockPosition{},
		batches:            map[string]*entities.StockBatch{},
		reservations:       map[string]*entities.StockReservation{},
		movements:          map[string]*entities.StockMovement{},
		orders:             map[string]*entities.PurchaseOrder{},
		receipts:           map[string]*entities.GoodsReceipt{},
		writeOffs:          map[string]*entities.ContractorWriteOff{},
		contractorReceipts: map[string]*entities.ContractorReceipt{},
		transfers:          map[string]*entities.StockTransfer{},
		counts:             map[string]*entities.InventoryCount{},
	}
}

func (s *state) clone() *state {
	out := &state{
		categories:         cloneMap(s.categories, (*entities.Category).Clone),
		nomenclature:       cloneMap(s.nomenclature, copyOf[entities.Nomenclature]),
		suppliers:          cloneMap(s.suppliers, copyOf[entities.Supplier]),
		contractors:        cloneMap(s.contractors, copyOf[entities.Contractor]),
		warehouses:         cloneMap(s.warehouses, copyOf[entities.Warehouse]),
		templates:          cloneMap(s.templates, (*entities.BOMTemplate).Clone),
		projects:           cloneMap(s.projects, copyOf[entities.Project]),
		nodes:              cloneMap(s.nodes, (*entities.TreeNode).Clone),
		requirements:       cloneMap(s.requirements, (*entities.Requirement).Clone),
		sequences:          make(map[string]int64, len(s.sequences)),
		positions:          cloneMap(s.positions, copyOf[entities.StockPosition]),
		batches:            cloneMap(s.batches, copyOf[entities.StockBatch]),
		reservations:       cloneMap(s.reservations, copyOf[entities.StockReservation]),
		movements:          cloneMap(s.movements, (*entities.StockMovement).Clone),
		movementLog:        append([]string(nil), s.movementLog...),
		orders:             cloneMap(s.orders, (*entities.PurchaseOrder).Clone),
		receipts:           cloneMap(s.receipts, (*entities.GoodsReceipt).Clone),
		writeOffs:          cloneMap(s.writeOffs, (*entities.ContractorWriteOff).Clone),
		contractorReceipts: cloneMap(s.contractorReceipts, (*entities.ContractorReceipt).Clone),
		transfers:          cloneMap(s.transfers, (*entities.StockTransfer).Clone),
		counts:             cloneMap(s.counts, (*entities.InventoryCount).Clone),
	}
	for k, v := range s.sequences {
		out.sequences[k] = v
	}
	return out
}

func cloneMap[T any](m map[string]*T, clone func(*T) *T) map[string]*T {
	out := make(map[string]*T, len(m))
	for k, v := range m {
		out[k] = clone(v)
	}
	return out
}

func copyOf[T any](v *T) *T {
	out := *v
	return &out
}

// Store is a transactional in-memory implementation of repositories.Store.
// A write transaction works on a private copy of the state which replaces the
// committed state only when the unit of work succeeds. Write transactions are
// serialized, so every row is effectively locked for the whole transaction.
type Store struct {
	mu     sync.RWMutex
	state  *state
	logger *zap.Logger
}

// NewStore creates an empty in-memory store
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{state: newState(), logger: logger}
}

// Verify interface compliance
var _ repositories.Store = (*Store)(nil)

// WithinTx runs fn on a copy of the state and commits it when fn succeeds
func (s *Store) WithinTx(ctx context.Context, fn repositories.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(ctx, &tx{state: work}); err != nil {
		s.logger.Debug("memory transaction rolled back", zap.Error(err))
		return err
	}
	s.state = work
	return nil
}

// Read runs fn against the committed state
func (s *Store) Read(ctx context.Context, fn repositories.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(ctx, &tx{state: s.state, readOnly: true})
}

type tx struct {
	state    *state
	readOnly bool
}

func (t *tx) writable() error {
	if t.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (t *tx) Catalog() repositories.CatalogRepository                { return &catalogRepository{t} }
func (t *tx) Projects() repositories.ProjectRepository               { return &projectRepository{t} }
func (t *tx) Tree() repositories.TreeRepository                      { return &treeRepository{t} }
func (t *tx) Stock() repositories.StockRepository                    { return &stockRepository{t} }
func (t *tx) Requirements() repositories.RequirementRepository       { return &requirementRepository{t} }
func (t *tx) Orders() repositories.PurchaseOrderRepository           { return &orderRepository{t} }
func (t *tx) Receipts() repositories.GoodsReceiptRepository          { return &receiptRepository{t} }
func (t *tx) Contractors() repositories.ContractorDocumentRepository { return &contractorRepository{t} }
func (t *tx) Transfers() repositories.StockTransferRepository        { return &transferRepository{t} }
func (t *tx) Counts() repositories.InventoryCountRepository          { return &countRepository{t} }
func (t *tx) Sequences() repositories.SequenceRepository             { return &sequenceRepository{t} }
