// Package testing provides fixtures for the application service tests: a
// transactional memory store seeded with a small catalog.
package testing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Rushen88/PDM-sub000/pkg/application/dto"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/documents"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/requirements"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/stock"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/tree"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/repositories"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/events"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/repositories/memory"
)

// Catalog IDs used by the fixtures
const (
	Warehouse       = "WH-MAIN"
	SecondWarehouse = "WH-SPARE"
	Supplier        = "SUP-ACME"
	Contractor      = "CON-WELD"
	CatAssembly     = "CAT-ASSEMBLY"
	CatComponent    = "CAT-COMPONENT"
	CatPurchased    = "CAT-PURCHASED"
)

// Day0 is the fixture clock
var Day0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// Fixture bundles a memory store, a runner on a fixed clock, the event store
// and the services wired the way the engine wires them
type Fixture struct {
	Store        *memory.Store
	Events       *events.InMemoryEventStore
	Runner       *shared.Runner
	Stock        *stock.Engine
	Requirements *requirements.Service
	Tree         *tree.Service
	Documents    *documents.Service
	now          time.Time
}

// NewFixture creates an empty store with warehouses, a supplier, a contractor
// and the three fixture categories
func NewFixture(t require.TestingT) *Fixture {
	f := &Fixture{
		Store:  memory.NewStore(nil),
		Events: events.NewInMemoryEventStore(nil),
		Stock:  stock.NewEngine(nil),
		now:    Day0,
	}
	f.Runner = shared.NewRunner(f.Store, f.Events, f.Clock, nil)
	f.Requirements = requirements.NewService(requirements.Options{}, nil)
	f.Tree = tree.NewService(tree.Options{}, f.Requirements, f.Stock, nil)
	f.Documents = documents.NewService(f.Stock, f.Requirements, nil)

	f.Catalog(t, func(c repositories.CatalogRepository) error {
		for _, w := range []string{Warehouse, SecondWarehouse} {
			if err := c.SaveWarehouse(&entities.Warehouse{ID: w, Name: w}); err != nil {
				return err
			}
		}
		if err := c.SaveSupplier(&entities.Supplier{ID: Supplier, Name: "Acme Supply", LeadTimeDays: 10}); err != nil {
			return err
		}
		if err := c.SaveContractor(&entities.Contractor{ID: Contractor, Name: "Weld Works"}); err != nil {
			return err
		}
		cats := []*entities.Category{
			{ID: CatAssembly, Name: "Assemblies", AllowedChildCategoryIDs: []string{CatAssembly, CatComponent, CatPurchased}},
			{ID: CatComponent, Name: "Components", AllowedChildCategoryIDs: []string{CatPurchased}},
			{ID: CatPurchased, Name: "Purchased", IsPurchased: true},
		}
		for _, cat := range cats {
			if err := c.SaveCategory(cat); err != nil {
				return err
			}
		}
		return nil
	})
	return f
}

// Clock returns the fixture time
func (f *Fixture) Clock() time.Time {
	return f.now
}

// Advance moves the fixture clock
func (f *Fixture) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// Catalog runs fn against the catalog in a committed transaction
func (f *Fixture) Catalog(t require.TestingT, fn func(c repositories.CatalogRepository) error) {
	err := f.Store.WithinTx(context.Background(), func(_ context.Context, tx repositories.Tx) error {
		return fn(tx.Catalog())
	})
	require.NoError(t, err)
}

// Write runs fn in a committed scope
func (f *Fixture) Write(fn func(s *shared.Scope) error) error {
	return f.Runner.Write(context.Background(), func(_ context.Context, s *shared.Scope) error {
		return fn(s)
	})
}

// Read runs fn in a read-only scope
func (f *Fixture) Read(t require.TestingT, fn func(s *shared.Scope) error) {
	require.NoError(t, f.Runner.Read(context.Background(), func(_ context.Context, s *shared.Scope) error {
		return fn(s)
	}))
}

// ItemOption customises a fixture nomenclature item
type ItemOption func(n *entities.Nomenclature)

// WithSupplier sets the default supplier
func WithSupplier(id string) ItemOption {
	return func(n *entities.Nomenclature) { n.DefaultSupplierID = id }
}

// WithContractor makes the item contractor-made
func WithContractor(id string) ItemOption {
	return func(n *entities.Nomenclature) { n.DefaultContractorID = id }
}

// WithManufacturingDays sets the manufacturing duration
func WithManufacturingDays(days int) ItemOption {
	return func(n *entities.Nomenclature) { n.ManufacturingDays = days }
}

// WithSafetyStock sets the safety stock
func WithSafetyStock(q int64) ItemOption {
	return func(n *entities.Nomenclature) {
		safety := decimal.NewFromInt(q)
		n.SafetyStock = &safety
	}
}

// AddItem stores a nomenclature item in category
func (f *Fixture) AddItem(t require.TestingT, id, category string, opts ...ItemOption) *entities.Nomenclature {
	n, err := entities.NewNomenclature(id, id, id, category, "pcs")
	require.NoError(t, err)
	for _, opt := range opts {
		opt(n)
	}
	f.Catalog(t, func(c repositories.CatalogRepository) error { return c.SaveNomenclature(n) })
	return n
}

// AddPurchased stores a purchased item supplied by the fixture supplier
func (f *Fixture) AddPurchased(t require.TestingT, id string, opts ...ItemOption) *entities.Nomenclature {
	return f.AddItem(t, id, CatPurchased, append([]ItemOption{WithSupplier(Supplier)}, opts...)...)
}

// Child is one line of a fixture template
type Child struct {
	ID  string
	Qty int64
}

// AddTemplate publishes the active template of a manufactured item
func (f *Fixture) AddTemplate(t require.TestingT, nomenclatureID string, children ...Child) *entities.BOMTemplate {
	lines := make([]entities.BOMLine, 0, len(children))
	for i, c := range children {
		line, err := entities.NewBOMLine(c.ID, entities.Qty(c.Qty), "pcs", i+1)
		require.NoError(t, err)
		lines = append(lines, *line)
	}
	tpl, err := entities.NewBOMTemplate("TPL-"+nomenclatureID, nomenclatureID, 1, lines)
	require.NoError(t, err)
	tpl.Status = entities.TemplatePublished
	tpl.Active = true
	f.Catalog(t, func(c repositories.CatalogRepository) error { return c.SaveTemplate(tpl) })
	return tpl
}

// AddStock books opening stock through the stock engine
func (f *Fixture) AddStock(t require.TestingT, warehouseID, nomenclatureID string, qty int64, receivedAt time.Time) *entities.StockMovement {
	var m *entities.StockMovement
	err := f.Write(func(s *shared.Scope) error {
		var err error
		m, err = f.Stock.Receive(s, stock.ReceiveRequest{
			WarehouseID:    warehouseID,
			NomenclatureID: nomenclatureID,
			Quantity:       entities.Qty(qty),
			ReceiptDate:    receivedAt,
			Document:       entities.DocumentRef{Type: entities.DocInventoryCount, ID: "opening-" + shared.NewID()},
			Type:           entities.MovementAdjustment,
		})
		return err
	})
	require.NoError(t, err)
	return m
}

// Position returns the stock position of an item in a warehouse
func (f *Fixture) Position(t require.TestingT, warehouseID, nomenclatureID string) *entities.StockPosition {
	var p *entities.StockPosition
	f.Read(t, func(s *shared.Scope) error {
		var err error
		p, err = s.Tx.Stock().FindPosition(warehouseID, nomenclatureID)
		return err
	})
	return p
}

// AssertConservation checks that every position of an item holds
// 0 <= reserved <= quantity and that its active reservations add up to reserved
func (f *Fixture) AssertConservation(t require.TestingT, nomenclatureID string) {
	f.Read(t, func(s *shared.Scope) error {
		positions, err := s.Tx.Stock().ListPositions(nomenclatureID)
		if err != nil {
			return err
		}
		for _, p := range positions {
			require.NoError(t, p.CheckInvariant())
			active, err := s.Tx.Stock().ListActiveReservations(p.ID)
			if err != nil {
				return err
			}
			sum := decimal.Zero
			for _, r := range active {
				sum = sum.Add(r.Outstanding())
			}
			require.True(t, sum.Equal(p.ReservedQuantity), "position %s: reservations %s, reserved %s", p.ID, sum, p.ReservedQuantity)
		}
		return nil
	})
}

// Node stores a bare tree node, for tests that do not need expansion
func (f *Fixture) Node(t require.TestingT, n *entities.TreeNode) *entities.TreeNode {
	err := f.Write(func(s *shared.Scope) error {
		if n.ID == "" {
			n.ID = shared.NewID()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = s.Now
		}
		return s.Tx.Tree().Save(n)
	})
	require.NoError(t, err)
	return n
}

// Project creates a project due at due and expands its tree
func (f *Fixture) Project(t require.TestingT, rootNomenclatureID string, qty int64, due time.Time) (*entities.Project, []*entities.TreeNode) {
	var project *entities.Project
	var nodes []*entities.TreeNode
	err := f.Write(func(s *shared.Scope) error {
		var err error
		project, nodes, err = f.Tree.CreateProject(s, "Project "+rootNomenclatureID, rootNomenclatureID, entities.Qty(qty), &due)
		return err
	})
	require.NoError(t, err)
	return project, nodes
}

// Sync syncs the requirement rows of a project
func (f *Fixture) Sync(t require.TestingT, projectID string) *dto.SyncResult {
	var out *dto.SyncResult
	err := f.Write(func(s *shared.Scope) error {
		var err error
		out, err = f.Requirements.Sync(s, projectID)
		return err
	})
	require.NoError(t, err)
	return out
}

// GetNode reads a tree node
func (f *Fixture) GetNode(t require.TestingT, id string) *entities.TreeNode {
	var n *entities.TreeNode
	f.Read(t, func(s *shared.Scope) error {
		var err error
		n, err = s.Tx.Tree().Get(id)
		return err
	})
	return n
}

// Requirement reads the stored requirement of a node
func (f *Fixture) Requirement(t require.TestingT, nodeID string) *entities.Requirement {
	var r *entities.Requirement
	f.Read(t, func(s *shared.Scope) error {
		var err error
		r, err = s.Tx.Requirements().FindByNode(nodeID)
		return err
	})
	return r
}

// ByItem returns the first node instantiated from nomenclatureID
func ByItem(t require.TestingT, nodes []*entities.TreeNode, nomenclatureID string) *entities.TreeNode {
	for _, n := range nodes {
		if n.NomenclatureID == nomenclatureID {
			return n
		}
	}
	require.Failf(t, "node not found", "no node for %s", nomenclatureID)
	return nil
}
