package orchestration_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Rushen88/PDM-sub000/pkg/application/dto"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/documents"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/orchestration"
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/config"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/events"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/repositories/csv"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/repositories/memory"
)

var day0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type harness struct {
	engine *orchestration.Engine
	events *events.InMemoryEventStore
	logs   *observer.ObservedLogs
	ctx    context.Context
}

func newHarness(t *testing.T) *harness {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	store := events.NewInMemoryEventStore(logger)
	engine := orchestration.NewEngine(memory.NewStore(logger), store, orchestration.Options{}, func() time.Time { return day0 }, logger)

	seed, err := csv.NewLoader().LoadDir(filepath.Join("..", "..", "..", "infrastructure", "repositories", "csv", "testdata", "plant"))
	require.NoError(t, err)
	h := &harness{engine: engine, events: store, logs: logs, ctx: context.Background()}
	result, err := engine.ImportCatalog(h.ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Items)
	assert.Len(t, result.CountIDs, 2)
	return h
}

func (h *harness) eventTypes(t *testing.T) []string {
	all, err := h.events.ReadAllEvents(0)
	require.NoError(t, err)
	out := make([]string, 0, len(all))
	for _, e := range all {
		out = append(out, e.Type())
	}
	return out
}

func byItem(t *testing.T, tree *dto.ProjectTree, nomenclatureID string) *entities.TreeNode {
	for _, n := range tree.Nodes {
		if n.NomenclatureID == nomenclatureID {
			return n
		}
	}
	require.Failf(t, "node not found", "no node for %s", nomenclatureID)
	return nil
}

func requirementFor(t *testing.T, reqs []*entities.Requirement, nodeID string) *entities.Requirement {
	for _, r := range reqs {
		if r.NodeID == nodeID {
			return r
		}
	}
	require.Failf(t, "requirement not found", "no requirement for node %s", nodeID)
	return nil
}

func TestEngine_PlanOrderReceive(t *testing.T) {
	h := newHarness(t)
	ctx := h.ctx

	tree, err := h.engine.CreateProject(ctx, "Pump order 17", "PUMP", entities.Qty(2), entities.DatePtr(day0.AddDate(0, 0, 60)))
	require.NoError(t, err)
	require.Len(t, tree.Nodes, 5)
	steel := byItem(t, tree, "STEEL")
	assert.Equal(t, "29", steel.Quantity.String())
	housing := byItem(t, tree, "HOUSING")
	assert.True(t, housing.IsContractorMade())

	sync, err := h.engine.SyncRequirementsFromProject(ctx, tree.Project.ID)
	require.NoError(t, err)
	assert.Len(t, sync.Created, 3)

	reqs, err := h.engine.ListProjectRequirements(ctx, tree.Project.ID)
	require.NoError(t, err)
	require.Len(t, reqs, 3)
	motor := byItem(t, tree, "MOTOR")
	motorReq := requirementFor(t, reqs, motor.ID)
	assert.True(t, motorReq.ToOrder.Equal(entities.Qty(1)), "2 needed, 2 on hand, safety stock 1: got %s", motorReq.ToOrder)
	assert.True(t, requirementFor(t, reqs, byItem(t, tree, "BOLT").ID).ToOrder.IsZero())

	order, err := h.engine.CreatePurchaseOrder(ctx, documents.PurchaseOrderInput{
		SupplierID: "SUP-ACME",
		Lines:      []documents.OrderLineInput{{NomenclatureID: "MOTOR", Quantity: entities.Qty(1)}},
	})
	require.NoError(t, err)
	order, err = h.engine.ConfirmPurchaseOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, order.Lines[0].Allocations, 1)
	assert.Equal(t, motor.ID, order.Lines[0].Allocations[0].NodeID)

	receipt, err := h.engine.CreateGoodsReceipt(ctx, documents.GoodsReceiptInput{
		OrderID:     order.ID,
		WarehouseID: "WH-MAIN",
		Lines:       []documents.ReceiptLineInput{{OrderLineID: order.Lines[0].ID, Quantity: entities.Qty(1)}},
	})
	require.NoError(t, err)
	_, err = h.engine.ConfirmGoodsReceipt(ctx, receipt.ID)
	require.NoError(t, err)

	loaded, err := h.engine.GetProjectTree(ctx, tree.Project.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.PurchaseClosed, byItem(t, loaded, "MOTOR").PurchaseStatus)

	reservations, err := h.engine.NodeReservations(ctx, motor.ID)
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.True(t, reservations[0].Quantity.Equal(entities.Qty(1)))

	types := h.eventTypes(t)
	assert.Contains(t, types, events.StockReceivedEvent)
	assert.Contains(t, types, events.DocumentConfirmedEvent)
	assert.Contains(t, types, events.NodeStatusChangedEvent)
	assert.Contains(t, types, events.StockReservedEvent)
}

func TestEngine_FailedOperationRollsBackAndPublishesNothing(t *testing.T) {
	h := newHarness(t)
	ctx := h.ctx
	tree, err := h.engine.CreateProject(ctx, "Pump order 18", "PUMP", entities.Qty(1), entities.DatePtr(day0.AddDate(0, 0, 30)))
	require.NoError(t, err)
	bolt := byItem(t, tree, "BOLT")

	before := len(h.eventTypes(t))
	_, err = h.engine.ConsumeStock(ctx, bolt.ID, entities.Qty(401), false)
	require.True(t, apperrors.IsInsufficientStock(err), "got %v", err)
	assert.Len(t, h.eventTypes(t), before)

	positions, err := h.engine.StockPositions(ctx, "BOLT")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.True(t, positions[0].Quantity.Equal(entities.Qty(400)))

	rejected := h.logs.FilterMessage("operation rejected").All()
	require.NotEmpty(t, rejected)
	assert.Equal(t, "consume_stock", rejected[len(rejected)-1].ContextMap()["op"])

	_, err = h.engine.ReserveStock(ctx, bolt.ID, entities.Qty(12))
	require.NoError(t, err)
	result, err := h.engine.ConsumeStock(ctx, bolt.ID, entities.Qty(12), true)
	require.NoError(t, err)
	require.Len(t, result.Movements, 1)
	movements, err := h.engine.PositionMovements(ctx, positions[0].ID)
	require.NoError(t, err)
	assert.Len(t, movements, 2, "opening count and the consumption")
}

func TestEngine_ImportRejectsInconsistentCatalog(t *testing.T) {
	engine := orchestration.NewEngine(memory.NewStore(nil), nil, orchestration.Options{}, nil, nil)
	seed := &dto.CatalogSeed{
		Categories:   []*entities.Category{{ID: "CAT", Name: "Parts", IsPurchased: true}},
		Nomenclature: []*entities.Nomenclature{{ID: "BOLT", Name: "Bolt", CategoryID: "CAT", Unit: "pcs", DefaultSupplierID: "SUP-NONE"}},
	}
	_, err := engine.ImportCatalog(context.Background(), seed)
	require.True(t, apperrors.IsValidation(err), "got %v", err)
	assert.Contains(t, err.Error(), "unknown supplier SUP-NONE")

	projects, err := engine.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := orchestration.OptionsFromConfig(config.PlanningConfig{
		DefaultLeadTimeDays:      14,
		DefaultManufacturingDays: 3,
		DefaultSafetyStock:       "2.5",
	})
	require.NoError(t, err)
	assert.Equal(t, 14, opts.Tree.DefaultLeadTimeDays)
	assert.Equal(t, 3, opts.Tree.DefaultManufacturingDays)
	assert.Equal(t, "2.5", opts.Requirements.DefaultSafetyStock.String())

	_, err = orchestration.OptionsFromConfig(config.PlanningConfig{DefaultSafetyStock: "lots"})
	assert.Error(t, err)
	_, err = orchestration.OptionsFromConfig(config.PlanningConfig{DefaultSafetyStock: "-1"})
	assert.Error(t, err)
}
