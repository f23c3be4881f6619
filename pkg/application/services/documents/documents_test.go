package documents_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rushen88/PDM-sub000/pkg/application/services/documents"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	svctesting "github.com/Rushen88/PDM-sub000/pkg/application/services/testing"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

const (
	pump  = "PUMP"
	motor = "MOTOR"
	steel = "STEEL"
	weld  = "WELDMENT"
)

// setup builds PUMP -> 10 x MOTOR plus a contractor-made WELDMENT that
// consumes STEEL
func setup(t *testing.T) *svctesting.Fixture {
	f := svctesting.NewFixture(t)
	f.AddItem(t, pump, svctesting.CatAssembly)
	f.AddItem(t, weld, svctesting.CatComponent, svctesting.WithContractor(svctesting.Contractor))
	f.AddPurchased(t, motor)
	f.AddPurchased(t, steel)
	f.AddTemplate(t, pump, svctesting.Child{ID: motor, Qty: 10})
	return f
}

func assertQty(t *testing.T, want int64, got entities.Quantity, field string) {
	t.Helper()
	assert.True(t, got.Equal(entities.Qty(want)), "%s: want %d, got %s", field, want, got)
}

// motorNode creates a synced project due in days and returns its motor node
func motorNode(t *testing.T, f *svctesting.Fixture, qty int64, days int) *entities.TreeNode {
	p, nodes := f.Project(t, pump, qty, svctesting.Day0.AddDate(0, 0, days))
	f.Sync(t, p.ID)
	return svctesting.ByItem(t, nodes, motor)
}

func order(t *testing.T, f *svctesting.Fixture, nomenclatureID string, qty int64, pinned ...string) *entities.PurchaseOrder {
	t.Helper()
	var o *entities.PurchaseOrder
	require.NoError(t, f.Write(func(s *shared.Scope) error {
		var err error
		o, err = f.Documents.CreatePurchaseOrder(s, documents.PurchaseOrderInput{
			SupplierID: svctesting.Supplier,
			Lines:      []documents.OrderLineInput{{NomenclatureID: nomenclatureID, Quantity: entities.Qty(qty), RequirementIDs: pinned}},
		})
		if err != nil {
			return err
		}
		o, err = f.Documents.ConfirmPurchaseOrder(s, o.ID)
		return err
	}))
	return o
}

func receipt(f *svctesting.Fixture, o *entities.PurchaseOrder, qty int64) (*entities.GoodsReceipt, error) {
	var r *entities.GoodsReceipt
	err := f.Write(func(s *shared.Scope) error {
		var err error
		r, err = f.Documents.CreateGoodsReceipt(s, documents.GoodsReceiptInput{
			OrderID:     o.ID,
			WarehouseID: svctesting.Warehouse,
			Lines:       []documents.ReceiptLineInput{{OrderLineID: o.Lines[0].ID, Quantity: entities.Qty(qty)}},
		})
		if err != nil {
			return err
		}
		r, err = f.Documents.ConfirmGoodsReceipt(s, r.ID)
		return err
	})
	return r, err
}

func getOrder(t *testing.T, f *svctesting.Fixture, id string) *entities.PurchaseOrder {
	var o *entities.PurchaseOrder
	f.Read(t, func(s *shared.Scope) error {
		var err error
		o, err = s.Tx.Orders().Get(id)
		return err
	})
	return o
}

func nodeReservations(t *testing.T, f *svctesting.Fixture, nodeID string) []*entities.StockReservation {
	var out []*entities.StockReservation
	f.Read(t, func(s *shared.Scope) error {
		all, err := s.Tx.Stock().ListNodeReservations(nodeID)
		for _, r := range all {
			if r.Status.IsActive() {
				out = append(out, r)
			}
		}
		return err
	})
	return out
}
