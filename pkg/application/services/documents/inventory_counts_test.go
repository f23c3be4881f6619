package documents_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rushen88/PDM-sub000/pkg/application/services/documents"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/stock"
	svctesting "github.com/Rushen88/PDM-sub000/pkg/application/services/testing"
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

func count(f *svctesting.Fixture, lines ...documents.CountLineInput) (*entities.InventoryCount, error) {
	var c *entities.InventoryCount
	err := f.Write(func(s *shared.Scope) error {
		var err error
		c, err = f.Documents.CreateInventoryCount(s, documents.InventoryCountInput{WarehouseID: svctesting.Warehouse, Lines: lines})
		if err != nil {
			return err
		}
		c, err = f.Documents.CompleteInventoryCount(s, c.ID)
		return err
	})
	return c, err
}

func TestInventoryCount_AdjustsBothWays(t *testing.T) {
	f := setup(t)
	f.AddStock(t, svctesting.Warehouse, steel, 10, svctesting.Day0)

	c, err := count(f,
		documents.CountLineInput{NomenclatureID: steel, CountedQuantity: entities.Qty(7)},
		documents.CountLineInput{NomenclatureID: motor, CountedQuantity: entities.Qty(3)},
	)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCompleted, c.Status)
	assertQty(t, 10, c.Lines[0].BookQuantity, "steel book")
	assertQty(t, 0, c.Lines[1].BookQuantity, "motor book")

	assertQty(t, 7, f.Position(t, svctesting.Warehouse, steel).Quantity, "steel counted")
	assertQty(t, 3, f.Position(t, svctesting.Warehouse, motor).Quantity, "motor counted")
	f.AssertConservation(t, steel)
}

func TestInventoryCount_RefusesToGoBelowReserved(t *testing.T) {
	f := setup(t)
	f.AddStock(t, svctesting.Warehouse, steel, 10, svctesting.Day0)
	require.NoError(t, f.Write(func(s *shared.Scope) error {
		_, err := f.Stock.Reserve(s, stock.ReserveRequest{NodeID: "N-1", ProjectID: "P-1", NomenclatureID: steel, Quantity: entities.Qty(6)})
		return err
	}))

	_, err := count(f, documents.CountLineInput{NomenclatureID: steel, CountedQuantity: entities.Qty(5)})
	require.True(t, apperrors.IsConflict(err), "got %v", err)
	assertQty(t, 10, f.Position(t, svctesting.Warehouse, steel).Quantity, "untouched")

	_, err = count(f, documents.CountLineInput{NomenclatureID: steel, CountedQuantity: entities.Qty(6)})
	require.NoError(t, err)
	pos := f.Position(t, svctesting.Warehouse, steel)
	assertQty(t, 6, pos.Quantity, "down to reserved")
	assertQty(t, 6, pos.ReservedQuantity, "reservation kept")
}

func TestCreateInventoryCount_Validation(t *testing.T) {
	f := setup(t)
	_, err := count(f,
		documents.CountLineInput{NomenclatureID: steel, CountedQuantity: entities.Qty(1)},
		documents.CountLineInput{NomenclatureID: steel, CountedQuantity: entities.Qty(2)},
	)
	assert.True(t, apperrors.IsValidation(err), "duplicate line")

	_, err = count(f, documents.CountLineInput{NomenclatureID: steel, CountedQuantity: entities.Qty(-1)})
	assert.True(t, apperrors.IsValidation(err), "negative count")
}
