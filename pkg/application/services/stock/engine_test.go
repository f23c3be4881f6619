package stock_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/stock"
	svctesting "github.com/Rushen88/PDM-sub000/pkg/application/services/testing"
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/events"
)

const bolt = "BOLT-M8"

func setup(t *testing.T) *svctesting.Fixture {
	f := svctesting.NewFixture(t)
	f.AddPurchased(t, bolt)
	return f
}

func reserve(f *svctesting.Fixture, node string, qty int64) ([]*entities.StockReservation, error) {
	var out []*entities.StockReservation
	err := f.Write(func(s *shared.Scope) error {
		var err error
		out, err = f.Stock.Reserve(s, stock.ReserveRequest{
			NodeID:         node,
			ProjectID:      "P1",
			NomenclatureID: bolt,
			Quantity:       entities.Qty(qty),
		})
		return err
	})
	return out, err
}

func TestReserve_RejectsShortageWithoutPartialReservation(t *testing.T) {
	f := setup(t)
	f.AddStock(t, svctesting.Warehouse, bolt, 100, svctesting.Day0)

	res, err := reserve(f, "A", 40)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, entities.ReservationConfirmed, res[0].Status)

	pos := f.Position(t, svctesting.Warehouse, bolt)
	assert.True(t, pos.ReservedQuantity.Equal(entities.Qty(40)))
	assert.True(t, pos.Available().Equal(entities.Qty(60)))

	_, err = reserve(f, "B", 70)
	require.Error(t, err)
	assert.True(t, apperrors.IsInsufficientStock(err))

	pos = f.Position(t, svctesting.Warehouse, bolt)
	assert.True(t, pos.ReservedQuantity.Equal(entities.Qty(40)))
	f.AssertConservation(t, bolt)
}

func TestReserve_SpreadsOverPositionsMostAvailableFirst(t *testing.T) {
	f := setup(t)
	f.AddStock(t, svctesting.Warehouse, bolt, 10, svctesting.Day0)
	f.AddStock(t, svctesting.SecondWarehouse, bolt, 30, svctesting.Day0)

	res, err := reserve(f, "A", 35)
	require.NoError(t, err)
	require.Len(t, res, 2)

	spare := f.Position(t, svctesting.SecondWarehouse, bolt)
	main := f.Position(t, svctesting.Warehouse, bolt)
	assert.Equal(t, spare.ID, res[0].PositionID)
	assert.True(t, res[0].Quantity.Equal(entities.Qty(30)))
	assert.True(t, res[1].Quantity.Equal(entities.Qty(5)))
	assert.True(t, main.ReservedQuantity.Equal(entities.Qty(5)))
	f.AssertConservation(t, bolt)
}

func TestReserve_RejectsNonPositiveQuantity(t *testing.T) {
	f := setup(t)
	_, err := reserve(f, "A", 0)
	assert.True(t, apperrors.IsValidation(err))
}

func TestReserve_ConcurrentNodesNeverDoubleAllocate(t *testing.T) {
	f := setup(t)
	f.AddStock(t, svctesting.Warehouse, bolt, 100, svctesting.Day0)

	var wg sync.WaitGroup
	results := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = reserve(f, "node-"+string(rune('a'+i)), 30)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperrors.IsInsufficientStock(err))
	}
	assert.Equal(t, 3, succeeded)
	pos := f.Position(t, svctesting.Warehouse, bolt)
	assert.True(t, pos.ReservedQuantity.Equal(entities.Qty(90)))
	f.AssertConservation(t, bolt)
}

func TestRelease_ReturnsOutstandingQuantity(t *testing.T) {
	f := setup(t)
	f.AddStock(t, svctesting.Warehouse, bolt, 50, svctesting.Day0)
	res, err := reserve(f, "A", 20)
	require.NoError(t, err)

	err = f.Write(func(s *shared.Scope) error {
		r, err := f.Stock.Release(s, res[0].ID)
		if err != nil {
			return err
		}
		assert.Equal(t, entities.ReservationReleased, r.Status)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, f.Position(t, svctesting.Warehouse, bolt).ReservedQuantity.IsZero())

	err = f.Write(func(s *shared.Scope) error {
		_, err := f.Stock.Release(s, res[0].ID)
		return err
	})
	assert.True(t, apperrors.IsValidation(err))
	f.AssertConservation(t, bolt)
}

func consume(f *svctesting.Fixture, node string, qty int64, fromReserved bool) ([]*entities.StockMovement, error) {
	var out []*entities.StockMovement
	err := f.Write(func(s *shared.Scope) error {
		var err error
		out, err = f.Stock.Consume(s, stock.ConsumeRequest{
			NodeID:         node,
			NomenclatureID: bolt,
			Quantity:       entities.Qty(qty),
			FromReserved:   fromReserved,
			Document:       entities.DocumentRef{Type: entities.DocNodeConsumption, ID: node, LineID: shared.NewID()},
		})
		return err
	})
	return out, err
}

func TestConsume_FromReservedDecrementsBothCounters(t *testing.T) {
	f := setup(t)
	f.AddStock(t, svctesting.Warehouse, bolt, 100, svctesting.Day0)
	_, err := reserve(f, "A", 40)
	require.NoError(t, err)

	moves, err := consume(f, "A", 25, true)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.True(t, moves[0].Quantity.Equal(entities.Qty(-25)))
	assert.True(t, moves[0].BalanceAfter.Equal(entities.Qty(75)))
	assert.True(t, moves[0].ReservedConsumed.Equal(entities.Qty(25)))

	pos := f.Position(t, svctesting.Warehouse, bolt)
	assert.True(t, pos.Quantity.Equal(entities.Qty(75)))
	assert.True(t, pos.ReservedQuantity.Equal(entities.Qty(15)))
	f.AssertConservation(t, bolt)

	_, err = consume(f, "A", 16, true)
	assert.True(t, apperrors.IsInsufficientStock(err))
}

func TestConsume_FreeStockLeavesReservationsAlone(t *testing.T) {
	f := setup(t)
	f.AddStock(t, svctesting.Warehouse, bolt, 100, svctesting.Day0)
	_, err := reserve(f, "A", 40)
	require.NoError(t, err)

	_, err = consume(f, "B", 61, false)
	assert.True(t, apperrors.IsInsufficientStock(err))

	_, err = consume(f, "B", 60, false)
	require.NoError(t, err)

	pos := f.Position(t, svctesting.Warehouse, bolt)
	assert.True(t, pos.Quantity.Equal(entities.Qty(40)))
	assert.True(t, pos.ReservedQuantity.Equal(entities.Qty(40)))
	f.AssertConservation(t, bolt)
}

func TestConsume_DrawsOldestBatchFirst(t *testing.T) {
	f := setup(t)
	newer := f.AddStock(t, svctesting.Warehouse, bolt, 10, svctesting.Day0.AddDate(0, 0, 5))
	older := f.AddStock(t, svctesting.Warehouse, bolt, 10, svctesting.Day0)

	moves, err := consume(f, "A", 15, false)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	draws := moves[0].BatchDraws
	require.Len(t, draws, 2)
	assert.Equal(t, older.BatchDraws[0].BatchID, draws[0].BatchID)
	assert.True(t, draws[0].Quantity.Equal(entities.Qty(10)))
	assert.Equal(t, newer.BatchDraws[0].BatchID, draws[1].BatchID)
	assert.True(t, draws[1].Quantity.Equal(entities.Qty(5)))
}

func TestReverse_RestoresConsumptionExactly(t *testing.T) {
	f := setup(t)
	f.AddStock(t, svctesting.Warehouse, bolt, 100, svctesting.Day0)
	_, err := reserve(f, "A", 40)
	require.NoError(t, err)
	_, err = consume(f, "A", 40, true)
	require.NoError(t, err)

	var compensations []*entities.StockMovement
	err = f.Write(func(s *shared.Scope) error {
		var err error
		compensations, err = f.Stock.Reverse(s, entities.DocNodeConsumption, "A")
		return err
	})
	require.NoError(t, err)
	require.Len(t, compensations, 1)
	assert.Equal(t, entities.MovementReversal, compensations[0].Type)
	assert.True(t, compensations[0].Quantity.Equal(entities.Qty(40)))

	pos := f.Position(t, svctesting.Warehouse, bolt)
	assert.True(t, pos.Quantity.Equal(entities.Qty(100)))
	assert.True(t, pos.ReservedQuantity.Equal(entities.Qty(40)))
	f.AssertConservation(t, bolt)

	// a second reversal finds nothing left to compensate
	err = f.Write(func(s *shared.Scope) error {
		again, err := f.Stock.Reverse(s, entities.DocNodeConsumption, "A")
		assert.Empty(t, again)
		return err
	})
	require.NoError(t, err)
}

func TestReverse_BlocksWhenReceivedStockWasUsed(t *testing.T) {
	f := setup(t)
	doc := entities.DocumentRef{Type: entities.DocGoodsReceipt, ID: "GR-1", LineID: "L1"}
	err := f.Write(func(s *shared.Scope) error {
		_, err := f.Stock.Receive(s, stock.ReceiveRequest{
			WarehouseID: svctesting.Warehouse, NomenclatureID: bolt,
			Quantity: entities.Qty(10), ReceiptDate: svctesting.Day0, Document: doc,
		})
		return err
	})
	require.NoError(t, err)
	_, err = consume(f, "A", 3, false)
	require.NoError(t, err)

	err = f.Write(func(s *shared.Scope) error {
		_, err := f.Stock.Reverse(s, entities.DocGoodsReceipt, "GR-1")
		return err
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.True(t, f.Position(t, svctesting.Warehouse, bolt).Quantity.Equal(entities.Qty(7)))
}

func TestReceive_CreatesPositionAndPublishesEvent(t *testing.T) {
	f := setup(t)
	before, err := f.Events.ReadAllEvents(0)
	require.NoError(t, err)

	m := f.AddStock(t, svctesting.SecondWarehouse, bolt, 12, svctesting.Day0)
	assert.True(t, m.BalanceAfter.Equal(entities.Qty(12)))
	require.Len(t, m.BatchDraws, 1)

	all, err := f.Events.ReadAllEvents(len(before))
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, events.StockReceivedEvent, all[0].Type())
}

func TestReceive_UnknownWarehouse(t *testing.T) {
	f := setup(t)
	err := f.Write(func(s *shared.Scope) error {
		_, err := f.Stock.Receive(s, stock.ReceiveRequest{
			WarehouseID: "nowhere", NomenclatureID: bolt, Quantity: entities.Qty(1), ReceiptDate: svctesting.Day0,
		})
		return err
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAdjustDown_RefusesToCutIntoReservedStock(t *testing.T) {
	f := setup(t)
	f.AddStock(t, svctesting.Warehouse, bolt, 10, svctesting.Day0)
	_, err := reserve(f, "A", 8)
	require.NoError(t, err)
	pos := f.Position(t, svctesting.Warehouse, bolt)

	doc := entities.DocumentRef{Type: entities.DocInventoryCount, ID: "IC-1"}
	err = f.Write(func(s *shared.Scope) error {
		_, err := f.Stock.AdjustDown(s, pos.ID, entities.Qty(3), doc)
		return err
	})
	assert.True(t, apperrors.IsConflict(err))

	err = f.Write(func(s *shared.Scope) error {
		_, err := f.Stock.AdjustDown(s, pos.ID, entities.Qty(2), doc)
		return err
	})
	require.NoError(t, err)
	assert.True(t, f.Position(t, svctesting.Warehouse, bolt).Quantity.Equal(entities.Qty(8)))
	f.AssertConservation(t, bolt)
}
