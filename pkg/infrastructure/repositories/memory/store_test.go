package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/repositories"
)

func TestStore_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	err := store.WithinTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		return tx.Stock().SavePosition(&entities.StockPosition{ID: "P1", WarehouseID: "W1", NomenclatureID: "N1", Quantity: entities.Qty(100), ReservedQuantity: entities.Qty(0)})
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.WithinTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		pos, err := tx.Stock().LockPosition("P1")
		if err != nil {
			return err
		}
		pos.ReservedQuantity = entities.Qty(40)
		if err := tx.Stock().SavePosition(pos); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, store.Read(ctx, func(ctx context.Context, tx repositories.Tx) error {
		pos, err := tx.Stock().GetPosition("P1")
		require.NoError(t, err)
		assert.True(t, pos.ReservedQuantity.IsZero(), "rolled back write must not be visible")
		return nil
	}))
}

func TestStore_ReadIsReadOnly(t *testing.T) {
	store := NewStore(nil)
	err := store.Read(context.Background(), func(ctx context.Context, tx repositories.Tx) error {
		return tx.Projects().Save(&entities.Project{ID: "PR1"})
	})
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := NewStore(nil).WithinTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStore_ReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		node := &entities.TreeNode{ID: "N1", ProjectID: "PR1", ProblemReasons: []entities.ProblemReason{entities.ProblemOrderOverdue}}
		require.NoError(t, tx.Tree().Save(node))
		node.ProblemReasons[0] = entities.ProblemDeliveryDelayed

		got, err := tx.Tree().Get("N1")
		require.NoError(t, err)
		assert.Equal(t, entities.ProblemOrderOverdue, got.ProblemReasons[0])
		return nil
	}))
}

func TestStockRepository_BatchesFIFOAndInvariant(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		stock := tx.Stock()
		require.NoError(t, stock.SaveBatch(&entities.StockBatch{ID: "B-new", PositionID: "P1", ReceiptDate: base.AddDate(0, 1, 0)}))
		require.NoError(t, stock.SaveBatch(&entities.StockBatch{ID: "B-old", PositionID: "P1", ReceiptDate: base}))
		require.NoError(t, stock.SaveBatch(&entities.StockBatch{ID: "B-other", PositionID: "P2", ReceiptDate: base}))

		batches, err := stock.LockBatches("P1")
		require.NoError(t, err)
		require.Len(t, batches, 2)
		assert.Equal(t, "B-old", batches[0].ID)
		assert.Equal(t, "B-new", batches[1].ID)

		err = stock.SavePosition(&entities.StockPosition{ID: "P1", Quantity: entities.Qty(5), ReservedQuantity: entities.Qty(6)})
		assert.Error(t, err, "reserved above quantity must never be stored")
		return nil
	}))
}

func TestStockRepository_LedgerIsAppendOnly(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	doc := entities.DocumentRef{Type: entities.DocGoodsReceipt, ID: "GR1"}

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		stock := tx.Stock()
		require.NoError(t, stock.AddMovement(&entities.StockMovement{ID: "M2", PositionID: "P1", Document: doc, Quantity: entities.Qty(10)}))
		require.NoError(t, stock.AddMovement(&entities.StockMovement{ID: "M1", PositionID: "P1", Document: doc, Quantity: entities.Qty(-10)}))

		err := stock.AddMovement(&entities.StockMovement{ID: "M1", PositionID: "P1"})
		assert.True(t, apperrors.IsConflict(err))

		moves, err := stock.ListDocumentMovements(entities.DocGoodsReceipt, "GR1")
		require.NoError(t, err)
		require.Len(t, moves, 2)
		assert.Equal(t, "M2", moves[0].ID, "movements keep ledger order")
		return nil
	}))
}

func TestRequirementRepository_TombstonesFiltered(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		reqs := tx.Requirements()
		require.NoError(t, reqs.Save(&entities.Requirement{ID: "R1", ProjectID: "PR1", NodeID: "N1", NomenclatureID: "X", Status: entities.PurchaseWaitingOrder}))
		require.NoError(t, reqs.Save(&entities.Requirement{ID: "R2", ProjectID: "PR1", NodeID: "N2", NomenclatureID: "X", Status: entities.PurchaseWaitingOrder, Deleted: true}))

		live, err := reqs.ListByProject("PR1", false)
		require.NoError(t, err)
		assert.Len(t, live, 1)

		all, err := reqs.ListByProject("PR1", true)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		open, err := reqs.ListOpenByNomenclature("X")
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, "R1", open[0].ID)

		_, err = reqs.FindByNode("missing")
		assert.True(t, apperrors.IsNotFound(err))
		return nil
	}))
}

func TestSequenceRepository_Monotonic(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	var got []int64
	for i := 0; i < 3; i++ {
		require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
			v, err := tx.Sequences().Next("tree_node")
			got = append(got, v)
			return err
		}))
	}
	assert.Equal(t, []int64{1, 2, 3}, got)
}
