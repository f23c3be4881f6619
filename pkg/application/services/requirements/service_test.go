package requirements_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rushen88/PDM-sub000/pkg/application/services/requirements"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	svctesting "github.com/Rushen88/PDM-sub000/pkg/application/services/testing"
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

const (
	frame   = "FRAME"
	bracket = "BRACKET"
	bolt    = "BOLT"
	plate   = "PLATE"
)

var due = svctesting.Day0.AddDate(0, 0, 30)

// setup builds FRAME -> {50 x BOLT, BRACKET -> 2 x PLATE}
func setup(t *testing.T) *svctesting.Fixture {
	f := svctesting.NewFixture(t)
	f.AddItem(t, frame, svctesting.CatAssembly)
	f.AddItem(t, bracket, svctesting.CatComponent, svctesting.WithManufacturingDays(5))
	f.AddPurchased(t, bolt)
	f.AddPurchased(t, plate)
	f.AddTemplate(t, frame, svctesting.Child{ID: bolt, Qty: 50}, svctesting.Child{ID: bracket, Qty: 1})
	f.AddTemplate(t, bracket, svctesting.Child{ID: plate, Qty: 2})
	return f
}

func assertQty(t *testing.T, want int64, got entities.Quantity, field string) {
	t.Helper()
	assert.True(t, got.Equal(entities.Qty(want)), "%s: want %d, got %s", field, want, got)
}

func recompute(t *testing.T, f *svctesting.Fixture, nodeID string) *entities.Requirement {
	t.Helper()
	var req *entities.Requirement
	f.Read(t, func(s *shared.Scope) error {
		var err error
		req, err = f.Requirements.Recompute(s, nodeID)
		return err
	})
	return req
}

func TestSync_CreatesRowsForPurchasedNodesOnly(t *testing.T) {
	f := setup(t)
	project, nodes := f.Project(t, frame, 1, due)
	require.Len(t, nodes, 4)

	first := f.Sync(t, project.ID)
	assert.Len(t, first.Created, 2)
	assert.Empty(t, first.Updated)

	second := f.Sync(t, project.ID)
	assert.Empty(t, second.Created)
	assert.ElementsMatch(t, first.Created, second.Updated)

	req := f.Requirement(t, svctesting.ByItem(t, nodes, plate).ID)
	assertQty(t, 2, req.TotalRequired, "total_required")
	assert.Equal(t, entities.PurchaseWaitingOrder, req.Status)
}

func TestRecompute_ToOrderCoversFreeStockAndSafetyStock(t *testing.T) {
	f := setup(t)
	f.AddStock(t, svctesting.Warehouse, bolt, 30, svctesting.Day0)
	_, nodes := f.Project(t, frame, 1, due)
	boltNode := svctesting.ByItem(t, nodes, bolt)

	req := recompute(t, f, boltNode.ID)
	assertQty(t, 50, req.TotalRequired, "total_required")
	assertQty(t, 30, req.TotalAvailable, "total_available")
	assertQty(t, 0, req.TotalReserved, "total_reserved")
	assertQty(t, 20, req.ToOrder, "to_order")

	f.AddPurchased(t, bolt, svctesting.WithSafetyStock(5))
	req = recompute(t, f, boltNode.ID)
	assertQty(t, 25, req.ToOrder, "to_order with safety stock")
}

func TestRecompute_ItemSafetyStockOverridesDefault(t *testing.T) {
	f := setup(t)
	f.Requirements = requirements.NewService(requirements.Options{DefaultSafetyStock: entities.Qty(3)}, nil)
	_, nodes := f.Project(t, frame, 1, due)
	boltNode := svctesting.ByItem(t, nodes, bolt)

	assertQty(t, 53, recompute(t, f, boltNode.ID).ToOrder, "to_order with default safety stock")

	f.AddPurchased(t, bolt, svctesting.WithSafetyStock(0))
	assertQty(t, 50, recompute(t, f, boltNode.ID).ToOrder, "to_order with zero item safety stock")
}

func TestRecompute_IsIdempotentAndWritesNothing(t *testing.T) {
	f := setup(t)
	f.AddStock(t, svctesting.Warehouse, bolt, 12, svctesting.Day0)
	_, nodes := f.Project(t, frame, 1, due)
	boltNode := svctesting.ByItem(t, nodes, bolt)

	first := recompute(t, f, boltNode.ID)
	second := recompute(t, f, boltNode.ID)
	for _, pair := range [][2]entities.Quantity{
		{first.ToOrder, second.ToOrder},
		{first.TotalAvailable, second.TotalAvailable},
		{first.TotalReserved, second.TotalReserved},
		{first.TotalInOrder, second.TotalInOrder},
	} {
		assert.True(t, pair[0].Equal(pair[1]))
	}
	f.Read(t, func(s *shared.Scope) error {
		_, err := s.Tx.Requirements().FindByNode(boltNode.ID)
		assert.True(t, apperrors.IsNotFound(err), "recompute must not create a row")
		return nil
	})
}

func TestRecompute_OwnReservationCountsOnceOthersReduceFreeStock(t *testing.T) {
	f := setup(t)
	f.AddStock(t, svctesting.Warehouse, bolt, 30, svctesting.Day0)
	_, nodes := f.Project(t, frame, 1, due)
	_, others := f.Project(t, frame, 1, due)
	mine := svctesting.ByItem(t, nodes, bolt)
	theirs := svctesting.ByItem(t, others, bolt)

	require.NoError(t, f.Write(func(s *shared.Scope) error {
		_, err := f.Tree.Reserve(s, mine.ID, entities.Qty(10))
		return err
	}))
	req := recompute(t, f, mine.ID)
	assertQty(t, 10, req.ReservedForNode, "reserved_for_node")
	assertQty(t, 20, req.ToOrder, "to_order")

	require.NoError(t, f.Write(func(s *shared.Scope) error {
		_, err := f.Tree.Reserve(s, theirs.ID, entities.Qty(15))
		return err
	}))
	req = recompute(t, f, mine.ID)
	assertQty(t, 15, req.TotalReserved, "total_reserved")
	assertQty(t, 35, req.ToOrder, "to_order")
	f.AssertConservation(t, bolt)
}

func TestRecompute_RejectsManufacturedNode(t *testing.T) {
	f := setup(t)
	_, nodes := f.Project(t, frame, 1, due)
	err := f.Runner.Read(context.Background(), func(_ context.Context, s *shared.Scope) error {
		_, err := f.Requirements.Recompute(s, svctesting.ByItem(t, nodes, bracket).ID)
		return err
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestSync_RespectsUserDeleteUntilRestored(t *testing.T) {
	f := setup(t)
	project, nodes := f.Project(t, frame, 1, due)
	f.Sync(t, project.ID)
	boltNode := svctesting.ByItem(t, nodes, bolt)
	row := f.Requirement(t, boltNode.ID)

	require.NoError(t, f.Write(func(s *shared.Scope) error {
		_, err := f.Requirements.Delete(s, row.ID)
		return err
	}))
	result := f.Sync(t, project.ID)
	assert.Empty(t, result.Created)
	assert.True(t, f.Requirement(t, boltNode.ID).Deleted)

	require.NoError(t, f.Write(func(s *shared.Scope) error {
		restored, err := f.Requirements.Restore(s, row.ID)
		if err == nil {
			assert.False(t, restored.Deleted)
		}
		return err
	}))
	assert.False(t, f.Requirement(t, boltNode.ID).Deleted)

	err := f.Write(func(s *shared.Scope) error {
		_, err := f.Requirements.Restore(s, row.ID)
		return err
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestSync_TombstonesRowsOfDeletedNodes(t *testing.T) {
	f := setup(t)
	project, nodes := f.Project(t, frame, 1, due)
	f.Sync(t, project.ID)
	plateNode := svctesting.ByItem(t, nodes, plate)
	row := f.Requirement(t, plateNode.ID)

	require.NoError(t, f.Write(func(s *shared.Scope) error {
		return s.Tx.Tree().Delete(plateNode.ID)
	}))
	result := f.Sync(t, project.ID)
	assert.Equal(t, []string{row.ID}, result.Deleted)

	err := f.Write(func(s *shared.Scope) error {
		_, err := f.Requirements.Restore(s, row.ID)
		return err
	})
	assert.True(t, apperrors.IsConflict(err))
}

func TestList_EarliestOrderByDateFirst(t *testing.T) {
	f := setup(t)
	project, nodes := f.Project(t, frame, 1, due)
	f.Sync(t, project.ID)

	var reqs []*entities.Requirement
	f.Read(t, func(s *shared.Scope) error {
		var err error
		reqs, err = f.Requirements.List(s, project.ID)
		return err
	})
	require.Len(t, reqs, 2)
	// PLATE is needed at the bracket's planned start, five days before the bolts
	assert.Equal(t, svctesting.ByItem(t, nodes, plate).ID, reqs[0].NodeID)
	assert.Equal(t, due.AddDate(0, 0, -15), *reqs[0].OrderByDate)
	assert.Equal(t, due.AddDate(0, 0, -10), *reqs[1].OrderByDate)
}

func TestSplit_QuantitiesAddUp(t *testing.T) {
	f := setup(t)
	project, nodes := f.Project(t, frame, 1, due)
	f.Sync(t, project.ID)
	boltNode := svctesting.ByItem(t, nodes, bolt)

	var half *entities.TreeNode
	var halfReq *entities.Requirement
	require.NoError(t, f.Write(func(s *shared.Scope) error {
		node, err := s.Tx.Tree().Get(boltNode.ID)
		if err != nil {
			return err
		}
		req, err := s.Tx.Requirements().FindByNode(node.ID)
		if err != nil {
			return err
		}
		halfReq, half, err = f.Requirements.Split(s, req, node, entities.Qty(18))
		return err
	}))

	original := f.GetNode(t, boltNode.ID)
	assertQty(t, 32, original.Quantity, "remaining")
	assertQty(t, 18, half.Quantity, "fulfilled")
	assert.True(t, original.Quantity.Add(half.Quantity).Equal(boltNode.Quantity))
	assert.Equal(t, boltNode.ID, half.SplitFromID)
	assert.Equal(t, boltNode.ParentID, half.ParentID)
	assert.Greater(t, half.DisplayNumber, boltNode.DisplayNumber)

	assertQty(t, 32, f.Requirement(t, boltNode.ID).ToOrder, "original to_order")
	assertQty(t, 18, halfReq.ToOrder, "half to_order")
	assert.Equal(t, half.ID, f.Requirement(t, half.ID).NodeID)
}

func TestSplit_RejectsWholeQuantity(t *testing.T) {
	f := setup(t)
	project, nodes := f.Project(t, frame, 1, due)
	f.Sync(t, project.ID)
	boltNode := svctesting.ByItem(t, nodes, bolt)

	err := f.Write(func(s *shared.Scope) error {
		req, err := s.Tx.Requirements().FindByNode(boltNode.ID)
		if err != nil {
			return err
		}
		_, _, err = f.Requirements.Split(s, req, boltNode, entities.Qty(50))
		return err
	})
	assert.True(t, apperrors.IsValidation(err))
	assertQty(t, 50, f.GetNode(t, boltNode.ID).Quantity, "unchanged quantity")
}
