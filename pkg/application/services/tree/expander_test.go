package tree_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
	weld    = "WELDMENT"
)

var due = svctesting.Day0.AddDate(0, 0, 30)

// setup builds FRAME -> {4 x BOLT, 2 x BRACKET -> 3 x PLATE}, with
// WELDMENT as a contractor-made component outside the template
func setup(t *testing.T) *svctesting.Fixture {
	f := svctesting.NewFixture(t)
	f.AddItem(t, frame, svctesting.CatAssembly, svctesting.WithManufacturingDays(7))
	f.AddItem(t, bracket, svctesting.CatComponent, svctesting.WithManufacturingDays(3))
	f.AddItem(t, weld, svctesting.CatComponent, svctesting.WithContractor(svctesting.Contractor))
	f.AddPurchased(t, bolt)
	f.AddPurchased(t, plate)
	f.AddTemplate(t, frame, svctesting.Child{ID: bolt, Qty: 4}, svctesting.Child{ID: bracket, Qty: 2})
	f.AddTemplate(t, bracket, svctesting.Child{ID: plate, Qty: 3})
	return f
}

func assertQty(t *testing.T, want int64, got entities.Quantity) {
	t.Helper()
	assert.True(t, got.Equal(entities.Qty(want)), "want %d, got %s", want, got)
}

func TestCreateProject_ExpandsTemplatesRecursively(t *testing.T) {
	f := setup(t)
	project, nodes := f.Project(t, frame, 2, due)
	require.Len(t, nodes, 4)

	root := nodes[0]
	assert.Equal(t, project.RootNodeID, root.ID)
	assert.True(t, root.IsRoot())
	assert.Equal(t, entities.ManufacturingNotStarted, root.ManufacturingStatus)
	assert.Equal(t, entities.ProjectPlanning, project.Status)

	boltNode := svctesting.ByItem(t, nodes, bolt)
	bracketNode := svctesting.ByItem(t, nodes, bracket)
	plateNode := svctesting.ByItem(t, nodes, plate)
	assertQty(t, 8, boltNode.Quantity)
	assertQty(t, 4, bracketNode.Quantity)
	assertQty(t, 12, plateNode.Quantity)
	assert.Equal(t, root.ID, boltNode.ParentID)
	assert.Equal(t, bracketNode.ID, plateNode.ParentID)

	assert.True(t, boltNode.Purchased)
	assert.Equal(t, entities.PurchaseWaitingOrder, boltNode.PurchaseStatus)
	assert.Equal(t, entities.SupplierRef(svctesting.Supplier), boltNode.Source)

	// children are numbered in template order, below their parent
	assert.Less(t, root.DisplayNumber, boltNode.DisplayNumber)
	assert.Less(t, boltNode.DisplayNumber, bracketNode.DisplayNumber)
	assert.Less(t, bracketNode.DisplayNumber, plateNode.DisplayNumber)
}

func TestCreateProject_PlansDatesBackwardsFromDueDate(t *testing.T) {
	f := setup(t)
	_, nodes := f.Project(t, frame, 1, due)
	root := nodes[0]
	bracketNode := svctesting.ByItem(t, nodes, bracket)
	plateNode := svctesting.ByItem(t, nodes, plate)
	boltNode := svctesting.ByItem(t, nodes, bolt)

	assert.Equal(t, due, *root.PlannedEnd)
	assert.Equal(t, due.AddDate(0, 0, -7), *root.PlannedStart)
	assert.Equal(t, *root.PlannedStart, *bracketNode.PlannedEnd)
	assert.Equal(t, due.AddDate(0, 0, -10), *bracketNode.PlannedStart)
	assert.Equal(t, *root.PlannedStart, *boltNode.RequiredDate)
	// supplier lead time is ten days
	assert.Equal(t, due.AddDate(0, 0, -17), *boltNode.OrderByDate)
	assert.Equal(t, due.AddDate(0, 0, -20), *plateNode.OrderByDate)
}

func countProjects(t *testing.T, f *svctesting.Fixture) int {
	var n int
	f.Read(t, func(s *shared.Scope) error {
		projects, err := s.Tx.Projects().List()
		n = len(projects)
		return err
	})
	return n
}

func TestCreateProject_UnknownChildAbortsEverything(t *testing.T) {
	f := setup(t)
	f.AddItem(t, "BROKEN", svctesting.CatAssembly)
	f.AddTemplate(t, "BROKEN", svctesting.Child{ID: bolt, Qty: 1}, svctesting.Child{ID: "GHOST", Qty: 1})

	err := f.Write(func(s *shared.Scope) error {
		_, _, err := f.Tree.CreateProject(s, "broken", "BROKEN", entities.Qty(1), &due)
		return err
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Zero(t, countProjects(t, f))
}

func TestCreateProject_RejectsBOMCycle(t *testing.T) {
	f := setup(t)
	f.AddItem(t, "LOOP-A", svctesting.CatAssembly)
	f.AddItem(t, "LOOP-B", svctesting.CatAssembly)
	f.AddTemplate(t, "LOOP-A", svctesting.Child{ID: "LOOP-B", Qty: 1})
	f.AddTemplate(t, "LOOP-B", svctesting.Child{ID: "LOOP-A", Qty: 1})

	err := f.Write(func(s *shared.Scope) error {
		_, _, err := f.Tree.CreateProject(s, "loop", "LOOP-A", entities.Qty(1), &due)
		return err
	})
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "LOOP-A -> LOOP-B -> LOOP-A")
	assert.Zero(t, countProjects(t, f))
}

func TestCreateProject_RejectsPurchasedRoot(t *testing.T) {
	f := setup(t)
	err := f.Write(func(s *shared.Scope) error {
		_, _, err := f.Tree.CreateProject(s, "bolts", bolt, entities.Qty(1), &due)
		return err
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestExpandProject_OnlyOnce(t *testing.T) {
	f := setup(t)
	project, _ := f.Project(t, frame, 1, due)
	err := f.Write(func(s *shared.Scope) error {
		_, err := f.Tree.ExpandProject(s, project.ID, frame, entities.Qty(1))
		return err
	})
	assert.True(t, apperrors.IsConflict(err))
}

func TestExpand_ManufacturedItemWithoutTemplateIsLeaf(t *testing.T) {
	f := setup(t)
	f.AddItem(t, "PLAIN", svctesting.CatAssembly)
	_, nodes := f.Project(t, "PLAIN", 1, due)
	require.Len(t, nodes, 1)
	assert.False(t, nodes[0].Purchased)
}

func addChild(f *svctesting.Fixture, parentID, nomenclatureID string, qty int64) (*entities.TreeNode, []*entities.TreeNode, error) {
	var node *entities.TreeNode
	var created []*entities.TreeNode
	err := f.Runner.Write(context.Background(), func(_ context.Context, s *shared.Scope) error {
		var err error
		node, created, err = f.Tree.AddChild(s, parentID, nomenclatureID, entities.Qty(qty))
		return err
	})
	return node, created, err
}

func TestAddChild_ExpandsUnderParent(t *testing.T) {
	f := setup(t)
	_, nodes := f.Project(t, frame, 1, due)
	root := nodes[0]

	node, created, err := addChild(f, root.ID, bracket, 1)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, root.ID, node.ParentID)
	assert.Equal(t, *root.PlannedStart, *node.PlannedEnd)
	assertQty(t, 3, svctesting.ByItem(t, created, plate).Quantity)
}

func TestAddChild_EnforcesCategoryRules(t *testing.T) {
	f := setup(t)
	_, nodes := f.Project(t, frame, 1, due)
	bracketNode := svctesting.ByItem(t, nodes, bracket)
	boltNode := svctesting.ByItem(t, nodes, bolt)

	_, _, err := addChild(f, bracketNode.ID, frame, 1)
	assert.True(t, apperrors.IsValidation(err), "components take purchased children only")

	_, _, err = addChild(f, boltNode.ID, plate, 1)
	assert.True(t, apperrors.IsValidation(err), "purchased nodes have no children")

	_, _, err = addChild(f, bracketNode.ID, bolt, 2)
	assert.NoError(t, err)
}
