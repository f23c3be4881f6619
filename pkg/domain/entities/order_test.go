package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseOrder_Validation(t *testing.T) {
	lines := []PurchaseOrderLine{{ID: "L1", NomenclatureID: "BOLT", Quantity: Qty(15)}}

	po, err := NewPurchaseOrder("PO1", "PO-0001", "S1", lines)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, po.Status)
	assert.True(t, po.IsOpen())

	line, ok := po.Line("L1")
	require.True(t, ok)
	line.Allocations = append(line.Allocations,
		OrderAllocation{RequirementID: "R1", Quantity: Qty(10)},
		OrderAllocation{RequirementID: "R2", Quantity: Qty(5)},
	)
	assert.True(t, po.Lines[0].Allocated().Equal(Qty(15)))

	clone := po.Clone()
	clone.Lines[0].Allocations[0].Quantity = Qty(1)
	assert.True(t, po.Lines[0].Allocations[0].Quantity.Equal(Qty(10)))

	testCases := []struct {
		name        string
		supplier    string
		lines       []PurchaseOrderLine
		expectError string
	}{
		{"no supplier", "", lines, "purchase order PO-X has no supplier"},
		{"no lines", "S1", nil, "purchase order PO-X has no lines"},
		{"no nomenclature", "S1", []PurchaseOrderLine{{ID: "L1", Quantity: Qty(1)}}, "purchase order PO-X: line L1 has no nomenclature"},
		{"zero quantity", "S1", []PurchaseOrderLine{{ID: "L1", NomenclatureID: "N", Quantity: Qty(0)}}, "purchase order PO-X: line L1 quantity must be positive, got 0"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPurchaseOrder("X", "PO-X", tc.supplier, tc.lines)
			require.Error(t, err)
			assert.Equal(t, tc.expectError, err.Error())
		})
	}
}

func TestPurchaseOrder_IsOpen(t *testing.T) {
	testCases := []struct {
		status  DocumentStatus
		deleted bool
		open    bool
	}{
		{StatusDraft, false, true},
		{StatusConfirmed, false, true},
		{StatusPartiallyReceived, false, true},
		{StatusReceived, false, false},
		{StatusCancelled, false, false},
		{StatusDraft, true, false},
	}
	for _, tc := range testCases {
		t.Run(string(tc.status), func(t *testing.T) {
			po := &PurchaseOrder{Status: tc.status, Deleted: tc.deleted}
			assert.Equal(t, tc.open, po.IsOpen())
		})
	}
}

func TestTreeNode_Predicates(t *testing.T) {
	node := &TreeNode{ID: "N1", Purchased: true, PurchaseStatus: PurchaseInOrder}
	assert.True(t, node.IsRoot())
	assert.False(t, node.IsFinished())
	node.PurchaseStatus = PurchaseWrittenOff
	assert.True(t, node.IsFinished())

	made := &TreeNode{ID: "N2", ParentID: "N1", Source: ContractorRef("C1")}
	assert.True(t, made.IsContractorMade())
	assert.False(t, made.IsRoot())
	made.ManufacturingStatus = ContractorManufactured
	assert.False(t, made.IsFinished(), "contractor products still need completion")
	assert.True(t, made.ManufacturingStatus.IsContractorStatus())

	req := &Requirement{Status: PurchaseWaitingOrder}
	assert.True(t, req.IsOpen())
	req.PurchaseOrderID = "PO1"
	assert.False(t, req.IsOpen())
}
