package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

func day(d int) *time.Time {
	t := time.Date(2026, 5, d, 12, 0, 0, 0, time.UTC)
	return &t
}

func TestProblemDetector_Detect(t *testing.T) {
	pd := NewProblemDetector()
	now := *day(10)

	testCases := []struct {
		name   string
		node   entities.TreeNode
		expect []entities.ProblemReason
	}{
		{
			name:   "waiting past order-by date",
			node:   entities.TreeNode{Purchased: true, PurchaseStatus: entities.PurchaseWaitingOrder, OrderByDate: day(9)},
			expect: []entities.ProblemReason{entities.ProblemOrderOverdue},
		},
		{
			name:   "order-by date is today",
			node:   entities.TreeNode{Purchased: true, PurchaseStatus: entities.PurchaseWaitingOrder, OrderByDate: day(10)},
			expect: nil,
		},
		{
			name: "ordered late and delivery delayed together",
			node: entities.TreeNode{Purchased: true, PurchaseStatus: entities.PurchaseInOrder,
				OrderByDate: day(3), OrderedAt: day(5), ExpectedDeliveryDate: day(8)},
			expect: []entities.ProblemReason{entities.ProblemOrderedLate, entities.ProblemDeliveryDelayed},
		},
		{
			name: "ordered in time, delivery pending",
			node: entities.TreeNode{Purchased: true, PurchaseStatus: entities.PurchaseInOrder,
				OrderByDate: day(5), OrderedAt: day(4), ExpectedDeliveryDate: day(12)},
			expect: nil,
		},
		{
			name: "terminal clears everything",
			node: entities.TreeNode{Purchased: true, PurchaseStatus: entities.PurchaseClosed,
				OrderByDate: day(3), OrderedAt: day(5), ExpectedDeliveryDate: day(8)},
			expect: nil,
		},
		{
			name:   "manufacturing overdue",
			node:   entities.TreeNode{ManufacturingStatus: entities.ManufacturingInProgress, PlannedEnd: day(9)},
			expect: []entities.ProblemReason{entities.ProblemManufacturingOverdue},
		},
		{
			name:   "manufacturing completed",
			node:   entities.TreeNode{ManufacturingStatus: entities.ManufacturingCompleted, PlannedEnd: day(9)},
			expect: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			node := tc.node
			assert.Equal(t, tc.expect, pd.Detect(&node, now))
			pd.Apply(&node, now)
			assert.Equal(t, len(tc.expect) > 0, node.Problem)
		})
	}
}

func TestProblemDetector_LastReasonHistory(t *testing.T) {
	pd := NewProblemDetector()
	now := *day(10)

	node := &entities.TreeNode{Purchased: true, PurchaseStatus: entities.PurchaseInOrder,
		OrderByDate: day(3), OrderedAt: day(5), ExpectedDeliveryDate: day(8)}

	pd.BeforePurchaseChange(node, entities.PurchaseWaitingOrder, now)
	assert.Empty(t, node.LastProblemReason, "non-terminal moves keep no history")

	pd.BeforePurchaseChange(node, entities.PurchaseClosed, now)
	node.PurchaseStatus = entities.PurchaseClosed
	pd.Apply(node, now)
	assert.False(t, node.Problem)
	assert.Equal(t, "ordered_late,delivery_delayed", node.LastProblemReason)

	resolved := &entities.TreeNode{Purchased: true, PurchaseStatus: entities.PurchaseWaitingOrder, OrderByDate: day(9)}
	resolved.PurchaseStatus = entities.PurchaseInOrder
	resolved.OrderedAt = day(12)
	pd.Apply(resolved, now)
	assert.Empty(t, resolved.LastProblemReason)
}
