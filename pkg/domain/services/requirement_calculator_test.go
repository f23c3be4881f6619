package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

func TestCalculateRequirement(t *testing.T) {
	q := entities.Qty

	testCases := []struct {
		name    string
		in      RequirementInputs
		toOrder int64
		free    int64
	}{
		{
			name:    "shortage against free stock",
			in:      RequirementInputs{Required: q(50), OnHand: q(30), ReservedByOthers: q(0), ReservedForNode: q(0), InOrder: q(0), SafetyStock: q(0)},
			toOrder: 20,
			free:    30,
		},
		{
			name:    "own reservation counted once",
			in:      RequirementInputs{Required: q(50), OnHand: q(50), ReservedByOthers: q(0), ReservedForNode: q(20), InOrder: q(0), SafetyStock: q(0)},
			toOrder: 0,
			free:    30,
		},
		{
			name:    "whole on-hand reserved for the node",
			in:      RequirementInputs{Required: q(50), OnHand: q(30), ReservedByOthers: q(0), ReservedForNode: q(30), InOrder: q(0), SafetyStock: q(0)},
			toOrder: 20,
			free:    0,
		},
		{
			name:    "other nodes hold the stock",
			in:      RequirementInputs{Required: q(10), OnHand: q(10), ReservedByOthers: q(10), ReservedForNode: q(0), InOrder: q(0), SafetyStock: q(0)},
			toOrder: 10,
			free:    0,
		},
		{
			name:    "over-reserved never yields negative free stock",
			in:      RequirementInputs{Required: q(5), OnHand: q(3), ReservedByOthers: q(8), ReservedForNode: q(0), InOrder: q(0), SafetyStock: q(0)},
			toOrder: 5,
			free:    0,
		},
		{
			name:    "safety stock added",
			in:      RequirementInputs{Required: q(10), OnHand: q(4), ReservedByOthers: q(0), ReservedForNode: q(0), InOrder: q(0), SafetyStock: q(2)},
			toOrder: 8,
			free:    4,
		},
		{
			name:    "surplus",
			in:      RequirementInputs{Required: q(10), OnHand: q(40), ReservedByOthers: q(5), ReservedForNode: q(0), InOrder: q(3), SafetyStock: q(0)},
			toOrder: 0,
			free:    35,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := CalculateRequirement(tc.in)
			assert.True(t, f.ToOrder.Equal(q(tc.toOrder)), "to_order: got %s", f.ToOrder)
			assert.True(t, f.FreeStock.Equal(q(tc.free)), "free: got %s", f.FreeStock)
			assert.True(t, f.TotalAvailable.Equal(tc.in.OnHand))
			assert.True(t, f.TotalReserved.Equal(tc.in.ReservedByOthers))

			again := CalculateRequirement(tc.in)
			assert.Equal(t, f, again)
		})
	}
}

func TestApplyFigures(t *testing.T) {
	req := &entities.Requirement{}
	f := CalculateRequirement(RequirementInputs{
		Required: entities.Qty(50), OnHand: entities.Qty(30),
		ReservedByOthers: entities.Qty(0), ReservedForNode: entities.Qty(0),
		InOrder: entities.Qty(20), SafetyStock: entities.Qty(0),
	})
	ApplyFigures(req, entities.Qty(50), entities.Qty(0), f)

	assert.True(t, req.ToOrder.Equal(entities.Qty(20)))
	assert.True(t, req.TotalInOrder.Equal(entities.Qty(20)))
}
