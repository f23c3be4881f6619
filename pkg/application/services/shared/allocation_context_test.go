package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

func TestDistribute_ExactAndPartial(t *testing.T) {
	plan := Distribute(entities.Qty(15), []AllocationCandidate{
		{RequirementID: "R1", Open: entities.Qty(10)},
		{RequirementID: "R2", Open: entities.Qty(10)},
	})

	require.Len(t, plan.Allocations, 2)
	assert.True(t, plan.Allocations[0].AllocatedQty.Equal(entities.Qty(10)))
	assert.False(t, plan.Allocations[0].Partial)
	assert.True(t, plan.Allocations[1].AllocatedQty.Equal(entities.Qty(5)))
	assert.True(t, plan.Allocations[1].Partial)
	assert.True(t, plan.Leftover.IsZero())
	assert.True(t, plan.Allocated().Equal(entities.Qty(15)))
}

func TestDistribute_LeftoverAndSkippedCandidates(t *testing.T) {
	plan := Distribute(entities.Qty(12), []AllocationCandidate{
		{RequirementID: "R0", Open: entities.Qty(0)},
		{RequirementID: "R1", Open: entities.Qty(4)},
	})

	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, "R1", plan.Allocations[0].Candidate.RequirementID)
	assert.True(t, plan.Allocations[0].AllocatedQty.Equal(entities.Qty(4)))
	assert.True(t, plan.Leftover.Equal(entities.Qty(8)))
}

func TestDistribute_NothingToHandOut(t *testing.T) {
	plan := Distribute(entities.Qty(0), []AllocationCandidate{{RequirementID: "R1", Open: entities.Qty(3)}})
	assert.Empty(t, plan.Allocations)
	assert.True(t, plan.Leftover.IsZero())
}

func TestSortByPriority(t *testing.T) {
	early := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	late := early.AddDate(0, 0, 7)

	entries := []PriorityEntry{
		{Requirement: &entities.Requirement{ID: "undated"}, ProjectName: "A", NodeName: "a"},
		{Requirement: &entities.Requirement{ID: "late", OrderByDate: &late}, ProjectName: "A", NodeName: "a"},
		{Requirement: &entities.Requirement{ID: "early-b", OrderByDate: &early}, ProjectName: "B", NodeName: "a"},
		{Requirement: &entities.Requirement{ID: "early-a2", OrderByDate: &early}, ProjectName: "A", NodeName: "z"},
		{Requirement: &entities.Requirement{ID: "early-a1", OrderByDate: &early}, ProjectName: "A", NodeName: "b"},
	}
	SortByPriority(entries)

	var ids []string
	for _, e := range entries {
		ids = append(ids, e.Requirement.ID)
	}
	assert.Equal(t, []string{"early-a1", "early-a2", "early-b", "late", "undated"}, ids)
}

func TestSortByPriority_IDBreaksTies(t *testing.T) {
	entries := []PriorityEntry{
		{Requirement: &entities.Requirement{ID: "b"}},
		{Requirement: &entities.Requirement{ID: "a"}},
	}
	SortByPriority(entries)
	assert.Equal(t, "a", entries[0].Requirement.ID)
}
