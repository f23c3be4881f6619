package shared

import (
	"github.com/shopspring/decimal"

	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

// AllocationCandidate is one requirement competing for a supplied quantity
type AllocationCandidate struct {
	RequirementID string
	NodeID        string
	// Open is what the requirement still needs
	Open entities.Quantity
}

// AllocationContext holds the share of a supplied quantity given to one candidate
type AllocationContext struct {
	Candidate    AllocationCandidate
	AllocatedQty entities.Quantity
	// Partial is set when the share covers only part of the open quantity
	Partial bool
}

// AllocationPlan is the outcome of distributing a quantity over candidates
type AllocationPlan struct {
	Allocations []AllocationContext
	Leftover    entities.Quantity
}

// Distribute hands out total to candidates in the order given, earliest need
// first. Every candidate but the last served is covered fully; the last may
// receive a partial share. Candidates with nothing open are skipped.
func Distribute(total entities.Quantity, candidates []AllocationCandidate) AllocationPlan {
	remaining := total
	plan := AllocationPlan{}
	for _, c := range candidates {
		if !remaining.IsPositive() {
			break
		}
		if !c.Open.IsPositive() {
			continue
		}
		share := entities.MinQty(remaining, c.Open)
		plan.Allocations = append(plan.Allocations, AllocationContext{
			Candidate:    c,
			AllocatedQty: share,
			Partial:      share.LessThan(c.Open),
		})
		remaining = remaining.Sub(share)
	}
	plan.Leftover = entities.NonNegative(remaining)
	return plan
}

// Allocated totals the shares of the plan
func (p AllocationPlan) Allocated() entities.Quantity {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.AllocatedQty)
	}
	return total
}
