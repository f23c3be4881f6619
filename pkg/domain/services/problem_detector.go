package services

import (
	"strings"
	"time"

	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

// ProblemDetector derives lateness problems of tree nodes from their dates.
// Each condition is evaluated on its own; one reason never masks another.
type ProblemDetector struct{}

// NewProblemDetector creates a new problem detector
func NewProblemDetector() *ProblemDetector {
	return &ProblemDetector{}
}

// Detect returns the problem reasons of node as of now
func (d *ProblemDetector) Detect(node *entities.TreeNode, now time.Time) []entities.ProblemReason {
	var reasons []entities.ProblemReason
	if node.Purchased {
		if node.PurchaseStatus.IsTerminal() {
			return nil
		}
		if node.PurchaseStatus == entities.PurchaseWaitingOrder && dayPassed(now, node.OrderByDate) {
			reasons = append(reasons, entities.ProblemOrderOverdue)
		}
		if node.OrderedAt != nil && node.OrderByDate != nil && dayPassed(*node.OrderedAt, node.OrderByDate) {
			reasons = append(reasons, entities.ProblemOrderedLate)
		}
		if dayPassed(now, node.ExpectedDeliveryDate) {
			reasons = append(reasons, entities.ProblemDeliveryDelayed)
		}
		return reasons
	}
	if node.ManufacturingStatus != entities.ManufacturingCompleted && dayPassed(now, node.PlannedEnd) {
		reasons = append(reasons, entities.ProblemManufacturingOverdue)
	}
	return reasons
}

// Apply refreshes the problem flag and reasons of node
func (d *ProblemDetector) Apply(node *entities.TreeNode, now time.Time) {
	node.ProblemReasons = d.Detect(node, now)
	node.Problem = len(node.ProblemReasons) > 0
}

// BeforePurchaseChange keeps the current reasons as history when node moves
// into closed or written_off while flagged. Call it before changing the status.
func (d *ProblemDetector) BeforePurchaseChange(node *entities.TreeNode, to entities.PurchaseStatus, now time.Time) {
	if !to.IsTerminal() || node.PurchaseStatus.IsTerminal() {
		return
	}
	if reasons := d.Detect(node, now); len(reasons) > 0 {
		node.LastProblemReason = JoinReasons(reasons)
	}
}

// JoinReasons renders reasons as a comma separated list
func JoinReasons(reasons []entities.ProblemReason) string {
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

// dayPassed reports whether the calendar day of now is after the day of deadline
func dayPassed(now time.Time, deadline *time.Time) bool {
	if deadline == nil {
		return false
	}
	return truncateDay(now).After(truncateDay(*deadline))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
