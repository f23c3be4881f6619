package services

import (
	"fmt"
	"strings"

	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

// StatusMachine validates transitions of the two status tracks of a tree node
type StatusMachine struct{}

// NewStatusMachine creates a new status machine
func NewStatusMachine() *StatusMachine {
	return &StatusMachine{}
}

var internalTransitions = map[entities.ManufacturingStatus][]entities.ManufacturingStatus{
	entities.ManufacturingNotStarted: {entities.ManufacturingInProgress},
	entities.ManufacturingInProgress: {entities.ManufacturingSuspended, entities.ManufacturingCompleted},
	entities.ManufacturingSuspended:  {entities.ManufacturingInProgress},
}

var contractorTransitions = map[entities.ManufacturingStatus][]entities.ManufacturingStatus{
	entities.ManufacturingNotStarted: {entities.ContractorSent},
	entities.ContractorSent:          {entities.ContractorInProgress},
	entities.ContractorInProgress:    {entities.ContractorSuspended, entities.ContractorManufactured},
	entities.ContractorSuspended:     {entities.ContractorInProgress},
	entities.ContractorManufactured:  {entities.ManufacturingCompleted},
}

// A contractor receipt may arrive before anyone marked the work as started
var systemContractorTransitions = map[entities.ManufacturingStatus][]entities.ManufacturingStatus{
	entities.ContractorSent: {entities.ContractorManufactured},
}

// System-driven purchase transitions. Users may only toggle closed and written_off.
var systemPurchaseTransitions = map[entities.PurchaseStatus][]entities.PurchaseStatus{
	entities.PurchaseWaitingOrder: {entities.PurchaseInOrder, entities.PurchaseClosed},
	entities.PurchaseInOrder:      {entities.PurchaseWaitingOrder, entities.PurchaseClosed},
	entities.PurchaseClosed:       {entities.PurchaseInOrder, entities.PurchaseWaitingOrder, entities.PurchaseWrittenOff},
	entities.PurchaseWrittenOff:   {entities.PurchaseClosed},
}

func allowed[S comparable](table map[S][]S, from, to S) bool {
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateManufacturing checks a manufacturing-track transition. children are
// the direct children of node and are only consulted when completing.
func (m *StatusMachine) ValidateManufacturing(node *entities.TreeNode, to entities.ManufacturingStatus, children []*entities.TreeNode) error {
	if node.Purchased {
		return apperrors.Validation("node %s is purchased and has no manufacturing status", node.ID)
	}
	from := node.ManufacturingStatus
	table := internalTransitions
	if node.IsContractorMade() {
		table = contractorTransitions
	} else if to.IsContractorStatus() {
		return apperrors.Validation("node %s is manufactured in-house, %s is a contractor status", node.ID, to)
	}
	if !allowed(table, from, to) {
		return apperrors.Validation("node %s: manufacturing transition %s -> %s is not allowed", node.ID, from, to)
	}
	if to == entities.ManufacturingCompleted {
		return m.CheckCompletion(node, children)
	}
	return nil
}

// ValidateSystemManufacturing checks a manufacturing-track change made as a
// side effect of a document. It allows the shortcuts documents take on top of
// the user transitions.
func (m *StatusMachine) ValidateSystemManufacturing(node *entities.TreeNode, to entities.ManufacturingStatus) error {
	if node.IsContractorMade() && allowed(systemContractorTransitions, node.ManufacturingStatus, to) {
		return nil
	}
	return m.ValidateManufacturing(node, to, nil)
}

// CheckCompletion rejects completing a node while any direct child is unfinished
func (m *StatusMachine) CheckCompletion(node *entities.TreeNode, children []*entities.TreeNode) error {
	var pending []string
	for _, child := range children {
		if child.IsFinished() {
			continue
		}
		status := string(child.ManufacturingStatus)
		if child.Purchased {
			status = string(child.PurchaseStatus)
		}
		pending = append(pending, fmt.Sprintf("%s (%s)", child.Name, status))
	}
	if len(pending) > 0 {
		return apperrors.Validation("node %s cannot be completed, unfinished children: %s", node.ID, strings.Join(pending, ", "))
	}
	return nil
}

// ValidateUserPurchase checks a purchase-track change requested by a user
func (m *StatusMachine) ValidateUserPurchase(node *entities.TreeNode, to entities.PurchaseStatus) error {
	if !node.Purchased {
		return apperrors.Validation("node %s is manufactured and has no purchase status", node.ID)
	}
	from := node.PurchaseStatus
	if to == entities.PurchaseWaitingOrder || to == entities.PurchaseInOrder {
		return apperrors.Validation("purchase status %s is system-controlled", to)
	}
	if !from.IsTerminal() {
		return apperrors.Validation("node %s is %s, purchase status changes only through orders and receipts", node.ID, from)
	}
	return nil
}

// ValidateSystemPurchase checks a purchase-track change made as a side effect of a document
func (m *StatusMachine) ValidateSystemPurchase(node *entities.TreeNode, to entities.PurchaseStatus) error {
	if !node.Purchased {
		return apperrors.Validation("node %s is manufactured and has no purchase status", node.ID)
	}
	if node.PurchaseStatus == to {
		return nil
	}
	if !allowed(systemPurchaseTransitions, node.PurchaseStatus, to) {
		return apperrors.Validation("node %s: purchase transition %s -> %s is not allowed", node.ID, node.PurchaseStatus, to)
	}
	return nil
}
