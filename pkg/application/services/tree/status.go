package tree

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Rushen88/PDM-sub000/pkg/application/dto"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/events"
)

// SetStatus applies a user status change on one track of a node. Completing
// the root completes the project in the same transaction.
func (s *Service) SetStatus(sc *shared.Scope, nodeID string, track entities.Track, status string) (*dto.StatusChange, error) {
	node, err := sc.Tx.Tree().Get(nodeID)
	if err != nil {
		return nil, err
	}
	switch track {
	case entities.TrackManufacturing:
		return s.setManufacturing(sc, node, entities.ManufacturingStatus(status))
	case entities.TrackPurchase:
		return s.setPurchase(sc, node, entities.PurchaseStatus(status))
	default:
		return nil, apperrors.Validation("unknown status track %q", track)
	}
}

func (s *Service) setManufacturing(sc *shared.Scope, node *entities.TreeNode, to entities.ManufacturingStatus) (*dto.StatusChange, error) {
	if !node.Purchased && node.ManufacturingStatus == to {
		return &dto.StatusChange{Node: node}, nil
	}
	children, err := sc.Tx.Tree().Children(node.ID)
	if err != nil {
		return nil, err
	}
	if err := s.machine.ValidateManufacturing(node, to, children); err != nil {
		return nil, err
	}
	from := node.ManufacturingStatus
	node.ManufacturingStatus = to
	if node.ActualStart == nil && to != entities.ManufacturingNotStarted {
		node.ActualStart = entities.DatePtr(sc.Now)
	}
	if to == entities.ManufacturingCompleted {
		node.ActualEnd = entities.DatePtr(sc.Now)
	}
	node.UpdatedAt = sc.Now
	s.detector.Apply(node, sc.Now)
	if err := sc.Tx.Tree().Save(node); err != nil {
		return nil, err
	}
	sc.Record(events.NodeStatusChangedEvent, node.ID, events.NodeStatusChanged{
		NodeID: node.ID, Track: entities.TrackManufacturing, From: string(from), To: string(to),
	})

	change := &dto.StatusChange{Node: node}
	project, err := sc.Tx.Projects().Get(node.ProjectID)
	if err != nil {
		return nil, err
	}
	switch {
	case to == entities.ManufacturingCompleted && node.IsRoot():
		project.Status = entities.ProjectCompleted
		project.CompletedAt = entities.DatePtr(sc.Now)
		change.ProjectCompleted = true
		sc.Record(events.ProjectCompletedEvent, project.ID, events.ProjectCompleted{ProjectID: project.ID})
	case project.Status == entities.ProjectPlanning:
		project.Status = entities.ProjectInProgress
	default:
		return change, nil
	}
	if err := sc.Tx.Projects().Save(project); err != nil {
		return nil, err
	}
	if change.ProjectCompleted {
		s.logger.Info("project completed", zap.String("project_id", project.ID))
	}
	return change, nil
}

func (s *Service) setPurchase(sc *shared.Scope, node *entities.TreeNode, to entities.PurchaseStatus) (*dto.StatusChange, error) {
	if err := s.machine.ValidateUserPurchase(node, to); err != nil {
		return nil, err
	}
	if node.PurchaseStatus == to {
		return &dto.StatusChange{Node: node}, nil
	}
	if err := s.requirements.SetPurchaseStatus(sc, node, to); err != nil {
		return nil, err
	}
	return &dto.StatusChange{Node: node}, nil
}

// UpdatePlan changes the planned window of a manufactured node and pushes
// the new dates down to every node below it
func (s *Service) UpdatePlan(sc *shared.Scope, nodeID string, plannedStart, plannedEnd *time.Time) (*entities.TreeNode, error) {
	node, err := sc.Tx.Tree().Get(nodeID)
	if err != nil {
		return nil, err
	}
	if node.Purchased {
		return nil, apperrors.Validation("node %s is purchased; its dates follow its parent", node.ID)
	}
	if plannedStart != nil && plannedEnd != nil && plannedEnd.Before(*plannedStart) {
		return nil, apperrors.Validation("planned end %s is before planned start %s", plannedEnd.Format(time.DateOnly), plannedStart.Format(time.DateOnly))
	}
	node.PlannedStart = plannedStart
	node.PlannedEnd = plannedEnd
	node.UpdatedAt = sc.Now
	s.detector.Apply(node, sc.Now)
	if err := sc.Tx.Tree().Save(node); err != nil {
		return nil, err
	}

	index, err := s.childIndex(sc, node.ProjectID)
	if err != nil {
		return nil, err
	}
	stack := []*entities.TreeNode{node}
	visited := map[string]bool{node.ID: true}
	for len(stack) > 0 {
		parent := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range index[parent.ID] {
			if visited[child.ID] {
				return nil, apperrors.Internal(nil, "tree of project %s loops at node %s", child.ProjectID, child.ID)
			}
			visited[child.ID] = true
			nom, err := sc.Tx.Catalog().GetNomenclature(child.NomenclatureID)
			if err != nil {
				return nil, err
			}
			child.RequiredDate = parent.PlannedStart
			child.OrderByDate = nil
			if !child.Purchased {
				child.PlannedStart, child.PlannedEnd = nil, nil
			}
			if err := s.planDates(sc, child, nom); err != nil {
				return nil, err
			}
			child.UpdatedAt = sc.Now
			s.detector.Apply(child, sc.Now)
			if err := sc.Tx.Tree().Save(child); err != nil {
				return nil, err
			}
			if child.Purchased {
				if _, err := s.requirements.Refresh(sc, child); err != nil {
					return nil, err
				}
				continue
			}
			stack = append(stack, child)
		}
	}
	return node, nil
}

// childIndex builds parent -> children of a project once
func (s *Service) childIndex(sc *shared.Scope, projectID string) (map[string][]*entities.TreeNode, error) {
	nodes, err := sc.Tx.Tree().ListByProject(projectID)
	if err != nil {
		return nil, err
	}
	index := map[string][]*entities.TreeNode{}
	for _, n := range nodes {
		if !n.IsRoot() {
			index[n.ParentID] = append(index[n.ParentID], n)
		}
	}
	return index, nil
}

// DeleteNode removes a node and its subtree. Reservations are released,
// consumptions reversed and requirements tombstoned first. Nodes tied to an
// open purchase order block the deletion.
func (s *Service) DeleteNode(sc *shared.Scope, nodeID string) ([]string, error) {
	node, err := sc.Tx.Tree().Get(nodeID)
	if err != nil {
		return nil, err
	}
	if node.IsRoot() {
		return nil, apperrors.Validation("node %s is the project root and cannot be deleted", node.ID)
	}
	index, err := s.childIndex(sc, node.ProjectID)
	if err != nil {
		return nil, err
	}

	var subtree []*entities.TreeNode
	stack := []*entities.TreeNode{node}
	visited := map[string]bool{}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n.ID] {
			continue
		}
		visited[n.ID] = true
		subtree = append(subtree, n)
		stack = append(stack, index[n.ID]...)
	}

	var blocking []string
	for _, n := range subtree {
		req, err := sc.Tx.Requirements().FindByNode(n.ID)
		if apperrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if req.Deleted || req.PurchaseOrderID == "" {
			continue
		}
		order, err := sc.Tx.Orders().Get(req.PurchaseOrderID)
		if err != nil {
			return nil, err
		}
		if order.IsOpen() {
			blocking = append(blocking, fmt.Sprintf("%s (order %s)", n.Name, order.Number))
		}
	}
	if len(blocking) > 0 {
		return nil, apperrors.Conflict(fmt.Sprintf("node %s is linked to open purchase orders", node.ID), blocking...)
	}

	deleted := make([]string, 0, len(subtree))
	for _, n := range subtree {
		if _, err := s.stock.ReleaseNode(sc, n.ID); err != nil {
			return nil, err
		}
		if _, err := s.stock.Reverse(sc, entities.DocNodeConsumption, n.ID); err != nil {
			return nil, err
		}
		req, err := sc.Tx.Requirements().FindByNode(n.ID)
		if err == nil && !req.Deleted {
			if _, err := s.requirements.Delete(sc, req.ID); err != nil {
				return nil, err
			}
		} else if err != nil && !apperrors.IsNotFound(err) {
			return nil, err
		}
		if err := sc.Tx.Tree().Delete(n.ID); err != nil {
			return nil, err
		}
		deleted = append(deleted, n.ID)
	}
	sc.Record(events.NodeDeletedEvent, node.ID, events.NodeDeleted{NodeIDs: deleted})
	s.logger.Info("tree nodes deleted", zap.String("node_id", node.ID), zap.Int("nodes", len(deleted)))
	return deleted, nil
}

// Consume writes stock off against a node and records it as the node's own
// consumption, so that deleting the node can undo it
func (s *Service) Consume(sc *shared.Scope, nodeID string, quantity entities.Quantity, fromReserved bool) (*dto.ConsumptionResult, error) {
	node, err := sc.Tx.Tree().Get(nodeID)
	if err != nil {
		return nil, err
	}
	movements, err := s.stock.Consume(sc, stockConsume(node, quantity, fromReserved))
	if err != nil {
		return nil, err
	}
	if node.Purchased {
		if _, err := s.requirements.Refresh(sc, node); err != nil {
			return nil, err
		}
	}
	return &dto.ConsumptionResult{NodeID: node.ID, Movements: movements}, nil
}

// Reserve sets stock aside for a node
func (s *Service) Reserve(sc *shared.Scope, nodeID string, quantity entities.Quantity) ([]*entities.StockReservation, error) {
	node, err := sc.Tx.Tree().Get(nodeID)
	if err != nil {
		return nil, err
	}
	res, err := s.stock.Reserve(sc, stockReserve(node, quantity))
	if err != nil {
		return nil, err
	}
	if node.Purchased {
		if _, err := s.requirements.Refresh(sc, node); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Load returns the tree of a project with problem flags evaluated as of now
func (s *Service) Load(sc *shared.Scope, projectID string) (*dto.ProjectTree, error) {
	project, err := sc.Tx.Projects().Get(projectID)
	if err != nil {
		return nil, err
	}
	nodes, err := sc.Tx.Tree().ListByProject(projectID)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		s.detector.Apply(n, sc.Now)
	}
	return dto.NewProjectTree(project, nodes), nil
}
