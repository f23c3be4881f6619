package requirements

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/events"
)

// Candidates returns the requirements competing for an order line, earliest
// need first, each recomputed so that ToOrder is its open amount
func (s *Service) Candidates(sc *shared.Scope, line *entities.PurchaseOrderLine) ([]*entities.Requirement, error) {
	var reqs []*entities.Requirement
	if len(line.RequirementIDs) > 0 {
		for _, id := range line.RequirementIDs {
			r, err := sc.Tx.Requirements().Get(id)
			if err != nil {
				return nil, err
			}
			if r.NomenclatureID != line.NomenclatureID {
				return nil, apperrors.Validation("requirement %s is for %s, order line %s is for %s", r.ID, r.NomenclatureID, line.ID, line.NomenclatureID)
			}
			if !r.IsOpen() {
				return nil, apperrors.Validation("requirement %s is not waiting for an order", r.ID)
			}
			reqs = append(reqs, r)
		}
	} else {
		open, err := sc.Tx.Requirements().ListOpenByNomenclature(line.NomenclatureID)
		if err != nil {
			return nil, err
		}
		reqs = open
	}
	for _, r := range reqs {
		node, err := sc.Tx.Tree().Get(r.NodeID)
		if err != nil {
			return nil, err
		}
		if err := s.Compute(sc, node, r); err != nil {
			return nil, err
		}
	}
	return s.ordered(sc, reqs), nil
}

// LinkOrderLine distributes an order line over open requirements by
// priority. A requirement that can only be covered in part is split and the
// covered half is linked. Allocations are recorded on the line.
func (s *Service) LinkOrderLine(sc *shared.Scope, order *entities.PurchaseOrder, line *entities.PurchaseOrderLine) error {
	reqs, err := s.Candidates(sc, line)
	if err != nil {
		return err
	}
	byID := make(map[string]*entities.Requirement, len(reqs))
	candidates := make([]shared.AllocationCandidate, 0, len(reqs))
	for _, r := range reqs {
		byID[r.ID] = r
		// safety stock raises to_order but is not held against the node
		open := entities.MinQty(r.ToOrder, r.TotalRequired)
		candidates = append(candidates, shared.AllocationCandidate{RequirementID: r.ID, NodeID: r.NodeID, Open: open})
	}

	plan := shared.Distribute(line.Quantity, candidates)
	for _, a := range plan.Allocations {
		req := byID[a.Candidate.RequirementID]
		node, err := sc.Tx.Tree().Get(req.NodeID)
		if err != nil {
			return err
		}
		if a.Partial && a.AllocatedQty.LessThan(node.Quantity) {
			req, node, err = s.Split(sc, req, node, a.AllocatedQty)
			if err != nil {
				return err
			}
		}
		if err := s.link(sc, order, req, node); err != nil {
			return err
		}
		line.Allocations = append(line.Allocations, entities.OrderAllocation{
			RequirementID: req.ID,
			NodeID:        node.ID,
			Quantity:      a.AllocatedQty,
		})
	}
	if plan.Leftover.IsPositive() {
		s.logger.Info("order line exceeds open requirements",
			zap.String("order_id", order.ID),
			zap.String("line_id", line.ID),
			zap.String("allocated", plan.Allocated().String()),
			zap.String("leftover", plan.Leftover.String()))
	}
	return nil
}

func (s *Service) link(sc *shared.Scope, order *entities.PurchaseOrder, req *entities.Requirement, node *entities.TreeNode) error {
	orderedAt := sc.Now
	if order.OrderDate != nil {
		orderedAt = *order.OrderDate
	}
	if err := s.setPurchaseStatus(sc, node, entities.PurchaseInOrder); err != nil {
		return err
	}
	node.OrderedAt = entities.DatePtr(orderedAt)
	node.ExpectedDeliveryDate = order.ExpectedDeliveryDate
	node.Source = entities.SupplierRef(order.SupplierID)
	s.detector.Apply(node, sc.Now)
	if err := sc.Tx.Tree().Save(node); err != nil {
		return err
	}

	req.PurchaseOrderID = order.ID
	if err := s.Compute(sc, node, req); err != nil {
		return err
	}
	req.UpdatedAt = sc.Now
	return sc.Tx.Requirements().Save(req)
}

// UnlinkOrder detaches every requirement linked by an order and puts its
// node back to waiting for an order. Split halves stay split.
func (s *Service) UnlinkOrder(sc *shared.Scope, order *entities.PurchaseOrder) error {
	linked, err := sc.Tx.Requirements().ListByOrder(order.ID)
	if err != nil {
		return err
	}
	for _, req := range linked {
		node, err := sc.Tx.Tree().Get(req.NodeID)
		if err != nil {
			return err
		}
		if err := s.setPurchaseStatus(sc, node, entities.PurchaseWaitingOrder); err != nil {
			return err
		}
		node.OrderedAt = nil
		node.ExpectedDeliveryDate = nil
		s.detector.Apply(node, sc.Now)
		if err := sc.Tx.Tree().Save(node); err != nil {
			return err
		}
		req.PurchaseOrderID = ""
		if err := s.Compute(sc, node, req); err != nil {
			return err
		}
		req.UpdatedAt = sc.Now
		if err := sc.Tx.Requirements().Save(req); err != nil {
			return err
		}
	}
	for i := range order.Lines {
		order.Lines[i].Allocations = nil
	}
	return nil
}

// SetPurchaseStatus applies a system-driven purchase transition to a node and
// mirrors it onto the node's requirement
func (s *Service) SetPurchaseStatus(sc *shared.Scope, node *entities.TreeNode, to entities.PurchaseStatus) error {
	if err := s.setPurchaseStatus(sc, node, to); err != nil {
		return err
	}
	s.detector.Apply(node, sc.Now)
	if err := sc.Tx.Tree().Save(node); err != nil {
		return err
	}
	_, err := s.Refresh(sc, node)
	return err
}

func (s *Service) setPurchaseStatus(sc *shared.Scope, node *entities.TreeNode, to entities.PurchaseStatus) error {
	if err := s.machine.ValidateSystemPurchase(node, to); err != nil {
		return err
	}
	from := node.PurchaseStatus
	if from == to {
		return nil
	}
	s.detector.BeforePurchaseChange(node, to, sc.Now)
	node.PurchaseStatus = to
	node.UpdatedAt = sc.Now
	sc.Record(events.NodeStatusChangedEvent, node.ID, events.NodeStatusChanged{
		NodeID: node.ID, Track: entities.TrackPurchase, From: string(from), To: string(to), System: true,
	})
	return nil
}

// Split moves fulfilled out of a purchased node into a new sibling node with
// its own requirement. The two quantities add up to the original one and both
// requirements are recomputed. Reservations stay with the original node.
func (s *Service) Split(sc *shared.Scope, req *entities.Requirement, node *entities.TreeNode, fulfilled entities.Quantity) (*entities.Requirement, *entities.TreeNode, error) {
	if !fulfilled.IsPositive() || !fulfilled.LessThan(node.Quantity) {
		return nil, nil, apperrors.Validation("split of node %s: %s must be between 0 and %s", node.ID, fulfilled, node.Quantity)
	}
	children, err := sc.Tx.Tree().Children(node.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(children) > 0 {
		return nil, nil, apperrors.Validation("node %s has children and cannot be split", node.ID)
	}
	number, err := shared.NextDisplayNumber(sc)
	if err != nil {
		return nil, nil, err
	}

	half := node.Clone()
	half.ID = shared.NewID()
	half.DisplayNumber = number
	half.Quantity = fulfilled
	half.SplitFromID = node.ID
	half.CreatedAt = sc.Now
	half.UpdatedAt = sc.Now
	node.Quantity = node.Quantity.Sub(fulfilled)
	node.UpdatedAt = sc.Now
	if err := sc.Tx.Tree().Save(node); err != nil {
		return nil, nil, err
	}
	if err := sc.Tx.Tree().Save(half); err != nil {
		return nil, nil, err
	}

	halfReq := &entities.Requirement{ID: shared.NewID(), PurchaseOrderID: req.PurchaseOrderID, CreatedAt: sc.Now}
	for _, pair := range []struct {
		r *entities.Requirement
		n *entities.TreeNode
	}{{req, node}, {halfReq, half}} {
		if err := s.Compute(sc, pair.n, pair.r); err != nil {
			return nil, nil, fmt.Errorf("failed to recompute split requirement: %w", err)
		}
		pair.r.UpdatedAt = sc.Now
		if err := sc.Tx.Requirements().Save(pair.r); err != nil {
			return nil, nil, err
		}
	}

	sc.Record(events.RequirementSplitEvent, req.ID, events.RequirementSplit{
		OriginalRequirementID: req.ID,
		NewRequirementID:      halfReq.ID,
		OriginalNodeID:        node.ID,
		NewNodeID:             half.ID,
		Remaining:             node.Quantity,
		Fulfilled:             half.Quantity,
	})
	s.logger.Debug("requirement split",
		zap.String("requirement_id", req.ID),
		zap.String("new_requirement_id", halfReq.ID),
		zap.String("fulfilled", fulfilled.String()))
	return halfReq, half, nil
}
