// Package requirements keeps requirement rows in line with project trees and
// stock. Figures are recomputed on demand; rows are created and tombstoned
// only by an explicit sync.
package requirements

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Rushen88/PDM-sub000/pkg/application/dto"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/services"
)

// Options tunes requirement computation
type Options struct {
	// DefaultSafetyStock applies to items without their own safety stock
	DefaultSafetyStock entities.Quantity
}

// Service computes, syncs, links and splits requirements
type Service struct {
	opts     Options
	machine  *services.StatusMachine
	detector *services.ProblemDetector
	logger   *zap.Logger
}

// NewService creates a requirement service
func NewService(opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		opts:     opts,
		machine:  services.NewStatusMachine(),
		detector: services.NewProblemDetector(),
		logger:   logger,
	}
}

// Compute fills the figures of req from the current stock of its node's item.
// It reads only; nothing is saved.
func (s *Service) Compute(sc *shared.Scope, node *entities.TreeNode, req *entities.Requirement) error {
	nom, err := sc.Tx.Catalog().GetNomenclature(node.NomenclatureID)
	if err != nil {
		return err
	}
	positions, err := sc.Tx.Stock().ListPositions(node.NomenclatureID)
	if err != nil {
		return err
	}
	onHand := decimal.Zero
	for _, p := range positions {
		onHand = onHand.Add(p.Quantity)
	}

	active, err := sc.Tx.Stock().ListActiveReservationsByNomenclature(node.NomenclatureID)
	if err != nil {
		return err
	}
	forNode, byOthers := decimal.Zero, decimal.Zero
	for _, r := range active {
		if r.NodeID == node.ID {
			forNode = forNode.Add(r.Outstanding())
		} else {
			byOthers = byOthers.Add(r.Outstanding())
		}
	}

	inOrder, err := s.inOrder(sc, node.NomenclatureID)
	if err != nil {
		return err
	}

	safety := s.opts.DefaultSafetyStock
	if nom.SafetyStock != nil {
		safety = *nom.SafetyStock
	}
	figures := services.CalculateRequirement(services.RequirementInputs{
		Required:         node.Quantity,
		OnHand:           onHand,
		ReservedByOthers: byOthers,
		ReservedForNode:  forNode,
		InOrder:          inOrder,
		SafetyStock:      safety,
	})
	services.ApplyFigures(req, node.Quantity, safety, figures)

	req.NomenclatureID = node.NomenclatureID
	req.ProjectID = node.ProjectID
	req.NodeID = node.ID
	req.Status = node.PurchaseStatus
	req.OrderByDate = node.OrderByDate
	if req.Status.IsTerminal() {
		req.ToOrder = decimal.Zero
	}
	req.ProblemReasons = s.detector.Detect(node, sc.Now)
	req.Problem = len(req.ProblemReasons) > 0
	return nil
}

// inOrder totals what is still to be delivered on open orders for an item
func (s *Service) inOrder(sc *shared.Scope, nomenclatureID string) (entities.Quantity, error) {
	orders, err := sc.Tx.Orders().List(false)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, o := range orders {
		if o.Status != entities.StatusConfirmed && o.Status != entities.StatusPartiallyReceived {
			continue
		}
		for _, l := range o.Lines {
			if l.NomenclatureID == nomenclatureID {
				total = total.Add(entities.NonNegative(l.Quantity.Sub(l.ReceivedQuantity)))
			}
		}
	}
	return total, nil
}

// Recompute returns the current figures of a node's requirement without
// writing anything; calling it twice in a row gives the same result
func (s *Service) Recompute(sc *shared.Scope, nodeID string) (*entities.Requirement, error) {
	node, err := sc.Tx.Tree().Get(nodeID)
	if err != nil {
		return nil, err
	}
	if !node.Purchased {
		return nil, apperrors.Validation("node %s is manufactured and carries no requirement", node.ID)
	}
	req, err := sc.Tx.Requirements().FindByNode(nodeID)
	if apperrors.IsNotFound(err) {
		req = &entities.Requirement{}
	} else if err != nil {
		return nil, err
	}
	if err := s.Compute(sc, node, req); err != nil {
		return nil, err
	}
	return req, nil
}

// List recomputes every live requirement of a project for display, earliest
// need first. A row that cannot be recomputed keeps its stored figures.
func (s *Service) List(sc *shared.Scope, projectID string) ([]*entities.Requirement, error) {
	if _, err := sc.Tx.Projects().Get(projectID); err != nil {
		return nil, err
	}
	reqs, err := sc.Tx.Requirements().ListByProject(projectID, false)
	if err != nil {
		return nil, err
	}
	for _, r := range reqs {
		node, err := sc.Tx.Tree().Get(r.NodeID)
		if err == nil {
			err = s.Compute(sc, node, r)
		}
		if err != nil {
			s.logger.Warn("requirement recompute failed",
				zap.String("requirement_id", r.ID),
				zap.String("node_id", r.NodeID),
				zap.Error(err))
		}
	}
	return s.ordered(sc, reqs), nil
}

func (s *Service) ordered(sc *shared.Scope, reqs []*entities.Requirement) []*entities.Requirement {
	entries := shared.PriorityEntries(sc, reqs)
	shared.SortByPriority(entries)
	out := make([]*entities.Requirement, len(entries))
	for i, e := range entries {
		out[i] = e.Requirement
	}
	return out
}

// Sync makes the requirement rows of a project match its purchased nodes:
// missing rows are created, live rows refreshed and rows of vanished nodes
// tombstoned. Rows a user deleted stay deleted.
func (s *Service) Sync(sc *shared.Scope, projectID string) (*dto.SyncResult, error) {
	if _, err := sc.Tx.Projects().Get(projectID); err != nil {
		return nil, err
	}
	nodes, err := sc.Tx.Tree().ListByProject(projectID)
	if err != nil {
		return nil, err
	}
	rows, err := sc.Tx.Requirements().ListByProject(projectID, true)
	if err != nil {
		return nil, err
	}
	live := map[string]*entities.Requirement{}
	tombstoned := map[string]bool{}
	for _, r := range rows {
		if r.Deleted {
			tombstoned[r.NodeID] = true
			continue
		}
		live[r.NodeID] = r
	}

	result := &dto.SyncResult{ProjectID: projectID}
	wanted := map[string]bool{}
	for _, n := range nodes {
		if !n.Purchased {
			continue
		}
		wanted[n.ID] = true
		req, exists := live[n.ID]
		if !exists {
			if tombstoned[n.ID] {
				continue
			}
			req = &entities.Requirement{ID: shared.NewID(), CreatedAt: sc.Now}
		}
		if err := s.Compute(sc, n, req); err != nil {
			return nil, fmt.Errorf("failed to compute requirement of node %s: %w", n.ID, err)
		}
		req.UpdatedAt = sc.Now
		if err := sc.Tx.Requirements().Save(req); err != nil {
			return nil, err
		}
		if exists {
			result.Updated = append(result.Updated, req.ID)
		} else {
			result.Created = append(result.Created, req.ID)
		}
	}

	for nodeID, req := range live {
		if wanted[nodeID] {
			continue
		}
		s.tombstone(sc, req)
		if err := sc.Tx.Requirements().Save(req); err != nil {
			return nil, err
		}
		result.Deleted = append(result.Deleted, req.ID)
	}
	result.Sort()

	s.logger.Info("requirements synced",
		zap.String("project_id", projectID),
		zap.Int("created", len(result.Created)),
		zap.Int("updated", len(result.Updated)),
		zap.Int("deleted", len(result.Deleted)))
	return result, nil
}

func (s *Service) tombstone(sc *shared.Scope, req *entities.Requirement) {
	req.Deleted = true
	req.DeletedAt = entities.DatePtr(sc.Now)
	req.UpdatedAt = sc.Now
}

// Delete tombstones a requirement on request of a user
func (s *Service) Delete(sc *shared.Scope, requirementID string) (*entities.Requirement, error) {
	req, err := sc.Tx.Requirements().Get(requirementID)
	if err != nil {
		return nil, err
	}
	if req.Deleted {
		return req, nil
	}
	if req.PurchaseOrderID != "" {
		if o, err := sc.Tx.Orders().Get(req.PurchaseOrderID); err == nil && o.IsOpen() {
			return nil, apperrors.Conflict(fmt.Sprintf("requirement %s is linked to an open order", req.ID), o.Number)
		}
	}
	s.tombstone(sc, req)
	if err := sc.Tx.Requirements().Save(req); err != nil {
		return nil, err
	}
	return req, nil
}

// Restore brings a tombstoned requirement back and recomputes it
func (s *Service) Restore(sc *shared.Scope, requirementID string) (*entities.Requirement, error) {
	req, err := sc.Tx.Requirements().Get(requirementID)
	if err != nil {
		return nil, err
	}
	if !req.Deleted {
		return nil, apperrors.Validation("requirement %s is not deleted", req.ID)
	}
	node, err := sc.Tx.Tree().Get(req.NodeID)
	if apperrors.IsNotFound(err) {
		return nil, apperrors.Conflict(fmt.Sprintf("requirement %s cannot be restored", req.ID), "node "+req.NodeID+" no longer exists")
	}
	if err != nil {
		return nil, err
	}
	if current, err := sc.Tx.Requirements().FindByNode(node.ID); err == nil && !current.Deleted && current.ID != req.ID {
		return nil, apperrors.Conflict(fmt.Sprintf("requirement %s cannot be restored", req.ID), "node "+node.ID+" already has requirement "+current.ID)
	}
	req.Deleted = false
	req.DeletedAt = nil
	if err := s.Compute(sc, node, req); err != nil {
		return nil, err
	}
	req.UpdatedAt = sc.Now
	if err := sc.Tx.Requirements().Save(req); err != nil {
		return nil, err
	}
	return req, nil
}

// Refresh recomputes the live requirement of a node and saves it, if there is one
func (s *Service) Refresh(sc *shared.Scope, node *entities.TreeNode) (*entities.Requirement, error) {
	req, err := sc.Tx.Requirements().FindByNode(node.ID)
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if req.Deleted {
		return nil, nil
	}
	if err := s.Compute(sc, node, req); err != nil {
		return nil, err
	}
	req.UpdatedAt = sc.Now
	return req, sc.Tx.Requirements().Save(req)
}
