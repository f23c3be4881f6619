package documents

import (
	"fmt"
	"time"

	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/stock"
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/events"
)

// WriteOffLineInput is material handed to a contractor
type WriteOffLineInput struct {
	NomenclatureID string
	Quantity       entities.Quantity
	// NodeID is the material node whose reservation is drawn when FromReserved is set
	NodeID       string
	FromReserved bool
}

// ContractorWriteOffInput describes a new contractor write-off
type ContractorWriteOffInput struct {
	ContractorID string
	WarehouseID  string
	TargetNodeID string
	Lines        []WriteOffLineInput
}

// CreateContractorWriteOff stores a draft write-off
func (s *Service) CreateContractorWriteOff(sc *shared.Scope, in ContractorWriteOffInput) (*entities.ContractorWriteOff, error) {
	if _, err := sc.Tx.Catalog().GetContractor(in.ContractorID); err != nil {
		return nil, err
	}
	if _, err := sc.Tx.Catalog().GetWarehouse(in.WarehouseID); err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, apperrors.Validation("contractor write-off has no lines")
	}
	lines := make([]entities.ContractorWriteOffLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l.FromReserved && l.NodeID == "" {
			return nil, apperrors.Validation("write-off of reserved %s needs the node it was reserved for", l.NomenclatureID)
		}
		lines = append(lines, entities.ContractorWriteOffLine{
			ID:             shared.NewID(),
			NomenclatureID: l.NomenclatureID,
			Quantity:       l.Quantity,
			NodeID:         l.NodeID,
			FromReserved:   l.FromReserved,
		})
	}
	number, err := shared.NextDocumentNumber(sc, shared.ContractorWriteOffSequence)
	if err != nil {
		return nil, err
	}
	w := &entities.ContractorWriteOff{
		ID:           shared.NewID(),
		Number:       number,
		ContractorID: in.ContractorID,
		WarehouseID:  in.WarehouseID,
		TargetNodeID: in.TargetNodeID,
		Status:       entities.StatusDraft,
		Lines:        lines,
		CreatedAt:    sc.Now,
	}
	return w, sc.Tx.Contractors().SaveWriteOff(w)
}

// ConfirmContractorWriteOff writes the material off the warehouse and marks
// the contractor-made target node as sent
func (s *Service) ConfirmContractorWriteOff(sc *shared.Scope, id string) (*entities.ContractorWriteOff, error) {
	w, err := sc.Tx.Contractors().GetWriteOff(id)
	if err != nil {
		return nil, err
	}
	if w.Status != entities.StatusDraft {
		return nil, apperrors.Validation("contractor write-off %s is %s, only drafts can be confirmed", w.Number, w.Status)
	}
	var target *entities.TreeNode
	if w.TargetNodeID != "" {
		target, err = sc.Tx.Tree().Get(w.TargetNodeID)
		if err != nil {
			return nil, err
		}
		if !target.IsContractorMade() {
			return nil, apperrors.Validation("node %s is not manufactured by a contractor", target.ID)
		}
		if target.Source.ID != w.ContractorID {
			return nil, apperrors.Validation("node %s is made by %s, write-off goes to %s", target.ID, target.Source, w.ContractorID)
		}
	}

	for _, line := range w.Lines {
		if _, err := s.stock.Consume(sc, stock.ConsumeRequest{
			NodeID:         line.NodeID,
			NomenclatureID: line.NomenclatureID,
			Quantity:       line.Quantity,
			FromReserved:   line.FromReserved,
			WarehouseID:    w.WarehouseID,
			Document:       entities.DocumentRef{Type: entities.DocContractorWriteOff, ID: w.ID, LineID: line.ID},
			Type:           entities.MovementWriteOff,
		}); err != nil {
			return nil, fmt.Errorf("contractor write-off %s line %s: %w", w.Number, line.ID, err)
		}
		if err := s.refreshNode(sc, line.NodeID); err != nil {
			return nil, err
		}
	}
	if target != nil && target.ManufacturingStatus == entities.ManufacturingNotStarted {
		if err := s.setManufacturing(sc, target, entities.ContractorSent); err != nil {
			return nil, err
		}
	}

	w.Status = entities.StatusConfirmed
	w.ConfirmedAt = entities.DatePtr(sc.Now)
	if err := sc.Tx.Contractors().SaveWriteOff(w); err != nil {
		return nil, err
	}
	s.recordTransition(sc, events.DocumentConfirmedEvent, writeOffRef(w), entities.StatusDraft, w.Status)
	return w, nil
}

// CancelContractorWriteOff reverses a confirmed write-off. The target node
// keeps its status.
func (s *Service) CancelContractorWriteOff(sc *shared.Scope, id string) (*entities.ContractorWriteOff, error) {
	w, err := sc.Tx.Contractors().GetWriteOff(id)
	if err != nil {
		return nil, err
	}
	if w.Status != entities.StatusConfirmed {
		return nil, apperrors.Validation("contractor write-off %s is %s, only confirmed write-offs can be cancelled", w.Number, w.Status)
	}
	if _, err := s.stock.Reverse(sc, entities.DocContractorWriteOff, w.ID); err != nil {
		return nil, err
	}
	for _, line := range w.Lines {
		if err := s.refreshNode(sc, line.NodeID); err != nil {
			return nil, err
		}
	}
	w.Status = entities.StatusDraft
	w.ConfirmedAt = nil
	if err := sc.Tx.Contractors().SaveWriteOff(w); err != nil {
		return nil, err
	}
	s.recordTransition(sc, events.DocumentCancelledEvent, writeOffRef(w), entities.StatusConfirmed, w.Status)
	return w, nil
}

// ReceiptLineFromContractor is a product returned by a contractor
type ReceiptLineFromContractor struct {
	NomenclatureID string
	Quantity       entities.Quantity
	NodeID         string
}

// ContractorReceiptInput describes a new contractor receipt
type ContractorReceiptInput struct {
	ContractorID string
	WarehouseID  string
	ReceiptDate  *time.Time
	Lines        []ReceiptLineFromContractor
}

// CreateContractorReceipt stores a draft contractor receipt
func (s *Service) CreateContractorReceipt(sc *shared.Scope, in ContractorReceiptInput) (*entities.ContractorReceipt, error) {
	if _, err := sc.Tx.Catalog().GetContractor(in.ContractorID); err != nil {
		return nil, err
	}
	if _, err := sc.Tx.Catalog().GetWarehouse(in.WarehouseID); err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, apperrors.Validation("contractor receipt has no lines")
	}
	lines := make([]entities.ContractorReceiptLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		if _, err := sc.Tx.Catalog().GetNomenclature(l.NomenclatureID); err != nil {
			return nil, err
		}
		if !l.Quantity.IsPositive() {
			return nil, apperrors.Validation("receipt quantity of %s must be positive, got %s", l.NomenclatureID, l.Quantity)
		}
		lines = append(lines, entities.ContractorReceiptLine{
			ID:             shared.NewID(),
			NomenclatureID: l.NomenclatureID,
			Quantity:       l.Quantity,
			NodeID:         l.NodeID,
		})
	}
	number, err := shared.NextDocumentNumber(sc, shared.ContractorReceiptSequence)
	if err != nil {
		return nil, err
	}
	r := &entities.ContractorReceipt{
		ID:           shared.NewID(),
		Number:       number,
		ContractorID: in.ContractorID,
		WarehouseID:  in.WarehouseID,
		ReceiptDate:  dateOr(in.ReceiptDate, sc.Now),
		Status:       entities.StatusDraft,
		Lines:        lines,
		CreatedAt:    sc.Now,
	}
	return r, sc.Tx.Contractors().SaveReceipt(r)
}

// ConfirmContractorReceipt books the products into the warehouse, reserves
// them for the nodes they were made for and marks those nodes manufactured
func (s *Service) ConfirmContractorReceipt(sc *shared.Scope, id string) (*entities.ContractorReceipt, error) {
	r, err := sc.Tx.Contractors().GetReceipt(id)
	if err != nil {
		return nil, err
	}
	if r.Status != entities.StatusDraft {
		return nil, apperrors.Validation("contractor receipt %s is %s, only drafts can be confirmed", r.Number, r.Status)
	}
	for _, line := range r.Lines {
		var node *entities.TreeNode
		if line.NodeID != "" {
			node, err = sc.Tx.Tree().Get(line.NodeID)
			if err != nil {
				return nil, err
			}
			if !node.IsContractorMade() {
				return nil, apperrors.Validation("node %s is not manufactured by a contractor", node.ID)
			}
			if node.NomenclatureID != line.NomenclatureID {
				return nil, apperrors.Validation("node %s is %s, receipt line is %s", node.ID, node.NomenclatureID, line.NomenclatureID)
			}
			if node.Source.ID != r.ContractorID {
				return nil, apperrors.Validation("node %s is made by %s, receipt comes from %s", node.ID, node.Source, r.ContractorID)
			}
		}
		m, err := s.stock.Receive(sc, stock.ReceiveRequest{
			WarehouseID:    r.WarehouseID,
			NomenclatureID: line.NomenclatureID,
			Quantity:       line.Quantity,
			ReceiptDate:    r.ReceiptDate,
			Document:       entities.DocumentRef{Type: entities.DocContractorReceipt, ID: r.ID, LineID: line.ID},
			Type:           entities.MovementReceipt,
			NodeID:         line.NodeID,
		})
		if err != nil {
			return nil, fmt.Errorf("contractor receipt %s line %s: %w", r.Number, line.ID, err)
		}
		if node == nil {
			continue
		}
		if _, err := s.stock.ReserveOnPosition(sc, m.PositionID, stock.ReserveRequest{
			NodeID:         node.ID,
			ProjectID:      node.ProjectID,
			NomenclatureID: node.NomenclatureID,
			Quantity:       line.Quantity,
		}); err != nil {
			return nil, err
		}
		switch node.ManufacturingStatus {
		case entities.ContractorSent, entities.ContractorInProgress:
			if err := s.setManufacturing(sc, node, entities.ContractorManufactured); err != nil {
				return nil, err
			}
		}
	}
	r.Status = entities.StatusConfirmed
	r.ConfirmedAt = entities.DatePtr(sc.Now)
	if err := sc.Tx.Contractors().SaveReceipt(r); err != nil {
		return nil, err
	}
	s.recordTransition(sc, events.DocumentConfirmedEvent,
		entities.DocumentRef{Type: entities.DocContractorReceipt, ID: r.ID}, entities.StatusDraft, r.Status)
	return r, nil
}

// refreshNode recomputes the requirement of a purchased material node
func (s *Service) refreshNode(sc *shared.Scope, nodeID string) error {
	if nodeID == "" {
		return nil
	}
	node, err := sc.Tx.Tree().Get(nodeID)
	if apperrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !node.Purchased {
		return nil
	}
	_, err = s.requirements.Refresh(sc, node)
	return err
}

func writeOffRef(w *entities.ContractorWriteOff) entities.DocumentRef {
	return entities.DocumentRef{Type: entities.DocContractorWriteOff, ID: w.ID}
}
