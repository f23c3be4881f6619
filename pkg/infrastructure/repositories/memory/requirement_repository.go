package memory

import (
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/repositories"
)

// requirementRepository provides in-memory requirement storage.
// Tombstoned rows stay in place and are filtered out of every listing.
type requirementRepository struct{ tx *tx }

var _ repositories.RequirementRepository = (*requirementRepository)(nil)

func requirementByID(a, b *entities.Requirement) bool { return a.ID < b.ID }

func (r *requirementRepository) Get(id string) (*entities.Requirement, error) {
	return find(r.tx.state.requirements, "requirement", id, (*entities.Requirement).Clone)
}

func (r *requirementRepository) Save(req *entities.Requirement) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.state.requirements[req.ID] = req.Clone()
	return nil
}

// FindByNode returns the live requirement of a node
func (r *requirementRepository) FindByNode(nodeID string) (*entities.Requirement, error) {
	var found *entities.Requirement
	for _, req := range r.tx.state.requirements {
		if req.NodeID != nodeID {
			continue
		}
		if !req.Deleted {
			return req.Clone(), nil
		}
		found = req
	}
	if found != nil {
		return found.Clone(), nil
	}
	return nil, apperrors.NotFound("requirement for node", nodeID)
}

func (r *requirementRepository) ListByProject(projectID string, includeDeleted bool) ([]*entities.Requirement, error) {
	return collect(r.tx.state.requirements, func(req *entities.Requirement) bool {
		return req.ProjectID == projectID && (includeDeleted || !req.Deleted)
	}, (*entities.Requirement).Clone, requirementByID), nil
}

func (r *requirementRepository) ListOpenByNomenclature(nomenclatureID string) ([]*entities.Requirement, error) {
	return collect(r.tx.state.requirements, func(req *entities.Requirement) bool {
		return req.NomenclatureID == nomenclatureID && req.IsOpen()
	}, (*entities.Requirement).Clone, requirementByID), nil
}

func (r *requirementRepository) ListByOrder(orderID string) ([]*entities.Requirement, error) {
	return collect(r.tx.state.requirements, func(req *entities.Requirement) bool {
		return req.PurchaseOrderID == orderID && !req.Deleted
	}, (*entities.Requirement).Clone, requirementByID), nil
}
