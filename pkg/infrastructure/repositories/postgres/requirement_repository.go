package postgres

import (
	"gorm.io/gorm"

	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/repositories"
)

// requirementRepository excludes tombstoned rows with deleted = false filters
type requirementRepository struct{ db *gorm.DB }

var _ repositories.RequirementRepository = (*requirementRepository)(nil)

func (r *requirementRepository) Get(id string) (*entities.Requirement, error) {
	var m requirementModel
	if err := first(r.db, &m, "requirement", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r *requirementRepository) Save(req *entities.Requirement) error {
	return r.db.Save(toRequirementModel(req)).Error
}

// FindByNode prefers the live row and falls back to a tombstone
func (r *requirementRepository) FindByNode(nodeID string) (*entities.Requirement, error) {
	var m requirementModel
	if err := first(r.db.Order("deleted, id"), &m, "requirement for node", nodeID, "node_id = ?", nodeID); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r *requirementRepository) list(db *gorm.DB) ([]*entities.Requirement, error) {
	var rows []requirementModel
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapAll(rows, (*requirementModel).entity), nil
}

func (r *requirementRepository) ListByProject(projectID string, includeDeleted bool) ([]*entities.Requirement, error) {
	q := r.db.Where("project_id = ?", projectID)
	if !includeDeleted {
		q = q.Where("deleted = ?", false)
	}
	return r.list(q)
}

func (r *requirementRepository) ListOpenByNomenclature(nomenclatureID string) ([]*entities.Requirement, error) {
	return r.list(r.db.Where("nomenclature_id = ? AND deleted = ? AND status = ? AND purchase_order_id = ?",
		nomenclatureID, false, string(entities.PurchaseWaitingOrder), ""))
}

func (r *requirementRepository) ListByOrder(orderID string) ([]*entities.Requirement, error) {
	return r.list(r.db.Where("purchase_order_id = ? AND deleted = ?", orderID, false))
}
