package repositories

import "github.com/Rushen88/PDM-sub000/pkg/domain/entities"

// RequirementRepository provides access to requirement rows.
// Tombstoned rows are excluded unless includeDeleted is set.
type RequirementRepository interface {
	Get(id string) (*entities.Requirement, error)
	Save(r *entities.Requirement) error
	FindByNode(nodeID string) (*entities.Requirement, error)
	ListByProject(projectID string, includeDeleted bool) ([]*entities.Requirement, error)
	ListOpenByNomenclature(nomenclatureID string) ([]*entities.Requirement, error)
	ListByOrder(orderID string) ([]*entities.Requirement, error)
}
