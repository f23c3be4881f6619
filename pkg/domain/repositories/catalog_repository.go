package repositories

import "github.com/Rushen88/PDM-sub000/pkg/domain/entities"

// CatalogRepository provides access to reference data maintained outside the engine
type CatalogRepository interface {
	GetCategory(id string) (*entities.Category, error)
	GetNomenclature(id string) (*entities.Nomenclature, error)
	GetSupplier(id string) (*entities.Supplier, error)
	GetContractor(id string) (*entities.Contractor, error)
	GetWarehouse(id string) (*entities.Warehouse, error)

	// GetActiveTemplate returns the single active template of a manufactured item
	GetActiveTemplate(nomenclatureID string) (*entities.BOMTemplate, error)
	ListTemplates() ([]*entities.BOMTemplate, error)
	ListNomenclature() ([]*entities.Nomenclature, error)
	ListWarehouses() ([]*entities.Warehouse, error)

	SaveCategory(c *entities.Category) error
	SaveNomenclature(n *entities.Nomenclature) error
	SaveSupplier(s *entities.Supplier) error
	SaveContractor(c *entities.Contractor) error
	SaveWarehouse(w *entities.Warehouse) error
	SaveTemplate(t *entities.BOMTemplate) error
}
