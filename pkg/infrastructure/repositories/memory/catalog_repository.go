package memory

import (
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/repositories"
)

// catalogRepository provides in-memory catalog storage
type catalogRepository struct{ tx *tx }

// Verify interface compliance
var _ repositories.CatalogRepository = (*catalogRepository)(nil)

func (r *catalogRepository) GetCategory(id string) (*entities.Category, error) {
	return find(r.tx.state.categories, "category", id, (*entities.Category).Clone)
}

func (r *catalogRepository) GetNomenclature(id string) (*entities.Nomenclature, error) {
	return find(r.tx.state.nomenclature, "nomenclature", id, copyOf[entities.Nomenclature])
}

func (r *catalogRepository) GetSupplier(id string) (*entities.Supplier, error) {
	return find(r.tx.state.suppliers, "supplier", id, copyOf[entities.Supplier])
}

func (r *catalogRepository) GetContractor(id string) (*entities.Contractor, error) {
	return find(r.tx.state.contractors, "contractor", id, copyOf[entities.Contractor])
}

func (r *catalogRepository) GetWarehouse(id string) (*entities.Warehouse, error) {
	return find(r.tx.state.warehouses, "warehouse", id, copyOf[entities.Warehouse])
}

// GetActiveTemplate returns the active template of an item
func (r *catalogRepository) GetActiveTemplate(nomenclatureID string) (*entities.BOMTemplate, error) {
	for _, tpl := range r.tx.state.templates {
		if tpl.NomenclatureID == nomenclatureID && tpl.Active {
			return tpl.Clone(), nil
		}
	}
	return nil, apperrors.NotFound("active template for", nomenclatureID)
}

func (r *catalogRepository) ListTemplates() ([]*entities.BOMTemplate, error) {
	return collect(r.tx.state.templates, nil, (*entities.BOMTemplate).Clone, func(a, b *entities.BOMTemplate) bool {
		return a.ID < b.ID
	}), nil
}

func (r *catalogRepository) ListNomenclature() ([]*entities.Nomenclature, error) {
	return collect(r.tx.state.nomenclature, nil, copyOf[entities.Nomenclature], func(a, b *entities.Nomenclature) bool {
		return a.Code < b.Code || (a.Code == b.Code && a.ID < b.ID)
	}), nil
}

func (r *catalogRepository) ListWarehouses() ([]*entities.Warehouse, error) {
	return collect(r.tx.state.warehouses, nil, copyOf[entities.Warehouse], func(a, b *entities.Warehouse) bool {
		return a.ID < b.ID
	}), nil
}

func (r *catalogRepository) SaveCategory(c *entities.Category) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.state.categories[c.ID] = c.Clone()
	return nil
}

func (r *catalogRepository) SaveNomenclature(n *entities.Nomenclature) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.state.nomenclature[n.ID] = copyOf(n)
	return nil
}

func (r *catalogRepository) SaveSupplier(s *entities.Supplier) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.state.suppliers[s.ID] = copyOf(s)
	return nil
}

func (r *catalogRepository) SaveContractor(c *entities.Contractor) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.state.contractors[c.ID] = copyOf(c)
	return nil
}

func (r *catalogRepository) SaveWarehouse(w *entities.Warehouse) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.state.warehouses[w.ID] = copyOf(w)
	return nil
}

func (r *catalogRepository) SaveTemplate(t *entities.BOMTemplate) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.state.templates[t.ID] = t.Clone()
	return nil
}
