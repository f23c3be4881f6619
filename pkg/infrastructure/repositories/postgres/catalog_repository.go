package postgres

import (
	"gorm.io/gorm"

	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/repositories"
)

type catalogRepository struct{ db *gorm.DB }

var _ repositories.CatalogRepository = (*catalogRepository)(nil)

func (r *catalogRepository) GetCategory(id string) (*entities.Category, error) {
	var m categoryModel
	if err := first(r.db, &m, "category", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r *catalogRepository) GetNomenclature(id string) (*entities.Nomenclature, error) {
	var m nomenclatureModel
	if err := first(r.db, &m, "nomenclature", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r *catalogRepository) GetSupplier(id string) (*entities.Supplier, error) {
	var m supplierModel
	if err := first(r.db, &m, "supplier", id, "id = ?", id); err != nil {
		return nil, err
	}
	return &entities.Supplier{ID: m.ID, Name: m.Name, LeadTimeDays: m.LeadTimeDays}, nil
}

func (r *catalogRepository) GetContractor(id string) (*entities.Contractor, error) {
	var m contractorModel
	if err := first(r.db, &m, "contractor", id, "id = ?", id); err != nil {
		return nil, err
	}
	return &entities.Contractor{ID: m.ID, Name: m.Name}, nil
}

func (r *catalogRepository) GetWarehouse(id string) (*entities.Warehouse, error) {
	var m warehouseModel
	if err := first(r.db, &m, "warehouse", id, "id = ?", id); err != nil {
		return nil, err
	}
	return &entities.Warehouse{ID: m.ID, Name: m.Name}, nil
}

func (r *catalogRepository) GetActiveTemplate(nomenclatureID string) (*entities.BOMTemplate, error) {
	var m templateModel
	if err := first(r.db, &m, "active template for", nomenclatureID, "nomenclature_id = ? AND active = ?", nomenclatureID, true); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r *catalogRepository) ListTemplates() ([]*entities.BOMTemplate, error) {
	var rows []templateModel
	if err := r.db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapAll(rows, (*templateModel).entity), nil
}

func (r *catalogRepository) ListNomenclature() ([]*entities.Nomenclature, error) {
	var rows []nomenclatureModel
	if err := r.db.Order("code, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapAll(rows, (*nomenclatureModel).entity), nil
}

func (r *catalogRepository) ListWarehouses() ([]*entities.Warehouse, error) {
	var rows []warehouseModel
	if err := r.db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapAll(rows, func(m *warehouseModel) *entities.Warehouse {
		return &entities.Warehouse{ID: m.ID, Name: m.Name}
	}), nil
}

func (r *catalogRepository) SaveCategory(c *entities.Category) error {
	return r.db.Save(toCategoryModel(c)).Error
}

func (r *catalogRepository) SaveNomenclature(n *entities.Nomenclature) error {
	return r.db.Save(toNomenclatureModel(n)).Error
}

func (r *catalogRepository) SaveSupplier(s *entities.Supplier) error {
	return r.db.Save(&supplierModel{ID: s.ID, Name: s.Name, LeadTimeDays: s.LeadTimeDays}).Error
}

func (r *catalogRepository) SaveContractor(c *entities.Contractor) error {
	return r.db.Save(&contractorModel{ID: c.ID, Name: c.Name}).Error
}

func (r *catalogRepository) SaveWarehouse(w *entities.Warehouse) error {
	return r.db.Save(&warehouseModel{ID: w.ID, Name: w.Name}).Error
}

func (r *catalogRepository) SaveTemplate(t *entities.BOMTemplate) error {
	return r.db.Save(toTemplateModel(t)).Error
}
