package orchestration

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Rushen88/PDM-sub000/pkg/application/dto"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/documents"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/repositories"
	"github.com/Rushen88/PDM-sub000/pkg/domain/services"
)

// ImportCatalog stores reference data and books opening balances, one
// inventory count per warehouse. The stored template graph is validated as a
// whole; any problem rolls the import back.
func (e *Engine) ImportCatalog(ctx context.Context, seed *dto.CatalogSeed) (*dto.ImportResult, error) {
	return write(ctx, e, "import_catalog", func(sc *shared.Scope) (*dto.ImportResult, error) {
		if err := saveCatalog(sc.Tx.Catalog(), seed); err != nil {
			return nil, err
		}
		if err := validateCatalog(sc.Tx.Catalog()); err != nil {
			return nil, err
		}

		result := &dto.ImportResult{Items: len(seed.Nomenclature), Templates: len(seed.Templates)}
		byWarehouse := map[string][]documents.CountLineInput{}
		for _, b := range seed.Stock {
			byWarehouse[b.WarehouseID] = append(byWarehouse[b.WarehouseID], documents.CountLineInput{
				NomenclatureID:  b.NomenclatureID,
				CountedQuantity: b.Quantity,
			})
		}
		warehouses := make([]string, 0, len(byWarehouse))
		for wh := range byWarehouse {
			warehouses = append(warehouses, wh)
		}
		sort.Strings(warehouses)
		for _, wh := range warehouses {
			count, err := e.documents.CreateInventoryCount(sc, documents.InventoryCountInput{WarehouseID: wh, Lines: byWarehouse[wh]})
			if err != nil {
				return nil, fmt.Errorf("opening balance of %s: %w", wh, err)
			}
			if _, err := e.documents.CompleteInventoryCount(sc, count.ID); err != nil {
				return nil, fmt.Errorf("opening balance of %s: %w", wh, err)
			}
			result.CountIDs = append(result.CountIDs, count.ID)
		}
		e.logger.Info("catalog imported",
			zap.Int("items", result.Items),
			zap.Int("templates", result.Templates),
			zap.Int("counts", len(result.CountIDs)))
		return result, nil
	})
}

func saveCatalog(c repositories.CatalogRepository, seed *dto.CatalogSeed) error {
	for _, cat := range seed.Categories {
		if err := c.SaveCategory(cat); err != nil {
			return err
		}
	}
	for _, s := range seed.Suppliers {
		if err := c.SaveSupplier(s); err != nil {
			return err
		}
	}
	for _, con := range seed.Contractors {
		if err := c.SaveContractor(con); err != nil {
			return err
		}
	}
	for _, w := range seed.Warehouses {
		if err := c.SaveWarehouse(w); err != nil {
			return err
		}
	}
	for _, n := range seed.Nomenclature {
		if err := c.SaveNomenclature(n); err != nil {
			return err
		}
	}
	for _, t := range seed.Templates {
		if err := c.SaveTemplate(t); err != nil {
			return err
		}
	}
	return nil
}

// validateCatalog checks every stored item against its references and runs
// the template graph through the BOM validator
func validateCatalog(c repositories.CatalogRepository) error {
	items, err := c.ListNomenclature()
	if err != nil {
		return err
	}
	view := services.CatalogView{
		Nomenclature: make(map[string]*entities.Nomenclature, len(items)),
		Categories:   map[string]*entities.Category{},
	}
	var problems []string
	for _, n := range items {
		view.Nomenclature[n.ID] = n
		if _, ok := view.Categories[n.CategoryID]; !ok {
			cat, err := c.GetCategory(n.CategoryID)
			switch {
			case apperrors.IsNotFound(err):
				problems = append(problems, fmt.Sprintf("item %s has unknown category %s", n.ID, n.CategoryID))
				continue
			case err != nil:
				return err
			}
			view.Categories[n.CategoryID] = cat
		}
		if n.DefaultSupplierID != "" {
			if _, err := c.GetSupplier(n.DefaultSupplierID); apperrors.IsNotFound(err) {
				problems = append(problems, fmt.Sprintf("item %s has unknown supplier %s", n.ID, n.DefaultSupplierID))
			} else if err != nil {
				return err
			}
		}
		if n.DefaultContractorID != "" {
			if _, err := c.GetContractor(n.DefaultContractorID); apperrors.IsNotFound(err) {
				problems = append(problems, fmt.Sprintf("item %s has unknown contractor %s", n.ID, n.DefaultContractorID))
			} else if err != nil {
				return err
			}
		}
	}

	templates, err := c.ListTemplates()
	if err != nil {
		return err
	}
	result := services.NewBOMValidator().ValidateTemplates(templates, view)
	problems = append(problems, result.Errors...)
	if len(problems) > 0 {
		return &apperrors.Error{Code: apperrors.CodeValidation, Message: "catalog is inconsistent", Details: problems}
	}
	return nil
}
