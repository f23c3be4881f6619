package dto

import "github.com/Rushen88/PDM-sub000/pkg/domain/entities"

// OpeningBalance is the counted stock of one item in one warehouse
type OpeningBalance struct {
	WarehouseID    string
	NomenclatureID string
	Quantity       entities.Quantity
}

// CatalogSeed is reference data loaded from outside the engine, together
// with opening stock balances
type CatalogSeed struct {
	Categories   []*entities.Category
	Suppliers    []*entities.Supplier
	Contractors  []*entities.Contractor
	Warehouses   []*entities.Warehouse
	Nomenclature []*entities.Nomenclature
	Templates    []*entities.BOMTemplate
	Stock        []OpeningBalance
}

// ImportResult summarises a catalog import
type ImportResult struct {
	Items     int
	Templates int
	// CountIDs are the inventory counts that booked the opening balances
	CountIDs []string
}
