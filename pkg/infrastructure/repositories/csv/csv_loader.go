package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Rushen88/PDM-sub000/pkg/application/dto"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

// File names read by LoadDir
const (
	CategoriesFile   = "categories.csv"
	SuppliersFile    = "suppliers.csv"
	ContractorsFile  = "contractors.csv"
	WarehousesFile   = "warehouses.csv"
	NomenclatureFile = "nomenclature.csv"
	BOMFile          = "bom.csv"
	StockFile        = "stock.csv"
)

var (
	categoriesHeader   = []string{"id", "name", "is_purchased", "allowed_children"}
	suppliersHeader    = []string{"id", "name", "lead_time_days"}
	contractorsHeader  = []string{"id", "name"}
	warehousesHeader   = []string{"id", "name"}
	nomenclatureHeader = []string{"id", "code", "name", "category_id", "unit", "default_supplier_id", "default_contractor_id", "manufacturing_days", "safety_stock"}
	bomHeader          = []string{"parent_id", "child_id", "quantity", "position"}
	stockHeader        = []string{"warehouse_id", "nomenclature_id", "quantity"}
)

// Loader handles loading catalog reference data and opening balances from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadDir reads a catalog directory. Categories, nomenclature and warehouses
// are required; the other files may be missing.
func (l *Loader) LoadDir(dir string) (*dto.CatalogSeed, error) {
	seed := &dto.CatalogSeed{}
	var err error
	if seed.Categories, err = l.LoadCategories(filepath.Join(dir, CategoriesFile)); err != nil {
		return nil, err
	}
	if seed.Warehouses, err = l.LoadWarehouses(filepath.Join(dir, WarehousesFile)); err != nil {
		return nil, err
	}
	if seed.Nomenclature, err = l.LoadNomenclature(filepath.Join(dir, NomenclatureFile)); err != nil {
		return nil, err
	}

	optional := []struct {
		file string
		load func(string) error
	}{
		{SuppliersFile, func(f string) (err error) { seed.Suppliers, err = l.LoadSuppliers(f); return }},
		{ContractorsFile, func(f string) (err error) { seed.Contractors, err = l.LoadContractors(f); return }},
		{BOMFile, func(f string) (err error) { seed.Templates, err = l.LoadBOM(f); return }},
		{StockFile, func(f string) (err error) { seed.Stock, err = l.LoadStock(f); return }},
	}
	for _, o := range optional {
		path := filepath.Join(dir, o.file)
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			continue
		}
		if err := o.load(path); err != nil {
			return nil, err
		}
	}
	return seed, nil
}

// LoadCategories loads categories; allowed_children is a |-separated list
func (l *Loader) LoadCategories(filename string) ([]*entities.Category, error) {
	records, err := readRecords(filename, "categories", categoriesHeader)
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Category, 0, len(records))
	for i, r := range records {
		purchased, err := parseBool(r[2])
		if err != nil {
			return nil, fmt.Errorf("categories CSV row %d: invalid is_purchased: %s", i+2, r[2])
		}
		out = append(out, &entities.Category{
			ID:                      r[0],
			Name:                    r[1],
			IsPurchased:             purchased,
			AllowedChildCategoryIDs: splitList(r[3]),
		})
	}
	return out, nil
}

// LoadSuppliers loads suppliers with their lead times
func (l *Loader) LoadSuppliers(filename string) ([]*entities.Supplier, error) {
	records, err := readRecords(filename, "suppliers", suppliersHeader)
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Supplier, 0, len(records))
	for i, r := range records {
		days, err := parseDays(r[2])
		if err != nil {
			return nil, fmt.Errorf("suppliers CSV row %d: invalid lead_time_days: %s", i+2, r[2])
		}
		out = append(out, &entities.Supplier{ID: r[0], Name: r[1], LeadTimeDays: days})
	}
	return out, nil
}

// LoadContractors loads contractors
func (l *Loader) LoadContractors(filename string) ([]*entities.Contractor, error) {
	records, err := readRecords(filename, "contractors", contractorsHeader)
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Contractor, 0, len(records))
	for _, r := range records {
		out = append(out, &entities.Contractor{ID: r[0], Name: r[1]})
	}
	return out, nil
}

// LoadWarehouses loads warehouses
func (l *Loader) LoadWarehouses(filename string) ([]*entities.Warehouse, error) {
	records, err := readRecords(filename, "warehouses", warehousesHeader)
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Warehouse, 0, len(records))
	for _, r := range records {
		out = append(out, &entities.Warehouse{ID: r[0], Name: r[1]})
	}
	return out, nil
}

// LoadNomenclature loads catalog items
func (l *Loader) LoadNomenclature(filename string) ([]*entities.Nomenclature, error) {
	records, err := readRecords(filename, "nomenclature", nomenclatureHeader)
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Nomenclature, 0, len(records))
	for i, r := range records {
		n, err := entities.NewNomenclature(r[0], r[1], r[2], r[3], r[4])
		if err != nil {
			return nil, fmt.Errorf("nomenclature CSV row %d: %w", i+2, err)
		}
		n.DefaultSupplierID = r[5]
		n.DefaultContractorID = r[6]
		if n.ManufacturingDays, err = parseDays(r[7]); err != nil {
			return nil, fmt.Errorf("nomenclature CSV row %d: invalid manufacturing_days: %s", i+2, r[7])
		}
		if r[8] != "" {
			safety, err := parseQuantity(r[8])
			if err != nil {
				return nil, fmt.Errorf("nomenclature CSV row %d: invalid safety_stock: %s", i+2, r[8])
			}
			n.SafetyStock = &safety
		}
		out = append(out, n)
	}
	return out, nil
}

// LoadBOM loads BOM lines and groups them into one published, active
// template per parent item
func (l *Loader) LoadBOM(filename string) ([]*entities.BOMTemplate, error) {
	records, err := readRecords(filename, "BOM", bomHeader)
	if err != nil {
		return nil, err
	}
	lines := map[string][]entities.BOMLine{}
	for i, r := range records {
		qty, err := parseQuantity(r[2])
		if err != nil {
			return nil, fmt.Errorf("BOM CSV row %d: invalid quantity: %s", i+2, r[2])
		}
		position, err := strconv.Atoi(strings.TrimSpace(r[3]))
		if err != nil {
			return nil, fmt.Errorf("BOM CSV row %d: invalid position: %s", i+2, r[3])
		}
		line, err := entities.NewBOMLine(r[1], qty, "", position)
		if err != nil {
			return nil, fmt.Errorf("BOM CSV row %d: %w", i+2, err)
		}
		lines[r[0]] = append(lines[r[0]], *line)
	}

	parents := make([]string, 0, len(lines))
	for p := range lines {
		parents = append(parents, p)
	}
	sort.Strings(parents)
	out := make([]*entities.BOMTemplate, 0, len(parents))
	for _, parent := range parents {
		children := lines[parent]
		sort.SliceStable(children, func(i, j int) bool { return children[i].Position < children[j].Position })
		tpl, err := entities.NewBOMTemplate("TPL-"+parent, parent, 1, children)
		if err != nil {
			return nil, fmt.Errorf("BOM CSV: %w", err)
		}
		tpl.Status = entities.TemplatePublished
		tpl.Active = true
		out = append(out, tpl)
	}
	return out, nil
}

// LoadStock loads opening balances
func (l *Loader) LoadStock(filename string) ([]dto.OpeningBalance, error) {
	records, err := readRecords(filename, "stock", stockHeader)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OpeningBalance, 0, len(records))
	for i, r := range records {
		qty, err := parseQuantity(r[2])
		if err != nil || qty.IsNegative() {
			return nil, fmt.Errorf("stock CSV row %d: invalid quantity: %s", i+2, r[2])
		}
		out = append(out, dto.OpeningBalance{WarehouseID: r[0], NomenclatureID: r[1], Quantity: qty})
	}
	return out, nil
}

// readRecords returns the data rows of a CSV file after checking its header
// and column count
func readRecords(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
		for j := range record {
			record[j] = strings.TrimSpace(record[j])
		}
	}
	return rows, nil
}

// Helper functions for parsing CSV records

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(strings.ToLower(s))
}

func parseDays(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	days, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if days < 0 {
		return 0, fmt.Errorf("negative day count %d", days)
	}
	return days, nil
}

func parseQuantity(s string) (entities.Quantity, error) {
	return decimal.NewFromString(s)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
