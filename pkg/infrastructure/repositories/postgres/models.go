package postgres

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

// Table models. Quantities are numeric columns; document lines, batch draws
// and other nested lists are JSONB columns.

type categoryModel struct {
	ID                      string `gorm:"primaryKey;size:64"`
	Name                    string `gorm:"size:200;not null"`
	IsPurchased             bool
	AllowedChildCategoryIDs datatypes.JSONSlice[string]
}

func (categoryModel) TableName() string { return "pdm_categories" }

type nomenclatureModel struct {
	ID                  string `gorm:"primaryKey;size:64"`
	Code                string `gorm:"size:64;index"`
	Name                string `gorm:"size:200;not null"`
	CategoryID          string `gorm:"size:64;index"`
	Unit                string `gorm:"size:20"`
	DefaultSupplierID   string `gorm:"size:64"`
	DefaultContractorID string `gorm:"size:64"`
	ManufacturingDays   int
	SafetyStock         *decimal.Decimal `gorm:"type:numeric(18,4)"`
}

func (nomenclatureModel) TableName() string { return "pdm_nomenclature" }

type supplierModel struct {
	ID           string `gorm:"primaryKey;size:64"`
	Name         string `gorm:"size:200"`
	LeadTimeDays int
}

func (supplierModel) TableName() string { return "pdm_suppliers" }

type contractorModel struct {
	ID   string `gorm:"primaryKey;size:64"`
	Name string `gorm:"size:200"`
}

func (contractorModel) TableName() string { return "pdm_contractors" }

type warehouseModel struct {
	ID   string `gorm:"primaryKey;size:64"`
	Name string `gorm:"size:200"`
}

func (warehouseModel) TableName() string { return "pdm_warehouses" }

type templateModel struct {
	ID             string `gorm:"primaryKey;size:64"`
	NomenclatureID string `gorm:"size:64;index"`
	Version        int
	Status         string `gorm:"size:20"`
	Active         bool   `gorm:"index"`
	Lines          datatypes.JSONSlice[entities.BOMLine]
}

func (templateModel) TableName() string { return "pdm_bom_templates" }

type projectModel struct {
	ID          string `gorm:"primaryKey;size:64"`
	Name        string `gorm:"size:200"`
	Status      string `gorm:"size:20"`
	DueDate     *time.Time
	RootNodeID  string `gorm:"size:64"`
	CompletedAt *time.Time
	CreatedAt   time.Time
}

func (projectModel) TableName() string { return "pdm_projects" }

type nodeModel struct {
	ID                   string `gorm:"primaryKey;size:64"`
	ProjectID            string `gorm:"size:64;index"`
	ParentID             string `gorm:"size:64;index"`
	NomenclatureID       string `gorm:"size:64;index"`
	CategoryID           string `gorm:"size:64"`
	Name                 string `gorm:"size:200"`
	DisplayNumber        int64  `gorm:"uniqueIndex"`
	Quantity             decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	Unit                 string          `gorm:"size:20"`
	Purchased            bool
	SourceKind           string `gorm:"size:20"`
	SourceID             string `gorm:"size:64"`
	ResponsibleID        string `gorm:"size:64"`
	ManufacturingStatus  string `gorm:"size:40"`
	PurchaseStatus       string `gorm:"size:40"`
	PlannedStart         *time.Time
	PlannedEnd           *time.Time
	ActualStart          *time.Time
	ActualEnd            *time.Time
	RequiredDate         *time.Time
	OrderByDate          *time.Time
	OrderedAt            *time.Time
	ExpectedDeliveryDate *time.Time
	Problem              bool
	ProblemReasons       datatypes.JSONSlice[entities.ProblemReason]
	LastProblemReason    string `gorm:"size:200"`
	SplitFromID          string `gorm:"size:64"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (nodeModel) TableName() string { return "pdm_tree_nodes" }

type requirementModel struct {
	ID              string          `gorm:"primaryKey;size:64"`
	NomenclatureID  string          `gorm:"size:64;index"`
	ProjectID       string          `gorm:"size:64;index"`
	NodeID          string          `gorm:"size:64;index"`
	TotalRequired   decimal.Decimal `gorm:"type:numeric(18,4)"`
	TotalAvailable  decimal.Decimal `gorm:"type:numeric(18,4)"`
	TotalReserved   decimal.Decimal `gorm:"type:numeric(18,4)"`
	ReservedForNode decimal.Decimal `gorm:"type:numeric(18,4)"`
	TotalInOrder    decimal.Decimal `gorm:"type:numeric(18,4)"`
	SafetyStock     decimal.Decimal `gorm:"type:numeric(18,4)"`
	ToOrder         decimal.Decimal `gorm:"type:numeric(18,4)"`
	Status          string          `gorm:"size:40"`
	PurchaseOrderID string          `gorm:"size:64;index"`
	OrderByDate     *time.Time
	Problem         bool
	ProblemReasons  datatypes.JSONSlice[entities.ProblemReason]
	Deleted         bool `gorm:"index"`
	DeletedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (requirementModel) TableName() string { return "pdm_requirements" }

type sequenceModel struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value int64
}

func (sequenceModel) TableName() string { return "pdm_sequences" }

type positionModel struct {
	ID               string          `gorm:"primaryKey;size:64"`
	WarehouseID      string          `gorm:"size:64;uniqueIndex:idx_position_wh_item"`
	NomenclatureID   string          `gorm:"size:64;uniqueIndex:idx_position_wh_item;index"`
	Quantity         decimal.Decimal `gorm:"type:numeric(18,4);not null;check:quantity >= 0"`
	ReservedQuantity decimal.Decimal `gorm:"type:numeric(18,4);not null;check:reserved_quantity >= 0"`
	UpdatedAt        time.Time
}

func (positionModel) TableName() string { return "pdm_stock_positions" }

type batchModel struct {
	ID              string `gorm:"primaryKey;size:64"`
	PositionID      string `gorm:"size:64;index"`
	ReceiptDate     time.Time
	InitialQuantity decimal.Decimal `gorm:"type:numeric(18,4)"`
	CurrentQuantity decimal.Decimal `gorm:"type:numeric(18,4)"`
	DocType         string          `gorm:"size:40"`
	DocID           string          `gorm:"size:64"`
	DocLineID       string          `gorm:"size:64"`
}

func (batchModel) TableName() string { return "pdm_stock_batches" }

type reservationModel struct {
	ID               string          `gorm:"primaryKey;size:64"`
	PositionID       string          `gorm:"size:64;index"`
	NodeID           string          `gorm:"size:64;index"`
	ProjectID        string          `gorm:"size:64"`
	NomenclatureID   string          `gorm:"size:64;index"`
	Quantity         decimal.Decimal `gorm:"type:numeric(18,4)"`
	ConsumedQuantity decimal.Decimal `gorm:"type:numeric(18,4)"`
	Status           string          `gorm:"size:20;index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (reservationModel) TableName() string { return "pdm_stock_reservations" }

type movementModel struct {
	ID               string `gorm:"primaryKey;size:64"`
	PositionID       string `gorm:"size:64;index"`
	WarehouseID      string `gorm:"size:64"`
	NomenclatureID   string `gorm:"size:64"`
	Type             string `gorm:"size:20"`
	Quantity         decimal.Decimal `gorm:"type:numeric(18,4)"`
	BalanceAfter     decimal.Decimal `gorm:"type:numeric(18,4)"`
	DocType          string          `gorm:"size:40;index:idx_movement_doc"`
	DocID            string          `gorm:"size:64;index:idx_movement_doc"`
	DocLineID        string          `gorm:"size:64"`
	NodeID           string          `gorm:"size:64"`
	ReservationID    string          `gorm:"size:64"`
	ReservedConsumed decimal.Decimal `gorm:"type:numeric(18,4)"`
	BatchDraws       datatypes.JSONSlice[entities.BatchDraw]
	ReversesID       string `gorm:"size:64"`
	CreatedAt        time.Time `gorm:"index"`
}

func (movementModel) TableName() string { return "pdm_stock_movements" }

type orderModel struct {
	ID                   string `gorm:"primaryKey;size:64"`
	Number               string `gorm:"size:64"`
	SupplierID           string `gorm:"size:64"`
	Status               string `gorm:"size:40"`
	OrderDate            *time.Time
	ExpectedDeliveryDate *time.Time
	Lines                datatypes.JSONSlice[entities.PurchaseOrderLine]
	ConfirmedAt          *time.Time
	Deleted              bool `gorm:"index"`
	DeletedAt            *time.Time
	CreatedAt            time.Time
}

func (orderModel) TableName() string { return "pdm_purchase_orders" }

type receiptModel struct {
	ID          string `gorm:"primaryKey;size:64"`
	Number      string `gorm:"size:64"`
	OrderID     string `gorm:"size:64;index"`
	WarehouseID string `gorm:"size:64"`
	ReceiptDate time.Time
	Status      string `gorm:"size:40"`
	Lines       datatypes.JSONSlice[entities.GoodsReceiptLine]
	ConfirmedAt *time.Time
	CreatedAt   time.Time
}

func (receiptModel) TableName() string { return "pdm_goods_receipts" }

type writeOffModel struct {
	ID           string `gorm:"primaryKey;size:64"`
	Number       string `gorm:"size:64"`
	ContractorID string `gorm:"size:64"`
	WarehouseID  string `gorm:"size:64"`
	TargetNodeID string `gorm:"size:64"`
	Status       string `gorm:"size:40"`
	Lines        datatypes.JSONSlice[entities.ContractorWriteOffLine]
	ConfirmedAt  *time.Time
	CreatedAt    time.Time
}

func (writeOffModel) TableName() string { return "pdm_contractor_write_offs" }

type contractorReceiptModel struct {
	ID           string `gorm:"primaryKey;size:64"`
	Number       string `gorm:"size:64"`
	ContractorID string `gorm:"size:64"`
	WarehouseID  string `gorm:"size:64"`
	ReceiptDate  time.Time
	Status       string `gorm:"size:40"`
	Lines        datatypes.JSONSlice[entities.ContractorReceiptLine]
	ConfirmedAt  *time.Time
	CreatedAt    time.Time
}

func (contractorReceiptModel) TableName() string { return "pdm_contractor_receipts" }

type transferModel struct {
	ID              string `gorm:"primaryKey;size:64"`
	Number          string `gorm:"size:64"`
	FromWarehouseID string `gorm:"size:64"`
	ToWarehouseID   string `gorm:"size:64"`
	Status          string `gorm:"size:40"`
	Lines           datatypes.JSONSlice[entities.StockTransferLine]
	ShippedAt       *time.Time
	ReceivedAt      *time.Time
	CreatedAt       time.Time
}

func (transferModel) TableName() string { return "pdm_stock_transfers" }

type countModel struct {
	ID          string `gorm:"primaryKey;size:64"`
	Number      string `gorm:"size:64"`
	WarehouseID string `gorm:"size:64"`
	Status      string `gorm:"size:40"`
	Lines       datatypes.JSONSlice[entities.InventoryCountLine]
	CompletedAt *time.Time
	CreatedAt   time.Time
}

func (countModel) TableName() string { return "pdm_inventory_counts" }

// allModels lists every table for AutoMigrate
func allModels() []any {
	return []any{
		&categoryModel{}, &nomenclatureModel{}, &supplierModel{}, &contractorModel{}, &warehouseModel{},
		&templateModel{}, &projectModel{}, &nodeModel{}, &requirementModel{}, &sequenceModel{},
		&positionModel{}, &batchModel{}, &reservationModel{}, &movementModel{},
		&orderModel{}, &receiptModel{}, &writeOffModel{}, &contractorReceiptModel{},
		&transferModel{}, &countModel{},
	}
}
