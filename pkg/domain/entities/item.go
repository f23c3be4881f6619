package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantity is an amount of a nomenclature item expressed in its catalog unit
type Quantity = decimal.Decimal

// Qty builds a Quantity from an integer, mostly for fixtures and literals
func Qty(v int64) Quantity {
	return decimal.NewFromInt(v)
}

// MinQty returns the smaller of two quantities
func MinQty(a, b Quantity) Quantity {
	if a.LessThan(b) {
		return a
	}
	return b
}

// NonNegative clamps q at zero
func NonNegative(q Quantity) Quantity {
	if q.IsNegative() {
		return decimal.Zero
	}
	return q
}

// Category represents a catalog category of nomenclature items
type Category struct {
	ID          string
	Name        string
	IsPurchased bool
	// AllowedChildCategoryIDs restricts which categories may be added under an item of this category
	AllowedChildCategoryIDs []string
}

// AllowsChild reports whether an item of categoryID may be placed under this category
func (c *Category) AllowsChild(categoryID string) bool {
	for _, id := range c.AllowedChildCategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the category
func (c *Category) Clone() *Category {
	out := *c
	out.AllowedChildCategoryIDs = append([]string(nil), c.AllowedChildCategoryIDs...)
	return &out
}

// Nomenclature represents a catalog item that can be bought or manufactured
type Nomenclature struct {
	ID                  string
	Code                string
	Name                string
	CategoryID          string
	Unit                string
	DefaultSupplierID   string
	DefaultContractorID string // set when the item is manufactured by a contractor
	ManufacturingDays   int
	// SafetyStock overrides the planning default when set
	SafetyStock         *Quantity
}

// NewNomenclature creates a validated Nomenclature
func NewNomenclature(id, code, name, categoryID, unit string) (*Nomenclature, error) {
	if id == "" {
		return nil, fmt.Errorf("nomenclature id cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("nomenclature name cannot be empty")
	}
	if categoryID == "" {
		return nil, fmt.Errorf("nomenclature %s must belong to a category", id)
	}
	if unit == "" {
		unit = "pcs"
	}
	return &Nomenclature{
		ID:         id,
		Code:       code,
		Name:       name,
		CategoryID: categoryID,
		Unit:       unit,
	}, nil
}

// Supplier represents a vendor of purchased items
type Supplier struct {
	ID           string
	Name         string
	LeadTimeDays int
}

// Contractor represents an external manufacturer
type Contractor struct {
	ID   string
	Name string
}

// Warehouse represents a storage location holding stock positions
type Warehouse struct {
	ID   string
	Name string
}

// CounterpartyKind discriminates CounterpartyRef
type CounterpartyKind string

const (
	CounterpartyNone       CounterpartyKind = ""
	CounterpartySupplier   CounterpartyKind = "supplier"
	CounterpartyContractor CounterpartyKind = "contractor"
)

// CounterpartyRef references exactly one supplier or one contractor
type CounterpartyRef struct {
	Kind CounterpartyKind `json:"kind"`
	ID   string           `json:"id"`
}

// SupplierRef builds a supplier reference
func SupplierRef(id string) CounterpartyRef {
	if id == "" {
		return CounterpartyRef{}
	}
	return CounterpartyRef{Kind: CounterpartySupplier, ID: id}
}

// ContractorRef builds a contractor reference
func ContractorRef(id string) CounterpartyRef {
	if id == "" {
		return CounterpartyRef{}
	}
	return CounterpartyRef{Kind: CounterpartyContractor, ID: id}
}

// IsZero reports whether the reference points at nothing
func (r CounterpartyRef) IsZero() bool {
	return r.Kind == CounterpartyNone
}

// SupplierID returns the referenced supplier, if the reference is a supplier
func (r CounterpartyRef) SupplierID() (string, bool) {
	if r.Kind != CounterpartySupplier {
		return "", false
	}
	return r.ID, true
}

// ContractorID returns the referenced contractor, if the reference is a contractor
func (r CounterpartyRef) ContractorID() (string, bool) {
	if r.Kind != CounterpartyContractor {
		return "", false
	}
	return r.ID, true
}

// Validate checks the tag/ID pairing
func (r CounterpartyRef) Validate() error {
	switch r.Kind {
	case CounterpartyNone:
		if r.ID != "" {
			return fmt.Errorf("counterparty id %s given without a kind", r.ID)
		}
	case CounterpartySupplier, CounterpartyContractor:
		if r.ID == "" {
			return fmt.Errorf("%s reference requires an id", r.Kind)
		}
	default:
		return fmt.Errorf("unknown counterparty kind %q", r.Kind)
	}
	return nil
}

func (r CounterpartyRef) String() string {
	if r.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}
