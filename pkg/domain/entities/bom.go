package entities

import "fmt"

// TemplateStatus is the publication state of a BOM template
type TemplateStatus string

const (
	TemplateDraft     TemplateStatus = "draft"
	TemplatePublished TemplateStatus = "published"
	TemplateArchived  TemplateStatus = "archived"
)

// BOMLine represents a single child position of a BOM template
type BOMLine struct {
	ChildNomenclatureID string   `json:"child_nomenclature_id"`
	Quantity            Quantity `json:"quantity"`
	Unit                string   `json:"unit"`
	Position            int      `json:"position"`
}

// NewBOMLine creates a validated BOMLine
func NewBOMLine(childID string, quantity Quantity, unit string, position int) (*BOMLine, error) {
	if childID == "" {
		return nil, fmt.Errorf("child nomenclature cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("quantity per must be positive, got %s", quantity)
	}
	if position <= 0 {
		return nil, fmt.Errorf("position must be positive, got %d", position)
	}
	return &BOMLine{
		ChildNomenclatureID: childID,
		Quantity:            quantity,
		Unit:                unit,
		Position:            position,
	}, nil
}

// BOMTemplate is the bill of materials of one manufactured nomenclature item.
// Published templates are immutable; at most one template per item is active.
type BOMTemplate struct {
	ID             string
	NomenclatureID string
	Version        int
	Status         TemplateStatus
	Active         bool
	Lines          []BOMLine
}

// NewBOMTemplate creates a validated template. Duplicate children are rejected
// since a parent→child pair may repeat only across distinct templates.
func NewBOMTemplate(id, nomenclatureID string, version int, lines []BOMLine) (*BOMTemplate, error) {
	if id == "" {
		return nil, fmt.Errorf("template id cannot be empty")
	}
	if nomenclatureID == "" {
		return nil, fmt.Errorf("template %s has no root nomenclature", id)
	}
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if line.ChildNomenclatureID == nomenclatureID {
			return nil, fmt.Errorf("template %s lists its own root %s as a child", id, nomenclatureID)
		}
		if seen[line.ChildNomenclatureID] {
			return nil, fmt.Errorf("template %s repeats child %s", id, line.ChildNomenclatureID)
		}
		seen[line.ChildNomenclatureID] = true
	}
	return &BOMTemplate{
		ID:             id,
		NomenclatureID: nomenclatureID,
		Version:        version,
		Status:         TemplateDraft,
		Lines:          append([]BOMLine(nil), lines...),
	}, nil
}

// Clone returns a deep copy of the template
func (t *BOMTemplate) Clone() *BOMTemplate {
	out := *t
	out.Lines = append([]BOMLine(nil), t.Lines...)
	return &out
}
