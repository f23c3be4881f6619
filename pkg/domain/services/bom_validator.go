package services

import (
	"fmt"
	"sort"

	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

// BOMValidator provides validation of catalog BOM templates
type BOMValidator struct{}

// NewBOMValidator creates a new BOM validator
func NewBOMValidator() *BOMValidator {
	return &BOMValidator{}
}

// ValidationResult contains the results of template validation
type ValidationResult struct {
	HasCycles  bool
	CyclePaths [][]string
	Errors     []string
}

// Valid reports whether no problems were found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// CatalogView is the read-only slice of the catalog the validator needs
type CatalogView struct {
	Nomenclature map[string]*entities.Nomenclature
	Categories   map[string]*entities.Category
}

// ValidateTemplates checks the active template graph: unknown children, purchased
// items with templates, several active templates per item and cycles that would
// make tree expansion endless.
func (v *BOMValidator) ValidateTemplates(templates []*entities.BOMTemplate, catalog CatalogView) *ValidationResult {
	result := &ValidationResult{
		CyclePaths: make([][]string, 0),
		Errors:     make([]string, 0),
	}

	active := make(map[string]*entities.BOMTemplate)
	for _, tpl := range templates {
		if !tpl.Active {
			continue
		}
		if existing, ok := active[tpl.NomenclatureID]; ok {
			result.Errors = append(result.Errors, fmt.Sprintf("item %s has several active templates: %s, %s", tpl.NomenclatureID, existing.ID, tpl.ID))
			continue
		}
		active[tpl.NomenclatureID] = tpl
	}

	adjacency := make(map[string][]string)
	for _, root := range sortedKeys(active) {
		tpl := active[root]
		if item, ok := catalog.Nomenclature[root]; ok {
			if cat, ok := catalog.Categories[item.CategoryID]; ok && cat.IsPurchased {
				result.Errors = append(result.Errors, fmt.Sprintf("purchased item %s must not have a template (%s)", root, tpl.ID))
			}
		}
		for _, line := range tpl.Lines {
			if _, ok := catalog.Nomenclature[line.ChildNomenclatureID]; !ok {
				result.Errors = append(result.Errors, fmt.Sprintf("template %s references unknown item %s", tpl.ID, line.ChildNomenclatureID))
				continue
			}
			adjacency[root] = append(adjacency[root], line.ChildNomenclatureID)
		}
	}

	result.CyclePaths = v.detectCycles(adjacency)
	result.HasCycles = len(result.CyclePaths) > 0
	for _, cycle := range result.CyclePaths {
		result.Errors = append(result.Errors, fmt.Sprintf("BOM cycle detected: %v", cycle))
	}
	return result
}

// detectCycles uses DFS to find cycles in the template graph
func (v *BOMValidator) detectCycles(adjacency map[string][]string) [][]string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	cycles := make([][]string, 0)

	for _, parent := range sortedKeys(adjacency) {
		if !visited[parent] {
			v.dfsDetectCycle(parent, adjacency, visited, onStack, nil, &cycles)
		}
	}
	return cycles
}

func (v *BOMValidator) dfsDetectCycle(
	current string,
	adjacency map[string][]string,
	visited, onStack map[string]bool,
	path []string,
	cycles *[][]string,
) {
	visited[current] = true
	onStack[current] = true
	path = append(path, current)

	for _, child := range adjacency[current] {
		if !visited[child] {
			v.dfsDetectCycle(child, adjacency, visited, onStack, path, cycles)
			continue
		}
		if !onStack[child] {
			continue
		}
		for i, item := range path {
			if item == child {
				cycle := append(append([]string(nil), path[i:]...), child)
				*cycles = append(*cycles, cycle)
				break
			}
		}
	}

	onStack[current] = false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
