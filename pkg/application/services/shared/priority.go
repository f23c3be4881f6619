package shared

import (
	"sort"

	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

// PriorityEntry pairs a requirement with the names it is ordered by
type PriorityEntry struct {
	Requirement *entities.Requirement
	ProjectName string
	NodeName    string
}

// SortByPriority orders requirements earliest need first: order-by date
// ascending with undated rows last, then project name, node name and ID.
func SortByPriority(entries []PriorityEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return lessPriority(entries[i], entries[j])
	})
}

func lessPriority(a, b PriorityEntry) bool {
	da, db := a.Requirement.OrderByDate, b.Requirement.OrderByDate
	switch {
	case da != nil && db == nil:
		return true
	case da == nil && db != nil:
		return false
	case da != nil && db != nil && !da.Equal(*db):
		return da.Before(*db)
	}
	if a.ProjectName != b.ProjectName {
		return a.ProjectName < b.ProjectName
	}
	if a.NodeName != b.NodeName {
		return a.NodeName < b.NodeName
	}
	return a.Requirement.ID < b.Requirement.ID
}

// PriorityEntries resolves project and node names of requirements through tx.
// Rows whose node or project is gone keep empty names.
func PriorityEntries(s *Scope, reqs []*entities.Requirement) []PriorityEntry {
	projects := map[string]string{}
	out := make([]PriorityEntry, 0, len(reqs))
	for _, r := range reqs {
		name, ok := projects[r.ProjectID]
		if !ok {
			if p, err := s.Tx.Projects().Get(r.ProjectID); err == nil {
				name = p.Name
			}
			projects[r.ProjectID] = name
		}
		entry := PriorityEntry{Requirement: r, ProjectName: name}
		if n, err := s.Tx.Tree().Get(r.NodeID); err == nil {
			entry.NodeName = n.Name
		}
		out = append(out, entry)
	}
	return out
}
