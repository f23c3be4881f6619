package repositories

import "github.com/Rushen88/PDM-sub000/pkg/domain/entities"

// ProjectRepository provides access to projects
type ProjectRepository interface {
	Get(id string) (*entities.Project, error)
	Save(p *entities.Project) error
	List() ([]*entities.Project, error)
}

// TreeRepository provides access to project tree nodes
type TreeRepository interface {
	Get(id string) (*entities.TreeNode, error)
	Save(n *entities.TreeNode) error
	Delete(id string) error
	ListByProject(projectID string) ([]*entities.TreeNode, error)
	Children(parentID string) ([]*entities.TreeNode, error)
}

// SequenceRepository hands out values of named counters. Values only grow;
// a value taken by a transaction that rolls back may be skipped.
type SequenceRepository interface {
	Next(name string) (int64, error)
}
