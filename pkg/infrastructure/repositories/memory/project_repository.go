package memory

import (
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/repositories"
)

type projectRepository struct{ tx *tx }

var _ repositories.ProjectRepository = (*projectRepository)(nil)

func (r *projectRepository) Get(id string) (*entities.Project, error) {
	return find(r.tx.state.projects, "project", id, copyOf[entities.Project])
}

func (r *projectRepository) Save(p *entities.Project) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.state.projects[p.ID] = copyOf(p)
	return nil
}

func (r *projectRepository) List() ([]*entities.Project, error) {
	return collect(r.tx.state.projects, nil, copyOf[entities.Project], func(a, b *entities.Project) bool {
		return a.Name < b.Name || (a.Name == b.Name && a.ID < b.ID)
	}), nil
}

type treeRepository struct{ tx *tx }

var _ repositories.TreeRepository = (*treeRepository)(nil)

func byDisplayNumber(a, b *entities.TreeNode) bool {
	return a.DisplayNumber < b.DisplayNumber || (a.DisplayNumber == b.DisplayNumber && a.ID < b.ID)
}

func (r *treeRepository) Get(id string) (*entities.TreeNode, error) {
	return find(r.tx.state.nodes, "tree node", id, (*entities.TreeNode).Clone)
}

func (r *treeRepository) Save(n *entities.TreeNode) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.state.nodes[n.ID] = n.Clone()
	return nil
}

func (r *treeRepository) Delete(id string) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.state.nodes[id]; !ok {
		return apperrors.NotFound("tree node", id)
	}
	delete(r.tx.state.nodes, id)
	return nil
}

func (r *treeRepository) ListByProject(projectID string) ([]*entities.TreeNode, error) {
	return collect(r.tx.state.nodes, func(n *entities.TreeNode) bool {
		return n.ProjectID == projectID
	}, (*entities.TreeNode).Clone, byDisplayNumber), nil
}

func (r *treeRepository) Children(parentID string) ([]*entities.TreeNode, error) {
	return collect(r.tx.state.nodes, func(n *entities.TreeNode) bool {
		return n.ParentID == parentID && parentID != ""
	}, (*entities.TreeNode).Clone, byDisplayNumber), nil
}

type sequenceRepository struct{ tx *tx }

var _ repositories.SequenceRepository = (*sequenceRepository)(nil)

// Next increments the named counter; the store's write lock serializes callers
func (r *sequenceRepository) Next(name string) (int64, error) {
	if err := r.tx.writable(); err != nil {
		return 0, err
	}
	r.tx.state.sequences[name]++
	return r.tx.state.sequences[name], nil
}
