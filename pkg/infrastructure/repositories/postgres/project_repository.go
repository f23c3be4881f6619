package postgres

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/repositories"
)

type projectRepository struct{ db *gorm.DB }

var _ repositories.ProjectRepository = (*projectRepository)(nil)

func (r *projectRepository) Get(id string) (*entities.Project, error) {
	var m projectModel
	if err := first(r.db, &m, "project", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r *projectRepository) Save(p *entities.Project) error {
	return r.db.Save(toProjectModel(p)).Error
}

func (r *projectRepository) List() ([]*entities.Project, error) {
	var rows []projectModel
	if err := r.db.Order("name, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapAll(rows, (*projectModel).entity), nil
}

type treeRepository struct{ db *gorm.DB }

var _ repositories.TreeRepository = (*treeRepository)(nil)

func (r *treeRepository) Get(id string) (*entities.TreeNode, error) {
	var m nodeModel
	if err := first(r.db, &m, "tree node", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r *treeRepository) Save(n *entities.TreeNode) error {
	return r.db.Save(toNodeModel(n)).Error
}

func (r *treeRepository) Delete(id string) error {
	res := r.db.Where("id = ?", id).Delete(&nodeModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("tree node", id)
	}
	return nil
}

func (r *treeRepository) ListByProject(projectID string) ([]*entities.TreeNode, error) {
	var rows []nodeModel
	if err := r.db.Where("project_id = ?", projectID).Order("display_number, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapAll(rows, (*nodeModel).entity), nil
}

func (r *treeRepository) Children(parentID string) ([]*entities.TreeNode, error) {
	if parentID == "" {
		return []*entities.TreeNode{}, nil
	}
	var rows []nodeModel
	if err := r.db.Where("parent_id = ?", parentID).Order("display_number, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapAll(rows, (*nodeModel).entity), nil
}

type sequenceRepository struct{ db *gorm.DB }

var _ repositories.SequenceRepository = (*sequenceRepository)(nil)

// Next increments a counter row under FOR UPDATE in its own short
// transaction, so the row lock is released before the caller commits.
// Numbers taken by a caller that later rolls back are not reused.
func (r *sequenceRepository) Next(name string) (int64, error) {
	var value int64
	err := r.db.Transaction(func(db *gorm.DB) error {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&sequenceModel{Name: name}).Error; err != nil {
			return err
		}
		var seq sequenceModel
		if err := first(forUpdate(db), &seq, "sequence", name, "name = ?", name); err != nil {
			return err
		}
		seq.Value++
		if err := db.Model(&sequenceModel{}).Where("name = ?", name).Update("value", seq.Value).Error; err != nil {
			return err
		}
		value = seq.Value
		return nil
	})
	return value, err
}
