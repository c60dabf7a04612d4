package dummydb

import (
	"context"

	"github.com/trezcool/fyp/core/group"
	"github.com/trezcool/fyp/core/project"
)

type projectRepository struct {
	db *DB
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *DB) project.Repository {
	return &projectRepository{db: db}
}

func (repo *projectRepository) CreateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		if _, ok := t.groups[prj.GroupID]; !ok {
			return group.ErrNotFound
		}
		for _, p := range t.projects {
			if p.GroupID == prj.GroupID {
				return project.ErrExists
			}
		}
		t.projects[prj.ID] = prj
		return nil
	})
	if err != nil {
		return project.Project{}, err
	}
	return prj, nil
}

func (repo *projectRepository) GetProjectByGroup(ctx context.Context, groupID string) (project.Project, error) {
	var prj project.Project
	err := repo.db.read(ctx, func(t *tables) error {
		for _, p := range t.projects {
			if p.GroupID == groupID {
				prj = p
				return nil
			}
		}
		return project.ErrNotFound
	})
	return prj, err
}

func (repo *projectRepository) UpdateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		orig, ok := t.projects[prj.ID]
		if !ok {
			return project.ErrNotFound
		}
		prj.GroupID = orig.GroupID
		prj.CreatedAt = orig.CreatedAt
		t.projects[prj.ID] = prj
		return nil
	})
	if err != nil {
		return project.Project{}, err
	}
	return prj, nil
}
