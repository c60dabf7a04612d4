package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/fyp/core/project"
)

const projectColumns = `id, group_id, supervisor_id, department, selected_idea, custom_idea_title,
	custom_idea_description, idea_status, created_at, updated_at`

type projectRow struct {
	ID                    string      `db:"id"`
	GroupID               string      `db:"group_id"`
	SupervisorID          null.String `db:"supervisor_id"`
	Department            string      `db:"department"`
	SelectedIdea          null.String `db:"selected_idea"`
	CustomIdeaTitle       null.String `db:"custom_idea_title"`
	CustomIdeaDescription null.String `db:"custom_idea_description"`
	IdeaStatus            string      `db:"idea_status"`
	CreatedAt             time.Time   `db:"created_at"`
	UpdatedAt             time.Time   `db:"updated_at"`
}

func (r projectRow) toModel() project.Project {
	return project.Project{
		ID:                    r.ID,
		GroupID:               r.GroupID,
		SupervisorID:          r.SupervisorID.String,
		Department:            r.Department,
		SelectedIdea:          r.SelectedIdea.String,
		CustomIdeaTitle:       r.CustomIdeaTitle.String,
		CustomIdeaDescription: r.CustomIdeaDescription.String,
		IdeaStatus:            r.IdeaStatus,
		CreatedAt:             r.CreatedAt.UTC(),
		UpdatedAt:             r.UpdatedAt.UTC(),
	}
}

func optString(s string) null.String {
	return null.NewString(s, s != "")
}

type projectRepository struct {
	store
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *sqlx.DB) project.Repository {
	return &projectRepository{store: newStore(db)}
}

func (repo *projectRepository) CreateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	var row projectRow
	q := `INSERT INTO project (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + projectColumns
	err := sqlx.GetContext(ctx, repo.getExec(ctx), &row, q,
		prj.ID, prj.GroupID, optString(prj.SupervisorID), prj.Department, optString(prj.SelectedIdea),
		optString(prj.CustomIdeaTitle), optString(prj.CustomIdeaDescription), prj.IdeaStatus,
		prj.CreatedAt.UTC(), prj.UpdatedAt.UTC(),
	)
	if err != nil {
		return project.Project{}, wrap(err, "inserting project")
	}
	return row.toModel(), nil
}

func (repo *projectRepository) GetProjectByGroup(ctx context.Context, groupID string) (project.Project, error) {
	var row projectRow
	q := `SELECT ` + projectColumns + ` FROM project WHERE group_id = $1` + forUpdate(ctx)
	if err := sqlx.GetContext(ctx, repo.getExec(ctx), &row, q, groupID); err != nil {
		return project.Project{}, trapNoRowsErr(err, project.ErrNotFound, "selecting project")
	}
	return row.toModel(), nil
}

// UpdateProject saves everything but the group and the creation time.
func (repo *projectRepository) UpdateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	var row projectRow
	q := `UPDATE project
		SET supervisor_id = $2, department = $3, selected_idea = $4, custom_idea_title = $5,
			custom_idea_description = $6, idea_status = $7, updated_at = $8
		WHERE id = $1
		RETURNING ` + projectColumns
	err := sqlx.GetContext(ctx, repo.getExec(ctx), &row, q,
		prj.ID, optString(prj.SupervisorID), prj.Department, optString(prj.SelectedIdea),
		optString(prj.CustomIdeaTitle), optString(prj.CustomIdeaDescription), prj.IdeaStatus, prj.UpdatedAt.UTC(),
	)
	if err != nil {
		return project.Project{}, trapNoRowsErr(err, project.ErrNotFound, "updating project")
	}
	return row.toModel(), nil
}
