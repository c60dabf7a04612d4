package project

import (
	"context"
	"time"

	"github.com/trezcool/fyp/core"
)

// Idea statuses
const (
	IdeaPending    = "pending"
	IdeaApproved   = "approved"
	IdeaRejected   = "rejected"
	IdeaInProgress = "in_progress"
	IdeaCompleted  = "completed"
)

var (
	// errors
	ErrNotFound = core.NewError(core.KindNotFound, "project_not_found", "project not found")
	ErrExists   = core.NewError(core.KindConflict, "project_exists", "this group already has a project")
)

type (
	// Project is the group's project record. Only the supervisor binding and the idea selection are
	// managed here; the idea approval workflow lives elsewhere.
	Project struct {
		ID                    string    `json:"id"`
		GroupID               string    `json:"group_id"`
		SupervisorID          string    `json:"supervisor_id,omitempty"`
		Department            string    `json:"department"`
		SelectedIdea          string    `json:"selected_idea,omitempty"`
		CustomIdeaTitle       string    `json:"custom_idea_title,omitempty"`
		CustomIdeaDescription string    `json:"custom_idea_description,omitempty"`
		IdeaStatus            string    `json:"idea_status"`
		CreatedAt             time.Time `json:"created_at"`
		UpdatedAt             time.Time `json:"updated_at"`
	}

	Repository interface {
		CreateProject(ctx context.Context, prj Project) (Project, error)
		GetProjectByGroup(ctx context.Context, groupID string) (Project, error)
		UpdateProject(ctx context.Context, prj Project) (Project, error)
	}
)

// ClearIdea drops the selected or custom idea: its approval belonged to the previous supervisor.
func (p *Project) ClearIdea() {
	p.SelectedIdea = ""
	p.CustomIdeaTitle = ""
	p.CustomIdeaDescription = ""
	p.IdeaStatus = IdeaPending
}
