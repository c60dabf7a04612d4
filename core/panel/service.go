package panel

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/supervisor"
)

var (
	// errors
	ErrNotFound              = core.NewError(core.KindNotFound, "panel_not_found", "evaluation panel not found")
	ErrMemberNotFound        = core.NewError(core.KindNotFound, "panel_member_not_found", "one or more faculty members not found")
	ErrCrossDepartmentMember = core.NewError(core.KindConflict, "cross_department_member", "all panel members must be from the panel's department")
	ErrInUse                 = core.NewError(core.KindConflict, "panel_in_use", "evaluation panel is referenced by presentation schedules")
)

type (
	Repository interface {
		CreatePanel(ctx context.Context, pnl Panel) (Panel, error)
		GetPanelByID(ctx context.Context, id string) (Panel, error)
		QueryPanels(ctx context.Context, filter QueryFilter) ([]Panel, error)
		UpdatePanel(ctx context.Context, pnl Panel) (Panel, error)
		// DeletePanel fails with ErrInUse while a schedule references the panel.
		DeletePanel(ctx context.Context, id string) error
	}

	Service struct {
		repo        Repository
		supervisors supervisor.Repository
	}
)

func NewService(repo Repository, supervisors supervisor.Repository) *Service {
	return &Service{repo: repo, supervisors: supervisors}
}

// checkMembers makes sure every member exists and belongs to department.
func (svc *Service) checkMembers(ctx context.Context, department string, memberIDs []string) error {
	sups, err := svc.supervisors.GetSupervisorsByID(ctx, memberIDs...)
	if err != nil {
		return errors.Wrap(err, "finding panel members")
	}
	if len(sups) != len(memberIDs) {
		return ErrMemberNotFound
	}
	for _, sup := range sups {
		if sup.Department != department {
			return ErrCrossDepartmentMember.WithMessage(fmt.Sprintf("all panel members must be from %s department", department))
		}
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, actorID string, np NewPanel) (Panel, error) {
	memberIDs := core.CleanIDs(np.MemberIDs)
	if err := svc.checkMembers(ctx, np.Department, memberIDs); err != nil {
		return Panel{}, err
	}

	now := time.Now().UTC()
	pnl := Panel{
		ID:          uuid.NewString(),
		Name:        np.Name,
		Department:  np.Department,
		MemberIDs:   memberIDs,
		Description: np.Description,
		IsActive:    true,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreatePanel(ctx, pnl)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Panel, error) {
	return svc.repo.GetPanelByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Panel, error) {
	return svc.repo.QueryPanels(ctx, filter)
}

// ForMember lists the active panels the supervisor sits on.
func (svc *Service) ForMember(ctx context.Context, supervisorID string) ([]Panel, error) {
	active := true
	return svc.repo.QueryPanels(ctx, QueryFilter{MemberID: supervisorID, IsActive: &active})
}

// Update changes the given fields. The department never changes: new members are checked against it.
func (svc *Service) Update(ctx context.Context, id string, up UpdatePanel) (Panel, error) {
	pnl, err := svc.repo.GetPanelByID(ctx, id)
	if err != nil {
		return Panel{}, errors.Wrap(err, "finding panel by ID")
	}

	if up.MemberIDs != nil {
		memberIDs := core.CleanIDs(up.MemberIDs)
		if err = svc.checkMembers(ctx, pnl.Department, memberIDs); err != nil {
			return Panel{}, err
		}
		pnl.MemberIDs = memberIDs
	}
	if up.Name != nil {
		pnl.Name = *up.Name
	}
	if up.Description != nil {
		pnl.Description = *up.Description
	}
	if up.IsActive != nil {
		pnl.IsActive = *up.IsActive
	}
	pnl.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdatePanel(ctx, pnl)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeletePanel(ctx, id)
}
