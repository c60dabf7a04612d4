package allocation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/group"
	"github.com/trezcool/fyp/core/project"
	"github.com/trezcool/fyp/core/supervisor"
)

// Operations
const (
	OpAssign = "assign"
	OpChange = "change"
)

var (
	// errors
	ErrAlreadyAssigned = core.NewError(core.KindConflict, "already_assigned", "group already has a supervisor assigned, use change-supervisor")
	ErrNotAssigned     = core.NewError(core.KindInvalid, "not_assigned", "group has no supervisor assigned, use assign-supervisor")
	ErrNoOp            = core.NewError(core.KindInvalid, "same_supervisor", "new supervisor is the same as current supervisor")
)

// Result is the group and the supervisor it is now bound to.
type Result struct {
	Group      group.Group           `json:"group"`
	Supervisor supervisor.Supervisor `json:"supervisor"`
}

// Service binds groups to supervisors, keeping every supervisor's load equal to the seats of its groups.
type Service struct {
	tx       core.Transactor
	groups   group.Repository
	projects project.Repository
	ledger   *supervisor.Service
	logger   core.Logger
	metrics  core.Metrics
}

func NewService(
	tx core.Transactor,
	groups group.Repository,
	projects project.Repository,
	ledger *supervisor.Service,
	logger core.Logger,
	metrics core.Metrics,
) *Service {
	return &Service{
		tx:       tx,
		groups:   groups,
		projects: projects,
		ledger:   ledger,
		logger:   logger,
		metrics:  metrics,
	}
}

// Assign gives an unsupervised group its first supervisor.
func (svc *Service) Assign(ctx context.Context, actorID, groupID, supervisorID string) (Result, error) {
	var res Result
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		grp, err := svc.groups.GetGroupByID(ctx, groupID)
		if err != nil {
			return errors.Wrap(err, "finding group by ID")
		}
		if grp.SupervisorID != "" {
			return ErrAlreadyAssigned
		}

		sup, err := svc.ledger.Reserve(ctx, supervisorID, grp.Seats())
		if err != nil {
			return errors.Wrap(err, "reserving seats")
		}

		prj, err := svc.bindProject(ctx, grp, sup.ID, false)
		if err != nil {
			return err
		}
		grp.SupervisorID = sup.ID
		grp.ProjectID = prj.ID
		grp.UpdatedAt = time.Now().UTC()
		if grp, err = svc.groups.UpdateGroupSupervisor(ctx, grp); err != nil {
			return errors.Wrap(err, "updating group supervisor")
		}

		res = Result{Group: grp, Supervisor: sup}
		return nil
	})
	svc.metrics.AllocationDone(OpAssign, err)
	if err == nil {
		svc.logger.Info("supervisor assigned", map[string]interface{}{
			"actor": actorID, "group": groupID, "supervisor": supervisorID,
		})
	}
	return res, err
}

// Change moves a supervised group to another supervisor. The new supervisor's capacity is taken before
// the old one's is given back, in the same transaction: a refused reservation leaves everything as it was.
func (svc *Service) Change(ctx context.Context, actorID, groupID, newSupervisorID string) (Result, error) {
	var res Result
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		grp, err := svc.groups.GetGroupByID(ctx, groupID)
		if err != nil {
			return errors.Wrap(err, "finding group by ID")
		}
		if grp.SupervisorID == "" {
			return ErrNotAssigned
		}
		oldSupervisorID := grp.SupervisorID
		if oldSupervisorID == newSupervisorID {
			return ErrNoOp
		}

		// always lock in the same order so concurrent changes cannot deadlock
		if err = svc.ledger.Lock(ctx, oldSupervisorID, newSupervisorID); err != nil {
			return err
		}
		sup, err := svc.ledger.Reserve(ctx, newSupervisorID, grp.Seats())
		if err != nil {
			return errors.Wrap(err, "reserving seats")
		}
		if _, err = svc.ledger.Release(ctx, oldSupervisorID, grp.Seats()); err != nil {
			return errors.Wrap(err, "releasing seats")
		}

		prj, err := svc.bindProject(ctx, grp, sup.ID, true)
		if err != nil {
			return err
		}
		grp.SupervisorID = sup.ID
		grp.ProjectID = prj.ID
		grp.UpdatedAt = time.Now().UTC()
		if grp, err = svc.groups.UpdateGroupSupervisor(ctx, grp); err != nil {
			return errors.Wrap(err, "updating group supervisor")
		}

		res = Result{Group: grp, Supervisor: sup}
		return nil
	})
	svc.metrics.AllocationDone(OpChange, err)
	if err == nil {
		svc.logger.Info("supervisor changed", map[string]interface{}{
			"actor": actorID, "group": groupID, "supervisor": newSupervisorID,
		})
	}
	return res, err
}

// bindProject points the group's project at the supervisor, creating the project if needed.
func (svc *Service) bindProject(ctx context.Context, grp group.Group, supervisorID string, clearIdea bool) (project.Project, error) {
	now := time.Now().UTC()
	prj, err := svc.projects.GetProjectByGroup(ctx, grp.ID)
	switch {
	case errors.Is(err, project.ErrNotFound):
		prj = project.Project{
			ID:           uuid.NewString(),
			GroupID:      grp.ID,
			SupervisorID: supervisorID,
			Department:   grp.Department,
			IdeaStatus:   project.IdeaPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		prj, err = svc.projects.CreateProject(ctx, prj)
		return prj, errors.Wrap(err, "creating project")
	case err != nil:
		return project.Project{}, errors.Wrap(err, "finding project by group")
	}

	prj.SupervisorID = supervisorID
	if clearIdea {
		prj.ClearIdea()
	}
	prj.UpdatedAt = now
	prj, err = svc.projects.UpdateProject(ctx, prj)
	return prj, errors.Wrap(err, "updating project")
}
