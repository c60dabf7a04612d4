package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/group"
	"github.com/trezcool/fyp/core/panel"
)

var (
	// errors
	ErrNotFound              = core.NewError(core.KindNotFound, "schedule_not_found", "schedule not found")
	ErrDepartmentMismatch    = core.NewError(core.KindInvalid, "department_mismatch", "panel must be from the same department")
	ErrGroupAlreadyScheduled = core.NewError(core.KindConflict, "group_already_scheduled", "this group already has a presentation schedule")
	ErrPanelConflict         = core.NewError(core.KindConflict, "panel_conflict", "this panel is already scheduled at this time")
	ErrRoomConflict          = core.NewError(core.KindConflict, "room_conflict", "this room is already booked at this time")
	ErrNoSlotsAvailable      = core.NewError(core.KindNoSlotsAvailable, "no_slots_available", "no available time slots for this date and room")
	ErrSelfSwap              = core.NewError(core.KindInvalid, "self_swap", "a schedule cannot be swapped with itself")
)

type (
	Repository interface {
		CreateSchedule(ctx context.Context, sch Schedule) (Schedule, error)
		GetScheduleByID(ctx context.Context, id string) (Schedule, error)
		// QuerySchedules returns matching schedules sorted by date then time slot.
		QuerySchedules(ctx context.Context, filter QueryFilter) ([]Schedule, error)
		// CheckScheduleConflicts reports the first of ErrGroupAlreadyScheduled, ErrPanelConflict and
		// ErrRoomConflict that sch would cause among the other schedules (sch.ID is excluded).
		CheckScheduleConflicts(ctx context.Context, sch Schedule) error
		UpdateSchedule(ctx context.Context, sch Schedule) (Schedule, error)
		// SwapScheduleSlots saves the slots of both schedules in one statement.
		SwapScheduleSlots(ctx context.Context, sch1, sch2 Schedule) error
		DeleteSchedule(ctx context.Context, id string) error
		// ScheduledGroupIDs lists the groups that have a schedule, in any department.
		ScheduledGroupIDs(ctx context.Context) ([]string, error)
	}

	// Service is the schedule book. Conflict checks run before every write, and the storage layer
	// enforces the same uniqueness rules, so a lost race yields the same error as the check.
	Service struct {
		tx      core.Transactor
		repo    Repository
		groups  group.Repository
		panels  panel.Repository
		conf    core.SchedulingConfig
		logger  core.Logger
		metrics core.Metrics
	}
)

func NewService(
	tx core.Transactor,
	repo Repository,
	groups group.Repository,
	panels panel.Repository,
	conf core.SchedulingConfig,
	logger core.Logger,
	metrics core.Metrics,
) *Service {
	return &Service{
		tx:      tx,
		repo:    repo,
		groups:  groups,
		panels:  panels,
		conf:    conf,
		logger:  logger,
		metrics: metrics,
	}
}

func (svc *Service) Create(ctx context.Context, actorID string, ns NewSchedule) (Schedule, error) {
	date, err := core.ParseDate(ns.Date)
	if err != nil {
		return Schedule{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: err.Error()})
	}
	label, err := NormalizeTimeSlot(ns.TimeSlot)
	if err != nil {
		return Schedule{}, core.NewValidationError(err, core.FieldError{Field: "time_slot", Error: err.Error()})
	}

	now := time.Now().UTC()
	sch := Schedule{
		ID:         uuid.NewString(),
		GroupID:    ns.GroupID,
		PanelID:    ns.PanelID,
		Date:       core.DateOf(date),
		TimeSlot:   label,
		Room:       ns.Room,
		Department: ns.Department,
		Notes:      ns.Notes,
		CreatedBy:  actorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	sch, err = svc.create(ctx, sch)
	if err != nil {
		return Schedule{}, err
	}
	svc.metrics.BookingCreated(core.SourceManual)
	return sch, nil
}

// create books sch once the group and panel are known to exist and every conflict is ruled out.
func (svc *Service) create(ctx context.Context, sch Schedule) (Schedule, error) {
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := svc.groups.GetGroupByID(ctx, sch.GroupID); err != nil {
			return errors.Wrap(err, "finding group by ID")
		}
		pnl, err := svc.panels.GetPanelByID(ctx, sch.PanelID)
		if err != nil {
			return errors.Wrap(err, "finding panel by ID")
		}
		if pnl.Department != sch.Department {
			return ErrDepartmentMismatch
		}
		if err = svc.repo.CheckScheduleConflicts(ctx, sch); err != nil {
			return err
		}
		sch, err = svc.repo.CreateSchedule(ctx, sch)
		return err
	})
	if err != nil {
		svc.rejected(err)
		return Schedule{}, err
	}
	return sch, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Schedule, error) {
	return svc.repo.GetScheduleByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Schedule, error) {
	filter.Clean()
	return svc.repo.QuerySchedules(ctx, filter)
}

// Update merges the given fields into the schedule and re-checks panel and room conflicts against
// the other schedules.
func (svc *Service) Update(ctx context.Context, id string, us UpdateSchedule) (Schedule, error) {
	var sch Schedule
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if sch, err = svc.repo.GetScheduleByID(ctx, id); err != nil {
			return errors.Wrap(err, "finding schedule by ID")
		}

		if us.PanelID != nil && *us.PanelID != sch.PanelID {
			pnl, err := svc.panels.GetPanelByID(ctx, *us.PanelID)
			if err != nil {
				return errors.Wrap(err, "finding panel by ID")
			}
			if pnl.Department != sch.Department {
				return ErrDepartmentMismatch
			}
			sch.PanelID = pnl.ID
		}
		if us.Date != nil {
			date, err := core.ParseDate(*us.Date)
			if err != nil {
				return core.NewValidationError(err, core.FieldError{Field: "date", Error: err.Error()})
			}
			sch.Date = core.DateOf(date)
		}
		if us.TimeSlot != nil {
			label, err := NormalizeTimeSlot(*us.TimeSlot)
			if err != nil {
				return core.NewValidationError(err, core.FieldError{Field: "time_slot", Error: err.Error()})
			}
			sch.TimeSlot = label
		}
		if us.Room != nil {
			sch.Room = *us.Room
		}
		if us.Notes != nil {
			sch.Notes = *us.Notes
		}

		if err = svc.repo.CheckScheduleConflicts(ctx, sch); err != nil {
			return err
		}
		sch.UpdatedAt = time.Now().UTC()
		sch, err = svc.repo.UpdateSchedule(ctx, sch)
		return err
	})
	if err != nil {
		svc.rejected(err)
		return Schedule{}, err
	}
	return sch, nil
}

// MarkCompleted records whether the group has presented.
func (svc *Service) MarkCompleted(ctx context.Context, id string, completed bool) (Schedule, error) {
	var sch Schedule
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if sch, err = svc.repo.GetScheduleByID(ctx, id); err != nil {
			return errors.Wrap(err, "finding schedule by ID")
		}
		now := time.Now().UTC()
		sch.IsCompleted = completed
		sch.CompletedAt = nil
		if completed {
			sch.CompletedAt = &now
		}
		sch.UpdatedAt = now
		sch, err = svc.repo.UpdateSchedule(ctx, sch)
		return err
	})
	return sch, err
}

// Remove deletes the schedule; its group becomes unscheduled.
func (svc *Service) Remove(ctx context.Context, id string) error {
	return svc.repo.DeleteSchedule(ctx, id)
}

func (svc *Service) rejected(err error) {
	var e *core.Error
	if errors.As(err, &e) && e.Kind == core.KindConflict {
		svc.metrics.BookingRejected(e.Code)
	}
}
