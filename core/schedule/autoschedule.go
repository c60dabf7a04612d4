package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/group"
)

// AutoSchedule books the department's unscheduled groups, in group id order, into the free slots of
// one room on one day, before one panel.
//
// It is a greedy fill: the i-th group gets the i-th free slot, with no attempt to balance panels or
// rooms. Each booking goes through the regular conflict checks; a slot lost to a conflict (the panel
// is busy elsewhere at that time, or another booking landed meanwhile) is skipped and the same group
// tries the next slot. Running out of slots is not an error: the result reports the groups left.
func (svc *Service) AutoSchedule(ctx context.Context, actorID string, as AutoSchedule) (AutoScheduleResult, error) {
	date, err := core.ParseDate(as.Date)
	if err != nil {
		return AutoScheduleResult{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: err.Error()})
	}
	date = core.DateOf(date)

	pnl, err := svc.panels.GetPanelByID(ctx, as.PanelID)
	if err != nil {
		return AutoScheduleResult{}, errors.Wrap(err, "finding panel by ID")
	}
	if pnl.Department != as.Department {
		return AutoScheduleResult{}, ErrDepartmentMismatch
	}

	unscheduled, err := svc.unscheduledGroups(ctx, as.Department)
	if err != nil {
		return AutoScheduleResult{}, err
	}
	available, err := svc.availableSlots(ctx, date, as.Room)
	if err != nil {
		return AutoScheduleResult{}, err
	}
	if len(available) == 0 {
		return AutoScheduleResult{}, ErrNoSlotsAvailable
	}

	res := AutoScheduleResult{Schedules: []Schedule{}}
	slotIdx := 0
	for _, grp := range unscheduled {
		for slotIdx < len(available) {
			now := time.Now().UTC()
			sch, err := svc.create(ctx, Schedule{
				ID:         uuid.NewString(),
				GroupID:    grp.ID,
				PanelID:    pnl.ID,
				Date:       date,
				TimeSlot:   available[slotIdx],
				Room:       as.Room,
				Department: as.Department,
				CreatedBy:  actorID,
				CreatedAt:  now,
				UpdatedAt:  now,
			})
			if err == nil {
				slotIdx++
				res.Schedules = append(res.Schedules, sch)
				svc.metrics.BookingCreated(core.SourceAuto)
				break
			}
			if errors.Is(err, ErrGroupAlreadyScheduled) {
				svc.logger.Debug("auto-schedule: group scheduled meanwhile", map[string]interface{}{"group": grp.ID})
				break
			}
			if errors.Is(err, ErrPanelConflict) || errors.Is(err, ErrRoomConflict) {
				svc.logger.Debug("auto-schedule: slot taken", map[string]interface{}{
					"slot": available[slotIdx], "room": as.Room, "reason": err.Error(),
				})
				slotIdx++
				continue
			}
			return AutoScheduleResult{}, errors.Wrap(err, "booking group")
		}
		if slotIdx >= len(available) {
			break
		}
	}

	res.ScheduledCount = len(res.Schedules)
	res.RemainingCount = len(unscheduled) - res.ScheduledCount
	svc.logger.Info("auto-schedule done", map[string]interface{}{
		"actor": actorID, "department": as.Department, "room": as.Room, "date": date.Format(core.DateLayout),
		"scheduled": res.ScheduledCount, "remaining": res.RemainingCount,
	})
	return res, nil
}

// unscheduledGroups lists the department's groups with no schedule (in any department), sorted by id.
func (svc *Service) unscheduledGroups(ctx context.Context, department string) ([]group.Group, error) {
	groups, err := svc.groups.QueryGroups(ctx, group.QueryFilter{Department: department}, group.CleanOrdering(nil)...)
	if err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	scheduledIDs, err := svc.repo.ScheduledGroupIDs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying scheduled groups")
	}
	scheduled := make(map[string]struct{}, len(scheduledIDs))
	for _, id := range scheduledIDs {
		scheduled[id] = struct{}{}
	}

	unscheduled := make([]group.Group, 0, len(groups))
	for _, grp := range groups {
		if _, ok := scheduled[grp.ID]; !ok {
			unscheduled = append(unscheduled, grp)
		}
	}
	return unscheduled, nil
}

// availableSlots lists the day's slots not yet booked in room, in chronological order.
func (svc *Service) availableSlots(ctx context.Context, date time.Time, room string) ([]string, error) {
	candidates, err := GenerateSlots(svc.conf)
	if err != nil {
		return nil, errors.Wrap(err, "generating slots")
	}
	booked, err := svc.repo.QuerySchedules(ctx, QueryFilter{Date: &date, Room: room})
	if err != nil {
		return nil, errors.Wrap(err, "querying booked slots")
	}
	taken := make(map[string]struct{}, len(booked))
	for _, sch := range booked {
		taken[sch.TimeSlot] = struct{}{}
	}

	available := make([]string, 0, len(candidates))
	for _, slot := range candidates {
		if _, ok := taken[slot]; !ok {
			available = append(available, slot)
		}
	}
	return available, nil
}
