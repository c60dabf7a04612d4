package schedule

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/fyp/core/group"
	"github.com/trezcool/fyp/core/panel"
)

type (
	// GroupSchedule pairs a group with its schedule, if any.
	GroupSchedule struct {
		Group    group.Group `json:"group"`
		Schedule *Schedule   `json:"schedule"`
	}

	// SupervisedOverview splits a supervisor's groups by whether they are scheduled yet.
	SupervisedOverview struct {
		TotalGroups       int             `json:"total_groups"`
		ScheduledCount    int             `json:"scheduled_count"`
		UnscheduledCount  int             `json:"unscheduled_count"`
		ScheduledGroups   []GroupSchedule `json:"scheduled_groups"`
		UnscheduledGroups []group.Group   `json:"unscheduled_groups"`
	}
)

// ForPanelMember lists the schedules of the active panels the supervisor sits on.
func (svc *Service) ForPanelMember(ctx context.Context, supervisorID string) ([]Schedule, error) {
	active := true
	pnls, err := svc.panels.QueryPanels(ctx, panel.QueryFilter{MemberID: supervisorID, IsActive: &active})
	if err != nil {
		return nil, errors.Wrap(err, "querying panels")
	}
	if len(pnls) == 0 {
		return []Schedule{}, nil
	}

	ids := make([]string, 0, len(pnls))
	for _, pnl := range pnls {
		ids = append(ids, pnl.ID)
	}
	return svc.repo.QuerySchedules(ctx, QueryFilter{PanelIDs: ids})
}

// SupervisedOverview reports which of the supervisor's groups have a schedule.
func (svc *Service) SupervisedOverview(ctx context.Context, supervisorID string) (SupervisedOverview, error) {
	groups, err := svc.groups.QueryGroups(ctx, group.QueryFilter{SupervisorID: supervisorID}, group.CleanOrdering(nil)...)
	if err != nil {
		return SupervisedOverview{}, errors.Wrap(err, "querying groups")
	}
	ov := SupervisedOverview{
		TotalGroups:       len(groups),
		ScheduledGroups:   []GroupSchedule{},
		UnscheduledGroups: []group.Group{},
	}
	if len(groups) == 0 {
		return ov, nil
	}

	ids := make([]string, 0, len(groups))
	for _, grp := range groups {
		ids = append(ids, grp.ID)
	}
	schedules, err := svc.repo.QuerySchedules(ctx, QueryFilter{GroupIDs: ids})
	if err != nil {
		return SupervisedOverview{}, errors.Wrap(err, "querying schedules")
	}
	byGroup := make(map[string]Schedule, len(schedules))
	for _, sch := range schedules {
		byGroup[sch.GroupID] = sch
	}

	for _, grp := range groups {
		if sch, ok := byGroup[grp.ID]; ok {
			ov.ScheduledGroups = append(ov.ScheduledGroups, GroupSchedule{Group: grp, Schedule: &sch})
		} else {
			ov.UnscheduledGroups = append(ov.UnscheduledGroups, grp)
		}
	}
	ov.ScheduledCount = len(ov.ScheduledGroups)
	ov.UnscheduledCount = len(ov.UnscheduledGroups)
	return ov, nil
}

// ForStudent returns the schedule of the student's group. Schedule is nil while the group is unscheduled.
func (svc *Service) ForStudent(ctx context.Context, studentID string) (GroupSchedule, error) {
	grp, err := group.NewService(svc.groups).GetByStudent(ctx, studentID)
	if err != nil {
		return GroupSchedule{}, errors.Wrap(err, "finding student's group")
	}
	schedules, err := svc.repo.QuerySchedules(ctx, QueryFilter{GroupIDs: []string{grp.ID}})
	if err != nil {
		return GroupSchedule{}, errors.Wrap(err, "querying schedules")
	}
	gs := GroupSchedule{Group: grp}
	if len(schedules) > 0 {
		gs.Schedule = &schedules[0]
	}
	return gs, nil
}
