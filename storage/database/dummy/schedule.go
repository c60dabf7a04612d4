package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/fyp/core/group"
	"github.com/trezcool/fyp/core/panel"
	"github.com/trezcool/fyp/core/schedule"
)

type scheduleRepository struct {
	db *DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

// conflict enforces the unique indexes on group, (date, time slot, room) and (date, time slot, panel).
func (t *tables) conflict(sch schedule.Schedule) error {
	checks := []struct {
		clash func(other schedule.Schedule) bool
		err   error
	}{
		{func(o schedule.Schedule) bool { return o.GroupID == sch.GroupID }, schedule.ErrGroupAlreadyScheduled},
		{func(o schedule.Schedule) bool { return o.SameTime(sch) && o.PanelID == sch.PanelID }, schedule.ErrPanelConflict},
		{func(o schedule.Schedule) bool { return o.SameTime(sch) && o.Room == sch.Room }, schedule.ErrRoomConflict},
	}
	for _, check := range checks {
		for _, other := range t.schedules {
			if other.ID != sch.ID && check.clash(other) {
				return check.err
			}
		}
	}
	return nil
}

// references enforces the foreign keys to the group and the panel.
func (t *tables) references(sch schedule.Schedule) error {
	if _, ok := t.groups[sch.GroupID]; !ok {
		return group.ErrNotFound
	}
	if _, ok := t.panels[sch.PanelID]; !ok {
		return panel.ErrNotFound
	}
	return nil
}

func (repo *scheduleRepository) CreateSchedule(ctx context.Context, sch schedule.Schedule) (schedule.Schedule, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		if err := t.references(sch); err != nil {
			return err
		}
		if err := t.conflict(sch); err != nil {
			return err
		}
		t.schedules[sch.ID] = sch
		return nil
	})
	if err != nil {
		return schedule.Schedule{}, err
	}
	return sch, nil
}

func (repo *scheduleRepository) GetScheduleByID(ctx context.Context, id string) (schedule.Schedule, error) {
	var sch schedule.Schedule
	err := repo.db.read(ctx, func(t *tables) error {
		s, ok := t.schedules[id]
		if !ok {
			return schedule.ErrNotFound
		}
		sch = s
		return nil
	})
	return sch, err
}

func (repo *scheduleRepository) QuerySchedules(ctx context.Context, filter schedule.QueryFilter) ([]schedule.Schedule, error) {
	schedules := make([]schedule.Schedule, 0)
	err := repo.db.read(ctx, func(t *tables) error {
		for _, s := range t.schedules {
			if filter.Department != "" && s.Department != filter.Department {
				continue
			}
			if filter.Date != nil && !s.Date.Equal(*filter.Date) {
				continue
			}
			if filter.Room != "" && s.Room != filter.Room {
				continue
			}
			if filter.PanelIDs != nil && !containsString(filter.PanelIDs, s.PanelID) {
				continue
			}
			if filter.GroupIDs != nil && !containsString(filter.GroupIDs, s.GroupID) {
				continue
			}
			schedules = append(schedules, s)
		}
		return nil
	})
	sort.Slice(schedules, func(i, j int) bool {
		a, b := schedules[i], schedules[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.TimeSlot != b.TimeSlot {
			return a.TimeSlot < b.TimeSlot
		}
		return a.Room < b.Room
	})
	return schedules, err
}

func (repo *scheduleRepository) CheckScheduleConflicts(ctx context.Context, sch schedule.Schedule) error {
	return repo.db.read(ctx, func(t *tables) error {
		return t.conflict(sch)
	})
}

func (repo *scheduleRepository) UpdateSchedule(ctx context.Context, sch schedule.Schedule) (schedule.Schedule, error) {
	var saved schedule.Schedule
	err := repo.db.write(ctx, func(t *tables) error {
		orig, ok := t.schedules[sch.ID]
		if !ok {
			return schedule.ErrNotFound
		}
		if err := t.references(sch); err != nil {
			return err
		}
		if err := t.conflict(sch); err != nil {
			return err
		}
		sch.GroupID = orig.GroupID
		sch.Department = orig.Department
		sch.CreatedBy = orig.CreatedBy
		sch.CreatedAt = orig.CreatedAt
		t.schedules[sch.ID] = sch
		saved = sch
		return nil
	})
	return saved, err
}

func (repo *scheduleRepository) SwapScheduleSlots(ctx context.Context, sch1, sch2 schedule.Schedule) error {
	return repo.db.write(ctx, func(t *tables) error {
		for _, sch := range []schedule.Schedule{sch1, sch2} {
			orig, ok := t.schedules[sch.ID]
			if !ok {
				return schedule.ErrNotFound
			}
			orig.Date = sch.Date
			orig.TimeSlot = sch.TimeSlot
			orig.Room = sch.Room
			orig.PanelID = sch.PanelID
			orig.UpdatedAt = sch.UpdatedAt
			t.schedules[sch.ID] = orig
		}
		// constraints hold for the statement as a whole
		for _, sch := range []schedule.Schedule{sch1, sch2} {
			if err := t.conflict(t.schedules[sch.ID]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (repo *scheduleRepository) DeleteSchedule(ctx context.Context, id string) error {
	return repo.db.write(ctx, func(t *tables) error {
		if _, ok := t.schedules[id]; !ok {
			return schedule.ErrNotFound
		}
		delete(t.schedules, id)
		return nil
	})
}

func (repo *scheduleRepository) ScheduledGroupIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0)
	err := repo.db.read(ctx, func(t *tables) error {
		for _, s := range t.schedules {
			ids = append(ids, s.GroupID)
		}
		return nil
	})
	sort.Strings(ids)
	return ids, err
}
