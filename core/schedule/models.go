package schedule

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/fyp/core"
)

type (
	// Schedule is a presentation booking: one group before one panel, in one room, at one slot.
	Schedule struct {
		ID          string     `json:"id"`
		GroupID     string     `json:"group_id"`
		PanelID     string     `json:"panel_id"`
		Date        time.Time  `json:"date"`
		TimeSlot    string     `json:"time_slot"`
		Room        string     `json:"room"`
		Department  string     `json:"department"`
		Notes       string     `json:"notes"`
		IsCompleted bool       `json:"is_completed"`
		CompletedAt *time.Time `json:"completed_at,omitempty"`
		CreatedBy   string     `json:"created_by"`
		CreatedAt   time.Time  `json:"created_at"`
		UpdatedAt   time.Time  `json:"updated_at"`
	}

	// Slot is the part of a schedule swaps exchange.
	Slot struct {
		Date     time.Time
		TimeSlot string
		Room     string
		PanelID  string
	}

	NewSchedule struct {
		GroupID    string `json:"group_id" validate:"required,notblank"`
		PanelID    string `json:"panel_id" validate:"required,notblank"`
		Date       string `json:"date" validate:"required,date"`
		TimeSlot   string `json:"time_slot" validate:"required,timeslot"`
		Room       string `json:"room" validate:"required,notblank"`
		Department string `json:"department" validate:"required,notblank"`
		Notes      string `json:"notes"`
	}

	UpdateSchedule struct {
		PanelID  *string `json:"panel_id" validate:"omitempty,notblank"`
		Date     *string `json:"date" validate:"omitempty,date"`
		TimeSlot *string `json:"time_slot" validate:"omitempty,timeslot"`
		Room     *string `json:"room" validate:"omitempty,notblank"`
		Notes    *string `json:"notes"`
	}

	AutoSchedule struct {
		Date       string `json:"date" validate:"required,date"`
		Room       string `json:"room" validate:"required,notblank"`
		Department string `json:"department" validate:"required,notblank"`
		PanelID    string `json:"panel_id" validate:"required,notblank"`
	}

	AutoScheduleResult struct {
		ScheduledCount int        `json:"scheduled_count"`
		RemainingCount int        `json:"remaining_count"`
		Schedules      []Schedule `json:"schedules"`
	}

	Swap struct {
		ScheduleID1 string `json:"schedule_id_1" validate:"required,notblank"`
		ScheduleID2 string `json:"schedule_id_2" validate:"required,notblank"`
	}

	Completion struct {
		IsCompleted *bool `json:"is_completed" validate:"required"`
	}

	QueryFilter struct {
		Department string     `query:"department"`
		Date       *time.Time `query:"-"`
		PanelIDs   []string   `query:"-"`
		GroupIDs   []string   `query:"-"`
		Room       string     `query:"-"`
	}
)

func (s Schedule) Slot() Slot {
	return Slot{Date: s.Date, TimeSlot: s.TimeSlot, Room: s.Room, PanelID: s.PanelID}
}

func (s *Schedule) setSlot(sl Slot) {
	s.Date = sl.Date
	s.TimeSlot = sl.TimeSlot
	s.Room = sl.Room
	s.PanelID = sl.PanelID
}

// SameTime tells whether both schedules take place at the same slot of the same day.
func (s Schedule) SameTime(other Schedule) bool {
	return s.Date.Equal(other.Date) && s.TimeSlot == other.TimeSlot
}

func (ns *NewSchedule) Validate(validate *validator.Validate) error {
	ns.GroupID = core.CleanString(ns.GroupID)
	ns.PanelID = core.CleanString(ns.PanelID)
	ns.Room = core.CleanString(ns.Room)
	ns.Department = core.CleanString(ns.Department)
	ns.Notes = core.CleanString(ns.Notes)
	if err := validate.Struct(ns); err != nil {
		return err
	}
	ns.TimeSlot, _ = NormalizeTimeSlot(ns.TimeSlot)
	return nil
}

func (us *UpdateSchedule) Validate(validate *validator.Validate) error {
	for _, fld := range []*string{us.PanelID, us.Room, us.Notes} {
		if fld != nil {
			*fld = core.CleanString(*fld)
		}
	}
	if err := validate.Struct(us); err != nil {
		return err
	}
	if us.TimeSlot != nil {
		label, _ := NormalizeTimeSlot(*us.TimeSlot)
		us.TimeSlot = &label
	}
	return nil
}

func (as *AutoSchedule) Validate(validate *validator.Validate) error {
	as.Room = core.CleanString(as.Room)
	as.Department = core.CleanString(as.Department)
	as.PanelID = core.CleanString(as.PanelID)
	return validate.Struct(as)
}

func (sw *Swap) Validate(validate *validator.Validate) error {
	sw.ScheduleID1 = core.CleanString(sw.ScheduleID1)
	sw.ScheduleID2 = core.CleanString(sw.ScheduleID2)
	return validate.Struct(sw)
}

func (c *Completion) Validate(validate *validator.Validate) error {
	return validate.Struct(c)
}

func (f *QueryFilter) Clean() {
	f.Department = core.CleanString(f.Department)
	f.Room = core.CleanString(f.Room)
	if f.Date != nil {
		d := core.DateOf(*f.Date)
		f.Date = &d
	}
}
