package supervisor

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/fyp/core"
)

type (
	Supervisor struct {
		ID                        string    `json:"id"`
		Name                      string    `json:"name"`
		Email                     string    `json:"email"`
		Designation               string    `json:"designation"`
		Department                string    `json:"department"`
		MaxStudents               int       `json:"max_students"`
		CurrentStudentCount       int       `json:"current_student_count"`
		IsAvailableForSupervision bool      `json:"is_available_for_supervision"`
		CreatedAt                 time.Time `json:"created_at"`
		UpdatedAt                 time.Time `json:"updated_at"`
	}

	// Availability is the coordinator's view of a supervisor's load.
	Availability struct {
		ID                        string `json:"id"`
		Name                      string `json:"name"`
		Email                     string `json:"email"`
		Designation               string `json:"designation"`
		Department                string `json:"department"`
		MaxStudents               int    `json:"max_students"`
		CurrentStudentCount       int    `json:"current_student_count"`
		AvailableSlots            int    `json:"available_slots"`
		IsAvailableForSupervision bool   `json:"is_available_for_supervision"`
	}

	NewSupervisor struct {
		Name        string `json:"name" csv:"name" validate:"required,notblank"`
		Email       string `json:"email" csv:"email" validate:"required,email"`
		Designation string `json:"designation" csv:"designation"`
		Department  string `json:"department" csv:"department" validate:"required,notblank"`
		MaxStudents int    `json:"max_students" csv:"max_students" validate:"min=0"`
	}

	UpdateAvailability struct {
		IsAvailable *bool `json:"is_available_for_supervision" validate:"required"`
		MaxStudents *int  `json:"max_students" validate:"omitempty,min=0"`
	}

	QueryFilter struct {
		Department string `query:"department"`
	}
)

// AvailableSlots is the number of seats left before the supervisor is full.
func (s Supervisor) AvailableSlots() int {
	return s.MaxStudents - s.CurrentStudentCount
}

func (s Supervisor) Availability() Availability {
	return Availability{
		ID:                        s.ID,
		Name:                      s.Name,
		Email:                     s.Email,
		Designation:               s.Designation,
		Department:                s.Department,
		MaxStudents:               s.MaxStudents,
		CurrentStudentCount:       s.CurrentStudentCount,
		AvailableSlots:            s.AvailableSlots(),
		IsAvailableForSupervision: s.IsAvailableForSupervision,
	}
}

func (s *Supervisor) reserve(seats int) error {
	if seats <= 0 {
		return ErrInvalidSeats
	}
	if s.CurrentStudentCount+seats > s.MaxStudents {
		return ErrCapacityExceeded
	}
	if !s.IsAvailableForSupervision {
		return ErrUnavailable
	}
	s.CurrentStudentCount += seats
	s.IsAvailableForSupervision = s.CurrentStudentCount < s.MaxStudents
	return nil
}

// release never drives the count below zero.
func (s *Supervisor) release(seats int) {
	s.CurrentStudentCount -= seats
	if s.CurrentStudentCount < 0 {
		s.CurrentStudentCount = 0
	}
	s.IsAvailableForSupervision = s.CurrentStudentCount < s.MaxStudents
}

func (s *Supervisor) setAvailability(available bool, newMax *int) error {
	if newMax != nil {
		if *newMax < s.CurrentStudentCount {
			return ErrInvalidCapacity
		}
		s.MaxStudents = *newMax
	}
	s.IsAvailableForSupervision = available && s.CurrentStudentCount < s.MaxStudents
	return nil
}

func (f *QueryFilter) Clean() {
	f.Department = core.CleanString(f.Department)
}

func (ns *NewSupervisor) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Designation = core.CleanString(ns.Designation)
	ns.Department = core.CleanString(ns.Department)
	return validate.Struct(ns)
}

func (ua *UpdateAvailability) Validate(validate *validator.Validate) error {
	return validate.Struct(ua)
}
