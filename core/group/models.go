package group

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/fyp/core"
)

// MaxMembers is the number of students a group may hold besides its leader.
const MaxMembers = 2

type (
	Group struct {
		ID                 string    `json:"id"`
		Name               string    `json:"name"`
		LeaderID           string    `json:"leader_id"`
		MemberIDs          []string  `json:"member_ids"`
		Department         string    `json:"department"`
		SupervisorID       string    `json:"supervisor_id,omitempty"`
		ProjectID          string    `json:"project_id,omitempty"`
		IsRegisteredForFYP bool      `json:"is_registered_for_fyp"`
		CreatedAt          time.Time `json:"created_at"`
		UpdatedAt          time.Time `json:"updated_at"`
	}

	NewGroup struct {
		Name       string   `json:"name" validate:"required,notblank"`
		LeaderID   string   `json:"leader_id" validate:"required,notblank"`
		MemberIDs  []string `json:"member_ids" validate:"max=2,dive,notblank"`
		Department string   `json:"department" validate:"required,notblank"`
	}

	QueryFilter struct {
		Department        string `query:"department"`
		WithoutSupervisor bool   `query:"-"`
		SupervisorID      string `query:"supervisor"`
		// StudentID matches the group's leader or any of its members.
		StudentID string `query:"student"`
	}
)

// Seats is the number of capacity units the group takes on its supervisor.
func (g Group) Seats() int {
	return 1 + len(g.MemberIDs)
}

func (g Group) HasStudent(studentID string) bool {
	if g.LeaderID == studentID {
		return true
	}
	for _, id := range g.MemberIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

func (f *QueryFilter) Clean() {
	f.Department = core.CleanString(f.Department)
	f.SupervisorID = core.CleanString(f.SupervisorID)
	f.StudentID = core.CleanString(f.StudentID)
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	ng.LeaderID = core.CleanString(ng.LeaderID)
	ng.Department = core.CleanString(ng.Department)
	for i := range ng.MemberIDs {
		ng.MemberIDs[i] = core.CleanString(ng.MemberIDs[i])
	}
	if err := validate.Struct(ng); err != nil {
		return err
	}
	for _, id := range ng.MemberIDs {
		if id == ng.LeaderID {
			return core.NewValidationError(nil, core.FieldError{Field: "member_ids", Error: "the leader cannot also be a member"})
		}
	}
	return nil
}
