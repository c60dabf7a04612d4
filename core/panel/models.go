package panel

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/fyp/core"
)

type (
	Panel struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Department  string    `json:"department"`
		MemberIDs   []string  `json:"member_ids"`
		Description string    `json:"description"`
		IsActive    bool      `json:"is_active"`
		CreatedBy   string    `json:"created_by"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	NewPanel struct {
		Name        string   `json:"name" validate:"required,notblank"`
		Department  string   `json:"department" validate:"required,notblank"`
		MemberIDs   []string `json:"member_ids" validate:"required,min=1,dive,notblank"`
		Description string   `json:"description"`
	}

	UpdatePanel struct {
		Name        *string  `json:"name" validate:"omitempty,notblank"`
		MemberIDs   []string `json:"member_ids" validate:"omitempty,min=1,dive,notblank"`
		Description *string  `json:"description"`
		IsActive    *bool    `json:"is_active"`
	}

	QueryFilter struct {
		Department string `query:"department"`
		MemberID   string `query:"member"`
		IsActive   *bool  `query:"is_active"`
	}
)

func (p Panel) HasMember(supervisorID string) bool {
	for _, id := range p.MemberIDs {
		if id == supervisorID {
			return true
		}
	}
	return false
}

func (np *NewPanel) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	np.Department = core.CleanString(np.Department)
	np.Description = core.CleanString(np.Description)
	if err := validate.Struct(np); err != nil {
		return err
	}
	np.MemberIDs = core.CleanIDs(np.MemberIDs)
	return nil
}

func (up *UpdatePanel) Validate(validate *validator.Validate) error {
	if up.Name != nil {
		name := core.CleanString(*up.Name)
		up.Name = &name
	}
	if up.Description != nil {
		desc := core.CleanString(*up.Description)
		up.Description = &desc
	}
	if err := validate.Struct(up); err != nil {
		return err
	}
	if up.MemberIDs != nil {
		up.MemberIDs = core.CleanIDs(up.MemberIDs)
	}
	return nil
}

func (f *QueryFilter) Clean() {
	f.Department = core.CleanString(f.Department)
	f.MemberID = core.CleanString(f.MemberID)
}
