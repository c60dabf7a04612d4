package group

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/fyp/core"
)

var (
	// errors
	ErrNotFound       = core.NewError(core.KindNotFound, "group_not_found", "group not found")
	ErrStudentInGroup = core.NewError(core.KindConflict, "student_in_group", "a student can only belong to one group")

	orderingFields  = map[string]struct{}{"id": {}, "name": {}, "created_at": {}}
	defaultOrdering = []core.DBOrdering{{Field: "id", Ascending: true}}
)

type (
	Repository interface {
		CreateGroup(ctx context.Context, grp Group) (Group, error)
		// GetGroupByID locks the group's row until the end of the transaction carried by ctx, if any.
		GetGroupByID(ctx context.Context, id string) (Group, error)
		QueryGroups(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Group, error)
		// UpdateGroupSupervisor sets the group's supervisor and project; empty strings clear them.
		UpdateGroupSupervisor(ctx context.Context, grp Group) (Group, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ng NewGroup) (Group, error) {
	now := time.Now().UTC()
	grp := Group{
		ID:                 uuid.NewString(),
		Name:               ng.Name,
		LeaderID:           ng.LeaderID,
		MemberIDs:          ng.MemberIDs,
		Department:         ng.Department,
		IsRegisteredForFYP: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if grp.MemberIDs == nil {
		grp.MemberIDs = []string{}
	}
	return svc.repo.CreateGroup(ctx, grp)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Group, error) {
	return svc.repo.GetGroupByID(ctx, id)
}

// Query lists groups. Unknown ordering fields are ignored; groups are sorted by id by default.
func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Group, error) {
	return svc.repo.QueryGroups(ctx, filter, CleanOrdering(ordering)...)
}

func (svc *Service) WithoutSupervisor(ctx context.Context, department string) ([]Group, error) {
	filter := QueryFilter{Department: department, WithoutSupervisor: true}
	filter.Clean()
	return svc.repo.QueryGroups(ctx, filter, defaultOrdering...)
}

// GetByStudent returns the group the student leads or belongs to.
func (svc *Service) GetByStudent(ctx context.Context, studentID string) (Group, error) {
	groups, err := svc.repo.QueryGroups(ctx, QueryFilter{StudentID: core.CleanString(studentID)}, defaultOrdering...)
	if err != nil {
		return Group{}, err
	}
	if len(groups) == 0 {
		return Group{}, ErrNotFound
	}
	return groups[0], nil
}

// CleanOrdering drops unknown fields and falls back to ordering by id.
func CleanOrdering(ordering []core.DBOrdering) []core.DBOrdering {
	cleaned := make([]core.DBOrdering, 0, len(ordering)+1)
	for _, ord := range ordering {
		if _, ok := orderingFields[ord.Field]; ok {
			cleaned = append(cleaned, ord)
		}
	}
	if len(cleaned) == 0 {
		return defaultOrdering
	}
	// id breaks ties
	return append(cleaned, defaultOrdering...)
}
