package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/group"
	"github.com/trezcool/fyp/core/supervisor"
)

type groupRepository struct {
	db *DB
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *DB) group.Repository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) CreateGroup(ctx context.Context, grp group.Group) (group.Group, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		students := append([]string{grp.LeaderID}, grp.MemberIDs...)
		for _, g := range t.groups {
			for _, id := range students {
				if g.HasStudent(id) {
					return group.ErrStudentInGroup
				}
			}
		}
		grp.MemberIDs = copyStrings(grp.MemberIDs)
		t.groups[grp.ID] = grp
		return nil
	})
	if err != nil {
		return group.Group{}, err
	}
	return grp, nil
}

func (repo *groupRepository) GetGroupByID(ctx context.Context, id string) (group.Group, error) {
	var grp group.Group
	err := repo.db.read(ctx, func(t *tables) error {
		g, ok := t.groups[id]
		if !ok {
			return group.ErrNotFound
		}
		grp = g
		grp.MemberIDs = copyStrings(g.MemberIDs)
		return nil
	})
	return grp, err
}

func (repo *groupRepository) QueryGroups(ctx context.Context, filter group.QueryFilter, ordering ...core.DBOrdering) ([]group.Group, error) {
	groups := make([]group.Group, 0)
	err := repo.db.read(ctx, func(t *tables) error {
		for _, g := range t.groups {
			if filter.Department != "" && g.Department != filter.Department {
				continue
			}
			if filter.WithoutSupervisor && g.SupervisorID != "" {
				continue
			}
			if filter.SupervisorID != "" && g.SupervisorID != filter.SupervisorID {
				continue
			}
			if filter.StudentID != "" && !g.HasStudent(filter.StudentID) {
				continue
			}
			g.MemberIDs = copyStrings(g.MemberIDs)
			groups = append(groups, g)
		}
		return nil
	})
	sortGroups(groups, group.CleanOrdering(ordering))
	return groups, err
}

func (repo *groupRepository) UpdateGroupSupervisor(ctx context.Context, grp group.Group) (group.Group, error) {
	var saved group.Group
	err := repo.db.write(ctx, func(t *tables) error {
		orig, ok := t.groups[grp.ID]
		if !ok {
			return group.ErrNotFound
		}
		if grp.SupervisorID != "" {
			if _, ok := t.supervisors[grp.SupervisorID]; !ok {
				return supervisor.ErrNotFound
			}
		}
		orig.SupervisorID = grp.SupervisorID
		orig.ProjectID = grp.ProjectID
		orig.UpdatedAt = grp.UpdatedAt
		t.groups[grp.ID] = orig
		saved = orig
		saved.MemberIDs = copyStrings(orig.MemberIDs)
		return nil
	})
	return saved, err
}

func sortGroups(groups []group.Group, ordering []core.DBOrdering) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		for _, ord := range ordering {
			var less, greater bool
			switch ord.Field {
			case "name":
				less, greater = a.Name < b.Name, a.Name > b.Name
			case "created_at":
				less, greater = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.After(b.CreatedAt)
			default: // id
				less, greater = a.ID < b.ID, a.ID > b.ID
			}
			if !ord.Ascending {
				less, greater = greater, less
			}
			if less || greater {
				return less
			}
		}
		return false
	})
}
