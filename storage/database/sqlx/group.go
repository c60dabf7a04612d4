package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/group"
)

const groupColumns = `id, name, leader_id, department, supervisor_id, project_id, is_registered_for_fyp,
	created_at, updated_at`

type groupRow struct {
	ID                 string      `db:"id"`
	Name               string      `db:"name"`
	LeaderID           string      `db:"leader_id"`
	Department         string      `db:"department"`
	SupervisorID       null.String `db:"supervisor_id"`
	ProjectID          null.String `db:"project_id"`
	IsRegisteredForFYP bool        `db:"is_registered_for_fyp"`
	CreatedAt          time.Time   `db:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at"`
}

func (r groupRow) toModel(memberIDs []string) group.Group {
	if memberIDs == nil {
		memberIDs = []string{}
	}
	return group.Group{
		ID:                 r.ID,
		Name:               r.Name,
		LeaderID:           r.LeaderID,
		MemberIDs:          memberIDs,
		Department:         r.Department,
		SupervisorID:       r.SupervisorID.String,
		ProjectID:          r.ProjectID.String,
		IsRegisteredForFYP: r.IsRegisteredForFYP,
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
	}
}

type memberRow struct {
	GroupID   string `db:"group_id"`
	StudentID string `db:"student_id"`
}

type groupRepository struct {
	store
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *sqlx.DB) group.Repository {
	return &groupRepository{store: newStore(db)}
}

// members returns the members (leaders excluded) of the given groups, in joining order.
func (repo *groupRepository) members(ctx context.Context, ids []string) (map[string][]string, error) {
	var rows []memberRow
	q := `SELECT group_id, student_id FROM group_student WHERE group_id = ANY($1) AND position > 0 ORDER BY group_id, position`
	if err := sqlx.SelectContext(ctx, repo.getExec(ctx), &rows, q, pq.Array(ids)); err != nil {
		return nil, wrap(err, "selecting group members")
	}
	members := make(map[string][]string, len(ids))
	for _, r := range rows {
		members[r.GroupID] = append(members[r.GroupID], r.StudentID)
	}
	return members, nil
}

// CreateGroup inserts the group and claims its students; a student already in a group fails the insert.
func (repo *groupRepository) CreateGroup(ctx context.Context, grp group.Group) (group.Group, error) {
	var saved group.Group
	err := repo.tx.WithinTx(ctx, func(ctx context.Context) error {
		exec := repo.getExec(ctx)
		var row groupRow
		q := `INSERT INTO student_group (` + groupColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING ` + groupColumns
		err := sqlx.GetContext(ctx, exec, &row, q,
			grp.ID, grp.Name, grp.LeaderID, grp.Department,
			optString(grp.SupervisorID), optString(grp.ProjectID),
			grp.IsRegisteredForFYP, grp.CreatedAt.UTC(), grp.UpdatedAt.UTC(),
		)
		if err != nil {
			return wrap(err, "inserting group")
		}

		students := append([]string{grp.LeaderID}, grp.MemberIDs...)
		for pos, studentID := range students {
			q := `INSERT INTO group_student (student_id, group_id, position) VALUES ($1, $2, $3)`
			if _, err = exec.ExecContext(ctx, q, studentID, grp.ID, pos); err != nil {
				return wrap(err, "inserting group student")
			}
		}
		saved = row.toModel(append([]string{}, grp.MemberIDs...))
		return nil
	})
	return saved, err
}

func (repo *groupRepository) GetGroupByID(ctx context.Context, id string) (group.Group, error) {
	var row groupRow
	q := `SELECT ` + groupColumns + ` FROM student_group WHERE id = $1` + forUpdate(ctx)
	if err := sqlx.GetContext(ctx, repo.getExec(ctx), &row, q, id); err != nil {
		return group.Group{}, trapNoRowsErr(err, group.ErrNotFound, "selecting group")
	}
	members, err := repo.members(ctx, []string{id})
	if err != nil {
		return group.Group{}, err
	}
	return row.toModel(members[id]), nil
}

func (repo *groupRepository) QueryGroups(ctx context.Context, filter group.QueryFilter, ordering ...core.DBOrdering) ([]group.Group, error) {
	var w where
	if filter.Department != "" {
		w.add("department = ?", filter.Department)
	}
	if filter.WithoutSupervisor {
		w.add("supervisor_id IS NULL")
	}
	if filter.SupervisorID != "" {
		w.add("supervisor_id = ?", filter.SupervisorID)
	}
	if filter.StudentID != "" {
		w.add("id IN (SELECT group_id FROM group_student WHERE student_id = ?)", filter.StudentID)
	}

	orderBy := make([]string, 0, len(ordering))
	for _, ord := range group.CleanOrdering(ordering) {
		orderBy = append(orderBy, ord.String())
	}
	var rows []groupRow
	q := repo.db.Rebind(`SELECT ` + groupColumns + ` FROM student_group` + w.String() + ` ORDER BY ` + strings.Join(orderBy, ", "))
	if err := sqlx.SelectContext(ctx, repo.getExec(ctx), &rows, q, w.args...); err != nil {
		return nil, wrap(err, "querying groups")
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	members, err := repo.members(ctx, ids)
	if err != nil {
		return nil, err
	}
	groups := make([]group.Group, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, r.toModel(members[r.ID]))
	}
	return groups, nil
}

func (repo *groupRepository) UpdateGroupSupervisor(ctx context.Context, grp group.Group) (group.Group, error) {
	var row groupRow
	q := `UPDATE student_group SET supervisor_id = $2, project_id = $3, updated_at = $4
		WHERE id = $1
		RETURNING ` + groupColumns
	err := sqlx.GetContext(ctx, repo.getExec(ctx), &row, q,
		grp.ID, optString(grp.SupervisorID), optString(grp.ProjectID), grp.UpdatedAt.UTC(),
	)
	if err != nil {
		return group.Group{}, trapNoRowsErr(err, group.ErrNotFound, "updating group supervisor")
	}
	members, err := repo.members(ctx, []string{grp.ID})
	if err != nil {
		return group.Group{}, err
	}
	return row.toModel(members[grp.ID]), nil
}
