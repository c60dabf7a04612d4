package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/schedule"
)

const scheduleColumns = `id, group_id, panel_id, date, time_slot, room, department, notes, is_completed,
	completed_at, created_by, created_at, updated_at`

type scheduleRow struct {
	ID          string    `db:"id"`
	GroupID     string    `db:"group_id"`
	PanelID     string    `db:"panel_id"`
	Date        time.Time `db:"date"`
	TimeSlot    string    `db:"time_slot"`
	Room        string    `db:"room"`
	Department  string    `db:"department"`
	Notes       string    `db:"notes"`
	IsCompleted bool      `db:"is_completed"`
	CompletedAt null.Time `db:"completed_at"`
	CreatedBy   string    `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r scheduleRow) toModel() schedule.Schedule {
	sch := schedule.Schedule{
		ID:          r.ID,
		GroupID:     r.GroupID,
		PanelID:     r.PanelID,
		Date:        core.DateOf(r.Date),
		TimeSlot:    r.TimeSlot,
		Room:        r.Room,
		Department:  r.Department,
		Notes:       r.Notes,
		IsCompleted: r.IsCompleted,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.CompletedAt.Valid {
		at := r.CompletedAt.Time.UTC()
		sch.CompletedAt = &at
	}
	return sch
}

func schedulesToModels(rows []scheduleRow) []schedule.Schedule {
	schedules := make([]schedule.Schedule, 0, len(rows))
	for _, r := range rows {
		schedules = append(schedules, r.toModel())
	}
	return schedules
}

// dateParam binds a calendar date without any time zone conversion.
func dateParam(t time.Time) string {
	return t.Format(core.DateLayout)
}

type scheduleRepository struct {
	store
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *sqlx.DB) schedule.Repository {
	return &scheduleRepository{store: newStore(db)}
}

func (repo *scheduleRepository) CreateSchedule(ctx context.Context, sch schedule.Schedule) (schedule.Schedule, error) {
	var row scheduleRow
	q := `INSERT INTO schedule (` + scheduleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + scheduleColumns
	err := sqlx.GetContext(ctx, repo.getExec(ctx), &row, q,
		sch.ID, sch.GroupID, sch.PanelID, dateParam(sch.Date), sch.TimeSlot, sch.Room, sch.Department,
		sch.Notes, sch.IsCompleted, null.TimeFromPtr(sch.CompletedAt), sch.CreatedBy,
		sch.CreatedAt.UTC(), sch.UpdatedAt.UTC(),
	)
	if err != nil {
		return schedule.Schedule{}, wrap(err, "inserting schedule")
	}
	return row.toModel(), nil
}

func (repo *scheduleRepository) GetScheduleByID(ctx context.Context, id string) (schedule.Schedule, error) {
	var row scheduleRow
	q := `SELECT ` + scheduleColumns + ` FROM schedule WHERE id = $1` + forUpdate(ctx)
	if err := sqlx.GetContext(ctx, repo.getExec(ctx), &row, q, id); err != nil {
		return schedule.Schedule{}, trapNoRowsErr(err, schedule.ErrNotFound, "selecting schedule")
	}
	return row.toModel(), nil
}

func (repo *scheduleRepository) QuerySchedules(ctx context.Context, filter schedule.QueryFilter) ([]schedule.Schedule, error) {
	var w where
	if filter.Department != "" {
		w.add("department = ?", filter.Department)
	}
	if filter.Date != nil {
		w.add("date = ?", dateParam(*filter.Date))
	}
	if filter.Room != "" {
		w.add("room = ?", filter.Room)
	}
	if filter.PanelIDs != nil {
		w.add("panel_id = ANY(?)", pq.Array(filter.PanelIDs))
	}
	if filter.GroupIDs != nil {
		w.add("group_id = ANY(?)", pq.Array(filter.GroupIDs))
	}

	var rows []scheduleRow
	q := repo.db.Rebind(`SELECT ` + scheduleColumns + ` FROM schedule` + w.String() + ` ORDER BY date, time_slot, room`)
	if err := sqlx.SelectContext(ctx, repo.getExec(ctx), &rows, q, w.args...); err != nil {
		return nil, wrap(err, "querying schedules")
	}
	return schedulesToModels(rows), nil
}

// CheckScheduleConflicts ranks the clashing rows so that a group clash is reported before a panel
// clash, and a panel clash before a room clash.
func (repo *scheduleRepository) CheckScheduleConflicts(ctx context.Context, sch schedule.Schedule) error {
	var clashes []int
	q := `SELECT CASE WHEN group_id = $2 THEN 1 WHEN panel_id = $5 THEN 2 ELSE 3 END AS clash
		FROM schedule
		WHERE id <> $1
			AND (group_id = $2 OR (date = $3 AND time_slot = $4 AND (panel_id = $5 OR room = $6)))
		ORDER BY clash
		LIMIT 1`
	err := sqlx.SelectContext(ctx, repo.getExec(ctx), &clashes, q,
		sch.ID, sch.GroupID, dateParam(sch.Date), sch.TimeSlot, sch.PanelID, sch.Room,
	)
	if err != nil {
		return errors.Wrap(err, "checking schedule conflicts")
	}
	if len(clashes) == 0 {
		return nil
	}
	switch clashes[0] {
	case 1:
		return schedule.ErrGroupAlreadyScheduled
	case 2:
		return schedule.ErrPanelConflict
	default:
		return schedule.ErrRoomConflict
	}
}

// UpdateSchedule saves everything but the group, the department and the creation fields.
func (repo *scheduleRepository) UpdateSchedule(ctx context.Context, sch schedule.Schedule) (schedule.Schedule, error) {
	var row scheduleRow
	q := `UPDATE schedule
		SET panel_id = $2, date = $3, time_slot = $4, room = $5, notes = $6, is_completed = $7,
			completed_at = $8, updated_at = $9
		WHERE id = $1
		RETURNING ` + scheduleColumns
	err := sqlx.GetContext(ctx, repo.getExec(ctx), &row, q,
		sch.ID, sch.PanelID, dateParam(sch.Date), sch.TimeSlot, sch.Room, sch.Notes, sch.IsCompleted,
		null.TimeFromPtr(sch.CompletedAt), sch.UpdatedAt.UTC(),
	)
	if err != nil {
		return schedule.Schedule{}, trapNoRowsErr(err, schedule.ErrNotFound, "updating schedule")
	}
	return row.toModel(), nil
}

// SwapScheduleSlots writes both slots in one statement: the slot keys are only checked once both
// rows hold their new values.
func (repo *scheduleRepository) SwapScheduleSlots(ctx context.Context, sch1, sch2 schedule.Schedule) error {
	q := `UPDATE schedule AS s
		SET date = v.date::date, time_slot = v.time_slot, room = v.room, panel_id = v.panel_id,
			updated_at = v.updated_at::timestamptz
		FROM (VALUES ($1, $2, $3, $4, $5, $6), ($7, $8, $9, $10, $11, $12))
			AS v (id, date, time_slot, room, panel_id, updated_at)
		WHERE s.id = v.id`
	args := make([]interface{}, 0, 12)
	for _, sch := range []schedule.Schedule{sch1, sch2} {
		args = append(args, sch.ID, dateParam(sch.Date), sch.TimeSlot, sch.Room, sch.PanelID,
			sch.UpdatedAt.UTC().Format(time.RFC3339Nano))
	}
	res, err := repo.getExec(ctx).ExecContext(ctx, q, args...)
	if err != nil {
		return wrap(err, "swapping schedule slots")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "swapping schedule slots")
	}
	if n != 2 {
		return schedule.ErrNotFound
	}
	return nil
}

func (repo *scheduleRepository) DeleteSchedule(ctx context.Context, id string) error {
	res, err := repo.getExec(ctx).ExecContext(ctx, `DELETE FROM schedule WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting schedule")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting schedule")
	}
	if n == 0 {
		return schedule.ErrNotFound
	}
	return nil
}

func (repo *scheduleRepository) ScheduledGroupIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0)
	if err := sqlx.SelectContext(ctx, repo.getExec(ctx), &ids, `SELECT group_id FROM schedule ORDER BY group_id`); err != nil {
		return nil, errors.Wrap(err, "selecting scheduled groups")
	}
	return ids, nil
}
