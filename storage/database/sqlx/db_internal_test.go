package sqlxrepos

import (
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/fyp/core/group"
	"github.com/trezcool/fyp/core/schedule"
	"github.com/trezcool/fyp/core/supervisor"
)

func TestMapPGError(t *testing.T) {
	other := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "room slot", err: &pq.Error{Code: "23505", Constraint: "schedule_room_slot_key"}, want: schedule.ErrRoomConflict},
		{name: "panel slot", err: &pq.Error{Code: "23505", Constraint: "schedule_panel_slot_key"}, want: schedule.ErrPanelConflict},
		{name: "capacity check", err: &pq.Error{Code: "23514", Constraint: "supervisor_count_check"}, want: supervisor.ErrCapacityExceeded},
		{name: "wrapped", err: errors.Wrap(&pq.Error{Code: "23505", Constraint: "group_student_pkey"}, "inserting"), want: group.ErrStudentInGroup},
		{name: "unknown constraint", err: other, want: other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapPGError(tt.err))
		})
	}

	unknown := &pq.Error{Code: "23505", Constraint: "whatever"}
	assert.Equal(t, error(unknown), mapPGError(unknown))
}

func TestTrapNoRowsErr(t *testing.T) {
	assert.Equal(t, schedule.ErrNotFound, trapNoRowsErr(sql.ErrNoRows, schedule.ErrNotFound, "selecting"))
	assert.EqualError(t, trapNoRowsErr(errors.New("boom"), schedule.ErrNotFound, "selecting"), "selecting: boom")
	assert.Nil(t, wrap(nil, "selecting"))
}

func TestWhere(t *testing.T) {
	var w where
	assert.Equal(t, "", w.String())

	w.add("department = ?", "CS")
	w.add("supervisor_id IS NULL")
	assert.Equal(t, " WHERE department = ? AND supervisor_id IS NULL", w.String())
	assert.Equal(t, []interface{}{"CS"}, w.args)
}
