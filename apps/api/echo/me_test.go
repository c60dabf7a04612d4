package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/fyp/apps/api/echo"
	"github.com/trezcool/fyp/core/panel"
	"github.com/trezcool/fyp/core/schedule"
	"github.com/trezcool/fyp/tests"
)

func TestMeAPI_supervisor(t *testing.T) {
	fx := setupSchedules(t, 3)
	ctx := context.Background()
	ada := fx.panelP.MemberIDs[0]
	inactive := testutil.CreatePanel(t, fx.app.Panels, "Old", "CS", ada)
	_, err := fx.app.PanelSvc.Update(ctx, inactive.ID, panel.UpdatePanel{IsActive: new(bool)})
	require.NoError(t, err)

	sch1 := testutil.CreateSchedule(t, fx.app.Schedules, fx.groups[0], fx.panelP, day, "09:00-09:30", room)
	testutil.CreateSchedule(t, fx.app.Schedules, fx.groups[1], fx.panelQ, day, "09:30-10:00", room)
	for _, grp := range fx.groups[:2] {
		_, err = fx.app.AllocSvc.Assign(ctx, "coord-1", grp.ID, ada)
		require.NoError(t, err)
	}
	token := fx.app.token(t, ada, echoapi.RoleSupervisor, "CS")

	fx.app.run(t, []httpTest{
		{name: "panels", path: "/v1/me/panels", token: token, wantData: marshalList(t, fx.panelP)},
		{name: "panel schedules", path: "/v1/me/panel-schedules", token: token, wantData: marshalList(t, sch1)},
		{
			name: "no panels", path: "/v1/me/panel-schedules",
			token: fx.app.token(t, "sup-x", echoapi.RoleSupervisor, "CS"), wantData: marshalList(t),
		},
		{
			name: "student route", path: "/v1/me/schedule", token: token,
			wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "permission denied"}),
		},
	})

	t.Run("group schedules", func(t *testing.T) {
		rec := fx.app.do(http.MethodGet, "/v1/me/group-schedules", token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var ov schedule.SupervisedOverview
		unmarshal(t, rec, &ov)
		assert.Equal(t, 2, ov.TotalGroups)
		assert.Equal(t, 2, ov.ScheduledCount)
		assert.Equal(t, 0, ov.UnscheduledCount)
	})
}

func TestMeAPI_student(t *testing.T) {
	fx := setupSchedules(t, 2)
	g1, g2 := fx.groups[0], fx.groups[1]
	sch := testutil.CreateSchedule(t, fx.app.Schedules, g1, fx.panelP, day, "09:00-09:30", room)

	t.Run("scheduled", func(t *testing.T) {
		rec := fx.app.do(http.MethodGet, "/v1/me/schedule", fx.app.token(t, g1.LeaderID, echoapi.RoleStudent, "CS"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var gs schedule.GroupSchedule
		unmarshal(t, rec, &gs)
		assert.Equal(t, g1.ID, gs.Group.ID)
		require.NotNil(t, gs.Schedule)
		assert.Equal(t, sch.ID, gs.Schedule.ID)
	})

	t.Run("member of an unscheduled group", func(t *testing.T) {
		rec := fx.app.do(http.MethodGet, "/v1/me/schedule", fx.app.token(t, g2.MemberIDs[0], echoapi.RoleStudent, "CS"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var gs schedule.GroupSchedule
		unmarshal(t, rec, &gs)
		assert.Equal(t, g2.ID, gs.Group.ID)
		assert.Nil(t, gs.Schedule)
	})

	fx.app.run(t, []httpTest{
		{
			name: "no group", path: "/v1/me/schedule", token: fx.app.token(t, "stu-x", echoapi.RoleStudent, "CS"),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "group not found", Code: "group_not_found"}),
		},
	})
}
