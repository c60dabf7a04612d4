package echoapi_test

import (
	"net/http"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/fyp/apps/api/echo"
	"github.com/trezcool/fyp/core/panel"
	"github.com/trezcool/fyp/tests"
)

func TestPanelAPI(t *testing.T) {
	app := newTestApp(t)
	ada := testutil.CreateSupervisor(t, app.Supervisors, "Ada", "CS", 4, 0)
	bob := testutil.CreateSupervisor(t, app.Supervisors, "Bob", "CS", 4, 0)
	eve := testutil.CreateSupervisor(t, app.Supervisors, "Eve", "EE", 4, 0)
	token := app.token(t, "coord-1", echoapi.RoleCoordinator, "CS")

	// department defaults to the coordinator's
	rec := app.do(http.MethodPost, "/v1/panels", token, []byte(`{"name": " Panel A ", "member_ids": ["`+bob.ID+`", "`+ada.ID+`", "`+ada.ID+`"]}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var pnlA panel.Panel
	unmarshal(t, rec, &pnlA)
	wantMembers := []string{ada.ID, bob.ID}
	sort.Strings(wantMembers)
	assert.Equal(t, "Panel A", pnlA.Name)
	assert.Equal(t, "CS", pnlA.Department)
	assert.Equal(t, wantMembers, pnlA.MemberIDs)
	assert.True(t, pnlA.IsActive)
	assert.Equal(t, "coord-1", pnlA.CreatedBy)

	pnlE := testutil.CreatePanel(t, app.Panels, "Panel E", "EE", eve.ID)
	inUse := testutil.CreatePanel(t, app.Panels, "Panel B", "CS", bob.ID)
	grp := testutil.CreateGroup(t, app.Groups, "G1", "CS", 1)
	testutil.CreateSchedule(t, app.Schedules, grp, inUse, "2025-12-15", "09:00-09:30", "Room 301")

	app.run(t, []httpTest{
		{
			name: "cross department member", method: http.MethodPost, path: "/v1/panels", token: token,
			body:     []byte(`{"name": "Mixed", "member_ids": ["` + ada.ID + `", "` + eve.ID + `"]}`),
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "all panel members must be from CS department", Code: "cross_department_member"}),
		},
		{
			name: "unknown member", method: http.MethodPost, path: "/v1/panels", token: token,
			body:     []byte(`{"name": "Ghost", "member_ids": ["nope"]}`),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "one or more faculty members not found", Code: "panel_member_not_found"}),
		},
		{
			name: "blank name", method: http.MethodPost, path: "/v1/panels", token: token,
			body:     []byte(`{"name": "  ", "member_ids": ["` + ada.ID + `"]}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name": "this field is required"}`),
		},
		// newest first
		{name: "list (own department)", path: "/v1/panels", token: token, wantData: marshalList(t, inUse, pnlA)},
		{name: "list (EE)", path: "/v1/panels?department=EE", token: token, wantData: marshalList(t, pnlE)},
		{
			name: "bad is_active", path: "/v1/panels?is_active=lol", token: token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"is_active": "must be true or false"}`),
		},
		{name: "retrieve", path: "/v1/panels/" + pnlE.ID, token: token, wantData: marshalObj(t, pnlE)},
		{
			name: "retrieve unknown", path: "/v1/panels/nope", token: token,
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "evaluation panel not found", Code: "panel_not_found"}),
		},
		{
			name: "delete in use", method: http.MethodDelete, path: "/v1/panels/" + inUse.ID, token: token,
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "evaluation panel is referenced by presentation schedules", Code: "panel_in_use"}),
		},
		{
			name: "update with cross department member", method: http.MethodPut, path: "/v1/panels/" + pnlA.ID, token: token,
			body:     []byte(`{"member_ids": ["` + eve.ID + `"]}`),
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "all panel members must be from CS department", Code: "cross_department_member"}),
		},
	})

	t.Run("deactivate", func(t *testing.T) {
		rec := app.do(http.MethodPut, "/v1/panels/"+pnlA.ID, token, []byte(`{"is_active": false, "description": " finals "}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got panel.Panel
		unmarshal(t, rec, &got)
		assert.False(t, got.IsActive)
		assert.Equal(t, "finals", got.Description)
		assert.Equal(t, wantMembers, got.MemberIDs)

		rec = app.do(http.MethodGet, "/v1/panels?is_active=true", token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var active []panel.Panel
		unmarshal(t, rec, &active)
		require.Len(t, active, 1)
		assert.Equal(t, inUse.ID, active[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		rec := app.do(http.MethodDelete, "/v1/panels/"+pnlA.ID, token)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = app.do(http.MethodGet, "/v1/panels/"+pnlA.ID, token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
