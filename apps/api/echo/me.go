package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/fyp/core/panel"
	"github.com/trezcool/fyp/core/schedule"
)

// meApi serves the caller's own views: supervisors see their panels and groups, students their schedule.
type meApi struct {
	panels    *panel.Service
	schedules *schedule.Service
}

func registerMeAPI(g *echo.Group, panels *panel.Service, schedules *schedule.Service) {
	api := meApi{panels: panels, schedules: schedules}

	mg := g.Group("/me")
	mg.GET("/panels", api.panelsOf, roleMiddleware(RoleSupervisor))
	mg.GET("/panel-schedules", api.panelSchedules, roleMiddleware(RoleSupervisor))
	mg.GET("/group-schedules", api.groupSchedules, roleMiddleware(RoleSupervisor))
	mg.GET("/schedule", api.studentSchedule, roleMiddleware(RoleStudent))
}

// Handlers

func (api *meApi) panelsOf(ctx echo.Context) error {
	pnls, err := api.panels.ForMember(ctx.Request().Context(), actorID(ctx))
	if err != nil {
		return errors.Wrap(err, "querying member panels")
	}
	return ctx.JSON(http.StatusOK, pnls)
}

func (api *meApi) panelSchedules(ctx echo.Context) error {
	schedules, err := api.schedules.ForPanelMember(ctx.Request().Context(), actorID(ctx))
	if err != nil {
		return errors.Wrap(err, "querying panel schedules")
	}
	return ctx.JSON(http.StatusOK, schedules)
}

func (api *meApi) groupSchedules(ctx echo.Context) error {
	ov, err := api.schedules.SupervisedOverview(ctx.Request().Context(), actorID(ctx))
	if err != nil {
		return errors.Wrap(err, "querying supervised groups schedules")
	}
	return ctx.JSON(http.StatusOK, ov)
}

func (api *meApi) studentSchedule(ctx echo.Context) error {
	gs, err := api.schedules.ForStudent(ctx.Request().Context(), actorID(ctx))
	if err != nil {
		return errors.Wrap(err, "finding student schedule")
	}
	return ctx.JSON(http.StatusOK, gs)
}
