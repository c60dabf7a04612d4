package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/schedule"
)

type scheduleApi struct {
	svc      *schedule.Service
	validate *validator.Validate
}

func registerScheduleAPI(g *echo.Group, coordinator echo.MiddlewareFunc, svc *schedule.Service, validate *validator.Validate) {
	api := scheduleApi{svc: svc, validate: validate}

	sg := g.Group("/schedules", coordinator)
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.POST("/auto-schedule", api.autoSchedule)
	sg.POST("/swap", api.swap)

	// detail endpoints
	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.PUT("/completion", api.setCompletion)
}

// Handlers

func (api *scheduleApi) create(ctx echo.Context) error {
	var data schedule.NewSchedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchedule")
	}
	defaultDepartment(ctx, &data.Department)
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sch, err := api.svc.Create(ctx.Request().Context(), actorID(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating schedule")
	}
	return ctx.JSON(http.StatusCreated, sch)
}

// query lists the schedules of a department (the caller's by default), optionally of one date or panel.
func (api *scheduleApi) query(ctx echo.Context) error {
	filter := schedule.QueryFilter{Department: departmentOrDefault(ctx)}
	if val := ctx.QueryParam(dateParam); val != "" {
		date, err := core.ParseDate(val)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: dateParam, Error: "must be a date formatted as YYYY-MM-DD"})
		}
		filter.Date = &date
	}
	if val := core.CleanString(ctx.QueryParam(panelParam)); val != "" {
		filter.PanelIDs = []string{val}
	}

	schedules, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying schedules")
	}
	return ctx.JSON(http.StatusOK, schedules)
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	sch, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding schedule by ID")
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *scheduleApi) update(ctx echo.Context) error {
	var data schedule.UpdateSchedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSchedule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sch, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating schedule")
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *scheduleApi) destroy(ctx echo.Context) error {
	if err := api.svc.Remove(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "removing schedule")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scheduleApi) setCompletion(ctx echo.Context) error {
	var data schedule.Completion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Completion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sch, err := api.svc.MarkCompleted(ctx.Request().Context(), ctx.Param("id"), *data.IsCompleted)
	if err != nil {
		return errors.Wrap(err, "marking schedule completion")
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *scheduleApi) autoSchedule(ctx echo.Context) error {
	var data schedule.AutoSchedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AutoSchedule")
	}
	defaultDepartment(ctx, &data.Department)
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.AutoSchedule(ctx.Request().Context(), actorID(ctx), data)
	if err != nil {
		return errors.Wrap(err, "auto-scheduling")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *scheduleApi) swap(ctx echo.Context) error {
	var data schedule.Swap
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Swap")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	schedules, err := api.svc.Swap(ctx.Request().Context(), data.ScheduleID1, data.ScheduleID2)
	if err != nil {
		return errors.Wrap(err, "swapping schedules")
	}
	return ctx.JSON(http.StatusOK, schedules)
}
