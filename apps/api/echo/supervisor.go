package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/fyp/core/supervisor"
)

type supervisorApi struct {
	svc      *supervisor.Service
	validate *validator.Validate
}

func registerSupervisorAPI(g *echo.Group, coordinator echo.MiddlewareFunc, svc *supervisor.Service, validate *validator.Validate) {
	api := supervisorApi{svc: svc, validate: validate}

	sg := g.Group("/supervisors", coordinator)
	sg.GET("/availability", api.availability)
	sg.PUT("/:id/availability", api.setAvailability)
}

// Handlers

func (api *supervisorApi) availability(ctx echo.Context) error {
	filter := supervisor.QueryFilter{Department: ctx.QueryParam(departmentParam)}
	filter.Clean()
	res, err := api.svc.Availability(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying supervisors availability")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *supervisorApi) setAvailability(ctx echo.Context) error {
	var data supervisor.UpdateAvailability
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAvailability")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sup, err := api.svc.SetAvailability(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "setting supervisor availability")
	}
	return ctx.JSON(http.StatusOK, sup.Availability())
}
