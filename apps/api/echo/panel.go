package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/panel"
)

type panelApi struct {
	svc      *panel.Service
	validate *validator.Validate
}

func registerPanelAPI(g *echo.Group, coordinator echo.MiddlewareFunc, svc *panel.Service, validate *validator.Validate) {
	api := panelApi{svc: svc, validate: validate}

	pg := g.Group("/panels", coordinator)
	pg.POST("", api.create)
	pg.GET("", api.query)

	// detail endpoints
	dg := pg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *panelApi) create(ctx echo.Context) error {
	var data panel.NewPanel
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPanel")
	}
	defaultDepartment(ctx, &data.Department)
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	pnl, err := api.svc.Create(ctx.Request().Context(), actorID(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating panel")
	}
	return ctx.JSON(http.StatusCreated, pnl)
}

func (api *panelApi) query(ctx echo.Context) error {
	filter := panel.QueryFilter{Department: departmentOrDefault(ctx)}
	if val := ctx.QueryParam("is_active"); val != "" {
		active, err := strconv.ParseBool(val)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "is_active", Error: "must be true or false"})
		}
		filter.IsActive = &active
	}
	filter.Clean()

	pnls, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying panels")
	}
	return ctx.JSON(http.StatusOK, pnls)
}

func (api *panelApi) retrieve(ctx echo.Context) error {
	pnl, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding panel by ID")
	}
	return ctx.JSON(http.StatusOK, pnl)
}

func (api *panelApi) update(ctx echo.Context) error {
	var data panel.UpdatePanel
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePanel")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	pnl, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating panel")
	}
	return ctx.JSON(http.StatusOK, pnl)
}

func (api *panelApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting panel")
	}
	return ctx.NoContent(http.StatusNoContent)
}
