package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/allocation"
	"github.com/trezcool/fyp/core/group"
)

type groupApi struct {
	svc   *group.Service
	alloc *allocation.Service
}

func registerGroupAPI(g *echo.Group, coordinator echo.MiddlewareFunc, svc *group.Service, alloc *allocation.Service) {
	api := groupApi{svc: svc, alloc: alloc}

	gg := g.Group("/groups", coordinator)
	gg.GET("", api.query)
	gg.GET("/without-supervisor", api.withoutSupervisor)
	gg.GET("/:id", api.retrieve)
	gg.PUT("/:groupId/assign-supervisor/:supervisorId", api.assignSupervisor)
	gg.PUT("/:groupId/change-supervisor/:supervisorId", api.changeSupervisor)
}

// Handlers

func (api *groupApi) query(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	filter := group.QueryFilter{Department: ctx.QueryParam(departmentParam)}
	filter.Clean()
	groups, err := api.svc.Query(ctx.Request().Context(), filter, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupApi) withoutSupervisor(ctx echo.Context) error {
	groups, err := api.svc.WithoutSupervisor(ctx.Request().Context(), ctx.QueryParam(departmentParam))
	if err != nil {
		return errors.Wrap(err, "querying groups without supervisor")
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	grp, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding group by ID")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) assignSupervisor(ctx echo.Context) error {
	res, err := api.alloc.Assign(
		ctx.Request().Context(),
		actorID(ctx),
		core.CleanString(ctx.Param("groupId")),
		core.CleanString(ctx.Param("supervisorId")),
	)
	if err != nil {
		return errors.Wrap(err, "assigning supervisor")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *groupApi) changeSupervisor(ctx echo.Context) error {
	res, err := api.alloc.Change(
		ctx.Request().Context(),
		actorID(ctx),
		core.CleanString(ctx.Param("groupId")),
		core.CleanString(ctx.Param("supervisorId")),
	)
	if err != nil {
		return errors.Wrap(err, "changing supervisor")
	}
	return ctx.JSON(http.StatusOK, res)
}
