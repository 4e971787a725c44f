package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pocketcoach/coaching/core/branch"
)

type branchApi struct {
	svc      branch.ServiceInterface
	validate *validator.Validate
}

func registerBranchAPI(g *echo.Group, svc branch.ServiceInterface, validate *validator.Validate) {
	api := branchApi{svc: svc, validate: validate}

	bg := g.Group("/branches")
	bg.POST("", api.create)
	bg.GET("", api.query)
	bg.GET("/:id", api.retrieve)
	bg.PUT("/:id", api.update)
	bg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *branchApi) create(ctx echo.Context) error {
	var data branch.NewBranch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBranch")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	br, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating branch")
	}
	return ctx.JSON(http.StatusCreated, br)
}

func (api *branchApi) query(ctx echo.Context) error {
	branches, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying branches")
	}
	if branches == nil {
		branches = []branch.Branch{}
	}
	return ctx.JSON(http.StatusOK, branches)
}

func (api *branchApi) retrieve(ctx echo.Context) error {
	br, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == branch.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "retrieving branch")
	}
	return ctx.JSON(http.StatusOK, br)
}

func (api *branchApi) update(ctx echo.Context) error {
	var data branch.UpdateBranch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateBranch")
	}

	br, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == branch.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating branch")
	}
	return ctx.JSON(http.StatusOK, br)
}

func (api *branchApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == branch.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting branch")
	}
	return ctx.NoContent(http.StatusNoContent)
}
