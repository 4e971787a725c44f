package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pocketcoach/coaching/core/batch"
)

type batchApi struct {
	svc      batch.ServiceInterface
	validate *validator.Validate
}

func registerBatchAPI(g *echo.Group, svc batch.ServiceInterface, validate *validator.Validate) {
	api := batchApi{svc: svc, validate: validate}

	bg := g.Group("/batches")
	bg.POST("", api.create)
	bg.GET("", api.query)
	bg.GET("/:id", api.retrieve)
	bg.PUT("/:id", api.update)
	bg.DELETE("/:id", api.destroy)

	cg := g.Group("/categories")
	cg.POST("", api.createCategory)
	cg.GET("", api.queryCategories)
	cg.GET("/:id", api.retrieveCategory)
	cg.PUT("/:id", api.updateCategory)
	cg.DELETE("/:id", api.destroyCategory)
}

// Handlers

func (api *batchApi) create(ctx echo.Context) error {
	var data batch.NewBatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBatch")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	bat, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating batch")
	}
	return ctx.JSON(http.StatusCreated, bat)
}

func (api *batchApi) query(ctx echo.Context) error {
	batches, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying batches")
	}
	if batches == nil {
		batches = []batch.Batch{}
	}
	return ctx.JSON(http.StatusOK, batches)
}

func (api *batchApi) retrieve(ctx echo.Context) error {
	bat, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == batch.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "retrieving batch")
	}
	return ctx.JSON(http.StatusOK, bat)
}

func (api *batchApi) update(ctx echo.Context) error {
	var data batch.UpdateBatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateBatch")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	bat, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == batch.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating batch")
	}
	return ctx.JSON(http.StatusOK, bat)
}

func (api *batchApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == batch.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting batch")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *batchApi) createCategory(ctx echo.Context) error {
	var data batch.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.CreateCategory(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating category")
	}
	return ctx.JSON(http.StatusCreated, cat)
}

func (api *batchApi) queryCategories(ctx echo.Context) error {
	cats, err := api.svc.QueryCategories(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	if cats == nil {
		cats = []batch.Category{}
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *batchApi) retrieveCategory(ctx echo.Context) error {
	cat, err := api.svc.GetCategoryByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == batch.ErrCategoryNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "retrieving category")
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *batchApi) updateCategory(ctx echo.Context) error {
	var data batch.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.UpdateCategory(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == batch.ErrCategoryNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating category")
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *batchApi) destroyCategory(ctx echo.Context) error {
	if err := api.svc.DeleteCategory(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == batch.ErrCategoryNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting category")
	}
	return ctx.NoContent(http.StatusNoContent)
}
