package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pocketcoach/coaching/core"
	"github.com/pocketcoach/coaching/core/student"
)

// fields clients may order student listings by
var studentOrderingFields = map[string]string{
	"name":       "name",
	"created_at": "created_at",
	"gpa":        "gpa",
}

type studentApi struct {
	svc      student.ServiceInterface
	conf     *core.Config
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, svc student.ServiceInterface, conf *core.Config, validate *validator.Validate) {
	api := studentApi{svc: svc, conf: conf, validate: validate}

	sg := g.Group("/students")
	sg.POST("", api.create)
	sg.GET("", api.query)

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/due", api.due)
	dg.POST("/payments", api.addPayment)

	g.PUT("/payments/:id", api.updatePayment)
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	st, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, st)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean(api.conf.DefaultPageSize, api.conf.MaxPageSize)

	ordering := new(Ordering)
	ordering.Bind(ctx)
	var orderings []core.DBOrdering
	for _, ord := range ordering.Orderings {
		if field, ok := studentOrderingFields[ord.Field]; ok {
			orderings = append(orderings, core.DBOrdering{Field: field, Ascending: ord.Ascending})
		}
	}

	page, err := api.svc.Filter(ctx.Request().Context(), *filter, orderings...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	st, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "retrieving student")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	st, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) due(ctx echo.Context) error {
	due, err := api.svc.CalculateDue(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "calculating due")
	}
	return ctx.JSON(http.StatusOK, due)
}

func (api *studentApi) addPayment(ctx echo.Context) error {
	var data student.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	pmt, err := api.svc.AddPayment(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "adding payment")
	}
	return ctx.JSON(http.StatusCreated, pmt)
}

func (api *studentApi) updatePayment(ctx echo.Context) error {
	var data student.UpdatePayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	pmt, err := api.svc.UpdatePayment(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == student.ErrPaymentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating payment")
	}
	return ctx.JSON(http.StatusOK, pmt)
}
