package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/core/news"
	"github.com/campusconnect/hub/core/user"
)

type newsApi struct {
	svc      news.ServiceInterface
	userSvc  user.ServiceInterface
	validate *validator.Validate
}

func registerNewsAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc news.ServiceInterface, userSvc user.ServiceInterface, validate *validator.Validate) {
	api := newsApi{svc: svc, userSvc: userSvc, validate: validate}

	ng := g.Group("/news")

	// public reads
	ng.GET("", api.query)
	ng.GET("/:id", api.retrieve)

	// admin writes
	ag := ng.Group("", jwt, adminMiddleware())
	ag.POST("", api.create)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

func (api *newsApi) query(ctx echo.Context) error {
	filter := new(news.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	page := new(core.Page)
	if err := ctx.Bind(page); err != nil {
		return errors.Wrap(err, "binding to Page")
	}

	posts, total, err := api.svc.Query(ctx.Request().Context(), *filter, *page)
	if err != nil {
		return errors.Wrap(err, "querying news posts")
	}
	page.Clamp(news.DefaultPageSize)
	return ctx.JSON(http.StatusOK, pagedResponse{
		Items:      posts,
		PageNumber: page.Number,
		PageSize:   page.Size,
		TotalCount: total,
	})
}

func (api *newsApi) retrieve(ctx echo.Context) error {
	view, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *newsApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data news.NewPost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	view, err := api.svc.Create(ctx.Request().Context(), data, usr.ID)
	if err != nil {
		return errors.Wrap(err, "creating news post")
	}
	return ctx.JSON(http.StatusCreated, view)
}

func (api *newsApi) update(ctx echo.Context) error {
	var data news.NewPost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	view, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *newsApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
