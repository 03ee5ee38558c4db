package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusconnect/hub/core/event"
	"github.com/campusconnect/hub/core/user"
)

type eventApi struct {
	svc      event.ServiceInterface
	userSvc  user.ServiceInterface
	validate *validator.Validate
}

func registerEventAPI(
	g *echo.Group,
	jwt, optionalAuth echo.MiddlewareFunc,
	svc event.ServiceInterface,
	userSvc user.ServiceInterface,
	validate *validator.Validate,
) {
	api := eventApi{svc: svc, userSvc: userSvc, validate: validate}

	eg := g.Group("/events")

	// public reads; an auth token, when supplied, marks the caller's RSVPs
	eg.GET("", api.query, optionalAuth)
	eg.GET("/:id", api.retrieve, optionalAuth)

	// authed RSVP endpoints
	eg.POST("/:id/rsvp", api.rsvp, jwt)
	eg.DELETE("/:id/rsvp", api.cancelRsvp, jwt)
	g.GET("/rsvps/mine", api.myRsvps, jwt)

	// admin endpoints
	ag := eg.Group("", jwt, adminMiddleware())
	ag.POST("", api.create)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
	ag.GET("/:id/attendees", api.attendees)
	ag.GET("/:id/attendees/export", api.exportAttendees)
}

func (api *eventApi) query(ctx echo.Context) error {
	filter := new(event.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	views, err := api.svc.Query(ctx.Request().Context(), *filter, contextViewerID(ctx))
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *eventApi) retrieve(ctx echo.Context) error {
	view, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"), contextViewerID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *eventApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data event.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	view, err := api.svc.Create(ctx.Request().Context(), data, usr)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusCreated, view)
}

func (api *eventApi) update(ctx echo.Context) error {
	var data event.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, successResponse{Success: "Event updated successfully."})
}

func (api *eventApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *eventApi) rsvp(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	view, err := api.svc.Rsvp(ctx.Request().Context(), ctx.Param("id"), usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *eventApi) cancelRsvp(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.CancelRsvp(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *eventApi) myRsvps(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	views, err := api.svc.MyRsvps(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying RSVPs")
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *eventApi) attendees(ctx echo.Context) error {
	attendees, err := api.svc.Attendees(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, attendees)
}

func (api *eventApi) exportAttendees(ctx echo.Context) error {
	file, err := api.svc.ExportAttendees(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Filename))
	return ctx.Blob(http.StatusOK, file.ContentType, file.Content)
}
