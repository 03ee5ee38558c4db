package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusconnect/hub/core/analytics"
)

type adminApi struct {
	svc analytics.ServiceInterface
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc analytics.ServiceInterface) {
	api := adminApi{svc: svc}

	ag := g.Group("/admin", jwt, adminMiddleware())
	ag.GET("/dashboard", api.dashboard)
	ag.GET("/analytics", api.analytics)
}

func (api *adminApi) dashboard(ctx echo.Context) error {
	summary, err := api.svc.Summary(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building dashboard summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *adminApi) analytics(ctx echo.Context) error {
	report, err := api.svc.Report(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building analytics report")
	}
	return ctx.JSON(http.StatusOK, report)
}
