package server

import (
	"net/http"

	"coderr/internal/middleware"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	//API はすべて認証必須
	api := e.Group("/api",
		middleware.AuthJWT(d.Config),
		middleware.CallerGuard(d.Users),
	)
	d.Offers.RegisterRoutes(api)
	d.Orders.RegisterRoutes(api)
}
