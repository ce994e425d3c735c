package middleware

import (
	"net/http"

	"coderr/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// 指定したtypeのユーザーだけ通す（例: 注文作成はcustomerだけ）
func RequireUserType(t model.UserType, forbiddenMsg string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := CallerFrom(c)
			if !ok {
				return unauthorized(c)
			}
			if caller.Type != t {
				return c.JSON(http.StatusForbidden, errorJSON(forbiddenMsg))
			}
			return next(c)
		}
	}
}
