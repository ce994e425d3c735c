package middleware

import (
	"coderr/internal/repository"
	"coderr/internal/usecase"

	"github.com/labstack/echo/v4"
)

// DBから最新のユーザーを読んで、usecaseに渡すCallerを作る。
// JWTのtvとtoken_versionが違う、または無効なユーザーは401。
func CallerGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたuser_id を取得する
			userID, ok := c.Get(CtxUserIDKey).(int64)
			if !ok || userID <= 0 {
				return unauthorized(c)
			}

			tv, ok := c.Get(CtxTokenVersionKey).(int)
			if !ok || tv < 0 {
				return unauthorized(c)
			}

			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if err != nil || user == nil {
				return unauthorized(c)
			}

			//token_version が一致しなければ強制ログアウト扱い
			if user.TokenVersion != tv || !user.IsActive {
				return unauthorized(c)
			}

			c.Set(CtxCallerKey, usecase.NewCaller(*user))
			return next(c)
		}
	}
}

// CallerGuardを通ったリクエストのCaller
func CallerFrom(c echo.Context) (usecase.Caller, bool) {
	caller, ok := c.Get(CtxCallerKey).(usecase.Caller)
	if !ok || caller.UserID <= 0 {
		return usecase.Caller{}, false
	}
	return caller, true
}
