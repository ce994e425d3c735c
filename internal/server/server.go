package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"coderr/internal/config"
	"coderr/internal/handler"
	"coderr/internal/middleware"
	"coderr/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// サーバーを組み立てるのに必要なもの
type Deps struct {
	Config config.Config
	Log    *zap.Logger
	//トランザクション外で使う（CallerGuard用）
	Users  repository.UserRepository
	Offers *handler.OfferHandler
	Orders *handler.OrderHandler
}

// echoを組み立てる（起動はしない）
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	//末尾スラッシュ付きでも同じルートに当てる
	e.Pre(echomw.RemoveTrailingSlash())

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: allowOrigins(d.Config.FEURL),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.HeaderRequestID},
	}))

	RegisterRoutes(e, d)
	return e
}

func allowOrigins(feURL string) []string {
	if feURL == "" {
		return []string{"*"}
	}
	return []string{feURL}
}

// ctxがキャンセルされたら止める
func Start(ctx context.Context, e *echo.Echo, addr string, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
