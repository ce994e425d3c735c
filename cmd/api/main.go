package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"coderr/internal/config"
	"coderr/internal/handler"
	"coderr/internal/infra/db"
	infraRepo "coderr/internal/infra/repository"
	"coderr/internal/logger"
	"coderr/internal/server"
	"coderr/internal/usecase"
	"coderr/internal/validator"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envがあれば読む（本番は環境変数だけ）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.IsProd())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		zl.Fatal("db connect", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		zl.Fatal("db migrate", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//Usecase生成
	offerUC := usecase.NewOfferUsecase(txm, validator.NewOfferValidator(), zl)
	orderUC := usecase.NewOrderUsecase(txm, zl)

	e := server.New(server.Deps{
		Config: cfg,
		Log:    zl,
		Users:  userRepo,
		Offers: handler.NewOfferHandler(offerUC),
		Orders: handler.NewOrderHandler(orderUC),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx, e, cfg.Addr(), zl); err != nil {
		zl.Fatal("server", zap.Error(err))
	}
}
