package repository

import (
	"context"

	"coderr/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	//customerかbusinessとして関わっている注文（新しい順）
	ListByParticipant(ctx context.Context, userID int64) ([]model.Order, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	Delete(ctx context.Context, orderID int64) error
	CountByBusinessUserAndStatus(ctx context.Context, businessUserID int64, status model.OrderStatus) (int64, error)
}

type OrderFeatureRepository interface {
	CreateBulk(ctx context.Context, orderID int64, names []string) error
	ListByOrderIDs(ctx context.Context, orderIDs []int64) ([]model.OrderFeature, error)
}
