package repository

import (
	"context"

	"coderr/internal/domain/model"

	"gorm.io/gorm"
)

type OrderFeatureGormRepository struct {
	db *gorm.DB
}

func NewOrderFeatureGormRepository(db *gorm.DB) *OrderFeatureGormRepository {
	return &OrderFeatureGormRepository{db: db}
}

func (r *OrderFeatureGormRepository) CreateBulk(ctx context.Context, orderID int64, names []string) error {
	if len(names) == 0 {
		return nil
	}
	items := make([]model.OrderFeature, 0, len(names))
	for _, n := range names {
		items = append(items, model.OrderFeature{OrderID: orderID, Name: n})
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return err
	}
	return nil
}

func (r *OrderFeatureGormRepository) ListByOrderIDs(ctx context.Context, orderIDs []int64) ([]model.OrderFeature, error) {
	if len(orderIDs) == 0 {
		return []model.OrderFeature{}, nil
	}
	var items []model.OrderFeature
	err := r.db.WithContext(ctx).Where("order_id IN ?", orderIDs).Order("id asc").Find(&items).Error
	if err != nil {
		return []model.OrderFeature{}, err
	}
	return items, nil
}
