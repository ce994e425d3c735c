package repository

import (
	"context"
	"time"

	"coderr/internal/domain/model"
	repo "coderr/internal/repository"

	"gorm.io/gorm"
)

type OfferGormRepository struct {
	db *gorm.DB
}

// DI
func NewOfferGormRepository(db *gorm.DB) *OfferGormRepository {
	return &OfferGormRepository{db: db}
}

// オファーの作成（プランは別で作る）
func (r *OfferGormRepository) Create(ctx context.Context, o model.Offer) (model.Offer, error) {
	o.Details = nil
	if err := r.db.WithContext(ctx).Create(&o).Error; err != nil {
		return model.Offer{}, translate(err)
	}
	return o, nil
}

// IDでオファーを取得
func (r *OfferGormRepository) FindByID(ctx context.Context, id int64) (model.Offer, error) {
	var o model.Offer
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return model.Offer{}, translate(err)
	}
	return o, nil
}

// 一覧（新しく更新された順）
func (r *OfferGormRepository) List(ctx context.Context) ([]model.Offer, error) {
	var offers []model.Offer
	if err := r.db.WithContext(ctx).
		Order("updated_at desc").
		Order("id desc").
		Find(&offers).Error; err != nil {
		return []model.Offer{}, err
	}
	return offers, nil
}

// オファーの更新
func (r *OfferGormRepository) Update(ctx context.Context, o model.Offer) error {
	res := r.db.WithContext(ctx).Model(&model.Offer{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
		"title":       o.Title,
		"description": o.Description,
		"image":       o.Image,
		"updated_at":  time.Now(),
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// オファー削除
func (r *OfferGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Offer{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type OfferDetailGormRepository struct {
	db *gorm.DB
}

func NewOfferDetailGormRepository(db *gorm.DB) *OfferDetailGormRepository {
	return &OfferDetailGormRepository{db: db}
}

func (r *OfferDetailGormRepository) Create(ctx context.Context, d model.OfferDetail) (model.OfferDetail, error) {
	d.Features = nil
	if err := r.db.WithContext(ctx).Create(&d).Error; err != nil {
		return model.OfferDetail{}, translate(err)
	}
	return d, nil
}

func (r *OfferDetailGormRepository) FindByID(ctx context.Context, id int64) (model.OfferDetail, error) {
	var d model.OfferDetail
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return model.OfferDetail{}, translate(err)
	}
	return d, nil
}

func (r *OfferDetailGormRepository) ListByOfferID(ctx context.Context, offerID int64) ([]model.OfferDetail, error) {
	var details []model.OfferDetail
	if err := r.db.WithContext(ctx).
		Where("offer_id = ?", offerID).
		Order("id asc").
		Find(&details).Error; err != nil {
		return []model.OfferDetail{}, err
	}
	return details, nil
}

// 一覧表示用にまとめて取る（N+1回避）
func (r *OfferDetailGormRepository) ListByOfferIDs(ctx context.Context, offerIDs []int64) ([]model.OfferDetail, error) {
	if len(offerIDs) == 0 {
		return []model.OfferDetail{}, nil
	}
	var details []model.OfferDetail
	if err := r.db.WithContext(ctx).
		Where("offer_id IN ?", offerIDs).
		Order("offer_id asc, id asc").
		Find(&details).Error; err != nil {
		return []model.OfferDetail{}, err
	}
	return details, nil
}

func (r *OfferDetailGormRepository) Update(ctx context.Context, d model.OfferDetail) error {
	res := r.db.WithContext(ctx).Model(&model.OfferDetail{}).Where("id = ?", d.ID).Updates(map[string]interface{}{
		"title":                 d.Title,
		"offer_type":            d.OfferType,
		"revisions":             d.Revisions,
		"delivery_time_in_days": d.DeliveryTimeInDays,
		"price":                 d.Price,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type OfferFeatureGormRepository struct {
	db *gorm.DB
}

func NewOfferFeatureGormRepository(db *gorm.DB) *OfferFeatureGormRepository {
	return &OfferFeatureGormRepository{db: db}
}

func (r *OfferFeatureGormRepository) CreateBulk(ctx context.Context, detailID int64, names []string) error {
	if len(names) == 0 {
		return nil
	}
	features := make([]model.OfferFeature, 0, len(names))
	for _, n := range names {
		features = append(features, model.OfferFeature{DetailID: detailID, Name: n})
	}
	if err := r.db.WithContext(ctx).Create(&features).Error; err != nil {
		return err
	}
	return nil
}

func (r *OfferFeatureGormRepository) ListByDetailIDs(ctx context.Context, detailIDs []int64) ([]model.OfferFeature, error) {
	if len(detailIDs) == 0 {
		return []model.OfferFeature{}, nil
	}
	var features []model.OfferFeature
	if err := r.db.WithContext(ctx).
		Where("detail_id IN ?", detailIDs).
		Order("id asc").
		Find(&features).Error; err != nil {
		return []model.OfferFeature{}, err
	}
	return features, nil
}

// プランの機能を全削除（置き換え用）
func (r *OfferFeatureGormRepository) DeleteByDetailID(ctx context.Context, detailID int64) error {
	return r.db.WithContext(ctx).
		Where("detail_id = ?", detailID).
		Delete(&model.OfferFeature{}).Error
}
