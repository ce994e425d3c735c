package repository

import (
	"context"

	"coderr/internal/domain/model"
)

// オファー本体の永続化
type OfferRepository interface {
	//作成後はIDなどが埋まったofferを返す
	Create(ctx context.Context, offer model.Offer) (model.Offer, error)
	FindByID(ctx context.Context, offerID int64) (model.Offer, error)
	//updated_atの新しい順
	List(ctx context.Context) ([]model.Offer, error)
	//title/description/imageを保存する（updated_atも更新される）
	Update(ctx context.Context, offer model.Offer) error
	//プランと機能はDB側でCASCADE
	Delete(ctx context.Context, offerID int64) error
}

// 料金プランの永続化
type OfferDetailRepository interface {
	Create(ctx context.Context, detail model.OfferDetail) (model.OfferDetail, error)
	FindByID(ctx context.Context, detailID int64) (model.OfferDetail, error)
	ListByOfferID(ctx context.Context, offerID int64) ([]model.OfferDetail, error)
	ListByOfferIDs(ctx context.Context, offerIDs []int64) ([]model.OfferDetail, error)
	//title/offer_type/revisions/delivery_time_in_days/priceを保存する
	Update(ctx context.Context, detail model.OfferDetail) error
}

// プランの機能（名前のリスト）の永続化
type OfferFeatureRepository interface {
	//渡された順で一括作成
	CreateBulk(ctx context.Context, detailID int64, names []string) error
	ListByDetailIDs(ctx context.Context, detailIDs []int64) ([]model.OfferFeature, error)
	DeleteByDetailID(ctx context.Context, detailID int64) error
}
