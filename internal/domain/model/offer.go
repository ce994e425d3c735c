package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 料金プランの種類
type OfferType string

const (
	OfferTypeBasic    OfferType = "basic"
	OfferTypeStandard OfferType = "standard"
	OfferTypePremium  OfferType = "premium"
)

// 受け付けるoffer_typeか
func (t OfferType) Valid() bool {
	switch t {
	case OfferTypeBasic, OfferTypeStandard, OfferTypePremium:
		return true
	}
	return false
}

// businessユーザーが出すオファー
type Offer struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID     int64   `gorm:"not null;index" json:"user"`
	Title       string  `gorm:"type:varchar(255);not null" json:"title"`
	Description string  `gorm:"type:text;not null" json:"description"`
	Image       *string `gorm:"type:varchar(255)" json:"image"`

	//削除時はプランも消える
	Details []OfferDetail `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// オファーの料金プラン（basic/standard/premium）
// 1オファーにつき同じoffer_typeは1つだけ。
type OfferDetail struct {
	ID                 int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OfferID            int64           `gorm:"not null;uniqueIndex:idx_offer_details_offer_type" json:"offer"`
	Title              string          `gorm:"type:varchar(255);not null" json:"title"`
	OfferType          OfferType       `gorm:"type:varchar(20);not null;uniqueIndex:idx_offer_details_offer_type" json:"offer_type"`
	Revisions          int             `gorm:"not null" json:"revisions"`
	DeliveryTimeInDays int             `gorm:"not null" json:"delivery_time_in_days"`
	Price              decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`

	Features []OfferFeature `gorm:"foreignKey:DetailID;constraint:OnDelete:CASCADE" json:"-"`
}

// プランに含まれる機能
type OfferFeature struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	DetailID int64  `gorm:"not null;index" json:"detail"`
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
}
