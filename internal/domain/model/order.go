package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// 注文。作成時点のプラン内容をコピーして持つ（offer_detailsへの参照は持たない）。
// オファーが編集・削除されても注文は変わらない。
type Order struct {
	ID                 int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerUserID     int64           `gorm:"not null;index" json:"customer_user"`
	BusinessUserID     int64           `gorm:"not null;index" json:"business_user"`
	Title              string          `gorm:"type:varchar(255);not null" json:"title"`
	Revisions          int             `gorm:"not null" json:"revisions"`
	DeliveryTimeInDays int             `gorm:"not null" json:"delivery_time_in_days"`
	Price              decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	OfferType          OfferType       `gorm:"type:varchar(20);not null" json:"offer_type"`
	Status             OrderStatus     `gorm:"type:varchar(20);not null;default:'in_progress';index" json:"status"`

	Features []OrderFeature `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 注文時にコピーした機能名
type OrderFeature struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID int64  `gorm:"not null;index" json:"order_id"`
	Name    string `gorm:"type:varchar(255);not null" json:"name"`
}
