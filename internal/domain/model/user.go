package model

import "time"

// ユーザー種別
type UserType string

const (
	//発注する側
	UserTypeCustomer UserType = "customer"
	//オファーを出す側
	UserTypeBusiness UserType = "business"
)

// アカウントは認証サービス側で発行される。このサービスでは読むだけ。
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName    string    `gorm:"type:varchar(150);not null;default:''" json:"first_name"`
	LastName     string    `gorm:"type:varchar(150);not null;default:''" json:"last_name"`
	Type         UserType  `gorm:"type:varchar(20);not null;index" json:"type"`
	IsStaff      bool      `gorm:"not null;default:false" json:"is_staff"`
	TokenVersion int       `gorm:"not null;default:0" json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
