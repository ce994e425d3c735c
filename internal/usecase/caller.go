package usecase

import "coderr/internal/domain/model"

// リクエストしてきたユーザー。middlewareがDBの最新値から作る。
type Caller struct {
	UserID  int64
	Type    model.UserType
	IsStaff bool
}

func NewCaller(u model.User) Caller {
	return Caller{
		UserID:  u.ID,
		Type:    u.Type,
		IsStaff: u.IsStaff,
	}
}

func (c Caller) IsBusiness() bool {
	return c.Type == model.UserTypeBusiness
}

func (c Caller) IsCustomer() bool {
	return c.Type == model.UserTypeCustomer
}
