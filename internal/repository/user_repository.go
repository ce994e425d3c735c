package repository

import (
	"coderr/internal/domain/model"
	"context"
)

// ユーザーの取得だけを約束（作成は認証サービス側）
type UserRepository interface {
	// IDからユーザーを1件取得する。いなければ ErrNotFound。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	// まとめて取得。見つからないIDは無視する。
	ListByIDs(ctx context.Context, userIDs []int64) ([]model.User, error)
}
