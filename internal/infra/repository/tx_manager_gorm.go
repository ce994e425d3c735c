package repository

import (
	"context"

	repo "coderr/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	users         repo.UserRepository
	offers        repo.OfferRepository
	offerDetails  repo.OfferDetailRepository
	offerFeatures repo.OfferFeatureRepository
	orders        repo.OrderRepository
	orderFeatures repo.OrderFeatureRepository
	auditLogs     repo.AuditLogRepository
}

func (r *txReposGorm) Users() repo.UserRepository                 { return r.users }
func (r *txReposGorm) Offers() repo.OfferRepository               { return r.offers }
func (r *txReposGorm) OfferDetails() repo.OfferDetailRepository   { return r.offerDetails }
func (r *txReposGorm) OfferFeatures() repo.OfferFeatureRepository { return r.offerFeatures }
func (r *txReposGorm) Orders() repo.OrderRepository               { return r.orders }
func (r *txReposGorm) OrderFeatures() repo.OrderFeatureRepository { return r.orderFeatures }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository         { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			users:         NewUserGormRepository(tx),
			offers:        NewOfferGormRepository(tx),
			offerDetails:  NewOfferDetailGormRepository(tx),
			offerFeatures: NewOfferFeatureGormRepository(tx),
			orders:        NewOrderGormRepository(tx),
			orderFeatures: NewOrderFeatureGormRepository(tx),
			auditLogs:     NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}

var (
	_ repo.TransactionManager     = (*TxManagerGorm)(nil)
	_ repo.OfferRepository        = (*OfferGormRepository)(nil)
	_ repo.OfferDetailRepository  = (*OfferDetailGormRepository)(nil)
	_ repo.OfferFeatureRepository = (*OfferFeatureGormRepository)(nil)
	_ repo.OrderRepository        = (*OrderGormRepository)(nil)
	_ repo.OrderFeatureRepository = (*OrderFeatureGormRepository)(nil)
)
