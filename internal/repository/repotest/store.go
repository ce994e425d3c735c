// Package repotest はテスト用のメモリ上のリポジトリ。
// WithinTxがエラーを返したら開始前の状態に戻す。
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"coderr/internal/domain/model"
	repo "coderr/internal/repository"
)

type state struct {
	nextID        int64
	users         map[int64]model.User
	offers        map[int64]model.Offer
	details       map[int64]model.OfferDetail
	offerFeatures []model.OfferFeature
	orders        map[int64]model.Order
	orderFeatures []model.OrderFeature
	auditLogs     []model.AuditLog
}

func (s state) clone() state {
	c := s
	c.users = copyMap(s.users)
	c.offers = copyMap(s.offers)
	c.details = copyMap(s.details)
	c.orders = copyMap(s.orders)
	c.offerFeatures = append([]model.OfferFeature(nil), s.offerFeatures...)
	c.orderFeatures = append([]model.OrderFeature(nil), s.orderFeatures...)
	c.auditLogs = append([]model.AuditLog(nil), s.auditLogs...)
	return c
}

func copyMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store は repo.TransactionManager を満たす
type Store struct {
	mu    sync.Mutex
	data  state
	clock time.Time
	fail  map[string]error
}

func New() *Store {
	return &Store{
		data: state{
			users:   map[int64]model.User{},
			offers:  map[int64]model.Offer{},
			details: map[int64]model.OfferDetail{},
			orders:  map[int64]model.Order{},
		},
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		fail:  map[string]error{},
	}
}

// 指定した操作（例: "OfferFeatures.CreateBulk"）でerrを返させる
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

func (s *Store) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(txRepos{s: s}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// 呼ばれるたびに1秒進む（並び順を安定させる）
func (s *Store) now() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) id() int64 {
	s.data.nextID++
	return s.data.nextID
}

func (s *Store) failed(op string) error {
	return s.fail[op]
}

// ---- テストの準備・確認用 ----

func (s *Store) AddUser(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	}
	s.data.users[u.ID] = u
	return u
}

func (s *Store) OfferCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.offers)
}

func (s *Store) DetailCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.details)
}

func (s *Store) OfferFeatureCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.offerFeatures)
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.orders)
}

func (s *Store) AuditLogs() []model.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AuditLog(nil), s.data.auditLogs...)
}

// IDで並べたプラン（機能は含まない）
func (s *Store) Details(offerID int64) []model.OfferDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detailsOf(offerID)
}

func (s *Store) detailsOf(offerID int64) []model.OfferDetail {
	out := []model.OfferDetail{}
	for _, d := range s.data.details {
		if d.OfferID == offerID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var _ repo.TransactionManager = (*Store)(nil)

type txRepos struct{ s *Store }

func (r txRepos) Users() repo.UserRepository                 { return userRepo{r.s} }
func (r txRepos) Offers() repo.OfferRepository               { return offerRepo{r.s} }
func (r txRepos) OfferDetails() repo.OfferDetailRepository   { return detailRepo{r.s} }
func (r txRepos) OfferFeatures() repo.OfferFeatureRepository { return offerFeatureRepo{r.s} }
func (r txRepos) Orders() repo.OrderRepository               { return orderRepo{r.s} }
func (r txRepos) OrderFeatures() repo.OrderFeatureRepository { return orderFeatureRepo{r.s} }
func (r txRepos) AuditLogs() repo.AuditLogRepository         { return auditRepo{r.s} }

func idSet(ids []int64) map[int64]bool {
	m := make(map[int64]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// トランザクション外で使うユーザー取得（middleware用）
func (s *Store) Users() repo.UserRepository {
	return lockedUserRepo{s: s}
}

type lockedUserRepo struct{ s *Store }

func (r lockedUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return userRepo{r.s}.FindByID(ctx, id)
}

func (r lockedUserRepo) ListByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return userRepo{r.s}.ListByIDs(ctx, ids)
}
