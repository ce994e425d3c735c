package repotest

import (
	"context"
	"sort"

	"coderr/internal/domain/model"
	repo "coderr/internal/repository"
)

type userRepo struct{ s *Store }

func (r userRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if err := r.s.failed("Users.FindByID"); err != nil {
		return nil, err
	}
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) ListByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	if err := r.s.failed("Users.ListByIDs"); err != nil {
		return nil, err
	}
	want := idSet(ids)
	out := []model.User{}
	for id, u := range r.s.data.users {
		if want[id] {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type offerRepo struct{ s *Store }

func (r offerRepo) Create(ctx context.Context, o model.Offer) (model.Offer, error) {
	if err := r.s.failed("Offers.Create"); err != nil {
		return model.Offer{}, err
	}
	o.ID = r.s.id()
	o.Details = nil
	now := r.s.now()
	o.CreatedAt, o.UpdatedAt = now, now
	r.s.data.offers[o.ID] = o
	return o, nil
}

func (r offerRepo) FindByID(ctx context.Context, id int64) (model.Offer, error) {
	if err := r.s.failed("Offers.FindByID"); err != nil {
		return model.Offer{}, err
	}
	o, ok := r.s.data.offers[id]
	if !ok {
		return model.Offer{}, repo.ErrNotFound
	}
	return o, nil
}

func (r offerRepo) List(ctx context.Context) ([]model.Offer, error) {
	if err := r.s.failed("Offers.List"); err != nil {
		return nil, err
	}
	out := make([]model.Offer, 0, len(r.s.data.offers))
	for _, o := range r.s.data.offers {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r offerRepo) Update(ctx context.Context, o model.Offer) error {
	if err := r.s.failed("Offers.Update"); err != nil {
		return err
	}
	cur, ok := r.s.data.offers[o.ID]
	if !ok {
		return repo.ErrNotFound
	}
	cur.Title = o.Title
	cur.Description = o.Description
	cur.Image = o.Image
	cur.UpdatedAt = r.s.now()
	r.s.data.offers[o.ID] = cur
	return nil
}

func (r offerRepo) Delete(ctx context.Context, id int64) error {
	if err := r.s.failed("Offers.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.data.offers[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.data.offers, id)

	//CASCADE
	removed := map[int64]bool{}
	for did, d := range r.s.data.details {
		if d.OfferID == id {
			removed[did] = true
			delete(r.s.data.details, did)
		}
	}
	kept := r.s.data.offerFeatures[:0:0]
	for _, f := range r.s.data.offerFeatures {
		if !removed[f.DetailID] {
			kept = append(kept, f)
		}
	}
	r.s.data.offerFeatures = kept
	return nil
}

type detailRepo struct{ s *Store }

func (r detailRepo) Create(ctx context.Context, d model.OfferDetail) (model.OfferDetail, error) {
	if err := r.s.failed("OfferDetails.Create"); err != nil {
		return model.OfferDetail{}, err
	}
	for _, cur := range r.s.data.details {
		if cur.OfferID == d.OfferID && cur.OfferType == d.OfferType {
			return model.OfferDetail{}, repo.ErrConflict
		}
	}
	d.ID = r.s.id()
	d.Features = nil
	r.s.data.details[d.ID] = d
	return d, nil
}

func (r detailRepo) FindByID(ctx context.Context, id int64) (model.OfferDetail, error) {
	if err := r.s.failed("OfferDetails.FindByID"); err != nil {
		return model.OfferDetail{}, err
	}
	d, ok := r.s.data.details[id]
	if !ok {
		return model.OfferDetail{}, repo.ErrNotFound
	}
	return d, nil
}

func (r detailRepo) ListByOfferID(ctx context.Context, offerID int64) ([]model.OfferDetail, error) {
	if err := r.s.failed("OfferDetails.ListByOfferID"); err != nil {
		return nil, err
	}
	return r.s.detailsOf(offerID), nil
}

func (r detailRepo) ListByOfferIDs(ctx context.Context, offerIDs []int64) ([]model.OfferDetail, error) {
	if err := r.s.failed("OfferDetails.ListByOfferIDs"); err != nil {
		return nil, err
	}
	want := idSet(offerIDs)
	out := []model.OfferDetail{}
	for _, d := range r.s.data.details {
		if want[d.OfferID] {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OfferID != out[j].OfferID {
			return out[i].OfferID < out[j].OfferID
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r detailRepo) Update(ctx context.Context, d model.OfferDetail) error {
	if err := r.s.failed("OfferDetails.Update"); err != nil {
		return err
	}
	cur, ok := r.s.data.details[d.ID]
	if !ok {
		return repo.ErrNotFound
	}
	cur.Title = d.Title
	cur.OfferType = d.OfferType
	cur.Revisions = d.Revisions
	cur.DeliveryTimeInDays = d.DeliveryTimeInDays
	cur.Price = d.Price
	r.s.data.details[d.ID] = cur
	return nil
}

type offerFeatureRepo struct{ s *Store }

func (r offerFeatureRepo) CreateBulk(ctx context.Context, detailID int64, names []string) error {
	if err := r.s.failed("OfferFeatures.CreateBulk"); err != nil {
		return err
	}
	for _, n := range names {
		r.s.data.offerFeatures = append(r.s.data.offerFeatures, model.OfferFeature{
			ID:       r.s.id(),
			DetailID: detailID,
			Name:     n,
		})
	}
	return nil
}

func (r offerFeatureRepo) ListByDetailIDs(ctx context.Context, detailIDs []int64) ([]model.OfferFeature, error) {
	if err := r.s.failed("OfferFeatures.ListByDetailIDs"); err != nil {
		return nil, err
	}
	want := idSet(detailIDs)
	out := []model.OfferFeature{}
	for _, f := range r.s.data.offerFeatures {
		if want[f.DetailID] {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r offerFeatureRepo) DeleteByDetailID(ctx context.Context, detailID int64) error {
	if err := r.s.failed("OfferFeatures.DeleteByDetailID"); err != nil {
		return err
	}
	kept := r.s.data.offerFeatures[:0:0]
	for _, f := range r.s.data.offerFeatures {
		if f.DetailID != detailID {
			kept = append(kept, f)
		}
	}
	r.s.data.offerFeatures = kept
	return nil
}

type orderRepo struct{ s *Store }

func (r orderRepo) FindByID(ctx context.Context, id int64) (model.Order, error) {
	if err := r.s.failed("Orders.FindByID"); err != nil {
		return model.Order{}, err
	}
	o, ok := r.s.data.orders[id]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r orderRepo) ListByParticipant(ctx context.Context, userID int64) ([]model.Order, error) {
	if err := r.s.failed("Orders.ListByParticipant"); err != nil {
		return nil, err
	}
	out := []model.Order{}
	for _, o := range r.s.data.orders {
		if o.CustomerUserID == userID || o.BusinessUserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r orderRepo) Create(ctx context.Context, o model.Order) (int64, error) {
	if err := r.s.failed("Orders.Create"); err != nil {
		return 0, err
	}
	o.ID = r.s.id()
	o.Features = nil
	if o.Status == "" {
		o.Status = model.OrderStatusInProgress
	}
	now := r.s.now()
	o.CreatedAt, o.UpdatedAt = now, now
	r.s.data.orders[o.ID] = o
	return o.ID, nil
}

func (r orderRepo) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error {
	if err := r.s.failed("Orders.UpdateStatus"); err != nil {
		return err
	}
	o, ok := r.s.data.orders[id]
	if !ok {
		return repo.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = r.s.now()
	r.s.data.orders[id] = o
	return nil
}

func (r orderRepo) Delete(ctx context.Context, id int64) error {
	if err := r.s.failed("Orders.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.data.orders[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.data.orders, id)
	kept := r.s.data.orderFeatures[:0:0]
	for _, f := range r.s.data.orderFeatures {
		if f.OrderID != id {
			kept = append(kept, f)
		}
	}
	r.s.data.orderFeatures = kept
	return nil
}

func (r orderRepo) CountByBusinessUserAndStatus(ctx context.Context, businessUserID int64, status model.OrderStatus) (int64, error) {
	if err := r.s.failed("Orders.CountByBusinessUserAndStatus"); err != nil {
		return 0, err
	}
	var n int64
	for _, o := range r.s.data.orders {
		if o.BusinessUserID == businessUserID && o.Status == status {
			n++
		}
	}
	return n, nil
}

type orderFeatureRepo struct{ s *Store }

func (r orderFeatureRepo) CreateBulk(ctx context.Context, orderID int64, names []string) error {
	if err := r.s.failed("OrderFeatures.CreateBulk"); err != nil {
		return err
	}
	for _, n := range names {
		r.s.data.orderFeatures = append(r.s.data.orderFeatures, model.OrderFeature{
			ID:      r.s.id(),
			OrderID: orderID,
			Name:    n,
		})
	}
	return nil
}

func (r orderFeatureRepo) ListByOrderIDs(ctx context.Context, orderIDs []int64) ([]model.OrderFeature, error) {
	if err := r.s.failed("OrderFeatures.ListByOrderIDs"); err != nil {
		return nil, err
	}
	want := idSet(orderIDs)
	out := []model.OrderFeature{}
	for _, f := range r.s.data.orderFeatures {
		if want[f.OrderID] {
			out = append(out, f)
		}
	}
	return out, nil
}

type auditRepo struct{ s *Store }

func (r auditRepo) Create(ctx context.Context, l model.AuditLog) error {
	if err := r.s.failed("AuditLogs.Create"); err != nil {
		return err
	}
	l.ID = r.s.id()
	r.s.data.auditLogs = append(r.s.data.auditLogs, l)
	return nil
}
