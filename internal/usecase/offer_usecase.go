package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"coderr/internal/domain/model"
	repo "coderr/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 入力のチェックはvalidatorに任せる
type OfferValidator interface {
	ValidateCreateOffer(in CreateOfferInput) error
	ValidateUpdateOffer(in UpdateOfferInput) error
}

type OfferUsecase struct {
	tx        repo.TransactionManager
	validator OfferValidator
	log       *zap.Logger
}

// DI
func NewOfferUsecase(tx repo.TransactionManager, validator OfferValidator, log *zap.Logger) *OfferUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &OfferUsecase{tx: tx, validator: validator, log: log}
}

// プラン1件分の入力。nilは「送られてこなかった」。
type DetailInput struct {
	ID                 *int64
	Title              *string
	OfferType          *string
	Revisions          *int
	DeliveryTimeInDays *int
	Price              *decimal.Decimal
	//nilなら未指定、空スライスなら全削除
	Features []string
}

type CreateOfferInput struct {
	Title       string
	Description string
	Image       *string
	Details     []DetailInput
}

type UpdateOfferInput struct {
	Title       *string
	Description *string
	Image       *string
	//image: null が送られたとき
	ClearImage bool
	//nilならプランは触らない
	Details []DetailInput
}

func (u *OfferUsecase) CreateOffer(ctx context.Context, caller Caller, in CreateOfferInput) (OfferOutput, error) {
	if !caller.IsBusiness() {
		return OfferOutput{}, NewHTTPError(http.StatusForbidden, "Only business users can create offers.")
	}
	if err := u.validator.ValidateCreateOffer(in); err != nil {
		return OfferOutput{}, err
	}

	var out OfferOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		offer, err := r.Offers().Create(ctx, model.Offer{
			OwnerID:     caller.UserID,
			Title:       strings.TrimSpace(in.Title),
			Description: in.Description,
			Image:       in.Image,
		})
		if err != nil {
			return dbError(ctx, u.log, "create offer", err)
		}

		//送られた順にプラン→機能を作る
		details := make([]model.OfferDetail, 0, len(in.Details))
		for i, d := range in.Details {
			created, err := r.OfferDetails().Create(ctx, model.OfferDetail{
				OfferID:            offer.ID,
				Title:              strings.TrimSpace(*d.Title),
				OfferType:          model.OfferType(*d.OfferType),
				Revisions:          *d.Revisions,
				DeliveryTimeInDays: *d.DeliveryTimeInDays,
				Price:              *d.Price,
			})
			if errors.Is(err, repo.ErrConflict) {
				return NewValidationError(fmt.Sprintf("details[%d].offer_type", i), "Duplicate offer_type.")
			}
			if err != nil {
				return dbError(ctx, u.log, "create offer detail", err)
			}
			if err := r.OfferFeatures().CreateBulk(ctx, created.ID, d.Features); err != nil {
				return dbError(ctx, u.log, "create offer features", err)
			}
			details = append(details, created)
		}

		views, err := loadDetailOutputs(ctx, r, details)
		if err != nil {
			return dbError(ctx, u.log, "load offer details", err)
		}
		out = toOfferOutput(offer, views)
		return nil
	})
	if err := txResult(ctx, u.log, "create offer", err); err != nil {
		return OfferOutput{}, err
	}
	return out, nil
}

// マージの1手順。existingがfalseなら新規作成。
type mergeStep struct {
	index    int
	existing bool
	detail   model.OfferDetail
	features []string
}

// offer_typeで既存プランと突き合わせて、書き込む前に全部決めておく
func planDetailMerge(offerID int64, current []model.OfferDetail, items []DetailInput) ([]mergeStep, error) {
	byType := make(map[model.OfferType]model.OfferDetail, len(current))
	for _, d := range current {
		byType[d.OfferType] = d
	}

	fe := FieldErrors{}
	steps := make([]mergeStep, 0, len(items))
	for i, item := range items {
		t := model.OfferType(*item.OfferType)
		d, found := byType[t]
		if !found {
			//新しいプランは全部そろっていないと作れない
			prefix := fmt.Sprintf("details[%d].", i)
			if item.Title == nil {
				fe.Add(prefix+"title", msgRequired)
			}
			if item.Revisions == nil {
				fe.Add(prefix+"revisions", msgRequired)
			}
			if item.DeliveryTimeInDays == nil {
				fe.Add(prefix+"delivery_time_in_days", msgRequired)
			}
			if item.Price == nil {
				fe.Add(prefix+"price", msgRequired)
			}
			d = model.OfferDetail{OfferID: offerID, OfferType: t}
		}

		if item.Title != nil {
			d.Title = strings.TrimSpace(*item.Title)
		}
		if item.Revisions != nil {
			d.Revisions = *item.Revisions
		}
		if item.DeliveryTimeInDays != nil {
			d.DeliveryTimeInDays = *item.DeliveryTimeInDays
		}
		if item.Price != nil {
			d.Price = *item.Price
		}
		steps = append(steps, mergeStep{index: i, existing: found, detail: d, features: item.Features})
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

func (u *OfferUsecase) UpdateOffer(ctx context.Context, caller Caller, offerID int64, in UpdateOfferInput) (OfferOutput, error) {
	if offerID <= 0 {
		return OfferOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OfferOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//404 → 403 → 400 の順
		offer, err := r.Offers().FindByID(ctx, offerID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return dbError(ctx, u.log, "find offer", err)
		}
		if offer.OwnerID != caller.UserID {
			return NewHTTPError(http.StatusForbidden, "You do not have permission to edit this offer.")
		}
		if err := u.validator.ValidateUpdateOffer(in); err != nil {
			return err
		}

		before := offerAudit(offer, nil)

		var steps []mergeStep
		if in.Details != nil {
			current, err := r.OfferDetails().ListByOfferID(ctx, offer.ID)
			if err != nil {
				return dbError(ctx, u.log, "list offer details", err)
			}
			steps, err = planDetailMerge(offer.ID, current, in.Details)
			if err != nil {
				return err
			}
		}

		if in.Title != nil {
			offer.Title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			offer.Description = *in.Description
		}
		switch {
		case in.ClearImage:
			offer.Image = nil
		case in.Image != nil:
			offer.Image = in.Image
		}
		//プランだけの更新でもupdated_atは進める
		if err := r.Offers().Update(ctx, offer); err != nil {
			return dbError(ctx, u.log, "update offer", err)
		}

		touched := make([]model.OfferType, 0, len(steps))
		for _, s := range steps {
			d := s.detail
			if s.existing {
				if err := r.OfferDetails().Update(ctx, d); err != nil {
					return dbError(ctx, u.log, "update offer detail", err)
				}
			} else {
				created, err := r.OfferDetails().Create(ctx, d)
				if errors.Is(err, repo.ErrConflict) {
					//同じtypeを別のリクエストが先に作った
					return NewValidationError(fmt.Sprintf("details[%d].offer_type", s.index), "Duplicate offer_type.")
				}
				if err != nil {
					return dbError(ctx, u.log, "create offer detail", err)
				}
				d = created
			}
			if s.features != nil {
				if err := r.OfferFeatures().DeleteByDetailID(ctx, d.ID); err != nil {
					return dbError(ctx, u.log, "delete offer features", err)
				}
				if err := r.OfferFeatures().CreateBulk(ctx, d.ID, s.features); err != nil {
					return dbError(ctx, u.log, "create offer features", err)
				}
			}
			touched = append(touched, d.OfferType)
		}

		//保存後の状態を読み直して返す
		offer, err = r.Offers().FindByID(ctx, offer.ID)
		if err != nil {
			return dbError(ctx, u.log, "reload offer", err)
		}
		details, err := r.OfferDetails().ListByOfferID(ctx, offer.ID)
		if err != nil {
			return dbError(ctx, u.log, "list offer details", err)
		}
		views, err := loadDetailOutputs(ctx, r, details)
		if err != nil {
			return dbError(ctx, u.log, "load offer details", err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  caller.UserID,
			Action:       model.AuditActionUpdateOffer,
			ResourceType: model.AuditResourceOffer,
			ResourceID:   offer.ID,
			BeforeJSON:   before,
			AfterJSON:    offerAudit(offer, touched),
			CreatedAt:    time.Now(),
		}); err != nil {
			return dbError(ctx, u.log, "create audit log", err)
		}

		out = toOfferOutput(offer, views)
		return nil
	})
	if err := txResult(ctx, u.log, "update offer", err); err != nil {
		return OfferOutput{}, err
	}
	return out, nil
}

func (u *OfferUsecase) DeleteOffer(ctx context.Context, caller Caller, offerID int64) error {
	if offerID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		offer, err := r.Offers().FindByID(ctx, offerID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return dbError(ctx, u.log, "find offer", err)
		}
		if offer.OwnerID != caller.UserID {
			return NewHTTPError(http.StatusForbidden, "You do not have permission to delete this offer.")
		}
		//注文はコピーなので影響しない
		if err := r.Offers().Delete(ctx, offer.ID); err != nil {
			return dbError(ctx, u.log, "delete offer", err)
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  caller.UserID,
			Action:       model.AuditActionDeleteOffer,
			ResourceType: model.AuditResourceOffer,
			ResourceID:   offer.ID,
			BeforeJSON:   offerAudit(offer, nil),
			AfterJSON:    "{}",
			CreatedAt:    time.Now(),
		}); err != nil {
			return dbError(ctx, u.log, "create audit log", err)
		}
		return nil
	})
	return txResult(ctx, u.log, "delete offer", err)
}

func (u *OfferUsecase) GetOffer(ctx context.Context, offerID int64) (OfferSummaryOutput, error) {
	if offerID <= 0 {
		return OfferSummaryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var out OfferSummaryOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		offer, err := r.Offers().FindByID(ctx, offerID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return dbError(ctx, u.log, "find offer", err)
		}
		details, err := r.OfferDetails().ListByOfferID(ctx, offer.ID)
		if err != nil {
			return dbError(ctx, u.log, "list offer details", err)
		}
		owners, err := loadOwners(ctx, r, []model.Offer{offer})
		if err != nil {
			return dbError(ctx, u.log, "list offer owners", err)
		}
		out = toOfferSummary(offer, details, owners[offer.OwnerID])
		return nil
	})
	if err := txResult(ctx, u.log, "get offer", err); err != nil {
		return OfferSummaryOutput{}, err
	}
	return out, nil
}

// min_price/min_delivery_timeは毎回計算し直す
func (u *OfferUsecase) ListOffers(ctx context.Context) ([]OfferSummaryOutput, error) {
	var out []OfferSummaryOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		offers, err := r.Offers().List(ctx)
		if err != nil {
			return dbError(ctx, u.log, "list offers", err)
		}
		ids := make([]int64, 0, len(offers))
		for _, o := range offers {
			ids = append(ids, o.ID)
		}
		details, err := r.OfferDetails().ListByOfferIDs(ctx, ids)
		if err != nil {
			return dbError(ctx, u.log, "list offer details", err)
		}
		owners, err := loadOwners(ctx, r, offers)
		if err != nil {
			return dbError(ctx, u.log, "list offer owners", err)
		}
		byOffer := make(map[int64][]model.OfferDetail, len(offers))
		for _, d := range details {
			byOffer[d.OfferID] = append(byOffer[d.OfferID], d)
		}

		out = make([]OfferSummaryOutput, 0, len(offers))
		for _, o := range offers {
			out = append(out, toOfferSummary(o, byOffer[o.ID], owners[o.OwnerID]))
		}
		return nil
	})
	if err := txResult(ctx, u.log, "list offers", err); err != nil {
		return nil, err
	}
	return out, nil
}

func (u *OfferUsecase) GetOfferDetail(ctx context.Context, detailID int64) (DetailOutput, error) {
	if detailID <= 0 {
		return DetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var out DetailOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		d, err := r.OfferDetails().FindByID(ctx, detailID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return dbError(ctx, u.log, "find offer detail", err)
		}
		views, err := loadDetailOutputs(ctx, r, []model.OfferDetail{d})
		if err != nil {
			return dbError(ctx, u.log, "load offer detail", err)
		}
		out = views[0]
		return nil
	})
	if err := txResult(ctx, u.log, "get offer detail", err); err != nil {
		return DetailOutput{}, err
	}
	return out, nil
}

// 監査ログ用のJSON
func offerAudit(o model.Offer, details []model.OfferType) string {
	b, _ := json.Marshal(struct {
		Title       string            `json:"title"`
		Description string            `json:"description"`
		Image       *string           `json:"image"`
		Details     []model.OfferType `json:"details,omitempty"`
	}{o.Title, o.Description, o.Image, details})
	return string(b)
}
