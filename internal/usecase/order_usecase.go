package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"coderr/internal/domain/model"
	repo "coderr/internal/repository"

	"go.uber.org/zap"
)

type OrderUsecase struct {
	tx  repo.TransactionManager
	log *zap.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, log *zap.Logger) *OrderUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderUsecase{tx: tx, log: log}
}

// offer_detail_id以外は受け取らない
type CreateOrderInput struct {
	OfferDetailID *int64
}

type UpdateOrderStatusInput struct {
	Status *string
}

const msgDetailMissing = "OfferDetail with this ID does not exist."

// プランの内容をコピーして注文を作る。customerかどうかはルーティング側で確認済み。
func (u *OrderUsecase) CreateOrder(ctx context.Context, caller Caller, in CreateOrderInput) (OrderOutput, error) {
	if in.OfferDetailID == nil {
		return OrderOutput{}, NewValidationError("offer_detail_id", msgRequired)
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//書き込む前に存在確認
		detail, err := r.OfferDetails().FindByID(ctx, *in.OfferDetailID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewValidationError("offer_detail_id", msgDetailMissing)
		}
		if err != nil {
			return dbError(ctx, u.log, "find offer detail", err)
		}
		offer, err := r.Offers().FindByID(ctx, detail.OfferID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewValidationError("offer_detail_id", msgDetailMissing)
		}
		if err != nil {
			return dbError(ctx, u.log, "find offer", err)
		}
		features, err := r.OfferFeatures().ListByDetailIDs(ctx, []int64{detail.ID})
		if err != nil {
			return dbError(ctx, u.log, "list offer features", err)
		}
		names := make([]string, 0, len(features))
		for _, f := range features {
			names = append(names, f.Name)
		}

		//スナップショット
		orderID, err := r.Orders().Create(ctx, model.Order{
			CustomerUserID:     caller.UserID,
			BusinessUserID:     offer.OwnerID,
			Title:              detail.Title,
			Revisions:          detail.Revisions,
			DeliveryTimeInDays: detail.DeliveryTimeInDays,
			Price:              detail.Price,
			OfferType:          detail.OfferType,
			Status:             model.OrderStatusInProgress,
		})
		if err != nil {
			return dbError(ctx, u.log, "create order", err)
		}
		if err := r.OrderFeatures().CreateBulk(ctx, orderID, names); err != nil {
			return dbError(ctx, u.log, "create order features", err)
		}

		created, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return dbError(ctx, u.log, "reload order", err)
		}
		out = toOrderOutput(created, names)
		return nil
	})
	if err := txResult(ctx, u.log, "create order", err); err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 自分がcustomerかbusinessの注文
func (u *OrderUsecase) ListOrders(ctx context.Context, caller Caller) ([]OrderOutput, error) {
	var out []OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByParticipant(ctx, caller.UserID)
		if err != nil {
			return dbError(ctx, u.log, "list orders", err)
		}
		out, err = loadOrderOutputs(ctx, r, orders)
		if err != nil {
			return dbError(ctx, u.log, "list order features", err)
		}
		return nil
	})
	if err := txResult(ctx, u.log, "list orders", err); err != nil {
		return nil, err
	}
	return out, nil
}

// どのステータスからどのステータスへも変更できる。変更できるのはbusiness側だけ。
func (u *OrderUsecase) UpdateStatus(ctx context.Context, caller Caller, orderID int64, in UpdateOrderStatusInput) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Status == nil {
		return OrderOutput{}, NewValidationError("status", msgRequired)
	}
	next := model.OrderStatus(*in.Status)
	if !next.Valid() {
		return OrderOutput{}, NewValidationError("status", fmt.Sprintf("%q is not a valid choice.", *in.Status))
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return dbError(ctx, u.log, "find order", err)
		}
		if order.BusinessUserID != caller.UserID {
			return NewHTTPError(http.StatusForbidden, "You do not have permission to edit this order.")
		}

		prev := order.Status
		if err := r.Orders().UpdateStatus(ctx, order.ID, next); err != nil {
			return dbError(ctx, u.log, "update order status", err)
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  caller.UserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   order.ID,
			BeforeJSON:   statusAudit(prev),
			AfterJSON:    statusAudit(next),
			CreatedAt:    time.Now(),
		}); err != nil {
			return dbError(ctx, u.log, "create audit log", err)
		}

		updated, err := r.Orders().FindByID(ctx, order.ID)
		if err != nil {
			return dbError(ctx, u.log, "reload order", err)
		}
		views, err := loadOrderOutputs(ctx, r, []model.Order{updated})
		if err != nil {
			return dbError(ctx, u.log, "list order features", err)
		}
		out = views[0]
		return nil
	})
	if err := txResult(ctx, u.log, "update order status", err); err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// staffだけ
func (u *OrderUsecase) DeleteOrder(ctx context.Context, caller Caller, orderID int64) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return dbError(ctx, u.log, "find order", err)
		}
		if !caller.IsStaff {
			return NewHTTPError(http.StatusForbidden, "Only staff or admin users can delete orders.")
		}
		if err := r.Orders().Delete(ctx, order.ID); err != nil {
			return dbError(ctx, u.log, "delete order", err)
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  caller.UserID,
			Action:       model.AuditActionDeleteOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   order.ID,
			BeforeJSON:   statusAudit(order.Status),
			AfterJSON:    "{}",
			CreatedAt:    time.Now(),
		}); err != nil {
			return dbError(ctx, u.log, "create audit log", err)
		}
		return nil
	})
	return txResult(ctx, u.log, "delete order", err)
}

// 進行中の件数
func (u *OrderUsecase) CountInProgress(ctx context.Context, businessUserID int64) (int64, error) {
	return u.countOrders(ctx, businessUserID, model.OrderStatusInProgress)
}

// 完了済みの件数
func (u *OrderUsecase) CountCompleted(ctx context.Context, businessUserID int64) (int64, error) {
	return u.countOrders(ctx, businessUserID, model.OrderStatusCompleted)
}

func (u *OrderUsecase) countOrders(ctx context.Context, businessUserID int64, status model.OrderStatus) (int64, error) {
	if businessUserID <= 0 {
		return 0, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var n int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//businessユーザーでなければ404
		user, err := r.Users().FindByID(ctx, businessUserID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Business user not found.")
		}
		if err != nil {
			return dbError(ctx, u.log, "find user", err)
		}
		if user.Type != model.UserTypeBusiness {
			return NewHTTPError(http.StatusNotFound, "Business user not found.")
		}
		n, err = r.Orders().CountByBusinessUserAndStatus(ctx, businessUserID, status)
		if err != nil {
			return dbError(ctx, u.log, "count orders", err)
		}
		return nil
	})
	if err := txResult(ctx, u.log, "count orders", err); err != nil {
		return 0, err
	}
	return n, nil
}

func statusAudit(s model.OrderStatus) string {
	b, _ := json.Marshal(map[string]model.OrderStatus{"status": s})
	return string(b)
}
