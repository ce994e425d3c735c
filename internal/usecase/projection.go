package usecase

import (
	"context"
	"fmt"
	"time"

	"coderr/internal/domain/model"
	repo "coderr/internal/repository"

	"github.com/shopspring/decimal"
)

// プラン1件の表示形。単体取得・オファー内・作成/更新レスポンスで共通。
type DetailOutput struct {
	ID                 int64           `json:"id"`
	Title              string          `json:"title"`
	Revisions          int             `json:"revisions"`
	DeliveryTimeInDays int             `json:"delivery_time_in_days"`
	Price              decimal.Decimal `json:"price"`
	Features           []string        `json:"features"`
	OfferType          model.OfferType `json:"offer_type"`
}

// 一覧ではプランはリンクだけ返す
type DetailLinkOutput struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

// 出品者の表示名
type UserDetailsOutput struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// 一覧・単体取得の形
type OfferSummaryOutput struct {
	ID              int64              `json:"id"`
	User            int64              `json:"user"`
	Title           string             `json:"title"`
	Image           *string            `json:"image"`
	Description     string             `json:"description"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	Details         []DetailLinkOutput `json:"details"`
	MinPrice        *decimal.Decimal   `json:"min_price"`
	MinDeliveryTime *int               `json:"min_delivery_time"`
	UserDetails     UserDetailsOutput  `json:"user_details"`
}

// 作成・更新のレスポンス
type OfferOutput struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Image       *string        `json:"image"`
	Description string         `json:"description"`
	Details     []DetailOutput `json:"details"`
}

func detailURL(detailID int64) string {
	return fmt.Sprintf("/offerdetails/%d/", detailID)
}

// 子の名前を親IDごとにまとめる（順番はそのまま）
func groupNames[T any](items []T, owner func(T) int64, name func(T) string) map[int64][]string {
	out := make(map[int64][]string)
	for _, it := range items {
		id := owner(it)
		out[id] = append(out[id], name(it))
	}
	return out
}

func toDetailOutput(d model.OfferDetail, features []string) DetailOutput {
	if features == nil {
		features = []string{}
	}
	return DetailOutput{
		ID:                 d.ID,
		Title:              d.Title,
		Revisions:          d.Revisions,
		DeliveryTimeInDays: d.DeliveryTimeInDays,
		Price:              d.Price,
		Features:           features,
		OfferType:          d.OfferType,
	}
}

// プランに機能名を付けて返す。機能は1クエリでまとめて取る。
func loadDetailOutputs(ctx context.Context, r repo.TxRepos, details []model.OfferDetail) ([]DetailOutput, error) {
	ids := make([]int64, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
	}
	features, err := r.OfferFeatures().ListByDetailIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := groupNames(features,
		func(f model.OfferFeature) int64 { return f.DetailID },
		func(f model.OfferFeature) string { return f.Name },
	)

	out := make([]DetailOutput, 0, len(details))
	for _, d := range details {
		out = append(out, toDetailOutput(d, names[d.ID]))
	}
	return out, nil
}

// 最安価格と最短納期。プランがなければ両方nil。
func minimums(details []model.OfferDetail) (*decimal.Decimal, *int) {
	if len(details) == 0 {
		return nil, nil
	}
	price := details[0].Price
	days := details[0].DeliveryTimeInDays
	for _, d := range details[1:] {
		if d.Price.LessThan(price) {
			price = d.Price
		}
		if d.DeliveryTimeInDays < days {
			days = d.DeliveryTimeInDays
		}
	}
	return &price, &days
}

// 出品者をまとめて引く。いないユーザーは空のまま。
func loadOwners(ctx context.Context, r repo.TxRepos, offers []model.Offer) (map[int64]UserDetailsOutput, error) {
	ids := make([]int64, 0, len(offers))
	seen := make(map[int64]bool, len(offers))
	for _, o := range offers {
		if !seen[o.OwnerID] {
			seen[o.OwnerID] = true
			ids = append(ids, o.OwnerID)
		}
	}
	users, err := r.Users().ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]UserDetailsOutput, len(users))
	for _, u := range users {
		out[u.ID] = UserDetailsOutput{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
	}
	return out, nil
}

func toOfferSummary(o model.Offer, details []model.OfferDetail, owner UserDetailsOutput) OfferSummaryOutput {
	links := make([]DetailLinkOutput, 0, len(details))
	for _, d := range details {
		links = append(links, DetailLinkOutput{ID: d.ID, URL: detailURL(d.ID)})
	}
	minPrice, minDays := minimums(details)
	return OfferSummaryOutput{
		ID:              o.ID,
		User:            o.OwnerID,
		Title:           o.Title,
		Image:           o.Image,
		Description:     o.Description,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Details:         links,
		MinPrice:        minPrice,
		MinDeliveryTime: minDays,
		UserDetails:     owner,
	}
}

func toOfferOutput(o model.Offer, details []DetailOutput) OfferOutput {
	if details == nil {
		details = []DetailOutput{}
	}
	return OfferOutput{
		ID:          o.ID,
		Title:       o.Title,
		Image:       o.Image,
		Description: o.Description,
		Details:     details,
	}
}

// 注文の表示形
type OrderOutput struct {
	ID                 int64             `json:"id"`
	CustomerUser       int64             `json:"customer_user"`
	BusinessUser       int64             `json:"business_user"`
	Title              string            `json:"title"`
	Revisions          int               `json:"revisions"`
	DeliveryTimeInDays int               `json:"delivery_time_in_days"`
	Price              decimal.Decimal   `json:"price"`
	Features           []string          `json:"features"`
	OfferType          model.OfferType   `json:"offer_type"`
	Status             model.OrderStatus `json:"status"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func toOrderOutput(o model.Order, features []string) OrderOutput {
	if features == nil {
		features = []string{}
	}
	return OrderOutput{
		ID:                 o.ID,
		CustomerUser:       o.CustomerUserID,
		BusinessUser:       o.BusinessUserID,
		Title:              o.Title,
		Revisions:          o.Revisions,
		DeliveryTimeInDays: o.DeliveryTimeInDays,
		Price:              o.Price,
		Features:           features,
		OfferType:          o.OfferType,
		Status:             o.Status,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

func loadOrderOutputs(ctx context.Context, r repo.TxRepos, orders []model.Order) ([]OrderOutput, error) {
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	features, err := r.OrderFeatures().ListByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := groupNames(features,
		func(f model.OrderFeature) int64 { return f.OrderID },
		func(f model.OrderFeature) string { return f.Name },
	)

	out := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderOutput(o, names[o.ID]))
	}
	return out, nil
}
