package repository_test

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"coderr/internal/config"
	"coderr/internal/domain/model"
	"coderr/internal/infra/db"
	infrarepo "coderr/internal/infra/repository"
	repo "coderr/internal/repository"
	"coderr/internal/usecase"
	"coderr/internal/validator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TEST_DATABASE_DSN があるときだけ実DBで回す
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}

	gdb, err := db.Connect(config.Config{
		DatabaseURL:    dsn,
		GoEnv:          "test",
		DBMaxOpenConns: 5,
		DBMaxIdleConns: 2,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// テストごとに名前がぶつからないユーザーを作る（後片付けつき）
func seedUser(t *testing.T, gdb *gorm.DB, typ model.UserType) model.User {
	t.Helper()
	name := fmt.Sprintf("%s_%d", typ, time.Now().UnixNano())
	u := model.User{Username: name, Email: name + "@example.com", FirstName: "Test", Type: typ, IsActive: true}
	require.NoError(t, gdb.Create(&u).Error)

	t.Cleanup(func() {
		gdb.Where("customer_user_id = ? OR business_user_id = ?", u.ID, u.ID).Delete(&model.Order{})
		gdb.Where("owner_id = ?", u.ID).Delete(&model.Offer{})
		gdb.Where("actor_user_id = ?", u.ID).Delete(&model.AuditLog{})
		gdb.Delete(&model.User{}, u.ID)
	})
	return u
}

// 入力チェックを通してDBの制約まで届かせる
type acceptAll struct{}

func (acceptAll) ValidateCreateOffer(usecase.CreateOfferInput) error { return nil }
func (acceptAll) ValidateUpdateOffer(usecase.UpdateOfferInput) error { return nil }

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func variant(offerType, price string, days int, features ...string) usecase.DetailInput {
	p := decimal.RequireFromString(price)
	if features == nil {
		features = []string{}
	}
	return usecase.DetailInput{
		Title:              strp(offerType + " plan"),
		OfferType:          strp(offerType),
		Revisions:          intp(2),
		DeliveryTimeInDays: intp(days),
		Price:              &p,
		Features:           features,
	}
}

func countOffers(t *testing.T, gdb *gorm.DB, title string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&model.Offer{}).Where("title = ?", title).Count(&n).Error)
	return n
}

func TestDB_CreateOfferRollsBackOnChildFailure(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	biz := seedUser(t, gdb, model.UserTypeBusiness)
	uc := usecase.NewOfferUsecase(infrarepo.NewTxManagerGorm(gdb), acceptAll{}, nil)

	//2件目のbasicがユニーク制約にかかる
	title := fmt.Sprintf("rollback-%d", time.Now().UnixNano())
	_, err := uc.CreateOffer(ctx, usecase.NewCaller(biz), usecase.CreateOfferInput{
		Title:       title,
		Description: "d",
		Details: []usecase.DetailInput{
			variant("basic", "10", 1, "a"),
			variant("basic", "20", 2, "b"),
		},
	})
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "err=%v", err)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Contains(t, he.Fields, "details[1].offer_type")

	assert.Zero(t, countOffers(t, gdb, title))
}

func TestDB_UpdateOfferRollsBackOnFeatureFailure(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	biz := seedUser(t, gdb, model.UserTypeBusiness)
	caller := usecase.NewCaller(biz)
	uc := usecase.NewOfferUsecase(infrarepo.NewTxManagerGorm(gdb), acceptAll{}, nil)

	title := fmt.Sprintf("keep-%d", time.Now().UnixNano())
	created, err := uc.CreateOffer(ctx, caller, usecase.CreateOfferInput{
		Title:       title,
		Description: "d",
		Details:     []usecase.DetailInput{variant("basic", "10", 1, "a")},
	})
	require.NoError(t, err)

	//varchar(255)を超える機能名で失敗させる
	p := decimal.RequireFromString("99")
	_, err = uc.UpdateOffer(ctx, caller, created.ID, usecase.UpdateOfferInput{
		Title: strp("never saved"),
		Details: []usecase.DetailInput{
			{OfferType: strp("basic"), Price: &p, Features: []string{strings.Repeat("x", 300)}},
		},
	})
	require.Error(t, err)

	got, err := uc.GetOffer(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	require.NotNil(t, got.MinPrice)
	assert.True(t, got.MinPrice.Equal(decimal.NewFromInt(10)))

	var names []string
	require.NoError(t, gdb.Model(&model.OfferFeature{}).Where("detail_id = ?", created.Details[0].ID).Pluck("name", &names).Error)
	assert.Equal(t, []string{"a"}, names)
}

func TestDB_DeleteOfferCascadesAndKeepsOrders(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	biz := seedUser(t, gdb, model.UserTypeBusiness)
	cust := seedUser(t, gdb, model.UserTypeCustomer)
	tx := infrarepo.NewTxManagerGorm(gdb)
	offers := usecase.NewOfferUsecase(tx, validator.NewOfferValidator(), nil)
	orders := usecase.NewOrderUsecase(tx, nil)

	created, err := offers.CreateOffer(ctx, usecase.NewCaller(biz), usecase.CreateOfferInput{
		Title:       fmt.Sprintf("cascade-%d", time.Now().UnixNano()),
		Description: "d",
		Details: []usecase.DetailInput{
			variant("basic", "100.50", 3, "Logo", "Flyer"),
			variant("premium", "999.99", 9, "Logo"),
		},
	})
	require.NoError(t, err)
	detailIDs := []int64{created.Details[0].ID, created.Details[1].ID}

	order, err := orders.CreateOrder(ctx, usecase.NewCaller(cust), usecase.CreateOrderInput{OfferDetailID: &detailIDs[0]})
	require.NoError(t, err)

	require.NoError(t, offers.DeleteOffer(ctx, usecase.NewCaller(biz), created.ID))

	var n int64
	require.NoError(t, gdb.Model(&model.OfferDetail{}).Where("offer_id = ?", created.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, gdb.Model(&model.OfferFeature{}).Where("detail_id IN ?", detailIDs).Count(&n).Error)
	assert.Zero(t, n)

	//注文はコピーなので残る（numeric(10,2)もそのまま）
	list, err := orders.ListOrders(ctx, usecase.NewCaller(cust))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, order.ID, list[0].ID)
	assert.True(t, list[0].Price.Equal(decimal.RequireFromString("100.50")), "price=%s", list[0].Price)
	assert.Equal(t, []string{"Logo", "Flyer"}, list[0].Features)
	assert.Equal(t, model.OrderStatusInProgress, list[0].Status)
}

func TestDB_UniqueOfferTypeAndMissingRows(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	biz := seedUser(t, gdb, model.UserTypeBusiness)

	offers := infrarepo.NewOfferGormRepository(gdb)
	details := infrarepo.NewOfferDetailGormRepository(gdb)
	orders := infrarepo.NewOrderGormRepository(gdb)

	offer, err := offers.Create(ctx, model.Offer{OwnerID: biz.ID, Title: "direct", Description: "d"})
	require.NoError(t, err)
	d := model.OfferDetail{OfferID: offer.ID, Title: "b", OfferType: model.OfferTypeBasic, Revisions: 1, DeliveryTimeInDays: 1, Price: decimal.RequireFromString("12.34")}
	_, err = details.Create(ctx, d)
	require.NoError(t, err)
	_, err = details.Create(ctx, d)
	assert.ErrorIs(t, err, repo.ErrConflict)

	const missing = int64(1) << 40
	assert.ErrorIs(t, offers.Update(ctx, model.Offer{ID: missing, Title: "x"}), repo.ErrNotFound)
	assert.ErrorIs(t, offers.Delete(ctx, missing), repo.ErrNotFound)
	assert.ErrorIs(t, orders.UpdateStatus(ctx, missing, model.OrderStatusCompleted), repo.ErrNotFound)
	assert.ErrorIs(t, orders.Delete(ctx, missing), repo.ErrNotFound)
	_, err = details.FindByID(ctx, missing)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	//image: null の保存
	offer.Image = strp("img.png")
	require.NoError(t, offers.Update(ctx, offer))
	offer.Image = nil
	require.NoError(t, offers.Update(ctx, offer))
	got, err := offers.FindByID(ctx, offer.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Image)
}
