package usecase_test

import (
	"context"
	"testing"

	"coderr/internal/domain/model"
	"coderr/internal/repository/repotest"
	"coderr/internal/usecase"
	"coderr/internal/validator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }
func i64p(n int64) *int64   { return &n }
func decp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

type fixture struct {
	store    *repotest.Store
	offers   *usecase.OfferUsecase
	orders   *usecase.OrderUsecase
	business usecase.Caller
	other    usecase.Caller
	customer usecase.Caller
	staff    usecase.Caller
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := repotest.New()
	b := store.AddUser(model.User{Username: "biz", FirstName: "Max", LastName: "Mustermann", Type: model.UserTypeBusiness, IsActive: true})
	o := store.AddUser(model.User{Username: "biz2", Type: model.UserTypeBusiness, IsActive: true})
	c := store.AddUser(model.User{Username: "cust", Type: model.UserTypeCustomer, IsActive: true})
	s := store.AddUser(model.User{Username: "admin", Type: model.UserTypeCustomer, IsStaff: true, IsActive: true})
	return fixture{
		store:    store,
		offers:   usecase.NewOfferUsecase(store, validator.NewOfferValidator(), nil),
		orders:   usecase.NewOrderUsecase(store, nil),
		business: usecase.NewCaller(b),
		other:    usecase.NewCaller(o),
		customer: usecase.NewCaller(c),
		staff:    usecase.NewCaller(s),
	}
}

func detailIn(offerType string, price string, days int, features ...string) usecase.DetailInput {
	if features == nil {
		features = []string{}
	}
	return usecase.DetailInput{
		Title:              strp(offerType + " plan"),
		OfferType:          strp(offerType),
		Revisions:          intp(1),
		DeliveryTimeInDays: intp(days),
		Price:              decp(price),
		Features:           features,
	}
}

// basic/standard/premium の3プランを持つオファーを作る
func createThreeTier(t *testing.T, f fixture) usecase.OfferOutput {
	t.Helper()
	out, err := f.offers.CreateOffer(context.Background(), f.business, usecase.CreateOfferInput{
		Title:       "Grafikdesign-Paket",
		Description: "Logo und Visitenkarten",
		Details: []usecase.DetailInput{
			detailIn("basic", "120", 7, "Logo Design", "Visitenkarte"),
			detailIn("standard", "80", 5, "Logo Design", "Visitenkarte", "Briefpapier"),
			detailIn("premium", "200", 10, "Logo Design", "Visitenkarte", "Briefpapier", "Flyer"),
		},
	})
	require.NoError(t, err)
	return out
}

func byType(details []usecase.DetailOutput) map[model.OfferType]usecase.DetailOutput {
	m := make(map[model.OfferType]usecase.DetailOutput, len(details))
	for _, d := range details {
		m[d.OfferType] = d
	}
	return m
}

func assertStatus(t *testing.T, err error, status int) *usecase.HTTPError {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "err=%v", err) {
		assert.Equal(t, status, he.Status, "err=%v", err)
	}
	return he
}
