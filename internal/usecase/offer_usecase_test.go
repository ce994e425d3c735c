package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"coderr/internal/domain/model"
	repo "coderr/internal/repository"
	"coderr/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOffer_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created := createThreeTier(t, f)
	require.Len(t, created.Details, 3)

	for _, d := range created.Details {
		got, err := f.offers.GetOfferDetail(ctx, d.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, d.Features, got.Features)
	}

	types := byType(created.Details)
	assert.Equal(t, []string{"Logo Design", "Visitenkarte"}, types[model.OfferTypeBasic].Features)
	assert.Len(t, types[model.OfferTypeStandard].Features, 3)
	assert.Len(t, types[model.OfferTypePremium].Features, 4)
}

func TestCreateOffer_OnlyBusiness(t *testing.T) {
	f := newFixture(t)
	_, err := f.offers.CreateOffer(context.Background(), f.customer, usecase.CreateOfferInput{
		Title:       "x",
		Description: "y",
		Details:     []usecase.DetailInput{detailIn("basic", "1", 1)},
	})
	he := assertStatus(t, err, http.StatusForbidden)
	assert.Equal(t, "Only business users can create offers.", he.Message)
	assert.Equal(t, 0, f.store.OfferCount())
}

func TestCreateOffer_ValidationBeforeWrite(t *testing.T) {
	f := newFixture(t)
	_, err := f.offers.CreateOffer(context.Background(), f.business, usecase.CreateOfferInput{
		Title:       "x",
		Description: "y",
		Details:     []usecase.DetailInput{detailIn("gold", "1", 1)},
	})
	he := assertStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, he.Fields, "details[0].offer_type")
	assert.Equal(t, 0, f.store.OfferCount())
}

func TestCreateOffer_RollbackOnChildFailure(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("OfferFeatures.CreateBulk", errors.New("boom"))

	_, err := f.offers.CreateOffer(context.Background(), f.business, usecase.CreateOfferInput{
		Title:       "x",
		Description: "y",
		Details: []usecase.DetailInput{
			detailIn("basic", "10", 1, "a"),
			detailIn("standard", "20", 2, "b"),
		},
	})
	he := assertStatus(t, err, http.StatusInternalServerError)
	assert.Equal(t, "db error", he.Message)

	//オファーもプランも残らない
	assert.Equal(t, 0, f.store.OfferCount())
	assert.Equal(t, 0, f.store.DetailCount())
	assert.Equal(t, 0, f.store.OfferFeatureCount())
}

func TestUpdateOffer_MergeByTypeIgnoresID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created := createThreeTier(t, f)
	before := byType(created.Details)

	//idはpremiumのものを送るが、offer_typeのbasicに当たる
	out, err := f.offers.UpdateOffer(ctx, f.business, created.ID, usecase.UpdateOfferInput{
		Details: []usecase.DetailInput{{
			ID:        i64p(before[model.OfferTypePremium].ID),
			OfferType: strp("basic"),
			Title:     strp("Basic neu"),
			Price:     decp("99.50"),
		}},
	})
	require.NoError(t, err)

	after := byType(out.Details)
	require.Len(t, after, 3)
	basic := after[model.OfferTypeBasic]
	assert.Equal(t, before[model.OfferTypeBasic].ID, basic.ID)
	assert.Equal(t, "Basic neu", basic.Title)
	assert.Equal(t, "99.5", basic.Price.String())
	//送っていない項目はそのまま
	assert.Equal(t, before[model.OfferTypeBasic].DeliveryTimeInDays, basic.DeliveryTimeInDays)
	assert.Equal(t, before[model.OfferTypeBasic].Features, basic.Features)

	assert.Equal(t, before[model.OfferTypePremium], after[model.OfferTypePremium])
}

func TestUpdateOffer_AdditiveOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created := createThreeTier(t, f)
	before := byType(created.Details)

	out, err := f.offers.UpdateOffer(ctx, f.business, created.ID, usecase.UpdateOfferInput{
		Details: []usecase.DetailInput{{OfferType: strp("standard"), Revisions: intp(9)}},
	})
	require.NoError(t, err)

	after := byType(out.Details)
	require.Len(t, after, 3)
	assert.Equal(t, before[model.OfferTypeBasic], after[model.OfferTypeBasic])
	assert.Equal(t, before[model.OfferTypePremium], after[model.OfferTypePremium])
	assert.Equal(t, 9, after[model.OfferTypeStandard].Revisions)
}

func TestUpdateOffer_FeaturesReplaceOrKeep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created := createThreeTier(t, f)
	before := byType(created.Details)

	out, err := f.offers.UpdateOffer(ctx, f.business, created.ID, usecase.UpdateOfferInput{
		Details: []usecase.DetailInput{
			{OfferType: strp("basic"), Features: []string{}},
			{OfferType: strp("standard"), Title: strp("Standard neu")},
			{OfferType: strp("premium"), Features: []string{"Nur noch eins"}},
		},
	})
	require.NoError(t, err)

	after := byType(out.Details)
	assert.Empty(t, after[model.OfferTypeBasic].Features)
	assert.Equal(t, before[model.OfferTypeStandard].Features, after[model.OfferTypeStandard].Features)
	assert.Equal(t, []string{"Nur noch eins"}, after[model.OfferTypePremium].Features)

	got, err := f.offers.GetOfferDetail(ctx, before[model.OfferTypeBasic].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Features)
}

func TestUpdateOffer_CreatesMissingVariant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created, err := f.offers.CreateOffer(ctx, f.business, usecase.CreateOfferInput{
		Title:       "Nur Basic",
		Description: "d",
		Details:     []usecase.DetailInput{detailIn("basic", "50", 3, "a")},
	})
	require.NoError(t, err)

	out, err := f.offers.UpdateOffer(ctx, f.business, created.ID, usecase.UpdateOfferInput{
		Details: []usecase.DetailInput{detailIn("premium", "500", 14, "x", "y")},
	})
	require.NoError(t, err)
	types := byType(out.Details)
	require.Len(t, types, 2)
	assert.Equal(t, []string{"x", "y"}, types[model.OfferTypePremium].Features)
}

func TestUpdateOffer_NewVariantNeedsAllFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created, err := f.offers.CreateOffer(ctx, f.business, usecase.CreateOfferInput{
		Title:       "Nur Basic",
		Description: "d",
		Details:     []usecase.DetailInput{detailIn("basic", "50", 3)},
	})
	require.NoError(t, err)

	_, err = f.offers.UpdateOffer(ctx, f.business, created.ID, usecase.UpdateOfferInput{
		Title:   strp("geändert"),
		Details: []usecase.DetailInput{{OfferType: strp("premium"), Price: decp("10")}},
	})
	he := assertStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, he.Fields, "details[0].title")
	assert.Contains(t, he.Fields, "details[0].revisions")
	assert.Contains(t, he.Fields, "details[0].delivery_time_in_days")
	assert.NotContains(t, he.Fields, "details[0].price")

	//タイトルも変わっていない
	got, err := f.offers.GetOffer(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nur Basic", got.Title)
	assert.Len(t, f.store.Details(created.ID), 1)
}

func TestUpdateOffer_ScalarPatchAndUpdatedAt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created := createThreeTier(t, f)
	before, err := f.offers.GetOffer(ctx, created.ID)
	require.NoError(t, err)

	out, err := f.offers.UpdateOffer(ctx, f.business, created.ID, usecase.UpdateOfferInput{
		Description: strp("neu"),
	})
	require.NoError(t, err)
	assert.Equal(t, created.Title, out.Title)
	assert.Equal(t, "neu", out.Description)
	assert.Len(t, out.Details, 3)

	after, err := f.offers.GetOffer(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestUpdateOffer_ImageKeepSetClear(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created, err := f.offers.CreateOffer(ctx, f.business, usecase.CreateOfferInput{
		Title:       "Mit Bild",
		Description: "d",
		Image:       strp("img.png"),
		Details:     []usecase.DetailInput{detailIn("basic", "50", 3)},
	})
	require.NoError(t, err)

	//imageが来なければそのまま
	out, err := f.offers.UpdateOffer(ctx, f.business, created.ID, usecase.UpdateOfferInput{Title: strp("neu")})
	require.NoError(t, err)
	require.NotNil(t, out.Image)
	assert.Equal(t, "img.png", *out.Image)

	out, err = f.offers.UpdateOffer(ctx, f.business, created.ID, usecase.UpdateOfferInput{Image: strp("other.png")})
	require.NoError(t, err)
	assert.Equal(t, "other.png", *out.Image)

	out, err = f.offers.UpdateOffer(ctx, f.business, created.ID, usecase.UpdateOfferInput{ClearImage: true})
	require.NoError(t, err)
	assert.Nil(t, out.Image)

	got, err := f.offers.GetOffer(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Image)
	assert.Equal(t, "neu", got.Title)
}

func TestUpdateOffer_NewVariantConflictIsFieldError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created, err := f.offers.CreateOffer(ctx, f.business, usecase.CreateOfferInput{
		Title:       "Nur Basic",
		Description: "d",
		Details:     []usecase.DetailInput{detailIn("basic", "50", 3)},
	})
	require.NoError(t, err)

	//同じtypeが別のリクエストで先に作られた状態
	f.store.FailOn("OfferDetails.Create", repo.ErrConflict)
	_, err = f.offers.UpdateOffer(ctx, f.business, created.ID, usecase.UpdateOfferInput{
		Details: []usecase.DetailInput{
			{OfferType: strp("basic"), Price: decp("55")},
			detailIn("premium", "500", 14, "x"),
		},
	})
	he := assertStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, []string{"Duplicate offer_type."}, he.Fields["details[1].offer_type"])

	f.store.FailOn("OfferDetails.Create", nil)
	details := f.store.Details(created.ID)
	require.Len(t, details, 1)
	assert.Equal(t, "50", details[0].Price.String())
}

func TestUpdateOffer_NotFoundThenForbiddenThenValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created := createThreeTier(t, f)
	bad := usecase.UpdateOfferInput{Title: strp("")}

	_, err := f.offers.UpdateOffer(ctx, f.other, 9999, bad)
	assertStatus(t, err, http.StatusNotFound)

	_, err = f.offers.UpdateOffer(ctx, f.other, created.ID, bad)
	he := assertStatus(t, err, http.StatusForbidden)
	assert.Equal(t, "You do not have permission to edit this offer.", he.Message)

	_, err = f.offers.UpdateOffer(ctx, f.business, created.ID, bad)
	assertStatus(t, err, http.StatusBadRequest)
}

func TestUpdateOffer_RollbackAndAudit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created := createThreeTier(t, f)
	before := byType(created.Details)

	f.store.FailOn("OfferFeatures.CreateBulk", errors.New("boom"))
	_, err := f.offers.UpdateOffer(ctx, f.business, created.ID, usecase.UpdateOfferInput{
		Title: strp("nie gespeichert"),
		Details: []usecase.DetailInput{
			{OfferType: strp("basic"), Price: decp("1"), Features: []string{"z"}},
		},
	})
	assertStatus(t, err, http.StatusInternalServerError)

	f.store.FailOn("OfferFeatures.CreateBulk", nil)
	got, err := f.offers.GetOfferDetail(ctx, before[model.OfferTypeBasic].ID)
	require.NoError(t, err)
	assert.Equal(t, before[model.OfferTypeBasic], got)
	assert.Empty(t, f.store.AuditLogs())

	_, err = f.offers.UpdateOffer(ctx, f.business, created.ID, usecase.UpdateOfferInput{Title: strp("gespeichert")})
	require.NoError(t, err)
	logs := f.store.AuditLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditActionUpdateOffer, logs[0].Action)
	assert.Equal(t, created.ID, logs[0].ResourceID)
	assert.Contains(t, logs[0].AfterJSON, "gespeichert")
}

func TestDeleteOffer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created := createThreeTier(t, f)

	err := f.offers.DeleteOffer(ctx, f.other, created.ID)
	assertStatus(t, err, http.StatusForbidden)

	require.NoError(t, f.offers.DeleteOffer(ctx, f.business, created.ID))
	assert.Equal(t, 0, f.store.DetailCount())
	assert.Equal(t, 0, f.store.OfferFeatureCount())

	_, err = f.offers.GetOffer(ctx, created.ID)
	assertStatus(t, err, http.StatusNotFound)
	_, err = f.offers.GetOfferDetail(ctx, created.Details[0].ID)
	assertStatus(t, err, http.StatusNotFound)
}

func TestListOffers_Minimums(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created := createThreeTier(t, f)

	list, err := f.offers.ListOffers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	item := list[0]
	assert.Equal(t, created.ID, item.ID)
	assert.Equal(t, f.business.UserID, item.User)
	assert.Equal(t, usecase.UserDetailsOutput{Username: "biz", FirstName: "Max", LastName: "Mustermann"}, item.UserDetails)
	require.NotNil(t, item.MinPrice)
	assert.Equal(t, "80", item.MinPrice.String())
	require.NotNil(t, item.MinDeliveryTime)
	assert.Equal(t, 5, *item.MinDeliveryTime)
	require.Len(t, item.Details, 3)
	assert.Equal(t, fmt.Sprintf("/offerdetails/%d/", item.Details[0].ID), item.Details[0].URL)

	//更新すると計算し直される
	_, err = f.offers.UpdateOffer(ctx, f.business, created.ID, usecase.UpdateOfferInput{
		Details: []usecase.DetailInput{{OfferType: strp("premium"), Price: decp("15.25"), DeliveryTimeInDays: intp(1)}},
	})
	require.NoError(t, err)
	got, err := f.offers.GetOffer(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "15.25", got.MinPrice.String())
	assert.Equal(t, 1, *got.MinDeliveryTime)
	assert.Equal(t, "biz", got.UserDetails.Username)
}

func TestListOffers_NewestUpdatedFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := createThreeTier(t, f)
	second := createThreeTier(t, f)

	list, err := f.offers.ListOffers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	_, err = f.offers.UpdateOffer(ctx, f.business, first.ID, usecase.UpdateOfferInput{Title: strp("hoch")})
	require.NoError(t, err)
	list, err = f.offers.ListOffers(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, list[0].ID)
}
