package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"coderr/internal/domain/model"
	"coderr/internal/usecase"

	"github.com/shopspring/decimal"
)

const (
	maxTitleLen   = 255
	maxImageLen   = 255
	maxFeatureLen = 255
)

const (
	msgRequired  = "This field is required."
	msgBlank     = "This field may not be blank."
	msgTooLong   = "Ensure this field has no more than 255 characters."
	msgNegative  = "Ensure this value is greater than or equal to 0."
	msgEmptyList = "This list may not be empty."
	msgDuplicate = "Each offer_type may only appear once."
)

// numeric(10,2) に入る上限
var maxPrice = decimal.New(1, 8)

type offerValidator struct{}

// Usecaseは interface を依存注入
func NewOfferValidator() usecase.OfferValidator {
	return &offerValidator{}
}

// 作成時は全部必須
func (v *offerValidator) ValidateCreateOffer(in usecase.CreateOfferInput) error {
	fe := usecase.FieldErrors{}

	checkText(fe, "title", in.Title, maxTitleLen)
	checkText(fe, "description", in.Description, 0)
	checkImage(fe, in.Image)

	if len(in.Details) == 0 {
		fe.Add("details", msgEmptyList)
	}
	for i, d := range in.Details {
		prefix := fmt.Sprintf("details[%d].", i)
		if d.Title == nil {
			fe.Add(prefix+"title", msgRequired)
		}
		if d.OfferType == nil {
			fe.Add(prefix+"offer_type", msgRequired)
		}
		if d.Revisions == nil {
			fe.Add(prefix+"revisions", msgRequired)
		}
		if d.DeliveryTimeInDays == nil {
			fe.Add(prefix+"delivery_time_in_days", msgRequired)
		}
		if d.Price == nil {
			fe.Add(prefix+"price", msgRequired)
		}
		if d.Features == nil {
			fe.Add(prefix+"features", msgRequired)
		}
		checkDetail(fe, prefix, d)
	}
	checkDuplicateTypes(fe, in.Details)

	return fe.Err()
}

// 更新時は送られてきた項目だけ見る。プランはoffer_typeが必須（突き合わせのキー）。
func (v *offerValidator) ValidateUpdateOffer(in usecase.UpdateOfferInput) error {
	fe := usecase.FieldErrors{}

	if in.Title != nil {
		checkText(fe, "title", *in.Title, maxTitleLen)
	}
	if in.Description != nil {
		checkText(fe, "description", *in.Description, 0)
	}
	checkImage(fe, in.Image)

	for i, d := range in.Details {
		prefix := fmt.Sprintf("details[%d].", i)
		if d.OfferType == nil {
			fe.Add(prefix+"offer_type", msgRequired)
		}
		checkDetail(fe, prefix, d)
	}
	checkDuplicateTypes(fe, in.Details)

	return fe.Err()
}

// 値が入っている項目の中身チェック
func checkDetail(fe usecase.FieldErrors, prefix string, d usecase.DetailInput) {
	if d.Title != nil {
		checkText(fe, prefix+"title", *d.Title, maxTitleLen)
	}
	if d.OfferType != nil && !model.OfferType(*d.OfferType).Valid() {
		fe.Add(prefix+"offer_type", fmt.Sprintf("%q is not a valid choice.", *d.OfferType))
	}
	if d.Revisions != nil && *d.Revisions < 0 {
		fe.Add(prefix+"revisions", msgNegative)
	}
	if d.DeliveryTimeInDays != nil && *d.DeliveryTimeInDays < 0 {
		fe.Add(prefix+"delivery_time_in_days", msgNegative)
	}
	if d.Price != nil {
		checkPrice(fe, prefix+"price", *d.Price)
	}
	for j, name := range d.Features {
		checkText(fe, fmt.Sprintf("%sfeatures[%d]", prefix, j), name, maxFeatureLen)
	}
}

func checkText(fe usecase.FieldErrors, field string, s string, max int) {
	if strings.TrimSpace(s) == "" {
		fe.Add(field, msgBlank)
		return
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		fe.Add(field, msgTooLong)
	}
}

func checkImage(fe usecase.FieldErrors, image *string) {
	if image != nil && utf8.RuneCountInString(*image) > maxImageLen {
		fe.Add("image", msgTooLong)
	}
}

func checkPrice(fe usecase.FieldErrors, field string, p decimal.Decimal) {
	if p.IsNegative() {
		fe.Add(field, msgNegative)
		return
	}
	if !p.Equal(p.Round(2)) {
		fe.Add(field, "Ensure that there are no more than 2 decimal places.")
	}
	if p.GreaterThanOrEqual(maxPrice) {
		fe.Add(field, "Ensure that there are no more than 10 digits in total.")
	}
}

func checkDuplicateTypes(fe usecase.FieldErrors, details []usecase.DetailInput) {
	seen := make(map[string]bool, len(details))
	for _, d := range details {
		if d.OfferType == nil {
			continue
		}
		if seen[*d.OfferType] {
			fe.Add("details", msgDuplicate)
			return
		}
		seen[*d.OfferType] = true
	}
}
