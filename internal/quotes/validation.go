package quotes

import (
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/quotedesk-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

type fieldErrors map[string]string

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid quote payload").WithDetails(map[string]string(f))
}

func validateCreate(input CreateInput) error {
	errs := fieldErrors{}
	if input.Currency != "" && !input.Currency.IsValid() {
		errs["currency"] = "must be one of EUR, USD, GBP, CHF, CAD"
	}
	checkMoneyHeader(errs, input.TaxRate, input.DiscountValue)
	if input.DiscountType != nil && !input.DiscountType.IsValid() {
		errs["discount_type"] = "must be percentage or fixed"
	}
	for i, item := range input.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.Description) == "" {
			errs[prefix+".description"] = "is required"
		}
		checkQuantity(errs, prefix, item.Quantity)
		checkUnitPrice(errs, prefix, item.UnitPrice)
	}
	return errs.err()
}

func validateUpdate(input UpdateInput) error {
	errs := fieldErrors{}
	if input.Currency != nil && !input.Currency.IsValid() {
		errs["currency"] = "must be one of EUR, USD, GBP, CHF, CAD"
	}
	if input.Status != nil && !input.Status.IsValid() {
		errs["status"] = "must be one of Draft, Sent, Accepted, Rejected"
	}
	checkMoneyHeader(errs, input.TaxRate, input.DiscountValue)
	if input.DiscountType != nil && !input.DiscountType.IsValid() {
		errs["discount_type"] = "must be percentage or fixed"
	}
	for i, patch := range input.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if patch.Quantity != nil {
			checkQuantity(errs, prefix, *patch.Quantity)
		}
		if patch.UnitPrice != nil {
			checkUnitPrice(errs, prefix, *patch.UnitPrice)
		}
	}
	return errs.err()
}

const tooPrecise = "must have at most 2 decimal places"

// fitsColumn reports whether d is stored without loss in a numeric(_,2) column.
func fitsColumn(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyPlaces))
}

func checkMoneyHeader(errs fieldErrors, taxRate, discount *decimal.Decimal) {
	if taxRate != nil {
		switch {
		case taxRate.IsNegative():
			errs["tax_rate"] = "must be greater than or equal to 0"
		case !fitsColumn(*taxRate):
			errs["tax_rate"] = tooPrecise
		}
	}
	if discount != nil {
		switch {
		case discount.IsNegative():
			errs["discount_value"] = "must be greater than or equal to 0"
		case !fitsColumn(*discount):
			errs["discount_value"] = tooPrecise
		}
	}
}

func checkQuantity(errs fieldErrors, prefix string, qty decimal.Decimal) {
	switch {
	case !qty.IsPositive():
		errs[prefix+".quantity"] = "must be greater than 0"
	case !fitsColumn(qty):
		errs[prefix+".quantity"] = tooPrecise
	}
}

func checkUnitPrice(errs fieldErrors, prefix string, price decimal.Decimal) {
	switch {
	case price.IsNegative():
		errs[prefix+".unit_price"] = "must be greater than or equal to 0"
	case !fitsColumn(price):
		errs[prefix+".unit_price"] = tooPrecise
	}
}
