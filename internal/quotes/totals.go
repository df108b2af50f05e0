package quotes

import (
	"github.com/angelmondragon/quotedesk-backend/pkg/db/models"
	"github.com/angelmondragon/quotedesk-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the stored precision of every monetary amount.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// LineAmount is the priced part of a line item.
type LineAmount struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Discount is the quote-level reduction declared by the user.
type Discount struct {
	Type  enums.DiscountType
	Value decimal.Decimal
}

// Totals are the derived amounts of a quote.
type Totals struct {
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Taxable   decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// LineTotal prices a single row at currency precision.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(MoneyPlaces)
}

// ComputeTotals derives subtotal, tax and total from the line items.
//
// The subtotal is the exact sum of quantity times unit price, rounded once;
// per-line rounding only applies to the stored line totals. The discount
// value is subtracted as a flat amount whatever its declared type; the
// taxable base never drops below zero.
func ComputeTotals(items []LineAmount, taxRate decimal.Decimal, discount *Discount) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Quantity.Mul(item.UnitPrice))
	}
	subtotal = subtotal.Round(MoneyPlaces)

	discountAmount := decimal.Zero
	if discount != nil {
		// TODO: apply DiscountTypePercentage as a share of the subtotal once
		// the product decision lands; existing quotes rely on the flat amount.
		discountAmount = discount.Value
	}

	taxable := subtotal.Sub(discountAmount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	taxable = taxable.Round(MoneyPlaces)

	tax := taxable.Mul(taxRate).Div(hundred).Round(MoneyPlaces)

	return Totals{
		Subtotal:  subtotal,
		Discount:  discountAmount,
		Taxable:   taxable,
		TaxAmount: tax,
		Total:     taxable.Add(tax),
	}
}

// DiscountOf returns the quote's discount, or nil when none is set.
func DiscountOf(q *models.Quote) *Discount {
	if q == nil || q.DiscountValue == nil || q.DiscountValue.IsZero() {
		return nil
	}
	d := &Discount{Value: *q.DiscountValue}
	if q.DiscountType != nil {
		d.Type = *q.DiscountType
	}
	return d
}

// ApplyTotals recomputes the quote's derived fields from items.
func ApplyTotals(q *models.Quote, items []models.QuoteItem) Totals {
	amounts := make([]LineAmount, 0, len(items))
	for _, item := range items {
		amounts = append(amounts, LineAmount{Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	totals := ComputeTotals(amounts, q.TaxRate, DiscountOf(q))
	q.Subtotal = totals.Subtotal
	q.TaxAmount = totals.TaxAmount
	q.Total = totals.Total
	return totals
}
