package quotes

import (
	"math/rand"
	"testing"

	"github.com/angelmondragon/quotedesk-backend/pkg/db/models"
	"github.com/angelmondragon/quotedesk-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s got %s %v", want, got.String(), msgAndArgs)
}

func TestComputeTotalsWorkedExample(t *testing.T) {
	totals := ComputeTotals([]LineAmount{
		{Quantity: dec("2"), UnitPrice: dec("10.00")},
		{Quantity: dec("1"), UnitPrice: dec("5.00")},
	}, dec("20"), nil)

	assertDecimal(t, "25.00", totals.Subtotal)
	assertDecimal(t, "5.00", totals.TaxAmount)
	assertDecimal(t, "30.00", totals.Total)
}

func TestComputeTotalsDiscountLargerThanSubtotal(t *testing.T) {
	totals := ComputeTotals([]LineAmount{
		{Quantity: dec("2"), UnitPrice: dec("10.00")},
		{Quantity: dec("1"), UnitPrice: dec("5.00")},
	}, dec("20"), &Discount{Type: enums.DiscountTypeFixed, Value: dec("30.00")})

	assertDecimal(t, "25.00", totals.Subtotal)
	assertDecimal(t, "0.00", totals.Taxable)
	assertDecimal(t, "0.00", totals.TaxAmount)
	assertDecimal(t, "0.00", totals.Total)
}

func TestComputeTotalsEmptyItems(t *testing.T) {
	totals := ComputeTotals(nil, dec("20"), nil)
	assertDecimal(t, "0", totals.Subtotal)
	assertDecimal(t, "0", totals.TaxAmount)
	assertDecimal(t, "0", totals.Total)
}

func TestComputeTotalsPercentageDiscountIsFlat(t *testing.T) {
	items := []LineAmount{{Quantity: dec("1"), UnitPrice: dec("200.00")}}

	pct := ComputeTotals(items, dec("10"), &Discount{Type: enums.DiscountTypePercentage, Value: dec("10")})
	fixed := ComputeTotals(items, dec("10"), &Discount{Type: enums.DiscountTypeFixed, Value: dec("10")})

	assertDecimal(t, "190.00", pct.Taxable)
	assert.True(t, pct.Total.Equal(fixed.Total))
	assertDecimal(t, "209.00", pct.Total)
}

func TestComputeTotalsRoundsToCents(t *testing.T) {
	totals := ComputeTotals([]LineAmount{
		{Quantity: dec("3"), UnitPrice: dec("0.10")},
		{Quantity: dec("1.5"), UnitPrice: dec("0.33")},
	}, dec("19.6"), nil)

	// 0.30 + 0.495 = 0.795
	assertDecimal(t, "0.80", totals.Subtotal)
	// 0.80 * 19.6 / 100 = 0.1568
	assertDecimal(t, "0.16", totals.TaxAmount)
	assertDecimal(t, "0.96", totals.Total)
}

func TestComputeTotalsSubtotalRoundsOnce(t *testing.T) {
	line := LineAmount{Quantity: dec("0.5"), UnitPrice: dec("0.01")}
	totals := ComputeTotals([]LineAmount{line, line, line}, decimal.Zero, nil)

	// three lines of 0.005 each; rounding per line would give 0.03
	assertDecimal(t, "0.02", totals.Subtotal)
	assertDecimal(t, "0.02", totals.Total)
	assertDecimal(t, "0.01", LineTotal(line.Quantity, line.UnitPrice))
}

func TestComputeTotalsProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := rng.Intn(6)
		items := make([]LineAmount, 0, n)
		want := decimal.Zero
		for i := 0; i < n; i++ {
			qty := decimal.NewFromInt(int64(rng.Intn(20) + 1))
			if rng.Intn(2) == 0 {
				qty = decimal.New(rng.Int63n(1000)+1, -2)
			}
			price := decimal.New(int64(rng.Intn(100000)), -2)
			items = append(items, LineAmount{Quantity: qty, UnitPrice: price})
			want = want.Add(qty.Mul(price))
		}
		want = want.Round(2)
		taxRate := decimal.New(int64(rng.Intn(3000)), -2)

		var discount *Discount
		discountAmount := decimal.Zero
		if rng.Intn(2) == 0 {
			discountAmount = decimal.New(int64(rng.Intn(200000)), -2)
			discount = &Discount{Type: enums.DiscountTypeFixed, Value: discountAmount}
		}

		totals := ComputeTotals(items, taxRate, discount)

		assert.True(t, want.Equal(totals.Subtotal), "subtotal round %d", round)

		wantTaxable := want.Sub(discountAmount)
		if wantTaxable.IsNegative() {
			wantTaxable = decimal.Zero
		}
		assert.True(t, wantTaxable.Equal(totals.Taxable), "taxable round %d", round)

		wantTax := wantTaxable.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)
		assert.True(t, wantTax.Equal(totals.TaxAmount), "tax round %d", round)
		assert.True(t, wantTaxable.Add(wantTax).Equal(totals.Total), "total round %d", round)
		assert.False(t, totals.Total.IsNegative())
	}
}

func TestApplyTotalsUsesQuoteDiscountAndRate(t *testing.T) {
	discount := dec("5.00")
	dtype := enums.DiscountTypeFixed
	quote := &models.Quote{TaxRate: dec("10"), DiscountValue: &discount, DiscountType: &dtype}

	ApplyTotals(quote, []models.QuoteItem{
		{Quantity: dec("1"), UnitPrice: dec("55.00")},
	})

	assertDecimal(t, "55.00", quote.Subtotal)
	assertDecimal(t, "5.00", quote.TaxAmount)
	assertDecimal(t, "55.00", quote.Total)
}

func TestDiscountOf(t *testing.T) {
	assert.Nil(t, DiscountOf(&models.Quote{}))

	zero := decimal.Zero
	assert.Nil(t, DiscountOf(&models.Quote{DiscountValue: &zero}))

	value := dec("3")
	got := DiscountOf(&models.Quote{DiscountValue: &value})
	if assert.NotNil(t, got) {
		assertDecimal(t, "3", got.Value)
		assert.Equal(t, enums.DiscountType(""), got.Type)
	}
}
