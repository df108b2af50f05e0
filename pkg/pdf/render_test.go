package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesPDF(t *testing.T) {
	renderer := NewRenderer("QuoteDesk")

	out, err := renderer.Render(Document{
		QuoteNumber: "Q-1700000000",
		Date:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:      "Draft",
		Currency:    "EUR",
		ClientName:  "Acme Studio",
		Lines: []Line{
			{Description: "Design work", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("10.00"), Total: decimal.RequireFromString("20.00")},
			{Description: "Hosting", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("5.00"), Total: decimal.RequireFromString("5.00")},
		},
		Subtotal:  decimal.RequireFromString("25.00"),
		TaxRate:   decimal.NewFromInt(20),
		TaxAmount: decimal.RequireFromString("5.00"),
		Total:     decimal.RequireFromString("30.00"),
		Notes:     "Valid for 30 days.",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 500)
}

func TestRenderWithoutLines(t *testing.T) {
	out, err := NewRenderer("").Render(Document{QuoteNumber: "Q-1", Currency: "CHF", Date: time.Now()})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "€1,234.50", FormatAmount(decimal.RequireFromString("1234.5"), "EUR"))
	assert.Equal(t, "$0.99", FormatAmount(decimal.RequireFromString("0.99"), "USD"))
	assert.Equal(t, "£10.00", FormatAmount(decimal.NewFromInt(10), "GBP"))
	assert.Equal(t, "12.35 CHF", FormatAmount(decimal.RequireFromString("12.345"), "CHF"))
	assert.Equal(t, "7.00 XYZ", FormatAmount(decimal.NewFromInt(7), "XYZ"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
