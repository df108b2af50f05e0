package quotes

import (
	"time"

	"github.com/angelmondragon/quotedesk-backend/pkg/db/models"
	"github.com/angelmondragon/quotedesk-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteDTO is the API shape of a quote. Amounts are fixed two-place strings.
type QuoteDTO struct {
	ID            uuid.UUID           `json:"id"`
	QuoteNumber   string              `json:"quote_number"`
	UserID        uuid.UUID           `json:"user_id"`
	ClientID      uuid.UUID           `json:"client_id"`
	Status        enums.QuoteStatus   `json:"status"`
	Currency      enums.Currency      `json:"currency"`
	Subtotal      string              `json:"subtotal"`
	DiscountType  *enums.DiscountType `json:"discount_type"`
	DiscountValue *string             `json:"discount_value"`
	TaxRate       string              `json:"tax_rate"`
	TaxAmount     string              `json:"tax_amount"`
	Total         string              `json:"total"`
	PDFURL        *string             `json:"pdf_url"`
	Notes         *string             `json:"notes"`
	PaymentTerms  *string             `json:"payment_terms"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	SentAt        *time.Time          `json:"sent_at"`
	Items         []ItemDTO           `json:"items"`
}

type ItemDTO struct {
	ID          uuid.UUID `json:"id"`
	QuoteID     uuid.UUID `json:"quote_id"`
	Description string    `json:"description"`
	Quantity    string    `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
	Total       string    `json:"total"`
	Order       int       `json:"order"`
}

func FromModel(q *models.Quote) QuoteDTO {
	dto := QuoteDTO{
		ID:           q.ID,
		QuoteNumber:  q.QuoteNumber,
		UserID:       q.UserID,
		ClientID:     q.ClientID,
		Status:       q.Status,
		Currency:     q.Currency,
		Subtotal:     money(q.Subtotal),
		DiscountType: q.DiscountType,
		TaxRate:      money(q.TaxRate),
		TaxAmount:    money(q.TaxAmount),
		Total:        money(q.Total),
		PDFURL:       q.PDFURL,
		Notes:        q.Notes,
		PaymentTerms: q.PaymentTerms,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
		SentAt:       q.SentAt,
		Items:        make([]ItemDTO, 0, len(q.Items)),
	}
	if q.DiscountValue != nil {
		v := money(*q.DiscountValue)
		dto.DiscountValue = &v
	}
	for _, item := range q.Items {
		dto.Items = append(dto.Items, ItemDTO{
			ID:          item.ID,
			QuoteID:     item.QuoteID,
			Description: item.Description,
			Quantity:    money(item.Quantity),
			UnitPrice:   money(item.UnitPrice),
			Total:       money(item.Total),
			Order:       item.Order,
		})
	}
	return dto
}

func FromModels(quotes []models.Quote) []QuoteDTO {
	out := make([]QuoteDTO, 0, len(quotes))
	for i := range quotes {
		out = append(out, FromModel(&quotes[i]))
	}
	return out
}

func orDefault(d *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if d == nil {
		return fallback
	}
	return *d
}

func money(d decimal.Decimal) string {
	return d.StringFixed(MoneyPlaces)
}

// CreateRequest is the create payload. Derived amounts are not accepted.
type CreateRequest struct {
	ClientID      uuid.UUID           `json:"client_id" validate:"required"`
	QuoteNumber   *string             `json:"quote_number,omitempty" validate:"omitempty,max=50"`
	Currency      enums.Currency      `json:"currency,omitempty"`
	TaxRate       *decimal.Decimal    `json:"tax_rate,omitempty"`
	DiscountType  *enums.DiscountType `json:"discount_type,omitempty"`
	DiscountValue *decimal.Decimal    `json:"discount_value,omitempty"`
	Notes         *string             `json:"notes,omitempty"`
	PaymentTerms  *string             `json:"payment_terms,omitempty"`
	Items         []ItemRequest       `json:"items" validate:"dive"`
}

type ItemRequest struct {
	Description string           `json:"description" validate:"required,max=1000"`
	Quantity    *decimal.Decimal `json:"quantity" validate:"required"`
	UnitPrice   *decimal.Decimal `json:"unit_price" validate:"required"`
	Order       int              `json:"order"`
}

func (r CreateRequest) Input() CreateInput {
	in := CreateInput{
		ClientID:      r.ClientID,
		QuoteNumber:   r.QuoteNumber,
		Currency:      r.Currency,
		TaxRate:       r.TaxRate,
		DiscountType:  r.DiscountType,
		DiscountValue: r.DiscountValue,
		Notes:         r.Notes,
		PaymentTerms:  r.PaymentTerms,
		Items:         make([]ItemInput, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		in.Items = append(in.Items, ItemInput{
			Description: item.Description,
			Quantity:    orDefault(item.Quantity, decimal.NewFromInt(1)),
			UnitPrice:   orDefault(item.UnitPrice, decimal.Zero),
			Order:       item.Order,
		})
	}
	return in
}

// UpdateRequest is the partial update payload. Omitting items leaves them
// untouched; an empty list removes them all.
type UpdateRequest struct {
	ClientID      *uuid.UUID          `json:"client_id,omitempty"`
	QuoteNumber   *string             `json:"quote_number,omitempty" validate:"omitempty,max=50"`
	Currency      *enums.Currency     `json:"currency,omitempty"`
	Status        *enums.QuoteStatus  `json:"status,omitempty"`
	TaxRate       *decimal.Decimal    `json:"tax_rate,omitempty"`
	DiscountType  *enums.DiscountType `json:"discount_type,omitempty"`
	DiscountValue *decimal.Decimal    `json:"discount_value,omitempty"`
	Notes         *string             `json:"notes,omitempty"`
	PaymentTerms  *string             `json:"payment_terms,omitempty"`
	Items         *[]ItemPatchRequest `json:"items,omitempty"`
}

type ItemPatchRequest struct {
	ID          *uuid.UUID       `json:"id,omitempty"`
	Description *string          `json:"description,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Order       *int             `json:"order,omitempty"`
}

func (r UpdateRequest) Input() UpdateInput {
	in := UpdateInput{
		ClientID:      r.ClientID,
		QuoteNumber:   r.QuoteNumber,
		Currency:      r.Currency,
		Status:        r.Status,
		TaxRate:       r.TaxRate,
		DiscountType:  r.DiscountType,
		DiscountValue: r.DiscountValue,
		Notes:         r.Notes,
		PaymentTerms:  r.PaymentTerms,
	}
	if r.Items != nil {
		in.Items = make([]ItemPatch, 0, len(*r.Items))
		for _, p := range *r.Items {
			in.Items = append(in.Items, ItemPatch(p))
		}
	}
	return in
}
