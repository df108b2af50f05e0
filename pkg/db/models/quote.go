package models

import (
	"time"

	"github.com/angelmondragon/quotedesk-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Quote is a priced proposal addressed to one client. Subtotal, TaxAmount and
// Total are derived from Items and are only ever written by the quote engine.
type Quote struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteNumber   string              `gorm:"column:quote_number;type:text;not null;uniqueIndex"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	ClientID      uuid.UUID           `gorm:"column:client_id;type:uuid;not null;index"`
	Status        enums.QuoteStatus   `gorm:"column:status;type:text;not null;default:'Draft'"`
	Currency      enums.Currency      `gorm:"column:currency;type:text;not null;default:'EUR'"`
	Subtotal      decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null;default:0"`
	DiscountType  *enums.DiscountType `gorm:"column:discount_type;type:text"`
	DiscountValue *decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2)"`
	TaxRate       decimal.Decimal     `gorm:"column:tax_rate;type:numeric(5,2);not null;default:20.00"`
	TaxAmount     decimal.Decimal     `gorm:"column:tax_amount;type:numeric(12,2);not null;default:0"`
	Total         decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	PDFURL        *string             `gorm:"column:pdf_url"`
	Notes         *string             `gorm:"column:notes"`
	PaymentTerms  *string             `gorm:"column:payment_terms"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
	SentAt        *time.Time          `gorm:"column:sent_at"`

	Client *Client     `gorm:"foreignKey:ClientID"`
	Items  []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
}

func (q *Quote) BeforeCreate(*gorm.DB) error {
	assignID(&q.ID)
	return nil
}

// QuoteItem is a single billable row. Items have no existence outside their
// quote and are removed with it.
type QuoteItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteID     uuid.UUID       `gorm:"column:quote_id;type:uuid;not null;index"`
	Description string          `gorm:"column:description;not null"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:numeric(12,2);not null;default:1"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null;default:0"`
	Total       decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	Order       int             `gorm:"column:order;not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *QuoteItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
