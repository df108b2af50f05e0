package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/quotedesk-backend/pkg/db"
	"github.com/angelmondragon/quotedesk-backend/pkg/db/models"
	"github.com/angelmondragon/quotedesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/quotedesk-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultTaxRate applies when a quote is created without one.
var DefaultTaxRate = decimal.NewFromInt(20)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type clientLookup interface {
	ExistsOwned(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

// Recorder receives quote lifecycle measurements.
type Recorder interface {
	QuoteCreated(currency string)
	ItemsReconciled(kept, added, deleted int)
}

// Service exposes quote operations scoped to the calling user.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Quote, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Quote, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Quote, error)
	Update(ctx context.Context, userID, id uuid.UUID, input UpdateInput) (*models.Quote, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	repo    Repository
	tx      txRunner
	clients clientLookup
	metrics Recorder
	now     Clock
}

// NewService builds the quote service. metrics may be nil.
func NewService(repo Repository, tx txRunner, clients clientLookup, metrics Recorder, now Clock) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quote repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if clients == nil {
		return nil, fmt.Errorf("client lookup required")
	}
	if now == nil {
		now = time.Now
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &service{
		repo:    repo,
		tx:      tx,
		clients: clients,
		metrics: metrics,
		now:     now,
	}, nil
}

// CreateInput is a validated create payload.
type CreateInput struct {
	ClientID      uuid.UUID
	QuoteNumber   *string
	Currency      enums.Currency
	TaxRate       *decimal.Decimal
	DiscountType  *enums.DiscountType
	DiscountValue *decimal.Decimal
	Notes         *string
	PaymentTerms  *string
	Items         []ItemInput
}

// ItemInput is a fully specified line item.
type ItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Order       int
}

// UpdateInput is a partial update. Nil header fields are left untouched and
// a nil Items slice leaves the stored items as they are; an empty non-nil
// slice removes every item.
type UpdateInput struct {
	ClientID      *uuid.UUID
	QuoteNumber   *string
	Currency      *enums.Currency
	Status        *enums.QuoteStatus
	TaxRate       *decimal.Decimal
	DiscountType  *enums.DiscountType
	DiscountValue *decimal.Decimal
	Notes         *string
	PaymentTerms  *string
	Items         []ItemPatch
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Quote, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}
	if err := s.ensureClient(ctx, input.ClientID, userID); err != nil {
		return nil, err
	}

	now := s.now()
	quote := &models.Quote{
		UserID:        userID,
		ClientID:      input.ClientID,
		QuoteNumber:   NumberFor(now),
		Status:        enums.QuoteStatusDraft,
		Currency:      input.Currency,
		TaxRate:       DefaultTaxRate,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
		Notes:         input.Notes,
		PaymentTerms:  input.PaymentTerms,
		CreatedAt:     now,
	}
	if quote.Currency == "" {
		quote.Currency = enums.CurrencyEUR
	}
	if input.QuoteNumber != nil && strings.TrimSpace(*input.QuoteNumber) != "" {
		quote.QuoteNumber = strings.TrimSpace(*input.QuoteNumber)
	}
	if input.TaxRate != nil {
		quote.TaxRate = *input.TaxRate
	}

	quote.Items = make([]models.QuoteItem, 0, len(input.Items))
	for _, item := range input.Items {
		quote.Items = append(quote.Items, models.QuoteItem{
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       LineTotal(item.Quantity, item.UnitPrice),
			Order:       item.Order,
		})
	}
	ApplyTotals(quote, quote.Items)

	var saved *models.Quote
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Create(ctx, quote); err != nil {
			return err
		}
		var err error
		saved, err = txRepo.FindOwned(ctx, quote.ID, userID)
		return err
	}); err != nil {
		return nil, persistError(err, "create quote")
	}

	s.metrics.QuoteCreated(saved.Currency.String())
	return saved, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.Quote, error) {
	quotes, err := s.repo.ListOwned(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotes")
	}
	return quotes, nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*models.Quote, error) {
	quote, err := s.repo.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, lookupError(err)
	}
	return quote, nil
}

// Update applies header changes, reconciles items when provided and refreshes
// the derived totals, all in one transaction.
func (s *service) Update(ctx context.Context, userID, id uuid.UUID, input UpdateInput) (*models.Quote, error) {
	if err := validateUpdate(input); err != nil {
		return nil, err
	}
	if input.ClientID != nil {
		if err := s.ensureClient(ctx, *input.ClientID, userID); err != nil {
			return nil, err
		}
	}

	var (
		saved *models.Quote
		rec   *Reconciliation
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		quote, err := txRepo.FindOwned(ctx, id, userID)
		if err != nil {
			return err
		}

		s.applyHeader(quote, input)

		items := quote.Items
		if input.Items != nil {
			r := Reconcile(quote.ID, quote.Items, input.Items)
			rec = &r
			items, err = txRepo.ApplyItems(ctx, quote.ID, r)
			if err != nil {
				return err
			}
		}
		ApplyTotals(quote, items)

		if err := txRepo.UpdateHeader(ctx, quote); err != nil {
			return err
		}

		saved, err = txRepo.FindOwned(ctx, id, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, persistError(err, "update quote")
	}

	if rec != nil {
		s.metrics.ItemsReconciled(len(rec.Kept), len(rec.New), len(rec.Deleted))
	}
	return saved, nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteOwned(ctx, id, userID)
	})
	if err != nil {
		return lookupError(err)
	}
	return nil
}

func (s *service) applyHeader(quote *models.Quote, input UpdateInput) {
	if input.ClientID != nil {
		quote.ClientID = *input.ClientID
		quote.Client = nil
	}
	if input.QuoteNumber != nil && strings.TrimSpace(*input.QuoteNumber) != "" {
		quote.QuoteNumber = strings.TrimSpace(*input.QuoteNumber)
	}
	if input.Currency != nil {
		quote.Currency = *input.Currency
	}
	if input.Status != nil {
		quote.Status = *input.Status
		if quote.Status == enums.QuoteStatusSent && quote.SentAt == nil {
			sentAt := s.now()
			quote.SentAt = &sentAt
		}
	}
	if input.TaxRate != nil {
		quote.TaxRate = *input.TaxRate
	}
	if input.DiscountType != nil {
		quote.DiscountType = input.DiscountType
	}
	if input.DiscountValue != nil {
		quote.DiscountValue = input.DiscountValue
	}
	if input.Notes != nil {
		quote.Notes = input.Notes
	}
	if input.PaymentTerms != nil {
		quote.PaymentTerms = input.PaymentTerms
	}
}

func (s *service) ensureClient(ctx context.Context, clientID, userID uuid.UUID) error {
	ok, err := s.clients.ExistsOwned(ctx, clientID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
	}
	return nil
}

func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
}

func persistError(err error, action string) error {
	if db.IsUniqueViolation(err, "quote_number") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "quote number already exists")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

type noopRecorder struct{}

func (noopRecorder) QuoteCreated(string)           {}
func (noopRecorder) ItemsReconciled(int, int, int) {}
