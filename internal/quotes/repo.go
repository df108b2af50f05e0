package quotes

import (
	"context"

	"github.com/angelmondragon/quotedesk-backend/internal/repo"
	"github.com/angelmondragon/quotedesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the persistence surface the quote service needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, quote *models.Quote) error
	FindOwned(ctx context.Context, id, userID uuid.UUID) (*models.Quote, error)
	ListOwned(ctx context.Context, userID uuid.UUID) ([]models.Quote, error)
	UpdateHeader(ctx context.Context, quote *models.Quote) error
	ApplyItems(ctx context.Context, quoteID uuid.UUID, rec Reconciliation) ([]models.QuoteItem, error)
	DeleteOwned(ctx context.Context, id, userID uuid.UUID) error
	SetPDFURL(ctx context.Context, id uuid.UUID, url string) error
}

type gormRepository struct {
	repo.Base
}

// NewRepository binds the quote repository to db.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(db)}
}

func (r *gormRepository) WithTx(tx *gorm.DB) Repository {
	return &gormRepository{Base: r.Rebind(tx)}
}

func itemsInOrder(db *gorm.DB) *gorm.DB {
	return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).Order("created_at")
}

// Create inserts the quote together with its items.
func (r *gormRepository) Create(ctx context.Context, quote *models.Quote) error {
	return r.DB(ctx).Omit("Client").Create(quote).Error
}

// FindOwned loads a quote of userID with its client and its items in display
// order.
func (r *gormRepository) FindOwned(ctx context.Context, id, userID uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.Owned(ctx, &models.Quote{}, userID).
		Preload("Client").
		Preload("Items", itemsInOrder).
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// ListOwned returns every quote of userID, newest first.
func (r *gormRepository) ListOwned(ctx context.Context, userID uuid.UUID) ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.Owned(ctx, &models.Quote{}, userID).
		Preload("Items", itemsInOrder).
		Order("created_at DESC").
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

// UpdateHeader persists the quote row only; items go through ApplyItems.
func (r *gormRepository) UpdateHeader(ctx context.Context, quote *models.Quote) error {
	return r.DB(ctx).Omit(clause.Associations).Save(quote).Error
}

// ApplyItems writes a reconciliation: updates kept items, inserts new ones and
// removes the rest. It returns the resulting item set.
func (r *gormRepository) ApplyItems(ctx context.Context, quoteID uuid.UUID, rec Reconciliation) ([]models.QuoteItem, error) {
	db := r.DB(ctx)

	for i := range rec.Deleted {
		if err := db.Where("id = ? AND quote_id = ?", rec.Deleted[i].ID, quoteID).
			Delete(&models.QuoteItem{}).Error; err != nil {
			return nil, err
		}
	}

	for i := range rec.Kept {
		rec.Kept[i].QuoteID = quoteID
		if err := db.Save(&rec.Kept[i]).Error; err != nil {
			return nil, err
		}
	}

	for i := range rec.New {
		rec.New[i].QuoteID = quoteID
		if err := db.Create(&rec.New[i]).Error; err != nil {
			return nil, err
		}
	}

	return rec.Items(), nil
}

// DeleteOwned removes the quote and its items. A quote of another user is
// reported as gorm.ErrRecordNotFound.
func (r *gormRepository) DeleteOwned(ctx context.Context, id, userID uuid.UUID) error {
	db := r.DB(ctx)

	var count int64
	if err := r.Owned(ctx, &models.Quote{}, userID).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}

	if err := db.Where("quote_id = ?", id).Delete(&models.QuoteItem{}).Error; err != nil {
		return err
	}
	return db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Quote{}).Error
}

func (r *gormRepository) SetPDFURL(ctx context.Context, id uuid.UUID, url string) error {
	return r.DB(ctx).Model(&models.Quote{}).Where("id = ?", id).Update("pdf_url", url).Error
}
