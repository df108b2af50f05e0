package clients

import (
	"context"
	"strings"

	"github.com/angelmondragon/quotedesk-backend/internal/repo"
	"github.com/angelmondragon/quotedesk-backend/pkg/db/models"
	"github.com/angelmondragon/quotedesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists clients scoped to their owning user.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, client *models.Client) error {
	return r.DB(ctx).Create(client).Error
}

func (r *Repository) FindOwned(ctx context.Context, id, userID uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := r.Owned(ctx, &models.Client{}, userID).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// ExistsOwned reports whether id names a client of userID.
func (r *Repository) ExistsOwned(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.Owned(ctx, &models.Client{}, userID).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns the user's clients ordered by name, optionally filtered by a
// case-insensitive match on name or email, together with the match count.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, search string, page pagination.Params) ([]models.Client, int64, error) {
	query := r.Owned(ctx, &models.Client{}, userID)
	if term := strings.ToLower(strings.TrimSpace(search)); term != "" {
		pattern := "%" + escapeLike(term) + "%"
		query = query.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\')", pattern, pattern)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []models.Client
	if err := query.Order("name ASC").Order("created_at ASC").Limit(page.Limit).Offset(page.Offset).Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *Repository) Update(ctx context.Context, client *models.Client) error {
	return r.DB(ctx).Save(client).Error
}

// DeleteOwned removes a client of userID. Missing or foreign clients report
// gorm.ErrRecordNotFound.
func (r *Repository) DeleteOwned(ctx context.Context, id, userID uuid.UUID) error {
	res := r.DB(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Client{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
