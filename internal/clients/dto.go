package clients

import (
	"strings"
	"time"

	"github.com/angelmondragon/quotedesk-backend/pkg/db/models"
	"github.com/google/uuid"
)

// ClientDTO is the API representation of a client.
type ClientDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   *string   `json:"company"`
	Address   *string   `json:"address"`
	Phone     *string   `json:"phone"`
	VATNumber *string   `json:"vat_number"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListDTO wraps a page of clients with the match count.
type ListDTO struct {
	Clients []ClientDTO `json:"clients"`
	Total   int64       `json:"total"`
}

// CreateInput is the create payload.
type CreateInput struct {
	Name      string  `json:"name" validate:"required,max=255"`
	Email     string  `json:"email" validate:"required,email"`
	Company   *string `json:"company,omitempty" validate:"omitempty,max=255"`
	Address   *string `json:"address,omitempty"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	VATNumber *string `json:"vat_number,omitempty" validate:"omitempty,max=50"`
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Company   *string `json:"company,omitempty" validate:"omitempty,max=255"`
	Address   *string `json:"address,omitempty"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	VATNumber *string `json:"vat_number,omitempty" validate:"omitempty,max=50"`
}

func FromModel(c *models.Client) ClientDTO {
	return ClientDTO{
		ID:        c.ID,
		UserID:    c.UserID,
		Name:      c.Name,
		Email:     c.Email,
		Company:   c.Company,
		Address:   c.Address,
		Phone:     c.Phone,
		VATNumber: c.VATNumber,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (in CreateInput) toModel(userID uuid.UUID) *models.Client {
	return &models.Client{
		UserID:    userID,
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Company:   in.Company,
		Address:   in.Address,
		Phone:     in.Phone,
		VATNumber: in.VATNumber,
	}
}

func (in UpdateInput) apply(c *models.Client) {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		c.Email = strings.TrimSpace(*in.Email)
	}
	if in.Company != nil {
		c.Company = in.Company
	}
	if in.Address != nil {
		c.Address = in.Address
	}
	if in.Phone != nil {
		c.Phone = in.Phone
	}
	if in.VATNumber != nil {
		c.VATNumber = in.VATNumber
	}
}
