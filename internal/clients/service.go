package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/quotedesk-backend/pkg/db"
	"github.com/angelmondragon/quotedesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/quotedesk-backend/pkg/errors"
	"github.com/angelmondragon/quotedesk-backend/pkg/pagination"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxNameLength  = 255
	maxShortLength = 50
)

type store interface {
	Create(ctx context.Context, client *models.Client) error
	FindOwned(ctx context.Context, id, userID uuid.UUID) (*models.Client, error)
	List(ctx context.Context, userID uuid.UUID, search string, page pagination.Params) ([]models.Client, int64, error)
	Update(ctx context.Context, client *models.Client) error
	DeleteOwned(ctx context.Context, id, userID uuid.UUID) error
}

// Service manages the calling user's clients.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*ClientDTO, error)
	List(ctx context.Context, userID uuid.UUID, search string, page pagination.Params) (*ListDTO, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*ClientDTO, error)
	Update(ctx context.Context, userID, id uuid.UUID, input UpdateInput) (*ClientDTO, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	repo     store
	validate *validator.Validate
}

func NewService(repo store) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("client repository required")
	}
	return &service{repo: repo, validate: validator.New()}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*ClientDTO, error) {
	errs := map[string]string{}
	s.checkName(errs, input.Name)
	s.checkEmail(errs, input.Email)
	checkOptional(errs, input.Phone, input.VATNumber)
	if len(errs) > 0 {
		return nil, invalid(errs)
	}

	client := input.toModel(userID)
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create client")
	}
	dto := FromModel(client)
	return &dto, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, search string, page pagination.Params) (*ListDTO, error) {
	rows, total, err := s.repo.List(ctx, userID, search, page.Normalize())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list clients")
	}
	out := &ListDTO{Clients: make([]ClientDTO, 0, len(rows)), Total: total}
	for i := range rows {
		out.Clients = append(out.Clients, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*ClientDTO, error) {
	client, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(client)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, input UpdateInput) (*ClientDTO, error) {
	errs := map[string]string{}
	if input.Name != nil {
		s.checkName(errs, *input.Name)
	}
	if input.Email != nil {
		s.checkEmail(errs, *input.Email)
	}
	checkOptional(errs, input.Phone, input.VATNumber)
	if len(errs) > 0 {
		return nil, invalid(errs)
	}

	client, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	input.apply(client)
	if err := s.repo.Update(ctx, client); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update client")
	}
	dto := FromModel(client)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.DeleteOwned(ctx, id, userID); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return notFound()
		case db.IsForeignKeyViolation(err):
			return pkgerrors.New(pkgerrors.CodeConflict, "client still has quotes")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete client")
	}
	return nil
}

func (s *service) load(ctx context.Context, userID, id uuid.UUID) (*models.Client, error) {
	client, err := s.repo.FindOwned(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	return client, nil
}

func (s *service) checkName(errs map[string]string, name string) {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n == 0 || n > maxNameLength {
		errs["name"] = fmt.Sprintf("must be between 1 and %d characters", maxNameLength)
	}
}

func (s *service) checkEmail(errs map[string]string, email string) {
	if err := s.validate.Var(strings.TrimSpace(email), "required,email"); err != nil {
		errs["email"] = "must be a valid email address"
	}
}

func checkOptional(errs map[string]string, phone, vat *string) {
	if phone != nil && utf8.RuneCountInString(*phone) > maxShortLength {
		errs["phone"] = fmt.Sprintf("must be at most %d characters", maxShortLength)
	}
	if vat != nil && utf8.RuneCountInString(*vat) > maxShortLength {
		errs["vat_number"] = fmt.Sprintf("must be at most %d characters", maxShortLength)
	}
}

func invalid(details map[string]string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid client payload").WithDetails(details)
}

func notFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
}
