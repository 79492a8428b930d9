package retailers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/pkg/db"
	"github.com/mahafpc/agrichain-backend/pkg/db/models"
	pkgerrors "github.com/mahafpc/agrichain-backend/pkg/errors"
	"github.com/mahafpc/agrichain-backend/pkg/scope"
)

// CreateInput registers a new retail buyer.
type CreateInput struct {
	Name          string  `json:"name" validate:"required"`
	Code          string  `json:"code" validate:"required"`
	District      string  `json:"district" validate:"required"`
	ContactPhone  *string `json:"contact_phone,omitempty"`
	ContactPerson *string `json:"contact_person,omitempty"`
}

// UpdateInput carries partial edits to a retailer.
type UpdateInput struct {
	Name          *string `json:"name,omitempty"`
	District      *string `json:"district,omitempty"`
	ContactPhone  *string `json:"contact_phone,omitempty"`
	ContactPerson *string `json:"contact_person,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

// Service manages the retailer master. Only the aggregator onboards retailers.
type Service interface {
	Create(ctx context.Context, sc scope.Scope, input CreateInput) (*models.Retailer, error)
	Update(ctx context.Context, sc scope.Scope, id uuid.UUID, input UpdateInput) (*models.Retailer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Retailer, error)
	List(ctx context.Context, activeOnly bool) ([]models.Retailer, error)
}

type service struct {
	repo Repository
}

// NewService wires a retailer service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("retailers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, sc scope.Scope, input CreateInput) (*models.Retailer, error) {
	if err := sc.EnsureAggregator(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	district := strings.TrimSpace(input.District)
	if name == "" || code == "" || district == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, code and district are required")
	}

	retailer := &models.Retailer{
		Name:          name,
		Code:          code,
		District:      district,
		ContactPhone:  input.ContactPhone,
		ContactPerson: input.ContactPerson,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, retailer); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "retailer code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create retailer")
	}
	return retailer, nil
}

func (s *service) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, input UpdateInput) (*models.Retailer, error) {
	if err := sc.EnsureAggregator(); err != nil {
		return nil, err
	}
	retailer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "retailer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load retailer")
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		retailer.Name = strings.TrimSpace(*input.Name)
	}
	if input.District != nil && strings.TrimSpace(*input.District) != "" {
		retailer.District = strings.TrimSpace(*input.District)
	}
	if input.ContactPhone != nil {
		retailer.ContactPhone = input.ContactPhone
	}
	if input.ContactPerson != nil {
		retailer.ContactPerson = input.ContactPerson
	}
	if input.IsActive != nil {
		retailer.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, retailer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update retailer")
	}
	return retailer, nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.Retailer, error) {
	retailer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "retailer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load retailer")
	}
	return retailer, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Retailer, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list retailers")
	}
	return rows, nil
}
