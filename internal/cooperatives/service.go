package cooperatives

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

// CreateInput registers a new member cooperative.
type CreateInput struct {
	Name          string  `json:"name" validate:"required"`
	Code          string  `json:"code" validate:"required"`
	District      string  `json:"district" validate:"required"`
	ContactPhone  *string `json:"contact_phone,omitempty"`
	ContactPerson *string `json:"contact_person,omitempty"`
}

// UpdateInput carries partial edits to a cooperative.
type UpdateInput struct {
	Name          *string `json:"name,omitempty"`
	District      *string `json:"district,omitempty"`
	ContactPhone  *string `json:"contact_phone,omitempty"`
	ContactPerson *string `json:"contact_person,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

// Service manages the cooperative master. Only the aggregator onboards members.
type Service interface {
	Create(ctx context.Context, sc scope.Scope, input CreateInput) (*models.Cooperative, error)
	Update(ctx context.Context, sc scope.Scope, id uuid.UUID, input UpdateInput) (*models.Cooperative, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cooperative, error)
	List(ctx context.Context, activeOnly bool) ([]models.Cooperative, error)
}

type service struct {
	repo Repository
}

// NewService wires a cooperative service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cooperatives repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, sc scope.Scope, input CreateInput) (*models.Cooperative, error) {
	if err := sc.EnsureAggregator(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	district := strings.TrimSpace(input.District)
	if name == "" || code == "" || district == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, code and district are required")
	}

	cooperative := &models.Cooperative{
		Name:          name,
		Code:          code,
		District:      district,
		ContactPhone:  input.ContactPhone,
		ContactPerson: input.ContactPerson,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, cooperative); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "cooperative code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cooperative")
	}
	return cooperative, nil
}

func (s *service) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, input UpdateInput) (*models.Cooperative, error) {
	if err := sc.EnsureAggregator(); err != nil {
		return nil, err
	}
	cooperative, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cooperative not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cooperative")
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		cooperative.Name = strings.TrimSpace(*input.Name)
	}
	if input.District != nil && strings.TrimSpace(*input.District) != "" {
		cooperative.District = strings.TrimSpace(*input.District)
	}
	if input.ContactPhone != nil {
		cooperative.ContactPhone = input.ContactPhone
	}
	if input.ContactPerson != nil {
		cooperative.ContactPerson = input.ContactPerson
	}
	if input.IsActive != nil {
		cooperative.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, cooperative); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cooperative")
	}
	return cooperative, nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.Cooperative, error) {
	cooperative, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cooperative not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cooperative")
	}
	return cooperative, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Cooperative, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cooperatives")
	}
	return rows, nil
}
