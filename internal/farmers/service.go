package farmers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/pkg/db/models"
	pkgerrors "github.com/mahafpc/agrichain-backend/pkg/errors"
	"github.com/mahafpc/agrichain-backend/pkg/scope"
)

// CreateInput registers a farmer under a cooperative.
type CreateInput struct {
	CooperativeID uuid.UUID `json:"cooperative_id" validate:"required"`
	Name          string    `json:"name" validate:"required"`
	Phone         *string   `json:"phone,omitempty"`
	Village       *string   `json:"village,omitempty"`
}

// UpdateInput carries partial edits to a farmer.
type UpdateInput struct {
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Village  *string `json:"village,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Service manages farmer records. Farmers belong to exactly one
// cooperative and only that cooperative (or the aggregator) may manage them.
type Service interface {
	Create(ctx context.Context, sc scope.Scope, input CreateInput) (*models.Farmer, error)
	Update(ctx context.Context, sc scope.Scope, id uuid.UUID, input UpdateInput) (*models.Farmer, error)
	FindByID(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Farmer, error)
	List(ctx context.Context, sc scope.Scope, cooperativeID uuid.UUID) ([]models.Farmer, error)
}

type service struct {
	repo Repository
}

// NewService wires a farmer service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("farmers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, sc scope.Scope, input CreateInput) (*models.Farmer, error) {
	if input.CooperativeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cooperative id required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer name required")
	}
	if err := sc.EnsureCooperativeWrite(input.CooperativeID); err != nil {
		return nil, err
	}

	farmer := &models.Farmer{
		CooperativeID: input.CooperativeID,
		Name:          strings.TrimSpace(input.Name),
		Phone:         input.Phone,
		Village:       input.Village,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, farmer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create farmer")
	}
	return farmer, nil
}

func (s *service) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, input UpdateInput) (*models.Farmer, error) {
	farmer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "farmer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load farmer")
	}
	if err := sc.EnsureCooperativeWrite(farmer.CooperativeID); err != nil {
		return nil, err
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		farmer.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		farmer.Phone = input.Phone
	}
	if input.Village != nil {
		farmer.Village = input.Village
	}
	if input.IsActive != nil {
		farmer.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, farmer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update farmer")
	}
	return farmer, nil
}

func (s *service) FindByID(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Farmer, error) {
	farmer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "farmer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load farmer")
	}
	if err := sc.EnsureCooperativeRead(farmer.CooperativeID); err != nil {
		return nil, err
	}
	return farmer, nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, cooperativeID uuid.UUID) ([]models.Farmer, error) {
	if cooperativeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cooperative id required")
	}
	if err := sc.EnsureCooperativeRead(cooperativeID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByCooperative(ctx, cooperativeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list farmers")
	}
	return rows, nil
}
