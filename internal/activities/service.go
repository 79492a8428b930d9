package activities

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/pkg/db/models"
	"github.com/mahafpc/agrichain-backend/pkg/enums"
	pkgerrors "github.com/mahafpc/agrichain-backend/pkg/errors"
	"github.com/mahafpc/agrichain-backend/pkg/scope"
)

// RecordInput captures one audit entry.
type RecordInput struct {
	Type          enums.ActivityType
	ActorUserID   uuid.UUID
	CooperativeID *uuid.UUID
	EntityID      *string
	Details       any
}

// Service appends and reads the audit trail.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordInput) error
	List(ctx context.Context, sc scope.Scope, filter ListFilter) ([]models.Activity, error)
}

type service struct {
	repo Repository
}

// NewService wires an activity service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("activities repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordInput) error {
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid activity type %q", input.Type))
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor user id required")
	}

	var details json.RawMessage
	if input.Details != nil {
		raw, err := json.Marshal(input.Details)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal activity details")
		}
		details = raw
	}

	activity := &models.Activity{
		Type:          input.Type,
		ActorUserID:   input.ActorUserID,
		CooperativeID: input.CooperativeID,
		EntityID:      input.EntityID,
		Details:       details,
	}
	if err := s.repo.WithTx(tx).Create(ctx, activity); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record activity")
	}
	return nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, filter ListFilter) ([]models.Activity, error) {
	switch sc.Role {
	case enums.RoleAggregator, enums.RoleAdmin:
	case enums.RoleCooperative:
		if sc.CooperativeID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cooperative scope missing")
		}
		if filter.CooperativeID != nil && *filter.CooperativeID != *sc.CooperativeID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cooperative data not visible to caller")
		}
		filter.CooperativeID = sc.CooperativeID
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "activities not visible to caller")
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activities")
	}
	return rows, nil
}
