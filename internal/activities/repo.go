package activities

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/pkg/db/models"
)

// ListFilter narrows activity reads.
type ListFilter struct {
	CooperativeID *uuid.UUID
	Type          *string
	Limit         int
}

// Repository manages persistence for audit activities.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, activity *models.Activity) error
	List(ctx context.Context, filter ListFilter) ([]models.Activity, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an activity repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Activity, error) {
	q := r.db.WithContext(ctx).Model(&models.Activity{})
	if filter.CooperativeID != nil {
		q = q.Where("cooperative_id = ?", *filter.CooperativeID)
	}
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []models.Activity
	if err := q.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
