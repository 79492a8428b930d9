package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/pkg/db/models"
	"github.com/mahafpc/agrichain-backend/pkg/enums"
)

// ListFilter narrows payment reads.
type ListFilter struct {
	CooperativeID *uuid.UUID
	Kind          *enums.PaymentKind
	FarmerID      *uuid.UUID
	RetailerID    *uuid.UUID
	From          *time.Time
	To            *time.Time
	Limit         int
}

// Repository manages persistence for payment records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	List(ctx context.Context, filter ListFilter) ([]models.Payment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payment repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Payment, error) {
	q := r.db.WithContext(ctx).Model(&models.Payment{})
	if filter.CooperativeID != nil {
		q = q.Where("cooperative_id = ?", *filter.CooperativeID)
	}
	if filter.Kind != nil {
		q = q.Where("kind = ?", *filter.Kind)
	}
	if filter.FarmerID != nil {
		q = q.Where("farmer_id = ?", *filter.FarmerID)
	}
	if filter.RetailerID != nil {
		q = q.Where("retailer_id = ?", *filter.RetailerID)
	}
	if filter.From != nil {
		q = q.Where("paid_on >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("paid_on <= ?", *filter.To)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows []models.Payment
	if err := q.Order("paid_on DESC, created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
