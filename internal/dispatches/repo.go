package dispatches

import (
	"context"

	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/pkg/db/models"
)

// Repository manages persistence for dispatch events.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, dispatch *models.Dispatch) error
	Update(ctx context.Context, dispatch *models.Dispatch) error
	FindByID(ctx context.Context, id int64) (*models.Dispatch, error)
	List(ctx context.Context, filter ListFilter) ([]models.Dispatch, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a dispatch repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, dispatch *models.Dispatch) error {
	return r.db.WithContext(ctx).Create(dispatch).Error
}

func (r *repository) Update(ctx context.Context, dispatch *models.Dispatch) error {
	return r.db.WithContext(ctx).Save(dispatch).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Dispatch, error) {
	var dispatch models.Dispatch
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&dispatch).Error; err != nil {
		return nil, err
	}
	return &dispatch, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Dispatch, error) {
	q := r.db.WithContext(ctx).Model(&models.Dispatch{})
	if filter.RetailerID != nil {
		q = q.Where("retailer_id = ?", *filter.RetailerID)
	}
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.From != nil {
		q = q.Where("dispatched_on >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("dispatched_on <= ?", *filter.To)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows []models.Dispatch
	if err := q.Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
