package procurements

import (
	"context"

	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/pkg/db/models"
)

// Repository manages persistence for procurement events.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, procurement *models.Procurement) error
	Update(ctx context.Context, procurement *models.Procurement) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.Procurement, error)
	List(ctx context.Context, filter ListFilter) ([]models.Procurement, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a procurement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, procurement *models.Procurement) error {
	return r.db.WithContext(ctx).Create(procurement).Error
}

func (r *repository) Update(ctx context.Context, procurement *models.Procurement) error {
	return r.db.WithContext(ctx).Save(procurement).Error
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Procurement{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Procurement, error) {
	var procurement models.Procurement
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&procurement).Error; err != nil {
		return nil, err
	}
	return &procurement, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Procurement, error) {
	q := r.db.WithContext(ctx).Model(&models.Procurement{})
	if filter.CooperativeID != nil {
		q = q.Where("cooperative_id = ?", *filter.CooperativeID)
	}
	if filter.FarmerID != nil {
		q = q.Where("farmer_id = ?", *filter.FarmerID)
	}
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.From != nil {
		q = q.Where("procured_on >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("procured_on <= ?", *filter.To)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows []models.Procurement
	if err := q.Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
