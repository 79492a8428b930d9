package retailers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/pkg/db/models"
)

// Repository manages persistence for retailer records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, retailer *models.Retailer) error
	Update(ctx context.Context, retailer *models.Retailer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Retailer, error)
	List(ctx context.Context, activeOnly bool) ([]models.Retailer, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a retailer repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, retailer *models.Retailer) error {
	return r.db.WithContext(ctx).Create(retailer).Error
}

func (r *repository) Update(ctx context.Context, retailer *models.Retailer) error {
	return r.db.WithContext(ctx).Save(retailer).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Retailer, error) {
	var retailer models.Retailer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&retailer).Error; err != nil {
		return nil, err
	}
	return &retailer, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.Retailer, error) {
	q := r.db.WithContext(ctx).Model(&models.Retailer{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []models.Retailer
	if err := q.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
