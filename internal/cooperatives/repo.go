package cooperatives

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/pkg/db/models"
)

// Repository manages persistence for cooperative records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, cooperative *models.Cooperative) error
	Update(ctx context.Context, cooperative *models.Cooperative) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cooperative, error)
	List(ctx context.Context, activeOnly bool) ([]models.Cooperative, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a cooperative repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, cooperative *models.Cooperative) error {
	return r.db.WithContext(ctx).Create(cooperative).Error
}

func (r *repository) Update(ctx context.Context, cooperative *models.Cooperative) error {
	return r.db.WithContext(ctx).Save(cooperative).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cooperative, error) {
	var cooperative models.Cooperative
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&cooperative).Error; err != nil {
		return nil, err
	}
	return &cooperative, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.Cooperative, error) {
	q := r.db.WithContext(ctx).Model(&models.Cooperative{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []models.Cooperative
	if err := q.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
