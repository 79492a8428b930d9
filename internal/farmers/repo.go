package farmers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/pkg/db/models"
)

// Repository manages persistence for farmer records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, farmer *models.Farmer) error
	Update(ctx context.Context, farmer *models.Farmer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Farmer, error)
	ListByCooperative(ctx context.Context, cooperativeID uuid.UUID) ([]models.Farmer, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a farmer repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, farmer *models.Farmer) error {
	return r.db.WithContext(ctx).Create(farmer).Error
}

func (r *repository) Update(ctx context.Context, farmer *models.Farmer) error {
	return r.db.WithContext(ctx).Save(farmer).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Farmer, error) {
	var farmer models.Farmer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&farmer).Error; err != nil {
		return nil, err
	}
	return &farmer, nil
}

func (r *repository) ListByCooperative(ctx context.Context, cooperativeID uuid.UUID) ([]models.Farmer, error) {
	var rows []models.Farmer
	err := r.db.WithContext(ctx).
		Where("cooperative_id = ?", cooperativeID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
