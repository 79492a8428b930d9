package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/pkg/db/models"
)

// DecrementResult reports what a clamped decrement actually did.
type DecrementResult struct {
	Found   bool
	Clamped bool
}

// Repository owns the stock_rows table. All quantity changes are single
// SQL statements so concurrent adjustments to the same row cannot lose
// updates. The CAST keeps numeric comparisons honest on sqlite, where
// decimal parameters bind as text.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Increment(ctx context.Context, adj Adjustment) error
	Decrement(ctx context.Context, cooperativeID, productID uuid.UUID, delta decimal.Decimal) (DecrementResult, error)
	Upsert(ctx context.Context, row *models.StockRow) error
	Get(ctx context.Context, cooperativeID, productID uuid.UUID) (*models.StockRow, error)
	List(ctx context.Context, filter ListFilter) ([]models.StockRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stock repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Increment(ctx context.Context, adj Adjustment) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO stock_rows (cooperative_id, product_id, product_name, unit, quantity, min_stock, max_stock, updated_at)
		VALUES (?, ?, ?, ?, CAST(? AS NUMERIC), CAST(? AS NUMERIC), CAST(? AS NUMERIC), CURRENT_TIMESTAMP)
		ON CONFLICT (cooperative_id, product_id)
		DO UPDATE SET quantity = stock_rows.quantity + excluded.quantity, updated_at = CURRENT_TIMESTAMP`,
		adj.CooperativeID, adj.ProductID, adj.ProductName, adj.Unit,
		adj.Delta, adj.MinStock, adj.MaxStock,
	).Error
}

func (r *repository) Decrement(ctx context.Context, cooperativeID, productID uuid.UUID, delta decimal.Decimal) (DecrementResult, error) {
	// Exact decrement first. When stock covers the delta this is the only
	// statement that runs.
	res := r.db.WithContext(ctx).Exec(`
		UPDATE stock_rows
		SET quantity = quantity - CAST(? AS NUMERIC), updated_at = CURRENT_TIMESTAMP
		WHERE cooperative_id = ? AND product_id = ? AND quantity >= CAST(? AS NUMERIC)`,
		delta, cooperativeID, productID, delta,
	)
	if res.Error != nil {
		return DecrementResult{}, res.Error
	}
	if res.RowsAffected > 0 {
		return DecrementResult{Found: true}, nil
	}

	// Either the row is missing or the delta exceeds the balance. The CASE
	// clamps at zero instead of going negative.
	res = r.db.WithContext(ctx).Exec(`
		UPDATE stock_rows
		SET quantity = CASE WHEN quantity > CAST(? AS NUMERIC) THEN quantity - CAST(? AS NUMERIC) ELSE 0 END,
		    updated_at = CURRENT_TIMESTAMP
		WHERE cooperative_id = ? AND product_id = ?`,
		delta, delta, cooperativeID, productID,
	)
	if res.Error != nil {
		return DecrementResult{}, res.Error
	}
	if res.RowsAffected == 0 {
		return DecrementResult{}, nil
	}
	return DecrementResult{Found: true, Clamped: true}, nil
}

func (r *repository) Upsert(ctx context.Context, row *models.StockRow) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO stock_rows (cooperative_id, product_id, product_name, unit, quantity, min_stock, max_stock, updated_at)
		VALUES (?, ?, ?, ?, CAST(? AS NUMERIC), CAST(? AS NUMERIC), CAST(? AS NUMERIC), CURRENT_TIMESTAMP)
		ON CONFLICT (cooperative_id, product_id)
		DO UPDATE SET quantity = excluded.quantity,
		              min_stock = excluded.min_stock,
		              max_stock = excluded.max_stock,
		              updated_at = CURRENT_TIMESTAMP`,
		row.CooperativeID, row.ProductID, row.ProductName, row.Unit,
		row.Quantity, row.MinStock, row.MaxStock,
	).Error
}

func (r *repository) Get(ctx context.Context, cooperativeID, productID uuid.UUID) (*models.StockRow, error) {
	var row models.StockRow
	err := r.db.WithContext(ctx).
		Where("cooperative_id = ? AND product_id = ?", cooperativeID, productID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.StockRow, error) {
	q := r.db.WithContext(ctx).Model(&models.StockRow{})
	if filter.CooperativeID != nil {
		q = q.Where("cooperative_id = ?", *filter.CooperativeID)
	}
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	var rows []models.StockRow
	if err := q.Order("product_name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
