package sequence

import (
	"context"

	"gorm.io/gorm"
)

// Repository hands out monotonic identifiers per named series.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Next(ctx context.Context, series string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sequence repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Next bumps the series counter in a single upsert so concurrent callers
// can never observe the same value. Works on both Postgres and sqlite.
func (r *repository) Next(ctx context.Context, series string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO id_sequences (series, value)
		VALUES (?, 1)
		ON CONFLICT (series) DO UPDATE SET value = id_sequences.value + 1
		RETURNING value`, series).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}
