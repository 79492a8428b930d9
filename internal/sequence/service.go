package sequence

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Series names used across the lifecycles.
const (
	SeriesProcurement = "procurement"
	SeriesSale        = "sale"
	SeriesDispatch    = "dispatch"
)

// Service issues record identifiers per series.
type Service interface {
	NextID(ctx context.Context, series string) (int64, error)
	NextIDTx(ctx context.Context, tx *gorm.DB, series string) (int64, error)
}

type service struct {
	repo Repository
}

// NewService wires a sequence service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sequence repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) NextID(ctx context.Context, series string) (int64, error) {
	if strings.TrimSpace(series) == "" {
		return 0, fmt.Errorf("series is required")
	}
	return s.repo.Next(ctx, series)
}

// NextIDTx issues an identifier inside an existing transaction so the
// counter bump commits or rolls back together with the event record.
func (s *service) NextIDTx(ctx context.Context, tx *gorm.DB, series string) (int64, error) {
	if strings.TrimSpace(series) == "" {
		return 0, fmt.Errorf("series is required")
	}
	return s.repo.WithTx(tx).Next(ctx, series)
}
