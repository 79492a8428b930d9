package dispatches

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/pkg/db/models"
	"github.com/mahafpc/agrichain-backend/pkg/enums"
)

func setupDispatchRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:dispatch_repo_%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.Dispatch{}))
	return gdb
}

func seedDispatch(t *testing.T, repo Repository, id int64, retailerID uuid.UUID, status enums.DispatchStatus, day time.Time) {
	t.Helper()

	err := repo.Create(context.Background(), &models.Dispatch{
		ID:           id,
		RetailerID:   retailerID,
		RetailerName: "Deshmukh Traders",
		ProductID:    uuid.New(),
		ProductName:  "Wheat",
		Quantity:     decimal.NewFromInt(5),
		Rate:         decimal.NewFromInt(20),
		Amount:       decimal.NewFromInt(100),
		Status:       status,
		DispatchedOn: day,
		CreatedBy:    uuid.New(),
	})
	require.NoError(t, err)
}

func TestDispatchRepoListFilters(t *testing.T) {
	repo := NewRepository(setupDispatchRepoDB(t))
	ctx := context.Background()

	retailerA := uuid.New()
	retailerB := uuid.New()
	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	seedDispatch(t, repo, 1, retailerA, enums.DispatchStatusPending, day1)
	seedDispatch(t, repo, 2, retailerA, enums.DispatchStatusCompleted, day2)
	seedDispatch(t, repo, 3, retailerB, enums.DispatchStatusPending, day2)

	byRetailer, err := repo.List(ctx, ListFilter{RetailerID: &retailerA})
	require.NoError(t, err)
	require.Len(t, byRetailer, 2)
	assert.Equal(t, int64(2), byRetailer[0].ID, "newest first")

	completed := enums.DispatchStatusCompleted
	byStatus, err := repo.List(ctx, ListFilter{Status: &completed})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, retailerA, byStatus[0].RetailerID)

	from := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	recent, err := repo.List(ctx, ListFilter{From: &from})
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestDispatchRepoFindMissing(t *testing.T) {
	repo := NewRepository(setupDispatchRepoDB(t))

	_, err := repo.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
