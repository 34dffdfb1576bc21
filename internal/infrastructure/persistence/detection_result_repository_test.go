package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/detection"
	"github.com/shelfsight/backend/internal/domain/shared"
	"github.com/shelfsight/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDetectionResultTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.DetectionResultModel{})
	require.NoError(t, err)

	return db
}

func newTestResult(t *testing.T, tenantID uuid.UUID, storeID *uuid.UUID) *detection.Result {
	t.Helper()

	skuID := uuid.New()
	agg := detection.Aggregation{
		Matches: []detection.SKUMatch{
			{
				SKUID:       skuID,
				Name:        "Cola 330ml",
				Category:    "beverages",
				IsAvailable: true,
				Facings:     3,
				Confidence:  0.92,
				Box:         detection.BoundingBox{X: 10, Y: 20, Width: 50, Height: 80},
			},
		},
		MissingSKUs: []detection.CandidateSKU{
			{ID: uuid.New(), Name: "Water 500ml", Category: "beverages"},
		},
		ShareOfShelf: detection.ShareOfShelf{
			TotalShelfArea:      10000,
			TrainedProductsArea: 4000,
			Percentage:          40,
			Categories: []detection.CategoryShare{
				{Category: "beverages", Area: 4000, Percentage: 40},
			},
		},
		Summary: "1 of 2 products found",
	}

	result, err := detection.NewResult(tenantID, "shelf-images/aisle4.jpg", storeID, agg)
	require.NoError(t, err)
	return result
}

func TestGormDetectionResultRepository_SaveAndFind(t *testing.T) {
	db := setupDetectionResultTestDB(t)
	repo := NewGormDetectionResultRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("round-trips a result with JSON columns", func(t *testing.T) {
		storeID := uuid.New()
		result := newTestResult(t, tenantID, &storeID)
		require.NoError(t, repo.Save(ctx, result))

		found, err := repo.FindByID(ctx, tenantID, result.ID)
		require.NoError(t, err)
		assert.Equal(t, "shelf-images/aisle4.jpg", found.ImageReference)
		require.NotNil(t, found.StoreID)
		assert.Equal(t, storeID, *found.StoreID)

		require.Len(t, found.Matches, 1)
		assert.Equal(t, "Cola 330ml", found.Matches[0].Name)
		assert.Equal(t, 3, found.Matches[0].Facings)
		assert.InDelta(t, 0.92, found.Matches[0].Confidence, 1e-9)
		assert.InDelta(t, 50.0, found.Matches[0].Box.Width, 1e-9)

		require.Len(t, found.MissingSKUs, 1)
		assert.Equal(t, "Water 500ml", found.MissingSKUs[0].Name)

		assert.InDelta(t, 40.0, found.ShareOfShelf.Percentage, 1e-9)
		require.Len(t, found.ShareOfShelf.Categories, 1)
		assert.Equal(t, "beverages", found.ShareOfShelf.Categories[0].Category)
		assert.Equal(t, "1 of 2 products found", found.Summary)
	})

	t.Run("round-trips a result without store or matches", func(t *testing.T) {
		result, err := detection.NewResult(tenantID, "shelf-images/empty.jpg", nil, detection.Aggregation{
			Summary: "0 of 0 products found",
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, result))

		found, err := repo.FindByID(ctx, tenantID, result.ID)
		require.NoError(t, err)
		assert.Nil(t, found.StoreID)
		assert.Empty(t, found.Matches)
		assert.Empty(t, found.MissingSKUs)
	})

	t.Run("does not expose results across tenants", func(t *testing.T) {
		result := newTestResult(t, tenantID, nil)
		require.NoError(t, repo.Save(ctx, result))

		_, err := repo.FindByID(ctx, uuid.New(), result.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormDetectionResultRepository_FindByTenant(t *testing.T) {
	db := setupDetectionResultTestDB(t)
	repo := NewGormDetectionResultRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(ctx, newTestResult(t, tenantID, nil)))
	}
	require.NoError(t, repo.Save(ctx, newTestResult(t, uuid.New(), nil)))

	t.Run("paginates with total count", func(t *testing.T) {
		page, err := repo.FindByTenant(ctx, tenantID, shared.Filter{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(5), page.Total)
		assert.Len(t, page.Items, 2)
		assert.Equal(t, 3, page.TotalPages)
	})

	t.Run("applies filter defaults", func(t *testing.T) {
		page, err := repo.FindByTenant(ctx, tenantID, shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 20, page.PageSize)
		assert.Len(t, page.Items, 5)
	})
}

func TestGormDetectionResultRepository_FindByStore(t *testing.T) {
	db := setupDetectionResultTestDB(t)
	repo := NewGormDetectionResultRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	storeID := uuid.New()

	require.NoError(t, repo.Save(ctx, newTestResult(t, tenantID, &storeID)))
	require.NoError(t, repo.Save(ctx, newTestResult(t, tenantID, nil)))

	page, err := repo.FindByStore(ctx, tenantID, storeID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].StoreID)
	assert.Equal(t, storeID, *page.Items[0].StoreID)
}
