package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/repository"
	infraRepo "github.com/sangkips/feedledger-api/internal/infrastructure/repository"
	"github.com/sangkips/feedledger-api/internal/testutil"
	"github.com/sangkips/feedledger-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_Create(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewProductService(infraRepo.NewProductRepository(db))
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, &CreateProductInput{
		Name:          "Layer feed 50kg",
		SKU:           strPtr("LF-50"),
		Price:         testutil.Dec("2450.555"),
		Quantity:      20,
		QuantityAlert: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "bag", p.Unit)
	testutil.DecEqual(t, "2450.56", p.Price)

	_, err = svc.CreateProduct(ctx, &CreateProductInput{Name: "Dup", SKU: strPtr("LF-50")})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	_, err = svc.CreateProduct(ctx, &CreateProductInput{Name: "Bad", Price: testutil.Dec("-1"), Quantity: -2})
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Len(t, appErr.Errors, 2)
}

func TestProductService_UpdateAndLowStock(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewProductService(infraRepo.NewProductRepository(db))
	ctx := context.Background()

	p := testutil.CreateProduct(t, db, "Starter", "100", 10)
	testutil.CreateProduct(t, db, "Grower", "90", 10)

	low, err := svc.GetLowStockProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, low)

	qty := 2
	updated, err := svc.UpdateProduct(ctx, &UpdateProductInput{ID: p.ID, Quantity: &qty})
	require.NoError(t, err)
	assert.True(t, updated.IsLowStock())

	low, err = svc.GetLowStockProducts(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Starter", low[0].Name)

	res, err := svc.ListProducts(ctx, &repository.ProductFilterParams{LowStock: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Pagination.Total)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.GetProduct(ctx, p.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestProductService_AdjustStock(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewProductService(infraRepo.NewProductRepository(db))
	ctx := context.Background()
	p := testutil.CreateProduct(t, db, "Starter", "100", 10)

	added, err := svc.AddStock(ctx, p.ID, 15)
	require.NoError(t, err)
	assert.Equal(t, 25, added.Quantity)

	removed, err := svc.RemoveStock(ctx, p.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 0, removed.Quantity)

	_, err = svc.RemoveStock(ctx, p.ID, 1)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
	_, err = svc.AddStock(ctx, p.ID, 0)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
	_, err = svc.AddStock(ctx, uuid.New(), 5)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	stored, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Quantity)
}
