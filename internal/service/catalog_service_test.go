package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/orhanozan33/epicebuhara-sub000/internal/apperr"
	"github.com/orhanozan33/epicebuhara-sub000/internal/dto"
	"github.com/orhanozan33/epicebuhara-sub000/internal/model"
	"github.com/orhanozan33/epicebuhara-sub000/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── DealerService ─────────────────────────────────────────────────────────────

func newDealerService() (service.DealerService, *stubDealerRepo) {
	repo := newStubDealerRepo()
	return service.NewDealerService(repo, service.NewDealerDirectory(repo, nil, time.Minute)), repo
}

func TestDealerService_CreateAndUpdate(t *testing.T) {
	svc, _ := newDealerService()
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateDealerRequest{CompanyName: "Épicerie Rosemont", DiscountPercent: dec("7.5")})
	require.NoError(t, err)
	assert.True(t, created.Active)
	assert.Equal(t, "7.50", created.DiscountPercent.StringFixed(2))

	inactive := false
	updated, err := svc.Update(ctx, created.ID, dto.UpdateDealerRequest{DiscountPercent: decPtr("12"), Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "12.00", updated.DiscountPercent.StringFixed(2))
	assert.False(t, updated.Active)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDealerService_RejectsOutOfRangePercent(t *testing.T) {
	svc, repo := newDealerService()
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateDealerRequest{CompanyName: "Trop Cher", DiscountPercent: dec("101")})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, repo.dealers)

	created, err := svc.Create(ctx, dto.CreateDealerRequest{CompanyName: "Correct"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, created.ID, dto.UpdateDealerRequest{DiscountPercent: decPtr("-1")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Get(ctx, 404)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDealerDirectory_DefaultDiscountWithoutCache(t *testing.T) {
	repo := newStubDealerRepo(&model.Dealer{ID: 4, CompanyName: "Atlas", DiscountPercent: dec("5"), Active: true})
	dir := service.NewDealerDirectory(repo, nil, time.Minute)

	pct, err := dir.GetDefaultDiscount(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "5", pct.String())

	_, err = dir.GetDefaultDiscount(context.Background(), 5)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	dir.Invalidate(context.Background(), 4)
}

// ── ProductService ────────────────────────────────────────────────────────────

func TestProductService_VariantsAndBoxes(t *testing.T) {
	family := uint(3)
	products := newStubProductRepo(
		&model.Product{ID: 1, Name: "Isot 1kg", Price: dec("18.00"), FamilyID: &family, Active: true},
		&model.Product{ID: 2, Name: "Isot 250g", Price: dec("5.50"), FamilyID: &family, PackSize: intPtr(12), Active: true},
		&model.Product{ID: 3, Name: "Kimyon 100g", Price: dec("3.00"), Active: true},
	)
	svc := service.NewProductService(products, &stubMovementRepo{})
	ctx := context.Background()

	v, err := svc.Variants(ctx, 1)
	require.NoError(t, err)
	require.Len(t, v.Variants, 2)
	assert.Equal(t, uint(2), v.Variants[0].ID)
	assert.Equal(t, uint(1), v.Variants[1].ID)

	lonely, err := svc.Variants(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, lonely.Variants)

	units, err := svc.ToBaseUnits(ctx, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 36, units)

	units, err = svc.ToBaseUnits(ctx, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, units)

	_, err = svc.ToBaseUnits(ctx, 2, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Get(ctx, 404)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestProductService_ListMovementsFilters(t *testing.T) {
	saleID := uint(11)
	movements := &stubMovementRepo{movements: []model.StockMovement{
		{ID: 1, ProductID: 7, Kind: model.MovementSale, Delta: -3, SaleID: &saleID},
		{ID: 2, ProductID: 8, Kind: model.MovementSale, Delta: -1, SaleID: &saleID},
		{ID: 3, ProductID: 7, Kind: model.MovementSaleDeleted, Delta: 3, SaleID: &saleID},
	}}
	svc := service.NewProductService(newStubProductRepo(), movements)

	pid := uint(7)
	resp, err := svc.ListMovements(context.Background(), dto.StockMovementFilter{ProductID: &pid})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)

	resp, err = svc.ListMovements(context.Background(), dto.StockMovementFilter{Kind: model.MovementSaleDeleted})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 3, resp.Data[0].Delta)
}
