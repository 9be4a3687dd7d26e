package shop

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/taller-ecom/internal/apperr"
	"github.com/MikeMC777/taller-ecom/internal/lifecycle"
	"github.com/MikeMC777/taller-ecom/internal/store"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()
	gw, err := store.OpenSQLite(filepath.Join(t.TempDir(), "shop.db"), nil)
	require.NoError(t, err)
	t.Cleanup(gw.Close)
	require.NoError(t, store.Migrate(context.Background(), gw))
	return NewService(gw, plainHasher{}, WithClock(func() time.Time { return fixedNow }))
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func ptr[T any](v T) *T { return &v }

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func mustCustomer(t *testing.T, svc *Service, email string) CustomerView {
	t.Helper()
	c, err := svc.CreateCustomer(context.Background(), CustomerInput{
		Name: "Ana", Email: email, Password: "pw", Address: "Calle 1",
	})
	require.NoError(t, err)
	return c
}

func mustService(t *testing.T, svc *Service, customerID int64, kind Kind) ServiceView {
	t.Helper()
	sr, err := svc.CreateService(context.Background(), customerID, customerID, ServiceInput{Kind: kind})
	require.NoError(t, err)
	return sr
}

func mustVariant(t *testing.T, svc *Service) (ProductView, VariantView) {
	t.Helper()
	ctx := context.Background()
	p, err := svc.CreateProduct(ctx, 1, ProductInput{Name: "Keyboard", Description: "60%", Price: dec("99.90"), StockQuantity: 3})
	require.NoError(t, err)
	v, err := svc.CreateVariant(ctx, p.ID, 1, VariantInput{Size: "M", Color: "black", StockQuantity: 1})
	require.NoError(t, err)
	return p, v
}

func TestRepairLifecycleScenario(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c := mustCustomer(t, svc, "ana@example.com")
	sr := mustService(t, svc, c.ID, KindRepair)
	assert.True(t, sr.TotalCost.IsZero())
	assert.Equal(t, c.ID, sr.Customer.ID)

	r, err := svc.CreateRepair(ctx, c.ID, sr.ID, c.ID, RepairInput{Description: "screen", Status: lifecycle.Pending})
	require.NoError(t, err)
	assert.Nil(t, r.StartDate)
	assert.Nil(t, r.FinishedDate)
	assert.Equal(t, sr.ID, r.Service.ID)

	r, err = svc.PatchRepair(ctx, c.ID, sr.ID, r.ID, c.ID, RepairPatch{Status: ptr(lifecycle.InProgress)})
	require.NoError(t, err)
	require.NotNil(t, r.StartDate)
	assert.True(t, fixedNow.Equal(*r.StartDate))
	assert.Nil(t, r.FinishedDate)

	r, err = svc.PatchRepair(ctx, c.ID, sr.ID, r.ID, c.ID, RepairPatch{Status: ptr(lifecycle.Completed)})
	require.NoError(t, err)
	assert.NotNil(t, r.StartDate)
	assert.NotNil(t, r.FinishedDate)

	r, err = svc.PatchRepair(ctx, c.ID, sr.ID, r.ID, c.ID, RepairPatch{Status: ptr(lifecycle.Pending)})
	require.NoError(t, err)
	assert.Nil(t, r.StartDate)
	assert.Nil(t, r.FinishedDate)

	// description-only patch carries no timestamp effect
	r, err = svc.PatchRepair(ctx, c.ID, sr.ID, r.ID, c.ID, RepairPatch{Description: ptr("new screen")})
	require.NoError(t, err)
	assert.Equal(t, "new screen", r.Description)
	assert.Equal(t, lifecycle.Pending, r.Status)

	got, err := svc.GetService(ctx, c.ID, sr.ID)
	require.NoError(t, err)
	require.Len(t, got.Repairs, 1)
	assert.Empty(t, got.Items)
}

func TestCreateRepairCompletedSetsFinish(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	c := mustCustomer(t, svc, "ana@example.com")
	sr := mustService(t, svc, c.ID, KindRepair)

	r, err := svc.CreateRepair(ctx, c.ID, sr.ID, c.ID, RepairInput{Description: "battery", Status: lifecycle.Completed})
	require.NoError(t, err)
	assert.Nil(t, r.StartDate)
	require.NotNil(t, r.FinishedDate)

	r, err = svc.ReplaceRepair(ctx, c.ID, sr.ID, r.ID, c.ID, RepairInput{Description: "battery", Status: lifecycle.InProgress})
	require.NoError(t, err)
	assert.Nil(t, r.FinishedDate)
	assert.Nil(t, r.StartDate)
}

func TestKindMismatch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	c := mustCustomer(t, svc, "ana@example.com")
	repairSvc := mustService(t, svc, c.ID, KindRepair)
	saleSvc := mustService(t, svc, c.ID, KindSale)

	r, err := svc.CreateRepair(ctx, c.ID, repairSvc.ID, c.ID, RepairInput{Description: "x", Status: lifecycle.Pending})
	require.NoError(t, err)

	_, err = svc.GetRepair(ctx, c.ID, saleSvc.ID, r.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindTypeMismatch, apperr.KindOf(err))
	assert.Equal(t, "expected service type: repair, type received: sale", err.Error())

	_, err = svc.ListItems(ctx, c.ID, repairSvc.ID)
	assert.Equal(t, apperr.KindTypeMismatch, apperr.KindOf(err))

	mustVariant(t, svc)
	_, err = svc.CreateItem(ctx, c.ID, repairSvc.ID, c.ID, ItemInput{ProductVariantID: 1, Quantity: 1, UnitPrice: dec("1")})
	assert.Equal(t, apperr.KindTypeMismatch, apperr.KindOf(err))
}

func TestExistenceBeforeOwnership(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner := mustCustomer(t, svc, "owner@example.com")
	other := mustCustomer(t, svc, "other@example.com")
	sr := mustService(t, svc, owner.ID, KindRepair)

	_, err := svc.CreateRepair(ctx, owner.ID, sr.ID+100, other.ID, RepairInput{Description: "x", Status: lifecycle.Pending})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	err = svc.DeleteRepair(ctx, owner.ID, sr.ID, 999, other.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.CreateRepair(ctx, owner.ID, sr.ID, other.ID, RepairInput{Description: "x", Status: lifecycle.Pending})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// reads never check ownership
	_, err = svc.GetService(ctx, owner.ID, sr.ID)
	assert.NoError(t, err)

	// a service scoped under the wrong customer is not found
	_, err = svc.GetService(ctx, other.ID, sr.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "Service with id "+itoa(sr.ID)+" was not found", err.Error())
}

func TestShallowestMissingAncestor(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.ListRepairs(context.Background(), 41, 42)
	require.Error(t, err)
	assert.Equal(t, "Customer with id 41 was not found", err.Error())
}

func TestItemUniquenessAndImmutability(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	c := mustCustomer(t, svc, "ana@example.com")
	sr := mustService(t, svc, c.ID, KindSale)
	p, v := mustVariant(t, svc)
	other, err := svc.CreateVariant(ctx, p.ID, 1, VariantInput{Size: "L", Color: "white"})
	require.NoError(t, err)

	it, err := svc.CreateItem(ctx, c.ID, sr.ID, c.ID, ItemInput{ProductVariantID: v.ID, Quantity: 2, UnitPrice: dec("19.90")})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("19.9").Equal(it.UnitPrice))

	_, err = svc.CreateItem(ctx, c.ID, sr.ID, c.ID, ItemInput{ProductVariantID: v.ID, Quantity: 1, UnitPrice: dec("1")})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = svc.CreateItem(ctx, c.ID, sr.ID, c.ID, ItemInput{ProductVariantID: 9999, Quantity: 1, UnitPrice: dec("1")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.PatchItem(ctx, c.ID, sr.ID, it.ID, c.ID, ItemPatch{ProductVariantID: ptr(other.ID)})
	assert.Equal(t, apperr.KindInvalidPatch, apperr.KindOf(err))

	_, err = svc.ReplaceItem(ctx, c.ID, sr.ID, it.ID, c.ID, ItemInput{ProductVariantID: other.ID, Quantity: 1, UnitPrice: dec("1")})
	assert.Equal(t, apperr.KindInvalidPatch, apperr.KindOf(err))

	got, err := svc.PatchItem(ctx, c.ID, sr.ID, it.ID, c.ID, ItemPatch{ProductVariantID: ptr(v.ID), Quantity: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
	assert.Equal(t, v.ID, got.ProductVariantID)

	got, err = svc.PatchItem(ctx, c.ID, sr.ID, it.ID, c.ID, ItemPatch{ProductVariantID: ptr(v.ID)})
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
}

func TestDeleteProductCascadesToItems(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	c := mustCustomer(t, svc, "ana@example.com")
	sr := mustService(t, svc, c.ID, KindSale)
	p, v := mustVariant(t, svc)

	it, err := svc.CreateItem(ctx, c.ID, sr.ID, c.ID, ItemInput{ProductVariantID: v.ID, Quantity: 1, UnitPrice: dec("5")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID, 1))

	_, err = svc.GetVariant(ctx, p.ID, v.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = svc.GetItem(ctx, c.ID, sr.ID, it.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "Item request with id "+itoa(it.ID)+" was not found", err.Error())
}

func TestKindChangeWithChildren(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	c := mustCustomer(t, svc, "ana@example.com")
	sr := mustService(t, svc, c.ID, KindRepair)

	got, err := svc.PatchService(ctx, c.ID, sr.ID, c.ID, ServicePatch{Kind: ptr(KindSale)})
	require.NoError(t, err)
	assert.Equal(t, KindSale, got.Kind)

	got, err = svc.ReplaceService(ctx, c.ID, sr.ID, c.ID, ServiceInput{Kind: KindRepair, TotalCost: dec("10")})
	require.NoError(t, err)
	assert.Equal(t, KindRepair, got.Kind)

	_, err = svc.CreateRepair(ctx, c.ID, sr.ID, c.ID, RepairInput{Description: "x", Status: lifecycle.Pending})
	require.NoError(t, err)

	_, err = svc.PatchService(ctx, c.ID, sr.ID, c.ID, ServicePatch{Kind: ptr(KindSale)})
	assert.Equal(t, apperr.KindInvalidPatch, apperr.KindOf(err))
}

func TestCustomerLifecycleAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	c := mustCustomer(t, svc, "ana@example.com")

	_, err := svc.CreateCustomer(ctx, CustomerInput{Name: "B", Email: "ana@example.com", Password: "x", Address: "y"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	got, err := svc.Login(ctx, "ana@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = svc.Login(ctx, "ana@example.com", "nope")
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

	upd, err := svc.PatchCustomer(ctx, c.ID, c.ID, CustomerPatch{Address: ptr("X"), Name: ptr("Y")})
	require.NoError(t, err)
	assert.Equal(t, "X", upd.Address)
	assert.Equal(t, "Y", upd.Name)

	_, err = svc.PatchCustomer(ctx, c.ID, c.ID+1, CustomerPatch{Name: ptr("Z")})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	mustService(t, svc, c.ID, KindSale)
	list, err := svc.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Services, 1)

	ok, err := svc.CustomerExists(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.DeleteCustomer(ctx, c.ID, c.ID))
	ok, err = svc.CustomerExists(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCatalogConstraints(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	p, v := mustVariant(t, svc)

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Variants, 1)
	assert.Equal(t, v.ID, got.Variants[0].ID)

	_, err = svc.PatchProduct(ctx, p.ID, 1, ProductPatch{Price: dec("-1")})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	vv, err := svc.PatchVariant(ctx, p.ID, v.ID, 1, VariantPatch{StockQuantity: ptr(9)})
	require.NoError(t, err)
	assert.Equal(t, 9, vv.StockQuantity)
	assert.Equal(t, p.ID, vv.Product.ID)

	_, err = svc.GetVariant(ctx, p.ID+1, v.ID)
	assert.Equal(t, "Product with id "+itoa(p.ID+1)+" was not found", err.Error())
}
