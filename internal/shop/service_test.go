package shop

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/taller-ecom/internal/apperr"
	"github.com/MikeMC777/taller-ecom/internal/store"
)

// recordingGateway counts every call that would reach the store.
type recordingGateway struct {
	calls int
}

type noRow struct{}

func (noRow) Scan(...any) error { return store.ErrNoRows }

func (g *recordingGateway) QueryRow(context.Context, string, ...any) store.Scanner {
	g.calls++
	return noRow{}
}

func (g *recordingGateway) Query(context.Context, string, ...any) (store.Rows, error) {
	g.calls++
	return nil, errors.New("unexpected query")
}

func (g *recordingGateway) Exec(context.Context, string, ...any) (int64, error) {
	g.calls++
	return 0, errors.New("unexpected exec")
}

func (g *recordingGateway) InTx(_ context.Context, fn func(q store.Querier) error) error {
	g.calls++
	return fn(g)
}

func (g *recordingGateway) Ping(context.Context) error { g.calls++; return nil }
func (g *recordingGateway) Dialect() store.Dialect     { return store.SQLite }
func (g *recordingGateway) Close()                     {}

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (plainHasher) Compare(h, p string) bool       { return h == "hashed:"+p }

func TestEmptyPatchNeverReachesStore(t *testing.T) {
	gw := &recordingGateway{}
	svc := NewService(gw, plainHasher{})
	ctx := context.Background()

	cases := map[string]func() error{
		"customer": func() error { _, err := svc.PatchCustomer(ctx, 1, 1, CustomerPatch{}); return err },
		"service":  func() error { _, err := svc.PatchService(ctx, 1, 1, 1, ServicePatch{}); return err },
		"repair":   func() error { _, err := svc.PatchRepair(ctx, 1, 1, 1, 1, RepairPatch{}); return err },
		"item":     func() error { _, err := svc.PatchItem(ctx, 1, 1, 1, 1, ItemPatch{}); return err },
		"product":  func() error { _, err := svc.PatchProduct(ctx, 1, 1, ProductPatch{}); return err },
		"variant":  func() error { _, err := svc.PatchVariant(ctx, 1, 1, 1, VariantPatch{}); return err },
	}
	for name, call := range cases {
		t.Run(name, func(t *testing.T) {
			err := call()
			require.Error(t, err)
			assert.Equal(t, apperr.KindInvalidPatch, apperr.KindOf(err))
		})
	}
	assert.Zero(t, gw.calls)
}

func TestInvalidPayloadNeverReachesStore(t *testing.T) {
	gw := &recordingGateway{}
	svc := NewService(gw, plainHasher{})
	ctx := context.Background()

	_, err := svc.CreateService(ctx, 1, 1, ServiceInput{Kind: "rental"})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	_, err = svc.CreateRepair(ctx, 1, 1, 1, RepairInput{Description: "x", Status: "done"})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	zero := 0
	_, err = svc.PatchItem(ctx, 1, 1, 1, 1, ItemPatch{Quantity: &zero})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	assert.Zero(t, gw.calls)
}

func TestMissingCustomerReportedAsNotFound(t *testing.T) {
	gw := &recordingGateway{}
	svc := NewService(gw, plainHasher{})

	_, err := svc.GetRepair(context.Background(), 7, 8, 9)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "Customer with id 7 was not found", err.Error())
}

func TestMapStoreErr(t *testing.T) {
	svc := NewService(&recordingGateway{}, plainHasher{})
	ctx := context.Background()

	cases := []struct {
		in   error
		want apperr.Kind
	}{
		{store.ErrUniqueViolation, apperr.KindConflict},
		{store.ErrForeignKeyViolation, apperr.KindConflict},
		{store.ErrCheckViolation, apperr.KindInvalid},
		{store.ErrNotNullViolation, apperr.KindInvalid},
		{errors.New("connection reset"), apperr.KindStoreFailure},
		{apperr.Forbidden(), apperr.KindForbidden},
	}
	for _, tc := range cases {
		err := svc.mapStoreErr(ctx, "op", tc.in)
		assert.Equal(t, tc.want, apperr.KindOf(err), tc.in.Error())
	}
	assert.NoError(t, svc.mapStoreErr(ctx, "op", nil))

	err := svc.mapStoreErr(ctx, "create item request", store.ErrUniqueViolation)
	assert.True(t, strings.HasPrefix(err.Error(), "create item request:"))
}

func TestHydrateMissingParentIsIntegrityViolation(t *testing.T) {
	gw := &recordingGateway{}
	ctx := context.Background()

	_, err := hydrateRepair(ctx, gw, Repair{ID: 4, ServiceID: 9})
	require.Error(t, err)
	assert.Equal(t, apperr.KindIntegrityViolation, apperr.KindOf(err))

	_, err = hydrateVariant(ctx, gw, ProductVariant{ID: 2, ProductID: 5})
	assert.Equal(t, apperr.KindIntegrityViolation, apperr.KindOf(err))
}
