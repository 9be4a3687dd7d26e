package shop

import (
	"context"

	"github.com/MikeMC777/taller-ecom/internal/apperr"
	"github.com/MikeMC777/taller-ecom/internal/store"
)

// Hydration attaches one level of relations. It always runs on the querier of the
// operation that fetched the row, so a write and its response see the same transaction.

// children reads the rows of table whose fk equals parentID, in insertion order.
func children[T any](ctx context.Context, q store.Querier, scan store.ScanFunc[T],
	table string, cols []string, fk string, parentID int64) ([]T, error) {
	return store.Many(ctx, q, scan, selectFrom(table, cols)+" WHERE "+fk+" = ? ORDER BY id", parentID)
}

// parent reads the row a back-reference points at. A missing parent is reported as an
// integrity violation of the child, never as a nil relation.
func parent[T any](ctx context.Context, q store.Querier, scan store.ScanFunc[T],
	table string, cols []string, parentID int64, child string, childID int64, relation string) (T, error) {
	row, err := store.One(ctx, q, scan, selectFrom(table, cols)+" WHERE id = ?", parentID)
	if err != nil {
		var zero T
		return zero, err
	}
	if row == nil {
		var zero T
		return zero, apperr.IntegrityViolation(child, childID, relation)
	}
	return *row, nil
}

func hydrateAll[T, V any](ctx context.Context, q store.Querier, rows []T,
	fn func(context.Context, store.Querier, T) (V, error)) ([]V, error) {
	out := make([]V, 0, len(rows))
	for _, r := range rows {
		v, err := fn(ctx, q, r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func hydrateCustomer(ctx context.Context, q store.Querier, c Customer) (CustomerView, error) {
	services, err := children(ctx, q, scanService, servicesTable, serviceCols, "customer_id", c.ID)
	if err != nil {
		return CustomerView{}, err
	}
	return CustomerView{Customer: c, Services: services}, nil
}

func hydrateService(ctx context.Context, q store.Querier, sr ServiceRequest) (ServiceView, error) {
	v := ServiceView{ServiceRequest: sr}
	var err error
	if v.Customer, err = parent(ctx, q, scanCustomer, customersTable, customerCols,
		sr.CustomerID, labelService, sr.ID, "customer"); err != nil {
		return ServiceView{}, err
	}
	if v.Repairs, err = children(ctx, q, scanRepair, repairsTable, repairCols, "service_id", sr.ID); err != nil {
		return ServiceView{}, err
	}
	if v.Items, err = children(ctx, q, scanItem, itemsTable, itemCols, "service_id", sr.ID); err != nil {
		return ServiceView{}, err
	}
	return v, nil
}

func hydrateRepair(ctx context.Context, q store.Querier, r Repair) (RepairView, error) {
	sr, err := parent(ctx, q, scanService, servicesTable, serviceCols, r.ServiceID, labelRepair, r.ID, "service")
	if err != nil {
		return RepairView{}, err
	}
	return RepairView{Repair: r, Service: sr}, nil
}

func hydrateItem(ctx context.Context, q store.Querier, it ItemRequest) (ItemRequestView, error) {
	sr, err := parent(ctx, q, scanService, servicesTable, serviceCols, it.ServiceID, labelItem, it.ID, "service")
	if err != nil {
		return ItemRequestView{}, err
	}
	return ItemRequestView{ItemRequest: it, Service: sr}, nil
}

func hydrateProduct(ctx context.Context, q store.Querier, p Product) (ProductView, error) {
	variants, err := children(ctx, q, scanVariant, variantsTable, variantCols, "product_id", p.ID)
	if err != nil {
		return ProductView{}, err
	}
	return ProductView{Product: p, Variants: variants}, nil
}

func hydrateVariant(ctx context.Context, q store.Querier, v ProductVariant) (VariantView, error) {
	p, err := parent(ctx, q, scanProduct, productsTable, productCols, v.ProductID, labelVariant, v.ID, "product")
	if err != nil {
		return VariantView{}, err
	}
	return VariantView{ProductVariant: v, Product: p}, nil
}
