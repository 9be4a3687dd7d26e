// Package shop implements the customer, service request, repair, item request and catalog
// operations. Every operation validates its hierarchy chain before it mutates anything and
// runs its statements on one transaction drawn from the gateway.
package shop

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/MikeMC777/taller-ecom/internal/apperr"
	"github.com/MikeMC777/taller-ecom/internal/hierarchy"
	"github.com/MikeMC777/taller-ecom/internal/logx"
	"github.com/MikeMC777/taller-ecom/internal/patch"
	"github.com/MikeMC777/taller-ecom/internal/store"
)

// Resource labels used in not-found messages.
const (
	labelCustomer = "Customer"
	labelService  = "Service"
	labelRepair   = "Repair"
	labelItem     = "Item request"
	labelProduct  = "Product"
	labelVariant  = "Product variant"
)

// PasswordHasher is the credential collaborator.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

type Service struct {
	gw   store.Gateway
	hash PasswordHasher
	now  func() time.Time
}

type Option func(*Service)

// WithClock overrides the clock used for repair timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(gw store.Gateway, hasher PasswordHasher, opts ...Option) *Service {
	s := &Service{gw: gw, hash: hasher, now: func() time.Time { return time.Now().UTC() }}
	for _, o := range opts {
		o(s)
	}
	return s
}

// read runs fn on a pooled connection.
func (s *Service) read(ctx context.Context, op string, fn func(q store.Querier) error) error {
	return s.mapStoreErr(ctx, op, fn(s.gw))
}

// write runs fn inside one transaction; any error rolls back every statement fn issued.
func (s *Service) write(ctx context.Context, op string, fn func(q store.Querier) error) error {
	return s.mapStoreErr(ctx, op, s.gw.InTx(ctx, fn))
}

func (s *Service) mapStoreErr(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	log := logx.FromContext(ctx)
	switch {
	case errors.Is(err, store.ErrUniqueViolation):
		log.Debug("unique violation", zap.String("op", op), zap.Error(err))
		return apperr.Conflict(op+": resource already exists", err)
	case errors.Is(err, store.ErrForeignKeyViolation):
		log.Debug("foreign key violation", zap.String("op", op), zap.Error(err))
		return apperr.Conflict(op+": referenced resource does not exist", err)
	case errors.Is(err, store.ErrCheckViolation), errors.Is(err, store.ErrNotNullViolation):
		log.Debug("constraint violation", zap.String("op", op), zap.Error(err))
		return apperr.Invalid(op+": value violates a constraint", err)
	}
	log.Error("store failure", zap.String("op", op), zap.Error(err))
	return apperr.StoreFailure(err)
}

func logMutation(ctx context.Context, op string, id, principal int64) {
	logx.FromContext(ctx).Info(op, zap.Int64("id", id), zap.Int64("principal", principal))
}

// updateOne issues a scoped UPDATE ... RETURNING; zero rows means the row is gone or
// not under the given scope.
func updateOne[T any](ctx context.Context, q store.Querier, t patch.Table, scan store.ScanFunc[T],
	fields patch.Fields, id int64, scope patch.Fields, label string) (T, error) {
	var zero T
	stmt, err := patch.Build(t, fields, id, scope)
	if err != nil {
		return zero, err
	}
	row, err := store.One(ctx, q, scan, stmt.SQL, stmt.Args...)
	if err != nil {
		return zero, err
	}
	if row == nil {
		return zero, apperr.NotFound(label, id)
	}
	return *row, nil
}

func insertOne[T any](ctx context.Context, q store.Querier, name string, cols []string,
	scan store.ScanFunc[T], fields patch.Fields) (T, error) {
	sql, args := insert(name, fields, cols)
	row, err := store.One(ctx, q, scan, sql, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	if row == nil {
		var zero T
		return zero, store.ErrNoRows
	}
	return *row, nil
}

// noScope deletes by primary key alone.
var noScope patch.Field

// deleteOne removes id under scope.
func deleteOne(ctx context.Context, q store.Querier, name string, id int64, scope patch.Field, label string) error {
	sql := "DELETE FROM " + name + " WHERE id = ?"
	args := []any{id}
	if scope.Column != "" {
		sql += " AND " + scope.Column + " = ?"
		args = append(args, scope.Value)
	}
	n, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(label, id)
	}
	return nil
}

func getCustomer(ctx context.Context, q store.Querier, id int64) (*Customer, error) {
	return store.One(ctx, q, scanCustomer, selectFrom(customersTable, customerCols)+" WHERE id = ?", id)
}

func getService(ctx context.Context, q store.Querier, customerID, id int64) (*ServiceRequest, error) {
	return store.One(ctx, q, scanService,
		selectFrom(servicesTable, serviceCols)+" WHERE id = ? AND customer_id = ?", id, customerID)
}

func getRepair(ctx context.Context, q store.Querier, serviceID, id int64) (*Repair, error) {
	return store.One(ctx, q, scanRepair,
		selectFrom(repairsTable, repairCols)+" WHERE id = ? AND service_id = ?", id, serviceID)
}

func getItem(ctx context.Context, q store.Querier, serviceID, id int64) (*ItemRequest, error) {
	return store.One(ctx, q, scanItem,
		selectFrom(itemsTable, itemCols)+" WHERE id = ? AND service_id = ?", id, serviceID)
}

func getProduct(ctx context.Context, q store.Querier, id int64) (*Product, error) {
	return store.One(ctx, q, scanProduct, selectFrom(productsTable, productCols)+" WHERE id = ?", id)
}

func getVariant(ctx context.Context, q store.Querier, productID, id int64) (*ProductVariant, error) {
	return store.One(ctx, q, scanVariant,
		selectFrom(variantsTable, variantCols)+" WHERE id = ? AND product_id = ?", id, productID)
}

// variantByID looks a variant up without a product scope.
func variantByID(ctx context.Context, q store.Querier, id int64) (*ProductVariant, error) {
	return store.One(ctx, q, scanVariant, selectFrom(variantsTable, variantCols)+" WHERE id = ?", id)
}

func customerChain(ctx context.Context, q store.Querier, customerID int64) (*Customer, error) {
	c, err := getCustomer(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	if err := hierarchy.ValidateChain(hierarchy.Present(labelCustomer, customerID, c)); err != nil {
		return nil, err
	}
	return c, nil
}

// serviceChain confirms customer → service, root first.
func serviceChain(ctx context.Context, q store.Querier, customerID, serviceID int64) (*ServiceRequest, error) {
	c, err := getCustomer(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	var sr *ServiceRequest
	if c != nil {
		if sr, err = getService(ctx, q, customerID, serviceID); err != nil {
			return nil, err
		}
	}
	err = hierarchy.ValidateChain(
		hierarchy.Present(labelCustomer, customerID, c),
		hierarchy.Present(labelService, serviceID, sr),
	)
	if err != nil {
		return nil, err
	}
	return sr, nil
}

// kindChain is serviceChain plus the discriminant check. It runs before any
// kind-specific child is read.
func kindChain(ctx context.Context, q store.Querier, customerID, serviceID int64, want Kind) (*ServiceRequest, error) {
	sr, err := serviceChain(ctx, q, customerID, serviceID)
	if err != nil {
		return nil, err
	}
	if err := hierarchy.ValidateKind(want, sr.Kind); err != nil {
		return nil, err
	}
	return sr, nil
}

func repairChain(ctx context.Context, q store.Querier, customerID, serviceID, repairID int64) (*ServiceRequest, *Repair, error) {
	sr, err := kindChain(ctx, q, customerID, serviceID, KindRepair)
	if err != nil {
		return nil, nil, err
	}
	r, err := getRepair(ctx, q, serviceID, repairID)
	if err != nil {
		return nil, nil, err
	}
	if err := hierarchy.ValidateChain(hierarchy.Present(labelRepair, repairID, r)); err != nil {
		return nil, nil, err
	}
	return sr, r, nil
}

func itemChain(ctx context.Context, q store.Querier, customerID, serviceID, itemID int64) (*ServiceRequest, *ItemRequest, error) {
	sr, err := kindChain(ctx, q, customerID, serviceID, KindSale)
	if err != nil {
		return nil, nil, err
	}
	it, err := getItem(ctx, q, serviceID, itemID)
	if err != nil {
		return nil, nil, err
	}
	if err := hierarchy.ValidateChain(hierarchy.Present(labelItem, itemID, it)); err != nil {
		return nil, nil, err
	}
	return sr, it, nil
}

func productChain(ctx context.Context, q store.Querier, productID int64) (*Product, error) {
	p, err := getProduct(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	if err := hierarchy.ValidateChain(hierarchy.Present(labelProduct, productID, p)); err != nil {
		return nil, err
	}
	return p, nil
}

func variantChain(ctx context.Context, q store.Querier, productID, variantID int64) (*ProductVariant, error) {
	p, err := getProduct(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	var v *ProductVariant
	if p != nil {
		if v, err = getVariant(ctx, q, productID, variantID); err != nil {
			return nil, err
		}
	}
	err = hierarchy.ValidateChain(
		hierarchy.Present(labelProduct, productID, p),
		hierarchy.Present(labelVariant, variantID, v),
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// checkKindChange refuses to flip the discriminant while children of the current
// family would be left under the wrong kind.
func checkKindChange(ctx context.Context, q store.Querier, sr *ServiceRequest, next Kind) error {
	if next == sr.Kind {
		return nil
	}
	child := itemsTable
	if sr.Kind == KindRepair {
		child = repairsTable
	}
	var n int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM "+child+" WHERE service_id = ?", sr.ID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return apperr.InvalidPatch("kind cannot change while the service still has " + string(sr.Kind) + " records")
	}
	return nil
}
