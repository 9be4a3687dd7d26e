package shop

import (
	"strings"

	"github.com/MikeMC777/taller-ecom/internal/lifecycle"
	"github.com/MikeMC777/taller-ecom/internal/patch"
	"github.com/MikeMC777/taller-ecom/internal/store"
)

const (
	customersTable = "customers"
	servicesTable  = "service_requests"
	repairsTable   = "repairs"
	itemsTable     = "item_requests"
	productsTable  = "products"
	variantsTable  = "product_variants"
)

var (
	customerCols = []string{"id", "name", "email", "password", "address", "created_at"}
	serviceCols  = []string{"id", "customer_id", "total_cost", "kind", "created_at"}
	repairCols   = []string{"id", "service_id", "description", "status", "created_at", "start_date", "finished_date"}
	itemCols     = []string{"id", "service_id", "product_variant_id", "quantity", "unit_price", "created_at"}
	productCols  = []string{"id", "name", "description", "price", "stock_quantity", "created_at"}
	variantCols  = []string{"id", "product_id", "size", "color", "stock_quantity", "created_at"}
)

func table(name string, cols []string) patch.Table {
	return patch.Table{Name: name, Returning: cols}
}

func selectFrom(name string, cols []string) string {
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + name
}

func returning(cols []string) string {
	return " RETURNING " + strings.Join(cols, ", ")
}

// insert builds INSERT ... RETURNING from ordered fields.
func insert(name string, f patch.Fields, cols []string) (string, []any) {
	args := make([]any, len(f))
	marks := make([]string, len(f))
	for i, fd := range f {
		args[i] = fd.Value
		marks[i] = "?"
	}
	sql := "INSERT INTO " + name + " (" + strings.Join(f.Columns(), ", ") + ") VALUES (" +
		strings.Join(marks, ", ") + ")" + returning(cols)
	return sql, args
}

func scanCustomer(s store.Scanner) (Customer, error) {
	var c Customer
	err := s.Scan(&c.ID, &c.Name, &c.Email, &c.Password, &c.Address, store.Time(&c.CreatedAt))
	return c, err
}

func scanService(s store.Scanner) (ServiceRequest, error) {
	var sr ServiceRequest
	var kind string
	err := s.Scan(&sr.ID, &sr.CustomerID, &sr.TotalCost, &kind, store.Time(&sr.CreatedAt))
	sr.Kind = Kind(kind)
	return sr, err
}

func scanRepair(s store.Scanner) (Repair, error) {
	var r Repair
	var status string
	err := s.Scan(&r.ID, &r.ServiceID, &r.Description, &status, store.Time(&r.CreatedAt),
		store.NullTime(&r.StartDate), store.NullTime(&r.FinishedDate))
	r.Status = lifecycle.Status(status)
	return r, err
}

func scanItem(s store.Scanner) (ItemRequest, error) {
	var it ItemRequest
	err := s.Scan(&it.ID, &it.ServiceID, &it.ProductVariantID, &it.Quantity, &it.UnitPrice, store.Time(&it.CreatedAt))
	return it, err
}

func scanProduct(s store.Scanner) (Product, error) {
	var p Product
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, store.Time(&p.CreatedAt))
	return p, err
}

func scanVariant(s store.Scanner) (ProductVariant, error) {
	var v ProductVariant
	err := s.Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &v.StockQuantity, store.Time(&v.CreatedAt))
	return v, err
}
