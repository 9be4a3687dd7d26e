package shop

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/taller-ecom/internal/lifecycle"
)

// Kind discriminates what a service request may own.
type Kind string

const (
	KindSale   Kind = "sale"
	KindRepair Kind = "repair"
)

func (k Kind) Valid() bool { return k == KindSale || k == KindRepair }

type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

type ServiceRequest struct {
	ID         int64           `json:"id"`
	CustomerID int64           `json:"customer_id"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	Kind       Kind            `json:"kind"`
	CreatedAt  time.Time       `json:"created_at"`
}

type Repair struct {
	ID           int64            `json:"id"`
	ServiceID    int64            `json:"service_id"`
	Description  string           `json:"description"`
	Status       lifecycle.Status `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	StartDate    *time.Time       `json:"start_date"`
	FinishedDate *time.Time       `json:"finished_date"`
}

type ItemRequest struct {
	ID               int64           `json:"id"`
	ServiceID        int64           `json:"service_id"`
	ProductVariantID int64           `json:"product_variant_id"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	CreatedAt        time.Time       `json:"created_at"`
}

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
}

type ProductVariant struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"product_id"`
	Size          string    `json:"size"`
	Color         string    `json:"color"`
	StockQuantity int       `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
}

// Hydrated views. Relations are one level deep: an attached parent or child is never
// itself hydrated.

type CustomerView struct {
	Customer
	Services []ServiceRequest `json:"services"`
}

type ServiceView struct {
	ServiceRequest
	Customer Customer      `json:"customer"`
	Repairs  []Repair      `json:"repairs"`
	Items    []ItemRequest `json:"items"`
}

type RepairView struct {
	Repair
	Service ServiceRequest `json:"service"`
}

type ItemRequestView struct {
	ItemRequest
	Service ServiceRequest `json:"service"`
}

type ProductView struct {
	Product
	Variants []ProductVariant `json:"variants"`
}

type VariantView struct {
	ProductVariant
	Product Product `json:"product"`
}
