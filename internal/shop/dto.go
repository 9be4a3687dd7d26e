package shop

import (
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/taller-ecom/internal/apperr"
	"github.com/MikeMC777/taller-ecom/internal/lifecycle"
	"github.com/MikeMC777/taller-ecom/internal/patch"
)

// Full-replace payloads carry every mutable field; patch payloads use pointers so an
// omitted field is distinguishable from a zero value.

// CustomerInput payload for registration and full replace.
// swagger:model CustomerInput
type CustomerInput struct {
	Name     string `json:"name"     binding:"required" example:"Ana Pérez"`
	Email    string `json:"email"    binding:"required,email" example:"ana@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret"`
	Address  string `json:"address"  binding:"required" example:"Calle 10 #4-21"`
}

// CustomerPatch payload of partial update.
// swagger:model CustomerPatch
type CustomerPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"    binding:"omitempty,email"`
	Password *string `json:"password"`
	Address  *string `json:"address"`
}

// ServiceInput payload for creating or replacing a service request.
// swagger:model ServiceInput
type ServiceInput struct {
	TotalCost *decimal.Decimal `json:"total_cost" swaggertype:"string" example:"0"`
	Kind      Kind             `json:"kind"       binding:"required" example:"repair"`
}

// ServicePatch payload of partial update.
// swagger:model ServicePatch
type ServicePatch struct {
	TotalCost *decimal.Decimal `json:"total_cost" swaggertype:"string"`
	Kind      *Kind            `json:"kind"`
}

// RepairInput payload for creating or replacing a repair.
// swagger:model RepairInput
type RepairInput struct {
	Description string           `json:"description" binding:"required" example:"Broken screen"`
	Status      lifecycle.Status `json:"status"      binding:"required" example:"pending"`
}

// RepairPatch payload of partial update.
// swagger:model RepairPatch
type RepairPatch struct {
	Description *string           `json:"description"`
	Status      *lifecycle.Status `json:"status"`
}

// ItemInput payload for creating or replacing an item request.
// swagger:model ItemInput
type ItemInput struct {
	ProductVariantID int64            `json:"product_variant_id" binding:"required" example:"3"`
	Quantity         int              `json:"quantity"           binding:"required" example:"2"`
	UnitPrice        *decimal.Decimal `json:"unit_price"         binding:"required" swaggertype:"string" example:"19.90"`
}

// ItemPatch payload of partial update.
// swagger:model ItemPatch
type ItemPatch struct {
	ProductVariantID *int64           `json:"product_variant_id"`
	Quantity         *int             `json:"quantity"`
	UnitPrice        *decimal.Decimal `json:"unit_price" swaggertype:"string"`
}

// ProductInput payload for creating or replacing a product.
// swagger:model ProductInput
type ProductInput struct {
	Name          string           `json:"name"           binding:"required" example:"Mechanical Keyboard"`
	Description   string           `json:"description"    binding:"required" example:"RGB 60%"`
	Price         *decimal.Decimal `json:"price"          binding:"required" swaggertype:"string" example:"199.90"`
	StockQuantity int              `json:"stock_quantity" example:"10"`
}

// ProductPatch payload of partial update.
// swagger:model ProductPatch
type ProductPatch struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price" swaggertype:"string"`
	StockQuantity *int             `json:"stock_quantity"`
}

// VariantInput payload for creating or replacing a product variant.
// swagger:model VariantInput
type VariantInput struct {
	Size          string `json:"size"           binding:"required" example:"M"`
	Color         string `json:"color"          binding:"required" example:"black"`
	StockQuantity int    `json:"stock_quantity" example:"4"`
}

// VariantPatch payload of partial update.
// swagger:model VariantPatch
type VariantPatch struct {
	Size          *string `json:"size"`
	Color         *string `json:"color"`
	StockQuantity *int    `json:"stock_quantity"`
}

// LoginRequest payload for POST /login.
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

func invalid(msg string) error { return apperr.Invalid(msg, nil) }

func required(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return invalid(name + " is required")
	}
	return nil
}

func checkEmail(v string) error {
	if _, err := mail.ParseAddress(v); err != nil {
		return invalid("email is not a valid address")
	}
	return nil
}

func nonNegative(name string, d decimal.Decimal) error {
	if d.IsNegative() {
		return invalid(name + " must be greater than or equal to 0")
	}
	return nil
}

func nonNegativeInt(name string, n int) error {
	if n < 0 {
		return invalid(name + " must be greater than or equal to 0")
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (in CustomerInput) validate() error {
	return firstErr(
		required("name", in.Name),
		required("email", in.Email),
		checkEmail(in.Email),
		required("password", in.Password),
		required("address", in.Address),
	)
}

// fields returns the columns in payload order. passwordHash replaces the plain password.
func (in CustomerInput) fields(passwordHash string) patch.Fields {
	return patch.Fields{
		{Column: "name", Value: in.Name},
		{Column: "email", Value: in.Email},
		{Column: "password", Value: passwordHash},
		{Column: "address", Value: in.Address},
	}
}

func (p CustomerPatch) empty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil && p.Address == nil
}

func (p CustomerPatch) validate() error {
	var errs []error
	if p.Name != nil {
		errs = append(errs, required("name", *p.Name))
	}
	if p.Email != nil {
		errs = append(errs, checkEmail(*p.Email))
	}
	if p.Password != nil {
		errs = append(errs, required("password", *p.Password))
	}
	if p.Address != nil {
		errs = append(errs, required("address", *p.Address))
	}
	return firstErr(errs...)
}

func (p CustomerPatch) fields(passwordHash string) patch.Fields {
	var f patch.Fields
	if p.Name != nil {
		f.Set("name", *p.Name)
	}
	if p.Email != nil {
		f.Set("email", *p.Email)
	}
	if p.Password != nil {
		f.Set("password", passwordHash)
	}
	if p.Address != nil {
		f.Set("address", *p.Address)
	}
	return f
}

func (in ServiceInput) validate() error {
	if !in.Kind.Valid() {
		return invalid("kind must be one of: sale, repair")
	}
	if in.TotalCost != nil {
		return nonNegative("total_cost", *in.TotalCost)
	}
	return nil
}

func (in ServiceInput) totalCost() decimal.Decimal {
	if in.TotalCost == nil {
		return decimal.Zero
	}
	return *in.TotalCost
}

func (in ServiceInput) fields() patch.Fields {
	return patch.Fields{
		{Column: "total_cost", Value: in.totalCost()},
		{Column: "kind", Value: string(in.Kind)},
	}
}

func (p ServicePatch) empty() bool { return p.TotalCost == nil && p.Kind == nil }

func (p ServicePatch) validate() error {
	if p.Kind != nil && !p.Kind.Valid() {
		return invalid("kind must be one of: sale, repair")
	}
	if p.TotalCost != nil {
		return nonNegative("total_cost", *p.TotalCost)
	}
	return nil
}

func (p ServicePatch) fields() patch.Fields {
	var f patch.Fields
	if p.TotalCost != nil {
		f.Set("total_cost", *p.TotalCost)
	}
	if p.Kind != nil {
		f.Set("kind", string(*p.Kind))
	}
	return f
}

func checkStatus(s lifecycle.Status) error {
	if !s.Valid() {
		return invalid("status must be one of: pending, in_progress, completed")
	}
	return nil
}

func (in RepairInput) validate() error {
	return firstErr(required("description", in.Description), checkStatus(in.Status))
}

func (in RepairInput) fields() patch.Fields {
	return patch.Fields{
		{Column: "description", Value: in.Description},
		{Column: "status", Value: string(in.Status)},
	}
}

func (p RepairPatch) empty() bool { return p.Description == nil && p.Status == nil }

func (p RepairPatch) validate() error {
	var errs []error
	if p.Description != nil {
		errs = append(errs, required("description", *p.Description))
	}
	if p.Status != nil {
		errs = append(errs, checkStatus(*p.Status))
	}
	return firstErr(errs...)
}

func (p RepairPatch) fields() patch.Fields {
	var f patch.Fields
	if p.Description != nil {
		f.Set("description", *p.Description)
	}
	if p.Status != nil {
		f.Set("status", string(*p.Status))
	}
	return f
}

func checkQuantity(q int) error {
	if q <= 0 {
		return invalid("quantity must be greater than 0")
	}
	return nil
}

func (in ItemInput) validate() error {
	if in.ProductVariantID <= 0 {
		return invalid("product_variant_id is required")
	}
	if in.UnitPrice == nil {
		return invalid("unit_price is required")
	}
	return firstErr(checkQuantity(in.Quantity), nonNegative("unit_price", *in.UnitPrice))
}

// fields excludes product_variant_id, which is fixed at creation.
func (in ItemInput) fields() patch.Fields {
	return patch.Fields{
		{Column: "quantity", Value: in.Quantity},
		{Column: "unit_price", Value: *in.UnitPrice},
	}
}

func (p ItemPatch) empty() bool {
	return p.ProductVariantID == nil && p.Quantity == nil && p.UnitPrice == nil
}

func (p ItemPatch) validate() error {
	var errs []error
	if p.Quantity != nil {
		errs = append(errs, checkQuantity(*p.Quantity))
	}
	if p.UnitPrice != nil {
		errs = append(errs, nonNegative("unit_price", *p.UnitPrice))
	}
	return firstErr(errs...)
}

func (p ItemPatch) fields() patch.Fields {
	var f patch.Fields
	if p.ProductVariantID != nil {
		f.Set("product_variant_id", *p.ProductVariantID)
	}
	if p.Quantity != nil {
		f.Set("quantity", *p.Quantity)
	}
	if p.UnitPrice != nil {
		f.Set("unit_price", *p.UnitPrice)
	}
	return f
}

func (in ProductInput) validate() error {
	if in.Price == nil {
		return invalid("price is required")
	}
	return firstErr(
		required("name", in.Name),
		required("description", in.Description),
		nonNegative("price", *in.Price),
		nonNegativeInt("stock_quantity", in.StockQuantity),
	)
}

func (in ProductInput) fields() patch.Fields {
	return patch.Fields{
		{Column: "name", Value: in.Name},
		{Column: "description", Value: in.Description},
		{Column: "price", Value: *in.Price},
		{Column: "stock_quantity", Value: in.StockQuantity},
	}
}

func (p ProductPatch) empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.StockQuantity == nil
}

func (p ProductPatch) validate() error {
	var errs []error
	if p.Name != nil {
		errs = append(errs, required("name", *p.Name))
	}
	if p.Description != nil {
		errs = append(errs, required("description", *p.Description))
	}
	if p.Price != nil {
		errs = append(errs, nonNegative("price", *p.Price))
	}
	if p.StockQuantity != nil {
		errs = append(errs, nonNegativeInt("stock_quantity", *p.StockQuantity))
	}
	return firstErr(errs...)
}

func (p ProductPatch) fields() patch.Fields {
	var f patch.Fields
	if p.Name != nil {
		f.Set("name", *p.Name)
	}
	if p.Description != nil {
		f.Set("description", *p.Description)
	}
	if p.Price != nil {
		f.Set("price", *p.Price)
	}
	if p.StockQuantity != nil {
		f.Set("stock_quantity", *p.StockQuantity)
	}
	return f
}

func (in VariantInput) validate() error {
	return firstErr(
		required("size", in.Size),
		required("color", in.Color),
		nonNegativeInt("stock_quantity", in.StockQuantity),
	)
}

func (in VariantInput) fields() patch.Fields {
	return patch.Fields{
		{Column: "size", Value: in.Size},
		{Column: "color", Value: in.Color},
		{Column: "stock_quantity", Value: in.StockQuantity},
	}
}

func (p VariantPatch) empty() bool { return p.Size == nil && p.Color == nil && p.StockQuantity == nil }

func (p VariantPatch) validate() error {
	var errs []error
	if p.Size != nil {
		errs = append(errs, required("size", *p.Size))
	}
	if p.Color != nil {
		errs = append(errs, required("color", *p.Color))
	}
	if p.StockQuantity != nil {
		errs = append(errs, nonNegativeInt("stock_quantity", *p.StockQuantity))
	}
	return firstErr(errs...)
}

func (p VariantPatch) fields() patch.Fields {
	var f patch.Fields
	if p.Size != nil {
		f.Set("size", *p.Size)
	}
	if p.Color != nil {
		f.Set("color", *p.Color)
	}
	if p.StockQuantity != nil {
		f.Set("stock_quantity", *p.StockQuantity)
	}
	return f
}
