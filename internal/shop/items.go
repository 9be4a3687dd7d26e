package shop

import (
	"context"

	"github.com/MikeMC777/taller-ecom/internal/apperr"
	"github.com/MikeMC777/taller-ecom/internal/hierarchy"
	"github.com/MikeMC777/taller-ecom/internal/patch"
	"github.com/MikeMC777/taller-ecom/internal/store"
)

const variantColumn = "product_variant_id"

func errVariantImmutable() error {
	return apperr.InvalidPatch("product variant cannot be changed after creation")
}

func (s *Service) ListItems(ctx context.Context, customerID, serviceID int64) ([]ItemRequestView, error) {
	var out []ItemRequestView
	err := s.read(ctx, "list item requests", func(q store.Querier) error {
		if _, err := kindChain(ctx, q, customerID, serviceID, KindSale); err != nil {
			return err
		}
		rows, err := children(ctx, q, scanItem, itemsTable, itemCols, "service_id", serviceID)
		if err != nil {
			return err
		}
		out, err = hydrateAll(ctx, q, rows, hydrateItem)
		return err
	})
	return out, err
}

func (s *Service) GetItem(ctx context.Context, customerID, serviceID, itemID int64) (ItemRequestView, error) {
	var out ItemRequestView
	err := s.read(ctx, "get item request", func(q store.Querier) error {
		_, it, err := itemChain(ctx, q, customerID, serviceID, itemID)
		if err != nil {
			return err
		}
		out, err = hydrateItem(ctx, q, *it)
		return err
	})
	return out, err
}

// CreateItem fails with Conflict when the variant is already on this service.
func (s *Service) CreateItem(ctx context.Context, customerID, serviceID, principal int64, in ItemInput) (ItemRequestView, error) {
	if err := in.validate(); err != nil {
		return ItemRequestView{}, err
	}
	var out ItemRequestView
	err := s.write(ctx, "create item request", func(q store.Querier) error {
		sr, err := kindChain(ctx, q, customerID, serviceID, KindSale)
		if err != nil {
			return err
		}
		v, err := variantByID(ctx, q, in.ProductVariantID)
		if err != nil {
			return err
		}
		if err := hierarchy.ValidateChain(hierarchy.Present(labelVariant, in.ProductVariantID, v)); err != nil {
			return err
		}
		if err := hierarchy.ValidateOwnership(sr.CustomerID, principal); err != nil {
			return err
		}
		fields := append(patch.Fields{
			{Column: "service_id", Value: serviceID},
			{Column: variantColumn, Value: in.ProductVariantID},
		}, in.fields()...)
		it, err := insertOne(ctx, q, itemsTable, itemCols, scanItem, fields)
		if err != nil {
			return err
		}
		out, err = hydrateItem(ctx, q, it)
		return err
	})
	if err != nil {
		return ItemRequestView{}, err
	}
	logMutation(ctx, "item request created", out.ID, principal)
	return out, nil
}

// ReplaceItem requires the payload to repeat the stored variant.
func (s *Service) ReplaceItem(ctx context.Context, customerID, serviceID, itemID, principal int64, in ItemInput) (ItemRequestView, error) {
	if err := in.validate(); err != nil {
		return ItemRequestView{}, err
	}
	return s.updateItem(ctx, "replace item request", customerID, serviceID, itemID, principal,
		func(existing *ItemRequest) (patch.Fields, error) {
			if in.ProductVariantID != existing.ProductVariantID {
				return nil, errVariantImmutable()
			}
			return in.fields(), nil
		})
}

// PatchItem accepts product_variant_id only when it equals the stored value; it is then
// dropped from the update.
func (s *Service) PatchItem(ctx context.Context, customerID, serviceID, itemID, principal int64, p ItemPatch) (ItemRequestView, error) {
	if p.empty() {
		return ItemRequestView{}, apperr.InvalidPatch("no valid fields provided for update")
	}
	if err := p.validate(); err != nil {
		return ItemRequestView{}, err
	}
	return s.updateItem(ctx, "patch item request", customerID, serviceID, itemID, principal,
		func(existing *ItemRequest) (patch.Fields, error) {
			fields := p.fields()
			if v, ok := fields.Get(variantColumn); ok {
				if v.(int64) != existing.ProductVariantID {
					return nil, errVariantImmutable()
				}
				fields = fields.Without(variantColumn)
			}
			return fields, nil
		})
}

func (s *Service) updateItem(ctx context.Context, op string, customerID, serviceID, itemID, principal int64,
	build func(existing *ItemRequest) (patch.Fields, error)) (ItemRequestView, error) {
	var out ItemRequestView
	err := s.write(ctx, op, func(q store.Querier) error {
		sr, existing, err := itemChain(ctx, q, customerID, serviceID, itemID)
		if err != nil {
			return err
		}
		if err := hierarchy.ValidateOwnership(sr.CustomerID, principal); err != nil {
			return err
		}
		fields, err := build(existing)
		if err != nil {
			return err
		}
		var updated ItemRequest
		if len(fields) == 0 {
			// only the unchanged variant was supplied
			updated = *existing
		} else {
			scope := patch.Fields{{Column: "service_id", Value: serviceID}}
			updated, err = updateOne(ctx, q, table(itemsTable, itemCols), scanItem, fields, itemID, scope, labelItem)
			if err != nil {
				return err
			}
		}
		out, err = hydrateItem(ctx, q, updated)
		return err
	})
	if err != nil {
		return ItemRequestView{}, err
	}
	logMutation(ctx, op, itemID, principal)
	return out, nil
}

func (s *Service) DeleteItem(ctx context.Context, customerID, serviceID, itemID, principal int64) error {
	err := s.write(ctx, "delete item request", func(q store.Querier) error {
		sr, _, err := itemChain(ctx, q, customerID, serviceID, itemID)
		if err != nil {
			return err
		}
		if err := hierarchy.ValidateOwnership(sr.CustomerID, principal); err != nil {
			return err
		}
		return deleteOne(ctx, q, itemsTable, itemID, patch.Field{Column: "service_id", Value: serviceID}, labelItem)
	})
	if err != nil {
		return err
	}
	logMutation(ctx, "delete item request", itemID, principal)
	return nil
}
