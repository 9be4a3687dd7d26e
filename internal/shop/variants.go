package shop

import (
	"context"

	"github.com/MikeMC777/taller-ecom/internal/apperr"
	"github.com/MikeMC777/taller-ecom/internal/patch"
	"github.com/MikeMC777/taller-ecom/internal/store"
)

func (s *Service) ListVariants(ctx context.Context, productID int64) ([]VariantView, error) {
	var out []VariantView
	err := s.read(ctx, "list product variants", func(q store.Querier) error {
		if _, err := productChain(ctx, q, productID); err != nil {
			return err
		}
		rows, err := children(ctx, q, scanVariant, variantsTable, variantCols, "product_id", productID)
		if err != nil {
			return err
		}
		out, err = hydrateAll(ctx, q, rows, hydrateVariant)
		return err
	})
	return out, err
}

func (s *Service) GetVariant(ctx context.Context, productID, variantID int64) (VariantView, error) {
	var out VariantView
	err := s.read(ctx, "get product variant", func(q store.Querier) error {
		v, err := variantChain(ctx, q, productID, variantID)
		if err != nil {
			return err
		}
		out, err = hydrateVariant(ctx, q, *v)
		return err
	})
	return out, err
}

func (s *Service) CreateVariant(ctx context.Context, productID, principal int64, in VariantInput) (VariantView, error) {
	if err := in.validate(); err != nil {
		return VariantView{}, err
	}
	var out VariantView
	err := s.write(ctx, "create product variant", func(q store.Querier) error {
		if _, err := productChain(ctx, q, productID); err != nil {
			return err
		}
		fields := append(patch.Fields{{Column: "product_id", Value: productID}}, in.fields()...)
		v, err := insertOne(ctx, q, variantsTable, variantCols, scanVariant, fields)
		if err != nil {
			return err
		}
		out, err = hydrateVariant(ctx, q, v)
		return err
	})
	if err != nil {
		return VariantView{}, err
	}
	logMutation(ctx, "product variant created", out.ID, principal)
	return out, nil
}

func (s *Service) ReplaceVariant(ctx context.Context, productID, variantID, principal int64, in VariantInput) (VariantView, error) {
	if err := in.validate(); err != nil {
		return VariantView{}, err
	}
	return s.updateVariant(ctx, "replace product variant", productID, variantID, principal, in.fields())
}

func (s *Service) PatchVariant(ctx context.Context, productID, variantID, principal int64, p VariantPatch) (VariantView, error) {
	if p.empty() {
		return VariantView{}, apperr.InvalidPatch("no valid fields provided for update")
	}
	if err := p.validate(); err != nil {
		return VariantView{}, err
	}
	return s.updateVariant(ctx, "patch product variant", productID, variantID, principal, p.fields())
}

func (s *Service) updateVariant(ctx context.Context, op string, productID, variantID, principal int64, fields patch.Fields) (VariantView, error) {
	var out VariantView
	err := s.write(ctx, op, func(q store.Querier) error {
		if _, err := variantChain(ctx, q, productID, variantID); err != nil {
			return err
		}
		scope := patch.Fields{{Column: "product_id", Value: productID}}
		updated, err := updateOne(ctx, q, table(variantsTable, variantCols), scanVariant, fields, variantID, scope, labelVariant)
		if err != nil {
			return err
		}
		out, err = hydrateVariant(ctx, q, updated)
		return err
	})
	if err != nil {
		return VariantView{}, err
	}
	logMutation(ctx, op, variantID, principal)
	return out, nil
}

// DeleteVariant also removes item requests that reference the variant.
func (s *Service) DeleteVariant(ctx context.Context, productID, variantID, principal int64) error {
	err := s.write(ctx, "delete product variant", func(q store.Querier) error {
		if _, err := variantChain(ctx, q, productID, variantID); err != nil {
			return err
		}
		return deleteOne(ctx, q, variantsTable, variantID, patch.Field{Column: "product_id", Value: productID}, labelVariant)
	})
	if err != nil {
		return err
	}
	logMutation(ctx, "delete product variant", variantID, principal)
	return nil
}
