package shop

import (
	"context"

	"github.com/MikeMC777/taller-ecom/internal/apperr"
	"github.com/MikeMC777/taller-ecom/internal/patch"
	"github.com/MikeMC777/taller-ecom/internal/store"
)

// Catalog operations have no owner; the principal is recorded in the log only.

func (s *Service) ListProducts(ctx context.Context) ([]ProductView, error) {
	var out []ProductView
	err := s.read(ctx, "list products", func(q store.Querier) error {
		rows, err := store.Many(ctx, q, scanProduct, selectFrom(productsTable, productCols)+" ORDER BY id")
		if err != nil {
			return err
		}
		out, err = hydrateAll(ctx, q, rows, hydrateProduct)
		return err
	})
	return out, err
}

func (s *Service) GetProduct(ctx context.Context, productID int64) (ProductView, error) {
	var out ProductView
	err := s.read(ctx, "get product", func(q store.Querier) error {
		p, err := productChain(ctx, q, productID)
		if err != nil {
			return err
		}
		out, err = hydrateProduct(ctx, q, *p)
		return err
	})
	return out, err
}

func (s *Service) CreateProduct(ctx context.Context, principal int64, in ProductInput) (ProductView, error) {
	if err := in.validate(); err != nil {
		return ProductView{}, err
	}
	var out ProductView
	err := s.write(ctx, "create product", func(q store.Querier) error {
		p, err := insertOne(ctx, q, productsTable, productCols, scanProduct, in.fields())
		if err != nil {
			return err
		}
		out, err = hydrateProduct(ctx, q, p)
		return err
	})
	if err != nil {
		return ProductView{}, err
	}
	logMutation(ctx, "product created", out.ID, principal)
	return out, nil
}

func (s *Service) ReplaceProduct(ctx context.Context, productID, principal int64, in ProductInput) (ProductView, error) {
	if err := in.validate(); err != nil {
		return ProductView{}, err
	}
	return s.updateProduct(ctx, "replace product", productID, principal, in.fields())
}

func (s *Service) PatchProduct(ctx context.Context, productID, principal int64, p ProductPatch) (ProductView, error) {
	if p.empty() {
		return ProductView{}, apperr.InvalidPatch("no valid fields provided for update")
	}
	if err := p.validate(); err != nil {
		return ProductView{}, err
	}
	return s.updateProduct(ctx, "patch product", productID, principal, p.fields())
}

func (s *Service) updateProduct(ctx context.Context, op string, productID, principal int64, fields patch.Fields) (ProductView, error) {
	var out ProductView
	err := s.write(ctx, op, func(q store.Querier) error {
		if _, err := productChain(ctx, q, productID); err != nil {
			return err
		}
		updated, err := updateOne(ctx, q, table(productsTable, productCols), scanProduct, fields, productID, nil, labelProduct)
		if err != nil {
			return err
		}
		out, err = hydrateProduct(ctx, q, updated)
		return err
	})
	if err != nil {
		return ProductView{}, err
	}
	logMutation(ctx, op, productID, principal)
	return out, nil
}

// DeleteProduct cascades to its variants and to every item request that references them.
func (s *Service) DeleteProduct(ctx context.Context, productID, principal int64) error {
	err := s.write(ctx, "delete product", func(q store.Querier) error {
		if _, err := productChain(ctx, q, productID); err != nil {
			return err
		}
		return deleteOne(ctx, q, productsTable, productID, noScope, labelProduct)
	})
	if err != nil {
		return err
	}
	logMutation(ctx, "delete product", productID, principal)
	return nil
}
