package shop

import (
	"context"
	"fmt"

	"github.com/MikeMC777/taller-ecom/internal/apperr"
	"github.com/MikeMC777/taller-ecom/internal/hierarchy"
	"github.com/MikeMC777/taller-ecom/internal/patch"
	"github.com/MikeMC777/taller-ecom/internal/store"
)

func (s *Service) ListCustomers(ctx context.Context) ([]CustomerView, error) {
	var out []CustomerView
	err := s.read(ctx, "list customers", func(q store.Querier) error {
		rows, err := store.Many(ctx, q, scanCustomer, selectFrom(customersTable, customerCols)+" ORDER BY id")
		if err != nil {
			return err
		}
		out, err = hydrateAll(ctx, q, rows, hydrateCustomer)
		return err
	})
	return out, err
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (CustomerView, error) {
	var out CustomerView
	err := s.read(ctx, "get customer", func(q store.Querier) error {
		c, err := customerChain(ctx, q, id)
		if err != nil {
			return err
		}
		out, err = hydrateCustomer(ctx, q, *c)
		return err
	})
	return out, err
}

// CreateCustomer registers a customer; it needs no principal.
func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (CustomerView, error) {
	if err := in.validate(); err != nil {
		return CustomerView{}, err
	}
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return CustomerView{}, err
	}

	var out CustomerView
	err = s.write(ctx, "create customer", func(q store.Querier) error {
		c, err := insertOne(ctx, q, customersTable, customerCols, scanCustomer, in.fields(hash))
		if err != nil {
			return err
		}
		out, err = hydrateCustomer(ctx, q, c)
		return err
	})
	if err != nil {
		return CustomerView{}, err
	}
	logMutation(ctx, "customer created", out.ID, out.ID)
	return out, nil
}

func (s *Service) ReplaceCustomer(ctx context.Context, id, principal int64, in CustomerInput) (CustomerView, error) {
	if err := in.validate(); err != nil {
		return CustomerView{}, err
	}
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return CustomerView{}, err
	}
	return s.updateCustomer(ctx, "replace customer", id, principal, in.fields(hash))
}

func (s *Service) PatchCustomer(ctx context.Context, id, principal int64, p CustomerPatch) (CustomerView, error) {
	if p.empty() {
		return CustomerView{}, apperr.InvalidPatch("no valid fields provided for update")
	}
	if err := p.validate(); err != nil {
		return CustomerView{}, err
	}
	var hash string
	if p.Password != nil {
		h, err := s.hashPassword(*p.Password)
		if err != nil {
			return CustomerView{}, err
		}
		hash = h
	}
	return s.updateCustomer(ctx, "patch customer", id, principal, p.fields(hash))
}

func (s *Service) updateCustomer(ctx context.Context, op string, id, principal int64, fields patch.Fields) (CustomerView, error) {
	var out CustomerView
	err := s.write(ctx, op, func(q store.Querier) error {
		c, err := customerChain(ctx, q, id)
		if err != nil {
			return err
		}
		if err := hierarchy.ValidateOwnership(c.ID, principal); err != nil {
			return err
		}
		updated, err := updateOne(ctx, q, table(customersTable, customerCols), scanCustomer, fields, id, nil, labelCustomer)
		if err != nil {
			return err
		}
		out, err = hydrateCustomer(ctx, q, updated)
		return err
	})
	if err != nil {
		return CustomerView{}, err
	}
	logMutation(ctx, op, id, principal)
	return out, nil
}

// DeleteCustomer cascades to the customer's services and everything under them.
func (s *Service) DeleteCustomer(ctx context.Context, id, principal int64) error {
	err := s.write(ctx, "delete customer", func(q store.Querier) error {
		c, err := customerChain(ctx, q, id)
		if err != nil {
			return err
		}
		if err := hierarchy.ValidateOwnership(c.ID, principal); err != nil {
			return err
		}
		return deleteOne(ctx, q, customersTable, id, noScope, labelCustomer)
	})
	if err != nil {
		return err
	}
	logMutation(ctx, "delete customer", id, principal)
	return nil
}

// Login resolves a principal from credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (Customer, error) {
	var c *Customer
	err := s.read(ctx, "login", func(q store.Querier) error {
		var err error
		c, err = store.One(ctx, q, scanCustomer, selectFrom(customersTable, customerCols)+" WHERE email = ?", email)
		return err
	})
	if err != nil {
		return Customer{}, err
	}
	if c == nil || !s.hash.Compare(c.Password, password) {
		return Customer{}, apperr.Unauthenticated("invalid email or password")
	}
	return *c, nil
}

// CustomerExists backs the directory lookup used by other services.
func (s *Service) CustomerExists(ctx context.Context, id int64) (bool, error) {
	var c *Customer
	err := s.read(ctx, "validate customer", func(q store.Querier) error {
		var err error
		c, err = getCustomer(ctx, q, id)
		return err
	})
	return c != nil, err
}

func (s *Service) hashPassword(plain string) (string, error) {
	h, err := s.hash.Hash(plain)
	if err != nil {
		return "", apperr.StoreFailure(fmt.Errorf("hash password: %w", err))
	}
	return h, nil
}
