package shop

import (
	"context"

	"github.com/MikeMC777/taller-ecom/internal/apperr"
	"github.com/MikeMC777/taller-ecom/internal/hierarchy"
	"github.com/MikeMC777/taller-ecom/internal/patch"
	"github.com/MikeMC777/taller-ecom/internal/store"
)

func (s *Service) ListServices(ctx context.Context, customerID int64) ([]ServiceView, error) {
	var out []ServiceView
	err := s.read(ctx, "list services", func(q store.Querier) error {
		if _, err := customerChain(ctx, q, customerID); err != nil {
			return err
		}
		rows, err := children(ctx, q, scanService, servicesTable, serviceCols, "customer_id", customerID)
		if err != nil {
			return err
		}
		out, err = hydrateAll(ctx, q, rows, hydrateService)
		return err
	})
	return out, err
}

func (s *Service) GetService(ctx context.Context, customerID, serviceID int64) (ServiceView, error) {
	var out ServiceView
	err := s.read(ctx, "get service", func(q store.Querier) error {
		sr, err := serviceChain(ctx, q, customerID, serviceID)
		if err != nil {
			return err
		}
		out, err = hydrateService(ctx, q, *sr)
		return err
	})
	return out, err
}

func (s *Service) CreateService(ctx context.Context, customerID, principal int64, in ServiceInput) (ServiceView, error) {
	if err := in.validate(); err != nil {
		return ServiceView{}, err
	}
	var out ServiceView
	err := s.write(ctx, "create service", func(q store.Querier) error {
		c, err := customerChain(ctx, q, customerID)
		if err != nil {
			return err
		}
		if err := hierarchy.ValidateOwnership(c.ID, principal); err != nil {
			return err
		}
		fields := append(patch.Fields{{Column: "customer_id", Value: customerID}}, in.fields()...)
		sr, err := insertOne(ctx, q, servicesTable, serviceCols, scanService, fields)
		if err != nil {
			return err
		}
		out, err = hydrateService(ctx, q, sr)
		return err
	})
	if err != nil {
		return ServiceView{}, err
	}
	logMutation(ctx, "service created", out.ID, principal)
	return out, nil
}

func (s *Service) ReplaceService(ctx context.Context, customerID, serviceID, principal int64, in ServiceInput) (ServiceView, error) {
	if err := in.validate(); err != nil {
		return ServiceView{}, err
	}
	return s.updateService(ctx, "replace service", customerID, serviceID, principal, in.fields())
}

func (s *Service) PatchService(ctx context.Context, customerID, serviceID, principal int64, p ServicePatch) (ServiceView, error) {
	if p.empty() {
		return ServiceView{}, apperr.InvalidPatch("no valid fields provided for update")
	}
	if err := p.validate(); err != nil {
		return ServiceView{}, err
	}
	return s.updateService(ctx, "patch service", customerID, serviceID, principal, p.fields())
}

func (s *Service) updateService(ctx context.Context, op string, customerID, serviceID, principal int64, fields patch.Fields) (ServiceView, error) {
	var out ServiceView
	err := s.write(ctx, op, func(q store.Querier) error {
		sr, err := serviceChain(ctx, q, customerID, serviceID)
		if err != nil {
			return err
		}
		if err := hierarchy.ValidateOwnership(sr.CustomerID, principal); err != nil {
			return err
		}
		if v, ok := fields.Get("kind"); ok {
			if err := checkKindChange(ctx, q, sr, Kind(v.(string))); err != nil {
				return err
			}
		}
		scope := patch.Fields{{Column: "customer_id", Value: customerID}}
		updated, err := updateOne(ctx, q, table(servicesTable, serviceCols), scanService, fields, serviceID, scope, labelService)
		if err != nil {
			return err
		}
		out, err = hydrateService(ctx, q, updated)
		return err
	})
	if err != nil {
		return ServiceView{}, err
	}
	logMutation(ctx, op, serviceID, principal)
	return out, nil
}

// DeleteService cascades to the service's repairs and item requests.
func (s *Service) DeleteService(ctx context.Context, customerID, serviceID, principal int64) error {
	err := s.write(ctx, "delete service", func(q store.Querier) error {
		sr, err := serviceChain(ctx, q, customerID, serviceID)
		if err != nil {
			return err
		}
		if err := hierarchy.ValidateOwnership(sr.CustomerID, principal); err != nil {
			return err
		}
		return deleteOne(ctx, q, servicesTable, serviceID, patch.Field{Column: "customer_id", Value: customerID}, labelService)
	})
	if err != nil {
		return err
	}
	logMutation(ctx, "delete service", serviceID, principal)
	return nil
}
