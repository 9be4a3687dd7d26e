package shop

import (
	"context"

	"github.com/MikeMC777/taller-ecom/internal/apperr"
	"github.com/MikeMC777/taller-ecom/internal/hierarchy"
	"github.com/MikeMC777/taller-ecom/internal/lifecycle"
	"github.com/MikeMC777/taller-ecom/internal/patch"
	"github.com/MikeMC777/taller-ecom/internal/store"
)

func (s *Service) ListRepairs(ctx context.Context, customerID, serviceID int64) ([]RepairView, error) {
	var out []RepairView
	err := s.read(ctx, "list repairs", func(q store.Querier) error {
		if _, err := kindChain(ctx, q, customerID, serviceID, KindRepair); err != nil {
			return err
		}
		rows, err := children(ctx, q, scanRepair, repairsTable, repairCols, "service_id", serviceID)
		if err != nil {
			return err
		}
		out, err = hydrateAll(ctx, q, rows, hydrateRepair)
		return err
	})
	return out, err
}

func (s *Service) GetRepair(ctx context.Context, customerID, serviceID, repairID int64) (RepairView, error) {
	var out RepairView
	err := s.read(ctx, "get repair", func(q store.Querier) error {
		_, r, err := repairChain(ctx, q, customerID, serviceID, repairID)
		if err != nil {
			return err
		}
		out, err = hydrateRepair(ctx, q, *r)
		return err
	})
	return out, err
}

// CreateRepair treats the new row as leaving pending, so a repair created in_progress or
// completed gets its timestamps on insert.
func (s *Service) CreateRepair(ctx context.Context, customerID, serviceID, principal int64, in RepairInput) (RepairView, error) {
	if err := in.validate(); err != nil {
		return RepairView{}, err
	}
	var out RepairView
	err := s.write(ctx, "create repair", func(q store.Querier) error {
		sr, err := kindChain(ctx, q, customerID, serviceID, KindRepair)
		if err != nil {
			return err
		}
		if err := hierarchy.ValidateOwnership(sr.CustomerID, principal); err != nil {
			return err
		}
		fields := append(patch.Fields{{Column: "service_id", Value: serviceID}}, in.fields()...)
		lifecycle.OnCreate(in.Status).Apply(&fields, s.now())
		r, err := insertOne(ctx, q, repairsTable, repairCols, scanRepair, fields)
		if err != nil {
			return err
		}
		out, err = hydrateRepair(ctx, q, r)
		return err
	})
	if err != nil {
		return RepairView{}, err
	}
	logMutation(ctx, "repair created", out.ID, principal)
	return out, nil
}

func (s *Service) ReplaceRepair(ctx context.Context, customerID, serviceID, repairID, principal int64, in RepairInput) (RepairView, error) {
	if err := in.validate(); err != nil {
		return RepairView{}, err
	}
	return s.updateRepair(ctx, "replace repair", customerID, serviceID, repairID, principal, in.fields())
}

// PatchRepair only touches timestamps when the payload carries a status.
func (s *Service) PatchRepair(ctx context.Context, customerID, serviceID, repairID, principal int64, p RepairPatch) (RepairView, error) {
	if p.empty() {
		return RepairView{}, apperr.InvalidPatch("no valid fields provided for update")
	}
	if err := p.validate(); err != nil {
		return RepairView{}, err
	}
	return s.updateRepair(ctx, "patch repair", customerID, serviceID, repairID, principal, p.fields())
}

// updateRepair writes the status and its derived timestamps in the same UPDATE.
func (s *Service) updateRepair(ctx context.Context, op string, customerID, serviceID, repairID, principal int64,
	fields patch.Fields) (RepairView, error) {
	var out RepairView
	err := s.write(ctx, op, func(q store.Querier) error {
		sr, existing, err := repairChain(ctx, q, customerID, serviceID, repairID)
		if err != nil {
			return err
		}
		if err := hierarchy.ValidateOwnership(sr.CustomerID, principal); err != nil {
			return err
		}
		if v, ok := fields.Get("status"); ok {
			lifecycle.Derive(existing.Status, lifecycle.Status(v.(string))).Apply(&fields, s.now())
		}
		scope := patch.Fields{{Column: "service_id", Value: serviceID}}
		updated, err := updateOne(ctx, q, table(repairsTable, repairCols), scanRepair, fields, repairID, scope, labelRepair)
		if err != nil {
			return err
		}
		out, err = hydrateRepair(ctx, q, updated)
		return err
	})
	if err != nil {
		return RepairView{}, err
	}
	logMutation(ctx, op, repairID, principal)
	return out, nil
}

func (s *Service) DeleteRepair(ctx context.Context, customerID, serviceID, repairID, principal int64) error {
	err := s.write(ctx, "delete repair", func(q store.Querier) error {
		sr, _, err := repairChain(ctx, q, customerID, serviceID, repairID)
		if err != nil {
			return err
		}
		if err := hierarchy.ValidateOwnership(sr.CustomerID, principal); err != nil {
			return err
		}
		return deleteOne(ctx, q, repairsTable, repairID, patch.Field{Column: "service_id", Value: serviceID}, labelRepair)
	})
	if err != nil {
		return err
	}
	logMutation(ctx, "delete repair", repairID, principal)
	return nil
}
