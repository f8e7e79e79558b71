package core

import (
	"context"
	"fmt"

	"farmcore/pkg/domain"
)

// SetActiveUser switches the active user. The target must exist and be
// active; the document never points at a missing or deactivated user.
func (s *Service) SetActiveUser(ctx context.Context, userID string) error {
	return s.store.Transaction(ctx, func(draft *domain.Document) error {
		u, ok := draft.UserByID(userID)
		if !ok {
			return domain.NotFoundError{Kind: domain.KindUser, ID: userID}
		}
		if !u.Active {
			return fmt.Errorf("user %q is deactivated", userID)
		}
		draft.ActiveUserID = userID
		return nil
	})
}

// AddUser registers a new account. Owner only.
func (s *Service) AddUser(ctx context.Context, name string, role domain.Role) (domain.User, error) {
	var added domain.User
	err := s.store.Transaction(ctx, func(draft *domain.Document) error {
		if _, err := requireOwner(draft); err != nil {
			return err
		}
		if role != domain.RoleOwner && role != domain.RoleWorker {
			return fmt.Errorf("unknown role %q", role)
		}
		added = domain.User{
			ID:        newID("u"),
			Name:      name,
			Role:      role,
			Active:    true,
			CreatedAt: s.store.now(),
		}
		draft.Users = append(draft.Users, added)
		return nil
	})
	return added, err
}

// DeactivateUser marks an account inactive. Owner only; the currently
// active user cannot be deactivated, which keeps activeUserId valid.
func (s *Service) DeactivateUser(ctx context.Context, userID string) error {
	return s.store.Transaction(ctx, func(draft *domain.Document) error {
		if _, err := requireOwner(draft); err != nil {
			return err
		}
		if userID == draft.ActiveUserID {
			return fmt.Errorf("cannot deactivate the active user %q", userID)
		}
		for i := range draft.Users {
			if draft.Users[i].ID == userID {
				draft.Users[i].Active = false
				return nil
			}
		}
		return domain.NotFoundError{Kind: domain.KindUser, ID: userID}
	})
}

// SetFarmName updates the farm identity. Owner only.
func (s *Service) SetFarmName(ctx context.Context, name string) error {
	return s.store.Transaction(ctx, func(draft *domain.Document) error {
		if _, err := requireOwner(draft); err != nil {
			return err
		}
		draft.Meta.FarmName = name
		return nil
	})
}

// SetCounty records the selected county and clears the municipality, which
// belongs to the previous county.
func (s *Service) SetCounty(ctx context.Context, code, name string) error {
	return s.store.Transaction(ctx, func(draft *domain.Document) error {
		if _, err := requireOwner(draft); err != nil {
			return err
		}
		draft.Meta.Geo.CountyCode = code
		draft.Meta.Geo.CountyName = name
		draft.Meta.Geo.MunicipalityCode = ""
		draft.Meta.Geo.MunicipalityName = ""
		return nil
	})
}

// SetMunicipality records the selected municipality within the current
// county.
func (s *Service) SetMunicipality(ctx context.Context, code, name string) error {
	return s.store.Transaction(ctx, func(draft *domain.Document) error {
		if _, err := requireOwner(draft); err != nil {
			return err
		}
		draft.Meta.Geo.MunicipalityCode = code
		draft.Meta.Geo.MunicipalityName = name
		return nil
	})
}

// SetProductionModule toggles a production module. Owner only. Disabling a
// module hides it; its data is kept.
func (s *Service) SetProductionModule(ctx context.Context, module domain.ProductionType, enabled bool) error {
	return s.store.Transaction(ctx, func(draft *domain.Document) error {
		if _, err := requireOwner(draft); err != nil {
			return err
		}
		draft.Features.ProductionModules[module] = enabled
		return nil
	})
}
