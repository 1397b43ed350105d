package onboarding

import (
	"context"
	"fmt"

	"hireflow/internal/domain/auth"
)

// TieBreak picks one identity when several hold the same role.
type TieBreak int

const (
	// FirstListed takes the first identity in directory order.
	FirstListed TieBreak = iota
	// EarliestCreated takes the oldest identity, lowest id on equal times.
	EarliestCreated
)

func ParseTieBreak(value string) (TieBreak, error) {
	switch value {
	case "", "first_listed":
		return FirstListed, nil
	case "earliest_created":
		return EarliestCreated, nil
	}
	return FirstListed, fmt.Errorf("onboarding: unknown holder policy %q", value)
}

var holderErrors = map[string]error{
	auth.RolePayrollManager: ErrPayrollManagerNotFound,
	auth.RoleSystemAdmin:    ErrSystemAdminNotFound,
}

// HolderResolver resolves the single responsible party for a role.
type HolderResolver struct {
	Directory RoleDirectory
	Policy    TieBreak
}

func (r HolderResolver) ResolveSingleHolder(ctx context.Context, tenantID, role string) (auth.Identity, error) {
	holders, err := r.Directory.FindUsersByRole(ctx, tenantID, role)
	if err != nil {
		return auth.Identity{}, err
	}
	if len(holders) == 0 {
		if known, ok := holderErrors[role]; ok {
			return auth.Identity{}, known
		}
		return auth.Identity{}, fmt.Errorf("%s: %w", role, ErrNoRoleHolder)
	}

	chosen := holders[0]
	if r.Policy == EarliestCreated {
		for _, candidate := range holders[1:] {
			if candidate.CreatedAt.Before(chosen.CreatedAt) ||
				(candidate.CreatedAt.Equal(chosen.CreatedAt) && candidate.ID < chosen.ID) {
				chosen = candidate
			}
		}
	}
	return chosen, nil
}
