package usecase

import (
	"context"
	"errors"

	"github.com/opencivic/civicpulse/internal/domain"
)

// AdminGuard is the single authorization check behind every
// admin-mutating entry point. It re-derives the actor's role from the
// store at the moment of mutation instead of trusting whatever the
// request or middleware claimed.
type AdminGuard struct {
	admins AdministratorRepository
}

func NewAdminGuard(admins AdministratorRepository) *AdminGuard {
	return &AdminGuard{admins: admins}
}

func (g *AdminGuard) Require(ctx context.Context, actorID string) (domain.Administrator, error) {
	if actorID == "" {
		return domain.Administrator{}, domain.ErrUnauthorized
	}

	admin, err := g.admins.GetByID(ctx, actorID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Administrator{}, domain.ForbiddenError{Actor: actorID}
	}
	if err != nil {
		return domain.Administrator{}, err
	}

	if admin.Role != domain.RoleAdmin {
		return domain.Administrator{}, domain.ForbiddenError{Actor: actorID}
	}

	return admin, nil
}
