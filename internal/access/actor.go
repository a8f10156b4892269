package access

import (
	"context"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"

	"go.uber.org/zap"
)

// Actor is the resolved identity behind a request. It is loaded fresh for
// every call and never cached.
type Actor struct {
	ID        string
	Role      Role
	TenantID  string
	FactoryID *string
}

func (a Actor) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

// PinnedFactory returns the factory that bounds this actor, if any.
func (a Actor) PinnedFactory() (string, bool) {
	if !a.Role.FactoryScoped() || a.FactoryID == nil || *a.FactoryID == "" {
		return "", false
	}
	return *a.FactoryID, true
}

// Principal is the stored identity row an ActorSource returns.
type Principal struct {
	ID        string
	Role      string
	TenantID  string
	FactoryID *string
	IsActive  bool
}

type ActorSource interface {
	// FindPrincipal returns nil, nil when no principal has the id.
	FindPrincipal(ctx context.Context, id string) (*Principal, error)
}

type Resolver struct {
	source ActorSource
	logger *zap.Logger
}

func NewResolver(source ActorSource, logger ...*zap.Logger) *Resolver {
	l := zap.L().Named("access.resolver")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("access.resolver")
	}
	return &Resolver{source: source, logger: l}
}

// Resolve loads the actor's role, tenant and factory from the store.
func (r *Resolver) Resolve(ctx context.Context, actorID string) (Actor, error) {
	if actorID == "" {
		return Actor{}, apperror.Unauthorized("Authentication is required")
	}

	p, err := r.source.FindPrincipal(ctx, actorID)
	if err != nil {
		r.logger.Error("resolve actor lookup failed", zap.String("actor_id", actorID), zap.Error(err))
		return Actor{}, err
	}
	if p == nil || !p.IsActive {
		r.logger.Warn("resolve actor not found or inactive", zap.String("actor_id", actorID))
		return Actor{}, apperror.NotFound("actor")
	}

	role := Role(p.Role)
	if !role.Valid() {
		r.logger.Warn("resolve actor has unknown role",
			zap.String("actor_id", actorID),
			zap.String("role", p.Role),
		)
		return Actor{}, apperror.Forbidden("unknown role")
	}

	actor := Actor{
		ID:       p.ID,
		Role:     role,
		TenantID: p.TenantID,
	}
	if p.FactoryID != nil && *p.FactoryID != "" {
		factoryID := *p.FactoryID
		actor.FactoryID = &factoryID
	}
	return actor, nil
}
