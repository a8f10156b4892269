package access

import (
	"context"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/obs"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"

	"go.uber.org/zap"
)

// Entity is what the guard needs from a stored row.
type Entity interface {
	Scoped
	EntityID() string
}

// Guard is the access-scoped entity service core shared by every entity
// package: resolve the actor, build its scope, gate the operation and
// validate lifecycle transitions. E is the entity row type.
type Guard[E Entity] struct {
	policy   Policy
	resolver *Resolver
	gate     *Gate
	activity ActivityRecorder
	logger   *zap.Logger
}

func NewGuard[E Entity](policy Policy, resolver *Resolver, gate *Gate, activity ActivityRecorder, logger ...*zap.Logger) *Guard[E] {
	l := zap.L().Named("access.guard." + policy.Resource)
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("access.guard." + policy.Resource)
	}
	return &Guard[E]{
		policy:   policy,
		resolver: resolver,
		gate:     gate,
		activity: activity,
		logger:   l,
	}
}

func (g *Guard[E]) Resource() string {
	return g.policy.Resource
}

// Actor re-resolves the caller from the store.
func (g *Guard[E]) Actor(ctx context.Context, actorID string) (Actor, error) {
	return g.resolver.Resolve(ctx, actorID)
}

// Authorize checks the role allow-list for op only.
func (g *Guard[E]) Authorize(actor Actor, op Operation) error {
	return g.gate.AssertCan(actor, g.policy.Resource, op)
}

// StatsScope gates the shared stats resource and returns the aggregation
// predicate for this entity.
func (g *Guard[E]) StatsScope(actor Actor, explicitFactoryID string) (Scope, error) {
	if err := g.gate.AssertCan(actor, StatsResource, OpRead); err != nil {
		return Scope{}, err
	}
	return BuildScope(actor, explicitFactoryID, g.policy.Participation), nil
}

// ListScope gates op (usually read or stats) and returns the list predicate.
func (g *Guard[E]) ListScope(actor Actor, op Operation, explicitFactoryID string) (Scope, error) {
	if err := g.gate.AssertCan(actor, g.policy.Resource, op); err != nil {
		return Scope{}, err
	}
	return BuildScope(actor, explicitFactoryID, g.policy.Participation), nil
}

// LookupScope is the predicate used to load one row for op. A row outside
// it must surface as NotFound.
func (g *Guard[E]) LookupScope(actor Actor) Scope {
	return BuildScope(actor, "", g.policy.Participation).LookupScope()
}

// AuthorizeRead checks that a loaded row may be read by actor.
func (g *Guard[E]) AuthorizeRead(actor Actor, entity E) error {
	return g.gate.AssertCanMutate(actor, g.policy.Resource, OpRead, entity)
}

// AuthorizeCreate checks role membership and that the target tenant/factory
// of a new row belongs to actor.
func (g *Guard[E]) AuthorizeCreate(actor Actor, target Scoped) error {
	return g.gate.AssertCanMutate(actor, g.policy.Resource, OpCreate, target)
}

// AuthorizeMutation checks role membership and ownership of entity for op.
func (g *Guard[E]) AuthorizeMutation(actor Actor, op Operation, entity E) error {
	return g.gate.AssertCanMutate(actor, g.policy.Resource, op, entity)
}

// AuthorizeTransition runs the permission gate first and the lifecycle
// table second, so callers without access never learn the entity state.
func (g *Guard[E]) AuthorizeTransition(actor Actor, op Operation, entity E, current string) (Transition, error) {
	if err := g.gate.AssertCanMutate(actor, g.policy.Resource, op, entity); err != nil {
		return Transition{}, err
	}
	tr, err := g.policy.Transitions.Assert(op, current)
	if err != nil {
		obs.Transition(g.policy.Resource, string(op), "rejected")
		g.logger.Warn("transition rejected",
			zap.String("entity_id", entity.EntityID()),
			zap.String("operation", string(op)),
			zap.String("current", current),
			zap.Error(err),
		)
		return Transition{}, err
	}
	return tr, nil
}

// Transitioned records a successful transition metric.
func (g *Guard[E]) Transitioned(op Operation) {
	obs.Transition(g.policy.Resource, string(op), "applied")
}

// RejectStale builds the error for a transition whose conditional update
// matched no row because a concurrent writer moved the entity first.
// current is the status re-read after the failed update.
func (g *Guard[E]) RejectStale(op Operation, entity E, current string) error {
	obs.Transition(g.policy.Resource, string(op), "conflict")
	g.logger.Warn("transition lost race",
		zap.String("entity_id", entity.EntityID()),
		zap.String("operation", string(op)),
		zap.String("current", current),
	)
	if _, err := g.policy.Transitions.Assert(op, current); err != nil {
		return err
	}
	tr := g.policy.Transitions.Moves[op]
	return apperror.InvalidState(tr.From, current, "modified concurrently")
}

// Record writes the activity side effect; failures are logged and dropped.
func (g *Guard[E]) Record(ctx context.Context, actor *Actor, tenantID string, op Operation, entityID string, meta map[string]any) {
	a := Activity{
		TenantID:   tenantID,
		Resource:   g.policy.Resource,
		ResourceID: entityID,
		Action:     string(op),
		Meta:       meta,
	}
	if actor != nil {
		a.ActorID = actor.ID
	}
	RecordBestEffort(ctx, g.activity, g.logger, a)
}
