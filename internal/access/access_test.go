package access_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id           string
	tenantID     string
	factoryID    string
	participants []string
}

func (r row) EntityID() string         { return r.id }
func (r row) ScopeTenantID() string    { return r.tenantID }
func (r row) ScopeFactoryID() string   { return r.factoryID }
func (r row) ParticipantIDs() []string { return r.participants }

type fakeSource struct {
	principals map[string]*access.Principal
	err        error
}

func (f *fakeSource) FindPrincipal(_ context.Context, id string) (*access.Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.principals[id], nil
}

func ptr(s string) *string { return &s }

var testPolicy = access.Policy{
	Resource: "audit",
	Allow: map[access.Operation][]access.Role{
		access.OpCreate:   {access.RoleTenantAdmin, access.RoleFactoryAdmin, access.RoleAuditor},
		access.OpRead:     {access.RoleTenantAdmin, access.RoleFactoryAdmin, access.RoleAuditor, access.RoleAnalyticsUser},
		access.OpStart:    {access.RoleTenantAdmin, access.RoleFactoryAdmin, access.RoleAuditor},
		access.OpComplete: {access.RoleTenantAdmin, access.RoleFactoryAdmin, access.RoleAuditor},
	},
	Transitions: access.TransitionTable{
		Order: []string{"PLANNED", "IN_PROGRESS", "COMPLETED"},
		Moves: map[access.Operation]access.Transition{
			access.OpStart:    {From: []string{"PLANNED"}, To: "IN_PROGRESS"},
			access.OpComplete: {From: []string{"IN_PROGRESS"}, To: "COMPLETED"},
		},
	},
	Participation: true,
}

func newGate(t *testing.T) *access.Gate {
	t.Helper()
	gate, err := access.NewGate([]access.Policy{testPolicy, access.StatsPolicy})
	require.NoError(t, err)
	return gate
}

func TestResolver_Resolve(t *testing.T) {
	source := &fakeSource{principals: map[string]*access.Principal{
		"u-1": {ID: "u-1", Role: "FACTORY_ADMIN", TenantID: "t-1", FactoryID: ptr("f-1"), IsActive: true},
		"u-2": {ID: "u-2", Role: "AUDITOR", TenantID: "t-1", IsActive: false},
		"u-3": {ID: "u-3", Role: "JANITOR", TenantID: "t-1", IsActive: true},
	}}
	resolver := access.NewResolver(source)

	t.Run("active principal", func(t *testing.T) {
		actor, err := resolver.Resolve(context.Background(), "u-1")
		require.NoError(t, err)
		assert.Equal(t, access.RoleFactoryAdmin, actor.Role)
		assert.Equal(t, "t-1", actor.TenantID)
		pinned, ok := actor.PinnedFactory()
		assert.True(t, ok)
		assert.Equal(t, "f-1", pinned)
	})

	t.Run("missing id is unauthorized", func(t *testing.T) {
		_, err := resolver.Resolve(context.Background(), "")
		assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
	})

	t.Run("inactive is not found", func(t *testing.T) {
		_, err := resolver.Resolve(context.Background(), "u-2")
		assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := resolver.Resolve(context.Background(), "nobody")
		assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
	})

	t.Run("unknown role is forbidden", func(t *testing.T) {
		_, err := resolver.Resolve(context.Background(), "u-3")
		assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
	})

	t.Run("store error is passed through", func(t *testing.T) {
		boom := errors.New("db down")
		_, err := access.NewResolver(&fakeSource{err: boom}).Resolve(context.Background(), "u-1")
		assert.ErrorIs(t, err, boom)
	})
}

func TestActor_PinnedFactory(t *testing.T) {
	tests := []struct {
		name   string
		actor  access.Actor
		pinned bool
	}{
		{"factory admin with factory", access.Actor{Role: access.RoleFactoryAdmin, FactoryID: ptr("f-1")}, true},
		{"hr staff with factory", access.Actor{Role: access.RoleHRStaff, FactoryID: ptr("f-1")}, true},
		{"committee with factory", access.Actor{Role: access.RoleGrievanceCommittee, FactoryID: ptr("f-1")}, true},
		{"factory admin without factory", access.Actor{Role: access.RoleFactoryAdmin}, false},
		{"tenant admin with factory", access.Actor{Role: access.RoleTenantAdmin, FactoryID: ptr("f-1")}, false},
		{"auditor with factory", access.Actor{Role: access.RoleAuditor, FactoryID: ptr("f-1")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tt.actor.PinnedFactory()
			assert.Equal(t, tt.pinned, ok)
		})
	}
}

func TestBuildScope(t *testing.T) {
	t.Run("super admin is global and honors explicit filter", func(t *testing.T) {
		s := access.BuildScope(access.Actor{ID: "sa", Role: access.RoleSuperAdmin}, "f-9", true)
		assert.True(t, s.Global)
		assert.Equal(t, "f-9", s.FactoryID)
		assert.True(t, s.Matches(row{tenantID: "t-2", factoryID: "f-9"}))
		assert.False(t, s.Matches(row{tenantID: "t-2", factoryID: "f-1"}))
	})

	t.Run("tenant isolation", func(t *testing.T) {
		s := access.BuildScope(access.Actor{ID: "ta", Role: access.RoleTenantAdmin, TenantID: "t-1"}, "", true)
		assert.True(t, s.Matches(row{tenantID: "t-1", factoryID: "f-1"}))
		assert.False(t, s.Matches(row{tenantID: "t-2", factoryID: "f-1"}))
	})

	t.Run("pinned factory overrides explicit filter", func(t *testing.T) {
		actor := access.Actor{ID: "fa", Role: access.RoleFactoryAdmin, TenantID: "t-1", FactoryID: ptr("f-1")}
		s := access.BuildScope(actor, "f-2", false)
		assert.True(t, s.Pinned)
		assert.Equal(t, "f-1", s.FactoryID)
		assert.False(t, s.Matches(row{tenantID: "t-1", factoryID: "f-2"}))
	})

	t.Run("auditor participation", func(t *testing.T) {
		actor := access.Actor{ID: "aud", Role: access.RoleAuditor, TenantID: "t-1"}
		s := access.BuildScope(actor, "", true)
		assert.Equal(t, "aud", s.ParticipantID)
		assert.True(t, s.Matches(row{tenantID: "t-1", participants: []string{"x", "aud"}}))
		assert.False(t, s.Matches(row{tenantID: "t-1", participants: []string{"x"}}))
	})

	t.Run("auditor without participation policy", func(t *testing.T) {
		actor := access.Actor{ID: "aud", Role: access.RoleAuditor, TenantID: "t-1"}
		s := access.BuildScope(actor, "", false)
		assert.Empty(t, s.ParticipantID)
	})

	t.Run("lookup scope drops factory", func(t *testing.T) {
		actor := access.Actor{ID: "fa", Role: access.RoleFactoryAdmin, TenantID: "t-1", FactoryID: ptr("f-1")}
		s := access.BuildScope(actor, "", false).LookupScope()
		assert.Empty(t, s.FactoryID)
		assert.True(t, s.Matches(row{tenantID: "t-1", factoryID: "f-2"}))
		assert.False(t, s.Matches(row{tenantID: "t-2", factoryID: "f-1"}))
	})
}

func TestGate(t *testing.T) {
	gate := newGate(t)

	t.Run("super admin bypasses allow-list", func(t *testing.T) {
		sa := access.Actor{ID: "sa", Role: access.RoleSuperAdmin}
		assert.NoError(t, gate.AssertCan(sa, "audit", access.OpPurge))
		assert.NoError(t, gate.AssertCanMutate(sa, "audit", access.OpStart, row{tenantID: "t-9"}))
	})

	t.Run("role not on allow-list", func(t *testing.T) {
		worker := access.Actor{ID: "w", Role: access.RoleWorker, TenantID: "t-1"}
		err := gate.AssertCan(worker, "audit", access.OpRead)
		require.Error(t, err)
		assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
	})

	t.Run("analytics can read but not start", func(t *testing.T) {
		a := access.Actor{ID: "an", Role: access.RoleAnalyticsUser, TenantID: "t-1"}
		assert.NoError(t, gate.AssertCan(a, "audit", access.OpRead))
		assert.Error(t, gate.AssertCan(a, "audit", access.OpStart))
	})

	t.Run("cross tenant entity", func(t *testing.T) {
		ta := access.Actor{ID: "ta", Role: access.RoleTenantAdmin, TenantID: "t-1"}
		err := gate.AssertCanMutate(ta, "audit", access.OpStart, row{tenantID: "t-2", factoryID: "f-1"})
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, access.ReasonTenant, appErr.Details["reason"])
	})

	t.Run("sibling factory", func(t *testing.T) {
		fa := access.Actor{ID: "fa", Role: access.RoleFactoryAdmin, TenantID: "t-1", FactoryID: ptr("f-1")}
		err := gate.AssertCanMutate(fa, "audit", access.OpStart, row{tenantID: "t-1", factoryID: "f-2"})
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, access.ReasonFactory, appErr.Details["reason"])
		assert.NoError(t, gate.AssertCanMutate(fa, "audit", access.OpStart, row{tenantID: "t-1", factoryID: "f-1"}))
	})

	t.Run("unknown resource denies everyone but super admin", func(t *testing.T) {
		ta := access.Actor{ID: "ta", Role: access.RoleTenantAdmin, TenantID: "t-1"}
		assert.Error(t, gate.AssertCan(ta, "invoice", access.OpRead))
	})
}

func TestTransitionTable_Assert(t *testing.T) {
	table := testPolicy.Transitions

	tr, err := table.Assert(access.OpStart, "PLANNED")
	require.NoError(t, err)
	assert.Equal(t, "IN_PROGRESS", tr.To)

	tests := []struct {
		name    string
		op      access.Operation
		current string
		message string
	}{
		{"start twice", access.OpStart, "IN_PROGRESS", "already in progress"},
		{"start completed", access.OpStart, "COMPLETED", "already completed"},
		{"complete scheduled", access.OpComplete, "PLANNED", "must be in progress"},
		{"complete twice", access.OpComplete, "COMPLETED", "already completed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := table.Assert(tt.op, tt.current)
			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperror.CodeInvalidState, appErr.Code)
			assert.Equal(t, tt.message, appErr.Message)
			assert.Equal(t, tt.current, appErr.Details["actual"])
		})
	}

	_, err = table.Assert(access.OpPublish, "PLANNED")
	assert.Error(t, err)
}

type recorder struct {
	entries []access.Activity
	err     error
}

func (r *recorder) Record(_ context.Context, a access.Activity) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, a)
	return nil
}

func TestGuard(t *testing.T) {
	gate := newGate(t)
	rec := &recorder{}
	guard := access.NewGuard[row](testPolicy, access.NewResolver(&fakeSource{}), gate, rec)

	fa := access.Actor{ID: "fa", Role: access.RoleFactoryAdmin, TenantID: "t-1", FactoryID: ptr("f-1")}
	sibling := row{id: "a-2", tenantID: "t-1", factoryID: "f-2"}
	own := row{id: "a-1", tenantID: "t-1", factoryID: "f-1"}

	t.Run("permission is checked before state", func(t *testing.T) {
		_, err := guard.AuthorizeTransition(fa, access.OpStart, sibling, "COMPLETED")
		assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
	})

	t.Run("state rejection for owner", func(t *testing.T) {
		_, err := guard.AuthorizeTransition(fa, access.OpStart, own, "COMPLETED")
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState))
	})

	t.Run("legal transition", func(t *testing.T) {
		tr, err := guard.AuthorizeTransition(fa, access.OpStart, own, "PLANNED")
		require.NoError(t, err)
		assert.Equal(t, "IN_PROGRESS", tr.To)
	})

	t.Run("stale transition", func(t *testing.T) {
		err := guard.RejectStale(access.OpStart, own, "IN_PROGRESS")
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "already in progress", appErr.Message)
	})

	t.Run("list scope requires read", func(t *testing.T) {
		_, err := guard.ListScope(access.Actor{ID: "w", Role: access.RoleWorker, TenantID: "t-1"}, access.OpRead, "")
		assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))

		s, err := guard.ListScope(fa, access.OpRead, "f-2")
		require.NoError(t, err)
		assert.Equal(t, "f-1", s.FactoryID)
	})

	t.Run("stats scope uses the shared stats allow-list", func(t *testing.T) {
		_, err := guard.StatsScope(access.Actor{ID: "hr", Role: access.RoleHRStaff, TenantID: "t-1", FactoryID: ptr("f-1")}, "")
		assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))

		s, err := guard.StatsScope(access.Actor{ID: "aud", Role: access.RoleAuditor, TenantID: "t-1"}, "")
		require.NoError(t, err)
		assert.Equal(t, "aud", s.ParticipantID)
	})

	t.Run("activity failure is swallowed", func(t *testing.T) {
		guard.Record(context.Background(), &fa, "t-1", access.OpStart, "a-1", nil)
		require.Len(t, rec.entries, 1)
		assert.Equal(t, "fa", rec.entries[0].ActorID)
		assert.Equal(t, "start", rec.entries[0].Action)

		rec.err = errors.New("log store down")
		assert.NotPanics(t, func() {
			guard.Record(context.Background(), nil, "t-1", access.OpStart, "a-1", nil)
		})
	})
}
