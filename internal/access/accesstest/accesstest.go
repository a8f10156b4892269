// Package accesstest provides an in-memory principal store and guard
// constructors for service tests.
package accesstest

import (
	"context"
	"sync"
	"testing"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type Source struct {
	mu         sync.RWMutex
	principals map[string]access.Principal
}

func NewSource(principals ...access.Principal) *Source {
	s := &Source{principals: map[string]access.Principal{}}
	for _, p := range principals {
		s.Add(p)
	}
	return s
}

func (s *Source) Add(p access.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principals[p.ID] = p
}

func (s *Source) FindPrincipal(_ context.Context, id string) (*access.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.principals[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Principal builds an active principal. factoryID may be empty.
func Principal(id string, role access.Role, tenantID, factoryID string) access.Principal {
	p := access.Principal{ID: id, Role: string(role), TenantID: tenantID, IsActive: true}
	if factoryID != "" {
		p.FactoryID = &factoryID
	}
	return p
}

type Recorder struct {
	mu      sync.Mutex
	Entries []access.Activity
}

func (r *Recorder) Record(_ context.Context, a access.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, a)
	return nil
}

// Actions returns the recorded actions in order.
func (r *Recorder) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Action
	}
	return out
}

// Guard builds a guard for policy backed by src, with the stats allow-list
// loaded into the same gate.
func Guard[E access.Entity](t testing.TB, policy access.Policy, src access.ActorSource, rec access.ActivityRecorder) *access.Guard[E] {
	t.Helper()
	gate, err := access.NewGate([]access.Policy{policy, access.StatsPolicy}, zap.NewNop())
	require.NoError(t, err)
	return access.NewGuard[E](policy, access.NewResolver(src, zap.NewNop()), gate, rec, zap.NewNop())
}
