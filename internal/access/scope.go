package access

import "github.com/samber/lo"

// Scoped is implemented by every entity that lives inside a tenant and
// factory.
type Scoped interface {
	ScopeTenantID() string
	ScopeFactoryID() string
}

// Participant is implemented by entities with a participation clause
// (creator, assigned auditor, witness).
type Participant interface {
	Scoped
	ParticipantIDs() []string
}

// Target is the tenant/factory a new entity will be created in.
type Target struct {
	TenantID  string
	FactoryID string
}

func (t Target) ScopeTenantID() string  { return t.TenantID }
func (t Target) ScopeFactoryID() string { return t.FactoryID }

// Scope is the row predicate restricting what an actor can see. It is a
// plain value so it can be evaluated in memory (Matches) or translated to
// SQL by the persistence layer.
type Scope struct {
	// Global disables the tenant clause (SuperAdmin only).
	Global   bool
	TenantID string
	// FactoryID narrows rows to one factory. When Pinned it is a security
	// boundary; otherwise it is a caller-supplied filter.
	FactoryID string
	Pinned    bool
	// ParticipantID, when set, requires the actor to participate in the row.
	ParticipantID string
}

// BuildScope derives the list predicate for actor. explicitFactoryID is a
// caller-supplied filter: it can narrow results but never widen them.
func BuildScope(actor Actor, explicitFactoryID string, participation bool) Scope {
	if actor.IsSuperAdmin() {
		return Scope{Global: true, FactoryID: explicitFactoryID}
	}

	s := Scope{TenantID: actor.TenantID}
	if pinned, ok := actor.PinnedFactory(); ok {
		s.FactoryID = pinned
		s.Pinned = true
	} else {
		s.FactoryID = explicitFactoryID
	}

	if participation && actor.Role == RoleAuditor {
		s.ParticipantID = actor.ID
	}
	return s
}

// LookupScope is the predicate for single-entity reads. It keeps the tenant
// and participation clauses but drops the factory clause, so a pinned actor
// reaching into a sibling factory gets Forbidden from the gate rather than
// NotFound.
func (s Scope) LookupScope() Scope {
	s.FactoryID = ""
	s.Pinned = false
	return s
}

// Matches evaluates the predicate against an entity in memory.
func (s Scope) Matches(e Scoped) bool {
	if !s.Global && e.ScopeTenantID() != s.TenantID {
		return false
	}
	if s.FactoryID != "" && e.ScopeFactoryID() != s.FactoryID {
		return false
	}
	if s.ParticipantID != "" {
		p, ok := e.(Participant)
		if !ok || !lo.Contains(p.ParticipantIDs(), s.ParticipantID) {
			return false
		}
	}
	return true
}
