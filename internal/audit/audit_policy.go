package audit

import (
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/tenant"
)

const Resource = "audit"

const (
	StatusPlanned    = "PLANNED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

const (
	TypeInternal      = "INTERNAL"
	TypeExternal      = "EXTERNAL"
	TypeCertification = "CERTIFICATION"
	TypeFollowUp      = "FOLLOW_UP"
)

var (
	Statuses = []string{StatusPlanned, StatusInProgress, StatusCompleted}
	Types    = []string{TypeInternal, TypeExternal, TypeCertification, TypeFollowUp}

	// editableStatuses are the states in which the plan may still change.
	editableStatuses = []string{StatusPlanned, StatusInProgress}
)

var writers = []access.Role{access.RoleTenantAdmin, access.RoleFactoryAdmin, access.RoleAuditor}

var Policy = access.Policy{
	Resource: Resource,
	Allow: map[access.Operation][]access.Role{
		access.OpCreate:   writers,
		access.OpUpdate:   writers,
		access.OpStart:    writers,
		access.OpComplete: writers,
		access.OpRead: {
			access.RoleTenantAdmin,
			access.RoleFactoryAdmin,
			access.RoleHRStaff,
			access.RoleAuditor,
			access.RoleAnalyticsUser,
		},
		access.OpDelete: {access.RoleTenantAdmin, access.RoleFactoryAdmin},
	},
	Transitions: access.TransitionTable{
		Order: Statuses,
		Moves: map[access.Operation]access.Transition{
			access.OpStart:    {From: []string{StatusPlanned}, To: StatusInProgress},
			access.OpComplete: {From: []string{StatusInProgress}, To: StatusCompleted},
		},
	},
	Participation: true,
}

var scopeColumns = tenant.Columns{
	Tenant:        "audits.tenant_id",
	Factory:       "audits.factory_id",
	Participation: "audits.created_by = @actor OR audits.lead_auditor_id = @actor OR @actor = ANY(audits.auditor_ids) OR @actor = ANY(audits.witness_ids)",
}
