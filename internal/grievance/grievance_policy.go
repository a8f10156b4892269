package grievance

import (
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/tenant"
)

const Resource = "grievance"

const (
	StatusSubmitted = "SUBMITTED"
	StatusAssigned  = "ASSIGNED"
	StatusResolved  = "RESOLVED"
	StatusClosed    = "CLOSED"
)

const (
	CategoryWages          = "WAGES"
	CategorySafety         = "SAFETY"
	CategoryHarassment     = "HARASSMENT"
	CategoryDiscrimination = "DISCRIMINATION"
	CategoryWorkingHours   = "WORKING_HOURS"
	CategoryOther          = "OTHER"
)

const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

var (
	Statuses   = []string{StatusSubmitted, StatusAssigned, StatusResolved, StatusClosed}
	Categories = []string{CategoryWages, CategorySafety, CategoryHarassment, CategoryDiscrimination, CategoryWorkingHours, CategoryOther}
	Severities = []string{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

	// OpenStatuses still need committee action.
	OpenStatuses = []string{StatusSubmitted, StatusAssigned}
)

// AssigneeRoles may be handed a grievance.
var AssigneeRoles = []access.Role{access.RoleTenantAdmin, access.RoleFactoryAdmin, access.RoleGrievanceCommittee}

var handlers = []access.Role{access.RoleTenantAdmin, access.RoleFactoryAdmin, access.RoleGrievanceCommittee}

var Policy = access.Policy{
	Resource: Resource,
	Allow: map[access.Operation][]access.Role{
		access.OpCreate:  access.AllRoles,
		access.OpRead:    append([]access.Role{access.RoleHRStaff}, handlers...),
		access.OpAssign:  handlers,
		access.OpResolve: handlers,
		access.OpClose:   handlers,
	},
	Transitions: access.TransitionTable{
		Order: Statuses,
		Moves: map[access.Operation]access.Transition{
			access.OpAssign:  {From: []string{StatusSubmitted}, To: StatusAssigned},
			access.OpResolve: {From: []string{StatusAssigned}, To: StatusResolved},
			access.OpClose:   {From: []string{StatusResolved}, To: StatusClosed},
		},
	},
}

var scopeColumns = tenant.Columns{
	Tenant:  "grievances.tenant_id",
	Factory: "grievances.factory_id",
}
