package document

import (
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/tenant"
)

const Resource = "document"

const (
	StatusDraft    = "DRAFT"
	StatusActive   = "ACTIVE"
	StatusArchived = "ARCHIVED"
)

const (
	CategoryPolicy      = "POLICY"
	CategoryProcedure   = "PROCEDURE"
	CategoryCertificate = "CERTIFICATE"
	CategoryRecord      = "RECORD"
	CategoryReport      = "REPORT"
)

var (
	Statuses   = []string{StatusDraft, StatusActive, StatusArchived}
	Categories = []string{CategoryPolicy, CategoryProcedure, CategoryCertificate, CategoryRecord, CategoryReport}

	editableStatuses = []string{StatusDraft, StatusActive}
)

var (
	editors   = []access.Role{access.RoleTenantAdmin, access.RoleFactoryAdmin, access.RoleHRStaff}
	approvers = []access.Role{access.RoleTenantAdmin, access.RoleFactoryAdmin}
)

// Policy leaves OpDelete and OpPurge off the allow-list: only SuperAdmin
// may deactivate or hard-delete a document.
var Policy = access.Policy{
	Resource: Resource,
	Allow: map[access.Operation][]access.Role{
		access.OpCreate:  editors,
		access.OpUpdate:  editors,
		access.OpPublish: approvers,
		access.OpArchive: approvers,
		access.OpRead:    access.AllRoles,
	},
	Transitions: access.TransitionTable{
		Order: Statuses,
		Moves: map[access.Operation]access.Transition{
			access.OpPublish: {From: []string{StatusDraft}, To: StatusActive},
			access.OpArchive: {From: []string{StatusActive}, To: StatusArchived},
		},
	},
}

var scopeColumns = tenant.Columns{
	Tenant:  "documents.tenant_id",
	Factory: "documents.factory_id",
}
