package factory

import (
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/tenant"
)

const Resource = "factory"

// Unique indexes backing the duplicate checks; the names are matched when a
// concurrent insert wins the race.
const (
	uniqueNameIndex = "uq_factories_tenant_name_active"
	uniqueCodeIndex = "uq_factories_tenant_code"
)

var Policy = access.Policy{
	Resource: Resource,
	Allow: map[access.Operation][]access.Role{
		access.OpCreate: {access.RoleTenantAdmin},
		access.OpToggle: {access.RoleTenantAdmin},
		access.OpUpdate: {access.RoleTenantAdmin, access.RoleFactoryAdmin},
		access.OpRead:   access.AllRoles,
	},
}

var scopeColumns = tenant.Columns{
	Tenant:  "factories.tenant_id",
	Factory: "factories.id",
}
