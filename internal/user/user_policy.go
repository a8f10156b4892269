package user

import (
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/tenant"
)

const Resource = "user"

const uniqueEmailIndex = "uq_users_email"

var Policy = access.Policy{
	Resource: Resource,
	Allow: map[access.Operation][]access.Role{
		access.OpCreate: {access.RoleTenantAdmin},
		access.OpUpdate: {access.RoleTenantAdmin},
		access.OpToggle: {access.RoleTenantAdmin},
		access.OpRead:   {access.RoleTenantAdmin, access.RoleFactoryAdmin},
	},
}

var scopeColumns = tenant.Columns{
	Tenant:  "users.tenant_id",
	Factory: "users.factory_id",
}
