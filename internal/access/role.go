package access

import "github.com/samber/lo"

type Role string

const (
	RoleSuperAdmin         Role = "SUPER_ADMIN"
	RoleTenantAdmin        Role = "TENANT_ADMIN"
	RoleFactoryAdmin       Role = "FACTORY_ADMIN"
	RoleHRStaff            Role = "HR_STAFF"
	RoleGrievanceCommittee Role = "GRIEVANCE_COMMITTEE"
	RoleAuditor            Role = "AUDITOR"
	RoleAnalyticsUser      Role = "ANALYTICS_USER"
	RoleWorker             Role = "WORKER"
)

// AllRoles lists every role except SuperAdmin, which is never placed on an
// allow-list because it bypasses the gate.
var AllRoles = []Role{
	RoleTenantAdmin,
	RoleFactoryAdmin,
	RoleHRStaff,
	RoleGrievanceCommittee,
	RoleAuditor,
	RoleAnalyticsUser,
	RoleWorker,
}

var factoryScopedRoles = []Role{
	RoleFactoryAdmin,
	RoleHRStaff,
	RoleGrievanceCommittee,
}

func (r Role) Valid() bool {
	return r == RoleSuperAdmin || lo.Contains(AllRoles, r)
}

// FactoryScoped reports whether an assigned factory pins this role's access.
func (r Role) FactoryScoped() bool {
	return lo.Contains(factoryScopedRoles, r)
}

func (r Role) String() string {
	return string(r)
}
