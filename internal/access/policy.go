package access

type Operation string

const (
	OpCreate   Operation = "create"
	OpRead     Operation = "read"
	OpUpdate   Operation = "update"
	OpDelete   Operation = "delete"
	OpPurge    Operation = "purge"
	OpStats    Operation = "stats"
	OpStart    Operation = "start"
	OpComplete Operation = "complete"
	OpPublish  Operation = "publish"
	OpArchive  Operation = "archive"
	OpAssign   Operation = "assign"
	OpResolve  Operation = "resolve"
	OpClose    Operation = "close"
	OpToggle   Operation = "toggle"
)

// Policy is the per-entity table the generic guard is parameterized with.
// An operation missing from Allow (or mapped to an empty list) is reserved
// for SuperAdmin.
type Policy struct {
	Resource      string
	Allow         map[Operation][]Role
	Transitions   TransitionTable
	Participation bool
}

// StatsResource is the gate resource shared by every statistics endpoint.
const StatsResource = "stats"

var StatsPolicy = Policy{
	Resource: StatsResource,
	Allow: map[Operation][]Role{
		OpRead: {RoleTenantAdmin, RoleFactoryAdmin, RoleAuditor, RoleAnalyticsUser, RoleGrievanceCommittee},
	},
}
