package events

import "time"

const ComplianceLifecycleTopic = "compliance.lifecycle.v1"

const (
	AuditCreated      = "audit.created"
	AuditCompleted    = "audit.completed"
	DocumentCreated   = "document.created"
	DocumentPublished = "document.published"
	GrievanceCreated  = "grievance.created"
	GrievanceAssigned = "grievance.assigned"
	GrievanceResolved = "grievance.resolved"
	GrievanceClosed   = "grievance.closed"
	FactoryCreated    = "factory.created"
)

type ComplianceEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	TenantID   string    `json:"tenant_id"`
	FactoryID  string    `json:"factory_id,omitempty"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id"`
	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
