package events

import "time"

const AuditLifecycleTopic = "aisg.audit.lifecycle.v1"

const (
	AuditCreated              = "audit_created"
	AuditAggregationRefreshed = "audit_aggregation_refreshed"
	AuditRegenerated          = "audit_regenerated"
	AuditDeleted              = "audit_deleted"
)

// AuditLifecycleEvent dipakai consumer untuk menyegarkan agregasi audit atasan.
// Depth bertambah setiap kali event diteruskan ke atas supaya rantai berhenti.
type AuditLifecycleEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	AuditID    string    `json:"audit_id"`
	EmployeeID string    `json:"employee_id"`
	ManagerID  string    `json:"manager_id,omitempty"`
	CompanyID  string    `json:"company_id"`
	Year       int       `json:"year"`
	Quarter    int       `json:"quarter"`
	Depth      int       `json:"depth"`
	OccurredAt time.Time `json:"occurred_at"`
}
