package events

import "time"

const EmployeeLifecycleTopic = "aisg.employee.lifecycle.v1"

const (
	EmployeeCreated   = "employee_created"
	EmployeeUpdated   = "employee_updated"
	EmployeeDeleted   = "employee_deleted"
	EmployeesImported = "employees_imported"
)

type EmployeeLifecycleEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	EmployeeID string    `json:"employee_id,omitempty"`
	CompanyID  string    `json:"company_id"`
	ManagerID  string    `json:"manager_id,omitempty"`
	Imported   int       `json:"imported,omitempty"`
	Year       int       `json:"year,omitempty"`
	Month      int       `json:"month,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
