package domain

// EnforceRequest dipakai bersama oleh middleware dan package rbac supaya
// middleware tidak perlu import rbac.
type EnforceRequest struct {
	Role       string `json:"role"`
	EmployeeID string `json:"employee_id"`
	CompanyID  string `json:"company_id" binding:"required"`
	Resource   string `json:"resource" binding:"required"`
	Action     string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}

type PermissionResponse struct {
	Role     string `json:"role"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Source   string `json:"source"`
}
