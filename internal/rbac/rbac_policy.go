package rbac

const (
	RoleSuperAdmin = "SUPERADMIN"
	RoleAdmin      = "ADMIN"
	RoleHR         = "HR"
	RoleManager    = "MANAGER"
	RoleEmployee   = "EMPLOYEE"
)

// AnyDomain berlaku untuk semua company.
const AnyDomain = "*"

type defaultPolicy struct {
	Role     string
	Resource string
	Action   string
}

// defaultPolicies berlaku untuk semua company. Company bisa menambah izin lewat
// tabel role_permissions, tapi tidak bisa mencabut baris di sini.
var defaultPolicies = []defaultPolicy{
	{RoleSuperAdmin, "*", "*"},
	{RoleAdmin, "*", "*"},

	{RoleHR, "audit", "*"},
	{RoleHR, "employee", "*"},
	{RoleHR, "performance", "*"},
	{RoleHR, "org_unit", "*"},
	{RoleHR, "position", "read"},

	{RoleManager, "audit", "read"},
	{RoleManager, "audit", "create"},
	{RoleManager, "audit", "update"},
	{RoleManager, "employee", "read"},
	{RoleManager, "performance", "read"},
	{RoleManager, "performance", "create"},
	{RoleManager, "performance", "update"},
	{RoleManager, "org_unit", "read"},
	{RoleManager, "position", "read"},

	{RoleEmployee, "audit", "read"},
	{RoleEmployee, "employee", "read"},
	{RoleEmployee, "performance", "read"},
	{RoleEmployee, "org_unit", "read"},
	{RoleEmployee, "position", "read"},
}
