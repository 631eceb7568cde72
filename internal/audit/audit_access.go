package audit

import (
	"context"
	"strings"

	auditerrors "aisg-audit/internal/audit/errors"
	"aisg-audit/internal/hierarchy"
)

const (
	RoleSuperAdmin = "SUPERADMIN"
	RoleAdmin      = "ADMIN"
	RoleHR         = "HR"
)

// Actor adalah user yang sedang login beserta employee yang ia wakili.
type Actor struct {
	UserID     string
	EmployeeID string
	Role       string
}

func (a Actor) HasGlobalAccess() bool {
	switch strings.ToUpper(a.Role) {
	case RoleSuperAdmin, RoleAdmin, RoleHR:
		return true
	}
	return false
}

func (a Actor) IsAdmin() bool {
	switch strings.ToUpper(a.Role) {
	case RoleSuperAdmin, RoleAdmin:
		return true
	}
	return false
}

// authorize: diri sendiri, atasan di rantai pelaporan, atau role global.
func (s *service) authorize(ctx context.Context, companyID string, actor Actor, employeeID string) error {
	if actor.HasGlobalAccess() || (actor.EmployeeID != "" && actor.EmployeeID == employeeID) {
		return nil
	}
	ok, err := hierarchy.NewWalker(s.employees).CanManage(ctx, companyID, actor.EmployeeID, employeeID)
	if err != nil {
		return err
	}
	if !ok {
		return auditerrors.ErrAccessDenied
	}
	return nil
}

// visibleEmployeeIDs mengembalikan nil untuk role global (tanpa batas).
func (s *service) visibleEmployeeIDs(ctx context.Context, companyID string, actor Actor) ([]string, error) {
	if actor.HasGlobalAccess() {
		return nil, nil
	}
	if actor.EmployeeID == "" {
		return []string{}, nil
	}
	subs, err := hierarchy.NewWalker(s.employees).AllSubordinates(ctx, companyID, actor.EmployeeID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(subs)+1)
	ids = append(ids, actor.EmployeeID)
	for _, n := range subs {
		ids = append(ids, n.ID)
	}
	return ids, nil
}
