package rbac_test

import (
	"context"
	"errors"
	"testing"

	"aisg-audit/internal/domain"
	"aisg-audit/internal/rbac"
	"aisg-audit/internal/rbac/infra"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	rows  map[string][]rbac.RolePermission
	err   error
	calls int
}

func (f *fakeRepo) ListByCompany(_ context.Context, companyID string) ([]rbac.RolePermission, error) {
	f.calls++
	return f.rows[companyID], f.err
}

func newService(t *testing.T, repo rbac.Repository) rbac.Service {
	t.Helper()
	e, err := infra.NewEnforcer("")
	require.NoError(t, err)
	return rbac.NewService(repo, e)
}

func TestEnforce_DefaultPolicies(t *testing.T) {
	svc := newService(t, &fakeRepo{})

	cases := []struct {
		role, resource, action string
		want                   bool
	}{
		{"SUPERADMIN", "audit", "delete", true},
		{"admin", "employee", "import", true},
		{"HR", "employee", "import", true},
		{"HR", "position", "create", false},
		{"MANAGER", "audit", "create", true},
		{"MANAGER", "audit", "delete", false},
		{"MANAGER", "employee", "import", false},
		{"EMPLOYEE", "audit", "read", true},
		{"EMPLOYEE", "audit", "create", false},
		{"", "audit", "read", false},
		{"GUEST", "audit", "read", false},
	}

	for _, tc := range cases {
		t.Run(tc.role+" "+tc.resource+":"+tc.action, func(t *testing.T) {
			got, err := svc.Enforce(domain.EnforceRequest{
				Role: tc.role, CompanyID: "c1", Resource: tc.resource, Action: tc.action,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEnforce_CompanyOverrides(t *testing.T) {
	repo := &fakeRepo{rows: map[string][]rbac.RolePermission{
		"c1": {{ID: uuid.New(), Role: "manager", Resource: "employee", Action: "import"}},
	}}
	svc := newService(t, repo)

	allowed, err := svc.Enforce(domain.EnforceRequest{Role: "MANAGER", CompanyID: "c1", Resource: "employee", Action: "import"})
	require.NoError(t, err)
	assert.True(t, allowed)

	// izin c1 tidak bocor ke company lain
	allowed, err = svc.Enforce(domain.EnforceRequest{Role: "MANAGER", CompanyID: "c2", Resource: "employee", Action: "import"})
	require.NoError(t, err)
	assert.False(t, allowed)

	// cache per company: c1 tidak dibaca ulang
	_, _ = svc.Enforce(domain.EnforceRequest{Role: "MANAGER", CompanyID: "c1", Resource: "audit", Action: "read"})
	assert.Equal(t, 2, repo.calls)
}

func TestEnforce_RepoError(t *testing.T) {
	svc := newService(t, &fakeRepo{err: errors.New("db down")})

	_, err := svc.Enforce(domain.EnforceRequest{Role: "HR", CompanyID: "c1", Resource: "audit", Action: "read"})
	assert.Error(t, err)
}

func TestListPermissions(t *testing.T) {
	repo := &fakeRepo{rows: map[string][]rbac.RolePermission{
		"c1": {{Role: "EMPLOYEE", Resource: "performance", Action: "create"}},
	}}
	svc := newService(t, repo)

	perms, err := svc.ListPermissions(context.Background(), "c1", "employee")
	require.NoError(t, err)

	var company []domain.PermissionResponse
	for _, p := range perms {
		if p.Source == "company" {
			company = append(company, p)
		}
	}
	assert.Len(t, perms, 6)
	require.Len(t, company, 1)
	assert.Equal(t, "performance", company[0].Resource)
}
