package rbac_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aisg-audit/internal/domain"
	"aisg-audit/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	last domain.EnforceRequest
}

func (f *fakeService) LoadCompanyPolicy(context.Context, string) error { return nil }

func (f *fakeService) Enforce(req domain.EnforceRequest) (bool, error) {
	f.last = req
	return req.Resource == "audit" && req.Action == "read", nil
}

func (f *fakeService) ListPermissions(_ context.Context, companyID, role string) ([]domain.PermissionResponse, error) {
	return []domain.PermissionResponse{{Role: role, Resource: "audit", Action: "read", Source: "default"}}, nil
}

func rbacRouter(svc rbac.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("role", "MANAGER")
		c.Set("company_id", "c1")
		c.Set("employee_id", "e1")
		c.Next()
	})
	h := rbac.NewHandler(svc)
	r.POST("/rbac/enforce", h.Enforce)
	r.GET("/rbac/permissions", h.ListPermissions)
	return r
}

func TestHandler_Enforce(t *testing.T) {
	svc := &fakeService{}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rbac/enforce", strings.NewReader(`{"resource":"audit","action":"read"}`))
	req.Header.Set("Content-Type", "application/json")
	rbacRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MANAGER", svc.last.Role)
	assert.Equal(t, "c1", svc.last.CompanyID)

	var body struct {
		Data domain.EnforceResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Data.Allowed)
}

func TestHandler_EnforceValidation(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rbac/enforce", strings.NewReader(`{"resource":"audit"}`))
	req.Header.Set("Content-Type", "application/json")
	rbacRouter(&fakeService{}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ListPermissions(t *testing.T) {
	w := httptest.NewRecorder()
	rbacRouter(&fakeService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rbac/permissions?role=HR", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"HR"`)
}
