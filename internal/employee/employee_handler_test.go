package employee_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aisg-audit/internal/employee"
	employeeerrors "aisg-audit/internal/employee/errors"
	hierarchyerrors "aisg-audit/internal/hierarchy/errors"
	"aisg-audit/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeEmployeeService struct {
	CreateFn          func(ctx context.Context, companyID string, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error)
	GetAllFn          func(ctx context.Context, companyID string) ([]employee.EmployeeResponse, error)
	GetOptionsFn      func(ctx context.Context, companyID string) ([]employee.EmployeeResponse, error)
	GetByIDFn         func(ctx context.Context, companyID, id string) (employee.EmployeeResponse, error)
	GetSubordinatesFn func(ctx context.Context, companyID, id string, recursive bool) ([]employee.SubordinateResponse, error)
	UpdateFn          func(ctx context.Context, companyID, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error)
	DeleteFn          func(ctx context.Context, companyID, id string) error
}

func (f *fakeEmployeeService) Create(ctx context.Context, companyID string, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	return f.CreateFn(ctx, companyID, req)
}
func (f *fakeEmployeeService) GetAll(ctx context.Context, companyID string) ([]employee.EmployeeResponse, error) {
	return f.GetAllFn(ctx, companyID)
}
func (f *fakeEmployeeService) GetOptions(ctx context.Context, companyID string) ([]employee.EmployeeResponse, error) {
	return f.GetOptionsFn(ctx, companyID)
}
func (f *fakeEmployeeService) GetByID(ctx context.Context, companyID, id string) (employee.EmployeeResponse, error) {
	return f.GetByIDFn(ctx, companyID, id)
}
func (f *fakeEmployeeService) GetSubordinates(ctx context.Context, companyID, id string, recursive bool) ([]employee.SubordinateResponse, error) {
	return f.GetSubordinatesFn(ctx, companyID, id, recursive)
}
func (f *fakeEmployeeService) Update(ctx context.Context, companyID, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	return f.UpdateFn(ctx, companyID, id, req)
}
func (f *fakeEmployeeService) Delete(ctx context.Context, companyID, id string) error {
	return f.DeleteFn(ctx, companyID, id)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func withCompany(companyID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("company_id", companyID)
		c.Next()
	}
}

func TestEmployeeHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		companyID := uuid.New().String()

		svc := &fakeEmployeeService{
			CreateFn: func(ctx context.Context, cid string, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, "John Doe", req.FullName)
				assert.Equal(t, "BC", req.PositionCode)
				return employee.EmployeeResponse{
					ID:        uuid.New().String(),
					Code:      "EMP-000001",
					FullName:  req.FullName,
					CompanyID: cid,
				}, nil
			},
		}

		h := employee.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"full_name":"John Doe","email":"john@example.com","position_code":"BC","joined_at":"2024-01-15"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/employees", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req
		c.Set("company_id", companyID)

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "EMP-000001")
	})

	t.Run("validation error", func(t *testing.T) {
		h := employee.NewHandler(&fakeEmployeeService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		req := httptest.NewRequest(http.MethodPost, "/employees", strings.NewReader(`{"full_name":"X","birth_date":"1990/01/01","position_code":"BC"}`))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req
		c.Set("company_id", uuid.New().String())

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("service error", func(t *testing.T) {
		svc := &fakeEmployeeService{
			CreateFn: func(ctx context.Context, cid string, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
				return employee.EmployeeResponse{}, errors.New("database connection failed")
			},
		}

		h := employee.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		req := httptest.NewRequest(http.MethodPost, "/employees", strings.NewReader(`{"full_name":"HR","position_code":"BC"}`))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req
		c.Set("company_id", uuid.New().String())

		h.Create(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Internal server error")
	})

	t.Run("manager rank violation returns 422", func(t *testing.T) {
		svc := &fakeEmployeeService{
			CreateFn: func(ctx context.Context, cid string, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
				return employee.EmployeeResponse{}, hierarchyerrors.ErrManagerRankViolation
			},
		}

		h := employee.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"full_name":"John","position_code":"BsM","manager_id":"` + uuid.New().String() + `"}`
		req := httptest.NewRequest(http.MethodPost, "/employees", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req

		h.Create(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), apperror.CodeIntegrityViolation)
	})

	t.Run("duplicate code returns conflict", func(t *testing.T) {
		svc := &fakeEmployeeService{
			CreateFn: func(ctx context.Context, cid string, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
				return employee.EmployeeResponse{}, employeeerrors.ErrEmployeeCodeAlreadyExists
			},
		}

		h := employee.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		req := httptest.NewRequest(http.MethodPost, "/employees", strings.NewReader(`{"code":"E1","full_name":"John","position_code":"BC"}`))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), apperror.CodeConflict)
	})
}

func TestEmployeeHandler_GetAll(t *testing.T) {
	companyID := uuid.New().String()

	svc := &fakeEmployeeService{
		GetAllFn: func(ctx context.Context, cid string) ([]employee.EmployeeResponse, error) {
			return []employee.EmployeeResponse{
				{ID: "1", Code: "E3", FullName: "Citra", PositionLevel: 9},
				{ID: "2", Code: "E1", FullName: "Andi", PositionLevel: 4},
				{ID: "3", Code: "E2", FullName: "Budi", PositionLevel: 8},
			}, nil
		},
	}

	t.Run("sort by level desc with paging", func(t *testing.T) {
		h := employee.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/employees?sort_by=level&sort_dir=desc&page_size=2", nil)
		c.Set("company_id", companyID)

		h.GetAll(c)

		body := w.Body.String()
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, body, "Citra")
		assert.Contains(t, body, "Budi")
		assert.NotContains(t, body, "Andi")
		assert.Contains(t, body, `"totalPages":2`)
	})

	t.Run("filter by code", func(t *testing.T) {
		h := employee.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/employees?q=e2", nil)

		h.GetAll(c)

		assert.Contains(t, w.Body.String(), "Budi")
		assert.NotContains(t, w.Body.String(), "Citra")
	})
}

func TestEmployeeHandler_GetOptions(t *testing.T) {
	svc := &fakeEmployeeService{
		GetOptionsFn: func(ctx context.Context, cid string) ([]employee.EmployeeResponse, error) {
			return []employee.EmployeeResponse{
				{ID: "1", FullName: "Alice Smith", Code: "EMP001"},
				{ID: "2", FullName: "Bob Wilson", Code: "EMP002"},
			}, nil
		},
	}

	h := employee.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/employees/options?q=alice", nil)

	h.GetOptions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alice Smith")
	assert.NotContains(t, w.Body.String(), "Bob Wilson")
}

func TestEmployeeHandler_GetSubordinates(t *testing.T) {
	companyID := uuid.New().String()
	managerID := uuid.New().String()

	svc := &fakeEmployeeService{
		GetSubordinatesFn: func(ctx context.Context, cid, id string, recursive bool) ([]employee.SubordinateResponse, error) {
			assert.Equal(t, companyID, cid)
			assert.Equal(t, managerID, id)
			assert.True(t, recursive)
			return []employee.SubordinateResponse{{ID: "s1", Code: "E9", Level: 9}}, nil
		},
	}

	r := setupRouter()
	r.Use(withCompany(companyID))
	h := employee.NewHandler(svc)
	r.GET("/employees/:id/subordinates", h.GetSubordinates)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/employees/"+managerID+"/subordinates?recursive=true", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "E9")
}

func TestEmployeeHandler_Delete(t *testing.T) {
	companyID := uuid.New().String()
	id := uuid.New().String()

	svc := &fakeEmployeeService{
		DeleteFn: func(ctx context.Context, cid, eid string) error {
			return employeeerrors.ErrHasSubordinates
		},
	}

	r := setupRouter()
	r.Use(withCompany(companyID))
	h := employee.NewHandler(svc)
	r.DELETE("/employees/:id", h.Delete)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/employees/"+id, nil))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeInvalidState)
}
