package bulkimport_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"aisg-audit/internal/bulkimport"
	bulkimporterrors "aisg-audit/internal/bulkimport/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImportService struct {
	ImportFn func(ctx context.Context, companyID string, req bulkimport.ImportRequest, file io.Reader) (bulkimport.ImportResponse, error)
}

func (f *fakeImportService) Import(ctx context.Context, companyID string, req bulkimport.ImportRequest, file io.Reader) (bulkimport.ImportResponse, error) {
	return f.ImportFn(ctx, companyID, req, file)
}

func (f *fakeImportService) Validate(context.Context, string, []bulkimport.Row) (bulkimport.Result, error) {
	return bulkimport.Result{}, nil
}

func multipartRequest(t *testing.T, filename string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("xlsx-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/imports/employees", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func importRouter(svc bulkimport.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("company_id", "c1")
		c.Next()
	})
	r.POST("/imports/employees", bulkimport.NewHandler(svc).ImportEmployees)
	return r
}

func TestImportHandler(t *testing.T) {
	t.Run("committed", func(t *testing.T) {
		svc := &fakeImportService{
			ImportFn: func(_ context.Context, cid string, req bulkimport.ImportRequest, file io.Reader) (bulkimport.ImportResponse, error) {
				assert.Equal(t, "c1", cid)
				assert.Equal(t, 2025, req.Year)
				assert.Equal(t, 3, req.Month)
				assert.True(t, req.Partial)
				raw, _ := io.ReadAll(file)
				assert.Equal(t, "xlsx-bytes", string(raw))
				return bulkimport.ImportResponse{Committed: true, EmployeesUpserted: 4}, nil
			},
		}
		w := httptest.NewRecorder()
		importRouter(svc).ServeHTTP(w, multipartRequest(t, "staff.xlsx", map[string]string{
			"year": "2025", "month": "3", "partial": "true",
		}))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"employees_upserted":4`)
	})

	t.Run("dry run returns 200", func(t *testing.T) {
		svc := &fakeImportService{
			ImportFn: func(context.Context, string, bulkimport.ImportRequest, io.Reader) (bulkimport.ImportResponse, error) {
				return bulkimport.ImportResponse{Validation: bulkimport.Result{IsValid: true}}, nil
			},
		}
		w := httptest.NewRecorder()
		importRouter(svc).ServeHTTP(w, multipartRequest(t, "staff.xlsx", map[string]string{
			"year": "2025", "month": "3", "dry_run": "true",
		}))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong extension", func(t *testing.T) {
		w := httptest.NewRecorder()
		importRouter(&fakeImportService{}).ServeHTTP(w, multipartRequest(t, "staff.csv", map[string]string{
			"year": "2025", "month": "3",
		}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("month out of range", func(t *testing.T) {
		w := httptest.NewRecorder()
		importRouter(&fakeImportService{}).ServeHTTP(w, multipartRequest(t, "staff.xlsx", map[string]string{
			"year": "2025", "month": "13",
		}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("rejected batch", func(t *testing.T) {
		svc := &fakeImportService{
			ImportFn: func(context.Context, string, bulkimport.ImportRequest, io.Reader) (bulkimport.ImportResponse, error) {
				return bulkimport.ImportResponse{}, bulkimporterrors.ErrValidationFailed.WithDetails(bulkimport.Result{
					Errors: []bulkimport.RowError{{Row: 2, Field: "posisi", Reason: "unknown position"}},
				})
			},
		}
		w := httptest.NewRecorder()
		importRouter(svc).ServeHTTP(w, multipartRequest(t, "staff.xlsx", map[string]string{
			"year": "2025", "month": "3",
		}))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "unknown position")
	})
}
