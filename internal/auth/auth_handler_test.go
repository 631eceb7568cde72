package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"aisg-audit/internal/auth"
	autherrors "aisg-audit/internal/auth/errors"
	authMock "aisg-audit/internal/auth/mock"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func setupAuthRouter(h *auth.Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", h.Login)
	r.POST("/refresh", h.RefreshToken)
	r.POST("/register", func(c *gin.Context) {
		c.Set("company_id", "c1")
		c.Next()
	}, h.Register)
	return r
}

func TestHandler_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := authMock.NewMockService(ctrl)
	router := setupAuthRouter(auth.NewHandler(mockService))

	t.Run("web client gets cookies", func(t *testing.T) {
		mockService.EXPECT().
			Login(gomock.Any(), "test@example.com", "password123").
			Return("access-token", "refresh-token", auth.AuthResponse{ID: "u1", Email: "test@example.com"}, nil)

		body, _ := json.Marshal(auth.LoginRequest{Email: "test@example.com", Password: "password123"})
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-Type", "WEB")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		cookies := w.Result().Cookies()
		assert.Len(t, cookies, 2)
		assert.Equal(t, "access_token", cookies[0].Name)
		assert.Equal(t, "access-token", cookies[0].Value)
		assert.Contains(t, w.Body.String(), `"email":"test@example.com"`)
	})

	t.Run("mobile client no cookies", func(t *testing.T) {
		mockService.EXPECT().
			Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("a", "r", auth.AuthResponse{}, nil)

		body, _ := json.Marshal(auth.LoginRequest{Email: "m@example.com", Password: "x"})
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-Type", "MOBILE")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("invalid credentials", func(t *testing.T) {
		mockService.EXPECT().
			Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", "", auth.AuthResponse{}, autherrors.ErrInvalidCredentials)

		body, _ := json.Marshal(auth.LoginRequest{Email: "wrong@test.com", Password: "123"})
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandler_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := authMock.NewMockService(ctrl)
	router := setupAuthRouter(auth.NewHandler(mockService))

	t.Run("created", func(t *testing.T) {
		mockService.EXPECT().
			Register(gomock.Any(), "c1", gomock.Any()).
			Return(auth.AuthResponse{Email: "new@example.com"}, nil)

		body := []byte(`{"email":"new@example.com","name":"New","password":"password123","role":"HR"}`)
		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("unknown role rejected before service", func(t *testing.T) {
		body := []byte(`{"email":"new@example.com","name":"New","password":"password123","role":"OWNER"}`)
		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockService.EXPECT().
			Register(gomock.Any(), "c1", gomock.Any()).
			Return(auth.AuthResponse{}, autherrors.ErrEmailAlreadyRegistered)

		body := []byte(`{"email":"ada@example.com","name":"Ada","password":"password123","role":"HR"}`)
		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHandler_RefreshFromBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := authMock.NewMockService(ctrl)
	router := setupAuthRouter(auth.NewHandler(mockService))

	mockService.EXPECT().RefreshToken(gomock.Any(), "rt").Return("a2", "r2", auth.AuthResponse{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/refresh", bytes.NewBufferString(`{"refresh_token":"rt"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-Type", "MOBILE")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"a2"`)
}
